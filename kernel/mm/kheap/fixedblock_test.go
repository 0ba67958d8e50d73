package kheap

import (
	"testing"
	"unsafe"
)

// newBackedRegion returns the address and size of a writable region carved
// out of a Go slab. The fixed-block allocator stores its free list links
// inside freed blocks so tests must hand it real memory.
func newBackedRegion(size uintptr) (uintptr, uintptr) {
	slab := make([]byte, size+64)
	start := alignUp(uintptr(unsafe.Pointer(&slab[0])), 64)
	regionBacking = append(regionBacking, slab)
	return start, size
}

// regionBacking keeps test slabs reachable so the GC does not collect the
// memory behind the uintptr-based regions.
var regionBacking [][]byte

func TestFixedBlockAllocatorReusesFreedBlocks(t *testing.T) {
	var a FixedBlockAllocator
	a.Init(newBackedRegion(8192))

	addr1 := a.Alloc(24, 8)
	if addr1 == 0 {
		t.Fatal("unexpected allocation failure")
	}

	// 24 bytes rounds up to the 32-byte class
	if addr1&31 != 0 {
		t.Fatalf("expected a 32-byte aligned block; got %x", addr1)
	}

	a.Dealloc(addr1, 24, 8)

	// the freed block must be handed out again for a same-class request
	if addr2 := a.Alloc(30, 4); addr2 != addr1 {
		t.Fatalf("expected freed block %x to be reused; got %x", addr1, addr2)
	}
}

func TestFixedBlockAllocatorSizeClasses(t *testing.T) {
	specs := []struct {
		size, align  uintptr
		expClass     int
		expClassSize uintptr
	}{
		{1, 1, 0, 8},
		{8, 8, 0, 8},
		{9, 1, 1, 16},
		{100, 8, 4, 128},
		{100, 256, 5, 256},
		{2048, 8, 8, 2048},
	}

	for specIndex, spec := range specs {
		class, found := sizeClassFor(spec.size, spec.align)
		if !found {
			t.Errorf("[spec %d] expected a size class for (size=%d, align=%d)", specIndex, spec.size, spec.align)
			continue
		}

		if class != spec.expClass || blockSizes[class] != spec.expClassSize {
			t.Errorf("[spec %d] expected class %d (%d bytes); got class %d (%d bytes)",
				specIndex, spec.expClass, spec.expClassSize, class, blockSizes[class])
		}
	}

	if _, found := sizeClassFor(4096, 8); found {
		t.Error("expected no size class for an oversized request")
	}
}

func TestFixedBlockAllocatorOversizedRequests(t *testing.T) {
	var a FixedBlockAllocator
	start, size := newBackedRegion(16384)
	a.Init(start, size)

	addr := a.Alloc(5000, 8)
	if addr == 0 {
		t.Fatal("expected oversized request to be served from the bump cursor")
	}

	// oversized blocks are not reclaimed; a second request gets fresh memory
	a.Dealloc(addr, 5000, 8)
	if addr2 := a.Alloc(5000, 8); addr2 == addr {
		t.Fatal("expected oversized allocations to never be reused")
	}
}

func TestFixedBlockAllocatorExhaustion(t *testing.T) {
	var a FixedBlockAllocator
	a.Init(newBackedRegion(64))

	if addr := a.Alloc(64, 8); addr == 0 {
		t.Fatal("unexpected allocation failure")
	}

	if addr := a.Alloc(64, 8); addr != 0 {
		t.Fatalf("expected out-of-memory; got allocation at %x", addr)
	}
}

func TestFixedBlockAllocatorFreeListsAreIndependent(t *testing.T) {
	var a FixedBlockAllocator
	a.Init(newBackedRegion(8192))

	small := a.Alloc(8, 8)
	large := a.Alloc(1024, 8)

	a.Dealloc(small, 8, 8)

	// freeing a small block must not satisfy a large request
	if addr := a.Alloc(1024, 8); addr == small || addr == large {
		t.Fatalf("expected a fresh 1024-byte block; got %x", addr)
	}

	a.Dealloc(large, 1024, 8)
	if addr := a.Alloc(512, 512); addr == large {
		t.Fatal("expected a 512-byte request to not dip into the 1024-byte free list")
	}
}
