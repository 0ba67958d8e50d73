package kheap

import (
	"unsafe"

	"github.com/humblenginr/go-os/kernel/sync"
)

// blockSizes lists the block size classes managed by the fixed-block
// allocator. Each size is a power of two, which makes the class size double
// as the block alignment. Sizes must appear in increasing order.
var blockSizes = [...]uintptr{8, 16, 32, 64, 128, 256, 512, 1024, 2048}

// freeListNode is the header written into a freed block. Reusing the freed
// memory itself for bookkeeping is what keeps the allocator metadata-free;
// it also means every block must be large enough to hold a pointer, which
// the smallest size class guarantees.
type freeListNode struct {
	next *freeListNode
}

// FixedBlockAllocator is the incremental-reclamation evolution of the bump
// allocator, behind the same Alloc/Dealloc contract. Requests are rounded up
// to a size class and served from a per-class free list of previously freed
// blocks; class misses and oversized requests fall back to an internal bump
// cursor over the unstructured tail of the heap region.
//
// Unlike BumpAllocator, the region handed to Init must be real, writable,
// mapped memory: freed blocks store the free list links inside themselves.
type FixedBlockAllocator struct {
	mu sync.Spinlock

	// listHeads holds one free list per entry in blockSizes.
	listHeads [len(blockSizes)]*freeListNode

	heapStart uintptr
	heapEnd   uintptr
	next      uintptr
}

// Init binds the allocator to the heap region [heapStart, heapStart+heapSize).
// The caller must guarantee that the region is mapped and writable.
func (a *FixedBlockAllocator) Init(heapStart, heapSize uintptr) {
	a.mu.Acquire()
	for i := range a.listHeads {
		a.listHeads[i] = nil
	}
	a.heapStart = heapStart
	a.heapEnd = heapStart + heapSize
	a.next = heapStart
	a.mu.Release()
}

// Alloc reserves size bytes aligned to align and returns the block address,
// or 0 if the request cannot be satisfied. align must be a power of two.
func (a *FixedBlockAllocator) Alloc(size, align uintptr) uintptr {
	a.mu.Acquire()
	defer a.mu.Release()

	class, found := sizeClassFor(size, align)
	if !found {
		// oversized request; served straight from the bump cursor
		return a.bumpAlloc(size, align)
	}

	if node := a.listHeads[class]; node != nil {
		a.listHeads[class] = node.next
		return uintptr(unsafe.Pointer(node))
	}

	// No freed block of this class around: carve a fresh one. Block size
	// doubles as block alignment.
	return a.bumpAlloc(blockSizes[class], blockSizes[class])
}

// Dealloc returns a block previously obtained through Alloc to its size
// class free list, making it immediately reusable. Oversized blocks carved
// from the bump cursor are not reclaimed.
func (a *FixedBlockAllocator) Dealloc(addr, size, align uintptr) {
	a.mu.Acquire()
	defer a.mu.Release()

	class, found := sizeClassFor(size, align)
	if !found {
		return
	}

	node := (*freeListNode)(unsafe.Pointer(addr))
	node.next = a.listHeads[class]
	a.listHeads[class] = node
}

// bumpAlloc carves a fresh block from the unstructured tail of the region.
// Callers must hold the allocator lock.
func (a *FixedBlockAllocator) bumpAlloc(size, align uintptr) uintptr {
	allocStart := alignUp(a.next, align)
	allocEnd := allocStart + size
	if allocEnd < allocStart || allocEnd > a.heapEnd {
		return 0
	}

	a.next = allocEnd
	return allocStart
}

// sizeClassFor returns the smallest size class that can hold a block of the
// given size and alignment.
func sizeClassFor(size, align uintptr) (int, bool) {
	required := size
	if align > required {
		required = align
	}

	for class, blockSize := range blockSizes {
		if blockSize >= required {
			return class, true
		}
	}

	return 0, false
}
