package kheap

import (
	"testing"
	"unsafe"

	"github.com/humblenginr/go-os/kernel"
	"github.com/humblenginr/go-os/kernel/mm"
	"github.com/humblenginr/go-os/kernel/mm/vmm"
)

// testFrameSource hands out page-aligned zeroed frames backed by a Go slab
// so the page mapper operates on real memory with a zero physical offset.
type testFrameSource struct {
	slab       []byte
	base       uintptr
	frameCount int
	next       int
}

func newTestFrameSource(frameCount int) *testFrameSource {
	slab := make([]byte, (frameCount+1)*int(mm.PageSize))
	base := (uintptr(unsafe.Pointer(&slab[0])) + mm.PageSize - 1) &^ (mm.PageSize - 1)

	return &testFrameSource{
		slab:       slab,
		base:       base,
		frameCount: frameCount,
	}
}

func (src *testFrameSource) AllocFrame() (mm.Frame, *kernel.Error) {
	if src.next >= src.frameCount {
		return mm.InvalidFrame, &kernel.Error{Module: "test", Message: "out of test frames"}
	}

	frame := mm.FrameFromAddress(src.base + uintptr(src.next)*mm.PageSize)
	src.next++
	return frame, nil
}

func TestInitHeap(t *testing.T) {
	// the 100Kb heap needs 25 page frames plus 3 intermediate tables
	src := newTestFrameSource(32)
	root, _ := src.AllocFrame()
	as := vmm.NewAddressSpace(0, root, src.AllocFrame)

	var heap BumpAllocator
	if err := InitHeap(&as, src.AllocFrame, &heap); err != nil {
		t.Fatal(err)
	}

	// every page of the heap region must now be mapped
	for addr := HeapStart; addr < HeapStart+HeapSize; addr += mm.PageSize {
		if _, err := as.Translate(addr); err != nil {
			t.Fatalf("expected heap page at %x to be mapped; got %v", addr, err)
		}
	}

	// ... and the allocator must serve from the region start
	if addr := heap.Alloc(100, 8); addr != HeapStart {
		t.Fatalf("expected first heap allocation at %x; got %x", HeapStart, addr)
	}
}

func TestInitHeapPropagatesFrameExhaustion(t *testing.T) {
	// enough frames for the page tables and a few heap pages, but not all
	src := newTestFrameSource(8)
	root, _ := src.AllocFrame()
	as := vmm.NewAddressSpace(0, root, src.AllocFrame)

	var heap BumpAllocator
	err := InitHeap(&as, src.AllocFrame, &heap)
	if err == nil {
		t.Fatal("expected InitHeap to fail when the frame allocator is exhausted")
	}

	if exp := "out of test frames"; err.Message != exp {
		t.Fatalf("expected the frame allocator error to propagate; got %v", err)
	}
}

func TestEndToEndHeapOverSinglePage(t *testing.T) {
	src := newTestFrameSource(8)
	root, _ := src.AllocFrame()
	as := vmm.NewAddressSpace(0, root, src.AllocFrame)

	heapStart := uintptr(0x200000000000)
	if err := mapRegion(&as, src.AllocFrame, heapStart, mm.PageSize); err != nil {
		t.Fatal(err)
	}

	var heap BumpAllocator
	heap.Init(heapStart, mm.PageSize)

	addr := heap.Alloc(100, 8)
	if addr != heapStart {
		t.Fatalf("expected a 100-byte buffer at the heap start %x; got %x", heapStart, addr)
	}

	// the backing page is real slab memory here, so the buffer is usable
	physAddr, err := as.Translate(addr)
	if err != nil {
		t.Fatal(err)
	}

	buf := unsafe.Slice((*byte)(unsafe.Pointer(physAddr)), 100)
	for i := range buf {
		buf[i] = byte(i)
	}

	if buf[99] != 99 {
		t.Fatal("expected the allocated buffer to be writable through its mapping")
	}
}
