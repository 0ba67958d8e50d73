// Package kheap sets up the kernel heap region and provides the dynamic
// memory allocators that serve it.
package kheap

import (
	"github.com/humblenginr/go-os/kernel"
	"github.com/humblenginr/go-os/kernel/mm"
	"github.com/humblenginr/go-os/kernel/mm/vmm"
)

const (
	// HeapStart is the fixed virtual address where the kernel heap
	// begins. The range is chosen so it can never collide with the
	// kernel image or the linear physical memory mapping.
	HeapStart = uintptr(0x444444440000)

	// HeapSize defines the size of the kernel heap in bytes.
	HeapSize = uintptr(100 * 1024)
)

// InitHeap backs the fixed heap region with physical memory and initializes
// the supplied allocator over it. Every page covering the region is mapped
// present and writable with a frame from allocFrame.
//
// A frame allocation failure aborts initialization and propagates the
// allocator's error; no rollback of already-mapped pages is attempted since
// heap initialization failure is fatal to the boot sequence.
func InitHeap(as *vmm.AddressSpace, allocFrame mm.FrameAllocatorFn, heap *BumpAllocator) *kernel.Error {
	if err := mapRegion(as, allocFrame, HeapStart, HeapSize); err != nil {
		return err
	}

	heap.Init(HeapStart, HeapSize)
	return nil
}

// mapRegion maps the inclusive page range covering [start, start+size-1]
// using frames obtained from allocFrame.
func mapRegion(as *vmm.AddressSpace, allocFrame mm.FrameAllocatorFn, start, size uintptr) *kernel.Error {
	var (
		firstPage = mm.PageFromAddress(start)
		lastPage  = mm.PageFromAddress(start + size - 1)
	)

	for page := firstPage; page <= lastPage; page++ {
		frame, err := allocFrame()
		if err != nil {
			return err
		}

		if err = as.Map(page, frame, vmm.FlagPresent|vmm.FlagRW); err != nil {
			return err
		}
	}

	return nil
}

// alignUp rounds addr up to the next multiple of align. align must be a
// power of two.
func alignUp(addr, align uintptr) uintptr {
	return (addr + align - 1) &^ (align - 1)
}
