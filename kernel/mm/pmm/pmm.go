// Package pmm implements the boot-time physical frame allocator.
//
// The allocator hands out page frames carved out of the usable regions of
// the firmware memory map. Allocations are tracked by a single monotonically
// increasing cursor and frames are never returned: everything allocated here
// (page tables and the kernel heap) lives for the lifetime of the kernel.
package pmm

import (
	"github.com/humblenginr/go-os/kernel"
	"github.com/humblenginr/go-os/kernel/hal/bootinfo"
	"github.com/humblenginr/go-os/kernel/mm"
)

// ErrOutOfMemory is returned by AllocFrame when the usable frame list has
// been exhausted.
var ErrOutOfMemory = &kernel.Error{Module: "pmm", Message: "out of physical memory"}

// BootFrameAllocator is a rudimentary physical frame allocator backed by the
// memory map supplied by the boot collaborator. It performs a linear scan of
// the usable regions on every call which is acceptable for the bounded
// number of boot-time allocations it serves.
type BootFrameAllocator struct {
	memoryMap bootinfo.MemoryMap

	// next indexes into the flattened sequence of usable frames derived
	// from the memory map.
	next uint64
}

// Init binds the allocator to the supplied memory map and resets its
// allocation cursor.
func (alloc *BootFrameAllocator) Init(memoryMap bootinfo.MemoryMap) {
	alloc.memoryMap = memoryMap
	alloc.next = 0
}

// AllocFrame reserves and returns the next usable frame. Regions not marked
// usable are skipped and region bounds are rounded inward so that only
// frames fully contained in a usable region are ever handed out.
//
// AllocFrame returns ErrOutOfMemory once the usable frame sequence is
// exhausted; every subsequent call keeps reporting exhaustion.
func (alloc *BootFrameAllocator) AllocFrame() (mm.Frame, *kernel.Error) {
	var (
		frame   = mm.InvalidFrame
		skipped uint64
	)

	alloc.memoryMap.Visit(func(region *bootinfo.MemoryRegion) bool {
		if region.Kind != bootinfo.MemUsable {
			return true
		}

		// Round the region start up and the region end down to whole
		// frames; a sub-page sliver at either end is not allocatable.
		firstFrame := mm.FrameFromAddress(region.Start + mm.PageSize - 1)
		endFrame := uint64(region.End >> mm.PageShift)

		var frameCount uint64
		if endFrame > uint64(firstFrame) {
			frameCount = endFrame - uint64(firstFrame)
		}

		if alloc.next-skipped < frameCount {
			frame = firstFrame + mm.Frame(alloc.next-skipped)
			return false
		}

		skipped += frameCount
		return true
	})

	if !frame.Valid() {
		return mm.InvalidFrame, ErrOutOfMemory
	}

	alloc.next++
	return frame, nil
}

// AllocatedFrameCount returns the number of frames handed out so far.
func (alloc *BootFrameAllocator) AllocatedFrameCount() uint64 {
	return alloc.next
}
