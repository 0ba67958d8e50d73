// Package vmm provides the virtual memory manager: a page table walker
// bound to the linear physical memory mapping established by the boot
// collaborator, plus the machinery to translate virtual addresses and
// install new page mappings.
package vmm

import "github.com/humblenginr/go-os/kernel/mm"

// AddressSpace models an active 4-level page table hierarchy. Page table
// frames are accessed through the linear physical memory mapping installed
// by the boot collaborator: physical address P is reachable at virtual
// address physMemOffset + P.
//
// AddressSpace methods perform no internal locking; the caller must
// guarantee that no other code mutates the same table hierarchy
// concurrently.
type AddressSpace struct {
	// physMemOffset is the virtual address where the linear mapping of
	// physical memory begins.
	physMemOffset uintptr

	// root is the frame holding the top-level (P4) page table.
	root mm.Frame

	// allocFrame provides physical frames for missing intermediate page
	// tables created by Map.
	allocFrame mm.FrameAllocatorFn
}

// NewAddressSpace returns an AddressSpace bound to the supplied physical
// memory offset, top-level table frame and frame allocator. It must be
// invoked exactly once by the boot code before any dynamic memory is set up.
func NewAddressSpace(physMemOffset uintptr, root mm.Frame, allocFrame mm.FrameAllocatorFn) AddressSpace {
	return AddressSpace{
		physMemOffset: physMemOffset,
		root:          root,
		allocFrame:    allocFrame,
	}
}

// PhysMemOffset returns the virtual address where the linear physical memory
// mapping begins.
func (as *AddressSpace) PhysMemOffset() uintptr {
	return as.physMemOffset
}
