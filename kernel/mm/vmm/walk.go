package vmm

import (
	"unsafe"

	"github.com/humblenginr/go-os/kernel/mm"
)

var (
	// ptePtrFn returns a pointer to the supplied entry address. It is
	// used by tests to override the generated page table entry pointers so
	// walk() can be properly tested. When compiling the kernel this function
	// will be automatically inlined.
	ptePtrFn = func(entryAddr uintptr) unsafe.Pointer {
		return unsafe.Pointer(entryAddr)
	}
)

// pageTableWalker is a function that can be passed to the walk method. The
// function receives the current page level and page table entry as its
// arguments. If the function returns false, then the page walk is aborted.
type pageTableWalker func(pteLevel uint8, pte *pageTableEntry) bool

// walk performs a page table walk for the given virtual address, invoking
// walkFn with the page table entry that corresponds to each of the 4 page
// table levels. Each level's table is located by adding the linear physical
// memory offset to the frame recorded in the previous level's entry, so
// walkFn is free to install a new frame into a non-present entry and have
// the walk descend into it.
func (as *AddressSpace) walk(virtAddr uintptr, walkFn pageTableWalker) {
	var (
		level      uint8
		tableFrame = as.root
	)

	for level = 0; level < pageLevels; level++ {
		// Extract the bits from the virtual address that correspond to
		// the entry index in this level's page table.
		entryIndex := (virtAddr >> pageLevelShifts[level]) & ((1 << pageLevelBits[level]) - 1)

		// The table occupying tableFrame is accessible through the
		// linear physical memory mapping.
		tableAddr := as.physMemOffset + tableFrame.Address()
		entryAddr := tableAddr + (entryIndex << mm.PointerShift)

		pte := (*pageTableEntry)(ptePtrFn(entryAddr))
		if !walkFn(level, pte) {
			return
		}

		tableFrame = pte.Frame()
	}
}
