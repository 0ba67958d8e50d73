package vmm

import (
	"github.com/humblenginr/go-os/kernel"
	"github.com/humblenginr/go-os/kernel/mm"
)

var (
	// ErrNotMapped is returned when looking up a virtual memory address
	// that is not yet mapped.
	ErrNotMapped = &kernel.Error{Module: "vmm", Message: "virtual address does not point to a mapped physical page"}

	errNoHugePageSupport = &kernel.Error{Module: "vmm", Message: "huge pages are not supported"}
)

// Translate returns the physical address that corresponds to the supplied
// virtual address or ErrNotMapped if the virtual address does not correspond
// to a mapped physical address.
//
// Encountering a huge-page entry during the walk is a fatal condition: this
// kernel assumes standard 4K page granularity everywhere and a huge page
// indicates a page table hierarchy it cannot reason about.
func (as *AddressSpace) Translate(virtAddr uintptr) (uintptr, *kernel.Error) {
	var (
		physAddr uintptr
		err      *kernel.Error
	)

	as.walk(virtAddr, func(pteLevel uint8, pte *pageTableEntry) bool {
		if !pte.HasFlags(FlagPresent) {
			err = ErrNotMapped
			return false
		}

		if pteLevel < pageLevels-1 && pte.HasFlags(FlagHugePage) {
			err = errNoHugePageSupport
			kernel.Panic(err)
			return false
		}

		if pteLevel == pageLevels-1 {
			// Calculate the physical address by taking the physical
			// frame address and appending the offset bits from the
			// virtual address.
			physAddr = pte.Frame().Address() + PageOffset(virtAddr)
		}

		return true
	})

	if err != nil {
		return 0, err
	}

	return physAddr, nil
}

// PageOffset returns the offset within the page specified by a virtual
// address.
func PageOffset(virtAddr uintptr) uintptr {
	return virtAddr & (mm.PageSize - 1)
}
