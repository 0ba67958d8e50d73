package vmm

import (
	"github.com/humblenginr/go-os/kernel"
	"github.com/humblenginr/go-os/kernel/mm"
)

var (
	// flushTLBEntryFn invalidates the TLB entry for a virtual address
	// whenever a mapping changes. The boot collaborator installs the real
	// invlpg wrapper via SetTLBFlushFn; until then flushes are no-ops,
	// which is also what tests want.
	flushTLBEntryFn = func(virtAddr uintptr) {}
)

// SetTLBFlushFn registers the function used to invalidate a single TLB entry
// after a mapping change.
func SetTLBFlushFn(fn func(virtAddr uintptr)) {
	flushTLBEntryFn = fn
}

// Map establishes a mapping between a virtual page and a physical memory
// frame. Missing intermediate page tables are allocated on demand using the
// frame allocator this AddressSpace was constructed with; each new table
// frame is zeroed through the linear physical memory mapping before use.
//
// As with Translate, running into a huge-page entry on the way down is
// fatal.
func (as *AddressSpace) Map(page mm.Page, frame mm.Frame, flags PageTableEntryFlag) *kernel.Error {
	var err *kernel.Error

	as.walk(page.Address(), func(pteLevel uint8, pte *pageTableEntry) bool {
		// If we reached the last level all we need to do is to map the
		// frame in place, apply the requested flags and flush the TLB
		// entry for the page.
		if pteLevel == pageLevels-1 {
			*pte = 0
			pte.SetFrame(frame)
			pte.SetFlags(flags)
			flushTLBEntryFn(page.Address())
			return true
		}

		if pte.HasFlags(FlagHugePage) {
			err = errNoHugePageSupport
			kernel.Panic(err)
			return false
		}

		// The next level table does not exist yet; allocate a frame
		// for it, wipe it and hook it into this entry.
		if !pte.HasFlags(FlagPresent) {
			newTableFrame, allocErr := as.allocFrame()
			if allocErr != nil {
				err = allocErr
				return false
			}

			kernel.Memset(as.physMemOffset+newTableFrame.Address(), 0, mm.PageSize)

			*pte = 0
			pte.SetFrame(newTableFrame)
			pte.SetFlags(FlagPresent | FlagRW)
		}

		return true
	})

	return err
}

// Unmap removes a mapping previously installed via a call to Map.
func (as *AddressSpace) Unmap(page mm.Page) *kernel.Error {
	var err *kernel.Error

	as.walk(page.Address(), func(pteLevel uint8, pte *pageTableEntry) bool {
		// If we reached the last level all we need to do is to clear
		// the present flag and flush the TLB entry.
		if pteLevel == pageLevels-1 {
			pte.ClearFlags(FlagPresent)
			flushTLBEntryFn(page.Address())
			return true
		}

		// Next table is not present; this is an invalid mapping.
		if !pte.HasFlags(FlagPresent) {
			err = ErrNotMapped
			return false
		}

		if pte.HasFlags(FlagHugePage) {
			err = errNoHugePageSupport
			kernel.Panic(err)
			return false
		}

		return true
	})

	return err
}
