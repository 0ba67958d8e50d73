package vmm

const (
	// pageLevels indicates the number of page table levels supported by
	// the amd64 architecture. The walk code assumes exactly this many
	// levels; huge pages that would terminate the walk early are treated
	// as a fatal misconfiguration.
	pageLevels = 4

	// ptePhysPageMask is a mask that allows us to extract the physical memory
	// address pointed to by a page table entry. For this particular architecture,
	// bits 12-51 contain the physical memory address.
	ptePhysPageMask = uintptr(0x000ffffffffff000)
)

var (
	// pageLevelBits defines the number of virtual address bits that correspond to each
	// page level. For the amd64 architecture each page level uses 9 bits which amounts to
	// 512 entries for each page level.
	pageLevelBits = [pageLevels]uint8{
		9,
		9,
		9,
		9,
	}

	// pageLevelShifts defines the shift required to access each page table component
	// of a virtual address.
	pageLevelShifts = [pageLevels]uint8{
		39,
		30,
		21,
		12,
	}
)

const (
	// FlagPresent is set when the page is available in memory and not swapped out.
	FlagPresent PageTableEntryFlag = 1 << 0

	// FlagRW is set if the page can be written to.
	FlagRW PageTableEntryFlag = 1 << 1

	// FlagHugePage is set on P3/P2 entries that map a 1G/2M page directly
	// instead of pointing to a next-level table. This kernel only supports
	// standard 4K page granularity.
	FlagHugePage PageTableEntryFlag = 1 << 7
)
