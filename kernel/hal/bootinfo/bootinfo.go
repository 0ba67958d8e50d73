// Package bootinfo defines the read-only memory map handed over by the boot
// collaborator. The map describes which physical memory ranges the firmware
// reports as usable; the frame allocator treats it as the single source of
// truth for physical memory.
package bootinfo

import "github.com/humblenginr/go-os/kernel/kfmt"

// MemoryKind defines the type of a memory map region.
type MemoryKind uint32

const (
	// MemUsable indicates that the memory region is available for use.
	MemUsable MemoryKind = iota + 1

	// MemReserved indicates that the memory region is not available for use.
	MemReserved

	// MemACPIReclaimable indicates a memory region holding ACPI info that
	// can be reused once the tables have been parsed.
	MemACPIReclaimable

	// MemNVS indicates memory that must be preserved when hibernating.
	MemNVS
)

// String implements fmt.Stringer for MemoryKind.
func (k MemoryKind) String() string {
	switch k {
	case MemUsable:
		return "usable"
	case MemReserved:
		return "reserved"
	case MemACPIReclaimable:
		return "ACPI (reclaimable)"
	case MemNVS:
		return "NVS"
	default:
		return "unknown"
	}
}

// MemoryRegion describes a physical memory range reported by the firmware.
// The range covers [Start, End) and is not necessarily page-aligned.
type MemoryRegion struct {
	Start uintptr
	End   uintptr
	Kind  MemoryKind
}

// MemoryMap is the ordered sequence of memory regions supplied by the boot
// collaborator. It is treated as read-only by every kernel subsystem.
type MemoryMap []MemoryRegion

// RegionVisitor is invoked by Visit for each region in the map. The visitor
// must return true to continue the scan or false to abort it.
type RegionVisitor func(region *MemoryRegion) bool

// Visit invokes the supplied visitor for each region in the memory map in
// order.
func (m MemoryMap) Visit(visit RegionVisitor) {
	for i := range m {
		if !visit(&m[i]) {
			return
		}
	}
}

// Print dumps the memory map and the total amount of usable memory via kfmt.
func (m MemoryMap) Print() {
	var totalUsable uintptr

	kfmt.Printf("[bootinfo] system memory map:\n")
	m.Visit(func(region *MemoryRegion) bool {
		kfmt.Printf("\t[0x%10x - 0x%10x], size: %10d, type: %s\n",
			region.Start, region.End, uint64(region.End-region.Start), region.Kind.String())

		if region.Kind == MemUsable {
			totalUsable += region.End - region.Start
		}
		return true
	})
	kfmt.Printf("[bootinfo] available memory: %dKb\n", uint64(totalUsable/1024))
}
