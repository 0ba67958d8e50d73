// Package mm defines the basic memory management types shared by the
// physical and virtual memory subsystems.
package mm

import (
	"math"

	"github.com/humblenginr/go-os/kernel"
)

// Frame describes a physical memory page index.
type Frame uintptr

const (
	// InvalidFrame is returned by frame allocators when
	// they fail to reserve the requested frame.
	InvalidFrame = Frame(math.MaxUint64)
)

// Valid returns true if this is a valid frame.
func (f Frame) Valid() bool {
	return f != InvalidFrame
}

// Address returns the physical memory address where this Frame begins.
func (f Frame) Address() uintptr {
	return uintptr(f << PageShift)
}

// FrameFromAddress returns the Frame that contains the given physical
// address. Addresses that are not page-aligned are rounded down to the frame
// that contains them.
func FrameFromAddress(physAddr uintptr) Frame {
	return Frame((physAddr & ^(PageSize - 1)) >> PageShift)
}

// Page describes a virtual memory page index.
type Page uintptr

// Address returns the virtual memory address where this Page begins.
func (p Page) Address() uintptr {
	return uintptr(p << PageShift)
}

// PageFromAddress returns the Page that contains the given virtual address.
// Addresses that are not page-aligned are rounded down to the page that
// contains them.
func PageFromAddress(virtAddr uintptr) Page {
	return Page((virtAddr & ^(PageSize - 1)) >> PageShift)
}

// FrameAllocatorFn is a function that can allocate physical frames. The
// virtual memory and heap subsystems receive an allocator capability of this
// type at initialization time instead of reaching for a package-level
// allocator.
type FrameAllocatorFn func() (Frame, *kernel.Error)
