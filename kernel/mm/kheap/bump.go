package kheap

import "github.com/humblenginr/go-os/kernel/sync"

// BumpAllocator is the simplest possible heap allocator: a cursor that only
// ever moves forward through the heap region.
//
//	      next->
//	----------------------------
//	|xxxxx|    unused space    |
//	----------------------------
//	^heapStart                 ^heapEnd
//
// Individual allocations cannot be reclaimed; instead the allocator counts
// live allocations and resets the cursor back to heapStart once the count
// drops to zero, reclaiming the whole region in one step. Callers must not
// retain references to a block past its Dealloc call; the allocator cannot
// enforce this.
//
// The allocator state is shared by every code path that requests dynamic
// memory, so all accesses happen under a spinlock. The interrupt-facing
// event bridge never allocates, by construction, so the lock can never
// deadlock against an interrupt handler.
type BumpAllocator struct {
	mu sync.Spinlock

	heapStart uintptr
	heapEnd   uintptr

	// next points at the boundary between used and unused heap memory.
	// Invariant: heapStart <= next <= heapEnd.
	next uintptr

	// allocations tracks the number of live allocations.
	allocations uint64
}

// Init binds the allocator to the heap region [heapStart, heapStart+heapSize).
// The caller must guarantee that the region is mapped and writable.
func (a *BumpAllocator) Init(heapStart, heapSize uintptr) {
	a.mu.Acquire()
	a.heapStart = heapStart
	a.heapEnd = heapStart + heapSize
	a.next = heapStart
	a.allocations = 0
	a.mu.Release()
}

// Alloc reserves size bytes aligned to align and returns the block address,
// or 0 if the remaining heap space cannot satisfy the request. align must be
// a power of two. A failed request leaves the allocator state untouched.
func (a *BumpAllocator) Alloc(size, align uintptr) uintptr {
	a.mu.Acquire()
	defer a.mu.Release()

	allocStart := alignUp(a.next, align)
	allocEnd := allocStart + size
	if allocEnd < allocStart {
		// size overflows the address space
		return 0
	}

	if allocEnd > a.heapEnd {
		return 0
	}

	a.next = allocEnd
	a.allocations++
	return allocStart
}

// Dealloc releases a block previously returned by Alloc. Individual blocks
// are not reusable; once the live allocation count returns to zero the
// entire region is reclaimed by resetting the cursor to the heap start.
func (a *BumpAllocator) Dealloc(addr, size, align uintptr) {
	a.mu.Acquire()
	defer a.mu.Release()

	a.allocations--
	if a.allocations == 0 {
		a.next = a.heapStart
	}
}
