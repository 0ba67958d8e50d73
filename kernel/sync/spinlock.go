// Package sync provides the synchronization primitives used by the kernel's
// memory subsystems.
package sync

import "sync/atomic"

// spinAttemptsBeforeYielding defines the number of failed acquisition
// attempts after which a spinning task yields the processor.
const spinAttemptsBeforeYielding = 64

var (
	// yieldFn is invoked while spinning on a contended lock. It is nil
	// until a scheduler capable of yielding is available; tests install
	// runtime.Gosched here to avoid deadlocks.
	yieldFn func()
)

// Spinlock implements a lock where each task trying to acquire it busy-waits
// till the lock becomes available.
type Spinlock struct {
	state uint32
}

// Acquire blocks until the lock can be acquired by the currently active task.
// Any attempt to re-acquire a lock already held by the current task will cause
// a deadlock.
func (l *Spinlock) Acquire() {
	for attempt := uint32(1); !atomic.CompareAndSwapUint32(&l.state, 0, 1); attempt++ {
		if attempt%spinAttemptsBeforeYielding == 0 && yieldFn != nil {
			yieldFn()
		}
	}
}

// TryToAcquire attempts to acquire the lock and returns true if the lock could
// be acquired or false otherwise.
func (l *Spinlock) TryToAcquire() bool {
	return atomic.SwapUint32(&l.state, 1) == 0
}

// Release relinquishes a held lock allowing other tasks to acquire it. Calling
// Release while the lock is free has no effect.
func (l *Spinlock) Release() {
	atomic.StoreUint32(&l.state, 0)
}
