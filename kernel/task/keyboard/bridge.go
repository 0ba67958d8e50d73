// Package keyboard implements the interrupt-safe bridge between the
// keyboard interrupt handler and the task that consumes scancodes.
//
// The producer side runs in interrupt context and must never block or
// allocate; it talks to the consumer exclusively through a fixed-capacity
// lock-free ring and a single-slot wakeup signal. The consumer side is an
// ordinary task polled by the executor.
package keyboard

import (
	"sync/atomic"

	"github.com/humblenginr/go-os/kernel"
	"github.com/humblenginr/go-os/kernel/kfmt"
	"github.com/humblenginr/go-os/kernel/task"
)

// ringCapacity defines the number of scancodes the bridge can buffer. It
// must be a power of 2 so the ring indices can wrap with a mask.
const ringCapacity = 128

// ErrStreamAlreadyOpen is returned when OpenStream is invoked more than once
// on the same bridge. There is exactly one scancode consumer.
var ErrStreamAlreadyOpen = &kernel.Error{Module: "keyboard", Message: "scancode stream is already open"}

// scancodeRing is a bounded single-producer/single-consumer ring buffer.
// head and tail are free-running counters; their difference is the number of
// buffered items. Only the producer advances tail and only the consumer
// advances head, so a full/empty check by either side is conservative at
// worst, never wrong.
type scancodeRing struct {
	buf  [ringCapacity]byte
	head atomic.Uint32
	tail atomic.Uint32
}

// push appends a scancode and reports whether there was room for it. It
// never blocks and touches no memory outside the ring.
func (r *scancodeRing) push(code byte) bool {
	tail := r.tail.Load()
	if tail-r.head.Load() == ringCapacity {
		return false
	}

	r.buf[tail&(ringCapacity-1)] = code
	r.tail.Store(tail + 1)
	return true
}

// pop removes and returns the oldest buffered scancode.
func (r *scancodeRing) pop() (byte, bool) {
	head := r.head.Load()
	if head == r.tail.Load() {
		return 0, false
	}

	code := r.buf[head&(ringCapacity-1)]
	r.head.Store(head + 1)
	return code, true
}

// atomicWaker is a single-slot, overwrite-safe cell holding the resumption
// handle of the (single) suspended consumer.
type atomicWaker struct {
	w atomic.Pointer[task.Waker]
}

// Register stores w, overwriting any stale previous registration.
func (aw *atomicWaker) Register(w *task.Waker) {
	aw.w.Store(w)
}

// Take clears and returns the registered waker, if any.
func (aw *atomicWaker) Take() *task.Waker {
	return aw.w.Swap(nil)
}

// Wake consumes the registered waker and wakes it. Each successful producer
// push wakes the current registration exactly once.
func (aw *atomicWaker) Wake() {
	if w := aw.w.Swap(nil); w != nil {
		w.Wake()
	}
}

// Bridge is the shared state between the keyboard interrupt handler and the
// scancode stream. The zero value is ready for use by the producer side;
// scancodes arriving before OpenStream are dropped.
type Bridge struct {
	ring   scancodeRing
	waker  atomicWaker
	opened atomic.Bool

	// dropped counts scancodes lost to a full or not-yet-open queue.
	dropped atomic.Uint64
}

// PutScancode hands a raw scancode from the interrupt handler to the
// consumer task. It is the only entry point meant to be called from
// interrupt context: it never blocks, never allocates and takes no locks.
//
// Scancodes pushed while the stream is not yet open, or while the ring is
// full, are dropped (newest-first) and reported via a diagnostic; delivery
// is at-most-once by design. Every successfully buffered scancode wakes the
// currently registered consumer.
func (b *Bridge) PutScancode(code byte) {
	if !b.opened.Load() {
		b.dropped.Add(1)
		kfmt.Printf("[keyboard] warning: scancode queue uninitialized; dropping keyboard input\n")
		return
	}

	if !b.ring.push(code) {
		b.dropped.Add(1)
		kfmt.Printf("[keyboard] warning: scancode queue full; dropping keyboard input\n")
		return
	}

	b.waker.Wake()
}

// DroppedScancodeCount returns the number of scancodes dropped so far.
func (b *Bridge) DroppedScancodeCount() uint64 {
	return b.dropped.Load()
}

// OpenStream marks the bridge ready for consumption and returns the single
// scancode stream reading from it. Calling OpenStream a second time is a
// programming error.
func (b *Bridge) OpenStream() (*ScancodeStream, *kernel.Error) {
	if !b.opened.CompareAndSwap(false, true) {
		return nil, ErrStreamAlreadyOpen
	}

	return &ScancodeStream{bridge: b}, nil
}

// ScancodeStream is the consumer end of the bridge, to be polled from a
// task managed by the executor.
type ScancodeStream struct {
	bridge *Bridge
}

// registerWakerFn is overridden by tests so a producer push can be
// interleaved between the consumer's failed fast-path pop and its waker
// registration. When compiling the kernel this function will be
// automatically inlined.
var registerWakerFn = func(aw *atomicWaker, w *task.Waker) {
	aw.Register(w)
}

// PollScancode attempts to pull the next scancode without blocking. If the
// ring is empty the stream registers ctx.Waker and re-checks the ring once
// more before reporting Pending.
//
// The re-check is what closes the race against the producer: a scancode
// pushed between the first (failed) pop and the waker registration has
// already consumed-or-missed the registration, so without the second pop it
// would sit in the ring with nobody left to wake, stalling the consumer
// forever.
func (s *ScancodeStream) PollScancode(ctx *task.Context) (byte, task.Poll) {
	// fast path
	if code, ok := s.bridge.ring.pop(); ok {
		return code, task.Ready
	}

	registerWakerFn(&s.bridge.waker, ctx.Waker)

	if code, ok := s.bridge.ring.pop(); ok {
		// the item arrived during registration; withdraw it and
		// return without suspending
		s.bridge.waker.Take()
		return code, task.Ready
	}

	return 0, task.Pending
}
