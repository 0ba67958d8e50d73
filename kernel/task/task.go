// Package task implements the kernel's cooperative scheduler. A task is a
// suspendable computation that is repeatedly polled by the executor until it
// reports completion; a task that cannot make progress returns Pending and
// relies on being polled again later.
package task

// Poll is the result of polling a task once.
type Poll uint8

const (
	// Ready indicates that the task has run to completion.
	Ready Poll = iota

	// Pending indicates that the task is waiting on an external event
	// and should be polled again later.
	Pending
)

// Waker is the resumption handle a suspended task hands to an event source.
// Waking is a hint that the task may now be able to make progress; spurious
// wakeups are allowed.
type Waker struct {
	wakeFn func()
}

// NewWaker returns a Waker that invokes fn when woken.
func NewWaker(fn func()) *Waker {
	return &Waker{wakeFn: fn}
}

// Wake notifies the scheduler that the task owning this waker may be able to
// make progress.
func (w *Waker) Wake() {
	if w != nil && w.wakeFn != nil {
		w.wakeFn()
	}
}

// Context carries the polling environment into a task. Event sources the
// task blocks on register ctx.Waker to request a future re-poll.
type Context struct {
	Waker *Waker
}

// Task is a suspendable computation with no return value. Implementations
// keep their own state between polls and must only return Pending after
// arranging (via ctx.Waker) to eventually be polled again.
type Task interface {
	Poll(ctx *Context) Poll
}
