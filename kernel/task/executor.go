package task

// Executor drives a FIFO run queue of tasks to completion on a single
// logical thread. It never sleeps: a task that reports Pending goes straight
// to the back of the queue and is re-polled once everything ahead of it has
// had its turn. This busy-polling policy trades CPU efficiency for
// simplicity; the event bridge's wakeup protocol does not depend on it, so a
// waker-driven executor can replace this one without touching any task.
type Executor struct {
	runQueue []Task
}

// Spawn appends a task to the tail of the run queue. Tasks are polled in
// spawn order. Spawning after Run has returned is allowed; the next Run call
// picks the task up.
func (e *Executor) Spawn(t Task) {
	e.runQueue = append(e.runQueue, t)
}

// Run polls queued tasks in FIFO order until the run queue empties:
// completed tasks are discarded, pending ones are re-queued at the tail.
// With a long-lived task spawned (e.g. the keyboard consumer) Run
// effectively never returns.
func (e *Executor) Run() {
	// The executor never parks, so a no-op waker is sufficient: pending
	// tasks are unconditionally re-polled anyway.
	ctx := Context{Waker: NewWaker(nil)}

	for len(e.runQueue) > 0 {
		t := e.runQueue[0]
		e.runQueue = e.runQueue[1:]

		if t.Poll(&ctx) == Pending {
			e.runQueue = append(e.runQueue, t)
		}
	}
}

// QueuedTaskCount returns the number of tasks currently in the run queue.
func (e *Executor) QueuedTaskCount() int {
	return len(e.runQueue)
}
