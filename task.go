package threadpool

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Handler is the unit of blocking work. It runs on a worker goroutine with
// the worker's logger and must communicate its outcome by mutating ctx; it
// must not touch reactor-owned state.
type Handler func(ctx any, log zerolog.Logger)

// Event is the completion record embedded in every Task. It is what the
// reactor hands to application code once the task has finished.
type Event struct {
	// Active is true from the instant a post succeeds until the reactor is
	// about to invoke Handler. A task must not be re-posted while Active.
	Active bool

	// Complete is set to true immediately before Handler is invoked.
	Complete bool

	// Handler is the caller-supplied completion callback. It executes on
	// the reactor goroutine and must not block.
	Handler func(*Event)

	// Data is an opaque value for the completion callback, conventionally
	// the task context.
	Data any
}

// Task is a unit of deferred work. The caller owns Ctx for the task's whole
// lifetime; the pool never retains a task after its completion callback has
// returned, so tasks may be reused once Event.Active is false again.
type Task struct {
	// Ctx carries inputs into Handler and outputs out of it. The posting
	// act and the completion delivery establish the happens-before edges
	// that make access from the worker and then the reactor safe; touching
	// Ctx from the reactor side while Event.Active is true is a contract
	// violation.
	Ctx any

	// Handler runs on a worker goroutine.
	Handler Handler

	// Event is the embedded completion record.
	Event Event

	id uint64

	// next is the single intrusive link shared by the submission and
	// completion queues; a task is in at most one queue at a time.
	next atomic.Pointer[Task]
}

// ID returns the pool-scoped identifier assigned at post time. It is
// strictly increasing per pool and intended for logging only.
func (t *Task) ID() uint64 { return t.id }

// TaskAlloc allocates a task together with a zeroed context value of type C.
// The context is wired into both Ctx and Event.Data, mirroring the common
// pattern of recovering the context from the completion event.
func TaskAlloc[C any]() (*Task, *C) {
	c := new(C)
	t := &Task{Ctx: c}
	t.Event.Data = c
	return t, c
}
