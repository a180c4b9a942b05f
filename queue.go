package threadpool

import (
	"runtime"
	"sync/atomic"
)

// linkSpin bounds the spin on a not-yet-visible next link before falling
// back to a scheduler yield; a pure spin risks livelock on a single core.
const linkSpin = 64

// taskQueue is an intrusive lock-free FIFO represented by two atomic words.
// first points at the head task; lastP holds the address of the link slot
// the next appended task must be stored through: &q.first while the queue is
// empty, &tail.next otherwise.
//
// The same structure backs both the submission queue (multi-producer via
// enqueue, multi-consumer via pop) and the completion queue (multi-producer
// via enqueue, single consumer via drain).
type taskQueue struct {
	first atomic.Pointer[Task]
	lastP atomic.Pointer[atomic.Pointer[Task]]
}

func (q *taskQueue) init() {
	q.first.Store(nil)
	q.lastP.Store(&q.first)
}

// enqueue appends a task. The lastP CAS serializes concurrent producers:
// each claims exactly one link slot and stores through it, so a CAS loser
// re-loads and retries instead of touching the head. While the queue is
// empty the claimed slot is the head itself. Clearing the link before the
// CAS publishes t.next == nil to consumers ahead of the list write.
func (q *taskQueue) enqueue(t *Task) {
	t.next.Store(nil)

	for {
		lp := q.lastP.Load()
		if q.lastP.CompareAndSwap(lp, &t.next) {
			lp.Store(t)
			return
		}
	}
}

// pop removes and returns the head task on the submission side. The caller
// must hold a semaphore grant, which guarantees a task has been (or is about
// to become) visible; pop spins through the transient window between the
// grant and the producer's link write.
func (q *taskQueue) pop() *Task {
	for {
		task := q.first.Load()
		if task == nil {
			// The semaphore post raced ahead of the producer's link write.
			runtime.Gosched()
			continue
		}

		if !q.first.CompareAndSwap(task, task.next.Load()) {
			continue
		}

		if q.first.Load() == nil {
			// The queue may be transitioning to empty: reset lastP back to
			// the head slot unless a producer has already appended past task.
			if q.lastP.Load() != &task.next ||
				!q.lastP.CompareAndSwap(&task.next, &q.first) {

				next := task.next.Load()
				for i := 0; next == nil && i < linkSpin; i++ {
					next = task.next.Load()
				}

				if next == nil {
					// The appended task is not visible yet; put the head
					// back and retry.
					q.first.Store(task)
					runtime.Gosched()
					continue
				}

				q.first.Store(next)
			}
		}

		return task
	}
}

// drain removes and returns the head task on the completion side, or nil if
// the queue is empty. Single consumer only. If a producer is mid-append when
// the queue would go empty, the head task is put back and nil is returned;
// the producer's wake-up will trigger another drain.
func (q *taskQueue) drain() *Task {
	task := q.first.Load()
	if task == nil {
		return nil
	}

	q.first.Store(task.next.Load())

	if q.first.Load() == nil {
		if q.lastP.Load() != &task.next ||
			!q.lastP.CompareAndSwap(&task.next, &q.first) {

			q.first.Store(task)
			return nil
		}
	}

	return task
}
