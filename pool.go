package threadpool

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/ygrebnov/errorc"

	"github.com/dispbd/threadpool/metrics"
	"github.com/dispbd/threadpool/reactor"
)

// Parameters of the reserved "default" pool, also used by New when no
// explicit options are given.
const (
	DefaultName     = "default"
	DefaultThreads  = 32
	DefaultMaxQueue = 65536
)

// Instrument names recorded by every pool.
const (
	MetricTasksPosted    = "threadpool.tasks.posted"
	MetricTasksRejected  = "threadpool.tasks.rejected"
	MetricTasksDelivered = "threadpool.tasks.delivered"
	MetricQueueDepth     = "threadpool.queue.depth"
	MetricRunSeconds     = "threadpool.task.run.seconds"
)

// workerCounter assigns the worker index stamped into each worker's logger.
// It is shared by all pools in the process.
var workerCounter atomic.Uint64

// Pool is a named set of worker goroutines sharing one submission queue,
// one completion queue, one semaphore and one reactor wake-up source.
//
// Pools are constructed either standalone via New or through a Registry
// bound to configuration. All methods are safe for concurrent use.
type Pool struct {
	name     string
	threads  int
	maxQueue int

	// file and line of the first configuration reference, for diagnostics.
	file string
	line int

	sem *semaphore
	in  taskQueue
	out taskQueue

	notify *reactor.Notify

	taskID atomic.Uint64

	log      zerolog.Logger
	provider metrics.Provider

	posted    metrics.Counter
	rejected  metrics.Counter
	delivered metrics.Counter
	depth     metrics.UpDownCounter
	runSecs   metrics.Histogram

	wg        sync.WaitGroup
	started   atomic.Bool
	closeOnce sync.Once
}

// Name returns the pool name.
func (p *Pool) Name() string { return p.name }

// Threads returns the configured worker count.
func (p *Pool) Threads() int { return p.threads }

// MaxQueue returns the pending-submission bound.
func (p *Pool) MaxQueue() int { return p.maxQueue }

// start materializes the pool: semaphore, queues, wake-up source, workers.
// Failure leaves no workers running.
func (p *Pool) start(r *reactor.Reactor) error {
	if !r.SupportsNotify() {
		p.log.Error().Str("pool", p.name).
			Msg("the configured event method cannot be used with thread pools")
		return fmt.Errorf("%w (pool %q)", ErrNotifySupport, p.name)
	}

	p.sem = newSemaphore()
	p.in.init()
	p.out.init()

	n, err := r.CreateNotify(p.handleCompletions, p)
	if err != nil {
		return fmt.Errorf("%w (pool %q)", ErrNotifySupport, p.name)
	}
	p.notify = n

	p.posted = p.provider.Counter(MetricTasksPosted)
	p.rejected = p.provider.Counter(MetricTasksRejected)
	p.delivered = p.provider.Counter(MetricTasksDelivered)
	p.depth = p.provider.UpDownCounter(MetricQueueDepth)
	p.runSecs = p.provider.Histogram(MetricRunSeconds)

	for i := 0; i < p.threads; i++ {
		p.wg.Add(1)
		go p.cycle()
	}

	p.started.Store(true)
	return nil
}

// Post submits a task for execution. The task must have Handler and
// Event.Handler set and must not be active. Post never blocks.
func (p *Pool) Post(t *Task) error {
	if !p.started.Load() {
		return errorc.With(ErrNotStarted, errorc.String("pool", p.name))
	}

	if t.Event.Active {
		p.log.Error().Str("pool", p.name).Uint64("task", t.id).
			Msg("task already active")
		return errorc.With(ErrTaskActive,
			errorc.String("pool", p.name),
			errorc.String("task", strconv.FormatUint(t.id, 10)))
	}

	// Advisory admission check: the semaphore count approximates the number
	// of pending submissions. Concurrent posters may overshoot by at most
	// their own number.
	if waiting := p.sem.value(); waiting >= p.maxQueue {
		p.log.Error().Str("pool", p.name).Int("waiting", waiting).
			Msg("thread pool queue overflow")
		p.rejected.Add(1)
		return errorc.With(ErrQueueOverflow,
			errorc.String("pool", p.name),
			errorc.String("waiting", strconv.Itoa(waiting)))
	}

	t.Event.Active = true
	t.Event.Complete = false

	t.id = p.taskID.Add(1)

	p.in.enqueue(t)

	p.log.Debug().Str("pool", p.name).Uint64("task", t.id).
		Msg("task added to thread pool")

	if !p.sem.post() {
		return errorc.With(ErrSemaphore, errorc.String("pool", p.name))
	}

	p.posted.Add(1)
	p.depth.Add(1)
	return nil
}

// cycle is the worker run loop.
func (p *Pool) cycle() {
	defer p.wg.Done()

	log := p.log.With().Uint64("worker", workerCounter.Add(1)).Logger()
	log.Debug().Str("pool", p.name).Msg("thread pool worker started")

	for {
		if !p.sem.wait() {
			log.Debug().Str("pool", p.name).Msg("thread pool worker stopping")
			return
		}

		task := p.in.pop()
		p.depth.Add(-1)

		log.Debug().Uint64("task", task.id).Msg("run task")

		start := time.Now()
		task.Handler(task.Ctx, log)
		p.runSecs.Record(time.Since(start).Seconds())

		log.Debug().Uint64("task", task.id).Msg("complete task")

		// enqueue publishes with release semantics; every handler write to
		// task.Ctx happens-before the reactor's drain of this task.
		p.out.enqueue(task)

		p.notify.Signal()
	}
}

// handleCompletions runs on the reactor goroutine. It re-arms the wake-up
// source first, then drains the completion queue and delivers each event.
// If a worker appends between the drain and the next signal, the queued
// wake-up produces another invocation; nothing is lost.
func (p *Pool) handleCompletions(n *reactor.Notify) {
	p.log.Debug().Str("pool", p.name).Msg("thread pool handler")

	n.Rearm()

	for {
		task := p.out.drain()
		if task == nil {
			return
		}

		p.log.Debug().Str("pool", p.name).Uint64("task", task.id).
			Msg("run completion handler for task")

		ev := &task.Event
		ev.Complete = true
		ev.Active = false

		p.delivered.Add(1)

		ev.Handler(ev)
	}
}

// Close shuts the pool down: the semaphore is closed, which wakes every
// idle worker and ends their run loops; workers are then joined and the
// wake-up source released. Submissions still queued are dropped without
// completion callbacks. Close is idempotent.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		if !p.started.Load() {
			return
		}
		p.started.Store(false)
		p.sem.close()
		p.wg.Wait()
		p.notify.Close()
	})
}
