// Package reactor provides a minimal single-goroutine event loop with
// in-process wake-up sources. It is the notification surface thread pools
// integrate with: any goroutine may signal a wake-up source, and the
// source's handler runs on the reactor goroutine, serialized with every
// other reactor callback.
package reactor

import (
	"errors"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ErrNoNotify is returned by CreateNotify when the reactor was built
// without notification support.
var ErrNoNotify = errors.New("reactor: poller has no notification primitive")

// Handler is invoked on the reactor goroutine each time its wake-up source
// fires. Handlers must not block; blocking stalls every other callback.
type Handler func(n *Notify)

// Notify is an in-process wake-up source. Signal may be called from any
// goroutine; signals arriving while the source is already pending coalesce
// into a single handler invocation, the way an eventfd read coalesces
// counter increments.
type Notify struct {
	r       *Reactor
	handler Handler

	// Data is an opaque value for the handler, set at creation.
	Data any

	pending atomic.Bool
	closed  atomic.Bool
}

// Signal fires the wake-up source. It is a no-op while the source is
// already pending or after Close.
func (n *Notify) Signal() {
	if n.closed.Load() {
		return
	}
	if n.pending.CompareAndSwap(false, true) {
		n.r.wake <- n
	}
}

// Rearm re-arms the source for the next notification. Handlers call it
// before draining whatever state the signal protects, so a signal racing
// the drain produces a fresh invocation instead of being lost.
func (n *Notify) Rearm() {
	n.pending.Store(false)
}

// Close detaches the source. Pending invocations already queued may still
// run; further signals are dropped.
func (n *Notify) Close() {
	n.closed.Store(true)
	n.r.remove(n)
}

// Reactor is a single-goroutine callback loop. All handlers, posted
// closures and signal callbacks execute on the one goroutine started by
// Run, never concurrently with each other.
type Reactor struct {
	log zerolog.Logger

	wake chan *Notify
	post chan func()
	quit chan struct{}
	done chan struct{}

	notifySupport bool

	mu       sync.Mutex
	notifies []*Notify

	sigCh      chan os.Signal
	sigHandler func(os.Signal)

	started atomic.Bool
	stopped atomic.Bool
}

// Option configures a Reactor.
type Option func(*Reactor)

// WithLogger sets the reactor's logging sink.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Reactor) { r.log = log }
}

// WithoutNotify builds a reactor whose poller has no notification
// primitive; CreateNotify fails. It models event methods that cannot host
// wake-up sources.
func WithoutNotify() Option {
	return func(r *Reactor) { r.notifySupport = false }
}

// New creates a stopped reactor; call Run to start its goroutine.
func New(opts ...Option) *Reactor {
	r := &Reactor{
		log:           zerolog.Nop(),
		wake:          make(chan *Notify, 128),
		post:          make(chan func(), 128),
		quit:          make(chan struct{}),
		done:          make(chan struct{}),
		notifySupport: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SupportsNotify reports whether CreateNotify can succeed.
func (r *Reactor) SupportsNotify() bool { return r.notifySupport }

// CreateNotify registers a wake-up source whose handler will run on the
// reactor goroutine.
func (r *Reactor) CreateNotify(handler Handler, data any) (*Notify, error) {
	if !r.notifySupport {
		return nil, ErrNoNotify
	}
	n := &Notify{r: r, handler: handler, Data: data}
	r.mu.Lock()
	r.notifies = append(r.notifies, n)
	r.mu.Unlock()
	return n, nil
}

func (r *Reactor) remove(n *Notify) {
	r.mu.Lock()
	for i, m := range r.notifies {
		if m == n {
			r.notifies = append(r.notifies[:i], r.notifies[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
}

// Post schedules fn to run on the reactor goroutine.
func (r *Reactor) Post(fn func()) {
	r.post <- fn
}

// Signals routes the given OS signals to handler on the reactor goroutine.
// Worker goroutines never observe process signals; signal callbacks run
// only here. Must be called before Run.
func (r *Reactor) Signals(handler func(os.Signal), sigs ...os.Signal) {
	r.sigCh = make(chan os.Signal, 8)
	r.sigHandler = handler
	signal.Notify(r.sigCh, sigs...)
}

// Run starts the reactor goroutine. It returns immediately; Stop shuts the
// loop down.
func (r *Reactor) Run() {
	if !r.started.CompareAndSwap(false, true) {
		return
	}
	go r.loop()
}

func (r *Reactor) loop() {
	defer close(r.done)
	for {
		select {
		case <-r.quit:
			return
		case n := <-r.wake:
			r.log.Debug().Msg("reactor: wake-up")
			n.handler(n)
		case fn := <-r.post:
			fn()
		case sig := <-r.sigCh:
			r.sigHandler(sig)
		}
	}
}

// Stop terminates the loop and waits for the reactor goroutine to exit.
// Queued wake-ups and posts that were not yet dispatched are dropped.
func (r *Reactor) Stop() {
	if !r.started.Load() || !r.stopped.CompareAndSwap(false, true) {
		return
	}
	if r.sigCh != nil {
		signal.Stop(r.sigCh)
	}
	close(r.quit)
	<-r.done
}
