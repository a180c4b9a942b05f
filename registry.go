package threadpool

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dispbd/threadpool/metrics"
	"github.com/dispbd/threadpool/reactor"
)

// Registry is the set of named pools assembled during configuration.
//
// Pools may be referenced by name before they are declared: Add creates a
// placeholder descriptor on first reference and records the referencing
// location for diagnostics. Finalize then checks that every referenced pool
// either has an explicit declaration or is the reserved "default" pool,
// which is filled in with its standard parameters. Start materializes every
// pool; Close tears them down.
type Registry struct {
	mu     sync.Mutex
	pools  []*Pool
	byName map[string]*Pool

	log      zerolog.Logger
	provider metrics.Provider
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logging sink inherited by every pool.
func WithRegistryLogger(log zerolog.Logger) RegistryOption {
	return func(r *Registry) { r.log = log }
}

// WithRegistryMetrics sets the metrics provider inherited by every pool.
func WithRegistryMetrics(provider metrics.Provider) RegistryOption {
	return func(r *Registry) { r.provider = provider }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		byName:   make(map[string]*Pool),
		log:      zerolog.Nop(),
		provider: metrics.NewNoop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add returns the pool registered under name, creating a placeholder
// descriptor on first reference. An empty name refers to the reserved
// "default" pool. file and line identify the referencing source location;
// they are kept from the first reference and reported by Finalize if the
// pool is never declared.
func (r *Registry) Add(name, file string, line int) *Pool {
	if name == "" {
		name = DefaultName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if tp, ok := r.byName[name]; ok {
		return tp
	}

	tp := &Pool{
		name:     name,
		file:     file,
		line:     line,
		log:      r.log,
		provider: r.provider,
	}
	r.pools = append(r.pools, tp)
	r.byName[name] = tp
	return tp
}

// Get returns the pool registered under name, or nil.
func (r *Registry) Get(name string) *Pool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byName[name]
}

// Pools returns the registered pools in registration order.
func (r *Registry) Pools() []*Pool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Pool, len(r.pools))
	copy(out, r.pools)
	return out
}

// Declare registers an explicit pool declaration, as the configuration
// parsers do. A pool may be declared at most once.
func (r *Registry) Declare(name string, threads, maxQueue int) error {
	return r.declareAt(name, threads, maxQueue, "", 0)
}

func (r *Registry) declareAt(name string, threads, maxQueue int, file string, line int) error {
	if name == "" {
		return fmt.Errorf("%w: empty pool name in %s:%d", ErrConfig, file, line)
	}

	tp := r.Add(name, file, line)

	r.mu.Lock()
	defer r.mu.Unlock()

	// A non-zero thread count marks an existing declaration.
	if tp.threads != 0 {
		return fmt.Errorf("%w %q in %s:%d", ErrDuplicatePool, name, file, line)
	}

	if threads < 1 {
		return fmt.Errorf("%w: pool %q: threads must be at least 1 in %s:%d",
			ErrConfig, name, file, line)
	}
	if maxQueue < 0 {
		return fmt.Errorf("%w: pool %q: max_queue must not be negative in %s:%d",
			ErrConfig, name, file, line)
	}

	tp.threads = threads
	tp.maxQueue = maxQueue
	return nil
}

// Finalize resolves every referenced pool. The reserved "default" pool is
// filled in with threads=32, max_queue=65536 if it was referenced but never
// declared; any other undeclared pool is an error naming the referencing
// source location.
func (r *Registry) Finalize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tp := range r.pools {
		if tp.threads != 0 {
			continue
		}

		if tp.name == DefaultName {
			tp.threads = DefaultThreads
			tp.maxQueue = DefaultMaxQueue
			continue
		}

		return fmt.Errorf("%w %q in %s:%d", ErrUnknownPool, tp.name, tp.file, tp.line)
	}

	return nil
}

// Start materializes every registered pool on the given reactor. On
// failure, pools already started are closed again; no partial set runs.
func (r *Registry) Start(rt *reactor.Reactor) error {
	for _, tp := range r.Pools() {
		if err := tp.start(rt); err != nil {
			for _, started := range r.Pools() {
				if started == tp {
					break
				}
				started.Close()
			}
			return err
		}
	}
	return nil
}

// Close shuts every started pool down.
func (r *Registry) Close() {
	for _, tp := range r.Pools() {
		tp.Close()
	}
}
