package threadpool

import (
	"strconv"

	"github.com/rs/zerolog"
	"github.com/ygrebnov/errorc"

	"github.com/dispbd/threadpool/metrics"
	"github.com/dispbd/threadpool/reactor"
)

// Option configures a standalone pool constructed via New.
type Option func(*Pool)

// WithName sets the pool name (default "default").
func WithName(name string) Option {
	return func(p *Pool) { p.name = name }
}

// WithThreads sets the worker count (default 32).
func WithThreads(n int) Option {
	return func(p *Pool) { p.threads = n }
}

// WithMaxQueue bounds the number of pending submissions (default 65536).
func WithMaxQueue(n int) Option {
	return func(p *Pool) { p.maxQueue = n }
}

// WithLogger sets the pool's logging sink (default zerolog.Nop()).
func WithLogger(log zerolog.Logger) Option {
	return func(p *Pool) { p.log = log }
}

// WithMetrics sets the metrics provider (default metrics.NewNoop()).
func WithMetrics(provider metrics.Provider) Option {
	return func(p *Pool) { p.provider = provider }
}

// New constructs and starts a standalone pool on the given reactor, outside
// of any Registry. The returned pool is ready for Post; the caller owns its
// lifetime and must Close it.
func New(r *reactor.Reactor, opts ...Option) (*Pool, error) {
	p := &Pool{
		name:     DefaultName,
		threads:  DefaultThreads,
		maxQueue: DefaultMaxQueue,
		log:      zerolog.Nop(),
		provider: metrics.NewNoop(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := p.validate(); err != nil {
		return nil, err
	}

	if err := p.start(r); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Pool) validate() error {
	if p.name == "" {
		return errorc.With(ErrConfig, errorc.String("reason", "empty pool name"))
	}
	if p.threads < 1 {
		return errorc.With(ErrConfig,
			errorc.String("pool", p.name),
			errorc.String("reason", "threads must be at least 1"),
			errorc.String("threads", strconv.Itoa(p.threads)))
	}
	if p.maxQueue < 0 {
		return errorc.With(ErrConfig,
			errorc.String("pool", p.name),
			errorc.String("reason", "max_queue must not be negative"),
			errorc.String("max_queue", strconv.Itoa(p.maxQueue)))
	}
	return nil
}
