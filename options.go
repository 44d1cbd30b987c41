package pak

import (
	"github.com/hupe1980/pak/internal/block"
	"github.com/hupe1980/pak/internal/hash"
	"github.com/hupe1980/pak/resource"
)

// noopLogger is shared by every container constructed without WithLogger.
var noopLogger = NoopLogger()

type options struct {
	logger  *Logger
	metrics MetricsCollector
	budget  *resource.Controller
	source  block.Source
	hash    HashFunc
}

func defaultOptions() options {
	return options{
		logger:  noopLogger,
		metrics: NoopMetricsCollector{},
		source:  block.Heap,
		hash:    hash.FNV1a64,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) allocator() *block.Allocator {
	return block.NewAllocator(o.budget, o.source)
}

// Option configures container constructors.
type Option func(*options)

// WithLogger configures structured logging of resizes, allocation failures
// and frees.
//
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = noopLogger
		}
		o.logger = l
	}
}

// WithMetrics configures a metrics collector.
//
// If nil is passed, NoopMetricsCollector is used.
func WithMetrics(m MetricsCollector) Option {
	return func(o *options) {
		if m == nil {
			m = NoopMetricsCollector{}
		}
		o.metrics = m
	}
}

// WithMemoryController charges every allocation of the container against a
// shared memory budget. When the budget refuses a reservation the operation
// fails with ErrAllocation and the container is left unchanged.
func WithMemoryController(rc *resource.Controller) Option {
	return func(o *options) {
		o.budget = rc
	}
}

// WithMemoryLimit gives the container a private budget of limit bytes.
//
// Example:
//
//	v, _ := pak.New[int64](1024, pak.WithMemoryLimit(1<<20))
func WithMemoryLimit(limit int64) Option {
	return func(o *options) {
		o.budget = resource.NewController(resource.Config{MemoryLimitBytes: limit})
	}
}

// WithOffHeap places raw vector storage in anonymous mmap memory outside the
// garbage collector. Views returned by a raw vector must not be used after
// the next resize or Free: the old mapping is unmapped.
//
// Typed containers ignore this option because their elements may hold Go
// pointers.
func WithOffHeap() Option {
	return func(o *options) {
		o.source = block.OffHeap
	}
}

// WithHash sets the dictionary hash function. The default is 64-bit FNV-1a.
//
// If nil is passed, the default is kept.
func WithHash(fn HashFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.hash = fn
		}
	}
}
