// This file implements fluent builder APIs for creating and configuring containers.
// Builders are immutable - each method returns a new builder with the updated configuration.

package pak

import (
	"github.com/hupe1980/pak/internal/hash"
	"github.com/hupe1980/pak/resource"
)

// buildConfig holds the settings shared by all builders.
type buildConfig struct {
	logger      *Logger
	metrics     MetricsCollector
	controller  *resource.Controller
	memoryLimit int64
}

func (c buildConfig) options() []Option {
	var opts []Option
	if c.logger != nil {
		opts = append(opts, WithLogger(c.logger))
	}
	if c.metrics != nil {
		opts = append(opts, WithMetrics(c.metrics))
	}
	if c.controller != nil {
		opts = append(opts, WithMemoryController(c.controller))
	} else if c.memoryLimit > 0 {
		opts = append(opts, WithMemoryLimit(c.memoryLimit))
	}
	return opts
}

// =============================================================================
// Vector Builder (Immutable)
// =============================================================================

// Vec creates a new vector builder with the specified initial capacity, which
// is also the growth rate.
//
// Example:
//
//	v, err := pak.Vec[*os.File](64).
//	    Cleanup(func(f *os.File) { f.Close() }).
//	    MemoryLimit(1 << 20).
//	    Build()
func Vec[T any](capacity int) VectorBuilder[T] {
	return VectorBuilder[T]{capacity: capacity}
}

// VectorBuilder is an immutable fluent builder for Vector.
type VectorBuilder[T any] struct {
	buildConfig
	capacity int
	cleanup  func(T)
}

// Cleanup sets the hook run on every discarded element.
// It takes precedence over a Release method on T.
func (b VectorBuilder[T]) Cleanup(fn func(T)) VectorBuilder[T] {
	b.cleanup = fn
	return b
}

// Logger sets the structured logger.
func (b VectorBuilder[T]) Logger(l *Logger) VectorBuilder[T] {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b VectorBuilder[T]) Metrics(mc MetricsCollector) VectorBuilder[T] {
	b.metrics = mc
	return b
}

// MemoryController charges allocations against a shared budget.
func (b VectorBuilder[T]) MemoryController(rc *resource.Controller) VectorBuilder[T] {
	b.controller = rc
	return b
}

// MemoryLimit gives the vector a private budget of limit bytes.
// Ignored if MemoryController is set.
func (b VectorBuilder[T]) MemoryLimit(limit int64) VectorBuilder[T] {
	b.memoryLimit = limit
	return b
}

// Build creates the vector.
func (b VectorBuilder[T]) Build() (*Vector[T], error) {
	return NewWithCleanup(b.capacity, b.cleanup, b.options()...)
}

// MustBuild creates the vector, panicking on error.
func (b VectorBuilder[T]) MustBuild() *Vector[T] {
	v, err := b.Build()
	if err != nil {
		panic(err)
	}
	return v
}

// =============================================================================
// Raw Vector Builder (Immutable)
// =============================================================================

// Raw creates a new raw vector builder for elemSize-byte elements.
//
// Example:
//
//	r, err := pak.Raw(16, 1024).OffHeap().Build()
func Raw(elemSize, capacity int) RawBuilder {
	return RawBuilder{elemSize: elemSize, capacity: capacity}
}

// RawBuilder is an immutable fluent builder for RawVector.
type RawBuilder struct {
	buildConfig
	elemSize int
	capacity int
	offHeap  bool
	cleanup  func([]byte)
}

// Cleanup sets the hook run on every discarded slot.
func (b RawBuilder) Cleanup(fn func(elem []byte)) RawBuilder {
	b.cleanup = fn
	return b
}

// OffHeap places storage in anonymous mmap memory.
func (b RawBuilder) OffHeap() RawBuilder {
	b.offHeap = true
	return b
}

// Logger sets the structured logger.
func (b RawBuilder) Logger(l *Logger) RawBuilder {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b RawBuilder) Metrics(mc MetricsCollector) RawBuilder {
	b.metrics = mc
	return b
}

// MemoryController charges allocations against a shared budget.
func (b RawBuilder) MemoryController(rc *resource.Controller) RawBuilder {
	b.controller = rc
	return b
}

// MemoryLimit gives the vector a private budget of limit bytes.
// Ignored if MemoryController is set.
func (b RawBuilder) MemoryLimit(limit int64) RawBuilder {
	b.memoryLimit = limit
	return b
}

// Build creates the raw vector.
func (b RawBuilder) Build() (*RawVector, error) {
	opts := b.options()
	if b.offHeap {
		opts = append(opts, WithOffHeap())
	}
	return NewRawWithCleanup(b.elemSize, b.capacity, b.cleanup, opts...)
}

// =============================================================================
// Dictionary Builder (Immutable)
// =============================================================================

// Dictionary creates a new dictionary builder with the specified number of
// buckets. The default hash is 64-bit FNV-1a.
//
// Example:
//
//	d, err := pak.Dictionary[int](1024).CRC32C().Build()
func Dictionary[V any](buckets int) DictBuilder[V] {
	return DictBuilder[V]{buckets: buckets}
}

// DictBuilder is an immutable fluent builder for Dict.
type DictBuilder[V any] struct {
	buildConfig
	buckets int
	hash    HashFunc
	cleanup func(V)
}

// Cleanup sets the hook run on every replaced or removed value.
func (b DictBuilder[V]) Cleanup(fn func(V)) DictBuilder[V] {
	b.cleanup = fn
	return b
}

// Hash sets a custom hash function.
func (b DictBuilder[V]) Hash(fn HashFunc) DictBuilder[V] {
	b.hash = fn
	return b
}

// FNV1a32 selects 32-bit FNV-1a hashing.
func (b DictBuilder[V]) FNV1a32() DictBuilder[V] {
	b.hash = hash.FNV1a32
	return b
}

// CRC32C selects hardware-accelerated CRC32-C (Castagnoli) hashing.
func (b DictBuilder[V]) CRC32C() DictBuilder[V] {
	b.hash = hash.CRC32C
	return b
}

// Logger sets the structured logger.
func (b DictBuilder[V]) Logger(l *Logger) DictBuilder[V] {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b DictBuilder[V]) Metrics(mc MetricsCollector) DictBuilder[V] {
	b.metrics = mc
	return b
}

// MemoryController charges buckets and entries against a shared budget.
func (b DictBuilder[V]) MemoryController(rc *resource.Controller) DictBuilder[V] {
	b.controller = rc
	return b
}

// MemoryLimit gives the dictionary a private budget of limit bytes.
// Ignored if MemoryController is set.
func (b DictBuilder[V]) MemoryLimit(limit int64) DictBuilder[V] {
	b.memoryLimit = limit
	return b
}

// Build creates the dictionary.
func (b DictBuilder[V]) Build() (*Dict[V], error) {
	opts := b.options()
	if b.hash != nil {
		opts = append(opts, WithHash(b.hash))
	}
	return NewDictWithCleanup(b.buckets, b.cleanup, opts...)
}
