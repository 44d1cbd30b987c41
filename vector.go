package pak

import (
	"fmt"
	"iter"
	"slices"

	"github.com/hupe1980/pak/internal/block"
	"github.com/hupe1980/pak/internal/growth"
)

// Vector is a growable array of T with a fixed linear growth rate and an
// optional cleanup hook.
//
// The growth rate is the initial capacity. A push into a full vector expands
// the capacity by one rate step; a pop that leaves the count more than one
// rate step below the capacity contracts it by one step, never below
// min(rate, capacity).
//
// A Vector is not safe for concurrent use.
type Vector[T any] struct {
	store   *block.Slice[T]
	count   int
	sig     uint32
	gen     uint64
	policy  growth.Policy
	life    lifecycle[T]
	alloc   *block.Allocator
	logger  *Logger
	metrics MetricsCollector
}

// Ref is a reference to one element slot. It is invalidated by any resize,
// removal, reorder or Free of its vector.
type Ref struct {
	Gen   uint64
	Index int
}

// New creates a vector with the given initial capacity, which is also its
// growth rate. If T implements Releaser, discarded elements are released.
func New[T any](capacity int, opts ...Option) (*Vector[T], error) {
	return NewWithCleanup[T](capacity, nil, opts...)
}

// NewWithCleanup creates a vector whose discarded elements are passed to
// cleanup immediately before they are dropped.
func NewWithCleanup[T any](capacity int, cleanup func(T), opts ...Option) (*Vector[T], error) {
	o := applyOptions(opts)

	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrAllocation, invalidCapacity(capacity))
	}

	alloc := block.NewAllocator(o.budget, block.Heap)
	store, err := block.MakeSlice[T](alloc, capacity)
	if err != nil {
		err = translateError(err)
		o.logger.LogAllocFailure("new", capacity, err)
		o.metrics.RecordAllocFailure(err)
		return nil, err
	}

	return &Vector[T]{
		store:   store,
		sig:     block.Signature,
		policy:  growth.New(capacity),
		life:    newLifecycle(cleanup, o.metrics),
		alloc:   alloc,
		logger:  o.logger.WithContainer("vector"),
		metrics: o.metrics,
	}, nil
}

func (v *Vector[T]) check() error {
	if v == nil || v.sig != block.Signature {
		return ErrInvalidHandle
	}
	return nil
}

// IsValid reports whether the vector is live (not freed).
func (v *Vector[T]) IsValid() bool {
	return v.check() == nil
}

// Len returns the number of elements. It is 0 for an invalid vector.
func (v *Vector[T]) Len() int {
	if v.check() != nil {
		return 0
	}
	return v.count
}

// Cap returns the allocated capacity. It is 0 for an invalid vector.
func (v *Vector[T]) Cap() int {
	if v.check() != nil {
		return 0
	}
	return len(v.store.Items)
}

// GrowthRate returns the fixed expansion/contraction increment.
func (v *Vector[T]) GrowthRate() int {
	if v.check() != nil {
		return 0
	}
	return v.policy.Rate()
}

// Bytes returns the bytes reserved for element storage.
func (v *Vector[T]) Bytes() int64 {
	if v.check() != nil {
		return 0
	}
	return v.store.Bytes()
}

// Push appends x, expanding the vector first if it is full.
// On error the vector is unchanged.
func (v *Vector[T]) Push(x T) error {
	if err := v.check(); err != nil {
		return err
	}

	if v.count == len(v.store.Items) {
		if err := v.Expand(); err != nil {
			return err
		}
	}

	v.store.Items[v.count] = x
	v.count++
	return nil
}

// Pop removes the last element, running the cleanup hook on it. Popping an
// empty vector is a no-op.
//
// If the count drops below the hysteresis threshold the vector contracts.
// Contraction hands the existing reservation to the smaller storage, so an
// exhausted memory budget does not block it. Should the allocation itself
// fail, Pop still succeeds: the failure is logged and reported through
// MetricsCollector.RecordAllocFailure, and the vector stays consistent at its
// old capacity.
func (v *Vector[T]) Pop() error {
	if err := v.check(); err != nil {
		return err
	}
	if v.count == 0 {
		return nil
	}

	v.life.discard(&v.store.Items[v.count-1])
	v.count--
	v.gen++

	capacity := len(v.store.Items)
	if v.policy.ShouldContract(v.count, capacity) {
		_ = v.resize(v.policy.Contract(capacity))
	}
	return nil
}

// Expand grows the capacity by one growth-rate step.
func (v *Vector[T]) Expand() error {
	if err := v.check(); err != nil {
		return err
	}
	next, err := v.policy.Expand(len(v.store.Items))
	if err != nil {
		return v.allocFailed("expand", len(v.store.Items), translateError(err))
	}
	return v.resize(next)
}

// Contract shrinks the capacity by one growth-rate step, clamped so the
// capacity never drops below min(rate, capacity). Elements beyond the new
// capacity are discarded from the end.
func (v *Vector[T]) Contract() error {
	if err := v.check(); err != nil {
		return err
	}
	return v.resize(v.policy.Contract(len(v.store.Items)))
}

// Resize sets the capacity to n. If n is below the count, elements [n, count)
// are passed to the cleanup hook last-first and the count becomes n.
//
// New storage is allocated before anything is discarded: on ErrAllocation
// the vector, its elements and its count are unchanged. Shrinking reuses the
// current reservation and never needs additional budget. On success every
// Ref and Slice view taken earlier is stale.
func (v *Vector[T]) Resize(n int) error {
	if err := v.check(); err != nil {
		return err
	}
	if n <= 0 {
		return invalidCapacity(n)
	}
	return v.resize(n)
}

func (v *Vector[T]) resize(n int) error {
	from := len(v.store.Items)
	if n == from {
		return nil
	}

	var (
		next *block.Slice[T]
		err  error
	)
	if n < from {
		next, err = block.ShrinkSlice(v.store, n)
	} else {
		next, err = block.MakeSlice[T](v.alloc, n)
	}
	if err != nil {
		return v.allocFailed("resize", n, translateError(err))
	}

	if n < v.count {
		v.life.discardAll(v.store.Items[n:v.count])
		v.count = n
	}

	copy(next.Items, v.store.Items[:v.count])
	v.store.Release()
	v.store = next
	v.gen++

	if n > from {
		v.metrics.RecordGrow(from, n)
	} else {
		v.metrics.RecordShrink(from, n)
	}
	v.logger.LogResize(from, n, v.count)
	return nil
}

func (v *Vector[T]) allocFailed(op string, capacity int, err error) error {
	v.logger.LogAllocFailure(op, capacity, err)
	v.metrics.RecordAllocFailure(err)
	return err
}

// At returns the element at index i.
// It panics with an *IndexError if i is outside [0, Len()), and with
// ErrInvalidHandle if the vector was freed.
func (v *Vector[T]) At(i int) T {
	if err := v.check(); err != nil {
		panic(err)
	}
	if i < 0 || i >= v.count {
		panic(&IndexError{Index: i, Len: v.count})
	}
	return v.store.Items[i]
}

// Get returns the element at index i, or false if i is out of range.
func (v *Vector[T]) Get(i int) (T, bool) {
	if v.check() != nil || i < 0 || i >= v.count {
		var zero T
		return zero, false
	}
	return v.store.Items[i], true
}

// Set replaces the element at index i. The replaced element is passed to the
// cleanup hook.
func (v *Vector[T]) Set(i int, x T) error {
	if err := v.check(); err != nil {
		return err
	}
	if i < 0 || i >= v.count {
		return &IndexError{Index: i, Len: v.count}
	}
	v.life.discard(&v.store.Items[i])
	v.store.Items[i] = x
	v.gen++
	return nil
}

// Last returns the last element, or false if the vector is empty.
func (v *Vector[T]) Last() (T, bool) {
	return v.Get(v.Len() - 1)
}

// Slice returns the live elements as a slice sharing the vector's storage.
// Writes through it are visible in the vector. The view is stale after the
// next resize.
func (v *Vector[T]) Slice() []T {
	if v.check() != nil {
		return nil
	}
	return v.store.Items[:v.count:v.count]
}

// All returns an iterator over index/element pairs, first to last.
func (v *Vector[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < v.Len(); i++ {
			if !yield(i, v.store.Items[i]) {
				return
			}
		}
	}
}

// Backward returns an iterator over index/element pairs, last to first.
func (v *Vector[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := v.Len() - 1; i >= 0; i-- {
			if i >= v.Len() {
				return
			}
			if !yield(i, v.store.Items[i]) {
				return
			}
		}
	}
}

// Sort sorts the elements in place using cmp.
func (v *Vector[T]) Sort(cmp Comparator[T]) error {
	if err := v.check(); err != nil {
		return err
	}
	slices.SortFunc(v.store.Items[:v.count], cmp)
	v.gen++
	return nil
}

// Clear discards every element, last to first, keeping the capacity.
func (v *Vector[T]) Clear() error {
	if err := v.check(); err != nil {
		return err
	}
	v.life.discardAll(v.store.Items[:v.count])
	v.count = 0
	v.gen++
	return nil
}

// Ref returns a reference to the slot at index i.
func (v *Vector[T]) Ref(i int) (Ref, error) {
	if err := v.check(); err != nil {
		return Ref{}, err
	}
	if i < 0 || i >= v.count {
		return Ref{}, &IndexError{Index: i, Len: v.count}
	}
	return Ref{Gen: v.gen, Index: i}, nil
}

// Resolve returns a pointer to the slot named by ref. It fails with
// ErrInvalidHandle if the vector changed shape since the reference was taken.
func (v *Vector[T]) Resolve(ref Ref) (*T, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	if ref.Gen != v.gen || ref.Index < 0 || ref.Index >= v.count {
		return nil, fmt.Errorf("%w: stale reference (gen %d, current %d)", ErrInvalidHandle, ref.Gen, v.gen)
	}
	return &v.store.Items[ref.Index], nil
}

// Free discards every remaining element, last to first, releases the storage
// and invalidates the vector. Freeing twice returns ErrInvalidHandle.
func (v *Vector[T]) Free() error {
	if err := v.check(); err != nil {
		return err
	}

	released := v.count
	v.life.discardAll(v.store.Items[:v.count])
	v.count = 0
	v.store.Release()
	v.sig = 0
	v.gen++

	v.logger.LogFree(released)
	return nil
}
