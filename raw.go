package pak

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/hupe1980/pak/internal/block"
	"github.com/hupe1980/pak/internal/growth"
)

// RawVector is the untyped vector engine: fixed-size byte elements stored in
// a single header-prefixed block.
//
// The block header carries the signature, element size, count, capacity and
// growth rate; the elements follow it contiguously. Every operation checks
// the header signature first.
//
// Slices returned by At, Get, Last and Bytes alias the block. They are stale
// after the next resize or Free; with WithOffHeap the old block is unmapped,
// so touching a stale view is a memory fault.
//
// A RawVector is not safe for concurrent use.
type RawVector struct {
	blk     *block.Block
	gen     uint64
	policy  growth.Policy
	hook    func(elem []byte)
	alloc   *block.Allocator
	logger  *Logger
	metrics MetricsCollector
}

// NewRaw creates a raw vector of elemSize-byte elements with the given
// initial capacity, which is also its growth rate.
func NewRaw(elemSize, capacity int, opts ...Option) (*RawVector, error) {
	return NewRawWithCleanup(elemSize, capacity, nil, opts...)
}

// NewRawWithCleanup creates a raw vector whose discarded slots are passed to
// cleanup before they are zeroed. The slice handed to cleanup is only valid
// for the duration of the call.
func NewRawWithCleanup(elemSize, capacity int, cleanup func(elem []byte), opts ...Option) (*RawVector, error) {
	o := applyOptions(opts)

	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrAllocation, invalidCapacity(capacity))
	}
	if elemSize <= 0 {
		return nil, fmt.Errorf("%w: element size must be positive, got %d", ErrInvalidArgument, elemSize)
	}

	alloc := o.allocator()
	blk, err := alloc.Alloc(elemSize, capacity)
	if err != nil {
		err = translateError(err)
		o.logger.LogAllocFailure("new", capacity, err)
		o.metrics.RecordAllocFailure(err)
		return nil, err
	}

	return &RawVector{
		blk:     blk,
		policy:  growth.New(capacity),
		hook:    cleanup,
		alloc:   alloc,
		logger:  o.logger.WithContainer("raw_vector"),
		metrics: o.metrics,
	}, nil
}

func (r *RawVector) header() (block.Header, error) {
	if r == nil {
		return block.Header{}, ErrInvalidHandle
	}
	h := r.blk.Header()
	if !h.Valid() {
		return block.Header{}, ErrInvalidHandle
	}
	return h, nil
}

// IsValid reports whether the header signature holds.
func (r *RawVector) IsValid() bool {
	_, err := r.header()
	return err == nil
}

// Len returns the number of elements. It is 0 for an invalid vector.
func (r *RawVector) Len() int {
	h, err := r.header()
	if err != nil {
		return 0
	}
	return int(h.Count) //nolint:gosec // count <= capacity, which fit an int at allocation
}

// Cap returns the allocated capacity. It is 0 for an invalid vector.
func (r *RawVector) Cap() int {
	h, err := r.header()
	if err != nil {
		return 0
	}
	return int(h.Capacity) //nolint:gosec // fit an int at allocation
}

// GrowthRate returns the fixed expansion/contraction increment.
func (r *RawVector) GrowthRate() int {
	h, err := r.header()
	if err != nil {
		return 0
	}
	return int(h.Rate) //nolint:gosec // fit an int at allocation
}

// ElemSize returns the element size in bytes.
func (r *RawVector) ElemSize() int {
	h, err := r.header()
	if err != nil {
		return 0
	}
	return int(h.ElemSize)
}

// OffHeap reports whether storage lives outside the Go heap.
func (r *RawVector) OffHeap() bool {
	return r.IsValid() && r.blk.OffHeap()
}

func (r *RawVector) slot(h block.Header, i int) []byte {
	size := int(h.ElemSize)
	off := i * size
	return r.blk.Data()[off : off+size : off+size]
}

func (r *RawVector) setCount(h block.Header, count int) {
	h.Count = uint64(count) //nolint:gosec // 0 <= count <= capacity
	r.blk.SetHeader(h)
}

// Push appends a copy of elem. It fails with a *SizeMismatchError (matching
// ErrTypeSizeMismatch) if len(elem) differs from the element size. On error
// the vector is unchanged.
func (r *RawVector) Push(elem []byte) error {
	h, err := r.header()
	if err != nil {
		return err
	}
	if len(elem) != int(h.ElemSize) {
		return &SizeMismatchError{Expected: int(h.ElemSize), Actual: len(elem)}
	}

	if h.Count == h.Capacity {
		if err := r.Expand(); err != nil {
			return err
		}
		h = r.blk.Header()
	}

	count := int(h.Count) //nolint:gosec // count < capacity
	copy(r.slot(h, count), elem)
	r.setCount(h, count+1)
	return nil
}

// Pop removes the last element, running the cleanup hook on its slot.
// Popping an empty vector is a no-op. Automatic contraction reuses the
// current reservation; if it still fails, Pop succeeds and the failure is
// logged and reported through MetricsCollector.RecordAllocFailure.
func (r *RawVector) Pop() error {
	h, err := r.header()
	if err != nil {
		return err
	}
	if h.Count == 0 {
		return nil
	}

	count := int(h.Count) - 1 //nolint:gosec // count > 0
	r.discard(h, count, count+1)
	r.setCount(h, count)
	r.gen++

	capacity := int(h.Capacity) //nolint:gosec // fit an int at allocation
	if r.policy.ShouldContract(count, capacity) {
		_ = r.resize(r.policy.Contract(capacity))
	}
	return nil
}

// discard runs the hook on slots [from, to) last-first and zeroes them.
func (r *RawVector) discard(h block.Header, from, to int) {
	if from >= to {
		return
	}
	if r.hook != nil {
		for i := to - 1; i >= from; i-- {
			r.hook(r.slot(h, i))
		}
		r.metrics.RecordCleanup(to - from)
	}
	size := int(h.ElemSize)
	clear(r.blk.Data()[from*size : to*size])
}

// Expand grows the capacity by one growth-rate step.
func (r *RawVector) Expand() error {
	h, err := r.header()
	if err != nil {
		return err
	}
	capacity := int(h.Capacity) //nolint:gosec // fit an int at allocation
	next, err := r.policy.Expand(capacity)
	if err != nil {
		return r.allocFailed("expand", capacity, translateError(err))
	}
	return r.resize(next)
}

// Contract shrinks the capacity by one growth-rate step, clamped so the
// capacity never drops below min(rate, capacity).
func (r *RawVector) Contract() error {
	h, err := r.header()
	if err != nil {
		return err
	}
	return r.resize(r.policy.Contract(int(h.Capacity))) //nolint:gosec // fit an int at allocation
}

// Resize sets the capacity to n, reallocating the block. Elements [n, count)
// are discarded last-first. On ErrAllocation the vector is unchanged.
// Shrinking never needs additional budget.
func (r *RawVector) Resize(n int) error {
	if _, err := r.header(); err != nil {
		return err
	}
	if n <= 0 {
		return invalidCapacity(n)
	}
	return r.resize(n)
}

func (r *RawVector) resize(n int) error {
	h := r.blk.Header()
	from := int(h.Capacity) //nolint:gosec // fit an int at allocation
	if n == from {
		return nil
	}

	var (
		next *block.Block
		err  error
	)
	if n < from {
		next, err = r.alloc.Shrink(r.blk, int(h.ElemSize), n)
	} else {
		next, err = r.alloc.Alloc(int(h.ElemSize), n)
	}
	if err != nil {
		return r.allocFailed("resize", n, translateError(err))
	}

	count := int(h.Count) //nolint:gosec // count <= capacity
	if n < count {
		r.discard(h, n, count)
		count = n
	}

	size := int(h.ElemSize)
	copy(next.Data(), r.blk.Data()[:count*size])

	h.Count = uint64(count) //nolint:gosec // count >= 0
	h.Capacity = uint64(n)  //nolint:gosec // n > 0
	next.SetHeader(h)

	old := r.blk
	r.blk = next
	r.gen++
	if err := old.Release(); err != nil {
		r.logger.Warn("release failed", "error", err)
	}

	if n > from {
		r.metrics.RecordGrow(from, n)
	} else {
		r.metrics.RecordShrink(from, n)
	}
	r.logger.LogResize(from, n, count)
	return nil
}

func (r *RawVector) allocFailed(op string, capacity int, err error) error {
	r.logger.LogAllocFailure(op, capacity, err)
	r.metrics.RecordAllocFailure(err)
	return err
}

// At returns the slot at index i. It panics with an *IndexError if i is
// outside [0, Len()), and with ErrInvalidHandle if the vector was freed.
func (r *RawVector) At(i int) []byte {
	h, err := r.header()
	if err != nil {
		panic(err)
	}
	count := int(h.Count) //nolint:gosec // count <= capacity
	if i < 0 || i >= count {
		panic(&IndexError{Index: i, Len: count})
	}
	return r.slot(h, i)
}

// Get returns the slot at index i, or false if i is out of range.
func (r *RawVector) Get(i int) ([]byte, bool) {
	h, err := r.header()
	if err != nil || i < 0 || i >= int(h.Count) { //nolint:gosec // count <= capacity
		return nil, false
	}
	return r.slot(h, i), true
}

// Last returns the last slot, or false if the vector is empty.
func (r *RawVector) Last() ([]byte, bool) {
	return r.Get(r.Len() - 1)
}

// Set overwrites the slot at index i with elem. The old slot contents are
// passed to the cleanup hook first.
func (r *RawVector) Set(i int, elem []byte) error {
	h, err := r.header()
	if err != nil {
		return err
	}
	if len(elem) != int(h.ElemSize) {
		return &SizeMismatchError{Expected: int(h.ElemSize), Actual: len(elem)}
	}
	count := int(h.Count) //nolint:gosec // count <= capacity
	if i < 0 || i >= count {
		return &IndexError{Index: i, Len: count}
	}
	r.discard(h, i, i+1)
	copy(r.slot(h, i), elem)
	r.gen++
	return nil
}

// Bytes returns the live element bytes (Len()*ElemSize()) aliasing the block.
func (r *RawVector) Bytes() []byte {
	h, err := r.header()
	if err != nil {
		return nil
	}
	n := int(h.Count) * int(h.ElemSize) //nolint:gosec // fit an int at allocation
	return r.blk.Data()[:n:n]
}

// Sort sorts the slots in place using cmp.
func (r *RawVector) Sort(cmp Comparator[[]byte]) error {
	h, err := r.header()
	if err != nil {
		return err
	}
	size := int(h.ElemSize)
	sort.Sort(&rawSorter{
		data: r.blk.Data()[:int(h.Count)*size], //nolint:gosec // fit an int at allocation
		size: size,
		tmp:  make([]byte, size),
		cmp:  cmp,
	})
	r.gen++
	return nil
}

type rawSorter struct {
	data []byte
	size int
	tmp  []byte
	cmp  Comparator[[]byte]
}

func (s *rawSorter) Len() int { return len(s.data) / s.size }

func (s *rawSorter) Less(i, j int) bool {
	return s.cmp(s.at(i), s.at(j)) < 0
}

func (s *rawSorter) Swap(i, j int) {
	a, b := s.at(i), s.at(j)
	copy(s.tmp, a)
	copy(a, b)
	copy(b, s.tmp)
}

func (s *rawSorter) at(i int) []byte {
	return s.data[i*s.size : (i+1)*s.size]
}

// Clear discards every element, last to first, keeping the capacity.
func (r *RawVector) Clear() error {
	h, err := r.header()
	if err != nil {
		return err
	}
	r.discard(h, 0, int(h.Count)) //nolint:gosec // count <= capacity
	r.setCount(h, 0)
	r.gen++
	return nil
}

// Ref returns a reference to the slot at index i.
func (r *RawVector) Ref(i int) (Ref, error) {
	h, err := r.header()
	if err != nil {
		return Ref{}, err
	}
	if count := int(h.Count); i < 0 || i >= count { //nolint:gosec // count <= capacity
		return Ref{}, &IndexError{Index: i, Len: count}
	}
	return Ref{Gen: r.gen, Index: i}, nil
}

// Resolve returns the slot named by ref, or ErrInvalidHandle if the vector
// changed shape since the reference was taken.
func (r *RawVector) Resolve(ref Ref) ([]byte, error) {
	h, err := r.header()
	if err != nil {
		return nil, err
	}
	if ref.Gen != r.gen || ref.Index < 0 || ref.Index >= int(h.Count) { //nolint:gosec // count <= capacity
		return nil, fmt.Errorf("%w: stale reference (gen %d, current %d)", ErrInvalidHandle, ref.Gen, r.gen)
	}
	return r.slot(h, ref.Index), nil
}

// Free discards every remaining element, last to first, releases the block
// and clears its signature. Freeing twice returns ErrInvalidHandle.
func (r *RawVector) Free() error {
	h, err := r.header()
	if err != nil {
		return err
	}

	released := int(h.Count) //nolint:gosec // count <= capacity
	r.discard(h, 0, released)
	r.gen++
	if err := r.blk.Release(); err != nil {
		return translateError(err)
	}

	r.logger.LogFree(released)
	return nil
}

// PushValue appends the fixed-size encoding of x (native byte order) to r.
//
// This is the boundary where typed values cross into untyped storage: the
// encoded size of x must equal r's element size. Types without a fixed
// encoding (int, slices, strings, pointers) report size -1 and are rejected
// with ErrTypeSizeMismatch.
func PushValue[T any](r *RawVector, x T) error {
	size := binary.Size(x)
	if !r.IsValid() {
		return ErrInvalidHandle
	}
	if size != r.ElemSize() {
		return &SizeMismatchError{Expected: r.ElemSize(), Actual: size}
	}

	buf, err := binary.Append(make([]byte, 0, size), binary.NativeEndian, x)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTypeSizeMismatch, err)
	}
	return r.Push(buf)
}

// ValueAt decodes the slot at index i into a T.
func ValueAt[T any](r *RawVector, i int) (T, error) {
	var x T
	if !r.IsValid() {
		return x, ErrInvalidHandle
	}
	if size := binary.Size(x); size != r.ElemSize() {
		return x, &SizeMismatchError{Expected: r.ElemSize(), Actual: size}
	}
	elem, ok := r.Get(i)
	if !ok {
		return x, &IndexError{Index: i, Len: r.Len()}
	}
	if _, err := binary.Decode(elem, binary.NativeEndian, &x); err != nil {
		return x, fmt.Errorf("%w: %w", ErrTypeSizeMismatch, err)
	}
	return x, nil
}

// FromRaw decodes every element of r into a new Vector[T] with the same
// capacity and growth rate. T's encoded size must equal r's element size.
func FromRaw[T any](r *RawVector, opts ...Option) (*Vector[T], error) {
	var zero T
	if !r.IsValid() {
		return nil, ErrInvalidHandle
	}
	if size := binary.Size(zero); size != r.ElemSize() {
		return nil, &SizeMismatchError{Expected: r.ElemSize(), Actual: size}
	}

	v, err := New[T](r.GrowthRate(), opts...)
	if err != nil {
		return nil, err
	}
	if err := v.Resize(r.Cap()); err != nil {
		_ = v.Free()
		return nil, err
	}

	rd := bytes.NewReader(r.Bytes())
	for i := 0; i < r.Len(); i++ {
		var x T
		if err := binary.Read(rd, binary.NativeEndian, &x); err != nil {
			_ = v.Free()
			return nil, fmt.Errorf("%w: %w", ErrTypeSizeMismatch, err)
		}
		if err := v.Push(x); err != nil {
			_ = v.Free()
			return nil, err
		}
	}
	return v, nil
}
