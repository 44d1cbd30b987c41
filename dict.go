package pak

import (
	"bytes"
	"fmt"
	"iter"
	"unsafe"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/pak/internal/block"
	"github.com/hupe1980/pak/internal/conv"
	"github.com/hupe1980/pak/resource"
)

// HashFunc maps a key to a bucket hash. It must be deterministic.
type HashFunc func(key []byte) uint64

type entry[V any] struct {
	key   []byte
	value V
	next  *entry[V]
}

// Dict is a hash dictionary from byte-sequence keys to V, using separate
// chaining over a fixed number of buckets.
//
// The bucket array is a Vector, so it shares the vector's budget accounting.
// A roaring bitmap records the non-empty buckets; iteration, Clear and Free
// visit only those.
//
// A Dict is not safe for concurrent use.
type Dict[V any] struct {
	buckets  *Vector[*entry[V]]
	occupied *roaring.Bitmap
	count    int
	sig      uint32
	hash     HashFunc
	life     lifecycle[V]
	opts     []Option
	budget   *resource.Controller
	logger   *Logger
	metrics  MetricsCollector
}

// NewDict creates a dictionary with the given number of buckets. If V
// implements Releaser, replaced and removed values are released.
func NewDict[V any](buckets int, opts ...Option) (*Dict[V], error) {
	return NewDictWithCleanup[V](buckets, nil, opts...)
}

// NewDictWithCleanup creates a dictionary whose replaced and removed values
// are passed to cleanup.
func NewDictWithCleanup[V any](buckets int, cleanup func(V), opts ...Option) (*Dict[V], error) {
	o := applyOptions(opts)
	// Pin the resolved budget so the bucket vectors and entries share it,
	// even when it came from WithMemoryLimit.
	opts = append(opts[:len(opts):len(opts)], WithMemoryController(o.budget))

	b, err := newBuckets[V](buckets, opts)
	if err != nil {
		return nil, err
	}

	return &Dict[V]{
		buckets:  b,
		occupied: roaring.New(),
		sig:      block.Signature,
		hash:     o.hash,
		life:     newLifecycle(cleanup, o.metrics),
		opts:     opts,
		budget:   o.budget,
		logger:   o.logger.WithContainer("dict"),
		metrics:  o.metrics,
	}, nil
}

func newBuckets[V any](n int, opts []Option) (*Vector[*entry[V]], error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: bucket count must be positive, got %d", ErrInvalidArgument, n)
	}
	if _, err := conv.Uint32(n); err != nil {
		return nil, fmt.Errorf("%w: bucket count %d: %w", ErrInvalidArgument, n, err)
	}

	b, err := New[*entry[V]](n, opts...)
	if err != nil {
		return nil, err
	}
	for range n {
		if err := b.Push(nil); err != nil {
			_ = b.Free()
			return nil, err
		}
	}
	return b, nil
}

func entrySize[V any](key []byte) int64 {
	return int64(unsafe.Sizeof(entry[V]{})) + int64(len(key))
}

func (d *Dict[V]) check() error {
	if d == nil || d.sig != block.Signature {
		return ErrInvalidHandle
	}
	return nil
}

func (d *Dict[V]) bucket(key []byte) uint32 {
	return uint32(d.hash(key) % uint64(d.buckets.Len())) //nolint:gosec // bucket count fits uint32
}

func (d *Dict[V]) find(key []byte) *entry[V] {
	for e := d.buckets.At(int(d.bucket(key))); e != nil; e = e.next {
		if bytes.Equal(e.key, key) {
			return e
		}
	}
	return nil
}

// IsValid reports whether the dictionary is live (not freed).
func (d *Dict[V]) IsValid() bool {
	return d.check() == nil
}

// Len returns the number of entries. It is 0 for an invalid dictionary.
func (d *Dict[V]) Len() int {
	if d.check() != nil {
		return 0
	}
	return d.count
}

// Buckets returns the number of buckets.
func (d *Dict[V]) Buckets() int {
	if d.check() != nil {
		return 0
	}
	return d.buckets.Len()
}

// Put inserts or replaces the value for key. The key bytes are copied.
// A replaced value is passed to the cleanup hook.
func (d *Dict[V]) Put(key []byte, v V) error {
	if err := d.check(); err != nil {
		return err
	}

	if e := d.find(key); e != nil {
		d.life.discard(&e.value)
		e.value = v
		return nil
	}

	size := entrySize[V](key)
	if err := d.budget.AcquireMemory(size); err != nil {
		err = translateError(err)
		d.logger.LogAllocFailure("put", d.count+1, err)
		d.metrics.RecordAllocFailure(err)
		return err
	}

	i := d.bucket(key)
	head := d.buckets.At(int(i))
	_ = d.buckets.Set(int(i), &entry[V]{key: bytes.Clone(key), value: v, next: head})
	d.occupied.Add(i)
	d.count++
	return nil
}

// Get returns the value for key.
func (d *Dict[V]) Get(key []byte) (V, bool) {
	if d.check() != nil {
		var zero V
		return zero, false
	}
	e := d.find(key)
	if e == nil {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Contains reports whether key is present.
func (d *Dict[V]) Contains(key []byte) bool {
	_, ok := d.Get(key)
	return ok
}

// Delete removes key, running the cleanup hook on its value. It returns
// ErrNotFound if key is absent.
func (d *Dict[V]) Delete(key []byte) error {
	if err := d.check(); err != nil {
		return err
	}

	i := d.bucket(key)
	var prev *entry[V]
	for e := d.buckets.At(int(i)); e != nil; prev, e = e, e.next {
		if !bytes.Equal(e.key, key) {
			continue
		}
		if prev != nil {
			prev.next = e.next
		} else {
			_ = d.buckets.Set(int(i), e.next)
			if e.next == nil {
				d.occupied.Remove(i)
			}
		}
		d.drop(e)
		return nil
	}
	return fmt.Errorf("%w: key %q", ErrNotFound, key)
}

func (d *Dict[V]) drop(e *entry[V]) {
	d.life.discard(&e.value)
	d.budget.ReleaseMemory(entrySize[V](e.key))
	e.next = nil
	d.count--
}

// All returns an iterator over key/value pairs in bucket order. The key
// slices are owned by the dictionary and must not be modified.
func (d *Dict[V]) All() iter.Seq2[[]byte, V] {
	return func(yield func([]byte, V) bool) {
		if d.check() != nil {
			return
		}
		it := d.occupied.Iterator()
		for it.HasNext() {
			for e := d.buckets.At(int(it.Next())); e != nil; e = e.next {
				if !yield(e.key, e.value) {
					return
				}
			}
		}
	}
}

// Keys returns an iterator over the keys in bucket order.
func (d *Dict[V]) Keys() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for k := range d.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Rehash redistributes the entries over n buckets. The new bucket array is
// allocated first: on error the dictionary is unchanged.
func (d *Dict[V]) Rehash(n int) error {
	if err := d.check(); err != nil {
		return err
	}

	next, err := newBuckets[V](n, d.opts)
	if err != nil {
		return err
	}
	occupied := roaring.New()

	from := d.buckets.Len()
	it := d.occupied.Iterator()
	for it.HasNext() {
		e := d.buckets.At(int(it.Next()))
		for e != nil {
			following := e.next
			i := uint32(d.hash(e.key) % uint64(n)) //nolint:gosec // n fits uint32
			e.next = next.At(int(i))
			_ = next.Set(int(i), e)
			occupied.Add(i)
			e = following
		}
	}

	old := d.buckets
	d.buckets = next
	d.occupied = occupied
	_ = old.Free()

	if n > from {
		d.metrics.RecordGrow(from, n)
	} else if n < from {
		d.metrics.RecordShrink(from, n)
	}
	d.logger.LogResize(from, n, d.count)
	return nil
}

// Clear removes every entry, running the cleanup hook on each value.
func (d *Dict[V]) Clear() error {
	if err := d.check(); err != nil {
		return err
	}

	it := d.occupied.Iterator()
	for it.HasNext() {
		i := int(it.Next())
		e := d.buckets.At(i)
		_ = d.buckets.Set(i, nil)
		for e != nil {
			following := e.next
			d.drop(e)
			e = following
		}
	}
	d.occupied.Clear()
	return nil
}

// Free removes every entry, running the cleanup hook on each value, releases
// the buckets and invalidates the dictionary. Freeing twice returns
// ErrInvalidHandle.
func (d *Dict[V]) Free() error {
	released := d.Len()
	if err := d.Clear(); err != nil {
		return err
	}
	if err := d.buckets.Free(); err != nil {
		return err
	}
	d.sig = 0
	d.logger.LogFree(released)
	return nil
}
