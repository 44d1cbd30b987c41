package block

import (
	"errors"
	"fmt"

	"github.com/hupe1980/pak/internal/conv"
	"github.com/hupe1980/pak/internal/mmap"
	"github.com/hupe1980/pak/resource"
)

var (
	// ErrInvalidSize is returned for non-positive element sizes or capacities.
	ErrInvalidSize = errors.New("block: invalid size")
	// ErrReleased is returned when shrinking a block after Release.
	ErrReleased = errors.New("block: released")
)

// Source selects where block memory comes from.
type Source int

const (
	// Heap allocates from the Go heap.
	Heap Source = iota
	// OffHeap allocates anonymous mmap memory.
	OffHeap
)

func (s Source) String() string {
	switch s {
	case Heap:
		return "heap"
	case OffHeap:
		return "off-heap"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// Allocator hands out blocks charged against an optional memory budget.
// The zero value allocates from the heap without a budget.
type Allocator struct {
	budget *resource.Controller
	source Source
}

// NewAllocator creates an allocator. budget may be nil.
func NewAllocator(budget *resource.Controller, source Source) *Allocator {
	return &Allocator{budget: budget, source: source}
}

// Budget returns the attached memory controller (may be nil).
func (a *Allocator) Budget() *resource.Controller {
	if a == nil {
		return nil
	}
	return a.budget
}

// Source returns the memory source.
func (a *Allocator) Source() Source {
	if a == nil {
		return Heap
	}
	return a.source
}

// Block is a single header-prefixed allocation.
type Block struct {
	buf      []byte
	mapping  *mmap.Mapping
	budget   *resource.Controller
	reserved int64
	released bool
}

// Size returns the number of bytes needed for a block holding capacity
// elements of elemSize bytes plus the header.
func Size(elemSize, capacity int) (int, error) {
	if elemSize <= 0 || capacity <= 0 {
		return 0, fmt.Errorf("%w: elemSize=%d capacity=%d", ErrInvalidSize, elemSize, capacity)
	}
	n, err := conv.Mul(elemSize, capacity)
	if err != nil {
		return 0, err
	}
	return conv.Add(HeaderSize, n)
}

// Alloc allocates a zeroed block for capacity elements of elemSize bytes and
// writes its header (count 0, rate = capacity).
func (a *Allocator) Alloc(elemSize, capacity int) (*Block, error) {
	size, err := blockSize(elemSize, capacity)
	if err != nil {
		return nil, err
	}

	budget := a.Budget()
	reserved := int64(size)
	if err := budget.AcquireMemory(reserved); err != nil {
		return nil, err
	}

	b, err := a.allocate(size)
	if err != nil {
		budget.ReleaseMemory(reserved)
		return nil, err
	}
	b.budget = budget
	b.reserved = reserved

	b.SetHeader(newHeader(elemSize, capacity))
	return b, nil
}

// Shrink allocates a smaller block for capacity elements that takes over
// old's reservation. The surplus goes back to the budget and nothing new is
// acquired, so a shrink succeeds even when the budget is exhausted.
//
// old keeps its memory for copying until Release, which then returns
// nothing further to the budget.
func (a *Allocator) Shrink(old *Block, elemSize, capacity int) (*Block, error) {
	if old == nil || old.released {
		return nil, ErrReleased
	}
	size, err := blockSize(elemSize, capacity)
	if err != nil {
		return nil, err
	}
	if int64(size) > old.reserved {
		return nil, fmt.Errorf("%w: shrink to %d bytes from %d", ErrInvalidSize, size, old.reserved)
	}

	b, err := a.allocate(size)
	if err != nil {
		return nil, err
	}
	b.budget = old.budget
	b.reserved = int64(size)
	old.budget.ReleaseMemory(old.reserved - b.reserved)
	old.reserved = 0

	b.SetHeader(newHeader(elemSize, capacity))
	return b, nil
}

func blockSize(elemSize, capacity int) (int, error) {
	if _, err := conv.Uint32(elemSize); err != nil {
		return 0, fmt.Errorf("%w: elemSize=%d: %w", ErrInvalidSize, elemSize, err)
	}
	return Size(elemSize, capacity)
}

func newHeader(elemSize, capacity int) Header {
	return Header{
		Signature: Signature,
		ElemSize:  uint32(elemSize), //nolint:gosec // checked by blockSize
		Capacity:  uint64(capacity), //nolint:gosec // capacity > 0
		Rate:      uint64(capacity), //nolint:gosec // capacity > 0
	}
}

// allocate obtains size bytes from the allocator's source. The caller owns
// the budget accounting.
func (a *Allocator) allocate(size int) (*Block, error) {
	b := &Block{}

	switch a.Source() {
	case OffHeap:
		m, err := mmap.MapAnon(size)
		if err != nil {
			return nil, fmt.Errorf("failed to map anonymous memory for block: %w", err)
		}
		// Containers append and scan front to back. The hint is advisory.
		_ = m.Advise(mmap.AccessSequential)
		b.mapping = m
		b.buf = m.Bytes()
	default:
		buf, err := makeBytes(size)
		if err != nil {
			return nil, err
		}
		b.buf = buf
	}

	return b, nil
}

func makeBytes(size int) (buf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("make %d bytes: %v", size, r)
		}
	}()
	return make([]byte, size), nil
}

// Header decodes the block header.
func (b *Block) Header() Header {
	if b == nil || b.released {
		return Header{}
	}
	return readHeader(b.buf)
}

// SetHeader encodes h into the block header.
func (b *Block) SetHeader(h Header) {
	if b == nil || b.released {
		return
	}
	h.put(b.buf)
}

// Data returns the element storage that follows the header.
// It is nil after Release.
func (b *Block) Data() []byte {
	if b == nil || b.released {
		return nil
	}
	return b.buf[HeaderSize:]
}

// Len returns the total block size including the header.
func (b *Block) Len() int {
	if b == nil || b.released {
		return 0
	}
	if b.mapping != nil {
		return b.mapping.Size()
	}
	return len(b.buf)
}

// OffHeap reports whether the block is backed by an anonymous mapping.
func (b *Block) OffHeap() bool {
	return b != nil && b.mapping != nil
}

// Release clears the signature, frees the memory and returns the reservation.
// It is idempotent.
func (b *Block) Release() error {
	if b == nil || b.released {
		return nil
	}

	clearSignature(b.buf)
	b.released = true

	var err error
	if b.mapping != nil {
		err = b.mapping.Close()
		b.mapping = nil
	}
	b.buf = nil
	b.budget.ReleaseMemory(b.reserved)
	b.reserved = 0
	return err
}

func clearSignature(buf []byte) {
	for i := 0; i < 4 && i < len(buf); i++ {
		buf[i] = 0
	}
}
