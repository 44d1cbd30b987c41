package block

import (
	"fmt"
	"unsafe"

	"github.com/hupe1980/pak/internal/conv"
	"github.com/hupe1980/pak/resource"
)

// Slice is budgeted element storage for typed containers.
//
// Typed elements may hold Go pointers, so they always live on the Go heap
// in a []T rather than in raw block bytes. The reservation is the same
// elemSize*capacity charge a block would make, minus the header.
type Slice[T any] struct {
	Items    []T
	budget   *resource.Controller
	reserved int64
}

// MakeSlice allocates a zeroed slice of n elements of T.
func MakeSlice[T any](a *Allocator, n int) (*Slice[T], error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: capacity=%d", ErrInvalidSize, n)
	}

	var zero T
	size, err := conv.Mul(int(unsafe.Sizeof(zero)), n)
	if err != nil {
		return nil, err
	}

	budget := a.Budget()
	reserved := int64(size)
	if err := budget.AcquireMemory(reserved); err != nil {
		return nil, err
	}

	items, err := makeItems[T](n)
	if err != nil {
		budget.ReleaseMemory(reserved)
		return nil, err
	}

	return &Slice[T]{Items: items, budget: budget, reserved: reserved}, nil
}

// ShrinkSlice allocates n elements, fewer than s holds, and moves s's
// reservation onto them. The surplus goes back to the budget and nothing new
// is acquired. s keeps its items for copying until Release.
func ShrinkSlice[T any](s *Slice[T], n int) (*Slice[T], error) {
	if s == nil || s.Items == nil {
		return nil, ErrReleased
	}
	if n <= 0 || n >= len(s.Items) {
		return nil, fmt.Errorf("%w: shrink %d to %d", ErrInvalidSize, len(s.Items), n)
	}

	items, err := makeItems[T](n)
	if err != nil {
		return nil, err
	}

	var zero T
	reserved := int64(unsafe.Sizeof(zero)) * int64(n)
	s.budget.ReleaseMemory(s.reserved - reserved)
	s.reserved = 0

	return &Slice[T]{Items: items, budget: s.budget, reserved: reserved}, nil
}

func makeItems[T any](n int) (items []T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("make %d items: %v", n, r)
		}
	}()
	return make([]T, n), nil
}

// Bytes returns the reserved size in bytes.
func (s *Slice[T]) Bytes() int64 {
	if s == nil {
		return 0
	}
	return s.reserved
}

// Release drops the items and returns the reservation. It is idempotent.
func (s *Slice[T]) Release() {
	if s == nil || s.Items == nil {
		return
	}
	s.Items = nil
	s.budget.ReleaseMemory(s.reserved)
	s.reserved = 0
}
