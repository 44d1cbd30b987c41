package pak

import (
	"errors"
	"fmt"

	"github.com/hupe1980/pak/internal/block"
	"github.com/hupe1980/pak/internal/conv"
	"github.com/hupe1980/pak/internal/mmap"
	"github.com/hupe1980/pak/resource"
)

var (
	// ErrAllocation is returned when backing storage cannot be obtained:
	// the memory budget is exhausted, the size overflows, or the allocator failed.
	ErrAllocation = errors.New("allocation failed")

	// ErrInvalidArgument is returned for non-positive capacities, bucket counts
	// and mismatched element sizes.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidHandle is returned when a container's validity signature does
	// not hold: it was freed, or a reference predates a resize.
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrNotFound is returned when deleting a dictionary key that is absent.
	ErrNotFound = errors.New("not found")

	// ErrTypeSizeMismatch is returned when raw bytes or an encoded value do not
	// match a raw vector's element size. It matches ErrInvalidArgument.
	ErrTypeSizeMismatch = fmt.Errorf("%w: element size mismatch", ErrInvalidArgument)
)

// SizeMismatchError indicates an element whose byte size differs from the
// container's fixed element size.
//
// It matches ErrTypeSizeMismatch and ErrInvalidArgument via errors.Is.
type SizeMismatchError struct {
	Expected int
	Actual   int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("element size mismatch: expected %d bytes, got %d", e.Expected, e.Actual)
}

func (e *SizeMismatchError) Unwrap() error { return ErrTypeSizeMismatch }

// IndexError indicates an index outside [0, Len).
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index out of range [%d] with length %d", e.Index, e.Len)
}

func (e *IndexError) Unwrap() error { return ErrInvalidArgument }

func invalidCapacity(capacity int) error {
	return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidArgument, capacity)
}

// translateError maps internal allocation failures onto the public taxonomy.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrAllocation), errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrInvalidHandle):
		return err
	case errors.Is(err, resource.ErrMemoryLimitExceeded),
		errors.Is(err, conv.ErrOverflow),
		errors.Is(err, mmap.ErrInvalidSize):
		return fmt.Errorf("%w: %w", ErrAllocation, err)
	case errors.Is(err, block.ErrInvalidSize):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	// Anything else came from the backing allocator itself.
	return fmt.Errorf("%w: %w", ErrAllocation, err)
}
