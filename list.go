package pak

import (
	"iter"
	"unsafe"

	"github.com/hupe1980/pak/internal/block"
	"github.com/hupe1980/pak/resource"
)

// Node is an element of a List.
type Node[T any] struct {
	Value T

	next, prev *Node[T]
	list       *List[T]
}

// Next returns the following node or nil.
func (n *Node[T]) Next() *Node[T] {
	if n == nil || n.list == nil {
		return nil
	}
	return n.next
}

// Prev returns the preceding node or nil.
func (n *Node[T]) Prev() *Node[T] {
	if n == nil || n.list == nil {
		return nil
	}
	return n.prev
}

// List is a doubly linked list of T with an optional cleanup hook.
//
// Every node is charged against the memory budget, if one is configured, so
// pushes can fail with ErrAllocation.
//
// A List is not safe for concurrent use.
type List[T any] struct {
	front, back *Node[T]
	count       int
	sig         uint32
	life        lifecycle[T]
	budget      *resource.Controller
	logger      *Logger
	metrics     MetricsCollector
}

// NewList creates an empty list. If T implements Releaser, removed elements
// are released.
func NewList[T any](opts ...Option) *List[T] {
	return NewListWithCleanup[T](nil, opts...)
}

// NewListWithCleanup creates an empty list whose removed elements are passed
// to cleanup.
func NewListWithCleanup[T any](cleanup func(T), opts ...Option) *List[T] {
	o := applyOptions(opts)
	return &List[T]{
		sig:     block.Signature,
		life:    newLifecycle(cleanup, o.metrics),
		budget:  o.budget,
		logger:  o.logger.WithContainer("list"),
		metrics: o.metrics,
	}
}

func nodeSize[T any]() int64 {
	return int64(unsafe.Sizeof(Node[T]{}))
}

func (l *List[T]) check() error {
	if l == nil || l.sig != block.Signature {
		return ErrInvalidHandle
	}
	return nil
}

// IsValid reports whether the list is live (not freed).
func (l *List[T]) IsValid() bool {
	return l.check() == nil
}

// Len returns the number of elements. It is 0 for an invalid list.
func (l *List[T]) Len() int {
	if l.check() != nil {
		return 0
	}
	return l.count
}

// Front returns the first node or nil.
func (l *List[T]) Front() *Node[T] {
	if l.check() != nil {
		return nil
	}
	return l.front
}

// Back returns the last node or nil.
func (l *List[T]) Back() *Node[T] {
	if l.check() != nil {
		return nil
	}
	return l.back
}

func (l *List[T]) newNode(v T) (*Node[T], error) {
	if err := l.budget.AcquireMemory(nodeSize[T]()); err != nil {
		err = translateError(err)
		l.logger.LogAllocFailure("push", l.count+1, err)
		l.metrics.RecordAllocFailure(err)
		return nil, err
	}
	return &Node[T]{Value: v, list: l}, nil
}

// PushBack appends v and returns its node.
func (l *List[T]) PushBack(v T) (*Node[T], error) {
	if err := l.check(); err != nil {
		return nil, err
	}
	n, err := l.newNode(v)
	if err != nil {
		return nil, err
	}

	n.prev = l.back
	if l.back != nil {
		l.back.next = n
	} else {
		l.front = n
	}
	l.back = n
	l.count++
	return n, nil
}

// PushFront prepends v and returns its node.
func (l *List[T]) PushFront(v T) (*Node[T], error) {
	if err := l.check(); err != nil {
		return nil, err
	}
	n, err := l.newNode(v)
	if err != nil {
		return nil, err
	}

	n.next = l.front
	if l.front != nil {
		l.front.prev = n
	} else {
		l.back = n
	}
	l.front = n
	l.count++
	return n, nil
}

// PopBack removes the last element, running the cleanup hook on it.
// Popping an empty list is a no-op.
func (l *List[T]) PopBack() error {
	if err := l.check(); err != nil {
		return err
	}
	if l.back != nil {
		l.unlink(l.back)
	}
	return nil
}

// PopFront removes the first element, running the cleanup hook on it.
// Popping an empty list is a no-op.
func (l *List[T]) PopFront() error {
	if err := l.check(); err != nil {
		return err
	}
	if l.front != nil {
		l.unlink(l.front)
	}
	return nil
}

// Remove unlinks n, running the cleanup hook on its value. It returns
// ErrInvalidArgument if n does not belong to l.
func (l *List[T]) Remove(n *Node[T]) error {
	if err := l.check(); err != nil {
		return err
	}
	if n == nil || n.list != l {
		return ErrInvalidArgument
	}
	l.unlink(n)
	return nil
}

func (l *List[T]) unlink(n *Node[T]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.front = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.back = n.prev
	}
	n.next, n.prev, n.list = nil, nil, nil
	l.count--

	l.life.discard(&n.Value)
	l.budget.ReleaseMemory(nodeSize[T]())
}

// All returns an iterator over the values, front to back.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := l.Front(); n != nil; n = n.Next() {
			if !yield(n.Value) {
				return
			}
		}
	}
}

// Backward returns an iterator over the values, back to front.
func (l *List[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := l.Back(); n != nil; n = n.Prev() {
			if !yield(n.Value) {
				return
			}
		}
	}
}

// Clear removes every element, back to front, keeping the list usable.
func (l *List[T]) Clear() error {
	if err := l.check(); err != nil {
		return err
	}
	for l.back != nil {
		l.unlink(l.back)
	}
	return nil
}

// Free removes every element, back to front, and invalidates the list.
// Freeing twice returns ErrInvalidHandle.
func (l *List[T]) Free() error {
	released := l.Len()
	if err := l.Clear(); err != nil {
		return err
	}
	l.sig = 0
	l.logger.LogFree(released)
	return nil
}
