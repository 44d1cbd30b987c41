package pak

import (
	"reflect"
)

// Releaser is implemented by element types that own a resource which must be
// released when a container discards the element.
//
// Containers call Release on elements whose static type T implements
// Releaser, unless an explicit cleanup function was supplied.
type Releaser interface {
	Release()
}

var releaserType = reflect.TypeFor[Releaser]()

// lifecycle invokes the cleanup hook on discarded elements.
type lifecycle[T any] struct {
	hook    func(T)
	metrics MetricsCollector
}

func newLifecycle[T any](hook func(T), metrics MetricsCollector) lifecycle[T] {
	if hook == nil {
		hook = releaseHook[T]()
	}
	return lifecycle[T]{hook: hook, metrics: metrics}
}

// releaseHook returns a hook calling Release on non-nil elements, or nil if T
// does not implement Releaser.
func releaseHook[T any]() func(T) {
	t := reflect.TypeFor[T]()
	if !t.Implements(releaserType) {
		return nil
	}
	if !nilable(t.Kind()) {
		return func(v T) { any(v).(Releaser).Release() }
	}
	return func(v T) {
		if r, ok := any(v).(Releaser); ok && !isNil(r) {
			r.Release()
		}
	}
}

func nilable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// isNil reports whether r is nil or wraps a nil value.
func isNil(r Releaser) bool {
	if r == nil {
		return true
	}
	rv := reflect.ValueOf(r)
	return nilable(rv.Kind()) && rv.IsNil()
}

// discard runs the hook on *slot and zeroes it.
func (l lifecycle[T]) discard(slot *T) {
	if l.hook != nil {
		l.hook(*slot)
		l.metrics.RecordCleanup(1)
	}
	var zero T
	*slot = zero
}

// discardAll runs the hook on every slot from last to first and zeroes them.
func (l lifecycle[T]) discardAll(slots []T) {
	if l.hook != nil && len(slots) > 0 {
		for i := len(slots) - 1; i >= 0; i-- {
			l.hook(slots[i])
		}
		l.metrics.RecordCleanup(len(slots))
	}
	clear(slots)
}
