package pak

import (
	"cmp"
)

// Comparator orders two elements: negative if a sorts before b, zero if
// they are equivalent, positive if a sorts after b.
type Comparator[T any] func(a, b T) int

// Ascending orders ordered values from smallest to largest.
func Ascending[T cmp.Ordered](a, b T) int {
	return cmp.Compare(a, b)
}

// Descending orders ordered values from largest to smallest.
func Descending[T cmp.Ordered](a, b T) int {
	return cmp.Compare(b, a)
}

// Reverse inverts a comparator.
func Reverse[T any](c Comparator[T]) Comparator[T] {
	return func(a, b T) int {
		return c(b, a)
	}
}
