package pak_test

import (
	"slices"
	"testing"

	"github.com/hupe1980/pak"
	"github.com/stretchr/testify/assert"
)

func TestComparators(t *testing.T) {
	xs := []int{3, 1, 2}

	slices.SortFunc(xs, pak.Ascending[int])
	assert.Equal(t, []int{1, 2, 3}, xs)

	slices.SortFunc(xs, pak.Descending[int])
	assert.Equal(t, []int{3, 2, 1}, xs)

	slices.SortFunc(xs, pak.Reverse(pak.Comparator[int](pak.Descending[int])))
	assert.Equal(t, []int{1, 2, 3}, xs)

	assert.Negative(t, pak.Ascending("a", "b"))
	assert.Zero(t, pak.Descending(1.5, 1.5))
}
