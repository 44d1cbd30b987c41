package pak_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/hupe1980/pak"
	"github.com/hupe1980/pak/resource"
	"github.com/hupe1980/pak/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	v, err := pak.New[int](16)
	require.NoError(t, err)

	assert.True(t, v.IsValid())
	assert.Equal(t, 0, v.Len())
	assert.Equal(t, 16, v.Cap())
	assert.Equal(t, 16, v.GrowthRate())
	assert.NoError(t, v.Free())
}

func TestNew_InvalidCapacity(t *testing.T) {
	for _, c := range []int{0, -1} {
		v, err := pak.New[int](c)
		assert.Nil(t, v)
		assert.ErrorIs(t, err, pak.ErrAllocation)
		assert.ErrorIs(t, err, pak.ErrInvalidArgument)
	}
}

func TestVector_PushPopRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(4711)

	for _, n := range []int{1, 3, 17, 200} {
		v, err := pak.New[int64](4)
		require.NoError(t, err)

		vals := rng.Int64s(n)
		for _, x := range vals {
			require.NoError(t, v.Push(x))
		}

		require.Equal(t, n, v.Len())
		for i, x := range vals {
			assert.Equal(t, x, v.At(i))
		}

		for range n {
			require.NoError(t, v.Pop())
		}
		assert.Equal(t, 0, v.Len())
		assert.True(t, v.IsValid())
		assert.GreaterOrEqual(t, v.Cap(), 1)
	}
}

func TestVector_PopEmpty(t *testing.T) {
	v, err := pak.New[int](2)
	require.NoError(t, err)

	for range 5 {
		assert.NoError(t, v.Pop())
		assert.Equal(t, 0, v.Len())
	}
	assert.Equal(t, 2, v.Cap())
}

func TestVector_LargeScenario(t *testing.T) {
	v, err := pak.New[int](1024)
	require.NoError(t, err)

	for i := range 5000 {
		require.NoError(t, v.Push(i))
	}
	assert.Equal(t, 5000, v.Len())
	assert.GreaterOrEqual(t, v.Cap(), 5000)
	assert.Equal(t, 0, v.Cap()%1024)

	for range 5000 {
		require.NoError(t, v.Pop())
	}
	assert.Equal(t, 0, v.Len())
	assert.Equal(t, 1024, v.Cap())
}

func TestVector_GrowthHysteresis(t *testing.T) {
	v, err := pak.New[int](4)
	require.NoError(t, err)

	for i := range 4 {
		require.NoError(t, v.Push(i))
	}
	assert.Equal(t, 4, v.Cap(), "full vector does not expand until the next push")

	require.NoError(t, v.Push(4))
	assert.Equal(t, 8, v.Cap())

	require.NoError(t, v.Pop())
	assert.Equal(t, 8, v.Cap(), "count 4 is not below 8-4")

	require.NoError(t, v.Pop())
	assert.Equal(t, 4, v.Cap())
	assert.Equal(t, []int{0, 1, 2}, v.Slice())

	for v.Len() > 0 {
		require.NoError(t, v.Pop())
	}
	assert.Equal(t, 4, v.Cap(), "never contracts below the growth rate")
}

func TestVector_ContractFloor(t *testing.T) {
	v, err := pak.New[int](4)
	require.NoError(t, err)

	require.NoError(t, v.Resize(1))
	require.NoError(t, v.Contract())
	assert.Equal(t, 1, v.Cap())

	require.NoError(t, v.Resize(6))
	require.NoError(t, v.Contract())
	assert.Equal(t, 4, v.Cap())
	require.NoError(t, v.Contract())
	assert.Equal(t, 4, v.Cap())
}

func TestVector_Resize(t *testing.T) {
	tests := []struct {
		name      string
		pushed    int
		to        int
		wantLen   int
		wantDrops []int
	}{
		{"grow", 3, 10, 3, nil},
		{"grow past rate", 3, 5, 3, nil},
		{"truncate", 6, 2, 2, []int{5, 4, 3, 2}},
		{"same", 4, 4, 4, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder[int]()
			v, err := pak.NewWithCleanup(4, rec.Record)
			require.NoError(t, err)

			for i := range tt.pushed {
				require.NoError(t, v.Push(i))
			}
			require.NoError(t, v.Resize(tt.to))

			assert.Equal(t, tt.to, v.Cap())
			assert.Equal(t, tt.wantLen, v.Len())
			assert.Equal(t, tt.wantDrops, rec.Calls())
		})
	}
}

func TestVector_ResizeInvalid(t *testing.T) {
	v, err := pak.New[int](4)
	require.NoError(t, err)
	require.NoError(t, v.Push(1))

	err = v.Resize(0)
	assert.ErrorIs(t, err, pak.ErrInvalidArgument)
	assert.Equal(t, 4, v.Cap())
	assert.Equal(t, 1, v.Len())
}

func TestVector_CleanupOrder(t *testing.T) {
	rec := testutil.NewRecorder[string]()
	v, err := pak.NewWithCleanup(2, rec.Record)
	require.NoError(t, err)

	for _, s := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, v.Push(s))
	}
	for range 5 {
		require.NoError(t, v.Pop())
	}

	assert.Equal(t, []string{"e", "d", "c", "b", "a"}, rec.Calls())
}

func TestVector_FreeRunsHookLastFirst(t *testing.T) {
	rec := testutil.NewRecorder[int]()
	v, err := pak.NewWithCleanup(4, rec.Record)
	require.NoError(t, err)

	for i := range 3 {
		require.NoError(t, v.Push(i))
	}
	require.NoError(t, v.Free())

	assert.Equal(t, []int{2, 1, 0}, rec.Calls())
	assert.False(t, v.IsValid())
	assert.Equal(t, 0, v.Len())
	assert.Equal(t, 0, v.Cap())
}

func TestVector_UseAfterFree(t *testing.T) {
	v, err := pak.New[int](4)
	require.NoError(t, err)
	require.NoError(t, v.Free())

	assert.ErrorIs(t, v.Free(), pak.ErrInvalidHandle)
	assert.ErrorIs(t, v.Push(1), pak.ErrInvalidHandle)
	assert.ErrorIs(t, v.Pop(), pak.ErrInvalidHandle)
	assert.ErrorIs(t, v.Expand(), pak.ErrInvalidHandle)
	assert.ErrorIs(t, v.Contract(), pak.ErrInvalidHandle)
	assert.ErrorIs(t, v.Resize(8), pak.ErrInvalidHandle)
	assert.ErrorIs(t, v.Clear(), pak.ErrInvalidHandle)
	assert.Nil(t, v.Slice())

	_, ok := v.Get(0)
	assert.False(t, ok)

	assert.PanicsWithValue(t, pak.ErrInvalidHandle, func() { v.At(0) })

	var nilVec *pak.Vector[int]
	assert.False(t, nilVec.IsValid())
	assert.ErrorIs(t, nilVec.Push(1), pak.ErrInvalidHandle)
}

func TestVector_ReleaserElements(t *testing.T) {
	rs := testutil.NewResources(6)
	v, err := pak.New[*testutil.Resource](2)
	require.NoError(t, err)

	for _, r := range rs {
		require.NoError(t, v.Push(r))
	}
	require.NoError(t, v.Pop())
	require.NoError(t, v.Set(0, testutil.NewResources(1)[0]))
	require.NoError(t, v.Free())

	for _, r := range rs {
		assert.Equal(t, 1, r.Releases(), "resource %d", r.ID)
	}
}

func TestVector_ExplicitHookOverridesReleaser(t *testing.T) {
	rec := testutil.NewRecorder[*testutil.Resource]()
	rs := testutil.NewResources(2)

	v, err := pak.NewWithCleanup(2, rec.Record)
	require.NoError(t, err)
	for _, r := range rs {
		require.NoError(t, v.Push(r))
	}
	require.NoError(t, v.Free())

	assert.Equal(t, 2, rec.Count())
	assert.Equal(t, 0, rs[0].Releases())
}

func TestVector_NilInterfaceElement(t *testing.T) {
	v, err := pak.New[pak.Releaser](2)
	require.NoError(t, err)

	require.NoError(t, v.Push(nil))
	assert.NotPanics(t, func() { _ = v.Pop() })
}

func TestVector_NilPointerElement(t *testing.T) {
	rs := testutil.NewResources(2)
	v, err := pak.New[*testutil.Resource](2)
	require.NoError(t, err)

	require.NoError(t, v.Push(rs[0]))
	require.NoError(t, v.Push(nil))
	require.NoError(t, v.Push(rs[1]))
	require.NoError(t, v.Push(nil))

	require.NotPanics(t, func() { require.NoError(t, v.Pop()) })
	assert.Equal(t, 3, v.Len())
	require.NoError(t, v.Set(1, nil))
	require.NoError(t, v.Free())

	for _, r := range rs {
		assert.Equal(t, 1, r.Releases())
	}
}

func TestVector_AtOutOfRange(t *testing.T) {
	v, err := pak.New[int](2)
	require.NoError(t, err)
	require.NoError(t, v.Push(7))

	assert.Equal(t, 7, v.At(0))
	assert.Panics(t, func() { v.At(1) })
	assert.Panics(t, func() { v.At(-1) })

	_, ok := v.Get(1)
	assert.False(t, ok)

	var ie *pak.IndexError
	require.ErrorAs(t, v.Set(3, 1), &ie)
	assert.Equal(t, 3, ie.Index)
	assert.Equal(t, 1, ie.Len)
}

func TestVector_GetSetLast(t *testing.T) {
	v, err := pak.New[string](2)
	require.NoError(t, err)

	_, ok := v.Last()
	assert.False(t, ok)

	require.NoError(t, v.Push("x"))
	require.NoError(t, v.Push("y"))
	require.NoError(t, v.Set(0, "z"))

	got, ok := v.Get(0)
	assert.True(t, ok)
	assert.Equal(t, "z", got)

	last, ok := v.Last()
	assert.True(t, ok)
	assert.Equal(t, "y", last)
}

func TestVector_Iterators(t *testing.T) {
	v, err := pak.New[int](3)
	require.NoError(t, err)
	for i := range 5 {
		require.NoError(t, v.Push(i * 10))
	}

	var fwd, bwd []int
	for _, x := range v.All() {
		fwd = append(fwd, x)
	}
	for i, x := range v.Backward() {
		assert.Equal(t, i*10, x)
		bwd = append(bwd, x)
	}

	assert.Equal(t, []int{0, 10, 20, 30, 40}, fwd)
	assert.Equal(t, []int{40, 30, 20, 10, 0}, bwd)

	var firstTwo []int
	for _, x := range v.All() {
		if len(firstTwo) == 2 {
			break
		}
		firstTwo = append(firstTwo, x)
	}
	assert.Equal(t, []int{0, 10}, firstTwo)
}

func TestVector_Sort(t *testing.T) {
	v, err := pak.New[int](4)
	require.NoError(t, err)
	for _, x := range []int{3, 1, 4, 1, 5, 9, 2, 6} {
		require.NoError(t, v.Push(x))
	}

	require.NoError(t, v.Sort(pak.Ascending[int]))
	assert.True(t, slices.IsSorted(v.Slice()))

	require.NoError(t, v.Sort(pak.Descending[int]))
	assert.Equal(t, 9, v.At(0))
}

func TestVector_Clear(t *testing.T) {
	rec := testutil.NewRecorder[int]()
	v, err := pak.NewWithCleanup(2, rec.Record)
	require.NoError(t, err)
	for i := range 5 {
		require.NoError(t, v.Push(i))
	}
	capBefore := v.Cap()

	require.NoError(t, v.Clear())

	assert.Equal(t, 0, v.Len())
	assert.Equal(t, capBefore, v.Cap())
	assert.Equal(t, []int{4, 3, 2, 1, 0}, rec.Calls())
	assert.True(t, v.IsValid())
}

func TestVector_StaleRef(t *testing.T) {
	v, err := pak.New[int](2)
	require.NoError(t, err)
	require.NoError(t, v.Push(1))
	require.NoError(t, v.Push(2))

	ref, err := v.Ref(1)
	require.NoError(t, err)

	p, err := v.Resolve(ref)
	require.NoError(t, err)
	assert.Equal(t, 2, *p)

	require.NoError(t, v.Push(3)) // expands
	_, err = v.Resolve(ref)
	assert.ErrorIs(t, err, pak.ErrInvalidHandle)

	_, err = v.Ref(5)
	assert.ErrorIs(t, err, pak.ErrInvalidArgument)
}

func TestVector_StaleRefAfterPopAndSort(t *testing.T) {
	v, err := pak.New[int](4)
	require.NoError(t, err)
	for i := range 3 {
		require.NoError(t, v.Push(i))
	}

	ref, err := v.Ref(0)
	require.NoError(t, err)
	require.NoError(t, v.Pop())
	_, err = v.Resolve(ref)
	assert.ErrorIs(t, err, pak.ErrInvalidHandle)

	ref, err = v.Ref(0)
	require.NoError(t, err)
	require.NoError(t, v.Sort(pak.Descending[int]))
	_, err = v.Resolve(ref)
	assert.ErrorIs(t, err, pak.ErrInvalidHandle)
}

func TestVector_MemoryBudget(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 8 * 8})

	v, err := pak.New[int64](4, pak.WithMemoryController(rc))
	require.NoError(t, err)
	assert.Equal(t, int64(32), rc.MemoryUsage())

	for i := range 4 {
		require.NoError(t, v.Push(int64(i)))
	}

	// Expansion to 8 needs 64 more bytes while the old 32 are still held.
	err = v.Push(4)
	require.ErrorIs(t, err, pak.ErrAllocation)
	assert.True(t, errors.Is(err, resource.ErrMemoryLimitExceeded))

	assert.Equal(t, 4, v.Len())
	assert.Equal(t, 4, v.Cap())
	assert.Equal(t, []int64{0, 1, 2, 3}, v.Slice())
	assert.Equal(t, int64(32), rc.MemoryUsage())

	require.NoError(t, v.Free())
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestVector_ResizeFailureKeepsElements(t *testing.T) {
	rec := testutil.NewRecorder[int64]()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 8 * 8})

	v, err := pak.NewWithCleanup(8, rec.Record, pak.WithMemoryController(rc))
	require.NoError(t, err)
	for i := range 6 {
		require.NoError(t, v.Push(int64(i)))
	}

	err = v.Resize(9)
	require.ErrorIs(t, err, pak.ErrAllocation)

	assert.Equal(t, 6, v.Len())
	assert.Equal(t, 8, v.Cap())
	assert.Equal(t, []int64{0, 1, 2, 3, 4, 5}, v.Slice())
	assert.Zero(t, rec.Count())
}

func TestVector_ShrinkWithExhaustedBudget(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 96})
	m := &pak.BasicMetricsCollector{}

	v, err := pak.New[int64](4, pak.WithMemoryController(rc), pak.WithMetrics(m))
	require.NoError(t, err)
	for i := range 5 {
		require.NoError(t, v.Push(int64(i)))
	}
	require.Equal(t, 8, v.Cap())

	other, err := pak.New[int64](4, pak.WithMemoryController(rc))
	require.NoError(t, err)
	require.Equal(t, int64(96), rc.MemoryUsage(), "budget is exhausted")

	for range 5 {
		require.NoError(t, v.Pop())
	}
	assert.Equal(t, 0, v.Len())
	assert.Equal(t, 4, v.Cap(), "automatic contraction ran")
	assert.Equal(t, int64(64), rc.MemoryUsage())
	assert.Zero(t, m.GetStats().AllocFailures)

	require.NoError(t, other.Push(1))
	require.NoError(t, other.Resize(2))
	assert.Equal(t, 1, other.Len())
	assert.Equal(t, int64(32+16), rc.MemoryUsage())

	require.NoError(t, pak.FreeAll(v, other))
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestVector_CreateOverBudget(t *testing.T) {
	v, err := pak.New[int64](16, pak.WithMemoryLimit(64))
	assert.Nil(t, v)
	assert.ErrorIs(t, err, pak.ErrAllocation)
}

func TestVector_Metrics(t *testing.T) {
	m := &pak.BasicMetricsCollector{}
	v, err := pak.NewWithCleanup(2, func(int) {}, pak.WithMetrics(m))
	require.NoError(t, err)

	for i := range 5 {
		require.NoError(t, v.Push(i))
	}
	for range 5 {
		require.NoError(t, v.Pop())
	}

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats.GrowCount)
	assert.Equal(t, int64(2), stats.ShrinkCount)
	assert.Equal(t, int64(5), stats.CleanupCount)
	assert.Equal(t, int64(0), stats.AllocFailures)
}
