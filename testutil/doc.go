// Package testutil provides testing utilities for pak containers.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random generator for keys and values, and recorders
// that observe cleanup hooks.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	keys := rng.Keys(100, 16)     // 100 distinct 16-byte keys
//	vals := rng.Int64s(100)
//	i := rng.Zipf(1000, 1.5)      // skewed index, for hot-key workloads
//
// # Observing Cleanup
//
//	rec := testutil.NewRecorder[int]()
//	v, _ := pak.NewWithCleanup[int](4, rec.Record)
//	...
//	assert.Equal(t, []int{3, 2, 1}, rec.Calls())
package testutil
