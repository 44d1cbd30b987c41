// Package pak provides generic containers with explicit lifecycle control:
// a growable vector with a fixed linear growth rate, a doubly linked list and
// a byte-keyed hash dictionary.
//
// Every container accepts a cleanup hook that runs exactly once on each
// element it discards (pop, truncation, overwrite, removal or Free). Element
// types implementing Releaser get their Release method as the default hook.
//
// # Quick Start
//
//	v, _ := pak.New[int](4)  // capacity 4, growth rate 4
//	for i := range 5 {
//	    _ = v.Push(i)         // the 5th push expands to 8
//	}
//	_ = v.Pop()               // 4 elements in 8 slots: contracts to 4
//	defer v.Free()
//
// # Growth Policy
//
// The initial capacity is also the growth rate. A push into a full vector
// expands the capacity by one rate step. A pop that leaves the count more
// than one rate step below the capacity contracts it by one step. Contraction
// never drops below min(rate, capacity), so a vector never reaches capacity 0.
//
// Resizes allocate first: if the new storage cannot be obtained the call
// fails with ErrAllocation and the vector is unchanged.
//
// # Raw Vectors
//
// RawVector stores fixed-size byte elements behind a 32-byte header
// (signature, element size, count, capacity, rate) in one block, optionally
// outside the Go heap:
//
//	r, _ := pak.NewRaw(8, 16, pak.WithOffHeap())
//	_ = pak.PushValue(r, int64(42))
//	x, _ := pak.ValueAt[int64](r, 0)
//
// # Memory Budget
//
// Containers can share a byte budget. A refused reservation surfaces as
// ErrAllocation. Shrinking reuses the reservation a container already
// holds, so it succeeds even when the budget is exhausted:
//
//	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20})
//	v, _ := pak.New[float64](128, pak.WithMemoryController(rc))
//
// # Stale References
//
// Ref names a slot at a point in time. Any resize, removal, reorder or Free
// invalidates it, and Resolve then fails with ErrInvalidHandle. Views
// returned by Slice and RawVector.Bytes follow the same rule but are not
// checked.
//
// # Concurrency
//
// Containers are not safe for concurrent use. Loggers, metrics collectors
// and resource controllers may be shared.
package pak
