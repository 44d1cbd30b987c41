// Package resource implements a shared memory budget for pak containers.
//
// A Controller tracks the bytes reserved by every container it is attached
// to and, when a hard limit is configured, refuses reservations that would
// exceed it. Reservation is non-blocking and fail-fast: containers are
// synchronous, so a refused reservation surfaces immediately as an
// allocation error and the container is left exactly as it was.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20, // 64MB across all attached containers
//	})
//
//	v, err := pak.New[int64](1024, pak.WithMemoryController(rc))
//
// # Thread Safety
//
// Containers are single-threaded, but one Controller may be shared by
// containers owned by different goroutines. All Controller methods are safe
// for concurrent use.
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
// This allows optional budgeting without nil checks everywhere.
package resource
