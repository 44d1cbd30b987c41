// Package block allocates the contiguous storage behind pak containers.
//
// A block is one allocation laid out as a fixed-size metadata header
// followed by element storage:
//
//	+-----------+----------------------------------------+
//	|  Header   |  elem 0 | elem 1 | ... | elem cap-1    |
//	| 32 bytes  |  elemSize * capacity bytes             |
//	+-----------+----------------------------------------+
//	            ^ Data()
//
// Callers index Data() as a flat sequence of elemSize-byte slots. The header
// lives inside the same allocation, so metadata and elements are never owned
// separately.
//
// # Memory Sources
//
//   - Heap: ordinary Go byte slices (default)
//   - OffHeap: anonymous mmap, invisible to the garbage collector
//
// Every allocation first reserves its size with the optional
// resource.Controller. A refused reservation, an overflowing size or a failed
// backing allocation all return an error and leave nothing reachable.
package block
