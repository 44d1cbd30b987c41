// Package mmap provides anonymous, read-write memory mappings used as
// off-heap backing storage for container blocks.
//
// # Usage
//
//	m, err := mmap.MapAnon(4096)
//	if err != nil { ... }
//	defer m.Close()
//
//	buf := m.Bytes() // zero-filled, len(buf) == 4096
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE, madvise(2) hints
//   - Windows: VirtualAlloc/VirtualFree (advice is a no-op)
//
// Memory obtained here is invisible to the Go garbage collector. It must not
// hold Go pointers, and it is only returned to the OS by Close.
package mmap
