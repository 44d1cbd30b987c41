// Package hash provides the byte-sequence hash functions used by pak
// dictionaries.
//
// All functions take an explicit byte slice; keys are never assumed to be
// NUL-terminated and may contain zero bytes.
//
//   - FNV1a64: default dictionary hash (Fowler-Noll-Vo, variant 1a)
//   - FNV1a32: 32-bit FNV-1a, widened to uint64
//   - CRC32C: hardware-accelerated Castagnoli CRC, widened to uint64
//
// For one-shot hashing:
//
//	h := hash.FNV1a64([]byte("Apple"))
package hash
