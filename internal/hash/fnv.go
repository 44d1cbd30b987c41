package hash

const (
	fnvOffset32 uint32 = 2166136261
	fnvPrime32  uint32 = 16777619

	fnvOffset64 uint64 = 14695981039346656037
	fnvPrime64  uint64 = 1099511628211
)

// FNV1a32 computes the 32-bit FNV-1a hash of data.
func FNV1a32(data []byte) uint64 {
	h := fnvOffset32
	for _, c := range data {
		h ^= uint32(c)
		h *= fnvPrime32
	}
	return uint64(h)
}

// FNV1a64 computes the 64-bit FNV-1a hash of data.
func FNV1a64(data []byte) uint64 {
	h := fnvOffset64
	for _, c := range data {
		h ^= uint64(c)
		h *= fnvPrime64
	}
	return h
}
