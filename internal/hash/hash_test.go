package hash

import (
	stdfnv "hash/fnv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFNV1a_MatchesStdlib(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte(""),
		[]byte("Apple"),
		[]byte("Orange"),
		{0x00, 0x01, 0x00, 0xFF},
	}

	for _, in := range inputs {
		h32 := stdfnv.New32a()
		h32.Write(in)
		assert.Equal(t, uint64(h32.Sum32()), FNV1a32(in))

		h64 := stdfnv.New64a()
		h64.Write(in)
		assert.Equal(t, h64.Sum64(), FNV1a64(in))
	}
}

func TestFNV1a_EmbeddedZeroBytes(t *testing.T) {
	// Keys are length-delimited, so a trailing zero byte is significant.
	assert.NotEqual(t, FNV1a64([]byte("ab")), FNV1a64([]byte("ab\x00")))
	assert.NotEqual(t, FNV1a32([]byte("a\x00b")), FNV1a32([]byte("a")))
}

func TestCRC32C(t *testing.T) {
	// Known vector for "123456789".
	assert.Equal(t, uint64(0xE3069283), CRC32C([]byte("123456789")))
	assert.Equal(t, uint64(0), CRC32C(nil))
}
