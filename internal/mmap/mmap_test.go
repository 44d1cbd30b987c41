package mmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapAnon_ReadWriteClose(t *testing.T) {
	m, err := MapAnon(8192)
	require.NoError(t, err)

	buf := m.Bytes()
	require.Len(t, buf, 8192)
	assert.Equal(t, 8192, m.Size())

	// Fresh anonymous memory is zero-filled.
	for _, b := range buf[:64] {
		require.Zero(t, b)
	}

	buf[0] = 0xAB
	buf[8191] = 0xCD
	assert.Equal(t, byte(0xAB), m.Bytes()[0])
	assert.Equal(t, byte(0xCD), m.Bytes()[8191])

	require.NoError(t, m.Advise(AccessRandom))
	require.NoError(t, m.Advise(AccessDontNeed))

	require.NoError(t, m.Close())
	assert.Nil(t, m.Bytes())
	assert.ErrorIs(t, m.Advise(AccessDefault), ErrClosed)

	// Idempotent.
	require.NoError(t, m.Close())
}

func TestMapAnon_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		m, err := MapAnon(size)
		assert.Nil(t, m)
		assert.ErrorIs(t, err, ErrInvalidSize)
	}
}
