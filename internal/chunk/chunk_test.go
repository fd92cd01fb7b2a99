package chunk

import (
	"testing"

	"github.com/jmylchreest/codecrun/internal/codecerr"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5}
	dur := int64(33333)
	c := New(TypeKey, 0, &dur, src)

	require.Equal(t, TypeKey, c.Type())
	require.Equal(t, int64(0), c.Timestamp())
	d, ok := c.Duration()
	require.True(t, ok)
	require.Equal(t, dur, d)
	require.Equal(t, len(src), c.ByteLength())

	dst := make([]byte, c.ByteLength())
	require.NoError(t, c.CopyTo(dst))
	require.Equal(t, src, dst)
}

func TestCopyToTooSmall(t *testing.T) {
	c := New(TypeDelta, 1000, nil, []byte{1, 2, 3})
	err := c.CopyTo(make([]byte, 2))
	require.Error(t, err)
	require.True(t, codecerr.Is(err, codecerr.BufferTooSmall))
}

func TestChunkIsImmutableAfterConstruction(t *testing.T) {
	src := []byte{9, 9, 9}
	c := New(TypeKey, 0, nil, src)
	src[0] = 0 // mutating the caller's slice must not affect the chunk

	dst := make([]byte, 3)
	require.NoError(t, c.CopyTo(dst))
	require.Equal(t, []byte{9, 9, 9}, dst)
}
