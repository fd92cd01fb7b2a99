package resource

import (
	"testing"

	"github.com/jmylchreest/codecrun/internal/codecerr"
	"github.com/stretchr/testify/require"
)

func rgbaInit(w, h int) Init {
	stride := w * 4
	return Init{
		Kind:   KindVideo,
		Format: "RGBA",
		Video: VideoGeometry{
			CodedWidth:  w,
			CodedHeight: h,
			VisibleRect: Rect{Width: w, Height: h},
		},
		Layout: []PlaneLayout{{Offset: 0, Stride: stride, Rows: h}},
	}
}

func TestConstructValidatesLayout(t *testing.T) {
	payload := make([]byte, 64*64*4)

	_, err := Construct(payload, false, rgbaInit(64, 64))
	require.NoError(t, err)

	bad := rgbaInit(64, 64)
	bad.Layout[0].Rows = 65
	_, err = Construct(payload, false, bad)
	require.Error(t, err)
	require.True(t, codecerr.Is(err, codecerr.InvalidLayout))
}

func TestConstructRejectsZeroDimension(t *testing.T) {
	payload := make([]byte, 16)
	_, err := Construct(payload, false, rgbaInit(0, 4))
	require.Error(t, err)
	require.True(t, codecerr.Is(err, codecerr.InvalidLayout))
}

func TestCloneCloseLifecycle(t *testing.T) {
	payload := make([]byte, 64*64*4)
	for i := range payload {
		payload[i] = byte(i)
	}

	f, err := Construct(payload, false, rgbaInit(64, 64))
	require.NoError(t, err)

	g, err := f.Clone()
	require.NoError(t, err)

	f.Close()
	require.True(t, f.Closed())
	require.False(t, g.Closed())

	dst := make([]byte, 64*64*4)
	_, err = g.CopyTo(dst, CopyOptions{})
	require.NoError(t, err)
	require.Equal(t, payload, dst)

	_, err = f.CopyTo(dst, CopyOptions{})
	require.Error(t, err)
	require.True(t, codecerr.Is(err, codecerr.Detached))
}

func TestCloseIsIdempotent(t *testing.T) {
	payload := make([]byte, 16*16*4)
	f, err := Construct(payload, false, rgbaInit(16, 16))
	require.NoError(t, err)

	g, err := f.Clone()
	require.NoError(t, err)

	f.Close()
	f.Close() // second close must not double-decrement the shared refcount

	require.False(t, g.Closed())
	dst := make([]byte, len(payload))
	_, err = g.CopyTo(dst, CopyOptions{})
	require.NoError(t, err)
}

func TestClosedHandleAccessorsAreZeroNotError(t *testing.T) {
	payload := make([]byte, 16*16*4)
	f, err := Construct(payload, false, rgbaInit(16, 16))
	require.NoError(t, err)
	f.Close()

	_, ok := f.Format()
	require.False(t, ok)
	require.Equal(t, int64(0), f.Timestamp())
	size, err := f.AllocationSize(CopyOptions{})
	require.NoError(t, err)
	require.Equal(t, 0, size)
}

func TestAllocationSizeMatchesCopyToWrittenBytes(t *testing.T) {
	payload := make([]byte, 32*32*4)
	f, err := Construct(payload, false, rgbaInit(32, 32))
	require.NoError(t, err)
	defer f.Close()

	size, err := f.AllocationSize(CopyOptions{})
	require.NoError(t, err)

	dst := make([]byte, size)
	layout, err := f.CopyTo(dst, CopyOptions{})
	require.NoError(t, err)

	written := 0
	for _, p := range layout {
		written += p.Rows * p.Stride
	}
	require.Equal(t, size, written)
}

func TestCopyToBufferTooSmall(t *testing.T) {
	payload := make([]byte, 16*16*4)
	f, err := Construct(payload, false, rgbaInit(16, 16))
	require.NoError(t, err)
	defer f.Close()

	dst := make([]byte, 4)
	_, err = f.CopyTo(dst, CopyOptions{})
	require.Error(t, err)
	require.True(t, codecerr.Is(err, codecerr.BufferTooSmall))
}

func TestTransferMovesOwnership(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	f, err := Construct(payload, true, Init{
		Kind:   KindAudio,
		Format: "s16",
		Audio:  AudioGeometry{SampleRate: 48000, NumberOfChannels: 1, NumberOfFrames: 1, Interleaved: true},
		Layout: []PlaneLayout{{Offset: 0, Stride: 4, Rows: 1}},
	})
	require.NoError(t, err)
	defer f.Close()

	dst := make([]byte, 4)
	_, err = f.CopyTo(dst, CopyOptions{})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, dst)
}

func TestPlaneIndexRequiredZeroForInterleaved(t *testing.T) {
	f, err := Construct([]byte{1, 2, 3, 4}, false, Init{
		Kind:   KindAudio,
		Format: "s16",
		Audio:  AudioGeometry{SampleRate: 48000, NumberOfChannels: 1, NumberOfFrames: 1, Interleaved: true},
		Layout: []PlaneLayout{{Offset: 0, Stride: 4, Rows: 1}},
	})
	require.NoError(t, err)
	defer f.Close()

	_, err = f.CopyTo(make([]byte, 4), CopyOptions{PlaneIndex: 1})
	require.Error(t, err)
}
