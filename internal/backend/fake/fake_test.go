package fake

import (
	"testing"

	"github.com/jmylchreest/codecrun/internal/backend"
	"github.com/jmylchreest/codecrun/internal/resource"
	"github.com/stretchr/testify/require"
)

func rgbaFrame(t *testing.T, ts int64) *resource.Handle {
	t.Helper()
	payload := make([]byte, 4*4*4)
	f, err := resource.Construct(payload, false, resource.Init{
		Kind:      resource.KindVideo,
		Format:    "RGBA",
		Timestamp: ts,
		Video: resource.VideoGeometry{
			CodedWidth:  4,
			CodedHeight: 4,
			VisibleRect: resource.Rect{Width: 4, Height: 4},
		},
		Layout: []resource.PlaneLayout{{Offset: 0, Stride: 16, Rows: 4}},
	})
	require.NoError(t, err)
	return f
}

func TestEncodeFirstFrameIsAlwaysKey(t *testing.T) {
	b := New(backend.KindVideoEncoder)
	require.NoError(t, b.Init(struct{}{}))

	frame := rgbaFrame(t, 0)
	defer frame.Close()
	status, err := b.PushInput(backend.Input{Frame: frame})
	require.NoError(t, err)
	require.Equal(t, backend.HasOutput, status)

	out, ok, err := b.PullOutput()
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, out.Chunk)
	require.Equal(t, out.Chunk.Type(), out.Type)
	require.Equal(t, "key", out.Type.String())
}

func TestEncodeForceKeyframe(t *testing.T) {
	b := New(backend.KindVideoEncoder)
	require.NoError(t, b.Init(struct{}{}))

	for i := 0; i < 3; i++ {
		frame := rgbaFrame(t, int64(i))
		_, err := b.PushInput(backend.Input{Frame: frame, ForceKeyframe: i == 2})
		require.NoError(t, err)
		frame.Close()
		out, ok, err := b.PullOutput()
		require.NoError(t, err)
		require.True(t, ok)
		if i == 0 || i == 2 {
			require.Equal(t, out.Type.String(), "key")
		} else {
			require.Equal(t, out.Type.String(), "delta")
		}
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	enc := New(backend.KindVideoEncoder)
	require.NoError(t, enc.Init(struct{}{}))
	frame := rgbaFrame(t, 5)
	defer frame.Close()
	_, err := enc.PushInput(backend.Input{Frame: frame})
	require.NoError(t, err)
	out, ok, err := enc.PullOutput()
	require.NoError(t, err)
	require.True(t, ok)

	dec := New(backend.KindVideoDecoder)
	require.NoError(t, dec.Init(struct{}{}))
	status, err := dec.PushInput(backend.Input{Chunk: out.Chunk})
	require.NoError(t, err)
	require.Equal(t, backend.HasOutput, status)

	decoded, ok, err := dec.PullOutput()
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, decoded.Frame)
	defer decoded.Frame.Close()
	require.Equal(t, int64(5), decoded.Frame.Timestamp())
}

func TestFailNextPushSurfacesEncodingError(t *testing.T) {
	b := New(backend.KindVideoEncoder)
	require.NoError(t, b.Init(struct{}{}))
	b.FailNextPush = true

	frame := rgbaFrame(t, 0)
	defer frame.Close()
	_, err := b.PushInput(backend.Input{Frame: frame})
	require.Error(t, err)
}
