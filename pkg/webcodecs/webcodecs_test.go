package webcodecs

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/codecrun/internal/mediaconfig"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestVideoEncoderDecoderRoundTrip(t *testing.T) {
	var mu sync.Mutex
	var chunks []EncodedVideoChunkOutput
	enc, err := NewVideoEncoder(func(o EncodedVideoChunkOutput) {
		mu.Lock()
		defer mu.Unlock()
		chunks = append(chunks, o)
	}, func(err error) { t.Errorf("unexpected encoder error: %v", err) })
	require.NoError(t, err)
	defer enc.Close()

	require.NoError(t, enc.Configure(mediaconfig.VideoEncoderConfig{CodecString: "avc1.42001f", Width: 8, Height: 8}))

	for i := 0; i < 5; i++ {
		frame, err := NewVideoFrame(make([]byte, 8*8*4), false, 8, 8, "RGBA", int64(i))
		require.NoError(t, err)
		require.NoError(t, enc.Encode(frame, EncodeOptions{}))
		require.True(t, frame.Closed())
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(chunks) == 5
	})

	var frames []*VideoFrame
	dec, err := NewVideoDecoder(func(f *VideoFrame) {
		mu.Lock()
		defer mu.Unlock()
		frames = append(frames, f)
	}, func(err error) { t.Errorf("unexpected decoder error: %v", err) })
	require.NoError(t, err)
	defer dec.Close()
	require.NoError(t, dec.Configure(mediaconfig.VideoDecoderConfig{CodecString: "avc1.42001f", CodedWidth: 8, CodedHeight: 8}))

	mu.Lock()
	toDecode := append([]EncodedVideoChunkOutput(nil), chunks...)
	mu.Unlock()
	for _, c := range toDecode {
		require.NoError(t, dec.Decode(c.Chunk))
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(frames) == 5
	})
}

func TestIsVideoEncoderConfigSupportedReportsUnsupportedFamily(t *testing.T) {
	result := <-IsVideoEncoderConfigSupported(mediaconfig.VideoEncoderConfig{CodecString: "vp8", Width: 4, Height: 4})
	require.NoError(t, result.Err)
	require.False(t, result.Supported, "vp8 is decode-only in this runtime's backend set")
}

func TestVideoEncoderFlushResolves(t *testing.T) {
	enc, err := NewVideoEncoder(func(EncodedVideoChunkOutput) {}, func(error) {})
	require.NoError(t, err)
	defer enc.Close()
	require.NoError(t, enc.Configure(mediaconfig.VideoEncoderConfig{CodecString: "avc1.42001f", Width: 4, Height: 4}))

	frame, err := NewVideoFrame(make([]byte, 4*4*4), false, 4, 4, "RGBA", 0)
	require.NoError(t, err)
	require.NoError(t, enc.Encode(frame, EncodeOptions{}))

	flush, err := enc.Flush()
	require.NoError(t, err)
	select {
	case <-flush.Done():
		require.NoError(t, flush.Err())
	case <-time.After(2 * time.Second):
		t.Fatal("flush never resolved")
	}
}
