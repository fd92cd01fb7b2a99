package webcodecs

import (
	"github.com/jmylchreest/codecrun/internal/backend"
	fakebackend "github.com/jmylchreest/codecrun/internal/backend/fake"
	"github.com/jmylchreest/codecrun/internal/codecerr"
	"github.com/jmylchreest/codecrun/internal/facade"
	"github.com/jmylchreest/codecrun/internal/mediaconfig"
	"github.com/jmylchreest/codecrun/internal/supportprobe"
)

// VideoDecoder decompresses EncodedVideoChunks into VideoFrames.
type VideoDecoder struct {
	inner *facade.Facade[mediaconfig.VideoDecoderConfig]
}

// NewVideoDecoder constructs a VideoDecoder.
func NewVideoDecoder(output func(*VideoFrame), onError func(error)) (*VideoDecoder, error) {
	f, err := facade.New[mediaconfig.VideoDecoderConfig](backend.KindVideoDecoder, fakebackend.Factory,
		func(o facade.Output) { output(&VideoFrame{handle: o.Frame}) },
		func(e *codecerr.Error) { onError(e) },
	)
	if err != nil {
		return nil, err
	}
	return &VideoDecoder{inner: f}, nil
}

// Configure transitions the decoder to "configured" with cfg. The first
// chunk decoded after Configure (or after Flush/Reset) must be a key
// chunk; a delta chunk there surfaces a DataError.
func (d *VideoDecoder) Configure(cfg mediaconfig.VideoDecoderConfig) error { return d.inner.Configure(cfg) }

// Decode queues chunk for decompression.
func (d *VideoDecoder) Decode(chunk *EncodedVideoChunk) error { return d.inner.Decode(chunk.inner) }

// Flush requests that every queued chunk be decoded and returns a handle
// that resolves once that completes. A decoder re-requires a key chunk
// immediately after a flush resolves.
func (d *VideoDecoder) Flush() (*Flush, error) {
	c, err := d.inner.Flush()
	if err != nil {
		return nil, err
	}
	return &Flush{inner: c}, nil
}

// Reset discards queued and in-flight work and returns to "unconfigured".
func (d *VideoDecoder) Reset() error { return d.inner.Reset() }

// Close releases the decoder and its backend. Idempotent.
func (d *VideoDecoder) Close() error { return d.inner.Close() }

// State reports the decoder's current CodecState.
func (d *VideoDecoder) State() CodecState { return fromFacadeState(d.inner.State()) }

// DecodeQueueSize reports the number of decode requests queued or in
// flight, not yet dequeued.
func (d *VideoDecoder) DecodeQueueSize() int64 { return d.inner.QueueSize() }

// SetDequeueCallback registers a callback fired after the queue size
// decreases; decreases in quick succession may be coalesced into one call.
func (d *VideoDecoder) SetDequeueCallback(cb func()) { d.inner.SetDequeueCallback(cb) }

// IsVideoDecoderConfigSupported probes cfg without constructing a decoder.
func IsVideoDecoderConfigSupported(cfg mediaconfig.VideoDecoderConfig) <-chan ConfigSupport[mediaconfig.VideoDecoderConfig] {
	out := make(chan ConfigSupport[mediaconfig.VideoDecoderConfig], 1)
	ch := facade.ProbeAsync(func() (bool, mediaconfig.VideoDecoderConfig, error) {
		r, err := supportprobe.ProbeVideoDecoder(cfg)
		return r.Supported, r.Normalized, err
	})
	go func() {
		o := <-ch
		out <- ConfigSupport[mediaconfig.VideoDecoderConfig]{Supported: o.Supported, Normalized: o.Normalized, Err: o.Err}
	}()
	return out
}
