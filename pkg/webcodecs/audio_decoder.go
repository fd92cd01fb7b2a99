package webcodecs

import (
	"github.com/jmylchreest/codecrun/internal/backend"
	fakebackend "github.com/jmylchreest/codecrun/internal/backend/fake"
	"github.com/jmylchreest/codecrun/internal/codecerr"
	"github.com/jmylchreest/codecrun/internal/facade"
	"github.com/jmylchreest/codecrun/internal/mediaconfig"
	"github.com/jmylchreest/codecrun/internal/supportprobe"
)

// AudioDecoder decompresses EncodedAudioChunks into AudioData.
type AudioDecoder struct {
	inner *facade.Facade[mediaconfig.AudioDecoderConfig]
}

// NewAudioDecoder constructs an AudioDecoder.
func NewAudioDecoder(output func(*AudioData), onError func(error)) (*AudioDecoder, error) {
	f, err := facade.New[mediaconfig.AudioDecoderConfig](backend.KindAudioDecoder, fakebackend.Factory,
		func(o facade.Output) { output(&AudioData{handle: o.Frame}) },
		func(e *codecerr.Error) { onError(e) },
	)
	if err != nil {
		return nil, err
	}
	return &AudioDecoder{inner: f}, nil
}

// Configure transitions the decoder to "configured" with cfg.
func (d *AudioDecoder) Configure(cfg mediaconfig.AudioDecoderConfig) error { return d.inner.Configure(cfg) }

// Decode queues chunk for decompression.
func (d *AudioDecoder) Decode(chunk *EncodedAudioChunk) error { return d.inner.Decode(chunk.inner) }

// Flush requests that every queued chunk be decoded.
func (d *AudioDecoder) Flush() (*Flush, error) {
	c, err := d.inner.Flush()
	if err != nil {
		return nil, err
	}
	return &Flush{inner: c}, nil
}

// Reset discards queued and in-flight work and returns to "unconfigured".
func (d *AudioDecoder) Reset() error { return d.inner.Reset() }

// Close releases the decoder and its backend. Idempotent.
func (d *AudioDecoder) Close() error { return d.inner.Close() }

// State reports the decoder's current CodecState.
func (d *AudioDecoder) State() CodecState { return fromFacadeState(d.inner.State()) }

// DecodeQueueSize reports the number of decode requests queued or in
// flight, not yet dequeued.
func (d *AudioDecoder) DecodeQueueSize() int64 { return d.inner.QueueSize() }

// SetDequeueCallback registers a callback fired after the queue size
// decreases; decreases in quick succession may be coalesced into one call.
func (d *AudioDecoder) SetDequeueCallback(cb func()) { d.inner.SetDequeueCallback(cb) }

// IsAudioDecoderConfigSupported probes cfg without constructing a decoder.
func IsAudioDecoderConfigSupported(cfg mediaconfig.AudioDecoderConfig) <-chan ConfigSupport[mediaconfig.AudioDecoderConfig] {
	out := make(chan ConfigSupport[mediaconfig.AudioDecoderConfig], 1)
	ch := facade.ProbeAsync(func() (bool, mediaconfig.AudioDecoderConfig, error) {
		r, err := supportprobe.ProbeAudioDecoder(cfg)
		return r.Supported, r.Normalized, err
	})
	go func() {
		o := <-ch
		out <- ConfigSupport[mediaconfig.AudioDecoderConfig]{Supported: o.Supported, Normalized: o.Normalized, Err: o.Err}
	}()
	return out
}
