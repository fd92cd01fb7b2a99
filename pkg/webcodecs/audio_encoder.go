package webcodecs

import (
	"github.com/jmylchreest/codecrun/internal/backend"
	fakebackend "github.com/jmylchreest/codecrun/internal/backend/fake"
	"github.com/jmylchreest/codecrun/internal/codecerr"
	"github.com/jmylchreest/codecrun/internal/facade"
	"github.com/jmylchreest/codecrun/internal/mediaconfig"
	"github.com/jmylchreest/codecrun/internal/supportprobe"
)

// EncodedAudioChunkOutput is delivered to an AudioEncoder's output
// callback for every encoded chunk.
type EncodedAudioChunkOutput struct {
	Chunk            *EncodedAudioChunk
	ConfigChanged    bool
	CodecDescription []byte
}

// AudioEncoder compresses AudioData into EncodedAudioChunks.
type AudioEncoder struct {
	inner *facade.Facade[mediaconfig.AudioEncoderConfig]
}

// NewAudioEncoder constructs an AudioEncoder.
func NewAudioEncoder(output func(EncodedAudioChunkOutput), onError func(error)) (*AudioEncoder, error) {
	f, err := facade.New[mediaconfig.AudioEncoderConfig](backend.KindAudioEncoder, fakebackend.Factory,
		func(o facade.Output) {
			output(EncodedAudioChunkOutput{
				Chunk:            &EncodedAudioChunk{inner: o.Chunk},
				ConfigChanged:    o.ConfigChanged,
				CodecDescription: o.Config.Description,
			})
		},
		func(e *codecerr.Error) { onError(e) },
	)
	if err != nil {
		return nil, err
	}
	return &AudioEncoder{inner: f}, nil
}

// Configure transitions the encoder to "configured" with cfg.
func (e *AudioEncoder) Configure(cfg mediaconfig.AudioEncoderConfig) error { return e.inner.Configure(cfg) }

// Encode queues data for compression, closing data's handle synchronously
// before returning.
func (e *AudioEncoder) Encode(data *AudioData) error {
	return e.inner.Encode(data.handle, facade.EncodeOptions{})
}

// Flush requests that every queued sample buffer be encoded.
func (e *AudioEncoder) Flush() (*Flush, error) {
	c, err := e.inner.Flush()
	if err != nil {
		return nil, err
	}
	return &Flush{inner: c}, nil
}

// Reset discards queued and in-flight work and returns to "unconfigured".
func (e *AudioEncoder) Reset() error { return e.inner.Reset() }

// Close releases the encoder and its backend. Idempotent.
func (e *AudioEncoder) Close() error { return e.inner.Close() }

// State reports the encoder's current CodecState.
func (e *AudioEncoder) State() CodecState { return fromFacadeState(e.inner.State()) }

// EncodeQueueSize reports the number of encode requests queued or in
// flight, not yet dequeued.
func (e *AudioEncoder) EncodeQueueSize() int64 { return e.inner.QueueSize() }

// Saturated reports sustained backend backpressure: the host isn't
// draining encoded chunks fast enough to keep up with encode throughput.
func (e *AudioEncoder) Saturated() bool { return e.inner.Saturated() }

// SetDequeueCallback registers a callback fired after the queue size
// decreases; decreases in quick succession may be coalesced into one call.
func (e *AudioEncoder) SetDequeueCallback(cb func()) { e.inner.SetDequeueCallback(cb) }

// IsAudioEncoderConfigSupported probes cfg without constructing an encoder.
func IsAudioEncoderConfigSupported(cfg mediaconfig.AudioEncoderConfig) <-chan ConfigSupport[mediaconfig.AudioEncoderConfig] {
	out := make(chan ConfigSupport[mediaconfig.AudioEncoderConfig], 1)
	ch := facade.ProbeAsync(func() (bool, mediaconfig.AudioEncoderConfig, error) {
		r, err := supportprobe.ProbeAudioEncoder(cfg)
		return r.Supported, r.Normalized, err
	})
	go func() {
		o := <-ch
		out <- ConfigSupport[mediaconfig.AudioEncoderConfig]{Supported: o.Supported, Normalized: o.Normalized, Err: o.Err}
	}()
	return out
}
