package webcodecs

import (
	"github.com/jmylchreest/codecrun/internal/backend"
	fakebackend "github.com/jmylchreest/codecrun/internal/backend/fake"
	"github.com/jmylchreest/codecrun/internal/codecerr"
	"github.com/jmylchreest/codecrun/internal/facade"
	"github.com/jmylchreest/codecrun/internal/mediaconfig"
	"github.com/jmylchreest/codecrun/internal/supportprobe"
)

// CodecState mirrors internal/facade.State at the public boundary.
type CodecState int

const (
	StateUnconfigured CodecState = iota
	StateConfigured
	StateClosed
)

func fromFacadeState(s facade.State) CodecState {
	switch s {
	case facade.StateConfigured:
		return StateConfigured
	case facade.StateClosed:
		return StateClosed
	default:
		return StateUnconfigured
	}
}

// EncodeOptions parameterizes a single VideoEncoder.Encode call.
type EncodeOptions struct {
	ForceKeyframe bool
}

// EncodedVideoChunkOutput is delivered to a VideoEncoder's output callback
// for every encoded chunk.
type EncodedVideoChunkOutput struct {
	Chunk            *EncodedVideoChunk
	ConfigChanged    bool
	CodecDescription []byte
}

// Flush is a handle to a pending flush operation, resolved when every
// queued encode has produced its output (or the flush was aborted by a
// Reset or Close).
type Flush struct{ inner *facade.Completion }

// Done returns a channel that is closed when the flush resolves.
func (f *Flush) Done() <-chan struct{} { return f.inner.Done() }

// Err returns the flush's outcome: nil on success, codecerr.Aborted if a
// Reset or Close cancelled it while pending.
func (f *Flush) Err() error { return f.inner.Err() }

// VideoEncoder compresses VideoFrames into EncodedVideoChunks.
type VideoEncoder struct {
	inner *facade.Facade[mediaconfig.VideoEncoderConfig]
}

// NewVideoEncoder constructs a VideoEncoder. output is invoked for every
// produced chunk and err for every asynchronous error; both run on an
// internal goroutine and must not block.
func NewVideoEncoder(output func(EncodedVideoChunkOutput), onError func(error)) (*VideoEncoder, error) {
	f, err := facade.New[mediaconfig.VideoEncoderConfig](backend.KindVideoEncoder, fakebackend.Factory,
		func(o facade.Output) {
			output(EncodedVideoChunkOutput{
				Chunk:            &EncodedVideoChunk{inner: o.Chunk},
				ConfigChanged:    o.ConfigChanged,
				CodecDescription: o.Config.Description,
			})
		},
		func(e *codecerr.Error) { onError(e) },
	)
	if err != nil {
		return nil, err
	}
	return &VideoEncoder{inner: f}, nil
}

// Configure transitions the encoder to "configured" with cfg.
func (e *VideoEncoder) Configure(cfg mediaconfig.VideoEncoderConfig) error { return e.inner.Configure(cfg) }

// Encode queues frame for compression. The encoder closes frame's handle
// synchronously before returning; callers that need the frame afterward
// must Clone it first.
func (e *VideoEncoder) Encode(frame *VideoFrame, opts EncodeOptions) error {
	return e.inner.Encode(frame.handle, facade.EncodeOptions{ForceKeyframe: opts.ForceKeyframe})
}

// Flush requests that every queued frame be encoded and returns a handle
// that resolves once that completes.
func (e *VideoEncoder) Flush() (*Flush, error) {
	c, err := e.inner.Flush()
	if err != nil {
		return nil, err
	}
	return &Flush{inner: c}, nil
}

// Reset discards queued and in-flight work and returns to "unconfigured".
func (e *VideoEncoder) Reset() error { return e.inner.Reset() }

// Close releases the encoder and its backend. Idempotent.
func (e *VideoEncoder) Close() error { return e.inner.Close() }

// State reports the encoder's current CodecState.
func (e *VideoEncoder) State() CodecState { return fromFacadeState(e.inner.State()) }

// EncodeQueueSize reports the number of encode requests queued or in
// flight, not yet dequeued.
func (e *VideoEncoder) EncodeQueueSize() int64 { return e.inner.QueueSize() }

// Saturated reports sustained backend backpressure: the host isn't
// draining encoded chunks fast enough to keep up with encode throughput.
func (e *VideoEncoder) Saturated() bool { return e.inner.Saturated() }

// SetDequeueCallback registers a callback fired each time the queue size
// decreases, coalesced per internal/facade's approximation of the
// microtask-queue semantics WebCodecs specifies for dequeue events.
func (e *VideoEncoder) SetDequeueCallback(cb func()) { e.inner.SetDequeueCallback(cb) }

// IsVideoEncoderConfigSupported probes cfg without constructing an
// encoder, returning the normalized config alongside the support verdict.
// It never blocks the calling goroutine's caller: the probe itself runs
// synchronously (it is pure classification, see internal/supportprobe) but
// is wrapped in facade.ProbeAsync to match the asynchronous contract every
// other config-probing surface in the package offers.
func IsVideoEncoderConfigSupported(cfg mediaconfig.VideoEncoderConfig) <-chan ConfigSupport[mediaconfig.VideoEncoderConfig] {
	out := make(chan ConfigSupport[mediaconfig.VideoEncoderConfig], 1)
	ch := facade.ProbeAsync(func() (bool, mediaconfig.VideoEncoderConfig, error) {
		r, err := supportprobe.ProbeVideoEncoder(cfg)
		return r.Supported, r.Normalized, err
	})
	go func() {
		o := <-ch
		out <- ConfigSupport[mediaconfig.VideoEncoderConfig]{Supported: o.Supported, Normalized: o.Normalized, Err: o.Err}
	}()
	return out
}

// ConfigSupport is the resolved result of an IsXConfigSupported probe.
type ConfigSupport[C any] struct {
	Supported  bool
	Normalized C
	Err        error
}
