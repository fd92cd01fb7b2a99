// Package fake provides a deterministic, in-memory backend.Backend used
// to exercise the Codec Worker and Codec Facade without any real codec
// library. It performs no actual compression: encode wraps the source
// frame's bytes in a Chunk, decode wraps a Chunk's bytes back into a
// Handle. This mirrors the teacher's testutil fixtures (internal/testutil)
// in spirit: a minimal stand-in that is honest about ordering and
// lifecycle rather than a mock that asserts call sequences.
package fake

import (
	"github.com/jmylchreest/codecrun/internal/backend"
	"github.com/jmylchreest/codecrun/internal/chunk"
	"github.com/jmylchreest/codecrun/internal/codecerr"
	"github.com/jmylchreest/codecrun/internal/resource"
)

// Backend is a deterministic fake implementing backend.Backend. It never
// buffers more than one pending output at a time, so PushInput is always
// immediately followed by a deliverable PullOutput.
type Backend struct {
	kind        backend.Kind
	initialized bool
	frameCount  int
	pending     []backend.Output
	torndown    bool

	// FailNextPush, when set, makes the next PushInput report an
	// encoding-error, simulating a transient codec failure.
	FailNextPush bool
}

// New constructs an uninitialized fake backend for the given kind.
func New(kind backend.Kind) *Backend {
	return &Backend{kind: kind}
}

// Factory adapts New into a backend.Factory. Every config is supported
// except when cfg is explicitly nil, which lets tests exercise the
// unsupported-codec path without depending on codec-string parsing.
func Factory(kind backend.Kind, config any) (backend.Backend, bool) {
	if config == nil {
		return nil, false
	}
	return New(kind), true
}

// Init resets frame counting and marks the backend ready.
func (b *Backend) Init(config any) error {
	b.initialized = true
	b.torndown = false
	b.frameCount = 0
	b.pending = nil
	return nil
}

// Teardown discards any buffered output without dispatching it.
func (b *Backend) Teardown() {
	b.torndown = true
	b.pending = nil
	b.initialized = false
}

// PushInput produces exactly one output per input, immediately available.
func (b *Backend) PushInput(in backend.Input) (backend.PullStatus, error) {
	if b.FailNextPush {
		b.FailNextPush = false
		return backend.NeedsMoreInput, codecerr.New(codecerr.EncodingError, "fake_backend.push_input", errSimulatedFailure)
	}

	switch b.kind {
	case backend.KindVideoEncoder, backend.KindAudioEncoder:
		out, err := b.pushEncode(in)
		if err != nil {
			return backend.NeedsMoreInput, err
		}
		b.pending = append(b.pending, out)
	case backend.KindVideoDecoder, backend.KindAudioDecoder:
		out, err := b.pushDecode(in)
		if err != nil {
			return backend.NeedsMoreInput, err
		}
		b.pending = append(b.pending, out)
	}
	return backend.HasOutput, nil
}

func (b *Backend) pushEncode(in backend.Input) (backend.Output, error) {
	if in.Frame == nil {
		return backend.Output{}, codecerr.New(codecerr.DataError, "fake_backend.push_encode", errMissingFrame)
	}
	size, err := in.Frame.AllocationSize(resource.CopyOptions{})
	if err != nil {
		return backend.Output{}, err
	}
	payload := make([]byte, size)
	if _, err := in.Frame.CopyTo(payload, resource.CopyOptions{}); err != nil {
		return backend.Output{}, err
	}

	typ := chunk.TypeDelta
	if in.ForceKeyframe || b.frameCount == 0 {
		typ = chunk.TypeKey
	}
	ts := in.Frame.Timestamp()
	b.frameCount++

	configChanged := b.frameCount == 1
	return backend.Output{
		Chunk:         chunk.New(typ, ts, nil, payload),
		Type:          typ,
		Timestamp:     ts,
		ConfigChanged: configChanged,
		Config:        backend.OutputConfig{Description: []byte("fake-codec-private-data")},
	}, nil
}

func (b *Backend) pushDecode(in backend.Input) (backend.Output, error) {
	if in.Chunk == nil {
		return backend.Output{}, codecerr.New(codecerr.DataError, "fake_backend.push_decode", errMissingChunk)
	}
	payload := make([]byte, in.Chunk.ByteLength())
	if err := in.Chunk.CopyTo(payload); err != nil {
		return backend.Output{}, err
	}

	frame, err := resource.Construct(payload, true, resource.Init{
		Kind:      resource.KindVideo,
		Format:    "RGBA",
		Timestamp: in.Chunk.Timestamp(),
		Video: resource.VideoGeometry{
			CodedWidth:  1,
			CodedHeight: len(payload) / 4,
			VisibleRect: resource.Rect{Width: 1, Height: len(payload) / 4},
		},
		Layout: []resource.PlaneLayout{{Offset: 0, Stride: 4, Rows: len(payload) / 4}},
	})
	if err != nil {
		return backend.Output{}, err
	}
	b.frameCount++
	return backend.Output{Frame: frame, Type: in.Chunk.Type(), Timestamp: in.Chunk.Timestamp()}, nil
}

// PullOutput returns the oldest buffered output, if any.
func (b *Backend) PullOutput() (backend.Output, bool, error) {
	if len(b.pending) == 0 {
		return backend.Output{}, false, nil
	}
	out := b.pending[0]
	b.pending = b.pending[1:]
	return out, true, nil
}

// SignalEOS is a no-op for the fake backend: it never buffers input
// beyond the single in-flight push, so there's nothing to flush early.
func (b *Backend) SignalEOS() {}

// Drain returns and clears every buffered output.
func (b *Backend) Drain() ([]backend.Output, error) {
	out := b.pending
	b.pending = nil
	return out, nil
}
