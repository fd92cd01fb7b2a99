// Package backend defines the abstract codec backend boundary the Codec
// Worker drives: {init, teardown, push_input, pull_output, signal_eos,
// drain}. Concrete backends (hardware or software codec bindings) live
// behind this interface so the worker's scheduling logic never depends on
// a specific codec implementation. Modeled on the teacher's httpclient
// Transport abstraction (internal/httpclient), which keeps a similarly
// narrow seam between orchestration logic and the thing doing I/O.
package backend

import (
	"github.com/jmylchreest/codecrun/internal/chunk"
	"github.com/jmylchreest/codecrun/internal/resource"
)

// Kind identifies which of the four codec classes a backend implements.
type Kind int

const (
	KindVideoDecoder Kind = iota
	KindVideoEncoder
	KindAudioDecoder
	KindAudioEncoder
)

// PullStatus reports whether PushInput can be followed immediately by a
// PullOutput, or whether the backend needs more input first.
type PullStatus int

const (
	NeedsMoreInput PullStatus = iota
	HasOutput
)

// Input is fed to the backend by the worker. Exactly one of Frame or
// Chunk is set depending on the backend's Kind.
type Input struct {
	Frame         *resource.Handle
	Chunk         *chunk.Chunk
	ForceKeyframe bool
}

// OutputConfig describes the decoder-configuration metadata attached when
// an encoder's output configuration changes.
type OutputConfig struct {
	Description []byte
}

// Output is produced by the backend and handed back to the worker for
// presentation-order reordering (decoders) and dispatch. Exactly one of
// Frame or Chunk is set depending on the backend's Kind.
type Output struct {
	Frame         *resource.Handle
	Chunk         *chunk.Chunk
	Type          chunk.Type
	Timestamp     int64
	ConfigChanged bool
	Config        OutputConfig
}

// Backend is the opaque, single-owner codec implementation a Worker
// drives. Only the worker goroutine ever calls these methods; none of
// them need to be safe for concurrent use.
type Backend interface {
	// Init prepares the backend with a normalized configuration. config
	// is one of the mediaconfig.*Config normalized forms.
	Init(config any) error
	// Teardown releases all backend-owned native resources. Idempotent.
	Teardown()
	// PushInput feeds one unit of input to the backend.
	PushInput(in Input) (PullStatus, error)
	// PullOutput returns the next available output, if any.
	PullOutput() (Output, bool, error)
	// SignalEOS tells the backend no further input is coming until the
	// next Init; used by Flush.
	SignalEOS()
	// Drain pulls every output the backend can produce after SignalEOS.
	Drain() ([]Output, error)
}

// Factory constructs a Backend for the given Kind, or reports that no
// backend is available (unsupported).
type Factory func(kind Kind, config any) (Backend, bool)
