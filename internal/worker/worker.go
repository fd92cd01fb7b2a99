// Package worker implements the Codec Worker: a goroutine that owns one
// codec backend exclusively and drains a Control Queue in a single
// cooperative loop, dispatching results back to the driver thread over a
// Safe Callback Channel. Grounded on the teacher's relay.CircuitBreaker
// goroutine-owns-state convention and, in spirit, on the worker/channel
// ownership split in the mediasoup-go worker reference file: one thread
// exclusively owns a native resource and everything else talks to it
// through messages.
package worker

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/jmylchreest/codecrun/internal/backend"
	"github.com/jmylchreest/codecrun/internal/callbackchannel"
	"github.com/jmylchreest/codecrun/internal/chunk"
	"github.com/jmylchreest/codecrun/internal/codecerr"
	"github.com/jmylchreest/codecrun/internal/control"
	"github.com/jmylchreest/codecrun/internal/resource"
)

// defaultMaxConcurrentWorkers bounds, process-wide, how many Worker
// goroutines may be actively running their message loop at once. A codec
// instance beyond the bound still accepts Configure/Encode/Decode calls
// (they queue) but its Run goroutine waits for a free slot before it starts
// draining them, the way a connection pool bounds concurrent connections
// rather than rejecting callers outright.
const defaultMaxConcurrentWorkers = 256

var (
	concurrencyMu sync.Mutex
	concurrencySem *semaphore.Weighted = semaphore.NewWeighted(defaultMaxConcurrentWorkers)
)

// SetMaxConcurrentWorkers reconfigures the process-wide worker concurrency
// bound. It affects only Worker.Run calls that start after it returns;
// intended to be called once at daemon startup from engine configuration.
func SetMaxConcurrentWorkers(n int64) {
	concurrencyMu.Lock()
	defer concurrencyMu.Unlock()
	concurrencySem = semaphore.NewWeighted(n)
}

func acquireWorkerSlot() *semaphore.Weighted {
	concurrencyMu.Lock()
	sem := concurrencySem
	concurrencyMu.Unlock()
	_ = sem.Acquire(context.Background(), 1)
	return sem
}

// Event is the sum type dispatched over the callback channel from worker
// to facade. Implementations are unexported; callers type-switch.
type Event interface{ isEvent() }

// OutputEvent carries one produced output (a decoded frame or an encoded
// chunk) plus decoder-config metadata when the output configuration
// changed.
type OutputEvent struct {
	Frame         *resource.Handle
	Chunk         *chunk.Chunk
	ConfigChanged bool
	Config        backend.OutputConfig
}

func (OutputEvent) isEvent() {}

// DequeueEvent signals that one control message has been fully processed
// (fed and drained), freeing one slot of queue-size accounting. It is
// distinct from OutputEvent because a decoder may consume one input and
// produce zero outputs (non-displayable frames) while still freeing a
// queue slot.
type DequeueEvent struct{}

func (DequeueEvent) isEvent() {}

// FlushCompleteEvent resolves the facade's pending completion for the
// given flush id.
type FlushCompleteEvent struct{ FlushID string }

func (FlushCompleteEvent) isEvent() {}

// ResetCompleteEvent acknowledges a Reset was fully processed.
type ResetCompleteEvent struct{}

func (ResetCompleteEvent) isEvent() {}

// ErrorEvent carries an asynchronous codec error. Receiving one means the
// worker has stopped (or is stopping) and the facade must transition to
// closed.
type ErrorEvent struct{ Err *codecerr.Error }

func (ErrorEvent) isEvent() {}

// CloseNotifyEvent is the worker's final self-reported event before its
// goroutine exits after processing a message: a Close message, an
// unsupported config, a data/encoding/orientation error, or a recovered
// panic. Driver-initiated Close (including reclamation) releases the
// channel before the Close message is processed, so there the event is
// rejected and only worker-initiated closures reach the facade.
type CloseNotifyEvent struct{}

func (CloseNotifyEvent) isEvent() {}

// SaturationEvent reports a change in backend backpressure: the callback
// channel rejected a dispatch because the driver isn't draining outputs
// fast enough. Fired only on a true/false transition, not on every
// dispatch, so it reflects sustained pressure rather than a single drop.
type SaturationEvent struct{ Saturated bool }

func (SaturationEvent) isEvent() {}

// Worker owns one backend.Backend exclusively and processes a
// control.Queue on its own goroutine.
type Worker struct {
	kind    backend.Kind
	queue   *control.Queue
	channel *callbackchannel.Channel[Event]
	factory backend.Factory

	be backend.Backend

	keyChunkRequired bool
	activeOrientSet  bool
	activeOrientKey  orientationKey
	activeOutputSet  bool
	activeOutput     backend.OutputConfig
	saturated        bool
}

type orientationKey struct {
	rotation int
	flip     bool
}

// New constructs a Worker for the given kind, draining queue and
// dispatching onto channel, using factory to build a backend on demand.
func New(kind backend.Kind, queue *control.Queue, channel *callbackchannel.Channel[Event], factory backend.Factory) *Worker {
	return &Worker{kind: kind, queue: queue, channel: channel, factory: factory}
}

// Run is the worker's single-threaded cooperative loop. It blocks until
// Close is processed or the queue is shut down, then tears down the
// backend and returns. Callers run this in its own goroutine.
func (w *Worker) Run() {
	sem := acquireWorkerSlot()
	defer sem.Release(1)

	defer func() {
		if r := recover(); r != nil {
			w.teardownBackend()
			w.dispatch(ErrorEvent{Err: codecerr.New(codecerr.EncodingError, "worker.run", errPanic(r))})
			w.dispatch(CloseNotifyEvent{})
		}
	}()

	for {
		msg, ok := w.queue.PopBlocking()
		if !ok {
			w.teardownBackend()
			return
		}

		switch msg.Type {
		case control.MsgConfigure:
			if !w.handleConfigure(msg) {
				w.teardownBackend()
				w.dispatch(CloseNotifyEvent{})
				return
			}
		case control.MsgDecode:
			if !w.handleDecode(msg) {
				w.teardownBackend()
				w.dispatch(CloseNotifyEvent{})
				return
			}
		case control.MsgEncode:
			if !w.handleEncode(msg) {
				w.teardownBackend()
				w.dispatch(CloseNotifyEvent{})
				return
			}
		case control.MsgFlush:
			if !w.handleFlush(msg) {
				w.teardownBackend()
				w.dispatch(CloseNotifyEvent{})
				return
			}
		case control.MsgReset:
			w.handleReset()
		case control.MsgClose:
			w.teardownBackend()
			w.dispatch(CloseNotifyEvent{})
			return
		}
	}
}

func (w *Worker) dispatch(ev Event) {
	rejected, res := w.channel.Dispatch(ev)
	if res == callbackchannel.RejectedFull || res == callbackchannel.RejectedReleased {
		releaseRejectedEvent(rejected)
	}
	w.observeSaturation(res == callbackchannel.RejectedFull)
}

// observeSaturation fires a SaturationEvent only on a state transition, so
// sustained backpressure produces one notification rather than one per
// dropped output.
func (w *Worker) observeSaturation(full bool) {
	if full == w.saturated {
		return
	}
	w.saturated = full
	if _, res := w.channel.Dispatch(SaturationEvent{Saturated: full}); res == callbackchannel.RejectedFull {
		// Best-effort: the driver will observe the next transition instead.
	}
}

// releaseRejectedEvent releases any native resource an event carries when
// the channel could not accept it, so a lossy-to-driver dispatch is never
// lossy-to-resource.
func releaseRejectedEvent(ev Event) {
	switch e := ev.(type) {
	case OutputEvent:
		if e.Frame != nil {
			e.Frame.Close()
		}
	}
}

func (w *Worker) teardownBackend() {
	if w.be != nil {
		w.be.Teardown()
		w.be = nil
	}
}

func (w *Worker) handleConfigure(msg control.Message) bool {
	w.teardownBackend()
	w.activeOrientSet = false
	w.activeOutputSet = false

	be, supported := w.factory(w.kind, msg.Config)
	if !supported {
		w.dispatch(ErrorEvent{Err: codecerr.New(codecerr.Unsupported, "worker.configure", errUnsupportedConfig)})
		return false
	}
	if err := be.Init(msg.Config); err != nil {
		w.dispatch(ErrorEvent{Err: asCodecError(err, codecerr.EncodingError, "worker.configure")})
		return false
	}
	w.be = be

	if w.kind == backend.KindVideoDecoder || w.kind == backend.KindAudioDecoder {
		w.keyChunkRequired = true
	}
	return true
}

func (w *Worker) handleDecode(msg control.Message) bool {
	if w.be == nil {
		return true
	}
	if w.keyChunkRequired && msg.Chunk != nil && msg.Chunk.Type() != chunk.TypeKey {
		w.dispatch(ErrorEvent{Err: codecerr.New(codecerr.DataError, "worker.decode", errKeyChunkRequired)})
		return false
	}

	status, err := w.be.PushInput(backend.Input{Chunk: msg.Chunk})
	if err != nil {
		w.dispatch(ErrorEvent{Err: asCodecError(err, codecerr.EncodingError, "worker.decode")})
		return false
	}
	if w.keyChunkRequired && msg.Chunk != nil && msg.Chunk.Type() == chunk.TypeKey {
		w.keyChunkRequired = false
	}

	if status == backend.HasOutput {
		outputs, err := w.drainAvailable()
		if err != nil {
			w.dispatch(ErrorEvent{Err: asCodecError(err, codecerr.EncodingError, "worker.decode")})
			return false
		}
		w.dispatchOutputsInPresentationOrder(outputs)
	}
	w.dispatch(DequeueEvent{})
	return true
}

func (w *Worker) handleEncode(msg control.Message) bool {
	if w.be == nil {
		if msg.Frame != nil {
			msg.Frame.Close()
		}
		return true
	}

	if msg.Frame != nil {
		key := orientationOf(msg.Frame)
		if !w.activeOrientSet {
			w.activeOrientKey = key
			w.activeOrientSet = true
		} else if key != w.activeOrientKey {
			msg.Frame.Close()
			w.dispatch(ErrorEvent{Err: codecerr.New(codecerr.OrientationError, "worker.encode", errOrientationMismatch)})
			return false
		}
	}

	status, err := w.be.PushInput(backend.Input{Frame: msg.Frame, ForceKeyframe: msg.EncodeOptions.ForceKeyframe})
	if msg.Frame != nil {
		msg.Frame.Close()
	}
	if err != nil {
		w.dispatch(ErrorEvent{Err: asCodecError(err, codecerr.EncodingError, "worker.encode")})
		return false
	}

	if status == backend.HasOutput {
		outputs, err := w.drainAvailable()
		if err != nil {
			w.dispatch(ErrorEvent{Err: asCodecError(err, codecerr.EncodingError, "worker.encode")})
			return false
		}
		for _, out := range outputs {
			w.dispatchEncoderOutput(out)
		}
	}
	w.dispatch(DequeueEvent{})
	return true
}

func (w *Worker) handleFlush(msg control.Message) bool {
	if w.be == nil {
		w.dispatch(FlushCompleteEvent{FlushID: msg.FlushID})
		return true
	}

	w.be.SignalEOS()
	outputs, err := w.be.Drain()
	if err != nil {
		w.dispatch(ErrorEvent{Err: asCodecError(err, codecerr.EncodingError, "worker.flush")})
		return false
	}

	if w.kind == backend.KindVideoDecoder || w.kind == backend.KindAudioDecoder {
		w.dispatchOutputsInPresentationOrder(outputs)
		w.keyChunkRequired = true
	} else {
		for _, out := range outputs {
			w.dispatchEncoderOutput(out)
		}
	}

	w.dispatch(FlushCompleteEvent{FlushID: msg.FlushID})
	return true
}

func (w *Worker) handleReset() {
	if w.be != nil {
		if outputs, err := w.be.Drain(); err == nil {
			for _, out := range outputs {
				if out.Frame != nil {
					out.Frame.Close()
				}
			}
		}
	}
	w.activeOrientSet = false
	w.activeOutputSet = false
	if w.kind == backend.KindVideoDecoder || w.kind == backend.KindAudioDecoder {
		w.keyChunkRequired = true
	}
	w.dispatch(ResetCompleteEvent{})
}

// drainAvailable pulls every currently available output from the
// backend, per step 4 of the scheduling algorithm: pull until
// needs-more-input.
func (w *Worker) drainAvailable() ([]backend.Output, error) {
	var outputs []backend.Output
	for {
		out, ok, err := w.be.PullOutput()
		if err != nil {
			return outputs, err
		}
		if !ok {
			return outputs, nil
		}
		outputs = append(outputs, out)
	}
}

// dispatchOutputsInPresentationOrder reorders decode-order outputs into
// presentation order (stable sort by timestamp) before dispatch, per the
// worker's ordering guarantee for decoders.
func (w *Worker) dispatchOutputsInPresentationOrder(outputs []backend.Output) {
	sort.SliceStable(outputs, func(i, j int) bool {
		return outputs[i].Timestamp < outputs[j].Timestamp
	})
	for _, out := range outputs {
		w.dispatch(OutputEvent{Frame: out.Frame})
	}
}

func (w *Worker) dispatchEncoderOutput(out backend.Output) {
	changed := !w.activeOutputSet || out.ConfigChanged
	if changed {
		w.activeOutputSet = true
		w.activeOutput = out.Config
	}
	w.dispatch(OutputEvent{Chunk: out.Chunk, ConfigChanged: changed, Config: out.Config})
}

func orientationOf(f *resource.Handle) orientationKey {
	geo := f.VideoGeometry()
	return orientationKey{rotation: geo.Rotation, flip: geo.Flip}
}

func asCodecError(err error, fallback codecerr.Kind, op string) *codecerr.Error {
	if ce, ok := err.(*codecerr.Error); ok {
		return ce
	}
	return codecerr.New(fallback, op, err)
}
