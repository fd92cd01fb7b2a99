// Package facade implements the Codec Facade: the driver-thread object a
// host application talks to. It owns a Codec Worker goroutine and a
// Control Queue, and turns the worker's asynchronous events back into the
// codec-class shape WebCodecs expects (state, queue-size counters, a
// dequeue notification, flush completions). Grounded on the teacher's
// progress.Service (internal/service/progress/service.go), which
// similarly sits between a background worker and a driver-visible
// subscriber API with throttled/coalesced notifications.
package facade

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/codecrun/internal/backend"
	"github.com/jmylchreest/codecrun/internal/callbackchannel"
	"github.com/jmylchreest/codecrun/internal/chunk"
	"github.com/jmylchreest/codecrun/internal/codecerr"
	"github.com/jmylchreest/codecrun/internal/control"
	"github.com/jmylchreest/codecrun/internal/resource"
	"github.com/jmylchreest/codecrun/internal/worker"
)

// State is the CodecState machine the facade exposes to the host.
type State int

const (
	StateUnconfigured State = iota
	StateConfigured
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConfigured:
		return "configured"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Config is the constraint every configuration dictionary the facade
// accepts must satisfy: it validates itself and normalizes to its own
// type, per internal/mediaconfig.
type Config[C any] interface {
	Validate() error
	Normalized() C
}

// EncodeOptions carries the per-call encode knobs exposed to the host.
type EncodeOptions struct {
	ForceKeyframe bool
}

// Output is delivered to the host's output callback for every produced
// decoded frame or encoded chunk.
type Output struct {
	Frame         *resource.Handle
	Chunk         *chunk.Chunk
	ConfigChanged bool
	Config        backend.OutputConfig
}

// Completion is the pending result of an asynchronous Flush, resolved
// exactly once from the worker's event loop.
type Completion struct {
	done chan struct{}
	once sync.Once
	err  error
}

func newCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

func (c *Completion) resolve(err error) {
	c.once.Do(func() {
		c.err = err
		close(c.done)
	})
}

// Done returns a channel closed once the flush has completed or been
// aborted.
func (c *Completion) Done() <-chan struct{} { return c.done }

// Err returns the completion's result; valid only after Done is closed.
// nil means the flush completed normally; a codecerr of kind Aborted
// means it was cancelled by Reset or Close.
func (c *Completion) Err() error { return c.err }

// Facade is the driver-thread handle for one codec instance.
type Facade[C Config[C]] struct {
	kind    backend.Kind
	queue   *control.Queue
	channel *callbackchannel.Channel[worker.Event]
	wg      sync.WaitGroup

	outputCallback  func(Output)
	errorCallback   func(*codecerr.Error)
	dequeueCallback func()

	mu    sync.Mutex
	state State

	queueSize        atomic.Int64
	dequeueScheduled atomic.Bool
	saturated        atomic.Bool

	flushMu  sync.Mutex
	flushes  map[string]*Completion

	lastActivityMu sync.Mutex
	lastActivity   time.Time
}

// New constructs a Facade and immediately starts its worker and event
// loop goroutines. Both callbacks are required, matching the WebCodecs
// constructor shape that requires output_callback and error_callback.
func New[C Config[C]](kind backend.Kind, factory backend.Factory, outputCallback func(Output), errorCallback func(*codecerr.Error)) (*Facade[C], error) {
	if outputCallback == nil || errorCallback == nil {
		return nil, codecerr.New(codecerr.InvalidConfig, "facade.new", errCallbacksRequired)
	}

	f := &Facade[C]{
		kind:           kind,
		queue:          control.New(),
		channel:        callbackchannel.New[worker.Event](256),
		outputCallback: outputCallback,
		errorCallback:  errorCallback,
		state:          StateUnconfigured,
		flushes:        make(map[string]*Completion),
		lastActivity:   time.Now(),
	}

	w := worker.New(kind, f.queue, f.channel, factory)
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		w.Run()
	}()
	go f.eventLoop()

	return f, nil
}

// SetDequeueCallback registers the callback invoked at most once per
// coalesced batch of queue-size decrements. Optional.
func (f *Facade[C]) SetDequeueCallback(cb func()) {
	f.dequeueCallback = cb
}

// State returns the facade's current CodecState.
func (f *Facade[C]) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// QueueSize returns the number of encode/decode calls queued but not yet
// fully processed by the worker.
func (f *Facade[C]) QueueSize() int64 {
	return f.queueSize.Load()
}

// Saturated reports whether the backend's output channel is currently
// experiencing sustained backpressure (the driver isn't draining outputs
// fast enough to keep up with encode/decode throughput). Meaningful for
// encoder kinds; pkg/webcodecs exposes it only on VideoEncoder/AudioEncoder.
func (f *Facade[C]) Saturated() bool {
	return f.saturated.Load()
}

// Configure validates cfg, normalizes it, and pushes it to the worker.
// Rejects with InvalidState if the facade is closed.
func (f *Facade[C]) Configure(cfg C) error {
	f.mu.Lock()
	if f.state == StateClosed {
		f.mu.Unlock()
		return codecerr.New(codecerr.InvalidState, "facade.configure", errClosed)
	}
	f.mu.Unlock()

	if err := cfg.Validate(); err != nil {
		return err
	}
	normalized := cfg.Normalized()

	f.queue.Push(control.Message{Type: control.MsgConfigure, Config: normalized})

	f.mu.Lock()
	f.state = StateConfigured
	f.mu.Unlock()
	return nil
}

// Encode clones frame so the caller may close their own handle, closes
// the caller's handle synchronously, and enqueues the clone for the
// worker to feed to the backend.
func (f *Facade[C]) Encode(frame *resource.Handle, opts EncodeOptions) error {
	f.mu.Lock()
	if f.state != StateConfigured {
		f.mu.Unlock()
		return codecerr.New(codecerr.InvalidState, "facade.encode", errNotConfigured)
	}
	f.mu.Unlock()

	clone, err := frame.Clone()
	if err != nil {
		return err
	}
	frame.Close()

	f.queueSize.Add(1)
	f.touch()
	res := f.queue.Push(control.Message{
		Type:          control.MsgEncode,
		Frame:         clone,
		EncodeOptions: control.EncodeOptions{ForceKeyframe: opts.ForceKeyframe},
	})
	if res == control.PushRejectedShutdown {
		clone.Close()
		f.queueSize.Add(-1)
		return codecerr.New(codecerr.InvalidState, "facade.encode", errClosed)
	}
	return nil
}

// Decode enqueues chunk for the worker. Chunks are immutable, so no clone
// is needed.
func (f *Facade[C]) Decode(c *chunk.Chunk) error {
	f.mu.Lock()
	if f.state != StateConfigured {
		f.mu.Unlock()
		return codecerr.New(codecerr.InvalidState, "facade.decode", errNotConfigured)
	}
	f.mu.Unlock()

	f.queueSize.Add(1)
	f.touch()
	res := f.queue.Push(control.Message{Type: control.MsgDecode, Chunk: c})
	if res == control.PushRejectedShutdown {
		f.queueSize.Add(-1)
		return codecerr.New(codecerr.InvalidState, "facade.decode", errClosed)
	}
	return nil
}

// Flush returns a pending Completion resolved once every output produced
// by messages already queued ahead of this flush has been dispatched.
func (f *Facade[C]) Flush() (*Completion, error) {
	f.mu.Lock()
	state := f.state
	f.mu.Unlock()
	if state != StateConfigured {
		return nil, codecerr.New(codecerr.InvalidState, "facade.flush", errNotConfigured)
	}

	id := ulid.Make().String()
	completion := newCompletion()
	f.flushMu.Lock()
	f.flushes[id] = completion
	f.flushMu.Unlock()

	f.queue.Push(control.Message{Type: control.MsgFlush, FlushID: id})
	return completion, nil
}

// Reset synchronously drops all pending messages, releases their owned
// resources, aborts pending flushes, zeroes the queue-size counter, and
// returns the facade to unconfigured.
func (f *Facade[C]) Reset() error {
	f.mu.Lock()
	if f.state == StateClosed {
		f.mu.Unlock()
		return codecerr.New(codecerr.InvalidState, "facade.reset", errClosed)
	}
	f.mu.Unlock()

	f.dropQueuedMessages()
	f.abortPendingFlushes()
	f.queueSize.Store(0)
	f.queue.Push(control.Message{Type: control.MsgReset})

	f.mu.Lock()
	f.state = StateUnconfigured
	f.mu.Unlock()
	return nil
}

// Close is idempotent. It applies reset semantics, releases the callback
// channel before pushing Close so no further worker dispatch can escape,
// then joins the worker goroutine in the background so Close itself never
// blocks the driver thread.
func (f *Facade[C]) Close() error {
	f.mu.Lock()
	if f.state == StateClosed {
		f.mu.Unlock()
		return nil
	}
	f.state = StateClosed
	f.mu.Unlock()

	f.dropQueuedMessages()
	f.abortPendingFlushes()
	f.queueSize.Store(0)

	f.channel.Release()
	f.queue.Push(control.Message{Type: control.MsgClose})
	f.queue.Shutdown()

	go f.wg.Wait()
	return nil
}

// ReclaimedClose is called by the Resource Manager to close an inactive
// facade. It dispatches a reclamation-error to the host's error callback
// before applying ordinary Close semantics.
func (f *Facade[C]) ReclaimedClose() error {
	f.mu.Lock()
	if f.state == StateClosed {
		f.mu.Unlock()
		return nil
	}
	f.mu.Unlock()

	f.errorCallback(codecerr.New(codecerr.ReclamationError, "facade.reclaim", errReclaimed))
	return f.Close()
}

// LastActivity reports when Encode or Decode was last called, used by the
// Resource Manager's inactivity threshold.
func (f *Facade[C]) LastActivity() time.Time {
	f.lastActivityMu.Lock()
	defer f.lastActivityMu.Unlock()
	return f.lastActivity
}

func (f *Facade[C]) touch() {
	f.lastActivityMu.Lock()
	f.lastActivity = time.Now()
	f.lastActivityMu.Unlock()
}

func (f *Facade[C]) dropQueuedMessages() {
	for _, m := range f.queue.Clear() {
		if m.Frame != nil {
			m.Frame.Close()
		}
	}
}

func (f *Facade[C]) abortPendingFlushes() {
	f.flushMu.Lock()
	defer f.flushMu.Unlock()
	for id, c := range f.flushes {
		c.resolve(codecerr.New(codecerr.Aborted, "facade.flush", errAborted))
		delete(f.flushes, id)
	}
}

func (f *Facade[C]) resolveFlush(id string, err error) {
	f.flushMu.Lock()
	c, ok := f.flushes[id]
	if ok {
		delete(f.flushes, id)
	}
	f.flushMu.Unlock()
	if ok {
		c.resolve(err)
	}
}

// eventLoop is the sole consumer of the worker's callback channel. It
// runs on its own goroutine, separate from the driver thread that calls
// Configure/Encode/Decode/Flush/Reset/Close. It invokes outputCallback and
// errorCallback for worker events and starts dequeueCallback on a separate
// goroutine; ReclaimedClose is the only other caller of errorCallback.
func (f *Facade[C]) eventLoop() {
	for {
		ev, ok := f.channel.Receive()
		if !ok {
			return
		}
		switch e := ev.(type) {
		case worker.OutputEvent:
			f.outputCallback(Output{Frame: e.Frame, Chunk: e.Chunk, ConfigChanged: e.ConfigChanged, Config: e.Config})
		case worker.DequeueEvent:
			f.handleDequeue()
		case worker.FlushCompleteEvent:
			f.resolveFlush(e.FlushID, nil)
		case worker.ResetCompleteEvent:
			// No driver-visible effect: Reset already resolved its state
			// transition synchronously. Reserved for future diagnostics.
		case worker.ErrorEvent:
			f.handleWorkerError(e.Err)
		case worker.CloseNotifyEvent:
			f.finalizeWorkerInitiatedClose()
		case worker.SaturationEvent:
			f.saturated.Store(e.Saturated)
		}
	}
}

func (f *Facade[C]) handleDequeue() {
	if f.queueSize.Add(-1) < 0 {
		f.queueSize.Store(0)
	}
	f.scheduleDequeueNotification()
}

func (f *Facade[C]) scheduleDequeueNotification() {
	if f.dequeueCallback == nil {
		return
	}
	if f.dequeueScheduled.CompareAndSwap(false, true) {
		go func() {
			f.dequeueScheduled.Store(false)
			f.dequeueCallback()
		}()
	}
}

func (f *Facade[C]) handleWorkerError(err *codecerr.Error) {
	f.mu.Lock()
	f.state = StateClosed
	f.mu.Unlock()
	f.abortPendingFlushes()
	f.errorCallback(err)
}

// finalizeWorkerInitiatedClose handles the path where the worker closed
// itself (unsupported config, a codec error, orientation mismatch). The
// callback channel has not been released yet here, unlike driver-initiated
// Close, so the worker's own CloseNotifyEvent reaches this handler instead
// of being silently dropped.
func (f *Facade[C]) finalizeWorkerInitiatedClose() {
	f.mu.Lock()
	f.state = StateClosed
	f.mu.Unlock()
	f.abortPendingFlushes()
	f.channel.Release()
}
