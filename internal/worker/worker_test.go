package worker

import (
	"testing"
	"time"

	"github.com/jmylchreest/codecrun/internal/backend"
	fakebackend "github.com/jmylchreest/codecrun/internal/backend/fake"
	"github.com/jmylchreest/codecrun/internal/callbackchannel"
	"github.com/jmylchreest/codecrun/internal/chunk"
	"github.com/jmylchreest/codecrun/internal/control"
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

func newTestWorker(kind backend.Kind) (*Worker, *control.Queue, *callbackchannel.Channel[Event]) {
	q := control.New()
	ch := callbackchannel.New[Event](64)
	w := New(kind, q, ch, fakebackend.Factory)
	return w, q, ch
}

func TestEncodeThirtyFrameRoundTrip(t *testing.T) {
	w, q, ch := newTestWorker(backend.KindVideoEncoder)
	go w.Run()

	q.Push(control.Message{Type: control.MsgConfigure, Config: struct{}{}})

	for i := 0; i < 30; i++ {
		frame := rgbaFrame(t, int64(i*33333))
		q.Push(control.Message{Type: control.MsgEncode, Frame: frame})
	}

	var chunks int
	var dequeues int
	for dequeues < 30 {
		ev, ok := ch.Receive()
		require.True(t, ok)
		switch e := ev.(type) {
		case OutputEvent:
			require.NotNil(t, e.Chunk)
			chunks++
		case DequeueEvent:
			dequeues++
		case ErrorEvent:
			t.Fatalf("unexpected error: %v", e.Err)
		}
	}
	require.Equal(t, 30, chunks)

	q.Push(control.Message{Type: control.MsgClose})
	for {
		ev, ok := ch.Receive()
		require.True(t, ok)
		if _, isClose := ev.(CloseNotifyEvent); isClose {
			break
		}
	}
}

func TestForceKeyframeCadence(t *testing.T) {
	w, q, ch := newTestWorker(backend.KindVideoEncoder)
	go w.Run()

	q.Push(control.Message{Type: control.MsgConfigure, Config: struct{}{}})

	for i := 0; i < 60; i++ {
		frame := rgbaFrame(t, int64(i))
		q.Push(control.Message{
			Type:          control.MsgEncode,
			Frame:         frame,
			EncodeOptions: control.EncodeOptions{ForceKeyframe: i%15 == 0},
		})
	}

	keyIndices := map[int64]bool{}
	count := 0
	for count < 60 {
		ev, ok := ch.Receive()
		require.True(t, ok)
		switch e := ev.(type) {
		case OutputEvent:
			if e.Chunk.Type().String() == "key" {
				keyIndices[e.Chunk.Timestamp()] = true
			}
		case DequeueEvent:
			count++
		}
	}

	for _, idx := range []int64{0, 15, 30, 45} {
		require.True(t, keyIndices[idx], "expected a key chunk at index %d", idx)
	}
}

func TestNonBlockingFlush(t *testing.T) {
	w, q, ch := newTestWorker(backend.KindVideoEncoder)
	go w.Run()

	q.Push(control.Message{Type: control.MsgConfigure, Config: struct{}{}})
	q.Push(control.Message{Type: control.MsgFlush, FlushID: "flush-1"})

	// Pushing Flush must not block the driver goroutine.
	require.Equal(t, control.PushAccepted, q.Push(control.Message{Type: control.MsgClose}))

	sawFlushComplete := false
	for {
		ev, ok := ch.Receive()
		require.True(t, ok)
		switch e := ev.(type) {
		case FlushCompleteEvent:
			require.Equal(t, "flush-1", e.FlushID)
			sawFlushComplete = true
		case CloseNotifyEvent:
			require.True(t, sawFlushComplete)
			return
		}
	}
}

func TestDecodeRequiresKeyChunkFirst(t *testing.T) {
	w, q, ch := newTestWorker(backend.KindVideoDecoder)
	go w.Run()

	q.Push(control.Message{Type: control.MsgConfigure, Config: struct{}{}})

	// Build a delta chunk via the fake backend directly.
	enc := fakebackend.New(backend.KindVideoEncoder)
	require.NoError(t, enc.Init(struct{}{}))
	frame := rgbaFrame(t, 0)
	_, err := enc.PushInput(backend.Input{Frame: frame})
	require.NoError(t, err)
	frame.Close()
	keyOut, _, err := enc.PullOutput()
	require.NoError(t, err)

	frame2 := rgbaFrame(t, 1)
	_, err = enc.PushInput(backend.Input{Frame: frame2})
	require.NoError(t, err)
	frame2.Close()
	deltaOut, _, err := enc.PullOutput()
	require.NoError(t, err)
	require.Equal(t, "delta", deltaOut.Chunk.Type().String())

	q.Push(control.Message{Type: control.MsgDecode, Chunk: deltaOut.Chunk})

	ev, ok := ch.Receive()
	require.True(t, ok)
	errEv, isErr := ev.(ErrorEvent)
	require.True(t, isErr)
	require.Equal(t, "data-error", errEv.Err.Kind.String())

	_, ok = ch.Receive()
	require.True(t, ok) // CloseNotifyEvent after worker self-closes

	_ = keyOut
}

func TestFlushRearmsKeyChunkRequirement(t *testing.T) {
	w, q, ch := newTestWorker(backend.KindVideoDecoder)
	go w.Run()

	q.Push(control.Message{Type: control.MsgConfigure, Config: struct{}{}})

	keyChunk := chunk.New(chunk.TypeKey, 0, nil, []byte{1, 2, 3, 4})
	q.Push(control.Message{Type: control.MsgDecode, Chunk: keyChunk})

	var sawOutput, sawDequeue bool
	for !sawOutput || !sawDequeue {
		ev, ok := ch.Receive()
		require.True(t, ok)
		switch e := ev.(type) {
		case OutputEvent:
			require.NotNil(t, e.Frame)
			e.Frame.Close()
			sawOutput = true
		case DequeueEvent:
			sawDequeue = true
		case ErrorEvent:
			t.Fatalf("unexpected error decoding key chunk: %v", e.Err)
		}
	}

	q.Push(control.Message{Type: control.MsgFlush, FlushID: "flush-1"})
	for {
		ev, ok := ch.Receive()
		require.True(t, ok)
		if fc, isFlush := ev.(FlushCompleteEvent); isFlush {
			require.Equal(t, "flush-1", fc.FlushID)
			break
		}
	}

	// A flush re-arms key-chunk-required: the decoder cannot resume a GOP
	// mid-stream once flush has discarded its reference frames, so the very
	// next Decode must be a key chunk.
	deltaChunk := chunk.New(chunk.TypeDelta, 1, nil, []byte{5, 6, 7, 8})
	q.Push(control.Message{Type: control.MsgDecode, Chunk: deltaChunk})

	ev, ok := ch.Receive()
	require.True(t, ok)
	errEv, isErr := ev.(ErrorEvent)
	require.True(t, isErr)
	require.Equal(t, "data-error", errEv.Err.Kind.String())

	ev, ok = ch.Receive()
	require.True(t, ok)
	_, isClose := ev.(CloseNotifyEvent)
	require.True(t, isClose)
}

func TestUnsupportedConfigClosesWorker(t *testing.T) {
	w, q, ch := newTestWorker(backend.KindVideoDecoder)
	go w.Run()

	q.Push(control.Message{Type: control.MsgConfigure, Config: nil})

	ev, ok := ch.Receive()
	require.True(t, ok)
	errEv, isErr := ev.(ErrorEvent)
	require.True(t, isErr)
	require.Equal(t, "unsupported", errEv.Err.Kind.String())

	ev, ok = ch.Receive()
	require.True(t, ok)
	_, isClose := ev.(CloseNotifyEvent)
	require.True(t, isClose)
}

func TestMaxConcurrentWorkersBound(t *testing.T) {
	SetMaxConcurrentWorkers(1)
	defer SetMaxConcurrentWorkers(defaultMaxConcurrentWorkers)

	wA, qA, chA := newTestWorker(backend.KindVideoEncoder)
	go wA.Run()
	qA.Push(control.Message{Type: control.MsgConfigure, Config: struct{}{}})

	wB, qB, chB := newTestWorker(backend.KindVideoEncoder)
	go wB.Run()
	qB.Push(control.Message{Type: control.MsgConfigure, Config: struct{}{}})
	qB.Push(control.Message{Type: control.MsgReset})

	deadline := time.Now().Add(50 * time.Millisecond)
	for time.Now().Before(deadline) {
		if _, ok := chB.TryReceive(); ok {
			t.Fatal("second worker ran before the first released its concurrency slot")
		}
		time.Sleep(time.Millisecond)
	}

	qA.Push(control.Message{Type: control.MsgClose})
	ev, ok := chA.Receive()
	require.True(t, ok)
	_, isClose := ev.(CloseNotifyEvent)
	require.True(t, isClose)

	ev, ok = chB.Receive()
	require.True(t, ok)
	_, isReset := ev.(ResetCompleteEvent)
	require.True(t, isReset)

	qB.Push(control.Message{Type: control.MsgClose})
	ev, ok = chB.Receive()
	require.True(t, ok)
	_, isClose = ev.(CloseNotifyEvent)
	require.True(t, isClose)
}

func TestResetDispatchesResetComplete(t *testing.T) {
	w, q, ch := newTestWorker(backend.KindVideoEncoder)
	go w.Run()

	q.Push(control.Message{Type: control.MsgConfigure, Config: struct{}{}})
	q.Push(control.Message{Type: control.MsgReset})

	ev, ok := ch.Receive()
	require.True(t, ok)
	_, isReset := ev.(ResetCompleteEvent)
	require.True(t, isReset)

	q.Push(control.Message{Type: control.MsgClose})
	ev, ok = ch.Receive()
	require.True(t, ok)
	_, isClose := ev.(CloseNotifyEvent)
	require.True(t, isClose)
}
