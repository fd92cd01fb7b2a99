// Package control implements the Control Message and Control Queue: the
// unbounded, ordered queue through which a Codec Facade hands work to its
// Codec Worker. The queue is single-producer/single-consumer per codec
// instance in normal operation, guarded by a mutex and condition variable
// in the style of the pack's bufpool and session primitives rather than a
// raw Go channel, because Peek/PopFront/Clear need to inspect and mutate
// the front of the queue without necessarily committing to a dequeue.
package control

import (
	"sync"

	"github.com/jmylchreest/codecrun/internal/chunk"
	"github.com/jmylchreest/codecrun/internal/resource"
)

// MessageType tags the variant carried by a Message.
type MessageType int

const (
	MsgConfigure MessageType = iota
	MsgDecode
	MsgEncode
	MsgFlush
	MsgReset
	MsgClose
)

func (t MessageType) String() string {
	switch t {
	case MsgConfigure:
		return "configure"
	case MsgDecode:
		return "decode"
	case MsgEncode:
		return "encode"
	case MsgFlush:
		return "flush"
	case MsgReset:
		return "reset"
	case MsgClose:
		return "close"
	default:
		return "unknown"
	}
}

// EncodeOptions carries the per-call encode knobs from the data model.
type EncodeOptions struct {
	ForceKeyframe bool
}

// Message is the tagged control record the facade enqueues and the worker
// pops. Only the field matching Type is meaningful.
type Message struct {
	Type          MessageType
	Config        any
	Chunk         *chunk.Chunk
	Frame         *resource.Handle
	EncodeOptions EncodeOptions
	FlushID       string
}

// PushResult reports the outcome of Push.
type PushResult int

const (
	PushAccepted PushResult = iota
	PushRejectedShutdown
)

// Queue is an unbounded FIFO of Messages with blocking/non-blocking pop,
// peek, clear, and a monotonic shutdown. Push never rejects for size; it
// rejects only after Shutdown.
type Queue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []Message
	shutdown bool
}

// New creates an empty, open Queue.
func New() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends message to the back of the queue. Ordering is always FIFO;
// nothing ever reorders a push. Rejects after Shutdown.
func (q *Queue) Push(m Message) PushResult {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.shutdown {
		return PushRejectedShutdown
	}
	q.items = append(q.items, m)
	q.cond.Signal()
	return PushAccepted
}

// PopBlocking removes and returns the front message, blocking until one is
// available or the queue is shut down. ok is false only on shutdown with an
// empty queue.
func (q *Queue) PopBlocking() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.shutdown {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return Message{}, false
	}
	m := q.items[0]
	q.items = q.items[1:]
	return m, true
}

// PopNonblocking removes and returns the front message if one is present.
func (q *Queue) PopNonblocking() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Message{}, false
	}
	m := q.items[0]
	q.items = q.items[1:]
	return m, true
}

// Peek returns the front message without removing it.
func (q *Queue) Peek() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Message{}, false
	}
	return q.items[0], true
}

// PopFront commits a previous Peek by removing the front message. It is a
// no-op on an empty queue.
func (q *Queue) PopFront() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return
	}
	q.items = q.items[1:]
}

// Clear removes and returns every pending message so the caller can release
// their owned media resources deterministically (used by reset/close).
func (q *Queue) Clear() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// Shutdown drains nothing by itself but marks the queue closed, wakes every
// blocked popper, and causes subsequent Push calls to be rejected.
// Shutdown is monotonic: calling it twice is safe.
func (q *Queue) Shutdown() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.shutdown = true
	q.cond.Broadcast()
}

// Size returns the number of pending messages.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// IsEmpty reports whether the queue currently has no pending messages.
func (q *Queue) IsEmpty() bool {
	return q.Size() == 0
}
