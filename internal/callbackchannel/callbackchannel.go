// Package callbackchannel implements the Safe Callback Channel: the
// cross-thread dispatch path a Codec Worker uses to hand events back to a
// Codec Facade without ever blocking the worker's message loop. It is
// grounded on the pack's subscriber-channel convention (see
// internal/service/progress for the non-blocking fan-out idiom this
// generalizes) but adapted to a single bounded buffered channel per
// facade/worker pair, since WebCodecs events are strictly ordered and have
// exactly one consumer.
package callbackchannel

import "sync"

// DispatchResult reports what happened to a dispatched value.
type DispatchResult int

const (
	// Delivered means the value was placed on the channel for the consumer.
	Delivered DispatchResult = iota
	// Queued means the value was buffered; the consumer hasn't drained yet
	// but there was room.
	Queued
	// RejectedReleased means the channel was already released; the caller
	// retains ownership of the dispatched value.
	RejectedReleased
	// RejectedFull means the channel's buffer was saturated; the caller
	// retains ownership of the dispatched value.
	RejectedFull
)

// Channel is a bounded, single-consumer dispatch path. Once Release is
// called, all further Dispatch calls fail with RejectedReleased and the
// underlying Go channel is closed so a blocked Receive returns immediately.
type Channel[T any] struct {
	mu       sync.Mutex
	ch       chan T
	released bool
}

// New creates a Channel with the given buffer capacity. A capacity of 0
// means every dispatch must be immediately received or it is rejected as
// full.
func New[T any](capacity int) *Channel[T] {
	return &Channel[T]{ch: make(chan T, capacity)}
}

// Dispatch attempts to hand value to the consumer without blocking the
// caller. On RejectedReleased or RejectedFull, value is returned so the
// caller retains ownership.
func (c *Channel[T]) Dispatch(value T) (T, DispatchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return value, RejectedReleased
	}

	var zero T
	if cap(c.ch) == 0 {
		// Unbuffered: a successful send only happens if a receiver is
		// actively waiting, i.e. immediate delivery.
		select {
		case c.ch <- value:
			return zero, Delivered
		default:
			return value, RejectedFull
		}
	}

	select {
	case c.ch <- value:
		return zero, Queued
	default:
		return value, RejectedFull
	}
}

// Receive blocks until a value is available or the channel is released,
// in which case ok is false.
func (c *Channel[T]) Receive() (T, bool) {
	v, ok := <-c.ch
	return v, ok
}

// TryReceive returns a pending value without blocking.
func (c *Channel[T]) TryReceive() (T, bool) {
	select {
	case v, ok := <-c.ch:
		return v, ok
	default:
		var zero T
		return zero, false
	}
}

// Release permanently closes the channel. Idempotent. After Release, every
// Dispatch fails with RejectedReleased and any blocked Receive unblocks
// with ok=false.
func (c *Channel[T]) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return
	}
	c.released = true
	close(c.ch)
}

// Released reports whether Release has been called.
func (c *Channel[T]) Released() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.released
}
