// Package chunk implements the Encoded Chunk: an immutable container of
// encoded bytes plus type, timestamp, and duration. Unlike a Media
// Resource, a chunk needs no clone/close; it holds its own copy of the
// bytes and its lifetime is simply the lifetime of the Go value.
package chunk

import "github.com/jmylchreest/codecrun/internal/codecerr"

// Type classifies an encoded chunk.
type Type int

const (
	// TypeKey decodes independently of any prior chunk.
	TypeKey Type = iota
	// TypeDelta requires prior chunks to decode.
	TypeDelta
)

func (t Type) String() string {
	if t == TypeKey {
		return "key"
	}
	return "delta"
}

// Chunk is an immutable encoded media chunk.
type Chunk struct {
	typ       Type
	timestamp int64
	duration  *int64
	data      []byte
}

// New constructs a Chunk, copying data so later mutation of the caller's
// slice cannot affect the chunk.
func New(typ Type, timestamp int64, duration *int64, data []byte) *Chunk {
	owned := make([]byte, len(data))
	copy(owned, data)
	var d *int64
	if duration != nil {
		v := *duration
		d = &v
	}
	return &Chunk{typ: typ, timestamp: timestamp, duration: d, data: owned}
}

// Type returns the chunk type.
func (c *Chunk) Type() Type { return c.typ }

// Timestamp returns the presentation timestamp in microseconds.
func (c *Chunk) Timestamp() int64 { return c.timestamp }

// Duration returns the optional duration in microseconds.
func (c *Chunk) Duration() (int64, bool) {
	if c.duration == nil {
		return 0, false
	}
	return *c.duration, true
}

// ByteLength returns the number of encoded bytes.
func (c *Chunk) ByteLength() int { return len(c.data) }

// CopyTo writes the encoded bytes into destination, which must have length
// at least ByteLength(); otherwise fails with BufferTooSmall.
func (c *Chunk) CopyTo(destination []byte) error {
	if len(destination) < len(c.data) {
		return codecerr.New(codecerr.BufferTooSmall, "chunk.copy_to", errBufferTooSmall)
	}
	copy(destination, c.data)
	return nil
}
