package webcodecs

import "github.com/jmylchreest/codecrun/internal/chunk"

// ChunkType distinguishes a key chunk (independently decodable) from a
// delta chunk (dependent on prior chunks in decode order).
type ChunkType int

const (
	ChunkTypeKey ChunkType = iota
	ChunkTypeDelta
)

func (t ChunkType) toInternal() chunk.Type {
	if t == ChunkTypeKey {
		return chunk.TypeKey
	}
	return chunk.TypeDelta
}

// EncodedVideoChunk is an immutable, codec-specific-bitstream unit of
// encoded video, produced by VideoEncoder and consumed by VideoDecoder.
type EncodedVideoChunk struct {
	inner *chunk.Chunk
}

// NewEncodedVideoChunk constructs a chunk, defensively copying data.
func NewEncodedVideoChunk(typ ChunkType, timestamp int64, duration *int64, data []byte) *EncodedVideoChunk {
	return &EncodedVideoChunk{inner: chunk.New(typ.toInternal(), timestamp, duration, data)}
}

// Type reports whether this is a key or delta chunk.
func (c *EncodedVideoChunk) Type() ChunkType {
	if c.inner.Type() == chunk.TypeKey {
		return ChunkTypeKey
	}
	return ChunkTypeDelta
}

// Timestamp returns the chunk's presentation timestamp in microseconds.
func (c *EncodedVideoChunk) Timestamp() int64 { return c.inner.Timestamp() }

// ByteLength returns the chunk's encoded payload length.
func (c *EncodedVideoChunk) ByteLength() int { return c.inner.ByteLength() }

// CopyTo copies the chunk's encoded bytes into destination.
func (c *EncodedVideoChunk) CopyTo(destination []byte) error { return c.inner.CopyTo(destination) }

// Handle exposes the underlying chunk for internal callers (the decoder).
func (c *EncodedVideoChunk) Handle() *chunk.Chunk { return c.inner }

// EncodedAudioChunk is an immutable, codec-specific-bitstream unit of
// encoded audio, produced by AudioEncoder and consumed by AudioDecoder.
type EncodedAudioChunk struct {
	inner *chunk.Chunk
}

// NewEncodedAudioChunk constructs a chunk, defensively copying data.
func NewEncodedAudioChunk(typ ChunkType, timestamp int64, duration *int64, data []byte) *EncodedAudioChunk {
	return &EncodedAudioChunk{inner: chunk.New(typ.toInternal(), timestamp, duration, data)}
}

// Type reports whether this is a key or delta chunk.
func (c *EncodedAudioChunk) Type() ChunkType {
	if c.inner.Type() == chunk.TypeKey {
		return ChunkTypeKey
	}
	return ChunkTypeDelta
}

// Timestamp returns the chunk's presentation timestamp in microseconds.
func (c *EncodedAudioChunk) Timestamp() int64 { return c.inner.Timestamp() }

// ByteLength returns the chunk's encoded payload length.
func (c *EncodedAudioChunk) ByteLength() int { return c.inner.ByteLength() }

// CopyTo copies the chunk's encoded bytes into destination.
func (c *EncodedAudioChunk) CopyTo(destination []byte) error { return c.inner.CopyTo(destination) }

// Handle exposes the underlying chunk for internal callers.
func (c *EncodedAudioChunk) Handle() *chunk.Chunk { return c.inner }
