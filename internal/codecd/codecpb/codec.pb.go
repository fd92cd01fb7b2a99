// Package codecpb holds the message and service types for codec.proto.
//
// This file is hand-authored rather than produced by `go generate` (see
// generate.go) because this checkout has no protoc/protoc-gen-go toolchain
// available. It mirrors codec.proto's message shapes field-for-field so
// that running `go generate ./...` with protoc on PATH produces an
// equivalent (superset: real wire marshaling via protoreflect) API and
// this file can simply be deleted in favor of the generated one. Until
// then, these types carry no protobuf wire-format support of their own —
// grpc_server.go exercises them purely as plain Go values passed to
// grpc.ServerStream.SendMsg/RecvMsg.
package codecpb

// CodecKind identifies which of the four WebCodecs-style codec classes a
// session opens.
type CodecKind int32

const (
	CodecKind_CODEC_KIND_UNSPECIFIED    CodecKind = 0
	CodecKind_CODEC_KIND_VIDEO_DECODER  CodecKind = 1
	CodecKind_CODEC_KIND_VIDEO_ENCODER  CodecKind = 2
	CodecKind_CODEC_KIND_AUDIO_DECODER  CodecKind = 3
	CodecKind_CODEC_KIND_AUDIO_ENCODER  CodecKind = 4
)

func (k CodecKind) String() string {
	switch k {
	case CodecKind_CODEC_KIND_VIDEO_DECODER:
		return "CODEC_KIND_VIDEO_DECODER"
	case CodecKind_CODEC_KIND_VIDEO_ENCODER:
		return "CODEC_KIND_VIDEO_ENCODER"
	case CodecKind_CODEC_KIND_AUDIO_DECODER:
		return "CODEC_KIND_AUDIO_DECODER"
	case CodecKind_CODEC_KIND_AUDIO_ENCODER:
		return "CODEC_KIND_AUDIO_ENCODER"
	default:
		return "CODEC_KIND_UNSPECIFIED"
	}
}

// ChunkType mirrors internal/chunk.Type at the wire boundary.
type ChunkType int32

const (
	ChunkType_CHUNK_TYPE_UNSPECIFIED ChunkType = 0
	ChunkType_CHUNK_TYPE_KEY         ChunkType = 1
	ChunkType_CHUNK_TYPE_DELTA       ChunkType = 2
)

func (t ChunkType) String() string {
	switch t {
	case ChunkType_CHUNK_TYPE_KEY:
		return "CHUNK_TYPE_KEY"
	case ChunkType_CHUNK_TYPE_DELTA:
		return "CHUNK_TYPE_DELTA"
	default:
		return "CHUNK_TYPE_UNSPECIFIED"
	}
}

// ControlEnvelope is the client-to-server message on the Run stream: a
// oneof over the six control operations.
type ControlEnvelope struct {
	Payload isControlEnvelope_Payload
}

type isControlEnvelope_Payload interface{ isControlEnvelope_Payload() }

type ControlEnvelope_Open struct{ Open *OpenRequest }
type ControlEnvelope_Encode struct{ Encode *EncodeRequest }
type ControlEnvelope_Decode struct{ Decode *DecodeRequest }
type ControlEnvelope_Flush struct{ Flush *FlushRequest }
type ControlEnvelope_Reset struct{ Reset *ResetRequest }
type ControlEnvelope_Close struct{ Close *CloseRequest }

func (*ControlEnvelope_Open) isControlEnvelope_Payload()   {}
func (*ControlEnvelope_Encode) isControlEnvelope_Payload() {}
func (*ControlEnvelope_Decode) isControlEnvelope_Payload() {}
func (*ControlEnvelope_Flush) isControlEnvelope_Payload()  {}
func (*ControlEnvelope_Reset) isControlEnvelope_Payload()  {}
func (*ControlEnvelope_Close) isControlEnvelope_Payload()  {}

// GetOpen returns the envelope's OpenRequest, or nil if the envelope
// carries a different payload.
func (e *ControlEnvelope) GetOpen() *OpenRequest {
	if e == nil {
		return nil
	}
	if p, ok := e.Payload.(*ControlEnvelope_Open); ok {
		return p.Open
	}
	return nil
}

// OpenRequest is the first message every Run stream must send.
type OpenRequest struct {
	Kind CodecKind
	// ConfigJson is the JSON encoding of the matching mediaconfig.*Config
	// struct; the daemon decodes it against the type implied by Kind.
	ConfigJson string
}

// EncodeRequest carries one VideoFrame/AudioData's wire-transmissible
// payload plus enough geometry to reconstruct a resource.Handle.
type EncodeRequest struct {
	FramePayload  []byte
	Timestamp     int64
	CodedWidth    int32
	CodedHeight   int32
	PixelFormat   string
	ForceKeyframe bool
}

// DecodeRequest carries one EncodedVideoChunk/EncodedAudioChunk's bytes.
type DecodeRequest struct {
	ChunkPayload []byte
	Timestamp    int64
	Type         ChunkType
}

type FlushRequest struct{}
type ResetRequest struct{}
type CloseRequest struct{}

// EventEnvelope is the server-to-client message on the Run stream: a
// oneof over the six worker event types.
type EventEnvelope struct {
	Payload isEventEnvelope_Payload
}

type isEventEnvelope_Payload interface{ isEventEnvelope_Payload() }

type EventEnvelope_Output struct{ Output *OutputEvent }
type EventEnvelope_Dequeue struct{ Dequeue *DequeueEvent }
type EventEnvelope_FlushComplete struct{ FlushComplete *FlushCompleteEvent }
type EventEnvelope_ResetComplete struct{ ResetComplete *ResetCompleteEvent }
type EventEnvelope_Error struct{ Error *ErrorEvent }
type EventEnvelope_Closed struct{ Closed *ClosedEvent }

func (*EventEnvelope_Output) isEventEnvelope_Payload()        {}
func (*EventEnvelope_Dequeue) isEventEnvelope_Payload()       {}
func (*EventEnvelope_FlushComplete) isEventEnvelope_Payload() {}
func (*EventEnvelope_ResetComplete) isEventEnvelope_Payload() {}
func (*EventEnvelope_Error) isEventEnvelope_Payload()         {}
func (*EventEnvelope_Closed) isEventEnvelope_Payload()        {}

// GetOutput returns the envelope's OutputEvent, or nil if the envelope
// carries a different payload.
func (e *EventEnvelope) GetOutput() *OutputEvent {
	if e == nil {
		return nil
	}
	if p, ok := e.Payload.(*EventEnvelope_Output); ok {
		return p.Output
	}
	return nil
}

// GetError returns the envelope's ErrorEvent, or nil if the envelope
// carries a different payload.
func (e *EventEnvelope) GetError() *ErrorEvent {
	if e == nil {
		return nil
	}
	if p, ok := e.Payload.(*EventEnvelope_Error); ok {
		return p.Error
	}
	return nil
}

// OutputEvent mirrors internal/worker.OutputEvent at the wire boundary:
// exactly one of FramePayload/ChunkPayload is set depending on whether the
// session is a decoder or an encoder.
type OutputEvent struct {
	FramePayload     []byte
	ChunkPayload     []byte
	ChunkType        ChunkType
	Timestamp        int64
	ConfigChanged    bool
	CodecDescription []byte
}

type DequeueEvent struct{}

type FlushCompleteEvent struct {
	FlushId string
}

type ResetCompleteEvent struct{}

// ErrorEvent mirrors internal/codecerr.Error at the wire boundary.
type ErrorEvent struct {
	Kind    string
	Op      string
	Message string
}

type ClosedEvent struct{}
