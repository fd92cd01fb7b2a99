// Package codecd wires the internal Codec Facade engine to out-of-process
// callers: a gRPC data-plane service (one bidirectional stream per codec
// instance) grounded on internal/daemon.Server.Transcode, and a read-only
// HTTP admin surface over the Resource Manager grounded on
// internal/http/handlers.HealthHandler.
package codecd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/jmylchreest/codecrun/internal/backend"
	fakebackend "github.com/jmylchreest/codecrun/internal/backend/fake"
	"github.com/jmylchreest/codecrun/internal/chunk"
	"github.com/jmylchreest/codecrun/internal/codecd/codecpb"
	"github.com/jmylchreest/codecrun/internal/codecerr"
	"github.com/jmylchreest/codecrun/internal/facade"
	"github.com/jmylchreest/codecrun/internal/mediaconfig"
	"github.com/jmylchreest/codecrun/internal/resource"
	"github.com/jmylchreest/codecrun/internal/resourcemanager"
)

// anySession is the subset of facade.Facade[C] the gRPC layer drives
// without needing to know which of the four config types it holds.
type anySession interface {
	Encode(frame *resource.Handle, opts facade.EncodeOptions) error
	Decode(c *chunk.Chunk) error
	Flush() (*facade.Completion, error)
	Reset() error
	Close() error
}

// Server implements codecpb.CodecRuntimeServer, multiplexing a control
// stream and an event stream per RPC call onto one internal facade
// instance.
type Server struct {
	codecpb.UnimplementedCodecRuntimeServer

	logger   *slog.Logger
	registry *resourcemanager.Manager
}

// NewServer creates a gRPC codec runtime server backed by registry for
// reclamation bookkeeping.
func NewServer(logger *slog.Logger, registry *resourcemanager.Manager) *Server {
	return &Server{logger: logger, registry: registry}
}

// correlationIDHeader is the gRPC metadata key used to correlate a codec
// session's control stream with caller-side tracing, either supplied by the
// caller or minted here and echoed back as an outgoing header.
const correlationIDHeader = "x-correlation-id"

// Run implements the single bidi-streaming RPC: the first ControlEnvelope
// must carry an OpenRequest, after which Encode/Decode/Flush/Reset/Close
// envelopes are pumped in until the client closes the stream. Only Output
// and Error envelopes are pumped out: the facade's flush completions,
// dequeue notifications and closure are not forwarded as events.
func (s *Server) Run(stream codecpb.CodecRuntime_RunServer) error {
	sessionID := uuid.New().String()
	if md, ok := metadata.FromIncomingContext(stream.Context()); ok {
		if vals := md.Get(correlationIDHeader); len(vals) > 0 && vals[0] != "" {
			sessionID = vals[0]
		}
	}
	_ = stream.SendHeader(metadata.Pairs(correlationIDHeader, sessionID))
	log := s.logger.With(slog.String("correlation_id", sessionID))

	first, err := stream.Recv()
	if err != nil {
		return status.Errorf(codes.Internal, "receiving open message: %v", err)
	}
	open, ok := first.Payload.(*codecpb.ControlEnvelope_Open)
	if !ok {
		return status.Errorf(codes.InvalidArgument, "expected OpenRequest, got %T", first.Payload)
	}

	session, reg, events, err := s.open(open.Open)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "open: %v", err)
	}
	log.Info("codec session opened", slog.String("kind", open.Open.Kind.String()))
	defer log.Info("codec session closed")
	defer s.registry.Unregister(reg)
	defer session.Close()

	sendErrs := make(chan error, 1)
	go func() {
		for ev := range events {
			if sendErr := stream.Send(ev); sendErr != nil {
				sendErrs <- sendErr
				return
			}
		}
		sendErrs <- nil
	}()

	for {
		env, err := stream.Recv()
		if err != nil {
			session.Close()
			<-sendErrs
			return nil
		}
		if err := dispatchControl(session, env); err != nil {
			log.Warn("codec control dispatch failed", slog.String("error", err.Error()))
		}
		select {
		case sendErr := <-sendErrs:
			return sendErr
		default:
		}
	}
}

func dispatchControl(session anySession, env *codecpb.ControlEnvelope) error {
	switch p := env.Payload.(type) {
	case *codecpb.ControlEnvelope_Encode:
		return dispatchEncode(session, p.Encode)
	case *codecpb.ControlEnvelope_Decode:
		return dispatchDecode(session, p.Decode)
	case *codecpb.ControlEnvelope_Flush:
		_, err := session.Flush()
		return err
	case *codecpb.ControlEnvelope_Reset:
		return session.Reset()
	case *codecpb.ControlEnvelope_Close:
		return session.Close()
	default:
		return fmt.Errorf("unexpected control payload %T", p)
	}
}

func dispatchEncode(session anySession, req *codecpb.EncodeRequest) error {
	frame, err := resource.Construct(req.FramePayload, false, resource.Init{
		Kind:      resource.KindVideo,
		Format:    resource.Format(req.PixelFormat),
		Timestamp: req.Timestamp,
		Video: resource.VideoGeometry{
			CodedWidth:  int(req.CodedWidth),
			CodedHeight: int(req.CodedHeight),
			VisibleRect: resource.Rect{Width: int(req.CodedWidth), Height: int(req.CodedHeight)},
		},
		Layout: []resource.PlaneLayout{{Offset: 0, Stride: int(req.CodedWidth) * 4, Rows: int(req.CodedHeight)}},
	})
	if err != nil {
		return fmt.Errorf("constructing frame from wire payload: %w", err)
	}
	return session.Encode(frame, facade.EncodeOptions{ForceKeyframe: req.ForceKeyframe})
}

func dispatchDecode(session anySession, req *codecpb.DecodeRequest) error {
	typ := chunk.TypeDelta
	if req.Type == codecpb.ChunkType_CHUNK_TYPE_KEY {
		typ = chunk.TypeKey
	}
	return session.Decode(chunk.New(typ, req.Timestamp, nil, req.ChunkPayload))
}

// open configures a new facade instance of the requested kind from the
// OpenRequest's JSON-encoded config, registers it with the Resource
// Manager, and returns a channel of EventEnvelopes translated from the
// facade's output/error callbacks.
func (s *Server) open(req *codecpb.OpenRequest) (anySession, *resourcemanager.Registration, <-chan *codecpb.EventEnvelope, error) {
	events := make(chan *codecpb.EventEnvelope, 64)
	var mu sync.Mutex
	emit := func(ev *codecpb.EventEnvelope) {
		mu.Lock()
		defer mu.Unlock()
		select {
		case events <- ev:
		default:
		}
	}

	onOutput := func(o facade.Output) {
		ev := &codecpb.EventEnvelope{Payload: &codecpb.EventEnvelope_Output{Output: &codecpb.OutputEvent{
			ConfigChanged: o.ConfigChanged,
		}}}
		if o.Frame != nil {
			if size, err := o.Frame.AllocationSize(resource.CopyOptions{}); err == nil {
				buf := make([]byte, size)
				if _, err := o.Frame.CopyTo(buf, resource.CopyOptions{}); err == nil {
					ev.GetOutput().FramePayload = buf
				}
			}
			ev.GetOutput().Timestamp = o.Frame.Timestamp()
			o.Frame.Close()
		}
		if o.Chunk != nil {
			payload := make([]byte, o.Chunk.ByteLength())
			_ = o.Chunk.CopyTo(payload)
			ev.GetOutput().ChunkPayload = payload
			ev.GetOutput().Timestamp = o.Chunk.Timestamp()
			if o.Chunk.Type() == chunk.TypeKey {
				ev.GetOutput().ChunkType = codecpb.ChunkType_CHUNK_TYPE_KEY
			} else {
				ev.GetOutput().ChunkType = codecpb.ChunkType_CHUNK_TYPE_DELTA
			}
		}
		ev.GetOutput().CodecDescription = o.Config.Description
		emit(ev)
	}
	onError := func(e *codecerr.Error) {
		emit(&codecpb.EventEnvelope{Payload: &codecpb.EventEnvelope_Error{Error: &codecpb.ErrorEvent{
			Kind:    e.Kind.String(),
			Op:      e.Op,
			Message: e.Error(),
		}}})
	}

	session, reg, err := s.newFacade(req.Kind, req.ConfigJson, onOutput, onError)
	if err != nil {
		close(events)
		return nil, nil, nil, err
	}
	return session, reg, events, nil
}

func (s *Server) newFacade(kind codecpb.CodecKind, configJSON string, onOutput func(facade.Output), onError func(*codecerr.Error)) (anySession, *resourcemanager.Registration, error) {
	switch kind {
	case codecpb.CodecKind_CODEC_KIND_VIDEO_ENCODER:
		var cfg mediaconfig.VideoEncoderConfig
		if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
			return nil, nil, err
		}
		f, err := facade.New[mediaconfig.VideoEncoderConfig](backend.KindVideoEncoder, fakebackend.Factory, onOutput, onError)
		if err != nil {
			return nil, nil, err
		}
		if err := f.Configure(cfg); err != nil {
			return nil, nil, err
		}
		return f, s.registry.Register(resourcemanager.Kind{Operation: "encoder", Media: "video"}, f), nil
	case codecpb.CodecKind_CODEC_KIND_VIDEO_DECODER:
		var cfg mediaconfig.VideoDecoderConfig
		if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
			return nil, nil, err
		}
		f, err := facade.New[mediaconfig.VideoDecoderConfig](backend.KindVideoDecoder, fakebackend.Factory, onOutput, onError)
		if err != nil {
			return nil, nil, err
		}
		if err := f.Configure(cfg); err != nil {
			return nil, nil, err
		}
		return f, s.registry.Register(resourcemanager.Kind{Operation: "decoder", Media: "video"}, f), nil
	case codecpb.CodecKind_CODEC_KIND_AUDIO_ENCODER:
		var cfg mediaconfig.AudioEncoderConfig
		if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
			return nil, nil, err
		}
		f, err := facade.New[mediaconfig.AudioEncoderConfig](backend.KindAudioEncoder, fakebackend.Factory, onOutput, onError)
		if err != nil {
			return nil, nil, err
		}
		if err := f.Configure(cfg); err != nil {
			return nil, nil, err
		}
		return f, s.registry.Register(resourcemanager.Kind{Operation: "encoder", Media: "audio"}, f), nil
	case codecpb.CodecKind_CODEC_KIND_AUDIO_DECODER:
		var cfg mediaconfig.AudioDecoderConfig
		if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
			return nil, nil, err
		}
		f, err := facade.New[mediaconfig.AudioDecoderConfig](backend.KindAudioDecoder, fakebackend.Factory, onOutput, onError)
		if err != nil {
			return nil, nil, err
		}
		if err := f.Configure(cfg); err != nil {
			return nil, nil, err
		}
		return f, s.registry.Register(resourcemanager.Kind{Operation: "decoder", Media: "audio"}, f), nil
	default:
		return nil, nil, fmt.Errorf("unspecified codec kind")
	}
}
