package codecpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// This file is hand-authored alongside codec.pb.go; see that file's header
// for why, and generate.go for the protoc invocation that supersedes both
// once run. It mirrors the shape protoc-gen-go-grpc produces for a single
// bidi-streaming RPC.

const codecRuntimeServiceName = "codecd.v1.CodecRuntime"

// CodecRuntimeClient is the client API for the CodecRuntime service.
type CodecRuntimeClient interface {
	Run(ctx context.Context, opts ...grpc.CallOption) (CodecRuntime_RunClient, error)
}

type codecRuntimeClient struct {
	cc grpc.ClientConnInterface
}

// NewCodecRuntimeClient constructs a CodecRuntimeClient over cc.
func NewCodecRuntimeClient(cc grpc.ClientConnInterface) CodecRuntimeClient {
	return &codecRuntimeClient{cc}
}

func (c *codecRuntimeClient) Run(ctx context.Context, opts ...grpc.CallOption) (CodecRuntime_RunClient, error) {
	stream, err := c.cc.NewStream(ctx, &codecRuntimeServiceDesc.Streams[0], "/"+codecRuntimeServiceName+"/Run", opts...)
	if err != nil {
		return nil, err
	}
	return &codecRuntimeRunClient{stream}, nil
}

// CodecRuntime_RunClient is the client-side stream handle for Run.
type CodecRuntime_RunClient interface {
	Send(*ControlEnvelope) error
	Recv() (*EventEnvelope, error)
	grpc.ClientStream
}

type codecRuntimeRunClient struct {
	grpc.ClientStream
}

func (x *codecRuntimeRunClient) Send(m *ControlEnvelope) error {
	return x.ClientStream.SendMsg(m)
}

func (x *codecRuntimeRunClient) Recv() (*EventEnvelope, error) {
	m := new(EventEnvelope)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// CodecRuntimeServer is the server API for the CodecRuntime service.
type CodecRuntimeServer interface {
	Run(CodecRuntime_RunServer) error
	mustEmbedUnimplementedCodecRuntimeServer()
}

// UnimplementedCodecRuntimeServer must be embedded by any implementation
// to stay forward-compatible with RPCs added to the service later.
type UnimplementedCodecRuntimeServer struct{}

func (UnimplementedCodecRuntimeServer) Run(CodecRuntime_RunServer) error {
	return status.Errorf(codes.Unimplemented, "method Run not implemented")
}
func (UnimplementedCodecRuntimeServer) mustEmbedUnimplementedCodecRuntimeServer() {}

// RegisterCodecRuntimeServer registers srv with s.
func RegisterCodecRuntimeServer(s grpc.ServiceRegistrar, srv CodecRuntimeServer) {
	s.RegisterService(&codecRuntimeServiceDesc, srv)
}

func codecRuntimeRunHandler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(CodecRuntimeServer).Run(&codecRuntimeRunServer{stream})
}

// CodecRuntime_RunServer is the server-side stream handle for Run.
type CodecRuntime_RunServer interface {
	Send(*EventEnvelope) error
	Recv() (*ControlEnvelope, error)
	grpc.ServerStream
}

type codecRuntimeRunServer struct {
	grpc.ServerStream
}

func (x *codecRuntimeRunServer) Send(m *EventEnvelope) error {
	return x.ServerStream.SendMsg(m)
}

func (x *codecRuntimeRunServer) Recv() (*ControlEnvelope, error) {
	m := new(ControlEnvelope)
	if err := x.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

var codecRuntimeServiceDesc = grpc.ServiceDesc{
	ServiceName: codecRuntimeServiceName,
	HandlerType: (*CodecRuntimeServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Run",
			Handler:       codecRuntimeRunHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "codec.proto",
}
