package trainingserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "ghostchase.training.v1.TrainingService"

// Full method names
const (
	GetProgressMethod    = "/" + ServiceName + "/GetProgress"
	GetTransitionsMethod = "/" + ServiceName + "/GetTransitions"
	WatchProgressMethod  = "/" + ServiceName + "/WatchProgress"
)

// TrainingServiceServer is the server API for the training service. Messages
// are well-known protobuf types so no generated stubs are needed.
type TrainingServiceServer interface {
	GetProgress(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetTransitions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WatchProgress(*structpb.Struct, ProgressStream) error
}

// ProgressStream is the server side of WatchProgress
type ProgressStream interface {
	Send(*structpb.Struct) error
	Context() context.Context
}

type progressServerStream struct {
	grpc.ServerStream
}

func (s *progressServerStream) Send(m *structpb.Struct) error {
	return s.ServerStream.SendMsg(m)
}

// ServiceDesc describes the training service for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TrainingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetProgress", Handler: getProgressHandler},
		{MethodName: "GetTransitions", Handler: getTransitionsHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchProgress", Handler: watchProgressHandler, ServerStreams: true},
	},
}

// RegisterTrainingServiceServer registers srv with s
func RegisterTrainingServiceServer(s grpc.ServiceRegistrar, srv TrainingServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func getProgressHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TrainingServiceServer).GetProgress(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetProgressMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TrainingServiceServer).GetProgress(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getTransitionsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TrainingServiceServer).GetTransitions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetTransitionsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TrainingServiceServer).GetTransitions(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func watchProgressHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(TrainingServiceServer).WatchProgress(in, &progressServerStream{stream})
}

// Client calls the training service
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) GetProgress(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetProgressMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTransitions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetTransitionsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// WatchProgress opens a progress stream. Call Recv until it returns io.EOF.
func (c *Client) WatchProgress(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*ProgressClientStream, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], WatchProgressMethod, opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &ProgressClientStream{stream}, nil
}

// ProgressClientStream is the client side of WatchProgress
type ProgressClientStream struct {
	grpc.ClientStream
}

func (s *ProgressClientStream) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := s.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
