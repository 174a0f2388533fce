// Package linerpc declares the LineService gRPC service: one bidirectional
// stream per chat session, each frame carrying exactly one protocol line as
// a google.protobuf.StringValue. The lines are the same ones the TCP
// transport exchanges, so both transports drive the same session logic.
package linerpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName       = "salachat.LineService"
	SessionMethodName = "/salachat.LineService/Session"
)

type LineServiceServer interface {
	Session(SessionServer) error
}

type SessionServer interface {
	Send(*wrapperspb.StringValue) error
	Recv() (*wrapperspb.StringValue, error)
	grpc.ServerStream
}

type sessionServer struct {
	grpc.ServerStream
}

func (x *sessionServer) Send(m *wrapperspb.StringValue) error {
	return x.ServerStream.SendMsg(m)
}

func (x *sessionServer) Recv() (*wrapperspb.StringValue, error) {
	m := new(wrapperspb.StringValue)
	if err := x.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func sessionHandler(srv any, stream grpc.ServerStream) error {
	return srv.(LineServiceServer).Session(&sessionServer{stream})
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LineServiceServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Session",
			Handler:       sessionHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "salachat/line.proto",
}

func RegisterLineServiceServer(s grpc.ServiceRegistrar, srv LineServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type LineServiceClient interface {
	Session(ctx context.Context, opts ...grpc.CallOption) (SessionClient, error)
}

type SessionClient interface {
	Send(*wrapperspb.StringValue) error
	Recv() (*wrapperspb.StringValue, error)
	grpc.ClientStream
}

type lineServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewLineServiceClient(cc grpc.ClientConnInterface) LineServiceClient {
	return &lineServiceClient{cc}
}

func (c *lineServiceClient) Session(ctx context.Context, opts ...grpc.CallOption) (SessionClient, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], SessionMethodName, opts...)
	if err != nil {
		return nil, err
	}
	return &sessionClient{stream}, nil
}

type sessionClient struct {
	grpc.ClientStream
}

func (x *sessionClient) Send(m *wrapperspb.StringValue) error {
	return x.ClientStream.SendMsg(m)
}

func (x *sessionClient) Recv() (*wrapperspb.StringValue, error) {
	m := new(wrapperspb.StringValue)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
