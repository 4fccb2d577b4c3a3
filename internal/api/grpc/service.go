// internal/api/grpc/service.go
package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// The service is declared directly over well-known types, so there is no
// generated code. Its proto equivalent:
//
//	service Dispatcher {
//	  rpc Send(google.protobuf.Struct) returns (google.protobuf.Empty);
//	  rpc Status(google.protobuf.Empty) returns (google.protobuf.Struct);
//	}
const (
	ServiceName = "marketing.v1.Dispatcher"

	sendMethod   = "/" + ServiceName + "/Send"
	statusMethod = "/" + ServiceName + "/Status"
)

// Request fields of Send.
const (
	FieldSender    = "sender"
	FieldRecipient = "recipient"
	FieldKind      = "kind"
	FieldPayload   = "payload"
)

// DispatcherServer is the server API for the Dispatcher service.
type DispatcherServer interface {
	Send(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	Status(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterDispatcherServer registers srv on s.
func RegisterDispatcherServer(s grpc.ServiceRegistrar, srv DispatcherServer) {
	s.RegisterService(&dispatcherServiceDesc, srv)
}

func sendHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DispatcherServer).Send(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: sendMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DispatcherServer).Send(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func statusHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DispatcherServer).Status(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: statusMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DispatcherServer).Status(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

var dispatcherServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DispatcherServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Send", Handler: sendHandler},
		{MethodName: "Status", Handler: statusHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "marketing/v1/dispatcher.proto",
}
