package grpcapi

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully-qualified gRPC service name dispatch-router
// registers under. There is no .proto package to derive it from (see
// codec.go), so it is spelled out the way a generated _grpc.pb.go would.
const ServiceName = "dispatch.v1.DispatchService"

func _DispatchService_CreateCourier_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateCourierRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*DispatchService).CreateCourier(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/CreateCourier"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*DispatchService).CreateCourier(ctx, req.(*CreateCourierRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _DispatchService_GetCouriers_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*DispatchService).GetCouriers(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/GetCouriers"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*DispatchService).GetCouriers(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _DispatchService_CreateOrder_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*DispatchService).CreateOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/CreateOrder"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*DispatchService).CreateOrder(ctx, req.(*CreateOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _DispatchService_GetAssignments_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*DispatchService).GetAssignments(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/GetAssignments"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*DispatchService).GetAssignments(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// _DispatchService_WatchAssignments_Handler adapts the server-streaming RPC
// to grpc.ServerStream; grpc.ServerStream already satisfies the
// assignmentStream interface WatchAssignments is written against.
func _DispatchService_WatchAssignments_Handler(srv any, stream grpc.ServerStream) error {
	in := new(Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(*DispatchService).WatchAssignments(in, stream)
}

// ServiceDesc is the hand-written equivalent of a protoc-generated
// _DispatchService_serviceDesc. Register it with grpc.Server.RegisterService
// alongside an *DispatchService implementation.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateCourier", Handler: _DispatchService_CreateCourier_Handler},
		{MethodName: "GetCouriers", Handler: _DispatchService_GetCouriers_Handler},
		{MethodName: "CreateOrder", Handler: _DispatchService_CreateOrder_Handler},
		{MethodName: "GetAssignments", Handler: _DispatchService_GetAssignments_Handler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchAssignments",
			Handler:       _DispatchService_WatchAssignments_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "dispatch-router/internal/grpcapi",
}
