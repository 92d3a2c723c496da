package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// UnaryServerInterceptor wraps every DispatchService unary RPC in a span
// named after the RPC itself, so CreateCourier/CreateOrder/GetCouriers/
// GetAssignments each show up as distinct spans in a trace rather than one
// undifferentiated "grpc request" span.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		ctx, span := StartSpan(ctx, info.FullMethod,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(rpcAttributes(info.FullMethod)...),
		)
		defer span.End()

		resp, err := handler(ctx, req)

		if err != nil {
			st, _ := status.FromError(err)
			span.SetStatus(codes.Error, st.Message())
			span.SetAttributes(semconv.RPCGRPCStatusCodeKey.Int64(int64(st.Code())))
			span.RecordError(err)
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return resp, err
	}
}

// StreamServerInterceptor does the same for WatchAssignments, the one
// server-streaming RPC on DispatchService.
func StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		ctx, span := StartSpan(ss.Context(), info.FullMethod,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(rpcAttributes(info.FullMethod)...),
		)
		defer span.End()

		wrappedStream := &tracedServerStream{
			ServerStream: ss,
			ctx:          ctx,
		}

		err := handler(srv, wrappedStream)

		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
		}

		return err
	}
}

// rpcAttributes splits DispatchService's "dispatch.v1.DispatchService/Method"
// full-method string (a leading "/" is trimmed if present) into the
// service/method pair semconv expects.
func rpcAttributes(fullMethod string) []attribute.KeyValue {
	service, method := fullMethod, ""
	if i := strings.LastIndex(fullMethod, "/"); i >= 0 {
		service, method = strings.Trim(fullMethod[:i], "/"), fullMethod[i+1:]
	}
	return []attribute.KeyValue{
		semconv.RPCSystemKey.String("grpc"),
		semconv.RPCService(service),
		semconv.RPCMethod(method),
	}
}

type tracedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *tracedServerStream) Context() context.Context {
	return s.ctx
}
