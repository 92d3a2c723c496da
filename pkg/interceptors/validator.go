package interceptors

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Validator is implemented by the internal/grpcapi request types that carry
// ingress-boundary checks (CreateCourierRequest, CreateOrderRequest) — see
// internal/grpcapi/messages.go. GetCouriers/GetAssignments/WatchAssignments
// take no arguments and never implement it.
type Validator interface {
	Validate() error
}

// ValidationInterceptor rejects a CreateCourier/CreateOrder call before it
// reaches DispatchService whenever the request fails its own Validate, so a
// malformed courier or order never touches the registry or the assignment
// queue. Requests with no Validate method pass through unchanged.
func ValidationInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if v, ok := req.(Validator); ok {
			if err := v.Validate(); err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "validation error: %v", err)
			}
		}

		return handler(ctx, req)
	}
}
