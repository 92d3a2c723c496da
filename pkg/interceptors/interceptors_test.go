package interceptors

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"dispatch-router/pkg/logger"
)

func init() {
	logger.Init("error")
}

// Mock handler for testing
func mockHandler(_ context.Context, _ any) (any, error) {
	return "response", nil
}

func mockErrorHandler(_ context.Context, _ any) (any, error) {
	return nil, status.Error(codes.Internal, "internal error")
}

func mockPanicHandler(_ context.Context, _ any) (any, error) {
	panic("test panic")
}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor()

	t.Run("normal execution", func(t *testing.T) {
		resp, err := interceptor(
			context.Background(),
			"request",
			&grpc.UnaryServerInfo{FullMethod: "/test"},
			mockHandler,
		)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if resp != "response" {
			t.Errorf("unexpected response: %v", resp)
		}
	})

	t.Run("panic recovery", func(t *testing.T) {
		_, err := interceptor(
			context.Background(),
			"request",
			&grpc.UnaryServerInfo{FullMethod: "/test"},
			mockPanicHandler,
		)

		if err == nil {
			t.Error("expected error after panic")
		}

		st, ok := status.FromError(err)
		if !ok {
			t.Error("expected gRPC status error")
		}
		if st.Code() != codes.Internal {
			t.Errorf("expected Internal code, got %v", st.Code())
		}
	})
}

func TestLoggingInterceptor(t *testing.T) {
	interceptor := LoggingInterceptor()

	t.Run("successful request", func(t *testing.T) {
		resp, err := interceptor(
			context.Background(),
			"request",
			&grpc.UnaryServerInfo{FullMethod: "/test.Service/Method"},
			mockHandler,
		)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if resp != "response" {
			t.Errorf("unexpected response: %v", resp)
		}
	})

	t.Run("failed request", func(t *testing.T) {
		_, err := interceptor(
			context.Background(),
			"request",
			&grpc.UnaryServerInfo{FullMethod: "/test.Service/Method"},
			mockErrorHandler,
		)

		if err == nil {
			t.Error("expected error")
		}
	})
}

// Mock validator
type mockValidatable struct {
	shouldFail bool
}

func (m *mockValidatable) Validate() error {
	if m.shouldFail {
		return errors.New("validation failed")
	}
	return nil
}

func TestValidationInterceptor(t *testing.T) {
	interceptor := ValidationInterceptor()

	t.Run("valid request", func(t *testing.T) {
		req := &mockValidatable{shouldFail: false}
		_, err := interceptor(
			context.Background(),
			req,
			&grpc.UnaryServerInfo{FullMethod: "/test"},
			mockHandler,
		)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("invalid request", func(t *testing.T) {
		req := &mockValidatable{shouldFail: true}
		_, err := interceptor(
			context.Background(),
			req,
			&grpc.UnaryServerInfo{FullMethod: "/test"},
			mockHandler,
		)

		if err == nil {
			t.Error("expected error")
		}

		st, _ := status.FromError(err)
		if st.Code() != codes.InvalidArgument {
			t.Errorf("expected InvalidArgument, got %v", st.Code())
		}
	})

	t.Run("non-validatable request", func(t *testing.T) {
		_, err := interceptor(
			context.Background(),
			"string request",
			&grpc.UnaryServerInfo{FullMethod: "/test"},
			mockHandler,
		)

		if err != nil {
			t.Errorf("unexpected error for non-validatable: %v", err)
		}
	})
}

func TestUnaryServerInterceptorsChainRunsHandlerOnce(t *testing.T) {
	cfg := &ServerConfig{ServiceName: "dispatch-router"}
	chain := UnaryServerInterceptors(cfg)

	// Recovery must run first so a panic in any later interceptor, or in
	// the handler itself, is always turned into a gRPC error rather than
	// crashing the process. Validation runs last among the non-audit
	// interceptors, rejecting malformed requests right before the handler.
	// This test checks that the composed chain has at least those two
	// entries and calls the handler exactly once; it does not check order.
	if len(chain) < 2 {
		t.Fatalf("expected at least recovery + validation in the chain, got %d entries", len(chain))
	}

	var order []string
	handler := func(_ context.Context, _ any) (any, error) {
		order = append(order, "handler")
		return "response", nil
	}

	next := handler
	for i := len(chain) - 1; i >= 0; i-- {
		interceptor := chain[i]
		nextFn := next
		next = func(ctx context.Context, req any) (any, error) {
			return interceptor(ctx, req, &grpc.UnaryServerInfo{FullMethod: "/test"}, nextFn)
		}
	}

	req := &mockValidatable{shouldFail: false}
	if _, err := next(context.Background(), req); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if len(order) != 1 || order[0] != "handler" {
		t.Errorf("expected handler to run exactly once, got %v", order)
	}
}

func TestMethodToAction(t *testing.T) {
	tests := []struct {
		method   string
		expected string
	}{
		{"/dispatch.DispatchService/CreateCourier", "CREATE"},
		{"/dispatch.DispatchService/CreateOrder", "CREATE"},
		{"/dispatch.DispatchService/GetCouriers", "READ"},
		{"/dispatch.DispatchService/GetAssignments", "READ"},
		{"/dispatch.DispatchService/WatchAssignments", "READ"},
		{"/grpc.health.v1.Health/Check", "READ"},
	}

	for _, tt := range tests {
		action := methodToAction(tt.method)
		if string(action) != tt.expected {
			t.Errorf("methodToAction(%s) = %s, want %s", tt.method, action, tt.expected)
		}
	}
}
