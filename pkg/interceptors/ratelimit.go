package interceptors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"dispatch-router/pkg/logger"
	"dispatch-router/pkg/ratelimit"
)

// rateLimited reports whether an RPC creates load on the assignment engine
// and therefore needs a limiter: CreateCourier and CreateOrder, the two RPCs
// that write to the registry (and, for orders, push onto the assignment
// queue). GetCouriers/GetAssignments/WatchAssignments only read snapshots
// and are left unthrottled.
func rateLimited(fullMethod string) bool {
	return strings.HasSuffix(fullMethod, "CreateCourier") || strings.HasSuffix(fullMethod, "CreateOrder")
}

// RateLimitInterceptor throttles CreateCourier/CreateOrder calls per the
// configured Limiter, keyed by keyExtractor (defaulting to client IP).
func RateLimitInterceptor(limiter ratelimit.Limiter, keyExtractor ratelimit.KeyExtractor) grpc.UnaryServerInterceptor {
	if keyExtractor == nil {
		keyExtractor = ratelimit.DefaultKeyExtractor
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !rateLimited(info.FullMethod) {
			return handler(ctx, req)
		}

		md, _ := metadata.FromIncomingContext(ctx)
		metadataMap := make(map[string]string)
		for k, v := range md {
			if len(v) > 0 {
				metadataMap[k] = v[0]
			}
		}

		key := keyExtractor(ctx, info.FullMethod, metadataMap)

		allowed, err := limiter.Allow(ctx, key)
		if err != nil {
			logger.Log.Warn("rate limit check failed, allowing request", "error", err, "key", key)
			return handler(ctx, req)
		}

		if !allowed {
			limitInfo, infoErr := limiter.GetInfo(ctx, key)
			if infoErr != nil {
				logger.Log.Warn("failed to get rate limit info", "error", infoErr, "key", key)
				limitInfo = &ratelimit.LimitInfo{
					Limit:   0,
					ResetAt: time.Now().Add(time.Minute),
				}
			}

			logger.Log.Warn("rate limit exceeded",
				"method", info.FullMethod,
				"key", key,
				"limit", limitInfo.Limit,
			)

			header := metadata.Pairs(
				"x-ratelimit-limit", fmt.Sprintf("%d", limitInfo.Limit),
				"x-ratelimit-remaining", "0",
				"x-ratelimit-reset", limitInfo.ResetAt.Format(time.RFC3339),
			)
			if err := grpc.SetHeader(ctx, header); err != nil {
				logger.Log.Debug("failed to set rate limit headers", "error", err)
			}

			return nil, status.Errorf(codes.ResourceExhausted,
				"rate limit exceeded: %d requests per %v", limitInfo.Limit, time.Until(limitInfo.ResetAt))
		}

		return handler(ctx, req)
	}
}

// StreamRateLimitInterceptor applies the same policy to streaming RPCs.
// WatchAssignments is the only stream on DispatchService and is read-only,
// so in practice this never throttles anything today — it exists so a
// future mutating stream is covered without touching the chain wiring.
func StreamRateLimitInterceptor(limiter ratelimit.Limiter, keyExtractor ratelimit.KeyExtractor) grpc.StreamServerInterceptor {
	if keyExtractor == nil {
		keyExtractor = ratelimit.DefaultKeyExtractor
	}

	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if !rateLimited(info.FullMethod) {
			return handler(srv, ss)
		}

		ctx := ss.Context()
		md, _ := metadata.FromIncomingContext(ctx)
		metadataMap := make(map[string]string)
		for k, v := range md {
			if len(v) > 0 {
				metadataMap[k] = v[0]
			}
		}

		key := keyExtractor(ctx, info.FullMethod, metadataMap)

		allowed, err := limiter.Allow(ctx, key)
		if err != nil {
			return handler(srv, ss)
		}

		if !allowed {
			return status.Error(codes.ResourceExhausted, "rate limit exceeded")
		}

		return handler(srv, ss)
	}
}
