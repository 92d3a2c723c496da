package interceptors

import (
	"google.golang.org/grpc"

	"dispatch-router/pkg/audit"
	"dispatch-router/pkg/ratelimit"
	"dispatch-router/pkg/telemetry"
)

// ServerConfig конфигурация серверных интерсепторов
type ServerConfig struct {
	ServiceName   string
	EnableTracing bool
	EnableAudit   bool
	RateLimiter   ratelimit.Limiter
	AuditLogger   audit.Logger
	AuditExclude  map[string]bool
	KeyExtractor  ratelimit.KeyExtractor
}

// UnaryServerInterceptors returns the ordered unary interceptor stack for
// the dispatch gRPC server. The caller installs it with grpc.
// ChainUnaryInterceptor, which composes interceptors in the order given —
// recovery must run outermost so a panic anywhere downstream (including in
// DispatchService itself) becomes a gRPC Internal error instead of taking
// down the process.
func UnaryServerInterceptors(cfg *ServerConfig) []grpc.UnaryServerInterceptor {
	chain := []grpc.UnaryServerInterceptor{
		RecoveryInterceptor(),
	}

	if cfg.RateLimiter != nil {
		chain = append(chain, RateLimitInterceptor(cfg.RateLimiter, cfg.KeyExtractor))
	}

	if cfg.EnableTracing {
		chain = append(chain, telemetry.UnaryServerInterceptor())
	}

	chain = append(chain, MetricsInterceptor(), LoggingInterceptor(), ValidationInterceptor())

	// Audit runs last so it can observe the handler's outcome.
	if cfg.EnableAudit && cfg.AuditLogger != nil {
		chain = append(chain, AuditInterceptor(&AuditConfig{
			ServiceName:    cfg.ServiceName,
			ExcludeMethods: cfg.AuditExclude,
			Logger:         cfg.AuditLogger,
		}))
	}

	return chain
}

// StreamServerInterceptors returns the ordered stream interceptor stack
// for WatchAssignments, composed the same way as UnaryServerInterceptors.
func StreamServerInterceptors(cfg *ServerConfig) []grpc.StreamServerInterceptor {
	chain := []grpc.StreamServerInterceptor{
		StreamRecoveryInterceptor(),
	}

	if cfg.RateLimiter != nil {
		chain = append(chain, StreamRateLimitInterceptor(cfg.RateLimiter, cfg.KeyExtractor))
	}

	if cfg.EnableTracing {
		chain = append(chain, telemetry.StreamServerInterceptor())
	}

	chain = append(chain, StreamMetricsInterceptor(), StreamLoggingInterceptor())

	if cfg.EnableAudit && cfg.AuditLogger != nil {
		chain = append(chain, StreamAuditInterceptor(&AuditConfig{
			ServiceName:    cfg.ServiceName,
			ExcludeMethods: cfg.AuditExclude,
			Logger:         cfg.AuditLogger,
		}))
	}

	return chain
}
