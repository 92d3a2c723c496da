package ratelimit

import (
	"context"
	"errors"
	"time"
)

var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrLimiterClosed     = errors.New("limiter is closed")
)

// Limiter bounds the request rate for a key (typically a client IP or
// peer identity extracted by a KeyExtractor).
type Limiter interface {
	// Allow reports whether a single request for key is permitted.
	Allow(ctx context.Context, key string) (bool, error)

	// GetInfo returns the current limit state for key.
	GetInfo(ctx context.Context, key string) (*LimitInfo, error)

	// Close releases resources held by the limiter.
	Close() error
}

// LimitInfo describes a key's current limit state.
type LimitInfo struct {
	Limit      int           `json:"limit"`
	Remaining  int           `json:"remaining"`
	ResetAt    time.Time     `json:"reset_at"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
}

// Config configures a rate limiter.
type Config struct {
	// Requests is the number of requests allowed per Window.
	Requests int `koanf:"requests"`

	// Window is the time window over which Requests is counted.
	Window time.Duration `koanf:"window"`

	// Strategy selects the limiting algorithm: sliding_window or token_bucket.
	Strategy string `koanf:"strategy"`

	// Backend selects the storage backend: memory or redis.
	Backend string `koanf:"backend"`

	// BurstSize is the extra allowance on top of Requests for token_bucket.
	BurstSize int `koanf:"burst_size"`

	// CleanupInterval is how often an in-memory limiter sweeps stale buckets.
	CleanupInterval time.Duration `koanf:"cleanup_interval"`

	// Redis connection settings, used when Backend is "redis".
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
}

// DefaultConfig returns sensible default rate limiter settings.
func DefaultConfig() *Config {
	return &Config{
		Requests:        100,
		Window:          time.Minute,
		Strategy:        "sliding_window",
		Backend:         "memory",
		BurstSize:       10,
		CleanupInterval: 5 * time.Minute,
	}
}

// New constructs a Limiter for the backend named in cfg, falling back to
// the in-memory backend for an empty or unrecognized name.
func New(cfg *Config) (Limiter, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	switch cfg.Backend {
	case "redis":
		return NewRedisLimiter(cfg)
	case "memory", "":
		return NewMemoryLimiter(cfg), nil
	default:
		return NewMemoryLimiter(cfg), nil
	}
}

// KeyExtractor derives the rate-limit key for an incoming gRPC call from
// its method name and metadata.
type KeyExtractor func(ctx context.Context, method string, metadata map[string]string) string

// DefaultKeyExtractor keys on the caller's IP, falling back to the
// connection's authority when no forwarding header is present.
func DefaultKeyExtractor(_ context.Context, _ string, metadata map[string]string) string {
	if ip, ok := metadata["x-forwarded-for"]; ok && ip != "" {
		return ip
	}
	if ip, ok := metadata["x-real-ip"]; ok && ip != "" {
		return ip
	}
	if peer, ok := metadata[":authority"]; ok {
		return peer
	}
	return "unknown"
}
