// Command dispatch-router runs the courier dispatch service: the REST and
// WebSocket listener on HTTP, the DispatchService on gRPC, and the single
// assignment engine goroutine both transports feed orders into.
package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"dispatch-router/internal/engine"
	"dispatch-router/internal/grpcapi"
	"dispatch-router/internal/httpapi"
	"dispatch-router/internal/registry"
	"dispatch-router/internal/wsapi"
	"dispatch-router/pkg/cache"
	"dispatch-router/pkg/config"
	"dispatch-router/pkg/logger"
	"dispatch-router/pkg/metrics"
	"dispatch-router/pkg/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("error")
		logger.Fatal("failed to load config", "error", err)
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	logger.Log.Info("starting dispatch-router",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	m := metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)

	reg := registry.New(cfg.Engine.OrderQueueSize, cfg.Engine.EventBufferSize, m)

	if cfg.Cache.Enabled {
		backend, err := cache.New(cache.FromConfig(&cfg.Cache))
		if err != nil {
			logger.Log.Error("failed to initialize assignment cache, continuing without it", "error", err)
		} else {
			reg.AssignmentCache = cache.NewAssignmentCache(backend, cfg.Cache.DefaultTTL)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.New(reg,
		engine.WithRequeueDelay(cfg.Engine.RequeueDelay),
		engine.WithLogger(logger.Log),
	)

	go func() {
		if err := eng.Run(ctx); err != nil {
			logger.Log.Error("assignment engine stopped", "error", err)
		}
	}()

	httpSrv := newHTTPServer(cfg.HTTP.Port, cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout, cfg.HTTP.StaticDir, reg)
	go func() {
		logger.Log.Info("HTTP listening", "port", cfg.HTTP.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("HTTP server failed", "error", err)
		}
	}()

	grpcSrv := server.New(cfg)
	grpcSrv.GetEngine().RegisterService(&grpcapi.ServiceDesc, grpcapi.NewDispatchService(reg))

	// Run blocks until SIGINT/SIGTERM, then drives the gRPC server's own
	// graceful shutdown (telemetry, rate limiter, audit logger included).
	if err := grpcSrv.Run(); err != nil {
		logger.Log.Error("gRPC server failed", "error", err)
	}

	cancel()
	reg.Queue.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("HTTP shutdown error", "error", err)
	}

	logger.Log.Info("dispatch-router stopped")
}

func newHTTPServer(port int, readTimeout, writeTimeout time.Duration, staticDir string, reg *registry.Registry) *http.Server {
	mux := http.NewServeMux()
	httpapi.New(reg).Mount(mux)
	mux.Handle("GET /ws", wsapi.New(reg))
	mux.Handle("GET /metrics", metrics.Handler())

	if staticDir == "" {
		staticDir = "static"
	}
	// Any GET not claimed by a more specific pattern above falls through to
	// the static directory, mirroring a single-page operator dashboard served
	// off the same listener as the API.
	mux.Handle("GET /", http.FileServer(http.Dir(staticDir)))

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
}
