package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialgate/internal/actions"
	"socialgate/internal/api"
	"socialgate/internal/config"
	"socialgate/internal/gateway"
	"socialgate/internal/logger"
	"socialgate/internal/models"
	"socialgate/internal/observability"
	"socialgate/internal/ratelimit"
	"socialgate/internal/storage"
	"socialgate/internal/upstream"
	"socialgate/internal/version"
)

var (
	configFile    = flag.String("config", "", "Path to configuration file")
	exampleConfig = flag.String("write-example-config", "", "Write an example configuration file to this path and exit")
	showVersion   = flag.Bool("version", false, "Print version information and exit")
)

func main() {
	flag.Parse()

	ver := version.GetInfo()

	if *showVersion {
		fmt.Println(ver.String())
		return
	}

	if *exampleConfig != "" {
		if err := config.SaveExample(*exampleConfig); err != nil {
			slog.Error("Failed to write example configuration", "error", err)
			os.Exit(1)
		}
		slog.Info("Example configuration written", "path", *exampleConfig)
		return
	}

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logging
	log, closer, err := logger.Setup(cfg.Logging, ver)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}
	slog.SetDefault(log)

	if !cfg.Upstream.HasCredential() {
		slog.Warn("Upstream API key is not configured; every dispatch will fail until RAPIDAPI_KEY is set")
	}

	// Initialize observability (OpenTelemetry)
	otelProvider, err := observability.Setup(cfg.Metrics, cfg.Observability, ver)
	if err != nil {
		slog.Error("Failed to initialize observability", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := otelProvider.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown observability", "error", err)
		}
	}()
	instrumented := cfg.Metrics.Enabled || cfg.Observability.Tracing.Enabled

	// Initialize the call log
	storageInstance, err := storage.NewFactory().Create(cfg.Storage)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err, "type", cfg.Storage.Type)
		os.Exit(1)
	}
	defer storageInstance.Close()

	var activeStorage storage.Storage = storageInstance
	var pacer gateway.Pacer = ratelimit.NewPacer(cfg.Pacing.MinInterval, ratelimit.WithLogger(log))
	var client gateway.Upstream = upstream.NewClient(cfg.Upstream)

	// Wrap the call log, pacer and upstream client with instrumentation
	if instrumented {
		activeStorage, pacer, client, err = instrument(otelProvider, storageInstance, pacer, client)
		if err != nil {
			slog.Error("Failed to create instrumentation", "error", err)
			os.Exit(1)
		}
	}

	registry := actions.Default()
	service := gateway.NewService(registry, pacer, client, cfg.Upstream.HasCredential(),
		gateway.WithRecorder(activeStorage),
		gateway.WithLogger(log),
	)

	handlers := api.NewHandlers(service,
		api.WithStorage(activeStorage),
		api.WithVersion(ver),
	)

	// Setup routes with middleware
	routeOpts := []api.RouteOption{}
	if cfg.Observability.Tracing.Enabled {
		routeOpts = append(routeOpts, api.WithOTelMiddleware(cfg.Observability.ServiceName))
	}
	router := api.SetupRoutes(handlers, cfg, routeOpts...)

	// Start metrics server if enabled
	var metricsServer *observability.MetricsServer
	if cfg.Metrics.Enabled {
		metricsServer = observability.NewMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path, otelProvider)
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Starting server",
			"addr", server.Addr,
			"actions", registry.Len(),
			"min_interval", cfg.Pacing.MinInterval,
			"storage", cfg.Storage.Type)

		var err error
		if cfg.Server.TLSEnabled {
			slog.Info("Starting HTTPS server with TLS")
			err = server.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			slog.Info("Starting HTTP server")
			err = server.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")

	// Requests queued behind the pacer may need up to the write timeout.
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			slog.Error("Metrics server forced to shutdown", "error", err)
		}
	}

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server shutdown complete")
}

// instrument wraps the call log, pacer and upstream client with tracing and
// metrics recorded through provider.
func instrument(provider *observability.Provider, store storage.Storage, pacer gateway.Pacer, client gateway.Upstream) (storage.Storage, gateway.Pacer, gateway.Upstream, error) {
	instrumentedStorage, err := observability.NewInstrumentedStorage(store, provider)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("storage instrumentation: %w", err)
	}
	instrumentedPacer, err := observability.NewInstrumentedPacer(pacer, provider)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("pacer instrumentation: %w", err)
	}
	instrumentedClient, err := observability.NewInstrumentedUpstream(client, provider)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("upstream instrumentation: %w", err)
	}
	return instrumentedStorage, instrumentedPacer, instrumentedClient, nil
}

func shutdownTimeout(cfg *models.Config) time.Duration {
	const minimum = 30 * time.Second
	if cfg.Server.WriteTimeout > minimum {
		return cfg.Server.WriteTimeout
	}
	return minimum
}
