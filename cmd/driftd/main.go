// Command driftd is the DriftOS conversation drift analysis server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/driftos/driftd/internal/config"
	"github.com/driftos/driftd/internal/health"
	"github.com/driftos/driftd/internal/observe"
	"github.com/driftos/driftd/internal/server"
	"github.com/driftos/driftd/pkg/provider/analyzer/spacyd"
	"github.com/driftos/driftd/pkg/provider/encoder"
	ollamaembed "github.com/driftos/driftd/pkg/provider/encoder/ollama"
	oaembed "github.com/driftos/driftd/pkg/provider/encoder/openai"
)

const version = "0.2.0"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	listenAddr := flag.String("listen", "", "listen address override (e.g. :8100)")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if errors.Is(err, os.ErrNotExist) {
		// No config file is fine; the built-in defaults plus environment
		// overrides describe a complete local setup.
		cfg = config.Default()
		err = nil
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "driftd: %v\n", err)
		return 1
	}
	config.ApplyEnv(cfg)
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	slog.SetDefault(newLogger(cfg.Server.LogLevel))

	slog.Info("driftd starting",
		"version", version,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
		"encoder", cfg.Encoder.Name,
		"model", cfg.Encoder.Model,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Observability ─────────────────────────────────────────────────────────
	shutdownObserve, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "driftd",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownObserve(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Providers ─────────────────────────────────────────────────────────────
	enc, err := buildEncoder(cfg)
	if err != nil {
		slog.Error("failed to build encoder", "err", err)
		return 1
	}

	var nlpOpts []spacyd.Option
	if cfg.Analyzer.Timeout > 0 {
		nlpOpts = append(nlpOpts, spacyd.WithTimeout(cfg.Analyzer.Timeout))
	}
	if cfg.Analyzer.MaxInFlight > 0 {
		nlpOpts = append(nlpOpts, spacyd.WithMaxInFlight(cfg.Analyzer.MaxInFlight))
	}
	parser, err := spacyd.New(cfg.Analyzer.BaseURL, nlpOpts...)
	if err != nil {
		slog.Error("failed to build analyzer", "err", err)
		return 1
	}

	// Dimension discovery probes the backend once and caches the result.
	if dim := enc.Dimensions(); dim > 0 {
		slog.Info("model ready", "model", enc.ModelID(), "device", enc.Device(), "dimension", dim)
	} else {
		slog.Warn("model dimension unknown; /health will report 503 until the backend responds",
			"model", enc.ModelID())
	}

	// ── HTTP surface ──────────────────────────────────────────────────────────
	srv := server.New(server.Config{
		Encoder:         enc,
		Analyzer:        parser,
		Metrics:         metrics,
		StayThreshold:   cfg.Drift.StayThreshold,
		BranchThreshold: cfg.Drift.BranchThreshold,
	})

	mux := http.NewServeMux()
	srv.Register(mux)
	health.New(
		health.EncoderChecker(enc),
		health.AnalyzerChecker(parser),
	).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           observe.Middleware(metrics)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server ready — press Ctrl+C to shut down")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("serve error", "err", err)
			return 1
		}
	case <-ctx.Done():
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	slog.Info("shutdown signal received, stopping…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// buildEncoder constructs the configured embedding backend.
func buildEncoder(cfg *config.Config) (encoder.Provider, error) {
	switch cfg.Encoder.Name {
	case "ollama":
		var opts []ollamaembed.Option
		if cfg.Encoder.Timeout > 0 {
			opts = append(opts, ollamaembed.WithTimeout(cfg.Encoder.Timeout))
		}
		return ollamaembed.New(cfg.Encoder.BaseURL, cfg.Encoder.Model, opts...)
	case "openai":
		var opts []oaembed.Option
		if cfg.Encoder.BaseURL != "" {
			opts = append(opts, oaembed.WithBaseURL(cfg.Encoder.BaseURL))
		}
		if cfg.Encoder.Timeout > 0 {
			opts = append(opts, oaembed.WithTimeout(cfg.Encoder.Timeout))
		}
		return oaembed.New(cfg.Encoder.APIKey, cfg.Encoder.Model, opts...)
	default:
		return nil, fmt.Errorf("unknown encoder %q", cfg.Encoder.Name)
	}
}

// newLogger builds the process logger: JSON in production (NODE_ENV),
// terminal-friendly text otherwise.
func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if os.Getenv("NODE_ENV") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
