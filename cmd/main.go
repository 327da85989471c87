package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/speechwell/speechwell/internal/adapters/http/api"
	"github.com/speechwell/speechwell/internal/app"
	"github.com/speechwell/speechwell/internal/config"
	"github.com/speechwell/speechwell/internal/domain/analysis"
	"github.com/speechwell/speechwell/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout          = 10 * time.Second
	writeTimeout         = 10 * time.Second
	idleTimeout          = 60 * time.Second
	readHeaderTimeout    = 5 * time.Second
	shutdownTimeout      = 30 * time.Second
	statsRefreshInterval = 10 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input).
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if cfg.WebhookSecret == "" {
		log.Warn(ctx, "no webhook secret configured; signature verification is disabled")
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithStoreSize(cfg.StoreSize),
		app.WithThresholds(thresholdsFromConfig(cfg)),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	go refreshStats(ctx, svc)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	verifier := api.NewSignatureVerifier(cfg.WebhookSecret, time.Duration(cfg.SignatureToleranceMinutes)*time.Minute)
	apiServer := api.NewServer(svc, svc, verifier, cfg.MaxAssessmentLimit)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// thresholdsFromConfig maps the flat config keys onto the engine's
// threshold structure.
func thresholdsFromConfig(cfg *config.Config) analysis.Thresholds {
	return analysis.Thresholds{
		PauseGapSeconds:  cfg.PauseGapSeconds,
		SlowSpeechWPM:    cfg.SlowSpeechWPM,
		MinPauses:        cfg.MinPauses,
		PauseRatio:       cfg.PauseRatio,
		DensityFloor:     cfg.DensityFloor,
		MinWordCount:     cfg.MinWordCount,
		SessionPauseRate: cfg.SessionPauseRate,
	}
}

// refreshStats periodically publishes service gauges even when no traffic
// is flowing.
func refreshStats(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(statsRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = svc.GetStats()
		}
	}
}
