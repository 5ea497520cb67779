package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/okian/fairshare/internal/app"
	"github.com/okian/fairshare/internal/config"
	"github.com/okian/fairshare/internal/simulate"
	"github.com/okian/fairshare/pkg/logger"
	"github.com/okian/fairshare/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Runtime timing constants.
const (
	readHeaderTimeout = 5 * time.Second
	drainPollInterval = 50 * time.Millisecond
	drainTimeout      = 2 * time.Minute
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Optional Prometheus listener
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr)
	}

	// Create and start the service with configuration options
	svc := app.New(
		app.WithLogger(loggerInstance),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithMaxContributors(cfg.MaxContributors),
		app.WithNormalize(cfg.Normalize),
		app.WithStrictValues(cfg.StrictValues),
		app.WithRecomputeInterval(time.Duration(cfg.RecomputeIntervalMS)*time.Millisecond),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// Feed a synthetic observation stream through the pipeline.
	gen := simulate.New(
		simulate.WithContributorCount(cfg.SimContributors),
		simulate.WithSeed(cfg.SimSeed),
	)
	observations := gen.Observations(ctx, cfg.SimObservations)

	submitted := 0
	for _, o := range observations {
		if ctx.Err() != nil {
			break
		}
		if svc.Submit(ctx, o) {
			submitted++
		}
	}
	loggerInstance.Info(ctx, "submitted observations",
		logger.Int("submitted", submitted),
		logger.Int("total", len(observations)),
	)

	// Wait for the workers to drain the queue before computing.
	if err := drainQueue(ctx, svc); err != nil {
		loggerInstance.Warn(ctx, "queue did not drain", logger.Error(err))
	}

	if err := svc.Recompute(ctx); err != nil {
		loggerInstance.Error(ctx, "recompute failed", logger.Error(err))
		return
	}

	entries, err := svc.TopN(ctx, cfg.TopN)
	if err != nil {
		loggerInstance.Error(ctx, "top-n query failed", logger.Error(err))
		return
	}
	for _, e := range entries {
		loggerInstance.Info(ctx, "allocation",
			logger.Int("rank", e.Rank),
			logger.String("contributor", e.Contributor),
			logger.Float64("value", e.Value),
			logger.Float64("fraction", e.Fraction),
		)
	}
}

// drainQueue polls until the observation backlog is empty.
func drainQueue(ctx context.Context, svc *app.Service) error {
	deadline := time.Now().Add(drainTimeout)
	for svc.QueueLen(ctx) > 0 {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if time.Now().After(deadline) {
			return context.DeadlineExceeded
		}
		time.Sleep(drainPollInterval)
	}
	// One more interval so in-flight absorbs land in the model.
	time.Sleep(drainPollInterval)
	return nil
}

// serveMetrics exposes the custom registry on /metrics.
func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	logger.Get().Info(ctx, "serving metrics", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Get().Error(ctx, "metrics server failed", logger.Error(err))
	}
}
