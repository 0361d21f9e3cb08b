package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/kalaconnect/kalaconnect-backend/pkg/config"
	"github.com/kalaconnect/kalaconnect-backend/pkg/logger"
	"github.com/kalaconnect/kalaconnect-backend/pkg/metrics"
	"github.com/kalaconnect/kalaconnect-backend/pkg/pubsub"
	"github.com/kalaconnect/kalaconnect-backend/pkg/redis"
	"github.com/kalaconnect/kalaconnect-backend/pkg/storage/gcs"
	"github.com/kalaconnect/kalaconnect-backend/pkg/vertex"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "processor"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "processor",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}

	gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap cloud storage", err)
		os.Exit(1)
	}

	vertexClient, err := vertex.NewClient(cfg.GCP, cfg.Vertex, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap vertex client", err)
		os.Exit(1)
	}

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap pubsub", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	pipelineMetrics := metrics.NewPipelineMetrics(registry)

	consumer, err := buildConsumer(cfg, logg, redisClient, gcsClient, vertexClient, pubsubClient, pipelineMetrics)
	if err != nil {
		logg.Error(ctx, "failed to wire pipeline", err)
		os.Exit(1)
	}

	metricsServer := &http.Server{
		Addr:    ":" + cfg.Processor.MetricsPort,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(context.Background(), "metrics server stopped unexpectedly", err)
		}
	}()

	runCtx := logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"subscription": cfg.PubSub.MediaSubscription,
		"metrics_port": cfg.Processor.MetricsPort,
	})
	logg.Info(runCtx, "starting media processor")

	// Receive blocks until the signal context is cancelled.
	if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
		logg.Error(runCtx, "consumer stopped unexpectedly", err)
	}

	logg.Info(runCtx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	closeErr := multierr.Combine(
		metricsServer.Shutdown(shutdownCtx),
		pubsubClient.Close(),
		gcsClient.Close(),
		redisClient.Close(),
	)
	if closeErr != nil {
		logg.Error(runCtx, "errors during shutdown", closeErr)
		os.Exit(1)
	}
}
