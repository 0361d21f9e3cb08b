package main

import (
	"fmt"

	"github.com/kalaconnect/kalaconnect-backend/internal/processor"
	"github.com/kalaconnect/kalaconnect-backend/pkg/config"
	"github.com/kalaconnect/kalaconnect-backend/pkg/logger"
	"github.com/kalaconnect/kalaconnect-backend/pkg/metrics"
	"github.com/kalaconnect/kalaconnect-backend/pkg/pubsub"
	"github.com/kalaconnect/kalaconnect-backend/pkg/redis"
	"github.com/kalaconnect/kalaconnect-backend/pkg/storage/gcs"
	"github.com/kalaconnect/kalaconnect-backend/pkg/vertex"
)

// buildConsumer assembles the pipeline from the shared clients: status store
// on redis, fetch and thumbnails on GCS, analysis on Vertex, results posted
// back to the API callback.
func buildConsumer(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	gcsClient *gcs.Client,
	vertexClient *vertex.Client,
	pubsubClient *pubsub.Client,
	pipelineMetrics *metrics.PipelineMetrics,
) (*processor.Consumer, error) {
	store, err := processor.NewRedisStatusStore(redisClient, cfg.Processor.StatusRetention)
	if err != nil {
		return nil, fmt.Errorf("building status store: %w", err)
	}

	fetcher, err := processor.NewGCSFetcher(gcsClient)
	if err != nil {
		return nil, fmt.Errorf("building fetcher: %w", err)
	}

	analyzer, err := processor.NewVertexAnalyzer(vertexClient, "")
	if err != nil {
		return nil, fmt.Errorf("building analyzer: %w", err)
	}

	thumbnailer, err := processor.NewGCSThumbnailer(gcsClient, logg)
	if err != nil {
		return nil, fmt.Errorf("building thumbnailer: %w", err)
	}

	dispatcher, err := processor.NewHTTPDispatcher(cfg.Processor.CallbackURL, cfg.Processor.CallbackTimeout)
	if err != nil {
		return nil, fmt.Errorf("building dispatcher: %w", err)
	}

	orchestrator, err := processor.NewOrchestrator(store, fetcher, analyzer, thumbnailer, dispatcher, logg, pipelineMetrics)
	if err != nil {
		return nil, fmt.Errorf("building orchestrator: %w", err)
	}

	consumer, err := processor.NewConsumer(orchestrator, pubsubClient.MediaSubscription(), logg)
	if err != nil {
		return nil, fmt.Errorf("building consumer: %w", err)
	}
	return consumer, nil
}
