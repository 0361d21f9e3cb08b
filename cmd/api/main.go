package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kalaconnect/kalaconnect-backend/api/controllers"
	"github.com/kalaconnect/kalaconnect-backend/api/routes"
	aisvc "github.com/kalaconnect/kalaconnect-backend/internal/ai"
	conversationsvc "github.com/kalaconnect/kalaconnect-backend/internal/conversations"
	mediasvc "github.com/kalaconnect/kalaconnect-backend/internal/media"
	productsvc "github.com/kalaconnect/kalaconnect-backend/internal/products"
	purchasesvc "github.com/kalaconnect/kalaconnect-backend/internal/purchases"
	"github.com/kalaconnect/kalaconnect-backend/pkg/cache"
	"github.com/kalaconnect/kalaconnect-backend/pkg/config"
	"github.com/kalaconnect/kalaconnect-backend/pkg/db"
	"github.com/kalaconnect/kalaconnect-backend/pkg/logger"
	"github.com/kalaconnect/kalaconnect-backend/pkg/redis"
	"github.com/kalaconnect/kalaconnect-backend/pkg/storage/gcs"
	"github.com/kalaconnect/kalaconnect-backend/pkg/vertex"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap cloud storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing cloud storage", err)
		}
	}()

	vertexClient, err := vertex.NewClient(cfg.GCP, cfg.Vertex, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap vertex client", err)
		os.Exit(1)
	}

	productRepo := productsvc.NewRepository(dbClient.DB())

	productService, err := productsvc.NewService(productRepo)
	if err != nil {
		logg.Error(ctx, "failed to create product service", err)
		os.Exit(1)
	}

	conversationService, err := conversationsvc.NewService(conversationsvc.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(ctx, "failed to create conversation service", err)
		os.Exit(1)
	}

	purchaseService, err := purchasesvc.NewService(purchasesvc.NewRepository(dbClient.DB()), productRepo)
	if err != nil {
		logg.Error(ctx, "failed to create purchase service", err)
		os.Exit(1)
	}

	mediaService, err := mediasvc.NewService(mediasvc.NewRepository(dbClient.DB()), productService, logg)
	if err != nil {
		logg.Error(ctx, "failed to create media service", err)
		os.Exit(1)
	}

	aiService, err := aisvc.NewService(
		vertexClient,
		gcsClient,
		cache.New[string](cfg.Vertex.CacheSize, cfg.Vertex.CacheTTL),
		logg,
	)
	if err != nil {
		logg.Error(ctx, "failed to create ai service", err)
		os.Exit(1)
	}

	pingers := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
		"storage":  gcsClient,
		"vertex":   vertexClient,
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	runCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(runCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, pingers, routes.Services{
			Products:      productService,
			Conversations: conversationService,
			Purchases:     purchaseService,
			Media:         mediaService,
			AI:            aiService,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(runCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(runCtx, "shutdown signal received, draining")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(runCtx, "error draining api server", err)
		}
	}
}
