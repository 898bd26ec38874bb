package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nutrikatori/backend/config"
	httpDelivery "github.com/nutrikatori/backend/internal/delivery/http"
	"github.com/nutrikatori/backend/internal/domain"
	"github.com/nutrikatori/backend/internal/infrastructure/cache"
	"github.com/nutrikatori/backend/internal/infrastructure/foodtable"
	"github.com/nutrikatori/backend/internal/infrastructure/logger"
	"github.com/nutrikatori/backend/internal/infrastructure/metrics"
	"github.com/nutrikatori/backend/internal/infrastructure/reasoning"
	"github.com/nutrikatori/backend/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Development: cfg.Server.Environment == "development",
	})
	defer func() { _ = zl.Sync() }()

	zl.Info("starting NutriKatori backend",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("cache", cfg.Cache.Type),
	)

	// The table is loaded once; a missing table is fatal.
	table, err := foodtable.Load(cfg.Table.Path)
	if err != nil {
		zl.Fatal("failed to load food table", zap.String("path", cfg.Table.Path), zap.Error(err))
	}
	zl.Info("food table loaded", zap.String("path", cfg.Table.Path), zap.Int("foods", table.Len()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aliasCache, closeCache := newCache(ctx, cfg, zl)
	defer closeCache()

	m := metrics.New()

	// Reasoning is optional; without a key only the ingredient endpoints work.
	var (
		parser      domain.DishParser
		aliasSource domain.AliasSource
	)
	if cfg.Reasoning.APIKey != "" {
		client := reasoning.NewClient(reasoning.Config{
			APIKey:            cfg.Reasoning.APIKey,
			BaseURL:           cfg.Reasoning.BaseURL,
			Model:             cfg.Reasoning.Model,
			Timeout:           cfg.Reasoning.Timeout,
			RequestsPerSecond: cfg.Reasoning.RequestsPerSecond,
			Burst:             cfg.Reasoning.Burst,
			RetryCount:        cfg.Reasoning.RetryCount,
			Logger:            zl.Named("reasoning"),
		})
		parser, aliasSource = client, client
		zl.Info("reasoning service configured",
			zap.String("base_url", cfg.Reasoning.BaseURL),
			zap.String("model", cfg.Reasoning.Model),
		)
	} else {
		zl.Warn("reasoning API key not set; dish estimation disabled and aliases limited to the name itself")
	}

	// Initialize usecase layer
	expander := usecase.NewAliasExpander(aliasSource, aliasCache, usecase.AliasExpanderConfig{
		CacheTTL:       cfg.Cache.TTL,
		MaxConcurrency: cfg.Alias.MaxConcurrency,
		Logger:         zl.Named("aliases"),
		Recorder:       m,
	})
	matcher := usecase.NewMatchingService(usecase.MatchConfig{
		SimilarityThreshold: cfg.Matching.SimilarityThreshold,
		Scorer:              usecase.NewScorer(cfg.Matching.Scorer),
		Logger:              zl.Named("matcher"),
	})
	converter := usecase.NewMassConverter(usecase.MassConfig{
		Densities:        cfg.Mass.Densities,
		DefaultBaseGrams: cfg.Mass.DefaultBaseGrams,
		GenericUnitGrams: cfg.Mass.GenericUnitGrams,
	})
	nutritionService := usecase.NewNutritionService(parser, expander, matcher, converter,
		usecase.NutritionServiceConfig{
			ServingGrams: cfg.Serving.TargetGrams,
			Logger:       zl.Named("nutrition"),
			Recorder:     m,
		},
	)

	zl.Info("matching configured",
		zap.String("scorer", cfg.Matching.Scorer),
		zap.Float64("threshold", cfg.Matching.SimilarityThreshold),
		zap.Float64("serving_grams", cfg.Serving.TargetGrams),
	)

	handler := httpDelivery.NewHandler(nutritionService, table, zl.Named("http"))
	router := httpDelivery.SetupRouter(cfg, handler, zl.Named("http"), m)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	zl.Info("server exited")
}

// newCache returns the alias cache selected by configuration. An unreachable
// Redis falls back to the in-memory cache.
func newCache(ctx context.Context, cfg *config.Config, zl *zap.Logger) (domain.CacheRepository, func()) {
	if cfg.Cache.Type == "redis" {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		redisCache, err := cache.NewRedisCache(pingCtx, cfg.Cache.RedisURL)
		if err == nil {
			zl.Info("using redis cache", zap.Duration("ttl", cfg.Cache.TTL))
			return redisCache, func() {
				if err := redisCache.Close(); err != nil {
					zl.Warn("failed to close redis cache", zap.Error(err))
				}
			}
		}
		zl.Warn("redis unavailable, falling back to memory cache", zap.Error(err))
	}

	zl.Info("using memory cache", zap.Duration("ttl", cfg.Cache.TTL))
	return cache.NewMemoryCache(), func() {}
}
