package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-dashboard/internal/aggregator"
	"github.com/vzahanych/weather-dashboard/internal/cache"
	"github.com/vzahanych/weather-dashboard/internal/city"
	"github.com/vzahanych/weather-dashboard/internal/config"
	"github.com/vzahanych/weather-dashboard/internal/events"
	"github.com/vzahanych/weather-dashboard/internal/openweather"
	"github.com/vzahanych/weather-dashboard/internal/server"
	"github.com/vzahanych/weather-dashboard/internal/server/handlers"
	"github.com/vzahanych/weather-dashboard/internal/server/middlewares"
	"github.com/vzahanych/weather-dashboard/internal/weather"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func serverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the weather dashboard HTTP server",
		Long:  `Resolve and track the seed cities, then serve the dashboard API until interrupted.`,
		RunE:  runServer,
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	ctx := cmd.Context()
	defer log.Sync()

	log.Info("Starting weather dashboard",
		zap.String("config_path", configPath),
		zap.String("environment", cfg.Environment),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("events_enabled", cfg.Events.Enabled),
		zap.Bool("telemetry_enabled", cfg.Telemetry.Enabled),
		zap.Int("server_port", cfg.Server.Port))

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	storage, closeStorage, err := newCacheStorage(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer closeStorage()

	publisher := events.New(cfg.Events, log.Logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("Failed to close event publisher", zap.Error(err))
		}
	}()

	metricsMiddleware := middlewares.NewMetricsMiddleware(log.Logger, tele)
	metrics := handlers.NewMetricsHandler(log.Logger, metricsMiddleware)

	transport := openweather.NewTransport(cfg.Weather, log.Logger, tele)
	transport.SetMetricsRecorder(metrics)

	responses := cache.New(transport, storage, time.Duration(cfg.Cache.TTL)*time.Second, log.Logger, tele)
	responses.SetMetricsRecorder(metrics)

	client := openweather.NewClient(cfg.Weather, responses)

	agg, err := aggregator.NewAggregator(ctx, &cfg.Weather, aggregator.Dependencies{
		Provider:   client,
		Resolver:   city.NewResolver(client, cfg.Weather.GeocodeLimit, log.Logger, tele),
		Store:      city.NewStore(),
		Normalizer: weather.NewNormalizer(cfg.Weather.IconURL),
		Publisher:  publisher,
	}, log.Logger, tele)
	if err != nil {
		return err
	}

	srv := server.NewServer(cfg.Server, server.Dependencies{
		Service:           agg,
		Metrics:           metrics,
		MetricsMiddleware: metricsMiddleware,
	}, log.Logger, tele)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			log.Error("Server error", zap.Error(err))
		}
		return err
	case <-ctx.Done():
		log.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var shutdownErr error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Error during server shutdown", zap.Error(err))
			shutdownErr = err
		}
		if err := tele.Shutdown(shutdownCtx); err != nil {
			log.Warn("Error during telemetry shutdown", zap.Error(err))
			shutdownErr = errors.Join(shutdownErr, err)
		}

		log.Info("Server shutdown complete")
		return shutdownErr
	}
}

// newCacheStorage picks the response cache backend. Entries are retained for
// the stale window so they can still be served when upstream is down.
func newCacheStorage(ctx context.Context, cfg config.CacheConfig) (cache.Storage, func(), error) {
	retention := time.Duration(cfg.StaleTTL) * time.Second

	switch cfg.Backend {
	case "redis":
		storage, err := cache.NewRedisStorage(ctx, cfg.RedisURL, cfg.KeyPrefix, retention)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis cache: %w", err)
		}
		log.Info("Using redis response cache", zap.String("key_prefix", cfg.KeyPrefix))
		return storage, func() {
			if err := storage.Close(); err != nil {
				log.Warn("Failed to close redis cache", zap.Error(err))
			}
		}, nil
	default:
		log.Info("Using in-memory response cache")
		return cache.NewMemoryStorage(retention), func() {}, nil
	}
}
