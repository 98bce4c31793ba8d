package aggregator

import (
	"context"
	"fmt"
	"time"

	"github.com/vzahanych/weather-dashboard/internal/city"
	"github.com/vzahanych/weather-dashboard/internal/config"
	"github.com/vzahanych/weather-dashboard/internal/events"
	"github.com/vzahanych/weather-dashboard/internal/openweather"
	"github.com/vzahanych/weather-dashboard/internal/weather"
	"github.com/vzahanych/weather-dashboard/pkg/logger"
	"github.com/vzahanych/weather-dashboard/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// publishTimeout bounds a tracked-city event so an unreachable broker cannot
// stall add/remove requests or startup seeding.
const publishTimeout = 3 * time.Second

type WeatherProvider interface {
	Current(ctx context.Context, q string) (*openweather.CurrentPayload, error)
	Forecast(ctx context.Context, q string, cnt int) (*openweather.ForecastPayload, error)
}

type CityResolver interface {
	Resolve(ctx context.Context, query string) (city.City, error)
}

type Dependencies struct {
	Provider   WeatherProvider
	Resolver   CityResolver
	Store      *city.Store
	Normalizer *weather.Normalizer
	Publisher  events.Publisher
}

// Aggregator composes resolution, the tracked-city store, upstream weather
// calls and normalization into the operations the routing layer exposes.
type Aggregator struct {
	provider       WeatherProvider
	resolver       CityResolver
	store          *city.Store
	normalizer     *weather.Normalizer
	publisher      events.Publisher
	forecastCount  int
	workers        int
	publishTimeout time.Duration
	logger         *zap.Logger
	tele           *telemetry.Telemetry
}

// NewAggregator builds the service and tracks the configured seed cities.
// A seed that fails to resolve aborts construction only with strict_seed.
func NewAggregator(ctx context.Context, cfg *config.WeatherConfig, deps Dependencies, logger *zap.Logger, tele *telemetry.Telemetry) (*Aggregator, error) {
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	store := deps.Store
	if store == nil {
		store = city.NewStore()
	}

	workers := cfg.SummaryWorkers
	if workers <= 0 {
		workers = 1
	}
	forecastCount := cfg.ForecastCount
	if forecastCount <= 0 {
		forecastCount = 24
	}

	agg := &Aggregator{
		provider:       deps.Provider,
		resolver:       deps.Resolver,
		store:          store,
		normalizer:     deps.Normalizer,
		publisher:      publisher,
		forecastCount:  forecastCount,
		workers:        workers,
		publishTimeout: publishTimeout,
		logger:         logger,
		tele:           tele,
	}

	for _, seed := range cfg.SeedCities {
		if _, err := agg.AddCity(ctx, seed); err != nil {
			if cfg.StrictSeed {
				return nil, fmt.Errorf("failed to track seed city %q: %w", seed, err)
			}
			logger.Warn("Skipping seed city", zap.String("city", seed), zap.Error(err))
		}
	}

	logger.Info("Aggregator initialized",
		zap.Int("tracked_cities", store.Len()),
		zap.Int("summary_workers", workers))

	return agg, nil
}

// AddCity resolves query and tracks the result unless already tracked.
func (a *Aggregator) AddCity(ctx context.Context, query string) ([]city.City, error) {
	tracer := a.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "aggregator.AddCity")
	defer span.End()

	reqLogger := logger.ForContext(ctx, a.logger)

	resolved, err := a.resolver.Resolve(ctx, query)
	if err != nil {
		span.SetAttributes(attribute.Bool("success", false))
		a.tele.RecordError(err, ctx, map[string]interface{}{"query": query})
		reqLogger.Info("City could not be added", zap.String("query", query), zap.Error(err))
		return nil, err
	}

	added := a.store.Add(resolved)
	span.SetAttributes(attribute.Bool("success", true), attribute.Bool("added", added))

	if added {
		reqLogger.Info("City tracked",
			zap.String("city", resolved.Name),
			zap.String("country_code", resolved.CountryCode))
		a.publish(ctx, events.TypeCityAdded, resolved)
	}

	return a.store.List(), nil
}

// RemoveCity untracks name/countryCode. Removing an untracked city is a no-op.
func (a *Aggregator) RemoveCity(ctx context.Context, name, countryCode string) []city.City {
	removed := a.store.Remove(name, countryCode)

	for _, c := range removed {
		logger.ForContext(ctx, a.logger).Info("City untracked",
			zap.String("city", c.Name),
			zap.String("country_code", c.CountryCode))
		a.publish(ctx, events.TypeCityRemoved, c)
	}

	return a.store.List()
}

func (a *Aggregator) ListCities() []city.City {
	return a.store.List()
}

// GetCoordinates resolves query without tracking it.
func (a *Aggregator) GetCoordinates(ctx context.Context, query string) (city.City, error) {
	return a.resolver.Resolve(ctx, query)
}

// GetCityInfo fetches and normalizes current weather for "name" or "name,CC".
func (a *Aggregator) GetCityInfo(ctx context.Context, query string) (weather.CityInfo, error) {
	name, countryCode, _ := city.ParseQuery(query)
	return a.cityInfo(ctx, name, countryCode)
}

func (a *Aggregator) cityInfo(ctx context.Context, name, countryCode string) (weather.CityInfo, error) {
	tracer := a.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "aggregator.GetCityInfo")
	defer span.End()

	span.SetAttributes(
		attribute.String("city", name),
		attribute.String("country_code", countryCode),
	)

	q := name
	if countryCode != "" {
		q = name + "," + countryCode
	}

	raw, err := a.provider.Current(ctx, q)
	if err != nil {
		span.SetAttributes(attribute.Bool("success", false))
		a.tele.RecordError(err, ctx, map[string]interface{}{"query": q})
		return weather.CityInfo{}, err
	}

	info, err := a.normalizer.Current(raw, name)
	if err != nil {
		span.SetAttributes(attribute.Bool("success", false))
		return weather.CityInfo{}, err
	}

	span.SetAttributes(attribute.Bool("success", true))
	return info, nil
}

// GetTimeseries returns the forecast series for query. Errors propagate.
func (a *Aggregator) GetTimeseries(ctx context.Context, query string) ([]weather.MomentWeather, error) {
	tracer := a.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "aggregator.GetTimeseries")
	defer span.End()

	span.SetAttributes(
		attribute.String("query", query),
		attribute.Int("count", a.forecastCount),
	)

	raw, err := a.provider.Forecast(ctx, query, a.forecastCount)
	if err != nil {
		span.SetAttributes(attribute.Bool("success", false))
		a.tele.RecordError(err, ctx, map[string]interface{}{"query": query})
		return nil, err
	}

	series := a.normalizer.Forecast(raw)
	span.SetAttributes(attribute.Bool("success", true), attribute.Int("samples", len(series)))
	return series, nil
}

func (a *Aggregator) publish(ctx context.Context, eventType string, c city.City) {
	ctx, cancel := context.WithTimeout(ctx, a.publishTimeout)
	defer cancel()

	if err := a.publisher.Publish(ctx, events.NewEvent(eventType, c)); err != nil {
		logger.ForContext(ctx, a.logger).Warn("Failed to publish tracked-city event",
			zap.String("type", eventType),
			zap.String("city", c.Name),
			zap.Error(err))
	}
}

func (a *Aggregator) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"tracked_cities":  a.store.Len(),
		"summary_workers": a.workers,
		"forecast_count":  a.forecastCount,
	}
}
