package aggregator

import (
	"context"
	"fmt"
	"sync"

	"github.com/vzahanych/weather-dashboard/internal/apperr"
	"github.com/vzahanych/weather-dashboard/internal/city"
	"github.com/vzahanych/weather-dashboard/internal/weather"
	"github.com/vzahanych/weather-dashboard/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Result is the per-city outcome of a summary lookup.
type Result struct {
	City city.City
	Info weather.CityInfo
	Err  error
}

func (r Result) OK() bool {
	return r.Err == nil
}

type summaryTask struct {
	index int
	city  city.City
}

type SummaryWorker struct {
	aggregator *Aggregator
	workerID   int
	logger     *zap.Logger
}

func NewSummaryWorker(aggregator *Aggregator, workerID int) *SummaryWorker {
	return &SummaryWorker{
		aggregator: aggregator,
		workerID:   workerID,
		logger:     aggregator.logger.With(zap.Int("worker_id", workerID)),
	}
}

// Run drains tasks into results[task.index] until the queue is closed.
// Indices are unique per task, so no two workers write the same slot.
func (w *SummaryWorker) Run(ctx context.Context, tasks <-chan summaryTask, results []Result, wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range tasks {
		results[task.index] = w.lookup(ctx, task.city)
	}
}

// lookup never panics: a panicking city becomes an unexpected-error Result so
// the remaining cities are still summarized.
func (w *SummaryWorker) lookup(ctx context.Context, c city.City) (result Result) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.ForContext(ctx, w.logger).Error("Summary lookup panicked",
				zap.String("city", c.Name),
				zap.String("country_code", c.CountryCode),
				zap.Any("recovered", recovered),
				zap.Stack("stack"))
			result = Result{
				City: c,
				Err:  apperr.Unexpected(fmt.Sprintf("An unexpected error occurred for %s", c.Name), fmt.Errorf("panic: %v", recovered)),
			}
		}
	}()

	info, err := w.aggregator.cityInfo(ctx, c.Name, c.CountryCode)
	if err != nil {
		logger.ForContext(ctx, w.logger).Warn("Dropping city from summary",
			zap.String("city", c.Name),
			zap.String("country_code", c.CountryCode),
			zap.Error(err))
	}
	return Result{City: c, Info: info, Err: err}
}

// CollectSummary looks up every tracked city concurrently and returns one
// Result per city in tracked order.
func (a *Aggregator) CollectSummary(ctx context.Context) []Result {
	cities := a.store.List()
	results := make([]Result, len(cities))
	if len(cities) == 0 {
		return results
	}

	workers := a.workers
	if workers > len(cities) {
		workers = len(cities)
	}

	tasks := make(chan summaryTask, len(cities))
	for i, c := range cities {
		tasks <- summaryTask{index: i, city: c}
	}
	close(tasks)

	var wg sync.WaitGroup
	for id := 1; id <= workers; id++ {
		wg.Add(1)
		go NewSummaryWorker(a, id).Run(ctx, tasks, results, &wg)
	}
	wg.Wait()

	return results
}

// GetSummary returns current weather for every tracked city whose lookup
// succeeded, in tracked order. Failed cities are dropped and never surface
// as an error.
func (a *Aggregator) GetSummary(ctx context.Context) []weather.CityInfo {
	tracer := a.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "aggregator.GetSummary")
	defer span.End()

	results := a.CollectSummary(ctx)

	summary := make([]weather.CityInfo, 0, len(results))
	for _, r := range results {
		if r.OK() {
			summary = append(summary, r.Info)
		}
	}

	span.SetAttributes(
		attribute.Int("tracked_cities", len(results)),
		attribute.Int("succeeded", len(summary)),
	)

	return summary
}
