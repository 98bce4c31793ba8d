package handlers

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-dashboard/internal/server/middlewares"
	"go.uber.org/zap"
)

// AppMetrics holds cache and upstream counters, keyed by cache backend and
// upstream endpoint respectively.
type AppMetrics struct {
	mutex                sync.RWMutex
	cacheHits            map[string]int64
	cacheMisses          map[string]int64
	cacheStale           map[string]int64
	weatherServiceCalls  map[string]int64
	weatherServiceErrors map[string]int64
}

// HTTPMetricsProvider is satisfied by the metrics middleware.
type HTTPMetricsProvider interface {
	GetHTTPMetrics() *middlewares.HTTPMetrics
}

// MetricsHandler records cache and upstream events and serves them, together
// with the HTTP request metrics, in Prometheus text format.
type MetricsHandler struct {
	logger     *zap.Logger
	http       HTTPMetricsProvider
	appMetrics *AppMetrics
}

func NewMetricsHandler(logger *zap.Logger, httpMetrics HTTPMetricsProvider) *MetricsHandler {
	return &MetricsHandler{
		logger: logger,
		http:   httpMetrics,
		appMetrics: &AppMetrics{
			cacheHits:            make(map[string]int64),
			cacheMisses:          make(map[string]int64),
			cacheStale:           make(map[string]int64),
			weatherServiceCalls:  make(map[string]int64),
			weatherServiceErrors: make(map[string]int64),
		},
	}
}

func (h *MetricsHandler) RecordCacheHit(ctx context.Context, cacheType string) {
	h.appMetrics.mutex.Lock()
	h.appMetrics.cacheHits[cacheType]++
	h.appMetrics.mutex.Unlock()
}

func (h *MetricsHandler) RecordCacheMiss(ctx context.Context, cacheType string) {
	h.appMetrics.mutex.Lock()
	h.appMetrics.cacheMisses[cacheType]++
	h.appMetrics.mutex.Unlock()
}

// RecordCacheStale counts responses served from an expired entry because
// upstream failed.
func (h *MetricsHandler) RecordCacheStale(ctx context.Context, cacheType string) {
	h.appMetrics.mutex.Lock()
	h.appMetrics.cacheStale[cacheType]++
	h.appMetrics.mutex.Unlock()
}

func (h *MetricsHandler) RecordWeatherServiceCall(ctx context.Context, service string, success bool) {
	h.appMetrics.mutex.Lock()
	h.appMetrics.weatherServiceCalls[service]++
	if !success {
		h.appMetrics.weatherServiceErrors[service]++
	}
	h.appMetrics.mutex.Unlock()
}

func (h *MetricsHandler) ServeMetrics(c *gin.Context) {
	var b strings.Builder

	if h.http != nil {
		snapshot := h.http.GetHTTPMetrics().Snapshot()

		writeHeader(&b, "http_requests_total", "counter", "Total number of HTTP requests")
		writeSeries(&b, "http_requests_total", "route_status", snapshot.RequestsTotal)

		writeHeader(&b, "http_request_duration_seconds_avg", "gauge", "Average duration of recent HTTP requests")
		b.WriteString("http_request_duration_seconds_avg " + strconv.FormatFloat(snapshot.AvgDuration, 'f', 6, 64) + "\n")

		writeHeader(&b, "http_active_requests", "gauge", "Number of active HTTP requests")
		b.WriteString("http_active_requests " + strconv.FormatInt(snapshot.ActiveRequests, 10) + "\n")
	}

	h.appMetrics.mutex.RLock()
	writeHeader(&b, "weather_cache_hits_total", "counter", "Responses served fresh from cache")
	writeSeries(&b, "weather_cache_hits_total", "cache", h.appMetrics.cacheHits)

	writeHeader(&b, "weather_cache_misses_total", "counter", "Lookups that went upstream")
	writeSeries(&b, "weather_cache_misses_total", "cache", h.appMetrics.cacheMisses)

	writeHeader(&b, "weather_cache_stale_total", "counter", "Stale responses served after an upstream failure")
	writeSeries(&b, "weather_cache_stale_total", "cache", h.appMetrics.cacheStale)

	writeHeader(&b, "weather_service_calls_total", "counter", "Total upstream weather calls")
	writeSeries(&b, "weather_service_calls_total", "service", h.appMetrics.weatherServiceCalls)

	writeHeader(&b, "weather_service_errors_total", "counter", "Total failed upstream weather calls")
	writeSeries(&b, "weather_service_errors_total", "service", h.appMetrics.weatherServiceErrors)
	h.appMetrics.mutex.RUnlock()

	c.Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	c.String(http.StatusOK, b.String())
}

func writeHeader(b *strings.Builder, name, kind, help string) {
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString("# HELP " + name + " " + help + "\n")
	b.WriteString("# TYPE " + name + " " + kind + "\n")
}

// writeSeries emits one sample per label value, sorted for stable output.
func writeSeries(b *strings.Builder, name, label string, values map[string]int64) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		b.WriteString(name + "{" + label + "=\"" + k + "\"} " + strconv.FormatInt(values[k], 10) + "\n")
	}
}
