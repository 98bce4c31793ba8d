package cache

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vzahanych/weather-dashboard/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const cacheType = "http_response"

// Request is the signature of one upstream call.
type Request struct {
	Method string
	URL    string
	Params url.Values
}

// Key normalizes the request into method + URL + sorted query parameters.
func (r Request) Key() string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(r.Method))
	b.WriteByte(' ')
	b.WriteString(r.URL)
	if len(r.Params) > 0 {
		b.WriteByte('?')
		// Encode sorts by key.
		b.WriteString(r.Params.Encode())
	}
	return b.String()
}

type Response struct {
	Body      []byte
	Status    int
	FromCache bool
	Stale     bool
	StoredAt  time.Time
}

// Upstream performs the real network call. A non-nil error means no usable
// response was received.
type Upstream interface {
	Fetch(ctx context.Context, req Request) (body []byte, status int, err error)
}

// MetricsRecorder interface for recording metrics
type MetricsRecorder interface {
	RecordCacheHit(ctx context.Context, cacheType string)
	RecordCacheMiss(ctx context.Context, cacheType string)
	RecordCacheStale(ctx context.Context, cacheType string)
}

// ResponseCache stores successful upstream responses and serves them while
// fresh. Past the freshness window it revalidates against upstream and falls
// back to the stored entry when upstream fails.
type ResponseCache struct {
	upstream Upstream
	storage  Storage
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
	tele     *telemetry.Telemetry
	metrics  MetricsRecorder
}

func New(upstream Upstream, storage Storage, ttl time.Duration, logger *zap.Logger, tele *telemetry.Telemetry) *ResponseCache {
	return &ResponseCache{
		upstream: upstream,
		storage:  storage,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
		tele:     tele,
	}
}

// SetMetricsRecorder sets the metrics recorder for the cache
func (c *ResponseCache) SetMetricsRecorder(metrics MetricsRecorder) {
	c.metrics = metrics
}

func cacheable(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodPost:
		return true
	default:
		return false
	}
}

func (c *ResponseCache) Get(ctx context.Context, req Request) (*Response, error) {
	ctx, span := c.tele.GetTracer().Start(ctx, "cache.Get")
	defer span.End()

	if !cacheable(req.Method) {
		body, status, err := c.upstream.Fetch(ctx, req)
		if err != nil {
			return nil, err
		}
		return &Response{Body: body, Status: status}, nil
	}

	key := req.Key()
	span.SetAttributes(attribute.String("http.method", req.Method), attribute.String("http.url", req.URL))

	entry, found, err := c.storage.Get(ctx, key)
	if err != nil {
		c.logger.Warn("Cache storage read failed", zap.String("url", req.URL), zap.Error(err))
		found = false
	}

	if found && c.now().Sub(entry.StoredAt) < c.ttl {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		if c.metrics != nil {
			c.metrics.RecordCacheHit(ctx, cacheType)
		}
		c.logger.Debug("Cache hit", zap.String("url", req.URL))
		return &Response{Body: entry.Body, Status: entry.Status, FromCache: true, StoredAt: entry.StoredAt}, nil
	}

	span.SetAttributes(attribute.Bool("cache_hit", false))
	if c.metrics != nil {
		c.metrics.RecordCacheMiss(ctx, cacheType)
	}

	body, status, fetchErr := c.upstream.Fetch(ctx, req)
	if fetchErr == nil && status == http.StatusOK {
		stored := &Entry{Body: body, Status: status, StoredAt: c.now()}
		if err := c.storage.Set(ctx, key, stored); err != nil {
			c.logger.Warn("Cache storage write failed", zap.String("url", req.URL), zap.Error(err))
		}
		return &Response{Body: body, Status: status, StoredAt: stored.StoredAt}, nil
	}

	if found {
		span.SetAttributes(attribute.Bool("stale", true))
		if c.metrics != nil {
			c.metrics.RecordCacheStale(ctx, cacheType)
		}
		c.logger.Warn("Revalidation failed, serving stale response",
			zap.String("url", req.URL),
			zap.Int("upstream_status", status),
			zap.Duration("age", c.now().Sub(entry.StoredAt)),
			zap.Error(fetchErr))
		return &Response{Body: entry.Body, Status: entry.Status, FromCache: true, Stale: true, StoredAt: entry.StoredAt}, nil
	}

	if fetchErr != nil && status == 0 {
		return nil, fetchErr
	}

	// Non-200 responses are handed back with their status and never stored.
	return &Response{Body: body, Status: status}, nil
}
