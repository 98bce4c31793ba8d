package openweather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"github.com/vzahanych/weather-dashboard/internal/cache"
	"github.com/vzahanych/weather-dashboard/internal/config"
	"github.com/vzahanych/weather-dashboard/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const userAgent = "weather-dashboard/1.0"

var (
	errServerError = errors.New("server error")
	errCircuitOpen = errors.New("circuit breaker open")
)

// CallRecorder interface for recording upstream call metrics
type CallRecorder interface {
	RecordWeatherServiceCall(ctx context.Context, service string, success bool)
}

// Transport performs the raw provider calls behind the response cache.
type Transport struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
	tele    *telemetry.Telemetry
	metrics CallRecorder
}

func NewTransport(cfg config.WeatherConfig, logger *zap.Logger, tele *telemetry.Telemetry) *Transport {
	client := resty.New().
		SetHeader("User-Agent", userAgent).
		SetTimeout(time.Duration(cfg.Timeout) * time.Second).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Transport{
		client:  client,
		breaker: breaker,
		logger:  logger,
		tele:    tele,
	}
}

// SetMetricsRecorder sets the metrics recorder for upstream calls
func (t *Transport) SetMetricsRecorder(metrics CallRecorder) {
	t.metrics = metrics
}

// Fetch implements cache.Upstream. Only transport failures, 5xx responses and
// an open breaker are reported as errors; other statuses are returned as-is.
func (t *Transport) Fetch(ctx context.Context, req cache.Request) ([]byte, int, error) {
	endpoint := path.Base(req.URL)

	ctx, span := t.tele.GetTracer().Start(ctx, "openweather.Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("endpoint", endpoint))

	var (
		body   []byte
		status int
	)

	_, err := t.breaker.Execute(func() (interface{}, error) {
		resp, err := t.client.R().
			SetContext(ctx).
			SetQueryParamsFromValues(req.Params).
			Execute(req.Method, req.URL)
		if err != nil {
			return nil, err
		}

		body = resp.Body()
		status = resp.StatusCode()
		if status >= 500 {
			return nil, fmt.Errorf("%w: %d", errServerError, status)
		}
		return nil, nil
	})

	success := err == nil && status == http.StatusOK
	if t.metrics != nil {
		t.metrics.RecordWeatherServiceCall(ctx, endpoint, success)
	}
	span.SetAttributes(attribute.Int("http.status_code", status), attribute.Bool("success", success))

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		t.logger.Warn("Upstream call failed",
			zap.String("endpoint", endpoint),
			zap.Int("status", status),
			zap.Error(err))
		return body, status, err
	}

	t.logger.Debug("Upstream call completed",
		zap.String("endpoint", endpoint),
		zap.Int("status", status),
		zap.Int("body_size", len(body)))

	return body, status, nil
}
