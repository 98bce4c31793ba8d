package openweather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-dashboard/internal/cache"
	"github.com/vzahanych/weather-dashboard/internal/config"
	"github.com/vzahanych/weather-dashboard/pkg/telemetry"
	"go.uber.org/zap/zaptest"
)

type callCounter struct {
	ok, failed atomic.Int32
}

func (c *callCounter) RecordWeatherServiceCall(ctx context.Context, service string, success bool) {
	if success {
		c.ok.Add(1)
	} else {
		c.failed.Add(1)
	}
}

func TestTransport_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tr := NewTransport(config.WeatherConfig{Timeout: 5, Retries: 0, BreakerMaxFailures: 2}, zaptest.NewLogger(t), &telemetry.Telemetry{})
	counter := &callCounter{}
	tr.SetMetricsRecorder(counter)

	req := cache.Request{Method: http.MethodGet, URL: srv.URL + "/weather", Params: url.Values{"q": {"Prague"}}}
	for i := 0; i < 2; i++ {
		_, status, err := tr.Fetch(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, status)
	}

	_, status, err := tr.Fetch(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errCircuitOpen))
	assert.Equal(t, 0, status)
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, int32(3), counter.failed.Load())
}

func TestTransport_ClientErrorsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	}))
	defer srv.Close()

	tr := NewTransport(config.WeatherConfig{Timeout: 5, BreakerMaxFailures: 1}, zaptest.NewLogger(t), &telemetry.Telemetry{})

	for i := 0; i < 3; i++ {
		body, status, err := tr.Fetch(context.Background(), cache.Request{Method: http.MethodGet, URL: srv.URL + "/weather"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Contains(t, string(body), "city not found")
	}
}
