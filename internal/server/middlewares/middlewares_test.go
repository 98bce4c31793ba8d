package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-dashboard/internal/server/utils"
	"github.com/vzahanych/weather-dashboard/pkg/logger"
	"github.com/vzahanych/weather-dashboard/pkg/telemetry"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var fromGin, fromCtx string
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		fromGin = utils.GetRequestIDFromGinContext(c)
		fromCtx = logger.RequestIDFrom(c.Request.Context())
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, fromGin)
	assert.Equal(t, fromGin, fromCtx)
	assert.Equal(t, fromGin, w.Header().Get(RequestIDHeader))
}

func TestLoggingMiddleware_LevelByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(RequestIDMiddleware(), LoggingMiddleware(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	for _, path := range []string{"/ok", "/bad", "/fail"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "/fail", entries[2].ContextMap()["route"])
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
}

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m := NewMetricsMiddleware(zaptest.NewLogger(t), &telemetry.Telemetry{})
	r := gin.New()
	r.Use(m.Handler())
	r.GET("/cities/:city", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cities/Prague", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cities/Boston", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	snapshot := m.GetHTTPMetrics().Snapshot()
	assert.Equal(t, int64(2), snapshot.RequestsTotal["GET /cities/:city_200"])
	assert.Equal(t, int64(1), snapshot.RequestsTotal["GET unmatched_404"])
	assert.Equal(t, int64(0), snapshot.ActiveRequests)
	assert.GreaterOrEqual(t, snapshot.AvgDuration, 0.0)
}

func TestTelemetryMiddleware_SetsSpanContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware(), TelemetryMiddleware(zaptest.NewLogger(t), &telemetry.Telemetry{}))

	var requestID string
	r.GET("/", func(c *gin.Context) {
		_, ok := c.Get(utils.SpanContextKey)
		assert.True(t, ok)
		requestID = logger.RequestIDFrom(utils.GetContextFromGinContext(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "abc", requestID)
}
