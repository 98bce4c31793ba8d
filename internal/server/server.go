package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-dashboard/internal/config"
	"github.com/vzahanych/weather-dashboard/internal/server/handlers"
	"github.com/vzahanych/weather-dashboard/internal/server/middlewares"
	"github.com/vzahanych/weather-dashboard/pkg/telemetry"
	"go.uber.org/zap"
)

type Server struct {
	engine *gin.Engine
	server *http.Server
	cfg    config.ServerConfig
	logger *zap.Logger
}

// Dependencies are built by the caller so the cache and upstream transport can
// report into the same metrics handler the /metrics route serves.
type Dependencies struct {
	Service           handlers.WeatherService
	Metrics           *handlers.MetricsHandler
	MetricsMiddleware *middlewares.MetricsMiddleware
}

func NewServer(cfg config.ServerConfig, deps Dependencies, logger *zap.Logger, tele *telemetry.Telemetry) *Server {
	if deps.MetricsMiddleware == nil {
		deps.MetricsMiddleware = middlewares.NewMetricsMiddleware(logger, tele)
	}
	if deps.Metrics == nil {
		deps.Metrics = handlers.NewMetricsHandler(logger, deps.MetricsMiddleware)
	}

	engine := gin.New()

	engine.Use(middlewares.RequestIDMiddleware())
	engine.Use(middlewares.LoggingMiddleware(logger))
	engine.Use(deps.MetricsMiddleware.Handler())
	engine.Use(middlewares.RecoveryMiddleware(logger, true))
	engine.Use(corsMiddleware(cfg.CORSOrigins))
	engine.Use(middlewares.TelemetryMiddleware(logger, tele))

	s := &Server{
		engine: engine,
		cfg:    cfg,
		logger: logger,
	}
	s.setupRoutes(deps)

	return s
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	origins = normalizeOrigins(origins)
	if len(origins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = origins
	corsCfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, middlewares.RequestIDHeader)
	corsCfg.ExposeHeaders = []string{middlewares.RequestIDHeader}
	corsCfg.AllowWildcard = true
	return cors.New(corsCfg)
}

// normalizeOrigins gives bare "host:port" entries an http scheme, which the
// cors package requires, and drops duplicates.
func normalizeOrigins(origins []string) []string {
	seen := make(map[string]bool, len(origins))
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if o != "*" && !strings.Contains(o, "://") {
			o = "http://" + o
		}
		if !seen[o] {
			seen[o] = true
			out = append(out, o)
		}
	}
	return out
}

func (s *Server) setupRoutes(deps Dependencies) {
	cities := handlers.NewCitiesHandler(deps.Service, s.logger)
	weather := handlers.NewWeatherHandler(deps.Service, s.logger)
	health := handlers.NewHealthHandler(deps.Service, s.logger)

	api := s.engine.Group("/api")
	{
		api.GET("/info/get-all-cities", cities.List)

		w := api.Group("/weather")
		w.GET("/summary", weather.Summary)
		w.GET("/city/:city", weather.CityInfo)
		w.POST("/city/:city", cities.Add)
		w.GET("/timeseries/:city", weather.Timeseries)
		w.GET("/coordinates/:city", cities.Coordinates)
		w.POST("/delete/:city", cities.Remove)
	}

	s.engine.GET("/health", health.Health)
	s.engine.GET("/health/live", health.Liveness)
	s.engine.GET("/health/ready", health.Readiness)

	s.engine.GET("/metrics", deps.Metrics.ServeMetrics)
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.engine,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeout) * time.Second,
	}

	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
