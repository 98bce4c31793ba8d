package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-dashboard/internal/server/utils"
	"github.com/vzahanych/weather-dashboard/pkg/logger"
	"go.uber.org/zap"
)

type WeatherHandler struct {
	service WeatherService
	logger  *zap.Logger
}

func NewWeatherHandler(service WeatherService, logger *zap.Logger) *WeatherHandler {
	return &WeatherHandler{
		service: service,
		logger:  logger,
	}
}

func (h *WeatherHandler) CityInfo(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	reqLogger := logger.ForContext(ctx, h.logger)

	var param CityParam
	if !bindCity(c, reqLogger, &param) {
		return
	}

	info, err := h.service.GetCityInfo(ctx, param.City)
	if err != nil {
		writeError(c, reqLogger, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// Summary always answers 200; cities whose lookup failed are left out.
func (h *WeatherHandler) Summary(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)

	summary := h.service.GetSummary(ctx)
	logger.ForContext(ctx, h.logger).Debug("Summary served", zap.Int("cities", len(summary)))

	c.JSON(http.StatusOK, summary)
}

func (h *WeatherHandler) Timeseries(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	reqLogger := logger.ForContext(ctx, h.logger)

	var param CityParam
	if !bindCity(c, reqLogger, &param) {
		return
	}

	series, err := h.service.GetTimeseries(ctx, param.City)
	if err != nil {
		writeError(c, reqLogger, err)
		return
	}

	c.JSON(http.StatusOK, series)
}
