package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-dashboard/internal/city"
	"github.com/vzahanych/weather-dashboard/internal/server/utils"
	"github.com/vzahanych/weather-dashboard/pkg/logger"
	"go.uber.org/zap"
)

type CitiesHandler struct {
	service WeatherService
	logger  *zap.Logger
}

func NewCitiesHandler(service WeatherService, logger *zap.Logger) *CitiesHandler {
	return &CitiesHandler{
		service: service,
		logger:  logger,
	}
}

func (h *CitiesHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, CitiesResponse{Cities: h.service.ListCities()})
}

// Add resolves the :city query and tracks it. Adding a tracked city is a no-op.
func (h *CitiesHandler) Add(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	reqLogger := logger.ForContext(ctx, h.logger)

	var param CityParam
	if !bindCity(c, reqLogger, &param) {
		return
	}

	cities, err := h.service.AddCity(ctx, param.City)
	if err != nil {
		writeError(c, reqLogger, err)
		return
	}

	c.JSON(http.StatusOK, CitiesResponse{Cities: cities})
}

// Remove untracks the "name,CC" city. Removing an untracked city is a no-op.
func (h *CitiesHandler) Remove(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	reqLogger := logger.ForContext(ctx, h.logger)

	var param CityKeyParam
	if !bindCity(c, reqLogger, &param) {
		return
	}

	name, countryCode, _ := city.ParseQuery(param.City)
	c.JSON(http.StatusOK, CitiesResponse{Cities: h.service.RemoveCity(ctx, name, countryCode)})
}

// Coordinates resolves the :city query without tracking it.
func (h *CitiesHandler) Coordinates(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	reqLogger := logger.ForContext(ctx, h.logger)

	var param CityParam
	if !bindCity(c, reqLogger, &param) {
		return
	}

	resolved, err := h.service.GetCoordinates(ctx, param.City)
	if err != nil {
		writeError(c, reqLogger, err)
		return
	}

	c.JSON(http.StatusOK, resolved)
}
