package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-dashboard/internal/apperr"
	"github.com/vzahanych/weather-dashboard/internal/server/utils"
	"go.uber.org/zap"
)

const codeInvalidParams = "INVALID_PARAMS"

// writeError renders err with the status its kind maps to. Wrapped causes are
// logged but never echoed, since transport errors may carry the upstream URL.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	appErr := apperr.From(err)
	status := appErr.HTTPStatus()

	fields := []zap.Field{
		zap.String("code", appErr.Kind.String()),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", fields...)
	} else {
		logger.Info("Request rejected", fields...)
	}

	_ = c.Error(err)
	c.JSON(status, ErrorResponse{
		Error: appErr.Message,
		Code:  appErr.Kind.String(),
	})
}

// bindCity reads the :city segment into param and validates it. On failure it
// writes a 400 and returns false.
func bindCity(c *gin.Context, logger *zap.Logger, param interface{}) bool {
	if err := c.ShouldBindUri(param); err != nil {
		logger.Warn("Invalid request parameters", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request parameters",
			Code:    codeInvalidParams,
			Details: err.Error(),
		})
		return false
	}

	if errs := utils.ValidateStruct(param); len(errs) > 0 {
		details := utils.JoinMessages(errs)
		logger.Warn("Invalid city parameter", zap.String("details", details))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request parameters",
			Code:    codeInvalidParams,
			Details: details,
		})
		return false
	}

	return true
}
