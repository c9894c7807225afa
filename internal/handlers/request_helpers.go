package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"pos-backend/internal/middleware"
	"pos-backend/internal/models"
	"pos-backend/internal/service"
)

// RequestTimeout bounds the store work of a single request.
var RequestTimeout = 5 * time.Second

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Error().Str("route", route).Interface("panic", r).Msg("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), RequestTimeout)
}

func respondWithError(c *gin.Context, status int, route string, detail string) {
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Str("route", route).Int("status", status).Msg(detail)
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// mapServiceError picks the status and client message for a service error.
// Unexpected failures are reported as "<action>: <error>".
func mapServiceError(err error, action string) (int, string) {
	switch {
	case errors.Is(err, service.ErrEstimateNotFound):
		return http.StatusNotFound, "Estimate not found"
	case errors.Is(err, service.ErrOrderNotFound):
		return http.StatusNotFound, "Order not found"
	case errors.Is(err, service.ErrEstimateConverted):
		return http.StatusBadRequest, "Estimate has already been converted to order"
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, fmt.Sprintf("%s: %v", action, err)
	default:
		return http.StatusInternalServerError, fmt.Sprintf("%s: %v", action, err)
	}
}

func respondServiceError(c *gin.Context, route, action string, err error) {
	status, detail := mapServiceError(err, action)
	respondWithError(c, status, route, detail)
}

// respondBindError reports a malformed request body.
func respondBindError(c *gin.Context, route string, err error) {
	respondWithError(c, http.StatusUnprocessableEntity, route, fmt.Sprintf("invalid request body: %v", err))
}

// defaultStaff fills a missing sale_by with the authenticated staff member.
func defaultStaff(c *gin.Context, bill *models.Bill) {
	if strings.TrimSpace(bill.SaleBy) == "" {
		bill.SaleBy = c.GetString(middleware.StaffKey)
	}
}
