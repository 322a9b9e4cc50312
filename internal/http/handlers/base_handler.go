// README: Base handler utilities (JSON helpers, caller identity, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"roadbook/internal/http/middleware"
	"roadbook/internal/modules/booking"
	"roadbook/internal/modules/ordering"
	"roadbook/internal/modules/pricing"
	"roadbook/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// statusFor maps domain errors to HTTP status codes. Anything unrecognised
// is a 500 and its message is not exposed.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, booking.ErrInvalidTransition), errors.Is(err, booking.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, pricing.ErrRateCapExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pricing.ErrConfigurationMissing), errors.Is(err, ordering.ErrClosed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeServiceError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		writeError(c, status, "internal error")
		return
	}
	writeError(c, status, err.Error())
}

// actor builds the booking actor from the auth context. Requests without a
// token act as anonymous passengers.
func actor(c *gin.Context) booking.Actor {
	return booking.Actor{
		Role: booking.ParseRole(middleware.CallerRole(c)),
		ID:   types.ID(middleware.CallerUID(c)),
	}
}
