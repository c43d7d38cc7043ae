package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/puntoventa/pos-terminal/internal/core/domain"
	"github.com/puntoventa/pos-terminal/internal/infrastructure/backend"
)

// errorResponse is the canonical error envelope for all gateway errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Surfaces backend API failures as 502 without leaking transport detail.
//   - Logs unexpected errors internally and renders a consistent JSON
//     envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, "not authenticated"
	case errors.Is(err, domain.ErrSucursalNotAllowed):
		return http.StatusForbidden, "sucursal not allowed"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "admin role required"
	case errors.Is(err, domain.ErrTerminalLocked):
		return http.StatusLocked, "terminal is locked"
	case errors.Is(err, domain.ErrPinMismatch):
		return http.StatusUnauthorized, "pin does not match"
	case errors.Is(err, domain.ErrPinNotSet):
		return http.StatusConflict, "no pin configured"
	case errors.Is(err, domain.ErrProductoNotFound):
		return http.StatusNotFound, "producto not in catalog"
	case errors.Is(err, domain.ErrReportUnavailable):
		return http.StatusNotFound, "report not loaded"
	}

	// Upstream POS API failures: the terminal is a proxy here, so report a
	// gateway error with the backend's message.
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return http.StatusBadGateway, apiErr.Message
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
