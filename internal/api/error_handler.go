package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vytalle/storefront/internal/core/domain"
	"github.com/vytalle/storefront/internal/core/resilience"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain and resilience errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Session errors carry user-facing messages.
	var authn *domain.AuthenticationError
	if errors.As(err, &authn) {
		return authn.StatusCode(), authn.Message
	}
	var authz *domain.AuthorizationError
	if errors.As(err, &authz) {
		return authz.StatusCode(), authz.Message
	}

	var app *resilience.AppError
	if errors.As(err, &app) {
		code := kindStatus(app.Kind)
		if code >= http.StatusInternalServerError {
			log.Error().
				Err(app.Unwrap()).
				Str("kind", string(app.Kind)).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("request failed")
		}
		return code, app.Message
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

func kindStatus(kind resilience.ErrorKind) int {
	switch kind {
	case resilience.KindValidation:
		return http.StatusUnprocessableEntity
	case resilience.KindNotFound:
		return http.StatusNotFound
	case resilience.KindAuth:
		return http.StatusUnauthorized
	case resilience.KindClient:
		return http.StatusBadRequest
	case resilience.KindNetwork, resilience.KindServer:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
