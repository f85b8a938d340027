package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vytalle/storefront/internal/core/domain"
	"github.com/vytalle/storefront/internal/core/ports"
)

type guardFunc func(svc ports.SessionService, ctx context.Context) (*domain.User, error)

// RequireAuth rejects callers without a live session (401).
func RequireAuth() echo.MiddlewareFunc {
	return guard(ports.SessionService.RequireAuth)
}

// RequireAdmin rejects anonymous callers (401) and non-admins (403).
func RequireAdmin() echo.MiddlewareFunc {
	return guard(ports.SessionService.RequireAdmin)
}

func guard(check guardFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			svc, ok := c.Get(ContextKeySession).(ports.SessionService)
			if !ok {
				return echo.NewHTTPError(http.StatusInternalServerError, "session not bound")
			}
			user, err := check(svc, c.Request().Context())
			if err != nil {
				return err
			}
			c.Set("user_id", user.ID)
			return next(c)
		}
	}
}
