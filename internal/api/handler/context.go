package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vytalle/storefront/internal/api/middleware"
	"github.com/vytalle/storefront/internal/core/ports"
)

// scoped is implemented by session services bound to one caller's slot.
type scoped interface {
	ScopeID() string
}

// sessionFrom returns the session service the Session middleware bound to
// this request. Its absence is a wiring bug, hence 500.
func sessionFrom(c echo.Context) (ports.SessionService, error) {
	svc, ok := c.Get(middleware.ContextKeySession).(ports.SessionService)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "session not bound")
	}
	return svc, nil
}

func productsFrom(c echo.Context) (ports.ProductService, error) {
	svc, ok := c.Get(middleware.ContextKeyProducts).(ports.ProductService)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "catalog not bound")
	}
	return svc, nil
}

// freshSessionFrom returns a session service bound to a new scope, or svc
// itself when the middleware offers no way to rescope.
func freshSessionFrom(c echo.Context, svc ports.SessionService) ports.SessionService {
	if rescope, ok := c.Get(middleware.ContextKeyRescope).(middleware.RescopeFunc); ok {
		return rescope()
	}
	return svc
}
