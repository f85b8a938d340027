package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vytalle/storefront/internal/core/ports"
	"github.com/vytalle/storefront/internal/core/service"
)

const (
	// Context keys read by the handlers.
	ContextKeySession  = "session"
	ContextKeyProducts = "products"
	ContextKeyRescope  = "session_rescope"

	// SessionCookie carries the caller's session scope id.
	SessionCookie = "vytalle_sid"
)

// RescopeFunc returns a session service bound to a newly generated scope.
// Login persists into it so a scope id chosen by the client never ends up
// holding an authenticated session.
type RescopeFunc func() ports.SessionService

var errMalformedAuthHeader = errors.New("malformed authorization header")

// Session binds the session authority and the product access to the caller.
// The caller's scope comes from the sid claim of a bearer token or, failing
// that, the session cookie. Callers with neither get a fresh scope. Login
// never reuses the request's scope; it persists through ContextKeyRescope and
// hands the new id back as a cookie.
func Session(auth *service.SessionAuthority, stores ports.SessionScoper, products *service.ProductAccess) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scope, err := resolveScope(c, auth)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if scope == "" {
				scope = uuid.NewString()
			}

			bound := auth.WithStore(scope, stores.Scope(scope))
			c.Set(ContextKeySession, bound)
			c.Set(ContextKeyProducts, products.ForSession(bound))
			c.Set(ContextKeyRescope, RescopeFunc(func() ports.SessionService {
				fresh := uuid.NewString()
				return auth.WithStore(fresh, stores.Scope(fresh))
			}))
			return next(c)
		}
	}
}

func resolveScope(c echo.Context, auth *service.SessionAuthority) (string, error) {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", errMalformedAuthHeader
		}
		claims, err := auth.VerifyToken(parts[1])
		if err != nil {
			return "", err
		}
		if _, err := uuid.Parse(claims.ScopeID); err != nil {
			return "", err
		}
		return claims.ScopeID, nil
	}

	if ck, err := c.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(ck.Value); err == nil {
			return ck.Value, nil
		}
	}
	return "", nil
}
