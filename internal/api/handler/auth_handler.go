package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vytalle/storefront/internal/api/metrics"
	"github.com/vytalle/storefront/internal/api/middleware"
	"github.com/vytalle/storefront/internal/core/domain"
	"github.com/vytalle/storefront/internal/core/resilience"
)

type AuthHandler struct {
	engine       *resilience.Engine
	secureCookie bool
}

// NewAuthHandler builds the login/logout handler. secureCookie marks the
// scope cookie Secure; enable it behind TLS.
func NewAuthHandler(engine *resilience.Engine, secureCookie bool) *AuthHandler {
	return &AuthHandler{engine: engine, secureCookie: secureCookie}
}

// Login authenticates a user and starts a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	svc, err := sessionFrom(c)
	if err != nil {
		return err
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_payload").Inc()
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: h.engine.HandleFormError(err, "")})
	}
	if err := c.Validate(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_payload").Inc()
		var ve *resilience.ValidationError
		field := ""
		if errors.As(err, &ve) {
			field = ve.Field
		}
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: h.engine.HandleFormError(err, field)})
	}

	// The session goes into a new scope; the scope the request arrived with
	// may have been planted by someone else.
	fresh := freshSessionFrom(c, svc)
	session, err := fresh.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		result := "error"
		if errors.Is(err, domain.ErrInvalidCredentials) {
			result = "invalid_credentials"
		}
		metrics.LoginsTotal.WithLabelValues(result).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	if fresh != svc {
		if err := svc.Logout(c.Request().Context()); err != nil {
			return err
		}
	}

	if s, ok := fresh.(scoped); ok {
		h.setScopeCookie(c, s.ScopeID(), session.ExpiresAt)
	}
	return c.JSON(http.StatusOK, loginResponse{
		Token:     session.Token,
		User:      session.User,
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout ends the current session. It succeeds without a session too.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	svc, err := sessionFrom(c)
	if err != nil {
		return err
	}
	if err := svc.Logout(c.Request().Context()); err != nil {
		return err
	}
	h.setScopeCookie(c, "", time.Unix(0, 0))
	return c.NoContent(http.StatusNoContent)
}

// Session returns the caller's current session.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	svc, err := sessionFrom(c)
	if err != nil {
		return err
	}
	s := svc.CurrentSession(c.Request().Context())
	if s == nil {
		return domain.ErrLoginRequired
	}
	return c.JSON(http.StatusOK, sessionResponse{User: s.User, ExpiresAt: s.ExpiresAt})
}

func (h *AuthHandler) setScopeCookie(c echo.Context, value string, expires time.Time) {
	ck := &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		ck.MaxAge = -1
	}
	c.SetCookie(ck)
}
