package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vytalle/storefront/internal/core/domain"
	"github.com/vytalle/storefront/internal/core/ports"
	"github.com/vytalle/storefront/internal/core/resilience"
	"github.com/vytalle/storefront/internal/core/service"
	"github.com/vytalle/storefront/internal/infrastructure/memory"
)

const testScope = "8f14e45f-ceea-4e7a-9b2b-5d3c7e6a1f20"

type fixture struct {
	auth     *service.SessionAuthority
	stores   *memory.SessionStore
	products *service.ProductAccess
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	engine := resilience.NewEngine(zerolog.Nop(), resilience.Options{
		Sleep: func(context.Context, time.Duration) error { return nil },
	})
	users, err := memory.NewUserRepository(memory.DemoAccounts(), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("seed users: %v", err)
	}
	stores := memory.NewSessionStore()
	auth, err := service.NewSessionAuthority(stores.Scope("server"), users, users, engine, zerolog.Nop(), service.SessionConfig{Secret: "secret"})
	if err != nil {
		t.Fatalf("authority: %v", err)
	}
	products := service.NewProductAccess(memory.NewCatalog(memory.SeedProducts()), engine, zerolog.Nop(), service.ProductOptions{})
	return fixture{auth: auth, stores: stores, products: products}
}

func (f fixture) loginAs(t *testing.T, scope, email, password string) *domain.Session {
	t.Helper()
	s, err := f.auth.WithStore(scope, f.stores.Scope(scope)).Login(context.Background(), email, password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return s
}

// run passes req through the Session middleware and returns the bound
// session service.
func (f fixture) run(t *testing.T, req *http.Request) (ports.SessionService, error) {
	t.Helper()
	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())

	var bound ports.SessionService
	err := Session(f.auth, f.stores, f.products)(func(c echo.Context) error {
		bound, _ = c.Get(ContextKeySession).(ports.SessionService)
		if _, ok := c.Get(ContextKeyProducts).(ports.ProductService); !ok {
			t.Fatalf("product service not bound")
		}
		return nil
	})(c)
	return bound, err
}

func TestSession_CookieSelectsScope(t *testing.T) {
	f := newFixture(t)
	f.loginAs(t, testScope, "joao@vendedor.com", "vendedor123")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: testScope})
	svc, err := f.run(t, req)
	if err != nil {
		t.Fatalf("middleware: %v", err)
	}
	if !svc.IsVendor(context.Background()) {
		t.Fatalf("expected the cookie scope's vendor session")
	}
}

func TestSession_BearerSelectsScope(t *testing.T) {
	f := newFixture(t)
	s := f.loginAs(t, testScope, "admin@vytalle.com.br", "admin123")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.Token)
	svc, err := f.run(t, req)
	if err != nil {
		t.Fatalf("middleware: %v", err)
	}
	if !svc.IsAdmin(context.Background()) {
		t.Fatalf("expected the token scope's admin session")
	}
}

func TestSession_NoCredentialsIsAnonymous(t *testing.T) {
	f := newFixture(t)
	f.loginAs(t, testScope, "admin@vytalle.com.br", "admin123")

	for name, req := range map[string]*http.Request{
		"nothing":        httptest.NewRequest(http.MethodGet, "/", nil),
		"garbage cookie": withCookieValue("../../etc"),
	} {
		t.Run(name, func(t *testing.T) {
			svc, err := f.run(t, req)
			if err != nil {
				t.Fatalf("middleware: %v", err)
			}
			if svc.CurrentUser(context.Background()) != nil {
				t.Fatalf("expected anonymous caller")
			}
		})
	}
}

func withCookieValue(v string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: v})
	return req
}

func TestSession_RejectsBadAuthorization(t *testing.T) {
	f := newFixture(t)
	for _, header := range []string{"Bearer nope", "Token abc", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, header)
		_, err := f.run(t, req)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401, got %v", header, err)
		}
	}
}

func TestGuards(t *testing.T) {
	f := newFixture(t)
	f.loginAs(t, testScope, "maria@vendedor.com", "vendedor456")
	vendor := f.auth.WithStore(testScope, f.stores.Scope(testScope))
	anonymous := f.auth.WithStore("other", f.stores.Scope("other"))

	cases := []struct {
		name string
		mw   echo.MiddlewareFunc
		svc  ports.SessionService
		want error
	}{
		{"auth anonymous", RequireAuth(), anonymous, domain.ErrLoginRequired},
		{"auth vendor", RequireAuth(), vendor, nil},
		{"admin anonymous", RequireAdmin(), anonymous, domain.ErrLoginRequired},
		{"admin vendor", RequireAdmin(), vendor, domain.ErrAdminRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			c.Set(ContextKeySession, tc.svc)

			called := false
			err := tc.mw(func(echo.Context) error { called = true; return nil })(c)
			if err != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if called != (tc.want == nil) {
				t.Fatalf("next called = %v", called)
			}
		})
	}
}

func TestGuards_MissingSession(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	err := RequireAuth()(func(echo.Context) error { return nil })(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %v", err)
	}
}
