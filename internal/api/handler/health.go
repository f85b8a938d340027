package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vytalle/storefront/internal/core/resilience"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	engine  *resilience.Engine
	checks  map[string]Check
	timeout time.Duration
}

// NewHealthHandler builds the probes. checks may be empty when every backend
// is in-process.
func NewHealthHandler(engine *resilience.Engine, checks map[string]Check) *HealthHandler {
	return &HealthHandler{engine: engine, checks: checks, timeout: 3 * time.Second}
}

type dependencyStatus struct {
	Status string `json:"status"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Liveness confirms the process is alive.
//
// @Summary  Liveness probe
// @Tags     health
// @Success  200
// @Router   /health [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness pings every configured dependency. Failures are logged by the
// resilience engine and reported here only as "unhealthy".
//
// @Summary  Readiness probe
// @Tags     health
// @Success  200  {object}  readinessResponse
// @Failure  503  {object}  readinessResponse
// @Router   /health/ready [get]
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	deps := make(map[string]dependencyStatus, len(names))
	healthy := true
	for _, name := range names {
		check := h.checks[name]
		ok := resilience.SafeAsync(ctx, h.engine, func(ctx context.Context) (bool, error) {
			return true, check(ctx)
		}, false, resilience.ErrorContext{Component: "health", Action: name})

		if ok {
			deps[name] = dependencyStatus{Status: "ok"}
		} else {
			deps[name] = dependencyStatus{Status: "unhealthy"}
			healthy = false
		}
	}

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	return c.JSON(code, readinessResponse{Status: status, Dependencies: deps})
}
