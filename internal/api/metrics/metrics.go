// Package metrics defines and registers the storefront's Prometheus metrics.
// It is the single source of truth for metric names, labels and help
// strings. Metrics register with the default registry on import.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vytalle/storefront/internal/core/resilience"
)

const namespace = "storefront"

// ── Resilience metrics ────────────────────────────────────────────────────────

// RetriesTotal counts scheduled retries.
// Labels:
//   - operation: operation id without its per-key suffix (e.g. "session.login")
//   - kind: error kind that triggered the retry ("NETWORK" or "SERVER")
var RetriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "retries_total",
		Help:      "Total number of retries scheduled by the resilience engine.",
	},
	[]string{"operation", "kind"},
)

// RetriesExhaustedTotal counts retryable failures that ran out of attempts.
var RetriesExhaustedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "retries_exhausted_total",
		Help:      "Total number of operations that failed after the last retry.",
	},
	[]string{"operation", "kind"},
)

// FallbacksTotal counts degraded results served in place of an error.
var FallbacksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fallbacks_total",
		Help:      "Total number of fallback results served after a failure.",
	},
	[]string{"operation"},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// ProductCacheLookupsTotal counts cached catalog reads.
// Labels:
//   - role: "anonymous", "vendedor" or "admin"
//   - result: "hit" or "miss"
var ProductCacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_cache_lookups_total",
		Help:      "Total number of product cache lookups, by role and result.",
	},
	[]string{"role", "result"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "invalid_payload" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestsTotal counts served requests by route template.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method, route and status.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures handler latency by route template.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests from routing to response.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// operationLabel drops the per-key suffix ("session.login:joao@..." becomes
// "session.login") to keep label cardinality bounded.
func operationLabel(operationID string) string {
	if i := strings.IndexByte(operationID, ':'); i >= 0 {
		return operationID[:i]
	}
	return operationID
}

// ResilienceObserver feeds resilience.Engine signals into the counters above.
type ResilienceObserver struct{}

var _ resilience.Observer = ResilienceObserver{}

func (ResilienceObserver) Retry(operationID string, kind resilience.ErrorKind, _ int) {
	RetriesTotal.WithLabelValues(operationLabel(operationID), string(kind)).Inc()
}

func (ResilienceObserver) Exhausted(operationID string, kind resilience.ErrorKind) {
	RetriesExhaustedTotal.WithLabelValues(operationLabel(operationID), string(kind)).Inc()
}

func (ResilienceObserver) Fallback(operationID string) {
	FallbacksTotal.WithLabelValues(operationLabel(operationID)).Inc()
}

// CacheObserver records product cache hits and misses.
type CacheObserver struct{}

func (CacheObserver) Hit(role string)  { ProductCacheLookupsTotal.WithLabelValues(role, "hit").Inc() }
func (CacheObserver) Miss(role string) { ProductCacheLookupsTotal.WithLabelValues(role, "miss").Inc() }
