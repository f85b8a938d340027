package resilience

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	retries   []int
	exhausted int
	fallbacks []string
}

func (o *recordingObserver) Retry(_ string, _ ErrorKind, attempt int) {
	o.retries = append(o.retries, attempt)
}
func (o *recordingObserver) Exhausted(string, ErrorKind) { o.exhausted++ }
func (o *recordingObserver) Fallback(id string)          { o.fallbacks = append(o.fallbacks, id) }

// newTestEngine records requested delays instead of sleeping.
func newTestEngine(obs Observer) (*Engine, *[]time.Duration) {
	var delays []time.Duration
	e := NewEngine(zerolog.Nop(), Options{
		Sleep: func(_ context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		},
		Observer: obs,
	})
	return e, &delays
}

func TestWithRetry_NetworkFailureRunsFourTimes(t *testing.T) {
	obs := &recordingObserver{}
	e, delays := newTestEngine(obs)

	calls := 0
	_, err := WithRetry(context.Background(), e, func(context.Context) (string, error) {
		calls++
		return "", &NetworkError{Op: "fetch products"}
	}, "products", ErrorContext{Component: "catalog"})

	require.Error(t, err)
	var app *AppError
	require.True(t, errors.As(err, &app))
	assert.Equal(t, KindNetwork, app.Kind)
	assert.True(t, app.Retryable)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, *delays)
	assert.Equal(t, []int{1, 2, 3}, obs.retries)
	assert.Equal(t, 1, obs.exhausted)
	assert.Equal(t, 0, e.Attempts("products"), "counter must be cleared after surfacing")
}

func TestWithRetry_NonRetryableRunsOnce(t *testing.T) {
	e, delays := newTestEngine(nil)

	calls := 0
	_, err := WithRetry(context.Background(), e, func(context.Context) (int, error) {
		calls++
		return 0, &StatusError{Status: http.StatusUnauthorized, Message: "token expired"}
	}, "profile", ErrorContext{})

	var app *AppError
	require.True(t, errors.As(err, &app))
	assert.Equal(t, KindAuth, app.Kind)
	assert.Equal(t, "401", app.Code)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *delays)
}

func TestWithRetry_RecoversAndClearsCounter(t *testing.T) {
	e, _ := newTestEngine(nil)

	calls := 0
	v, err := WithRetry(context.Background(), e, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &StatusError{Status: http.StatusBadGateway}
		}
		return "ok", nil
	}, "flaky", ErrorContext{})

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 0, e.Attempts("flaky"))
}

func TestWithRetry_SharedOperationIDSharesBudget(t *testing.T) {
	e, _ := newTestEngine(nil)
	e.attempts["shared"] = 2

	calls := 0
	_, err := WithRetry(context.Background(), e, func(context.Context) (int, error) {
		calls++
		return 0, &NetworkError{Op: "dial"}
	}, "shared", ErrorContext{})

	require.Error(t, err)
	assert.Equal(t, 2, calls, "only the remaining budget is spent")
}

func TestWithRetry_StopsWhenContextDone(t *testing.T) {
	e := NewEngine(zerolog.Nop(), Options{BaseDelay: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := WithRetry(ctx, e, func(context.Context) (int, error) {
			calls++
			return 0, &NetworkError{Op: "dial"}
		}, "cancelled", ErrorContext{})
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		var app *AppError
		require.True(t, errors.As(err, &app))
		assert.Equal(t, KindNetwork, app.Kind)
	case <-time.After(5 * time.Second):
		t.Fatal("WithRetry did not return after cancellation")
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, e.Attempts("cancelled"))
}

func TestCreateError_HidesRawMessage(t *testing.T) {
	e, _ := newTestEngine(nil)
	raw := errors.New("pq: password authentication failed for user \"vytalle\"")

	app := e.CreateError(raw, ErrorContext{Component: "catalog", Action: "list", Metadata: map[string]any{"slug": "x"}})

	assert.Equal(t, KindUnknown, app.Kind)
	assert.False(t, strings.Contains(app.Message, "pq:"))
	assert.Equal(t, raw.Error(), app.Details["original_error"])
	assert.Equal(t, "unknown", app.Details["severity"])
	assert.Equal(t, "catalog", app.Details["component"])
	assert.Equal(t, "x", app.Details["slug"])
	assert.False(t, app.Timestamp.IsZero())
	assert.ErrorIs(t, app, raw)
	assert.Same(t, app, e.CreateError(app, ErrorContext{}))
}

func TestHandleAPICall_UsesFallback(t *testing.T) {
	obs := &recordingObserver{}
	e, _ := newTestEngine(obs)

	v, err := HandleAPICall(context.Background(), e,
		func(context.Context) ([]string, error) {
			return nil, &StatusError{Status: http.StatusServiceUnavailable}
		},
		func(_ context.Context, cause error) ([]string, error) {
			assert.Equal(t, KindServer, Classify(cause))
			return []string{"cached"}, nil
		},
		ErrorContext{Component: "catalog", Action: "list"},
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"cached"}, v)
	assert.Equal(t, []string{"catalog.list"}, obs.fallbacks)
}

func TestHandleAPICall_NoFallbackPropagates(t *testing.T) {
	e, _ := newTestEngine(nil)

	_, err := HandleAPICall[int](context.Background(), e,
		func(context.Context) (int, error) { return 0, &StatusError{Status: http.StatusNotFound} },
		nil, ErrorContext{},
	)

	var app *AppError
	require.True(t, errors.As(err, &app))
	assert.Equal(t, KindNotFound, app.Kind)
}

func TestHandleAPICall_FallbackErrorIsWrapped(t *testing.T) {
	e, _ := newTestEngine(nil)

	_, err := HandleAPICall(context.Background(), e,
		func(context.Context) (int, error) { return 0, &NetworkError{Op: "dial"} },
		func(_ context.Context, cause error) (int, error) { return 0, cause },
		ErrorContext{},
	)

	var app *AppError
	require.True(t, errors.As(err, &app))
	assert.Equal(t, KindNetwork, app.Kind)
}

func TestBackoff(t *testing.T) {
	e := NewEngine(zerolog.Nop(), Options{BaseDelay: 100 * time.Millisecond})
	assert.Equal(t, 100*time.Millisecond, e.Backoff(0))
	assert.Equal(t, 400*time.Millisecond, e.Backoff(2))
}

func TestBackoff_NeverOverflows(t *testing.T) {
	e := NewEngine(zerolog.Nop(), Options{})
	for _, attempt := range []int{8, 9, 34, 63, 64, 1000} {
		d := e.Backoff(attempt)
		assert.Positive(t, d, "attempt %d", attempt)
		assert.LessOrEqual(t, d, MaxBackoff, "attempt %d", attempt)
	}
	assert.Equal(t, MaxBackoff, e.Backoff(40))
}

func TestNewEngine_ClampsMaxRetries(t *testing.T) {
	e := NewEngine(zerolog.Nop(), Options{
		MaxRetries: 1000,
		Sleep:      func(context.Context, time.Duration) error { return nil },
	})
	calls := 0
	_, err := WithRetry(context.Background(), e, func(context.Context) (int, error) {
		calls++
		return 0, &NetworkError{Op: "dial"}
	}, "clamp", ErrorContext{})
	require.Error(t, err)
	assert.Equal(t, MaxRetriesLimit+1, calls)
}
