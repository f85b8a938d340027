// Package resilience gives fallible operations one failure shape (AppError),
// a bounded exponential-backoff retry policy for transient failures and an
// optional fallback path.
package resilience

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second

	// MaxRetriesLimit bounds configurable retries.
	MaxRetriesLimit = 10
	// MaxBackoff caps a single wait between attempts.
	MaxBackoff = 5 * time.Minute
)

// Observer receives retry lifecycle signals, typically for metrics.
type Observer interface {
	Retry(operationID string, kind ErrorKind, attempt int)
	Exhausted(operationID string, kind ErrorKind)
	Fallback(operationID string)
}

type nopObserver struct{}

func (nopObserver) Retry(string, ErrorKind, int) {}
func (nopObserver) Exhausted(string, ErrorKind)  {}
func (nopObserver) Fallback(string)              {}

// Options tunes an Engine. Zero values take the defaults.
type Options struct {
	MaxRetries int
	BaseDelay  time.Duration
	// Sleep waits between attempts. Defaults to a context-aware timer.
	Sleep    func(ctx context.Context, d time.Duration) error
	Now      func() time.Time
	Observer Observer
}

// Engine owns the per-operation retry counters. Build one per process (or
// per test) with NewEngine; there is no package-level instance.
type Engine struct {
	mu       sync.Mutex
	attempts map[string]int

	maxRetries int
	baseDelay  time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	now        func() time.Time
	observer   Observer
	validate   *validator.Validate
	log        zerolog.Logger
}

func NewEngine(log zerolog.Logger, opts Options) *Engine {
	e := &Engine{
		attempts:   make(map[string]int),
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.BaseDelay,
		sleep:      opts.Sleep,
		now:        opts.Now,
		observer:   opts.Observer,
		validate:   validator.New(),
		log:        log,
	}
	if e.maxRetries <= 0 {
		e.maxRetries = DefaultMaxRetries
	}
	if e.maxRetries > MaxRetriesLimit {
		e.maxRetries = MaxRetriesLimit
	}
	if e.baseDelay <= 0 {
		e.baseDelay = DefaultBaseDelay
	}
	if e.sleep == nil {
		e.sleep = sleepContext
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.observer == nil {
		e.observer = nopObserver{}
	}
	return e
}

// CreateError wraps err into an AppError. An err that already is an
// *AppError is returned unchanged.
func (e *Engine) CreateError(err error, ec ErrorContext) *AppError {
	if app, ok := err.(*AppError); ok {
		return app
	}

	kind := Classify(err)
	details := map[string]any{
		"severity": kind.Severity(),
	}
	if err != nil {
		details["original_error"] = err.Error()
	}
	if ec.Component != "" {
		details["component"] = ec.Component
	}
	if ec.Action != "" {
		details["action"] = ec.Action
	}
	if ec.UserID != "" {
		details["user_id"] = ec.UserID
	}
	for k, v := range ec.Metadata {
		details[k] = v
	}

	app := &AppError{
		Kind:      kind,
		Message:   userMessages[kind],
		Details:   details,
		Timestamp: e.now(),
		Retryable: kind.Retryable(),
		cause:     err,
	}
	if status, ok := statusOf(err); ok {
		app.Code = strconv.Itoa(status)
	}

	e.logAppError(app, ec)
	return app
}

func (e *Engine) logAppError(app *AppError, ec ErrorContext) {
	ev := e.log.Warn()
	if app.Details["severity"] == "high" {
		ev = e.log.Error()
	}
	ev.Err(app.cause).
		Str("kind", string(app.Kind)).
		Str("component", ec.Component).
		Str("action", ec.Action).
		Bool("retryable", app.Retryable).
		Msg(app.Message)
}

// nextAttempt decides whether operationID may be retried. It returns the
// attempt count before incrementing, which drives the backoff exponent.
func (e *Engine) nextAttempt(operationID string, retryable bool) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := e.attempts[operationID]
	if !retryable || n >= e.maxRetries {
		delete(e.attempts, operationID)
		return n, false
	}
	e.attempts[operationID] = n + 1
	return n, true
}

func (e *Engine) clearAttempts(operationID string) {
	e.mu.Lock()
	delete(e.attempts, operationID)
	e.mu.Unlock()
}

// Attempts returns the retry count currently tracked for operationID.
func (e *Engine) Attempts(operationID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attempts[operationID]
}

// Backoff returns baseDelay * 2^attempt, capped at MaxBackoff.
func (e *Engine) Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := e.baseDelay
	for i := 0; i < attempt && d < MaxBackoff; i++ {
		d <<= 1
	}
	return min(d, MaxBackoff)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
