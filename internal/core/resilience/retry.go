package resilience

import (
	"context"

	"github.com/vytalle/storefront/pkg/logger"
)

// Operation is a fallible producer.
type Operation[T any] func(ctx context.Context) (T, error)

// Fallback produces a substitute result after an operation has failed for
// good. cause is the surfaced *AppError.
type Fallback[T any] func(ctx context.Context, cause error) (T, error)

// WithRetry runs op, retrying NETWORK and SERVER failures up to the engine's
// MaxRetries with exponential backoff. Retry counts are tracked per
// operationID, so callers sharing an id share a budget. The returned error is
// always an *AppError.
func WithRetry[T any](ctx context.Context, e *Engine, op Operation[T], operationID string, ec ErrorContext) (T, error) {
	var zero T
	for {
		v, err := op(ctx)
		if err == nil {
			e.clearAttempts(operationID)
			return v, nil
		}

		app := e.CreateError(err, ec)
		attempt, retry := e.nextAttempt(operationID, app.Retryable)
		if !retry {
			if app.Retryable {
				e.observer.Exhausted(operationID, app.Kind)
			}
			return zero, app
		}

		delay := e.Backoff(attempt)
		e.observer.Retry(operationID, app.Kind, attempt+1)
		e.log.Info().
			Str("operation_id", operationID).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("retrying operation")

		if err := e.sleep(ctx, delay); err != nil {
			e.clearAttempts(operationID)
			e.log.Warn().Err(err).Str("operation_id", operationID).Msg("retry aborted")
			return zero, app
		}
	}
}

// HandleAPICall runs call through WithRetry under an id derived from ec. When
// it fails and fallback is non-nil, the fallback's result is returned in
// place of the error; the substitution is only visible in the logs.
func HandleAPICall[T any](ctx context.Context, e *Engine, call Operation[T], fallback Fallback[T], ec ErrorContext) (T, error) {
	operationID := ec.OperationID()

	v, err := WithRetry(ctx, e, call, operationID, ec)
	if err == nil || fallback == nil {
		return v, err
	}

	logger.Fallback(e.log, operationID, "fallback", err.Error())
	e.observer.Fallback(operationID)

	fv, ferr := fallback(ctx, err)
	if ferr != nil {
		return fv, e.CreateError(ferr, ec)
	}
	return fv, nil
}
