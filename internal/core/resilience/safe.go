package resilience

import (
	"context"
	"fmt"
)

// SafeAsync runs fn on its own goroutine and returns its value, or def when
// fn fails, panics or ctx is done first. It never returns an error; failures
// are only logged.
func SafeAsync[T any](ctx context.Context, e *Engine, fn Operation[T], def T, ec ErrorContext) T {
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		v, err := fn(ctx)
		done <- result{v: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			e.CreateError(r.err, ec)
			return def
		}
		return r.v
	case <-ctx.Done():
		e.CreateError(ctx.Err(), ec)
		return def
	}
}

// SafeFn is the synchronous form of SafeAsync.
func SafeFn[T any](e *Engine, fn func() (T, error), def T, ec ErrorContext) (out T) {
	defer func() {
		if r := recover(); r != nil {
			e.CreateError(fmt.Errorf("panic: %v", r), ec)
			out = def
		}
	}()

	v, err := fn()
	if err != nil {
		e.CreateError(err, ec)
		return def
	}
	return v
}
