package runtime

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"firds/shared/domain/observability"
)

// Middleware wraps a Handler with cross-cutting behaviour
type Middleware func(next Handler) Handler

// Chain applies middlewares so the first one listed runs outermost
func Chain(h Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// WithRecovery converts a panic inside the handler into an error
func WithRecovery(logger observability.Logger, metrics observability.Metrics) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, trigger Trigger) (result interface{}, err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Panic recovered",
						"trigger_id", trigger.ID,
						"panic", fmt.Sprintf("%v", r),
						"stack", string(debug.Stack()))
					metrics.IncrementCounter("handler.panics", nil)

					result = nil
					err = fmt.Errorf("panic recovered: %v", r)
				}
			}()

			return next.Handle(ctx, trigger)
		})
	}
}

// WithTimeout bounds a run with a deadline. A zero timeout disables it.
func WithTimeout(timeout time.Duration) Middleware {
	return func(next Handler) Handler {
		if timeout <= 0 {
			return next
		}
		return HandlerFunc(func(ctx context.Context, trigger Trigger) (interface{}, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next.Handle(ctx, trigger)
		})
	}
}

// WithFlush pushes buffered telemetry after every run, failed runs
// included. A flush error is logged and never changes the run outcome.
func WithFlush(flush func(ctx context.Context) error, timeout time.Duration, logger observability.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, trigger Trigger) (interface{}, error) {
			defer func() {
				// The run context may already be done
				flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
				defer cancel()

				if err := flush(flushCtx); err != nil {
					logger.Warn("Failed to flush telemetry", "trigger_id", trigger.ID, "error", err)
				}
			}()

			return next.Handle(ctx, trigger)
		})
	}
}
