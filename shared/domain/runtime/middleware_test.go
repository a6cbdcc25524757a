package runtime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"firds/shared/domain/runtime"
	"firds/shared/domain/runtime/mocks"
	"firds/shared/infrastructure/observability/adapters/noop"
)

var trigger = runtime.Trigger{ID: "run-1", Source: "cli", Timestamp: time.Unix(0, 0)}

func TestChain_Order(t *testing.T) {
	var calls []string
	tag := func(name string) runtime.Middleware {
		return func(next runtime.Handler) runtime.Handler {
			return runtime.HandlerFunc(func(ctx context.Context, tr runtime.Trigger) (interface{}, error) {
				calls = append(calls, name)
				return next.Handle(ctx, tr)
			})
		}
	}

	h := runtime.Chain(runtime.HandlerFunc(func(context.Context, runtime.Trigger) (interface{}, error) {
		calls = append(calls, "handler")
		return "ok", nil
	}), tag("outer"), tag("inner"))

	result, err := h.Handle(context.Background(), trigger)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, []string{"outer", "inner", "handler"}, calls)
}

func TestWithRecovery(t *testing.T) {
	h := runtime.WithRecovery(noop.NewLogger(), noop.NewMetrics())(
		runtime.HandlerFunc(func(context.Context, runtime.Trigger) (interface{}, error) {
			panic("boom")
		}))

	result, err := h.Handle(context.Background(), trigger)
	assert.Nil(t, result)
	assert.EqualError(t, err, "panic recovered: boom")
}

func TestWithRecovery_PassesThrough(t *testing.T) {
	next := new(mocks.MockHandler)
	next.On("Handle", mock.Anything, trigger).Return("report", nil)

	h := runtime.WithRecovery(noop.NewLogger(), noop.NewMetrics())(next)

	result, err := h.Handle(context.Background(), trigger)
	require.NoError(t, err)
	assert.Equal(t, "report", result)
	next.AssertExpectations(t)
}

func TestWithTimeout(t *testing.T) {
	t.Run("sets a deadline", func(t *testing.T) {
		h := runtime.WithTimeout(time.Minute)(
			runtime.HandlerFunc(func(ctx context.Context, _ runtime.Trigger) (interface{}, error) {
				_, ok := ctx.Deadline()
				return ok, nil
			}))

		result, err := h.Handle(context.Background(), trigger)
		require.NoError(t, err)
		assert.Equal(t, true, result)
	})

	t.Run("zero disables the deadline", func(t *testing.T) {
		h := runtime.WithTimeout(0)(
			runtime.HandlerFunc(func(ctx context.Context, _ runtime.Trigger) (interface{}, error) {
				_, ok := ctx.Deadline()
				return ok, nil
			}))

		result, err := h.Handle(context.Background(), trigger)
		require.NoError(t, err)
		assert.Equal(t, false, result)
	})

	t.Run("expired deadline reaches the handler", func(t *testing.T) {
		h := runtime.WithTimeout(time.Millisecond)(
			runtime.HandlerFunc(func(ctx context.Context, _ runtime.Trigger) (interface{}, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			}))

		_, err := h.Handle(context.Background(), trigger)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestWithFlush(t *testing.T) {
	t.Run("flushes after a failed run with a live context", func(t *testing.T) {
		var flushed int
		var flushErr error
		flush := func(ctx context.Context) error {
			flushed++
			flushErr = ctx.Err()
			return nil
		}

		ctx, cancel := context.WithCancel(context.Background())
		h := runtime.WithFlush(flush, time.Second, noop.NewLogger())(
			runtime.HandlerFunc(func(context.Context, runtime.Trigger) (interface{}, error) {
				cancel()
				return nil, context.Canceled
			}))

		_, err := h.Handle(ctx, trigger)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, flushed)
		assert.NoError(t, flushErr)
	})

	t.Run("flush error does not change the result", func(t *testing.T) {
		next := new(mocks.MockHandler)
		next.On("Handle", mock.Anything, trigger).Return("report", nil)

		h := runtime.WithFlush(func(context.Context) error {
			return errors.New("pushgateway unreachable")
		}, time.Second, noop.NewLogger())(next)

		result, err := h.Handle(context.Background(), trigger)
		require.NoError(t, err)
		assert.Equal(t, "report", result)
	})

	t.Run("flushes once per invocation", func(t *testing.T) {
		var flushed int
		h := runtime.WithFlush(func(context.Context) error {
			flushed++
			return nil
		}, time.Second, noop.NewLogger())(runtime.HandlerFunc(func(context.Context, runtime.Trigger) (interface{}, error) {
			return nil, nil
		}))

		for i := 0; i < 3; i++ {
			_, _ = h.Handle(context.Background(), trigger)
		}
		assert.Equal(t, 3, flushed)
	})
}
