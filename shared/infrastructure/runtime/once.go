package runtime

import (
	"context"
	"time"

	"github.com/google/uuid"

	"firds/shared/domain/observability"
	"firds/shared/domain/runtime"
)

// onceRuntime runs the handler a single time in the current process
type onceRuntime struct {
	handler runtime.Handler
	logger  observability.Logger
	metrics observability.Metrics
}

// NewOnceRuntime creates the command-line runtime
func NewOnceRuntime(handler runtime.Handler, logger observability.Logger, metrics observability.Metrics) runtime.Runtime {
	return &onceRuntime{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

// Start runs the handler and returns its error
func (r *onceRuntime) Start(ctx context.Context) error {
	trigger := runtime.Trigger{
		ID:        uuid.NewString(),
		Source:    "cli",
		Timestamp: time.Now().UTC(),
	}

	r.logger.Info("Starting run", "trigger_id", trigger.ID, "source", trigger.Source)
	r.metrics.IncrementCounter("runtime.invocations", map[string]string{"source": trigger.Source})

	startTime := time.Now()
	_, err := r.handler.Handle(ctx, trigger)
	r.metrics.RecordHistogram("runtime.duration", time.Since(startTime).Seconds(),
		map[string]string{"source": trigger.Source})

	if err != nil {
		r.logger.Error("Run failed", "trigger_id", trigger.ID, "error", err)
		r.metrics.IncrementCounter("runtime.failures", map[string]string{"source": trigger.Source})
		return err
	}

	r.logger.Info("Run completed", "trigger_id", trigger.ID)
	return nil
}
