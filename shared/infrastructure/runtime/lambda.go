package runtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"

	"firds/shared/domain/observability"
	"firds/shared/domain/runtime"
)

// handles Lambda runtime integration
type lambdaRuntime struct {
	handler runtime.Handler
	logger  observability.Logger
	metrics observability.Metrics
}

// NewLambdaRuntime creates a new Lambda runtime
func NewLambdaRuntime(handler runtime.Handler, logger observability.Logger, metrics observability.Metrics) runtime.Runtime {
	return &lambdaRuntime{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

// Start begins the Lambda runtime. It blocks for the life of the process.
func (r *lambdaRuntime) Start(ctx context.Context) error {
	r.logger.Info("Starting Lambda runtime")
	r.metrics.IncrementCounter("lambda.starts", nil)

	lambda.StartWithOptions(r.handleEvent, lambda.WithContext(ctx))
	return nil
}

// handleEvent is the main Lambda entry point. Every event triggers one run.
func (r *lambdaRuntime) handleEvent(ctx context.Context, event json.RawMessage) (interface{}, error) {
	trigger := r.parseTrigger(ctx, event)

	r.logger.Info("Lambda invoked",
		"trigger_id", trigger.ID,
		"source", trigger.Source,
		"event_size", len(event))
	r.metrics.IncrementCounter("lambda.invocations", map[string]string{"source": trigger.Source})

	startTime := time.Now()
	result, err := r.handler.Handle(ctx, trigger)
	r.metrics.RecordHistogram("lambda.duration", time.Since(startTime).Seconds(),
		map[string]string{"source": trigger.Source})

	if err != nil {
		r.logger.Error("Invocation failed", "trigger_id", trigger.ID, "error", err)
		r.metrics.IncrementCounter("lambda.failures", map[string]string{"source": trigger.Source})
		return nil, err
	}

	return result, nil
}

// parseTrigger identifies scheduled EventBridge events; anything else is
// treated as a direct invocation
func (r *lambdaRuntime) parseTrigger(ctx context.Context, event json.RawMessage) runtime.Trigger {
	trigger := runtime.Trigger{
		ID:        uuid.NewString(),
		Source:    "direct",
		Timestamp: time.Now().UTC(),
	}

	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		trigger.ID = lc.AwsRequestID
	}

	var scheduled events.CloudWatchEvent
	if err := json.Unmarshal(event, &scheduled); err == nil && scheduled.DetailType != "" {
		trigger.Source = "schedule"
		if !scheduled.Time.IsZero() {
			trigger.Timestamp = scheduled.Time.UTC()
		}
		r.logger.Debug("Scheduled event received",
			"event_id", scheduled.ID,
			"detail_type", scheduled.DetailType,
			"event_source", scheduled.Source)
	}

	return trigger
}
