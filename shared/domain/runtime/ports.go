package runtime

import (
	"context"
	"time"
)

// Trigger describes what started a run
type Trigger struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"` // "cli", "schedule" or "direct"
	Timestamp time.Time `json:"timestamp"`
}

// Handler executes one run of the job. The result is returned to the
// caller of the runtime (the Lambda response, or discarded by the CLI).
type Handler interface {
	Handle(ctx context.Context, trigger Trigger) (interface{}, error)
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, trigger Trigger) (interface{}, error)

func (f HandlerFunc) Handle(ctx context.Context, trigger Trigger) (interface{}, error) {
	return f(ctx, trigger)
}

// Runtime drives a Handler until the process is done
type Runtime interface {
	Start(ctx context.Context) error
}
