package runtime

import (
	"fmt"

	"firds/shared/config"
	"firds/shared/domain/observability"
	"firds/shared/domain/runtime"
)

// Create creates the appropriate runtime based on configuration
func Create(cfg *config.Config, handler runtime.Handler, logger observability.Logger, metrics observability.Metrics) (runtime.Runtime, error) {
	if handler == nil {
		return nil, fmt.Errorf("failed to create runtime: handler is required")
	}

	switch adapter := cfg.RuntimeAdapter(); adapter {
	case "lambda":
		return NewLambdaRuntime(handler, logger, metrics), nil
	case "cli":
		return NewOnceRuntime(handler, logger, metrics), nil
	default:
		return nil, fmt.Errorf("unsupported runtime adapter: %s", adapter)
	}
}
