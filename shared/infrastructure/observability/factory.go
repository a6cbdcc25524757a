package infraobs

import (
	"fmt"

	"firds/shared/config"
	"firds/shared/domain/observability"
	cwAdapter "firds/shared/infrastructure/observability/adapters/cloudwatch"
	"firds/shared/infrastructure/observability/adapters/noop"
	promAdapter "firds/shared/infrastructure/observability/adapters/prometheus"
	"firds/shared/infrastructure/observability/adapters/zaplog"
)

type Factory struct{}

func (f *Factory) Create(cfg *config.Config) (*observability.ObservabilityComponents, error) {
	// Validate config
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	logger, err := f.createLogger(cfg)
	if err != nil {
		return nil, err
	}

	metrics, err := f.createMetrics(cfg)
	if err != nil {
		return nil, err
	}

	return &observability.ObservabilityComponents{
		Logger:  logger,
		Metrics: metrics,
	}, nil
}

func (f *Factory) createLogger(cfg *config.Config) (observability.Logger, error) {
	switch cfg.Adapters.Logger {
	case "zap", "":
		logger, err := zaplog.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create zap logger: %w", err)
		}
		return logger, nil
	default:
		return nil, fmt.Errorf("unsupported logger adapter: %s", cfg.Adapters.Logger)
	}
}

func (f *Factory) createMetrics(cfg *config.Config) (observability.Metrics, error) {
	switch cfg.Adapters.Metrics {
	case "prometheus":
		return promAdapter.New(cfg), nil
	case "cloudwatch":
		metrics, err := cwAdapter.NewMetrics(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create CloudWatch metrics: %w", err)
		}
		return metrics, nil
	case "noop":
		return noop.NewMetrics(), nil
	default:
		return nil, fmt.Errorf("unsupported metrics adapter: %s", cfg.Adapters.Metrics)
	}
}
