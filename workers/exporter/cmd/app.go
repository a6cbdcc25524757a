package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"firds/shared/config"
	"firds/shared/domain/observability"
	"firds/shared/domain/runtime"
	"firds/shared/domain/storage"
	infraobs "firds/shared/infrastructure/observability"
	infraruntime "firds/shared/infrastructure/runtime"
	infrastorage "firds/shared/infrastructure/storage"
	"firds/shared/infrastructure/storage/adapters/fs"
	"firds/workers/exporter/internal/domain/service"
	"firds/workers/exporter/internal/infrastructure/adapters/http"
	"firds/workers/exporter/internal/usecase"
)

// flushTimeout bounds the final Pushgateway/CloudWatch push
const flushTimeout = 10 * time.Second

// Dependencies holds all initialized infrastructure components
type Dependencies struct {
	workspace  storage.ObjectStorage
	remote     storage.ObjectStorage
	httpClient *http.Client
	logger     observability.Logger
	metrics    observability.Metrics
}

// Application holds the complete application stack
type Application struct {
	runtime runtime.Runtime
	logger  observability.Logger
	metrics observability.Metrics
}

// execute loads configuration, wires the exporter and runs it
func execute(cmd *cobra.Command, opts *runOptions, runtimeAdapter string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	overrides, err := flagOverrides(cmd, opts, runtimeAdapter)
	if err != nil {
		return err
	}

	cfg, err := loadConfiguration(opts.envFiles, overrides)
	if err != nil {
		return err
	}

	deps, err := initializeDependencies(cfg)
	if err != nil {
		return err
	}
	defer flushObservability(deps.logger)

	app, err := buildApplication(cfg, deps)
	if err != nil {
		return err
	}

	return startApplication(ctx, app)
}

// loadConfiguration loads and validates the application configuration
func loadConfiguration(envFiles []string, overrides func(*config.Config)) (*config.Config, error) {
	cfgProvider := config.GetProvider()
	for _, file := range envFiles {
		cfgProvider.AddEnvFile(file)
	}
	cfgProvider.AddOverride(overrides)

	if err := cfgProvider.Load(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfgProvider.Get()
}

// initializeDependencies sets up all infrastructure dependencies
func initializeDependencies(cfg *config.Config) (*Dependencies, error) {
	if err := initializeObservability(cfg); err != nil {
		return nil, err
	}

	logStartup(cfg)

	workspace, err := initializeWorkspace(cfg)
	if err != nil {
		return nil, err
	}

	var remote storage.ObjectStorage
	if cfg.Sink.Upload {
		if remote, err = initializeStorage(cfg); err != nil {
			return nil, err
		}
	}

	logger, metrics := observability.MustGetObservability("app")

	return &Dependencies{
		workspace:  workspace,
		remote:     remote,
		httpClient: createHTTPClient(cfg),
		logger:     logger,
		metrics:    metrics,
	}, nil
}

// initializeObservability sets up logging and metrics infrastructure
func initializeObservability(cfg *config.Config) error {
	if err := observability.Initialize(cfg, &infraobs.Factory{}); err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	return nil
}

// logStartup logs application startup information
func logStartup(cfg *config.Config) {
	logger, metrics := observability.MustGetObservability("main")

	logger.Info("Starting application",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
		"runtime", cfg.RuntimeAdapter(),
		"storage", cfg.Adapters.Storage,
		"upload", cfg.Sink.Upload)

	metrics.IncrementCounter("application.starts", nil)
}

// initializeWorkspace opens the local artifact directory
func initializeWorkspace(cfg *config.Config) (storage.ObjectStorage, error) {
	logger, metrics := observability.MustGetObservability("storage.workspace")

	workspace, err := fs.NewStorage(cfg.Workspace.Dir, logger, metrics)
	if err != nil {
		metrics.IncrementCounter("init.failures", nil)
		return nil, fmt.Errorf("failed to initialize workspace: %w", err)
	}
	return workspace, nil
}

// initializeStorage sets up the remote storage provider with observability
func initializeStorage(cfg *config.Config) (storage.ObjectStorage, error) {
	logger, metrics := observability.MustGetObservability("storage." + cfg.Adapters.Storage)

	factory := infrastorage.NewFactory(logger, metrics)

	if err := storage.Initialize(cfg, factory); err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		metrics.IncrementCounter("init.failures", nil)
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	logger.Info("Storage initialized successfully")
	metrics.IncrementCounter("init.success", nil)

	return storage.MustGetStorage(), nil
}

// createHTTPClient creates an HTTP client with observability
func createHTTPClient(cfg *config.Config) *http.Client {
	logger, metrics := observability.MustGetObservability("client.http")

	return http.NewClientWithConfig(cfg.HTTP).
		WithLogger(logger).
		WithMetrics(metrics)
}

// buildApplication assembles the application layers
func buildApplication(cfg *config.Config, deps *Dependencies) (*Application, error) {
	pipeline := createPipeline(cfg, deps)

	logger, metrics := observability.MustGetObservability("runtime." + cfg.RuntimeAdapter())

	// Lambda never returns from Start, so telemetry is flushed per run
	handler := runtime.Chain(pipeline,
		runtime.WithFlush(observability.Flush, flushTimeout, logger),
		runtime.WithRecovery(logger, metrics),
		runtime.WithTimeout(cfg.RunTimeout),
	)

	rt, err := infraruntime.Create(cfg, handler, logger, metrics)
	if err != nil {
		logger.Error("Failed to create runtime", "error", err)
		metrics.IncrementCounter("init.failures", nil)
		return nil, err
	}

	return &Application{
		runtime: rt,
		logger:  deps.logger,
		metrics: deps.metrics,
	}, nil
}

// createPipeline builds the business logic layer
func createPipeline(cfg *config.Config, deps *Dependencies) *usecase.ExportPipeline {
	downloadService := service.NewDownloadService(deps.httpClient, cfg.HTTP.MaxBodySize)

	logger, metrics := observability.MustGetObservability("usecase.export")

	return usecase.NewExportPipeline(
		cfg,
		downloadService,
		deps.workspace,
		deps.remote,
		logger,
		metrics,
	)
}

// startApplication starts the runtime and blocks until it is done
func startApplication(ctx context.Context, app *Application) error {
	app.logger.Info("Starting runtime")
	app.metrics.IncrementCounter("runtime.starts", nil)

	if err := app.runtime.Start(ctx); err != nil {
		app.logger.Error("Export failed", "error", err)
		app.metrics.IncrementCounter("start.failures", nil)
		return err
	}
	return nil
}

// flushObservability pushes buffered metrics and syncs the log file
func flushObservability(logger observability.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	if err := observability.Flush(ctx); err != nil {
		logger.Warn("Failed to flush observability", "error", err)
	}
}
