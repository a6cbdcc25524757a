package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

// Provider manages configuration lifecycle and ensures singleton behavior
type Provider struct {
	config    *Config
	envFiles  []string
	overrides []func(*Config)
	mu        sync.RWMutex
	loaded    bool
}

var (
	instance *Provider
	once     sync.Once
)

// GetProvider returns the singleton configuration provider instance
func GetProvider() *Provider {
	once.Do(func() {
		instance = &Provider{}
	})
	return instance
}

// AddEnvFile registers an explicit .env file loaded after the default chain.
// Must be called before Load.
func (p *Provider) AddEnvFile(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.envFiles = append(p.envFiles, path)
}

// AddOverride registers a change applied after parsing and before
// validation, such as a command-line flag. Must be called before Load.
func (p *Provider) AddOverride(apply func(*Config)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.overrides = append(p.overrides, apply)
}

// Load loads configuration from environment variables and .env files
// This should be called once at application startup
func (p *Provider) Load() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loaded {
		return nil // Already loaded
	}

	// Load .env files in order of precedence
	if err := p.loadEnvFiles(); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}

	// Parse configuration from environment
	cfg, err := p.parseConfig()
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	for _, apply := range p.overrides {
		apply(cfg)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	p.config = cfg
	p.loaded = true
	return nil
}

// MustLoad loads configuration and panics on error
// Use this for application initialization where errors are fatal
func (p *Provider) MustLoad() {
	if err := p.Load(); err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
}

// Get returns the current configuration
// Returns error if configuration hasn't been loaded
func (p *Provider) Get() (*Config, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.loaded || p.config == nil {
		return nil, fmt.Errorf("configuration not loaded; call Load() first")
	}

	return p.config, nil
}

// MustGet returns the configuration or panics if not loaded
// Use this when you're certain configuration has been loaded
func (p *Provider) MustGet() *Config {
	cfg, err := p.Get()
	if err != nil {
		panic(fmt.Sprintf("failed to get configuration: %v", err))
	}
	return cfg
}

// Update applies overrides to the loaded configuration and re-validates it.
// The previous configuration is kept when validation fails.
func (p *Provider) Update(apply func(*Config)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded || p.config == nil {
		return fmt.Errorf("configuration not loaded; call Load() first")
	}

	updated := *p.config
	apply(&updated)

	if err := updated.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	p.config = &updated
	return nil
}

// IsLoaded returns whether configuration has been loaded
func (p *Provider) IsLoaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loaded
}

// Reset clears the configuration (useful for testing)
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.config = nil
	p.envFiles = nil
	p.overrides = nil
	p.loaded = false
}

// loadEnvFiles loads .env files in order of precedence
func (p *Provider) loadEnvFiles() error {
	// Load base .env file (optional)
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}

	// Load environment-specific file (optional)
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env != "" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			// Overload allows environment-specific values to take precedence
			if err := godotenv.Overload(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	// Load .env.local for local overrides (optional)
	if _, err := os.Stat(".env.local"); err == nil {
		if err := godotenv.Overload(".env.local"); err != nil {
			return fmt.Errorf("failed to load .env.local: %w", err)
		}
	}

	// Explicit files must exist
	for _, file := range p.envFiles {
		if err := godotenv.Overload(file); err != nil {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	return nil
}

// parseConfig parses configuration from environment variables
func (p *Provider) parseConfig() (*Config, error) {
	defaults := DefaultConfig()

	cfg := &Config{
		// Core
		Environment: getEnv("ENVIRONMENT", "local"),
		ServiceName: getEnv("SERVICE_NAME", defaults.ServiceName),
		LogLevel:    getEnv("LOG_LEVEL", defaults.LogLevel),
		Version:     getEnv("SERVICE_VERSION", defaults.Version),
		RunTimeout:  getDuration("RUN_TIMEOUT", "0s"),

		// Adapter selection
		Adapters: AdapterConfig{
			Runtime: getEnv("ADAPTER_RUNTIME", ""),
			Storage: getEnv("ADAPTER_STORAGE", defaults.Adapters.Storage),
			Logger:  getEnv("ADAPTER_LOGGER", defaults.Adapters.Logger),
			Metrics: getEnv("ADAPTER_METRICS", defaults.Adapters.Metrics),
		},

		// HTTP Client
		HTTP: HTTPConfig{
			Timeout:     getDuration("HTTP_TIMEOUT", "300s"),
			MaxRetries:  getInt("HTTP_MAX_RETRIES", defaults.HTTP.MaxRetries),
			UserAgent:   getEnv("HTTP_USER_AGENT", defaults.HTTP.UserAgent),
			MaxBodySize: getInt64("HTTP_MAX_BODY_SIZE", defaults.HTTP.MaxBodySize),
		},

		// FIRDS index query
		Source: SourceConfig{
			BaseURL:  getEnv("SOURCE_BASE_URL", DefaultSourceBaseURL),
			From:     getDate("SOURCE_FROM", DefaultSourceFrom),
			To:       getDate("SOURCE_TO", DefaultSourceTo),
			Start:    getInt("SOURCE_START", defaults.Source.Start),
			Rows:     getInt("SOURCE_ROWS", defaults.Source.Rows),
			FileType: getEnv("SOURCE_FILE_TYPE", DefaultSourceFileType),
		},

		Archive: ArchiveConfig{
			EntryName:    getEnv("ARCHIVE_ENTRY_NAME", ""),
			EchoDocument: getBool("ARCHIVE_ECHO_DOCUMENT", false),
		},

		Extract: ExtractConfig{
			Namespace:     getEnv("EXTRACT_NAMESPACE", DefaultExtractNamespace),
			Element:       getEnv("EXTRACT_ELEMENT", DefaultExtractElement),
			MissingIssuer: lookupEnv("EXTRACT_MISSING_ISSUER", DefaultExtractMissingIssuer),
		},

		Workspace: WorkspaceConfig{
			Dir:         getEnv("WORKSPACE_DIR", defaults.Workspace.Dir),
			IndexFile:   getEnv("WORKSPACE_INDEX_FILE", defaults.Workspace.IndexFile),
			ArchiveFile: getEnv("WORKSPACE_ARCHIVE_FILE", defaults.Workspace.ArchiveFile),
			OutputFile:  getEnv("WORKSPACE_OUTPUT_FILE", defaults.Workspace.OutputFile),
		},

		Sink: SinkConfig{
			Key:     getEnv("SINK_KEY", DefaultSinkKey),
			Upload:  getBool("SINK_UPLOAD", true),
			UseCRLF: getBool("SINK_USE_CRLF", defaults.Sink.UseCRLF),
		},

		// Storage
		Storage: StorageConfig{
			BucketOrPath: getEnv("STORAGE_BUCKET_OR_PATH", ""),
			MaxRetries:   getInt("STORAGE_MAX_RETRIES", defaults.Storage.MaxRetries),
			Timeout:      getDuration("STORAGE_TIMEOUT", "60s"),
			S3: S3Config{
				Region:              getEnv("AWS_REGION", defaults.Storage.S3.Region),
				AccessKeyID:         getEnv("AWS_ACCESS_KEY_ID", ""),
				SecretAccessKey:     getEnv("AWS_SECRET_ACCESS_KEY", ""),
				SessionToken:        getEnv("AWS_SESSION_TOKEN", ""),
				Endpoint:            getEnv("S3_ENDPOINT", ""),
				CredentialsSecretID: getEnv("S3_CREDENTIALS_SECRET_ID", ""),
			},
		},

		Observability: ObservabilityConfig{
			LogFile:             lookupEnv("LOG_FILE", defaults.Observability.LogFile),
			LogFileLevel:        getEnv("LOG_FILE_LEVEL", defaults.Observability.LogFileLevel),
			PushgatewayURL:      getEnv("METRICS_PUSHGATEWAY_URL", ""),
			MetricsNamespace:    getEnv("METRICS_NAMESPACE", defaults.Observability.MetricsNamespace),
			CloudWatchRegion:    getEnv("CLOUDWATCH_REGION", getEnv("AWS_REGION", defaults.Storage.S3.Region)),
			CloudWatchNamespace: getEnv("CLOUDWATCH_NAMESPACE", ""),
		},
	}

	return cfg, nil
}
