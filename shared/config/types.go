package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Core settings
	Environment string
	ServiceName string
	LogLevel    string
	Version     string
	RunTimeout  time.Duration // zero disables the per-run deadline

	// Component configurations
	Adapters      AdapterConfig
	HTTP          HTTPConfig
	Source        SourceConfig
	Archive       ArchiveConfig
	Extract       ExtractConfig
	Workspace     WorkspaceConfig
	Sink          SinkConfig
	Storage       StorageConfig
	Observability ObservabilityConfig
}

// AdapterConfig selects infrastructure implementations
type AdapterConfig struct {
	Runtime string // "cli" or "lambda"; auto-detected if empty
	Storage string // "s3" or "filesystem"
	Logger  string // "zap"
	Metrics string // "prometheus", "cloudwatch" or "noop"
}

// HTTPConfig holds HTTP client configuration
type HTTPConfig struct {
	Timeout     time.Duration
	MaxRetries  int
	UserAgent   string
	MaxBodySize int64
}

// SourceConfig describes the FIRDS file index query
type SourceConfig struct {
	BaseURL  string
	From     time.Time
	To       time.Time
	Start    int
	Rows     int
	FileType string
}

// ArchiveConfig controls archive entry selection
type ArchiveConfig struct {
	// EntryName is the document expected inside the archive. When empty
	// it is derived from the located file name.
	EntryName    string
	EchoDocument bool
}

// ExtractConfig describes the instrument elements to extract
type ExtractConfig struct {
	Namespace     string
	Element       string
	MissingIssuer string
}

// WorkspaceConfig holds the local artifact directory and file names
type WorkspaceConfig struct {
	Dir         string
	IndexFile   string
	ArchiveFile string
	OutputFile  string
}

// SinkConfig controls where the CSV output is published
type SinkConfig struct {
	Key     string
	Upload  bool
	UseCRLF bool
}

// StorageConfig holds remote object storage configuration
type StorageConfig struct {
	BucketOrPath string
	MaxRetries   int
	Timeout      time.Duration
	S3           S3Config
}

// S3Config holds S3-specific settings
type S3Config struct {
	Region              string
	AccessKeyID         string
	SecretAccessKey     string
	SessionToken        string
	Endpoint            string // MinIO/LocalStack only
	CredentialsSecretID string // Secrets Manager secret with upload credentials
}

// ObservabilityConfig holds logging and metrics settings
type ObservabilityConfig struct {
	LogFile             string
	LogFileLevel        string
	PushgatewayURL      string
	MetricsNamespace    string
	CloudWatchRegion    string
	CloudWatchNamespace string
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	var errors []string

	// Core validations
	if c.ServiceName == "" {
		errors = append(errors, "SERVICE_NAME is required")
	}

	switch c.Adapters.Runtime {
	case "", "cli", "lambda":
	default:
		errors = append(errors, fmt.Sprintf("unsupported ADAPTER_RUNTIME: %s", c.Adapters.Runtime))
	}
	switch c.Adapters.Storage {
	case "s3", "filesystem":
	default:
		errors = append(errors, fmt.Sprintf("unsupported ADAPTER_STORAGE: %s", c.Adapters.Storage))
	}
	switch c.Adapters.Metrics {
	case "prometheus", "cloudwatch", "noop":
	default:
		errors = append(errors, fmt.Sprintf("unsupported ADAPTER_METRICS: %s", c.Adapters.Metrics))
	}

	// Range validations
	if c.RunTimeout < 0 {
		errors = append(errors, "RUN_TIMEOUT cannot be negative")
	}
	if c.HTTP.Timeout <= 0 {
		errors = append(errors, "HTTP_TIMEOUT must be positive")
	}
	if c.HTTP.MaxRetries < 0 {
		errors = append(errors, "HTTP_MAX_RETRIES cannot be negative")
	}
	if c.HTTP.MaxBodySize <= 0 {
		errors = append(errors, "HTTP_MAX_BODY_SIZE must be positive")
	}

	// Source query
	if c.Source.BaseURL == "" {
		errors = append(errors, "SOURCE_BASE_URL is required")
	}
	if c.Source.From.IsZero() || c.Source.To.IsZero() {
		errors = append(errors, "SOURCE_FROM and SOURCE_TO must be dates (YYYY-MM-DD)")
	} else if c.Source.To.Before(c.Source.From) {
		errors = append(errors, "SOURCE_TO cannot be before SOURCE_FROM")
	}
	if c.Source.Start < 0 {
		errors = append(errors, "SOURCE_START cannot be negative")
	}
	if c.Source.Rows <= 0 {
		errors = append(errors, "SOURCE_ROWS must be positive")
	}
	if c.Source.FileType == "" {
		errors = append(errors, "SOURCE_FILE_TYPE is required")
	}

	if c.Extract.Element == "" {
		errors = append(errors, "EXTRACT_ELEMENT is required")
	}
	if c.Workspace.Dir == "" {
		errors = append(errors, "WORKSPACE_DIR is required")
	}
	if c.Sink.Key == "" {
		errors = append(errors, "SINK_KEY is required")
	}

	if c.Sink.Upload {
		if c.Storage.BucketOrPath == "" {
			errors = append(errors, "STORAGE_BUCKET_OR_PATH is required when SINK_UPLOAD is enabled")
		}
		if c.Adapters.Storage == "s3" && c.Storage.S3.Region == "" {
			errors = append(errors, "AWS_REGION is required for the s3 storage adapter")
		}
	}
	if c.Storage.MaxRetries < 0 {
		errors = append(errors, "STORAGE_MAX_RETRIES cannot be negative")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// RuntimeAdapter returns the configured runtime, detecting Lambda when unset
func (c *Config) RuntimeAdapter() string {
	if c.Adapters.Runtime != "" {
		return c.Adapters.Runtime
	}
	if IsLambda() {
		return "lambda"
	}
	return "cli"
}
