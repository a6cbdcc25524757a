package config

import (
	"path/filepath"
	"time"
)

// Defaults for the FIRDS file index and the DLTINS document schema
const (
	DefaultSourceBaseURL  = "https://registers.esma.europa.eu/solr/esma_registers_firds_files/select"
	DefaultSourceFrom     = "2021-01-17"
	DefaultSourceTo       = "2021-01-19"
	DefaultSourceFileType = "DLTINS"

	DefaultExtractNamespace     = "urn:iso:std:iso:20022:tech:xsd:auth.036.001.02"
	DefaultExtractElement       = "FinInstrmGnlAttrbts"
	DefaultExtractMissingIssuer = "False"

	DefaultSinkKey = "SteelEye_assignment.csv"

	DefaultLogFile = "download_log.log"

	// LambdaTempDir is the only writable directory inside AWS Lambda
	LambdaTempDir = "/tmp"
)

// DefaultHTTPConfig returns sensible defaults for HTTP client configuration
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:     300 * time.Second,
		MaxRetries:  0,
		UserAgent:   "firds-exporter/1.0",
		MaxBodySize: 1 << 30, // 1GB
	}
}

// DefaultSourceConfig returns the index query used by the original export
func DefaultSourceConfig() SourceConfig {
	from, _ := ParseDate(DefaultSourceFrom)
	to, _ := ParseDate(DefaultSourceTo)
	return SourceConfig{
		BaseURL:  DefaultSourceBaseURL,
		From:     from,
		To:       to,
		Start:    0,
		Rows:     100,
		FileType: DefaultSourceFileType,
	}
}

// DefaultExtractConfig returns the auth.036 instrument extraction settings
func DefaultExtractConfig() ExtractConfig {
	return ExtractConfig{
		Namespace:     DefaultExtractNamespace,
		Element:       DefaultExtractElement,
		MissingIssuer: DefaultExtractMissingIssuer,
	}
}

// DefaultWorkspaceConfig returns the artifact file names written next to the process
func DefaultWorkspaceConfig() WorkspaceConfig {
	return WorkspaceConfig{
		Dir:         ".",
		IndexFile:   "file.xml",
		ArchiveFile: "DLTINS.zip",
		OutputFile:  "output.csv",
	}
}

// DefaultStorageConfig returns sensible defaults for storage configuration
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		MaxRetries: 3,
		Timeout:    60 * time.Second,
		S3: S3Config{
			Region: "ap-southeast-2",
		},
	}
}

// DefaultConfig returns a complete configuration with sensible defaults
// This is useful for testing or when you want to start with defaults and override specific parts
func DefaultConfig() *Config {
	cfg := &Config{
		Environment: "development",
		ServiceName: "firds-exporter",
		LogLevel:    "info",
		Version:     "1.0.0",

		Adapters: AdapterConfig{
			Storage: "s3",
			Logger:  "zap",
			Metrics: "prometheus",
		},

		HTTP:      DefaultHTTPConfig(),
		Source:    DefaultSourceConfig(),
		Archive:   ArchiveConfig{},
		Extract:   DefaultExtractConfig(),
		Workspace: DefaultWorkspaceConfig(),
		Sink: SinkConfig{
			Key:     DefaultSinkKey,
			Upload:  true,
			UseCRLF: true,
		},
		Storage: DefaultStorageConfig(),
		Observability: ObservabilityConfig{
			LogFile:          DefaultLogFile,
			LogFileLevel:     "debug",
			MetricsNamespace: "firds",
		},
	}

	if IsLambda() {
		cfg.Workspace.Dir = LambdaTempDir
		cfg.Observability.LogFile = filepath.Join(LambdaTempDir, DefaultLogFile)
	}
	return cfg
}
