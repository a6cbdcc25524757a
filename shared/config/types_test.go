package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Storage.BucketOrPath = "firds-exports"
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError []string
	}{
		{
			name:   "defaults with bucket are valid",
			mutate: func(*Config) {},
		},
		{
			name: "upload disabled does not need a bucket",
			mutate: func(c *Config) {
				c.Sink.Upload = false
				c.Storage.BucketOrPath = ""
			},
		},
		{
			name: "upload enabled requires a bucket",
			mutate: func(c *Config) {
				c.Storage.BucketOrPath = ""
			},
			wantError: []string{"STORAGE_BUCKET_OR_PATH is required"},
		},
		{
			name: "unknown adapters are rejected",
			mutate: func(c *Config) {
				c.Adapters.Runtime = "openfaas"
				c.Adapters.Storage = "gcs"
				c.Adapters.Metrics = "statsd"
			},
			wantError: []string{
				"unsupported ADAPTER_RUNTIME: openfaas",
				"unsupported ADAPTER_STORAGE: gcs",
				"unsupported ADAPTER_METRICS: statsd",
			},
		},
		{
			name: "inverted date range",
			mutate: func(c *Config) {
				c.Source.From, c.Source.To = c.Source.To, c.Source.From
			},
			wantError: []string{"SOURCE_TO cannot be before SOURCE_FROM"},
		},
		{
			name: "unparsable date",
			mutate: func(c *Config) {
				c.Source.From = time.Time{}
			},
			wantError: []string{"SOURCE_FROM and SOURCE_TO must be dates"},
		},
		{
			name: "window and http ranges",
			mutate: func(c *Config) {
				c.Source.Start = -1
				c.Source.Rows = 0
				c.HTTP.Timeout = 0
				c.HTTP.MaxRetries = -1
				c.RunTimeout = -time.Second
			},
			wantError: []string{
				"SOURCE_START cannot be negative",
				"SOURCE_ROWS must be positive",
				"HTTP_TIMEOUT must be positive",
				"HTTP_MAX_RETRIES cannot be negative",
				"RUN_TIMEOUT cannot be negative",
			},
		},
		{
			name: "s3 needs a region",
			mutate: func(c *Config) {
				c.Storage.S3.Region = ""
			},
			wantError: []string{"AWS_REGION is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if len(tt.wantError) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), "configuration errors:")
			for _, want := range tt.wantError {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestConfig_RuntimeAdapter(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")
	t.Setenv("LAMBDA_TASK_ROOT", "")
	t.Setenv("AWS_EXECUTION_ENV", "")

	cfg := validConfig()
	assert.Equal(t, "cli", cfg.RuntimeAdapter())

	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "firds-exporter")
	assert.Equal(t, "lambda", cfg.RuntimeAdapter())

	cfg.Adapters.Runtime = "cli"
	assert.Equal(t, "cli", cfg.RuntimeAdapter())
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")
	t.Setenv("LAMBDA_TASK_ROOT", "")
	t.Setenv("AWS_EXECUTION_ENV", "")

	cfg := DefaultConfig()

	assert.Equal(t, "DLTINS", cfg.Source.FileType)
	assert.Equal(t, 0, cfg.Source.Start)
	assert.Equal(t, 100, cfg.Source.Rows)
	assert.Equal(t, "2021-01-17", cfg.Source.From.Format(DateLayout))
	assert.Equal(t, "2021-01-19", cfg.Source.To.Format(DateLayout))
	assert.Equal(t, "False", cfg.Extract.MissingIssuer)
	assert.Equal(t, "SteelEye_assignment.csv", cfg.Sink.Key)
	assert.Equal(t, "ap-southeast-2", cfg.Storage.S3.Region)
	assert.Equal(t, 300*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "download_log.log", cfg.Observability.LogFile)
	assert.Equal(t, ".", cfg.Workspace.Dir)
	assert.True(t, cfg.Sink.UseCRLF)
}
