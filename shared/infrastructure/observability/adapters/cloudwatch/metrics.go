package cloudwatch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"firds/shared/config"
	"firds/shared/domain/observability"
)

// maxBatchSize keeps each PutMetricData call small
const maxBatchSize = 20

// PutMetricDataAPI is the subset of the CloudWatch client used here
type PutMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// buffer is shared by every tagged Metrics instance
type buffer struct {
	mu    sync.Mutex
	items []types.MetricDatum
}

// Metrics implements observability.Metrics using AWS CloudWatch Metrics.
// Data is buffered in memory until Flush.
type Metrics struct {
	client      PutMetricDataAPI
	namespace   string
	buffer      *buffer
	defaultTags map[string]string
	now         func() time.Time
}

// NewMetrics creates a new CloudWatch metrics client
func NewMetrics(cfg *config.Config) (*Metrics, error) {
	namespace := cfg.Observability.CloudWatchNamespace
	if namespace == "" {
		// Fallback to service-based namespace
		namespace = fmt.Sprintf("%s/%s", cfg.ServiceName, cfg.Environment)
	}

	// Determine region
	region := cfg.Observability.CloudWatchRegion
	if region == "" {
		region = cfg.Storage.S3.Region // Fallback to S3 region
	}

	if region == "" {
		return nil, fmt.Errorf("no AWS region specified for metrics")
	}

	// Load AWS configuration
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for metrics: %w", err)
	}

	return NewWithClient(cloudwatch.NewFromConfig(awsCfg), namespace), nil
}

// NewWithClient creates metrics over an existing client
func NewWithClient(client PutMetricDataAPI, namespace string) *Metrics {
	return &Metrics{
		client:      client,
		namespace:   namespace,
		buffer:      &buffer{},
		defaultTags: make(map[string]string),
		now:         time.Now,
	}
}

// WithTags returns a new Metrics instance with additional default tags
func (m *Metrics) WithTags(tags map[string]string) observability.Metrics {
	return &Metrics{
		client:      m.client,
		namespace:   m.namespace,
		buffer:      m.buffer,
		defaultTags: m.mergeTags(tags),
		now:         m.now,
	}
}

// IncrementCounter increments a counter metric
func (m *Metrics) IncrementCounter(name string, tags map[string]string) {
	m.record(name, 1, types.StandardUnitCount, tags)
}

// RecordHistogram records a value in a histogram
func (m *Metrics) RecordHistogram(name string, value float64, tags map[string]string) {
	m.record(name, value, types.StandardUnitNone, tags)
}

// RecordGauge records a gauge value
func (m *Metrics) RecordGauge(name string, value float64, tags map[string]string) {
	m.record(name, value, types.StandardUnitNone, tags)
}

func (m *Metrics) record(name string, value float64, unit types.StandardUnit, tags map[string]string) {
	mergedTags := m.mergeTags(tags)

	datum := types.MetricDatum{
		MetricName: aws.String(m.buildMetricName(name, mergedTags)),
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(m.now()),
		Dimensions: tagsToDimensions(mergedTags),
	}

	m.buffer.mu.Lock()
	m.buffer.items = append(m.buffer.items, datum)
	m.buffer.mu.Unlock()
}

// Flush sends buffered metrics to CloudWatch in batches. Batches that
// fail are dropped and reported in the returned error.
func (m *Metrics) Flush(ctx context.Context) error {
	m.buffer.mu.Lock()
	data := m.buffer.items
	m.buffer.items = nil
	m.buffer.mu.Unlock()

	var failed int
	var lastErr error
	for start := 0; start < len(data); start += maxBatchSize {
		end := min(start+maxBatchSize, len(data))

		_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(m.namespace),
			MetricData: data[start:end],
		})
		if err != nil {
			failed += end - start
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to put %d of %d metrics: %w", failed, len(data), lastErr)
	}
	return nil
}

// mergeTags merges default tags with provided tags
func (m *Metrics) mergeTags(tags map[string]string) map[string]string {
	merged := make(map[string]string, len(m.defaultTags)+len(tags))
	for k, v := range m.defaultTags {
		merged[k] = v
	}
	for k, v := range tags {
		merged[k] = v
	}
	return merged
}

// buildMetricName builds the metric name with optional component prefix
func (m *Metrics) buildMetricName(name string, tags map[string]string) string {
	if component, ok := tags["component"]; ok && component != "" {
		return fmt.Sprintf("%s.%s", component, name)
	}
	return name
}

// tagsToDimensions converts tags to CloudWatch dimensions, sorted by name
func tagsToDimensions(tags map[string]string) []types.Dimension {
	names := make([]string, 0, len(tags))
	for name, value := range tags {
		if value != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	dimensions := make([]types.Dimension, 0, len(names))
	for _, name := range names {
		dimensions = append(dimensions, types.Dimension{
			Name:  aws.String(name),
			Value: aws.String(tags[name]),
		})
	}
	return dimensions
}
