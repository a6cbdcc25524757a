package cloudwatch

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	calls []*cloudwatch.PutMetricDataInput
	err   error
}

func (f *fakeClient) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.calls = append(f.calls, params)
	if f.err != nil {
		return nil, f.err
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestMetrics_BuffersUntilFlush(t *testing.T) {
	client := &fakeClient{}
	metrics := NewWithClient(client, "firds/test")
	scoped := metrics.WithTags(map[string]string{"component": "pipeline", "env": "test"})

	scoped.IncrementCounter("stage.succeeded", map[string]string{"stage": "sink"})
	scoped.RecordHistogram("stage.duration", 1.25, nil)
	assert.Empty(t, client.calls)

	require.NoError(t, metrics.Flush(t.Context()))
	require.Len(t, client.calls, 1)

	call := client.calls[0]
	assert.Equal(t, "firds/test", aws.ToString(call.Namespace))
	require.Len(t, call.MetricData, 2)

	counter := call.MetricData[0]
	assert.Equal(t, "pipeline.stage.succeeded", aws.ToString(counter.MetricName))
	assert.Equal(t, types.StandardUnitCount, counter.Unit)
	assert.Equal(t, 1.0, aws.ToFloat64(counter.Value))

	names := make([]string, 0, len(counter.Dimensions))
	for _, d := range counter.Dimensions {
		names = append(names, aws.ToString(d.Name))
	}
	assert.Equal(t, []string{"component", "env", "stage"}, names)

	assert.Equal(t, 1.25, aws.ToFloat64(call.MetricData[1].Value))
}

func TestMetrics_FlushBatches(t *testing.T) {
	client := &fakeClient{}
	metrics := NewWithClient(client, "firds/test")

	for i := 0; i < 45; i++ {
		metrics.RecordGauge("records", float64(i), nil)
	}

	require.NoError(t, metrics.Flush(t.Context()))
	require.Len(t, client.calls, 3)
	assert.Len(t, client.calls[0].MetricData, 20)
	assert.Len(t, client.calls[2].MetricData, 5)

	// buffer is drained
	require.NoError(t, metrics.Flush(t.Context()))
	assert.Len(t, client.calls, 3)
}

func TestMetrics_FlushError(t *testing.T) {
	client := &fakeClient{err: errors.New("throttled")}
	metrics := NewWithClient(client, "firds/test")
	metrics.IncrementCounter("stage.failed", nil)

	err := metrics.Flush(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to put 1 of 1 metrics: throttled")
}
