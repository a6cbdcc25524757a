package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"firds/shared/config"
	obsmocks "firds/shared/domain/observability/mocks"
	"firds/shared/domain/runtime"
	"firds/shared/domain/runtime/mocks"
	cwAdapter "firds/shared/infrastructure/observability/adapters/cloudwatch"
)

const scheduledEvent = `{
	"version": "0",
	"id": "89d1a02d-5ec7-412e-82f5-13505f849b41",
	"detail-type": "Scheduled Event",
	"source": "aws.events",
	"account": "123456789012",
	"time": "2021-01-19T06:00:00Z",
	"region": "ap-southeast-2",
	"resources": ["arn:aws:events:ap-southeast-2:123456789012:rule/firds-daily"],
	"detail": {}
}`

func TestCreate(t *testing.T) {
	logger, metrics := obsmocks.NewPermissiveLogger(), obsmocks.NewPermissiveMetrics()
	handler := &mocks.MockHandler{}

	cfg := config.DefaultConfig()
	cfg.Adapters.Runtime = "cli"
	rt, err := Create(cfg, handler, logger, metrics)
	require.NoError(t, err)
	assert.IsType(t, &onceRuntime{}, rt)

	cfg.Adapters.Runtime = "lambda"
	rt, err = Create(cfg, handler, logger, metrics)
	require.NoError(t, err)
	assert.IsType(t, &lambdaRuntime{}, rt)

	cfg.Adapters.Runtime = "rabbitmq"
	_, err = Create(cfg, handler, logger, metrics)
	assert.EqualError(t, err, "unsupported runtime adapter: rabbitmq")

	_, err = Create(cfg, nil, logger, metrics)
	assert.Error(t, err)
}

func TestOnceRuntime_Start(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		handler := &mocks.MockHandler{}
		handler.On("Handle", mock.Anything, mock.MatchedBy(func(tr runtime.Trigger) bool {
			return tr.Source == "cli" && tr.ID != ""
		})).Return("ok", nil).Once()

		rt := NewOnceRuntime(handler, obsmocks.NewPermissiveLogger(), obsmocks.NewPermissiveMetrics())
		assert.NoError(t, rt.Start(t.Context()))
		handler.AssertExpectations(t)
	})

	t.Run("failure is returned", func(t *testing.T) {
		handler := &mocks.MockHandler{}
		handler.On("Handle", mock.Anything, mock.Anything).Return(nil, errors.New("stage failed")).Once()

		metrics := obsmocks.NewPermissiveMetrics()
		rt := NewOnceRuntime(handler, obsmocks.NewPermissiveLogger(), metrics)

		assert.EqualError(t, rt.Start(t.Context()), "stage failed")
		metrics.AssertCalled(t, "IncrementCounter", "runtime.failures", map[string]string{"source": "cli"})
	})
}

func TestLambdaRuntime_HandleEvent(t *testing.T) {
	t.Run("scheduled event", func(t *testing.T) {
		handler := &mocks.MockHandler{}
		handler.On("Handle", mock.Anything, mock.MatchedBy(func(tr runtime.Trigger) bool {
			return tr.ID == "req-1" &&
				tr.Source == "schedule" &&
				tr.Timestamp.Equal(time.Date(2021, 1, 19, 6, 0, 0, 0, time.UTC))
		})).Return(map[string]string{"status": "ok"}, nil).Once()

		rt := NewLambdaRuntime(handler, obsmocks.NewPermissiveLogger(), obsmocks.NewPermissiveMetrics()).(*lambdaRuntime)
		ctx := lambdacontext.NewContext(t.Context(), &lambdacontext.LambdaContext{AwsRequestID: "req-1"})

		result, err := rt.handleEvent(ctx, json.RawMessage(scheduledEvent))
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"status": "ok"}, result)
		handler.AssertExpectations(t)
	})

	t.Run("direct invocation", func(t *testing.T) {
		var got runtime.Trigger
		handler := runtime.HandlerFunc(func(ctx context.Context, trigger runtime.Trigger) (interface{}, error) {
			got = trigger
			return nil, nil
		})

		rt := NewLambdaRuntime(handler, obsmocks.NewPermissiveLogger(), obsmocks.NewPermissiveMetrics()).(*lambdaRuntime)
		_, err := rt.handleEvent(t.Context(), json.RawMessage(`{}`))
		require.NoError(t, err)
		assert.Equal(t, "direct", got.Source)
		assert.NotEmpty(t, got.ID)
	})

	t.Run("handler error", func(t *testing.T) {
		handler := &mocks.MockHandler{}
		handler.On("Handle", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()

		rt := NewLambdaRuntime(handler, obsmocks.NewPermissiveLogger(), obsmocks.NewPermissiveMetrics()).(*lambdaRuntime)
		result, err := rt.handleEvent(t.Context(), json.RawMessage(`"ping"`))
		assert.EqualError(t, err, "boom")
		assert.Nil(t, result)
	})
}

type countingCloudWatch struct {
	calls  int
	datums int
}

func (c *countingCloudWatch) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	c.calls++
	c.datums += len(params.MetricData)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestLambdaRuntime_FlushesMetricsEveryInvocation(t *testing.T) {
	client := &countingCloudWatch{}
	metrics := cwAdapter.NewWithClient(client, "firds/test")

	pipeline := runtime.HandlerFunc(func(context.Context, runtime.Trigger) (interface{}, error) {
		metrics.IncrementCounter("stage.succeeded", map[string]string{"stage": "sink"})
		return nil, nil
	})
	handler := runtime.Chain(pipeline, runtime.WithFlush(metrics.Flush, time.Second, obsmocks.NewPermissiveLogger()))

	rt := NewLambdaRuntime(handler, obsmocks.NewPermissiveLogger(), obsmocks.NewPermissiveMetrics()).(*lambdaRuntime)
	for i := 0; i < 3; i++ {
		_, err := rt.handleEvent(t.Context(), json.RawMessage(scheduledEvent))
		require.NoError(t, err)
	}

	assert.Equal(t, 3, client.calls)
	assert.Equal(t, 3, client.datums, "each flush sends only that invocation's data")
}
