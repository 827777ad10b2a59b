package kafka_middleware

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"stowaway/pkg/kafka"
	"stowaway/pkg/logger"
	"stowaway/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	direction string
	outcome   string
}

type fakeRecorder struct {
	calls []recorded
}

func (f *fakeRecorder) RecordKafkaMessage(direction, outcome string) {
	f.calls = append(f.calls, recorded{direction, outcome})
}

func testMessage(t *testing.T) kafka.Message {
	t.Helper()
	msg, err := kafka.NewMessage().WithKey("unit-1").WithValue(map[string]string{"a": "b"}).WithEventType("reservation.created").Build()
	require.NoError(t, err)
	return msg
}

func TestMetricsMiddleware(t *testing.T) {
	rec := &fakeRecorder{}
	boom := errors.New("boom")

	ok := func(context.Context, kafka.Message) error { return nil }
	fail := func(context.Context, kafka.Message) error { return boom }

	require.NoError(t, MetricsProducerMiddleware(rec)(context.Background(), testMessage(t), ok))
	assert.ErrorIs(t, MetricsConsumerMiddleware(rec)(context.Background(), testMessage(t), fail), boom)

	assert.Equal(t, []recorded{
		{DirectionPublish, metrics.OutcomeSuccess},
		{DirectionConsume, metrics.OutcomeError},
	}, rec.calls)
}

func TestLoggingConsumerMiddleware_LogsEventType(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: logger.INFO, Format: logger.JSON, Output: &buf, Service: "test"})

	err := LoggingConsumerMiddleware(log)(context.Background(), testMessage(t), func(context.Context, kafka.Message) error { return nil })

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"event_type":"reservation.created"`)
	assert.Contains(t, buf.String(), "Processed message")
}

func TestLoggingProducerMiddleware_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: logger.INFO, Format: logger.JSON, Output: &buf, Service: "test"})

	err := LoggingProducerMiddleware(log)(context.Background(), testMessage(t), func(context.Context, kafka.Message) error {
		return errors.New("broker down")
	})

	require.Error(t, err)
	assert.Contains(t, buf.String(), "Failed to publish message")
	assert.Contains(t, buf.String(), "broker down")
}
