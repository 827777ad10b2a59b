package kafka_middleware

import (
	"context"

	"stowaway/pkg/kafka"
	"stowaway/pkg/metrics"
)

const (
	DirectionPublish = "publish"
	DirectionConsume = "consume"
)

// Recorder is satisfied by *metrics.Collector.
type Recorder interface {
	RecordKafkaMessage(direction, outcome string)
}

func MetricsProducerMiddleware(recorder Recorder) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		err := next(ctx, msg)
		recorder.RecordKafkaMessage(DirectionPublish, outcome(err))
		return err
	}
}

func MetricsConsumerMiddleware(recorder Recorder) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		err := next(ctx, msg)
		recorder.RecordKafkaMessage(DirectionConsume, outcome(err))
		return err
	}
}

func outcome(err error) string {
	if err != nil {
		return metrics.OutcomeError
	}
	return metrics.OutcomeSuccess
}
