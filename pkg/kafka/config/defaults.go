package kafka_config

import "time"

const (
	// Empty means lifecycle events are not published.
	DefaultKafkaBrokers           = ""
	DefaultKafkaReservationsTopic = "reservations.lifecycle"
	DefaultKafkaConsumerGroup     = "reservation-events"

	// Reservation events are small JSON documents; one per write.
	DefaultProducerBatchSize    = 1
	DefaultProducerMaxAttempts  = 3
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"
	DefaultProducerWriteTimeout = 5 * time.Second

	DefaultConsumerStartOffset    = -2
	DefaultConsumerMinBytes       = 1
	DefaultConsumerMaxBytes       = 1024 * 1024 // 1MB
	DefaultConsumerMaxWait        = 500 * time.Millisecond
	DefaultConsumerCommitInterval = 1 * time.Second
	DefaultConsumerMaxRetries     = 3
)
