package kafka_config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config describes the reservation lifecycle stream. An empty broker list
// disables publishing.
type Config struct {
	Brokers           []string
	ReservationsTopic string
	ConsumerGroup     string

	Producer ProducerConfig
	Consumer ConsumerConfig
}

type ProducerConfig struct {
	MaxAttempts  int
	RequireAcks  int    // -1 = all, 0 = none, 1 = leader only
	Compression  string // "none", "gzip", "snappy", "lz4", "zstd"
	WriteTimeout time.Duration
}

type ConsumerConfig struct {
	StartOffset    int64 // -1 = newest, -2 = oldest
	MaxWait        time.Duration
	CommitInterval time.Duration
	MaxRetries     int
}

// FromEnv reads the Kafka configuration from the environment without validating it.
func FromEnv() *Config {
	return &Config{
		Brokers:           splitBrokers(getEnvStr(EnvKafkaBrokers, DefaultKafkaBrokers)),
		ReservationsTopic: getEnvStr(EnvKafkaReservationsTopic, DefaultKafkaReservationsTopic),
		ConsumerGroup:     getEnvStr(EnvKafkaConsumerGroup, DefaultKafkaConsumerGroup),
		Producer: ProducerConfig{
			MaxAttempts:  getEnvInt(EnvKafkaProducerMaxAttempts, DefaultProducerMaxAttempts),
			RequireAcks:  getEnvInt(EnvKafkaProducerRequireAcks, DefaultProducerRequireAcks),
			Compression:  getEnvStr(EnvKafkaProducerCompression, DefaultProducerCompression),
			WriteTimeout: getEnvDuration(EnvKafkaProducerWriteTimeout, DefaultProducerWriteTimeout),
		},
		Consumer: ConsumerConfig{
			StartOffset:    int64(getEnvInt(EnvKafkaConsumerStartOffset, DefaultConsumerStartOffset)),
			MaxWait:        getEnvDuration(EnvKafkaConsumerMaxWait, DefaultConsumerMaxWait),
			CommitInterval: getEnvDuration(EnvKafkaConsumerCommitInterval, DefaultConsumerCommitInterval),
			MaxRetries:     getEnvInt(EnvKafkaConsumerMaxRetries, DefaultConsumerMaxRetries),
		},
	}
}

// Enabled reports whether any broker is configured.
func (cfg *Config) Enabled() bool {
	return len(cfg.Brokers) > 0
}

var (
	validCompressions = []string{"none", "gzip", "snappy", "lz4", "zstd"}
	validAcks         = []int{-1, 0, 1}
)

// Validate checks the stream settings. A disabled config is valid; callers
// that need Kafka check Enabled themselves.
func (cfg *Config) Validate() error {
	checks := []struct {
		failed  bool
		message string
	}{
		{cfg.ReservationsTopic == "", "ReservationsTopic cannot be empty"},
		{cfg.ConsumerGroup == "", "ConsumerGroup cannot be empty"},
		{cfg.Producer.MaxAttempts <= 0, fmt.Sprintf("Producer.MaxAttempts must be positive, got: %d", cfg.Producer.MaxAttempts)},
		{cfg.Producer.WriteTimeout <= 0, fmt.Sprintf("Producer.WriteTimeout must be positive, got: %s", cfg.Producer.WriteTimeout)},
		{!contains(validCompressions, cfg.Producer.Compression), fmt.Sprintf("Producer.Compression must be one of %v, got: %s", validCompressions, cfg.Producer.Compression)},
		{!contains(validAcks, cfg.Producer.RequireAcks), fmt.Sprintf("Producer.RequireAcks must be -1, 0, or 1, got: %d", cfg.Producer.RequireAcks)},
		{cfg.Consumer.StartOffset != -1 && cfg.Consumer.StartOffset != -2, fmt.Sprintf("Consumer.StartOffset must be -1 (newest) or -2 (oldest), got: %d", cfg.Consumer.StartOffset)},
		{cfg.Consumer.MaxWait <= 0, fmt.Sprintf("Consumer.MaxWait must be positive, got: %s", cfg.Consumer.MaxWait)},
		{cfg.Consumer.CommitInterval <= 0, fmt.Sprintf("Consumer.CommitInterval must be positive, got: %s", cfg.Consumer.CommitInterval)},
		{cfg.Consumer.MaxRetries < 0, fmt.Sprintf("Consumer.MaxRetries cannot be negative, got: %d", cfg.Consumer.MaxRetries)},
	}

	var failures []string
	for _, check := range checks {
		if check.failed {
			failures = append(failures, check.message)
		}
	}
	if len(failures) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("Kafka configuration validation failed:\n")
	for i, failure := range failures {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, failure)
	}
	return fmt.Errorf("%s", b.String())
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func splitBrokers(raw string) []string {
	var brokers []string
	for _, broker := range strings.Split(raw, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}

func getEnvStr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
