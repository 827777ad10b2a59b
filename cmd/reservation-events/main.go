package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"stowaway/internal/reservations/events"
	"stowaway/pkg/config"
	"stowaway/pkg/kafka"
	kafka_middleware "stowaway/pkg/kafka/middleware"
	"stowaway/pkg/metrics"
)

const ServiceName = "reservation-events"

func main() {
	cfg := config.Load(ServiceName)
	if !cfg.Kafka.Enabled() {
		cfg.Log.Fatal("KAFKA_BROKERS must be set for the reservation events consumer")
	}

	cfg.Log.Info("Starting reservation events consumer",
		"topic", cfg.Kafka.ReservationsTopic,
		"group", cfg.Kafka.ConsumerGroup,
	)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	metricsServer := serveMetrics(cfg, registry)

	topic := cfg.Kafka.ReservationsTopic
	consumer, err := kafka.NewConsumer(cfg.Kafka, topic, cfg.Kafka.ConsumerGroup, events.DLQTopic(topic), events.AuditHandler(cfg.Log), cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(kafka_middleware.MetricsConsumerMiddleware(collector))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		cfg.Log.Info("Shutdown signal received, closing consumer")
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka consumer", "error", err)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			cfg.Log.Error("Metrics server shutdown failed", "error", err)
		}
	}()

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, kafka.ErrConsumerClosed) && !errors.Is(err, context.Canceled) {
		cfg.Log.Fatal("Consumer stopped unexpectedly", "error", err)
	}
	cfg.Log.Info("Reservation events consumer stopped")
}

// serveMetrics exposes /metrics for the consumer on the service port.
func serveMetrics(cfg *config.Config, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(registry))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cfg.Log.Error("Metrics server failed", "error", err)
		}
	}()
	return server
}
