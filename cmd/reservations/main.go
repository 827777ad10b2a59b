package main

import (
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"stowaway/internal/reservations/events"
	"stowaway/internal/reservations/handler"
	"stowaway/internal/reservations/repository"
	"stowaway/internal/reservations/service"
	"stowaway/internal/reservations/validator"
	unitsrepo "stowaway/internal/units/repository"
	"stowaway/pkg/app"
	"stowaway/pkg/calendar"
	"stowaway/pkg/config"
	"stowaway/pkg/kafka"
	kafka_middleware "stowaway/pkg/kafka/middleware"
	"stowaway/pkg/metrics"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Reservations service")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	serverApp := app.NewApplication(cfg)

	publisher := initPublisher(cfg, collector, serverApp)
	reservationService := initServices(cfg, publisher, collector)

	serverApp.SetApp(handler.NewReservationHandler(reservationService, cfg.Log), collector, registry)
	serverApp.Run()
}

func initPublisher(cfg *config.Config, collector *metrics.Collector, serverApp *app.Application) events.Publisher {
	if !cfg.Kafka.Enabled() {
		cfg.Log.Warn("No Kafka brokers configured, reservation events are disabled")
		return events.NoopPublisher{}
	}

	topic := cfg.Kafka.ReservationsTopic
	producer, err := kafka.NewProducer(cfg.Kafka, topic, events.DLQTopic(topic), cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.MetricsProducerMiddleware(collector))

	serverApp.OnShutdown(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	cfg.Log.Info("Reservation events enabled", "topic", topic)
	return events.NewKafkaPublisher(producer)
}

func initServices(cfg *config.Config, publisher events.Publisher, collector *metrics.Collector) service.ReservationService {
	normalizer := calendar.NewNormalizer(calendar.SystemClock(), cfg.Location())

	reservationService := service.NewReservationService(
		repository.NewMongoReservationRepository(cfg),
		repository.NewMongoUnitLockRepository(cfg, calendar.SystemClock()),
		unitsrepo.NewMongoStorageUnitRepository(cfg),
		validator.NewReservationValidator(normalizer, cfg.Log),
		normalizer,
		publisher,
		collector,
		cfg,
	)

	cfg.Log.Info("Reservation service initialized",
		"database", cfg.MongoDatabaseName,
		"default_time_zone", cfg.DefaultTimeZone,
		"inactive_unit_policy", cfg.InactiveUnitPolicy,
	)
	return reservationService
}
