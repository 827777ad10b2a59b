package main

import (
	"context"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	reservationsrepo "stowaway/internal/reservations/repository"
	"stowaway/internal/seed"
	"stowaway/internal/units/handler"
	"stowaway/internal/units/repository"
	"stowaway/internal/units/service"
	"stowaway/internal/units/validator"
	"stowaway/pkg/app"
	"stowaway/pkg/calendar"
	"stowaway/pkg/config"
	"stowaway/pkg/metrics"
)

const ServiceName = "units"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Units service")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	unitService := initServices(cfg, collector)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewStorageUnitHandler(unitService, cfg.Log), collector, registry)
	serverApp.Run()
}

func initServices(cfg *config.Config, collector *metrics.Collector) service.StorageUnitService {
	unitRepo := repository.NewMongoStorageUnitRepository(cfg)
	reservationRepo := reservationsrepo.NewMongoReservationRepository(cfg)

	if cfg.SeedUnits {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
		defer cancel()
		if _, err := seed.EnsureUnits(ctx, unitRepo, cfg.Log); err != nil {
			cfg.Log.Fatal("Failed to seed storage units", "error", err)
		}
	}

	unitService := service.NewStorageUnitService(
		unitRepo,
		reservationRepo,
		reservationsrepo.NewMongoUnitLockRepository(cfg, calendar.SystemClock()),
		validator.NewStorageUnitValidator(cfg.Log),
		collector,
		cfg,
	)

	cfg.Log.Info("Storage unit service initialized", "database", cfg.MongoDatabaseName, "delete_policy", cfg.UnitDeletePolicy)
	return unitService
}
