package main

import (
	"context"
	"time"

	mongoMigration "stowaway/internal/migrations/mongo"
	"stowaway/internal/seed"
	"stowaway/internal/units/repository"
	"stowaway/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Mongo migration job")
	migrateMongo(ctx, cfg)
	seedUnits(ctx, cfg)
	cfg.Log.Info("Migration completed successfully")
}

func migrateMongo(ctx context.Context, cfg *config.Config) {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
}

func seedUnits(ctx context.Context, cfg *config.Config) {
	if _, err := seed.EnsureUnits(ctx, repository.NewMongoStorageUnitRepository(cfg), cfg.Log); err != nil {
		cfg.Log.Fatal("Seeding storage units failed", "error", err)
	}
}
