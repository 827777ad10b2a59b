// Package seed populates an empty catalog with the default storage units.
package seed

import (
	"context"
	"fmt"

	"stowaway/pkg/logger"
	"stowaway/pkg/model"
)

// UnitStore is the part of the unit repository seeding needs.
type UnitStore interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, unit *model.StorageUnit) error
}

func DefaultUnits() []*model.StorageUnit {
	return []*model.StorageUnit{
		{Name: "Small Locker A", Size: "5x5", MonthlyPrice: model.MustParseMoney("39.99"), IsActive: true},
		{Name: "Standard Unit B", Size: "5x10", MonthlyPrice: model.MustParseMoney("79.99"), IsActive: true},
		{Name: "Large Unit C", Size: "10x10", MonthlyPrice: model.MustParseMoney("129.99"), IsActive: true},
	}
}

// EnsureUnits inserts DefaultUnits when the catalog is empty and returns how
// many were created. A non-empty catalog is left untouched.
func EnsureUnits(ctx context.Context, store UnitStore, log *logger.Logger) (int, error) {
	count, err := store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count storage units: %w", err)
	}
	if count > 0 {
		log.Info("Storage unit catalog already populated, skipping seed", "count", count)
		return 0, nil
	}

	created := 0
	for _, unit := range DefaultUnits() {
		if err := store.Create(ctx, unit); err != nil {
			return created, fmt.Errorf("failed to seed storage unit %q: %w", unit.Name, err)
		}
		created++
	}

	log.Info("Seeded storage unit catalog", "created", created)
	return created, nil
}
