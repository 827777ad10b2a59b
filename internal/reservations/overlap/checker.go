// Package overlap decides whether a proposed interval collides with existing
// reservations on the same unit.
package overlap

import (
	"context"
	"time"
)

// Store answers the overlap query. The reservation repository implements it.
type Store interface {
	HasOverlap(ctx context.Context, unitID string, start, end time.Time, excludeID string) (bool, error)
}

type Checker struct {
	store Store
}

func NewChecker(store Store) *Checker {
	return &Checker{store: store}
}

// HasConflict reports whether [start, end) intersects a reservation on unitID
// other than excludeID. It must run inside the transaction that performs the
// write, with the unit lock held.
func (c *Checker) HasConflict(ctx context.Context, unitID string, start, end time.Time, excludeID string) (bool, error) {
	if !start.Before(end) {
		return false, nil
	}
	return c.store.HasOverlap(ctx, unitID, start, end, excludeID)
}
