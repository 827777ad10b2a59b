package repository

import (
	"context"
	"fmt"
	"time"

	reservationserrors "stowaway/internal/reservations/errors"
	"stowaway/pkg/calendar"
	"stowaway/pkg/config"
	mongotx "stowaway/pkg/db/mongo"
	"stowaway/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	LockCollectionName = "Unit_locks"
)

// UnitLockRepository hands out per-unit advisory locks. Acquire returns an
// owner token that must be passed back to Release.
type UnitLockRepository interface {
	Acquire(ctx context.Context, unitID string) (string, error)
	Release(ctx context.Context, unitID, owner string) error
}

type mongoUnitLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	clock      calendar.Clock
}

func NewMongoUnitLockRepository(cfg *config.Config, clock calendar.Clock) UnitLockRepository {
	if clock == nil {
		clock = calendar.SystemClock()
	}
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoUnitLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
		clock:      clock,
	}
}

func (r *mongoUnitLockRepository) Acquire(ctx context.Context, unitID string) (string, error) {
	owner := uuid.NewString()
	err := retryUntil(ctx, r.cfg.LockWaitTimeout, r.cfg.LockRetryInterval, func(ctx context.Context) (bool, error) {
		return r.tryAcquire(ctx, unitID, owner)
	})
	if err != nil {
		return "", err
	}
	return owner, nil
}

// tryAcquire inserts the lock document, or takes it over once it has expired.
func (r *mongoUnitLockRepository) tryAcquire(ctx context.Context, unitID, owner string) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := r.clock.Now().UTC()
	lock := model.UnitLock{
		ID:        model.UnitLockID(unitID),
		Owner:     owner,
		ExpiresAt: now.Add(r.cfg.LockTTL),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err == nil {
		return true, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return false, fmt.Errorf("failed to acquire unit lock: %w", err)
	}

	result, err := r.collection.UpdateOne(ctx,
		expiredLockFilter(lock.ID, now),
		bson.M{"$set": bson.M{"owner": owner, "expires_at": lock.ExpiresAt, "created_at": now}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to take over expired unit lock: %w", err)
	}
	return result.ModifiedCount == 1, nil
}

func (r *mongoUnitLockRepository) Release(ctx context.Context, unitID, owner string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, ownedLockFilter(unitID, owner))
	if err != nil {
		return fmt.Errorf("failed to release unit lock: %w", err)
	}
	if result.DeletedCount == 0 {
		return reservationserrors.ErrLockNotHeld
	}
	return nil
}

// expiredLockFilter matches lockID only once its expiry has passed.
func expiredLockFilter(lockID string, now time.Time) bson.M {
	return bson.M{"_id": lockID, "expires_at": bson.M{"$lte": now}}
}

func ownedLockFilter(unitID, owner string) bson.M {
	return bson.M{"_id": model.UnitLockID(unitID), "owner": owner}
}

// retryUntil calls attempt every interval until it succeeds, fails, or wait
// elapses. Running out of time yields ErrLockBusy.
func retryUntil(ctx context.Context, wait, interval time.Duration, attempt func(ctx context.Context) (bool, error)) error {
	deadline := time.Now().Add(wait)
	for {
		ok, err := attempt(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if !time.Now().Add(interval).Before(deadline) {
			return reservationserrors.ErrLockBusy
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
