package model

import "time"

// UnitLock serializes check-then-write on one storage unit across processes.
// Owner identifies the holder so only it can release the lock.
type UnitLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

func UnitLockID(unitID string) string {
	return "unit_lock_" + unitID
}
