package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	// ErrLockBusy means another request held the unit lock for the whole wait window.
	ErrLockBusy = errors.New("unit is busy")

	ErrLockNotHeld = errors.New("unit lock is not held by this owner")
)
