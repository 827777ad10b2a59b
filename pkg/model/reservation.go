package model

import "time"

const MaxNotesLength = 240

type Reservation struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	UnitID    string    `json:"unit_id" bson:"unit_id"`
	StartUTC  time.Time `json:"start_utc" bson:"start_utc"`
	EndUTC    time.Time `json:"end_utc" bson:"end_utc"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Notes     string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// OwnedBy reports whether userID created the reservation.
func (r *Reservation) OwnedBy(userID string) bool {
	return userID != "" && r.UserID == userID
}

// ReservationDetails is a reservation joined with its unit. Unit is nil when
// the unit no longer exists.
type ReservationDetails struct {
	*Reservation
	Unit *StorageUnit `json:"unit,omitempty"`
}

// ReservationRequest carries calendar dates as entered by the user.
type ReservationRequest struct {
	UnitID    string `json:"unit_id" validate:"required,mongodb"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	TimeZone  string `json:"time_zone,omitempty" validate:"max=64"`
	Notes     string `json:"notes,omitempty" validate:"max=240"`
}

// Overlaps reports whether the half-open intervals [s1, e1) and [s2, e2) intersect.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}
