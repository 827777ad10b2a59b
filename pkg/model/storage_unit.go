package model

import "time"

// MaxMonthlyPrice is 999999.99 dollars.
const MaxMonthlyPrice Money = 99999999

type StorageUnit struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name         string    `json:"name" bson:"name" validate:"required,max=120"`
	Size         string    `json:"size" bson:"size" validate:"required,max=60"`
	MonthlyPrice Money     `json:"monthly_price" bson:"monthly_price" validate:"gte=0,lte=99999999"`
	IsActive     bool      `json:"is_active" bson:"is_active"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// StorageUnitInput is the editable part of a unit. IsActive defaults to true on create.
type StorageUnitInput struct {
	Name         string `json:"name"`
	Size         string `json:"size"`
	MonthlyPrice Money  `json:"monthly_price"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

// StorageUnitDetails is a unit plus its reservations, shown to administrators.
type StorageUnitDetails struct {
	*StorageUnit
	Reservations []*Reservation `json:"reservations,omitempty"`
}
