package model

import "math"

const (
	ShippingServicePriority = "PRIORITY"
	MaxShippingWeightLbs    = 200
)

// ShippingEstimateRequest is the package description entered by the customer.
// Dimensions are informational and not sent to the carrier.
type ShippingEstimateRequest struct {
	DestinationZip string   `json:"destination_zip" validate:"required,max=50"`
	WeightLbs      float64  `json:"weight_lbs" validate:"gt=0,lte=200"`
	LengthInches   *float64 `json:"length_inches,omitempty" validate:"omitempty,gte=1,lte=100"`
	WidthInches    *float64 `json:"width_inches,omitempty" validate:"omitempty,gte=1,lte=100"`
	HeightInches   *float64 `json:"height_inches,omitempty" validate:"omitempty,gte=1,lte=100"`
}

type ShippingEstimate struct {
	DestinationZip string  `json:"destination_zip"`
	WeightLbs      float64 `json:"weight_lbs"`
	WeightOunces   int     `json:"weight_ounces"`
	Service        string  `json:"service"`
	Rate           Money   `json:"rate"`
}

// WeightOunces rounds pounds up to whole ounces, never below one.
func WeightOunces(lbs float64) int {
	oz := int(math.Ceil(lbs * 16))
	if oz < 1 {
		return 1
	}
	return oz
}
