package models

// PricingTier represents the seats allocated to one price level of an OD
type PricingTier struct {
	ServiceID           string  `json:"service_id,omitempty" db:"service_id"`
	OriginStopCode      string  `json:"origin_stop_code,omitempty" db:"origin_stop_code"`
	DestinationStopCode string  `json:"destination_stop_code,omitempty" db:"destination_stop_code"`
	Price               float64 `json:"price" db:"price"`
	Seats               int     `json:"seats" db:"seats"`
}

// DemandEntry represents the unconstrained demand for one day-x and price level of an OD
type DemandEntry struct {
	ServiceID           string  `json:"service_id,omitempty" db:"service_id"`
	OriginStopCode      string  `json:"origin_stop_code,omitempty" db:"origin_stop_code"`
	DestinationStopCode string  `json:"destination_stop_code,omitempty" db:"destination_stop_code"`
	DayX                int     `json:"day_x" db:"day_x"`
	Price               float64 `json:"price" db:"price"`
	Demand              int     `json:"demand" db:"demand"`
}
