package models

import (
	"time"
)

// Booking represents one sold seat in the passenger manifest of a service
type Booking struct {
	ID                  string    `json:"id" db:"id"`
	ServiceID           string    `json:"service_id" db:"service_id"`
	OriginStopCode      string    `json:"origin_stop_code" db:"origin_stop_code"`
	DestinationStopCode string    `json:"destination_stop_code" db:"destination_stop_code"`
	SaleDayX            int       `json:"sale_day_x" db:"sale_day_x"`
	Price               float64   `json:"price" db:"price"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

// CreateBookingRequest represents the request to add a booking to a manifest
type CreateBookingRequest struct {
	OriginStopCode      string  `json:"origin_stop_code" binding:"required"`
	DestinationStopCode string  `json:"destination_stop_code" binding:"required"`
	SaleDayX            int     `json:"sale_day_x"`
	Price               float64 `json:"price"`
}

// Validate validates the create booking request
func (r *CreateBookingRequest) Validate() error {
	if r.OriginStopCode == "" || r.DestinationStopCode == "" {
		return ErrInvalidInput("origin_stop_code and destination_stop_code are required")
	}
	if r.OriginStopCode == r.DestinationStopCode {
		return ErrInvalidInput("origin and destination must be different stops")
	}
	if r.SaleDayX > 0 {
		return ErrInvalidInput("sale_day_x cannot be after departure (must be <= 0)")
	}
	if r.Price < 0 {
		return ErrInvalidInput("price cannot be negative")
	}
	return nil
}
