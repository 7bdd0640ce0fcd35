package models

import (
	"time"
)

// ServiceRecord represents a scheduled service run stored in the services table
type ServiceRecord struct {
	ID            string    `json:"id" db:"id"`
	ServiceNumber string    `json:"service_number" db:"service_number"`
	DepartureDate time.Time `json:"departure_date" db:"departure_date"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// ServiceStop represents one calling point of a service, ordered by StopOrder
type ServiceStop struct {
	ID        string `json:"id" db:"id"`
	ServiceID string `json:"service_id" db:"service_id"`
	StopCode  string `json:"stop_code" db:"stop_code"`
	StopName  string `json:"stop_name" db:"stop_name"`
	StopOrder int    `json:"stop_order" db:"stop_order"`
}

// ServiceSummary is the API view of a service
type ServiceSummary struct {
	ID            string `json:"id"`
	ServiceNumber string `json:"service_number"`
	DepartureDate string `json:"departure_date"`
	DayX          int    `json:"day_x"`
	StopCount     int    `json:"stop_count"`
	LegCount      int    `json:"leg_count"`
	ODCount       int    `json:"od_count"`
	BookingCount  int    `json:"booking_count"`
}

// StopView is a stop as returned by the API
type StopView struct {
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

// LegView is a leg as returned by the API
type LegView struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// ItineraryResponse lists the ordered stops and legs of a service
type ItineraryResponse struct {
	ServiceID string     `json:"service_id"`
	Stops     []StopView `json:"stops"`
	Legs      []LegView  `json:"legs"`
}

// LegLoad is the booked occupancy of one leg
type LegLoad struct {
	LegView
	Passengers int     `json:"passengers"`
	Revenue    float64 `json:"revenue"`
}

// ODSummary is the API view of an origin-destination product
type ODSummary struct {
	Origin       string    `json:"origin"`
	Destination  string    `json:"destination"`
	BookingCount int       `json:"booking_count"`
	Revenue      float64   `json:"revenue"`
	Legs         []LegView `json:"legs"`
}
