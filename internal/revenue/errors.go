package revenue

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedItinerary is returned when legs do not form a single simple path
	ErrMalformedItinerary = errors.New("malformed itinerary")

	// ErrUnreachableOD is returned when an OD destination cannot be reached from its origin
	ErrUnreachableOD = errors.New("unreachable origin-destination")

	// ErrStaleDemandData is returned when the demand matrix starts before the last known sale day
	ErrStaleDemandData = errors.New("demand matrix is not up to date")

	// ErrUnmatchedBooking is returned when a booking does not belong to any OD of the service
	ErrUnmatchedBooking = errors.New("booking matches no origin-destination")
)

// StaleDemandError describes a demand matrix that precedes the booking history
type StaleDemandError struct {
	LastHistoryDayX int
	FirstDemandDayX int
}

func (e *StaleDemandError) Error() string {
	return fmt.Sprintf("%s: demand starts at day %d but history ends at day %d",
		ErrStaleDemandData, e.FirstDemandDayX, e.LastHistoryDayX)
}

func (e *StaleDemandError) Unwrap() error { return ErrStaleDemandData }

// UnmatchedBookingError lists bookings that could not be attached to an OD
type UnmatchedBookingError struct {
	Bookings []Booking
}

func (e *UnmatchedBookingError) Error() string {
	if len(e.Bookings) == 1 {
		b := e.Bookings[0]
		return fmt.Sprintf("%s: %s-%s sold at day %d", ErrUnmatchedBooking, b.Origin.ID, b.Destination.ID, b.SaleDayX)
	}
	return fmt.Sprintf("%s: %d bookings", ErrUnmatchedBooking, len(e.Bookings))
}

func (e *UnmatchedBookingError) Unwrap() error { return ErrUnmatchedBooking }
