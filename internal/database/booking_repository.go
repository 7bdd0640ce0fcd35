package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/smarttransit/revenue-backend/internal/models"
)

// BookingRepository handles database operations for the bookings table
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// GetManifest retrieves every booking of a service in the order they were recorded
func (r *BookingRepository) GetManifest(serviceID string) ([]models.Booking, error) {
	query := `
		SELECT id, service_id, origin_stop_code, destination_stop_code, sale_day_x, price, created_at
		FROM bookings
		WHERE service_id = $1
		ORDER BY created_at, id
	`

	bookings := []models.Booking{}
	if err := r.db.Select(&bookings, query, serviceID); err != nil {
		return nil, fmt.Errorf("failed to get passenger manifest: %w", err)
	}

	return bookings, nil
}

// Create inserts a booking and fills its ID and creation time
func (r *BookingRepository) Create(booking *models.Booking) error {
	query := `
		INSERT INTO bookings (id, service_id, origin_stop_code, destination_stop_code, sale_day_x, price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}

	err := r.db.QueryRow(query,
		booking.ID, booking.ServiceID, booking.OriginStopCode, booking.DestinationStopCode,
		booking.SaleDayX, booking.Price,
	).Scan(&booking.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}
