package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/smarttransit/revenue-backend/internal/models"
)

// ServiceRepository handles database operations for services and service_stops tables
type ServiceRepository struct {
	db DB
}

// NewServiceRepository creates a new ServiceRepository
func NewServiceRepository(db DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// GetByID retrieves a service by ID
func (r *ServiceRepository) GetByID(serviceID string) (*models.ServiceRecord, error) {
	query := `
		SELECT id, service_number, departure_date, is_active, created_at, updated_at
		FROM services
		WHERE id = $1
	`

	service := &models.ServiceRecord{}
	err := r.db.Get(service, query, serviceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	return service, nil
}

// ListActive retrieves active services ordered by departure date
func (r *ServiceRepository) ListActive(limit int) ([]models.ServiceRecord, error) {
	query := `
		SELECT id, service_number, departure_date, is_active, created_at, updated_at
		FROM services
		WHERE is_active = true
		ORDER BY departure_date, service_number
		LIMIT $1
	`

	services := []models.ServiceRecord{}
	if err := r.db.Select(&services, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	return services, nil
}

// GetStops retrieves the calling points of a service in travel order
func (r *ServiceRepository) GetStops(serviceID string) ([]models.ServiceStop, error) {
	query := `
		SELECT id, service_id, stop_code, stop_name, stop_order
		FROM service_stops
		WHERE service_id = $1
		ORDER BY stop_order
	`

	stops := []models.ServiceStop{}
	if err := r.db.Select(&stops, query, serviceID); err != nil {
		return nil, fmt.Errorf("failed to get service stops: %w", err)
	}

	return stops, nil
}
