package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/smarttransit/revenue-backend/internal/models"
)

// ForecastRunRepository handles database operations for the forecast_runs table
type ForecastRunRepository struct {
	db DB
}

// NewForecastRunRepository creates a new ForecastRunRepository
func NewForecastRunRepository(db DB) *ForecastRunRepository {
	return &ForecastRunRepository{db: db}
}

// Create stores a forecast run and fills its ID and creation time
func (r *ForecastRunRepository) Create(run *models.ForecastRun) error {
	query := `
		INSERT INTO forecast_runs (
			id, service_id, origin_stop_code, destination_stop_code, points, seats_sold, revenue
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	err := r.db.QueryRow(query,
		run.ID, run.ServiceID, run.OriginStopCode, run.DestinationStopCode,
		run.Points, run.SeatsSold, run.Revenue,
	).Scan(&run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create forecast run: %w", err)
	}

	return nil
}

// ListByOD retrieves the latest forecast runs of an OD, newest first
func (r *ForecastRunRepository) ListByOD(serviceID, origin, destination string, limit int) ([]models.ForecastRun, error) {
	query := `
		SELECT id, service_id, origin_stop_code, destination_stop_code, points, seats_sold, revenue, created_at
		FROM forecast_runs
		WHERE service_id = $1 AND origin_stop_code = $2 AND destination_stop_code = $3
		ORDER BY created_at DESC
		LIMIT $4
	`

	runs := []models.ForecastRun{}
	if err := r.db.Select(&runs, query, serviceID, origin, destination, limit); err != nil {
		return nil, fmt.Errorf("failed to list forecast runs: %w", err)
	}

	return runs, nil
}
