package database

import (
	"fmt"

	"github.com/smarttransit/revenue-backend/internal/models"
)

// InventoryRepository handles database operations for od_pricing and od_demand tables
type InventoryRepository struct {
	db DB
}

// NewInventoryRepository creates a new InventoryRepository
func NewInventoryRepository(db DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// GetPricing retrieves the seats available per price level for an OD
func (r *InventoryRepository) GetPricing(serviceID, origin, destination string) ([]models.PricingTier, error) {
	query := `
		SELECT service_id, origin_stop_code, destination_stop_code, price, seats
		FROM od_pricing
		WHERE service_id = $1 AND origin_stop_code = $2 AND destination_stop_code = $3
		ORDER BY price
	`

	tiers := []models.PricingTier{}
	if err := r.db.Select(&tiers, query, serviceID, origin, destination); err != nil {
		return nil, fmt.Errorf("failed to get pricing: %w", err)
	}

	return tiers, nil
}

// GetDemand retrieves the unconstrained demand matrix for an OD
func (r *InventoryRepository) GetDemand(serviceID, origin, destination string) ([]models.DemandEntry, error) {
	query := `
		SELECT service_id, origin_stop_code, destination_stop_code, day_x, price, demand
		FROM od_demand
		WHERE service_id = $1 AND origin_stop_code = $2 AND destination_stop_code = $3
		ORDER BY day_x, price
	`

	entries := []models.DemandEntry{}
	if err := r.db.Select(&entries, query, serviceID, origin, destination); err != nil {
		return nil, fmt.Errorf("failed to get demand matrix: %w", err)
	}

	return entries, nil
}
