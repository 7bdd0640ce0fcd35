package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/smarttransit/revenue-backend/internal/revenue"
)

// PointList is a booking curve stored as JSONB
type PointList []revenue.DataPoint

// Value implements the driver.Valuer interface
func (p PointList) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p)
}

// Scan implements the sql.Scanner interface
func (p *PointList) Scan(src interface{}) error {
	if src == nil {
		*p = PointList{}
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported point list type %T", src)
	}
	return json.Unmarshal(raw, p)
}

// HistoryResponse is the booking history of one OD
type HistoryResponse struct {
	ServiceID   string              `json:"service_id"`
	Origin      string              `json:"origin"`
	Destination string              `json:"destination"`
	Points      []revenue.DataPoint `json:"points"`
}

// ForecastRequest carries optional pricing and demand overrides for a forecast.
// Parts left empty are loaded from storage.
type ForecastRequest struct {
	Pricing []PricingTier `json:"pricing,omitempty"`
	Demand  []DemandEntry `json:"demand,omitempty"`
}

// Validate validates the forecast request
func (r *ForecastRequest) Validate() error {
	seenPrice := make(map[float64]bool, len(r.Pricing))
	for _, tier := range r.Pricing {
		if tier.Price < 0 {
			return ErrInvalidInput("pricing: price cannot be negative")
		}
		if tier.Seats < 0 {
			return ErrInvalidInput(fmt.Sprintf("pricing: seats at price %g cannot be negative", tier.Price))
		}
		if seenPrice[tier.Price] {
			return ErrInvalidInput(fmt.Sprintf("pricing: price %g is listed twice", tier.Price))
		}
		seenPrice[tier.Price] = true
	}

	type cell struct {
		day   int
		price float64
	}
	seenCell := make(map[cell]bool, len(r.Demand))
	for _, entry := range r.Demand {
		if entry.DayX > 0 {
			return ErrInvalidInput(fmt.Sprintf("demand: day_x %d is after departure", entry.DayX))
		}
		if entry.Demand < 0 {
			return ErrInvalidInput(fmt.Sprintf("demand: demand at day %d price %g cannot be negative", entry.DayX, entry.Price))
		}
		key := cell{entry.DayX, entry.Price}
		if seenCell[key] {
			return ErrInvalidInput(fmt.Sprintf("demand: day %d price %g is listed twice", entry.DayX, entry.Price))
		}
		seenCell[key] = true
	}
	return nil
}

// PricingFromTiers builds the seat inventory table from pricing rows
func PricingFromTiers(tiers []PricingTier) revenue.Pricing {
	pricing := make(revenue.Pricing, len(tiers))
	for _, tier := range tiers {
		pricing[tier.Price] = tier.Seats
	}
	return pricing
}

// DemandFromEntries builds the demand matrix from demand rows
func DemandFromEntries(entries []DemandEntry) revenue.DemandMatrix {
	demand := make(revenue.DemandMatrix)
	for _, entry := range entries {
		if demand[entry.DayX] == nil {
			demand[entry.DayX] = make(map[float64]int)
		}
		demand[entry.DayX][entry.Price] = entry.Demand
	}
	return demand
}

// TiersFromPricing flattens a seat inventory table into rows sorted by price
func TiersFromPricing(pricing revenue.Pricing) []PricingTier {
	tiers := make([]PricingTier, 0, len(pricing))
	for _, price := range pricing.Prices() {
		tiers = append(tiers, PricingTier{Price: price, Seats: pricing[price]})
	}
	return tiers
}

// EntriesFromDemand flattens a demand matrix into rows sorted by day and price
func EntriesFromDemand(demand revenue.DemandMatrix) []DemandEntry {
	entries := []DemandEntry{}
	for _, day := range demand.Days() {
		prices := make([]float64, 0, len(demand[day]))
		for price := range demand[day] {
			prices = append(prices, price)
		}
		sort.Float64s(prices)
		for _, price := range prices {
			entries = append(entries, DemandEntry{DayX: day, Price: price, Demand: demand[day][price]})
		}
	}
	return entries
}

// ForecastResult is the API view of a forecast run
type ForecastResult struct {
	RunID       string              `json:"run_id,omitempty"`
	ServiceID   string              `json:"service_id"`
	Origin      string              `json:"origin"`
	Destination string              `json:"destination"`
	History     []revenue.DataPoint `json:"history"`
	Points      []revenue.DataPoint `json:"points"`
	Sales       []revenue.Sale      `json:"sales"`
	SoldByPrice []PricingTier       `json:"sold_by_price"`
	Remaining   []PricingTier       `json:"remaining"`
	Cached      bool                `json:"cached"`
}

// ForecastRun represents a persisted forecast
type ForecastRun struct {
	ID                  string    `json:"id" db:"id"`
	ServiceID           string    `json:"service_id" db:"service_id"`
	OriginStopCode      string    `json:"origin_stop_code" db:"origin_stop_code"`
	DestinationStopCode string    `json:"destination_stop_code" db:"destination_stop_code"`
	Points              PointList `json:"points" db:"points"`
	SeatsSold           int       `json:"seats_sold" db:"seats_sold"`
	Revenue             float64   `json:"revenue" db:"revenue"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

// ErrEmptyForecast is returned when a forecast run has no points to persist
var ErrEmptyForecast = errors.New("forecast has no points")

// NewForecastRun builds the persisted form of a forecast result
func NewForecastRun(result *ForecastResult) (*ForecastRun, error) {
	if len(result.Points) == 0 {
		return nil, ErrEmptyForecast
	}

	seatsSold := len(result.Sales)
	revenueSold := 0.0
	for _, sale := range result.Sales {
		revenueSold += sale.Price
	}

	return &ForecastRun{
		ServiceID:           result.ServiceID,
		OriginStopCode:      result.Origin,
		DestinationStopCode: result.Destination,
		Points:              PointList(result.Points),
		SeatsSold:           seatsSold,
		Revenue:             revenueSold,
	}, nil
}
