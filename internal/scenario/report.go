package scenario

import (
	"fmt"

	"github.com/smarttransit/revenue-backend/internal/revenue"
)

// Report is what an offline run prints
type Report struct {
	Service   string            `json:"service"`
	DayX      int               `json:"day_x"`
	Itinerary []revenue.Stop    `json:"itinerary"`
	Legs      []LegReport       `json:"legs"`
	ODs       []ODReport        `json:"ods"`
	Unmatched []revenue.Booking `json:"unmatched,omitempty"`
}

// LegReport is the booked load of one leg
type LegReport struct {
	Leg        string `json:"leg"`
	Passengers int    `json:"passengers"`
}

// ODReport is the history and, when inventory is known, the forecast of one OD
type ODReport struct {
	OD          string              `json:"od"`
	Legs        []string            `json:"legs"`
	History     []revenue.DataPoint `json:"history"`
	Forecast    []revenue.DataPoint `json:"forecast,omitempty"`
	Sales       []revenue.Sale      `json:"sales,omitempty"`
	SoldByPrice []Tier              `json:"sold_by_price,omitempty"`
	Remaining   []Tier              `json:"remaining,omitempty"`
}

// Tier is a seat count at one price level
type Tier struct {
	Price float64 `json:"price"`
	Seats int     `json:"seats"`
}

func tiers(pricing revenue.Pricing) []Tier {
	out := make([]Tier, 0, len(pricing))
	for _, price := range pricing.Prices() {
		out = append(out, Tier{Price: price, Seats: pricing[price]})
	}
	return out
}

// Filter restricts a report to one OD. Empty fields match every OD.
type Filter struct {
	Origin      string
	Destination string
}

func (f Filter) matches(od *revenue.OD) bool {
	return (f.Origin == "" || od.Origin.ID == f.Origin) &&
		(f.Destination == "" || od.Destination.ID == f.Destination)
}

// BuildReport resolves the service and forecasts every OD of the scenario that has inventory
func BuildReport(file *File, service *revenue.Service, unmatched []revenue.Booking, filter Filter) (*Report, error) {
	itinerary, err := service.Itinerary()
	if err != nil {
		return nil, err
	}

	report := &Report{
		Service:   service.Name,
		DayX:      service.DayX(),
		Itinerary: itinerary,
		Legs:      []LegReport{},
		ODs:       []ODReport{},
		Unmatched: unmatched,
	}

	for _, leg := range service.Legs() {
		passengers, err := service.Passengers(leg)
		if err != nil {
			return nil, err
		}
		report.Legs = append(report.Legs, LegReport{Leg: leg.String(), Passengers: len(passengers)})
	}

	for _, od := range service.ODs() {
		if !filter.matches(od) {
			continue
		}

		path, err := service.ODLegs(od)
		if err != nil {
			return nil, err
		}
		odReport := ODReport{
			OD:      od.Origin.ID + "-" + od.Destination.ID,
			Legs:    make([]string, 0, len(path)),
			History: od.History(),
		}
		for _, leg := range path {
			odReport.Legs = append(odReport.Legs, leg.String())
		}

		if section, ok := file.ForecastFor(od.Origin.ID, od.Destination.ID); ok {
			result, err := od.Simulate(revenue.Pricing(section.Pricing), revenue.DemandMatrix(section.Demand))
			if err != nil {
				return nil, fmt.Errorf("forecast %s: %w", odReport.OD, err)
			}
			odReport.Forecast = result.Points
			odReport.Sales = result.Sales
			odReport.SoldByPrice = tiers(revenue.Pricing(result.SoldByPrice()))
			odReport.Remaining = tiers(result.Remaining)
		}

		report.ODs = append(report.ODs, odReport)
	}

	return report, nil
}
