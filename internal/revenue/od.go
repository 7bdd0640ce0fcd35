package revenue

import "sort"

// DataPoint is one step of a cumulative booking curve
type DataPoint struct {
	DayX     int     `json:"day_x"`
	Bookings int     `json:"bookings"`
	Revenue  float64 `json:"revenue"`
}

// OD is a sellable origin-destination product of a service and the bookings sold for it
type OD struct {
	Origin      Stop      `json:"origin"`
	Destination Stop      `json:"destination"`
	Bookings    []Booking `json:"bookings"`
}

// NewOD creates an OD without bookings
func NewOD(origin, destination Stop) *OD {
	return &OD{
		Origin:      origin,
		Destination: destination,
		Bookings:    []Booking{},
	}
}

// Matches reports whether a booking was sold for this OD
func (od *OD) Matches(b Booking) bool {
	return od.Origin.Same(b.Origin) && od.Destination.Same(b.Destination)
}

// Revenue returns the sum of booking prices
func (od *OD) Revenue() float64 {
	total := 0.0
	for _, b := range od.Bookings {
		total += b.Price
	}
	return total
}

// History returns the cumulative bookings and revenue, one point per distinct sale day, ascending
func (od *OD) History() []DataPoint {
	sorted := make([]Booking, len(od.Bookings))
	copy(sorted, od.Bookings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SaleDayX < sorted[j].SaleDayX
	})

	history := []DataPoint{}
	for _, b := range sorted {
		last := len(history) - 1
		switch {
		case last < 0:
			history = append(history, DataPoint{DayX: b.SaleDayX, Bookings: 1, Revenue: b.Price})
		case history[last].DayX == b.SaleDayX:
			history[last].Bookings++
			history[last].Revenue += b.Price
		default:
			history = append(history, DataPoint{
				DayX:     b.SaleDayX,
				Bookings: history[last].Bookings + 1,
				Revenue:  history[last].Revenue + b.Price,
			})
		}
	}
	return history
}

// Forecast extends the booking curve over every day of the demand matrix.
//
// The call is destructive: on success pricing holds the seats left per price and demand holds
// the residual demand. Both are left untouched when an error is returned. Callers that need
// to forecast more than once must pass fresh copies (see Pricing.Clone and DemandMatrix.Clone).
func (od *OD) Forecast(pricing Pricing, demand DemandMatrix) ([]DataPoint, error) {
	result, err := od.Simulate(pricing, demand)
	if err != nil {
		return nil, err
	}
	result.Commit(pricing, demand)
	return result.Points, nil
}

// Simulate runs the forecast on snapshots of pricing and demand without mutating them
func (od *OD) Simulate(pricing Pricing, demand DemandMatrix) (*ForecastResult, error) {
	return RunForecast(od.History(), pricing, demand)
}
