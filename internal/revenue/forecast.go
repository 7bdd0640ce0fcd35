package revenue

import (
	"sort"
)

// Pricing maps a price level to the seats still available at that price
type Pricing map[float64]int

// Clone returns an independent copy
func (p Pricing) Clone() Pricing {
	clone := make(Pricing, len(p))
	for price, seats := range p {
		clone[price] = seats
	}
	return clone
}

// Prices returns the price levels in ascending order
func (p Pricing) Prices() []float64 {
	prices := make([]float64, 0, len(p))
	for price := range p {
		prices = append(prices, price)
	}
	sort.Float64s(prices)
	return prices
}

// Seats returns the total seats over all price levels
func (p Pricing) Seats() int {
	total := 0
	for _, seats := range p {
		total += seats
	}
	return total
}

// DemandMatrix maps a day-x to the unconstrained demand per price level
type DemandMatrix map[int]map[float64]int

// Clone returns an independent deep copy
func (d DemandMatrix) Clone() DemandMatrix {
	clone := make(DemandMatrix, len(d))
	for day, tiers := range d {
		clone[day] = cloneTiers(tiers)
	}
	return clone
}

// Days returns the day-x values in ascending order
func (d DemandMatrix) Days() []int {
	days := make([]int, 0, len(d))
	for day := range d {
		days = append(days, day)
	}
	sort.Ints(days)
	return days
}

func cloneTiers(tiers map[float64]int) map[float64]int {
	clone := make(map[float64]int, len(tiers))
	for price, demand := range tiers {
		clone[price] = demand
	}
	return clone
}

// Sale is one seat sold by the simulation
type Sale struct {
	DayX  int     `json:"day_x"`
	Price float64 `json:"price"`
}

// ForecastResult is the outcome of a forecast run: the cumulative curve, every simulated sale
// and the inventory and demand left afterwards
type ForecastResult struct {
	Points         []DataPoint  `json:"points"`
	Sales          []Sale       `json:"sales"`
	Remaining      Pricing      `json:"-"`
	ResidualDemand DemandMatrix `json:"-"`
}

// SoldByPrice counts the simulated sales per price level
func (r *ForecastResult) SoldByPrice() map[float64]int {
	sold := make(map[float64]int)
	for _, sale := range r.Sales {
		sold[sale.Price]++
	}
	return sold
}

// Commit writes the remaining seats and residual demand back into the caller's tables
func (r *ForecastResult) Commit(pricing Pricing, demand DemandMatrix) {
	for price, seats := range r.Remaining {
		pricing[price] = seats
	}
	for day, tiers := range r.ResidualDemand {
		if demand[day] == nil {
			demand[day] = make(map[float64]int, len(tiers))
		}
		for price, left := range tiers {
			demand[day][price] = left
		}
	}
}

// dayStep is the simulation state handed from one day to the next
type dayStep struct {
	point DataPoint
	seats Pricing
}

// RunForecast simulates sales day by day from the last history point. pricing and demand are
// read only; the resulting inventory and residual demand are carried in the result.
//
// For each day, price levels are served in ascending order. Each sale at a price also consumes
// one unit of demand at every equal or higher price that still has demand that day, since those
// passengers would have bought the cheaper seat.
func RunForecast(history []DataPoint, pricing Pricing, demand DemandMatrix) (*ForecastResult, error) {
	days := demand.Days()
	result := &ForecastResult{
		Points:         []DataPoint{},
		Sales:          []Sale{},
		Remaining:      pricing.Clone(),
		ResidualDemand: demand.Clone(),
	}
	if len(days) == 0 {
		return result, nil
	}

	seed := DataPoint{DayX: days[0] - 1}
	if len(history) > 0 {
		seed = history[len(history)-1]
	}
	if seed.DayX > days[0] {
		return nil, &StaleDemandError{LastHistoryDayX: seed.DayX, FirstDemandDayX: days[0]}
	}

	prices := pricing.Prices()
	step := dayStep{point: seed, seats: pricing.Clone()}
	for _, day := range days {
		var sales []Sale
		var residual map[float64]int
		step, residual, sales = simulateDay(day, step, demand[day], prices)
		result.Points = append(result.Points, step.point)
		result.Sales = append(result.Sales, sales...)
		result.ResidualDemand[day] = residual
	}
	result.Remaining = step.seats

	return result, nil
}

// simulateDay consumes one day of demand and returns the next state, the demand left for
// that day and the sales made. Neither prev nor tiers is modified.
func simulateDay(day int, prev dayStep, tiers map[float64]int, prices []float64) (dayStep, map[float64]int, []Sale) {
	next := dayStep{
		point: DataPoint{DayX: day, Bookings: prev.point.Bookings, Revenue: prev.point.Revenue},
		seats: prev.seats.Clone(),
	}
	left := cloneTiers(tiers)
	sales := []Sale{}

	for i, price := range prices {
		for left[price] > 0 && next.seats[price] > 0 {
			next.point.Bookings++
			next.point.Revenue += price
			next.seats[price]--
			sales = append(sales, Sale{DayX: day, Price: price})

			// Buy-down: equal and higher levels lose one unit of demand
			for _, upper := range prices[i:] {
				if left[upper] > 0 {
					left[upper]--
				}
			}
		}
	}

	return next, left, sales
}
