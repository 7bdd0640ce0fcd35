// Package scenario loads offline revenue scenarios from YAML files.
//
// A scenario describes one service (its stops, or an unordered set of legs), a passenger
// manifest and the pricing and demand tables of the ODs to forecast.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/smarttransit/revenue-backend/internal/revenue"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// File is the decoded form of a scenario file
type File struct {
	Service   ServiceSpec    `yaml:"service"`
	Stops     []StopSpec     `yaml:"stops"`
	Legs      []LegSpec      `yaml:"legs"`
	Bookings  []BookingSpec  `yaml:"bookings"`
	Forecasts []ForecastSpec `yaml:"forecasts"`
}

// ServiceSpec names the service and fixes its departure. DepartureDate wins over
// DepartureInDays when both are set.
type ServiceSpec struct {
	Name            string `yaml:"name"`
	DepartureDate   string `yaml:"departure_date"`
	DepartureInDays int    `yaml:"departure_in_days"`
}

// StopSpec is one stop in travel order
type StopSpec struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// LegSpec is one hop between two stop ids
type LegSpec struct {
	Origin      string `yaml:"origin"`
	Destination string `yaml:"destination"`
}

// BookingSpec is one sold seat
type BookingSpec struct {
	Origin      string  `yaml:"origin"`
	Destination string  `yaml:"destination"`
	SaleDayX    int     `yaml:"sale_day_x"`
	Price       float64 `yaml:"price"`
}

// ForecastSpec holds the inventory and demand of one OD
type ForecastSpec struct {
	Origin      string                  `yaml:"origin"`
	Destination string                  `yaml:"destination"`
	Pricing     map[float64]int         `yaml:"pricing"`
	Demand      map[int]map[float64]int `yaml:"demand"`
}

// Load reads and parses a scenario file
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a scenario document. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	file := &File{}
	if err := decoder.Decode(file); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := file.Validate(); err != nil {
		return nil, err
	}
	return file, nil
}

// Validate checks the scenario is self consistent before anything is built
func (f *File) Validate() error {
	if f.Service.Name == "" {
		return errors.New("scenario: service.name is required")
	}
	if f.Service.DepartureDate != "" {
		if _, err := time.Parse(dateLayout, f.Service.DepartureDate); err != nil {
			return fmt.Errorf("scenario: invalid service.departure_date: %w", err)
		}
	}
	if len(f.Stops) > 0 && len(f.Legs) > 0 {
		return errors.New("scenario: give either stops or legs, not both")
	}
	if len(f.Stops) == 0 && len(f.Legs) == 0 {
		return errors.New("scenario: stops or legs are required")
	}

	for i, booking := range f.Bookings {
		if booking.SaleDayX > 0 {
			return fmt.Errorf("scenario: booking %d sold after departure (day %d)", i, booking.SaleDayX)
		}
		if booking.Price < 0 {
			return fmt.Errorf("scenario: booking %d has a negative price", i)
		}
	}

	for _, forecast := range f.Forecasts {
		for price, seats := range forecast.Pricing {
			if seats < 0 {
				return fmt.Errorf("scenario: %s-%s has negative seats at price %g", forecast.Origin, forecast.Destination, price)
			}
		}
		for day, tiers := range forecast.Demand {
			if day > 0 {
				return fmt.Errorf("scenario: %s-%s has demand after departure (day %d)", forecast.Origin, forecast.Destination, day)
			}
			for price, demand := range tiers {
				if demand < 0 {
					return fmt.Errorf("scenario: %s-%s has negative demand at day %d price %g", forecast.Origin, forecast.Destination, day, price)
				}
			}
		}
	}

	return nil
}

// Departure resolves the departure date relative to now
func (f *File) Departure(now time.Time) time.Time {
	if f.Service.DepartureDate != "" {
		departure, _ := time.Parse(dateLayout, f.Service.DepartureDate)
		return departure
	}
	return now.AddDate(0, 0, f.Service.DepartureInDays)
}

// Build creates the service, attaches the manifest and returns the bookings that match no OD
func (f *File) Build(now func() time.Time) (*revenue.Service, []revenue.Booking, error) {
	service := revenue.NewService(f.Service.Name, f.Departure(now())).WithClock(now)

	names := make(map[string]string, len(f.Stops))
	for _, stop := range f.Stops {
		names[stop.ID] = stop.Name
	}
	stop := func(id string) revenue.Stop {
		return revenue.Stop{ID: id, Name: names[id]}
	}

	if len(f.Stops) > 0 {
		stops := make([]revenue.Stop, 0, len(f.Stops))
		for _, s := range f.Stops {
			stops = append(stops, revenue.Stop{ID: s.ID, Name: s.Name})
		}
		if err := service.LoadItinerary(stops); err != nil {
			return nil, nil, err
		}
	} else {
		legs := make([]revenue.Leg, 0, len(f.Legs))
		for _, leg := range f.Legs {
			legs = append(legs, revenue.Leg{Origin: stop(leg.Origin), Destination: stop(leg.Destination)})
		}
		if err := service.LoadLegs(legs); err != nil {
			return nil, nil, err
		}
	}

	bookings := make([]revenue.Booking, 0, len(f.Bookings))
	for _, b := range f.Bookings {
		bookings = append(bookings, revenue.Booking{
			Origin:      stop(b.Origin),
			Destination: stop(b.Destination),
			SaleDayX:    b.SaleDayX,
			Price:       b.Price,
		})
	}
	unmatched := service.LoadPassengerManifest(bookings)

	return service, unmatched, nil
}

// ForecastFor returns the forecast section of an OD
func (f *File) ForecastFor(origin, destination string) (ForecastSpec, bool) {
	for _, forecast := range f.Forecasts {
		if forecast.Origin == origin && forecast.Destination == destination {
			return forecast, true
		}
	}
	return ForecastSpec{}, false
}
