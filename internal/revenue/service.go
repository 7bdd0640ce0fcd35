package revenue

import (
	"fmt"
	"math"
	"time"
)

// Service is one scheduled run of a vehicle between two or more stops on a departure date.
// It owns its legs and its ODs; legs and ODs do not point back at the service, the service
// resolves paths for them.
type Service struct {
	Name          string
	DepartureDate time.Time

	legs []Leg
	ods  []*OD

	now func() time.Time
}

// NewService creates a service without legs or ODs
func NewService(name string, departureDate time.Time) *Service {
	return &Service{
		Name:          name,
		DepartureDate: departureDate,
		legs:          []Leg{},
		ods:           []*OD{},
		now:           time.Now,
	}
}

// WithClock replaces the clock used by DayX
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// DayX returns the signed number of days between today and departure: negative before
// departure, 0 on departure day, positive afterwards
func (s *Service) DayX() int {
	today := calendarDay(s.now())
	departure := calendarDay(s.DepartureDate)
	return int(math.Round(today.Sub(departure).Hours() / 24))
}

// calendarDay keeps only the calendar date of t, as seen in its own location
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Legs returns the service legs
func (s *Service) Legs() []Leg {
	return s.legs
}

// ODs returns the service ODs in creation order
func (s *Service) ODs() []*OD {
	return s.ods
}

// Itinerary returns the ordered stops of the service, resolved from its legs
func (s *Service) Itinerary() ([]Stop, error) {
	return ResolveItinerary(s.legs)
}

// LoadItinerary replaces legs and ODs from an ordered list of stops: one leg per consecutive
// pair and one OD per ordered pair of stops. Previous legs, ODs and bookings are discarded.
func (s *Service) LoadItinerary(stops []Stop) error {
	if len(stops) < 2 {
		return fmt.Errorf("%w: at least 2 stops are required, got %d", ErrMalformedItinerary, len(stops))
	}

	seen := make(map[string]struct{}, len(stops))
	for _, stop := range stops {
		if _, ok := seen[stop.ID]; ok {
			return fmt.Errorf("%w: stop %s is visited twice", ErrMalformedItinerary, stop.ID)
		}
		seen[stop.ID] = struct{}{}
	}

	legs := make([]Leg, 0, len(stops)-1)
	ods := make([]*OD, 0, len(stops)*(len(stops)-1)/2)
	for i := 0; i < len(stops)-1; i++ {
		legs = append(legs, Leg{Origin: stops[i], Destination: stops[i+1]})
		for j := i + 1; j < len(stops); j++ {
			ods = append(ods, NewOD(stops[i], stops[j]))
		}
	}

	s.legs = legs
	s.ods = ods
	return nil
}

// LoadLegs replaces legs and ODs from an unordered leg set. The itinerary is resolved
// immediately so a malformed set is rejected before anything is replaced.
func (s *Service) LoadLegs(legs []Leg) error {
	itinerary, err := ResolveItinerary(legs)
	if err != nil {
		return err
	}
	return s.LoadItinerary(itinerary)
}

// LoadPassengerManifest appends each booking to the OD with the same origin and destination,
// keeping manifest order. Bookings that match no OD are not attached and are returned.
func (s *Service) LoadPassengerManifest(bookings []Booking) []Booking {
	unmatched := []Booking{}
	for _, b := range bookings {
		matched := false
		for _, od := range s.ods {
			if od.Matches(b) {
				od.Bookings = append(od.Bookings, b)
				matched = true
			}
		}
		if !matched {
			unmatched = append(unmatched, b)
		}
	}
	return unmatched
}

// OD returns the OD sold between two stops
func (s *Service) OD(origin, destination Stop) (*OD, bool) {
	for _, od := range s.ods {
		if od.Origin.Same(origin) && od.Destination.Same(destination) {
			return od, true
		}
	}
	return nil, false
}

// ODLegs returns the legs crossed by an OD, in travel order
func (s *Service) ODLegs(od *OD) ([]Leg, error) {
	itinerary, err := s.Itinerary()
	if err != nil {
		return nil, err
	}
	return ResolveODPath(od.Origin, od.Destination, itinerary, s.legs)
}

// Passengers returns every booking occupying a seat on the given leg, in OD order
func (s *Service) Passengers(leg Leg) ([]Booking, error) {
	itinerary, err := s.Itinerary()
	if err != nil {
		return nil, err
	}

	passengers := []Booking{}
	for _, od := range s.ods {
		path, err := ResolveODPath(od.Origin, od.Destination, itinerary, s.legs)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve legs of %s-%s: %w", od.Origin.ID, od.Destination.ID, err)
		}
		for _, crossed := range path {
			if crossed.Same(leg) {
				passengers = append(passengers, od.Bookings...)
				break
			}
		}
	}
	return passengers, nil
}
