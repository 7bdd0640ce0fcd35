package revenue

import "fmt"

// Stop is a physical point where a service calls. Stops are identified by ID.
type Stop struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Same reports whether both values denote the same stop
func (s Stop) Same(other Stop) bool {
	return s.ID == other.ID
}

func (s Stop) String() string {
	if s.Name == "" || s.Name == s.ID {
		return s.ID
	}
	return fmt.Sprintf("%s (%s)", s.ID, s.Name)
}

// Booking is one sold seat between two stops
type Booking struct {
	Origin      Stop    `json:"origin"`
	Destination Stop    `json:"destination"`
	SaleDayX    int     `json:"sale_day_x"` // 0 is departure day, negative is before departure
	Price       float64 `json:"price"`
}

// Leg is one directed hop between two consecutive stops of a service
type Leg struct {
	Origin      Stop `json:"origin"`
	Destination Stop `json:"destination"`
}

// Same reports whether both legs join the same pair of stops
func (l Leg) Same(other Leg) bool {
	return l.Origin.Same(other.Origin) && l.Destination.Same(other.Destination)
}

func (l Leg) String() string {
	return l.Origin.ID + "-" + l.Destination.ID
}
