package revenue

import "fmt"

// legIndex maps a stop ID to the single leg departing from it
type legIndex map[string]Leg

// indexLegs builds the origin index of a leg set. Two legs leaving the same stop is a branch.
func indexLegs(legs []Leg) (legIndex, error) {
	index := make(legIndex, len(legs))
	for _, leg := range legs {
		if leg.Origin.Same(leg.Destination) {
			return nil, fmt.Errorf("%w: leg %s starts and ends at the same stop", ErrMalformedItinerary, leg)
		}
		if existing, ok := index[leg.Origin.ID]; ok {
			return nil, fmt.Errorf("%w: legs %s and %s branch at stop %s",
				ErrMalformedItinerary, existing, leg, leg.Origin.ID)
		}
		index[leg.Origin.ID] = leg
	}
	return index, nil
}

// ResolveItinerary returns the ordered stops visited by an unordered set of legs.
// The legs must form exactly one simple directed path. An empty leg set yields an empty itinerary.
func ResolveItinerary(legs []Leg) ([]Stop, error) {
	if len(legs) == 0 {
		return []Stop{}, nil
	}

	index, err := indexLegs(legs)
	if err != nil {
		return nil, err
	}

	destinations := make(map[string]struct{}, len(legs))
	for _, leg := range legs {
		destinations[leg.Destination.ID] = struct{}{}
	}

	// The path source is the only origin that is never a destination
	var start *Stop
	for i := range legs {
		origin := legs[i].Origin
		if _, ok := destinations[origin.ID]; ok {
			continue
		}
		if start != nil && !start.Same(origin) {
			return nil, fmt.Errorf("%w: both %s and %s have no incoming leg",
				ErrMalformedItinerary, start.ID, origin.ID)
		}
		start = &legs[i].Origin
	}
	if start == nil {
		return nil, fmt.Errorf("%w: no starting stop, legs form a cycle", ErrMalformedItinerary)
	}

	itinerary := make([]Stop, 0, len(legs)+1)
	itinerary = append(itinerary, *start)
	current := *start
	for {
		leg, ok := index[current.ID]
		if !ok {
			break
		}
		if len(itinerary) > len(legs) {
			return nil, fmt.Errorf("%w: cycle reached at stop %s", ErrMalformedItinerary, leg.Destination.ID)
		}
		itinerary = append(itinerary, leg.Destination)
		current = leg.Destination
	}

	// Legs not reached from the source belong to a detached loop
	if len(itinerary) != len(legs)+1 {
		return nil, fmt.Errorf("%w: %d of %d legs are not connected to stop %s",
			ErrMalformedItinerary, len(legs)+1-len(itinerary), len(legs), start.ID)
	}

	return itinerary, nil
}

// ResolveODPath returns, in travel order, the legs crossed between origin and destination
func ResolveODPath(origin, destination Stop, itinerary []Stop, legs []Leg) ([]Leg, error) {
	found := false
	for _, stop := range itinerary {
		if stop.Same(origin) {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: origin %s is not in the itinerary", ErrUnreachableOD, origin.ID)
	}
	if origin.Same(destination) {
		return nil, fmt.Errorf("%w: origin and destination are both %s", ErrUnreachableOD, origin.ID)
	}

	index, err := indexLegs(legs)
	if err != nil {
		return nil, err
	}

	path := []Leg{}
	current := origin
	for len(path) < len(legs) {
		leg, ok := index[current.ID]
		if !ok {
			break
		}
		path = append(path, leg)
		if leg.Destination.Same(destination) {
			return path, nil
		}
		current = leg.Destination
	}

	return nil, fmt.Errorf("%w: %s is not reachable from %s", ErrUnreachableOD, destination.ID, origin.ID)
}
