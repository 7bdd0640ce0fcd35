package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/revenue-backend/internal/cache"
	"github.com/smarttransit/revenue-backend/internal/config"
	"github.com/smarttransit/revenue-backend/internal/database"
	"github.com/smarttransit/revenue-backend/internal/models"
	"github.com/smarttransit/revenue-backend/internal/revenue"
)

var (
	// ErrServiceNotFound is returned when no service has the requested ID
	ErrServiceNotFound = errors.New("service not found")

	// ErrODNotFound is returned when a service sells no OD between the requested stops
	ErrODNotFound = errors.New("origin-destination not found")
)

// ServiceStore reads services and their calling points
type ServiceStore interface {
	GetByID(serviceID string) (*models.ServiceRecord, error)
	ListActive(limit int) ([]models.ServiceRecord, error)
	GetStops(serviceID string) ([]models.ServiceStop, error)
}

// BookingStore reads and records passenger manifests
type BookingStore interface {
	GetManifest(serviceID string) ([]models.Booking, error)
	Create(booking *models.Booking) error
}

// InventoryStore reads seat inventory and demand forecasts
type InventoryStore interface {
	GetPricing(serviceID, origin, destination string) ([]models.PricingTier, error)
	GetDemand(serviceID, origin, destination string) ([]models.DemandEntry, error)
}

// ForecastRunStore stores forecast runs
type ForecastRunStore interface {
	Create(run *models.ForecastRun) error
	ListByOD(serviceID, origin, destination string, limit int) ([]models.ForecastRun, error)
}

// ResultCache caches forecast results. A nil result from Get is a miss.
type ResultCache interface {
	Get(ctx context.Context, key string) (*models.ForecastResult, error)
	Set(ctx context.Context, key string, result *models.ForecastResult) error
}

// RevenueStores groups the storage dependencies of RevenueService
type RevenueStores struct {
	Services  ServiceStore
	Bookings  BookingStore
	Inventory InventoryStore
	Runs      ForecastRunStore
	Cache     ResultCache // optional
}

// RevenueService builds services from storage and answers revenue questions about them
type RevenueService struct {
	services  ServiceStore
	bookings  BookingStore
	inventory InventoryStore
	runs      ForecastRunStore
	cache     ResultCache

	logger         *logrus.Logger
	strictManifest bool
	persistRuns    bool
	now            func() time.Time
}

// NewRevenueService creates a new RevenueService
func NewRevenueService(stores RevenueStores, cfg config.ForecastConfig, logger *logrus.Logger) *RevenueService {
	return &RevenueService{
		services:       stores.Services,
		bookings:       stores.Bookings,
		inventory:      stores.Inventory,
		runs:           stores.Runs,
		cache:          stores.Cache,
		logger:         logger,
		strictManifest: cfg.StrictManifest,
		persistRuns:    cfg.PersistRuns,
		now:            time.Now,
	}
}

// WithClock replaces the clock used for day-x computations
func (s *RevenueService) WithClock(now func() time.Time) *RevenueService {
	s.now = now
	return s
}

// loadService assembles the service with its legs, ODs and passenger manifest
func (s *RevenueService) loadService(serviceID string) (*models.ServiceRecord, *revenue.Service, error) {
	record, err := s.services.GetByID(serviceID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	stopRows, err := s.services.GetStops(serviceID)
	if err != nil {
		return nil, nil, err
	}
	stops := make([]revenue.Stop, 0, len(stopRows))
	for _, row := range stopRows {
		stops = append(stops, revenue.Stop{ID: row.StopCode, Name: row.StopName})
	}

	service := revenue.NewService(record.ServiceNumber, record.DepartureDate).WithClock(s.now)
	if err := service.LoadItinerary(stops); err != nil {
		return nil, nil, fmt.Errorf("service %s: %w", serviceID, err)
	}

	manifest, err := s.bookings.GetManifest(serviceID)
	if err != nil {
		return nil, nil, err
	}
	bookings := make([]revenue.Booking, 0, len(manifest))
	for _, row := range manifest {
		bookings = append(bookings, revenue.Booking{
			Origin:      revenue.Stop{ID: row.OriginStopCode},
			Destination: revenue.Stop{ID: row.DestinationStopCode},
			SaleDayX:    row.SaleDayX,
			Price:       row.Price,
		})
	}

	unmatched := service.LoadPassengerManifest(bookings)
	if len(unmatched) > 0 {
		if s.strictManifest {
			return nil, nil, &revenue.UnmatchedBookingError{Bookings: unmatched}
		}
		for _, booking := range unmatched {
			s.logger.WithFields(logrus.Fields{
				"service_id":  serviceID,
				"origin":      booking.Origin.ID,
				"destination": booking.Destination.ID,
				"sale_day_x":  booking.SaleDayX,
				"price":       booking.Price,
			}).Warn("Dropped booking that matches no OD")
		}
	}

	return record, service, nil
}

func (s *RevenueService) findOD(service *revenue.Service, origin, destination string) (*revenue.OD, error) {
	od, ok := service.OD(revenue.Stop{ID: origin}, revenue.Stop{ID: destination})
	if !ok {
		return nil, ErrODNotFound
	}
	return od, nil
}

// ListServices returns active services ordered by departure
func (s *RevenueService) ListServices(limit int) ([]models.ServiceRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.services.ListActive(limit)
}

// GetSummary returns the headline figures of a service
func (s *RevenueService) GetSummary(serviceID string) (*models.ServiceSummary, error) {
	record, service, err := s.loadService(serviceID)
	if err != nil {
		return nil, err
	}

	itinerary, err := service.Itinerary()
	if err != nil {
		return nil, err
	}

	bookingCount := 0
	for _, od := range service.ODs() {
		bookingCount += len(od.Bookings)
	}

	return &models.ServiceSummary{
		ID:            record.ID,
		ServiceNumber: record.ServiceNumber,
		DepartureDate: record.DepartureDate.Format("2006-01-02"),
		DayX:          service.DayX(),
		StopCount:     len(itinerary),
		LegCount:      len(service.Legs()),
		ODCount:       len(service.ODs()),
		BookingCount:  bookingCount,
	}, nil
}

// GetItinerary returns the ordered stops and legs of a service
func (s *RevenueService) GetItinerary(serviceID string) (*models.ItineraryResponse, error) {
	_, service, err := s.loadService(serviceID)
	if err != nil {
		return nil, err
	}

	itinerary, err := service.Itinerary()
	if err != nil {
		return nil, err
	}

	response := &models.ItineraryResponse{
		ServiceID: serviceID,
		Stops:     make([]models.StopView, 0, len(itinerary)),
		Legs:      legViews(service.Legs()),
	}
	for _, stop := range itinerary {
		response.Stops = append(response.Stops, models.StopView{Code: stop.ID, Name: stop.Name})
	}

	return response, nil
}

// GetLegLoads returns the passengers occupying each leg of a service
func (s *RevenueService) GetLegLoads(serviceID string) ([]models.LegLoad, error) {
	_, service, err := s.loadService(serviceID)
	if err != nil {
		return nil, err
	}

	loads := make([]models.LegLoad, 0, len(service.Legs()))
	for _, leg := range service.Legs() {
		passengers, err := service.Passengers(leg)
		if err != nil {
			return nil, err
		}

		load := models.LegLoad{
			LegView:    models.LegView{Origin: leg.Origin.ID, Destination: leg.Destination.ID},
			Passengers: len(passengers),
		}
		for _, booking := range passengers {
			load.Revenue += booking.Price
		}
		loads = append(loads, load)
	}

	return loads, nil
}

// GetODs returns every OD of a service with its bookings and crossed legs
func (s *RevenueService) GetODs(serviceID string) ([]models.ODSummary, error) {
	_, service, err := s.loadService(serviceID)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ODSummary, 0, len(service.ODs()))
	for _, od := range service.ODs() {
		legs, err := service.ODLegs(od)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, models.ODSummary{
			Origin:       od.Origin.ID,
			Destination:  od.Destination.ID,
			BookingCount: len(od.Bookings),
			Revenue:      od.Revenue(),
			Legs:         legViews(legs),
		})
	}

	return summaries, nil
}

// GetODHistory returns the cumulative booking curve of one OD
func (s *RevenueService) GetODHistory(serviceID, origin, destination string) (*models.HistoryResponse, error) {
	_, service, err := s.loadService(serviceID)
	if err != nil {
		return nil, err
	}

	od, err := s.findOD(service, origin, destination)
	if err != nil {
		return nil, err
	}

	return &models.HistoryResponse{
		ServiceID:   serviceID,
		Origin:      origin,
		Destination: destination,
		Points:      od.History(),
	}, nil
}

// Forecast projects the booking curve of one OD until departure. Pricing and demand come from
// the request when given and from storage otherwise. Stored inventory is never modified.
func (s *RevenueService) Forecast(ctx context.Context, serviceID, origin, destination string, req *models.ForecastRequest) (*models.ForecastResult, error) {
	if req == nil {
		req = &models.ForecastRequest{}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	_, service, err := s.loadService(serviceID)
	if err != nil {
		return nil, err
	}

	od, err := s.findOD(service, origin, destination)
	if err != nil {
		return nil, err
	}

	tiers := req.Pricing
	if len(tiers) == 0 {
		if tiers, err = s.inventory.GetPricing(serviceID, origin, destination); err != nil {
			return nil, err
		}
	}
	entries := req.Demand
	if len(entries) == 0 {
		if entries, err = s.inventory.GetDemand(serviceID, origin, destination); err != nil {
			return nil, err
		}
	}

	pricing := models.PricingFromTiers(tiers)
	demand := models.DemandFromEntries(entries)
	history := od.History()

	log := s.logger.WithFields(logrus.Fields{
		"service_id":  serviceID,
		"origin":      origin,
		"destination": destination,
	})

	cacheKey := ""
	if s.cache != nil {
		cacheKey, err = cache.Key(cache.ForecastInput{
			ServiceID:   serviceID,
			Origin:      origin,
			Destination: destination,
			History:     history,
			Pricing:     models.TiersFromPricing(pricing),
			Demand:      models.EntriesFromDemand(demand),
		})
		if err != nil {
			log.WithError(err).Warn("Failed to derive forecast cache key")
		} else if cached, err := s.cache.Get(ctx, cacheKey); err != nil {
			log.WithError(err).Warn("Failed to read forecast cache")
		} else if cached != nil {
			cached.Cached = true
			log.Debug("Forecast served from cache")
			return cached, nil
		}
	}

	simulation, err := od.Simulate(pricing, demand)
	if err != nil {
		return nil, err
	}

	result := &models.ForecastResult{
		ServiceID:   serviceID,
		Origin:      origin,
		Destination: destination,
		History:     history,
		Points:      simulation.Points,
		Sales:       simulation.Sales,
		SoldByPrice: models.TiersFromPricing(revenue.Pricing(simulation.SoldByPrice())),
		Remaining:   models.TiersFromPricing(simulation.Remaining),
	}

	if s.persistRuns && len(result.Points) > 0 {
		run, err := models.NewForecastRun(result)
		if err == nil {
			err = s.runs.Create(run)
		}
		if err != nil {
			log.WithError(err).Error("Failed to store forecast run")
		} else {
			result.RunID = run.ID
		}
	}

	if cacheKey != "" {
		if err := s.cache.Set(ctx, cacheKey, result); err != nil {
			log.WithError(err).Warn("Failed to write forecast cache")
		}
	}

	log.WithFields(logrus.Fields{
		"days":       len(result.Points),
		"seats_sold": len(result.Sales),
	}).Info("Forecast completed")

	return result, nil
}

// ListForecastRuns returns the latest stored forecasts of one OD
func (s *RevenueService) ListForecastRuns(serviceID, origin, destination string, limit int) ([]models.ForecastRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if _, err := s.services.GetByID(serviceID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return s.runs.ListByOD(serviceID, origin, destination, limit)
}

// AddBooking records a sold seat on an existing OD of a service
func (s *RevenueService) AddBooking(serviceID string, req *models.CreateBookingRequest) (*models.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	_, service, err := s.loadService(serviceID)
	if err != nil {
		return nil, err
	}

	if _, err := s.findOD(service, req.OriginStopCode, req.DestinationStopCode); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ServiceID:           serviceID,
		OriginStopCode:      req.OriginStopCode,
		DestinationStopCode: req.DestinationStopCode,
		SaleDayX:            req.SaleDayX,
		Price:               req.Price,
	}
	if err := s.bookings.Create(booking); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"service_id": serviceID,
		"booking_id": booking.ID,
		"od":         req.OriginStopCode + "-" + req.DestinationStopCode,
	}).Info("Booking recorded")

	return booking, nil
}

func legViews(legs []revenue.Leg) []models.LegView {
	views := make([]models.LegView, 0, len(legs))
	for _, leg := range legs {
		views = append(views, models.LegView{Origin: leg.Origin.ID, Destination: leg.Destination.ID})
	}
	return views
}
