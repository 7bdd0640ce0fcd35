package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/revenue-backend/internal/models"
	"github.com/smarttransit/revenue-backend/internal/revenue"
	"github.com/smarttransit/revenue-backend/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// RevenueService is the behaviour RevenueHandler needs from the service layer
type RevenueService interface {
	ListServices(limit int) ([]models.ServiceRecord, error)
	GetSummary(serviceID string) (*models.ServiceSummary, error)
	GetItinerary(serviceID string) (*models.ItineraryResponse, error)
	GetLegLoads(serviceID string) ([]models.LegLoad, error)
	GetODs(serviceID string) ([]models.ODSummary, error)
	GetODHistory(serviceID, origin, destination string) (*models.HistoryResponse, error)
	Forecast(ctx context.Context, serviceID, origin, destination string, req *models.ForecastRequest) (*models.ForecastResult, error)
	ListForecastRuns(serviceID, origin, destination string, limit int) ([]models.ForecastRun, error)
	AddBooking(serviceID string, req *models.CreateBookingRequest) (*models.Booking, error)
}

// RevenueHandler handles HTTP requests for service revenue data
type RevenueHandler struct {
	service RevenueService
	logger  *logrus.Logger
}

// NewRevenueHandler creates a new revenue handler
func NewRevenueHandler(service RevenueService, logger *logrus.Logger) *RevenueHandler {
	return &RevenueHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes mounts the revenue endpoints on a router group
func (h *RevenueHandler) RegisterRoutes(rg *gin.RouterGroup) {
	serviceRoutes := rg.Group("/services")
	{
		serviceRoutes.GET("", h.ListServices)
		serviceRoutes.GET("/:service_id", h.GetService)
		serviceRoutes.GET("/:service_id/itinerary", h.GetItinerary)
		serviceRoutes.GET("/:service_id/legs", h.GetLegLoads)
		serviceRoutes.GET("/:service_id/ods", h.GetODs)
		serviceRoutes.POST("/:service_id/bookings", h.AddBooking)
		serviceRoutes.GET("/:service_id/ods/:origin/:destination/history", h.GetODHistory)
		serviceRoutes.POST("/:service_id/ods/:origin/:destination/forecast", h.Forecast)
		serviceRoutes.GET("/:service_id/ods/:origin/:destination/forecasts", h.ListForecastRuns)
	}
}

// ListServices handles GET /api/v1/services
// @Summary List active services
// @Tags Revenue
// @Produce json
// @Param limit query int false "Maximum number of services"
// @Success 200 {array} models.ServiceRecord
// @Router /api/v1/services [get]
func (h *RevenueHandler) ListServices(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	records, err := h.service.ListServices(limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": records, "count": len(records)})
}

// GetService handles GET /api/v1/services/:service_id
// @Summary Get service summary
// @Tags Revenue
// @Produce json
// @Param service_id path string true "Service ID"
// @Success 200 {object} models.ServiceSummary
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/services/{service_id} [get]
func (h *RevenueHandler) GetService(c *gin.Context) {
	summary, err := h.service.GetSummary(c.Param("service_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetItinerary handles GET /api/v1/services/:service_id/itinerary
// @Summary Get ordered stops and legs of a service
// @Tags Revenue
// @Produce json
// @Param service_id path string true "Service ID"
// @Success 200 {object} models.ItineraryResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/services/{service_id}/itinerary [get]
func (h *RevenueHandler) GetItinerary(c *gin.Context) {
	itinerary, err := h.service.GetItinerary(c.Param("service_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, itinerary)
}

// GetLegLoads handles GET /api/v1/services/:service_id/legs
// @Summary Get passenger load per leg
// @Tags Revenue
// @Produce json
// @Param service_id path string true "Service ID"
// @Success 200 {array} models.LegLoad
// @Router /api/v1/services/{service_id}/legs [get]
func (h *RevenueHandler) GetLegLoads(c *gin.Context) {
	loads, err := h.service.GetLegLoads(c.Param("service_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"legs": loads})
}

// GetODs handles GET /api/v1/services/:service_id/ods
// @Summary List origin-destination products of a service
// @Tags Revenue
// @Produce json
// @Param service_id path string true "Service ID"
// @Success 200 {array} models.ODSummary
// @Router /api/v1/services/{service_id}/ods [get]
func (h *RevenueHandler) GetODs(c *gin.Context) {
	ods, err := h.service.GetODs(c.Param("service_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ods": ods})
}

// GetODHistory handles GET /api/v1/services/:service_id/ods/:origin/:destination/history
// @Summary Get cumulative booking history of an OD
// @Tags Revenue
// @Produce json
// @Success 200 {object} models.HistoryResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/services/{service_id}/ods/{origin}/{destination}/history [get]
func (h *RevenueHandler) GetODHistory(c *gin.Context) {
	history, err := h.service.GetODHistory(c.Param("service_id"), c.Param("origin"), c.Param("destination"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

// Forecast handles POST /api/v1/services/:service_id/ods/:origin/:destination/forecast
// @Summary Forecast bookings of an OD until departure
// @Description Pricing and demand may be overridden in the body; missing parts are read from storage
// @Tags Revenue
// @Accept json
// @Produce json
// @Param request body models.ForecastRequest false "Pricing and demand overrides"
// @Success 200 {object} models.ForecastResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Demand matrix older than booking history"
// @Router /api/v1/services/{service_id}/ods/{origin}/{destination}/forecast [post]
func (h *RevenueHandler) Forecast(c *gin.Context) {
	var req models.ForecastRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			h.logger.WithError(err).Warn("Invalid forecast request")
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: "Invalid request body",
			})
			return
		}
	}

	result, err := h.service.Forecast(c.Request.Context(), c.Param("service_id"), c.Param("origin"), c.Param("destination"), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListForecastRuns handles GET /api/v1/services/:service_id/ods/:origin/:destination/forecasts
// @Summary List stored forecasts of an OD
// @Tags Revenue
// @Produce json
// @Param limit query int false "Maximum number of runs"
// @Success 200 {array} models.ForecastRun
// @Router /api/v1/services/{service_id}/ods/{origin}/{destination}/forecasts [get]
func (h *RevenueHandler) ListForecastRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	runs, err := h.service.ListForecastRuns(c.Param("service_id"), c.Param("origin"), c.Param("destination"), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

// AddBooking handles POST /api/v1/services/:service_id/bookings
// @Summary Record a sold seat
// @Tags Revenue
// @Accept json
// @Produce json
// @Param request body models.CreateBookingRequest true "Booking"
// @Success 201 {object} models.Booking
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/services/{service_id}/bookings [post]
func (h *RevenueHandler) AddBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	booking, err := h.service.AddBooking(c.Param("service_id"), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// respondError maps service errors onto HTTP status codes
func (h *RevenueHandler) respondError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	message := err.Error()

	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		status, code = http.StatusBadRequest, "validation_error"
	case errors.Is(err, services.ErrServiceNotFound), errors.Is(err, services.ErrODNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, revenue.ErrStaleDemandData):
		status, code = http.StatusConflict, "stale_demand_data"
	case errors.Is(err, revenue.ErrMalformedItinerary):
		status, code = http.StatusUnprocessableEntity, "malformed_itinerary"
	case errors.Is(err, revenue.ErrUnreachableOD):
		status, code = http.StatusUnprocessableEntity, "unreachable_od"
	case errors.Is(err, revenue.ErrUnmatchedBooking):
		status, code = http.StatusUnprocessableEntity, "unmatched_booking"
	default:
		message = "An internal error occurred"
	}

	entry := h.logger.WithFields(logrus.Fields{
		"path":   c.FullPath(),
		"status": status,
	}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	c.JSON(status, ErrorResponse{
		Error:   code,
		Message: message,
	})
}
