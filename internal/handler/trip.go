package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nemt/internal/domain"
	"nemt/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// knownStatuses guards the transition endpoint against arbitrary strings
// before they reach the decision engine.
var knownStatuses = map[domain.TripStatus]bool{
	domain.TripStatusPending:       true,
	domain.TripStatusConfirmed:     true,
	domain.TripStatusAssigned:      true,
	domain.TripStatusDriverEnRoute: true,
	domain.TripStatusDriverArrived: true,
	domain.TripStatusInProgress:    true,
	domain.TripStatusCompleted:     true,
	domain.TripStatusCancelled:     true,
	domain.TripStatusNoShow:        true,
}

// CreateTripRequest is the HTTP request body for booking a trip.
type CreateTripRequest struct {
	PassengerName       string    `json:"passenger_name" binding:"required"`
	PickupAddress       string    `json:"pickup_address"`
	DropoffAddress      string    `json:"dropoff_address"`
	ScheduledPickupTime time.Time `json:"scheduled_pickup_time"`
	LevelOfService      string    `json:"level_of_service"`
	WillCall            bool      `json:"will_call"`
}

// TransitionRequest is the HTTP request body for a status transition.
type TransitionRequest struct {
	Status   string   `json:"status" binding:"required"`
	Note     string   `json:"note"`
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
	Actor    string   `json:"actor"`
	DriverID string   `json:"driver_id"`
	Reason   string   `json:"reason"`
}

// TripResponse is the HTTP response for trip operations.
type TripResponse struct {
	TripID              string `json:"trip_id"`
	PassengerName       string `json:"passenger_name"`
	PickupAddress       string `json:"pickup_address,omitempty"`
	DropoffAddress      string `json:"dropoff_address,omitempty"`
	ScheduledPickupTime string `json:"scheduled_pickup_time,omitempty"`
	LevelOfService      string `json:"level_of_service"`
	WillCall            bool   `json:"will_call,omitempty"`
	Status              string `json:"status"`
	DriverID            string `json:"driver_id,omitempty"`
	ActualPickupTime    string `json:"actual_pickup_time,omitempty"`
	ActualDropoffTime   string `json:"actual_dropoff_time,omitempty"`
	CancelledAt         string `json:"cancelled_at,omitempty"`
	CancellationReason  string `json:"cancellation_reason,omitempty"`
	LocationMissing     bool   `json:"location_missing,omitempty"`
	Notification        string `json:"notification,omitempty"`
}

// CreateTrip handles POST /v1/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	trip, err := h.tripService.CreateTrip(c.Request.Context(), service.CreateTripRequest{
		PassengerName:       req.PassengerName,
		PickupAddress:       req.PickupAddress,
		DropoffAddress:      req.DropoffAddress,
		ScheduledPickupTime: req.ScheduledPickupTime,
		LevelOfService:      domain.LevelOfService(req.LevelOfService),
		WillCall:            req.WillCall,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, tripResponse(trip))
}

// Transition handles POST /v1/trips/:id/transition
func (h *TripHandler) Transition(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	requested := domain.TripStatus(req.Status)
	if !knownStatuses[requested] {
		respondError(c, service.ErrInvalidStatus)
		return
	}

	var location *domain.Geolocation
	if req.Lat != nil && req.Lng != nil {
		location = &domain.Geolocation{Lat: *req.Lat, Lng: *req.Lng}
	}

	result, err := h.tripService.Transition(c.Request.Context(), service.TransitionRequest{
		TripID:   c.Param("id"),
		To:       requested,
		Note:     req.Note,
		Location: location,
		Actor:    req.Actor,
		DriverID: req.DriverID,
		Reason:   req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response := tripResponse(result.Trip)
	response.LocationMissing = result.LocationMissing
	response.Notification = string(result.Decision.Notification)

	respondJSON(c, http.StatusOK, response)
}

// ActionResponse is one entry of the driver action menu.
type ActionResponse struct {
	NextStatus           string `json:"next_status"`
	Label                string `json:"label"`
	RequiresConfirmation bool   `json:"requires_confirmation"`
}

// Actions handles GET /v1/trips/:id/actions
func (h *TripHandler) Actions(c *gin.Context) {
	actions, err := h.tripService.DriverActions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ActionResponse, 0, len(actions))
	for _, action := range actions {
		response = append(response, ActionResponse{
			NextStatus:           string(action.Next),
			Label:                action.Label,
			RequiresConfirmation: action.RequiresConfirmation,
		})
	}

	respondJSON(c, http.StatusOK, response)
}

// HistoryEntryResponse is one status-history row.
type HistoryEntryResponse struct {
	PreviousStatus string   `json:"previous_status"`
	NewStatus      string   `json:"new_status"`
	Timestamp      string   `json:"timestamp"`
	Note           string   `json:"note,omitempty"`
	Lat            *float64 `json:"lat,omitempty"`
	Lng            *float64 `json:"lng,omitempty"`
	Actor          string   `json:"actor,omitempty"`
}

// History handles GET /v1/trips/:id/history
func (h *TripHandler) History(c *gin.Context) {
	entries, err := h.tripService.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		row := HistoryEntryResponse{
			PreviousStatus: string(entry.PreviousStatus),
			NewStatus:      string(entry.NewStatus),
			Timestamp:      entry.Timestamp.Format(time.RFC3339),
			Note:           entry.Note,
			Actor:          entry.Actor,
		}
		if entry.Location != nil {
			row.Lat = &entry.Location.Lat
			row.Lng = &entry.Location.Lng
		}
		response = append(response, row)
	}

	respondJSON(c, http.StatusOK, response)
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// GetAll handles GET /v1/trips
func (h *TripHandler) GetAll(c *gin.Context) {
	trips, err := h.tripService.GetAllTrips(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]*TripResponse, 0, len(trips))
	for _, trip := range trips {
		response = append(response, tripResponse(trip))
	}

	c.JSON(http.StatusOK, response)
}

func tripResponse(trip *domain.Trip) *TripResponse {
	response := &TripResponse{
		TripID:             trip.ID,
		PassengerName:      trip.PassengerName,
		PickupAddress:      trip.PickupAddress,
		DropoffAddress:     trip.DropoffAddress,
		LevelOfService:     string(trip.LevelOfService),
		WillCall:           trip.WillCall,
		Status:             string(trip.Status),
		DriverID:           trip.DriverID,
		CancellationReason: trip.CancellationReason,
	}

	if !trip.ScheduledPickupTime.IsZero() {
		response.ScheduledPickupTime = trip.ScheduledPickupTime.Format(time.RFC3339)
	}
	if !trip.ActualPickupTime.IsZero() {
		response.ActualPickupTime = trip.ActualPickupTime.Format(time.RFC3339)
	}
	if !trip.ActualDropoffTime.IsZero() {
		response.ActualDropoffTime = trip.ActualDropoffTime.Format(time.RFC3339)
	}
	if !trip.CancelledAt.IsZero() {
		response.CancelledAt = trip.CancelledAt.Format(time.RFC3339)
	}

	return response
}
