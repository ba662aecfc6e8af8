package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nemt/internal/domain"
	"nemt/internal/service"
)

// ShiftHandler handles HTTP requests for scheduled shifts.
type ShiftHandler struct {
	shiftService *service.ShiftService
}

// NewShiftHandler creates a new ShiftHandler.
func NewShiftHandler(shiftService *service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftService: shiftService}
}

// CreateShiftRequest is the HTTP request body for scheduling a shift.
type CreateShiftRequest struct {
	DriverID       string `json:"driver_id" binding:"required"`
	Date           string `json:"date" binding:"required"`
	StartTime      string `json:"start_time" binding:"required"`
	EndTime        string `json:"end_time" binding:"required"`
	ShiftType      string `json:"shift_type"`
	IsRecurring    bool   `json:"is_recurring"`
	RecurrenceRule string `json:"recurrence_rule"`
}

// UpdateShiftRequest is the HTTP request body for rescheduling a shift.
type UpdateShiftRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	ShiftType string `json:"shift_type"`
}

// ShiftResponse is the HTTP response for one shift.
type ShiftResponse struct {
	ShiftID        string `json:"shift_id"`
	DriverID       string `json:"driver_id"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	ShiftType      string `json:"shift_type"`
	Status         string `json:"status"`
	IsRecurring    bool   `json:"is_recurring,omitempty"`
	RecurrenceRule string `json:"recurrence_rule,omitempty"`
	ParentShiftID  string `json:"parent_shift_id,omitempty"`
}

// CreateShiftResponse reports the created shift, its expanded children, and
// how many recurrence candidates were skipped over conflicts.
type CreateShiftResponse struct {
	Shift            ShiftResponse   `json:"shift"`
	Children         []ShiftResponse `json:"children,omitempty"`
	SkippedConflicts int             `json:"skipped_conflicts"`
}

// Create handles POST /v1/shifts
func (h *ShiftHandler) Create(c *gin.Context) {
	var req CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.shiftService.CreateShift(c.Request.Context(), service.CreateShiftRequest{
		DriverID:       req.DriverID,
		Date:           req.Date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		ShiftType:      domain.ShiftType(req.ShiftType),
		IsRecurring:    req.IsRecurring,
		RecurrenceRule: req.RecurrenceRule,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response := CreateShiftResponse{
		Shift:            shiftResponse(result.Shift),
		SkippedConflicts: result.SkippedConflicts,
	}
	for _, child := range result.Children {
		response.Children = append(response.Children, shiftResponse(child))
	}

	respondJSON(c, http.StatusCreated, response)
}

// Get handles GET /v1/shifts/:id
func (h *ShiftHandler) Get(c *gin.Context) {
	shift, err := h.shiftService.GetShift(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, shiftResponse(shift))
}

// Update handles PUT /v1/shifts/:id
func (h *ShiftHandler) Update(c *gin.Context) {
	var req UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	shift, err := h.shiftService.UpdateShift(c.Request.Context(), service.UpdateShiftRequest{
		ShiftID:   c.Param("id"),
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		ShiftType: domain.ShiftType(req.ShiftType),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, shiftResponse(shift))
}

// CancelShiftResponse reports a cancellation and its recurring cascade size.
type CancelShiftResponse struct {
	Shift             ShiftResponse `json:"shift"`
	CancelledChildren int           `json:"cancelled_children"`
}

// Cancel handles POST /v1/shifts/:id/cancel?recurring=true
func (h *ShiftHandler) Cancel(c *gin.Context) {
	cascade, _ := strconv.ParseBool(c.Query("recurring"))

	result, err := h.shiftService.CancelShift(c.Request.Context(), c.Param("id"), cascade)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, CancelShiftResponse{
		Shift:             shiftResponse(result.Shift),
		CancelledChildren: result.CancelledChildren,
	})
}

// ListByDriver handles GET /v1/drivers/:id/shifts?date=YYYY-MM-DD
func (h *ShiftHandler) ListByDriver(c *gin.Context) {
	shifts, err := h.shiftService.ListDriverShifts(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ShiftResponse, 0, len(shifts))
	for _, shift := range shifts {
		response = append(response, shiftResponse(shift))
	}

	respondJSON(c, http.StatusOK, response)
}

func shiftResponse(shift *domain.ScheduledShift) ShiftResponse {
	return ShiftResponse{
		ShiftID:        shift.ID,
		DriverID:       shift.DriverID,
		Date:           shift.Date,
		StartTime:      shift.StartTime.Format("15:04"),
		EndTime:        shift.EndTime.Format("15:04"),
		ShiftType:      string(shift.ShiftType),
		Status:         string(shift.Status),
		IsRecurring:    shift.IsRecurring,
		RecurrenceRule: shift.RecurrenceRule,
		ParentShiftID:  shift.ParentShiftID,
	}
}
