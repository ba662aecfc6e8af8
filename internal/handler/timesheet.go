package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nemt/internal/domain"
	"nemt/internal/service"
)

// TimesheetHandler handles HTTP requests for the driver duty cycle.
type TimesheetHandler struct {
	timesheetService *service.TimesheetService
}

// NewTimesheetHandler creates a new TimesheetHandler.
func NewTimesheetHandler(timesheetService *service.TimesheetService) *TimesheetHandler {
	return &TimesheetHandler{timesheetService: timesheetService}
}

// TimesheetResponse is the HTTP response for timesheet operations.
type TimesheetResponse struct {
	EntryID       string `json:"entry_id"`
	DriverID      string `json:"driver_id"`
	Date          string `json:"date"`
	ClockInTime   string `json:"clock_in_time"`
	ClockOutTime  string `json:"clock_out_time,omitempty"`
	OnBreak       bool   `json:"on_break"`
	BreakMinutes  int    `json:"break_minutes"`
	WorkedMinutes int    `json:"worked_minutes"`
}

// ClockIn handles POST /v1/drivers/:id/clock-in
func (h *TimesheetHandler) ClockIn(c *gin.Context) {
	entry, err := h.timesheetService.ClockIn(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, timesheetResponse(entry))
}

// ClockOut handles POST /v1/drivers/:id/clock-out
func (h *TimesheetHandler) ClockOut(c *gin.Context) {
	entry, err := h.timesheetService.ClockOut(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, timesheetResponse(entry))
}

// StartBreak handles POST /v1/drivers/:id/break/start
func (h *TimesheetHandler) StartBreak(c *gin.Context) {
	entry, err := h.timesheetService.StartBreak(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, timesheetResponse(entry))
}

// EndBreak handles POST /v1/drivers/:id/break/end
func (h *TimesheetHandler) EndBreak(c *gin.Context) {
	entry, err := h.timesheetService.EndBreak(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, timesheetResponse(entry))
}

// DutyStatusResponse is the live duty-cycle projection for a driver.
type DutyStatusResponse struct {
	DriverID      string `json:"driver_id"`
	Date          string `json:"date,omitempty"`
	ClockedIn     bool   `json:"clocked_in"`
	OnBreak       bool   `json:"on_break"`
	WorkedMinutes int    `json:"worked_minutes"`
	ClockInTime   string `json:"clock_in_time,omitempty"`
}

// DutyStatus handles GET /v1/drivers/:id/duty
func (h *TimesheetHandler) DutyStatus(c *gin.Context) {
	status, err := h.timesheetService.GetDutyStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := DutyStatusResponse{
		DriverID:      status.DriverID,
		Date:          status.Date,
		ClockedIn:     status.ClockedIn,
		OnBreak:       status.OnBreak,
		WorkedMinutes: status.WorkedMinutes,
	}
	if !status.ClockInTime.IsZero() {
		response.ClockInTime = status.ClockInTime.Format(time.RFC3339)
	}

	respondJSON(c, http.StatusOK, response)
}

// GetTimesheet handles GET /v1/drivers/:id/timesheet?date=YYYY-MM-DD
func (h *TimesheetHandler) GetTimesheet(c *gin.Context) {
	entry, err := h.timesheetService.GetTimesheet(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, timesheetResponse(entry))
}

func timesheetResponse(entry *domain.TimesheetEntry) TimesheetResponse {
	response := TimesheetResponse{
		EntryID:       entry.ID,
		DriverID:      entry.DriverID,
		Date:          entry.Date,
		ClockInTime:   entry.ClockInTime.Format(time.RFC3339),
		OnBreak:       entry.OnBreak(),
		BreakMinutes:  int(entry.TotalBreak.Minutes()),
		WorkedMinutes: entry.WorkedMinutes,
	}
	if !entry.ClockOutTime.IsZero() {
		response.ClockOutTime = entry.ClockOutTime.Format(time.RFC3339)
	}
	return response
}
