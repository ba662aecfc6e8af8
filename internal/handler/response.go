package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nemt/internal/domain"
	"nemt/internal/repository"
	"nemt/internal/service"
)

// ErrorResponse represents an error response. Rejections that carry
// actionable detail (valid next statuses, the conflicting interval) include
// it so the caller can present useful feedback.
type ErrorResponse struct {
	Error     string        `json:"error"`
	ValidNext []string      `json:"valid_next,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	Conflict  *ConflictInfo `json:"conflict,omitempty"`
}

// ConflictInfo describes the shift interval a rejected request overlapped.
type ConflictInfo struct {
	ShiftID   string `json:"shift_id"`
	DriverID  string `json:"driver_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	response := ErrorResponse{Error: err.Error()}

	var invalidTransition *domain.InvalidTransitionError
	if errors.As(err, &invalidTransition) {
		response.ValidNext = make([]string, 0, len(invalidTransition.ValidNext))
		for _, s := range invalidTransition.ValidNext {
			response.ValidNext = append(response.ValidNext, string(s))
		}
		c.JSON(http.StatusConflict, response)
		return
	}

	var invalidDuty *domain.InvalidDutyActionError
	if errors.As(err, &invalidDuty) {
		response.Reason = invalidDuty.Reason
		c.JSON(http.StatusConflict, response)
		return
	}

	var overlap *domain.OverlapConflictError
	if errors.As(err, &overlap) {
		response.Conflict = &ConflictInfo{
			ShiftID:   overlap.ConflictID,
			DriverID:  overlap.DriverID,
			Date:      overlap.Date,
			StartTime: overlap.ConflictStart.Format("15:04"),
			EndTime:   overlap.ConflictEnd.Format("15:04"),
		}
		c.JSON(http.StatusConflict, response)
		return
	}

	c.JSON(mapErrorToHTTPStatus(err), response)
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidShiftID),
		errors.Is(err, service.ErrInvalidPassengerName),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrDriverRequired),
		errors.Is(err, service.ErrInvalidShiftWindow),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidRecurrenceRule):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrShiftNotCancellable),
		errors.Is(err, service.ErrEntityLocked):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
