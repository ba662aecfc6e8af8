package domain

import (
	"fmt"
	"time"
)

// ShiftStatus represents the current status of a scheduled shift.
type ShiftStatus string

const (
	ShiftStatusScheduled  ShiftStatus = "SCHEDULED"
	ShiftStatusInProgress ShiftStatus = "IN_PROGRESS"
	ShiftStatusCompleted  ShiftStatus = "COMPLETED"
	ShiftStatusCancelled  ShiftStatus = "CANCELLED"
)

// ShiftType distinguishes regular scheduled duty from on-call coverage.
type ShiftType string

const (
	ShiftTypeRegular ShiftType = "REGULAR"
	ShiftTypeOnCall  ShiftType = "ON_CALL"
)

// ScheduledShift is one concrete dated duty interval for a driver.
// Recurring children reference the parent shift they were expanded from.
type ScheduledShift struct {
	ID             string
	DriverID       string
	Date           string // YYYY-MM-DD
	StartTime      time.Time
	EndTime        time.Time
	ShiftType      ShiftType
	Status         ShiftStatus
	IsRecurring    bool
	RecurrenceRule string
	ParentShiftID  string
	CreatedAt      time.Time
}

// Overlaps reports whether [s1, e1) and [s2, e2) intersect.
// Shared by manual shift validation (hard rejection) and bulk recurrence
// expansion (silent skip).
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// OverlapConflictError reports a shift that conflicts with an existing
// non-cancelled shift for the same driver and date.
type OverlapConflictError struct {
	DriverID      string
	Date          string
	ConflictID    string
	ConflictStart time.Time
	ConflictEnd   time.Time
}

func (e *OverlapConflictError) Error() string {
	return fmt.Sprintf("shift overlaps existing shift %s for driver %s on %s (%s - %s)",
		e.ConflictID, e.DriverID, e.Date,
		e.ConflictStart.Format("15:04"), e.ConflictEnd.Format("15:04"))
}
