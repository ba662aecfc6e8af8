package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimesheetEntry records one driver's duty cycle for a calendar day.
// At most one entry per driver may be open (ClockOutTime zero) at any moment,
// and at most one break may be open at a time.
type TimesheetEntry struct {
	ID             string
	DriverID       string
	Date           string // YYYY-MM-DD
	ClockInTime    time.Time
	ClockOutTime   time.Time
	BreakStartedAt time.Time // zero when no break is open
	TotalBreak     time.Duration
	WorkedMinutes  int // final figure, set on clock-out
}

// Open reports whether the entry is clocked in and not yet clocked out.
func (e *TimesheetEntry) Open() bool {
	return e != nil && !e.ClockInTime.IsZero() && e.ClockOutTime.IsZero()
}

// OnBreak reports whether a break is currently open.
func (e *TimesheetEntry) OnBreak() bool {
	return e.Open() && !e.BreakStartedAt.IsZero()
}

// ClockAction is one of the four duty-cycle actions.
type ClockAction string

const (
	ActionClockIn    ClockAction = "CLOCK_IN"
	ActionClockOut   ClockAction = "CLOCK_OUT"
	ActionStartBreak ClockAction = "BREAK_START"
	ActionEndBreak   ClockAction = "BREAK_END"
)

// ServiceWindow is the daily window within which drivers may clock in,
// expressed as minutes from local midnight, [Start, End).
type ServiceWindow struct {
	Start int
	End   int
}

// Contains reports whether the instant falls inside the window.
func (w ServiceWindow) Contains(t time.Time) bool {
	minute := t.Hour()*60 + t.Minute()
	return minute >= w.Start && minute < w.End
}

// ParseClock parses a HH:MM string into minutes from midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	return h*60 + m, nil
}

// InvalidDutyActionError reports a denied duty-cycle action with a
// human-readable reason.
type InvalidDutyActionError struct {
	Action ClockAction
	Reason string
}

func (e *InvalidDutyActionError) Error() string {
	return fmt.Sprintf("%s denied: %s", e.Action, e.Reason)
}

// EvaluateClockAction decides whether a duty-cycle action is legal given the
// driver's current open entry (nil when none) and the service-hours policy.
// It is a pure decision function; the caller applies the resulting mutation.
func EvaluateClockAction(action ClockAction, entry *TimesheetEntry, now time.Time, window ServiceWindow) error {
	switch action {
	case ActionClockIn:
		if entry.Open() {
			return &InvalidDutyActionError{Action: action, Reason: "already clocked in"}
		}
		if !window.Contains(now) {
			return &InvalidDutyActionError{Action: action, Reason: "outside service hours"}
		}
	case ActionClockOut:
		if !entry.Open() {
			return &InvalidDutyActionError{Action: action, Reason: "not clocked in"}
		}
		if entry.OnBreak() {
			return &InvalidDutyActionError{Action: action, Reason: "break still open, end break first"}
		}
	case ActionStartBreak:
		if !entry.Open() {
			return &InvalidDutyActionError{Action: action, Reason: "not clocked in"}
		}
		if entry.OnBreak() {
			return &InvalidDutyActionError{Action: action, Reason: "break already open"}
		}
	case ActionEndBreak:
		if !entry.Open() {
			return &InvalidDutyActionError{Action: action, Reason: "not clocked in"}
		}
		if !entry.OnBreak() {
			return &InvalidDutyActionError{Action: action, Reason: "no open break"}
		}
	default:
		return &InvalidDutyActionError{Action: action, Reason: "unknown action"}
	}
	return nil
}

// WorkedMinutes computes minutes worked net of breaks. A still-open entry is
// measured up to now, as is a still-open break. Never negative.
func WorkedMinutes(e *TimesheetEntry, now time.Time) int {
	if e == nil || e.ClockInTime.IsZero() {
		return 0
	}

	end := e.ClockOutTime
	if end.IsZero() {
		end = now
	}

	breakTotal := e.TotalBreak
	if e.OnBreak() && now.After(e.BreakStartedAt) {
		breakTotal += now.Sub(e.BreakStartedAt)
	}

	minutes := int((end.Sub(e.ClockInTime) - breakTotal).Minutes())
	if minutes < 0 {
		return 0
	}
	return minutes
}
