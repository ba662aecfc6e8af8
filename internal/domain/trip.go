package domain

import "time"

// TripStatus represents the current status of a scheduled transport trip.
type TripStatus string

const (
	TripStatusPending       TripStatus = "PENDING"
	TripStatusConfirmed     TripStatus = "CONFIRMED"
	TripStatusAssigned      TripStatus = "ASSIGNED"
	TripStatusDriverEnRoute TripStatus = "DRIVER_EN_ROUTE"
	TripStatusDriverArrived TripStatus = "DRIVER_ARRIVED"
	TripStatusInProgress    TripStatus = "IN_PROGRESS"
	TripStatusCompleted     TripStatus = "COMPLETED"
	TripStatusCancelled     TripStatus = "CANCELLED"
	TripStatusNoShow        TripStatus = "NO_SHOW"
)

// LevelOfService describes the mobility assistance a trip requires.
type LevelOfService string

const (
	LevelAmbulatory LevelOfService = "AMBULATORY"
	LevelWheelchair LevelOfService = "WHEELCHAIR"
	LevelStretcher  LevelOfService = "STRETCHER"
)

// Trip represents a scheduled medical transport trip.
type Trip struct {
	ID                  string
	PassengerName       string
	PickupAddress       string
	DropoffAddress      string
	ScheduledPickupTime time.Time
	LevelOfService      LevelOfService
	WillCall            bool // return leg activated on demand rather than at a fixed time
	Status              TripStatus
	DriverID            string
	ActualPickupTime    time.Time
	ActualDropoffTime   time.Time
	CancelledAt         time.Time
	CancellationReason  string
	CreatedAt           time.Time
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s TripStatus) IsTerminal() bool {
	switch s {
	case TripStatusCompleted, TripStatusCancelled, TripStatusNoShow:
		return true
	}
	return false
}
