package domain

import "fmt"

// TimestampField identifies which trip timestamp a transition stamps.
type TimestampField string

const (
	TimestampNone          TimestampField = ""
	TimestampPickupActual  TimestampField = "actual_pickup_time"
	TimestampDropoffActual TimestampField = "actual_dropoff_time"
	TimestampCancelledAt   TimestampField = "cancelled_at"
)

// NotificationClass identifies the passenger notification a transition raises.
type NotificationClass string

const (
	NotificationNone          NotificationClass = ""
	NotificationDriverEnRoute NotificationClass = "DRIVER_EN_ROUTE"
	NotificationDriverArrived NotificationClass = "DRIVER_ARRIVED"
	NotificationTripCompleted NotificationClass = "TRIP_COMPLETED"
	NotificationTripCancelled NotificationClass = "TRIP_CANCELLED"
)

// transitionTable is the authoritative map of legal status edges.
// Terminal statuses are present with an empty edge set.
var transitionTable = map[TripStatus][]TripStatus{
	TripStatusPending:       {TripStatusConfirmed, TripStatusCancelled},
	TripStatusConfirmed:     {TripStatusAssigned, TripStatusCancelled},
	TripStatusAssigned:      {TripStatusDriverEnRoute, TripStatusCancelled},
	TripStatusDriverEnRoute: {TripStatusDriverArrived, TripStatusCancelled},
	TripStatusDriverArrived: {TripStatusInProgress, TripStatusNoShow, TripStatusCancelled},
	TripStatusInProgress:    {TripStatusCompleted, TripStatusCancelled},
	TripStatusCompleted:     {},
	TripStatusCancelled:     {},
	TripStatusNoShow:        {},
}

// ValidNext returns the allowed next statuses for the given status.
// Unknown statuses have no edges.
func ValidNext(s TripStatus) []TripStatus {
	edges := transitionTable[s]
	out := make([]TripStatus, len(edges))
	copy(out, edges)
	return out
}

// TransitionDecision is the engine's verdict for an accepted transition.
// Side effects are declared here, never executed; the calling service
// performs persistence and dispatch.
type TransitionDecision struct {
	From             TripStatus
	To               TripStatus
	TimestampField   TimestampField
	RequiresLocation bool
	Notification     NotificationClass
}

// InvalidTransitionError reports a rejected transition together with the
// edges that would have been accepted.
type InvalidTransitionError struct {
	Current   TripStatus
	Requested TripStatus
	ValidNext []TripStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s (valid: %v)", e.Current, e.Requested, e.ValidNext)
}

// ValidateTransition checks a requested status change against the transition
// table and, on acceptance, derives the timestamp field to stamp, whether
// geolocation should accompany the change, and the notification to raise.
func ValidateTransition(current, requested TripStatus) (TransitionDecision, error) {
	for _, next := range transitionTable[current] {
		if next == requested {
			return TransitionDecision{
				From:             current,
				To:               requested,
				TimestampField:   timestampFor(requested),
				RequiresLocation: locationRequired(requested),
				Notification:     notificationFor(requested),
			}, nil
		}
	}

	return TransitionDecision{}, &InvalidTransitionError{
		Current:   current,
		Requested: requested,
		ValidNext: ValidNext(current),
	}
}

func timestampFor(to TripStatus) TimestampField {
	switch to {
	case TripStatusInProgress:
		return TimestampPickupActual
	case TripStatusCompleted:
		return TimestampDropoffActual
	case TripStatusCancelled:
		return TimestampCancelledAt
	default:
		return TimestampNone
	}
}

// locationRequired reports whether the transition should carry a geolocation.
// Informational: the caller may proceed without one but should flag it.
func locationRequired(to TripStatus) bool {
	switch to {
	case TripStatusDriverEnRoute, TripStatusDriverArrived, TripStatusInProgress, TripStatusCompleted:
		return true
	default:
		return false
	}
}

func notificationFor(to TripStatus) NotificationClass {
	switch to {
	case TripStatusDriverEnRoute:
		return NotificationDriverEnRoute
	case TripStatusDriverArrived:
		return NotificationDriverArrived
	case TripStatusCompleted:
		return NotificationTripCompleted
	case TripStatusCancelled:
		return NotificationTripCancelled
	default:
		return NotificationNone
	}
}

// DriverAction is one entry in the driver-facing action menu.
type DriverAction struct {
	Next                 TripStatus
	Label                string
	RequiresConfirmation bool
}

// driverActionMenu projects the transition table down to the actions a driver
// (as opposed to a dispatcher) may trigger. Confirmation, assignment, and
// cancellation stay with dispatch.
var driverActionMenu = map[TripStatus][]DriverAction{
	TripStatusAssigned: {
		{Next: TripStatusDriverEnRoute, Label: "Head to Pickup"},
	},
	TripStatusDriverEnRoute: {
		{Next: TripStatusDriverArrived, Label: "Arrived at Pickup"},
	},
	TripStatusDriverArrived: {
		{Next: TripStatusInProgress, Label: "Start Trip"},
		{Next: TripStatusNoShow, Label: "Mark No Show", RequiresConfirmation: true},
	},
	TripStatusInProgress: {
		{Next: TripStatusCompleted, Label: "Complete Trip"},
	},
}

// DriverActions returns the ordered action menu for the given status.
// Statuses with no driver-permitted actions return an empty slice.
func DriverActions(s TripStatus) []DriverAction {
	actions := driverActionMenu[s]
	out := make([]DriverAction, len(actions))
	copy(out, actions)
	return out
}
