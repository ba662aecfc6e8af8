package domain

import (
	"errors"
	"testing"
)

var allStatuses = []TripStatus{
	TripStatusPending,
	TripStatusConfirmed,
	TripStatusAssigned,
	TripStatusDriverEnRoute,
	TripStatusDriverArrived,
	TripStatusInProgress,
	TripStatusCompleted,
	TripStatusCancelled,
	TripStatusNoShow,
}

// expectedEdges mirrors the authoritative edge set independently so a typo in
// the table cannot hide behind the implementation under test.
var expectedEdges = map[TripStatus]map[TripStatus]bool{
	TripStatusPending:       {TripStatusConfirmed: true, TripStatusCancelled: true},
	TripStatusConfirmed:     {TripStatusAssigned: true, TripStatusCancelled: true},
	TripStatusAssigned:      {TripStatusDriverEnRoute: true, TripStatusCancelled: true},
	TripStatusDriverEnRoute: {TripStatusDriverArrived: true, TripStatusCancelled: true},
	TripStatusDriverArrived: {TripStatusInProgress: true, TripStatusNoShow: true, TripStatusCancelled: true},
	TripStatusInProgress:    {TripStatusCompleted: true, TripStatusCancelled: true},
	TripStatusCompleted:     {},
	TripStatusCancelled:     {},
	TripStatusNoShow:        {},
}

func TestValidateTransition_FullMatrix(t *testing.T) {
	t.Parallel()

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			_, err := ValidateTransition(from, to)
			allowed := err == nil

			if allowed != expectedEdges[from][to] {
				t.Errorf("%s -> %s: allowed=%v, want %v", from, to, allowed, expectedEdges[from][to])
			}
		}
	}
}

func TestValidateTransition_SelfAlwaysRejected(t *testing.T) {
	t.Parallel()

	for _, s := range allStatuses {
		if _, err := ValidateTransition(s, s); err == nil {
			t.Errorf("%s -> %s: self transition must be rejected", s, s)
		}
	}
}

func TestValidateTransition_TerminalStatesHaveNoEdges(t *testing.T) {
	t.Parallel()

	for _, s := range []TripStatus{TripStatusCompleted, TripStatusCancelled, TripStatusNoShow} {
		if !s.IsTerminal() {
			t.Errorf("%s: expected terminal", s)
		}
		if next := ValidNext(s); len(next) != 0 {
			t.Errorf("%s: expected no outgoing edges, got %v", s, next)
		}

		for _, to := range allStatuses {
			_, err := ValidateTransition(s, to)

			var invalid *InvalidTransitionError
			if !errors.As(err, &invalid) {
				t.Fatalf("%s -> %s: expected InvalidTransitionError, got %v", s, to, err)
			}
			if len(invalid.ValidNext) != 0 {
				t.Errorf("%s -> %s: expected empty valid-next list, got %v", s, to, invalid.ValidNext)
			}
		}
	}
}

func TestValidateTransition_Decisions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		from             TripStatus
		to               TripStatus
		timestampField   TimestampField
		requiresLocation bool
		notification     NotificationClass
	}{
		{"confirm", TripStatusPending, TripStatusConfirmed, TimestampNone, false, NotificationNone},
		{"assign", TripStatusConfirmed, TripStatusAssigned, TimestampNone, false, NotificationNone},
		{"en route", TripStatusAssigned, TripStatusDriverEnRoute, TimestampNone, true, NotificationDriverEnRoute},
		{"arrived", TripStatusDriverEnRoute, TripStatusDriverArrived, TimestampNone, true, NotificationDriverArrived},
		{"start trip", TripStatusDriverArrived, TripStatusInProgress, TimestampPickupActual, true, NotificationNone},
		{"complete", TripStatusInProgress, TripStatusCompleted, TimestampDropoffActual, true, NotificationTripCompleted},
		{"cancel", TripStatusPending, TripStatusCancelled, TimestampCancelledAt, false, NotificationTripCancelled},
		{"no show", TripStatusDriverArrived, TripStatusNoShow, TimestampNone, false, NotificationNone},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			decision, err := ValidateTransition(tt.from, tt.to)
			if err != nil {
				t.Fatalf("unexpected rejection: %v", err)
			}

			if decision.TimestampField != tt.timestampField {
				t.Errorf("timestamp field = %q, want %q", decision.TimestampField, tt.timestampField)
			}
			if decision.RequiresLocation != tt.requiresLocation {
				t.Errorf("requires location = %v, want %v", decision.RequiresLocation, tt.requiresLocation)
			}
			if decision.Notification != tt.notification {
				t.Errorf("notification = %q, want %q", decision.Notification, tt.notification)
			}
		})
	}
}

func TestValidateTransition_RejectionReportsValidNext(t *testing.T) {
	t.Parallel()

	_, err := ValidateTransition(TripStatusPending, TripStatusCompleted)

	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}

	if invalid.Current != TripStatusPending || invalid.Requested != TripStatusCompleted {
		t.Errorf("offending pair = (%s, %s)", invalid.Current, invalid.Requested)
	}

	want := []TripStatus{TripStatusConfirmed, TripStatusCancelled}
	if len(invalid.ValidNext) != len(want) {
		t.Fatalf("valid next = %v, want %v", invalid.ValidNext, want)
	}
	for i, s := range want {
		if invalid.ValidNext[i] != s {
			t.Errorf("valid next = %v, want %v", invalid.ValidNext, want)
		}
	}
}

func TestValidateTransition_UnknownStatusRejected(t *testing.T) {
	t.Parallel()

	if _, err := ValidateTransition(TripStatus("BOGUS"), TripStatusConfirmed); err == nil {
		t.Error("expected rejection for unknown current status")
	}
	if _, err := ValidateTransition(TripStatusPending, TripStatus("BOGUS")); err == nil {
		t.Error("expected rejection for unknown requested status")
	}
}

func TestDriverActions(t *testing.T) {
	t.Parallel()

	arrived := DriverActions(TripStatusDriverArrived)
	if len(arrived) != 2 {
		t.Fatalf("expected 2 actions from DRIVER_ARRIVED, got %d", len(arrived))
	}
	if arrived[0].Next != TripStatusInProgress || arrived[0].Label != "Start Trip" {
		t.Errorf("first action = %+v", arrived[0])
	}
	if arrived[0].RequiresConfirmation {
		t.Error("Start Trip must not require confirmation")
	}
	if arrived[1].Next != TripStatusNoShow || !arrived[1].RequiresConfirmation {
		t.Errorf("second action = %+v, want no-show with confirmation", arrived[1])
	}

	// Dispatcher-only statuses expose no driver actions.
	if actions := DriverActions(TripStatusPending); len(actions) != 0 {
		t.Errorf("PENDING actions = %v, want none", actions)
	}
	if actions := DriverActions(TripStatusCompleted); len(actions) != 0 {
		t.Errorf("COMPLETED actions = %v, want none", actions)
	}
}

func TestDriverActions_EdgesAreValidTransitions(t *testing.T) {
	t.Parallel()

	for _, from := range allStatuses {
		for _, action := range DriverActions(from) {
			if _, err := ValidateTransition(from, action.Next); err != nil {
				t.Errorf("action menu edge %s -> %s is not a legal transition", from, action.Next)
			}
		}
	}
}
