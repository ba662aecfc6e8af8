package service

import "errors"

var (
	// ErrInvalidTripID is returned when trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidShiftID is returned when shift ID is empty.
	ErrInvalidShiftID = errors.New("invalid shift id")

	// ErrInvalidPassengerName is returned when passenger name is empty.
	ErrInvalidPassengerName = errors.New("invalid passenger name")

	// ErrInvalidStatus is returned when a requested status is not a known value.
	ErrInvalidStatus = errors.New("invalid trip status")

	// ErrDriverRequired is returned when assigning a trip without a driver.
	ErrDriverRequired = errors.New("driver id required for assignment")

	// ErrInvalidShiftWindow is returned when a shift's end does not follow its start.
	ErrInvalidShiftWindow = errors.New("shift end must follow shift start")

	// ErrInvalidDate is returned when a date is not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date")

	// ErrShiftNotCancellable is returned when cancelling a completed or
	// already cancelled shift.
	ErrShiftNotCancellable = errors.New("shift cannot be cancelled in current state")

	// ErrEntityLocked is returned when another caller holds the entity's
	// single-writer lock.
	ErrEntityLocked = errors.New("entity is being modified by another request")
)
