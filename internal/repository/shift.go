package repository

import (
	"context"
	"time"

	"nemt/internal/domain"
)

// ShiftRepository defines the persistence operations for scheduled shifts.
type ShiftRepository interface {
	// Create persists a new shift.
	Create(ctx context.Context, shift *domain.ScheduledShift) error

	// GetByID retrieves a shift by ID.
	GetByID(ctx context.Context, id string) (*domain.ScheduledShift, error)

	// Update updates an existing shift.
	Update(ctx context.Context, shift *domain.ScheduledShift) error

	// ListByDriverDate retrieves all shifts for a driver on a calendar day.
	ListByDriverDate(ctx context.Context, driverID, date string) ([]*domain.ScheduledShift, error)

	// ListChildren retrieves the shifts expanded from a recurring parent.
	ListChildren(ctx context.Context, parentID string) ([]*domain.ScheduledShift, error)

	// FindOverlapping retrieves a non-cancelled shift for the same driver and
	// date whose [start, end) interval overlaps the given one, excluding the
	// shift with excludeID. Returns nil if there is no conflict.
	FindOverlapping(ctx context.Context, driverID, date string, start, end time.Time, excludeID string) (*domain.ScheduledShift, error)
}
