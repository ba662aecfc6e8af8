package repository

import (
	"context"

	"nemt/internal/domain"
)

// TimesheetRepository defines the persistence operations for timesheets.
type TimesheetRepository interface {
	// Create persists a new timesheet entry.
	Create(ctx context.Context, entry *domain.TimesheetEntry) error

	// Update updates an existing timesheet entry.
	Update(ctx context.Context, entry *domain.TimesheetEntry) error

	// GetOpenByDriver retrieves the driver's open entry (clock-out not set).
	// Returns nil if no entry is open.
	GetOpenByDriver(ctx context.Context, driverID string) (*domain.TimesheetEntry, error)

	// GetByDriverDate retrieves the entry for a driver and calendar day.
	GetByDriverDate(ctx context.Context, driverID, date string) (*domain.TimesheetEntry, error)
}
