package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"nemt/internal/domain"
	"nemt/internal/repository"
)

// TimesheetRepository is a PostgreSQL implementation of repository.TimesheetRepository.
type TimesheetRepository struct {
	q Querier
}

// NewTimesheetRepository creates a new PostgreSQL timesheet repository.
func NewTimesheetRepository(db *sql.DB) *TimesheetRepository {
	return &TimesheetRepository{q: db}
}

// NewTimesheetRepositoryWithTx creates a timesheet repository using a transaction.
func NewTimesheetRepositoryWithTx(tx *sql.Tx) *TimesheetRepository {
	return &TimesheetRepository{q: tx}
}

const timesheetColumns = `id, driver_id, entry_date, clock_in_time, clock_out_time,
		break_started_at, total_break_seconds, worked_minutes`

// Create persists a new timesheet entry.
func (r *TimesheetRepository) Create(ctx context.Context, entry *domain.TimesheetEntry) error {
	query := `
		INSERT INTO timesheet_entries (` + timesheetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		entry.ID,
		entry.DriverID,
		entry.Date,
		entry.ClockInTime,
		nullTime(entry.ClockOutTime),
		nullTime(entry.BreakStartedAt),
		int64(entry.TotalBreak.Seconds()),
		entry.WorkedMinutes,
	)

	return err
}

// Update updates an existing timesheet entry.
func (r *TimesheetRepository) Update(ctx context.Context, entry *domain.TimesheetEntry) error {
	query := `
		UPDATE timesheet_entries
		SET clock_in_time = $1, clock_out_time = $2, break_started_at = $3,
			total_break_seconds = $4, worked_minutes = $5
		WHERE id = $6
	`

	result, err := r.q.ExecContext(ctx, query,
		entry.ClockInTime,
		nullTime(entry.ClockOutTime),
		nullTime(entry.BreakStartedAt),
		int64(entry.TotalBreak.Seconds()),
		entry.WorkedMinutes,
		entry.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// GetOpenByDriver retrieves the driver's open entry.
// Returns nil if no entry is open.
func (r *TimesheetRepository) GetOpenByDriver(ctx context.Context, driverID string) (*domain.TimesheetEntry, error) {
	query := `
		SELECT ` + timesheetColumns + `
		FROM timesheet_entries
		WHERE driver_id = $1 AND clock_out_time IS NULL
		LIMIT 1
	`

	entry, err := scanTimesheet(r.q.QueryRowContext(ctx, query, driverID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return entry, nil
}

// GetByDriverDate retrieves the entry for a driver and calendar day.
func (r *TimesheetRepository) GetByDriverDate(ctx context.Context, driverID, date string) (*domain.TimesheetEntry, error) {
	query := `
		SELECT ` + timesheetColumns + `
		FROM timesheet_entries
		WHERE driver_id = $1 AND entry_date = $2
		LIMIT 1
	`

	entry, err := scanTimesheet(r.q.QueryRowContext(ctx, query, driverID, date))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return entry, nil
}

func scanTimesheet(row rowScanner) (*domain.TimesheetEntry, error) {
	var entry domain.TimesheetEntry
	var clockOut, breakStart sql.NullTime
	var totalBreakSeconds int64

	err := row.Scan(
		&entry.ID,
		&entry.DriverID,
		&entry.Date,
		&entry.ClockInTime,
		&clockOut,
		&breakStart,
		&totalBreakSeconds,
		&entry.WorkedMinutes,
	)
	if err != nil {
		return nil, err
	}

	if clockOut.Valid {
		entry.ClockOutTime = clockOut.Time
	}
	if breakStart.Valid {
		entry.BreakStartedAt = breakStart.Time
	}
	entry.TotalBreak = time.Duration(totalBreakSeconds) * time.Second

	return &entry, nil
}

// Ensure TimesheetRepository implements repository.TimesheetRepository.
var _ repository.TimesheetRepository = (*TimesheetRepository)(nil)
