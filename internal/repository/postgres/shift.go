package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"nemt/internal/domain"
	"nemt/internal/repository"
)

// ShiftRepository is a PostgreSQL implementation of repository.ShiftRepository.
type ShiftRepository struct {
	q Querier
}

// NewShiftRepository creates a new PostgreSQL shift repository.
func NewShiftRepository(db *sql.DB) *ShiftRepository {
	return &ShiftRepository{q: db}
}

// NewShiftRepositoryWithTx creates a shift repository using a transaction.
func NewShiftRepositoryWithTx(tx *sql.Tx) *ShiftRepository {
	return &ShiftRepository{q: tx}
}

const shiftColumns = `id, driver_id, shift_date, start_time, end_time, shift_type,
		status, is_recurring, recurrence_rule, parent_shift_id, created_at`

// Create persists a new shift.
func (r *ShiftRepository) Create(ctx context.Context, shift *domain.ScheduledShift) error {
	query := `
		INSERT INTO scheduled_shifts (` + shiftColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.q.ExecContext(ctx, query,
		shift.ID,
		shift.DriverID,
		shift.Date,
		shift.StartTime,
		shift.EndTime,
		shift.ShiftType,
		shift.Status,
		shift.IsRecurring,
		nullString(shift.RecurrenceRule),
		nullString(shift.ParentShiftID),
		shift.CreatedAt,
	)

	return err
}

// GetByID retrieves a shift by ID.
func (r *ShiftRepository) GetByID(ctx context.Context, id string) (*domain.ScheduledShift, error) {
	query := `SELECT ` + shiftColumns + ` FROM scheduled_shifts WHERE id = $1`

	shift, err := scanShift(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return shift, nil
}

// Update updates an existing shift.
func (r *ShiftRepository) Update(ctx context.Context, shift *domain.ScheduledShift) error {
	query := `
		UPDATE scheduled_shifts
		SET shift_date = $1, start_time = $2, end_time = $3, shift_type = $4,
			status = $5, is_recurring = $6, recurrence_rule = $7, parent_shift_id = $8
		WHERE id = $9
	`

	result, err := r.q.ExecContext(ctx, query,
		shift.Date,
		shift.StartTime,
		shift.EndTime,
		shift.ShiftType,
		shift.Status,
		shift.IsRecurring,
		nullString(shift.RecurrenceRule),
		nullString(shift.ParentShiftID),
		shift.ID,
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

// ListByDriverDate retrieves all shifts for a driver on a calendar day.
func (r *ShiftRepository) ListByDriverDate(ctx context.Context, driverID, date string) ([]*domain.ScheduledShift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM scheduled_shifts
		WHERE driver_id = $1 AND shift_date = $2
		ORDER BY start_time ASC
	`

	return r.queryShifts(ctx, query, driverID, date)
}

// ListChildren retrieves the shifts expanded from a recurring parent.
func (r *ShiftRepository) ListChildren(ctx context.Context, parentID string) ([]*domain.ScheduledShift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM scheduled_shifts
		WHERE parent_shift_id = $1
		ORDER BY shift_date ASC, start_time ASC
	`

	return r.queryShifts(ctx, query, parentID)
}

// FindOverlapping retrieves a non-cancelled shift whose interval overlaps the
// given one for the same driver and date. Returns nil if there is no conflict.
func (r *ShiftRepository) FindOverlapping(ctx context.Context, driverID, date string, start, end time.Time, excludeID string) (*domain.ScheduledShift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM scheduled_shifts
		WHERE driver_id = $1 AND shift_date = $2 AND status != $3
			AND start_time < $4 AND $5 < end_time
			AND id != $6
		LIMIT 1
	`

	shift, err := scanShift(r.q.QueryRowContext(ctx, query,
		driverID, date, domain.ShiftStatusCancelled, end, start, excludeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return shift, nil
}

func (r *ShiftRepository) queryShifts(ctx context.Context, query string, args ...any) ([]*domain.ScheduledShift, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []*domain.ScheduledShift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	return shifts, rows.Err()
}

func scanShift(row rowScanner) (*domain.ScheduledShift, error) {
	var shift domain.ScheduledShift
	var recurrenceRule, parentShiftID sql.NullString

	err := row.Scan(
		&shift.ID,
		&shift.DriverID,
		&shift.Date,
		&shift.StartTime,
		&shift.EndTime,
		&shift.ShiftType,
		&shift.Status,
		&shift.IsRecurring,
		&recurrenceRule,
		&parentShiftID,
		&shift.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	shift.RecurrenceRule = recurrenceRule.String
	shift.ParentShiftID = parentShiftID.String

	return &shift, nil
}

// Ensure ShiftRepository implements repository.ShiftRepository.
var _ repository.ShiftRepository = (*ShiftRepository)(nil)
