package postgres

import (
	"context"
	"database/sql"
	"errors"

	"nemt/internal/domain"
	"nemt/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `id, passenger_name, pickup_address, dropoff_address, scheduled_pickup_time,
		level_of_service, will_call, status, driver_id, actual_pickup_time, actual_dropoff_time,
		cancelled_at, cancellation_reason, created_at`

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.PassengerName,
		trip.PickupAddress,
		trip.DropoffAddress,
		trip.ScheduledPickupTime,
		trip.LevelOfService,
		trip.WillCall,
		trip.Status,
		nullString(trip.DriverID),
		nullTime(trip.ActualPickupTime),
		nullTime(trip.ActualDropoffTime),
		nullTime(trip.CancelledAt),
		nullString(trip.CancellationReason),
		trip.CreatedAt,
	)

	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return trip, nil
}

// GetAll retrieves all trips, most recently created first.
func (r *TripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}

// Update updates an existing trip.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET passenger_name = $1, pickup_address = $2, dropoff_address = $3,
			scheduled_pickup_time = $4, level_of_service = $5, will_call = $6,
			status = $7, driver_id = $8, actual_pickup_time = $9,
			actual_dropoff_time = $10, cancelled_at = $11, cancellation_reason = $12
		WHERE id = $13
	`

	result, err := r.q.ExecContext(ctx, query,
		trip.PassengerName,
		trip.PickupAddress,
		trip.DropoffAddress,
		trip.ScheduledPickupTime,
		trip.LevelOfService,
		trip.WillCall,
		trip.Status,
		nullString(trip.DriverID),
		nullTime(trip.ActualPickupTime),
		nullTime(trip.ActualDropoffTime),
		nullTime(trip.CancelledAt),
		nullString(trip.CancellationReason),
		trip.ID,
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

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	var trip domain.Trip
	var driverID, cancellationReason sql.NullString
	var pickupAt, dropoffAt, cancelledAt sql.NullTime

	err := row.Scan(
		&trip.ID,
		&trip.PassengerName,
		&trip.PickupAddress,
		&trip.DropoffAddress,
		&trip.ScheduledPickupTime,
		&trip.LevelOfService,
		&trip.WillCall,
		&trip.Status,
		&driverID,
		&pickupAt,
		&dropoffAt,
		&cancelledAt,
		&cancellationReason,
		&trip.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	trip.DriverID = driverID.String
	trip.CancellationReason = cancellationReason.String
	if pickupAt.Valid {
		trip.ActualPickupTime = pickupAt.Time
	}
	if dropoffAt.Valid {
		trip.ActualDropoffTime = dropoffAt.Time
	}
	if cancelledAt.Valid {
		trip.CancelledAt = cancelledAt.Time
	}

	return &trip, nil
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
