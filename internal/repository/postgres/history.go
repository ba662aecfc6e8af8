package postgres

import (
	"context"
	"database/sql"

	"nemt/internal/domain"
	"nemt/internal/repository"
)

// HistoryRepository is a PostgreSQL implementation of repository.HistoryRepository.
type HistoryRepository struct {
	q Querier
}

// NewHistoryRepository creates a new PostgreSQL history repository.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{q: db}
}

// NewHistoryRepositoryWithTx creates a history repository using a transaction.
func NewHistoryRepositoryWithTx(tx *sql.Tx) *HistoryRepository {
	return &HistoryRepository{q: tx}
}

// Append persists a new history entry.
func (r *HistoryRepository) Append(ctx context.Context, entry *domain.StatusHistoryEntry) error {
	query := `
		INSERT INTO trip_status_history (id, trip_id, previous_status, new_status, created_at, note, lat, lng, actor)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var lat, lng sql.NullFloat64
	if entry.Location != nil {
		lat = sql.NullFloat64{Float64: entry.Location.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: entry.Location.Lng, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		entry.ID,
		entry.TripID,
		entry.PreviousStatus,
		entry.NewStatus,
		entry.Timestamp,
		nullString(entry.Note),
		lat,
		lng,
		nullString(entry.Actor),
	)

	return err
}

// ListByTripID retrieves all entries for a trip ordered by creation time.
func (r *HistoryRepository) ListByTripID(ctx context.Context, tripID string) ([]*domain.StatusHistoryEntry, error) {
	query := `
		SELECT id, trip_id, previous_status, new_status, created_at, note, lat, lng, actor
		FROM trip_status_history
		WHERE trip_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.q.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.StatusHistoryEntry
	for rows.Next() {
		var entry domain.StatusHistoryEntry
		var note, actor sql.NullString
		var lat, lng sql.NullFloat64

		if err := rows.Scan(
			&entry.ID,
			&entry.TripID,
			&entry.PreviousStatus,
			&entry.NewStatus,
			&entry.Timestamp,
			&note,
			&lat,
			&lng,
			&actor,
		); err != nil {
			return nil, err
		}

		entry.Note = note.String
		entry.Actor = actor.String
		if lat.Valid && lng.Valid {
			entry.Location = &domain.Geolocation{Lat: lat.Float64, Lng: lng.Float64}
		}

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// Ensure HistoryRepository implements repository.HistoryRepository.
var _ repository.HistoryRepository = (*HistoryRepository)(nil)
