package repository

import (
	"context"

	"nemt/internal/domain"
)

// HistoryRepository defines the persistence operations for the append-only
// status history. Entries are never updated or deleted.
type HistoryRepository interface {
	// Append persists a new history entry.
	Append(ctx context.Context, entry *domain.StatusHistoryEntry) error

	// ListByTripID retrieves all entries for a trip ordered by creation time.
	ListByTripID(ctx context.Context, tripID string) ([]*domain.StatusHistoryEntry, error)
}
