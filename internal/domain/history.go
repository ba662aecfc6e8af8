package domain

import "time"

// Geolocation is a plain lat/lng pair captured with a status change.
type Geolocation struct {
	Lat float64
	Lng float64
}

// StatusHistoryEntry is an immutable, append-only record of one accepted
// transition. Ordering by Timestamp reconstructs the full lifecycle.
type StatusHistoryEntry struct {
	ID             string
	TripID         string
	PreviousStatus TripStatus
	NewStatus      TripStatus
	Timestamp      time.Time
	Note           string
	Location       *Geolocation
	Actor          string
}
