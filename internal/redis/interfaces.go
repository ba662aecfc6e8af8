package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for per-entity locking.
type LockStoreInterface interface {
	AcquireTripLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error)
	ReleaseTripLock(ctx context.Context, tripID string) error
	AcquireDriverDayLock(ctx context.Context, driverID, date string, ttl time.Duration) (bool, error)
	ReleaseDriverDayLock(ctx context.Context, driverID, date string) error
}

// DutyCacheInterface defines the interface for duty-status caching.
type DutyCacheInterface interface {
	GetDutyStatus(ctx context.Context, driverID string) (*CachedDutyStatus, error)
	SetDutyStatus(ctx context.Context, status *CachedDutyStatus) error
	InvalidateDutyStatus(ctx context.Context, driverID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface = (*LockStore)(nil)
	_ DutyCacheInterface = (*DutyCache)(nil)
)
