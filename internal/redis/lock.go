package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore serializes transition persistence per entity key.
// Trips lock on trip ID; timesheets and shifts lock on driver+date.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireTripLock attempts to acquire the single-writer lock for a trip.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireTripLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:trip:%s", tripID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseTripLock releases the lock for the given trip.
func (s *LockStore) ReleaseTripLock(ctx context.Context, tripID string) error {
	key := fmt.Sprintf("lock:trip:%s", tripID)

	return s.client.Del(ctx, key).Err()
}

// AcquireDriverDayLock attempts to acquire the lock guarding a driver's
// timesheet and shifts for one calendar day.
func (s *LockStore) AcquireDriverDayLock(ctx context.Context, driverID, date string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:driverday:%s:%s", driverID, date)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseDriverDayLock releases the driver+date lock.
func (s *LockStore) ReleaseDriverDayLock(ctx context.Context, driverID, date string) error {
	key := fmt.Sprintf("lock:driverday:%s:%s", driverID, date)

	return s.client.Del(ctx, key).Err()
}
