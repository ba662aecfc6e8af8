package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// DutyCache caches drivers' live duty status for fast lookup.
type DutyCache struct {
	client *redis.Client
}

// NewDutyCache creates a new DutyCache.
func NewDutyCache(client *redis.Client) *DutyCache {
	return &DutyCache{client: client}
}

// DutyStatusTTL is short because worked minutes advance continuously.
const DutyStatusTTL = 15 * time.Second

const dutyCachePrefix = "cache:duty:"

// CachedDutyStatus is the cached projection of a driver's duty cycle.
type CachedDutyStatus struct {
	DriverID      string    `json:"driver_id"`
	Date          string    `json:"date"`
	ClockedIn     bool      `json:"clocked_in"`
	OnBreak       bool      `json:"on_break"`
	WorkedMinutes int       `json:"worked_minutes"`
	ClockInTime   time.Time `json:"clock_in_time"`
	AsOf          time.Time `json:"as_of"`
}

// GetDutyStatus retrieves a driver's duty status from cache.
// Returns nil on cache miss.
func (c *DutyCache) GetDutyStatus(ctx context.Context, driverID string) (*CachedDutyStatus, error) {
	key := dutyCachePrefix + driverID
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var status CachedDutyStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SetDutyStatus stores a driver's duty status in cache.
func (c *DutyCache) SetDutyStatus(ctx context.Context, status *CachedDutyStatus) error {
	key := dutyCachePrefix + status.DriverID
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, DutyStatusTTL).Err()
}

// InvalidateDutyStatus removes a driver's duty status from cache.
func (c *DutyCache) InvalidateDutyStatus(ctx context.Context, driverID string) error {
	key := dutyCachePrefix + driverID
	return c.client.Del(ctx, key).Err()
}
