package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"nemt/internal/domain"
	"nemt/internal/redis"
	"nemt/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Trip, 0, len(m.trips))
	for _, t := range m.trips {
		copy := *t
		out = append(out, &copy)
	}
	return out, nil
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[trip.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

// ──────────────────────────────────────────────
// MOCK HISTORY REPOSITORY
// ──────────────────────────────────────────────

// MockHistoryRepository is a mock implementation of HistoryRepository.
type MockHistoryRepository struct {
	mu      sync.RWMutex
	entries []*domain.StatusHistoryEntry

	AppendCallCount int32
	AppendError     error
}

// NewMockHistoryRepository creates a new mock history repository.
func NewMockHistoryRepository() *MockHistoryRepository {
	return &MockHistoryRepository{}
}

func (m *MockHistoryRepository) Append(ctx context.Context, entry *domain.StatusHistoryEntry) error {
	atomic.AddInt32(&m.AppendCallCount, 1)
	if m.AppendError != nil {
		return m.AppendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *entry
	m.entries = append(m.entries, &copy)
	return nil
}

func (m *MockHistoryRepository) ListByTripID(ctx context.Context, tripID string) ([]*domain.StatusHistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.StatusHistoryEntry
	for _, e := range m.entries {
		if e.TripID == tripID {
			copy := *e
			out = append(out, &copy)
		}
	}
	return out, nil
}

// ──────────────────────────────────────────────
// MOCK TIMESHEET REPOSITORY
// ──────────────────────────────────────────────

// MockTimesheetRepository is a mock implementation of TimesheetRepository.
type MockTimesheetRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.TimesheetEntry

	CreateCallCount int32
	UpdateCallCount int32

	CreateError error
	UpdateError error
}

// NewMockTimesheetRepository creates a new mock timesheet repository.
func NewMockTimesheetRepository() *MockTimesheetRepository {
	return &MockTimesheetRepository{
		entries: make(map[string]*domain.TimesheetEntry),
	}
}

// AddEntry adds a timesheet entry to the mock repository.
func (m *MockTimesheetRepository) AddEntry(entry *domain.TimesheetEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
}

func (m *MockTimesheetRepository) Create(ctx context.Context, entry *domain.TimesheetEntry) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *entry
	m.entries[entry.ID] = &copy
	return nil
}

func (m *MockTimesheetRepository) Update(ctx context.Context, entry *domain.TimesheetEntry) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[entry.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *entry
	m.entries[entry.ID] = &copy
	return nil
}

func (m *MockTimesheetRepository) GetOpenByDriver(ctx context.Context, driverID string) (*domain.TimesheetEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.DriverID == driverID && e.Open() {
			copy := *e
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockTimesheetRepository) GetByDriverDate(ctx context.Context, driverID, date string) (*domain.TimesheetEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.DriverID == driverID && e.Date == date {
			copy := *e
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ──────────────────────────────────────────────
// MOCK SHIFT REPOSITORY
// ──────────────────────────────────────────────

// MockShiftRepository is a mock implementation of ShiftRepository.
type MockShiftRepository struct {
	mu     sync.RWMutex
	shifts map[string]*domain.ScheduledShift

	CreateCallCount int32
	UpdateCallCount int32

	CreateError error
	UpdateError error
}

// NewMockShiftRepository creates a new mock shift repository.
func NewMockShiftRepository() *MockShiftRepository {
	return &MockShiftRepository{
		shifts: make(map[string]*domain.ScheduledShift),
	}
}

// AddShift adds a shift to the mock repository.
func (m *MockShiftRepository) AddShift(shift *domain.ScheduledShift) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts[shift.ID] = shift
}

func (m *MockShiftRepository) Create(ctx context.Context, shift *domain.ScheduledShift) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *shift
	m.shifts[shift.ID] = &copy
	return nil
}

func (m *MockShiftRepository) GetByID(ctx context.Context, id string) (*domain.ScheduledShift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	shift, ok := m.shifts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *shift
	return &copy, nil
}

func (m *MockShiftRepository) Update(ctx context.Context, shift *domain.ScheduledShift) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shifts[shift.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *shift
	m.shifts[shift.ID] = &copy
	return nil
}

func (m *MockShiftRepository) ListByDriverDate(ctx context.Context, driverID, date string) ([]*domain.ScheduledShift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ScheduledShift
	for _, s := range m.shifts {
		if s.DriverID == driverID && s.Date == date {
			copy := *s
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (m *MockShiftRepository) ListChildren(ctx context.Context, parentID string) ([]*domain.ScheduledShift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ScheduledShift
	for _, s := range m.shifts {
		if s.ParentShiftID == parentID {
			copy := *s
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (m *MockShiftRepository) FindOverlapping(ctx context.Context, driverID, date string, start, end time.Time, excludeID string) (*domain.ScheduledShift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.shifts {
		if s.DriverID != driverID || s.Date != date || s.ID == excludeID {
			continue
		}
		if s.Status == domain.ShiftStatusCancelled {
			continue
		}
		if domain.Overlaps(s.StartTime, s.EndTime, start, end) {
			copy := *s
			return &copy, nil
		}
	}
	return nil, nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	// DenyAll makes every acquisition fail, simulating a held lock.
	DenyAll bool

	AcquireCallCount int32
	ReleaseCallCount int32
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]bool),
	}
}

func (m *MockLockStore) acquire(key string) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.DenyAll {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[key] {
		return false, nil
	}
	m.locks[key] = true
	return true, nil
}

func (m *MockLockStore) release(key string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, key)
	return nil
}

func (m *MockLockStore) AcquireTripLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error) {
	return m.acquire("trip:" + tripID)
}

func (m *MockLockStore) ReleaseTripLock(ctx context.Context, tripID string) error {
	return m.release("trip:" + tripID)
}

func (m *MockLockStore) AcquireDriverDayLock(ctx context.Context, driverID, date string, ttl time.Duration) (bool, error) {
	return m.acquire("driverday:" + driverID + ":" + date)
}

func (m *MockLockStore) ReleaseDriverDayLock(ctx context.Context, driverID, date string) error {
	return m.release("driverday:" + driverID + ":" + date)
}

// ──────────────────────────────────────────────
// MOCK DUTY CACHE
// ──────────────────────────────────────────────

// MockDutyCache is a mock implementation of DutyCacheInterface.
type MockDutyCache struct {
	mu       sync.RWMutex
	statuses map[string]*redis.CachedDutyStatus

	SetCallCount        int32
	InvalidateCallCount int32
}

// NewMockDutyCache creates a new mock duty cache.
func NewMockDutyCache() *MockDutyCache {
	return &MockDutyCache{
		statuses: make(map[string]*redis.CachedDutyStatus),
	}
}

func (m *MockDutyCache) GetDutyStatus(ctx context.Context, driverID string) (*redis.CachedDutyStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status, ok := m.statuses[driverID]
	if !ok {
		return nil, nil
	}
	copy := *status
	return &copy, nil
}

func (m *MockDutyCache) SetDutyStatus(ctx context.Context, status *redis.CachedDutyStatus) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *status
	m.statuses[status.DriverID] = &copy
	return nil
}

func (m *MockDutyCache) InvalidateDutyStatus(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.statuses, driverID)
	return nil
}

// Interface compliance checks.
var (
	_ repository.TripRepository      = (*MockTripRepository)(nil)
	_ repository.HistoryRepository   = (*MockHistoryRepository)(nil)
	_ repository.TimesheetRepository = (*MockTimesheetRepository)(nil)
	_ repository.ShiftRepository     = (*MockShiftRepository)(nil)
	_ redis.LockStoreInterface       = (*MockLockStore)(nil)
	_ redis.DutyCacheInterface       = (*MockDutyCache)(nil)
)
