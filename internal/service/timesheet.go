package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"nemt/internal/domain"
	"nemt/internal/redis"
	"nemt/internal/repository"
)

const dutyLockTTL = 5 * time.Second

// TimesheetService orchestrates the driver duty cycle. The legality of each
// action is decided by the pure duty-cycle engine; this service applies the
// resulting mutation and keeps the live-status cache fresh.
type TimesheetService struct {
	timesheetRepo repository.TimesheetRepository
	lockStore     redis.LockStoreInterface
	dutyCache     redis.DutyCacheInterface
	window        domain.ServiceWindow
	now           func() time.Time
}

// NewTimesheetService creates a new TimesheetService.
func NewTimesheetService(
	timesheetRepo repository.TimesheetRepository,
	lockStore redis.LockStoreInterface,
	dutyCache redis.DutyCacheInterface,
	window domain.ServiceWindow,
) *TimesheetService {
	return &TimesheetService{
		timesheetRepo: timesheetRepo,
		lockStore:     lockStore,
		dutyCache:     dutyCache,
		window:        window,
		now:           time.Now,
	}
}

// WithClock overrides the service's clock. Used by tests.
func (s *TimesheetService) WithClock(now func() time.Time) *TimesheetService {
	s.now = now
	return s
}

// ClockIn opens a new timesheet entry for the driver's current date.
func (s *TimesheetService) ClockIn(ctx context.Context, driverID string) (*domain.TimesheetEntry, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	now := s.now()
	release, err := s.lockDriverDay(ctx, driverID, now)
	if err != nil {
		return nil, err
	}
	defer release()

	open, err := s.timesheetRepo.GetOpenByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	if err := domain.EvaluateClockAction(domain.ActionClockIn, open, now, s.window); err != nil {
		return nil, err
	}

	entry := &domain.TimesheetEntry{
		ID:          uuid.New().String(),
		DriverID:    driverID,
		Date:        now.Format("2006-01-02"),
		ClockInTime: now,
	}

	if err := s.timesheetRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.cacheStatus(ctx, entry, now)

	return entry, nil
}

// ClockOut closes the driver's open entry and fixes the final worked minutes.
func (s *TimesheetService) ClockOut(ctx context.Context, driverID string) (*domain.TimesheetEntry, error) {
	return s.applyAction(ctx, driverID, domain.ActionClockOut, func(entry *domain.TimesheetEntry, now time.Time) {
		entry.ClockOutTime = now
		entry.WorkedMinutes = domain.WorkedMinutes(entry, now)
	})
}

// StartBreak opens a break against the driver's open entry.
func (s *TimesheetService) StartBreak(ctx context.Context, driverID string) (*domain.TimesheetEntry, error) {
	return s.applyAction(ctx, driverID, domain.ActionStartBreak, func(entry *domain.TimesheetEntry, now time.Time) {
		entry.BreakStartedAt = now
	})
}

// EndBreak closes the open break and accumulates its span.
func (s *TimesheetService) EndBreak(ctx context.Context, driverID string) (*domain.TimesheetEntry, error) {
	return s.applyAction(ctx, driverID, domain.ActionEndBreak, func(entry *domain.TimesheetEntry, now time.Time) {
		entry.TotalBreak += now.Sub(entry.BreakStartedAt)
		entry.BreakStartedAt = time.Time{}
	})
}

// applyAction runs the shared evaluate-mutate-persist path for actions that
// require an open entry.
func (s *TimesheetService) applyAction(ctx context.Context, driverID string, action domain.ClockAction, mutate func(*domain.TimesheetEntry, time.Time)) (*domain.TimesheetEntry, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	now := s.now()
	release, err := s.lockDriverDay(ctx, driverID, now)
	if err != nil {
		return nil, err
	}
	defer release()

	entry, err := s.timesheetRepo.GetOpenByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	if err := domain.EvaluateClockAction(action, entry, now, s.window); err != nil {
		return nil, err
	}

	mutate(entry, now)

	if err := s.timesheetRepo.Update(ctx, entry); err != nil {
		return nil, err
	}

	s.cacheStatus(ctx, entry, now)

	return entry, nil
}

// DutyStatus is a driver's live duty-cycle projection.
type DutyStatus struct {
	DriverID      string
	Date          string
	ClockedIn     bool
	OnBreak       bool
	WorkedMinutes int
	ClockInTime   time.Time
}

// GetDutyStatus returns the driver's live status, serving from cache when a
// fresh projection is available.
func (s *TimesheetService) GetDutyStatus(ctx context.Context, driverID string) (*DutyStatus, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	if s.dutyCache != nil {
		cached, err := s.dutyCache.GetDutyStatus(ctx, driverID)
		if err == nil && cached != nil {
			return &DutyStatus{
				DriverID:      cached.DriverID,
				Date:          cached.Date,
				ClockedIn:     cached.ClockedIn,
				OnBreak:       cached.OnBreak,
				WorkedMinutes: cached.WorkedMinutes,
				ClockInTime:   cached.ClockInTime,
			}, nil
		}
	}

	now := s.now()
	entry, err := s.timesheetRepo.GetOpenByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	status := &DutyStatus{DriverID: driverID}
	if entry.Open() {
		status.Date = entry.Date
		status.ClockedIn = true
		status.OnBreak = entry.OnBreak()
		status.WorkedMinutes = domain.WorkedMinutes(entry, now)
		status.ClockInTime = entry.ClockInTime
	}

	s.cacheStatus(ctx, entry, now)

	return status, nil
}

// GetTimesheet retrieves the entry for a driver and date.
func (s *TimesheetService) GetTimesheet(ctx context.Context, driverID, date string) (*domain.TimesheetEntry, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, ErrInvalidDate
	}

	return s.timesheetRepo.GetByDriverDate(ctx, driverID, date)
}

func (s *TimesheetService) lockDriverDay(ctx context.Context, driverID string, now time.Time) (func(), error) {
	if s.lockStore == nil {
		return func() {}, nil
	}

	date := now.Format("2006-01-02")
	ok, err := s.lockStore.AcquireDriverDayLock(ctx, driverID, date, dutyLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrEntityLocked
	}

	return func() {
		_ = s.lockStore.ReleaseDriverDayLock(ctx, driverID, date)
	}, nil
}

func (s *TimesheetService) cacheStatus(ctx context.Context, entry *domain.TimesheetEntry, now time.Time) {
	if s.dutyCache == nil || entry == nil {
		return
	}

	// A closed entry means the driver is off duty; drop the projection so
	// the next read rebuilds from storage.
	if !entry.Open() {
		_ = s.dutyCache.InvalidateDutyStatus(ctx, entry.DriverID)
		return
	}

	_ = s.dutyCache.SetDutyStatus(ctx, &redis.CachedDutyStatus{
		DriverID:      entry.DriverID,
		Date:          entry.Date,
		ClockedIn:     true,
		OnBreak:       entry.OnBreak(),
		WorkedMinutes: domain.WorkedMinutes(entry, now),
		ClockInTime:   entry.ClockInTime,
		AsOf:          now,
	})
}
