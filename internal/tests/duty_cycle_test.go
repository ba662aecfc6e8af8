package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"nemt/internal/domain"
	"nemt/internal/service"
)

var testWindow = domain.ServiceWindow{Start: 5 * 60, End: 23 * 60}

// dutyFixture wires a TimesheetService against mocks with a settable clock.
type dutyFixture struct {
	svc       *service.TimesheetService
	repo      *MockTimesheetRepository
	lockStore *MockLockStore
	cache     *MockDutyCache
	now       time.Time
}

func newDutyFixture() *dutyFixture {
	f := &dutyFixture{
		repo:      NewMockTimesheetRepository(),
		lockStore: NewMockLockStore(),
		cache:     NewMockDutyCache(),
		now:       time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
	}
	f.svc = service.NewTimesheetService(f.repo, f.lockStore, f.cache, testWindow).
		WithClock(func() time.Time { return f.now })
	return f
}

func (f *dutyFixture) advanceTo(hour, min int) {
	f.now = time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
}

func TestClockIn(t *testing.T) {
	t.Parallel()

	f := newDutyFixture()

	entry, err := f.svc.ClockIn(context.Background(), "drv-1")
	if err != nil {
		t.Fatalf("clock in: %v", err)
	}

	if entry.Date != "2026-03-02" {
		t.Errorf("date = %q, want 2026-03-02", entry.Date)
	}
	if !entry.ClockInTime.Equal(f.now) {
		t.Errorf("clock-in time = %s, want %s", entry.ClockInTime, f.now)
	}
	if !entry.Open() {
		t.Error("entry must be open after clock-in")
	}
	if f.repo.CreateCallCount != 1 {
		t.Errorf("create calls = %d, want 1", f.repo.CreateCallCount)
	}

	cached, _ := f.cache.GetDutyStatus(context.Background(), "drv-1")
	if cached == nil || !cached.ClockedIn {
		t.Error("duty cache must reflect the open entry")
	}
}

func TestClockIn_DeniedWhenAlreadyOpen(t *testing.T) {
	t.Parallel()

	f := newDutyFixture()

	if _, err := f.svc.ClockIn(context.Background(), "drv-1"); err != nil {
		t.Fatalf("first clock in: %v", err)
	}

	f.advanceTo(9, 0)
	_, err := f.svc.ClockIn(context.Background(), "drv-1")

	var denied *domain.InvalidDutyActionError
	if !errors.As(err, &denied) {
		t.Fatalf("expected InvalidDutyActionError, got %v", err)
	}
	if f.repo.CreateCallCount != 1 {
		t.Errorf("create calls = %d, want 1", f.repo.CreateCallCount)
	}
}

func TestClockIn_DeniedOutsideServiceHours(t *testing.T) {
	t.Parallel()

	f := newDutyFixture()
	f.advanceTo(4, 30)

	_, err := f.svc.ClockIn(context.Background(), "drv-1")

	var denied *domain.InvalidDutyActionError
	if !errors.As(err, &denied) {
		t.Fatalf("expected InvalidDutyActionError, got %v", err)
	}
}

func TestClockOut_DeniedWithoutOpenEntry(t *testing.T) {
	t.Parallel()

	f := newDutyFixture()

	_, err := f.svc.ClockOut(context.Background(), "drv-1")

	var denied *domain.InvalidDutyActionError
	if !errors.As(err, &denied) {
		t.Fatalf("expected InvalidDutyActionError, got %v", err)
	}
}

func TestDutyCycle_FullDay(t *testing.T) {
	t.Parallel()

	f := newDutyFixture()
	ctx := context.Background()

	if _, err := f.svc.ClockIn(ctx, "drv-1"); err != nil {
		t.Fatalf("clock in: %v", err)
	}

	f.advanceTo(12, 0)
	if _, err := f.svc.StartBreak(ctx, "drv-1"); err != nil {
		t.Fatalf("start break: %v", err)
	}

	// Clocking out mid-break is refused.
	f.advanceTo(12, 15)
	if _, err := f.svc.ClockOut(ctx, "drv-1"); err == nil {
		t.Fatal("clock out during break must be denied")
	}

	// A second break cannot be opened over the first.
	if _, err := f.svc.StartBreak(ctx, "drv-1"); err == nil {
		t.Fatal("nested break must be denied")
	}

	f.advanceTo(12, 30)
	entry, err := f.svc.EndBreak(ctx, "drv-1")
	if err != nil {
		t.Fatalf("end break: %v", err)
	}
	if entry.TotalBreak != 30*time.Minute {
		t.Errorf("total break = %s, want 30m", entry.TotalBreak)
	}
	if entry.OnBreak() {
		t.Error("break must be closed")
	}

	f.advanceTo(16, 0)
	entry, err = f.svc.ClockOut(ctx, "drv-1")
	if err != nil {
		t.Fatalf("clock out: %v", err)
	}

	// 08:00 to 16:00 minus the 30 minute break.
	if entry.WorkedMinutes != 450 {
		t.Errorf("worked minutes = %d, want 450", entry.WorkedMinutes)
	}
	if entry.Open() {
		t.Error("entry must be closed after clock-out")
	}
}

func TestGetDutyStatus(t *testing.T) {
	t.Parallel()

	f := newDutyFixture()
	ctx := context.Background()

	// No entry at all: off duty.
	status, err := f.svc.GetDutyStatus(ctx, "drv-1")
	if err != nil {
		t.Fatalf("duty status: %v", err)
	}
	if status.ClockedIn {
		t.Error("not yet clocked in, status must be off duty")
	}

	if _, err := f.svc.ClockIn(ctx, "drv-1"); err != nil {
		t.Fatalf("clock in: %v", err)
	}

	status, err = f.svc.GetDutyStatus(ctx, "drv-1")
	if err != nil {
		t.Fatalf("duty status: %v", err)
	}
	if !status.ClockedIn {
		t.Error("status must be on duty after clock-in")
	}
	if status.OnBreak {
		t.Error("no break is open")
	}
	// Clock-in plus status read, without a repository hit in between, means
	// this was served from the cache; the clock-in instant must survive it.
	if !status.ClockInTime.Equal(f.now) {
		t.Errorf("clock-in time = %s, want %s", status.ClockInTime, f.now)
	}
}

func TestGetDutyStatus_ClockOutDropsCachedProjection(t *testing.T) {
	t.Parallel()

	f := newDutyFixture()
	ctx := context.Background()

	if _, err := f.svc.ClockIn(ctx, "drv-1"); err != nil {
		t.Fatalf("clock in: %v", err)
	}

	f.advanceTo(16, 0)
	if _, err := f.svc.ClockOut(ctx, "drv-1"); err != nil {
		t.Fatalf("clock out: %v", err)
	}

	if f.cache.InvalidateCallCount == 0 {
		t.Error("clock-out must invalidate the cached projection")
	}
	if cached, _ := f.cache.GetDutyStatus(ctx, "drv-1"); cached != nil {
		t.Error("no projection may linger after clock-out")
	}

	status, err := f.svc.GetDutyStatus(ctx, "drv-1")
	if err != nil {
		t.Fatalf("duty status: %v", err)
	}
	if status.ClockedIn {
		t.Error("status must be off duty after clock-out")
	}
}

func TestGetDutyStatus_FallsBackToRepository(t *testing.T) {
	t.Parallel()

	f := newDutyFixture()
	ctx := context.Background()

	// An open entry exists in storage but the cache is cold.
	f.repo.AddEntry(&domain.TimesheetEntry{
		ID:          "ts-1",
		DriverID:    "drv-2",
		Date:        "2026-03-02",
		ClockInTime: time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC),
	})

	f.advanceTo(10, 0)
	status, err := f.svc.GetDutyStatus(ctx, "drv-2")
	if err != nil {
		t.Fatalf("duty status: %v", err)
	}

	if !status.ClockedIn {
		t.Error("status must be on duty")
	}
	if status.WorkedMinutes != 240 {
		t.Errorf("worked minutes = %d, want 240", status.WorkedMinutes)
	}
	if f.cache.SetCallCount == 0 {
		t.Error("repository fallback must warm the cache")
	}
}

func TestDutyActions_LockHeld(t *testing.T) {
	t.Parallel()

	f := newDutyFixture()
	f.lockStore.DenyAll = true

	if _, err := f.svc.ClockIn(context.Background(), "drv-1"); !errors.Is(err, service.ErrEntityLocked) {
		t.Errorf("expected ErrEntityLocked, got %v", err)
	}
	if f.repo.CreateCallCount != 0 {
		t.Error("no entry may be created while the driver-day lock is held")
	}
}

func TestGetTimesheet_Validation(t *testing.T) {
	t.Parallel()

	f := newDutyFixture()
	ctx := context.Background()

	if _, err := f.svc.GetTimesheet(ctx, "", "2026-03-02"); !errors.Is(err, service.ErrInvalidDriverID) {
		t.Errorf("expected ErrInvalidDriverID, got %v", err)
	}
	if _, err := f.svc.GetTimesheet(ctx, "drv-1", "03/02/2026"); !errors.Is(err, service.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}
