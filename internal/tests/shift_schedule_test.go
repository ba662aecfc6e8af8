package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"nemt/internal/domain"
	"nemt/internal/service"
)

func newShiftService(repo *MockShiftRepository) *service.ShiftService {
	return service.NewShiftService(repo, NewMockLockStore()).
		WithClock(func() time.Time { return time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC) })
}

func localShiftTime(date string, hour, min int) time.Time {
	day, _ := time.ParseInLocation("2006-01-02", date, time.Local)
	return day.Add(time.Duration(hour*60+min) * time.Minute)
}

func TestCreateShift(t *testing.T) {
	t.Parallel()

	repo := NewMockShiftRepository()
	svc := newShiftService(repo)

	result, err := svc.CreateShift(context.Background(), service.CreateShiftRequest{
		DriverID:  "drv-1",
		Date:      "2026-01-05",
		StartTime: "09:00",
		EndTime:   "17:00",
	})
	if err != nil {
		t.Fatalf("create shift: %v", err)
	}

	shift := result.Shift
	if shift.Status != domain.ShiftStatusScheduled {
		t.Errorf("status = %s, want SCHEDULED", shift.Status)
	}
	if shift.ShiftType != domain.ShiftTypeRegular {
		t.Errorf("type = %s, want REGULAR default", shift.ShiftType)
	}
	if !shift.StartTime.Equal(localShiftTime("2026-01-05", 9, 0)) {
		t.Errorf("start = %s", shift.StartTime)
	}
	if !shift.EndTime.Equal(localShiftTime("2026-01-05", 17, 0)) {
		t.Errorf("end = %s", shift.EndTime)
	}
	if len(result.Children) != 0 || result.SkippedConflicts != 0 {
		t.Errorf("non-recurring shift must not expand: %+v", result)
	}
}

func TestCreateShift_InvalidWindow(t *testing.T) {
	t.Parallel()

	svc := newShiftService(NewMockShiftRepository())

	tests := []struct {
		name       string
		start, end string
		wantErr    error
	}{
		{"end before start", "17:00", "09:00", service.ErrInvalidShiftWindow},
		{"zero length", "09:00", "09:00", service.ErrInvalidShiftWindow},
		{"malformed clock", "9am", "17:00", service.ErrInvalidShiftWindow},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.CreateShift(context.Background(), service.CreateShiftRequest{
				DriverID:  "drv-1",
				Date:      "2026-01-05",
				StartTime: tt.start,
				EndTime:   tt.end,
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateShift_OverlapRejected(t *testing.T) {
	t.Parallel()

	repo := NewMockShiftRepository()
	repo.AddShift(&domain.ScheduledShift{
		ID:        "shift-existing",
		DriverID:  "drv-1",
		Date:      "2026-01-05",
		StartTime: localShiftTime("2026-01-05", 10, 0),
		EndTime:   localShiftTime("2026-01-05", 12, 0),
		Status:    domain.ShiftStatusScheduled,
	})
	svc := newShiftService(repo)

	_, err := svc.CreateShift(context.Background(), service.CreateShiftRequest{
		DriverID:  "drv-1",
		Date:      "2026-01-05",
		StartTime: "09:00",
		EndTime:   "11:00",
	})

	var conflict *domain.OverlapConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected OverlapConflictError, got %v", err)
	}
	if conflict.ConflictID != "shift-existing" {
		t.Errorf("conflict id = %q, want shift-existing", conflict.ConflictID)
	}
	if repo.CreateCallCount != 0 {
		t.Error("conflicting shift must not be created")
	}
}

func TestCreateShift_BackToBackAllowed(t *testing.T) {
	t.Parallel()

	repo := NewMockShiftRepository()
	repo.AddShift(&domain.ScheduledShift{
		ID:        "shift-early",
		DriverID:  "drv-1",
		Date:      "2026-01-05",
		StartTime: localShiftTime("2026-01-05", 9, 0),
		EndTime:   localShiftTime("2026-01-05", 10, 0),
		Status:    domain.ShiftStatusScheduled,
	})
	svc := newShiftService(repo)

	// [09:00, 10:00) and [10:00, 11:00) share only the boundary instant.
	if _, err := svc.CreateShift(context.Background(), service.CreateShiftRequest{
		DriverID:  "drv-1",
		Date:      "2026-01-05",
		StartTime: "10:00",
		EndTime:   "11:00",
	}); err != nil {
		t.Fatalf("back-to-back shift must be accepted: %v", err)
	}
}

func TestCreateShift_CancelledShiftDoesNotBlock(t *testing.T) {
	t.Parallel()

	repo := NewMockShiftRepository()
	repo.AddShift(&domain.ScheduledShift{
		ID:        "shift-cancelled",
		DriverID:  "drv-1",
		Date:      "2026-01-05",
		StartTime: localShiftTime("2026-01-05", 9, 0),
		EndTime:   localShiftTime("2026-01-05", 17, 0),
		Status:    domain.ShiftStatusCancelled,
	})
	svc := newShiftService(repo)

	if _, err := svc.CreateShift(context.Background(), service.CreateShiftRequest{
		DriverID:  "drv-1",
		Date:      "2026-01-05",
		StartTime: "09:00",
		EndTime:   "17:00",
	}); err != nil {
		t.Fatalf("cancelled shifts must not count as conflicts: %v", err)
	}
}

func TestCreateShift_MalformedRuleCreatesNothing(t *testing.T) {
	t.Parallel()

	repo := NewMockShiftRepository()
	svc := newShiftService(repo)

	_, err := svc.CreateShift(context.Background(), service.CreateShiftRequest{
		DriverID:       "drv-1",
		Date:           "2026-01-05",
		StartTime:      "09:00",
		EndTime:        "11:00",
		IsRecurring:    true,
		RecurrenceRule: "FREQ=WEEKLY;BYDAY=XX;COUNT=4",
	})
	if !errors.Is(err, domain.ErrInvalidRecurrenceRule) {
		t.Fatalf("expected ErrInvalidRecurrenceRule, got %v", err)
	}
	if repo.CreateCallCount != 0 {
		t.Error("a malformed standing order must create nothing")
	}
}

func TestCreateShift_RecurringExpandsChildren(t *testing.T) {
	t.Parallel()

	repo := NewMockShiftRepository()
	svc := newShiftService(repo)

	// 2026-01-05 is a Monday.
	result, err := svc.CreateShift(context.Background(), service.CreateShiftRequest{
		DriverID:       "drv-1",
		Date:           "2026-01-05",
		StartTime:      "09:00",
		EndTime:        "11:00",
		IsRecurring:    true,
		RecurrenceRule: "FREQ=WEEKLY;BYDAY=MO,WE;COUNT=4",
	})
	if err != nil {
		t.Fatalf("create recurring shift: %v", err)
	}

	if len(result.Children) != 4 {
		t.Fatalf("expanded %d children, want 4", len(result.Children))
	}
	if result.SkippedConflicts != 0 {
		t.Errorf("skipped = %d, want 0", result.SkippedConflicts)
	}

	wantDates := []string{"2026-01-07", "2026-01-12", "2026-01-14", "2026-01-19"}
	for i, child := range result.Children {
		if child.Date != wantDates[i] {
			t.Errorf("children[%d].Date = %s, want %s", i, child.Date, wantDates[i])
		}
		if child.ParentShiftID != result.Shift.ID {
			t.Errorf("children[%d] not linked to parent", i)
		}
		if !child.StartTime.Equal(localShiftTime(child.Date, 9, 0)) {
			t.Errorf("children[%d].StartTime = %s, want 09:00 on %s", i, child.StartTime, child.Date)
		}
		if child.Status != domain.ShiftStatusScheduled {
			t.Errorf("children[%d].Status = %s, want SCHEDULED", i, child.Status)
		}
	}
}

func TestCreateShift_RecurringSkipsConflicts(t *testing.T) {
	t.Parallel()

	repo := NewMockShiftRepository()
	// A pre-existing shift collides with the 2026-01-14 occurrence.
	repo.AddShift(&domain.ScheduledShift{
		ID:        "shift-busy",
		DriverID:  "drv-1",
		Date:      "2026-01-14",
		StartTime: localShiftTime("2026-01-14", 10, 0),
		EndTime:   localShiftTime("2026-01-14", 12, 0),
		Status:    domain.ShiftStatusScheduled,
	})
	svc := newShiftService(repo)

	result, err := svc.CreateShift(context.Background(), service.CreateShiftRequest{
		DriverID:       "drv-1",
		Date:           "2026-01-05",
		StartTime:      "09:00",
		EndTime:        "11:00",
		IsRecurring:    true,
		RecurrenceRule: "FREQ=WEEKLY;BYDAY=MO,WE;COUNT=4",
	})
	if err != nil {
		t.Fatalf("create recurring shift: %v", err)
	}

	if len(result.Children) != 3 {
		t.Fatalf("expanded %d children, want 3", len(result.Children))
	}
	if result.SkippedConflicts != 1 {
		t.Errorf("skipped = %d, want 1", result.SkippedConflicts)
	}
	for _, child := range result.Children {
		if child.Date == "2026-01-14" {
			t.Error("conflicting occurrence must have been skipped")
		}
	}
}

func TestUpdateShift_ExcludesSelfFromOverlapCheck(t *testing.T) {
	t.Parallel()

	repo := NewMockShiftRepository()
	repo.AddShift(&domain.ScheduledShift{
		ID:        "shift-1",
		DriverID:  "drv-1",
		Date:      "2026-01-05",
		StartTime: localShiftTime("2026-01-05", 9, 0),
		EndTime:   localShiftTime("2026-01-05", 11, 0),
		Status:    domain.ShiftStatusScheduled,
	})
	svc := newShiftService(repo)

	// Shrinking within the shift's own interval must not self-conflict.
	shift, err := svc.UpdateShift(context.Background(), service.UpdateShiftRequest{
		ShiftID:   "shift-1",
		StartTime: "09:30",
		EndTime:   "10:30",
	})
	if err != nil {
		t.Fatalf("update shift: %v", err)
	}
	if !shift.StartTime.Equal(localShiftTime("2026-01-05", 9, 30)) {
		t.Errorf("start = %s, want 09:30", shift.StartTime)
	}
}

func TestUpdateShift_OverlapRejected(t *testing.T) {
	t.Parallel()

	repo := NewMockShiftRepository()
	repo.AddShift(&domain.ScheduledShift{
		ID:        "shift-1",
		DriverID:  "drv-1",
		Date:      "2026-01-05",
		StartTime: localShiftTime("2026-01-05", 9, 0),
		EndTime:   localShiftTime("2026-01-05", 11, 0),
		Status:    domain.ShiftStatusScheduled,
	})
	repo.AddShift(&domain.ScheduledShift{
		ID:        "shift-2",
		DriverID:  "drv-1",
		Date:      "2026-01-05",
		StartTime: localShiftTime("2026-01-05", 13, 0),
		EndTime:   localShiftTime("2026-01-05", 15, 0),
		Status:    domain.ShiftStatusScheduled,
	})
	svc := newShiftService(repo)

	_, err := svc.UpdateShift(context.Background(), service.UpdateShiftRequest{
		ShiftID:   "shift-1",
		StartTime: "12:00",
		EndTime:   "14:00",
	})

	var conflict *domain.OverlapConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected OverlapConflictError, got %v", err)
	}
	if conflict.ConflictID != "shift-2" {
		t.Errorf("conflict id = %q, want shift-2", conflict.ConflictID)
	}
}

func TestCancelShift_CascadesToScheduledChildren(t *testing.T) {
	t.Parallel()

	repo := NewMockShiftRepository()
	repo.AddShift(&domain.ScheduledShift{
		ID:          "parent",
		DriverID:    "drv-1",
		Date:        "2026-01-05",
		Status:      domain.ShiftStatusScheduled,
		IsRecurring: true,
	})
	repo.AddShift(&domain.ScheduledShift{ID: "child-1", DriverID: "drv-1", Date: "2026-01-07", ParentShiftID: "parent", Status: domain.ShiftStatusScheduled})
	repo.AddShift(&domain.ScheduledShift{ID: "child-2", DriverID: "drv-1", Date: "2026-01-12", ParentShiftID: "parent", Status: domain.ShiftStatusCompleted})
	repo.AddShift(&domain.ScheduledShift{ID: "child-3", DriverID: "drv-1", Date: "2026-01-14", ParentShiftID: "parent", Status: domain.ShiftStatusScheduled})
	svc := newShiftService(repo)

	result, err := svc.CancelShift(context.Background(), "parent", true)
	if err != nil {
		t.Fatalf("cancel shift: %v", err)
	}

	if result.Shift.Status != domain.ShiftStatusCancelled {
		t.Errorf("parent status = %s, want CANCELLED", result.Shift.Status)
	}
	if result.CancelledChildren != 2 {
		t.Errorf("cancelled children = %d, want 2", result.CancelledChildren)
	}

	// The completed occurrence is left as history.
	completed, _ := repo.GetByID(context.Background(), "child-2")
	if completed.Status != domain.ShiftStatusCompleted {
		t.Errorf("completed child status = %s, must stay COMPLETED", completed.Status)
	}
}

func TestCancelShift_WithoutCascade(t *testing.T) {
	t.Parallel()

	repo := NewMockShiftRepository()
	repo.AddShift(&domain.ScheduledShift{
		ID:          "parent",
		DriverID:    "drv-1",
		Date:        "2026-01-05",
		Status:      domain.ShiftStatusScheduled,
		IsRecurring: true,
	})
	repo.AddShift(&domain.ScheduledShift{ID: "child-1", DriverID: "drv-1", Date: "2026-01-07", ParentShiftID: "parent", Status: domain.ShiftStatusScheduled})
	svc := newShiftService(repo)

	result, err := svc.CancelShift(context.Background(), "parent", false)
	if err != nil {
		t.Fatalf("cancel shift: %v", err)
	}
	if result.CancelledChildren != 0 {
		t.Errorf("cancelled children = %d, want 0", result.CancelledChildren)
	}

	child, _ := repo.GetByID(context.Background(), "child-1")
	if child.Status != domain.ShiftStatusScheduled {
		t.Errorf("child status = %s, must stay SCHEDULED", child.Status)
	}
}

func TestCancelShift_TerminalRejected(t *testing.T) {
	t.Parallel()

	repo := NewMockShiftRepository()
	repo.AddShift(&domain.ScheduledShift{ID: "done", DriverID: "drv-1", Status: domain.ShiftStatusCompleted})
	repo.AddShift(&domain.ScheduledShift{ID: "gone", DriverID: "drv-1", Status: domain.ShiftStatusCancelled})
	svc := newShiftService(repo)

	for _, id := range []string{"done", "gone"} {
		if _, err := svc.CancelShift(context.Background(), id, false); !errors.Is(err, service.ErrShiftNotCancellable) {
			t.Errorf("CancelShift(%s): expected ErrShiftNotCancellable, got %v", id, err)
		}
	}
}

func TestListDriverShifts_Validation(t *testing.T) {
	t.Parallel()

	svc := newShiftService(NewMockShiftRepository())
	ctx := context.Background()

	if _, err := svc.ListDriverShifts(ctx, "", "2026-01-05"); !errors.Is(err, service.ErrInvalidDriverID) {
		t.Errorf("expected ErrInvalidDriverID, got %v", err)
	}
	if _, err := svc.ListDriverShifts(ctx, "drv-1", "Jan 5"); !errors.Is(err, service.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}
