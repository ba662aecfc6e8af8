package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"nemt/internal/domain"
	"nemt/internal/redis"
	"nemt/internal/repository"
)

const shiftLockTTL = 5 * time.Second

// ShiftService orchestrates scheduled shifts and standing-order expansion.
// Manual creation and update reject a conflicting interval outright; bulk
// recurrence expansion silently skips conflicts and reports how many.
type ShiftService struct {
	shiftRepo repository.ShiftRepository
	lockStore redis.LockStoreInterface
	now       func() time.Time
}

// NewShiftService creates a new ShiftService.
func NewShiftService(shiftRepo repository.ShiftRepository, lockStore redis.LockStoreInterface) *ShiftService {
	return &ShiftService{
		shiftRepo: shiftRepo,
		lockStore: lockStore,
		now:       time.Now,
	}
}

// WithClock overrides the service's clock. Used by tests.
func (s *ShiftService) WithClock(now func() time.Time) *ShiftService {
	s.now = now
	return s
}

// CreateShiftRequest contains the parameters for scheduling a shift.
type CreateShiftRequest struct {
	DriverID       string
	Date           string // YYYY-MM-DD
	StartTime      string // HH:MM
	EndTime        string // HH:MM
	ShiftType      domain.ShiftType
	IsRecurring    bool
	RecurrenceRule string
}

// CreateShiftResult contains the created shift and, for standing orders, the
// expanded children plus the number of candidates skipped over conflicts.
type CreateShiftResult struct {
	Shift            *domain.ScheduledShift
	Children         []*domain.ScheduledShift
	SkippedConflicts int
}

// CreateShift schedules a shift. A conflicting interval on the same driver
// and date is a hard rejection. When the shift is a recurring standing order,
// the rule is expanded into dated children; conflicting children are skipped
// rather than failing the batch.
func (s *ShiftService) CreateShift(ctx context.Context, req CreateShiftRequest) (*CreateShiftResult, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}

	day, start, end, err := composeShiftWindow(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	// Parse the rule before touching storage so a malformed standing order
	// creates nothing.
	var rule domain.RecurrenceRule
	if req.IsRecurring && req.RecurrenceRule != "" {
		rule, err = domain.ParseRecurrenceRule(req.RecurrenceRule)
		if err != nil {
			return nil, err
		}
	}

	if s.lockStore != nil {
		ok, err := s.lockStore.AcquireDriverDayLock(ctx, req.DriverID, req.Date, shiftLockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrEntityLocked
		}
		defer func() {
			_ = s.lockStore.ReleaseDriverDayLock(ctx, req.DriverID, req.Date)
		}()
	}

	if err := s.rejectOverlap(ctx, req.DriverID, req.Date, start, end, ""); err != nil {
		return nil, err
	}

	shiftType := req.ShiftType
	if shiftType == "" {
		shiftType = domain.ShiftTypeRegular
	}

	shift := &domain.ScheduledShift{
		ID:             uuid.New().String(),
		DriverID:       req.DriverID,
		Date:           req.Date,
		StartTime:      start,
		EndTime:        end,
		ShiftType:      shiftType,
		Status:         domain.ShiftStatusScheduled,
		IsRecurring:    req.IsRecurring,
		RecurrenceRule: req.RecurrenceRule,
		CreatedAt:      s.now(),
	}

	if err := s.shiftRepo.Create(ctx, shift); err != nil {
		return nil, err
	}

	result := &CreateShiftResult{Shift: shift}

	if req.IsRecurring && req.RecurrenceRule != "" {
		result.Children, result.SkippedConflicts = s.expandStandingOrder(ctx, shift, day, rule)
	}

	return result, nil
}

// expandStandingOrder materializes a recurring parent into dated children.
// Bulk generation is best-effort: one conflict must not fail the batch, so
// conflicting candidates are skipped and counted.
func (s *ShiftService) expandStandingOrder(ctx context.Context, parent *domain.ScheduledShift, day time.Time, rule domain.RecurrenceRule) ([]*domain.ScheduledShift, int) {
	dates := domain.ExpandRecurrence(day, rule, rule.Count)

	var children []*domain.ScheduledShift
	skipped := 0

	for _, date := range dates {
		start := onDate(date, parent.StartTime)
		end := onDate(date, parent.EndTime)
		dateStr := date.Format("2006-01-02")

		conflict, err := s.shiftRepo.FindOverlapping(ctx, parent.DriverID, dateStr, start, end, "")
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"driver_id": parent.DriverID,
				"date":      dateStr,
			}).WithError(err).Warn("overlap check failed during expansion")
			skipped++
			continue
		}
		if conflict != nil {
			skipped++
			continue
		}

		child := &domain.ScheduledShift{
			ID:            uuid.New().String(),
			DriverID:      parent.DriverID,
			Date:          dateStr,
			StartTime:     start,
			EndTime:       end,
			ShiftType:     parent.ShiftType,
			Status:        domain.ShiftStatusScheduled,
			ParentShiftID: parent.ID,
			CreatedAt:     s.now(),
		}

		if err := s.shiftRepo.Create(ctx, child); err != nil {
			logrus.WithFields(logrus.Fields{
				"driver_id": parent.DriverID,
				"date":      dateStr,
			}).WithError(err).Warn("child shift creation failed during expansion")
			skipped++
			continue
		}

		children = append(children, child)
	}

	return children, skipped
}

// UpdateShiftRequest contains the parameters for rescheduling a shift.
type UpdateShiftRequest struct {
	ShiftID   string
	Date      string // YYYY-MM-DD
	StartTime string // HH:MM
	EndTime   string // HH:MM
	ShiftType domain.ShiftType
}

// UpdateShift reschedules a shift. A conflicting interval is a hard
// rejection; the shift itself is excluded from the overlap check.
func (s *ShiftService) UpdateShift(ctx context.Context, req UpdateShiftRequest) (*domain.ScheduledShift, error) {
	if req.ShiftID == "" {
		return nil, ErrInvalidShiftID
	}

	shift, err := s.shiftRepo.GetByID(ctx, req.ShiftID)
	if err != nil {
		return nil, err
	}

	date := req.Date
	if date == "" {
		date = shift.Date
	}

	_, start, end, err := composeShiftWindow(date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	if err := s.rejectOverlap(ctx, shift.DriverID, date, start, end, shift.ID); err != nil {
		return nil, err
	}

	shift.Date = date
	shift.StartTime = start
	shift.EndTime = end
	if req.ShiftType != "" {
		shift.ShiftType = req.ShiftType
	}

	if err := s.shiftRepo.Update(ctx, shift); err != nil {
		return nil, err
	}

	return shift, nil
}

// CancelShiftResult contains the cancelled shift and how many recurring
// children were cancelled with it.
type CancelShiftResult struct {
	Shift             *domain.ScheduledShift
	CancelledChildren int
}

// CancelShift cancels a shift. With cascadeRecurring, children of a standing
// order that have not yet started are cancelled too; in-progress and
// completed children are left alone.
func (s *ShiftService) CancelShift(ctx context.Context, shiftID string, cascadeRecurring bool) (*CancelShiftResult, error) {
	if shiftID == "" {
		return nil, ErrInvalidShiftID
	}

	shift, err := s.shiftRepo.GetByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	if shift.Status == domain.ShiftStatusCompleted || shift.Status == domain.ShiftStatusCancelled {
		return nil, ErrShiftNotCancellable
	}

	shift.Status = domain.ShiftStatusCancelled
	if err := s.shiftRepo.Update(ctx, shift); err != nil {
		return nil, err
	}

	result := &CancelShiftResult{Shift: shift}

	if cascadeRecurring && shift.IsRecurring {
		children, err := s.shiftRepo.ListChildren(ctx, shift.ID)
		if err != nil {
			return nil, err
		}

		for _, child := range children {
			if child.Status != domain.ShiftStatusScheduled {
				continue
			}
			child.Status = domain.ShiftStatusCancelled
			if err := s.shiftRepo.Update(ctx, child); err != nil {
				return nil, err
			}
			result.CancelledChildren++
		}
	}

	return result, nil
}

// GetShift retrieves a shift by ID.
func (s *ShiftService) GetShift(ctx context.Context, shiftID string) (*domain.ScheduledShift, error) {
	if shiftID == "" {
		return nil, ErrInvalidShiftID
	}

	return s.shiftRepo.GetByID(ctx, shiftID)
}

// ListDriverShifts retrieves a driver's shifts for a calendar day.
func (s *ShiftService) ListDriverShifts(ctx context.Context, driverID, date string) ([]*domain.ScheduledShift, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, ErrInvalidDate
	}

	return s.shiftRepo.ListByDriverDate(ctx, driverID, date)
}

func (s *ShiftService) rejectOverlap(ctx context.Context, driverID, date string, start, end time.Time, excludeID string) error {
	conflict, err := s.shiftRepo.FindOverlapping(ctx, driverID, date, start, end, excludeID)
	if err != nil {
		return err
	}
	if conflict != nil {
		return &domain.OverlapConflictError{
			DriverID:      driverID,
			Date:          date,
			ConflictID:    conflict.ID,
			ConflictStart: conflict.StartTime,
			ConflictEnd:   conflict.EndTime,
		}
	}
	return nil
}

// composeShiftWindow turns a date plus HH:MM bounds into concrete instants.
func composeShiftWindow(date, startClock, endClock string) (time.Time, time.Time, time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, ErrInvalidDate
	}

	startMin, err := domain.ParseClock(startClock)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, ErrInvalidShiftWindow
	}

	endMin, err := domain.ParseClock(endClock)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, ErrInvalidShiftWindow
	}

	if endMin <= startMin {
		return time.Time{}, time.Time{}, time.Time{}, ErrInvalidShiftWindow
	}

	start := day.Add(time.Duration(startMin) * time.Minute)
	end := day.Add(time.Duration(endMin) * time.Minute)

	return day, start, end, nil
}

// onDate carries a parent's clock time onto a child's date.
func onDate(date, clock time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, date.Location())
}
