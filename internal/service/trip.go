package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"nemt/internal/domain"
	"nemt/internal/redis"
	"nemt/internal/repository"
	"nemt/internal/repository/postgres"
)

// tripLockTTL bounds how long a crashed caller can hold a trip's
// single-writer lock.
const tripLockTTL = 5 * time.Second

// notifyTimeout bounds the fire-and-forget dispatch goroutine.
const notifyTimeout = 10 * time.Second

// TripService orchestrates trip lifecycle transitions: it asks the pure
// decision engine for a verdict, persists the accepted state plus a history
// row in one transaction, and dispatches the declared notification without
// blocking the caller.
type TripService struct {
	db                  *sql.DB
	tripRepo            repository.TripRepository
	historyRepo         repository.HistoryRepository
	lockStore           redis.LockStoreInterface
	notificationService *NotificationService
}

// NewTripService creates a new TripService.
func NewTripService(
	db *sql.DB,
	tripRepo repository.TripRepository,
	historyRepo repository.HistoryRepository,
	lockStore redis.LockStoreInterface,
	notificationService *NotificationService,
) *TripService {
	return &TripService{
		db:                  db,
		tripRepo:            tripRepo,
		historyRepo:         historyRepo,
		lockStore:           lockStore,
		notificationService: notificationService,
	}
}

// CreateTripRequest contains the parameters for booking a trip.
type CreateTripRequest struct {
	PassengerName       string
	PickupAddress       string
	DropoffAddress      string
	ScheduledPickupTime time.Time
	LevelOfService      domain.LevelOfService
	WillCall            bool
}

// CreateTrip books a new trip in PENDING status.
func (s *TripService) CreateTrip(ctx context.Context, req CreateTripRequest) (*domain.Trip, error) {
	if req.PassengerName == "" {
		return nil, ErrInvalidPassengerName
	}

	levelOfService := req.LevelOfService
	if levelOfService == "" {
		levelOfService = domain.LevelAmbulatory
	}

	trip := &domain.Trip{
		ID:                  uuid.New().String(),
		PassengerName:       req.PassengerName,
		PickupAddress:       req.PickupAddress,
		DropoffAddress:      req.DropoffAddress,
		ScheduledPickupTime: req.ScheduledPickupTime,
		LevelOfService:      levelOfService,
		WillCall:            req.WillCall,
		Status:              domain.TripStatusPending,
		CreatedAt:           time.Now(),
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	return trip, nil
}

// TransitionRequest contains the supporting context for a status transition.
type TransitionRequest struct {
	TripID   string
	To       domain.TripStatus
	Note     string
	Location *domain.Geolocation
	Actor    string
	DriverID string // required when transitioning to ASSIGNED
	Reason   string // stored as cancellation reason on CANCELLED
}

// TransitionResult contains the outcome of an accepted transition.
type TransitionResult struct {
	Trip     *domain.Trip
	Decision domain.TransitionDecision
	History  *domain.StatusHistoryEntry

	// LocationMissing flags a transition that should have carried a
	// geolocation but did not. The transition still proceeds.
	LocationMissing bool
}

// Transition validates and applies a status change. The trip row and its
// history entry commit in one transaction; the declared notification is
// dispatched afterwards, best-effort.
func (s *TripService) Transition(ctx context.Context, req TransitionRequest) (*TransitionResult, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}

	// Serialize per trip so two concurrent callers cannot both pass
	// validation against the same snapshot.
	if s.lockStore != nil {
		ok, err := s.lockStore.AcquireTripLock(ctx, req.TripID, tripLockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrEntityLocked
		}
		defer func() {
			_ = s.lockStore.ReleaseTripLock(ctx, req.TripID)
		}()
	}

	trip, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	decision, err := domain.ValidateTransition(trip.Status, req.To)
	if err != nil {
		return nil, err
	}

	if req.To == domain.TripStatusAssigned {
		if req.DriverID == "" && trip.DriverID == "" {
			return nil, ErrDriverRequired
		}
		if req.DriverID != "" {
			trip.DriverID = req.DriverID
		}
	}

	now := time.Now()
	previous := trip.Status
	trip.Status = req.To

	switch decision.TimestampField {
	case domain.TimestampPickupActual:
		trip.ActualPickupTime = now
	case domain.TimestampDropoffActual:
		trip.ActualDropoffTime = now
	case domain.TimestampCancelledAt:
		trip.CancelledAt = now
		trip.CancellationReason = req.Reason
	}

	entry := &domain.StatusHistoryEntry{
		ID:             uuid.New().String(),
		TripID:         trip.ID,
		PreviousStatus: previous,
		NewStatus:      trip.Status,
		Timestamp:      now,
		Note:           req.Note,
		Location:       req.Location,
		Actor:          req.Actor,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txTripRepo := postgres.NewTripRepositoryWithTx(tx)
	txHistoryRepo := postgres.NewHistoryRepositoryWithTx(tx)

	if err = txTripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}

	if err = txHistoryRepo.Append(ctx, entry); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	// Notification dispatch is non-blocking and best-effort: failure must
	// never roll back the committed transition.
	if decision.Notification != domain.NotificationNone && s.notificationService != nil {
		tripCopy := *trip
		go func() {
			notifyCtx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()

			if err := s.notificationService.DispatchTripNotification(notifyCtx, decision.Notification, &tripCopy); err != nil {
				logrus.WithFields(logrus.Fields{
					"trip_id": tripCopy.ID,
					"class":   decision.Notification,
				}).WithError(err).Warn("notification dispatch failed")
			}
		}()
	}

	return &TransitionResult{
		Trip:            trip,
		Decision:        decision,
		History:         entry,
		LocationMissing: decision.RequiresLocation && req.Location == nil,
	}, nil
}

// GetTrip retrieves a trip by ID.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	return s.tripRepo.GetByID(ctx, tripID)
}

// GetAllTrips retrieves all trips.
func (s *TripService) GetAllTrips(ctx context.Context) ([]*domain.Trip, error) {
	return s.tripRepo.GetAll(ctx)
}

// History retrieves a trip's status history in lifecycle order.
func (s *TripService) History(ctx context.Context, tripID string) ([]*domain.StatusHistoryEntry, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	return s.historyRepo.ListByTripID(ctx, tripID)
}

// DriverActions returns the driver-facing action menu for a trip's current
// status.
func (s *TripService) DriverActions(ctx context.Context, tripID string) ([]domain.DriverAction, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	return domain.DriverActions(trip.Status), nil
}
