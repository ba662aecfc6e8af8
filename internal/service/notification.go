package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"nemt/internal/domain"
)

// Notification represents a status-change message to be delivered.
type Notification struct {
	Class       domain.NotificationClass
	RecipientID string
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// NotificationService handles fire-and-forget delivery of status-change
// messages. Delivery failure is logged, never surfaced to the transition
// that triggered it.
type NotificationService struct {
	// In a real deployment this would carry SMS/email/push clients; the
	// excluded adapter layer owns those. Dispatch here logs structured
	// delivery records.
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// DispatchTripNotification delivers the notification declared by an accepted
// transition decision. Unknown or empty classes are ignored.
func (s *NotificationService) DispatchTripNotification(ctx context.Context, class domain.NotificationClass, trip *domain.Trip) error {
	var notification Notification

	switch class {
	case domain.NotificationDriverEnRoute:
		notification = Notification{
			Class:       class,
			RecipientID: trip.PassengerName,
			Title:       "Driver On The Way",
			Message:     "Your driver is on the way to the pickup location.",
		}
	case domain.NotificationDriverArrived:
		notification = Notification{
			Class:       class,
			RecipientID: trip.PassengerName,
			Title:       "Driver Arrived",
			Message:     fmt.Sprintf("Your driver has arrived at %s.", trip.PickupAddress),
		}
	case domain.NotificationTripCompleted:
		notification = Notification{
			Class:       class,
			RecipientID: trip.PassengerName,
			Title:       "Trip Completed",
			Message:     fmt.Sprintf("Your trip to %s is complete.", trip.DropoffAddress),
		}
	case domain.NotificationTripCancelled:
		notification = Notification{
			Class:       class,
			RecipientID: trip.PassengerName,
			Title:       "Trip Cancelled",
			Message:     cancellationMessage(trip),
		}
	default:
		return nil
	}

	notification.Data = map[string]interface{}{
		"trip_id":   trip.ID,
		"status":    trip.Status,
		"driver_id": trip.DriverID,
	}
	notification.CreatedAt = time.Now()

	return s.send(ctx, notification)
}

func cancellationMessage(trip *domain.Trip) string {
	if trip.CancellationReason != "" {
		return fmt.Sprintf("Your trip has been cancelled: %s", trip.CancellationReason)
	}
	return "Your trip has been cancelled."
}

// send delivers a notification (mock implementation).
func (s *NotificationService) send(ctx context.Context, notification Notification) error {
	logrus.WithFields(logrus.Fields{
		"class":     notification.Class,
		"recipient": notification.RecipientID,
		"title":     notification.Title,
		"message":   notification.Message,
	}).Info("notification dispatched")

	return nil
}
