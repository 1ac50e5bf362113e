package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/crewhq/meetup-backend/internal/model"
	"github.com/crewhq/meetup-backend/internal/repository"
)

// NotificationRetention is how long notification rows are kept before
// the periodic cleanup removes them.
const NotificationRetention = 7 * 24 * time.Hour

// NotificationService is the delivery surface over stored notifications.
// It never creates rows itself; the completion fan-out is the only
// producer.
type NotificationService struct {
	notifications *repository.NotificationRepo
}

// NewNotificationService wires a NotificationService.
func NewNotificationService(notifications *repository.NotificationRepo) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// List returns the member's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, memberID string) ([]model.Notification, error) {
	return s.notifications.ListByRecipient(ctx, memberID)
}

// MarkRead flags one of the member's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, memberID string) error {
	return s.notifications.MarkRead(ctx, notificationID, memberID)
}

// UnreadCount returns how many unread notifications the member has.
func (s *NotificationService) UnreadCount(ctx context.Context, memberID string) (int, error) {
	return s.notifications.UnreadCount(ctx, memberID)
}

// CleanupExpired removes notifications older than the retention window
// and returns how many rows went away.
func (s *NotificationService) CleanupExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-NotificationRetention).Unix()
	return s.notifications.DeleteOlderThan(ctx, cutoff)
}

// StartCleanup runs CleanupExpired on the given interval until the
// context is cancelled. Intended to run in its own goroutine from main.
func (s *NotificationService) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.CleanupExpired(ctx)
			if err != nil {
				slog.Error("notification cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("notification cleanup", "removed", n)
			}
		}
	}
}
