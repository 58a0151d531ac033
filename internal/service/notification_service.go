package service

import (
	"context"
	"slices"

	"psocial/internal/models"
	"psocial/internal/store"
)

// NotificationService reads and acknowledges per-user notifications.
type NotificationService struct {
	base
}

func NewNotificationService(repo store.Repository, opts ...Option) *NotificationService {
	return &NotificationService{base: newBase("notifications", repo, opts)}
}

// Add appends a notification. Unknown types are stored as info; an empty
// recipient is ignored.
func (s *NotificationService) Add(ctx context.Context, recipientID, text string, typ models.NotificationType) (err error) {
	defer s.observe(ctx, "add", &err)

	if recipientID == "" {
		return nil
	}
	return s.repo.Update(ctx, func(agg *models.Aggregate) error {
		s.notify(agg, recipientID, text, typ)
		return nil
	})
}

// ForUser returns the recipient's notifications, newest first.
func (s *NotificationService) ForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	out := []models.Notification{}
	err := s.repo.View(ctx, func(agg *models.Aggregate) error {
		for _, n := range agg.Notifications {
			if n.RecipientID == userID {
				out = append(out, n)
			}
		}
		return nil
	})
	slices.SortStableFunc(out, func(a, b models.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, err
}

func (s *NotificationService) MarkRead(ctx context.Context, id string) (err error) {
	defer s.observe(ctx, "mark_read", &err)

	return s.repo.Update(ctx, func(agg *models.Aggregate) error {
		for i := range agg.Notifications {
			if agg.Notifications[i].ID == id {
				agg.Notifications[i].Read = true
				return nil
			}
		}
		return store.ErrNoChange
	})
}

func (s *NotificationService) MarkAllReadForUser(ctx context.Context, userID string) (err error) {
	defer s.observe(ctx, "mark_all_read", &err)

	return s.repo.Update(ctx, func(agg *models.Aggregate) error {
		for i := range agg.Notifications {
			if agg.Notifications[i].RecipientID == userID {
				agg.Notifications[i].Read = true
			}
		}
		return nil
	})
}

// UnreadCount backs the notification badge.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.repo.View(ctx, func(agg *models.Aggregate) error {
		for _, x := range agg.Notifications {
			if x.RecipientID == userID && !x.Read {
				n++
			}
		}
		return nil
	})
	return n, err
}
