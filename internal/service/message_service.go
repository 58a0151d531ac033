package service

import (
	"context"
	"slices"
	"strings"

	"psocial/internal/featureflags"
	"psocial/internal/models"
	"psocial/internal/store"
)

// MessageService sends and reads private messages.
type MessageService struct {
	base
}

func NewMessageService(repo store.Repository, opts ...Option) *MessageService {
	return &MessageService{base: newBase("messages", repo, opts)}
}

// Send stores a trimmed message from the caller and notifies the recipient.
// Blank text, a missing session or an empty recipient make it a no-op.
func (s *MessageService) Send(ctx context.Context, recipientID, text string) (err error) {
	defer s.observe(ctx, "send", &err)

	text = strings.TrimSpace(text)
	return s.repo.Update(ctx, func(agg *models.Aggregate) error {
		me, err := s.sessionUser(agg)
		if err != nil {
			return err
		}
		if text == "" {
			return s.guard(models.NewValidationError("Message text is required"))
		}
		if recipientID == "" || (s.flags.On(featureflags.StrictGuards) && agg.UserByID(recipientID) == nil) {
			return s.guard(models.ErrTargetNotFound)
		}
		agg.Messages = append(agg.Messages, models.Message{
			ID:          s.newID(),
			SenderID:    me.ID,
			RecipientID: recipientID,
			Text:        text,
			CreatedAt:   s.now(),
		})
		s.notify(agg, recipientID, "You received a new private message.", models.NotificationMessage)
		return nil
	})
}

// InboxFor returns messages received by userID, newest first.
func (s *MessageService) InboxFor(ctx context.Context, userID string) ([]models.Message, error) {
	out, err := s.collect(ctx, func(m *models.Message) bool { return m.RecipientID == userID })
	slices.SortStableFunc(out, func(a, b models.Message) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, err
}

// ForUser is InboxFor under the name the notification log uses.
func (s *MessageService) ForUser(ctx context.Context, userID string) ([]models.Message, error) {
	return s.InboxFor(ctx, userID)
}

// Conversation returns messages between a and b in either direction, oldest
// first.
func (s *MessageService) Conversation(ctx context.Context, a, b string) ([]models.Message, error) {
	out, err := s.collect(ctx, func(m *models.Message) bool {
		return (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a)
	})
	slices.SortStableFunc(out, func(x, y models.Message) int {
		return x.CreatedAt.Compare(y.CreatedAt)
	})
	return out, err
}

func (s *MessageService) collect(ctx context.Context, keep func(*models.Message) bool) ([]models.Message, error) {
	out := []models.Message{}
	err := s.repo.View(ctx, func(agg *models.Aggregate) error {
		for i := range agg.Messages {
			if keep(&agg.Messages[i]) {
				out = append(out, agg.Messages[i])
			}
		}
		return nil
	})
	return out, err
}

func (s *MessageService) MarkRead(ctx context.Context, id string) (err error) {
	defer s.observe(ctx, "mark_read", &err)

	return s.repo.Update(ctx, func(agg *models.Aggregate) error {
		for i := range agg.Messages {
			if agg.Messages[i].ID == id {
				agg.Messages[i].Read = true
				return nil
			}
		}
		return store.ErrNoChange
	})
}

func (s *MessageService) MarkAllReadForUser(ctx context.Context, userID string) (err error) {
	defer s.observe(ctx, "mark_all_read", &err)

	return s.repo.Update(ctx, func(agg *models.Aggregate) error {
		for i := range agg.Messages {
			if agg.Messages[i].RecipientID == userID {
				agg.Messages[i].Read = true
			}
		}
		return nil
	})
}
