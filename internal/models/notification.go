package models

import "time"

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationFollow             NotificationType = "follow"
	NotificationMessage            NotificationType = "message"
	NotificationLike               NotificationType = "like"
	NotificationComment            NotificationType = "comment"
	NotificationFlagged            NotificationType = "flagged"
	NotificationAccountRestricted  NotificationType = "account_restricted"
	NotificationAccountReactivated NotificationType = "account_reactivated"
	NotificationWarning            NotificationType = "warning"
	NotificationInfo               NotificationType = "info"
)

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationFollow, NotificationMessage, NotificationLike, NotificationComment,
		NotificationFlagged, NotificationAccountRestricted, NotificationAccountReactivated,
		NotificationWarning, NotificationInfo:
		return true
	}
	return false
}

// Notification is a read-trackable event delivered to one user.
type Notification struct {
	ID          string           `json:"id"`
	RecipientID string           `json:"recipient_id"`
	Text        string           `json:"text"`
	Type        NotificationType `json:"type"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Message is a one-directional private message.
type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
	Read        bool      `json:"read"`
}
