package server

import (
	"psocial/internal/middleware"
	"psocial/internal/models"

	"github.com/gofiber/fiber/v2"
)

// sessionUserID returns the session user id set by SessionLocals, or "".
func sessionUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(middleware.LocalUserID).(string)
	return id
}

// requireSession is used by the inbox reads, which are keyed by a user id
// and would otherwise silently return nothing.
func requireSession(c *fiber.Ctx) (string, error) {
	id := sessionUserID(c)
	if id == "" {
		return "", models.ErrNotLoggedIn
	}
	return id, nil
}

// GetNotifications handles GET /api/notifications
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	uid, err := requireSession(c)
	if err != nil {
		return respondWithError(c, err)
	}
	notes, err := s.svc.Notifications.ForUser(c.UserContext(), uid)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(notes)
}

// GetUnreadCount handles GET /api/notifications/unread-count. Logged-out
// callers get zero, matching the badge reader.
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	count, err := s.svc.Notifications.UnreadCount(c.UserContext(), sessionUserID(c))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(fiber.Map{"unread": count})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	if err := s.svc.Notifications.MarkRead(c.UserContext(), c.Params("id")); err != nil {
		return respondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	uid, err := requireSession(c)
	if err != nil {
		return respondWithError(c, err)
	}
	if err := s.svc.Notifications.MarkAllReadForUser(c.UserContext(), uid); err != nil {
		return respondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetInbox handles GET /api/messages/inbox
func (s *Server) GetInbox(c *fiber.Ctx) error {
	uid, err := requireSession(c)
	if err != nil {
		return respondWithError(c, err)
	}
	msgs, err := s.svc.Messages.InboxFor(c.UserContext(), uid)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(msgs)
}

// GetConversation handles GET /api/messages/conversation/:userId
func (s *Server) GetConversation(c *fiber.Ctx) error {
	uid, err := requireSession(c)
	if err != nil {
		return respondWithError(c, err)
	}
	msgs, err := s.svc.Messages.Conversation(c.UserContext(), uid, c.Params("userId"))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(msgs)
}

// SendMessage handles POST /api/messages
func (s *Server) SendMessage(c *fiber.Ctx) error {
	var req struct {
		To   string `json:"to"`
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := s.svc.Messages.Send(c.UserContext(), req.To, req.Text); err != nil {
		return respondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkMessageRead handles POST /api/messages/:id/read
func (s *Server) MarkMessageRead(c *fiber.Ctx) error {
	if err := s.svc.Messages.MarkRead(c.UserContext(), c.Params("id")); err != nil {
		return respondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkAllMessagesRead handles POST /api/messages/read-all
func (s *Server) MarkAllMessagesRead(c *fiber.Ctx) error {
	uid, err := requireSession(c)
	if err != nil {
		return respondWithError(c, err)
	}
	if err := s.svc.Messages.MarkAllReadForUser(c.UserContext(), uid); err != nil {
		return respondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
