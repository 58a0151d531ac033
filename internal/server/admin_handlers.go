package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetReport handles GET /api/admin/report
func (s *Server) GetReport(c *fiber.Ctx) error {
	report, err := s.svc.Admin.Report(c.UserContext())
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(report)
}

// GetAdminUsers handles GET /api/admin/users?q=... The filter also matches
// email addresses.
func (s *Server) GetAdminUsers(c *fiber.Ctx) error {
	users, err := s.svc.Admin.Users(c.UserContext(), c.Query("q"))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(viewUsers(users))
}

// GetFlaggedPosts handles GET /api/admin/flagged
func (s *Server) GetFlaggedPosts(c *fiber.Ctx) error {
	posts, err := s.svc.Admin.FlaggedPosts(c.UserContext())
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(posts)
}

// SetUserDeactivated handles POST /api/admin/users/:id/deactivate with body
// {"deactivated": bool}. An empty body deactivates.
func (s *Server) SetUserDeactivated(c *fiber.Ctx) error {
	req := struct {
		Deactivated bool `json:"deactivated"`
	}{Deactivated: true}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}
	if err := s.svc.Admin.SetDeactivated(c.UserContext(), c.Params("id"), req.Deactivated); err != nil {
		return respondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AdminResetPassword handles POST /api/admin/users/:id/reset-password
func (s *Server) AdminResetPassword(c *fiber.Ctx) error {
	var req struct {
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := s.svc.Admin.ResetPassword(c.UserContext(), c.Params("id"), req.NewPassword); err != nil {
		return respondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// WarnUser handles POST /api/admin/users/:id/warn
func (s *Server) WarnUser(c *fiber.Ctx) error {
	var req struct {
		Message string `json:"message"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}
	if err := s.svc.Admin.Warn(c.UserContext(), c.Params("id"), req.Message); err != nil {
		return respondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AdminDeletePost handles DELETE /api/admin/posts/:id
func (s *Server) AdminDeletePost(c *fiber.Ctx) error {
	if err := s.svc.Admin.DeletePost(c.UserContext(), c.Params("id")); err != nil {
		return respondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ApprovePost handles POST /api/admin/posts/:id/approve
func (s *Server) ApprovePost(c *fiber.Ctx) error {
	if err := s.svc.Admin.ApprovePost(c.UserContext(), c.Params("id")); err != nil {
		return respondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
