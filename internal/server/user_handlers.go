package server

import (
	"psocial/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListUsers handles GET /api/users and GET /api/users?q=...
func (s *Server) ListUsers(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var (
		users []models.User
		err   error
	)
	if q := c.Query("q"); q != "" {
		users, err = s.svc.Users.Search(ctx, q)
	} else {
		users, err = s.svc.Users.List(ctx)
	}
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(viewUsers(users))
}

// GetSuggestions handles GET /api/users/suggestions?limit=N
func (s *Server) GetSuggestions(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	users, err := s.svc.Users.Suggestions(c.UserContext(), limit)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(viewUsers(users))
}

// GetUserByUsername handles GET /api/users/by-username/:username
func (s *Server) GetUserByUsername(c *fiber.Ctx) error {
	name := c.Params("username")
	user, err := s.svc.Users.ByUsername(c.UserContext(), name)
	if err != nil {
		return respondWithError(c, err)
	}
	if user == nil {
		return respondWithError(c, models.NewNotFoundError("User", name))
	}
	return c.JSON(viewUser(user))
}

// GetUser handles GET /api/users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	id := c.Params("id")
	user, err := s.svc.Users.ByID(c.UserContext(), id)
	if err != nil {
		return respondWithError(c, err)
	}
	if user == nil {
		return respondWithError(c, models.NewNotFoundError("User", id))
	}
	return c.JSON(viewUser(user))
}

// FollowUser handles POST /api/users/:id/follow
func (s *Server) FollowUser(c *fiber.Ctx) error {
	if err := s.svc.Users.Follow(c.UserContext(), c.Params("id")); err != nil {
		return respondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnfollowUser handles DELETE /api/users/:id/follow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	if err := s.svc.Users.Unfollow(c.UserContext(), c.Params("id")); err != nil {
		return respondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
