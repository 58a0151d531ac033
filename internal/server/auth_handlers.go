package server

import (
	"psocial/internal/models"
	"psocial/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetSession handles GET /api/auth/session
func (s *Server) GetSession(c *fiber.Ctx) error {
	session, err := s.svc.Auth.CurrentSession(c.UserContext())
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(fiber.Map{"session": session})
}

// GetMe handles GET /api/auth/me
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.svc.Auth.CurrentUser(c.UserContext())
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(fiber.Map{"user": viewUser(user)})
}

// GetIsAdmin handles GET /api/auth/admin
func (s *Server) GetIsAdmin(c *fiber.Ctx) error {
	ok, err := s.svc.Auth.IsAdmin(c.UserContext())
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(fiber.Map{"admin": ok})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Identity string `json:"identity"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := s.svc.Auth.Login(c.UserContext(), req.Identity, req.Password); err != nil {
		return respondWithError(c, err)
	}
	return s.GetSession(c)
}

// Logout handles POST /api/auth/logout
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.svc.Auth.Logout(c.UserContext()); err != nil {
		return respondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username         string `json:"username"`
		Email            string `json:"email"`
		Password         string `json:"password"`
		SecurityQuestion string `json:"security_question"`
		SecurityAnswer   string `json:"security_answer"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	err := s.svc.Auth.Register(c.UserContext(), service.RegisterInput{
		Username:         req.Username,
		Email:            req.Email,
		Password:         req.Password,
		SecurityQuestion: req.SecurityQuestion,
		SecurityAnswer:   req.SecurityAnswer,
	})
	if err != nil {
		return respondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusCreated)
}

// ResetPassword handles POST /api/auth/reset-password
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Identity    string `json:"identity"`
		Answer      string `json:"answer"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := s.svc.Auth.ResetPassword(c.UserContext(), req.Identity, req.Answer, req.NewPassword); err != nil {
		return respondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SaveProfile handles PUT /api/auth/profile. An absent avatar keeps the
// current one.
func (s *Server) SaveProfile(c *fiber.Ctx) error {
	var req struct {
		DisplayName string  `json:"display_name"`
		Bio         string  `json:"bio"`
		Avatar      *string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	err := s.svc.Auth.SaveProfile(c.UserContext(), service.ProfileInput{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Avatar:      req.Avatar,
	})
	if err != nil {
		return respondWithError(c, err)
	}
	return s.GetMe(c)
}

// UploadAvatar handles POST /api/auth/profile/avatar (multipart field
// "avatar"). The upload is fully encoded before the profile is saved.
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	ctx := c.UserContext()
	user, err := s.svc.Auth.CurrentUser(ctx)
	if err != nil {
		return respondWithError(c, err)
	}
	if user == nil {
		return respondWithError(c, models.ErrNotLoggedIn)
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		return badRequest(c, "No avatar uploaded")
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "Failed to read upload")
	}
	defer func() { _ = f.Close() }()

	uri, err := s.avatars.Encode(ctx, f)
	if err != nil {
		return respondWithError(c, err)
	}
	err = s.svc.Auth.SaveProfile(ctx, service.ProfileInput{
		DisplayName: user.Profile.DisplayName,
		Bio:         user.Profile.Bio,
		Avatar:      &uri,
	})
	if err != nil {
		return respondWithError(c, err)
	}
	return s.GetMe(c)
}
