package server

import (
	"psocial/internal/models"
	"psocial/internal/service"

	"github.com/gofiber/fiber/v2"
)

type textRequest struct {
	Text string `json:"text"`
}

// GetPosts handles GET /api/posts?sort=new|likes|trending&q=...
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	mode := service.ParseSortMode(c.Query("sort"))

	var (
		posts []models.Post
		err   error
	)
	if q := c.Query("q"); q != "" {
		posts, err = s.svc.Posts.Search(ctx, q, mode)
	} else {
		posts, err = s.svc.Posts.All(ctx, mode)
	}
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(posts)
}

// GetMyPosts handles GET /api/posts/mine
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	posts, err := s.svc.Posts.Mine(c.UserContext(), service.ParseSortMode(c.Query("sort")))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(posts)
}

// GetPostsByAuthor handles GET /api/posts/by/:userId
func (s *Server) GetPostsByAuthor(c *fiber.Ctx) error {
	posts, err := s.svc.Posts.ByAuthor(c.UserContext(), c.Params("userId"), service.ParseSortMode(c.Query("sort")))
	if err != nil {
		return respondWithError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id := c.Params("id")
	post, err := s.svc.Posts.ByID(c.UserContext(), id)
	if err != nil {
		return respondWithError(c, err)
	}
	if post == nil {
		return respondWithError(c, models.NewNotFoundError("Post", id))
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req textRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	post, err := s.svc.Posts.Create(c.UserContext(), req.Text)
	if err != nil {
		return respondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// EditPost handles PUT /api/posts/:id
func (s *Server) EditPost(c *fiber.Ctx) error {
	var req textRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := s.svc.Posts.Edit(c.UserContext(), c.Params("id"), req.Text); err != nil {
		return respondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.svc.Posts.Remove(c.UserContext(), c.Params("id")); err != nil {
		return respondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	if err := s.svc.Posts.Like(c.UserContext(), c.Params("id")); err != nil {
		return respondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DislikePost handles POST /api/posts/:id/dislike
func (s *Server) DislikePost(c *fiber.Ctx) error {
	if err := s.svc.Posts.Dislike(c.UserContext(), c.Params("id")); err != nil {
		return respondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CommentPost handles POST /api/posts/:id/comments
func (s *Server) CommentPost(c *fiber.Ctx) error {
	var req textRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := s.svc.Posts.Comment(c.UserContext(), c.Params("id"), req.Text); err != nil {
		return respondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// FlagPost handles POST /api/posts/:id/flags. An empty body flags with the
// default reason.
func (s *Server) FlagPost(c *fiber.Ctx) error {
	var req struct {
		Reason string `json:"reason"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}
	if err := s.svc.Posts.Flag(c.UserContext(), c.Params("id"), req.Reason); err != nil {
		return respondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
