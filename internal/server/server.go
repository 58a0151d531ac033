// Package server exposes the domain services over a JSON HTTP API. Each
// mutating request makes exactly one domain call; clients re-read to
// refresh.
package server

import (
	"context"
	"log/slog"
	"time"

	"psocial/internal/config"
	"psocial/internal/featureflags"
	"psocial/internal/middleware"
	"psocial/internal/models"
	"psocial/internal/observability"
	"psocial/internal/service"
	"psocial/internal/store"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

// Deps are the collaborators of a Server.
type Deps struct {
	Config   *config.Config
	Services *service.Services
	Store    store.Repository
	Avatars  *service.AvatarEncoder
	Flags    *featureflags.Manager
	// Redis backs the login and registration rate limits. Optional.
	Redis *redis.Client
}

// Server holds the HTTP adapter state.
type Server struct {
	config         *config.Config
	svc            *service.Services
	store          store.Repository
	avatars        *service.AvatarEncoder
	flags          *featureflags.Manager
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
}

func NewServer(deps Deps) *Server {
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	avatars := deps.Avatars
	if avatars == nil {
		avatars = service.NewAvatarEncoder(cfg.AvatarMaxBytes, cfg.AvatarMaxDimension).
			WithMaxPixels(cfg.AvatarMaxPixels)
	}
	return &Server{
		config:  cfg,
		svc:     deps.Services,
		store:   deps.Store,
		avatars: avatars,
		flags:   deps.Flags,
		redis:   deps.Redis,
	}
}

// App builds the fiber application with all middleware and routes.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:   "psocial",
		BodyLimit: s.bodyLimit(),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(ErrorResponse{Error: fe.Message})
			}
			return respondWithError(c, err)
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

func (s *Server) bodyLimit() int {
	limit := 4 * 1024 * 1024
	if s.config.AvatarMaxBytes*2 > limit {
		limit = s.config.AvatarMaxBytes * 2
	}
	return limit
}

func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(s.SessionLocals())
	app.Use(middleware.ContextMiddleware())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	s.promMiddleware = middleware.InitMetrics("psocial")
	s.promMiddleware.RegisterAt(app, "/metrics")
	app.Use(middleware.MetricsMiddleware(s.promMiddleware))

	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Get("/session", s.GetSession)
	auth.Get("/me", s.GetMe)
	auth.Get("/admin", s.GetIsAdmin)
	auth.Post("/login", middleware.RateLimitByIP(s.redis, 10, time.Minute, "login"), s.Login)
	auth.Post("/logout", s.Logout)
	auth.Post("/register", middleware.RateLimitByIP(s.redis, 5, time.Minute, "register"), s.Register)
	auth.Post("/reset-password", middleware.RateLimitByIP(s.redis, 5, time.Minute, "reset"), s.ResetPassword)
	auth.Put("/profile", s.SaveProfile)
	auth.Post("/profile/avatar", s.UploadAvatar)

	users := api.Group("/users")
	users.Get("/", s.ListUsers)
	users.Get("/suggestions", s.GetSuggestions)
	users.Get("/by-username/:username", s.GetUserByUsername)
	users.Get("/:id", s.GetUser)
	users.Post("/:id/follow", s.FollowUser)
	users.Delete("/:id/follow", s.UnfollowUser)

	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Get("/mine", s.GetMyPosts)
	posts.Get("/by/:userId", s.GetPostsByAuthor)
	posts.Get("/:id", s.GetPost)
	posts.Post("/", s.CreatePost)
	posts.Put("/:id", s.EditPost)
	posts.Delete("/:id", s.DeletePost)
	posts.Post("/:id/like", s.LikePost)
	posts.Post("/:id/dislike", s.DislikePost)
	posts.Post("/:id/comments", s.CommentPost)
	posts.Post("/:id/flags", s.FlagPost)

	notes := api.Group("/notifications")
	notes.Get("/", s.GetNotifications)
	notes.Get("/unread-count", s.GetUnreadCount)
	notes.Post("/read-all", s.MarkAllNotificationsRead)
	notes.Post("/:id/read", s.MarkNotificationRead)

	msgs := api.Group("/messages")
	msgs.Get("/inbox", s.GetInbox)
	msgs.Get("/conversation/:userId", s.GetConversation)
	msgs.Post("/", s.SendMessage)
	msgs.Post("/read-all", s.MarkAllMessagesRead)
	msgs.Post("/:id/read", s.MarkMessageRead)

	admin := api.Group("/admin")
	admin.Get("/report", s.GetReport)
	admin.Get("/flagged", s.GetFlaggedPosts)
	admin.Get("/users", s.GetAdminUsers)
	admin.Post("/users/:id/deactivate", s.SetUserDeactivated)
	admin.Post("/users/:id/reset-password", s.AdminResetPassword)
	admin.Post("/users/:id/warn", s.WarnUser)
	admin.Delete("/posts/:id", s.AdminDeletePost)
	admin.Post("/posts/:id/approve", s.ApprovePost)

	api.Get("/flags", s.GetFeatureFlags)
}

// SessionLocals stores the session user id in fiber locals so logging and
// rate limiting can key on it.
func (s *Server) SessionLocals() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if session, err := s.svc.Auth.CurrentSession(c.UserContext()); err == nil && session != nil {
			c.Locals(middleware.LocalUserID, session.UserID)
		}
		return c.Next()
	}
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "up", "time": time.Now()})
}

// ReadinessCheck loads the aggregate once to prove the backend is reachable.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if err := s.store.View(ctx, func(*models.Aggregate) error { return nil }); err != nil {
		storeStatus = "unhealthy"
	}
	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if storeStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}
	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"store": storeStatus,
			"redis": redisStatus,
		},
		"time": time.Now(),
	})
}

// GetFeatureFlags handles GET /api/flags
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	uid, _ := c.Locals(middleware.LocalUserID).(string)
	return c.JSON(s.flags.Snapshot(uid))
}

// Start listens on the configured port. It blocks until Shutdown.
func (s *Server) Start() error {
	app := s.App()
	observability.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests and drains in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app == nil {
		return nil
	}
	return s.app.ShutdownWithContext(ctx)
}
