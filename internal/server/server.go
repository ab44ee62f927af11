// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	_ "pulse/docs" // swagger docs
	"pulse/internal/bootstrap"
	"pulse/internal/config"
	"pulse/internal/database"
	"pulse/internal/featureflags"
	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/notifications"
	"pulse/internal/repository"
	"pulse/internal/service"
	"pulse/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	store          storage.Store
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	engagementRepo repository.EngagementRepository
	followRepo     repository.FollowRepository

	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Manager

	postService       *service.PostService
	commentService    *service.CommentService
	engagementService *service.EngagementService
	followService     *service.FollowService
	userService       *service.UserService
	mediaService      *service.MediaService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, rt.DB, rt.Redis, rt.Store)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB, Redis and
// storage itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store storage.Store) (*Server, error) {
	if store == nil {
		return nil, errors.New("object storage is required")
	}
	middleware.InitMiddleware(cfg)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		store:          store,
		promMiddleware: middleware.InitMetrics("pulse-api"),
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		engagementRepo: repository.NewEngagementRepository(db),
		followRepo:     repository.NewFollowRepository(db),
		notifier:       notifications.NewNotifier(redisClient),
		hub:            notifications.NewHub(),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	server.postService = service.NewPostService(server.postRepo, server.followRepo, server.userRepo, store)
	server.commentService = service.NewCommentService(server.commentRepo, server.postRepo)
	server.engagementService = service.NewEngagementService(server.engagementRepo, server.postRepo, server.commentRepo)
	server.followService = service.NewFollowService(server.followRepo, server.userRepo)
	server.userService = service.NewUserService(server.userRepo, server.followRepo)
	server.mediaService = service.NewMediaService(store, server.userRepo, server.featureFlags, cfg)

	return server, nil
}

// Build creates the Fiber app with middleware and routes.
func (s *Server) Build() *fiber.App {
	bodyLimit := 4 * 1024 * 1024
	if s.config != nil {
		// multipart overhead on top of the largest accepted upload
		bodyLimit = int(s.config.MaxVideoBytes()) + 1<<20
	}

	app := fiber.New(fiber.Config{
		AppName:   "pulse",
		BodyLimit: bodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	app.Use(middleware.TracingMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New(helmet.Config{
		// uploaded media is embedded by the web client on another origin
		CrossOriginResourcePolicy: "cross-origin",
	}))

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400, // 24 hours
	}))

	perMinute := s.config.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = 120
	}
	app.Use(limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Files of the local driver are served by this process
	if local, ok := s.store.(*storage.LocalStore); ok {
		app.Static("/media", local.Dir(), fiber.Static{MaxAge: 31536000})
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)
	api.Get("/feature-flags", middleware.AuthOptional, s.GetFeatureFlags)

	posts := api.Group("/posts")
	posts.Get("/", middleware.AuthOptional, s.GetPosts)
	posts.Post("/", middleware.AuthRequired,
		middleware.RateLimit(s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	posts.Post("/:id/view", middleware.AuthRequired, s.RecordView)
	posts.Post("/:id/bookmark", middleware.AuthRequired, s.ToggleBookmark)
	posts.Post("/:id/repost", middleware.AuthRequired, s.ToggleRepost)
	posts.Get("/:id/comments", middleware.AuthOptional, s.GetComments)
	posts.Post("/:id/comments", middleware.AuthRequired,
		middleware.RateLimit(s.redis, 30, time.Minute, "create_comment"), s.CreateComment)
	posts.Get("/:id", middleware.AuthOptional, s.GetPost)
	posts.Delete("/:id", middleware.AuthRequired, s.DeletePost)

	api.Post("/likes", middleware.AuthRequired,
		middleware.RateLimit(s.redis, 120, time.Minute, "like"), s.ToggleLike)

	comments := api.Group("/comments", middleware.AuthRequired)
	comments.Patch("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	users := api.Group("/users")
	users.Get("/me", middleware.AuthRequired, s.GetMyProfile)
	users.Patch("/me", middleware.AuthRequired, s.UpdateMyProfile)
	users.Get("/:id/posts", middleware.AuthOptional, s.GetUserPosts)
	users.Post("/:id/follow", middleware.AuthRequired,
		middleware.RateLimit(s.redis, 30, time.Minute, "follow"), s.ToggleFollow)
	users.Get("/:id/following", s.GetFollowing)
	users.Get("/:id/followers", s.GetFollowers)
	users.Get("/:id", middleware.AuthOptional, s.GetUserProfile)

	api.Post("/media", middleware.AuthRequired,
		middleware.RateLimit(s.redis, 20, time.Minute, "media_upload"), s.UploadMedia)

	// WebSocket event stream; the token travels in the query string
	api.Get("/ws", middleware.AuthRequired, s.RealtimeRequired(), s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now().UTC(),
	})
}

// ReadinessCheck handles readiness probe requests
// @Summary Health check
// @Description Reports database and Redis reachability.
// @Tags health
// @Produce json
// @Success 200 {object} object{status=string,checks=object}
// @Failure 503 {object} object{status=string,checks=object}
// @Router /health [get]
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.db == nil {
		dbStatus = "unhealthy"
	} else if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional; without it the service runs single-instance
	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now().UTC(),
	})
}

// StartRealtime subscribes the hub to feed events published by every
// instance. Without Redis events are broadcast locally by the publisher.
func (s *Server) StartRealtime(ctx context.Context) error {
	if !s.notifier.Enabled() {
		return nil
	}
	return s.hub.StartWiring(ctx, s.notifier)
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.Build()

	if err := s.StartRealtime(s.shutdownCtx); err != nil {
		middleware.Logger.Error("failed to start feed wiring", slog.String("error", err.Error()))
	}

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop the feed subscriber
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	// Close WebSocket connections gracefully
	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down hub", slog.String("error", err.Error()))
		}
	}

	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
			}
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
