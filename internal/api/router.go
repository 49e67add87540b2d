package api

import (
	"context"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/maheshrc27/adwola-api/internal/api/handlers"
	"github.com/maheshrc27/adwola-api/internal/api/middleware"
	"github.com/maheshrc27/adwola-api/internal/service"
	"github.com/maheshrc27/adwola-api/pkg/utils"
	"github.com/redis/go-redis/v9"
)

const generationWindow = time.Minute

type RouterConfig struct {
	AllowedOrigins      string
	GenerationRateLimit int // requests per user per minute, 0 disables
	BriefService        service.BriefService
	PostService         service.PostService
	Verifier            utils.TokenVerifier
	Redis               *redis.Client
	Prometheus          *fiberprometheus.FiberPrometheus
	Ping                func(ctx context.Context) error
}

func NewRouter(rc RouterConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	if rc.Prometheus != nil {
		app.Use(rc.Prometheus.Middleware)
	}
	app.Use(middleware.StructuredLogger())

	origins := rc.AllowedOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "authorization, x-client-info, apikey, content-type, idempotency-key",
		MaxAge:       86400,
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if rc.Ping != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := rc.Ping(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if rc.Prometheus != nil {
		rc.Prometheus.RegisterAt(app, "/metrics")
	}

	auth := middleware.NewAuthMiddleware(rc.Verifier)
	brief := handlers.NewBriefHandler(rc.BriefService)
	post := handlers.NewPostHandler(rc.PostService)

	limitBrief := middleware.RateLimit(rc.Redis, rc.GenerationRateLimit, generationWindow, "create-brief")
	limitPost := middleware.RateLimit(rc.Redis, rc.GenerationRateLimit, generationWindow, "regenerate-post")

	api := app.Group("/api", auth.AuthMiddleware())
	api.Post("/create-brief", limitBrief, brief.CreateBrief)
	api.Post("/regenerate-post", limitPost, post.RegeneratePost)
	api.Get("/briefs/:id", brief.GetBrief)

	// same paths the edge functions were served on
	functions := app.Group("/functions/v1", auth.AuthMiddleware())
	functions.Post("/create-brief", limitBrief, brief.CreateBrief)
	functions.Post("/regenerate-post", limitPost, post.RegeneratePost)

	return app
}
