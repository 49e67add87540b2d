package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/adwola-api/configs"
	"github.com/maheshrc27/adwola-api/internal/api"
	job "github.com/maheshrc27/adwola-api/internal/jobs"
	"github.com/maheshrc27/adwola-api/internal/observability"
	"github.com/maheshrc27/adwola-api/internal/queue"
	"github.com/maheshrc27/adwola-api/internal/repository"
	"github.com/maheshrc27/adwola-api/internal/service"
	"github.com/maheshrc27/adwola-api/pkg/utils"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slog.SetDefault(observability.NewLogger(os.Stdout, cfg.IsProduction()))

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  "adwola-api",
		Environment:  cfg.Env,
		Enabled:      cfg.TracingEnabled,
		OTLPEndpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
	defer rdb.Close()

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	brandRepo := repository.NewBrandRepository(db)
	briefRepo := repository.NewBriefRepository(db)
	postRepo := repository.NewPostRepository(db)
	usageRepo := repository.NewUsageRepository(db)

	textService, err := service.NewLLMService(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.CopyModel, cfg.OpenAI.LLMTimeout)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}
	imageService, err := service.NewImageService(service.ImageOptions{
		APIKey:            cfg.OpenAI.APIKey,
		BaseURL:           cfg.OpenAI.BaseURL,
		Model:             cfg.OpenAI.ImageModel,
		Size:              cfg.OpenAI.ImageSize,
		Timeout:           cfg.OpenAI.ImageTimeout,
		RequestsPerMinute: cfg.OpenAI.ImageRPM,
	})
	if err != nil {
		log.Fatalf("Failed to create image client: %v", err)
	}

	ai := service.AIClients{Text: textService, Image: imageService}
	if cfg.StorageConfigured() {
		r2Service, err := service.NewR2Service(context.Background(), *cfg)
		if err != nil {
			log.Fatalf("Failed to create storage client: %v", err)
		}
		ai.Storage = r2Service
	}

	opts := service.GenerationOptions{
		StrategyModel: cfg.OpenAI.StrategyModel,
		CopyModel:     cfg.OpenAI.CopyModel,
	}
	usageService := service.NewUsageService(usageRepo, service.FailPolicy(cfg.UsageFailPolicy))
	idempotencyService := service.NewIdempotencyService(rdb, cfg.IdempotencyTTL)
	briefService := service.NewBriefService(briefRepo, brandRepo, postRepo, usageService, ai, idempotencyService, queue.NewEnqueuer(client), opts)
	postService := service.NewPostService(postRepo, usageService, textService, opts)

	var verifier utils.TokenVerifier
	if cfg.JWKSURL != "" {
		verifier, err = utils.NewJWKSVerifier(cfg.JWKSURL)
		if err != nil {
			log.Fatalf("Failed to load JWKS: %v", err)
		}
	} else {
		verifier = utils.NewHMACVerifier(cfg.JWTSecret)
	}

	app := api.NewRouter(api.RouterConfig{
		AllowedOrigins:      cfg.AllowedOrigins,
		GenerationRateLimit: cfg.GenerationRateLimit,
		BriefService:        briefService,
		PostService:         postService,
		Verifier:            verifier,
		Redis:               rdb,
		Prometheus:          fiberprometheus.New("adwola-api"),
		Ping:                db.PingContext,
	})

	// cron jobs
	staleBriefJob := job.NewStaleBriefJob(briefRepo, cfg.StaleBriefAfter)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", staleBriefJob.ReapStaleBriefs)
	c.Start()
	defer c.Stop()

	//queue
	queueW := queue.NewQueue(briefService)
	server := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: cfg.QueueConcurrency,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskTypeGenerateBrief, queueW.HandleGenerateBriefTask)

	slog.Info("Starting the Asynq server...")
	if err := server.Start(mux); err != nil {
		log.Fatalf("Could not start Asynq server: %v", err)
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	slog.Info("Server is running", "port", cfg.Port)

	gracefulShutdown(app, server, shutdownTracing)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, server *asynq.Server, shutdownTracing func(context.Context) error) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	slog.Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		slog.Error("Failed to shut down server", "error", err)
	}
	server.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(ctx); err != nil {
		slog.Error("Failed to flush traces", "error", err)
	}

	slog.Info("Server shutdown complete.")
}
