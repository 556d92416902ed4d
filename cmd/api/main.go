package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"resumatch/ats-engine/internal/config"
	"resumatch/ats-engine/internal/handlers"
	"resumatch/ats-engine/internal/logger"
	"resumatch/ats-engine/internal/middleware"
	"resumatch/ats-engine/internal/repositories"
	"resumatch/ats-engine/internal/services"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}
	zlog.Info("database connected and migrated")

	profileRepo := repositories.NewProfileRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	ingestionRepo := repositories.NewIngestionRepository(db)

	storageSvc := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageSvc.EnsureUploadDir(); err != nil {
		zlog.Fatal("failed to create upload directory", zap.Error(err))
	}

	extractor := services.NewTextExtractor()

	ctx := context.Background()

	geminiSvc, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey)
	if err != nil {
		zlog.Fatal("failed to initialize gemini client", zap.Error(err))
	}

	index, err := services.NewQdrantIndex(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		zlog.Fatal("failed to initialize qdrant client", zap.Error(err))
	}

	if err := index.EnsureCollection(ctx); err != nil {
		zlog.Fatal("failed to ensure qdrant collection", zap.Error(err))
	}
	zlog.Info("vector index ready", zap.String("collection", cfg.Qdrant.Collection))

	structuredSvc := services.NewStructuredExtractor(geminiSvc)

	ingestor := services.NewIngestor(
		ingestionRepo,
		profileRepo,
		jobRepo,
		extractor,
		geminiSvc,
		structuredSvc,
		index,
		zlog,
	)

	scorer := services.NewCosineScorer()
	ranker, err := services.NewRanker(profileRepo, index, scorer, cfg.Ranking.Concurrency, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize ranker", zap.Error(err))
	}

	worker := services.NewWorker(
		ingestionRepo,
		ingestor,
		cfg.Worker.Concurrency,
		cfg.Worker.RetryMaxAttempts,
		cfg.Worker.PollInterval,
		zlog,
	)
	worker.Start(ctx)

	resumeHandler := handlers.NewResumeHandler(ingestionRepo, storageSvc, ingestor, cfg.Storage.MaxFileSize)
	jobHandler := handlers.NewJobHandler(jobRepo, ingestionRepo, storageSvc, ingestor, cfg.Storage.MaxFileSize)
	rankingHandler := handlers.NewRankingHandler(jobRepo, ranker)
	indexHandler := handlers.NewIndexHandler(index)

	app := fiber.New(fiber.Config{
		AppName:      "ATS Ranking Engine",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	auth := middleware.JWTAuth(cfg.Auth.JWTSecret)

	api.Post("/resume", auth, middleware.RequireRole(middleware.RoleCandidate), resumeHandler.HandleIngestResume)

	jobs := api.Group("/jobs", auth, middleware.RequireRole(middleware.RoleJob))
	jobs.Post("/", jobHandler.HandleCreateJob)
	jobs.Get("/", jobHandler.HandleListJobs)
	jobs.Get("/:id", jobHandler.HandleGetJob)
	jobs.Get("/:id/candidates", rankingHandler.HandleRankCandidates)

	api.Get("/index/ids", auth, indexHandler.HandleListIDs)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("shutting down server")
		worker.Stop()
		ranker.Release()
		if err := app.Shutdown(); err != nil {
			zlog.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
