package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meetquiz/internal/adapter"
	"meetquiz/internal/adapter/download"
	"meetquiz/internal/adapter/quizgen"
	"meetquiz/internal/cache"
	"meetquiz/internal/config"
	"meetquiz/internal/database"
	"meetquiz/internal/domain"
	"meetquiz/internal/handler"
	"meetquiz/internal/logger"
	"meetquiz/internal/middleware"
	"meetquiz/internal/repository"
	"meetquiz/internal/service"
	"meetquiz/internal/watcher"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
		)

		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx := context.Background()

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.Gemini.APIKey),
		googleai.WithDefaultModel(cfg.Gemini.Model),
	)
	if err != nil {
		appLogger.Fatal("Failed to create LLM client", zap.Error(err))
	}
	generator := quizgen.NewGenerator(llm)

	db, err := database.NewSQLXSQLiteDB(cfg.Database.Path)
	if err != nil {
		appLogger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	questionRepository := repository.NewQuestionDatabaseAdapter(db)

	downloader := download.NewClient(&http.Client{Timeout: 60 * time.Second})

	var quizCache domain.Cache
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		quizCache = adapter.NewRedisCacheAdapter(redisClient)
		appLogger.Info("Redis cache enabled", zap.String("address", cfg.Redis.Address))
	}

	quizService := service.NewQuizService(generator, questionRepository, downloader, quizCache, cfg)
	quizHandler := handler.NewQuizHandler(quizService, cfg.Generation.DefaultNumQuestions)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(requestLogger())

	app.Post("/generate_mcq", quizHandler.GenerateMCQ)
	app.Post("/upload_transcript/", quizHandler.UploadTranscript)
	app.Post("/webhook", quizHandler.Webhook)
	app.Get("/quiz/:meeting_id", quizHandler.GetQuiz)

	watcherCtx, stopWatcher := context.WithCancel(ctx)
	defer stopWatcher()
	if cfg.Watcher.Enabled {
		transcriptWatcher, err := watcher.New(cfg.Watcher.Dir, quizService)
		if err != nil {
			appLogger.Fatal("Failed to create transcript watcher", zap.Error(err))
		}
		defer transcriptWatcher.Stop()
		go func() {
			if err := transcriptWatcher.Start(watcherCtx); err != nil && err != context.Canceled {
				appLogger.Error("Transcript watcher exited", zap.Error(err))
			}
		}()
	}

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		appLogger.Info("Starting server", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down")
	stopWatcher()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("Shutdown error", zap.Error(err))
	}
}
