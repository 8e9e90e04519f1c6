package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"porchlight/internal/api"
	"porchlight/internal/config"
	"porchlight/internal/db"
	"porchlight/internal/events"
	"porchlight/internal/models"
	"porchlight/internal/services"
	"porchlight/internal/tasks"
	"porchlight/internal/utils"
	"porchlight/internal/utils/logger"
)

func main() {
	logger := logger.New("porchlight")

	// check if .env file exists
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		logger.Info("No .env file found, skipping environment variable loading")
	} else {
		logger.Info("Loading environment variables from .env file")
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := db.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Fatalf("Failed to close database connection: %v", err)
		}
	}()

	// Initialize the Firebase Admin SDK. Missing credentials are not fatal:
	// the server comes up and authenticated routes answer 503.
	if err := config.InitFirebase(context.Background(), cfg, logger); err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Connect to Redis
	redisClient, err := utils.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	db_instance := db.GetDB()

	// Listing lifecycle audit trail, fed by the CRUD service's event bus
	events.On("properties.created", func(payload interface{}) {
		if p, ok := payload.(*models.Property); ok {
			logger.Info("property %s listed by agent %s", p.ID, p.AgentID)
		}
	})
	events.On("properties.deleted", func(payload interface{}) {
		if id, ok := payload.(string); ok {
			logger.Info("property %s removed", id)
		}
	})

	// Shared services
	chats := services.NewChatStore(config.FirestoreClient())
	goformz := services.NewGoFormzClient(cfg.GoFormz.BaseURL, cfg.GoFormz.APIToken)

	var storage *services.S3Service
	if cfg.Storage.S3.BucketName != "" {
		storage, err = services.NewS3Service(
			cfg.Storage.S3.BucketName,
			cfg.Storage.S3.Endpoint,
			cfg.Storage.S3.Region,
			cfg.Storage.S3.AccessKey,
			cfg.Storage.S3.SecretKey,
		)
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
	} else {
		logger.Warn("S3 bucket not configured, photo upload and form archival are disabled")
	}

	// Task client for enqueueing background work from handlers
	taskClient := tasks.NewTaskClient(cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)
	defer taskClient.Close()

	// Initialize task handlers
	taskHandler := tasks.NewTaskHandler(db_instance, chats, goformz, storage)

	// Initialize task server
	taskServer := tasks.NewServer(
		cfg.Redis.Addr,
		cfg.Redis.Username,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Worker.Concurrency,
		taskHandler,
		logger,
	)

	// Create a context for task server
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	// Start task server
	go func() {
		if err := taskServer.Start(serverCtx); err != nil {
			_ = logger.Error("Task server error", err)
		}
	}()

	// Initialize task scheduler
	taskScheduler := tasks.NewScheduler(
		cfg.Redis.Addr,
		cfg.Redis.Username,
		cfg.Redis.Password,
		cfg.Redis.DB,
		logger,
	)

	// Start task scheduler
	go func() {
		if err := taskScheduler.Start(); err != nil {
			_ = logger.Error("Task scheduler error", err)
		}
	}()

	// Initialize API server
	apiServer := api.NewServer(cfg, db_instance, redisClient, chats, goformz, storage, taskClient)
	go func() {
		logger.Success("API server started")
		if err := apiServer.Start(); err != nil {
			_ = logger.Error("API server error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the servers
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Create a deadline for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stop task scheduler
	taskScheduler.Stop()

	// Stop task server
	serverCancel()

	// Shutdown API server
	if err := apiServer.Shutdown(ctx); err != nil {
		_ = logger.Error("Failed to shutdown API server", err)
	}

	logger.Info("Servers shutdown gracefully")
}
