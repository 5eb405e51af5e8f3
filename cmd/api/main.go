package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/pageza/comedor/backend/config"
	"github.com/pageza/comedor/backend/internal/api"
	"github.com/pageza/comedor/backend/internal/database"
	"github.com/pageza/comedor/backend/internal/events"
	"github.com/pageza/comedor/backend/internal/logging"
	"github.com/pageza/comedor/backend/internal/middleware"
	"github.com/pageza/comedor/backend/internal/router"
	"github.com/pageza/comedor/backend/internal/server"
	"github.com/pageza/comedor/backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile}); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret, cfg.JWTExpiration)
	if _, created, err := authService.EnsureUser(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.WithError(err).Warn("Failed to ensure operator account")
	} else if created {
		log.Infof("Created operator account %q", cfg.AdminUsername)
	}
	if n, err := service.NewAllergenService(db).EnsureCategories(ctx); err != nil {
		log.WithError(err).Warn("Failed to seed allergen categories")
	} else if n > 0 {
		log.Infof("Seeded %d allergen categories", n)
	}

	deps := api.Dependencies{
		DB:          db,
		AuthService: authService,
		Publisher:   events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic),
	}
	defer deps.Publisher.Close()

	// Redis is optional; the limiters fall back to process memory.
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Warnf("Rate limiting without Redis: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}
	deps.LoginLimiter = middleware.NewLimiter(redisClient, middleware.LoginRateLimit)
	deps.ImportLimiter = middleware.NewLimiter(redisClient, middleware.ImportRateLimit)

	if cfg.S3Bucket != "" {
		s3Cfg, err := config.NewS3Config(ctx, cfg.S3Bucket, cfg.AWSRegion)
		if err != nil {
			log.WithError(err).Warn("Upload archiving disabled")
		} else {
			deps.Archiver = s3Cfg
		}
	}

	srv := server.New(cfg, router.SetupRouter(cfg, deps))
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Info("Server stopped")
}
