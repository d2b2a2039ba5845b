package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"marketmind/internal/cache"
	"marketmind/internal/config"
	"marketmind/internal/db"
	"marketmind/internal/jobs"
	"marketmind/internal/metrics"
	"marketmind/internal/middleware"
	"marketmind/internal/server"
	"marketmind/internal/trending"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.IsDev() {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	} else {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}

	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		log.Fatalf("Failed to load config file: %v", err)
	}
	policy, err := config.TrendingPolicy(yamlCfg)
	if err != nil {
		log.Fatalf("Invalid trending policy: %v", err)
	}

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	if cfg.SeedDevData {
		superadmin, err := database.SeedDevData(ctx)
		if err != nil {
			log.Fatalf("Failed to seed dev data: %v", err)
		}
		token, err := middleware.IssueToken(cfg.JWTSecret, cfg.JWTIssuer, superadmin.ID, 24*time.Hour)
		if err != nil {
			log.Fatalf("Failed to issue dev token: %v", err)
		}
		log.Printf("Dev data seeded. Superadmin token (24h): %s", token)
	}

	metrics.Init(database)

	// Optional shared storage for the curated-list cache and rate limiter
	redisStore, err := cache.Open(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}

	var engineOpts []trending.Option
	var limiterStorage fiber.Storage
	if redisStore != nil {
		defer redisStore.Close()
		engineOpts = append(engineOpts, trending.WithCache(redisStore, cfg.CuratedCacheTTL))
		limiterStorage = redisStore
		log.Println("Redis storage enabled for curated lists and rate limiting")
	}

	engine := trending.NewEngine(database, policy, engineOpts...)

	// Background services
	supervisor := jobs.NewSupervisor(slog.Default())
	supervisor.Add(jobs.NewTrendingJob(engine, cfg.TrendingInterval))
	supervisorDone := supervisor.ServeBackground(ctx)

	srv := server.New(cfg, limiterStorage)
	if err := srv.RegisterRoutes(ctx, database, engine); err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	<-supervisorDone
	log.Println("Server exited")
}
