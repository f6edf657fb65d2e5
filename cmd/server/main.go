package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/mlezhnin/exercise-tracker/internal/api"
	"github.com/mlezhnin/exercise-tracker/internal/config"
	"github.com/mlezhnin/exercise-tracker/internal/handler"
	"github.com/mlezhnin/exercise-tracker/internal/infrastructure/kafka"
	"github.com/mlezhnin/exercise-tracker/internal/infrastructure/redis"
	"github.com/mlezhnin/exercise-tracker/internal/observability"
	postgres "github.com/mlezhnin/exercise-tracker/internal/repository/postgres"
	"github.com/mlezhnin/exercise-tracker/internal/sanitize"
	service "github.com/mlezhnin/exercise-tracker/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	shutdownTracing := observability.Setup("exercise-tracker", cfg.LogLevel)
	defer shutdownTracing(context.Background())

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("Failed to open Postgres: %v", err)
	}
	defer db.Close()

	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.PingContext(startupCtx); err != nil {
		cancel()
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	if err := postgres.EnsureSchema(startupCtx, db); err != nil {
		cancel()
		log.Fatalf("Failed to ensure schema: %v", err)
	}
	cancel()

	userRepo := postgres.NewPostgresUserRepository(db)
	exerciseRepo := postgres.NewPostgresExerciseRepository(db)

	cache, err := redis.NewClient(cfg.RedisAddr)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer cache.Close()

	producer := kafka.NewProducer(cfg.KafkaBrokers)
	defer producer.Close()

	svc := service.NewTrackerService(userRepo, exerciseRepo, cache, producer)
	h := handler.NewHandler(svc, sanitize.New())
	router := api.SetupRouter(h)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}
	go func() {
		log.Printf("Starting server on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
