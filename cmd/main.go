package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"penpal/backend/internal/api/handler"
	"penpal/backend/internal/chathub"
	"penpal/backend/internal/config"
	"penpal/backend/internal/db"
	"penpal/backend/internal/events"
	"penpal/backend/internal/matching"
	"penpal/backend/internal/rooms"
	"penpal/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func setupDependencies(ctx context.Context, cfg config.Config) (*gorm.DB, *redis.Client) {
	gdb, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if cfg.RegistryBackend != "redis" {
		log.Println("Database connection established, using in-memory room registry.")
		return gdb, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return gdb, rdb
}

func setupPublisher(cfg config.Config) events.Publisher {
	if cfg.RabbitURL == "" {
		return events.NopPublisher{}
	}
	p, err := events.NewRabbitPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Fatalf("Failed to connect RabbitMQ: %v", err)
	}
	log.Printf("INFO: Publishing room events to queue %s.", cfg.RabbitQueue)
	return p
}

func main() {
	log.Println("Starting PenPal Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, rdb := setupDependencies(ctx, cfg)
	s := storage.NewStorageService(gdb, rdb)

	var registry chathub.Registry
	if rdb != nil {
		redisRegistry := chathub.NewRedisRegistry(s)
		go redisRegistry.Listen(ctx)
		registry = redisRegistry
	} else {
		registry = chathub.NewMemoryRegistry()
	}

	publisher := setupPublisher(cfg)
	defer publisher.Close()

	h := handler.NewHandler(ctx, s, registry, matching.NewMatcher(s), rooms.NewProvisioner(s, publisher))

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        handler.NewRouter(h, cfg.JWTSecret, cfg.CORSOrigins),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("INFO: Listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("INFO: Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Graceful shutdown failed: %v", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
