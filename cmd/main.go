package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/DemosCVV/Oge/internal/api"
	"github.com/DemosCVV/Oge/internal/config"
	"github.com/DemosCVV/Oge/internal/dispatch"
	"github.com/DemosCVV/Oge/internal/ratelimit"
	"github.com/DemosCVV/Oge/internal/repository"
	"github.com/DemosCVV/Oge/internal/service"
	"github.com/DemosCVV/Oge/internal/session"
	"github.com/DemosCVV/Oge/internal/telemetry"
)

func main() {
	// Load configuration
	cfg := config.Load()
	catalog := config.DefaultCatalog()

	// Initialize telemetry
	if err := telemetry.Init("purchase-lifecycle", cfg.JaegerEndpoint); err != nil {
		panic(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	}
	defer telemetry.Shutdown(context.Background())
	log := telemetry.Logger

	log.Info("Starting purchase lifecycle service")

	// Connect to PostgreSQL
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := repository.InitDB(db); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}

	purchases := repository.NewPurchaseRepository(db)
	ledger := repository.NewReceiptLedgerRepository(db)
	actors := repository.NewActorRepository(db)
	settings := repository.NewSettingsRepository(db)
	balances := repository.NewBalanceRepository(db)

	if err := settings.EnsureDefaults(context.Background()); err != nil {
		log.Fatal("Failed to seed settings", zap.Error(err))
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})

	// Connect to NATS
	nc, err := nats.Connect(cfg.NatsURL)
	if err != nil {
		log.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer nc.Close()

	// Connect to Kafka
	kafkaWriter := dispatch.NewStateChangedWriter(cfg.KafkaBrokers)
	defer kafkaWriter.Close()

	dispatcher := dispatch.NewNatsDispatcher(nc)
	publisher := dispatch.NewKafkaPublisher(kafkaWriter)

	lifecycle := service.NewLifecycle(
		purchases, ledger, settings, catalog,
		dispatcher, publisher,
		session.NewRedisLocker(redisClient),
		cfg.OperatorID, cfg.MaxReceiptAttempts, log,
	)
	broadcaster := service.NewBroadcaster(actors, dispatcher, log)
	limiter := ratelimit.New(time.Duration(cfg.RateLimitSeconds) * time.Second)
	conv := service.NewConversation(
		session.NewRedisStore(redisClient), limiter, lifecycle,
		actors, settings, balances, dispatcher, broadcaster,
		cfg.OperatorID, log,
	)

	// Setup HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.NewRouter(purchases, conv, log),
	}

	// Start server in goroutine
	go func() {
		log.Info("Purchase lifecycle service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
