// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/connectivity"
	"github.com/your-org/pos-backend/internal/domain/order"
	syncdomain "github.com/your-org/pos-backend/internal/domain/sync"
	"github.com/your-org/pos-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/pos-backend/internal/infrastructure/database/redis"
	"github.com/your-org/pos-backend/internal/interfaces/http"
	"github.com/your-org/pos-backend/internal/interfaces/http/routes"
	"github.com/your-org/pos-backend/internal/pkg/events"
	"github.com/your-org/pos-backend/internal/pkg/messaging"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	logger := newLogger(cfg)

	// Connect to database; an unreachable server is tolerated, the register
	// keeps taking orders against the local queue
	db, err := postgres.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	// Redis is local to the register and must be up
	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	monitor := connectivity.NewMonitor(logger)

	// Migrations need the database; skip when offline and let the next boot
	// catch up
	if err := postgres.HealthCheck(db); err != nil {
		logger.WithField("error", err).Warn("skipping migrations, database unreachable")
		monitor.SetOnline(false)
	} else {
		migration := postgres.NewMigration(db)
		if err := migration.RunAutoMigrations(); err != nil {
			log.Fatalf("Database migration failed: %v", err)
		}
		if err := migration.CreateIndexes(); err != nil {
			log.Printf("Warning: Index creation failed: %v", err)
		}
		if cfg.IsDevelopment() {
			if err := migration.SeedInitialData(); err != nil {
				log.Printf("Warning: Data seeding failed: %v", err)
			}
		}
	}

	bus := events.NewBus()
	notifier := messaging.NewService(cfg)
	orderService := order.NewService(db, cfg, logger, notifier, bus)
	queue := syncdomain.NewRedisQueue(redisClient.GetClient(), cfg)
	engine := syncdomain.NewEngine(queue, orderService, monitor, bus, logger, cfg)

	engineCtx, cancelEngine := context.WithCancel(context.Background())
	engine.Start(engineCtx)

	log.Println("✅ All systems operational!")

	// Create and start HTTP server
	server := http.NewServer(cfg, routes.Deps{
		DB:          db,
		RedisClient: redisClient.GetClient(),
		Config:      cfg,
		Logger:      logger,
		Queue:       queue,
		Engine:      engine,
		Monitor:     monitor,
		Bus:         bus,
	})

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("👋 Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.Printf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	// Last drain attempt before the process exits; whatever does not make it
	// stays safely in the queue for the next boot
	engine.DrainOnce(ctx)
	cancelEngine()
	engine.Stop()

	log.Println("✅ Server shutdown completed")
}

// newLogger builds the process-wide structured logger
func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
