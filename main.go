// Package main provides the main entry point for the RealtyReach outreach pipeline
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/realtyreach/realtyreach/app/handlers"
	"github.com/realtyreach/realtyreach/app/middleware"
	"github.com/realtyreach/realtyreach/app/router"
	"github.com/realtyreach/realtyreach/app/scheduler"
	"github.com/realtyreach/realtyreach/app/services"
	businessflow "github.com/realtyreach/realtyreach/business_flow"
	"github.com/realtyreach/realtyreach/config"
	"github.com/realtyreach/realtyreach/models"
	"github.com/realtyreach/realtyreach/repository"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	stopFuncs []func()
}

func main() {
	log.Println("Starting RealtyReach application...")

	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.router.Start(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers before draining HTTP
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.router.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Campaign{},
		&models.CampaignEmail{},
		&models.CampaignTemplate{},
		&models.Template{},
		&models.Contact{},
		&models.Listing{},
		&models.OutboxEmail{},
		&models.SentEmail{},
		&models.Job{},
		&models.RapidAPISettings{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established (db=%d)", cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeEmailSenders builds the provider registry from configuration.
// The mock provider is always registered so outbox rows tagged "mock" never
// fail resolution.
func initializeEmailSenders(cfg *config.ProductionConfig) (*services.EmailSenderRegistry, error) {
	registry := services.NewEmailSenderRegistry()
	registry.Register("mock", services.NewMockEmailSender())

	if cfg.Email.SMTP.Enabled {
		registry.Register("smtp", services.NewSMTPEmailSender(&cfg.Email.SMTP))
		log.Println("SMTP email provider registered")
	}

	if cfg.Email.SES.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		sender, err := services.NewSESEmailSender(ctx, cfg.Email.SES.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SES sender: %w", err)
		}
		registry.Register("ses", sender)
		log.Println("SES email provider registered")
	}

	return registry, nil
}

// initializeApplication wires repositories, flows, handlers, and background workers
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	var stopFuncs []func()
	if rc != nil {
		stopFuncs = append(stopFuncs, startCacheHealthMonitor(context.Background(), rc, 30*time.Second))
	}

	// Repositories
	campaignRepo := repository.NewCampaignRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	contactRepo := repository.NewContactRepository(db)
	listingRepo := repository.NewListingRepository(db)
	outboxRepo := repository.NewOutboxEmailRepository(db)
	sentRepo := repository.NewSentEmailRepository(db)
	jobRepo := repository.NewJobRepository(db)
	settingsRepo := repository.NewRapidAPISettingsRepository(db)

	// Services
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	agentClient := services.NewAgentSearchClient(cfg.Scraper.RequestTimeout)

	registry, err := initializeEmailSenders(cfg)
	if err != nil {
		return nil, err
	}

	// Business flows
	campaignFlow := businessflow.NewCampaignFlow(campaignRepo, templateRepo, db)
	templateFlow := businessflow.NewTemplateFlow(templateRepo)
	settingsFlow := businessflow.NewSettingsFlow(settingsRepo, rc)
	contactFlow := businessflow.NewContactFlow(campaignRepo, contactRepo)
	scrapeFlow := businessflow.NewScrapeFlow(campaignRepo, contactRepo, listingRepo, settingsRepo, agentClient, rc, cfg.Scraper)
	generatorFlow := businessflow.NewGeneratorFlow(campaignRepo, contactRepo, outboxRepo, scrapeFlow, db, cfg.Pipeline)
	outboxFlow := businessflow.NewOutboxFlow(outboxRepo, sentRepo, registry, rc, db, cfg.Email, cfg.Pipeline)
	jobQueueFlow := businessflow.NewJobQueueFlow(jobRepo, outboxRepo, campaignRepo, scrapeFlow, generatorFlow, outboxFlow, cfg.Pipeline)

	// Handlers
	functionHandler := handlers.NewFunctionHandler(scrapeFlow, generatorFlow, outboxFlow, jobQueueFlow, templateFlow, contactFlow)
	campaignHandler := handlers.NewCampaignHandler(campaignFlow, contactFlow)
	templateHandler := handlers.NewTemplateHandler(templateFlow)
	settingsHandler := handlers.NewSettingsHandler(settingsFlow)

	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	fiberRouter := router.NewFiberRouter(cfg, authMiddleware, functionHandler, campaignHandler, templateHandler, settingsHandler)

	// Background job runner
	if cfg.Scheduler.Enabled {
		runner := scheduler.NewJobRunner(jobQueueFlow, cfg.Scheduler, cfg.Pipeline)
		stopFuncs = append(stopFuncs, runner.Start(context.Background()))
		log.Println("Background job runner started")
	}

	return &Application{
		router:    fiberRouter,
		config:    cfg,
		stopFuncs: stopFuncs,
	}, nil
}
