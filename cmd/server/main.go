package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/api"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/broker"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/config"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/database"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/repository"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/scheduler"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Create repositories
	repos := repository.NewRegistry(db)

	token, err := resolveToken(cfg, repos.Settings)
	if err != nil {
		log.Fatalf("Failed to resolve broker API token: %v", err)
	}

	client := broker.NewRESTClient(cfg.Broker.BaseURL, token)

	// Create services
	systemService := service.NewSystemService(db)
	marketService := service.NewMarketService(client)
	reconciler := service.NewReconciler(
		client,
		repos.Fills,
		repos.Operations,
		repos.Positions,
		nil,
	)
	portfolioService := service.NewPortfolioService(
		client,
		repos.Portfolios,
		repos.Positions,
		repos.Fills,
		reconciler,
		marketService,
	)

	// Create router
	router := api.NewRouter(systemService, portfolioService, reconciler, cfg)

	// Start background reconciliation
	sched := scheduler.New(repos.Portfolios, reconciler, marketService)
	if err := sched.Start(cfg.Scheduler.ReconcileSpec); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	sched.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// resolveToken obtains the broker API token. A token passed via environment
// is encrypted and persisted, then used directly; otherwise the stored
// encrypted token is decrypted with the configured fernet key.
func resolveToken(cfg *config.Config, settings *repository.SettingsRepository) (string, error) {
	if cfg.Broker.Token != "" {
		if cfg.Broker.FernetKey != "" {
			encrypted, err := broker.EncryptToken(cfg.Broker.FernetKey, cfg.Broker.Token)
			if err != nil {
				return "", err
			}
			if err := settings.Set(repository.SettingBrokerToken, encrypted); err != nil {
				return "", err
			}
		}
		return cfg.Broker.Token, nil
	}

	encrypted, err := settings.Get(repository.SettingBrokerToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			log.Println("No broker API token configured; broker requests will fail until one is provided")
			return "", nil
		}
		return "", err
	}
	return broker.DecryptToken(cfg.Broker.FernetKey, encrypted)
}
