package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"budgetapp/internal/config"
	"budgetapp/internal/crypto"
	"budgetapp/internal/database"
	"budgetapp/internal/logger"
	"budgetapp/internal/plaid"
	"budgetapp/internal/router"
	"budgetapp/internal/services"
	"budgetapp/internal/validator"
)

// devCredentialKey seals credentials when no key is configured outside production.
const devCredentialKey = "budgetapp-dev-credential-key"

const shutdownTimeout = 15 * time.Second

// @title           Budget App API
// @version         1.0
// @description     Budget App links bank accounts through Plaid, reconciles their transactions and tracks upcoming bills.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("failed to close database: %v", err)
		}
	}()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	credentialKey := appConfig.CredentialEncryptionKey
	if credentialKey == "" {
		log.Warn("CREDENTIAL_ENCRYPTION_KEY not set, using development key")
		credentialKey = devCredentialKey
	}
	sealer, err := crypto.NewSealer(credentialKey)
	if err != nil {
		return fmt.Errorf("failed to create credential sealer: %w", err)
	}

	plaidClient, err := plaid.NewClient(plaid.ClientConfig{
		Environment:       appConfig.PlaidEnv,
		ClientID:          appConfig.PlaidClientID,
		Secret:            appConfig.PlaidSecret,
		ClientName:        appConfig.PlaidClientName,
		CountryCodes:      appConfig.PlaidCountryCodes,
		Products:          appConfig.PlaidProducts,
		RequestsPerSecond: appConfig.PlaidRequestsPerSecond,
		Timeout:           appConfig.UpstreamTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create Plaid client: %w", err)
	}

	validator.Register()

	// Initialize services
	db := dbManager.DB()
	linkedAccountService := services.NewLinkedAccountService(db, plaidClient, sealer)
	syncService := services.NewSyncService(db, linkedAccountService, plaidClient, services.SyncOptions{
		Concurrency:    appConfig.SyncConcurrency,
		MaxAttempts:    appConfig.SyncMaxAttempts,
		RetryBaseDelay: appConfig.SyncRetryBaseDelay,
	})

	engine := router.New(router.Services{
		Users:          services.NewUserService(db),
		LinkedAccounts: linkedAccountService,
		Sync:           syncService,
		Transactions:   services.NewTransactionService(db),
		Payments:       services.NewPaymentService(db),
		Audit:          services.NewAuditService(db),
	}, router.Options{
		AllowedOrigins: appConfig.CORSAllowedOrigins,
		PipelineAPIKey: appConfig.PipelineAPIKey,
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Budget App backend server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
