package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/panjf2000/ants/v2"

	"github.com/mateus-bonette00/qota-store/internal/api"
	"github.com/mateus-bonette00/qota-store/internal/config"
	"github.com/mateus-bonette00/qota-store/internal/data/mongo"
	"github.com/mateus-bonette00/qota-store/internal/data/postgres"
	"github.com/mateus-bonette00/qota-store/internal/domain/money"
	"github.com/mateus-bonette00/qota-store/internal/fx"
	"github.com/mateus-bonette00/qota-store/internal/logger"
	"github.com/mateus-bonette00/qota-store/internal/metrics"
	"github.com/mateus-bonette00/qota-store/internal/platform/marketplace"
	"github.com/mateus-bonette00/qota-store/internal/platform/messaging/producers"
	"github.com/mateus-bonette00/qota-store/internal/platform/persistence"
	"github.com/mateus-bonette00/qota-store/internal/platform/rates"
	syncengine "github.com/mateus-bonette00/qota-store/internal/sync"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("server")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for ledger-change events
	ledgerProducer, err := producers.NewLedgerEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	expenseRepo := postgres.NewExpenseRepository(log, postgresDB)
	investmentRepo := postgres.NewInvestmentRepository(log, postgresDB)
	productRepo := postgres.NewProductRepository(log, postgresDB)
	supplierRepo := postgres.NewSupplierRepository(log, postgresDB)
	revenueRepo := postgres.NewRevenueRepository(log, postgresDB)
	fxRateRepo := postgres.NewFxRateRepository(log, postgresDB)
	balanceRepo := postgres.NewBalanceRepository(log, postgresDB)
	leaseRepo := postgres.NewLeaseRepository(log, postgresDB)
	syncRunRepo := mongo.NewSyncRunRepository(log, mongoDB.Database())

	// Initialize exchange-rate provider and warm the cache
	ratesClient := rates.NewClient(&cfg.Rates)
	fxProvider := fx.NewProvider(log, ratesClient, fxRateRepo, cfg.Rates.CacheTTL)
	fxProvider.Refresh(appCtx)
	log.Info("Exchange rate provider initialized", "base", money.Base)

	// Initialize worker pool for dashboard fan-out
	pool, err := ants.NewPool(cfg.WorkerPool.Size)
	if err != nil {
		log.Error("Failed to initialize worker pool", "error", err)
		os.Exit(1)
	}

	// Initialize metrics service
	metricsService := metrics.NewService(log, expenseRepo, investmentRepo, productRepo, revenueRepo, balanceRepo, fxProvider, pool)

	// Initialize marketplace client and sync engine
	tokenSource := marketplace.NewTokenSource(&cfg.Marketplace)
	marketplaceClient := marketplace.NewClient(&cfg.Marketplace, tokenSource)

	engine := syncengine.NewEngine(
		log,
		&cfg.Sync,
		marketplaceClient,
		productRepo,
		revenueRepo,
		balanceRepo,
		syncRunRepo,
		leaseRepo,
		fxProvider,
		postgresDB,
		ledgerProducer,
	)

	scheduler := syncengine.NewScheduler(log, &cfg.Sync, engine, fxProvider)
	go scheduler.Start(appCtx)

	// Initialize REST server
	server := api.NewServer(log, cfg, api.Deps{
		Expenses:    expenseRepo,
		Investments: investmentRepo,
		Products:    productRepo,
		Suppliers:   supplierRepo,
		Revenues:    revenueRepo,
		SyncRuns:    syncRunRepo,
		Metrics:     metricsService,
		Engine:      engine,
		Rates:       fxProvider,
	})
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context, stopping the scheduler
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Release the worker pool
	pool.Release()

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = ledgerProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
