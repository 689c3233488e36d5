// Package api hosts the HTTP surface: the gin router, its middleware chain
// and the handlers for every resource and reporting view.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mateus-bonette00/qota-store/internal/api/handler"
	"github.com/mateus-bonette00/qota-store/internal/config"
	"github.com/mateus-bonette00/qota-store/internal/domain/expense"
	"github.com/mateus-bonette00/qota-store/internal/domain/investment"
	"github.com/mateus-bonette00/qota-store/internal/domain/product"
	"github.com/mateus-bonette00/qota-store/internal/domain/revenue"
	"github.com/mateus-bonette00/qota-store/internal/domain/supplier"
	"github.com/mateus-bonette00/qota-store/internal/domain/syncrun"
	"github.com/mateus-bonette00/qota-store/internal/metrics"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Expenses    expense.Repository
	Investments investment.Repository
	Products    product.Repository
	Suppliers   supplier.Repository
	Revenues    revenue.Repository
	SyncRuns    syncrun.Repository
	Metrics     *metrics.Service
	Engine      handler.SyncRunner
	Rates       handler.RateSource
}

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	httpRouter *gin.Engine
}

// NewServer creates and configures a new HTTP server with the given dependencies
func NewServer(log *slog.Logger, cfg *config.Config, deps Deps) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	expenseHandler := handler.NewExpenseHandler(log, deps.Expenses, deps.Rates)
	investmentHandler := handler.NewInvestmentHandler(log, deps.Investments, deps.Rates)
	productHandler := handler.NewProductHandler(log, deps.Products)
	supplierHandler := handler.NewSupplierHandler(log, deps.Suppliers)
	revenueHandler := handler.NewRevenueHandler(log, deps.Revenues, deps.Rates)
	metricsHandler := handler.NewMetricsHandler(log, deps.Metrics)
	syncHandler := handler.NewSyncHandler(log, deps.Engine, deps.SyncRuns)
	currencyHandler := handler.NewCurrencyHandler(log, deps.Rates)

	setupRouter(log, httpRouter,
		expenseHandler,
		investmentHandler,
		productHandler,
		supplierHandler,
		revenueHandler,
		metricsHandler,
		syncHandler,
		currencyHandler,
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server with a timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.httpServer.WriteTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	return nil
}
