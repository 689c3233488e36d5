package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mateus-bonette00/qota-store/internal/api/handler"
	"github.com/mateus-bonette00/qota-store/internal/api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	expenseHandler *handler.ExpenseHandler,
	investmentHandler *handler.InvestmentHandler,
	productHandler *handler.ProductHandler,
	supplierHandler *handler.SupplierHandler,
	revenueHandler *handler.RevenueHandler,
	metricsHandler *handler.MetricsHandler,
	syncHandler *handler.SyncHandler,
	currencyHandler *handler.CurrencyHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Expense ledger
		expenses := v1.Group("/expenses")
		{
			expenses.GET("", expenseHandler.List)
			expenses.POST("", expenseHandler.Create)
			expenses.GET("/:id", expenseHandler.GetByID)
			expenses.PUT("/:id", expenseHandler.Update)
			expenses.DELETE("/:id", expenseHandler.Delete)
		}

		// Capital contributions
		investments := v1.Group("/investments")
		{
			investments.GET("", investmentHandler.List)
			investments.POST("", investmentHandler.Create)
			investments.GET("/:id", investmentHandler.GetByID)
			investments.PUT("/:id", investmentHandler.Update)
			investments.DELETE("/:id", investmentHandler.Delete)
		}

		// Sourced inventory
		products := v1.Group("/products")
		{
			products.GET("", productHandler.List)
			products.POST("", productHandler.Create)
			products.GET("/:id", productHandler.GetByID)
			products.PUT("/:id", productHandler.Update)
			products.PATCH("/:id/status", productHandler.UpdateStatus)
			products.DELETE("/:id", productHandler.Delete)
		}

		// Sourcing contacts
		suppliers := v1.Group("/suppliers")
		{
			suppliers.GET("", supplierHandler.List)
			suppliers.POST("", supplierHandler.Create)
			suppliers.GET("/:id", supplierHandler.GetByID)
			suppliers.PUT("/:id", supplierHandler.Update)
			suppliers.DELETE("/:id", supplierHandler.Delete)
		}

		// Revenue events
		revenues := v1.Group("/revenues")
		{
			revenues.GET("", revenueHandler.List)
			revenues.POST("", revenueHandler.Create)
			revenues.GET("/:id", revenueHandler.GetByID)
			revenues.PUT("/:id", revenueHandler.Update)
			revenues.DELETE("/:id", revenueHandler.Delete)
		}

		// Aggregate reporting views
		metrics := v1.Group("/metrics")
		{
			metrics.GET("/summary", metricsHandler.Summary)
			metrics.GET("/totals", metricsHandler.Totals)
			metrics.GET("/profit", metricsHandler.Profit)
			metrics.GET("/series", metricsHandler.Series)
			metrics.GET("/ranking", metricsHandler.Ranking)
			metrics.GET("/dashboard", metricsHandler.Dashboard)
		}

		// Marketplace sync
		syncGroup := v1.Group("/sync")
		{
			syncGroup.POST("", syncHandler.Trigger)
			syncGroup.GET("/status", syncHandler.Status)
			syncGroup.GET("/runs", syncHandler.Runs)
		}

		// Exchange rates
		v1.GET("/currency/rates", currencyHandler.Rates)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
