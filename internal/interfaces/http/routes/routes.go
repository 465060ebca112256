// internal/interfaces/http/routes/routes.go
package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/retail-backend/internal/config"
	"github.com/your-org/retail-backend/internal/interfaces/http/handlers"
	"github.com/your-org/retail-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes wires all API v1 routes. Every route requires authentication;
// role rules are enforced per-action inside the handlers.
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	logger := newLogger(cfg)

	branchHandler := handlers.NewBranchHandler(db, cfg)
	supplierHandler := handlers.NewSupplierHandler(db, cfg)
	stockHandler := handlers.NewStockHandler(db, cfg)
	adjustmentHandler := handlers.NewAdjustmentHandler(db, cfg, logger)
	purchaseHandler := handlers.NewPurchaseHandler(db, cfg)
	transferHandler := handlers.NewTransferHandler(db, cfg)
	requestHandler := handlers.NewStockRequestHandler(db, cfg)

	authed := rg.Group("")
	authed.Use(middleware.AuthMiddleware(cfg))

	branches := authed.Group("/branches")
	{
		branches.GET("", branchHandler.List)
		branches.GET("/:id", branchHandler.Get)
		branches.POST("", middleware.HeadOfficeMiddleware(), branchHandler.Create)
	}

	suppliers := authed.Group("/suppliers")
	{
		suppliers.GET("", supplierHandler.List)
		suppliers.GET("/:id", supplierHandler.Get)
		suppliers.POST("", middleware.HeadOfficeMiddleware(), supplierHandler.Create)
	}

	stock := authed.Group("/stock")
	{
		stock.GET("/movements", stockHandler.ListMovements)
		stock.GET("/entries", stockHandler.ListEntries)
		stock.GET("/entry", stockHandler.GetEntry)
		stock.PUT("/reorder-point", stockHandler.SetReorderPoint)
		stock.POST("/rebuild", middleware.HeadOfficeMiddleware(), stockHandler.RebuildEntry)
	}

	adjustments := authed.Group("/adjustments")
	{
		adjustments.GET("", adjustmentHandler.List)
		adjustments.GET("/:id", adjustmentHandler.Get)
		adjustments.POST("", adjustmentHandler.Create)
	}

	purchases := authed.Group("/purchases")
	{
		purchases.GET("", purchaseHandler.List)
		purchases.GET("/:id", purchaseHandler.Get)
		purchases.POST("", purchaseHandler.Create)
		purchases.POST("/:id/action", purchaseHandler.Action)
	}

	transfers := authed.Group("/transfers")
	{
		transfers.GET("", transferHandler.List)
		transfers.GET("/:id", transferHandler.Get)
		transfers.POST("", transferHandler.Create)
		transfers.POST("/:id/action", transferHandler.Action)
	}

	requests := authed.Group("/stock-requests")
	{
		requests.GET("", requestHandler.List)
		requests.GET("/:id", requestHandler.Get)
		requests.POST("", requestHandler.Create)
		requests.POST("/:id/action", requestHandler.Action)
	}
}

// newLogger builds the application logger from config
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
