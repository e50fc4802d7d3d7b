package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/pedro17pedroo/SGST-sub000/internal/config"
	"github.com/pedro17pedroo/SGST-sub000/internal/events"
	"github.com/pedro17pedroo/SGST-sub000/internal/handlers"
	"github.com/pedro17pedroo/SGST-sub000/internal/middleware"
	"github.com/pedro17pedroo/SGST-sub000/internal/models"
	"github.com/pedro17pedroo/SGST-sub000/internal/repository"
	"github.com/pedro17pedroo/SGST-sub000/internal/seeders"
	"github.com/pedro17pedroo/SGST-sub000/internal/services"
)

// @title Replenishment & Approval API
// @version 1.0.0
// @description Demand forecasting, stock-out risk evaluation and purchase order approval workflows for SGST warehouses

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8097
// @BasePath /api/v1

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logrus.InfoLevel)

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}

	// Run database migrations
	logger.Info("Running database migrations...")
	if err := db.AutoMigrate(
		&models.ReplenishmentRule{},
		&models.DemandForecast{},
		&models.ApprovalWorkflow{},
		&models.PurchaseOrder{},
		&models.PurchaseOrderItem{},
		&models.Approval{},
		&models.StockLevel{},
		&models.StockMovement{},
	); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Database migrations completed")

	// Seed system workflows
	if err := seeders.SeedSystemWorkflows(db); err != nil {
		logger.Warnf("Failed to seed system workflows: %v", err)
	}

	// Initialize Redis for stock snapshot caching
	redisClient := config.InitRedis(cfg)

	// Initialize repositories
	ruleRepo := repository.NewRuleRepository(db)
	forecastRepo := repository.NewForecastRepository(db)
	workflowRepo := repository.NewWorkflowRepository(db)
	stockRepo := repository.NewStockRepository(db, redisClient)
	orderRepo := repository.NewOrderRepository(db, stockRepo)

	// Initialize event publisher (optional - service works without NATS)
	var publisher services.EventPublisher
	if cfg.NATSURL != "" {
		natsPublisher, err := events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			logger.Warnf("Failed to initialize event publisher: %v. Events will not be published.", err)
		} else {
			logger.Info("Event publisher initialized")
			defer natsPublisher.Close()
			publisher = natsPublisher
		}
	} else {
		logger.Info("NATS_URL not configured, event publishing disabled")
	}

	// Initialize services
	forecastService := services.NewForecastService(forecastRepo, stockRepo, cfg.DefaultBaselineDemand, logger)
	riskService := services.NewRiskService(ruleRepo, stockRepo, forecastService, publisher, logger)
	replenishmentService := services.NewReplenishmentService(ruleRepo, orderRepo, riskService, publisher, logger)
	approvalService := services.NewApprovalService(orderRepo, workflowRepo, publisher, cfg.AutoApproveLimit, logger)

	// Initialize handlers
	ruleHandler := handlers.NewRuleHandler(replenishmentService)
	forecastHandler := handlers.NewForecastHandler(forecastService)
	alertHandler := handlers.NewAlertHandler(riskService)
	orderHandler := handlers.NewOrderHandler(approvalService, replenishmentService)
	workflowHandler := handlers.NewWorkflowHandler(approvalService)
	stockHandler := handlers.NewStockHandler(stockRepo)
	healthHandler := handlers.NewHealthHandler(db, stockRepo)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	// Health check endpoints (no auth required)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)

	// Protected API routes
	api := router.Group("/api/v1")
	api.Use(middleware.HeaderAuthMiddleware())
	api.Use(middleware.TenantMiddleware())

	// Replenishment rule endpoints
	{
		api.POST("/rules", ruleHandler.CreateRule)
		api.GET("/rules", ruleHandler.ListRules)
		api.GET("/rules/:id", ruleHandler.GetRule)
		api.PUT("/rules/:id", ruleHandler.UpdateRule)
		api.DELETE("/rules/:id", ruleHandler.DeactivateRule)
	}

	// Forecast endpoints
	{
		api.POST("/forecasts/generate", forecastHandler.Generate)
		api.GET("/forecasts", forecastHandler.Window)
		api.POST("/forecasts/:id/actual", forecastHandler.RecordActual)
	}

	// Stock-out alert endpoints
	api.GET("/alerts", alertHandler.ListAlerts)

	// Order and approval endpoints
	{
		api.POST("/orders/generate", orderHandler.GenerateOrders)
		api.POST("/orders", orderHandler.CreateOrder)
		api.GET("/orders", orderHandler.ListOrders)
		api.GET("/orders/:id", orderHandler.GetOrder)
		api.POST("/orders/:id/submit", orderHandler.SubmitOrder)
		api.POST("/orders/:id/decision", orderHandler.SubmitDecision)
		api.POST("/orders/:id/cancel", orderHandler.CancelOrder)
		api.POST("/orders/:id/mark-ordered", orderHandler.MarkOrdered)
		api.POST("/orders/:id/receive", orderHandler.ReceiveItems)
		api.GET("/approvals/pending", orderHandler.ListPendingApprovals)
	}

	// Workflow management endpoints
	{
		api.POST("/workflows", workflowHandler.CreateWorkflow)
		api.GET("/workflows", workflowHandler.ListWorkflows)
		api.GET("/workflows/:id", workflowHandler.GetWorkflow)
		api.PUT("/workflows/:id", workflowHandler.UpdateWorkflow)
	}

	// Stock endpoints
	{
		api.GET("/stock", stockHandler.ListStockLevels)
		api.GET("/stock/level", stockHandler.GetStockLevel)
		api.POST("/stock/movements", stockHandler.RecordMovement)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Infof("Replenishment service starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	<-quit
	logger.Info("Shutting down server...")
	logger.Info("Server shutdown complete")
}
