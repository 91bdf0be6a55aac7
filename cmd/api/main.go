package main

import (
	"fmt"
	"net/http"
	"os"

	"presupago/internal/config"
	"presupago/internal/database"
	"presupago/internal/handlers"
	"presupago/internal/logger"
	"presupago/internal/middleware"
	"presupago/internal/services"
	"presupago/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "presupago/internal/docs" // Import swagger docs
)

// @title           Presupago API
// @version         1.0
// @description     Presupago tracks spending plans from draft to close, records transactions against closed budgets, and manages accounts payable with a full payment history.
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

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom binding validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)

	// Payment history rows always carry a user; anonymous actions are
	// attributed to the configured system account.
	systemUserID, err := userService.EnsureSystemUser(appConfig.SystemUserEmail)
	if err != nil {
		return fmt.Errorf("failed to ensure system user: %w", err)
	}

	budgetService := services.NewBudgetService(db)
	transactionService := services.NewTransactionService(db)
	payableService := services.NewPayableService(db, systemUserID)
	comparisonService := services.NewComparisonService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	payableHandler := handlers.NewPayableHandler(payableService)
	comparisonHandler := handlers.NewComparisonHandler(comparisonService)
	exportHandler := handlers.NewExportHandler(budgetService, comparisonService, transactionService, payableService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Ledger and payment state changes accept anonymous callers; when a
	// token is present the acting user is recorded.
	optional := v1.Group("/")
	optional.Use(middleware.OptionalAuth())

	transactions := optional.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	optional.GET("/items/:id/execution", transactionHandler.ItemExecution)
	optional.POST("/payables/:id/pay", payableHandler.RegisterPayment)
	optional.POST("/payables/:id/void", payableHandler.VoidPayable)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/dashboard", budgetHandler.Dashboard)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.POST("/:id/close", budgetHandler.CloseBudget)
	budgets.POST("/:id/items", budgetHandler.AddLineItem)
	budgets.PUT("/:id/items/:item_id", budgetHandler.UpdateLineItem)
	budgets.DELETE("/:id/items/:item_id", budgetHandler.DeleteLineItem)
	budgets.POST("/:id/copy-items", budgetHandler.CopyItems)
	budgets.POST("/:id/copy", budgetHandler.CopyBudget)

	// Payable routes
	payables := protected.Group("/payables")
	payables.POST("", payableHandler.CreatePayable)
	payables.GET("", payableHandler.GetPayables)
	payables.GET("/history", payableHandler.GetPaymentHistory)
	payables.GET("/:id", payableHandler.GetPayable)
	payables.PUT("/:id", payableHandler.UpdatePayable)
	payables.DELETE("/:id", payableHandler.DeletePayable)

	// Comparison routes
	comparisons := protected.Group("/comparisons")
	comparisons.GET("", comparisonHandler.EligibleBudgets)
	comparisons.GET("/:id", comparisonHandler.CompareBudget)

	// Export routes
	exports := protected.Group("/exports")
	exports.GET("/budgets/xlsx", exportHandler.BudgetsXLSX)
	exports.GET("/budgets/pdf", exportHandler.BudgetsPDF)
	exports.GET("/budgets/:id/items/xlsx", exportHandler.BudgetItemsXLSX)
	exports.GET("/budgets/:id/items/pdf", exportHandler.BudgetItemsPDF)
	exports.GET("/comparisons/:id/xlsx", exportHandler.ComparisonXLSX)
	exports.GET("/comparisons/:id/pdf", exportHandler.ComparisonPDF)
	exports.GET("/transactions/xlsx", exportHandler.TransactionsXLSX)
	exports.GET("/transactions/pdf", exportHandler.TransactionsPDF)
	exports.GET("/payables/xlsx", exportHandler.PayablesXLSX)
	exports.GET("/payables/pdf", exportHandler.PayablesPDF)
	exports.GET("/payables/history/xlsx", exportHandler.HistoryXLSX)
	exports.GET("/payables/history/pdf", exportHandler.HistoryPDF)

	log.Infof("Starting Presupago backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
