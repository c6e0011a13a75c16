// Package router assembles the HTTP surface of the API.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"budgetapp/internal/handlers"
	"budgetapp/internal/middleware"
	"budgetapp/internal/services"

	_ "budgetapp/internal/docs" // swagger docs
)

// Services are the business services the routes are served by.
type Services struct {
	Users          services.UserServicer
	LinkedAccounts services.LinkedAccountServicer
	Sync           services.SyncServicer
	Transactions   services.TransactionServicer
	Payments       services.PaymentServicer
	Audit          services.AuditServicer
}

// Options configures the cross-cutting parts of the router.
type Options struct {
	AllowedOrigins []string
	PipelineAPIKey string
}

// New builds the gin engine with every route registered.
func New(svc Services, opts Options) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Users, svc.Audit)
	plaidHandler := handlers.NewPlaidHandler(svc.LinkedAccounts, svc.Sync, svc.Audit)
	accountHandler := handlers.NewAccountHandler(svc.LinkedAccounts, svc.Audit)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions)
	paymentHandler := handlers.NewPaymentHandler(svc.Payments, svc.Audit)
	pipelineHandler := handlers.NewPipelineHandler(svc.Sync, svc.Payments)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(opts.AllowedOrigins))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Scheduler routes authenticate with an API key instead of a user token
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(opts.PipelineAPIKey))
	pipeline.POST("/sync", pipelineHandler.SyncAll)
	pipeline.POST("/payments/mark-overdue", pipelineHandler.MarkOverdue)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	// Bank linking and reconciliation
	protected.POST("/link-token", plaidHandler.CreateLinkToken)
	protected.POST("/exchange-token", plaidHandler.ExchangeToken)
	protected.POST("/sync-transactions", plaidHandler.SyncTransactions)

	accounts := protected.Group("/accounts")
	accounts.GET("", accountHandler.ListAccounts)
	accounts.POST("/refresh-balances", accountHandler.RefreshBalances)

	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/export", transactionHandler.ExportTransactions)

	payments := protected.Group("/payments")
	payments.GET("", paymentHandler.ListPayments)
	payments.POST("", paymentHandler.CreatePayment)
	payments.GET("/:id", paymentHandler.GetPayment)
	payments.PUT("/:id", paymentHandler.UpdatePayment)
	payments.PATCH("/:id", paymentHandler.PatchPayment)
	payments.DELETE("/:id", paymentHandler.DeletePayment)

	return router
}
