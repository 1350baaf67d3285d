package sandbox

import (
	"github.com/gin-gonic/gin" // Gin web framework

	"payportal/internal/middleware" // Auth middleware
	"payportal/internal/mcp"        // Tool endpoint path
)

// NewRouter wires every sandbox route
func NewRouter(svc *Service) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), MetricsMiddleware(svc))

	auth := middleware.JWTAuthMiddleware(svc.secret, svc)
	admin := middleware.AdminOnlyMiddleware(svc.store)

	// Public routes
	r.GET("/health", HealthHandler(svc))
	r.GET("/ready", ReadyHandler(svc))
	r.GET("/metrics", MetricsHandler())
	r.POST("/auth/login", LoginHandler(svc))       // Login endpoint
	r.POST("/auth/register", RegisterHandler(svc)) // Registration endpoint

	// Authenticated routes
	authGroup := r.Group("/auth", auth)
	authGroup.POST("/logout", LogoutHandler(svc))
	authGroup.POST("/refresh", RefreshHandler(svc))
	authGroup.GET("/me", MeHandler(svc))
	authGroup.PUT("/me", UpdateProfileHandler(svc))
	authGroup.GET("/users", admin, ListUsersHandler(svc))
	authGroup.GET("/login-attempts", admin, LoginAttemptsHandler(svc))
	authGroup.GET("/token-stats", admin, TokenStatsHandler(svc))

	payments := r.Group("/payments", auth)
	payments.GET("", ListPaymentsHandler(svc))
	payments.POST("", CreatePaymentHandler(svc))
	payments.GET("/:id", GetPaymentHandler(svc))
	payments.POST("/:id/refund", RefundPaymentHandler(svc))

	wallets := r.Group("/wallets", auth)
	wallets.GET("", ListWalletsHandler(svc))
	wallets.POST("/transfer", TransferHandler(svc))
	wallets.GET("/:id", GetWalletHandler(svc))
	wallets.POST("/:id/topup", TopUpHandler(svc))
	wallets.GET("/:id/transactions", WalletTransactionsHandler(svc))

	r.GET("/dashboard/metrics", auth, DashboardMetricsHandler(svc))
	r.POST(mcp.Endpoint, auth, MCPHandler(svc))

	// Admin routes (protected, admin only)
	analytics := r.Group("/analytics", auth, admin)
	analytics.GET("/revenue", RevenueAnalyticsHandler(svc))
	analytics.GET("/payments", PaymentAnalyticsHandler(svc))
	analytics.GET("/users", UserAnalyticsHandler(svc))
	analytics.GET("/fraud", FraudAnalyticsHandler(svc))

	audit := r.Group("/audit", auth, admin)
	audit.GET("/logs", AuditLogsHandler(svc))
	audit.GET("/export", ExportAuditLogsHandler(svc))

	compliance := r.Group("/compliance", auth, admin)
	compliance.GET("/reports", ComplianceReportsHandler(svc))
	compliance.POST("/reports", GenerateComplianceReportHandler(svc))

	system := r.Group("/system", auth, admin)
	system.GET("/metrics", SystemMetricsHandler(svc))
	system.GET("/status", SystemStatusHandler(svc))
	system.GET("/alerts", SystemAlertsHandler(svc))
	system.POST("/alerts", CreateAlertHandler(svc))
	system.POST("/alerts/:id/resolve", ResolveAlertHandler(svc))

	return r
}
