package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"gridbill/internal/config"
	"gridbill/internal/domain"
	"gridbill/internal/handler"
	"gridbill/internal/middleware"
	"gridbill/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	logger *zap.Logger,
	authSvc service.AuthService,
	authH *handler.AuthHandler,
	customerH *handler.CustomerHandler,
	tariffH *handler.TariffHandler,
	readingH *handler.ReadingHandler,
	billH *handler.BillHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// Swagger documentation endpoint
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	// Customer directory
	customers := protected.Group("/customers")
	customers.POST("", middleware.RequireRole(domain.RoleAdmin), customerH.Create)
	customers.GET("", customerH.List)
	customers.GET("/:id", customerH.GetByID)
	customers.PUT("/:id", middleware.RequireRole(domain.RoleAdmin), customerH.Update)
	customers.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), customerH.Deactivate)
	customers.GET("/:id/bills", customerH.ListBills)
	customers.GET("/:id/payments", customerH.ListPayments)
	customers.GET("/:id/readings", customerH.ListReadings)

	// Tariff catalog (reads)
	tariffs := protected.Group("/tariffs")
	tariffs.GET("", tariffH.List)
	tariffs.GET("/active", tariffH.GetActive)
	tariffs.GET("/:id", tariffH.GetByID)

	// Meter readings (field staff or admin)
	readings := protected.Group("/readings")
	readings.POST("", middleware.RequireRole(domain.RoleAdmin, domain.RoleFieldStaff), readingH.Record)
	readings.GET("/:id", readingH.GetByID)

	// Bills and payments (reads)
	bills := protected.Group("/bills")
	bills.GET("", billH.List)
	bills.POST("/preview", billH.Preview)
	bills.GET("/:id", billH.GetByID)
	protected.GET("/payments/:id", billH.GetPayment)

	// Admin routes - billing operations
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(authSvc))
	admin.Use(middleware.RequireRole(domain.RoleAdmin))
	admin.POST("/staff", authH.CreateStaff)
	admin.POST("/tariffs", tariffH.Create)
	admin.POST("/bills/generate", billH.Generate)
	admin.POST("/bills/generate-bulk", billH.GenerateBulk)
	admin.POST("/bills/:id/transition", billH.Transition)
	admin.POST("/payments", billH.RecordPayment)

	return r
}
