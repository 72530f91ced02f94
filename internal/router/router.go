package router

import (
	"github.com/gin-gonic/gin"

	"invogen/internal/handler"
	"invogen/internal/middleware"
	"invogen/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	corsOrigins []string,
	authH *handler.AuthHandler,
	profileH *handler.ProfileHandler,
	invoiceH *handler.InvoiceHandler,
	billingH *handler.BillingHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/signup", authH.Signup)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	protected.GET("/account", profileH.Account)

	profile := protected.Group("/profile")
	profile.GET("", profileH.Get)
	profile.PUT("", profileH.Upsert)
	profile.POST("/logo", profileH.UploadLogo)

	invoices := protected.Group("/invoices")
	invoices.POST("", invoiceH.Generate)
	invoices.POST("/preview", invoiceH.Preview)
	invoices.GET("", invoiceH.List)
	invoices.GET("/export", invoiceH.Export)

	// Payment relay routes keep the checkout-facing paths the frontend
	// integration expects.
	api := r.Group("/api")
	api.POST("/webhook", billingH.Webhook)

	pay := api.Group("")
	pay.Use(middleware.AuthMiddleware(authSvc))
	pay.POST("/create-order", billingH.CreateOrder)
	pay.POST("/verify-payment", billingH.VerifyPayment)
	pay.GET("/order-status/:orderId", billingH.OrderStatus)

	return r
}
