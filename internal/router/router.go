package router

import (
	"github.com/gin-gonic/gin"

	"fakturo/internal/handler"
	"fakturo/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	allowedOrigins []string,
	invoiceH *handler.InvoiceHandler,
	paymentH *handler.PaymentHandler,
	recurringH *handler.RecurringHandler,
	migrationH *handler.MigrationHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Payment tooling is stateless and needs no owner identity
	paymentGroup := v1.Group("/payment")
	paymentGroup.POST("/validate-iban", paymentH.ValidateIBAN)
	paymentGroup.POST("/code", paymentH.BuildCode)

	// Owner-scoped routes - require the X-Owner-ID header
	owned := v1.Group("")
	owned.Use(middleware.Identity())

	invoices := owned.Group("/invoices")
	invoices.POST("/preview", invoiceH.Preview)
	invoices.POST("", invoiceH.Create)
	invoices.GET("", invoiceH.List)
	invoices.GET("/export", invoiceH.Export)
	invoices.GET("/:id", invoiceH.GetByID)
	invoices.DELETE("/:id", invoiceH.Delete)

	recurring := owned.Group("/recurring")
	recurring.POST("", recurringH.Create)
	recurring.GET("", recurringH.List)
	recurring.GET("/:id", recurringH.GetByID)
	recurring.PUT("/:id", recurringH.Update)
	recurring.GET("/:id/due", recurringH.CheckDue)
	recurring.POST("/:id/fire", recurringH.Fire)
	recurring.POST("/:id/deactivate", recurringH.Deactivate)

	owned.POST("/migration", migrationH.Migrate)

	return r
}
