package router

import (
	"github.com/gin-gonic/gin"

	"invoiceai/internal/config"
	"invoiceai/internal/handler"
	"invoiceai/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware. The invoice
// routes are mounted under cfg.Routes.Prefix with the middleware named in
// cfg.Routes.Middleware; health endpoints are always registered at the root.
func Setup(
	cfg *config.Config,
	invoiceH *handler.InvoiceHandler,
	healthH *handler.HealthHandler,
	resolver middleware.TenantResolver,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	// CORS must sit on the engine: preflight OPTIONS requests match no
	// registered route, so group middleware would never see them.
	for _, name := range cfg.Routes.Middleware {
		if name == "cors" {
			r.Use(middleware.CORS(cfg.Server.CORSOrigins))
		}
	}

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	if !cfg.Routes.Enabled {
		return r
	}

	api := r.Group("/" + cfg.Routes.Prefix)
	for _, name := range cfg.Routes.Middleware {
		if name == "auth" {
			api.Use(middleware.Auth(&cfg.JWT))
		}
	}
	api.Use(middleware.ResolveTenant(&cfg.MultiTenancy, resolver))

	invoices := api.Group("/invoices")
	invoices.GET("", invoiceH.List)
	invoices.POST("", invoiceH.Create)
	invoices.GET("/export", invoiceH.Export)
	invoices.GET("/:id", invoiceH.GetByID)
	invoices.GET("/:id/file", invoiceH.DownloadFile)
	invoices.DELETE("/:id", invoiceH.Delete)

	api.POST("/extract", invoiceH.Extract)

	return r
}
