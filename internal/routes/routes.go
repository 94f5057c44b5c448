package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"invoice-dashboard-backend/internal/cache"
	handler "invoice-dashboard-backend/internal/handlers"
	"invoice-dashboard-backend/internal/logging"
	"invoice-dashboard-backend/internal/metrics"
	"invoice-dashboard-backend/internal/repository"
	"invoice-dashboard-backend/internal/services/invoicing"
	"invoice-dashboard-backend/internal/services/reporting"
)

// Deps is what the HTTP surface is built from. Views, Metrics and Registry
// are optional.
type Deps struct {
	DB       *gorm.DB
	Views    cache.ViewCache
	Log      logging.Logger
	Metrics  metrics.Recorder
	Registry *prometheus.Registry
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	invoiceRepo := repository.NewInvoiceRepository(d.DB)
	customerRepo := repository.NewCustomerRepository(d.DB)

	commands := invoicing.NewService(invoiceRepo, customerRepo, d.Views, d.Log, d.Metrics)
	queries := reporting.NewService(
		invoiceRepo,
		customerRepo,
		repository.NewRevenueRepository(d.DB),
		repository.NewUserRepository(d.DB),
		d.Views,
		d.Log,
		d.Metrics,
	)

	invoiceHandler := handler.NewInvoiceHandler(commands, queries)
	customerHandler := handler.NewCustomerHandler(queries)
	dashboardHandler := handler.NewDashboardHandler(queries)
	authHandler := handler.NewAuthHandler(queries)

	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api.POST("/login", authHandler.Login)

	dashboard := api.Group("/dashboard")
	dashboard.GET("/cards", dashboardHandler.Cards)
	dashboard.GET("/latest-invoices", dashboardHandler.LatestInvoices)
	dashboard.GET("/revenue", dashboardHandler.Revenue)

	invoices := api.Group("/invoices")
	{
		invoices.GET("", invoiceHandler.List)
		invoices.POST("", invoiceHandler.Create)
		invoices.GET("/:id", invoiceHandler.Get)
		invoices.PUT("/:id", invoiceHandler.Update)
		invoices.DELETE("/:id", invoiceHandler.Delete)
	}

	customers := api.Group("/customers")
	customers.GET("", customerHandler.List)
	customers.GET("/options", customerHandler.Options)
}
