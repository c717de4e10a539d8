package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer-api/internal/config"
	domainRepo "github.com/sangkips/invoicer-api/internal/domain/repository"
	"github.com/sangkips/invoicer-api/internal/presentation/http/handler"
	"github.com/sangkips/invoicer-api/internal/presentation/http/middleware"
	"github.com/sangkips/invoicer-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Customer      *handler.CustomerHandler
	Product       *handler.ProductHandler
	SenderProfile *handler.SenderProfileHandler
	Invoice       *handler.InvoiceHandler
	Editor        *handler.EditorHandler
	Dashboard     *handler.DashboardHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.UserRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	idempotent := middleware.Idempotency(middleware.IdempotencyConfig{
		Repo: deps.IdempotencyRepo,
		TTL:  deps.Cfg.Invoice.IdempotencyTTL,
	})

	// Dashboard
	protected.GET("/dashboard", h.Dashboard.GetStats)

	registerCustomerRoutes(protected, h)
	registerProductRoutes(protected, h)
	registerSenderProfileRoutes(protected, h)
	registerInvoiceRoutes(protected, h)
	registerEditorRoutes(protected, h, idempotent)
	registerAdminRoutes(protected, h)
}

func registerCustomerRoutes(protected *gin.RouterGroup, h *Handlers) {
	customers := protected.Group("/customers")
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", h.Customer.Delete)
		customers.GET("/:id/prices", h.Customer.ListPrices)
		customers.PUT("/:id/prices", h.Customer.SetPrice)
		customers.DELETE("/:id/prices/:priceId", h.Customer.DeletePrice)
	}
}

func registerProductRoutes(protected *gin.RouterGroup, h *Handlers) {
	products := protected.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.POST("/import", h.Product.Import)
		products.GET("/import/template", h.Product.ImportTemplate)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
	}
}

func registerSenderProfileRoutes(protected *gin.RouterGroup, h *Handlers) {
	profiles := protected.Group("/sender-profiles")
	{
		profiles.GET("", h.SenderProfile.List)
		profiles.POST("", h.SenderProfile.Create)
		profiles.GET("/:id", h.SenderProfile.Get)
		profiles.PUT("/:id", h.SenderProfile.Update)
		profiles.DELETE("/:id", h.SenderProfile.Delete)
		profiles.GET("/:id/next-number", h.Invoice.NextNumber)
		profiles.GET("/:id/bank-accounts", h.SenderProfile.ListBankAccounts)
		profiles.POST("/:id/bank-accounts", h.SenderProfile.AddBankAccount)
	}

	accounts := protected.Group("/bank-accounts")
	{
		accounts.PUT("/:accountId", h.SenderProfile.UpdateBankAccount)
		accounts.DELETE("/:accountId", h.SenderProfile.DeleteBankAccount)
	}
}

func registerInvoiceRoutes(protected *gin.RouterGroup, h *Handlers) {
	invoices := protected.Group("/invoices")
	{
		invoices.GET("", h.Invoice.List)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.DELETE("/:id", h.Invoice.Delete)
		invoices.PUT("/:id/status", h.Invoice.ChangeStatus)
		invoices.GET("/:id/pdf", h.Invoice.PDF)
	}
}

func registerEditorRoutes(protected *gin.RouterGroup, h *Handlers, idempotent gin.HandlerFunc) {
	sessions := protected.Group("/editor/sessions")
	{
		sessions.POST("", h.Editor.Open)
		sessions.GET("/:id", h.Editor.Get)
		sessions.DELETE("/:id", h.Editor.Close)
		sessions.GET("/:id/events", h.Editor.Events)
		sessions.PATCH("/:id/fields", h.Editor.UpdateFields)
		sessions.PUT("/:id/field", h.Editor.UpdateField)
		sessions.PUT("/:id/sender-profile", h.Editor.SelectSenderProfile)
		sessions.PUT("/:id/bank-account", h.Editor.SelectBankAccount)
		sessions.PUT("/:id/customer", h.Editor.SelectCustomer)
		sessions.POST("/:id/items", h.Editor.AddItem)
		sessions.PATCH("/:id/items/:itemId", h.Editor.UpdateItem)
		sessions.DELETE("/:id/items/:itemId", h.Editor.DeleteItem)
		sessions.POST("/:id/items/:itemId/duplicate", h.Editor.DuplicateItem)
		sessions.POST("/:id/reorder", h.Editor.ReorderItems)
		sessions.POST("/:id/remove-invalid", h.Editor.RemoveInvalidItems)
		sessions.POST("/:id/refresh", h.Editor.Refresh)
		// a retried save replays the first response instead of numbering twice
		sessions.POST("/:id/save", idempotent, h.Editor.Save)
	}
}

func registerAdminRoutes(protected *gin.RouterGroup, h *Handlers) {
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole("admin", "super-admin"))
	{
		admin.POST("/invoices/mark-overdue", h.Invoice.MarkOverdue)
	}
}
