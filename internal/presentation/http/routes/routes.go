package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/ecs-receipts/internal/config"
	"github.com/sangkips/ecs-receipts/internal/domain/entity"
	domainRepo "github.com/sangkips/ecs-receipts/internal/domain/repository"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/handler"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/middleware"
	"github.com/sangkips/ecs-receipts/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Receipt  *handler.ReceiptHandler
	Stats    *handler.StatsHandler
	Customer *handler.CustomerHandler
	Catalog  *handler.CatalogHandler
	Wizard   *handler.WizardHandler
	Printer  *handler.PrinterHandler
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
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// The limiter runs after auth on protected routes so it keys on the user.
	limit := func(c *gin.Context) { c.Next() }
	if deps.RateLimiter != nil {
		limit = deps.RateLimiter.Middleware()
	}

	api := router.Group("/api")
	{
		// Public routes (no authentication required)
		api.POST("/auth/login", limit, h.Auth.Login)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager), limit)

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/users/me", h.Auth.Me)
	protected.PUT("/users/me/password", h.Auth.ChangePassword)

	registerUserRoutes(protected, h)
	registerReceiptRoutes(protected, h, deps)
	registerStatsRoutes(protected, h)
	registerCustomerRoutes(protected, h)
	registerCatalogRoutes(protected, h)
	registerWizardRoutes(protected, h)
	registerPrinterRoutes(protected, h)
}

func registerUserRoutes(protected *gin.RouterGroup, h *Handlers) {
	users := protected.Group("/users")
	users.Use(middleware.RequirePermission(entity.PermManageUsers))
	{
		users.GET("", h.User.List)
		users.POST("", h.User.Create)
		users.GET("/:id", h.User.Get)
		users.PATCH("/:id", h.User.Update)
		users.PATCH("/:id/password", h.User.ResetPassword)
		users.DELETE("/:id", h.User.Delete)
	}
}

func registerReceiptRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	receipts := protected.Group("/receipts")
	{
		create := middleware.RequirePermission(entity.PermCreateReceipts)
		view := middleware.RequirePermission(entity.PermViewReceipts)
		manage := middleware.RequirePermission(entity.PermManageReceipts)

		receipts.POST("", create, middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
			TTL:  deps.Cfg.Jobs.IdempotencyTTL,
		}), h.Receipt.Create)
		receipts.GET("", view, h.Receipt.List)
		receipts.GET("/export", view, h.Receipt.Export)
		receipts.GET("/emp/:code", view, h.Receipt.ByEmployee)
		receipts.GET("/:id", view, h.Receipt.Get)
		receipts.GET("/:id/pdf", view, h.Receipt.PDF)
		receipts.POST("/:id/print", view, h.Printer.PrintReceipt)
		receipts.PATCH("/:id", create, h.Receipt.Update)
		receipts.DELETE("/:id", manage, h.Receipt.Delete)
		receipts.POST("/:id/restore", manage, h.Receipt.Restore)
		receipts.PATCH("/:id/status", manage, h.Receipt.SetStatus)
	}
}

func registerStatsRoutes(protected *gin.RouterGroup, h *Handlers) {
	stats := protected.Group("/stats")
	stats.Use(middleware.RequirePermission(entity.PermViewStats))
	{
		stats.GET("/summary", h.Stats.Summary)
		stats.GET("/by-category", h.Stats.ByCategory)
		stats.GET("/by-day", h.Stats.ByDay)
	}
}

func registerCustomerRoutes(protected *gin.RouterGroup, h *Handlers) {
	customers := protected.Group("/customers")
	{
		customers.GET("", h.Customer.Search)
		customers.POST("", middleware.RequirePermission(entity.PermManageInvestors), h.Customer.Create)
	}
}

func registerCatalogRoutes(protected *gin.RouterGroup, h *Handlers) {
	catalog := protected.Group("/catalog")
	{
		catalog.GET("/employees/:code", h.Catalog.Employee)
		catalog.GET("/categories", h.Catalog.Categories)
		catalog.GET("/issuers", h.Catalog.Issuers)
		catalog.GET("/schemes", h.Catalog.Schemes)
	}
}

func registerWizardRoutes(protected *gin.RouterGroup, h *Handlers) {
	w := protected.Group("/wizard")
	w.Use(middleware.RequirePermission(entity.PermCreateReceipts))
	{
		w.GET("", h.Wizard.State)
		w.DELETE("", h.Wizard.Abandon)
		w.PUT("/employee", h.Wizard.SetEmployee)
		w.GET("/investors", h.Wizard.SearchInvestors)
		w.PUT("/investor", h.Wizard.SelectInvestor)
		w.PATCH("/product", h.Wizard.UpdateProduct)
		w.GET("/options", h.Wizard.Options)
		w.POST("/continue", h.Wizard.Continue)
		w.POST("/back", h.Wizard.Back)
		w.POST("/save", h.Wizard.Save)
		w.GET("/preview", h.Wizard.Preview)
		w.GET("/preview.pdf", h.Wizard.PreviewPDF)
		w.GET("/preview.txt", h.Wizard.PreviewText)
	}
}

func registerPrinterRoutes(protected *gin.RouterGroup, h *Handlers) {
	printer := protected.Group("/printer")
	printer.Use(middleware.RequirePermission(entity.PermManageReceipts))
	{
		printer.GET("/status", h.Printer.GetStatus)
		printer.POST("/test", h.Printer.TestPrint)
	}
}
