package router

import (
	"time"

	"modapos/internal/cart"
	"modapos/internal/config"
	"modapos/internal/handler"
	"modapos/internal/infra"
	"modapos/internal/middleware"
	"modapos/internal/model"
	"modapos/internal/repository"
	"modapos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the process-wide collaborators built by the composition root.
// Jobs is shared with the worker pool; the limiters' Cleanup loops are owned
// by the caller.
type Deps struct {
	Config       *config.Config
	DB           *gorm.DB
	Redis        *redis.Client
	Location     *time.Location
	Jobs         service.JobQueue
	APILimiter   *middleware.RateLimiter
	LoginLimiter *middleware.RateLimiter
	Breakers     []*infra.CircuitBreaker
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(d Deps) *gin.Engine {
	cfg := d.Config
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	if d.APILimiter != nil {
		r.Use(d.APILimiter.Middleware())
	}

	// ── Infrastructure ───────────────────────────────────────────────────────
	cache := infra.NewCache(d.Redis, cfg.CacheTTL())
	cartStore := cart.NewRedisStore(d.Redis, cfg.CartTTL())

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(d.DB)
	productRepo := repository.NewProductRepository(d.DB)
	movementRepo := repository.NewStockMovementRepository(d.DB)
	customerRepo := repository.NewCustomerRepository(d.DB)
	orderRepo := repository.NewOrderRepository(d.DB)
	conditionalRepo := repository.NewConditionalRepository(d.DB)
	receiptRepo := repository.NewReceiptRepository(d.DB)
	reportRepo := repository.NewReportRepository(d.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo, movementRepo, cache)
	customerSvc := service.NewCustomerService(customerRepo, orderRepo, conditionalRepo, cache)
	orderSvc := service.NewOrderService(orderRepo, productRepo, customerRepo, movementRepo, d.Jobs, cache, d.Location)
	conditionalSvc := service.NewConditionalService(conditionalRepo, orderRepo, productRepo, movementRepo, d.Jobs, cache)
	checkoutSvc := service.NewCheckoutService(productRepo, customerRepo, orderRepo, conditionalRepo, movementRepo, d.Jobs, cache, d.Location)
	cartSvc := service.NewCartService(cartStore, productRepo, checkoutSvc)
	dashboardSvc := service.NewDashboardService(reportRepo, productRepo, cache, d.Location)
	receiptSvc := service.NewReceiptService(receiptRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	ordersH := handler.NewOrdersHandler(orderSvc, receiptSvc)
	conditionalsH := handler.NewConditionalsHandler(conditionalSvc, receiptSvc)
	pdvH := handler.NewPDVHandler(checkoutSvc, cartSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)
	receiptsH := handler.NewReceiptsHandler(receiptSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.Redis, d.Breakers...))

	auth := r.Group("/v1/auth")
	{
		if d.LoginLimiter != nil {
			auth.POST("/login", d.LoginLimiter.Middleware(), authH.Login)
		} else {
			auth.POST("/login", authH.Login)
		}
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes. Every authenticated role can sell; catalog writes
	// and stock corrections need a manager.
	staff := middleware.RequireRole(model.RoleSeller, model.RoleManager, model.RoleAdmin)
	managers := middleware.RequireRole(model.RoleManager, model.RoleAdmin)
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		products := v1.Group("/products")
		{
			products.GET("", staff, productsH.List)
			products.GET("/alerts", staff, productsH.Alerts)
			products.GET("/:id", staff, productsH.Get)
			products.GET("/:id/movements", managers, productsH.Movements)
			products.POST("", managers, productsH.Create)
			products.PUT("/:id", managers, productsH.Update)
			products.DELETE("/:id", managers, productsH.Deactivate)
			products.PATCH("/:id/reactivate", managers, productsH.Reactivate)
			products.PATCH("/:id/stock", managers, productsH.AdjustStock)
		}

		customers := v1.Group("/customers", staff)
		{
			customers.GET("", customersH.List)
			customers.POST("", customersH.Create)
			customers.GET("/:id", customersH.Get)
			customers.PUT("/:id", customersH.Update)
			customers.GET("/:id/history", customersH.History)
			customers.DELETE("/:id", managers, customersH.Delete)
		}

		orders := v1.Group("/orders", staff)
		{
			orders.GET("", ordersH.List)
			orders.POST("", ordersH.Create)
			orders.GET("/:id", ordersH.Get)
			orders.GET("/:id/receipt", ordersH.Receipt)
			orders.PATCH("/:id/status", ordersH.UpdateStatus)
		}

		conditionals := v1.Group("/conditionals", staff)
		{
			conditionals.GET("", conditionalsH.List)
			conditionals.GET("/:id", conditionalsH.Get)
			conditionals.GET("/:id/receipt", conditionalsH.Receipt)
			conditionals.POST("/:id/process", conditionalsH.Process)
		}

		v1.POST("/pdv/checkout", staff, pdvH.Checkout)
		carts := v1.Group("/cart", staff)
		{
			carts.GET("", pdvH.GetCart)
			carts.POST("/actions", pdvH.CartAction)
			carts.DELETE("", pdvH.ClearCart)
			carts.POST("/checkout", pdvH.CheckoutCart)
		}

		v1.GET("/dashboard", managers, dashboardH.Get)

		receipts := v1.Group("/receipts", staff)
		{
			receipts.GET("/:id", receiptsH.Get)
			receipts.GET("/:id/pdf", receiptsH.PDF)
		}

		users := v1.Group("/users", middleware.RequireRole(model.RoleAdmin))
		{
			users.POST("", authH.CreateUser)
			users.GET("", authH.ListUsers)
		}

		v1.GET("/admin/dead-letters", middleware.RequireRole(model.RoleAdmin), handler.DeadLetters(d.Redis))
	}

	return r
}
