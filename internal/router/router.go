package router

import (
	"net/http"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	adminhandlers "github.com/storefront-next/internal/http/handlers/admin"
	publichandlers "github.com/storefront-next/internal/http/handlers/public"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// routeLimits 各入口共用同一个限流器，按场景区分 key 前缀
type routeLimits struct {
	limiter    RateLimiter
	login      RateLimitRule
	adminLogin RateLimitRule
	coupon     RateLimitRule
}

func newRouteLimits(cfg *config.Config) routeLimits {
	prefix := cache.Prefix()
	return routeLimits{
		limiter:    NewRateLimiter(cache.Client()),
		login:      buildRateLimitRule(prefix, "login", cfg.Security.LoginRateLimit, "error.login_too_many"),
		adminLogin: buildRateLimitRule(prefix, "admin_login", cfg.Security.LoginRateLimit, "error.login_too_many"),
		coupon:     buildRateLimitRule(prefix, "coupon", cfg.Security.CouponRateLimit, "error.coupon_too_many"),
	}
}

func (l routeLimits) guard(rule RateLimitRule, key RateLimitKeyFunc) gin.HandlerFunc {
	return RateLimitMiddleware(l.limiter, rule, key)
}

// SetupRouter 注册全部 HTTP 路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggerMiddleware(log), CORSMiddleware(cfg.CORS))
	r.Static("/uploads", "./uploads")

	limits := newRouteLimits(cfg)
	apiV1 := r.Group("/api/v1")
	registerStorefrontRoutes(apiV1, cfg, c, limits)
	registerAdminRoutes(r, apiV1.Group("/admin"), cfg, c, limits)

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok", "cache": cache.Client() != nil})
	})
	return r
}

func registerStorefrontRoutes(api *gin.RouterGroup, cfg *config.Config, c *provider.Container, limits routeLimits) {
	h := publichandlers.New(c)

	catalog := api.Group("/public")
	catalog.GET("/config", h.GetConfig)
	catalog.GET("/categories", h.GetCategories)
	catalog.GET("/products", h.GetProducts)
	catalog.GET("/products/:slug", h.GetProductBySlug)
	catalog.GET("/products/:slug/reviews", h.GetProductReviews)
	catalog.GET("/banners", h.GetBanners)
	catalog.GET("/captcha/image", h.GetImageCaptcha)

	// 游客也可校验，携带 Token 时按用户校验
	coupons := api.Group("/coupons", OptionalUserJWTMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
	coupons.POST("/validate", limits.guard(limits.coupon, KeyByUserOrIP), h.ValidateCoupon)
	coupons.POST("/apply", limits.guard(limits.coupon, KeyByUserOrIP), h.ApplyCoupon)

	auth := api.Group("/auth")
	auth.POST("/register", limits.guard(limits.login, KeyByIP), h.UserRegister)
	auth.POST("/login", limits.guard(limits.login, KeyByIPAndJSONField("email")), h.UserLogin)

	me := api.Group("", UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
	me.GET("/me", h.GetCurrentUser)
	me.PUT("/me/profile", h.UpdateUserProfile)
	me.PUT("/me/password", h.ChangeUserPassword)
	me.GET("/me/coupons/:code/usage", h.GetCouponUsage)

	me.GET("/cart", h.GetCart)
	me.POST("/cart/items", h.UpsertCartItem)
	me.DELETE("/cart/items/:product_id", h.RemoveCartItem)
	me.DELETE("/cart", h.ClearCart)

	me.POST("/orders/preview", h.PreviewOrder)
	me.POST("/orders", h.CreateOrder)
	me.GET("/orders", h.ListOrders)
	me.GET("/orders/:id", h.GetOrder)
	me.GET("/orders/by-order-no/:order_no", h.GetOrderByOrderNo)
	me.POST("/orders/:id/cancel", h.CancelOrder)

	me.POST("/products/:id/reviews", h.CreateReview)
	me.GET("/wishlist", h.GetWishlist)
	me.POST("/wishlist/:product_id", h.AddWishlistItem)
	me.DELETE("/wishlist/:product_id", h.RemoveWishlistItem)
}

func registerAdminRoutes(engine *gin.Engine, admin *gin.RouterGroup, cfg *config.Config, c *provider.Container, limits routeLimits) {
	h := adminhandlers.New(c)
	admin.POST("/login", limits.guard(limits.adminLogin, KeyByIP), h.AdminLogin)

	g := admin.Group("", JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
	g.GET("/me", h.GetAdminMe)
	g.PUT("/password", h.UpdateAdminPassword)

	g.GET("/reports/overview", h.GetReportOverview)
	g.GET("/reports/:kind", h.GetReport)

	g.GET("/products", h.GetAdminProducts)
	g.GET("/products/:id", h.GetAdminProduct)
	g.POST("/products", h.CreateProduct)
	g.PUT("/products/:id", h.UpdateProduct)
	g.DELETE("/products/:id", h.DeleteProduct)
	g.GET("/categories", h.GetAdminCategories)
	g.POST("/categories", h.CreateCategory)
	g.PUT("/categories/:id", h.UpdateCategory)
	g.DELETE("/categories/:id", h.DeleteCategory)

	g.GET("/reviews", h.GetAdminReviews)
	g.PATCH("/reviews/:id/visibility", h.UpdateReviewVisibility)
	g.DELETE("/reviews/:id", h.DeleteReview)

	g.GET("/coupons", h.GetAdminCoupons)
	g.POST("/coupons", h.CreateCoupon)
	g.GET("/coupons/:id", h.GetAdminCoupon)
	g.PUT("/coupons/:id", h.UpdateCoupon)
	g.DELETE("/coupons/:id", h.DeleteCoupon)
	g.GET("/coupons/:id/usages", h.GetCouponUsages)
	g.POST("/coupons/:id/usages/purge", h.PurgeCouponUsages)
	g.POST("/coupons/:id/reconcile", h.ReconcileCoupon)

	g.GET("/banners", h.GetAdminBanners)
	g.GET("/banners/:id", h.GetAdminBanner)
	g.POST("/banners", h.CreateBanner)
	g.PUT("/banners/:id", h.UpdateBanner)
	g.DELETE("/banners/:id", h.DeleteBanner)

	g.GET("/orders", h.AdminListOrders)
	g.GET("/orders/:id", h.AdminGetOrder)
	g.PATCH("/orders/:id", h.AdminUpdateOrderStatus)

	g.GET("/users", h.GetAdminUsers)
	g.GET("/users/:id", h.GetAdminUser)
	g.PATCH("/users/:id/status", h.UpdateAdminUserStatus)

	g.GET("/settings", h.GetSettings)
	g.PUT("/settings", h.UpdateSettings)
	g.POST("/upload", h.UploadFile)

	g.GET("/authz/roles", h.ListAuthzRoles)
	g.GET("/authz/admins", h.ListAuthzAdmins)
	g.POST("/authz/admins", h.CreateAuthzAdmin)
	g.GET("/authz/admins/:id/roles", h.GetAuthzAdminRoles)
	g.PUT("/authz/admins/:id/roles", h.SetAuthzAdminRoles)
	// 路由表在请求时才读取，保证包含全部已注册接口
	g.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
		response.Success(ctx, permissionCatalog(engine.Routes()))
	})
}

func buildRateLimitRule(prefix, scene string, cfg config.RateLimitConfig, messageKey string) RateLimitRule {
	return RateLimitRule{
		Prefix:        prefix + ":rate:" + scene,
		WindowSeconds: cfg.WindowSeconds,
		MaxRequests:   cfg.MaxAttempts,
		BlockSeconds:  cfg.BlockSeconds,
		MessageKey:    messageKey,
	}
}
