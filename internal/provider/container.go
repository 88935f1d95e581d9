package provider

import (
	"fmt"

	"github.com/storefront-next/internal/authz"
	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"gorm.io/gorm"
)

// Container 进程内共享的仓库与服务，HTTP 与 worker 共用一份
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	AdminRepo       repository.AdminRepository
	UserRepo        repository.UserRepository
	OrderRepo       repository.OrderRepository
	ProductRepo     repository.ProductRepository
	CategoryRepo    repository.CategoryRepository
	CartRepo        repository.CartRepository
	CouponRepo      repository.CouponRepository
	CouponUsageRepo repository.CouponUsageRepository
	BannerRepo      repository.BannerRepository
	SettingRepo     repository.SettingRepository
	ReviewRepo      repository.ReviewRepository
	WishlistRepo    repository.WishlistRepository
	ReportRepo      repository.ReportRepository

	AuthzService       *authz.Service
	AuthService        *service.AuthService
	UserAuthService    *service.UserAuthService
	UserAdminService   *service.UserAdminService
	CaptchaService     *service.CaptchaService
	UploadService      *service.UploadService
	SettingService     *service.SettingService
	CategoryService    *service.CategoryService
	ProductService     *service.ProductService
	ReviewService      *service.ReviewService
	WishlistService    *service.WishlistService
	CouponService      *service.CouponService
	CouponAdminService *service.CouponAdminService
	CartService        *service.CartService
	OrderService       *service.OrderService
	BannerService      *service.BannerService
	ReportService      *service.ReportService
}

// NewContainer Redis 与队列连不上时降级运行，权限模型加载失败则返回错误
func NewContainer(cfg *config.Config, db *gorm.DB) (*Container, error) {
	if db == nil {
		return nil, fmt.Errorf("provider: database not initialized")
	}
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient = nil
	}

	c := &Container{Config: cfg, QueueClient: queueClient}
	c.wireRepositories(db)

	authzService, err := authz.NewService(db)
	if err != nil {
		return nil, fmt.Errorf("provider: init authz: %w", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		return nil, fmt.Errorf("provider: bootstrap roles: %w", err)
	}
	c.AuthzService = authzService
	c.wireServices()
	return c, nil
}

func (c *Container) wireRepositories(db *gorm.DB) {
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.CouponUsageRepo = repository.NewCouponUsageRepository(db)
	c.BannerRepo = repository.NewBannerRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
	c.ReviewRepo = repository.NewReviewRepository(db)
	c.WishlistRepo = repository.NewWishlistRepository(db)
	c.ReportRepo = repository.NewReportRepository(db)
}

// wireServices 顺序有依赖：设置与优惠券服务先于购物车和订单
func (c *Container) wireServices() {
	cfg := c.Config
	c.SettingService = service.NewSettingService(c.SettingRepo)
	c.CaptchaService = service.NewCaptchaService(cfg.Captcha)
	c.AuthService = service.NewAuthService(cfg, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(cfg, c.UserRepo)
	c.UserAdminService = service.NewUserAdminService(c.UserRepo, c.OrderRepo)
	c.UploadService = service.NewUploadService(cfg.Upload, ".")

	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.CategoryRepo, c.ReviewRepo)
	c.ReviewService = service.NewReviewService(c.ReviewRepo, c.ProductRepo, c.OrderRepo)
	c.WishlistService = service.NewWishlistService(c.WishlistRepo, c.ProductRepo)
	c.BannerService = service.NewBannerService(c.BannerRepo, c.CouponRepo)

	c.CouponService = service.NewCouponService(c.CouponRepo, c.CouponUsageRepo)
	c.CouponAdminService = service.NewCouponAdminService(c.CouponRepo, c.CouponUsageRepo, c.QueueClient)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, c.CouponService)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ProductRepo, c.CartRepo, c.CouponService,
		c.SettingService, c.QueueClient, cfg.Order.PaymentExpireMinutes)
	c.ReportService = service.NewReportService(c.ReportRepo, c.SettingService)
}
