package constants

// 订单状态常量
const (
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusPaid           = "paid"
	OrderStatusCompleted      = "completed"
	OrderStatusCanceled       = "canceled"
)

// 商品库存常量
const (
	StockUnlimited = -1
)

// 商品库存状态常量
const (
	ProductStockStatusUnlimited  = "unlimited"
	ProductStockStatusInStock    = "in_stock"
	ProductStockStatusLowStock   = "low_stock"
	ProductStockStatusOutOfStock = "out_of_stock"
)

// 优惠券类型常量
const (
	CouponTypePercentage = "PERCENTAGE"
	CouponTypeFlat       = "FLAT"
)

// 优惠券拒绝原因（购物车行软失败时回传给前端）
const (
	CouponRejectNotFound         = "coupon_not_found"
	CouponRejectInactive         = "coupon_inactive"
	CouponRejectExpired          = "coupon_expired"
	CouponRejectLimitReached     = "coupon_limit_reached"
	CouponRejectAlreadyUsed      = "coupon_already_used"
	CouponRejectNotEligible      = "coupon_not_eligible"
	CouponRejectProductMismatch  = "coupon_product_mismatch"
	CouponRejectCategoryMismatch = "coupon_category_mismatch"
	CouponRejectBelowMinimum     = "coupon_below_minimum"
	CouponUsageAvailable         = "coupon_available"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 评价常量
const (
	ReviewRatingMin = 1
	ReviewRatingMax = 5
)

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 验证码校验场景常量
const (
	CaptchaSceneLogin      = "login"
	CaptchaSceneAdminLogin = "admin_login"
	CaptchaSceneRegister   = "register"
)

// 队列常量
const (
	QueueDefault             = "default"
	QueueCritical            = "critical"
	TaskOrderTimeoutCancel   = "order:timeout_cancel"
	TaskCouponReconcileUsage = "coupon:reconcile_usage"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "sf"
)

// 设置键常量
const (
	SettingKeySiteConfig     = "site_config"
	SettingKeyTaxConfig      = "tax_config"
	SettingFieldSiteCurrency = "currency"
	SettingFieldTaxRate      = "rate_percent"
)

// 币种常量
const (
	SiteCurrencyDefault = "USD"
)

// 站点语言常量
const (
	LocaleZhCN = "zh-CN"
	LocaleZhTW = "zh-TW"
	LocaleEnUS = "en-US"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleZhCN, LocaleZhTW, LocaleEnUS}

// 导出格式常量
const (
	ExportFormatCSV  = "csv"
	ExportFormatJSON = "json"
)

// 报表维度常量
const (
	ReportSales     = "sales"
	ReportTax       = "tax"
	ReportCustomers = "customers"
	ReportProducts  = "products"
	ReportCoupons   = "coupons"
)

// Banner 投放位置：首页大图、购物车与结算页的促销条
const (
	BannerPositionHomeHero = "home_hero"
	BannerPositionCart     = "cart"
	BannerPositionCheckout = "checkout"
)

// BannerPositions 合法投放位置
var BannerPositions = []string{BannerPositionHomeHero, BannerPositionCart, BannerPositionCheckout}

// Banner 点击行为；coupon 表示把活动优惠码带入购物车
const (
	BannerLinkTypeNone     = "none"
	BannerLinkTypeInternal = "internal"
	BannerLinkTypeExternal = "external"
	BannerLinkTypeCoupon   = "coupon"
)

// 上传场景常量
const (
	UploadSceneProduct = "product"
	UploadSceneBanner  = "banner"
	UploadSceneCommon  = "common"
)
