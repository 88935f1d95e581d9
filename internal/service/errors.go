package service

import "errors"

// 通用错误
var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrQueueUnavailable      = errors.New("queue unavailable")
	ErrSlugExists            = errors.New("slug already exists")
	ErrSettingInvalid        = errors.New("setting invalid")
	ErrDashboardRangeInvalid = errors.New("dashboard range invalid")
	ErrReportTypeInvalid     = errors.New("report type invalid")
	ErrExportFormatInvalid   = errors.New("export format invalid")
)

// 账号与认证错误
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidEmail         = errors.New("invalid email")
	ErrEmailExists          = errors.New("email already exists")
	ErrWeakPassword         = errors.New("weak password")
	ErrInvalidPassword      = errors.New("invalid password")
	ErrUserDisabled         = errors.New("user disabled")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserStatusInvalid    = errors.New("user status invalid")
	ErrAdminNotFound        = errors.New("admin not found")
	ErrAdminExists          = errors.New("admin already exists")
	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")
)

// 商品与目录错误
var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductPriceInvalid = errors.New("product price invalid")
	ErrProductStockInvalid = errors.New("product stock invalid")
	ErrProductNotAvailable = errors.New("product not available")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryInUse       = errors.New("category in use")
	ErrInvalidBanner       = errors.New("invalid banner")
	ErrBannerNotFound      = errors.New("banner not found")
)

// 购物车与订单错误
var (
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrCartItemNotFound      = errors.New("cart item not found")
	ErrCartEmpty             = errors.New("cart empty")
	ErrStockInsufficient     = errors.New("stock insufficient")
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderStatusInvalid    = errors.New("order status invalid")
	ErrOrderCancelNotAllowed = errors.New("order cancel not allowed")
)

// 优惠券错误（按校验顺序排列）
var (
	ErrCouponNotFound         = errors.New("coupon not found")
	ErrCouponInactive         = errors.New("coupon inactive")
	ErrCouponExpired          = errors.New("coupon expired")
	ErrCouponLimitReached     = errors.New("coupon usage limit reached")
	ErrCouponNotEligible      = errors.New("coupon not eligible for user")
	ErrCouponProductMismatch  = errors.New("coupon not applicable to products")
	ErrCouponCategoryMismatch = errors.New("coupon not applicable to categories")
	ErrCouponBelowMinimum     = errors.New("coupon minimum purchase not met")
	ErrCouponAlreadyUsed      = errors.New("coupon already used")
	ErrCouponDuplicateCode    = errors.New("coupon code already exists")
	ErrCouponInvalid          = errors.New("coupon invalid")
	ErrCouponPercentInvalid   = errors.New("coupon percent out of range")
)

// 评价错误
var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewExists        = errors.New("review already exists")
	ErrReviewRatingInvalid = errors.New("review rating invalid")
)

// 上传错误
var (
	ErrUploadInvalidType  = errors.New("upload file type invalid")
	ErrUploadTooLarge     = errors.New("upload file too large")
	ErrUploadInvalidScene = errors.New("upload scene invalid")
)
