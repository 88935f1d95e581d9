package admin

import (
	"github.com/storefront-next/internal/authz"
	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

type mappedHandlerError = handlershared.ErrorRule

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	handlershared.RespondMapped(c, err, rules, fallbackCode, fallbackKey)
}

var catalogErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidInput, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: service.ErrSlugExists, Code: response.CodeConflict, Key: "error.slug_exists"},
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
	{Target: service.ErrProductPriceInvalid, Code: response.CodeBadRequest, Key: "error.product_price_invalid"},
	{Target: service.ErrProductStockInvalid, Code: response.CodeBadRequest, Key: "error.product_stock_invalid"},
	{Target: service.ErrCategoryNotFound, Code: response.CodeNotFound, Key: "error.category_not_found"},
	{Target: service.ErrCategoryInUse, Code: response.CodeConflict, Key: "error.category_in_use"},
}

var couponAdminErrorRules = []mappedHandlerError{
	{Target: service.ErrCouponNotFound, Code: response.CodeNotFound, Key: "error.coupon_not_found"},
	{Target: service.ErrCouponDuplicateCode, Code: response.CodeConflict, Key: "error.coupon_duplicate_code"},
	{Target: service.ErrCouponPercentInvalid, Code: response.CodeBadRequest, Key: "error.coupon_percent_invalid"},
	{Target: service.ErrCouponInvalid, Code: response.CodeBadRequest, Key: "error.coupon_invalid"},
	{Target: service.ErrInvalidInput, Code: response.CodeBadRequest, Key: "error.bad_request"},
}

var bannerErrorRules = []mappedHandlerError{
	{Target: service.ErrBannerNotFound, Code: response.CodeNotFound, Key: "error.banner_not_found"},
	{Target: service.ErrInvalidBanner, Code: response.CodeBadRequest, Key: "error.banner_invalid"},
	{Target: service.ErrCouponNotFound, Code: response.CodeBadRequest, Key: "error.coupon_not_found"},
}

var orderAdminErrorRules = []mappedHandlerError{
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrOrderStatusInvalid, Code: response.CodeBadRequest, Key: "error.order_status_invalid"},
	{Target: service.ErrOrderCancelNotAllowed, Code: response.CodeBadRequest, Key: "error.order_cancel_not_allowed"},
}

var reviewAdminErrorRules = []mappedHandlerError{
	{Target: service.ErrReviewNotFound, Code: response.CodeNotFound, Key: "error.review_not_found"},
}

var userAdminErrorRules = []mappedHandlerError{
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	{Target: service.ErrUserStatusInvalid, Code: response.CodeBadRequest, Key: "error.user_status_invalid"},
}

var reportErrorRules = []mappedHandlerError{
	{Target: service.ErrDashboardRangeInvalid, Code: response.CodeBadRequest, Key: "error.report_range_invalid"},
	{Target: service.ErrReportTypeInvalid, Code: response.CodeBadRequest, Key: "error.report_type_invalid"},
	{Target: service.ErrExportFormatInvalid, Code: response.CodeBadRequest, Key: "error.export_format_invalid"},
}

var adminAccountErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.admin_login_invalid"},
	{Target: service.ErrInvalidPassword, Code: response.CodeBadRequest, Key: "error.password_old_invalid"},
	{Target: service.ErrAdminNotFound, Code: response.CodeNotFound, Key: "error.admin_not_found"},
	{Target: service.ErrAdminExists, Code: response.CodeConflict, Key: "error.admin_exists"},
	{Target: service.ErrInvalidInput, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: authz.ErrUnknownRole, Code: response.CodeBadRequest, Key: "error.role_unknown"},
}

var uploadErrorRules = []mappedHandlerError{
	{Target: service.ErrUploadInvalidType, Code: response.CodeBadRequest, Key: "error.upload_type_invalid"},
	{Target: service.ErrUploadTooLarge, Code: response.CodeBadRequest, Key: "error.upload_too_large"},
	{Target: service.ErrUploadInvalidScene, Code: response.CodeBadRequest, Key: "error.upload_scene_invalid"},
}

var settingErrorRules = []mappedHandlerError{
	{Target: service.ErrSettingInvalid, Code: response.CodeBadRequest, Key: "error.setting_invalid"},
}
