package public

import (
	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

type mappedHandlerError = handlershared.ErrorRule

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	handlershared.RespondMapped(c, err, rules, fallbackCode, fallbackKey)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	return handlershared.ConcatRules(groups...)
}

// couponErrorRules 优惠券校验失败，顺序与校验顺序一致
var couponErrorRules = []mappedHandlerError{
	{Target: service.ErrCouponNotFound, Code: response.CodeNotFound, Key: "error.coupon_not_found"},
	{Target: service.ErrCouponInactive, Code: response.CodeBadRequest, Key: "error.coupon_inactive"},
	{Target: service.ErrCouponExpired, Code: response.CodeBadRequest, Key: "error.coupon_expired"},
	{Target: service.ErrCouponLimitReached, Code: response.CodeBadRequest, Key: "error.coupon_limit_reached"},
	{Target: service.ErrCouponNotEligible, Code: response.CodeBadRequest, Key: "error.coupon_not_eligible"},
	{Target: service.ErrCouponProductMismatch, Code: response.CodeBadRequest, Key: "error.coupon_product_mismatch"},
	{Target: service.ErrCouponCategoryMismatch, Code: response.CodeBadRequest, Key: "error.coupon_category_mismatch"},
	{Target: service.ErrCouponBelowMinimum, Code: response.CodeBadRequest, Key: "error.coupon_below_minimum"},
	{Target: service.ErrCouponAlreadyUsed, Code: response.CodeConflict, Key: "error.coupon_already_used"},
	{Target: service.ErrCouponInvalid, Code: response.CodeBadRequest, Key: "error.coupon_invalid"},
	{Target: service.ErrInvalidInput, Code: response.CodeBadRequest, Key: "error.bad_request"},
}

var cartErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidInput, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: service.ErrInvalidQuantity, Code: response.CodeBadRequest, Key: "error.quantity_invalid"},
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
	{Target: service.ErrProductNotAvailable, Code: response.CodeBadRequest, Key: "error.product_not_available"},
	{Target: service.ErrStockInsufficient, Code: response.CodeBadRequest, Key: "error.stock_insufficient"},
	{Target: service.ErrCartItemNotFound, Code: response.CodeNotFound, Key: "error.cart_item_not_found"},
}

var orderErrorRules = concatMappedHandlerErrors(
	[]mappedHandlerError{
		{Target: service.ErrCartEmpty, Code: response.CodeBadRequest, Key: "error.cart_empty"},
		{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
		{Target: service.ErrOrderStatusInvalid, Code: response.CodeBadRequest, Key: "error.order_status_invalid"},
		{Target: service.ErrOrderCancelNotAllowed, Code: response.CodeBadRequest, Key: "error.order_cancel_not_allowed"},
	},
	cartErrorRules,
	couponErrorRules,
)

var userAuthErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
	{Target: service.ErrEmailExists, Code: response.CodeConflict, Key: "error.email_exists"},
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.login_invalid"},
	{Target: service.ErrInvalidPassword, Code: response.CodeBadRequest, Key: "error.password_old_invalid"},
	{Target: service.ErrUserDisabled, Code: response.CodeUnauthorized, Key: "error.user_disabled"},
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	{Target: service.ErrInvalidInput, Code: response.CodeBadRequest, Key: "error.bad_request"},
}

var reviewErrorRules = []mappedHandlerError{
	{Target: service.ErrReviewRatingInvalid, Code: response.CodeBadRequest, Key: "error.review_rating_invalid"},
	{Target: service.ErrReviewExists, Code: response.CodeConflict, Key: "error.review_exists"},
	{Target: service.ErrReviewNotFound, Code: response.CodeNotFound, Key: "error.review_not_found"},
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
}

var wishlistErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidInput, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: service.ErrProductNotAvailable, Code: response.CodeBadRequest, Key: "error.product_not_available"},
}
