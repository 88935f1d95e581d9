package public

import (
	"strings"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CouponCheckRequest 优惠券校验/试算请求
type CouponCheckRequest struct {
	Code        string        `json:"code" binding:"required"`
	ProductIDs  []uint        `json:"product_ids"`
	CategoryIDs []uint        `json:"category_ids"`
	TotalAmount *models.Money `json:"total_amount"`
}

func (r CouponCheckRequest) toQuery(userID uint) service.CouponQuery {
	return service.CouponQuery{
		Code:        r.Code,
		UserID:      userID,
		ProductIDs:  r.ProductIDs,
		CategoryIDs: r.CategoryIDs,
		TotalAmount: r.TotalAmount,
	}
}

// ValidateCoupon 校验优惠券（不检查是否已使用）
func (h *Handler) ValidateCoupon(c *gin.Context) {
	var req CouponCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.CouponService.ValidateCoupon(req.toQuery(optionalUserID(c)))
	if err != nil {
		respondWithMappedError(c, err, couponErrorRules, response.CodeInternal, "error.coupon_validate_failed")
		return
	}
	response.Success(c, result)
}

// ApplyCoupon 试算优惠金额；登录用户额外检查是否已使用
func (h *Handler) ApplyCoupon(c *gin.Context) {
	var req CouponCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if req.TotalAmount == nil {
		respondError(c, response.CodeBadRequest, "error.coupon_total_required", nil)
		return
	}
	userID := optionalUserID(c)
	result, err := h.CouponService.ApplyCoupon(req.toQuery(userID), *req.TotalAmount)
	if err != nil {
		requestLog(c).Debugw("coupon_apply_rejected", "code", req.Code, "user_id", userID, "error", err)
		respondWithMappedError(c, err, couponErrorRules, response.CodeInternal, "error.coupon_apply_failed")
		return
	}
	response.Success(c, result)
}

// GetCouponUsage 查询当前用户对某张券的使用情况
func (h *Handler) GetCouponUsage(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	status, err := h.CouponService.CheckUserCouponUsage(uid, code)
	if err != nil {
		respondWithMappedError(c, err, couponErrorRules, response.CodeInternal, "error.coupon_usage_fetch_failed")
		return
	}
	response.Success(c, status)
}
