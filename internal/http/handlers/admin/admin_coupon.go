package admin

import (
	"strings"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CouponRequest 创建/更新优惠券请求
type CouponRequest struct {
	Code                 string       `json:"code" binding:"required"`
	Type                 string       `json:"type" binding:"required"`
	Discount             models.Money `json:"discount"`
	MinPurchase          models.Money `json:"min_purchase"`
	MaxDiscount          models.Money `json:"max_discount"`
	ExpiresAt            string       `json:"expires_at"`
	UsageLimit           int          `json:"usage_limit"`
	ApplicableProducts   []uint       `json:"applicable_products"`
	ApplicableCategories []uint       `json:"applicable_categories"`
	EligibleUsers        []uint       `json:"eligible_users"`
	IsActive             *bool        `json:"is_active"`
	Description          string       `json:"description"`
}

func bindCouponInput(c *gin.Context) (service.CouponInput, bool) {
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return service.CouponInput{}, false
	}
	expiresAt, err := parseTimeNullable(req.ExpiresAt)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return service.CouponInput{}, false
	}
	return service.CouponInput{
		Code:                 req.Code,
		Type:                 req.Type,
		Discount:             req.Discount,
		MinPurchase:          req.MinPurchase,
		MaxDiscount:          req.MaxDiscount,
		ExpiresAt:            expiresAt,
		UsageLimit:           req.UsageLimit,
		ApplicableProducts:   req.ApplicableProducts,
		ApplicableCategories: req.ApplicableCategories,
		EligibleUsers:        req.EligibleUsers,
		IsActive:             req.IsActive,
		Description:          req.Description,
	}, true
}

// CreateCoupon 创建优惠券
func (h *Handler) CreateCoupon(c *gin.Context) {
	input, ok := bindCouponInput(c)
	if !ok {
		return
	}
	coupon, err := h.CouponAdminService.Create(input)
	if err != nil {
		respondWithMappedError(c, err, couponAdminErrorRules, response.CodeInternal, "error.coupon_create_failed")
		return
	}
	requestLog(c).Infow("admin_coupon_created", "coupon_id", coupon.ID, "code", coupon.Code)
	response.Success(c, coupon)
}

// UpdateCoupon 更新优惠券
func (h *Handler) UpdateCoupon(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		return
	}
	input, ok := bindCouponInput(c)
	if !ok {
		return
	}
	coupon, err := h.CouponAdminService.Update(id, input)
	if err != nil {
		respondWithMappedError(c, err, couponAdminErrorRules, response.CodeInternal, "error.coupon_update_failed")
		return
	}
	response.Success(c, coupon)
}

// GetAdminCoupon 获取优惠券详情
func (h *Handler) GetAdminCoupon(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		return
	}
	coupon, err := h.CouponAdminService.Get(id)
	if err != nil {
		respondWithMappedError(c, err, couponAdminErrorRules, response.CodeInternal, "error.coupon_fetch_failed")
		return
	}
	response.Success(c, coupon)
}

// DeleteCoupon 删除优惠券（连同使用记录）
func (h *Handler) DeleteCoupon(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		return
	}
	if err := h.CouponAdminService.Delete(id); err != nil {
		respondWithMappedError(c, err, couponAdminErrorRules, response.CodeInternal, "error.coupon_delete_failed")
		return
	}
	requestLog(c).Infow("admin_coupon_deleted", "coupon_id", id)
	response.Success(c, nil)
}

// GetAdminCoupons 获取优惠券列表
func (h *Handler) GetAdminCoupons(c *gin.Context) {
	page, pageSize := readPagination(c)
	isActive, err := parseQueryBool(c, "is_active")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	expired, err := parseQueryBool(c, "expired")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	productID, err := parseQueryUint(c, "product_id")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	coupons, total, err := h.CouponAdminService.List(repository.CouponListFilter{
		Code:      strings.TrimSpace(c.Query("code")),
		IsActive:  isActive,
		ProductID: productID,
		Expired:   expired,
		Paging:    repository.Paging{Page: page, PageSize: pageSize},
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.coupon_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, coupons, buildPagination(page, pageSize, total))
}

// GetCouponUsages 获取某张券的使用记录
func (h *Handler) GetCouponUsages(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		return
	}
	page, pageSize := readPagination(c)
	userID, err := parseQueryUint(c, "user_id")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	usages, total, err := h.CouponAdminService.ListUsages(repository.CouponUsageListFilter{
		Paging:   repository.Paging{Page: page, PageSize: pageSize},
		CouponID: id,
		UserID:   userID,
	})
	if err != nil {
		respondWithMappedError(c, err, couponAdminErrorRules, response.CodeInternal, "error.coupon_fetch_failed")
		return
	}
	response.SuccessWithPage(c, usages, buildPagination(page, pageSize, total))
}

// PurgeCouponUsages 清理某张券的使用记录
func (h *Handler) PurgeCouponUsages(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		return
	}
	deleted, err := h.CouponAdminService.PurgeUsages(id)
	if err != nil {
		respondWithMappedError(c, err, couponAdminErrorRules, response.CodeInternal, "error.coupon_purge_failed")
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}

// ReconcileCoupon 按使用记录校准已使用次数
func (h *Handler) ReconcileCoupon(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		return
	}
	result, err := h.CouponAdminService.Reconcile(id)
	if err != nil {
		respondWithMappedError(c, err, couponAdminErrorRules, response.CodeInternal, "error.coupon_reconcile_failed")
		return
	}
	response.Success(c, result)
}
