package public

import (
	"strings"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutRequest 结算请求（商品取自购物车）
type CheckoutRequest struct {
	CouponCode string `json:"coupon_code"`
	Remark     string `json:"remark"`
}

func (h *Handler) bindCheckout(c *gin.Context) (service.CheckoutInput, bool) {
	uid, ok := getUserID(c)
	if !ok {
		return service.CheckoutInput{}, false
	}
	var req CheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return service.CheckoutInput{}, false
		}
	}
	return service.CheckoutInput{
		UserID:     uid,
		CouponCode: req.CouponCode,
		Remark:     strings.TrimSpace(req.Remark),
		ClientIP:   c.ClientIP(),
	}, true
}

// PreviewOrder 订单金额预览
func (h *Handler) PreviewOrder(c *gin.Context) {
	input, ok := h.bindCheckout(c)
	if !ok {
		return
	}
	preview, err := h.OrderService.PreviewOrder(input)
	if err != nil {
		respondWithMappedError(c, err, orderErrorRules, response.CodeInternal, "error.order_preview_failed")
		return
	}
	response.Success(c, preview)
}

// CreateOrder 从购物车创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	input, ok := h.bindCheckout(c)
	if !ok {
		return
	}
	order, err := h.OrderService.CreateOrder(input)
	if err != nil {
		if input.CouponCode != "" {
			requestLog(c).Warnw("coupon_apply_failed", "user_id", input.UserID, "code", input.CouponCode, "error", err)
		}
		respondWithMappedError(c, err, orderErrorRules, response.CodeInternal, "error.order_create_failed")
		return
	}
	response.Success(c, order)
}

// ListOrders 获取当前用户订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := readPagination(c)
	orders, total, err := h.OrderService.ListOrdersByUser(repository.OrderListFilter{
		Paging:  repository.Paging{Page: page, PageSize: pageSize},
		UserID:  uid,
		Status:  strings.TrimSpace(c.Query("status")),
		OrderNo: strings.TrimSpace(c.Query("order_no")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, orders, buildPagination(page, pageSize, total))
}

// GetOrder 获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parsePathUint(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrderByUser(orderID, uid)
	if err != nil {
		respondWithMappedError(c, err, orderErrorRules, response.CodeInternal, "error.order_fetch_failed")
		return
	}
	response.Success(c, order)
}

// GetOrderByOrderNo 按订单号获取订单详情
func (h *Handler) GetOrderByOrderNo(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrderByUserOrderNo(c.Param("order_no"), uid)
	if err != nil {
		respondWithMappedError(c, err, orderErrorRules, response.CodeInternal, "error.order_fetch_failed")
		return
	}
	response.Success(c, order)
}

// CancelOrder 取消待支付订单
func (h *Handler) CancelOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parsePathUint(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.CancelOrder(orderID, uid)
	if err != nil {
		respondWithMappedError(c, err, orderErrorRules, response.CodeInternal, "error.order_cancel_failed")
		return
	}
	response.Success(c, order)
}
