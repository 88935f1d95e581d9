package admin

import (
	"strings"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// UpdateUserStatusRequest 更新顾客状态请求
type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetAdminUsers 获取顾客列表
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, pageSize := readPagination(c)
	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	users, total, err := h.UserAdminService.List(repository.UserListFilter{
		Paging:      repository.Paging{Page: page, PageSize: pageSize},
		Keyword:     c.Query("keyword"),
		Status:      strings.ToLower(strings.TrimSpace(c.Query("status"))),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondWithMappedError(c, err, userAdminErrorRules, response.CodeInternal, "error.user_fetch_failed")
		return
	}
	response.SuccessWithPage(c, users, buildPagination(page, pageSize, total))
}

// GetAdminUser 获取顾客详情
func (h *Handler) GetAdminUser(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		return
	}
	detail, err := h.UserAdminService.Detail(id)
	if err != nil {
		respondWithMappedError(c, err, userAdminErrorRules, response.CodeInternal, "error.user_fetch_failed")
		return
	}
	response.Success(c, detail)
}

// UpdateAdminUserStatus 启用/禁用顾客
func (h *Handler) UpdateAdminUserStatus(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		return
	}
	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	user, err := h.UserAdminService.SetStatus(id, req.Status)
	if err != nil {
		respondWithMappedError(c, err, userAdminErrorRules, response.CodeInternal, "error.user_update_failed")
		return
	}
	requestLog(c).Infow("admin_user_status_updated", "user_id", user.ID, "status", user.Status)
	response.Success(c, user)
}

// ====================  评价管理  ====================

// UpdateReviewVisibilityRequest 评价显示状态请求
type UpdateReviewVisibilityRequest struct {
	IsVisible *bool `json:"is_visible" binding:"required"`
}

// GetAdminReviews 获取评价列表
func (h *Handler) GetAdminReviews(c *gin.Context) {
	page, pageSize := readPagination(c)
	productID, err := parseQueryUint(c, "product_id")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	userID, err := parseQueryUint(c, "user_id")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	rating, err := parseQueryUint(c, "rating")
	if err != nil || rating > 5 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	isVisible, err := parseQueryBool(c, "is_visible")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	reviews, total, err := h.ReviewService.ListAdmin(repository.ReviewListFilter{
		Paging:    repository.Paging{Page: page, PageSize: pageSize},
		ProductID: productID,
		UserID:    userID,
		Rating:    int(rating),
		IsVisible: isVisible,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.review_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, reviews, buildPagination(page, pageSize, total))
}

// UpdateReviewVisibility 显示/隐藏评价
func (h *Handler) UpdateReviewVisibility(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		return
	}
	var req UpdateReviewVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	review, err := h.ReviewService.SetVisible(id, *req.IsVisible)
	if err != nil {
		respondWithMappedError(c, err, reviewAdminErrorRules, response.CodeInternal, "error.review_update_failed")
		return
	}
	response.Success(c, review)
}

// DeleteReview 删除评价
func (h *Handler) DeleteReview(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		return
	}
	if err := h.ReviewService.Delete(id); err != nil {
		respondWithMappedError(c, err, reviewAdminErrorRules, response.CodeInternal, "error.review_delete_failed")
		return
	}
	response.Success(c, nil)
}
