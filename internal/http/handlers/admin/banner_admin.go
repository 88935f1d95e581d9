package admin

import (
	"strings"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// BannerUpsertRequest Banner 创建/更新请求
type BannerUpsertRequest struct {
	Name         string                 `json:"name" binding:"required"`
	Position     string                 `json:"position"`
	TitleJSON    map[string]interface{} `json:"title"`
	SubtitleJSON map[string]interface{} `json:"subtitle"`
	Image        string                 `json:"image" binding:"required"`
	MobileImage  string                 `json:"mobile_image"`
	LinkType     string                 `json:"link_type"`
	LinkValue    string                 `json:"link_value"`
	CouponCode   string                 `json:"coupon_code"`
	OpenInNewTab *bool                  `json:"open_in_new_tab"`
	IsActive     *bool                  `json:"is_active"`
	StartAt      string                 `json:"start_at"`
	EndAt        string                 `json:"end_at"`
	SortOrder    int                    `json:"sort_order"`
}

func bindBannerInput(c *gin.Context) (service.BannerInput, bool) {
	var req BannerUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return service.BannerInput{}, false
	}
	startAt, err := parseTimeNullable(req.StartAt)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return service.BannerInput{}, false
	}
	endAt, err := parseTimeNullable(req.EndAt)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return service.BannerInput{}, false
	}
	return service.BannerInput{
		Name:         req.Name,
		Position:     req.Position,
		TitleJSON:    req.TitleJSON,
		SubtitleJSON: req.SubtitleJSON,
		Image:        req.Image,
		MobileImage:  req.MobileImage,
		LinkType:     req.LinkType,
		LinkValue:    req.LinkValue,
		CouponCode:   req.CouponCode,
		OpenInNewTab: req.OpenInNewTab,
		IsActive:     req.IsActive,
		StartAt:      startAt,
		EndAt:        endAt,
		SortOrder:    req.SortOrder,
	}, true
}

// GetAdminBanners 获取后台 Banner 列表
func (h *Handler) GetAdminBanners(c *gin.Context) {
	page, pageSize := readPagination(c)
	isActive, err := parseQueryBool(c, "is_active")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	banners, total, err := h.BannerService.ListAdmin(strings.TrimSpace(c.Query("position")), strings.TrimSpace(c.Query("search")), isActive, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.banner_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, banners, buildPagination(page, pageSize, total))
}

// GetAdminBanner 获取后台 Banner 详情
func (h *Handler) GetAdminBanner(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		return
	}
	banner, err := h.BannerService.GetByID(id)
	if err != nil {
		respondWithMappedError(c, err, bannerErrorRules, response.CodeInternal, "error.banner_fetch_failed")
		return
	}
	response.Success(c, banner)
}

// CreateBanner 创建 Banner
func (h *Handler) CreateBanner(c *gin.Context) {
	input, ok := bindBannerInput(c)
	if !ok {
		return
	}
	banner, err := h.BannerService.Create(input)
	if err != nil {
		respondWithMappedError(c, err, bannerErrorRules, response.CodeInternal, "error.banner_create_failed")
		return
	}
	response.Success(c, banner)
}

// UpdateBanner 更新 Banner
func (h *Handler) UpdateBanner(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		return
	}
	input, ok := bindBannerInput(c)
	if !ok {
		return
	}
	banner, err := h.BannerService.Update(id, input)
	if err != nil {
		respondWithMappedError(c, err, bannerErrorRules, response.CodeInternal, "error.banner_update_failed")
		return
	}
	response.Success(c, banner)
}

// DeleteBanner 删除 Banner
func (h *Handler) DeleteBanner(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		return
	}
	if err := h.BannerService.Delete(id); err != nil {
		respondWithMappedError(c, err, bannerErrorRules, response.CodeInternal, "error.banner_delete_failed")
		return
	}
	response.Success(c, nil)
}
