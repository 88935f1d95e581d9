package public

import (
	"strconv"
	"strings"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetConfig 获取前台全局配置
func (h *Handler) GetConfig(c *gin.Context) {
	site, err := h.SettingService.GetPublic(c.Request.Context(), constants.SettingKeySiteConfig)
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}
	tax, err := h.SettingService.GetPublic(c.Request.Context(), constants.SettingKeyTaxConfig)
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}

	data := gin.H{
		"languages": constants.SupportedLocales,
		"site":      site,
		"tax":       tax,
	}
	currency, _ := site[constants.SettingFieldSiteCurrency].(string)
	if strings.TrimSpace(currency) == "" {
		currency = constants.SiteCurrencyDefault
	}
	data["currency"] = strings.ToUpper(currency)
	if h.CaptchaService != nil {
		data["captcha"] = h.CaptchaService.PublicSetting()
	}
	response.Success(c, data)
}

// GetCategories 获取分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryService.ListPublic()
	if err != nil {
		respondError(c, response.CodeInternal, "error.category_fetch_failed", err)
		return
	}
	response.Success(c, categories)
}

// GetProducts 获取商品列表
func (h *Handler) GetProducts(c *gin.Context) {
	page, pageSize := readPagination(c)
	var categoryID uint
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		categoryID = uint(parsed)
	}
	search := strings.TrimSpace(c.Query("search"))

	products, total, err := h.ProductService.ListPublic(categoryID, search, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, products, buildPagination(page, pageSize, total))
}

// GetProductBySlug 根据 slug 获取商品详情
func (h *Handler) GetProductBySlug(c *gin.Context) {
	product, err := h.ProductService.GetPublicBySlug(c.Param("slug"))
	if err != nil {
		respondWithMappedError(c, err, []mappedHandlerError{
			{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
		}, response.CodeInternal, "error.product_fetch_failed")
		return
	}
	response.Success(c, product)
}

// GetProductReviews 获取商品的公开评价
func (h *Handler) GetProductReviews(c *gin.Context) {
	product, err := h.ProductService.GetPublicBySlug(c.Param("slug"))
	if err != nil {
		respondWithMappedError(c, err, []mappedHandlerError{
			{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
		}, response.CodeInternal, "error.product_fetch_failed")
		return
	}
	page, pageSize := readPagination(c)
	result, err := h.ReviewService.ListByProduct(product.ID, page, pageSize)
	if err != nil {
		respondWithMappedError(c, err, reviewErrorRules, response.CodeInternal, "error.review_fetch_failed")
		return
	}
	response.Success(c, gin.H{
		"items":      result.Items,
		"summary":    result.Summary,
		"pagination": buildPagination(page, pageSize, result.Total),
	})
}

// GetBanners 获取 Banner 列表
func (h *Handler) GetBanners(c *gin.Context) {
	position := strings.TrimSpace(c.DefaultQuery("position", constants.BannerPositionHomeHero))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	banners, err := h.BannerService.ListPublic(position, limit)
	if err != nil {
		respondError(c, response.CodeInternal, "error.banner_fetch_failed", err)
		return
	}
	response.Success(c, banners)
}
