package public

import (
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetWishlist 获取收藏列表
func (h *Handler) GetWishlist(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := readPagination(c)
	items, total, err := h.WishlistService.List(uid, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.wishlist_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, items, buildPagination(page, pageSize, total))
}

// AddWishlistItem 收藏商品（重复收藏幂等）
func (h *Handler) AddWishlistItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	productID, ok := parsePathUint(c, "product_id")
	if !ok {
		return
	}
	if err := h.WishlistService.Add(uid, productID); err != nil {
		respondWithMappedError(c, err, wishlistErrorRules, response.CodeInternal, "error.wishlist_update_failed")
		return
	}
	response.Success(c, gin.H{"added": true})
}

// RemoveWishlistItem 取消收藏
func (h *Handler) RemoveWishlistItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	productID, ok := parsePathUint(c, "product_id")
	if !ok {
		return
	}
	if err := h.WishlistService.Remove(uid, productID); err != nil {
		respondWithMappedError(c, err, wishlistErrorRules, response.CodeInternal, "error.wishlist_update_failed")
		return
	}
	response.Success(c, gin.H{"removed": true})
}
