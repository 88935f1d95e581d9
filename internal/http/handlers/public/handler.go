package public

import "github.com/storefront-next/internal/provider"

// Handler 店铺前台接口：公开目录、优惠码、顾客账户、购物车与订单
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
