package admin

import "github.com/storefront-next/internal/provider"

// Handler 管理端接口（/api/v1/admin），依赖全部来自容器
type Handler struct {
	*provider.Container
}

func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
