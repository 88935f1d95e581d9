package shared

import (
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// 鉴权中间件写入的上下文键
const (
	ContextKeyAdminID = "admin_id"
	ContextKeyUserID  = "user_id"
)

// GetContextUintWithKeys 读取中间件写入的身份 ID；缺失返回 401，类型不符按传入的键报错
func GetContextUintWithKeys(c *gin.Context, key, invalidKey, typeInvalidKey string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	switch v := value.(type) {
	case uint:
		if v == 0 {
			RespondError(c, response.CodeUnauthorized, invalidKey, nil)
			return 0, false
		}
		return v, true
	case int:
		if v <= 0 {
			RespondError(c, response.CodeUnauthorized, invalidKey, nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, typeInvalidKey, nil)
		return 0, false
	}
}

// AdminID 当前管理员 ID
func AdminID(c *gin.Context) (uint, bool) {
	return GetContextUintWithKeys(c, ContextKeyAdminID, "error.admin_id_invalid", "error.admin_id_type_invalid")
}

// UserID 当前顾客 ID
func UserID(c *gin.Context) (uint, bool) {
	return GetContextUintWithKeys(c, ContextKeyUserID, "error.user_id_invalid", "error.user_id_type_invalid")
}

// OptionalUserID 游客可访问的接口读取顾客 ID，未登录为 0
func OptionalUserID(c *gin.Context) uint {
	if uid, ok := c.Get(ContextKeyUserID); ok {
		if id, ok := uid.(uint); ok {
			return id
		}
	}
	return 0
}
