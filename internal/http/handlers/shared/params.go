package shared

import (
	"strconv"
	"strings"
	"time"

	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ParsePathUint 解析路径中的正整数 ID，失败时直接写入 400
func ParsePathUint(c *gin.Context, key string) (uint, bool) {
	value, err := strconv.ParseUint(strings.TrimSpace(c.Param(key)), 10, 64)
	if err != nil || value == 0 {
		RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return uint(value), true
}

// ParseQueryUint 可选的无符号整数查询参数，缺省为 0
func ParseQueryUint(c *gin.Context, key string) (uint, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}

// ParseQueryBool 可选的布尔查询参数，缺省为 nil
func ParseQueryBool(c *gin.Context, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// ParseTimeNullable 接受 RFC3339 或 YYYY-MM-DD，空串返回 nil
func ParseTimeNullable(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err == nil {
		return &parsed, nil
	}
	parsed, dateErr := time.Parse(time.DateOnly, raw)
	if dateErr != nil {
		return nil, err
	}
	return &parsed, nil
}
