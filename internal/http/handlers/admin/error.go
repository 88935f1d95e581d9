package admin

import (
	"time"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func readPagination(c *gin.Context) (int, int) {
	return handlershared.ReadPagination(c)
}

func buildPagination(page, pageSize int, total int64) response.Pagination {
	return handlershared.BuildPagination(page, pageSize, total)
}

func parsePathUint(c *gin.Context, key string) (uint, bool) {
	return handlershared.ParsePathUint(c, key)
}

func parseQueryUint(c *gin.Context, key string) (uint, error) {
	return handlershared.ParseQueryUint(c, key)
}

func parseQueryBool(c *gin.Context, key string) (*bool, error) {
	return handlershared.ParseQueryBool(c, key)
}

func parseTimeNullable(raw string) (*time.Time, error) {
	return handlershared.ParseTimeNullable(raw)
}

func respondPasswordPolicyError(c *gin.Context, err error) bool {
	return handlershared.RespondPasswordPolicyError(c, err)
}
