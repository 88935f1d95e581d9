package public

import (
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

func respondPasswordPolicyError(c *gin.Context, err error) bool {
	return handlershared.RespondPasswordPolicyError(c, err)
}

func (h *Handler) verifyCaptcha(c *gin.Context, scene string, payload handlershared.CaptchaPayloadRequest) bool {
	return handlershared.VerifyCaptcha(c, h.CaptchaService, scene, payload)
}
