package shared

import (
	"strings"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CaptchaPayloadRequest 登录/注册请求中附带的验证码答案
type CaptchaPayloadRequest struct {
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// ToServicePayload 去除首尾空白后交给 service 校验
func (r CaptchaPayloadRequest) ToServicePayload() service.CaptchaVerifyPayload {
	return service.CaptchaVerifyPayload{
		CaptchaID:   strings.TrimSpace(r.CaptchaID),
		CaptchaCode: strings.TrimSpace(r.CaptchaCode),
	}
}

var captchaRules = []ErrorRule{
	{Target: service.ErrCaptchaRequired, Code: response.CodeBadRequest, Key: "error.captcha_required"},
	{Target: service.ErrCaptchaInvalid, Code: response.CodeBadRequest, Key: "error.captcha_invalid"},
	{Target: service.ErrCaptchaConfigInvalid, Code: response.CodeInternal, Key: "error.captcha_config_invalid"},
}

// VerifyCaptcha 校验场景验证码；未启用验证码服务时直接放行，失败时已写入响应
func VerifyCaptcha(c *gin.Context, svc *service.CaptchaService, scene string, payload CaptchaPayloadRequest) bool {
	if svc == nil {
		return true
	}
	if err := svc.Verify(scene, payload.ToServicePayload()); err != nil {
		RespondMapped(c, err, captchaRules, response.CodeInternal, "error.captcha_verify_failed")
		return false
	}
	return true
}
