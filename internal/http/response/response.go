package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// requestIDKey 与 router 中 RequestIDMiddleware 写入的键一致
const requestIDKey = "request_id"

// Response 统一响应结构；业务错误也以 HTTP 200 返回，由 status_code 区分
type Response struct {
	StatusCode int         `json:"status_code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
	RequestID  string      `json:"request_id,omitempty"`
}

// PageResponse 列表接口响应
type PageResponse struct {
	Response
	Pagination Pagination `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

func envelope(c *gin.Context, code int, msg string, data interface{}) Response {
	resp := Response{StatusCode: code, Msg: msg, Data: data}
	if c != nil {
		resp.RequestID = c.GetString(requestIDKey)
	}
	return resp
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope(c, CodeOK, "success", data))
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, PageResponse{
		Response:   envelope(c, CodeOK, "success", data),
		Pagination: pagination,
	})
}

// Error 业务错误响应，msg 为已翻译文案
func Error(c *gin.Context, code int, msg string) {
	c.JSON(http.StatusOK, envelope(c, code, msg, nil))
}

// Unauthorized 401
func Unauthorized(c *gin.Context, msg string) {
	Error(c, CodeUnauthorized, msg)
}

// Forbidden 403
func Forbidden(c *gin.Context, msg string) {
	Error(c, CodeForbidden, msg)
}
