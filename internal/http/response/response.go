package response

import (
	"net/http"

	"github.com/shopizen/internal/constants"
	"github.com/shopizen/internal/models"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	StatusCode int            `json:"status_code"`      // 业务状态码
	Msg        string         `json:"msg"`              // 提示消息
	Data       interface{}    `json:"data"`             // 数据内容
	Toasts     []models.Toast `json:"toasts,omitempty"` // 本次请求产生的即时提示
}

// PageResponse 分页响应结构
type PageResponse struct {
	StatusCode int            `json:"status_code"`
	Msg        string         `json:"msg"`
	Data       interface{}    `json:"data"`
	Pagination Pagination     `json:"pagination"`
	Toasts     []models.Toast `json:"toasts,omitempty"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// ToastSource 可提供待下发提示的对象
type ToastSource interface {
	DrainToasts() []models.Toast
}

const toastSourceKey = "toast_source"

// BindToastSource 绑定当前请求的提示来源，响应时统一下发
func BindToastSource(c *gin.Context, source ToastSource) {
	if c == nil || source == nil {
		return
	}
	c.Set(toastSourceKey, source)
}

func drainToasts(c *gin.Context) []models.Toast {
	if c == nil {
		return nil
	}
	value, ok := c.Get(toastSourceKey)
	if !ok {
		return nil
	}
	source, ok := value.(ToastSource)
	if !ok || source == nil {
		return nil
	}
	return source.DrainToasts()
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		StatusCode: 0,
		Msg:        "success",
		Data:       data,
		Toasts:     drainToasts(c),
	})
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, PageResponse{
		StatusCode: 0,
		Msg:        "success",
		Data:       data,
		Pagination: pagination,
		Toasts:     drainToasts(c),
	})
}

// Error 错误响应
func Error(c *gin.Context, statusCode int, msg string) {
	c.JSON(http.StatusOK, Response{
		StatusCode: statusCode,
		Msg:        msg,
		Data:       attachRequestID(c, nil),
		Toasts:     errorToasts(c, msg),
	})
}

// ErrorWithData 错误响应（带数据）
func ErrorWithData(c *gin.Context, statusCode int, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		StatusCode: statusCode,
		Msg:        msg,
		Data:       attachRequestID(c, data),
		Toasts:     errorToasts(c, msg),
	})
}

// errorToasts 失败响应至少携带一条错误提示
func errorToasts(c *gin.Context, msg string) []models.Toast {
	toasts := drainToasts(c)
	for _, toast := range toasts {
		if toast.Kind == constants.ToastError {
			return toasts
		}
	}
	return append(toasts, models.Toast{Message: msg, Kind: constants.ToastError})
}

// Unauthorized 401响应
func Unauthorized(c *gin.Context, msg string) {
	Error(c, CodeUnauthorized, msg)
}

// Forbidden 403响应
func Forbidden(c *gin.Context, msg string) {
	Error(c, CodeForbidden, msg)
}

func attachRequestID(c *gin.Context, data interface{}) interface{} {
	requestID := ""
	if c != nil {
		if value, ok := c.Get("request_id"); ok {
			if id, ok := value.(string); ok {
				requestID = id
			}
		}
	}
	if requestID == "" {
		return data
	}
	if data == nil {
		return gin.H{"request_id": requestID}
	}
	switch v := data.(type) {
	case gin.H:
		if _, ok := v["request_id"]; !ok {
			v["request_id"] = requestID
		}
		return v
	case map[string]interface{}:
		if _, ok := v["request_id"]; !ok {
			v["request_id"] = requestID
		}
		return v
	default:
		return gin.H{
			"request_id": requestID,
			"data":       data,
		}
	}
}
