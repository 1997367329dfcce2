package public

import (
	"errors"
	"strings"

	"github.com/shopizen/internal/constants"
	handlershared "github.com/shopizen/internal/http/handlers/shared"
	"github.com/shopizen/internal/http/response"
	"github.com/shopizen/internal/i18n"
	"github.com/shopizen/internal/models"
	"github.com/shopizen/internal/service"

	"github.com/gin-gonic/gin"
)

// EmailLoginRequest 邮箱密码登录请求
type EmailLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	handlershared.CaptchaPayloadRequest
}

// MobileLoginRequest 手机号登录请求
type MobileLoginRequest struct {
	Mobile string `json:"mobile" binding:"required"`
	handlershared.CaptchaPayloadRequest
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Mobile   string `json:"mobile"`
	Password string `json:"password" binding:"required"`
	handlershared.CaptchaPayloadRequest
}

// ActivityRequest 用户活动上报
type ActivityRequest struct {
	Kind string `json:"kind" binding:"required"`
}

// ExtendSessionRequest 会话续期请求
type ExtendSessionRequest struct {
	IdleMinutes int `json:"idle_minutes"`
}

// GetSession 获取当前会话状态
func (h *Handler) GetSession(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	response.Success(c, ws.Session.State())
}

// LoginWithEmail 邮箱密码登录
func (h *Handler) LoginWithEmail(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	var req EmailLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.CaptchaService.Verify(req.Normalized()); err != nil {
		respondAccountError(c, err)
		return
	}

	identity, policy, err := h.AccountService.AuthenticateEmail(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			ws.Notifications.ShowToast(i18n.T(i18n.ResolveLocale(c), "toast.login_invalid"), constants.ToastError)
		}
		respondAccountError(c, err)
		return
	}
	h.completeLogin(c, ws.Session, identity, policy)
}

// LoginWithMobile 手机号登录，账号不存在时自动创建
func (h *Handler) LoginWithMobile(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	var req MobileLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.CaptchaService.Verify(req.Normalized()); err != nil {
		respondAccountError(c, err)
		return
	}

	identity, policy, err := h.AccountService.AuthenticateMobile(req.Mobile)
	if err != nil {
		respondAccountError(c, err)
		return
	}
	h.completeLogin(c, ws.Session, identity, policy)
}

// Register 注册本地账号并直接登录
func (h *Handler) Register(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.CaptchaService.Verify(req.Normalized()); err != nil {
		respondAccountError(c, err)
		return
	}

	account, err := h.AccountService.Register(service.RegisterInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Mobile:   req.Mobile,
		Password: req.Password,
	})
	if err != nil {
		respondAccountError(c, err)
		return
	}
	identity, policy, err := h.AccountService.AuthenticateEmail(account.Email, req.Password)
	if err != nil {
		respondAccountError(c, err)
		return
	}
	h.completeLogin(c, ws.Session, identity, policy)
}

func (h *Handler) completeLogin(c *gin.Context, session *service.SessionService, identity models.Identity, policy service.SessionPolicy) {
	if err := session.Login(identity, policy); err != nil {
		respondSessionError(c, err)
		return
	}
	response.Success(c, session.State())
}

// Logout 主动登出
func (h *Handler) Logout(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	ws.Session.Logout(false)
	response.Success(c, ws.Session.State())
}

// RecordActivity 上报用户活动以顺延空闲过期点
func (h *Handler) RecordActivity(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	var req ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := ws.Session.RecordActivity(req.Kind); err != nil {
		respondSessionError(c, err)
		return
	}
	response.Success(c, ws.Session.State())
}

// ExtendSession 显式顺延空闲过期点
func (h *Handler) ExtendSession(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	var req ExtendSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
	}
	if err := ws.Session.ExtendIdleTimeout(req.IdleMinutes); err != nil {
		respondSessionError(c, err)
		return
	}
	response.Success(c, ws.Session.State())
}
