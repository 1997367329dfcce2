package router

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopizen/internal/authz"
	"github.com/shopizen/internal/config"
	handlershared "github.com/shopizen/internal/http/handlers/shared"
	"github.com/shopizen/internal/http/response"
	"github.com/shopizen/internal/i18n"
	"github.com/shopizen/internal/logger"
	"github.com/shopizen/internal/models"
	"github.com/shopizen/internal/service"
	"github.com/shopizen/internal/workspace"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"
const clientTokenHeader = "X-Client-Token"
const sessionExpiredContextKey = "session_expired"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			clientTokenHeader,
			"X-Requested-With",
			"X-CSRF-Token",
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"client_id", c.GetString(handlershared.ClientIDContextKey),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// ClientTokenMiddleware 客户端令牌中间件
// 解析令牌中的客户端ID并挂载对应工作区，同时按需检查会话是否过期
func ClientTokenMiddleware(tokens *service.ClientTokenService, registry *workspace.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil || registry == nil {
			logger.Errorw("client_token_middleware_unavailable", "tokens_nil", tokens == nil, "registry_nil", registry == nil)
			msg := i18n.T(i18n.ResolveLocale(c), "error.internal")
			response.Error(c, response.CodeInternal, msg)
			c.Abort()
			return
		}
		tokenString := readClientToken(c)
		if tokenString == "" {
			msg := i18n.T(i18n.ResolveLocale(c), "error.client_token_missing")
			response.Unauthorized(c, msg)
			c.Abort()
			return
		}
		clientID, err := tokens.Parse(tokenString)
		if err != nil {
			msg := i18n.T(i18n.ResolveLocale(c), "error.client_token_invalid")
			response.Unauthorized(c, msg)
			c.Abort()
			return
		}
		ws, err := registry.Get(clientID)
		if err != nil {
			logger.Errorw("client_workspace_load_failed", "client_id", clientID, "error", err)
			msg := i18n.T(i18n.ResolveLocale(c), "error.internal")
			response.Error(c, response.CodeInternal, msg)
			c.Abort()
			return
		}
		ws.Touch(time.Now())
		if ws.Session.CheckExpiry() {
			c.Set(sessionExpiredContextKey, true)
		}

		c.Set(handlershared.ClientIDContextKey, clientID)
		c.Set(handlershared.WorkspaceContextKey, ws)
		response.BindToastSource(c, ws.Notifications)
		c.Next()
	}
}

func readClientToken(c *gin.Context) string {
	if token := strings.TrimSpace(c.GetHeader(clientTokenHeader)); token != "" {
		return token
	}
	parts := strings.SplitN(strings.TrimSpace(c.GetHeader("Authorization")), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// SessionGuardMiddleware 受保护路由守卫，要求当前工作区存在有效会话
func SessionGuardMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, ok := currentWorkspace(c)
		if !ok {
			msg := i18n.T(i18n.ResolveLocale(c), "error.client_token_missing")
			response.Unauthorized(c, msg)
			c.Abort()
			return
		}
		identity, err := ws.Session.RequireActive()
		if err != nil {
			key := "error.unauthorized"
			if errors.Is(err, service.ErrNotAuthenticated) && c.GetBool(sessionExpiredContextKey) {
				key = "error.session_expired"
			}
			msg := i18n.T(i18n.ResolveLocale(c), key)
			response.Unauthorized(c, msg)
			c.Abort()
			return
		}
		c.Set(handlershared.IdentityContextKey, identity)
		c.Next()
	}
}

// AdminRBACMiddleware 管理端 RBAC 鉴权中间件
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("admin_rbac_service_unavailable")
			msg := i18n.T(i18n.ResolveLocale(c), "error.authz_unavailable")
			response.Unauthorized(c, msg)
			c.Abort()
			return
		}

		identity := currentIdentity(c)
		if identity == nil {
			msg := i18n.T(i18n.ResolveLocale(c), "error.unauthorized")
			response.Unauthorized(c, msg)
			c.Abort()
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}

		allowed, err := authzService.EnforceIdentity(identity, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("admin_rbac_enforce_failed",
				"identity_key", models.IdentityKey(identity),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			msg := i18n.T(i18n.ResolveLocale(c), "error.unauthorized")
			response.Unauthorized(c, msg)
			c.Abort()
			return
		}
		if !allowed {
			logger.Warnw("admin_rbac_permission_denied",
				"identity_key", models.IdentityKey(identity),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"resource", authz.NormalizeObject(resource),
			)
			msg := i18n.T(i18n.ResolveLocale(c), "error.forbidden")
			response.Forbidden(c, msg)
			c.Abort()
			return
		}

		c.Next()
	}
}

func currentWorkspace(c *gin.Context) (*workspace.Workspace, bool) {
	value, ok := c.Get(handlershared.WorkspaceContextKey)
	if !ok {
		return nil, false
	}
	ws, ok := value.(*workspace.Workspace)
	return ws, ok && ws != nil
}

func currentIdentity(c *gin.Context) *models.Identity {
	value, ok := c.Get(handlershared.IdentityContextKey)
	if !ok {
		return nil
	}
	identity, _ := value.(*models.Identity)
	return identity
}
