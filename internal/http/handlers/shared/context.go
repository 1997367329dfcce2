package shared

import (
	"github.com/shopizen/internal/http/response"
	"github.com/shopizen/internal/models"
	"github.com/shopizen/internal/workspace"

	"github.com/gin-gonic/gin"
)

// 请求上下文键
const (
	ClientIDContextKey  = "client_id"
	WorkspaceContextKey = "workspace"
	IdentityContextKey  = "identity"
)

// GetWorkspace 从上下文读取当前客户端工作区，缺失时直接返回未授权响应。
func GetWorkspace(c *gin.Context) (*workspace.Workspace, bool) {
	value, exists := c.Get(WorkspaceContextKey)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.client_token_missing", nil)
		return nil, false
	}
	ws, ok := value.(*workspace.Workspace)
	if !ok || ws == nil {
		RespondError(c, response.CodeInternal, "error.internal", nil)
		return nil, false
	}
	return ws, true
}

// GetIdentity 读取会话守卫写入的已登录身份。
func GetIdentity(c *gin.Context) (*models.Identity, bool) {
	value, exists := c.Get(IdentityContextKey)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return nil, false
	}
	identity, ok := value.(*models.Identity)
	if !ok || identity == nil {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return nil, false
	}
	return identity, true
}
