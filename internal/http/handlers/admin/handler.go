package admin

import "github.com/shopizen/internal/provider"

// Handler 后台管理接口处理器入口
// 说明：该处理器仅用于管理端 API，调用方须已通过会话守卫与 RBAC。
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
