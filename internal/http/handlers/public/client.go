package public

import (
	"strings"

	"github.com/shopizen/internal/http/response"

	"github.com/gin-gonic/gin"
)

// IssueClientTokenRequest 客户端令牌请求
type IssueClientTokenRequest struct {
	Token string `json:"token"` // 续期时携带旧令牌，保持同一工作区
}

// IssueClientToken 签发客户端令牌
// 携带仍有效的旧令牌时沿用其客户端ID，否则分配新的工作区
func (h *Handler) IssueClientToken(c *gin.Context) {
	var req IssueClientTokenRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
	}

	clientID := ""
	if previous := strings.TrimSpace(req.Token); previous != "" {
		if parsed, err := h.ClientTokenService.Parse(previous); err == nil {
			clientID = parsed
		}
	}

	token, clientID, expiresAt, err := h.ClientTokenService.Issue(clientID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{
		"token":      token,
		"client_id":  clientID,
		"expires_at": expiresAt,
	})
}
