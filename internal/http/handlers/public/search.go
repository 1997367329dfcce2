package public

import (
	"github.com/shopizen/internal/http/response"

	"github.com/gin-gonic/gin"
)

// SearchTermRequest 搜索词请求
type SearchTermRequest struct {
	Term string `json:"term" binding:"required"`
}

// GetSearchHistory 获取搜索历史
func (h *Handler) GetSearchHistory(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	items, err := ws.Search.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{"items": items})
}

// RecordSearch 记录搜索词
func (h *Handler) RecordSearch(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	var req SearchTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	items, err := ws.Search.Record(req.Term)
	if err != nil {
		respondWithMappedError(c, err, storageErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, gin.H{"items": items})
}

// RemoveSearchTerm 删除单条搜索历史
func (h *Handler) RemoveSearchTerm(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	items, err := ws.Search.Remove(c.Query("term"))
	if err != nil {
		respondWithMappedError(c, err, storageErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, gin.H{"items": items})
}

// ClearSearchHistory 清空搜索历史
func (h *Handler) ClearSearchHistory(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	if err := ws.Search.Clear(); err != nil {
		respondWithMappedError(c, err, storageErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, gin.H{"items": []interface{}{}})
}
