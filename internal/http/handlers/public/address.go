package public

import (
	"github.com/shopizen/internal/http/response"
	"github.com/shopizen/internal/models"

	"github.com/gin-gonic/gin"
)

// GetAddress 获取地址簿中上次使用的地址
func (h *Handler) GetAddress(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	address, err := ws.Address.Get()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{"address": address})
}

// SaveAddress 保存地址簿
func (h *Handler) SaveAddress(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	var req models.CustomerInfo
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := ws.Address.Save(req); err != nil {
		respondWithMappedError(c, err, storageErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, gin.H{"address": req})
}
