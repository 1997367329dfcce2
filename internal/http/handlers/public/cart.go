package public

import (
	"github.com/shopizen/internal/http/response"
	"github.com/shopizen/internal/models"
	"github.com/shopizen/internal/service"

	"github.com/gin-gonic/gin"
)

// CartLineRequest 购物车行定位请求
type CartLineRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// CartVariantRequest 购物车换尺码请求
type CartVariantRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Color     string `json:"color"`
	OldSize   string `json:"old_size"`
	NewSize   string `json:"new_size" binding:"required"`
}

// CartQuantityRequest 购物车数量调整请求
type CartQuantityRequest struct {
	CartLineRequest
	Delta int `json:"delta" binding:"required"` // +1 增加，-1 减少
}

func cartPayload(lines []models.CartLine) service.CartSummary {
	if lines == nil {
		lines = []models.CartLine{}
	}
	return service.SummarizeCart(lines)
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	lines, err := ws.Cart.Items()
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, cartPayload(lines))
}

// AddCartItem 加入购物车
func (h *Handler) AddCartItem(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	var req CartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	product, err := h.Catalog.Get(req.ProductID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	lines, err := ws.Cart.AddItem(product, req.Size, req.Color)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, cartPayload(lines))
}

// RemoveCartItem 删除购物车行
func (h *Handler) RemoveCartItem(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	var req CartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	lines, err := ws.Cart.RemoveItem(req.ProductID, req.Size, req.Color)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, cartPayload(lines))
}

// UpdateCartQuantity 调整购物车行数量，减少到 1 后不再变化
func (h *Handler) UpdateCartQuantity(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	var req CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var (
		lines []models.CartLine
		err   error
	)
	switch {
	case req.Delta > 0:
		lines, err = ws.Cart.IncreaseQuantity(req.ProductID, req.Size, req.Color)
	case req.Delta < 0:
		lines, err = ws.Cart.DecreaseQuantity(req.ProductID, req.Size, req.Color)
	}
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, cartPayload(lines))
}

// UpdateCartVariant 修改购物车行尺码，与已有行冲突时合并数量
func (h *Handler) UpdateCartVariant(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	var req CartVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	lines, err := ws.Cart.UpdateVariant(req.ProductID, req.Color, req.OldSize, req.NewSize)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, cartPayload(lines))
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	if err := ws.Cart.Clear(); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, cartPayload(nil))
}
