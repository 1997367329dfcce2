package public

import (
	"errors"

	handlershared "github.com/shopizen/internal/http/handlers/shared"
	"github.com/shopizen/internal/http/response"
	"github.com/shopizen/internal/i18n"
	"github.com/shopizen/internal/models"
	"github.com/shopizen/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductRefRequest 按商品ID操作的请求
type ProductRefRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

func nonNilProducts(items []models.Product) []models.Product {
	if items == nil {
		return []models.Product{}
	}
	return items
}

// GetWishlist 获取心愿单
func (h *Handler) GetWishlist(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	items, err := ws.Wishlist.Items()
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"items": nonNilProducts(items)})
}

// ToggleWishlist 切换商品的心愿单状态
func (h *Handler) ToggleWishlist(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	var req ProductRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	product, err := h.Catalog.Get(req.ProductID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	items, added, err := ws.Wishlist.Toggle(product)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"items": nonNilProducts(items), "added": added})
}

// RemoveWishlistItem 从心愿单移除
func (h *Handler) RemoveWishlistItem(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	items, err := ws.Wishlist.Remove(id)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"items": nonNilProducts(items)})
}

// GetComparison 获取对比列表
func (h *Handler) GetComparison(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	items, err := ws.Comparison.Items()
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"items": nonNilProducts(items), "max_items": ws.Comparison.MaxItems()})
}

// AddComparison 加入对比列表，超过上限时拒绝
func (h *Handler) AddComparison(c *gin.Context) {
	h.mutateComparison(c, false)
}

// ToggleComparison 切换商品的对比状态
func (h *Handler) ToggleComparison(c *gin.Context) {
	h.mutateComparison(c, true)
}

func (h *Handler) mutateComparison(c *gin.Context, toggle bool) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	var req ProductRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	product, err := h.Catalog.Get(req.ProductID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	var items []models.Product
	if toggle {
		items, err = ws.Comparison.Toggle(product)
	} else {
		items, err = ws.Comparison.Add(product)
	}
	if err != nil {
		if errors.Is(err, service.ErrComparisonFull) {
			respondComparisonFull(c, ws.Comparison)
			return
		}
		respondWithMappedError(c, err, storageErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, gin.H{"items": nonNilProducts(items), "max_items": ws.Comparison.MaxItems()})
}

// RemoveComparison 从对比列表移除
func (h *Handler) RemoveComparison(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	items, err := ws.Comparison.Remove(id)
	if err != nil {
		respondWithMappedError(c, err, storageErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, gin.H{"items": nonNilProducts(items), "max_items": ws.Comparison.MaxItems()})
}

// ClearComparison 清空对比列表
func (h *Handler) ClearComparison(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	if err := ws.Comparison.Clear(); err != nil {
		respondWithMappedError(c, err, storageErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, gin.H{"items": []models.Product{}, "max_items": ws.Comparison.MaxItems()})
}

// respondComparisonFull 对比列表已满时返回错误，并附带未变化的列表
func respondComparisonFull(c *gin.Context, comparison *service.ComparisonService) {
	maxItems := comparison.MaxItems()
	items, err := comparison.Items()
	if err != nil {
		handlershared.RequestLog(c).Warnw("comparison_list_load_failed", "error", err)
	}
	msg := i18n.Sprintf(i18n.ResolveLocale(c), "error.comparison_full", maxItems)
	response.ErrorWithData(c, response.CodeBadRequest, msg, gin.H{"items": nonNilProducts(items), "max_items": maxItems})
}
