package public

import (
	"strings"

	"github.com/shopizen/internal/catalog"
	handlershared "github.com/shopizen/internal/http/handlers/shared"
	"github.com/shopizen/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetProducts 获取商品列表
// 携带关键词时同时写入搜索历史，record=false 可跳过（如输入联想）
func (h *Handler) GetProducts(c *gin.Context) {
	query := catalog.Query{
		Category: c.Query("category"),
		Brand:    c.Query("brand"),
		Keyword:  c.Query("keyword"),
	}
	if strings.TrimSpace(query.Keyword) != "" && c.DefaultQuery("record", "true") != "false" {
		ws, ok := getWorkspace(c)
		if !ok {
			return
		}
		if _, err := ws.Search.Record(query.Keyword); err != nil {
			handlershared.RequestLog(c).Warnw("search_history_record_failed", "error", err)
		}
	}

	products := h.Catalog.List(query)
	page, pageSize := handlershared.ReadPagination(c)
	start, end := handlershared.PageBounds(len(products), page, pageSize)
	response.SuccessWithPage(c, products[start:end], handlershared.BuildPagination(page, pageSize, len(products)))
}

// GetProduct 获取商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	product, err := h.Catalog.Get(id)
	if err != nil {
		respondError(c, response.CodeNotFound, "error.product_not_found", nil)
		return
	}
	response.Success(c, product)
}
