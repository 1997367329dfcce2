package public

import (
	"github.com/shopizen/internal/http/response"
	"github.com/shopizen/internal/models"

	"github.com/gin-gonic/gin"
)

// OrderItemActionRequest 订单项取消/退货请求
type OrderItemActionRequest struct {
	Action string `json:"action" binding:"required"` // cancel / return
	Reason string `json:"reason"`
}

// OrderView 订单及其跟踪状态
type OrderView struct {
	models.Order
	Tracking bool `json:"tracking"`
}

// ListOrders 获取当前身份的订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	orders, err := ws.Orders.List()
	if err != nil {
		respondOrderError(c, err)
		return
	}
	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, OrderView{Order: order, Tracking: ws.Tracker.Tracking(order.ID)})
	}
	response.Success(c, gin.H{"items": views})
}

// GetOrder 获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	order, err := ws.Orders.Get(c.Param("id"))
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, OrderView{Order: *order, Tracking: ws.Tracker.Tracking(order.ID)})
}

// TrackOrder 开始模拟物流自动推进
func (h *Handler) TrackOrder(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	started, err := ws.Tracker.Track(c.Param("id"))
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, gin.H{"tracking": started})
}

// StopTrackingOrder 停止自动推进
func (h *Handler) StopTrackingOrder(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	ws.Tracker.Stop(c.Param("id"))
	response.Success(c, gin.H{"tracking": false})
}

// CancelOrReturnOrderItem 取消未送达的订单项，或对已送达的订单项发起退货
func (h *Handler) CancelOrReturnOrderItem(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	var req OrderItemActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	item, err := ws.Orders.CancelOrReturn(c.Param("id"), c.Param("item_id"), req.Action, req.Reason)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, item)
}
