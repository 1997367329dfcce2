package admin

import (
	"strings"

	"github.com/shopizen/internal/constants"
	handlershared "github.com/shopizen/internal/http/handlers/shared"
	"github.com/shopizen/internal/http/response"
	"github.com/shopizen/internal/models"

	"github.com/gin-gonic/gin"
)

type adminOrderItemActionPayload struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason"`
}

// 订单筛选状态
const (
	orderFilterActive    = "active"
	orderFilterDelivered = "delivered"
	orderFilterCancelled = "cancelled"
	orderFilterReturned  = "returned"
)

// GetAdminOrders 获取当前工作区内所有身份的订单
func (h *Handler) GetAdminOrders(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ReadPagination(c)
	owner := strings.TrimSpace(c.Query("owner"))
	status := strings.ToLower(strings.TrimSpace(c.Query("status")))
	keyword := strings.ToLower(strings.TrimSpace(c.Query("keyword")))

	orders, err := ws.Orders.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	filtered := make([]models.OwnedOrder, 0, len(orders))
	for _, order := range orders {
		if owner != "" && order.Owner != owner {
			continue
		}
		if status != "" && !orderMatchesStatus(order.Order, status) {
			continue
		}
		if keyword != "" && !orderMatchesKeyword(order, keyword) {
			continue
		}
		filtered = append(filtered, order)
	}

	start, end := handlershared.PageBounds(len(filtered), page, pageSize)
	response.SuccessWithPage(c, filtered[start:end], handlershared.BuildPagination(page, pageSize, len(filtered)))
}

func orderMatchesStatus(order models.Order, status string) bool {
	for _, item := range order.Items {
		switch status {
		case orderFilterActive:
			if !item.Terminal() {
				return true
			}
		case orderFilterDelivered:
			if item.StatusIndex == constants.OrderItemStatusDelivered {
				return true
			}
		case orderFilterCancelled:
			if item.StatusIndex == constants.OrderItemStatusTerminal && item.Action == constants.OrderItemActionCancel {
				return true
			}
		case orderFilterReturned:
			if item.StatusIndex == constants.OrderItemStatusTerminal && item.Action == constants.OrderItemActionReturn {
				return true
			}
		default:
			return true
		}
	}
	return false
}

func orderMatchesKeyword(order models.OwnedOrder, keyword string) bool {
	candidates := []string{order.ID, order.Owner, order.Customer.Email, order.Customer.FirstName + " " + order.Customer.LastName}
	for _, candidate := range candidates {
		if strings.Contains(strings.ToLower(candidate), keyword) {
			return true
		}
	}
	return false
}

// AdvanceAdminOrderItem 管理端推进订单项状态
func (h *Handler) AdvanceAdminOrderItem(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	owner, orderID, itemID := c.Param("owner"), c.Param("id"), c.Param("item_id")
	status, err := ws.Orders.AdvanceStatusFor(owner, orderID, itemID)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	requestLog(c).Infow("admin_order_item_advanced",
		"operator", currentIdentityKey(c),
		"owner", owner,
		"order_id", orderID,
		"order_item_id", itemID,
		"status_index", status,
	)
	response.Success(c, gin.H{"status_index": status})
}

// CancelOrReturnAdminOrderItem 管理端取消或退货订单项
func (h *Handler) CancelOrReturnAdminOrderItem(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	var req adminOrderItemActionPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	owner, orderID, itemID := c.Param("owner"), c.Param("id"), c.Param("item_id")
	item, err := ws.Orders.CancelOrReturnFor(owner, orderID, itemID, req.Action, req.Reason)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	requestLog(c).Infow("admin_order_item_terminated",
		"operator", currentIdentityKey(c),
		"owner", owner,
		"order_id", orderID,
		"order_item_id", itemID,
		"action", item.Action,
	)
	response.Success(c, item)
}

// GetAdminAccounts 获取本地注册账号列表
func (h *Handler) GetAdminAccounts(c *gin.Context) {
	accounts, err := h.AccountService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	page, pageSize := handlershared.ReadPagination(c)
	start, end := handlershared.PageBounds(len(accounts), page, pageSize)
	response.SuccessWithPage(c, accounts[start:end], handlershared.BuildPagination(page, pageSize, len(accounts)))
}
