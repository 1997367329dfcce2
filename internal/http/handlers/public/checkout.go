package public

import (
	"github.com/shopizen/internal/http/response"
	"github.com/shopizen/internal/models"
	"github.com/shopizen/internal/service"

	"github.com/gin-gonic/gin"
)

// BuyNowRequest 立即购买的单品
type BuyNowRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

// PlaceOrderRequest 下单请求
type PlaceOrderRequest struct {
	PaymentMethod string               `json:"payment_method"`
	Customer      *models.CustomerInfo `json:"customer"`
	BuyNow        *BuyNowRequest       `json:"buy_now"`
}

// GetCheckout 获取结算页默认信息：上次使用的地址与已确认的信息
func (h *Handler) GetCheckout(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	address, err := ws.Address.Get()
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	summary, err := ws.Cart.Summary()
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	data := gin.H{
		"address": address,
		"cart":    summary,
	}
	if confirmed, ok := ws.Orders.ConfirmedDetails(); ok {
		data["confirmed"] = confirmed
	}
	response.Success(c, data)
}

// ConfirmCheckoutDetails 校验并确认客户信息
func (h *Handler) ConfirmCheckoutDetails(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	var req models.CustomerInfo
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	confirmed, err := ws.Orders.ConfirmDetails(req)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, gin.H{"confirmed": confirmed})
}

// PlaceOrder 下单；非立即购买时成功后清空购物车
func (h *Handler) PlaceOrder(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	var req PlaceOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
	}

	input := service.PlaceOrderInput{
		Customer:      req.Customer,
		PaymentMethod: req.PaymentMethod,
	}
	if req.BuyNow != nil {
		line, err := h.buildBuyNowLine(*req.BuyNow)
		if err != nil {
			respondCheckoutError(c, err)
			return
		}
		input.BuyNow = &line
	}

	order, err := ws.Orders.PlaceOrder(input)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, order)
}

func (h *Handler) buildBuyNowLine(req BuyNowRequest) (models.CartLine, error) {
	product, err := h.Catalog.Get(req.ProductID)
	if err != nil {
		return models.CartLine{}, err
	}
	size, color, err := service.ResolveVariant(product, req.Size, req.Color)
	if err != nil {
		return models.CartLine{}, err
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	return models.CartLine{
		Product:       product,
		SelectedSize:  size,
		SelectedColor: color,
		Quantity:      quantity,
	}, nil
}
