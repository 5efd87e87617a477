package controllers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sipstation/bubble-tea-pos-api/models"
	"github.com/sipstation/bubble-tea-pos-api/services"
)

// OrderItemRequest is one cart line as submitted by the kiosk
type OrderItemRequest struct {
	MenuItemID uint     `json:"menuItemId"`
	ItemName   string   `json:"itemName"`
	Quantity   int      `json:"quantity"`
	Size       string   `json:"size"`
	SugarLevel string   `json:"sugarLevel"`
	IceLevel   string   `json:"iceLevel"`
	Toppings   []string `json:"toppings"`
	Price      *Money   `json:"price" binding:"required"`
}

// CreateOrderRequest represents the request body for creating an order.
// TotalPrice is a JSON number; strings are rejected by binding.
type CreateOrderRequest struct {
	Items      []OrderItemRequest `json:"items" binding:"required,dive"`
	TotalPrice *Money             `json:"totalPrice" binding:"required"`
}

// Money is a JSON number decoded straight to a decimal without passing
// through float64. Quoted amounts are rejected.
type Money struct {
	decimal.Decimal
}

// UnmarshalJSON accepts only bare JSON numbers
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] == '"' {
		return errors.New("amount must be a JSON number")
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return errors.New("amount must be a JSON number")
	}
	m.Decimal = d
	return nil
}

// UpdateOrderStatusRequest represents the request body for a status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderController serves the order endpoints
type OrderController struct {
	orders *services.OrderService
	logger *zap.Logger
}

// NewOrderController creates an order controller
func NewOrderController(orders *services.OrderService, logger *zap.Logger) *OrderController {
	return &OrderController{orders: orders, logger: logger}
}

// CreateOrder handles POST /api/v1/orders - places a kiosk order
func (ctl *OrderController) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	input := services.CreateOrderInput{
		Items:      make([]services.OrderItemInput, 0, len(req.Items)),
		TotalPrice: req.TotalPrice.Decimal,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, services.OrderItemInput{
			MenuItemID: item.MenuItemID,
			ItemName:   item.ItemName,
			Quantity:   item.Quantity,
			Size:       models.Size(item.Size),
			SugarLevel: models.SugarLevel(item.SugarLevel),
			IceLevel:   models.IceLevel(item.IceLevel),
			Toppings:   item.Toppings,
			Price:      item.Price.Decimal,
		})
	}

	result, err := ctl.orders.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"data":     result.Order,
		"warnings": result.Warnings,
	})
}

// ListOrders handles GET /api/v1/orders - lists orders, optionally by ?status=
func (ctl *OrderController) ListOrders(c *gin.Context) {
	var status *models.OrderStatus
	if raw := c.Query("status"); raw != "" {
		s := models.OrderStatus(raw)
		status = &s
	}

	orders, err := ctl.orders.List(c.Request.Context(), status)
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusOK, orders)
}

// GetOrder handles GET /api/v1/orders/:id
func (ctl *OrderController) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := ctl.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status - any status may
// follow any other
func (ctl *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := ctl.orders.UpdateStatus(c.Request.Context(), id, models.OrderStatus(req.Status))
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/v1/orders/:id - inventory is not restored
func (ctl *OrderController) DeleteOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctl.orders.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order deleted successfully",
	})
}
