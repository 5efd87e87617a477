package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sipstation/bubble-tea-pos-api/middleware"
	"github.com/sipstation/bubble-tea-pos-api/services"
	"github.com/sipstation/bubble-tea-pos-api/utils"
)

// AddInventoryRequest represents the request body for a new ingredient
type AddInventoryRequest struct {
	IngredientName string           `json:"ingredient_name" binding:"required"`
	Quantity       decimal.Decimal  `json:"quantity"`
	Unit           string           `json:"unit"`
	MinQuantity    *decimal.Decimal `json:"min_quantity"`
}

// UpdateInventoryRequest is a partial update; omitted fields are kept
type UpdateInventoryRequest struct {
	IngredientName *string          `json:"ingredient_name"`
	Quantity       *decimal.Decimal `json:"quantity"`
	Unit           *string          `json:"unit"`
	MinQuantity    *decimal.Decimal `json:"min_quantity"`
}

// RecordUsageRequest represents one manual usage ledger entry
type RecordUsageRequest struct {
	InventoryID  uint            `json:"inventory_id"`
	QuantityUsed decimal.Decimal `json:"quantity_used"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	OrderID      *uint           `json:"order_id"`
	Notes        *string         `json:"notes"`
	CreatedBy    *string         `json:"created_by"`
}

// InventoryController serves the inventory endpoints
type InventoryController struct {
	inventory *services.InventoryService
	reports   *services.ReportService
	logger    *zap.Logger
}

// NewInventoryController creates an inventory controller
func NewInventoryController(inventory *services.InventoryService, reports *services.ReportService, logger *zap.Logger) *InventoryController {
	return &InventoryController{inventory: inventory, reports: reports, logger: logger}
}

// ListInventory handles GET /api/v1/inventory
func (ctl *InventoryController) ListInventory(c *gin.Context) {
	items, err := ctl.inventory.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusOK, items)
}

// GetInventoryItem handles GET /api/v1/inventory/:id
func (ctl *InventoryController) GetInventoryItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	item, err := ctl.inventory.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusOK, item)
}

// AddInventoryItem handles POST /api/v1/inventory
func (ctl *InventoryController) AddInventoryItem(c *gin.Context) {
	var req AddInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := ctl.inventory.Add(c.Request.Context(), services.AddInventoryInput{
		IngredientName: req.IngredientName,
		Quantity:       req.Quantity,
		Unit:           req.Unit,
		MinQuantity:    req.MinQuantity,
	})
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusCreated, item)
}

// UpdateInventoryItem handles PUT /api/v1/inventory/:id
func (ctl *InventoryController) UpdateInventoryItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := ctl.inventory.Update(c.Request.Context(), id, services.UpdateInventoryInput{
		IngredientName: req.IngredientName,
		Quantity:       req.Quantity,
		Unit:           req.Unit,
		MinQuantity:    req.MinQuantity,
	})
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusOK, item)
}

// DeleteInventoryItem handles DELETE /api/v1/inventory/:id
func (ctl *InventoryController) DeleteInventoryItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	name, err := ctl.inventory.Delete(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Inventory item deleted successfully",
		"data":    gin.H{"ingredient_name": name},
	})
}

// ListLowStock handles GET /api/v1/inventory/alerts/low-stock
func (ctl *InventoryController) ListLowStock(c *gin.Context) {
	items, err := ctl.inventory.ListLowStock(c.Request.Context())
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusOK, items)
}

// RecordUsage handles POST /api/v1/inventory/usage - 501 when the usage
// ledger is not provisioned
func (ctl *InventoryController) RecordUsage(c *gin.Context) {
	var req RecordUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	createdBy := req.CreatedBy
	if createdBy == nil {
		if email, err := middleware.GetEmail(c); err == nil {
			createdBy = &email
		}
	}

	usage, err := ctl.inventory.RecordUsage(c.Request.Context(), services.RecordUsageInput{
		InventoryID:  req.InventoryID,
		QuantityUsed: req.QuantityUsed,
		UnitCost:     req.UnitCost,
		OrderID:      req.OrderID,
		Notes:        req.Notes,
		CreatedBy:    createdBy,
	})
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusCreated, usage)
}

// UsageReport handles GET /api/v1/inventory/reports/usage?startDate&endDate
func (ctl *InventoryController) UsageReport(c *gin.Context) {
	start, end := c.Query("startDate"), c.Query("endDate")
	if start == "" || end == "" {
		respondError(c, http.StatusBadRequest, string(services.KindValidation), "Start date and end date are required")
		return
	}

	r, err := utils.ParseDateRange(start, end, ctl.reports.Location())
	if err != nil {
		respondError(c, http.StatusBadRequest, string(services.KindValidation), err.Error())
		return
	}

	report, err := ctl.reports.InventoryUsage(c.Request.Context(), r)
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusOK, report)
}
