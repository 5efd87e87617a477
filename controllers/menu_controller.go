package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sipstation/bubble-tea-pos-api/models"
	"github.com/sipstation/bubble-tea-pos-api/services"
)

// MenuItemRequest represents the request body for creating or replacing a
// menu item
type MenuItemRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	BasePrice   *decimal.Decimal `json:"basePrice" binding:"required"`
	Category    string           `json:"category" binding:"required"`
	ImageRef    *string          `json:"imageRef"`
	Calories    float64          `json:"calories"`
	Sugar       float64          `json:"sugar"`
	Protein     float64          `json:"protein"`
}

// ToppingRequest represents the request body for a new topping
type ToppingRequest struct {
	ID    string           `json:"id" binding:"required"`
	Name  string           `json:"name" binding:"required"`
	Price *decimal.Decimal `json:"price" binding:"required"`
}

// QuoteItemRequest is one cart line to price
type QuoteItemRequest struct {
	MenuItemID uint     `json:"menuItemId" binding:"required"`
	Size       string   `json:"size"`
	SugarLevel string   `json:"sugarLevel"`
	IceLevel   string   `json:"iceLevel"`
	Toppings   []string `json:"toppings"`
	Quantity   int      `json:"quantity"`
}

// QuoteRequest represents a cart to price
type QuoteRequest struct {
	Items []QuoteItemRequest `json:"items" binding:"required,dive"`
}

// MenuController serves the menu, topping and quote endpoints
type MenuController struct {
	catalog *services.CatalogService
	logger  *zap.Logger
}

// NewMenuController creates a menu controller
func NewMenuController(catalog *services.CatalogService, logger *zap.Logger) *MenuController {
	return &MenuController{catalog: catalog, logger: logger}
}

// ListMenuItems handles GET /api/v1/menu
func (ctl *MenuController) ListMenuItems(c *gin.Context) {
	items, err := ctl.catalog.ListMenuItems(c.Request.Context())
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusOK, items)
}

// GetMenuItem handles GET /api/v1/menu/:id
func (ctl *MenuController) GetMenuItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	item, err := ctl.catalog.GetMenuItem(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusOK, item)
}

// GetOptions handles GET /api/v1/menu/options - the multipliers shared by
// pricing, nutrition and inventory deduction
func (ctl *MenuController) GetOptions(c *gin.Context) {
	respondData(c, http.StatusOK, ctl.catalog.Options())
}

// CreateMenuItem handles POST /api/v1/menu
func (ctl *MenuController) CreateMenuItem(c *gin.Context) {
	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := ctl.catalog.CreateMenuItem(c.Request.Context(), req.input())
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusCreated, item)
}

// UpdateMenuItem handles PUT /api/v1/menu/:id
func (ctl *MenuController) UpdateMenuItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := ctl.catalog.UpdateMenuItem(c.Request.Context(), id, req.input())
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusOK, item)
}

// DeleteMenuItem handles DELETE /api/v1/menu/:id
func (ctl *MenuController) DeleteMenuItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctl.catalog.DeleteMenuItem(c.Request.Context(), id); err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Menu item deleted successfully",
	})
}

// UploadMenuImage handles POST /api/v1/menu/:id/image - multipart field
// "image", PNG or JPEG up to 10 MB
func (ctl *MenuController) UploadMenuImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "NO_FILE", "An image file is required in the \"image\" field")
		return
	}

	item, err := ctl.catalog.UploadMenuImage(c.Request.Context(), id, fileHeader)
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusOK, item)
}

// ListToppings handles GET /api/v1/toppings
func (ctl *MenuController) ListToppings(c *gin.Context) {
	toppings, err := ctl.catalog.ListToppings(c.Request.Context())
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusOK, toppings)
}

// CreateTopping handles POST /api/v1/toppings
func (ctl *MenuController) CreateTopping(c *gin.Context) {
	var req ToppingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	topping, err := ctl.catalog.CreateTopping(c.Request.Context(), models.Topping{
		ID:    req.ID,
		Name:  req.Name,
		Price: *req.Price,
	})
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusCreated, topping)
}

// Quote handles POST /api/v1/menu/quote - prices a cart from the catalog
func (ctl *MenuController) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	lines := make([]services.QuoteLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, services.QuoteLine{
			MenuItemID: item.MenuItemID,
			Customization: models.Customization{
				Size:       models.Size(item.Size),
				SugarLevel: models.SugarLevel(item.SugarLevel),
				IceLevel:   models.IceLevel(item.IceLevel),
				Toppings:   item.Toppings,
			},
			Quantity: item.Quantity,
		})
	}

	quote, err := ctl.catalog.Quote(c.Request.Context(), lines)
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusOK, quote)
}

func (r MenuItemRequest) input() services.MenuItemInput {
	return services.MenuItemInput{
		Name:         r.Name,
		Description:  r.Description,
		BasePrice:    *r.BasePrice,
		Category:     models.Category(r.Category),
		ImageRef:     r.ImageRef,
		Calories:     r.Calories,
		SugarGrams:   r.Sugar,
		ProteinGrams: r.Protein,
	}
}
