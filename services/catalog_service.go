package services

import (
	"context"
	"errors"
	"mime/multipart"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sipstation/bubble-tea-pos-api/models"
	"github.com/sipstation/bubble-tea-pos-api/utils"
)

var toppingIDPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// MenuItemInput is the full set of editable menu item fields
type MenuItemInput struct {
	Name         string
	Description  string
	BasePrice    decimal.Decimal
	Category     models.Category
	ImageRef     *string
	Calories     float64
	SugarGrams   float64
	ProteinGrams float64
}

// QuoteLine is one cart line to be priced
type QuoteLine struct {
	MenuItemID    uint
	Customization models.Customization
	Quantity      int
}

// QuotedLine is a priced cart line
type QuotedLine struct {
	MenuItemID    uint                 `json:"menuItemId"`
	Name          string               `json:"name"`
	Quantity      int                  `json:"quantity"`
	Customization models.Customization `json:"customization"`
	UnitPrice     decimal.Decimal      `json:"unitPrice"`
	LinePrice     decimal.Decimal      `json:"linePrice"`
	Nutrition     Nutrition            `json:"nutrition"`
}

// Quote is a server-side price and nutrition breakdown of a cart
type Quote struct {
	Lines  []QuotedLine `json:"lines"`
	Totals Totals       `json:"totals"`
}

// CatalogService manages menu items and toppings and prices carts
type CatalogService struct {
	db        *gorm.DB
	options   *OptionTable
	pricing   *PricingEngine
	nutrition *NutritionEngine
	images    ImageService
	logger    *zap.Logger
}

// NewCatalogService creates a catalog service. images may be nil when image
// storage is not configured.
func NewCatalogService(db *gorm.DB, options *OptionTable, images ImageService, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		db:        db,
		options:   options,
		pricing:   NewPricingEngine(options),
		nutrition: NewNutritionEngine(options),
		images:    images,
		logger:    logger.Named("catalog"),
	}
}

// Options returns the option table shared by pricing, nutrition and
// inventory deduction
func (s *CatalogService) Options() *OptionTable {
	return s.options
}

// ListMenuItems returns the menu ordered by category and name
func (s *CatalogService) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	items := []models.MenuItem{}
	if err := s.db.WithContext(ctx).Order("category ASC, name ASC").Find(&items).Error; err != nil {
		return nil, Persistence(err, "Failed to fetch menu items")
	}
	for i := range items {
		s.attachImageURL(ctx, &items[i])
	}
	return items, nil
}

// GetMenuItem returns one menu item
func (s *CatalogService) GetMenuItem(ctx context.Context, id uint) (*models.MenuItem, error) {
	item, err := s.loadMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}
	s.attachImageURL(ctx, item)
	return item, nil
}

// CreateMenuItem adds a drink to the menu
func (s *CatalogService) CreateMenuItem(ctx context.Context, input MenuItemInput) (*models.MenuItem, error) {
	if err := validateMenuItem(input); err != nil {
		return nil, err
	}

	item := models.MenuItem{}
	applyMenuItem(&item, input)
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, Persistence(err, "Failed to add menu item")
	}

	s.logger.Info("Menu item created", zap.Uint("menu_item_id", item.ID), zap.String("name", item.Name))
	s.attachImageURL(ctx, &item)
	return &item, nil
}

// UpdateMenuItem replaces every editable field. The image is kept unless
// ImageRef is provided.
func (s *CatalogService) UpdateMenuItem(ctx context.Context, id uint, input MenuItemInput) (*models.MenuItem, error) {
	if err := validateMenuItem(input); err != nil {
		return nil, err
	}

	item, err := s.loadMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}
	applyMenuItem(item, input)
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, Persistence(err, "Failed to update menu item")
	}

	s.attachImageURL(ctx, item)
	return item, nil
}

// DeleteMenuItem removes a menu item. Past order lines keep their snapshot.
func (s *CatalogService) DeleteMenuItem(ctx context.Context, id uint) error {
	item, err := s.loadMenuItem(ctx, id)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Delete(&models.MenuItem{}, id)
	if res.Error != nil {
		return Persistence(res.Error, "Failed to delete menu item")
	}
	if res.RowsAffected == 0 {
		return NotFound("Menu item not found")
	}

	if s.images != nil && item.ImageRef != "" {
		if err := s.images.DeleteImage(ctx, item.ImageRef); err != nil {
			s.logger.Warn("Failed to delete menu image", zap.String("key", item.ImageRef), zap.Error(err))
		}
	}
	s.logger.Info("Menu item deleted", zap.Uint("menu_item_id", id))
	return nil
}

// UploadMenuImage stores a new image for the menu item and replaces the
// previous one
func (s *CatalogService) UploadMenuImage(ctx context.Context, id uint, fileHeader *multipart.FileHeader) (*models.MenuItem, error) {
	if s.images == nil {
		return nil, FeatureUnavailable("Image storage is not configured")
	}

	item, err := s.loadMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}

	key, err := s.images.UploadImage(ctx, fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			return nil, Validation("%s", uploadErr.Message)
		}
		return nil, Persistence(err, "Failed to upload image")
	}

	previous := item.ImageRef
	if err := s.db.WithContext(ctx).Model(item).Update("image_ref", key).Error; err != nil {
		_ = s.images.DeleteImage(ctx, key)
		return nil, Persistence(err, "Failed to save image reference")
	}
	item.ImageRef = key
	if previous != "" {
		if err := s.images.DeleteImage(ctx, previous); err != nil {
			s.logger.Warn("Failed to delete previous menu image", zap.String("key", previous), zap.Error(err))
		}
	}

	s.attachImageURL(ctx, item)
	return item, nil
}

// ListToppings returns every topping ordered by name
func (s *CatalogService) ListToppings(ctx context.Context) ([]models.Topping, error) {
	toppings := []models.Topping{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&toppings).Error; err != nil {
		return nil, Persistence(err, "Failed to fetch toppings")
	}
	return toppings, nil
}

// CreateTopping adds a topping. The id is a lower-case slug such as "boba".
func (s *CatalogService) CreateTopping(ctx context.Context, topping models.Topping) (*models.Topping, error) {
	topping.ID = strings.TrimSpace(topping.ID)
	topping.Name = strings.TrimSpace(topping.Name)
	if !toppingIDPattern.MatchString(topping.ID) {
		return nil, Validation("Topping id must be a lower-case slug such as \"lychee-jelly\"")
	}
	if topping.Name == "" {
		return nil, Validation("Topping name is required")
	}
	if topping.Price.IsNegative() {
		return nil, Validation("Topping price must not be negative")
	}

	if err := s.db.WithContext(ctx).Create(&topping).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("Topping already exists")
		}
		return nil, Persistence(err, "Failed to add topping")
	}
	return &topping, nil
}

// Quote prices a cart from catalog data and derives the nutrition of each
// line. Nothing is persisted.
func (s *CatalogService) Quote(ctx context.Context, lines []QuoteLine) (*Quote, error) {
	if len(lines) == 0 {
		return nil, Validation("Cart must contain at least one item")
	}

	ids := make([]uint, 0, len(lines))
	for i, line := range lines {
		if line.Quantity < 1 {
			return nil, Validation("items[%d]: quantity must be at least 1", i)
		}
		if err := s.options.ValidateCustomization(line.Customization); err != nil {
			return nil, err
		}
		ids = append(ids, line.MenuItemID)
	}

	var menuItems []models.MenuItem
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&menuItems).Error; err != nil {
		return nil, Persistence(err, "Failed to load menu items")
	}
	menu := make(map[uint]models.MenuItem, len(menuItems))
	for _, m := range menuItems {
		menu[m.ID] = m
	}

	var toppingRows []models.Topping
	if err := s.db.WithContext(ctx).Find(&toppingRows).Error; err != nil {
		return nil, Persistence(err, "Failed to load toppings")
	}
	toppings := make(map[string]models.Topping, len(toppingRows))
	for _, t := range toppingRows {
		toppings[t.ID] = t
	}

	quote := &Quote{Lines: make([]QuotedLine, 0, len(lines))}
	prices := make([]decimal.Decimal, 0, len(lines))
	for i, line := range lines {
		item, ok := menu[line.MenuItemID]
		if !ok {
			return nil, NotFound("Menu item %d not found", line.MenuItemID)
		}
		selected := make([]models.Topping, 0, len(line.Customization.Toppings))
		for _, id := range line.Customization.Toppings {
			t, ok := toppings[id]
			if !ok {
				return nil, Validation("items[%d]: unknown topping %q", i, id)
			}
			selected = append(selected, t)
		}

		unit, err := s.pricing.UnitPrice(item, line.Customization, selected)
		if err != nil {
			return nil, err
		}
		linePrice, err := s.pricing.LinePrice(item, line.Customization, selected, line.Quantity)
		if err != nil {
			return nil, err
		}
		nutrition, err := s.nutrition.Compute(item, line.Customization, selected)
		if err != nil {
			return nil, err
		}

		if line.Customization.Toppings == nil {
			line.Customization.Toppings = []string{}
		}
		quote.Lines = append(quote.Lines, QuotedLine{
			MenuItemID:    item.ID,
			Name:          item.Name,
			Quantity:      line.Quantity,
			Customization: line.Customization,
			UnitPrice:     unit,
			LinePrice:     linePrice,
			Nutrition:     nutrition,
		})
		prices = append(prices, linePrice)
	}
	quote.Totals = s.pricing.OrderTotals(prices)
	return quote, nil
}

func (s *CatalogService) loadMenuItem(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("Menu item not found")
	}
	if err != nil {
		return nil, Persistence(err, "Failed to fetch menu item")
	}
	return &item, nil
}

func (s *CatalogService) attachImageURL(ctx context.Context, item *models.MenuItem) {
	if s.images == nil || item.ImageRef == "" {
		return
	}
	url, err := s.images.GetImageURL(ctx, item.ImageRef)
	if err != nil {
		s.logger.Warn("Failed to generate image URL", zap.Uint("menu_item_id", item.ID), zap.Error(err))
		return
	}
	item.ImageURL = &url
}

func validateMenuItem(input MenuItemInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return Validation("Menu item name is required")
	}
	if input.BasePrice.IsNegative() {
		return Validation("basePrice must not be negative")
	}
	if !input.Category.Valid() {
		return Validation("category must be one of milk-tea, fruit-tea, specialty")
	}
	if input.Calories < 0 || input.SugarGrams < 0 || input.ProteinGrams < 0 {
		return Validation("nutrition values must not be negative")
	}
	return nil
}

func applyMenuItem(item *models.MenuItem, input MenuItemInput) {
	item.Name = strings.TrimSpace(input.Name)
	item.Description = input.Description
	item.BasePrice = input.BasePrice
	item.Category = input.Category
	item.Calories = input.Calories
	item.SugarGrams = input.SugarGrams
	item.ProteinGrams = input.ProteinGrams
	if input.ImageRef != nil {
		item.ImageRef = *input.ImageRef
	}
}
