package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sipstation/bubble-tea-pos-api/models"
)

// Defaults applied to new inventory items
var (
	DefaultInventoryUnit        = "units"
	DefaultInventoryMinQuantity = decimal.NewFromInt(10)
)

// orderEngineActor is recorded as created_by on usage rows written by orders
const orderEngineActor = "order-engine"

// AddInventoryInput describes a new ingredient
type AddInventoryInput struct {
	IngredientName string
	Quantity       decimal.Decimal
	Unit           string
	MinQuantity    *decimal.Decimal
}

// UpdateInventoryInput is a partial update; nil fields keep their value
type UpdateInventoryInput struct {
	IngredientName *string
	Quantity       *decimal.Decimal
	Unit           *string
	MinQuantity    *decimal.Decimal
}

// RecordUsageInput is one manual usage ledger entry
type RecordUsageInput struct {
	InventoryID  uint
	QuantityUsed decimal.Decimal
	UnitCost     decimal.Decimal
	OrderID      *uint
	Notes        *string
	CreatedBy    *string
}

// InventoryService manages ingredient stock levels and the usage ledger
type InventoryService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewInventoryService creates an inventory service
func NewInventoryService(db *gorm.DB, logger *zap.Logger) *InventoryService {
	return &InventoryService{db: db, logger: logger.Named("inventory")}
}

// List returns every ingredient ordered by name
func (s *InventoryService) List(ctx context.Context) ([]models.InventoryItem, error) {
	items := []models.InventoryItem{}
	if err := s.db.WithContext(ctx).Order("ingredient_name ASC").Find(&items).Error; err != nil {
		return nil, Persistence(err, "Failed to fetch inventory")
	}
	return items, nil
}

// Get returns one ingredient
func (s *InventoryService) Get(ctx context.Context, id uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("Inventory item not found")
	}
	if err != nil {
		return nil, Persistence(err, "Failed to fetch inventory item")
	}
	return &item, nil
}

// Add creates an ingredient. Names are unique and compared exactly.
func (s *InventoryService) Add(ctx context.Context, input AddInventoryInput) (*models.InventoryItem, error) {
	name := strings.TrimSpace(input.IngredientName)
	if name == "" {
		return nil, Validation("Ingredient name is required")
	}
	if input.Quantity.IsNegative() {
		return nil, Validation("quantity must not be negative")
	}

	item := models.InventoryItem{
		IngredientName: name,
		Quantity:       input.Quantity,
		Unit:           input.Unit,
		MinQuantity:    DefaultInventoryMinQuantity,
	}
	if item.Unit == "" {
		item.Unit = DefaultInventoryUnit
	}
	if input.MinQuantity != nil {
		if input.MinQuantity.IsNegative() {
			return nil, Validation("min_quantity must not be negative")
		}
		item.MinQuantity = *input.MinQuantity
	}

	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("Ingredient already exists")
		}
		return nil, Persistence(err, "Failed to add inventory item")
	}

	s.logger.Info("Inventory item added", zap.String("ingredient", item.IngredientName))
	return &item, nil
}

// Update applies the provided fields and keeps the rest
func (s *InventoryService) Update(ctx context.Context, id uint, input UpdateInventoryInput) (*models.InventoryItem, error) {
	updates := map[string]interface{}{}
	if input.IngredientName != nil {
		name := strings.TrimSpace(*input.IngredientName)
		if name == "" {
			return nil, Validation("Ingredient name cannot be empty")
		}
		updates["ingredient_name"] = name
	}
	if input.Quantity != nil {
		updates["quantity"] = *input.Quantity
	}
	if input.Unit != nil {
		updates["unit"] = *input.Unit
	}
	if input.MinQuantity != nil {
		if input.MinQuantity.IsNegative() {
			return nil, Validation("min_quantity must not be negative")
		}
		updates["min_quantity"] = *input.MinQuantity
	}

	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&models.InventoryItem{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return nil, Conflict("Ingredient already exists")
			}
			return nil, Persistence(res.Error, "Failed to update inventory item")
		}
		if res.RowsAffected == 0 {
			return nil, NotFound("Inventory item not found")
		}
	}

	return s.Get(ctx, id)
}

// Delete removes an ingredient and returns its name
func (s *InventoryService) Delete(ctx context.Context, id uint) (string, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	res := s.db.WithContext(ctx).Delete(&models.InventoryItem{}, id)
	if res.Error != nil {
		return "", Persistence(res.Error, "Failed to delete inventory item")
	}
	if res.RowsAffected == 0 {
		return "", NotFound("Inventory item not found")
	}

	s.logger.Info("Inventory item deleted", zap.String("ingredient", item.IngredientName))
	return item.IngredientName, nil
}

// ListLowStock returns ingredients at or below their threshold, most
// critical first
func (s *InventoryService) ListLowStock(ctx context.Context) ([]models.InventoryItem, error) {
	items := []models.InventoryItem{}
	err := s.db.WithContext(ctx).
		Where("quantity <= min_quantity").
		Order("(quantity - min_quantity) ASC, ingredient_name ASC").
		Find(&items).Error
	if err != nil {
		return nil, Persistence(err, "Failed to fetch low stock items")
	}
	return items, nil
}

// UsageTrackingEnabled reports whether the usage ledger table is provisioned
func (s *InventoryService) UsageTrackingEnabled(ctx context.Context) bool {
	return s.db.WithContext(ctx).Migrator().HasTable(&models.InventoryUsage{})
}

// RecordUsage appends a manual entry to the usage ledger. Stock levels are
// not changed.
func (s *InventoryService) RecordUsage(ctx context.Context, input RecordUsageInput) (*models.InventoryUsage, error) {
	if input.InventoryID == 0 || !input.QuantityUsed.IsPositive() {
		return nil, Validation("Inventory ID and quantity used are required")
	}
	if input.UnitCost.IsNegative() {
		return nil, Validation("unit_cost must not be negative")
	}
	if !s.UsageTrackingEnabled(ctx) {
		return nil, FeatureUnavailable("Inventory usage tracking not enabled")
	}
	if _, err := s.Get(ctx, input.InventoryID); err != nil {
		return nil, err
	}

	usage := models.InventoryUsage{
		InventoryID:  input.InventoryID,
		QuantityUsed: input.QuantityUsed,
		UnitCost:     input.UnitCost,
		OrderID:      input.OrderID,
		Notes:        input.Notes,
		CreatedBy:    input.CreatedBy,
	}
	if err := s.db.WithContext(ctx).Create(&usage).Error; err != nil {
		return nil, Persistence(err, "Failed to record inventory usage")
	}
	return &usage, nil
}

// Deduct subtracts d.Amount from the named ingredient inside tx, but only if
// the current stock covers it. A missing ingredient or short stock is
// reported through the returned status, never as an error.
func (s *InventoryService) Deduct(tx *gorm.DB, orderID uint, d Deduction, recordUsage bool) (DeductionStatus, error) {
	var item models.InventoryItem
	err := tx.Select("id").Where("ingredient_name = ?", d.Ingredient).Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DeductionSkippedMissing, nil
	}
	if err != nil {
		return "", err
	}

	res := tx.Model(&models.InventoryItem{}).
		Where("id = ? AND quantity >= ?", item.ID, d.Amount).
		Update("quantity", gorm.Expr("quantity - ?", d.Amount))
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		s.logger.Warn("Insufficient stock, deduction skipped",
			zap.Uint("order_id", orderID),
			zap.String("ingredient", d.Ingredient),
			zap.String("amount", d.Amount.String()),
		)
		return DeductionSkippedInsufficient, nil
	}

	if recordUsage {
		actor := orderEngineActor
		usage := models.InventoryUsage{
			InventoryID:  item.ID,
			QuantityUsed: d.Amount,
			UnitCost:     decimal.Zero,
			OrderID:      &orderID,
			CreatedBy:    &actor,
		}
		if err := tx.Create(&usage).Error; err != nil {
			return "", err
		}
	}
	return DeductionApplied, nil
}
