package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sipstation/bubble-tea-pos-api/models"
)

// priceTolerance is the largest accepted difference between a submitted
// price and the catalog price when prices are enforced.
var priceTolerance = decimal.New(1, -2)

// Deductor applies one planned deduction inside an open order transaction
type Deductor interface {
	Deduct(tx *gorm.DB, orderID uint, d Deduction, recordUsage bool) (DeductionStatus, error)
	UsageTrackingEnabled(ctx context.Context) bool
}

// OrderItemInput is one submitted cart line
type OrderItemInput struct {
	MenuItemID uint
	ItemName   string
	Quantity   int
	Size       models.Size
	SugarLevel models.SugarLevel
	IceLevel   models.IceLevel
	Toppings   []string
	Price      decimal.Decimal
}

// orderItem builds the line row that will be stored for in
func (in OrderItemInput) orderItem(orderID uint) models.OrderItem {
	toppings := in.Toppings
	if toppings == nil {
		toppings = []string{}
	}
	return models.OrderItem{
		OrderID:    orderID,
		MenuItemID: in.MenuItemID,
		ItemName:   in.ItemName,
		Quantity:   in.Quantity,
		Size:       in.Size,
		SugarLevel: in.SugarLevel,
		IceLevel:   in.IceLevel,
		Toppings:   datatypes.JSONSlice[string](toppings),
		Price:      in.Price,
	}
}

// CreateOrderInput is a submitted cart
type CreateOrderInput struct {
	Items      []OrderItemInput
	TotalPrice decimal.Decimal
}

// OrderResult is a created order plus every deduction that was not applied
type OrderResult struct {
	Order    *models.Order      `json:"order"`
	Warnings []DeductionOutcome `json:"warnings"`
}

// OrderServiceConfig carries the order limits read from configuration
type OrderServiceConfig struct {
	MaxItems     int
	TxTimeout    time.Duration
	EnforcePrice bool
}

// OrderService composes, persists and manages orders
type OrderService struct {
	db       *gorm.DB
	cfg      OrderServiceConfig
	planner  *DeductionPlanner
	pricing  *PricingEngine
	deductor Deductor
	logger   *zap.Logger
}

// NewOrderService creates an order service
func NewOrderService(db *gorm.DB, cfg OrderServiceConfig, options *OptionTable, deductor Deductor, logger *zap.Logger) *OrderService {
	return &OrderService{
		db:       db,
		cfg:      cfg,
		planner:  NewDeductionPlanner(options),
		pricing:  NewPricingEngine(options),
		deductor: deductor,
		logger:   logger.Named("orders"),
	}
}

// Create validates the cart and then, in one transaction, inserts the order
// header, each line and that line's inventory deductions. Any failure rolls
// the whole order back.
func (s *OrderService) Create(ctx context.Context, input CreateOrderInput) (*OrderResult, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}
	if s.cfg.EnforcePrice {
		if err := s.checkPrices(ctx, input); err != nil {
			return nil, err
		}
	}
	recordUsage := s.deductor.UsageTrackingEnabled(ctx)

	if s.cfg.TxTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.TxTimeout)
		defer cancel()
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, Persistence(tx.Error, "Failed to start order transaction")
	}

	result, err := s.createInTx(tx, input, recordUsage)
	if err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			s.logger.Error("Order rollback failed", zap.Error(rbErr), zap.NamedError("cause", err))
		}
		s.logger.Warn("Order creation failed", zap.Error(err))
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return nil, svcErr
		}
		return nil, Persistence(err, "Failed to create order")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, Persistence(err, "Failed to commit order")
	}

	s.logger.Info("Order created",
		zap.Uint("order_id", result.Order.ID),
		zap.Int("items", len(result.Order.Items)),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

func (s *OrderService) createInTx(tx *gorm.DB, input CreateOrderInput, recordUsage bool) (*OrderResult, error) {
	order := models.Order{
		TotalPrice: input.TotalPrice,
		Status:     models.StatusPending,
	}
	if err := tx.Omit("Items").Create(&order).Error; err != nil {
		return nil, err
	}

	warnings := []DeductionOutcome{}
	order.Items = make([]models.OrderItem, 0, len(input.Items))
	for i, in := range input.Items {
		item := in.orderItem(order.ID)
		if err := tx.Create(&item).Error; err != nil {
			return nil, err
		}

		for _, d := range s.planner.Plan(item) {
			status, err := s.deductor.Deduct(tx, order.ID, d, recordUsage)
			if err != nil {
				return nil, err
			}
			if status != DeductionApplied {
				warnings = append(warnings, DeductionOutcome{
					OrderItemIndex: i,
					Ingredient:     d.Ingredient,
					Amount:         d.Amount,
					Status:         status,
				})
			}
		}
		order.Items = append(order.Items, item)
	}

	return &OrderResult{Order: &order, Warnings: warnings}, nil
}

func (s *OrderService) validate(input CreateOrderInput) error {
	if len(input.Items) == 0 {
		return Validation("Order must contain at least one item")
	}
	if s.cfg.MaxItems > 0 && len(input.Items) > s.cfg.MaxItems {
		return Validation("Order cannot contain more than %d items", s.cfg.MaxItems)
	}
	if input.TotalPrice.IsNegative() {
		return Validation("totalPrice must not be negative")
	}

	for i, item := range input.Items {
		if item.MenuItemID == 0 {
			return Validation("items[%d]: menuItemId is required", i)
		}
		if item.ItemName == "" {
			return Validation("items[%d]: itemName is required", i)
		}
		if item.Quantity < 1 {
			return Validation("items[%d]: quantity must be at least 1", i)
		}
		if !item.Size.Valid() {
			return Validation("items[%d]: invalid size %q", i, item.Size)
		}
		if !item.SugarLevel.Valid() {
			return Validation("items[%d]: invalid sugarLevel %q", i, item.SugarLevel)
		}
		if !item.IceLevel.Valid() {
			return Validation("items[%d]: invalid iceLevel %q", i, item.IceLevel)
		}
		if item.Price.IsNegative() {
			return Validation("items[%d]: price must not be negative", i)
		}
	}
	return nil
}

// checkPrices recomputes every line from the catalog and rejects the order
// when a submitted line or the total is off by more than a cent.
func (s *OrderService) checkPrices(ctx context.Context, input CreateOrderInput) error {
	menuIDs := make([]uint, 0, len(input.Items))
	for _, item := range input.Items {
		menuIDs = append(menuIDs, item.MenuItemID)
	}

	var menuItems []models.MenuItem
	if err := s.db.WithContext(ctx).Where("id IN ?", menuIDs).Find(&menuItems).Error; err != nil {
		return Persistence(err, "Failed to load menu items")
	}
	menu := make(map[uint]models.MenuItem, len(menuItems))
	for _, m := range menuItems {
		menu[m.ID] = m
	}

	var toppingRows []models.Topping
	if err := s.db.WithContext(ctx).Find(&toppingRows).Error; err != nil {
		return Persistence(err, "Failed to load toppings")
	}
	toppings := make(map[string]models.Topping, len(toppingRows))
	for _, t := range toppingRows {
		toppings[t.ID] = t
	}

	lines := make([]decimal.Decimal, 0, len(input.Items))
	for i, in := range input.Items {
		item := in.orderItem(0)
		c := item.Customization()
		menuItem, ok := menu[item.MenuItemID]
		if !ok {
			return Validation("items[%d]: menu item %d does not exist", i, item.MenuItemID)
		}
		selected := make([]models.Topping, 0, len(c.Toppings))
		for _, id := range c.Toppings {
			t, ok := toppings[id]
			if !ok {
				return Validation("items[%d]: unknown topping %q", i, id)
			}
			selected = append(selected, t)
		}

		expected, err := s.pricing.LinePrice(menuItem, c, selected, item.Quantity)
		if err != nil {
			return err
		}
		if expected.Sub(item.Price).Abs().GreaterThan(priceTolerance) {
			return Validation("items[%d]: price %s does not match %s", i, item.Price.StringFixed(2), expected.StringFixed(2))
		}
		lines = append(lines, expected)
	}

	totals := s.pricing.OrderTotals(lines)
	if totals.Total.Sub(input.TotalPrice).Abs().GreaterThan(priceTolerance) {
		return Validation("totalPrice %s does not match %s", input.TotalPrice.StringFixed(2), totals.Total.StringFixed(2))
	}
	return nil
}

// List returns orders newest first, optionally filtered by status
func (s *OrderService) List(ctx context.Context, status *models.OrderStatus) ([]models.Order, error) {
	query := s.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
	if status != nil {
		if !status.Valid() {
			return nil, Validation("Invalid status. Must be one of: %v", models.OrderStatuses)
		}
		query = query.Where("status = ?", *status)
	}

	orders := []models.Order{}
	if err := query.Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, Persistence(err, "Failed to retrieve orders")
	}
	for i := range orders {
		normalizeItems(&orders[i])
	}
	return orders, nil
}

// Get returns one order with its items in submission order
func (s *OrderService) Get(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("Order not found")
	}
	if err != nil {
		return nil, Persistence(err, "Failed to retrieve order")
	}
	normalizeItems(&order)
	return &order, nil
}

// UpdateStatus sets any valid status regardless of the current one
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, Validation("Invalid status. Must be one of: %v", models.OrderStatuses)
	}

	res := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, Persistence(res.Error, "Failed to update order status")
	}
	if res.RowsAffected == 0 {
		return nil, NotFound("Order not found")
	}

	s.logger.Info("Order status updated", zap.Uint("order_id", id), zap.String("status", string(status)))
	return s.Get(ctx, id)
}

// Delete removes the order's items and then the order. Inventory is not
// restored.
func (s *OrderService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Order{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return NotFound("Order not found")
		}
		return nil
	})
	if err != nil {
		if IsKind(err, KindNotFound) {
			return err
		}
		return Persistence(err, "Failed to delete order")
	}

	s.logger.Info("Order deleted", zap.Uint("order_id", id))
	return nil
}

func normalizeItems(order *models.Order) {
	if order.Items == nil {
		order.Items = []models.OrderItem{}
	}
}
