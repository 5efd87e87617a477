package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sipstation/bubble-tea-pos-api/models"
	"github.com/sipstation/bubble-tea-pos-api/utils"
)

// Report types returned by the inventory usage report
const (
	UsageReportDetailed = "detailed"
	UsageReportBasic    = "basic"
)

// BasicUsageMessage flags a report built without the usage ledger
const BasicUsageMessage = "Detailed inventory usage tracking not yet implemented"

// SalesSummary aggregates orders placed in a range
type SalesSummary struct {
	TotalOrders   int64           `json:"totalOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	AvgOrderValue decimal.Decimal `json:"avgOrderValue"`
	FirstOrder    *time.Time      `json:"firstOrder"`
	LastOrder     *time.Time      `json:"lastOrder"`
}

// PopularItem is one row of the popularity ranking
type PopularItem struct {
	MenuItemID    uint   `json:"menuItemId"`
	Name          string `json:"name"`
	TimesOrdered  int64  `json:"timesOrdered"`
	TotalQuantity int64  `json:"totalQuantity"`
}

// StatusCount is the number and value of orders in one status
type StatusCount struct {
	Status     models.OrderStatus `json:"status"`
	Count      int64              `json:"count"`
	TotalValue decimal.Decimal    `json:"totalValue"`
}

// ReportDateRange echoes the window a report covers
type ReportDateRange struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// UsageReport is either the detailed ledger report or the basic fallback.
// Summary holds a DetailedUsageSummary or a BasicUsageSummary.
type UsageReport struct {
	ReportType       string                 `json:"reportType"`
	DateRange        ReportDateRange        `json:"dateRange"`
	Summary          interface{}            `json:"summary"`
	Items            []UsageReportItem      `json:"items,omitempty"`
	CurrentInventory []models.InventoryItem `json:"currentInventory,omitempty"`
}

// DetailedUsageSummary totals the usage ledger over the range
type DetailedUsageSummary struct {
	ItemsUsed      int64           `json:"itemsUsed"`
	TotalCost      decimal.Decimal `json:"totalCost"`
	TotalUnitsUsed decimal.Decimal `json:"totalUnitsUsed"`
}

// BasicUsageSummary is derived from orders when there is no usage ledger
type BasicUsageSummary struct {
	TotalOrders  int64           `json:"totalOrders"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	Message      string          `json:"message"`
}

// UsageReportItem is the usage of one ingredient. Ingredients without usage
// in the range are included with zeros.
type UsageReportItem struct {
	IngredientName string          `json:"ingredientName"`
	Unit           string          `json:"unit"`
	TotalUsed      decimal.Decimal `json:"totalUsed"`
	AvgUnitCost    decimal.Decimal `json:"avgUnitCost"`
	TotalCost      decimal.Decimal `json:"totalCost"`
	UsageCount     int64           `json:"usageCount"`
}

// ReportService runs read-only aggregations over orders and inventory
type ReportService struct {
	db           *gorm.DB
	popularLimit int
	now          func() time.Time
	logger       *zap.Logger
}

// NewReportService creates a report service. popularLimit caps the
// popularity ranking.
func NewReportService(db *gorm.DB, popularLimit int, logger *zap.Logger) *ReportService {
	return &ReportService{
		db:           db,
		popularLimit: popularLimit,
		now:          time.Now,
		logger:       logger.Named("reports"),
	}
}

// WithClock replaces the clock used for "today" defaults
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// Location is the zone used to interpret date-only parameters
func (s *ReportService) Location() *time.Location {
	return s.now().Location()
}

func (s *ReportService) today() utils.DateRange {
	return utils.DayRange(s.now())
}

// SalesSummary covers all orders when r is nil
func (s *ReportService) SalesSummary(ctx context.Context, r *utils.DateRange) (*SalesSummary, error) {
	scoped := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Order{})
		if r != nil {
			u := r.UTC()
			q = q.Where("created_at >= ? AND created_at <= ?", u.Start, u.End)
		}
		return q
	}

	var summary SalesSummary
	err := scoped().
		Select("COUNT(*) AS total_orders, COALESCE(SUM(total_price), 0) AS total_revenue, COALESCE(AVG(total_price), 0) AS avg_order_value").
		Scan(&summary).Error
	if err != nil {
		return nil, Persistence(err, "Failed to generate sales summary")
	}
	summary.TotalRevenue = summary.TotalRevenue.Round(2)
	summary.AvgOrderValue = summary.AvgOrderValue.Round(2)

	if summary.TotalOrders > 0 {
		var first, last models.Order
		if err := scoped().Order("created_at ASC, id ASC").Take(&first).Error; err != nil {
			return nil, Persistence(err, "Failed to generate sales summary")
		}
		if err := scoped().Order("created_at DESC, id DESC").Take(&last).Error; err != nil {
			return nil, Persistence(err, "Failed to generate sales summary")
		}
		summary.FirstOrder = &first.CreatedAt
		summary.LastOrder = &last.CreatedAt
	}
	return &summary, nil
}

// PopularItems ranks menu items by how many lines ordered them. A nil range
// means today.
func (s *ReportService) PopularItems(ctx context.Context, r *utils.DateRange) ([]PopularItem, error) {
	window := s.today()
	if r != nil {
		window = *r
	}
	window = window.UTC()

	items := []PopularItem{}
	err := s.db.WithContext(ctx).
		Table("order_items AS oi").
		Select("mi.id AS menu_item_id, mi.name AS name, COUNT(oi.id) AS times_ordered, COALESCE(SUM(oi.quantity), 0) AS total_quantity").
		Joins("JOIN menu_items mi ON oi.menu_item_id = mi.id").
		Joins("JOIN orders o ON oi.order_id = o.id").
		Where("o.created_at >= ? AND o.created_at <= ?", window.Start, window.End).
		Group("mi.id, mi.name").
		Order("times_ordered DESC, mi.id ASC").
		Limit(s.popularLimit).
		Scan(&items).Error
	if err != nil {
		return nil, Persistence(err, "Failed to generate popular drinks report")
	}
	return items, nil
}

// OrdersByStatus groups orders by status, largest group first. A nil range
// means today.
func (s *ReportService) OrdersByStatus(ctx context.Context, r *utils.DateRange) ([]StatusCount, error) {
	window := s.today()
	if r != nil {
		window = *r
	}
	window = window.UTC()

	counts := []StatusCount{}
	err := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_price), 0) AS total_value").
		Where("created_at >= ? AND created_at <= ?", window.Start, window.End).
		Group("status").
		Order("count DESC, status ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, Persistence(err, "Failed to generate orders-by-status report")
	}
	return counts, nil
}

// InventoryUsage reports ingredient usage over r, which is required. Without
// a usage ledger it falls back to order totals and a stock snapshot.
func (s *ReportService) InventoryUsage(ctx context.Context, r *utils.DateRange) (*UsageReport, error) {
	if r == nil {
		return nil, Validation("Start date and end date are required")
	}
	window := r.UTC()
	report := &UsageReport{DateRange: ReportDateRange{StartDate: r.Start, EndDate: r.End}}

	if !s.db.WithContext(ctx).Migrator().HasTable(&models.InventoryUsage{}) {
		return s.basicUsage(ctx, window, report)
	}

	items := []UsageReportItem{}
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			i.ingredient_name,
			i.unit,
			COALESCE(SUM(iu.quantity_used), 0) AS total_used,
			COALESCE(AVG(iu.unit_cost), 0) AS avg_unit_cost,
			COALESCE(SUM(iu.quantity_used * iu.unit_cost), 0) AS total_cost,
			COUNT(iu.id) AS usage_count
		FROM inventory i
		LEFT JOIN inventory_usage iu ON i.id = iu.inventory_id
			AND iu.used_at >= ?
			AND iu.used_at <= ?
		GROUP BY i.id, i.ingredient_name, i.unit
		ORDER BY total_cost DESC, i.ingredient_name ASC`,
		window.Start, window.End,
	).Scan(&items).Error
	if err != nil {
		return nil, Persistence(err, "Failed to generate inventory usage report")
	}

	var summary DetailedUsageSummary
	err = s.db.WithContext(ctx).
		Model(&models.InventoryUsage{}).
		Select("COUNT(DISTINCT inventory_id) AS items_used, COALESCE(SUM(quantity_used * unit_cost), 0) AS total_cost, COALESCE(SUM(quantity_used), 0) AS total_units_used").
		Where("used_at >= ? AND used_at <= ?", window.Start, window.End).
		Scan(&summary).Error
	if err != nil {
		return nil, Persistence(err, "Failed to generate inventory usage report")
	}

	report.ReportType = UsageReportDetailed
	report.Summary = summary
	report.Items = items
	return report, nil
}

func (s *ReportService) basicUsage(ctx context.Context, window utils.DateRange, report *UsageReport) (*UsageReport, error) {
	var totals struct {
		TotalOrders  int64
		TotalRevenue decimal.Decimal
	}
	err := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COUNT(*) AS total_orders, COALESCE(SUM(total_price), 0) AS total_revenue").
		Where("created_at >= ? AND created_at <= ?", window.Start, window.End).
		Scan(&totals).Error
	if err != nil {
		return nil, Persistence(err, "Failed to generate inventory usage report")
	}

	snapshot := []models.InventoryItem{}
	if err := s.db.WithContext(ctx).Order("ingredient_name ASC").Find(&snapshot).Error; err != nil {
		return nil, Persistence(err, "Failed to generate inventory usage report")
	}

	report.ReportType = UsageReportBasic
	report.Summary = BasicUsageSummary{
		TotalOrders:  totals.TotalOrders,
		TotalRevenue: totals.TotalRevenue.Round(2),
		Message:      BasicUsageMessage,
	}
	report.CurrentInventory = snapshot
	return report, nil
}
