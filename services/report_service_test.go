package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/sipstation/bubble-tea-pos-api/models"
	"github.com/sipstation/bubble-tea-pos-api/testutil"
	"github.com/sipstation/bubble-tea-pos-api/utils"
)

var pacific = time.FixedZone("PST", -8*60*60)

func insertOrder(t *testing.T, db *gorm.DB, at time.Time, status models.OrderStatus, total string, items ...models.OrderItem) models.Order {
	t.Helper()
	order := models.Order{TotalPrice: dec(total), Status: status, CreatedAt: at.UTC(), Items: items}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func orderLine(menu models.MenuItem, qty int) models.OrderItem {
	return models.OrderItem{
		MenuItemID: menu.ID,
		ItemName:   menu.Name,
		Quantity:   qty,
		Size:       models.SizeMedium,
		SugarLevel: models.SugarNormal,
		IceLevel:   models.IceRegular,
		Price:      dec("5.00"),
	}
}

func newReportService(t *testing.T, db *gorm.DB, now time.Time) *ReportService {
	return NewReportService(db, 20, zaptest.NewLogger(t)).WithClock(func() time.Time { return now })
}

func TestSalesSummary(t *testing.T) {
	db := testutil.NewTestDB(t, false)
	ctx := context.Background()
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, pacific)

	insertOrder(t, db, day.Add(9*time.Hour), models.StatusCompleted, "10.00")
	insertOrder(t, db, day.Add(13*time.Hour), models.StatusPending, "5.50")
	insertOrder(t, db, day.AddDate(0, 0, 3), models.StatusCancelled, "4.25")

	service := newReportService(t, db, day)

	all, err := service.SalesSummary(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.TotalOrders)
	assert.True(t, all.TotalRevenue.Equal(dec("19.75")), "got %s", all.TotalRevenue)
	assert.True(t, all.AvgOrderValue.Equal(dec("6.58")), "got %s", all.AvgOrderValue)
	require.NotNil(t, all.FirstOrder)
	require.NotNil(t, all.LastOrder)
	assert.True(t, all.FirstOrder.Equal(day.Add(9*time.Hour)))
	assert.True(t, all.LastOrder.Equal(day.AddDate(0, 0, 3)))

	r := utils.DayRange(day)
	ranged, err := service.SalesSummary(ctx, &r)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ranged.TotalOrders)
	assert.True(t, ranged.TotalRevenue.Equal(dec("15.50")))
	assert.True(t, ranged.LastOrder.Equal(day.Add(13*time.Hour)))

	again, err := service.SalesSummary(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, all.TotalOrders, again.TotalOrders)
	assert.True(t, all.TotalRevenue.Equal(again.TotalRevenue), "reports are read-only")
}

func TestSalesSummary_Empty(t *testing.T) {
	db := testutil.NewTestDB(t, false)
	service := newReportService(t, db, time.Now())

	summary, err := service.SalesSummary(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalOrders)
	assert.True(t, summary.TotalRevenue.IsZero())
	assert.Nil(t, summary.FirstOrder)
	assert.Nil(t, summary.LastOrder)
}

func TestPopularItems_DefaultsToToday(t *testing.T) {
	db := testutil.NewTestDB(t, false)
	ctx := context.Background()
	taro := testutil.CreateMenuItem(t, db, "Taro Milk Tea", "5.00", models.CategoryMilkTea)
	mango := testutil.CreateMenuItem(t, db, "Mango Green Tea", "4.75", models.CategoryFruitTea)

	monday := time.Date(2024, 5, 13, 12, 0, 0, 0, pacific)
	tuesday := monday.AddDate(0, 0, 1)
	insertOrder(t, db, monday.Add(-11*time.Hour), models.StatusCompleted, "10.00", orderLine(taro, 2))
	insertOrder(t, db, monday.Add(11*time.Hour), models.StatusCompleted, "5.00", orderLine(taro, 1))
	insertOrder(t, db, tuesday.Add(-11*time.Hour), models.StatusCompleted, "4.75", orderLine(mango, 1))

	onMonday, err := newReportService(t, db, monday).PopularItems(ctx, nil)
	require.NoError(t, err)
	require.Len(t, onMonday, 1)
	assert.Equal(t, taro.ID, onMonday[0].MenuItemID)
	assert.Equal(t, "Taro Milk Tea", onMonday[0].Name)
	assert.Equal(t, int64(2), onMonday[0].TimesOrdered)
	assert.Equal(t, int64(3), onMonday[0].TotalQuantity)

	onTuesday, err := newReportService(t, db, tuesday).PopularItems(ctx, nil)
	require.NoError(t, err)
	require.Len(t, onTuesday, 1)
	assert.Equal(t, mango.ID, onTuesday[0].MenuItemID)

	r := utils.DateRange{Start: monday.AddDate(0, 0, -1), End: tuesday.AddDate(0, 0, 1)}
	both, err := newReportService(t, db, monday).PopularItems(ctx, &r)
	require.NoError(t, err)
	require.Len(t, both, 2)
	assert.Equal(t, taro.ID, both[0].MenuItemID, "ranked by times ordered")
}

func TestPopularItems_RespectsLimit(t *testing.T) {
	db := testutil.NewTestDB(t, false)
	now := time.Date(2024, 5, 13, 12, 0, 0, 0, pacific)
	for _, name := range []string{"A", "B", "C"} {
		item := testutil.CreateMenuItem(t, db, name, "4.00", models.CategorySpecialty)
		insertOrder(t, db, now, models.StatusPending, "4.00", orderLine(item, 1))
	}

	service := NewReportService(db, 2, zaptest.NewLogger(t)).WithClock(func() time.Time { return now })
	items, err := service.PopularItems(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestOrdersByStatus(t *testing.T) {
	db := testutil.NewTestDB(t, false)
	now := time.Date(2024, 5, 13, 12, 0, 0, 0, pacific)

	insertOrder(t, db, now, models.StatusCompleted, "5.00")
	insertOrder(t, db, now, models.StatusCompleted, "6.00")
	insertOrder(t, db, now, models.StatusPending, "4.00")
	insertOrder(t, db, now.AddDate(0, 0, -2), models.StatusCancelled, "9.00")

	service := newReportService(t, db, now)
	counts, err := service.OrdersByStatus(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, models.StatusCompleted, counts[0].Status)
	assert.Equal(t, int64(2), counts[0].Count)
	assert.True(t, counts[0].TotalValue.Equal(dec("11.00")))
	assert.Equal(t, models.StatusPending, counts[1].Status)

	r := utils.DateRange{Start: now.AddDate(0, 0, -7), End: now.AddDate(0, 0, 1)}
	week, err := service.OrdersByStatus(context.Background(), &r)
	require.NoError(t, err)
	assert.Len(t, week, 3)
}

func TestInventoryUsage_RequiresRange(t *testing.T) {
	db := testutil.NewTestDB(t, true)
	_, err := newReportService(t, db, time.Now()).InventoryUsage(context.Background(), nil)
	assert.True(t, IsKind(err, KindValidation))
}

func TestInventoryUsage_Detailed(t *testing.T) {
	db := testutil.NewTestDB(t, true)
	now := time.Date(2024, 5, 13, 12, 0, 0, 0, pacific)
	tea := testutil.CreateIngredient(t, db, "Tea", "100", "10")
	milk := testutil.CreateIngredient(t, db, "Milk", "100", "10")
	testutil.CreateIngredient(t, db, "Pudding", "10", "1")

	usage := []models.InventoryUsage{
		{InventoryID: tea.ID, QuantityUsed: dec("8"), UnitCost: dec("0.50"), UsedAt: now.UTC()},
		{InventoryID: tea.ID, QuantityUsed: dec("4"), UnitCost: dec("0.25"), UsedAt: now.Add(time.Hour).UTC()},
		{InventoryID: milk.ID, QuantityUsed: dec("2"), UnitCost: dec("0.10"), UsedAt: now.UTC()},
		{InventoryID: milk.ID, QuantityUsed: dec("50"), UnitCost: dec("1"), UsedAt: now.AddDate(0, 0, -3).UTC()},
	}
	require.NoError(t, db.Create(&usage).Error)

	r := utils.DayRange(now)
	report, err := newReportService(t, db, now).InventoryUsage(context.Background(), &r)
	require.NoError(t, err)
	assert.Equal(t, UsageReportDetailed, report.ReportType)
	assert.Nil(t, report.CurrentInventory)

	summary, ok := report.Summary.(DetailedUsageSummary)
	require.True(t, ok)
	assert.Equal(t, int64(2), summary.ItemsUsed)
	assert.True(t, summary.TotalCost.Round(4).Equal(dec("5.2")), "got %s", summary.TotalCost)
	assert.True(t, summary.TotalUnitsUsed.Equal(dec("14")))

	require.Len(t, report.Items, 3, "ingredients without usage are listed")
	assert.Equal(t, "Tea", report.Items[0].IngredientName)
	assert.Equal(t, int64(2), report.Items[0].UsageCount)
	assert.True(t, report.Items[0].TotalUsed.Equal(dec("12")))
	assert.True(t, report.Items[0].TotalCost.Equal(dec("5")))
	assert.True(t, report.Items[0].AvgUnitCost.Equal(dec("0.375")))
	assert.Equal(t, "Milk", report.Items[1].IngredientName)
	assert.Equal(t, "Pudding", report.Items[2].IngredientName)
	assert.Equal(t, int64(0), report.Items[2].UsageCount)
	assert.True(t, report.Items[2].TotalUsed.IsZero())
}

func TestInventoryUsage_BasicWithoutLedger(t *testing.T) {
	db := testutil.NewTestDB(t, false)
	now := time.Date(2024, 5, 13, 12, 0, 0, 0, pacific)
	testutil.CreateIngredient(t, db, "Tea", "100", "10")
	testutil.CreateIngredient(t, db, "Boba", "3", "10")
	insertOrder(t, db, now, models.StatusCompleted, "7.25")
	insertOrder(t, db, now.AddDate(0, 0, -5), models.StatusCompleted, "3.00")

	r := utils.DayRange(now)
	report, err := newReportService(t, db, now).InventoryUsage(context.Background(), &r)
	require.NoError(t, err)
	assert.Equal(t, UsageReportBasic, report.ReportType)
	assert.Nil(t, report.Items)

	summary, ok := report.Summary.(BasicUsageSummary)
	require.True(t, ok)
	assert.Equal(t, int64(1), summary.TotalOrders)
	assert.True(t, summary.TotalRevenue.Equal(dec("7.25")))
	assert.Equal(t, BasicUsageMessage, summary.Message)

	require.Len(t, report.CurrentInventory, 2)
	assert.Equal(t, "Boba", report.CurrentInventory[0].IngredientName)
}
