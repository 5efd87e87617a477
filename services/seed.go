package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sipstation/bubble-tea-pos-api/models"
)

// SeedOptions controls what Seed inserts into empty tables
type SeedOptions struct {
	InitialManager string
	SampleMenu     bool
}

// DefaultIngredients is the stock the deduction model draws from
func DefaultIngredients() []models.InventoryItem {
	row := func(name, qty, unit, min string) models.InventoryItem {
		return models.InventoryItem{
			IngredientName: name,
			Quantity:       decimal.RequireFromString(qty),
			Unit:           unit,
			MinQuantity:    decimal.RequireFromString(min),
		}
	}
	return []models.InventoryItem{
		row(IngredientTea, "1000", "oz", "100"),
		row(IngredientMilk, "500", "oz", "50"),
		row(IngredientSugar, "200", "oz", "20"),
		row(IngredientIce, "1000", "oz", "100"),
		row(IngredientCups, "500", "units", "50"),
		row(IngredientStraw, "500", "units", "50"),
		row("Boba", "200", "units", "20"),
		row("Lychee Jelly", "100", "units", "10"),
		row("Pudding", "100", "units", "10"),
	}
}

// DefaultToppings is the topping catalog
func DefaultToppings() []models.Topping {
	return []models.Topping{
		{ID: "boba", Name: "Boba", Price: decimal.RequireFromString("0.75")},
		{ID: "lychee-jelly", Name: "Lychee Jelly", Price: decimal.RequireFromString("0.75")},
		{ID: "pudding", Name: "Pudding", Price: decimal.RequireFromString("1.00")},
	}
}

// SampleMenu is a starter menu for development databases
func SampleMenu() []models.MenuItem {
	item := func(name, desc, price string, cat models.Category, cal, sugar, protein float64) models.MenuItem {
		return models.MenuItem{
			Name:         name,
			Description:  desc,
			BasePrice:    decimal.RequireFromString(price),
			Category:     cat,
			Calories:     cal,
			SugarGrams:   sugar,
			ProteinGrams: protein,
		}
	}
	return []models.MenuItem{
		item("Classic Milk Tea", "Black tea with creamy milk", "4.50", models.CategoryMilkTea, 240, 30, 3),
		item("Taro Milk Tea", "Sweet taro root blended with milk tea", "5.00", models.CategoryMilkTea, 280, 34, 3.5),
		item("Brown Sugar Milk Tea", "Caramelized brown sugar syrup and fresh milk", "5.50", models.CategoryMilkTea, 320, 42, 4),
		item("Mango Green Tea", "Jasmine green tea with mango", "4.75", models.CategoryFruitTea, 180, 32, 0.5),
		item("Passion Fruit Tea", "Black tea shaken with passion fruit", "4.75", models.CategoryFruitTea, 170, 30, 0.3),
		item("Matcha Latte", "Stone-ground matcha with milk", "5.25", models.CategorySpecialty, 220, 24, 6),
	}
}

// Seed fills empty catalog, inventory and manager tables. Tables that
// already hold rows are left alone.
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions, logger *zap.Logger) error {
	logger = logger.Named("seed")
	db = db.WithContext(ctx)

	if err := seedIfEmpty(db, &models.InventoryItem{}, DefaultIngredients(), logger); err != nil {
		return err
	}
	if err := seedIfEmpty(db, &models.Topping{}, DefaultToppings(), logger); err != nil {
		return err
	}
	if opts.SampleMenu {
		if err := seedIfEmpty(db, &models.MenuItem{}, SampleMenu(), logger); err != nil {
			return err
		}
	}
	if opts.InitialManager != "" {
		managers := []models.Manager{{Email: NormalizeEmail(opts.InitialManager)}}
		if err := seedIfEmpty(db, &models.Manager{}, managers, logger); err != nil {
			return err
		}
	}
	return nil
}

func seedIfEmpty[T any](db *gorm.DB, model interface{}, rows []T, logger *zap.Logger) error {
	var count int64
	if err := db.Model(model).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count rows for seeding: %w", err)
	}
	if count > 0 {
		return nil
	}
	if err := db.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to seed %T: %w", model, err)
	}
	logger.Info("Seeded table", zap.String("model", fmt.Sprintf("%T", model)), zap.Int("rows", len(rows)))
	return nil
}
