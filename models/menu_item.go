package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups menu items on the kiosk
type Category string

const (
	CategoryMilkTea   Category = "milk-tea"
	CategoryFruitTea  Category = "fruit-tea"
	CategorySpecialty Category = "specialty"
)

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	switch c {
	case CategoryMilkTea, CategoryFruitTea, CategorySpecialty:
		return true
	}
	return false
}

// MenuItem is a drink on the menu. Nutrition values describe a medium drink
// with normal sugar.
type MenuItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"not null" json:"name"`
	Description  string          `json:"description"`
	BasePrice    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"basePrice"`
	ImageRef     string          `json:"imageRef"`
	ImageURL     *string         `gorm:"-" json:"imageUrl,omitempty"` // computed, presigned URL for ImageRef
	Category     Category        `gorm:"not null" json:"category"`
	Calories     float64         `gorm:"not null;default:0" json:"calories"`
	SugarGrams   float64         `gorm:"not null;default:0" json:"sugar"`
	ProteinGrams float64         `gorm:"not null;default:0" json:"protein"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// TableName specifies the table name for the MenuItem model
func (MenuItem) TableName() string {
	return "menu_items"
}

// Topping is an add-in that can be selected for any drink
type Topping struct {
	ID    string          `gorm:"primaryKey;size:64" json:"id"` // slug, e.g. "boba"
	Name  string          `gorm:"not null" json:"name"`
	Price decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
}

// TableName specifies the table name for the Topping model
func (Topping) TableName() string {
	return "toppings"
}
