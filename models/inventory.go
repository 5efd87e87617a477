package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is a named ingredient stock level. Quantity changes made by
// order fulfillment are always relative to the stored value.
type InventoryItem struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	IngredientName string          `gorm:"uniqueIndex;not null" json:"ingredient_name"`
	Quantity       decimal.Decimal `gorm:"type:numeric(12,3);not null;default:0" json:"quantity"`
	Unit           string          `gorm:"not null;default:'units'" json:"unit"`
	MinQuantity    decimal.Decimal `gorm:"type:numeric(12,3);not null;default:0" json:"min_quantity"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the InventoryItem model
func (InventoryItem) TableName() string {
	return "inventory"
}

// LowStock reports whether the quantity has reached the alert threshold
func (i InventoryItem) LowStock() bool {
	return i.Quantity.LessThanOrEqual(i.MinQuantity)
}

// MarshalJSON adds the derived low_stock flag to the stored columns
func (i InventoryItem) MarshalJSON() ([]byte, error) {
	type columns InventoryItem
	return json.Marshal(struct {
		columns
		LowStock bool `json:"low_stock"`
	}{columns(i), i.LowStock()})
}

// InventoryUsage is an append-only usage ledger entry. The table is optional;
// when it is not provisioned usage tracking is reported as unavailable.
type InventoryUsage struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	InventoryID  uint            `gorm:"not null;index" json:"inventory_id"`
	QuantityUsed decimal.Decimal `gorm:"type:numeric(12,3);not null" json:"quantity_used"`
	UnitCost     decimal.Decimal `gorm:"type:numeric(10,4);not null;default:0" json:"unit_cost"`
	OrderID      *uint           `gorm:"index" json:"order_id"`
	UsedAt       time.Time       `gorm:"autoCreateTime;index" json:"used_at"`
	Notes        *string         `json:"notes"`
	CreatedBy    *string         `json:"created_by"`
}

// TableName specifies the table name for the InventoryUsage model
func (InventoryUsage) TableName() string {
	return "inventory_usage"
}
