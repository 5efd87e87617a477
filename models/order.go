package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every valid status. Any status may follow any other.
var OrderStatuses = []OrderStatus{StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled}

// Valid reports whether s is one of the enumerated statuses
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Order is a placed kiosk order. TotalPrice is the value submitted with the
// order and is never recomputed.
type Order struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"totalPrice"`
	Status     OrderStatus     `gorm:"not null;default:'pending';index" json:"status"`
	CreatedAt  time.Time       `gorm:"autoCreateTime;index" json:"createdAt"`
	Items      []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem is one customized drink line. ItemName is a snapshot taken when
// the order was placed so later menu edits do not change history.
type OrderItem struct {
	ID         uint                        `gorm:"primaryKey" json:"id"`
	OrderID    uint                        `gorm:"not null;index" json:"orderId"`
	MenuItemID uint                        `gorm:"not null;index" json:"menuItemId"` // weak reference, no foreign key
	ItemName   string                      `gorm:"not null" json:"itemName"`
	Quantity   int                         `gorm:"not null;check:quantity > 0" json:"quantity"`
	Size       Size                        `gorm:"not null" json:"size"`
	SugarLevel SugarLevel                  `gorm:"not null" json:"sugarLevel"`
	IceLevel   IceLevel                    `gorm:"not null;default:'regular'" json:"iceLevel"`
	Toppings   datatypes.JSONSlice[string] `json:"toppings"`
	Price      decimal.Decimal             `gorm:"type:numeric(10,2);not null" json:"price"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// Customization returns the options recorded on the line
func (i OrderItem) Customization() Customization {
	return Customization{
		Size:       i.Size,
		SugarLevel: i.SugarLevel,
		IceLevel:   i.IceLevel,
		Toppings:   []string(i.Toppings),
	}
}
