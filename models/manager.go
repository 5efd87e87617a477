package models

import "time"

// Manager is an email address allowed into the manager console
type Manager struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the Manager model
func (Manager) TableName() string {
	return "managers"
}
