package models

import "time"

const (
	InventoryTxRestock    = "restock"
	InventoryTxUsage      = "usage"
	InventoryTxWaste      = "waste"
	InventoryTxAdjustment = "adjustment"
)

type InventoryItem struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Category        string    `gorm:"type:varchar(100);index" json:"category"`
	Unit            string    `gorm:"type:varchar(20);not null" json:"unit"`
	CurrentQuantity float64   `gorm:"type:decimal(10,2);default:0.00" json:"current_quantity"`
	MinQuantity     float64   `gorm:"type:decimal(10,2);default:0.00" json:"min_quantity"`
	CostPerUnit     float64   `gorm:"type:decimal(10,2);default:0.00" json:"cost_per_unit"`
	IsActive        bool      `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

type InventoryTransaction struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	InventoryItemID uint           `gorm:"not null;index" json:"inventory_item_id"`
	InventoryItem   *InventoryItem `gorm:"foreignKey:InventoryItemID" json:"inventory_item,omitempty"`
	Type            string         `gorm:"type:varchar(20);not null" json:"type"`
	Quantity        float64        `gorm:"type:decimal(10,2);not null" json:"quantity"`
	Notes           string         `gorm:"type:text" json:"notes"`
	CreatedBy       *uint          `json:"created_by,omitempty"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
}
