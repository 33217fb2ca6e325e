package models

import "time"

// Per-item preparation lifecycle. Transitions are not enforced with a
// table: the handlers only stamp timestamps the first time a state is
// reached, so out-of-order calls succeed with partial effects.
const (
	PrepStatusPending   = "pending"
	PrepStatusAssigned  = "assigned"
	PrepStatusPreparing = "preparing"
	PrepStatusReady     = "ready"
	PrepStatusServed    = "served"
	PrepStatusCancelled = "cancelled"
)

type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"order_id"`
	// Omitting Order from JSON to avoid recursive nesting
	Order               Order           `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuItemID          uint            `gorm:"not null" json:"menu_item_id"`
	MenuItem            MenuItem        `gorm:"foreignKey:MenuItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"menu_item"`
	Quantity            int             `gorm:"not null;default:1" json:"quantity"`
	Price               float64         `gorm:"type:decimal(10,2);not null" json:"price"`
	SpecialInstructions string          `gorm:"type:text" json:"special_instructions"`
	StationID           *uint           `gorm:"index" json:"station_id,omitempty"`
	Station             *KitchenStation `gorm:"foreignKey:StationID" json:"station,omitempty"`
	Priority            int             `gorm:"default:0" json:"priority"`
	PrepStatus          string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"prep_status"`
	PrepStartTime       *time.Time      `json:"prep_start_time,omitempty"`
	PrepEndTime         *time.Time      `json:"prep_end_time,omitempty"`
	AssignedChefID      *uint           `json:"assigned_chef_id,omitempty"`
	AssignedChef        *User           `gorm:"foreignKey:AssignedChefID" json:"assigned_chef,omitempty"`
	PreparationNotes    string          `gorm:"type:text" json:"preparation_notes"`
	EstimatedPrepTime   *int            `json:"estimated_prep_time,omitempty"`
	CreatedAt           time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"not null" json:"updated_at"`
}
