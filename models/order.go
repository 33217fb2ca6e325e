package models

import "time"

// Order lifecycle statuses. The kitchen-facing aggregate lives in
// KitchenStatus and is derived from the items' prep statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusServed    = "served"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

const (
	KitchenStatusPending    = "pending"
	KitchenStatusReceived   = "received"
	KitchenStatusInProgress = "in_progress"
	KitchenStatusAllReady   = "all_ready"
	KitchenStatusBumped     = "bumped"
)

type Order struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	TableID      *uint       `gorm:"index" json:"table_id,omitempty"`
	Table        *Table      `gorm:"foreignKey:TableID" json:"table,omitempty"`
	CustomerName string      `gorm:"type:varchar(255)" json:"customer_name"`
	CreatedBy    *uint       `json:"created_by,omitempty"`
	Status       string      `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	TotalAmount  float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	SpecialNotes string      `gorm:"type:text" json:"special_notes"`
	OrderItems   []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items"`
	StartedAt    *time.Time  `json:"started_at,omitempty"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`

	// KDS aggregate, derived from the items' prep statuses
	KitchenStatus     string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"kitchen_status"`
	KitchenReceivedAt *time.Time `json:"kitchen_received_at,omitempty"`
	AllItemsReadyAt   *time.Time `json:"all_items_ready_at,omitempty"`
	BumpedAt          *time.Time `json:"bumped_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
