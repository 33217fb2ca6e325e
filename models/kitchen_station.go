package models

import "time"

// KitchenStation is a physical work area (grill, fry, cold...) that order
// items are routed to. Stations are soft-deactivated, never hard-deleted.
type KitchenStation struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Name                string    `gorm:"type:varchar(100);unique;not null" json:"name"`
	Description         string    `gorm:"type:text" json:"description"`
	StationType         string    `gorm:"type:varchar(50);not null" json:"station_type"`
	IsActive            bool      `gorm:"default:true" json:"is_active"`
	DisplayOrder        int       `gorm:"default:0" json:"display_order"`
	MaxConcurrentOrders int       `gorm:"default:10" json:"max_concurrent_orders"`
	AveragePrepTime     *int      `json:"average_prep_time,omitempty"`
	CreatedAt           time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time `gorm:"not null" json:"updated_at"`
}

// KitchenPerformanceLog is an append-only audit record, one row per
// significant transition (started/completed/reassigned). Never updated.
type KitchenPerformanceLog struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	StationID       uint            `gorm:"not null;index:idx_perf_station" json:"station_id"`
	Station         *KitchenStation `gorm:"foreignKey:StationID" json:"station,omitempty"`
	OrderItemID     uint            `gorm:"not null" json:"order_item_id"`
	Action          string          `gorm:"type:varchar(50);not null" json:"action"`
	ChefID          *uint           `json:"chef_id,omitempty"`
	Chef            *User           `gorm:"foreignKey:ChefID" json:"chef,omitempty"`
	DurationSeconds *int            `json:"duration_seconds,omitempty"`
	Notes           string          `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time       `gorm:"not null;index:idx_perf_station" json:"created_at"`
}

// StationAssignment maps a chef to a station for a shift. Roster display
// only; item assignment is not validated against it.
type StationAssignment struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	ChefID     uint            `gorm:"not null;index" json:"chef_id"`
	Chef       *User           `gorm:"foreignKey:ChefID" json:"chef,omitempty"`
	StationID  uint            `gorm:"not null;index" json:"station_id"`
	Station    *KitchenStation `gorm:"foreignKey:StationID" json:"station,omitempty"`
	ShiftStart time.Time       `gorm:"not null" json:"shift_start"`
	ShiftEnd   *time.Time      `json:"shift_end,omitempty"`
	IsPrimary  bool            `gorm:"default:false" json:"is_primary"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
}

// TicketDisplaySettings holds per-station KDS screen preferences, one row
// per station with upsert semantics.
type TicketDisplaySettings struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	StationID             uint      `gorm:"unique" json:"station_id"`
	FontSize              string    `gorm:"type:varchar(20);default:'medium'" json:"font_size"`
	ShowCustomerNames     bool      `gorm:"default:true" json:"show_customer_names"`
	ShowTicketTimes       bool      `gorm:"default:true" json:"show_ticket_times"`
	ShowSpecialRequests   bool      `gorm:"default:true" json:"show_special_requests"`
	AutoBumpCompleted     bool      `gorm:"default:false" json:"auto_bump_completed"`
	BumpDelaySeconds      int       `gorm:"default:0" json:"bump_delay_seconds"`
	AlertThresholdMinutes int       `gorm:"default:15" json:"alert_threshold_minutes"`
	UpdatedAt             time.Time `json:"updated_at"`
}
