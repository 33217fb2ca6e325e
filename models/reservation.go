package models

import "time"

const (
	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusSeated    = "seated"
	ReservationStatusCompleted = "completed"
	ReservationStatusCancelled = "cancelled"
	ReservationStatusNoShow    = "no_show"
)

type Reservation struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	TableID         uint       `gorm:"not null;index" json:"table_id"`
	Table           *Table     `gorm:"foreignKey:TableID" json:"table,omitempty"`
	CustomerName    string     `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail   string     `gorm:"type:varchar(255)" json:"customer_email"`
	CustomerPhone   string     `gorm:"type:varchar(50);not null" json:"customer_phone"`
	ReservationDate time.Time  `gorm:"not null;index" json:"reservation_date"`
	TimeSlot        string     `gorm:"type:varchar(10)" json:"time_slot"`
	Duration        int        `gorm:"default:90" json:"duration"`
	Guests          int        `gorm:"not null" json:"guests"`
	SpecialRequests string     `gorm:"type:text" json:"special_requests"`
	Status          string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty"`
	SeatedAt        *time.Time `json:"seated_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null" json:"updated_at"`
}
