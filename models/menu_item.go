package models

import "time"

type MenuItem struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Description     string    `gorm:"type:text" json:"description"`
	Price           float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Category        string    `gorm:"type:varchar(100);index" json:"category"`
	DietType        string    `gorm:"type:varchar(50)" json:"diet_type"`
	IsAvailable     bool      `gorm:"default:true" json:"is_available"`
	PreparationTime int       `json:"preparation_time"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}
