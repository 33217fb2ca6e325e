package models

import "time"

type Table struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	TableNumber       int        `gorm:"unique;not null" json:"table_number"`
	Capacity          int        `gorm:"not null" json:"capacity"`
	Status            string     `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	Location          string     `gorm:"type:varchar(50)" json:"location"`
	CleaningStartedAt *time.Time `json:"cleaning_started_at,omitempty"`
	CreatedAt         time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"not null" json:"updated_at"`
}
