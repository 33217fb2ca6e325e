package models

import "time"

const (
	CouponTypePercentage = "percentage"
	CouponTypeFixed      = "fixed"
)

type Coupon struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Code          string     `gorm:"type:varchar(50);unique;not null;index" json:"code"`
	Description   string     `gorm:"type:text" json:"description"`
	Type          string     `gorm:"type:varchar(20);not null" json:"type"`
	Value         float64    `gorm:"type:decimal(10,2);not null" json:"value"`
	MinOrderValue float64    `gorm:"type:decimal(10,2);default:0.00" json:"min_order_value"`
	MaxDiscount   *float64   `gorm:"type:decimal(10,2)" json:"max_discount,omitempty"`
	MaxUses       *int       `json:"max_uses,omitempty"`
	CurrentUses   int        `gorm:"default:0" json:"current_uses"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	Active        bool       `gorm:"default:true;index" json:"active"`
	CreatedBy     *uint      `json:"created_by,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}
