package models

import "time"

const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

type Bill struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	OrderID       uint       `gorm:"not null;unique" json:"order_id"`
	Order         *Order     `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Subtotal      float64    `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Tax           float64    `gorm:"type:decimal(12,2);default:0.00" json:"tax"`
	TaxPercentage float64    `gorm:"type:decimal(5,2);default:5.00" json:"tax_percentage"`
	Discount      float64    `gorm:"type:decimal(12,2);default:0.00" json:"discount"`
	CouponID      *uint      `json:"coupon_id,omitempty"`
	Coupon        *Coupon    `gorm:"foreignKey:CouponID" json:"coupon,omitempty"`
	Total         float64    `gorm:"type:decimal(12,2);not null" json:"total"`
	PaymentMethod string     `gorm:"type:varchar(20)" json:"payment_method"`
	PaymentStatus string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"payment_status"`
	SplitCount    int        `gorm:"default:1" json:"split_count"`
	Reference     string     `gorm:"type:varchar(100)" json:"reference"`
	Notes         string     `gorm:"type:text" json:"notes"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}
