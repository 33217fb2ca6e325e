package models

import "time"

// Loyalty tiers ordered by lifetime points.
const (
	TierBronze   = "bronze"
	TierSilver   = "silver"
	TierGold     = "gold"
	TierPlatinum = "platinum"
)

// Customer is the loyalty profile attached to a user account.
type Customer struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"unique;not null" json:"user_id"`
	User           *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Phone          string    `gorm:"type:varchar(50)" json:"phone"`
	Address        string    `gorm:"type:text" json:"address"`
	TotalOrders    int       `gorm:"default:0" json:"total_orders"`
	TotalSpent     float64   `gorm:"type:decimal(12,2);default:0.00" json:"total_spent"`
	LoyaltyPoints  int       `gorm:"default:0" json:"loyalty_points"`
	LifetimePoints int       `gorm:"default:0" json:"lifetime_points"`
	Tier           string    `gorm:"type:varchar(20);default:'bronze'" json:"tier"`
	ReferralCode   string    `gorm:"type:varchar(20);unique" json:"referral_code"`
	ReferredBy     *uint     `json:"referred_by,omitempty"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

type LoyaltyTransaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CustomerID  uint      `gorm:"not null;index" json:"customer_id"`
	Type        string    `gorm:"type:varchar(20);not null" json:"type"`
	Points      int       `gorm:"not null" json:"points"`
	OrderID     *uint     `json:"order_id,omitempty"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}
