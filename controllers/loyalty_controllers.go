package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dinehub/restaurant-backend/models"
	"github.com/dinehub/restaurant-backend/utils"
)

type LoyaltyController struct {
	DB *gorm.DB
}

func NewLoyaltyController(db *gorm.DB) *LoyaltyController {
	return &LoyaltyController{DB: db}
}

// Referral bonuses in points.
const (
	ReferrerBonus = 500
	RefereeBonus  = 250
)

// tierForPoints maps lifetime points to a tier. Tiers never regress
// because lifetime points only grow.
func tierForPoints(lifetime int) string {
	switch {
	case lifetime >= 10000:
		return models.TierPlatinum
	case lifetime >= 5000:
		return models.TierGold
	case lifetime >= 1000:
		return models.TierSilver
	default:
		return models.TierBronze
	}
}

// pointsForSpend grants one point per 10 currency units.
func pointsForSpend(amount float64) int {
	return int(amount / 10)
}

func newReferralCode() string {
	return "REF-" + strings.ToUpper(uuid.NewString()[:8])
}

// accrueLoyaltyPoints credits a paid bill to the customer's account and
// recalculates the tier. Called from the billing flow inside its tx.
func accrueLoyaltyPoints(tx *gorm.DB, customerID uint, amount float64, orderID *uint) error {
	var customer models.Customer
	if err := tx.First(&customer, customerID).Error; err != nil {
		return err
	}

	points := pointsForSpend(amount)
	customer.TotalOrders++
	customer.TotalSpent += amount
	if points > 0 {
		customer.LoyaltyPoints += points
		customer.LifetimePoints += points
		customer.Tier = tierForPoints(customer.LifetimePoints)

		entry := models.LoyaltyTransaction{
			CustomerID:  customer.ID,
			Type:        "earn",
			Points:      points,
			OrderID:     orderID,
			Description: fmt.Sprintf("Earned for spend of %s", utils.FormatCurrency(amount)),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
	}
	customer.UpdatedAt = time.Now()
	return tx.Save(&customer).Error
}

// GetAccount returns the caller's loyalty profile, creating one with a
// fresh referral code on first touch.
func (lc *LoyaltyController) GetAccount(c *gin.Context) {
	userID := callerID(c)
	if userID == 0 {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var customer models.Customer
	err := lc.DB.Where("user_id = ?", userID).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		customer = models.Customer{
			UserID:       userID,
			Tier:         models.TierBronze,
			ReferralCode: newReferralCode(),
		}
		if err := lc.DB.Create(&customer).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	} else if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Loyalty account", customer)
}

// EarnPoints credits points for a spend (staff action at the counter).
func (lc *LoyaltyController) EarnPoints(c *gin.Context) {
	var req struct {
		CustomerID uint    `json:"customer_id" binding:"required"`
		Amount     float64 `json:"amount" binding:"required,gt=0"`
		OrderID    *uint   `json:"order_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	err := lc.DB.Transaction(func(tx *gorm.DB) error {
		return accrueLoyaltyPoints(tx, req.CustomerID, req.Amount, req.OrderID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("customer not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var customer models.Customer
	lc.DB.First(&customer, req.CustomerID)
	utils.RespondJSON(c, http.StatusOK, "Points earned", customer)
}

// RedeemPoints deducts points from the balance. Lifetime points and tier
// are untouched by redemption.
func (lc *LoyaltyController) RedeemPoints(c *gin.Context) {
	var req struct {
		CustomerID  uint   `json:"customer_id" binding:"required"`
		Points      int    `json:"points" binding:"required,gt=0"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var customer models.Customer
	if err := lc.DB.First(&customer, req.CustomerID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("customer not found"))
		return
	}

	if customer.LoyaltyPoints < req.Points {
		utils.RespondError(c, http.StatusBadRequest,
			fmt.Errorf("insufficient points: have %d, need %d", customer.LoyaltyPoints, req.Points))
		return
	}

	err := lc.DB.Transaction(func(tx *gorm.DB) error {
		customer.LoyaltyPoints -= req.Points
		customer.UpdatedAt = time.Now()
		if err := tx.Save(&customer).Error; err != nil {
			return err
		}

		entry := models.LoyaltyTransaction{
			CustomerID:  customer.ID,
			Type:        "redeem",
			Points:      -req.Points,
			Description: req.Description,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Customer %d redeemed %d points", customer.ID, req.Points)
	utils.RespondJSON(c, http.StatusOK, "Points redeemed", customer)
}

// GetTransactions lists a customer's loyalty ledger, newest first.
func (lc *LoyaltyController) GetTransactions(c *gin.Context) {
	var customer models.Customer
	if err := lc.DB.First(&customer, c.Param("customer_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("customer not found"))
		return
	}

	var transactions []models.LoyaltyTransaction
	if err := lc.DB.Where("customer_id = ?", customer.ID).
		Order("created_at DESC").Find(&transactions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Loyalty transactions", transactions)
}

// GetTierInfo describes the tier ladder and the caller's progress.
func (lc *LoyaltyController) GetTierInfo(c *gin.Context) {
	tiers := []gin.H{
		{"tier": models.TierBronze, "min_lifetime_points": 0},
		{"tier": models.TierSilver, "min_lifetime_points": 1000},
		{"tier": models.TierGold, "min_lifetime_points": 5000},
		{"tier": models.TierPlatinum, "min_lifetime_points": 10000},
	}

	userID := callerID(c)
	var customer models.Customer
	if err := lc.DB.Where("user_id = ?", userID).First(&customer).Error; err != nil {
		utils.RespondJSON(c, http.StatusOK, "Tier information", gin.H{"tiers": tiers})
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Tier information", gin.H{
		"tiers":           tiers,
		"current_tier":    customer.Tier,
		"lifetime_points": customer.LifetimePoints,
	})
}

// ApplyReferral links a new customer to their referrer and pays out both
// bonuses. One referral per account.
func (lc *LoyaltyController) ApplyReferral(c *gin.Context) {
	userID := callerID(c)
	if userID == 0 {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var req struct {
		ReferralCode string `json:"referral_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var referee models.Customer
	if err := lc.DB.Where("user_id = ?", userID).First(&referee).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("loyalty account not found"))
		return
	}
	if referee.ReferredBy != nil {
		utils.RespondError(c, http.StatusConflict, errors.New("referral already applied"))
		return
	}

	var referrer models.Customer
	if err := lc.DB.Where("referral_code = ?", strings.ToUpper(req.ReferralCode)).
		First(&referrer).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("referral code not found"))
		return
	}
	if referrer.ID == referee.ID {
		utils.RespondError(c, http.StatusBadRequest, errors.New("cannot refer yourself"))
		return
	}

	err := lc.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		referee.ReferredBy = &referrer.ID
		referee.LoyaltyPoints += RefereeBonus
		referee.LifetimePoints += RefereeBonus
		referee.Tier = tierForPoints(referee.LifetimePoints)
		referee.UpdatedAt = now
		if err := tx.Save(&referee).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.LoyaltyTransaction{
			CustomerID:  referee.ID,
			Type:        "referral",
			Points:      RefereeBonus,
			Description: "Referral welcome bonus",
		}).Error; err != nil {
			return err
		}

		referrer.LoyaltyPoints += ReferrerBonus
		referrer.LifetimePoints += ReferrerBonus
		referrer.Tier = tierForPoints(referrer.LifetimePoints)
		referrer.UpdatedAt = now
		if err := tx.Save(&referrer).Error; err != nil {
			return err
		}
		return tx.Create(&models.LoyaltyTransaction{
			CustomerID:  referrer.ID,
			Type:        "referral",
			Points:      ReferrerBonus,
			Description: fmt.Sprintf("Referred customer %d", referee.ID),
		}).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Referral applied: customer %d referred by %d", referee.ID, referrer.ID)
	utils.RespondJSON(c, http.StatusOK, "Referral applied", referee)
}
