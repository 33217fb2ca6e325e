package controllers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dinehub/restaurant-backend/models"
	"github.com/dinehub/restaurant-backend/utils"
)

type BillingController struct {
	DB *gorm.DB
}

func NewBillingController(db *gorm.DB) *BillingController {
	return &BillingController{DB: db}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// couponDiscount computes the discount a coupon grants on a subtotal.
// Percentage coupons respect their max cap; everything clamps to the
// subtotal so a bill can never go negative.
func couponDiscount(coupon models.Coupon, subtotal float64) float64 {
	var discount float64
	switch coupon.Type {
	case models.CouponTypePercentage:
		discount = subtotal * coupon.Value / 100
		if coupon.MaxDiscount != nil && discount > *coupon.MaxDiscount {
			discount = *coupon.MaxDiscount
		}
	case models.CouponTypeFixed:
		discount = coupon.Value
	}
	if discount > subtotal {
		discount = subtotal
	}
	return round2(discount)
}

func validateCoupon(coupon models.Coupon, subtotal float64) error {
	if !coupon.Active {
		return errors.New("coupon is not active")
	}
	if coupon.ExpiryDate != nil && time.Now().After(*coupon.ExpiryDate) {
		return errors.New("coupon has expired")
	}
	if subtotal < coupon.MinOrderValue {
		return fmt.Errorf("order total %.2f below coupon minimum %.2f", subtotal, coupon.MinOrderValue)
	}
	if coupon.MaxUses != nil && coupon.CurrentUses >= *coupon.MaxUses {
		return errors.New("coupon usage limit reached")
	}
	return nil
}

func recalcBill(bill *models.Bill) {
	bill.Tax = round2(bill.Subtotal * bill.TaxPercentage / 100)
	total := bill.Subtotal + bill.Tax - bill.Discount
	if total < 0 {
		total = 0
	}
	bill.Total = round2(total)
}

// CreateBill opens a bill for an order. One bill per order.
func (bc *BillingController) CreateBill(c *gin.Context) {
	var req struct {
		OrderID uint `json:"order_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var order models.Order
	if err := bc.DB.First(&order, req.OrderID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}

	var existing models.Bill
	if err := bc.DB.Where("order_id = ?", req.OrderID).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusConflict, errors.New("bill already exists for this order"))
		return
	}

	bill := models.Bill{
		OrderID:       order.ID,
		Subtotal:      round2(order.TotalAmount),
		TaxPercentage: 5.00,
		PaymentStatus: models.PaymentStatusPending,
		SplitCount:    1,
		Reference:     strings.ToUpper(uuid.NewString()[:8]),
	}
	recalcBill(&bill)

	if err := bc.DB.Create(&bill).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Bill %d (%s) created for order %d, total %s",
		bill.ID, bill.Reference, order.ID, utils.FormatCurrency(bill.Total))
	utils.RespondJSON(c, http.StatusCreated, "Bill created", bill)
}

func (bc *BillingController) GetBillByID(c *gin.Context) {
	var bill models.Bill
	if err := bc.DB.Preload("Order.OrderItems.MenuItem").Preload("Coupon").
		First(&bill, c.Param("bill_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("bill not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bill detail", bill)
}

func (bc *BillingController) GetBillByOrder(c *gin.Context) {
	var bill models.Bill
	if err := bc.DB.Preload("Coupon").
		Where("order_id = ?", c.Param("order_id")).First(&bill).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("no bill for this order"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bill detail", bill)
}

// ApplyCoupon validates and attaches a coupon, bumping its usage count.
func (bc *BillingController) ApplyCoupon(c *gin.Context) {
	var bill models.Bill
	if err := bc.DB.First(&bill, c.Param("bill_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("bill not found"))
		return
	}

	if bill.PaymentStatus == models.PaymentStatusPaid {
		utils.RespondError(c, http.StatusConflict, errors.New("bill already paid"))
		return
	}
	if bill.CouponID != nil {
		utils.RespondError(c, http.StatusConflict, errors.New("a coupon is already applied"))
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var coupon models.Coupon
	if err := bc.DB.Where("code = ?", strings.ToUpper(req.Code)).First(&coupon).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("coupon not found"))
		return
	}

	if err := validateCoupon(coupon, bill.Subtotal); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	err := bc.DB.Transaction(func(tx *gorm.DB) error {
		bill.CouponID = &coupon.ID
		bill.Discount = couponDiscount(coupon, bill.Subtotal)
		recalcBill(&bill)
		bill.UpdatedAt = time.Now()
		if err := tx.Save(&bill).Error; err != nil {
			return err
		}

		coupon.CurrentUses++
		return tx.Save(&coupon).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Coupon %s applied to bill %d, discount %.2f", coupon.Code, bill.ID, bill.Discount)
	utils.RespondJSON(c, http.StatusOK, "Coupon applied", bill)
}

// RemoveCoupon detaches the coupon and returns its usage.
func (bc *BillingController) RemoveCoupon(c *gin.Context) {
	var bill models.Bill
	if err := bc.DB.First(&bill, c.Param("bill_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("bill not found"))
		return
	}

	if bill.CouponID == nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("no coupon on this bill"))
		return
	}
	if bill.PaymentStatus == models.PaymentStatusPaid {
		utils.RespondError(c, http.StatusConflict, errors.New("bill already paid"))
		return
	}

	couponID := *bill.CouponID
	err := bc.DB.Transaction(func(tx *gorm.DB) error {
		bill.CouponID = nil
		bill.Discount = 0
		recalcBill(&bill)
		bill.UpdatedAt = time.Now()
		if err := tx.Save(&bill).Error; err != nil {
			return err
		}

		var coupon models.Coupon
		if err := tx.First(&coupon, couponID).Error; err != nil {
			return err
		}
		if coupon.CurrentUses > 0 {
			coupon.CurrentUses--
		}
		return tx.Save(&coupon).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Coupon removed", bill)
}

// SplitBill records an even split and returns the per-person share.
func (bc *BillingController) SplitBill(c *gin.Context) {
	var bill models.Bill
	if err := bc.DB.First(&bill, c.Param("bill_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("bill not found"))
		return
	}

	var req struct {
		SplitCount int `json:"split_count" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	bill.SplitCount = req.SplitCount
	bill.UpdatedAt = time.Now()
	if err := bc.DB.Save(&bill).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Bill split", gin.H{
		"bill":             bill,
		"amount_per_share": round2(bill.Total / float64(bill.SplitCount)),
	})
}

// RecordPayment settles the bill at the counter. An optional customer_id
// accrues loyalty points for the spend.
func (bc *BillingController) RecordPayment(c *gin.Context) {
	var bill models.Bill
	if err := bc.DB.First(&bill, c.Param("bill_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("bill not found"))
		return
	}

	if bill.PaymentStatus == models.PaymentStatusPaid {
		utils.RespondError(c, http.StatusConflict, errors.New("bill already paid"))
		return
	}

	var req struct {
		PaymentMethod string `json:"payment_method" binding:"required"` // cash, card, upi
		CustomerID    *uint  `json:"customer_id"`
		Notes         string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	switch req.PaymentMethod {
	case "cash", "card", "upi":
	default:
		utils.RespondError(c, http.StatusBadRequest, errors.New("unsupported payment method"))
		return
	}

	now := time.Now()
	err := bc.DB.Transaction(func(tx *gorm.DB) error {
		bill.PaymentMethod = req.PaymentMethod
		bill.PaymentStatus = models.PaymentStatusPaid
		bill.PaidAt = &now
		bill.Notes = req.Notes
		bill.UpdatedAt = now
		if err := tx.Save(&bill).Error; err != nil {
			return err
		}

		var order models.Order
		if err := tx.First(&order, bill.OrderID).Error; err != nil {
			return err
		}
		order.Status = models.OrderStatusCompleted
		if order.CompletedAt == nil {
			order.CompletedAt = &now
		}
		order.UpdatedAt = now
		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		if req.CustomerID != nil {
			if err := accrueLoyaltyPoints(tx, *req.CustomerID, bill.Total, &bill.OrderID); err != nil {
				// Loyalty is best effort, payment still stands.
				utils.ErrorLogger.Printf("loyalty accrual failed for customer %d: %v", *req.CustomerID, err)
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Bill %d paid via %s, total %s", bill.ID, bill.PaymentMethod, utils.FormatCurrency(bill.Total))
	utils.RespondJSON(c, http.StatusOK, "Payment recorded", bill)
}

// GetBillingStats summarizes revenue for the admin dashboard.
func (bc *BillingController) GetBillingStats(c *gin.Context) {
	var totalBills, paidBills int64
	bc.DB.Model(&models.Bill{}).Count(&totalBills)
	bc.DB.Model(&models.Bill{}).Where("payment_status = ?", models.PaymentStatusPaid).Count(&paidBills)

	var paid []models.Bill
	bc.DB.Where("payment_status = ?", models.PaymentStatusPaid).Find(&paid)

	var revenue, taxCollected, discountGiven float64
	byMethod := map[string]float64{}
	for _, bill := range paid {
		revenue += bill.Total
		taxCollected += bill.Tax
		discountGiven += bill.Discount
		byMethod[bill.PaymentMethod] += bill.Total
	}

	utils.RespondJSON(c, http.StatusOK, "Billing statistics", gin.H{
		"total_bills":    totalBills,
		"paid_bills":     paidBills,
		"pending_bills":  totalBills - paidBills,
		"total_revenue":  round2(revenue),
		"tax_collected":  round2(taxCollected),
		"discount_given": round2(discountGiven),
		"by_method":      byMethod,
	})
}
