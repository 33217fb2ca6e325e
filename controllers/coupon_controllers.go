package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dinehub/restaurant-backend/models"
	"github.com/dinehub/restaurant-backend/utils"
)

type CouponController struct {
	DB *gorm.DB
}

func NewCouponController(db *gorm.DB) *CouponController {
	return &CouponController{DB: db}
}

// CreateCoupon adds a promotion code (admin/manager).
func (cc *CouponController) CreateCoupon(c *gin.Context) {
	var req struct {
		Code          string     `json:"code" binding:"required"`
		Description   string     `json:"description"`
		Type          string     `json:"type" binding:"required"`
		Value         float64    `json:"value" binding:"required,gt=0"`
		MinOrderValue float64    `json:"min_order_value"`
		MaxDiscount   *float64   `json:"max_discount"`
		MaxUses       *int       `json:"max_uses"`
		ExpiryDate    *time.Time `json:"expiry_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Type != models.CouponTypePercentage && req.Type != models.CouponTypeFixed {
		utils.RespondError(c, http.StatusBadRequest, errors.New("coupon type must be percentage or fixed"))
		return
	}
	if req.Type == models.CouponTypePercentage && req.Value > 100 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("percentage value cannot exceed 100"))
		return
	}

	var createdBy *uint
	if id := callerID(c); id != 0 {
		createdBy = &id
	}

	coupon := models.Coupon{
		Code:          strings.ToUpper(req.Code),
		Description:   req.Description,
		Type:          req.Type,
		Value:         req.Value,
		MinOrderValue: req.MinOrderValue,
		MaxDiscount:   req.MaxDiscount,
		MaxUses:       req.MaxUses,
		ExpiryDate:    req.ExpiryDate,
		Active:        true,
		CreatedBy:     createdBy,
	}

	if err := cc.DB.Create(&coupon).Error; err != nil {
		utils.RespondError(c, http.StatusConflict, errors.New("coupon code already exists"))
		return
	}

	utils.InfoLogger.Printf("Coupon created: %s (%s %.2f)", coupon.Code, coupon.Type, coupon.Value)
	utils.RespondJSON(c, http.StatusCreated, "Coupon created", coupon)
}

// GetAllCoupons lists coupons; ?active=true narrows to live ones.
func (cc *CouponController) GetAllCoupons(c *gin.Context) {
	query := cc.DB.Model(&models.Coupon{})
	if c.Query("active") == "true" {
		query = query.Where("active = ?", true)
	}

	var coupons []models.Coupon
	if err := query.Order("created_at DESC").Find(&coupons).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of coupons", coupons)
}

func (cc *CouponController) GetCouponByID(c *gin.Context) {
	var coupon models.Coupon
	if err := cc.DB.First(&coupon, c.Param("coupon_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("coupon not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Coupon detail", coupon)
}

// ValidateCoupon lets the POS preview a discount before billing.
func (cc *CouponController) ValidateCoupon(c *gin.Context) {
	var req struct {
		Code     string  `json:"code" binding:"required"`
		Subtotal float64 `json:"subtotal" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var coupon models.Coupon
	if err := cc.DB.Where("code = ?", strings.ToUpper(req.Code)).First(&coupon).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("coupon not found"))
		return
	}

	if err := validateCoupon(coupon, req.Subtotal); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Coupon is valid", gin.H{
		"coupon":   coupon,
		"discount": couponDiscount(coupon, req.Subtotal),
	})
}

// ToggleCoupon flips a coupon on or off.
func (cc *CouponController) ToggleCoupon(c *gin.Context) {
	var coupon models.Coupon
	if err := cc.DB.First(&coupon, c.Param("coupon_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("coupon not found"))
		return
	}

	coupon.Active = !coupon.Active
	coupon.UpdatedAt = time.Now()
	if err := cc.DB.Save(&coupon).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Coupon toggled", coupon)
}

func (cc *CouponController) DeleteCoupon(c *gin.Context) {
	var coupon models.Coupon
	if err := cc.DB.First(&coupon, c.Param("coupon_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("coupon not found"))
		return
	}

	if err := cc.DB.Delete(&coupon).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Coupon deleted", nil)
}

// GetCouponStats reports redemption volume per code.
func (cc *CouponController) GetCouponStats(c *gin.Context) {
	var coupons []models.Coupon
	if err := cc.DB.Order("current_uses DESC").Find(&coupons).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var totalUses int
	active := 0
	for _, coupon := range coupons {
		totalUses += coupon.CurrentUses
		if coupon.Active {
			active++
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Coupon statistics", gin.H{
		"total_coupons":  len(coupons),
		"active_coupons": active,
		"total_uses":     totalUses,
		"coupons":        coupons,
	})
}
