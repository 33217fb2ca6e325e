package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dinehub/restaurant-backend/kds"
	"github.com/dinehub/restaurant-backend/models"
	"github.com/dinehub/restaurant-backend/utils"
)

type InventoryController struct {
	DB *gorm.DB
}

func NewInventoryController(db *gorm.DB) *InventoryController {
	return &InventoryController{DB: db}
}

// LowStockSeverity grades how urgent a shortage is: "warning" at the
// minimum threshold, "high" at half of it, "critical" when empty.
func LowStockSeverity(item models.InventoryItem) string {
	switch {
	case item.CurrentQuantity <= 0:
		return "critical"
	case item.CurrentQuantity <= item.MinQuantity/2:
		return "high"
	case item.CurrentQuantity <= item.MinQuantity:
		return "warning"
	}
	return ""
}

// CreateItem registers a stock item.
func (ic *InventoryController) CreateItem(c *gin.Context) {
	var req struct {
		Name            string  `json:"name" binding:"required"`
		Category        string  `json:"category"`
		Unit            string  `json:"unit" binding:"required"`
		CurrentQuantity float64 `json:"current_quantity"`
		MinQuantity     float64 `json:"min_quantity"`
		CostPerUnit     float64 `json:"cost_per_unit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item := models.InventoryItem{
		Name:            req.Name,
		Category:        req.Category,
		Unit:            req.Unit,
		CurrentQuantity: req.CurrentQuantity,
		MinQuantity:     req.MinQuantity,
		CostPerUnit:     req.CostPerUnit,
		IsActive:        true,
	}

	if err := ic.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Inventory item created: %s (%s)", item.Name, item.Unit)
	utils.RespondJSON(c, http.StatusCreated, "Inventory item created", item)
}

// GetAllItems lists active stock, filterable by category.
func (ic *InventoryController) GetAllItems(c *gin.Context) {
	query := ic.DB.Where("is_active = ?", true)
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var items []models.InventoryItem
	if err := query.Order("name").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Inventory items", items)
}

func (ic *InventoryController) GetItemByID(c *gin.Context) {
	var item models.InventoryItem
	if err := ic.DB.First(&item, c.Param("item_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("inventory item not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Inventory item detail", item)
}

// UpdateItem patches item metadata. Quantity moves only through
// transactions so the audit trail stays complete.
func (ic *InventoryController) UpdateItem(c *gin.Context) {
	var item models.InventoryItem
	if err := ic.DB.First(&item, c.Param("item_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("inventory item not found"))
		return
	}

	var req struct {
		Name        *string  `json:"name"`
		Category    *string  `json:"category"`
		Unit        *string  `json:"unit"`
		MinQuantity *float64 `json:"min_quantity"`
		CostPerUnit *float64 `json:"cost_per_unit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.MinQuantity != nil {
		item.MinQuantity = *req.MinQuantity
	}
	if req.CostPerUnit != nil {
		item.CostPerUnit = *req.CostPerUnit
	}
	item.UpdatedAt = time.Now()

	if err := ic.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Inventory item updated", item)
}

// DeleteItem soft-deletes so historical transactions keep their target.
func (ic *InventoryController) DeleteItem(c *gin.Context) {
	var item models.InventoryItem
	if err := ic.DB.First(&item, c.Param("item_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("inventory item not found"))
		return
	}

	item.IsActive = false
	item.UpdatedAt = time.Now()
	if err := ic.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Inventory item deactivated", nil)
}

// RecordTransaction applies a stock movement. Restocks add; usage and
// waste deduct; adjustments carry their own sign. Quantity never drops
// below zero.
func (ic *InventoryController) RecordTransaction(c *gin.Context) {
	var item models.InventoryItem
	if err := ic.DB.First(&item, c.Param("item_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("inventory item not found"))
		return
	}

	var req struct {
		Type     string  `json:"type" binding:"required"`
		Quantity float64 `json:"quantity" binding:"required"`
		Notes    string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var delta float64
	switch req.Type {
	case models.InventoryTxRestock:
		delta = req.Quantity
	case models.InventoryTxUsage, models.InventoryTxWaste:
		delta = -req.Quantity
	case models.InventoryTxAdjustment:
		delta = req.Quantity
	default:
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid transaction type"))
		return
	}

	var createdBy *uint
	if id := callerID(c); id != 0 {
		createdBy = &id
	}

	err := ic.DB.Transaction(func(tx *gorm.DB) error {
		item.CurrentQuantity += delta
		if item.CurrentQuantity < 0 {
			item.CurrentQuantity = 0
		}
		item.UpdatedAt = time.Now()
		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		return tx.Create(&models.InventoryTransaction{
			InventoryItemID: item.ID,
			Type:            req.Type,
			Quantity:        req.Quantity,
			Notes:           req.Notes,
			CreatedBy:       createdBy,
		}).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if severity := LowStockSeverity(item); severity != "" {
		kds.BroadcastInventoryLow(
			fmt.Sprintf("%s is low: %.2f %s remaining", item.Name, item.CurrentQuantity, item.Unit),
			gin.H{
				"item_id":          item.ID,
				"name":             item.Name,
				"current_quantity": item.CurrentQuantity,
				"min_quantity":     item.MinQuantity,
				"severity":         severity,
			})
	}

	utils.RespondJSON(c, http.StatusOK, "Transaction recorded", item)
}

// GetTransactions lists an item's stock movements, newest first.
func (ic *InventoryController) GetTransactions(c *gin.Context) {
	var item models.InventoryItem
	if err := ic.DB.First(&item, c.Param("item_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("inventory item not found"))
		return
	}

	var transactions []models.InventoryTransaction
	if err := ic.DB.Where("inventory_item_id = ?", item.ID).
		Order("created_at DESC").Find(&transactions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Inventory transactions", transactions)
}

// GetLowStock lists everything at or under its minimum, worst first.
func (ic *InventoryController) GetLowStock(c *gin.Context) {
	var items []models.InventoryItem
	if err := ic.DB.Where("is_active = ? AND current_quantity <= min_quantity", true).
		Order("current_quantity").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	type lowStockItem struct {
		models.InventoryItem
		Severity string `json:"severity"`
	}
	result := make([]lowStockItem, 0, len(items))
	for _, item := range items {
		result = append(result, lowStockItem{InventoryItem: item, Severity: LowStockSeverity(item)})
	}

	utils.RespondJSON(c, http.StatusOK, "Low stock items", result)
}

// GetInventoryStats totals stock value and shortage counts.
func (ic *InventoryController) GetInventoryStats(c *gin.Context) {
	var items []models.InventoryItem
	if err := ic.DB.Where("is_active = ?", true).Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var totalValue float64
	lowStock := 0
	for _, item := range items {
		totalValue += item.CurrentQuantity * item.CostPerUnit
		if LowStockSeverity(item) != "" {
			lowStock++
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Inventory statistics", gin.H{
		"total_items":     len(items),
		"low_stock_items": lowStock,
		"total_value":     round2(totalValue),
	})
}
