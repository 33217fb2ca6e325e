package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dinehub/restaurant-backend/models"
	"github.com/dinehub/restaurant-backend/utils"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// GetAllMenus is the public menu listing with optional filters.
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	query := mc.DB.Model(&models.MenuItem{})

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if diet := c.Query("diet_type"); diet != "" {
		query = query.Where("diet_type = ?", diet)
	}
	if available := c.Query("available"); available == "true" {
		query = query.Where("is_available = ?", true)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var items []models.MenuItem
	if err := query.Order("category, name").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of menu items", items)
}

// GetCategories returns the distinct menu categories.
func (mc *MenuController) GetCategories(c *gin.Context) {
	var categories []string
	if err := mc.DB.Model(&models.MenuItem{}).
		Distinct("category").
		Where("category <> ''").
		Order("category").
		Pluck("category", &categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu categories", categories)
}

func (mc *MenuController) GetMenuByID(c *gin.Context) {
	var item models.MenuItem
	if err := mc.DB.First(&item, c.Param("menu_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu item not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item detail", item)
}

// CreateMenu adds a dish (admin/manager).
func (mc *MenuController) CreateMenu(c *gin.Context) {
	var req struct {
		Name            string  `json:"name" binding:"required"`
		Description     string  `json:"description"`
		Price           float64 `json:"price" binding:"required,gt=0"`
		Category        string  `json:"category" binding:"required"`
		DietType        string  `json:"diet_type"`
		PreparationTime int     `json:"preparation_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item := models.MenuItem{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		Category:        req.Category,
		DietType:        req.DietType,
		IsAvailable:     true,
		PreparationTime: req.PreparationTime,
	}

	if err := mc.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New menu item created: %s (%s)", item.Name, item.Category)
	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

// UpdateMenu patches a dish (admin/manager).
func (mc *MenuController) UpdateMenu(c *gin.Context) {
	var item models.MenuItem
	if err := mc.DB.First(&item, c.Param("menu_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu item not found"))
		return
	}

	var req struct {
		Name            *string  `json:"name"`
		Description     *string  `json:"description"`
		Price           *float64 `json:"price"`
		Category        *string  `json:"category"`
		DietType        *string  `json:"diet_type"`
		IsAvailable     *bool    `json:"is_available"`
		PreparationTime *int     `json:"preparation_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.DietType != nil {
		item.DietType = *req.DietType
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	if req.PreparationTime != nil {
		item.PreparationTime = *req.PreparationTime
	}
	item.UpdatedAt = time.Now()

	if err := mc.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}

// ToggleAvailability flips 86'd state, used by chefs mid-service.
func (mc *MenuController) ToggleAvailability(c *gin.Context) {
	var item models.MenuItem
	if err := mc.DB.First(&item, c.Param("menu_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu item not found"))
		return
	}

	item.IsAvailable = !item.IsAvailable
	item.UpdatedAt = time.Now()

	if err := mc.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Menu item %s availability set to %v", item.Name, item.IsAvailable)
	utils.RespondJSON(c, http.StatusOK, "Availability updated", item)
}

func (mc *MenuController) DeleteMenu(c *gin.Context) {
	var item models.MenuItem
	if err := mc.DB.First(&item, c.Param("menu_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu item not found"))
		return
	}

	if err := mc.DB.Delete(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu item deleted", nil)
}

// GetMenuStats summarizes the catalog for the admin dashboard.
func (mc *MenuController) GetMenuStats(c *gin.Context) {
	var total, available int64
	mc.DB.Model(&models.MenuItem{}).Count(&total)
	mc.DB.Model(&models.MenuItem{}).Where("is_available = ?", true).Count(&available)

	type categoryCount struct {
		Category string `json:"category"`
		Count    int64  `json:"count"`
	}
	var byCategory []categoryCount
	mc.DB.Model(&models.MenuItem{}).
		Select("category, count(*) as count").
		Group("category").
		Order("category").
		Scan(&byCategory)

	utils.RespondJSON(c, http.StatusOK, "Menu statistics", gin.H{
		"total_items":     total,
		"available_items": available,
		"by_category":     byCategory,
	})
}
