package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dinehub/restaurant-backend/kds"
	"github.com/dinehub/restaurant-backend/models"
	"github.com/dinehub/restaurant-backend/utils"
)

var ErrTableOccupied = &CustomError{"Table is not available"}

type TableController struct {
	DB *gorm.DB
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{DB: db}
}

// CreateTable adds a new table to the floor plan.
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber int    `json:"table_number" binding:"required"`
		Capacity    int    `json:"capacity" binding:"required,min=1"`
		Location    string `json:"location"`
		Status      string `json:"status"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table := models.Table{
		TableNumber: req.TableNumber,
		Capacity:    req.Capacity,
		Location:    req.Location,
		Status:      "available",
	}
	if req.Status != "" {
		table.Status = req.Status
	}

	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusConflict, errors.New("table number already exists"))
		return
	}

	kds.BroadcastTableUpdated(table)

	utils.InfoLogger.Printf("New table created: %d (capacity=%d)", table.TableNumber, table.Capacity)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables lists tables, optionally filtered by status or location.
func (tc *TableController) GetAllTables(c *gin.Context) {
	query := tc.DB.Model(&models.Table{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if location := c.Query("location"); location != "" {
		query = query.Where("location = ?", location)
	}

	var tables []models.Table
	if err := query.Order("table_number").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) GetTableByID(c *gin.Context) {
	var table models.Table
	if err := tc.DB.First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("table not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// UpdateTable patches capacity, location or status.
func (tc *TableController) UpdateTable(c *gin.Context) {
	var table models.Table
	if err := tc.DB.First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("table not found"))
		return
	}

	var req struct {
		Capacity *int    `json:"capacity"`
		Location *string `json:"location"`
		Status   *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Capacity != nil {
		table.Capacity = *req.Capacity
	}
	if req.Location != nil {
		table.Location = *req.Location
	}
	if req.Status != nil {
		table.Status = *req.Status
	}
	table.UpdatedAt = time.Now()

	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	kds.BroadcastTableUpdated(table)
	utils.RespondJSON(c, http.StatusOK, "Table updated successfully", table)
}

// MarkForCleaning flags a table as dirty after guests leave.
func (tc *TableController) MarkForCleaning(c *gin.Context) {
	var table models.Table
	if err := tc.DB.First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("table not found"))
		return
	}

	now := time.Now()
	table.Status = "cleaning"
	table.CleaningStartedAt = &now
	table.UpdatedAt = now

	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	kds.BroadcastTableUpdated(table)
	utils.InfoLogger.Printf("Table %d marked for cleaning", table.TableNumber)
	utils.RespondJSON(c, http.StatusOK, "Table marked for cleaning", table)
}

// CompleteCleaning returns a cleaned table to the available pool.
func (tc *TableController) CompleteCleaning(c *gin.Context) {
	var table models.Table
	if err := tc.DB.First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("table not found"))
		return
	}

	table.Status = "available"
	table.CleaningStartedAt = nil
	table.UpdatedAt = time.Now()

	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	kds.BroadcastTableUpdated(table)
	utils.RespondJSON(c, http.StatusOK, "Cleaning completed", table)
}

// DeleteTable removes a table that is not occupied.
func (tc *TableController) DeleteTable(c *gin.Context) {
	var table models.Table
	if err := tc.DB.First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("table not found"))
		return
	}

	if table.Status == "occupied" {
		utils.RespondError(c, http.StatusConflict, ErrTableOccupied)
		return
	}

	if err := tc.DB.Delete(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table deleted", nil)
}
