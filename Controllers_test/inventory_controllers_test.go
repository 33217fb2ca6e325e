package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dinehub/restaurant-backend/controllers"
	"github.com/dinehub/restaurant-backend/models"
)

func setupInventoryRouter(db *gorm.DB) *gin.Engine {
	router := newTestRouter()
	inventoryCtrl := controllers.NewInventoryController(db)

	group := router.Group("/admin")
	group.Use(asUser(1, "manager"))
	{
		group.POST("/inventory", inventoryCtrl.CreateItem)
		group.GET("/inventory", inventoryCtrl.GetAllItems)
		group.GET("/inventory/low-stock", inventoryCtrl.GetLowStock)
		group.GET("/inventory/stats", inventoryCtrl.GetInventoryStats)
		group.GET("/inventory/:item_id", inventoryCtrl.GetItemByID)
		group.PATCH("/inventory/:item_id", inventoryCtrl.UpdateItem)
		group.DELETE("/inventory/:item_id", inventoryCtrl.DeleteItem)
		group.POST("/inventory/:item_id/transactions", inventoryCtrl.RecordTransaction)
		group.GET("/inventory/:item_id/transactions", inventoryCtrl.GetTransactions)
	}
	return router
}

func seedInventoryItem(db *gorm.DB, name string, current, min float64) models.InventoryItem {
	item := models.InventoryItem{
		Name:            name,
		Category:        "produce",
		Unit:            "kg",
		CurrentQuantity: current,
		MinQuantity:     min,
		CostPerUnit:     2.00,
		IsActive:        true,
	}
	db.Create(&item)
	return item
}

func TestTransactionsMoveQuantity(t *testing.T) {
	db := newTestDB()
	item := seedInventoryItem(db, "Onions", 20, 5)
	router := setupInventoryRouter(db)

	url := fmt.Sprintf("/admin/inventory/%d/transactions", item.ID)

	w := doJSON(router, "POST", url, map[string]interface{}{"type": "usage", "quantity": 8.0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 12.0, dataField(w)["current_quantity"])

	w = doJSON(router, "POST", url, map[string]interface{}{"type": "restock", "quantity": 10.0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 22.0, dataField(w)["current_quantity"])

	w = doJSON(router, "POST", url, map[string]interface{}{"type": "waste", "quantity": 2.0, "notes": "spoiled"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20.0, dataField(w)["current_quantity"])

	// Deductions floor at zero.
	w = doJSON(router, "POST", url, map[string]interface{}{"type": "usage", "quantity": 100.0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, dataField(w)["current_quantity"])

	w = doJSON(router, "POST", url, map[string]interface{}{"type": "evaporation", "quantity": 1.0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "GET", url, nil)
	list := decodeBody(w)["data"].([]interface{})
	assert.Len(t, list, 4)
}

func TestLowStockSeverityGrades(t *testing.T) {
	warning := models.InventoryItem{Name: "A", CurrentQuantity: 5, MinQuantity: 5}
	high := models.InventoryItem{Name: "B", CurrentQuantity: 2, MinQuantity: 5}
	critical := models.InventoryItem{Name: "C", CurrentQuantity: 0, MinQuantity: 5}
	fine := models.InventoryItem{Name: "D", CurrentQuantity: 9, MinQuantity: 5}

	assert.Equal(t, "warning", controllers.LowStockSeverity(warning))
	assert.Equal(t, "high", controllers.LowStockSeverity(high))
	assert.Equal(t, "critical", controllers.LowStockSeverity(critical))
	assert.Equal(t, "", controllers.LowStockSeverity(fine))
}

func TestLowStockListingWorstFirst(t *testing.T) {
	db := newTestDB()
	seedInventoryItem(db, "Rice", 50, 10)
	seedInventoryItem(db, "Paneer", 4, 8)
	seedInventoryItem(db, "Cream", 0, 5)
	router := setupInventoryRouter(db)

	w := doJSON(router, "GET", "/admin/inventory/low-stock", nil)
	require.Equal(t, http.StatusOK, w.Code)

	list := decodeBody(w)["data"].([]interface{})
	require.Len(t, list, 2)
	first := list[0].(map[string]interface{})
	assert.Equal(t, "Cream", first["name"])
	assert.Equal(t, "critical", first["severity"])
	second := list[1].(map[string]interface{})
	assert.Equal(t, "Paneer", second["name"])
	assert.Equal(t, "high", second["severity"])
}

func TestDeleteItemIsSoft(t *testing.T) {
	db := newTestDB()
	item := seedInventoryItem(db, "Butter", 10, 2)
	router := setupInventoryRouter(db)

	w := doJSON(router, "DELETE", fmt.Sprintf("/admin/inventory/%d", item.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Row survives for transaction history, just hidden from listings.
	var kept models.InventoryItem
	require.NoError(t, db.First(&kept, item.ID).Error)
	assert.False(t, kept.IsActive)

	w = doJSON(router, "GET", "/admin/inventory", nil)
	list := decodeBody(w)["data"].([]interface{})
	assert.Len(t, list, 0)
}

func TestInventoryStatsTotalsValue(t *testing.T) {
	db := newTestDB()
	seedInventoryItem(db, "Rice", 10, 2)   // 20.00
	seedInventoryItem(db, "Paneer", 1, 5)  // 2.00, low
	router := setupInventoryRouter(db)

	w := doJSON(router, "GET", "/admin/inventory/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := dataField(w)
	assert.Equal(t, float64(2), data["total_items"])
	assert.Equal(t, float64(1), data["low_stock_items"])
	assert.Equal(t, 22.00, data["total_value"])
}
