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

func setupTableRouter(db *gorm.DB) *gin.Engine {
	router := newTestRouter()
	tableCtrl := controllers.NewTableController(db)
	router.POST("/tables", tableCtrl.CreateTable)
	router.GET("/tables", tableCtrl.GetAllTables)
	router.GET("/tables/:table_id", tableCtrl.GetTableByID)
	router.PATCH("/tables/:table_id", tableCtrl.UpdateTable)
	router.POST("/tables/:table_id/cleaning", tableCtrl.MarkForCleaning)
	router.POST("/tables/:table_id/cleaning/done", tableCtrl.CompleteCleaning)
	router.DELETE("/tables/:table_id", tableCtrl.DeleteTable)
	return router
}

func TestCreateTableRejectsDuplicateNumber(t *testing.T) {
	db := newTestDB()
	router := setupTableRouter(db)

	payload := map[string]interface{}{"table_number": 7, "capacity": 4, "location": "patio"}
	w := doJSON(router, "POST", "/tables", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, "POST", "/tables", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTableFilters(t *testing.T) {
	db := newTestDB()
	db.Create(&models.Table{TableNumber: 1, Capacity: 2, Status: "available", Location: "indoor"})
	db.Create(&models.Table{TableNumber: 2, Capacity: 4, Status: "occupied", Location: "patio"})
	db.Create(&models.Table{TableNumber: 3, Capacity: 6, Status: "available", Location: "patio"})
	router := setupTableRouter(db)

	w := doJSON(router, "GET", "/tables?status=available&location=patio", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tables := decodeBody(w)["data"].([]interface{})
	require.Len(t, tables, 1)
	assert.EqualValues(t, 3, tables[0].(map[string]interface{})["table_number"])
}

func TestCleaningLifecycle(t *testing.T) {
	db := newTestDB()
	table := models.Table{TableNumber: 5, Capacity: 4, Status: "occupied"}
	db.Create(&table)
	router := setupTableRouter(db)

	w := doJSON(router, "POST", fmt.Sprintf("/tables/%d/cleaning", table.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	db.First(&table, table.ID)
	assert.Equal(t, "cleaning", table.Status)
	require.NotNil(t, table.CleaningStartedAt)

	w = doJSON(router, "POST", fmt.Sprintf("/tables/%d/cleaning/done", table.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	db.First(&table, table.ID)
	assert.Equal(t, "available", table.Status)
	assert.Nil(t, table.CleaningStartedAt)
}

func TestDeleteOccupiedTableRefused(t *testing.T) {
	db := newTestDB()
	table := models.Table{TableNumber: 9, Capacity: 2, Status: "occupied"}
	db.Create(&table)
	router := setupTableRouter(db)

	w := doJSON(router, "DELETE", fmt.Sprintf("/tables/%d", table.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	db.Model(&table).Update("status", "available")
	w = doJSON(router, "DELETE", fmt.Sprintf("/tables/%d", table.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Table{}).Where("id = ?", table.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}
