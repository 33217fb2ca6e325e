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

func setupMenuRouter(db *gorm.DB) *gin.Engine {
	router := newTestRouter()
	menuCtrl := controllers.NewMenuController(db)
	router.GET("/menus", menuCtrl.GetAllMenus)
	router.GET("/menus/categories", menuCtrl.GetCategories)
	router.GET("/menus/stats", menuCtrl.GetMenuStats)
	router.GET("/menus/:menu_id", menuCtrl.GetMenuByID)
	router.POST("/menus", menuCtrl.CreateMenu)
	router.PATCH("/menus/:menu_id", menuCtrl.UpdateMenu)
	router.PATCH("/menus/:menu_id/availability", menuCtrl.ToggleAvailability)
	router.DELETE("/menus/:menu_id", menuCtrl.DeleteMenu)
	return router
}

func seedMenu(db *gorm.DB) {
	items := []models.MenuItem{
		{Name: "Paneer Tikka", Category: "starters", Price: 8.50, DietType: "veg", IsAvailable: true},
		{Name: "Chicken 65", Category: "starters", Price: 9.00, DietType: "non_veg", IsAvailable: true},
		{Name: "Dal Makhani", Category: "mains", Price: 11.00, DietType: "veg", IsAvailable: false},
		{Name: "Mango Lassi", Category: "beverages", Price: 4.00, DietType: "veg", IsAvailable: true},
	}
	db.Create(&items)
}

func TestMenuFilters(t *testing.T) {
	db := newTestDB()
	seedMenu(db)
	router := setupMenuRouter(db)

	w := doJSON(router, "GET", "/menus?category=starters", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decodeBody(w)["data"].([]interface{})
	assert.Len(t, items, 2)

	w = doJSON(router, "GET", "/menus?diet_type=veg&available=true", nil)
	items = decodeBody(w)["data"].([]interface{})
	assert.Len(t, items, 2) // Dal Makhani is veg but unavailable

	w = doJSON(router, "GET", "/menus?search=lassi", nil)
	items = decodeBody(w)["data"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Mango Lassi", items[0].(map[string]interface{})["name"])
}

func TestMenuCategoriesDistinctSorted(t *testing.T) {
	db := newTestDB()
	seedMenu(db)
	router := setupMenuRouter(db)

	w := doJSON(router, "GET", "/menus/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cats := decodeBody(w)["data"].([]interface{})
	require.Len(t, cats, 3)
	assert.Equal(t, "beverages", cats[0])
	assert.Equal(t, "mains", cats[1])
	assert.Equal(t, "starters", cats[2])
}

func TestToggleAvailabilityFlipsState(t *testing.T) {
	db := newTestDB()
	seedMenu(db)
	router := setupMenuRouter(db)

	var dal models.MenuItem
	db.Where("name = ?", "Dal Makhani").First(&dal)
	require.False(t, dal.IsAvailable)

	w := doJSON(router, "PATCH", fmt.Sprintf("/menus/%d/availability", dal.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	db.First(&dal, dal.ID)
	assert.True(t, dal.IsAvailable)

	doJSON(router, "PATCH", fmt.Sprintf("/menus/%d/availability", dal.ID), nil)
	db.First(&dal, dal.ID)
	assert.False(t, dal.IsAvailable)
}

func TestUpdateMenuPatchesOnlyGivenFields(t *testing.T) {
	db := newTestDB()
	seedMenu(db)
	router := setupMenuRouter(db)

	var lassi models.MenuItem
	db.Where("name = ?", "Mango Lassi").First(&lassi)

	w := doJSON(router, "PATCH", fmt.Sprintf("/menus/%d", lassi.ID), map[string]interface{}{
		"price": 4.50,
	})
	require.Equal(t, http.StatusOK, w.Code)

	db.First(&lassi, lassi.ID)
	assert.Equal(t, 4.50, lassi.Price)
	assert.Equal(t, "Mango Lassi", lassi.Name)
	assert.Equal(t, "beverages", lassi.Category)
}

func TestMenuStats(t *testing.T) {
	db := newTestDB()
	seedMenu(db)
	router := setupMenuRouter(db)

	w := doJSON(router, "GET", "/menus/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataField(w)
	assert.EqualValues(t, 4, data["total_items"])
	assert.EqualValues(t, 3, data["available_items"])
}
