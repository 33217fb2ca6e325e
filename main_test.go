package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dinehub/restaurant-backend/models"
	"github.com/dinehub/restaurant-backend/router"
	"github.com/dinehub/restaurant-backend/utils"
)

var integrationDBCounter int64

func newIntegrationEnv(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.InitLogger()

	dsn := fmt.Sprintf("file:integration%d?mode=memory&cache=shared",
		atomic.AddInt64(&integrationDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	autoMigrate(db)
	seedStations(db)
	utils.InitDB(db)

	return db, router.SetupRouter(db)
}

func request(r *gin.Engine, method, url, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func responseData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	data, _ := body["data"].(map[string]interface{})
	return data
}

// Walks an order through the whole house: front of house places it, the
// kitchen preps and bumps it, the cashier settles the bill.
func TestFullServiceFlow(t *testing.T) {
	db, r := newIntegrationEnv(t)

	w := request(r, "POST", "/register", "", map[string]interface{}{
		"username":  "shift_manager",
		"email":     "manager@dinehub.test",
		"password":  "secret123",
		"full_name": "Shift Manager",
		"role":      "manager",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = request(r, "POST", "/login", "", map[string]interface{}{
		"username": "shift_manager",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := responseData(t, w)["token"].(string)
	require.NotEmpty(t, token)

	w = request(r, "POST", "/admin/tables", token, map[string]interface{}{
		"table_number": 12,
		"capacity":     4,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	tableID := uint(responseData(t, w)["id"].(float64))

	w = request(r, "POST", "/admin/menus", token, map[string]interface{}{
		"name":             "Tandoori Platter",
		"price":            18.00,
		"category":         "mains",
		"preparation_time": 12,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	menuID := uint(responseData(t, w)["id"].(float64))

	w = request(r, "POST", "/admin/orders", token, map[string]interface{}{
		"table_id": tableID,
		"items": []map[string]interface{}{
			{"menu_item_id": menuID, "quantity": 2},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := uint(responseData(t, w)["id"].(float64))

	var table models.Table
	db.First(&table, tableID)
	assert.Equal(t, "occupied", table.Status)

	w = request(r, "PATCH", fmt.Sprintf("/admin/orders/%d/status", orderID), token,
		map[string]interface{}{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code)

	// The confirmed order is on the kitchen rail.
	w = request(r, "GET", "/kds/orders/active", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), fmt.Sprintf(`"order_id":%d`, orderID))

	var items []models.OrderItem
	db.Where("order_id = ?", orderID).Find(&items)
	require.Len(t, items, 1)

	w = request(r, "POST", fmt.Sprintf("/kds/items/%d/start", items[0].ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = request(r, "POST", fmt.Sprintf("/kds/items/%d/complete", items[0].ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, responseData(t, w)["all_items_ready"])

	var order models.Order
	db.First(&order, orderID)
	assert.Equal(t, "ready", order.Status)
	assert.Equal(t, "all_ready", order.KitchenStatus)
	require.NotNil(t, order.AllItemsReadyAt)

	w = request(r, "POST", fmt.Sprintf("/kds/orders/%d/bump", orderID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	db.First(&order, orderID)
	assert.Equal(t, "bumped", order.KitchenStatus)
	require.NotNil(t, order.BumpedAt)

	w = request(r, "POST", "/admin/bills", token, map[string]interface{}{
		"order_id": orderID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	billData := responseData(t, w)
	billID := uint(billData["id"].(float64))
	assert.InDelta(t, 36.00, billData["subtotal"], 0.001)
	assert.InDelta(t, 37.80, billData["total"], 0.001)

	w = request(r, "POST", fmt.Sprintf("/admin/bills/%d/payment", billID), token,
		map[string]interface{}{"payment_method": "cash"})
	require.Equal(t, http.StatusOK, w.Code)

	var bill models.Bill
	db.First(&bill, billID)
	assert.Equal(t, "paid", bill.PaymentStatus)
	db.First(&order, orderID)
	assert.Equal(t, "completed", order.Status)
}

func TestLogoutRevokesToken(t *testing.T) {
	_, r := newIntegrationEnv(t)

	w := request(r, "POST", "/register", "", map[string]interface{}{
		"username": "runner",
		"email":    "runner@dinehub.test",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = request(r, "POST", "/login", "", map[string]interface{}{
		"username": "runner",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := responseData(t, w)["token"].(string)

	w = request(r, "GET", "/admin/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = request(r, "POST", "/admin/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = request(r, "GET", "/admin/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	_, r := newIntegrationEnv(t)

	w := request(r, "GET", "/admin/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = request(r, "GET", "/kds/orders/active", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Guest surfaces stay open.
	w = request(r, "GET", "/menus", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(r, "GET", "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
