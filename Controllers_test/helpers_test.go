package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dinehub/restaurant-backend/models"
	"github.com/dinehub/restaurant-backend/utils"
)

var testDBCounter int64

// newTestDB opens a fresh in-memory database with the full schema.
// Each call gets its own name so tests never share state.
func newTestDB() *gorm.DB {
	n := atomic.AddInt64(&testDBCounter, 1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.KitchenStation{},
		&models.KitchenPerformanceLog{},
		&models.StationAssignment{},
		&models.TicketDisplaySettings{},
		&models.Reservation{},
		&models.Bill{},
		&models.Coupon{},
		&models.Customer{},
		&models.LoyaltyTransaction{},
		&models.InventoryItem{},
		&models.InventoryTransaction{},
		&models.Notification{},
	)
	if err != nil {
		panic(err)
	}
	utils.InitLogger()
	return db
}

// asUser fakes the auth middleware for handler tests.
func asUser(userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doJSON(router *gin.Engine, method, url string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			panic(err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		panic(err)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		panic(err)
	}
	return resp
}

func dataField(w *httptest.ResponseRecorder) map[string]interface{} {
	resp := decodeBody(w)
	data, _ := resp["data"].(map[string]interface{})
	return data
}
