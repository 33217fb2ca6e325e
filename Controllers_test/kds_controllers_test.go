package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dinehub/restaurant-backend/controllers"
	"github.com/dinehub/restaurant-backend/models"
)

func setupKDSRouter(db *gorm.DB, userID uint, role string) *gin.Engine {
	router := newTestRouter()
	kdsCtrl := controllers.NewKDSController(db)

	group := router.Group("/kds")
	group.Use(asUser(userID, role))
	{
		group.GET("/stations", kdsCtrl.GetStations)
		group.POST("/stations", kdsCtrl.CreateStation)
		group.GET("/stations/:station_id", kdsCtrl.GetStation)
		group.PUT("/stations/:station_id", kdsCtrl.UpdateStation)
		group.GET("/stations/:station_id/performance", kdsCtrl.GetStationPerformance)
		group.GET("/stations/:station_id/settings", kdsCtrl.GetDisplaySettings)
		group.PUT("/stations/:station_id/settings", kdsCtrl.UpdateDisplaySettings)
		group.GET("/orders/active", kdsCtrl.GetActiveOrders)
		group.GET("/orders/:order_id", kdsCtrl.GetOrderKDSView)
		group.POST("/orders/:order_id/bump", kdsCtrl.BumpOrder)
		group.POST("/items/reassign", kdsCtrl.ReassignItem)
		group.POST("/items/:item_id/start", kdsCtrl.StartItem)
		group.PUT("/items/:item_id/status", kdsCtrl.UpdateItemStatus)
		group.POST("/items/:item_id/complete", kdsCtrl.CompleteItem)
		group.GET("/dashboard/stats", kdsCtrl.GetDashboardStats)
		group.GET("/assignments", kdsCtrl.GetAssignments)
		group.POST("/assignments", kdsCtrl.CreateAssignment)
	}
	return router
}

// seedKitchenOrder creates a confirmed order with one item per station id.
func seedKitchenOrder(db *gorm.DB, stationIDs ...uint) (models.Order, []models.OrderItem) {
	menu := models.MenuItem{Name: "Butter Chicken", Price: 12.50, Category: "Mains", IsAvailable: true, PreparationTime: 10}
	db.Create(&menu)

	order := models.Order{
		CustomerName:  "Walk-in",
		Status:        models.OrderStatusConfirmed,
		KitchenStatus: models.KitchenStatusPending,
	}
	db.Create(&order)

	items := make([]models.OrderItem, 0, len(stationIDs))
	for _, sid := range stationIDs {
		stationID := sid
		estimated := 10
		item := models.OrderItem{
			OrderID:           order.ID,
			MenuItemID:        menu.ID,
			Quantity:          1,
			Price:             menu.Price,
			PrepStatus:        models.PrepStatusPending,
			EstimatedPrepTime: &estimated,
		}
		if stationID != 0 {
			item.StationID = &stationID
		}
		db.Create(&item)
		items = append(items, item)
	}
	db.Model(&order).Update("total_amount", float64(len(items))*menu.Price)
	return order, items
}

func seedStation(db *gorm.DB, name string) models.KitchenStation {
	station := models.KitchenStation{
		Name:                name,
		StationType:         "grill",
		IsActive:            true,
		MaxConcurrentOrders: 10,
	}
	db.Create(&station)
	return station
}

func TestStartItemIsIdempotent(t *testing.T) {
	db := newTestDB()
	station := seedStation(db, "Grill")
	_, items := seedKitchenOrder(db, station.ID)
	router := setupKDSRouter(db, 7, "chef")

	url := fmt.Sprintf("/kds/items/%d/start", items[0].ID)
	w := doJSON(router, "POST", url, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var first models.OrderItem
	db.First(&first, items[0].ID)
	require.NotNil(t, first.PrepStartTime)
	require.NotNil(t, first.AssignedChefID)
	assert.Equal(t, models.PrepStatusPreparing, first.PrepStatus)
	assert.Equal(t, uint(7), *first.AssignedChefID)

	var order models.Order
	db.First(&order, first.OrderID)
	assert.Equal(t, models.KitchenStatusInProgress, order.KitchenStatus)
	require.NotNil(t, order.KitchenReceivedAt)
	receivedAt := *order.KitchenReceivedAt

	time.Sleep(10 * time.Millisecond)

	// A second tap changes nothing that was already stamped.
	w = doJSON(router, "POST", url, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var second models.OrderItem
	db.First(&second, items[0].ID)
	assert.True(t, second.PrepStartTime.Equal(*first.PrepStartTime))
	assert.Equal(t, *first.AssignedChefID, *second.AssignedChefID)

	db.First(&order, first.OrderID)
	assert.True(t, order.KitchenReceivedAt.Equal(receivedAt))
}

func TestCompleteBeforeStartSkipsDurationLog(t *testing.T) {
	db := newTestDB()
	station := seedStation(db, "Grill")
	_, items := seedKitchenOrder(db, station.ID)
	router := setupKDSRouter(db, 7, "chef")

	w := doJSON(router, "POST", fmt.Sprintf("/kds/items/%d/complete", items[0].ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var item models.OrderItem
	db.First(&item, items[0].ID)
	assert.Equal(t, models.PrepStatusReady, item.PrepStatus)
	assert.Nil(t, item.PrepStartTime)
	assert.NotNil(t, item.PrepEndTime)

	var logCount int64
	db.Model(&models.KitchenPerformanceLog{}).Count(&logCount)
	assert.Equal(t, int64(0), logCount)
}

func TestCompleteLogsDurationAndEndAfterStart(t *testing.T) {
	db := newTestDB()
	station := seedStation(db, "Grill")
	_, items := seedKitchenOrder(db, station.ID)
	router := setupKDSRouter(db, 7, "chef")

	doJSON(router, "POST", fmt.Sprintf("/kds/items/%d/start", items[0].ID), nil)
	w := doJSON(router, "POST", fmt.Sprintf("/kds/items/%d/complete", items[0].ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var item models.OrderItem
	db.First(&item, items[0].ID)
	require.NotNil(t, item.PrepStartTime)
	require.NotNil(t, item.PrepEndTime)
	assert.False(t, item.PrepEndTime.Before(*item.PrepStartTime))

	var log models.KitchenPerformanceLog
	require.NoError(t, db.Where("order_item_id = ?", item.ID).First(&log).Error)
	assert.Equal(t, "completed", log.Action)
	assert.Equal(t, station.ID, log.StationID)
	require.NotNil(t, log.DurationSeconds)
	assert.GreaterOrEqual(t, *log.DurationSeconds, 0)
}

func TestAggregateFlipsExactlyOnce(t *testing.T) {
	db := newTestDB()
	station := seedStation(db, "Grill")
	order, items := seedKitchenOrder(db, station.ID, station.ID, station.ID)
	router := setupKDSRouter(db, 7, "chef")

	// First two items ready: order must not be all_ready yet.
	for _, item := range items[:2] {
		doJSON(router, "POST", fmt.Sprintf("/kds/items/%d/start", item.ID), nil)
		w := doJSON(router, "POST", fmt.Sprintf("/kds/items/%d/complete", item.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		data := dataField(w)
		assert.Equal(t, false, data["all_items_ready"])
	}

	var mid models.Order
	db.First(&mid, order.ID)
	assert.Nil(t, mid.AllItemsReadyAt)
	assert.NotEqual(t, models.KitchenStatusAllReady, mid.KitchenStatus)

	// Last item flips the aggregate.
	doJSON(router, "POST", fmt.Sprintf("/kds/items/%d/start", items[2].ID), nil)
	w := doJSON(router, "POST", fmt.Sprintf("/kds/items/%d/complete", items[2].ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, dataField(w)["all_items_ready"])

	var done models.Order
	db.First(&done, order.ID)
	require.NotNil(t, done.AllItemsReadyAt)
	assert.Equal(t, models.KitchenStatusAllReady, done.KitchenStatus)
	assert.Equal(t, models.OrderStatusReady, done.Status)
	readyAt := *done.AllItemsReadyAt

	time.Sleep(10 * time.Millisecond)

	// Re-completing an item must not move the stamp.
	w = doJSON(router, "POST", fmt.Sprintf("/kds/items/%d/complete", items[0].ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	db.First(&done, order.ID)
	assert.True(t, done.AllItemsReadyAt.Equal(readyAt))
}

func TestBumpFullOrder(t *testing.T) {
	db := newTestDB()
	station := seedStation(db, "Grill")
	order, _ := seedKitchenOrder(db, station.ID, station.ID)
	router := setupKDSRouter(db, 7, "chef")

	w := doJSON(router, "POST", fmt.Sprintf("/kds/orders/%d/bump", order.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var bumped models.Order
	db.Preload("OrderItems").First(&bumped, order.ID)
	assert.Equal(t, models.KitchenStatusBumped, bumped.KitchenStatus)
	require.NotNil(t, bumped.BumpedAt)
	for _, item := range bumped.OrderItems {
		assert.Equal(t, models.PrepStatusServed, item.PrepStatus)
	}
}

func TestBumpStationOnly(t *testing.T) {
	db := newTestDB()
	grill := seedStation(db, "Grill")
	fry := seedStation(db, "Fry")
	order, items := seedKitchenOrder(db, grill.ID, fry.ID)
	router := setupKDSRouter(db, 7, "chef")

	w := doJSON(router, "POST", fmt.Sprintf("/kds/orders/%d/bump", order.ID),
		map[string]interface{}{"station_id": grill.ID})
	require.Equal(t, http.StatusOK, w.Code)

	var after models.Order
	db.Preload("OrderItems").First(&after, order.ID)

	// Partial bump never closes the order.
	assert.NotEqual(t, models.KitchenStatusBumped, after.KitchenStatus)
	assert.Nil(t, after.BumpedAt)

	for _, item := range after.OrderItems {
		switch item.ID {
		case items[0].ID:
			assert.Equal(t, models.PrepStatusServed, item.PrepStatus)
		case items[1].ID:
			assert.Equal(t, models.PrepStatusPending, item.PrepStatus)
		}
	}
}

func TestReassignPreservesStatusAndLogsOldStation(t *testing.T) {
	db := newTestDB()
	grill := seedStation(db, "Grill")
	fry := seedStation(db, "Fry")
	_, items := seedKitchenOrder(db, grill.ID)
	router := setupKDSRouter(db, 7, "manager")

	// Item is mid-preparation when it moves.
	doJSON(router, "POST", fmt.Sprintf("/kds/items/%d/start", items[0].ID), nil)

	w := doJSON(router, "POST", "/kds/items/reassign", map[string]interface{}{
		"order_item_id":  items[0].ID,
		"new_station_id": fry.ID,
		"reason":         "grill backed up",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var item models.OrderItem
	db.First(&item, items[0].ID)
	assert.Equal(t, models.PrepStatusPreparing, item.PrepStatus)
	require.NotNil(t, item.StationID)
	assert.Equal(t, fry.ID, *item.StationID)

	var logs []models.KitchenPerformanceLog
	db.Where("order_item_id = ? AND action = ?", item.ID, "reassigned").Find(&logs)
	require.Len(t, logs, 1)
	assert.Equal(t, grill.ID, logs[0].StationID)
	assert.Equal(t, "grill backed up", logs[0].Notes)
}

func TestReassignForbiddenForStaff(t *testing.T) {
	db := newTestDB()
	grill := seedStation(db, "Grill")
	fry := seedStation(db, "Fry")
	_, items := seedKitchenOrder(db, grill.ID)
	router := setupKDSRouter(db, 3, "staff")

	w := doJSON(router, "POST", "/kds/items/reassign", map[string]interface{}{
		"order_item_id":  items[0].ID,
		"new_station_id": fry.ID,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOnTimePercentageUsesGracePeriod(t *testing.T) {
	db := newTestDB()
	station := seedStation(db, "Grill")
	order, items := seedKitchenOrder(db, station.ID, station.ID)
	_ = order
	router := setupKDSRouter(db, 7, "chef")

	now := time.Now()

	// 12 minutes against a 10 minute estimate: inside the 5 minute grace.
	onTimeStart := now.Add(-30 * time.Minute)
	onTimeEnd := onTimeStart.Add(12 * time.Minute)
	db.Model(&models.OrderItem{}).Where("id = ?", items[0].ID).Updates(map[string]interface{}{
		"prep_status":     models.PrepStatusReady,
		"prep_start_time": onTimeStart,
		"prep_end_time":   onTimeEnd,
	})

	// 16 minutes against the same estimate: late.
	lateStart := now.Add(-25 * time.Minute)
	lateEnd := lateStart.Add(16 * time.Minute)
	db.Model(&models.OrderItem{}).Where("id = ?", items[1].ID).Updates(map[string]interface{}{
		"prep_status":     models.PrepStatusReady,
		"prep_start_time": lateStart,
		"prep_end_time":   lateEnd,
	})

	w := doJSON(router, "GET", fmt.Sprintf("/kds/stations/%d/performance", station.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := dataField(w)
	assert.Equal(t, float64(50), data["on_time_percentage"])
	assert.Equal(t, float64(2), data["items_completed_today"])
}

func TestActiveOrdersStationFilterSkipsEmptyOrders(t *testing.T) {
	db := newTestDB()
	grill := seedStation(db, "Grill")
	fry := seedStation(db, "Fry")
	grillOrder, _ := seedKitchenOrder(db, grill.ID)
	fryOrder, _ := seedKitchenOrder(db, fry.ID)
	router := setupKDSRouter(db, 7, "chef")

	w := doJSON(router, "GET", fmt.Sprintf("/kds/orders/active?station_id=%d", grill.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody(w)
	list, ok := resp["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, list, 1)
	first := list[0].(map[string]interface{})
	assert.Equal(t, float64(grillOrder.ID), first["id"])
	assert.NotEqual(t, float64(fryOrder.ID), first["id"])
}

func TestBumpedOrderLeavesActiveRail(t *testing.T) {
	db := newTestDB()
	station := seedStation(db, "Grill")
	order, _ := seedKitchenOrder(db, station.ID)
	router := setupKDSRouter(db, 7, "chef")

	w := doJSON(router, "GET", "/kds/orders/active", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody(w)["data"].([]interface{})
	require.Len(t, list, 1)

	doJSON(router, "POST", fmt.Sprintf("/kds/orders/%d/bump", order.ID), nil)

	w = doJSON(router, "GET", "/kds/orders/active", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list = decodeBody(w)["data"].([]interface{})
	assert.Len(t, list, 0)
}

func TestDisplaySettingsDefaultsAndUpsert(t *testing.T) {
	db := newTestDB()
	station := seedStation(db, "Grill")
	router := setupKDSRouter(db, 1, "manager")

	w := doJSON(router, "GET", fmt.Sprintf("/kds/stations/%d/settings", station.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataField(w)
	assert.Equal(t, "medium", data["font_size"])
	assert.Equal(t, float64(15), data["alert_threshold_minutes"])

	w = doJSON(router, "PUT", fmt.Sprintf("/kds/stations/%d/settings", station.ID),
		map[string]interface{}{"font_size": "large", "alert_threshold_minutes": 20})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", fmt.Sprintf("/kds/stations/%d/settings", station.ID), nil)
	data = dataField(w)
	assert.Equal(t, "large", data["font_size"])
	assert.Equal(t, float64(20), data["alert_threshold_minutes"])

	// Upsert means one row, updated in place.
	var count int64
	db.Model(&models.TicketDisplaySettings{}).Where("station_id = ?", station.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestStationCreateRequiresManagerRole(t *testing.T) {
	db := newTestDB()
	chefRouter := setupKDSRouter(db, 5, "chef")

	w := doJSON(chefRouter, "POST", "/kds/stations",
		map[string]interface{}{"name": "Grill", "station_type": "grill"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	managerRouter := setupKDSRouter(db, 1, "manager")
	w = doJSON(managerRouter, "POST", "/kds/stations",
		map[string]interface{}{"name": "Grill", "station_type": "grill"})
	require.Equal(t, http.StatusCreated, w.Code)
	data := dataField(w)
	assert.Equal(t, float64(10), data["max_concurrent_orders"])
}

func TestInactiveStationsHiddenByDefault(t *testing.T) {
	db := newTestDB()
	active := seedStation(db, "Grill")
	inactive := seedStation(db, "Old Fry")
	db.Model(&inactive).Update("is_active", false)
	router := setupKDSRouter(db, 1, "chef")

	w := doJSON(router, "GET", "/kds/stations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody(w)["data"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, float64(active.ID), list[0].(map[string]interface{})["id"])

	w = doJSON(router, "GET", "/kds/stations?active_only=false", nil)
	list = decodeBody(w)["data"].([]interface{})
	assert.Len(t, list, 2)
}

func TestDashboardStatsCountsAndTicketTime(t *testing.T) {
	db := newTestDB()
	station := seedStation(db, "Grill")
	_, items := seedKitchenOrder(db, station.ID)
	router := setupKDSRouter(db, 7, "chef")

	doJSON(router, "POST", fmt.Sprintf("/kds/items/%d/start", items[0].ID), nil)
	doJSON(router, "POST", fmt.Sprintf("/kds/items/%d/complete", items[0].ID), nil)

	w := doJSON(router, "GET", "/kds/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataField(w)

	assert.Equal(t, float64(1), data["total_ready_items"])
	assert.NotNil(t, data["average_ticket_time_minutes"])
	stations, ok := data["stations"].([]interface{})
	require.True(t, ok)
	require.Len(t, stations, 1)
}

func TestCreateAssignmentValidatesChefAndStation(t *testing.T) {
	db := newTestDB()
	station := seedStation(db, "Grill")
	chef := models.User{Username: "chef1", Email: "chef1@example.com", Password: "x", Role: "chef", IsActive: true}
	db.Create(&chef)
	router := setupKDSRouter(db, 1, "manager")

	w := doJSON(router, "POST", "/kds/assignments", map[string]interface{}{
		"chef_id":     chef.ID,
		"station_id":  station.ID,
		"shift_start": time.Now().Format(time.RFC3339),
		"is_primary":  true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, "POST", "/kds/assignments", map[string]interface{}{
		"chef_id":     uint(999),
		"station_id":  station.ID,
		"shift_start": time.Now().Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, "GET", fmt.Sprintf("/kds/assignments?station_id=%d", station.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody(w)["data"].([]interface{})
	assert.Len(t, list, 1)
}
