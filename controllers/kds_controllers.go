package controllers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dinehub/restaurant-backend/kds"
	"github.com/dinehub/restaurant-backend/models"
	"github.com/dinehub/restaurant-backend/monitoring"
	"github.com/dinehub/restaurant-backend/utils"
)

// KDSController drives the kitchen display: station-scoped ticket views,
// per-item prep transitions, bumping and performance aggregation.
type KDSController struct {
	DB *gorm.DB
}

func NewKDSController(db *gorm.DB) *KDSController {
	return &KDSController{DB: db}
}

// Order statuses visible on the kitchen displays.
var kdsVisibleStatuses = []string{
	models.OrderStatusConfirmed,
	models.OrderStatusPreparing,
	models.OrderStatusReady,
}

// Kitchen statuses that keep an order on screen.
var unbumpedKitchenStatuses = []string{
	models.KitchenStatusPending,
	models.KitchenStatusReceived,
	models.KitchenStatusInProgress,
	models.KitchenStatusAllReady,
}

// OnTimeGraceMinutes is added to the estimate before an item counts late.
const OnTimeGraceMinutes = 5.0

func callerID(c *gin.Context) uint {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func callerRole(c *gin.Context) string {
	if v, ok := c.Get("role"); ok {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

func roleIn(role string, allowed ...string) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// ==================== STATIONS ====================

// GetStations lists stations ordered for display. Inactive stations are
// hidden unless active_only=false.
func (kc *KDSController) GetStations(c *gin.Context) {
	query := kc.DB.Model(&models.KitchenStation{})
	if c.DefaultQuery("active_only", "true") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var stations []models.KitchenStation
	if err := query.Order("display_order").Find(&stations).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Kitchen stations", stations)
}

func (kc *KDSController) GetStation(c *gin.Context) {
	var station models.KitchenStation
	if err := kc.DB.First(&station, c.Param("station_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("station not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Station detail", station)
}

// CreateStation adds a work area (admin/manager only).
func (kc *KDSController) CreateStation(c *gin.Context) {
	if !roleIn(callerRole(c), "admin", "manager") {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var req struct {
		Name                string `json:"name" binding:"required"`
		Description         string `json:"description"`
		StationType         string `json:"station_type" binding:"required"`
		DisplayOrder        int    `json:"display_order"`
		MaxConcurrentOrders int    `json:"max_concurrent_orders"`
		AveragePrepTime     *int   `json:"average_prep_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	station := models.KitchenStation{
		Name:                req.Name,
		Description:         req.Description,
		StationType:         req.StationType,
		IsActive:            true,
		DisplayOrder:        req.DisplayOrder,
		MaxConcurrentOrders: req.MaxConcurrentOrders,
		AveragePrepTime:     req.AveragePrepTime,
	}
	if station.MaxConcurrentOrders == 0 {
		station.MaxConcurrentOrders = 10
	}

	if err := kc.DB.Create(&station).Error; err != nil {
		utils.RespondError(c, http.StatusConflict, errors.New("station name already exists"))
		return
	}

	utils.InfoLogger.Printf("Kitchen station created: %s (%s)", station.Name, station.StationType)
	utils.RespondJSON(c, http.StatusCreated, "Station created", station)
}

// UpdateStation patches station settings. Stations are deactivated via
// is_active rather than deleted so performance history survives.
func (kc *KDSController) UpdateStation(c *gin.Context) {
	if !roleIn(callerRole(c), "admin", "manager") {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var station models.KitchenStation
	if err := kc.DB.First(&station, c.Param("station_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("station not found"))
		return
	}

	var req struct {
		Name                *string `json:"name"`
		Description         *string `json:"description"`
		StationType         *string `json:"station_type"`
		IsActive            *bool   `json:"is_active"`
		DisplayOrder        *int    `json:"display_order"`
		MaxConcurrentOrders *int    `json:"max_concurrent_orders"`
		AveragePrepTime     *int    `json:"average_prep_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		station.Name = *req.Name
	}
	if req.Description != nil {
		station.Description = *req.Description
	}
	if req.StationType != nil {
		station.StationType = *req.StationType
	}
	if req.IsActive != nil {
		station.IsActive = *req.IsActive
	}
	if req.DisplayOrder != nil {
		station.DisplayOrder = *req.DisplayOrder
	}
	if req.MaxConcurrentOrders != nil {
		station.MaxConcurrentOrders = *req.MaxConcurrentOrders
	}
	if req.AveragePrepTime != nil {
		station.AveragePrepTime = req.AveragePrepTime
	}
	station.UpdatedAt = time.Now()

	if err := kc.DB.Save(&station).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Station updated", station)
}

// ==================== KDS ORDER VIEWS ====================

type KDSItemView struct {
	ID                  uint       `json:"id"`
	OrderID             uint       `json:"order_id"`
	MenuItemID          uint       `json:"menu_item_id"`
	MenuItemName        string     `json:"menu_item_name"`
	Quantity            int        `json:"quantity"`
	Price               float64    `json:"price"`
	SpecialInstructions string     `json:"special_instructions"`
	StationID           *uint      `json:"station_id"`
	StationName         string     `json:"station_name"`
	Priority            int        `json:"priority"`
	PrepStatus          string     `json:"prep_status"`
	PrepStartTime       *time.Time `json:"prep_start_time"`
	PrepEndTime         *time.Time `json:"prep_end_time"`
	AssignedChefID      *uint      `json:"assigned_chef_id"`
	AssignedChefName    string     `json:"assigned_chef_name"`
	PreparationNotes    string     `json:"preparation_notes"`
	EstimatedPrepTime   *int       `json:"estimated_prep_time"`
	CreatedAt           time.Time  `json:"created_at"`
}

type KDSOrderView struct {
	ID                uint          `json:"id"`
	TableNumber       *int          `json:"table_number"`
	CustomerName      string        `json:"customer_name"`
	Status            string        `json:"status"`
	KitchenStatus     string        `json:"kitchen_status"`
	TotalAmount       float64       `json:"total_amount"`
	SpecialNotes      string        `json:"special_notes"`
	CreatedAt         time.Time     `json:"created_at"`
	KitchenReceivedAt *time.Time    `json:"kitchen_received_at"`
	AllItemsReadyAt   *time.Time    `json:"all_items_ready_at"`
	OrderItems        []KDSItemView `json:"order_items"`
}

func buildKDSItemView(item models.OrderItem) KDSItemView {
	view := KDSItemView{
		ID:                  item.ID,
		OrderID:             item.OrderID,
		MenuItemID:          item.MenuItemID,
		MenuItemName:        item.MenuItem.Name,
		Quantity:            item.Quantity,
		Price:               item.Price,
		SpecialInstructions: item.SpecialInstructions,
		StationID:           item.StationID,
		Priority:            item.Priority,
		PrepStatus:          item.PrepStatus,
		PrepStartTime:       item.PrepStartTime,
		PrepEndTime:         item.PrepEndTime,
		AssignedChefID:      item.AssignedChefID,
		PreparationNotes:    item.PreparationNotes,
		EstimatedPrepTime:   item.EstimatedPrepTime,
		CreatedAt:           item.CreatedAt,
	}
	if item.Station != nil {
		view.StationName = item.Station.Name
	}
	if item.AssignedChef != nil {
		view.AssignedChefName = item.AssignedChef.Username
	}
	return view
}

func buildKDSOrderView(order models.Order, items []models.OrderItem) KDSOrderView {
	view := KDSOrderView{
		ID:                order.ID,
		CustomerName:      order.CustomerName,
		Status:            order.Status,
		KitchenStatus:     order.KitchenStatus,
		TotalAmount:       order.TotalAmount,
		SpecialNotes:      order.SpecialNotes,
		CreatedAt:         order.CreatedAt,
		KitchenReceivedAt: order.KitchenReceivedAt,
		AllItemsReadyAt:   order.AllItemsReadyAt,
		OrderItems:        make([]KDSItemView, 0, len(items)),
	}
	if view.KitchenStatus == "" {
		view.KitchenStatus = models.KitchenStatusPending
	}
	if order.Table != nil {
		n := order.Table.TableNumber
		view.TableNumber = &n
	}
	for _, item := range items {
		view.OrderItems = append(view.OrderItems, buildKDSItemView(item))
	}
	return view
}

func (kc *KDSController) kdsOrderQuery() *gorm.DB {
	return kc.DB.
		Preload("OrderItems.MenuItem").
		Preload("OrderItems.Station").
		Preload("OrderItems.AssignedChef").
		Preload("Table")
}

// GetActiveOrders returns the ticket rail. A station_id query narrows
// each ticket to that station's items; orders with nothing for the
// station are skipped entirely.
func (kc *KDSController) GetActiveOrders(c *gin.Context) {
	query := kc.kdsOrderQuery().Where("status IN ?", kdsVisibleStatuses)

	if statusFilter := c.Query("status_filter"); statusFilter != "" {
		query = query.Where("kitchen_status = ?", statusFilter)
	} else {
		query = query.Where("kitchen_status IN ?", unbumpedKitchenStatuses)
	}

	var orders []models.Order
	if err := query.Order("created_at").Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var stationID uint
	if s := c.Query("station_id"); s != "" {
		fmt.Sscanf(s, "%d", &stationID)
	}

	views := make([]KDSOrderView, 0, len(orders))
	for _, order := range orders {
		items := order.OrderItems
		if stationID != 0 {
			filtered := items[:0:0]
			for _, item := range items {
				if item.StationID != nil && *item.StationID == stationID {
					filtered = append(filtered, item)
				}
			}
			if len(filtered) == 0 {
				continue
			}
			items = filtered
		}
		views = append(views, buildKDSOrderView(order, items))
	}

	utils.RespondJSON(c, http.StatusOK, "Active kitchen orders", views)
}

// GetOrderKDSView returns one order in the flat KDS shape.
func (kc *KDSController) GetOrderKDSView(c *gin.Context) {
	var order models.Order
	if err := kc.kdsOrderQuery().First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order KDS view", buildKDSOrderView(order, order.OrderItems))
}

// ==================== ITEM TRANSITIONS ====================

// recomputeOrderAggregate re-derives the order-level kitchen status from
// the items. The all-ready stamp is written at most once.
func recomputeOrderAggregate(tx *gorm.DB, orderID uint) (bool, error) {
	var order models.Order
	if err := tx.Preload("OrderItems").First(&order, orderID).Error; err != nil {
		return false, err
	}

	allReady := len(order.OrderItems) > 0
	for _, sibling := range order.OrderItems {
		if sibling.PrepStatus != models.PrepStatusReady {
			allReady = false
			break
		}
	}

	if allReady && order.AllItemsReadyAt == nil {
		now := time.Now()
		order.AllItemsReadyAt = &now
		order.KitchenStatus = models.KitchenStatusAllReady
		order.Status = models.OrderStatusReady
		if err := tx.Save(&order).Error; err != nil {
			return allReady, err
		}
	}
	return allReady, nil
}

func broadcastItemChange(item models.OrderItem) {
	name := item.MenuItem.Name
	if name == "" {
		name = "Unknown"
	}
	kds.BroadcastOrderItemStatusChanged(gin.H{
		"id":             item.ID,
		"order_id":       item.OrderID,
		"menu_item_name": name,
		"prep_status":    item.PrepStatus,
		"station_id":     item.StationID,
		"updated_at":     item.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

// StartItem marks an item as being cooked. Repeating the call changes
// nothing: the start time, chef and received stamp are all set-if-unset.
func (kc *KDSController) StartItem(c *gin.Context) {
	var item models.OrderItem
	if err := kc.DB.Preload("MenuItem").First(&item, c.Param("item_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order item not found"))
		return
	}

	now := time.Now()
	chefID := callerID(c)

	err := kc.DB.Transaction(func(tx *gorm.DB) error {
		item.PrepStatus = models.PrepStatusPreparing
		if item.PrepStartTime == nil {
			item.PrepStartTime = &now
		}
		if item.AssignedChefID == nil && chefID != 0 {
			item.AssignedChefID = &chefID
		}
		item.UpdatedAt = now
		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		var order models.Order
		if err := tx.First(&order, item.OrderID).Error; err != nil {
			return err
		}
		if order.KitchenStatus == models.KitchenStatusPending || order.KitchenStatus == "" {
			order.KitchenStatus = models.KitchenStatusReceived
			if order.KitchenReceivedAt == nil {
				order.KitchenReceivedAt = &now
			}
		}
		if order.KitchenStatus == models.KitchenStatusReceived {
			order.KitchenStatus = models.KitchenStatusInProgress
		}
		return tx.Save(&order).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	monitoring.ItemTransitions.WithLabelValues(models.PrepStatusPreparing).Inc()
	broadcastItemChange(item)

	utils.RespondJSON(c, http.StatusOK, "Item preparation started", item)
}

// UpdateItemStatus is the generic partial patch used by the KDS touch UI.
// Reaching "ready" with a known start time writes a completion log row.
func (kc *KDSController) UpdateItemStatus(c *gin.Context) {
	var item models.OrderItem
	if err := kc.DB.Preload("MenuItem").First(&item, c.Param("item_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order item not found"))
		return
	}

	var req struct {
		PrepStatus        *string `json:"prep_status"`
		StationID         *uint   `json:"station_id"`
		Priority          *int    `json:"priority"`
		PreparationNotes  *string `json:"preparation_notes"`
		EstimatedPrepTime *int    `json:"estimated_prep_time"`
		AssignedChefID    *uint   `json:"assigned_chef_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	now := time.Now()
	chefID := callerID(c)

	err := kc.DB.Transaction(func(tx *gorm.DB) error {
		if req.StationID != nil {
			item.StationID = req.StationID
		}
		if req.Priority != nil {
			item.Priority = *req.Priority
		}
		if req.PreparationNotes != nil {
			item.PreparationNotes = *req.PreparationNotes
		}
		if req.EstimatedPrepTime != nil {
			item.EstimatedPrepTime = req.EstimatedPrepTime
		}
		if req.AssignedChefID != nil {
			item.AssignedChefID = req.AssignedChefID
		}

		if req.PrepStatus != nil {
			item.PrepStatus = *req.PrepStatus

			switch *req.PrepStatus {
			case models.PrepStatusPreparing:
				if item.PrepStartTime == nil {
					item.PrepStartTime = &now
				}
				if item.AssignedChefID == nil && chefID != 0 {
					item.AssignedChefID = &chefID
				}
			case models.PrepStatusReady:
				if item.PrepEndTime == nil {
					item.PrepEndTime = &now
					if item.PrepStartTime != nil && item.StationID != nil {
						duration := int(now.Sub(*item.PrepStartTime).Seconds())
						log := models.KitchenPerformanceLog{
							StationID:       *item.StationID,
							OrderItemID:     item.ID,
							Action:          "completed",
							DurationSeconds: &duration,
						}
						if chefID != 0 {
							log.ChefID = &chefID
						}
						if err := tx.Create(&log).Error; err != nil {
							return err
						}
					}
				}
			}
		}

		item.UpdatedAt = now
		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		if req.PrepStatus != nil {
			if _, err := recomputeOrderAggregate(tx, item.OrderID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if req.PrepStatus != nil {
		monitoring.ItemTransitions.WithLabelValues(item.PrepStatus).Inc()
	}
	broadcastItemChange(item)

	utils.RespondJSON(c, http.StatusOK, "Item status updated", item)
}

// CompleteItem is the one-tap "done" shortcut for the KDS.
func (kc *KDSController) CompleteItem(c *gin.Context) {
	var item models.OrderItem
	if err := kc.DB.Preload("MenuItem").First(&item, c.Param("item_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order item not found"))
		return
	}

	now := time.Now()
	chefID := callerID(c)
	var allReady bool

	err := kc.DB.Transaction(func(tx *gorm.DB) error {
		item.PrepStatus = models.PrepStatusReady
		if item.PrepEndTime == nil {
			item.PrepEndTime = &now
		}
		item.UpdatedAt = now

		// Completing an item that was never started skips the duration
		// log: there is nothing meaningful to measure.
		if item.PrepStartTime != nil && item.StationID != nil {
			duration := int(now.Sub(*item.PrepStartTime).Seconds())
			log := models.KitchenPerformanceLog{
				StationID:       *item.StationID,
				OrderItemID:     item.ID,
				Action:          "completed",
				DurationSeconds: &duration,
			}
			if chefID != 0 {
				log.ChefID = &chefID
			}
			if err := tx.Create(&log).Error; err != nil {
				return err
			}
		}

		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		var err error
		allReady, err = recomputeOrderAggregate(tx, item.OrderID)
		return err
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	monitoring.ItemTransitions.WithLabelValues(models.PrepStatusReady).Inc()
	broadcastItemChange(item)

	utils.RespondJSON(c, http.StatusOK, "Item marked as ready", gin.H{
		"item":            item,
		"all_items_ready": allReady,
	})
}

// ==================== BUMP ====================

// BumpOrder clears a ticket from the display. With a station_id only that
// station's items are served; without, the whole order is bumped.
func (kc *KDSController) BumpOrder(c *gin.Context) {
	var order models.Order
	if err := kc.DB.Preload("OrderItems").Preload("Table").
		First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}

	var req struct {
		StationID *uint `json:"station_id"`
	}
	// Body is optional for a full bump.
	_ = c.ShouldBindJSON(&req)

	now := time.Now()

	err := kc.DB.Transaction(func(tx *gorm.DB) error {
		if req.StationID != nil {
			for i := range order.OrderItems {
				item := &order.OrderItems[i]
				if item.StationID != nil && *item.StationID == *req.StationID {
					item.PrepStatus = models.PrepStatusServed
					item.UpdatedAt = now
					if err := tx.Save(item).Error; err != nil {
						return err
					}
				}
			}
			return nil
		}

		order.BumpedAt = &now
		order.KitchenStatus = models.KitchenStatusBumped
		for i := range order.OrderItems {
			order.OrderItems[i].PrepStatus = models.PrepStatusServed
			order.OrderItems[i].UpdatedAt = now
			if err := tx.Save(&order.OrderItems[i]).Error; err != nil {
				return err
			}
		}
		return tx.Save(&order).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	monitoring.OrdersBumped.Inc()

	payload := gin.H{
		"id":               order.ID,
		"station_specific": req.StationID,
	}
	if order.Table != nil {
		payload["table_number"] = order.Table.TableNumber
	}
	if order.BumpedAt != nil {
		payload["bumped_at"] = order.BumpedAt.UTC().Format(time.RFC3339)
	}
	kds.BroadcastOrderBumped(payload)

	utils.InfoLogger.Printf("Order %d bumped (station=%v)", order.ID, req.StationID)
	utils.RespondJSON(c, http.StatusOK, "Order bumped successfully", order)
}

// ==================== REASSIGNMENT ====================

// ReassignItem moves an item to another station mid-service. The audit
// row is written against the station the item left.
func (kc *KDSController) ReassignItem(c *gin.Context) {
	if !roleIn(callerRole(c), "admin", "manager", "chef") {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var req struct {
		OrderItemID  uint   `json:"order_item_id" binding:"required"`
		NewStationID uint   `json:"new_station_id" binding:"required"`
		NewChefID    *uint  `json:"new_chef_id"`
		Reason       string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var item models.OrderItem
	if err := kc.DB.Preload("MenuItem").First(&item, req.OrderItemID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order item not found"))
		return
	}

	oldStationName := "Unknown"
	newStationName := "Unknown"
	var oldStation, newStation models.KitchenStation
	if item.StationID != nil {
		if err := kc.DB.First(&oldStation, *item.StationID).Error; err == nil {
			oldStationName = oldStation.Name
		}
	}
	if err := kc.DB.First(&newStation, req.NewStationID).Error; err == nil {
		newStationName = newStation.Name
	}

	oldStationID := item.StationID
	now := time.Now()
	chefID := callerID(c)

	err := kc.DB.Transaction(func(tx *gorm.DB) error {
		item.StationID = &req.NewStationID
		if req.NewChefID != nil {
			item.AssignedChefID = req.NewChefID
		}
		item.UpdatedAt = now
		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		if oldStationID != nil {
			notes := req.Reason
			if notes == "" {
				notes = fmt.Sprintf("Reassigned to station %d", req.NewStationID)
			}
			log := models.KitchenPerformanceLog{
				StationID:   *oldStationID,
				OrderItemID: item.ID,
				Action:      "reassigned",
				Notes:       notes,
			}
			if chefID != 0 {
				log.ChefID = &chefID
			}
			if err := tx.Create(&log).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	kds.BroadcastOrderItemReassigned(gin.H{
		"id":             item.ID,
		"order_id":       item.OrderID,
		"menu_item_name": item.MenuItem.Name,
		"updated_at":     item.UpdatedAt.UTC().Format(time.RFC3339),
	}, oldStationName, newStationName)

	utils.InfoLogger.Printf("Order item %d reassigned: %s -> %s", item.ID, oldStationName, newStationName)
	utils.RespondJSON(c, http.StatusOK, "Item reassigned successfully", item)
}

// ==================== PERFORMANCE ====================

type StationPerformance struct {
	StationID           uint     `json:"station_id"`
	StationName         string   `json:"station_name"`
	ActiveOrders        int64    `json:"active_orders"`
	PendingItems        int64    `json:"pending_items"`
	PreparingItems      int64    `json:"preparing_items"`
	ReadyItems          int64    `json:"ready_items"`
	AvgPrepTimeMinutes  *float64 `json:"avg_prep_time_minutes"`
	ItemsCompletedToday int64    `json:"items_completed_today"`
	OnTimePercentage    *float64 `json:"on_time_percentage"`
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (kc *KDSController) stationPerformance(station models.KitchenStation) StationPerformance {
	perf := StationPerformance{
		StationID:   station.ID,
		StationName: station.Name,
	}

	kc.DB.Model(&models.OrderItem{}).
		Where("station_id = ? AND prep_status IN ?", station.ID,
			[]string{models.PrepStatusPending, models.PrepStatusAssigned, models.PrepStatusPreparing}).
		Distinct("order_id").Count(&perf.ActiveOrders)

	kc.DB.Model(&models.OrderItem{}).
		Where("station_id = ? AND prep_status = ?", station.ID, models.PrepStatusPending).
		Count(&perf.PendingItems)
	kc.DB.Model(&models.OrderItem{}).
		Where("station_id = ? AND prep_status = ?", station.ID, models.PrepStatusPreparing).
		Count(&perf.PreparingItems)
	kc.DB.Model(&models.OrderItem{}).
		Where("station_id = ? AND prep_status = ?", station.ID, models.PrepStatusReady).
		Count(&perf.ReadyItems)

	todayStart := startOfToday()

	kc.DB.Model(&models.OrderItem{}).
		Where("station_id = ? AND prep_status = ? AND prep_end_time >= ?",
			station.ID, models.PrepStatusReady, todayStart).
		Count(&perf.ItemsCompletedToday)

	// Average from today's completion logs, computed over loaded rows so
	// the math is identical across database drivers.
	var logs []models.KitchenPerformanceLog
	kc.DB.Where("station_id = ? AND action = ? AND created_at >= ?",
		station.ID, "completed", todayStart).Find(&logs)
	var totalSeconds, logCount float64
	for _, log := range logs {
		if log.DurationSeconds != nil {
			totalSeconds += float64(*log.DurationSeconds)
			logCount++
		}
	}
	if logCount > 0 {
		avg := math.Round(totalSeconds/logCount/60*10) / 10
		perf.AvgPrepTimeMinutes = &avg
	}

	// On-time share of today's completed items that carried an estimate.
	var completed []models.OrderItem
	kc.DB.Where("station_id = ? AND prep_status = ? AND prep_end_time >= ? AND estimated_prep_time IS NOT NULL",
		station.ID, models.PrepStatusReady, todayStart).Find(&completed)

	var onTime, withEstimate float64
	for _, item := range completed {
		if item.PrepStartTime == nil || item.PrepEndTime == nil || item.EstimatedPrepTime == nil {
			continue
		}
		actualMinutes := item.PrepEndTime.Sub(*item.PrepStartTime).Minutes()
		if actualMinutes <= float64(*item.EstimatedPrepTime)+OnTimeGraceMinutes {
			onTime++
		}
		withEstimate++
	}
	if withEstimate > 0 {
		pct := math.Round(onTime/withEstimate*100*10) / 10
		perf.OnTimePercentage = &pct
	}

	return perf
}

// GetStationPerformance reports live load and today's throughput for one
// station.
func (kc *KDSController) GetStationPerformance(c *gin.Context) {
	var station models.KitchenStation
	if err := kc.DB.First(&station, c.Param("station_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("station not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Station performance", kc.stationPerformance(station))
}

// GetDashboardStats aggregates the whole kitchen for the expo screen.
// Everything is recomputed per request.
func (kc *KDSController) GetDashboardStats(c *gin.Context) {
	var totalActiveOrders int64
	kc.DB.Model(&models.Order{}).
		Where("status IN ? AND kitchen_status IN ?", kdsVisibleStatuses, unbumpedKitchenStatuses).
		Count(&totalActiveOrders)

	var totalPending, totalPreparing, totalReady int64
	kc.DB.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.prep_status IN ? AND orders.status IN ?",
			[]string{models.PrepStatusPending, models.PrepStatusAssigned}, kdsVisibleStatuses).
		Count(&totalPending)
	kc.DB.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.prep_status = ? AND orders.status IN ?",
			models.PrepStatusPreparing, kdsVisibleStatuses).
		Count(&totalPreparing)
	kc.DB.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.prep_status = ? AND orders.status = ?",
			models.PrepStatusReady, models.OrderStatusReady).
		Count(&totalReady)

	var stations []models.KitchenStation
	kc.DB.Where("is_active = ?", true).Order("display_order").Find(&stations)

	performances := make([]StationPerformance, 0, len(stations))
	for _, station := range stations {
		performances = append(performances, kc.stationPerformance(station))
	}

	var oldestView *KDSOrderView
	var oldest models.Order
	err := kc.kdsOrderQuery().
		Where("status IN ? AND kitchen_status IN ?",
			[]string{models.OrderStatusConfirmed, models.OrderStatusPreparing},
			[]string{models.KitchenStatusPending, models.KitchenStatusReceived, models.KitchenStatusInProgress}).
		Order("created_at").First(&oldest).Error
	if err == nil {
		view := buildKDSOrderView(oldest, oldest.OrderItems)
		oldestView = &view
	}

	// Ticket time runs from kitchen receipt (or order creation when the
	// kitchen never acknowledged) to the all-ready stamp.
	todayStart := startOfToday()
	var completedToday []models.Order
	kc.DB.Where("all_items_ready_at IS NOT NULL AND all_items_ready_at >= ?", todayStart).
		Find(&completedToday)

	var totalTicketMinutes float64
	var ticketCount float64
	for _, order := range completedToday {
		start := order.CreatedAt
		if order.KitchenReceivedAt != nil {
			start = *order.KitchenReceivedAt
		}
		totalTicketMinutes += order.AllItemsReadyAt.Sub(start).Minutes()
		ticketCount++
	}
	var avgTicketTime *float64
	if ticketCount > 0 {
		avg := math.Round(totalTicketMinutes/ticketCount*10) / 10
		avgTicketTime = &avg
	}

	utils.RespondJSON(c, http.StatusOK, "KDS dashboard statistics", gin.H{
		"total_active_orders":         totalActiveOrders,
		"total_pending_items":         totalPending,
		"total_preparing_items":       totalPreparing,
		"total_ready_items":           totalReady,
		"stations":                    performances,
		"oldest_pending_order":        oldestView,
		"average_ticket_time_minutes": avgTicketTime,
	})
}

// ==================== DISPLAY SETTINGS ====================

func defaultDisplaySettings(stationID uint) models.TicketDisplaySettings {
	return models.TicketDisplaySettings{
		StationID:             stationID,
		FontSize:              "medium",
		ShowCustomerNames:     true,
		ShowTicketTimes:       true,
		ShowSpecialRequests:   true,
		AutoBumpCompleted:     false,
		BumpDelaySeconds:      0,
		AlertThresholdMinutes: 15,
	}
}

// GetDisplaySettings returns the station's screen preferences, falling
// back to defaults when nothing has been saved yet.
func (kc *KDSController) GetDisplaySettings(c *gin.Context) {
	var stationID uint
	fmt.Sscanf(c.Param("station_id"), "%d", &stationID)

	var settings models.TicketDisplaySettings
	if err := kc.DB.Where("station_id = ?", stationID).First(&settings).Error; err != nil {
		utils.RespondJSON(c, http.StatusOK, "Display settings (defaults)", defaultDisplaySettings(stationID))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Display settings", settings)
}

// UpdateDisplaySettings upserts the station's screen preferences
// (admin/manager only).
func (kc *KDSController) UpdateDisplaySettings(c *gin.Context) {
	if !roleIn(callerRole(c), "admin", "manager") {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var stationID uint
	fmt.Sscanf(c.Param("station_id"), "%d", &stationID)

	var req struct {
		FontSize              *string `json:"font_size"`
		ShowCustomerNames     *bool   `json:"show_customer_names"`
		ShowTicketTimes       *bool   `json:"show_ticket_times"`
		ShowSpecialRequests   *bool   `json:"show_special_requests"`
		AutoBumpCompleted     *bool   `json:"auto_bump_completed"`
		BumpDelaySeconds      *int    `json:"bump_delay_seconds"`
		AlertThresholdMinutes *int    `json:"alert_threshold_minutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var settings models.TicketDisplaySettings
	if err := kc.DB.Where("station_id = ?", stationID).First(&settings).Error; err != nil {
		settings = defaultDisplaySettings(stationID)
	}

	if req.FontSize != nil {
		settings.FontSize = *req.FontSize
	}
	if req.ShowCustomerNames != nil {
		settings.ShowCustomerNames = *req.ShowCustomerNames
	}
	if req.ShowTicketTimes != nil {
		settings.ShowTicketTimes = *req.ShowTicketTimes
	}
	if req.ShowSpecialRequests != nil {
		settings.ShowSpecialRequests = *req.ShowSpecialRequests
	}
	if req.AutoBumpCompleted != nil {
		settings.AutoBumpCompleted = *req.AutoBumpCompleted
	}
	if req.BumpDelaySeconds != nil {
		settings.BumpDelaySeconds = *req.BumpDelaySeconds
	}
	if req.AlertThresholdMinutes != nil {
		settings.AlertThresholdMinutes = *req.AlertThresholdMinutes
	}
	settings.UpdatedAt = time.Now()

	if err := kc.DB.Save(&settings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Display settings updated", settings)
}

// ==================== STATION ASSIGNMENTS ====================

// GetAssignments lists the chef shift roster, optionally for one station.
func (kc *KDSController) GetAssignments(c *gin.Context) {
	query := kc.DB.Preload("Chef").Preload("Station")
	if stationID := c.Query("station_id"); stationID != "" {
		query = query.Where("station_id = ?", stationID)
	}

	var assignments []models.StationAssignment
	if err := query.Order("shift_start DESC").Find(&assignments).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Station assignments", assignments)
}

// CreateAssignment puts a chef on a station for a shift (admin/manager).
func (kc *KDSController) CreateAssignment(c *gin.Context) {
	if !roleIn(callerRole(c), "admin", "manager") {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var req struct {
		ChefID     uint       `json:"chef_id" binding:"required"`
		StationID  uint       `json:"station_id" binding:"required"`
		ShiftStart time.Time  `json:"shift_start" binding:"required"`
		ShiftEnd   *time.Time `json:"shift_end"`
		IsPrimary  bool       `json:"is_primary"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var station models.KitchenStation
	if err := kc.DB.First(&station, req.StationID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("station not found"))
		return
	}
	var chef models.User
	if err := kc.DB.First(&chef, req.ChefID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("chef not found"))
		return
	}

	assignment := models.StationAssignment{
		ChefID:     req.ChefID,
		StationID:  req.StationID,
		ShiftStart: req.ShiftStart,
		ShiftEnd:   req.ShiftEnd,
		IsPrimary:  req.IsPrimary,
	}
	if err := kc.DB.Create(&assignment).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Chef %s assigned to station %s", chef.Username, station.Name)
	utils.RespondJSON(c, http.StatusCreated, "Assignment created", assignment)
}
