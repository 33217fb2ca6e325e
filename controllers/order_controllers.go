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
	"github.com/dinehub/restaurant-backend/monitoring"
	"github.com/dinehub/restaurant-backend/utils"
)

type OrderController struct {
	DB *gorm.DB
}

func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{DB: db}
}

// CreateOrder places an order for a table (or a walk-in customer),
// pricing each line from the current menu.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	type ItemReq struct {
		MenuItemID          uint   `json:"menu_item_id" binding:"required"`
		Quantity            int    `json:"quantity" binding:"required,min=1"`
		SpecialInstructions string `json:"special_instructions"`
		StationID           *uint  `json:"station_id"`
		Priority            int    `json:"priority"`
	}
	var req struct {
		TableID      *uint     `json:"table_id"`
		CustomerName string    `json:"customer_name"`
		SpecialNotes string    `json:"special_notes"`
		Items        []ItemReq `json:"items" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var createdBy *uint
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uint); ok {
			createdBy = &id
		}
	}

	order := models.Order{
		TableID:       req.TableID,
		CustomerName:  req.CustomerName,
		CreatedBy:     createdBy,
		Status:        models.OrderStatusPending,
		KitchenStatus: models.KitchenStatusPending,
		SpecialNotes:  req.SpecialNotes,
	}

	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		if req.TableID != nil {
			var table models.Table
			if err := tx.First(&table, *req.TableID).Error; err != nil {
				return fmt.Errorf("table not found")
			}
			table.Status = "occupied"
			table.UpdatedAt = time.Now()
			if err := tx.Save(&table).Error; err != nil {
				return err
			}
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		var total float64
		for _, item := range req.Items {
			var menu models.MenuItem
			if err := tx.First(&menu, item.MenuItemID).Error; err != nil {
				return fmt.Errorf("menu item %d not found", item.MenuItemID)
			}
			if !menu.IsAvailable {
				return fmt.Errorf("menu item %s is not available", menu.Name)
			}
			total += float64(item.Quantity) * menu.Price

			estimated := menu.PreparationTime
			orderItem := models.OrderItem{
				OrderID:             order.ID,
				MenuItemID:          menu.ID,
				Quantity:            item.Quantity,
				Price:               menu.Price,
				SpecialInstructions: item.SpecialInstructions,
				StationID:           item.StationID,
				Priority:            item.Priority,
				PrepStatus:          models.PrepStatusPending,
			}
			if estimated > 0 {
				orderItem.EstimatedPrepTime = &estimated
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}
		}

		order.TotalAmount = total
		return tx.Save(&order).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	oc.DB.Preload("OrderItems.MenuItem").Preload("Table").First(&order, order.ID)

	monitoring.OrdersCreated.Inc()
	kds.BroadcastNewOrder(fmt.Sprintf("New order #%d received", order.ID), order)

	utils.InfoLogger.Printf("Order %d created with %d items (total=%.2f)",
		order.ID, len(order.OrderItems), order.TotalAmount)
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetAllOrders lists orders with their items, filterable by status and table.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	query := oc.DB.Preload("OrderItems.MenuItem").Preload("Table")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if tableID := c.Query("table_id"); tableID != "" {
		query = query.Where("table_id = ?", tableID)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	var order models.Order
	if err := oc.DB.Preload("OrderItems.MenuItem").Preload("Table").
		First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// UpdateOrderStatus moves the order through its lifecycle. Reaching
// "ready" notifies the staff room so runners can pick it up.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var order models.Order
	if err := oc.DB.Preload("OrderItems").First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	switch req.Status {
	case models.OrderStatusPending, models.OrderStatusConfirmed,
		models.OrderStatusPreparing, models.OrderStatusReady,
		models.OrderStatusServed, models.OrderStatusCompleted,
		models.OrderStatusCancelled:
	default:
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order status"))
		return
	}

	now := time.Now()
	order.Status = req.Status
	if req.Status == models.OrderStatusPreparing && order.StartedAt == nil {
		order.StartedAt = &now
	}
	if (req.Status == models.OrderStatusCompleted || req.Status == models.OrderStatusServed) &&
		order.CompletedAt == nil {
		order.CompletedAt = &now
	}
	order.UpdatedAt = now

	if err := oc.DB.Save(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	kds.BroadcastOrderStatusChanged(gin.H{
		"id":     order.ID,
		"status": order.Status,
	})
	if req.Status == models.OrderStatusReady {
		kds.BroadcastOrderReady(fmt.Sprintf("Order #%d is ready", order.ID), order)
	}

	utils.InfoLogger.Printf("Order %d status changed to %s", order.ID, order.Status)
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// DeleteOrder cancels and removes an order. Items cascade.
func (oc *OrderController) DeleteOrder(c *gin.Context) {
	var order models.Order
	if err := oc.DB.First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}

	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order deleted", nil)
}
