package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dinehub/restaurant-backend/kds"
	"github.com/dinehub/restaurant-backend/models"
	"github.com/dinehub/restaurant-backend/utils"
)

// TicketMonitor watches for kitchen tickets running past their station's
// alert threshold and nudges the chef and manager rooms. It only
// observes; nothing is bumped or cancelled automatically.
type TicketMonitor struct {
	DB       *gorm.DB
	StopChan chan struct{}
	Interval time.Duration

	alerted map[uint]bool
}

func NewTicketMonitor(db *gorm.DB) *TicketMonitor {
	return &TicketMonitor{
		DB:       db,
		StopChan: make(chan struct{}),
		Interval: 1 * time.Minute,
		alerted:  make(map[uint]bool),
	}
}

func (tm *TicketMonitor) Start() {
	go func() {
		ticker := time.NewTicker(tm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				tm.sweep()
			case <-tm.StopChan:
				return
			}
		}
	}()
}

func (tm *TicketMonitor) Stop() {
	close(tm.StopChan)
}

// thresholdFor reads the station's configured alert threshold, default
// 15 minutes when nothing is saved.
func (tm *TicketMonitor) thresholdFor(stationID *uint) time.Duration {
	minutes := 15
	if stationID != nil {
		var settings models.TicketDisplaySettings
		if err := tm.DB.Where("station_id = ?", *stationID).First(&settings).Error; err == nil {
			if settings.AlertThresholdMinutes > 0 {
				minutes = settings.AlertThresholdMinutes
			}
		}
	}
	return time.Duration(minutes) * time.Minute
}

func (tm *TicketMonitor) sweep() {
	var orders []models.Order
	err := tm.DB.Preload("OrderItems").
		Where("status IN ? AND kitchen_status IN ?",
			[]string{models.OrderStatusConfirmed, models.OrderStatusPreparing},
			[]string{models.KitchenStatusPending, models.KitchenStatusReceived, models.KitchenStatusInProgress}).
		Find(&orders).Error
	if err != nil {
		utils.ErrorLogger.Printf("ticket monitor: error fetching orders: %v", err)
		return
	}

	now := time.Now()
	for _, order := range orders {
		overdue := false
		var worstAge time.Duration

		for _, item := range order.OrderItems {
			if item.PrepStatus == models.PrepStatusReady ||
				item.PrepStatus == models.PrepStatusServed ||
				item.PrepStatus == models.PrepStatusCancelled {
				continue
			}

			ticketStart := order.CreatedAt
			if order.KitchenReceivedAt != nil {
				ticketStart = *order.KitchenReceivedAt
			}
			age := now.Sub(ticketStart)
			if age > tm.thresholdFor(item.StationID) {
				overdue = true
				if age > worstAge {
					worstAge = age
				}
			}
		}

		if !overdue {
			delete(tm.alerted, order.ID)
			continue
		}
		if tm.alerted[order.ID] {
			continue
		}
		tm.alerted[order.ID] = true

		minutes := int(worstAge.Minutes())
		utils.InfoLogger.Printf("ticket monitor: order %d overdue (%d min)", order.ID, minutes)
		kds.BroadcastKitchenPerformanceAlert(
			fmt.Sprintf("Order #%d has been waiting %d minutes", order.ID, minutes),
			map[string]interface{}{
				"order_id":    order.ID,
				"minutes":     minutes,
				"alerted_at":  now.UTC().Format(time.RFC3339),
				"customer":    order.CustomerName,
				"order_total": order.TotalAmount,
			})
	}
}
