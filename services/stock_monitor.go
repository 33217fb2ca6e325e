package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dinehub/restaurant-backend/kds"
	"github.com/dinehub/restaurant-backend/models"
	"github.com/dinehub/restaurant-backend/utils"
)

// StockMonitor sweeps the inventory on a ticker and alerts the kitchen
// and managers about anything at or under its minimum. Each sweep sends
// at most one alert per item.
type StockMonitor struct {
	DB       *gorm.DB
	StopChan chan struct{}
	Interval time.Duration

	// alerted tracks item IDs already announced, cleared once the item
	// recovers above its threshold.
	alerted map[uint]bool
}

func NewStockMonitor(db *gorm.DB) *StockMonitor {
	return &StockMonitor{
		DB:       db,
		StopChan: make(chan struct{}),
		Interval: 5 * time.Minute,
		alerted:  make(map[uint]bool),
	}
}

func (sm *StockMonitor) Start() {
	go func() {
		ticker := time.NewTicker(sm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sm.sweep()
			case <-sm.StopChan:
				return
			}
		}
	}()
}

func (sm *StockMonitor) Stop() {
	close(sm.StopChan)
}

func severityFor(item models.InventoryItem) string {
	switch {
	case item.CurrentQuantity <= 0:
		return "critical"
	case item.CurrentQuantity <= item.MinQuantity/2:
		return "high"
	case item.CurrentQuantity <= item.MinQuantity:
		return "warning"
	}
	return ""
}

func (sm *StockMonitor) sweep() {
	var items []models.InventoryItem
	if err := sm.DB.Where("is_active = ?", true).Find(&items).Error; err != nil {
		utils.ErrorLogger.Printf("stock monitor: error fetching inventory: %v", err)
		return
	}

	for _, item := range items {
		severity := severityFor(item)
		if severity == "" {
			delete(sm.alerted, item.ID)
			continue
		}
		if sm.alerted[item.ID] {
			continue
		}
		sm.alerted[item.ID] = true

		utils.InfoLogger.Printf("stock monitor: %s low (%.2f %s, severity=%s)",
			item.Name, item.CurrentQuantity, item.Unit, severity)
		kds.BroadcastInventoryLow(
			fmt.Sprintf("%s is low: %.2f %s remaining", item.Name, item.CurrentQuantity, item.Unit),
			map[string]interface{}{
				"item_id":          item.ID,
				"name":             item.Name,
				"current_quantity": item.CurrentQuantity,
				"min_quantity":     item.MinQuantity,
				"severity":         severity,
			})
	}
}
