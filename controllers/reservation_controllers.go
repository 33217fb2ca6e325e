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
	"github.com/dinehub/restaurant-backend/utils"
)

type ReservationController struct {
	DB *gorm.DB
}

func NewReservationController(db *gorm.DB) *ReservationController {
	return &ReservationController{DB: db}
}

// slotWindow converts a "HH:MM" slot plus duration into a concrete
// window on the reservation date.
func slotWindow(date time.Time, slot string, durationMinutes int) (time.Time, time.Time, error) {
	parsed, err := time.Parse("15:04", slot)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid time slot %q", slot)
	}
	start := time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, date.Location())
	if durationMinutes <= 0 {
		durationMinutes = 90
	}
	return start, start.Add(time.Duration(durationMinutes) * time.Minute), nil
}

// hasConflict reports whether any live reservation for the table overlaps
// the requested window. Cancelled and no-show rows never block.
func (rc *ReservationController) hasConflict(tableID uint, start, end time.Time, excludeID uint) (bool, error) {
	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var existing []models.Reservation
	err := rc.DB.Where(
		"table_id = ? AND reservation_date >= ? AND reservation_date < ? AND status IN ?",
		tableID, dayStart, dayEnd,
		[]string{models.ReservationStatusPending, models.ReservationStatusConfirmed, models.ReservationStatusSeated},
	).Find(&existing).Error
	if err != nil {
		return false, err
	}

	for _, r := range existing {
		if r.ID == excludeID {
			continue
		}
		otherStart, otherEnd, err := slotWindow(r.ReservationDate, r.TimeSlot, r.Duration)
		if err != nil {
			continue
		}
		if start.Before(otherEnd) && otherStart.Before(end) {
			return true, nil
		}
	}
	return false, nil
}

// CheckAvailability lists tables that can seat the party at the
// requested slot.
func (rc *ReservationController) CheckAvailability(c *gin.Context) {
	var req struct {
		Date     string `form:"date" binding:"required"` // YYYY-MM-DD
		TimeSlot string `form:"time_slot" binding:"required"`
		Guests   int    `form:"guests" binding:"required,min=1"`
		Duration int    `form:"duration"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid date, expected YYYY-MM-DD"))
		return
	}

	start, end, err := slotWindow(date, req.TimeSlot, req.Duration)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var tables []models.Table
	if err := rc.DB.Where("capacity >= ?", req.Guests).Order("capacity").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	available := make([]models.Table, 0, len(tables))
	for _, table := range tables {
		conflict, err := rc.hasConflict(table.ID, start, end, 0)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		if !conflict {
			available = append(available, table)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Available tables", available)
}

// CreateReservation books a table, rejecting overlapping bookings.
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req struct {
		TableID         uint   `json:"table_id" binding:"required"`
		CustomerName    string `json:"customer_name" binding:"required"`
		CustomerEmail   string `json:"customer_email"`
		CustomerPhone   string `json:"customer_phone" binding:"required"`
		Date            string `json:"date" binding:"required"`
		TimeSlot        string `json:"time_slot" binding:"required"`
		Duration        int    `json:"duration"`
		Guests          int    `json:"guests" binding:"required,min=1"`
		SpecialRequests string `json:"special_requests"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table models.Table
	if err := rc.DB.First(&table, req.TableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("table not found"))
		return
	}
	if table.Capacity < req.Guests {
		utils.RespondError(c, http.StatusBadRequest,
			fmt.Errorf("table %d seats %d, party of %d does not fit", table.TableNumber, table.Capacity, req.Guests))
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid date, expected YYYY-MM-DD"))
		return
	}
	start, end, err := slotWindow(date, req.TimeSlot, req.Duration)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	conflict, err := rc.hasConflict(req.TableID, start, end, 0)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if conflict {
		utils.RespondError(c, http.StatusConflict, errors.New("table already reserved for this time slot"))
		return
	}

	duration := req.Duration
	if duration <= 0 {
		duration = 90
	}
	reservation := models.Reservation{
		TableID:         req.TableID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ReservationDate: start,
		TimeSlot:        req.TimeSlot,
		Duration:        duration,
		Guests:          req.Guests,
		SpecialRequests: req.SpecialRequests,
		Status:          models.ReservationStatusPending,
	}

	if err := rc.DB.Create(&reservation).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	kds.BroadcastReservationCreated(reservation)

	utils.InfoLogger.Printf("Reservation %d created for table %d (%s %s, %d guests)",
		reservation.ID, table.TableNumber, req.Date, req.TimeSlot, req.Guests)
	utils.RespondJSON(c, http.StatusCreated, "Reservation created", reservation)
}

// GetAllReservations lists reservations, filterable by date and status.
func (rc *ReservationController) GetAllReservations(c *gin.Context) {
	query := rc.DB.Preload("Table")

	if dateStr := c.Query("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid date, expected YYYY-MM-DD"))
			return
		}
		query = query.Where("reservation_date >= ? AND reservation_date < ?", date, date.Add(24*time.Hour))
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var reservations []models.Reservation
	if err := query.Order("reservation_date").Find(&reservations).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of reservations", reservations)
}

func (rc *ReservationController) GetReservationByID(c *gin.Context) {
	var reservation models.Reservation
	if err := rc.DB.Preload("Table").First(&reservation, c.Param("reservation_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation detail", reservation)
}

// ConfirmReservation moves a pending booking to confirmed.
func (rc *ReservationController) ConfirmReservation(c *gin.Context) {
	var reservation models.Reservation
	if err := rc.DB.First(&reservation, c.Param("reservation_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return
	}

	now := time.Now()
	reservation.Status = models.ReservationStatusConfirmed
	if reservation.ConfirmedAt == nil {
		reservation.ConfirmedAt = &now
	}
	reservation.UpdatedAt = now

	if err := rc.DB.Save(&reservation).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Reservation confirmed", reservation)
}

// CancelReservation releases the slot.
func (rc *ReservationController) CancelReservation(c *gin.Context) {
	var reservation models.Reservation
	if err := rc.DB.First(&reservation, c.Param("reservation_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return
	}

	reservation.Status = models.ReservationStatusCancelled
	reservation.UpdatedAt = time.Now()

	if err := rc.DB.Save(&reservation).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", reservation)
}

// CheckIn seats the party and occupies the table.
func (rc *ReservationController) CheckIn(c *gin.Context) {
	var reservation models.Reservation
	if err := rc.DB.First(&reservation, c.Param("reservation_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return
	}

	now := time.Now()
	err := rc.DB.Transaction(func(tx *gorm.DB) error {
		reservation.Status = models.ReservationStatusSeated
		if reservation.SeatedAt == nil {
			reservation.SeatedAt = &now
		}
		reservation.UpdatedAt = now
		if err := tx.Save(&reservation).Error; err != nil {
			return err
		}

		var table models.Table
		if err := tx.First(&table, reservation.TableID).Error; err != nil {
			return err
		}
		table.Status = "occupied"
		table.UpdatedAt = now
		return tx.Save(&table).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	kds.BroadcastTableUpdated(gin.H{
		"table_id":       reservation.TableID,
		"status":         "occupied",
		"reservation_id": reservation.ID,
	})

	utils.InfoLogger.Printf("Reservation %d checked in, table %d occupied", reservation.ID, reservation.TableID)
	utils.RespondJSON(c, http.StatusOK, "Guests seated", reservation)
}
