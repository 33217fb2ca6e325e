package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dinehub/restaurant-backend/models"
	"github.com/dinehub/restaurant-backend/utils"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetAllNotifications lists notifications; ?user_id narrows to one
// recipient plus the broadcast ones.
func (nc *NotificationController) GetAllNotifications(c *gin.Context) {
	query := nc.DB.Model(&models.Notification{})
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ? OR user_id IS NULL", userID)
	}

	var notifs []models.Notification
	if err := query.Order("created_at DESC").Find(&notifs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All notifications", notifs)
}

// CreateNotification stores a message for one user or for everyone.
func (nc *NotificationController) CreateNotification(c *gin.Context) {
	type reqBody struct {
		UserID  *uint  `json:"user_id"`
		Title   string `json:"title"`
		Message string `json:"message" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	notif := models.Notification{
		Message: body.Message,
		UserID:  body.UserID,
	}
	if body.Title != "" {
		notif.Title = &body.Title
	}

	if err := nc.DB.Create(&notif).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Notification created: %v", notif.Message)
	utils.RespondJSON(c, http.StatusCreated, "Notification created", notif)
}

func (nc *NotificationController) GetNotificationByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("notif_id"))

	var notif models.Notification
	if err := nc.DB.First(&notif, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("notification not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Notification detail", notif)
}

func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("notif_id"))

	if err := nc.DB.Delete(&models.Notification{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification deleted", gin.H{"notif_id": id})
}
