package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/dinehub/restaurant-backend/models"
	"github.com/dinehub/restaurant-backend/utils"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// Register creates a staff account. Role defaults to "staff".
func (uc *UserController) Register(c *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		FullName string `json:"full_name"`
		Role     string `json:"role"` // admin, manager, staff, chef
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	role := strings.ToLower(req.Role)
	if role == "" {
		role = "staff"
	}
	switch role {
	case "admin", "manager", "staff", "chef":
	default:
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid role"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashed),
		FullName: req.FullName,
		Role:     role,
		IsActive: true,
	}

	if err := uc.DB.Create(&user).Error; err != nil {
		utils.RespondError(c, http.StatusConflict, errors.New("username or email already taken"))
		return
	}

	utils.InfoLogger.Printf("New user registered: %s (role=%s)", user.Email, user.Role)

	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{
		"user_id": user.ID,
	})
}

// Login verifies credentials and returns a JWT.
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.Where("username = ? OR email = ?", input.Username, input.Username).
		First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	if !user.IsActive {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("account is deactivated"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Login successful for user: %s, role: %s", user.Email, user.Role)

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":     token,
		"user_id":   user.ID,
		"user_role": strings.ToLower(user.Role),
		"full_name": user.FullName,
	})
}

// Logout blacklists the presented token so it cannot be replayed.
func (uc *UserController) Logout(c *gin.Context) {
	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
	}
	tokenString := strings.TrimPrefix(token, "Bearer ")
	if tokenString == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("token not found"))
		return
	}

	utils.BlacklistToken(tokenString)
	utils.RespondJSON(c, http.StatusOK, "Logged out successfully", nil)
}

// GetProfile returns the account behind the JWT.
func (uc *UserController) GetProfile(c *gin.Context) {
	userIDInterface, exists := c.Get("user_id")
	if !exists {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	userID, ok := userIDInterface.(uint)
	if !ok {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("invalid user id type"))
		return
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", gin.H{
		"id":        user.ID,
		"username":  user.Username,
		"email":     user.Email,
		"full_name": user.FullName,
		"role":      user.Role,
	})
}

var ErrNoPermission = &CustomError{"You do not have permission"}

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

// GetAllUsers lists accounts, optionally filtered by role.
func (uc *UserController) GetAllUsers(c *gin.Context) {
	query := uc.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Order("id").Find(&users).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "All users", users)
}
