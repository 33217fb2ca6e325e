package Controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dinehub/restaurant-backend/controllers"
	"github.com/dinehub/restaurant-backend/models"
)

func setupUserRouter(db *gorm.DB) *gin.Engine {
	router := newTestRouter()
	userCtrl := controllers.NewUserController(db)
	router.POST("/register", userCtrl.Register)
	router.POST("/login", userCtrl.Login)
	return router
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB()
	router := setupUserRouter(db)

	w := doJSON(router, "POST", "/register", map[string]interface{}{
		"username":  "chef_raj",
		"email":     "raj@example.com",
		"password":  "secret123",
		"full_name": "Raj Kumar",
		"role":      "chef",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Password never stored in the clear.
	var user models.User
	db.Where("username = ?", "chef_raj").First(&user)
	assert.NotEqual(t, "secret123", user.Password)
	assert.Equal(t, "chef", user.Role)

	w = doJSON(router, "POST", "/login", map[string]interface{}{
		"username": "chef_raj",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := dataField(w)
	assert.NotEmpty(t, data["token"])
	assert.Equal(t, "chef", data["user_role"])

	w = doJSON(router, "POST", "/login", map[string]interface{}{
		"username": "chef_raj",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterRejectsBadRole(t *testing.T) {
	db := newTestDB()
	router := setupUserRouter(db)

	w := doJSON(router, "POST", "/register", map[string]interface{}{
		"username": "sneaky",
		"email":    "sneaky@example.com",
		"password": "secret123",
		"role":     "superuser",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	db := newTestDB()
	router := setupUserRouter(db)

	payload := map[string]interface{}{
		"username": "twice",
		"email":    "twice@example.com",
		"password": "secret123",
	}
	w := doJSON(router, "POST", "/register", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, "POST", "/register", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	db := newTestDB()
	router := setupUserRouter(db)

	doJSON(router, "POST", "/register", map[string]interface{}{
		"username": "ghost",
		"email":    "ghost@example.com",
		"password": "secret123",
	})
	db.Model(&models.User{}).Where("username = ?", "ghost").Update("is_active", false)

	w := doJSON(router, "POST", "/login", map[string]interface{}{
		"username": "ghost",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
