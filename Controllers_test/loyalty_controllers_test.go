package Controllers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dinehub/restaurant-backend/controllers"
	"github.com/dinehub/restaurant-backend/models"
)

func setupLoyaltyRouter(db *gorm.DB, userID uint) *gin.Engine {
	router := newTestRouter()
	loyaltyCtrl := controllers.NewLoyaltyController(db)

	group := router.Group("/admin")
	group.Use(asUser(userID, "staff"))
	{
		group.GET("/loyalty/account", loyaltyCtrl.GetAccount)
		group.POST("/loyalty/earn", loyaltyCtrl.EarnPoints)
		group.POST("/loyalty/redeem", loyaltyCtrl.RedeemPoints)
		group.GET("/loyalty/:customer_id/transactions", loyaltyCtrl.GetTransactions)
		group.GET("/loyalty/tiers", loyaltyCtrl.GetTierInfo)
		group.POST("/loyalty/referral", loyaltyCtrl.ApplyReferral)
	}
	return router
}

func seedLoyaltyCustomer(db *gorm.DB, username string, lifetime int) models.Customer {
	user := models.User{Username: username, Email: username + "@example.com", Password: "x", Role: "staff", IsActive: true}
	db.Create(&user)
	customer := models.Customer{
		UserID:         user.ID,
		LoyaltyPoints:  lifetime,
		LifetimePoints: lifetime,
		Tier:           models.TierBronze,
		ReferralCode:   "REF-" + strings.ToUpper(username),
	}
	db.Create(&customer)
	return customer
}

func TestAccountAutoCreatedWithReferralCode(t *testing.T) {
	db := newTestDB()
	user := models.User{Username: "newbie", Email: "newbie@example.com", Password: "x", Role: "staff", IsActive: true}
	db.Create(&user)
	router := setupLoyaltyRouter(db, user.ID)

	w := doJSON(router, "GET", "/admin/loyalty/account", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := dataField(w)
	assert.Equal(t, models.TierBronze, data["tier"])
	assert.NotEmpty(t, data["referral_code"])

	// Second call returns the same account.
	w = doJSON(router, "GET", "/admin/loyalty/account", nil)
	assert.Equal(t, data["referral_code"], dataField(w)["referral_code"])

	var count int64
	db.Model(&models.Customer{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestEarnCrossesTierBoundaries(t *testing.T) {
	db := newTestDB()
	router := setupLoyaltyRouter(db, 1)

	cases := []struct {
		start    int
		spend    float64
		wantTier string
	}{
		{start: 900, spend: 990, wantTier: models.TierBronze},    // 999 lifetime
		{start: 900, spend: 1000, wantTier: models.TierSilver},   // 1000 lifetime
		{start: 4900, spend: 1000, wantTier: models.TierGold},    // 5000 lifetime
		{start: 9900, spend: 1000, wantTier: models.TierPlatinum}, // 10000 lifetime
	}

	for i, tc := range cases {
		customer := seedLoyaltyCustomer(db, fmt.Sprintf("tier%d", i), tc.start)

		w := doJSON(router, "POST", "/admin/loyalty/earn", map[string]interface{}{
			"customer_id": customer.ID,
			"amount":      tc.spend,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var after models.Customer
		db.First(&after, customer.ID)
		assert.Equal(t, tc.wantTier, after.Tier, "case %d", i)
	}
}

func TestRedeemChecksBalanceAndKeepsTier(t *testing.T) {
	db := newTestDB()
	customer := seedLoyaltyCustomer(db, "golden", 5000)
	db.Model(&customer).Update("tier", models.TierGold)
	router := setupLoyaltyRouter(db, 1)

	w := doJSON(router, "POST", "/admin/loyalty/redeem", map[string]interface{}{
		"customer_id": customer.ID,
		"points":      6000,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "POST", "/admin/loyalty/redeem", map[string]interface{}{
		"customer_id": customer.ID,
		"points":      4000,
		"description": "free dinner",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var after models.Customer
	db.First(&after, customer.ID)
	assert.Equal(t, 1000, after.LoyaltyPoints)
	// Lifetime points and tier never drop on redemption.
	assert.Equal(t, 5000, after.LifetimePoints)
	assert.Equal(t, models.TierGold, after.Tier)

	var entry models.LoyaltyTransaction
	require.NoError(t, db.Where("customer_id = ? AND type = ?", customer.ID, "redeem").First(&entry).Error)
	assert.Equal(t, -4000, entry.Points)
}

func TestReferralPaysBothSidesOnce(t *testing.T) {
	db := newTestDB()
	referrer := seedLoyaltyCustomer(db, "veteran", 0)
	refereeUser := models.User{Username: "invited", Email: "invited@example.com", Password: "x", Role: "staff", IsActive: true}
	db.Create(&refereeUser)
	referee := models.Customer{UserID: refereeUser.ID, Tier: models.TierBronze, ReferralCode: "REF-INVITED"}
	db.Create(&referee)

	router := setupLoyaltyRouter(db, refereeUser.ID)

	w := doJSON(router, "POST", "/admin/loyalty/referral",
		map[string]interface{}{"referral_code": "REF-VETERAN"})
	require.Equal(t, http.StatusOK, w.Code)

	var afterReferee, afterReferrer models.Customer
	db.First(&afterReferee, referee.ID)
	db.First(&afterReferrer, referrer.ID)
	assert.Equal(t, controllers.RefereeBonus, afterReferee.LoyaltyPoints)
	assert.Equal(t, controllers.ReferrerBonus, afterReferrer.LoyaltyPoints)
	require.NotNil(t, afterReferee.ReferredBy)
	assert.Equal(t, referrer.ID, *afterReferee.ReferredBy)

	// Applying twice is refused.
	w = doJSON(router, "POST", "/admin/loyalty/referral",
		map[string]interface{}{"referral_code": "REF-VETERAN"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTransactionsListNewestFirst(t *testing.T) {
	db := newTestDB()
	customer := seedLoyaltyCustomer(db, "lister", 0)
	router := setupLoyaltyRouter(db, 1)

	doJSON(router, "POST", "/admin/loyalty/earn",
		map[string]interface{}{"customer_id": customer.ID, "amount": 100.0})
	doJSON(router, "POST", "/admin/loyalty/earn",
		map[string]interface{}{"customer_id": customer.ID, "amount": 200.0})

	w := doJSON(router, "GET", fmt.Sprintf("/admin/loyalty/%d/transactions", customer.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	list := decodeBody(w)["data"].([]interface{})
	assert.Len(t, list, 2)
}
