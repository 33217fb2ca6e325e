package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dinehub/restaurant-backend/controllers"
	"github.com/dinehub/restaurant-backend/middlewares"
	"github.com/dinehub/restaurant-backend/monitoring"
)

// SetupRouter wires every endpoint. Route groups follow the audience:
// public ordering surface, authenticated staff surface under /admin,
// and the kitchen display under /kds.
func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(db)
	menuCtrl := controllers.NewMenuController(db)
	orderCtrl := controllers.NewOrderController(db)
	kdsCtrl := controllers.NewKDSController(db)
	reservationCtrl := controllers.NewReservationController(db)
	billingCtrl := controllers.NewBillingController(db)
	couponCtrl := controllers.NewCouponController(db)
	loyaltyCtrl := controllers.NewLoyaltyController(db)
	inventoryCtrl := controllers.NewInventoryController(db)
	notificationCtrl := controllers.NewNotificationController(db)
	reportCtrl := controllers.NewReportController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(monitoring.Handler()))

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Guest-facing menu browsing
	r.GET("/menus", menuCtrl.GetAllMenus)
	r.GET("/menus/categories", menuCtrl.GetCategories)
	r.GET("/menus/:menu_id", menuCtrl.GetMenuByID)

	// Reservations can be made without an account
	r.GET("/reservations/availability", reservationCtrl.CheckAvailability)
	r.POST("/reservations", reservationCtrl.CreateReservation)

	// KDS WebSocket feed, token via query parameter
	r.GET("/kds/ws", middlewares.WebSocketAuthMiddleware(), controllers.KDSHandler)

	// ----------------------------------------------------------------
	//                      STAFF ROUTES (JWT)
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.Use(middlewares.EnhancedAuthMiddleware())
	{
		admin.GET("/profile", userCtrl.GetProfile)
		admin.POST("/logout", userCtrl.Logout)
		admin.GET("/users", middlewares.RequireRoles("admin"), userCtrl.GetAllUsers)

		// Tables
		admin.GET("/tables", tableCtrl.GetAllTables)
		admin.POST("/tables", middlewares.RequireRoles("admin", "manager"), tableCtrl.CreateTable)
		admin.GET("/tables/:table_id", tableCtrl.GetTableByID)
		admin.PATCH("/tables/:table_id", tableCtrl.UpdateTable)
		admin.POST("/tables/:table_id/cleaning", tableCtrl.MarkForCleaning)
		admin.POST("/tables/:table_id/cleaning/done", tableCtrl.CompleteCleaning)
		admin.DELETE("/tables/:table_id", middlewares.RequireRoles("admin", "manager"), tableCtrl.DeleteTable)

		// Menu management
		admin.POST("/menus", middlewares.RequireRoles("admin", "manager"), menuCtrl.CreateMenu)
		admin.PATCH("/menus/:menu_id", middlewares.RequireRoles("admin", "manager"), menuCtrl.UpdateMenu)
		admin.PATCH("/menus/:menu_id/availability", middlewares.RequireRoles("admin", "manager", "chef"), menuCtrl.ToggleAvailability)
		admin.DELETE("/menus/:menu_id", middlewares.RequireRoles("admin", "manager"), menuCtrl.DeleteMenu)
		admin.GET("/menus/stats", menuCtrl.GetMenuStats)

		// Orders
		admin.POST("/orders", orderCtrl.CreateOrder)
		admin.GET("/orders", orderCtrl.GetAllOrders)
		admin.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		admin.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
		admin.DELETE("/orders/:order_id", middlewares.RequireRoles("admin", "manager"), orderCtrl.DeleteOrder)

		// Reservations
		admin.GET("/reservations", reservationCtrl.GetAllReservations)
		admin.GET("/reservations/:reservation_id", reservationCtrl.GetReservationByID)
		admin.POST("/reservations/:reservation_id/confirm", reservationCtrl.ConfirmReservation)
		admin.POST("/reservations/:reservation_id/cancel", reservationCtrl.CancelReservation)
		admin.POST("/reservations/:reservation_id/checkin", reservationCtrl.CheckIn)

		// Billing
		admin.POST("/bills", billingCtrl.CreateBill)
		admin.GET("/bills/:bill_id", billingCtrl.GetBillByID)
		admin.GET("/orders/:order_id/bill", billingCtrl.GetBillByOrder)
		admin.POST("/bills/:bill_id/coupon", billingCtrl.ApplyCoupon)
		admin.DELETE("/bills/:bill_id/coupon", billingCtrl.RemoveCoupon)
		admin.POST("/bills/:bill_id/split", billingCtrl.SplitBill)
		admin.POST("/bills/:bill_id/payment", billingCtrl.RecordPayment)
		admin.GET("/bills/stats", middlewares.RequireRoles("admin", "manager"), billingCtrl.GetBillingStats)

		// Coupons
		admin.POST("/coupons", middlewares.RequireRoles("admin", "manager"), couponCtrl.CreateCoupon)
		admin.GET("/coupons", couponCtrl.GetAllCoupons)
		admin.GET("/coupons/stats", middlewares.RequireRoles("admin", "manager"), couponCtrl.GetCouponStats)
		admin.GET("/coupons/:coupon_id", couponCtrl.GetCouponByID)
		admin.POST("/coupons/validate", couponCtrl.ValidateCoupon)
		admin.PATCH("/coupons/:coupon_id/toggle", middlewares.RequireRoles("admin", "manager"), couponCtrl.ToggleCoupon)
		admin.DELETE("/coupons/:coupon_id", middlewares.RequireRoles("admin", "manager"), couponCtrl.DeleteCoupon)

		// Loyalty
		admin.GET("/loyalty/account", loyaltyCtrl.GetAccount)
		admin.POST("/loyalty/earn", loyaltyCtrl.EarnPoints)
		admin.POST("/loyalty/redeem", loyaltyCtrl.RedeemPoints)
		admin.GET("/loyalty/:customer_id/transactions", loyaltyCtrl.GetTransactions)
		admin.GET("/loyalty/tiers", loyaltyCtrl.GetTierInfo)
		admin.POST("/loyalty/referral", loyaltyCtrl.ApplyReferral)

		// Inventory
		admin.POST("/inventory", middlewares.RequireRoles("admin", "manager"), inventoryCtrl.CreateItem)
		admin.GET("/inventory", inventoryCtrl.GetAllItems)
		admin.GET("/inventory/low-stock", inventoryCtrl.GetLowStock)
		admin.GET("/inventory/stats", middlewares.RequireRoles("admin", "manager"), inventoryCtrl.GetInventoryStats)
		admin.GET("/inventory/:item_id", inventoryCtrl.GetItemByID)
		admin.PATCH("/inventory/:item_id", middlewares.RequireRoles("admin", "manager"), inventoryCtrl.UpdateItem)
		admin.DELETE("/inventory/:item_id", middlewares.RequireRoles("admin", "manager"), inventoryCtrl.DeleteItem)
		admin.POST("/inventory/:item_id/transactions", inventoryCtrl.RecordTransaction)
		admin.GET("/inventory/:item_id/transactions", inventoryCtrl.GetTransactions)

		// Notifications
		admin.GET("/notifications", notificationCtrl.GetAllNotifications)
		admin.POST("/notifications", notificationCtrl.CreateNotification)
		admin.GET("/notifications/:notif_id", notificationCtrl.GetNotificationByID)
		admin.DELETE("/notifications/:notif_id", notificationCtrl.DeleteNotification)

		// Reports
		admin.GET("/reports/sales.pdf", middlewares.RequireRoles("admin", "manager"), reportCtrl.SalesPDF)
		admin.GET("/reports/sales-chart.png", middlewares.RequireRoles("admin", "manager"), reportCtrl.SalesChartPNG)
		admin.GET("/dashboard/stats", reportCtrl.GetDashboardStats)
	}

	// ----------------------------------------------------------------
	//                      KDS ROUTES (JWT)
	// ----------------------------------------------------------------
	kdsGroup := r.Group("/kds")
	kdsGroup.Use(middlewares.EnhancedAuthMiddleware())
	{
		kdsGroup.GET("/stations", kdsCtrl.GetStations)
		kdsGroup.POST("/stations", kdsCtrl.CreateStation)
		kdsGroup.GET("/stations/:station_id", kdsCtrl.GetStation)
		kdsGroup.PUT("/stations/:station_id", kdsCtrl.UpdateStation)
		kdsGroup.GET("/stations/:station_id/performance", kdsCtrl.GetStationPerformance)
		kdsGroup.GET("/stations/:station_id/settings", kdsCtrl.GetDisplaySettings)
		kdsGroup.PUT("/stations/:station_id/settings", kdsCtrl.UpdateDisplaySettings)

		kdsGroup.GET("/orders/active", kdsCtrl.GetActiveOrders)
		kdsGroup.GET("/orders/:order_id", kdsCtrl.GetOrderKDSView)
		kdsGroup.POST("/orders/:order_id/bump", kdsCtrl.BumpOrder)

		kdsGroup.POST("/items/reassign", kdsCtrl.ReassignItem)
		kdsGroup.POST("/items/:item_id/start", kdsCtrl.StartItem)
		kdsGroup.PUT("/items/:item_id/status", kdsCtrl.UpdateItemStatus)
		kdsGroup.POST("/items/:item_id/complete", kdsCtrl.CompleteItem)

		kdsGroup.GET("/dashboard/stats", kdsCtrl.GetDashboardStats)

		kdsGroup.GET("/assignments", kdsCtrl.GetAssignments)
		kdsGroup.POST("/assignments", kdsCtrl.CreateAssignment)
	}

	return r
}
