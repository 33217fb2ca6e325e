package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/dinehub/restaurant-backend/config"
	"github.com/dinehub/restaurant-backend/middlewares"
	"github.com/dinehub/restaurant-backend/models"
	"github.com/dinehub/restaurant-backend/router"
	"github.com/dinehub/restaurant-backend/services"
	"github.com/dinehub/restaurant-backend/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}
	utils.InitLogger()
}

func main() {
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	utils.InitDB(db)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)
	seedStations(db)

	stockMonitor := services.NewStockMonitor(db)
	stockMonitor.Start()
	defer stockMonitor.Stop()

	ticketMonitor := services.NewTicketMonitor(db)
	ticketMonitor.Start()
	defer ticketMonitor.Stop()

	r := router.SetupRouter(db)

	rateLimiter := middlewares.NewRateLimiter(50, 1)
	r.Use(rateLimiter.RateLimit())

	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.KitchenStation{},
		&models.KitchenPerformanceLog{},
		&models.StationAssignment{},
		&models.TicketDisplaySettings{},
		&models.Reservation{},
		&models.Bill{},
		&models.Coupon{},
		&models.Customer{},
		&models.LoyaltyTransaction{},
		&models.InventoryItem{},
		&models.InventoryTransaction{},
		&models.Notification{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}

// seedStations creates the default kitchen layout on an empty database.
func seedStations(db *gorm.DB) {
	var count int64
	db.Model(&models.KitchenStation{}).Count(&count)
	if count > 0 {
		return
	}

	defaults := []models.KitchenStation{
		{Name: "Grill", StationType: "grill", Description: "Grilled items, tandoor", DisplayOrder: 1},
		{Name: "Fry", StationType: "fry", Description: "Fried items, appetizers", DisplayOrder: 2},
		{Name: "Curry", StationType: "saute", Description: "Curries and gravies", DisplayOrder: 3},
		{Name: "Cold", StationType: "cold", Description: "Salads, desserts, beverages", DisplayOrder: 4},
	}
	for i := range defaults {
		defaults[i].IsActive = true
		defaults[i].MaxConcurrentOrders = 10
		if err := db.Create(&defaults[i]).Error; err != nil {
			utils.ErrorLogger.Printf("Error seeding station %s: %v", defaults[i].Name, err)
		}
	}
	utils.InfoLogger.Printf("Seeded %d default kitchen stations", len(defaults))
}
