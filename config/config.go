package config

import (
	"fmt"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB opens the database connection configured through environment
// variables. DB_DRIVER selects mysql (production) or sqlite; with no
// configuration at all we fall back to a local sqlite file so the server
// can be run straight from a checkout.
func InitDB() (*gorm.DB, error) {
	driver := os.Getenv("DB_DRIVER")

	switch driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			envOr("DB_HOST", "127.0.0.1"),
			envOr("DB_PORT", "3306"),
			os.Getenv("DB_NAME"),
		)
		return gorm.Open(mysql.Open(dsn), &gorm.Config{})
	case "sqlite", "":
		path := envOr("DB_PATH", "restaurant.db")
		return gorm.Open(sqlite.Open(path), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", driver)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
