package clients

import (
	"log"

	"github.com/BarberLink/BL-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "app_clients"); err != nil {
		log.Fatal("Failed to ensure schema app_clients: ", err)
	}

	if err := db.DB.AutoMigrate(&Client{}, &ClientComment{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}
