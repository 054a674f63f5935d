package services

import (
	"log"

	"github.com/BarberLink/BL-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "app_services"); err != nil {
		log.Fatal("Failed to ensure schema app_services: ", err)
	}

	if err := db.DB.AutoMigrate(&Service{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}
