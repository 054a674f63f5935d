package appointments

import (
	"log"

	"github.com/BarberLink/BL-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "app_appointments"); err != nil {
		log.Fatal("Failed to ensure schema app_appointments: ", err)
	}

	if err := db.DB.AutoMigrate(&Appointment{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}
