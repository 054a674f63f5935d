package auditlog

import (
	"log"

	"github.com/BarberLink/BL-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "app_audit"); err != nil {
		log.Fatal("Failed to ensure schema app_audit: ", err)
	}

	if err := db.DB.AutoMigrate(&AuditLog{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}
