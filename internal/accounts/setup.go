package accounts

import (
	"log"

	"github.com/BarberLink/BL-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "app_accounts"); err != nil {
		log.Fatal("Failed to ensure schema app_accounts: ", err)
	}

	if err := db.DB.AutoMigrate(&User{}, &Session{}, &PermissionToggle{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}
