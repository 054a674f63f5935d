package accounts

import (
	"errors"

	"gorm.io/gorm"

	"github.com/BarberLink/BL-Backend/internal/db"
)

// Permission keys known to the backend. Toggles may carry other keys; these
// are the ones the handlers consult.
const (
	PermEditClientIdentity = "edit_client_identity"
	PermManageServices     = "manage_services"
	PermCancelAppointments = "cancel_appointments"
)

var ErrToggleTarget = errors.New("permission toggle must target exactly one of role or user")

// ValidateToggle enforces the exactly-one-target rule.
func ValidateToggle(toggle *PermissionToggle) error {
	hasRole := toggle.Role != nil && *toggle.Role != ""
	hasUser := toggle.UserID != nil && *toggle.UserID != ""
	if hasRole == hasUser {
		return ErrToggleTarget
	}
	return nil
}

// HasPermission resolves a permission for a user: a user-level toggle wins
// over a role-level toggle, which wins over the provided default. owner_admin
// is never denied.
func HasPermission(userID, key string, fallback bool) bool {
	var user User
	if err := db.DB.First(&user, "user_id = ?", userID).Error; err != nil {
		return false
	}
	if user.Role == RoleOwnerAdmin {
		return true
	}

	var toggle PermissionToggle
	err := db.DB.First(&toggle, "key = ? AND user_id = ?", key, userID).Error
	if err == nil {
		return toggle.Enabled
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}

	err = db.DB.First(&toggle, "key = ? AND role = ?", key, user.Role).Error
	if err == nil {
		return toggle.Enabled
	}
	return fallback
}
