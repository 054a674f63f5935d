package accounts

import "time"

// Staff roles.
const (
	RoleOwnerAdmin   = "owner_admin"
	RoleReceptionist = "receptionist"
	RoleBarber       = "barber"
)

type Session struct {
	SessionID string    `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"not null;unique" json:"-"`
	ExpiresAt time.Time `gorm:"not null"`
}

type User struct {
	UserID            string  `gorm:"primaryKey" json:"user_id"`
	Username          string  `gorm:"uniqueIndex;not null" json:"username"`
	Password          string  `json:"password" gorm:"-"`
	HashedPassword    string  `json:"-"`
	Role              string  `gorm:"default:'barber'" json:"role"`
	DisplayName       string  `json:"display_name"`
	PreferredLanguage string  `gorm:"size:2;default:'ar'" json:"preferred_language"`
	IsActive          bool    `gorm:"default:true" json:"is_active"`
	Session           Session `gorm:"foreignKey:UserID" json:"-"`
}

// PermissionToggle overrides a permission default for exactly one target:
// either a role or a single user.
type PermissionToggle struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"size:64;not null;uniqueIndex:idx_toggle_role;uniqueIndex:idx_toggle_user" json:"key"`
	Role      *string   `gorm:"size:32;uniqueIndex:idx_toggle_role" json:"role"`
	UserID    *string   `gorm:"uniqueIndex:idx_toggle_user" json:"user_id"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Session) TableName() string          { return "app_accounts.sessions" }
func (User) TableName() string             { return "app_accounts.users" }
func (PermissionToggle) TableName() string { return "app_accounts.permission_toggles" }
