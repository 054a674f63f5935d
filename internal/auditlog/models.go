package auditlog

import (
	"time"

	"github.com/lib/pq"
)

// Audit actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

type AuditLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Table       string         `gorm:"column:table_name;size:64;not null;index:idx_audit_object,priority:1" json:"table_name"`
	ObjectID    string         `gorm:"size:64;not null;index:idx_audit_object,priority:2" json:"object_id"`
	Action      string         `gorm:"size:16;not null" json:"action"`
	ChangedKeys pq.StringArray `gorm:"type:text[]" json:"changed_keys"`
	Changes     string         `gorm:"type:jsonb;default:'{}'" json:"changes"`
	ActorID     string         `gorm:"size:64;index" json:"actor_id"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string { return "app_audit.audit_logs" }
