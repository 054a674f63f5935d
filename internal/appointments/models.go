package appointments

import (
	"time"

	"github.com/BarberLink/BL-Backend/internal/clients"
	"github.com/BarberLink/BL-Backend/internal/services"
)

// Appointment statuses.
const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

var validStatuses = map[string]struct{}{
	StatusScheduled: {},
	StatusConfirmed: {},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusNoShow:    {},
}

type Appointment struct {
	ID         uint               `gorm:"primaryKey" json:"id"`
	ClientID   *uint              `gorm:"index" json:"client_id"`
	Client     *clients.Client    `gorm:"foreignKey:ClientID" json:"-"`
	BarberID   string             `gorm:"size:64;index;not null" json:"barber_id"`
	Services   []services.Service `gorm:"many2many:app_appointments.appointment_services" json:"services"`
	StartsAt   time.Time          `gorm:"index;not null" json:"starts_at"`
	EndsAt     time.Time          `gorm:"not null" json:"ends_at"`
	Status     string             `gorm:"size:16;default:'scheduled';index" json:"status"`
	WalkIn     bool               `gorm:"default:false" json:"walk_in"`
	TotalCents int                `gorm:"default:0" json:"total_cents"`
	Notes      string             `json:"notes"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func (Appointment) TableName() string { return "app_appointments.appointments" }

func snapshot(a *Appointment) map[string]interface{} {
	if a == nil {
		return nil
	}
	var clientID interface{}
	if a.ClientID != nil {
		clientID = *a.ClientID
	}
	serviceIDs := make([]interface{}, 0, len(a.Services))
	for _, service := range a.Services {
		serviceIDs = append(serviceIDs, service.ID)
	}
	return map[string]interface{}{
		"client_id":   clientID,
		"barber_id":   a.BarberID,
		"service_ids": serviceIDs,
		"starts_at":   a.StartsAt.UTC().Format(time.RFC3339),
		"ends_at":     a.EndsAt.UTC().Format(time.RFC3339),
		"status":      a.Status,
		"walk_in":     a.WalkIn,
		"total_cents": a.TotalCents,
		"notes":       a.Notes,
	}
}
