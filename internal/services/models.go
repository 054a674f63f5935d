package services

import "time"

type Service struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	NameAR          string    `gorm:"column:name_ar;size:120;not null" json:"name_ar"`
	NameEN          string    `gorm:"column:name_en;size:120;not null" json:"name_en"`
	Category        string    `gorm:"size:64" json:"category"`
	PriceCents      int       `gorm:"not null" json:"price_cents"`
	DurationMinutes int       `gorm:"default:30" json:"duration_minutes"`
	IsActive        bool      `gorm:"default:true;index" json:"is_active"`
	SortOrder       int       `gorm:"default:0" json:"sort_order"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Service) TableName() string { return "app_services.services" }

// snapshot captures the auditable fields of a service.
func snapshot(s *Service) map[string]interface{} {
	if s == nil {
		return nil
	}
	return map[string]interface{}{
		"name_ar":          s.NameAR,
		"name_en":          s.NameEN,
		"category":         s.Category,
		"price_cents":      s.PriceCents,
		"duration_minutes": s.DurationMinutes,
		"is_active":        s.IsActive,
		"sort_order":       s.SortOrder,
	}
}
