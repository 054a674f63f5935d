package services

import "errors"

var errInvalidPrice = errors.New("price must not be negative")

// applyPatch copies recognized JSON fields onto the service. Unknown keys are
// ignored.
func applyPatch(service *Service, patch map[string]interface{}) {
	if value, ok := patch["name_ar"].(string); ok {
		service.NameAR = value
	}
	if value, ok := patch["name_en"].(string); ok {
		service.NameEN = value
	}
	if value, ok := patch["category"].(string); ok {
		service.Category = value
	}
	if value, ok := patch["price_cents"].(float64); ok {
		service.PriceCents = int(value)
	}
	if value, ok := patch["duration_minutes"].(float64); ok && int(value) > 0 {
		service.DurationMinutes = int(value)
	}
	if value, ok := patch["is_active"].(bool); ok {
		service.IsActive = value
	}
	if value, ok := patch["sort_order"].(float64); ok {
		service.SortOrder = int(value)
	}
}
