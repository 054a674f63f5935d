package appointments

import (
	"errors"

	"github.com/BarberLink/BL-Backend/internal/services"
)

var (
	ErrTimeOrder     = errors.New("appointment end must follow its start")
	ErrUnknownStatus = errors.New("unknown appointment status")
)

// Validate checks the time window and status of an appointment.
func Validate(a *Appointment) error {
	if !a.EndsAt.After(a.StartsAt) {
		return ErrTimeOrder
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if _, ok := validStatuses[a.Status]; !ok {
		return ErrUnknownStatus
	}
	return nil
}

// DefaultTotal sums the attached service prices. Used when the caller did not
// quote an explicit total.
func DefaultTotal(items []services.Service) int {
	total := 0
	for _, service := range items {
		total += service.PriceCents
	}
	return total
}
