package appointments

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/BarberLink/BL-Backend/internal/accounts"
	"github.com/BarberLink/BL-Backend/internal/auditlog"
	"github.com/BarberLink/BL-Backend/internal/db"
	"github.com/BarberLink/BL-Backend/internal/services"
	"github.com/BarberLink/BL-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
)

const auditTable = "app_appointments.appointments"

// appointmentRequest is the JSON shape for create and update.
type appointmentRequest struct {
	ClientID   *uint     `json:"client_id"`
	BarberID   string    `json:"barber_id"`
	ServiceIDs []uint    `json:"service_ids"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	Status     string    `json:"status"`
	WalkIn     bool      `json:"walk_in"`
	TotalCents *int      `json:"total_cents"`
	Notes      string    `json:"notes"`
}

func actorFromContext(w http.ResponseWriter, r *http.Request) (string, bool) {
	actorID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return actorID, true
}

func loadServices(tx *gorm.DB, ids []uint) ([]services.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []services.Service
	if err := tx.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) != len(ids) {
		return nil, gorm.ErrRecordNotFound
	}
	return items, nil
}

// ListHandler returns appointments in a day window (default: today).
func ListHandler(w http.ResponseWriter, r *http.Request) {
	from := time.Now().Truncate(24 * time.Hour)
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "Invalid from timestamp", http.StatusBadRequest)
			return
		}
		from = parsed
	}
	to := from.Add(24 * time.Hour)
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "Invalid to timestamp", http.StatusBadRequest)
			return
		}
		to = parsed
	}

	query := db.DB.Preload("Services").
		Where("starts_at >= ? AND starts_at < ?", from, to).
		Order("starts_at, id")
	if barberID := r.URL.Query().Get("barber_id"); barberID != "" {
		query = query.Where("barber_id = ?", barberID)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var items []Appointment
	if err := query.Find(&items).Error; err != nil {
		http.Error(w, "Failed to load appointments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func CreateHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actorFromContext(w, r)
	if !ok {
		return
	}

	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid Request Format", http.StatusBadRequest)
		return
	}
	if req.BarberID == "" {
		http.Error(w, "Barber is required", http.StatusBadRequest)
		return
	}

	appointment := Appointment{
		ClientID: req.ClientID,
		BarberID: req.BarberID,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Status:   req.Status,
		WalkIn:   req.WalkIn,
		Notes:    req.Notes,
	}
	if err := Validate(&appointment); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	txErr := db.DB.Transaction(func(tx *gorm.DB) error {
		items, err := loadServices(tx, req.ServiceIDs)
		if err != nil {
			return err
		}
		appointment.Services = items
		if req.TotalCents != nil {
			appointment.TotalCents = *req.TotalCents
		} else {
			appointment.TotalCents = DefaultTotal(items)
		}
		if err := tx.Create(&appointment).Error; err != nil {
			return err
		}
		return auditlog.Record(tx, auditTable, strconv.FormatUint(uint64(appointment.ID), 10),
			auditlog.ActionCreate, nil, snapshot(&appointment), actorID)
	})
	if txErr == gorm.ErrRecordNotFound {
		http.Error(w, "One or more services were not found", http.StatusBadRequest)
		return
	}
	if txErr != nil {
		http.Error(w, "Failed to create appointment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(appointment)
}

func UpdateHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actorFromContext(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid Request Format", http.StatusBadRequest)
		return
	}

	if req.Status == StatusCancelled {
		if !accounts.HasPermission(actorID, accounts.PermCancelAppointments, true) {
			http.Error(w, "Forbidden: cancel_appointments permission required", http.StatusForbidden)
			return
		}
	}

	var appointment Appointment
	txErr := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Services").First(&appointment, "id = ?", uint(id)).Error; err != nil {
			return err
		}
		before := snapshot(&appointment)

		if req.ClientID != nil {
			appointment.ClientID = req.ClientID
		}
		if req.BarberID != "" {
			appointment.BarberID = req.BarberID
		}
		if !req.StartsAt.IsZero() {
			appointment.StartsAt = req.StartsAt
		}
		if !req.EndsAt.IsZero() {
			appointment.EndsAt = req.EndsAt
		}
		if req.Status != "" {
			appointment.Status = req.Status
		}
		appointment.WalkIn = req.WalkIn
		if req.Notes != "" {
			appointment.Notes = req.Notes
		}
		if err := Validate(&appointment); err != nil {
			return err
		}

		if req.ServiceIDs != nil {
			items, err := loadServices(tx, req.ServiceIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(&appointment).Association("Services").Replace(items); err != nil {
				return err
			}
			appointment.Services = items
			if req.TotalCents == nil {
				appointment.TotalCents = DefaultTotal(items)
			}
		}
		if req.TotalCents != nil {
			appointment.TotalCents = *req.TotalCents
		}

		if err := tx.Save(&appointment).Error; err != nil {
			return err
		}
		return auditlog.Record(tx, auditTable, strconv.FormatUint(id, 10),
			auditlog.ActionUpdate, before, snapshot(&appointment), actorID)
	})
	if txErr == gorm.ErrRecordNotFound {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}
	if txErr == ErrTimeOrder || txErr == ErrUnknownStatus {
		http.Error(w, txErr.Error(), http.StatusBadRequest)
		return
	}
	if txErr != nil {
		http.Error(w, "Failed to update appointment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appointment)
}

func DeleteHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actorFromContext(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	var appointment Appointment
	txErr := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Services").First(&appointment, "id = ?", uint(id)).Error; err != nil {
			return err
		}
		if err := tx.Model(&appointment).Association("Services").Clear(); err != nil {
			return err
		}
		if err := tx.Delete(&appointment).Error; err != nil {
			return err
		}
		return auditlog.Record(tx, auditTable, strconv.FormatUint(id, 10),
			auditlog.ActionDelete, snapshot(&appointment), nil, actorID)
	})
	if txErr == gorm.ErrRecordNotFound {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}
	if txErr != nil {
		http.Error(w, "Failed to delete appointment", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
