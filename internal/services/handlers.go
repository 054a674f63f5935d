package services

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/BarberLink/BL-Backend/internal/accounts"
	"github.com/BarberLink/BL-Backend/internal/auditlog"
	"github.com/BarberLink/BL-Backend/internal/db"
	"github.com/BarberLink/BL-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
)

const auditTable = "app_services.services"

type servicePayload struct {
	ID              uint   `json:"id"`
	DisplayName     string `json:"display_name"`
	NameAR          string `json:"name_ar"`
	NameEN          string `json:"name_en"`
	Category        string `json:"category"`
	PriceCents      int    `json:"price_cents"`
	DurationMinutes int    `json:"duration_minutes"`
	IsActive        bool   `json:"is_active"`
}

// ListHandler returns the service catalog with names localized from
// Accept-Language. Staff see inactive services when ?all=1.
func ListHandler(w http.ResponseWriter, r *http.Request) {
	query := db.DB.Model(&Service{}).Order("sort_order, id")
	if r.URL.Query().Get("all") != "1" {
		query = query.Where("is_active = ?", true)
	}

	var items []Service
	if err := query.Find(&items).Error; err != nil {
		http.Error(w, "Failed to load services", http.StatusInternalServerError)
		return
	}

	tag := requestLanguage(r)
	payload := make([]servicePayload, 0, len(items))
	for i := range items {
		service := &items[i]
		payload = append(payload, servicePayload{
			ID:              service.ID,
			DisplayName:     DisplayName(service, tag),
			NameAR:          service.NameAR,
			NameEN:          service.NameEN,
			Category:        service.Category,
			PriceCents:      service.PriceCents,
			DurationMinutes: service.DurationMinutes,
			IsActive:        service.IsActive,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func requireManagePermission(w http.ResponseWriter, r *http.Request) (string, bool) {
	actorID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return "", false
	}
	if !accounts.HasPermission(actorID, accounts.PermManageServices, false) {
		http.Error(w, "Forbidden: manage_services permission required", http.StatusForbidden)
		return "", false
	}
	return actorID, true
}

func CreateHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireManagePermission(w, r)
	if !ok {
		return
	}

	var service Service
	if err := json.NewDecoder(r.Body).Decode(&service); err != nil {
		http.Error(w, "Invalid Request Format", http.StatusBadRequest)
		return
	}
	if service.NameAR == "" && service.NameEN == "" {
		http.Error(w, "A service name is required", http.StatusBadRequest)
		return
	}
	if service.PriceCents < 0 {
		http.Error(w, "Price must not be negative", http.StatusBadRequest)
		return
	}
	if service.DurationMinutes <= 0 {
		service.DurationMinutes = 30
	}
	service.ID = 0

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&service).Error; err != nil {
			return err
		}
		return auditlog.Record(tx, auditTable, strconv.FormatUint(uint64(service.ID), 10),
			auditlog.ActionCreate, nil, snapshot(&service), actorID)
	})
	if err != nil {
		http.Error(w, "Failed to create service", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(service)
}

func UpdateHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireManagePermission(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid service ID", http.StatusBadRequest)
		return
	}

	var patch map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid Request Format", http.StatusBadRequest)
		return
	}

	var service Service
	txErr := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&service, "id = ?", uint(id)).Error; err != nil {
			return err
		}
		before := snapshot(&service)

		applyPatch(&service, patch)
		if service.PriceCents < 0 {
			return errInvalidPrice
		}
		if err := tx.Save(&service).Error; err != nil {
			return err
		}
		return auditlog.Record(tx, auditTable, strconv.FormatUint(id, 10),
			auditlog.ActionUpdate, before, snapshot(&service), actorID)
	})
	if txErr == gorm.ErrRecordNotFound {
		http.Error(w, "Service not found", http.StatusNotFound)
		return
	}
	if txErr == errInvalidPrice {
		http.Error(w, "Price must not be negative", http.StatusBadRequest)
		return
	}
	if txErr != nil {
		http.Error(w, "Failed to update service", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(service)
}

func DeleteHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireManagePermission(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid service ID", http.StatusBadRequest)
		return
	}

	var service Service
	txErr := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&service, "id = ?", uint(id)).Error; err != nil {
			return err
		}
		if err := tx.Delete(&service).Error; err != nil {
			return err
		}
		return auditlog.Record(tx, auditTable, strconv.FormatUint(id, 10),
			auditlog.ActionDelete, snapshot(&service), nil, actorID)
	})
	if txErr == gorm.ErrRecordNotFound {
		http.Error(w, "Service not found", http.StatusNotFound)
		return
	}
	if txErr != nil {
		http.Error(w, "Failed to delete service", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
