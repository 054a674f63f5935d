package auditlog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/BarberLink/BL-Backend/internal/db"
	"github.com/BarberLink/BL-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// ListHandler returns recent audit entries, optionally filtered by table and
// object id.
func ListHandler(w http.ResponseWriter, r *http.Request) {
	query := db.DB.Model(&AuditLog{}).Order("created_at DESC, id DESC")
	if table := r.URL.Query().Get("table"); table != "" {
		query = query.Where("table_name = ?", table)
	}
	if objectID := r.URL.Query().Get("object_id"); objectID != "" {
		query = query.Where("object_id = ?", objectID)
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	var entries []AuditLog
	if err := query.Limit(limit).Find(&entries).Error; err != nil {
		http.Error(w, "Failed to load audit log", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

func SetupRoutes(sessionFetcher middleware.SessionFetcher) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Use(middleware.AdminMiddleware(sessionFetcher))
		r.Get("/", ListHandler)
	})

	return r
}
