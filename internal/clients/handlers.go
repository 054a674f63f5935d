package clients

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/BarberLink/BL-Backend/internal/accounts"
	"github.com/BarberLink/BL-Backend/internal/auditlog"
	"github.com/BarberLink/BL-Backend/internal/db"
	"github.com/BarberLink/BL-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
)

const auditTable = "app_clients.clients"

func actorFromContext(w http.ResponseWriter, r *http.Request) (string, bool) {
	actorID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return actorID, true
}

// ListHandler returns clients, optionally filtered by a phone or name search.
func ListHandler(w http.ResponseWriter, r *http.Request) {
	query := db.DB.Model(&Client{}).Order("full_name, id")
	if search := strings.TrimSpace(r.URL.Query().Get("q")); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("full_name ILIKE ? OR phone LIKE ?", pattern, pattern)
	}

	var items []Client
	if err := query.Limit(200).Find(&items).Error; err != nil {
		http.Error(w, "Failed to load clients", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	var client Client
	if err := db.DB.First(&client, "id = ?", uint(id)).Error; err != nil {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}

	var comments []ClientComment
	db.DB.Where("client_id = ?", client.ID).Order("created_at DESC").Limit(50).Find(&comments)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"client":   client,
		"comments": comments,
	})
}

func CreateHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actorFromContext(w, r)
	if !ok {
		return
	}

	var client Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		http.Error(w, "Invalid Request Format", http.StatusBadRequest)
		return
	}
	client.Phone = strings.TrimSpace(client.Phone)
	if client.FullName == "" || client.Phone == "" {
		http.Error(w, "Full name and phone are required", http.StatusBadRequest)
		return
	}

	var existing Client
	if err := db.DB.First(&existing, "phone = ?", client.Phone).Error; err == nil {
		http.Error(w, "A client with this phone already exists", http.StatusConflict)
		return
	}
	client.ID = 0

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&client).Error; err != nil {
			return err
		}
		return auditlog.Record(tx, auditTable, strconv.FormatUint(uint64(client.ID), 10),
			auditlog.ActionCreate, nil, snapshot(&client), actorID)
	})
	if err != nil {
		http.Error(w, "Failed to create client", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(client)
}

// UpdateHandler patches a client. Identity fields (name, phone, email)
// require the edit_client_identity permission.
func UpdateHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actorFromContext(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	var patch map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid Request Format", http.StatusBadRequest)
		return
	}

	touchesIdentity := false
	for key := range patch {
		if _, gated := identityFields[key]; gated {
			touchesIdentity = true
			break
		}
	}
	if touchesIdentity && !accounts.HasPermission(actorID, accounts.PermEditClientIdentity, false) {
		http.Error(w, "Forbidden: edit_client_identity permission required", http.StatusForbidden)
		return
	}

	var client Client
	txErr := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&client, "id = ?", uint(id)).Error; err != nil {
			return err
		}
		before := snapshot(&client)

		applyPatch(&client, patch)
		client.Phone = strings.TrimSpace(client.Phone)
		if client.FullName == "" || client.Phone == "" {
			return errMissingIdentity
		}
		if err := tx.Save(&client).Error; err != nil {
			return err
		}
		return auditlog.Record(tx, auditTable, strconv.FormatUint(id, 10),
			auditlog.ActionUpdate, before, snapshot(&client), actorID)
	})
	if txErr == gorm.ErrRecordNotFound {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}
	if txErr == errMissingIdentity {
		http.Error(w, "Full name and phone are required", http.StatusBadRequest)
		return
	}
	if txErr != nil {
		http.Error(w, "Failed to update client", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(client)
}

func DeleteHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actorFromContext(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	var client Client
	txErr := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&client, "id = ?", uint(id)).Error; err != nil {
			return err
		}
		if err := tx.Delete(&client).Error; err != nil {
			return err
		}
		return auditlog.Record(tx, auditTable, strconv.FormatUint(id, 10),
			auditlog.ActionDelete, snapshot(&client), nil, actorID)
	})
	if txErr == gorm.ErrRecordNotFound {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}
	if txErr != nil {
		http.Error(w, "Failed to delete client", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func AddCommentHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actorFromContext(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	var client Client
	if err := db.DB.First(&client, "id = ?", uint(id)).Error; err != nil {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}

	var comment ClientComment
	if err := json.NewDecoder(r.Body).Decode(&comment); err != nil {
		http.Error(w, "Invalid Request Format", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(comment.Body) == "" {
		http.Error(w, "Comment body is required", http.StatusBadRequest)
		return
	}
	comment.ID = 0
	comment.ClientID = client.ID
	comment.AuthorID = actorID

	if err := db.DB.Create(&comment).Error; err != nil {
		http.Error(w, "Failed to add comment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(comment)
}
