package accounts

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/BarberLink/BL-Backend/internal/db"
	"github.com/BarberLink/BL-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
)

const staffSessionTTL = 12 * time.Hour

var validRoles = map[string]struct{}{
	RoleOwnerAdmin:   {},
	RoleReceptionist: {},
	RoleBarber:       {},
}

// RegisterHandler creates a staff account. Admin only.
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var user User

	err := json.NewDecoder(r.Body).Decode(&user)
	if err != nil {
		http.Error(w, "Invalid Request Format", http.StatusBadRequest)
		return
	}

	if user.Username == "" || user.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}
	if user.Role == "" {
		user.Role = RoleBarber
	}
	if _, ok := validRoles[user.Role]; !ok {
		http.Error(w, "Unknown role", http.StatusBadRequest)
		return
	}
	if user.PreferredLanguage != "" && user.PreferredLanguage != "ar" && user.PreferredLanguage != "en" {
		http.Error(w, "Preferred language must be ar or en", http.StatusBadRequest)
		return
	}

	var existing User
	err = db.DB.First(&existing, "username = ?", user.Username).Error
	if err == nil {
		http.Error(w, "Username already taken", http.StatusConflict)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Server error hashing password", http.StatusInternalServerError)
		return
	}
	user.HashedPassword = string(hashed)
	user.UserID = utils.GenerateUUID()
	user.Password = ""

	if err := db.DB.Create(&user).Error; err != nil {
		http.Error(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"user_id":  user.UserID,
		"username": user.Username,
		"role":     user.Role,
	})
}

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var user User
	var session Session
	var existing Session

	err := json.NewDecoder(r.Body).Decode(&user)
	if err != nil {
		http.Error(w, "Invalid Data", http.StatusBadRequest)
		return
	}
	password := user.Password

	err = db.DB.First(&user, "username = ?", user.Username).Error
	if err != nil || !user.IsActive {
		http.Error(w, "Invalid Credentials", http.StatusUnauthorized)
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password))
	if err != nil {
		http.Error(w, "Invalid Credentials", http.StatusUnauthorized)
		return
	}

	sessionID := utils.GenerateUUID()
	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
	})

	// Reuse the user's session row if one exists.
	db.DB.Where("user_id = ?", user.UserID).First(&existing)
	if existing.UserID != "" {
		db.DB.Model(&existing).Updates(Session{
			SessionID: sessionID,
			ExpiresAt: time.Now().Add(staffSessionTTL),
		})
	} else {
		session.SessionID = sessionID
		session.UserID = user.UserID
		session.ExpiresAt = time.Now().Add(staffSessionTTL)
		db.DB.Create(&session)
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Login successful")
}

func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	var session Session

	cookie, err := r.Cookie("session_id")
	if err != nil {
		http.Error(w, "Couldn't find cookie", http.StatusUnauthorized)
		return
	}

	err = db.DB.First(&session, "session_id = ?", cookie.Value).Error
	if err != nil {
		http.Error(w, "Couldn't find session", http.StatusUnauthorized)
		return
	}

	db.DB.Delete(&session)

	http.SetCookie(w, &http.Cookie{
		Name:   "session_id",
		Value:  "",
		MaxAge: 0,
		Path:   "/",
	})

	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Logout successful")
}

type MeResponse struct {
	UserID            string `json:"user_id"`
	Username          string `json:"username"`
	Role              string `json:"role"`
	DisplayName       string `json:"display_name"`
	PreferredLanguage string `json:"preferred_language"`
}

func MeHandler(w http.ResponseWriter, r *http.Request) {
	var user User

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	err := db.DB.First(&user, "user_id = ?", userID).Error
	if err != nil {
		http.Error(w, "Couldn't find user", http.StatusNotFound)
		return
	}

	response := MeResponse{
		UserID:            user.UserID,
		Username:          user.Username,
		Role:              user.Role,
		DisplayName:       user.DisplayName,
		PreferredLanguage: user.PreferredLanguage,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func ListTogglesHandler(w http.ResponseWriter, r *http.Request) {
	var toggles []PermissionToggle
	if err := db.DB.Order("key, id").Find(&toggles).Error; err != nil {
		http.Error(w, "Failed to load permission toggles", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toggles)
}

// UpsertToggleHandler creates or updates the toggle for a (key, target) pair.
func UpsertToggleHandler(w http.ResponseWriter, r *http.Request) {
	var toggle PermissionToggle
	if err := json.NewDecoder(r.Body).Decode(&toggle); err != nil {
		http.Error(w, "Invalid Request Format", http.StatusBadRequest)
		return
	}
	if toggle.Key == "" {
		http.Error(w, "Key is required", http.StatusBadRequest)
		return
	}
	if err := ValidateToggle(&toggle); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if toggle.UserID != nil && *toggle.UserID != "" {
		var target User
		if err := db.DB.First(&target, "user_id = ?", *toggle.UserID).Error; err != nil {
			http.Error(w, "Target user not found", http.StatusNotFound)
			return
		}
	}
	if toggle.Role != nil && *toggle.Role != "" {
		if _, ok := validRoles[*toggle.Role]; !ok {
			http.Error(w, "Unknown role", http.StatusBadRequest)
			return
		}
	}

	var existing PermissionToggle
	query := db.DB.Where("key = ?", toggle.Key)
	if toggle.UserID != nil {
		query = query.Where("user_id = ?", *toggle.UserID)
	} else {
		query = query.Where("role = ?", *toggle.Role)
	}
	if err := query.First(&existing).Error; err == nil {
		if err := db.DB.Model(&existing).Update("enabled", toggle.Enabled).Error; err != nil {
			http.Error(w, "Failed to update toggle", http.StatusInternalServerError)
			return
		}
		existing.Enabled = toggle.Enabled
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(existing)
		return
	}

	if err := db.DB.Create(&toggle).Error; err != nil {
		http.Error(w, "Failed to create toggle", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toggle)
}

func DeleteToggleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid toggle ID", http.StatusBadRequest)
		return
	}

	result := db.DB.Delete(&PermissionToggle{}, "id = ?", uint(id))
	if result.Error != nil {
		http.Error(w, "Failed to delete toggle", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Toggle not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
