package playground

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/BarberLink/BL-Backend/internal/db"
)

const sessionRequiredMessage = "Session expired. Scan the QR code again."

var allowedImageContentTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		host = host[:idx]
	}
	if host == "" {
		return "0.0.0.0"
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func setSessionCookie(w http.ResponseWriter, cookieValue string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    cookieValue,
		Path:     "/",
		MaxAge:   cfg.SessionDurationMinutes * 60,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionRequired(w http.ResponseWriter) {
	clearSessionCookie(w)
	writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
		"ok":    false,
		"error": sessionRequiredMessage,
	})
}

func rateLimited(w http.ResponseWriter, message string, retryAfterSeconds int) {
	if retryAfterSeconds > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
		"ok":    false,
		"error": message,
	})
}

// activeSession resolves the request's cookie to an active session or nil.
func activeSession(r *http.Request) *Session {
	cookie, err := r.Cookie(cfg.CookieName)
	if err != nil {
		return nil
	}
	return ResolveSession(cookie.Value)
}

type stylePayload struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

type colorPayload struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	HexCode string `json:"hex_code"`
}

func stylesPayload(styles []Style) []stylePayload {
	payload := make([]stylePayload, 0, len(styles))
	for _, style := range styles {
		payload = append(payload, stylePayload{ID: style.ID, Name: style.Name, ImageURL: URLFor(style.ImagePath)})
	}
	return payload
}

func beardStylesPayload(styles []BeardStyle) []stylePayload {
	payload := make([]stylePayload, 0, len(styles))
	for _, style := range styles {
		payload = append(payload, stylePayload{ID: style.ID, Name: style.Name, ImageURL: URLFor(style.ImagePath)})
	}
	return payload
}

func colorsPayload(colors []ColorOption) []colorPayload {
	payload := make([]colorPayload, 0, len(colors))
	for _, color := range colors {
		payload = append(payload, colorPayload{ID: color.ID, Name: color.Name, HexCode: color.HexCode})
	}
	return payload
}

func generationPayload(result *SubmitResult) map[string]interface{} {
	generation := result.Generation
	source := "custom"
	styleName := ""
	if result.Style != nil {
		source = "curated"
		styleName = result.Style.Name
	}
	beardStyleName := ""
	if result.BeardStyle != nil {
		beardStyleName = result.BeardStyle.Name
	}
	hairColorName := ""
	if result.HairColor != nil {
		hairColorName = result.HairColor.Name
	}
	beardColorName := ""
	if result.BeardColor != nil {
		beardColorName = result.BeardColor.Name
	}
	return map[string]interface{}{
		"id":                       generation.ID,
		"status":                   generation.Status,
		"provider":                 generation.Provider,
		"created_at":               generation.CreatedAt.Format(time.RFC3339),
		"processing_ms":            generation.ProcessingMS,
		"session_generation_count": result.GenerationCount,
		"source":                   source,
		"style_name":               styleName,
		"beard_style_name":         beardStyleName,
		"hair_color_name":          hairColorName,
		"beard_color_name":         beardColorName,
		"result_url":               URLFor(generation.ResultPath),
	}
}

// StartSessionHandler issues a fresh visitor session and redirects home.
func StartSessionHandler(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)

	if !guard.allow(ip) || IsIPRateLimited(ActionStart, ip, cfg.StartMaxPerIPPerHour) {
		rateLimited(w, "Too many session starts from this network. Please wait and retry.", 60)
		return
	}

	session, cookieValue, err := IssueSession(ip, r.UserAgent())
	if err != nil {
		http.Error(w, "Failed to start session", http.StatusInternalServerError)
		return
	}
	_ = session

	setSessionCookie(w, cookieValue)
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, "/playground/", http.StatusFound)
}

// HomeHandler returns the session's current view: catalog plus recent
// successful generations.
func HomeHandler(w http.ResponseWriter, r *http.Request) {
	session := activeSession(r)
	if session == nil {
		sessionRequired(w)
		return
	}
	TouchSession(session, clientIP(r), r.UserAgent())

	styles, _ := ActiveStyles()
	beardStyles, _ := ActiveBeardStyles()
	hairColors, _ := ActiveColorOptions(ColorScopeHair)
	beardColors, _ := ActiveColorOptions(ColorScopeBeard)

	var recent []Generation
	db.DB.Where("session_id = ? AND status = ? AND result_path <> ''", session.ID, StatusSucceeded).
		Order("created_at DESC").
		Limit(8).
		Find(&recent)

	recentPayload := make([]map[string]interface{}, 0, len(recent))
	for _, generation := range recent {
		recentPayload = append(recentPayload, map[string]interface{}{
			"id":         generation.ID,
			"created_at": generation.CreatedAt.Format(time.RFC3339),
			"result_url": URLFor(generation.ResultPath),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":                 true,
		"styles":             stylesPayload(styles),
		"beard_styles":       beardStylesPayload(beardStyles),
		"hair_colors":        colorsPayload(hairColors),
		"beard_colors":       colorsPayload(beardColors),
		"has_selfie":         session.HasSelfie(),
		"generation_count":   session.GenerationCount,
		"recent_generations": recentPayload,
		"expires_at":         session.ExpiresAt.Format(time.RFC3339),
	})
}

// StylesHandler returns the active catalog for an authenticated session.
func StylesHandler(w http.ResponseWriter, r *http.Request) {
	session := activeSession(r)
	if session == nil {
		sessionRequired(w)
		return
	}

	styles, _ := ActiveStyles()
	beardStyles, _ := ActiveBeardStyles()
	hairColors, _ := ActiveColorOptions(ColorScopeHair)
	beardColors, _ := ActiveColorOptions(ColorScopeBeard)

	TouchSession(session, clientIP(r), r.UserAgent())

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":           true,
		"styles":       stylesPayload(styles),
		"beard_styles": beardStylesPayload(beardStyles),
		"hair_colors":  colorsPayload(hairColors),
		"beard_colors": colorsPayload(beardColors),
		"has_selfie":   session.HasSelfie(),
		"expires_at":   session.ExpiresAt.Format(time.RFC3339),
	})
}

// readValidatedImage enforces the content-type allow-list and size cap on a
// multipart image field, returning the bytes and a storage extension.
func readValidatedImage(r *http.Request, field string) (data []byte, extension, errMessage string) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", "No image was provided."
	}
	defer file.Close()

	contentType := strings.TrimSpace(strings.Split(header.Header.Get("Content-Type"), ";")[0])
	ext, ok := allowedImageContentTypes[contentType]
	if !ok {
		return nil, "", "Unsupported image format. Use JPEG, PNG, or WEBP."
	}
	if header.Size > cfg.MaxImageSizeBytes {
		maxMB := cfg.MaxImageSizeBytes / (1024 * 1024)
		return nil, "", "Image is too large. Maximum allowed size is " + strconv.FormatInt(maxMB, 10) + " MB."
	}

	data, err = io.ReadAll(io.LimitReader(file, cfg.MaxImageSizeBytes+1))
	if err != nil || int64(len(data)) > cfg.MaxImageSizeBytes {
		return nil, "", "Image is too large or unreadable."
	}
	return data, ext, ""
}

// SelfieHandler stores the session selfie, replacing any previous one.
func SelfieHandler(w http.ResponseWriter, r *http.Request) {
	session := activeSession(r)
	if session == nil {
		sessionRequired(w)
		return
	}

	data, extension, errMessage := readValidatedImage(r, "image")
	if errMessage != "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": errMessage})
		return
	}

	if session.SelfiePath != "" {
		store.Delete(session.SelfiePath)
	}

	selfiePath, err := store.SaveBytes("selfies", extension, data)
	if err != nil {
		http.Error(w, "Failed to store image", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	session.SelfiePath = selfiePath
	session.SelfieUploadedAt = &now
	session.Touch(now, clientIP(r), r.UserAgent())
	if err := db.DB.Model(session).
		Select("selfie_path", "selfie_uploaded_at", "last_seen_at", "last_ip", "user_agent").
		Updates(session).Error; err != nil {
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok": true,
		"selfie": map[string]interface{}{
			"url":         URLFor(session.SelfiePath),
			"uploaded_at": session.SelfieUploadedAt.Format(time.RFC3339),
		},
		"expires_at": session.ExpiresAt.Format(time.RFC3339),
	})
}

// GenerateHandler submits a generation request.
func GenerateHandler(w http.ResponseWriter, r *http.Request) {
	session := activeSession(r)
	if session == nil {
		sessionRequired(w)
		return
	}

	if err := r.ParseMultipartForm(cfg.MaxImageSizeBytes + 1024*1024); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": "Invalid form payload."})
		return
	}

	input := SelectionInput{StyleIDValue: r.FormValue("style_id")}
	input.HairColorValue, input.HasHairColor = formChoice(r, "hair_color_option_id")
	input.BeardStyleValue, input.HasBeardStyle = formChoice(r, "beard_style_id")
	input.BeardColorValue, input.HasBeardColor = formChoice(r, "beard_color_option_id")

	if _, header, err := r.FormFile("custom_style_image"); err == nil && header != nil {
		data, extension, errMessage := readValidatedImage(r, "custom_style_image")
		if errMessage != "" {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": errMessage})
			return
		}
		input.CustomStyleBytes = data
		input.CustomStyleExtension = extension
		input.CustomStyleFingerprint = fingerprintBytes(data)
	}

	result, reqErr := SubmitGeneration(r.Context(), session, clientIP(r), r.UserAgent(), input)
	if reqErr != nil {
		if reqErr.Status == http.StatusTooManyRequests {
			rateLimited(w, reqErr.Message, reqErr.RetryAfter)
			return
		}
		body := map[string]interface{}{"ok": false, "error": reqErr.Message}
		if reqErr.Status == http.StatusBadGateway {
			body["provider"] = reqErr.Provider
			if cfg.Debug {
				body["details"] = reqErr.Detail
			} else {
				body["details"] = ""
			}
		}
		writeJSON(w, reqErr.Status, body)
		return
	}

	body := map[string]interface{}{
		"ok":         true,
		"generation": generationPayload(result),
	}
	if result.Reused {
		body["reused"] = true
		body["message"] = "Using existing preview from this session."
	} else {
		body["message"] = "Generation completed."
	}
	writeJSON(w, http.StatusOK, body)
}

// formChoice distinguishes an omitted selection from an explicit value. A
// blank field counts as omission; clients opt out with the "none" sentinel.
func formChoice(r *http.Request, name string) (string, bool) {
	if r.MultipartForm != nil {
		if values, ok := r.MultipartForm.Value[name]; ok && len(values) > 0 {
			if v := strings.TrimSpace(values[0]); v != "" {
				return v, true
			}
			return "", false
		}
	}
	if values, ok := r.PostForm[name]; ok && len(values) > 0 {
		if v := strings.TrimSpace(values[0]); v != "" {
			return v, true
		}
	}
	return "", false
}

func fingerprintBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
