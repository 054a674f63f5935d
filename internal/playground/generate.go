package playground

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BarberLink/BL-Backend/internal/db"
	"github.com/BarberLink/BL-Backend/internal/playground/provider"
)

// NoneSelection is the explicit "no choice" sentinel. Omitting a selection is
// a validation error; sending "none" is a valid answer.
const NoneSelection = "none"

// SelectionInput carries the raw form values of a generation request. Has*
// flags distinguish an omitted field from an explicit value.
type SelectionInput struct {
	StyleIDValue    string
	HairColorValue  string
	HasHairColor    bool
	BeardStyleValue string
	HasBeardStyle   bool
	BeardColorValue string
	HasBeardColor   bool

	// Custom style upload, already validated for type and size.
	CustomStyleBytes       []byte
	CustomStyleExtension   string
	CustomStyleFingerprint string
}

func (s *SelectionInput) hasCustomStyle() bool { return len(s.CustomStyleBytes) > 0 }

// SubmitResult is what a successful (or reused) submission returns.
type SubmitResult struct {
	Generation      *Generation
	Style           *Style
	BeardStyle      *BeardStyle
	HairColor       *ColorOption
	BeardColor      *ColorOption
	Reused          bool
	GenerationCount int
}

// providerFailure is mapped to a 502 with a generic message; Detail carries
// the real provider error for logs and debug responses.
func providerFailure(providerName, detail string) *RequestError {
	return &RequestError{
		Status:   http.StatusBadGateway,
		Message:  "Generation failed. Please retry in a moment.",
		Provider: providerName,
		Detail:   detail,
	}
}

// SubmitGeneration validates a visitor's selections, deduplicates against
// prior successful results, enforces rate/quota/cooldown, persists a pending
// record, and drives it through the configured provider.
//
// Locking: the session row is locked FOR UPDATE for the whole
// validate-dedup-quota-create sequence so concurrent submissions from one
// session serialize; the lock is released before the provider call.
func SubmitGeneration(ctx context.Context, session *Session, ip, userAgent string, input SelectionInput) (*SubmitResult, *RequestError) {
	if !session.HasSelfie() {
		return nil, validationError("Upload a selfie first.")
	}

	if !input.HasHairColor {
		return nil, validationError("Choose a hair color option first.")
	}
	if !input.HasBeardStyle {
		return nil, validationError("Choose a beard style option first.")
	}
	if !input.HasBeardColor {
		return nil, validationError("Choose a beard color option first.")
	}

	styleIDValue := strings.TrimSpace(input.StyleIDValue)
	if styleIDValue != "" && input.hasCustomStyle() {
		return nil, validationError("Choose either a curated style or upload a custom style, not both.")
	}
	if styleIDValue == "" && !input.hasCustomStyle() {
		return nil, validationError("Select a hairstyle or upload a custom haircut image.")
	}

	var style *Style
	if styleIDValue != "" {
		styleID, err := strconv.ParseUint(styleIDValue, 10, 32)
		if err != nil {
			return nil, validationError("Invalid hairstyle selection.")
		}
		if style = findActiveStyle(uint(styleID)); style == nil {
			return nil, notFoundError("Selected hairstyle is unavailable.")
		}
	}

	var hairColor *ColorOption
	if !strings.EqualFold(strings.TrimSpace(input.HairColorValue), NoneSelection) {
		colorID, err := strconv.ParseUint(strings.TrimSpace(input.HairColorValue), 10, 32)
		if err != nil {
			return nil, validationError("Invalid hair color selection.")
		}
		if hairColor = findActiveColor(uint(colorID), ColorScopeHair); hairColor == nil {
			return nil, notFoundError("Selected hair color is unavailable.")
		}
	}

	var beardStyle *BeardStyle
	if !strings.EqualFold(strings.TrimSpace(input.BeardStyleValue), NoneSelection) {
		beardID, err := strconv.ParseUint(strings.TrimSpace(input.BeardStyleValue), 10, 32)
		if err != nil {
			return nil, validationError("Invalid beard style selection.")
		}
		if beardStyle = findActiveBeardStyle(uint(beardID)); beardStyle == nil {
			return nil, notFoundError("Selected beard style is unavailable.")
		}
	}

	var beardColor *ColorOption
	if !strings.EqualFold(strings.TrimSpace(input.BeardColorValue), NoneSelection) {
		colorID, err := strconv.ParseUint(strings.TrimSpace(input.BeardColorValue), 10, 32)
		if err != nil {
			return nil, validationError("Invalid beard color selection.")
		}
		if beardColor = findActiveColor(uint(colorID), ColorScopeBeard); beardColor == nil {
			return nil, notFoundError("Selected beard color is unavailable.")
		}
	}

	if beardStyle == nil && beardColor != nil {
		return nil, validationError("Choose a beard style before applying beard color.")
	}

	var (
		generation *Generation
		reused     *Generation
		locked     Session
	)

	txErr := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, "id = ?", session.ID).Error; err != nil {
			return err
		}

		// Cache check: an identical prior success with a kept result image is
		// returned as-is. Reuse charges nothing: no quota, no rate event.
		existing := findReusableGeneration(tx, &locked, style, beardStyle, hairColor, beardColor, input.CustomStyleFingerprint)
		if existing != nil {
			locked.Touch(time.Now(), ip, userAgent)
			if err := tx.Model(&locked).Select("last_seen_at", "last_ip", "user_agent").Updates(&locked).Error; err != nil {
				return err
			}
			reused = existing
			return nil
		}

		if IsIPRateLimited(ActionGenerate, ip, cfg.GenerateMaxPerIPPerHour) {
			return rateLimitedError("Generation rate limit reached on this network. Please try again shortly.", 60)
		}

		if locked.GenerationCount >= cfg.SessionGenerationLimit {
			return rateLimitedError("Session generation quota reached. Please rescan the QR code for a new session.", 0)
		}

		if cfg.MinGenerateIntervalSecs > 0 && locked.LastGenerationAt != nil {
			elapsed := int(time.Since(*locked.LastGenerationAt).Seconds())
			if elapsed < cfg.MinGenerateIntervalSecs {
				retryAfter := cfg.MinGenerateIntervalSecs - elapsed
				if retryAfter < 1 {
					retryAfter = 1
				}
				return rateLimitedError("Please wait a few seconds before starting another generation.", retryAfter)
			}
		}

		// A curated style that already succeeded for this exact combination
		// but whose image was purged cannot be re-rendered when the one-style
		// policy is on.
		if style != nil && cfg.OneStylePerSession {
			if alreadyUsed(tx, &locked, style, beardStyle, hairColor, beardColor) {
				return conflictError("This style was already used, but no reusable preview is available.")
			}
		}

		now := time.Now()
		locked.Touch(now, ip, userAgent)
		locked.GenerationCount++
		locked.LastGenerationAt = &now
		if err := tx.Model(&locked).
			Select("generation_count", "last_generation_at", "last_seen_at", "last_ip", "user_agent").
			Updates(&locked).Error; err != nil {
			return err
		}

		record := Generation{
			SessionID:              locked.ID,
			SelfiePath:             locked.SelfiePath,
			CustomStyleFingerprint: input.CustomStyleFingerprint,
			Provider:               string(providerCfg.Provider),
			Status:                 StatusPending,
		}
		if style != nil {
			record.StyleID = &style.ID
		}
		if beardStyle != nil {
			record.BeardStyleID = &beardStyle.ID
		}
		if hairColor != nil {
			record.HairColorOptionID = &hairColor.ID
		}
		if beardColor != nil {
			record.BeardColorOptionID = &beardColor.ID
		}
		if input.hasCustomStyle() {
			customPath, err := store.SaveBytes("custom-styles", input.CustomStyleExtension, input.CustomStyleBytes)
			if err != nil {
				return err
			}
			record.CustomStylePath = customPath
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		event := RateLimitEvent{Action: ActionGenerate, IPAddress: ip, SessionID: &locked.ID}
		if ip != "" {
			if err := tx.Create(&event).Error; err != nil {
				return err
			}
		}

		generation = &record
		return nil
	})

	if txErr != nil {
		if reqErr, ok := txErr.(*RequestError); ok {
			return nil, reqErr
		}
		return nil, &RequestError{Status: http.StatusInternalServerError, Message: "Could not process the request."}
	}

	if reused != nil {
		return &SubmitResult{
			Generation:      reused,
			Style:           style,
			BeardStyle:      beardStyle,
			HairColor:       hairColor,
			BeardColor:      beardColor,
			Reused:          true,
			GenerationCount: locked.GenerationCount,
		}, nil
	}

	// The session lock is released; the provider call happens outside it so a
	// slow upstream never blocks other requests for this session's row.
	result := &SubmitResult{
		Generation:      generation,
		Style:           style,
		BeardStyle:      beardStyle,
		HairColor:       hairColor,
		BeardColor:      beardColor,
		GenerationCount: locked.GenerationCount,
	}
	if reqErr := runProvider(ctx, generation, style, beardStyle, hairColor, beardColor); reqErr != nil {
		return result, reqErr
	}
	return result, nil
}

// runProvider drives a pending generation to its terminal state.
func runProvider(ctx context.Context, generation *Generation, style *Style, beardStyle *BeardStyle, hairColor, beardColor *ColorOption) *RequestError {
	started := time.Now()

	referencePath := generation.CustomStylePath
	if style != nil {
		referencePath = style.ImagePath
	}
	genInput := provider.GenerateInput{
		SelfiePath:     store.AbsPath(generation.SelfiePath),
		ReferencePath:  store.AbsPath(referencePath),
		ApplyBeardEdit: beardStyle != nil,
	}
	if beardStyle != nil {
		genInput.BeardReferencePath = store.AbsPath(beardStyle.ImagePath)
	}
	if hairColor != nil {
		genInput.HairColorName = hairColor.Name
	}
	if beardColor != nil {
		genInput.BeardColorName = beardColor.Name
	}

	adapter, err := provider.NewProvider(providerCfg)
	if err == nil {
		var result *provider.ImageResult
		result, err = adapter.Generate(ctx, genInput)
		if err == nil {
			resultPath, saveErr := store.SaveBytes("results", provider.ExtensionFromMIME(result.MIMEType), result.ImageBytes)
			if saveErr != nil {
				err = saveErr
			} else {
				elapsed := int(time.Since(started).Milliseconds())
				generation.ResultPath = resultPath
				generation.Status = StatusSucceeded
				generation.Provider = result.Provider
				generation.ProcessingMS = &elapsed
				generation.ErrorMessage = ""
				db.DB.Model(generation).
					Select("result_path", "status", "provider", "processing_ms", "error_message").
					Updates(generation)
				return nil
			}
		}
	}

	elapsed := int(time.Since(started).Milliseconds())
	detail := err.Error()
	generation.Status = StatusFailed
	generation.ProcessingMS = &elapsed
	generation.ErrorMessage = truncate(detail, 255)
	db.DB.Model(generation).
		Select("status", "processing_ms", "error_message").
		Updates(generation)
	provider.LogError(generation.Provider, "generation", err)
	return providerFailure(generation.Provider, detail)
}

// findReusableGeneration matches the dedup cache key: same session, style
// identity (curated id or custom fingerprint), beard style, colors, and the
// selfie in use at submit time — succeeded, with its result image intact.
func findReusableGeneration(tx *gorm.DB, session *Session, style *Style, beardStyle *BeardStyle, hairColor, beardColor *ColorOption, fingerprint string) *Generation {
	if style == nil && fingerprint == "" {
		return nil
	}

	query := tx.Model(&Generation{}).
		Where("session_id = ?", session.ID).
		Where("selfie_path = ?", session.SelfiePath).
		Where("status = ?", StatusSucceeded).
		Where("result_path <> ''")
	if style != nil {
		query = query.Where("style_id = ?", style.ID)
	} else {
		query = query.Where("style_id IS NULL").Where("custom_style_fingerprint = ?", fingerprint)
	}
	query = optionalIDFilter(query, "beard_style_id", beardStyleID(beardStyle))
	query = optionalIDFilter(query, "hair_color_option_id", colorID(hairColor))
	query = optionalIDFilter(query, "beard_color_option_id", colorID(beardColor))

	var existing Generation
	if err := query.Order("created_at DESC").First(&existing).Error; err != nil {
		return nil
	}
	return &existing
}

// alreadyUsed matches the same key as findReusableGeneration but without the
// intact-result requirement. Reached only after the cache check missed.
func alreadyUsed(tx *gorm.DB, session *Session, style *Style, beardStyle *BeardStyle, hairColor, beardColor *ColorOption) bool {
	query := tx.Model(&Generation{}).
		Where("session_id = ?", session.ID).
		Where("selfie_path = ?", session.SelfiePath).
		Where("status = ?", StatusSucceeded).
		Where("style_id = ?", style.ID)
	query = optionalIDFilter(query, "beard_style_id", beardStyleID(beardStyle))
	query = optionalIDFilter(query, "hair_color_option_id", colorID(hairColor))
	query = optionalIDFilter(query, "beard_color_option_id", colorID(beardColor))

	var count int64
	query.Count(&count)
	return count > 0
}

func optionalIDFilter(query *gorm.DB, column string, id *uint) *gorm.DB {
	if id == nil {
		return query.Where(column + " IS NULL")
	}
	return query.Where(column+" = ?", *id)
}

func beardStyleID(style *BeardStyle) *uint {
	if style == nil {
		return nil
	}
	return &style.ID
}

func colorID(color *ColorOption) *uint {
	if color == nil {
		return nil
	}
	return &color.ID
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit]
}
