package playground

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BarberLink/BL-Backend/internal/db"
)

func newSessionToken() string {
	// Two UUIDs give a 64-char opaque token; uniqueness is enforced by the DB.
	return strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")
}

// IssueSession creates a visitor session row and returns it together with the
// signed cookie value the client stores. A "start" rate event is recorded.
func IssueSession(ip, userAgent string) (*Session, string, error) {
	now := time.Now()
	session := Session{
		Token:     newSessionToken(),
		ExpiresAt: now.Add(time.Duration(cfg.SessionDurationMinutes) * time.Minute),
		LastIP:    ip,
	}
	if len(userAgent) > 255 {
		userAgent = userAgent[:255]
	}
	session.UserAgent = userAgent

	if err := db.DB.Create(&session).Error; err != nil {
		return nil, "", err
	}
	RecordEvent(ActionStart, ip, &session)

	cookieValue, err := signSessionToken(cfg.SigningSecret, session.Token, session.ExpiresAt)
	if err != nil {
		return nil, "", err
	}
	return &session, cookieValue, nil
}

// ResolveSession verifies the signed cookie and loads the session it names.
// Any failure — bad signature, expired cookie, unknown token, revoked or
// expired session — returns nil: callers treat all of them as "no session".
func ResolveSession(cookieValue string) *Session {
	if cookieValue == "" {
		return nil
	}
	token := verifySessionCookie(cfg.SigningSecret, cookieValue)
	if token == "" {
		return nil
	}
	var session Session
	if err := db.DB.First(&session, "token = ?", token).Error; err != nil {
		return nil
	}
	if !session.IsActive(time.Now()) {
		return nil
	}
	return &session
}

// TouchSession persists last-seen bookkeeping for an authenticated request.
func TouchSession(session *Session, ip, userAgent string) {
	session.Touch(time.Now(), ip, userAgent)
	db.DB.Model(session).Select("last_seen_at", "last_ip", "user_agent").Updates(session)
}
