package playground

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// The cookie does not carry the bare session token: it carries an HS256 JWT
// wrapping it, so a tampered or hand-built cookie fails signature checking
// before any database lookup happens.

func signSessionToken(secret, sessionToken string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": sessionToken,
		"exp": expiresAt.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// verifySessionCookie returns the embedded session token, or "" for any
// signature, expiry, or shape failure. Forged cookies never error upward.
func verifySessionCookie(secret, cookieValue string) string {
	parsed, err := jwt.Parse(cookieValue, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return ""
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	subject, _ := claims["sub"].(string)
	return subject
}
