package playground

import (
	"os"
	"strconv"
	"strings"
)

// Config holds the playground feature settings. Everything is sourced from
// environment variables so deployments can tune limits without a rebuild.
type Config struct {
	SessionDurationMinutes  int
	MaxImageSizeBytes       int64
	SessionGenerationLimit  int
	MinGenerateIntervalSecs int
	StartMaxPerIPPerHour    int
	GenerateMaxPerIPPerHour int
	OneStylePerSession      bool
	DataRetentionHours      int
	CookieName              string
	CookieSecure            bool
	SigningSecret           string
	MediaRoot               string
	Debug                   bool
}

// LoadFromEnv loads playground configuration from environment variables.
//
// Environment variables:
//   - PLAYGROUND_SESSION_DURATION_MINUTES (default 30)
//   - PLAYGROUND_MAX_IMAGE_SIZE_BYTES (default 6 MiB)
//   - PLAYGROUND_SESSION_GENERATION_LIMIT (default 5)
//   - PLAYGROUND_MIN_GENERATE_INTERVAL_SECONDS (default 10)
//   - PLAYGROUND_START_MAX_PER_IP_PER_HOUR (default 120)
//   - PLAYGROUND_GENERATE_MAX_PER_IP_PER_HOUR (default 60)
//   - PLAYGROUND_ONE_STYLE_PER_SESSION (default on)
//   - PLAYGROUND_DATA_RETENTION_HOURS (default 24)
//   - PLAYGROUND_SESSION_COOKIE_NAME (default "playground_session")
//   - PLAYGROUND_SESSION_COOKIE_SECURE (default on unless DEBUG)
//   - PLAYGROUND_SIGNING_SECRET (required; cookie HMAC key)
//   - MEDIA_ROOT (default "./media")
//   - DEBUG ("1" exposes provider error detail to clients)
func LoadFromEnv() Config {
	debug := envBool("DEBUG", false)
	return Config{
		SessionDurationMinutes:  envInt("PLAYGROUND_SESSION_DURATION_MINUTES", 30),
		MaxImageSizeBytes:       int64(envInt("PLAYGROUND_MAX_IMAGE_SIZE_BYTES", 6*1024*1024)),
		SessionGenerationLimit:  envInt("PLAYGROUND_SESSION_GENERATION_LIMIT", 5),
		MinGenerateIntervalSecs: envInt("PLAYGROUND_MIN_GENERATE_INTERVAL_SECONDS", 10),
		StartMaxPerIPPerHour:    envInt("PLAYGROUND_START_MAX_PER_IP_PER_HOUR", 120),
		GenerateMaxPerIPPerHour: envInt("PLAYGROUND_GENERATE_MAX_PER_IP_PER_HOUR", 60),
		OneStylePerSession:      envBool("PLAYGROUND_ONE_STYLE_PER_SESSION", true),
		DataRetentionHours:      envInt("PLAYGROUND_DATA_RETENTION_HOURS", 24),
		CookieName:              envString("PLAYGROUND_SESSION_COOKIE_NAME", "playground_session"),
		CookieSecure:            envBool("PLAYGROUND_SESSION_COOKIE_SECURE", !debug),
		SigningSecret:           strings.TrimSpace(os.Getenv("PLAYGROUND_SIGNING_SECRET")),
		MediaRoot:               envString("MEDIA_ROOT", "./media"),
		Debug:                   debug,
	}
}

func envString(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(name string, fallback bool) bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
