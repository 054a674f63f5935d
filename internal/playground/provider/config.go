package provider

import (
	"os"
	"strconv"
	"strings"
)

// Config holds configuration for the image-generation providers.
type Config struct {
	// Provider type: "nanobanana", "grok", or "stub".
	Provider Type

	// Shared outbound call timeout in seconds.
	TimeoutSeconds int

	// Nanobanana (Gemini generateContent) config.
	NanobananaKey            string
	NanobananaModel          string
	NanobananaEndpoint       string // override; default derived from model
	NanobananaImageSize      string // "1K" | "2K" | "4K", pro models only
	NanobananaPromptSet      string
	NanobananaFlashPromptSet string
	NanobananaProPromptSet   string
	NanobananaInputCost1M    float64 // USD per 1M input tokens (override)
	NanobananaOutputCost1M   float64 // USD per 1M output tokens (override)

	// Grok (x.ai images edits) config.
	GrokKey         string
	GrokModel       string
	GrokEndpoint    string
	GrokImageFormat string // "base64" or "url"
}

// DefaultGrokEndpoint is the x.ai image edit endpoint.
const DefaultGrokEndpoint = "https://api.x.ai/v1/images/edits"

// LoadFromEnv loads provider configuration from environment variables.
//
// Environment variables:
//   - PLAYGROUND_PROVIDER: "nanobanana", "grok", or "stub" (default: "stub")
//   - PLAYGROUND_PROVIDER_TIMEOUT_SECONDS (default: 120)
//   - PLAYGROUND_NANOBANANA_API_KEY, PLAYGROUND_NANOBANANA_MODEL,
//     PLAYGROUND_NANOBANANA_ENDPOINT, PLAYGROUND_NANOBANANA_IMAGE_SIZE,
//     PLAYGROUND_NANOBANANA_PROMPT_SET, PLAYGROUND_NANOBANANA_FLASH_PROMPT_SET,
//     PLAYGROUND_NANOBANANA_PRO_PROMPT_SET,
//     PLAYGROUND_NANOBANANA_INPUT_COST_PER_1M_TOKENS,
//     PLAYGROUND_NANOBANANA_OUTPUT_COST_PER_1M_TOKENS
//   - PLAYGROUND_GROK_API_KEY, PLAYGROUND_GROK_MODEL,
//     PLAYGROUND_GROK_IMAGES_ENDPOINT, PLAYGROUND_GROK_IMAGE_FORMAT
func LoadFromEnv() Config {
	providerStr := strings.ToLower(strings.TrimSpace(os.Getenv("PLAYGROUND_PROVIDER")))

	var provider Type
	switch providerStr {
	case "nanobanana":
		provider = TypeNanobanana
	case "grok":
		provider = TypeGrok
	default:
		provider = TypeStub
	}

	grokEndpoint := strings.TrimSpace(os.Getenv("PLAYGROUND_GROK_IMAGES_ENDPOINT"))
	if grokEndpoint == "" {
		grokEndpoint = DefaultGrokEndpoint
	}

	return Config{
		Provider:                 provider,
		TimeoutSeconds:           envInt("PLAYGROUND_PROVIDER_TIMEOUT_SECONDS", 120),
		NanobananaKey:            strings.TrimSpace(os.Getenv("PLAYGROUND_NANOBANANA_API_KEY")),
		NanobananaModel:          envString("PLAYGROUND_NANOBANANA_MODEL", "gemini-2.5-flash-image"),
		NanobananaEndpoint:       strings.TrimSpace(os.Getenv("PLAYGROUND_NANOBANANA_ENDPOINT")),
		NanobananaImageSize:      strings.ToUpper(strings.TrimSpace(os.Getenv("PLAYGROUND_NANOBANANA_IMAGE_SIZE"))),
		NanobananaPromptSet:      envString("PLAYGROUND_NANOBANANA_PROMPT_SET", "1"),
		NanobananaFlashPromptSet: strings.TrimSpace(os.Getenv("PLAYGROUND_NANOBANANA_FLASH_PROMPT_SET")),
		NanobananaProPromptSet:   strings.TrimSpace(os.Getenv("PLAYGROUND_NANOBANANA_PRO_PROMPT_SET")),
		NanobananaInputCost1M:    envFloat("PLAYGROUND_NANOBANANA_INPUT_COST_PER_1M_TOKENS", 0),
		NanobananaOutputCost1M:   envFloat("PLAYGROUND_NANOBANANA_OUTPUT_COST_PER_1M_TOKENS", 0),
		GrokKey:                  strings.TrimSpace(os.Getenv("PLAYGROUND_GROK_API_KEY")),
		GrokModel:                envString("PLAYGROUND_GROK_MODEL", "grok-2-image"),
		GrokEndpoint:             grokEndpoint,
		GrokImageFormat:          envString("PLAYGROUND_GROK_IMAGE_FORMAT", "base64"),
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

func envFloat(name string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
