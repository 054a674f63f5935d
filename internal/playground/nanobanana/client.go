// Package nanobanana adapts the Gemini generateContent image API.
package nanobanana

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BarberLink/BL-Backend/internal/playground/provider"
)

const providerName = "nanobanana"

// Per-model token pricing for cost estimates. Unknown models fall back to the
// configured override rates.
var modelPricing = map[string]provider.TokenPricing{
	"gemini-2.5-flash-image": {
		InputCostPer1MTokens:  0.30,
		OutputCostPer1MTokens: 30.00,
	},
	"gemini-3-pro-image-preview": {
		InputCostPer1MTokens:  2.00,
		OutputCostPer1MTokens: 120.00,
	},
}

const proImageModelPrefix = "gemini-3-pro-image-preview"

var imageSizeOptions = map[string]struct{}{"1K": {}, "2K": {}, "4K": {}}

// Transient failure handling: this is the only adapter that retries, and only
// on a narrow set of known-temporary upstream signatures.
const (
	maxAttempts  = 3
	retryBackoff = 500 * time.Millisecond
)

func init() {
	provider.RegisterProvider(provider.TypeNanobanana, func(cfg provider.Config) (provider.ImageProvider, error) {
		return NewClient(cfg), nil
	})
}

// Client calls the Gemini generateContent endpoint with inline image parts.
type Client struct {
	apiKey         string
	model          string
	endpoint       string
	imageSize      string
	promptSet      string
	flashPromptSet string
	proPromptSet   string
	pricing        provider.TokenPricing
	httpClient     *http.Client
}

func NewClient(cfg provider.Config) *Client {
	c := &Client{
		apiKey:         cfg.NanobananaKey,
		model:          cfg.NanobananaModel,
		endpoint:       cfg.NanobananaEndpoint,
		imageSize:      cfg.NanobananaImageSize,
		promptSet:      cfg.NanobananaPromptSet,
		flashPromptSet: cfg.NanobananaFlashPromptSet,
		proPromptSet:   cfg.NanobananaProPromptSet,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
	if pricing, ok := modelPricing[normalizeModelID(c.model)]; ok {
		c.pricing = pricing
	} else {
		c.pricing = provider.TokenPricing{
			InputCostPer1MTokens:  cfg.NanobananaInputCost1M,
			OutputCostPer1MTokens: cfg.NanobananaOutputCost1M,
		}
	}
	if c.endpoint == "" {
		c.endpoint = "https://generativelanguage.googleapis.com/v1beta/models/" +
			url.PathEscape(c.model) + ":generateContent"
	}
	return c
}

func (c *Client) Name() string { return providerName }

func normalizeModelID(model string) string {
	normalized := strings.ToLower(strings.TrimSpace(model))
	if idx := strings.LastIndex(normalized, "/"); idx >= 0 {
		normalized = normalized[idx+1:]
	}
	// Dated releases like gemini-2.5-flash-image-001 share the base pricing.
	for prefix := range modelPricing {
		if normalized == prefix || strings.HasPrefix(normalized, prefix+"-") {
			return prefix
		}
	}
	return normalized
}

func (c *Client) isProImageModel() bool {
	normalized := strings.ToLower(strings.TrimSpace(c.model))
	if idx := strings.LastIndex(normalized, "/"); idx >= 0 {
		normalized = normalized[idx+1:]
	}
	return normalized == proImageModelPrefix || strings.HasPrefix(normalized, proImageModelPrefix+"-")
}

func (c *Client) resolvedImageSize() string {
	if !c.isProImageModel() {
		return ""
	}
	if _, ok := imageSizeOptions[c.imageSize]; ok {
		return c.imageSize
	}
	return "1K"
}

func (c *Client) resolvedPromptStyle() string {
	if c.isProImageModel() {
		return provider.PromptStylePro
	}
	return provider.PromptStyleFlash
}

func (c *Client) resolvedPromptSet() int {
	raw := c.flashPromptSet
	if c.isProImageModel() {
		raw = c.proPromptSet
	}
	if raw == "" {
		raw = c.promptSet
	}
	return provider.ResolvePromptSet(raw)
}

func (c *Client) Generate(ctx context.Context, input provider.GenerateInput) (*provider.ImageResult, error) {
	if c.apiKey == "" {
		return nil, provider.Errorf(providerName, "API key is missing")
	}

	promptStyle := c.resolvedPromptStyle()
	promptSet := c.resolvedPromptSet()

	selfieMIME, selfieB64, err := provider.EncodeImageFile(providerName, input.SelfiePath)
	if err != nil {
		return nil, err
	}
	referenceMIME, referenceB64, err := provider.EncodeImageFile(providerName, input.ReferencePath)
	if err != nil {
		return nil, err
	}

	parts := []map[string]interface{}{
		{"text": "Image 1 (identity anchor selfie):"},
		{"inlineData": map[string]string{"mimeType": selfieMIME, "data": selfieB64}},
		{"text": "Image 2 (target hairstyle reference):"},
		{"inlineData": map[string]string{"mimeType": referenceMIME, "data": referenceB64}},
	}
	if input.BeardReferencePath != "" {
		beardMIME, beardB64, err := provider.EncodeImageFile(providerName, input.BeardReferencePath)
		if err != nil {
			return nil, err
		}
		parts = append(parts,
			map[string]interface{}{"text": "Image 3 (target beard reference):"},
			map[string]interface{}{"inlineData": map[string]string{"mimeType": beardMIME, "data": beardB64}},
		)
	}
	parts = append(parts, map[string]interface{}{
		"text": provider.BuildHairTransformationPrompt(provider.PromptOptions{
			UseCompositeInput:     false,
			IncludeBeardReference: input.BeardReferencePath != "",
			HairColorName:         input.HairColorName,
			BeardColorName:        input.BeardColorName,
			ApplyBeardEdit:        input.ApplyBeardEdit,
			PromptStyle:           promptStyle,
			PromptSet:             promptSet,
		}),
	})

	generationConfig := map[string]interface{}{"responseModalities": []string{"IMAGE"}}
	if size := c.resolvedImageSize(); size != "" {
		generationConfig["imageConfig"] = map[string]string{"imageSize": size}
	}

	payload := map[string]interface{}{
		"contents":         []map[string]interface{}{{"parts": parts}},
		"generationConfig": generationConfig,
	}
	headers := map[string]string{"x-goog-api-key": c.apiKey}

	var responsePayload map[string]interface{}
	for attempt := 1; ; attempt++ {
		provider.LogRequest(providerName, http.MethodPost, c.endpoint, map[string]interface{}{
			"model":   c.model,
			"attempt": attempt,
		})
		responsePayload, err = provider.PostJSON(ctx, c.httpClient, providerName, c.endpoint, payload, headers)
		if err == nil {
			break
		}
		if attempt >= maxAttempts || !isTransient(err) {
			provider.LogError(providerName, "generate", err)
			return nil, err
		}
		provider.LogError(providerName, "generate (will retry)", err)
		select {
		case <-ctx.Done():
			return nil, provider.Errorf(providerName, "request cancelled: %v", ctx.Err())
		case <-time.After(retryBackoff * time.Duration(attempt)):
		}
	}

	usage := extractUsageMetrics(responsePayload)
	provider.LogUsage(providerName, c.model, promptStyle, promptSet, usage,
		provider.EstimateCostUSD(usage, c.pricing))

	imageBytes, mimeType, err := extractImage(responsePayload)
	if err != nil {
		return nil, err
	}
	return &provider.ImageResult{ImageBytes: imageBytes, MIMEType: mimeType, Provider: providerName}, nil
}

// isTransient reports whether an upstream failure is worth a retry: overload
// statuses or the matching Gemini status strings in the error body.
func isTransient(err error) bool {
	providerErr, ok := err.(*provider.Error)
	if !ok {
		return false
	}
	if providerErr.StatusCode == http.StatusTooManyRequests ||
		providerErr.StatusCode == http.StatusServiceUnavailable {
		return true
	}
	message := providerErr.Message
	return strings.Contains(message, "UNAVAILABLE") || strings.Contains(message, "RESOURCE_EXHAUSTED")
}

func extractImage(payload map[string]interface{}) ([]byte, string, error) {
	candidates, _ := payload["candidates"].([]interface{})
	for _, rawCandidate := range candidates {
		candidate, _ := rawCandidate.(map[string]interface{})
		content, _ := candidate["content"].(map[string]interface{})
		parts, _ := content["parts"].([]interface{})
		for _, rawPart := range parts {
			part, _ := rawPart.(map[string]interface{})
			inline, _ := part["inlineData"].(map[string]interface{})
			if inline == nil {
				inline, _ = part["inline_data"].(map[string]interface{})
			}
			if inline == nil {
				continue
			}
			data, _ := inline["data"].(string)
			if data == "" {
				continue
			}
			mimeType, _ := inline["mimeType"].(string)
			if mimeType == "" {
				mimeType, _ = inline["mime_type"].(string)
			}
			if mimeType == "" {
				mimeType = "image/png"
			}
			imageBytes, err := provider.DecodeBase64(providerName, data)
			if err != nil {
				return nil, "", err
			}
			return imageBytes, mimeType, nil
		}
	}
	return nil, "", provider.Errorf(providerName, "provider returned no image output")
}

func extractUsageMetrics(payload map[string]interface{}) provider.UsageMetrics {
	usage, _ := payload["usageMetadata"].(map[string]interface{})
	if usage == nil {
		usage, _ = payload["usage_metadata"].(map[string]interface{})
	}
	if usage == nil {
		return provider.UsageMetrics{}
	}

	metrics := provider.UsageMetrics{
		PromptTokens:     firstCount(usage, "promptTokenCount", "prompt_token_count"),
		CompletionTokens: firstCount(usage, "candidatesTokenCount", "candidates_token_count", "outputTokenCount", "output_token_count"),
		TotalTokens:      firstCount(usage, "totalTokenCount", "total_token_count"),
	}
	if metrics.TotalTokens == nil && metrics.PromptTokens != nil && metrics.CompletionTokens != nil {
		total := *metrics.PromptTokens + *metrics.CompletionTokens
		metrics.TotalTokens = &total
	}
	return metrics
}

func firstCount(usage map[string]interface{}, keys ...string) *int {
	for _, key := range keys {
		if raw, ok := usage[key]; ok {
			if parsed, ok := asNonNegativeInt(raw); ok {
				return &parsed
			}
		}
	}
	return nil
}

func asNonNegativeInt(raw interface{}) (int, bool) {
	switch value := raw.(type) {
	case float64:
		if value < 0 {
			return 0, false
		}
		return int(value), true
	case int:
		if value < 0 {
			return 0, false
		}
		return value, true
	default:
		return 0, false
	}
}
