package provider

import (
	"log"
	"time"
)

// LogRequest logs an outbound provider request.
func LogRequest(provider, method, url string, params map[string]interface{}) {
	if len(params) > 0 {
		log.Printf("[%s] %s %s params=%v", provider, method, url, params)
	} else {
		log.Printf("[%s] %s %s", provider, method, url)
	}
}

// LogResponse logs a provider response.
func LogResponse(provider string, statusCode int, duration time.Duration) {
	log.Printf("[%s] response status=%d duration=%dms",
		provider, statusCode, duration.Milliseconds())
}

// LogError logs an error from a provider operation.
func LogError(provider, operation string, err error) {
	log.Printf("[%s] %s error: %v", provider, operation, err)
}

// LogUsage logs token usage and the estimated dollar cost of one generation.
// Operational visibility only; nothing is persisted.
func LogUsage(provider, model, promptStyle string, promptSet int, usage UsageMetrics, estimatedCostUSD *float64) {
	cost := "unknown"
	if estimatedCostUSD != nil {
		cost = formatCost(*estimatedCostUSD)
	}
	log.Printf("[%s] usage model=%s prompt_style=%s prompt_set=%d prompt_tokens=%s completion_tokens=%s total_tokens=%s estimated_cost_usd=%s",
		provider, model, promptStyle, promptSet,
		formatTokens(usage.PromptTokens),
		formatTokens(usage.CompletionTokens),
		formatTokens(usage.TotalTokens),
		cost,
	)
}
