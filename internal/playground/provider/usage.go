package provider

import "strconv"

// UsageMetrics holds token counts reported by a provider. Nil means the
// provider did not report that figure.
type UsageMetrics struct {
	PromptTokens     *int
	CompletionTokens *int
	TotalTokens      *int
}

// TokenPricing is the per-model dollar rate per million tokens.
type TokenPricing struct {
	InputCostPer1MTokens  float64
	OutputCostPer1MTokens float64
}

// EstimateCostUSD turns reported usage into a dollar estimate. When only a
// total is known the two rates are averaged. Returns nil when no estimate is
// possible.
func EstimateCostUSD(usage UsageMetrics, pricing TokenPricing) *float64 {
	inputRate := pricing.InputCostPer1MTokens
	if inputRate < 0 {
		inputRate = 0
	}
	outputRate := pricing.OutputCostPer1MTokens
	if outputRate < 0 {
		outputRate = 0
	}
	hasInput := inputRate > 0
	hasOutput := outputRate > 0

	if usage.PromptTokens != nil && usage.CompletionTokens != nil && (hasInput || hasOutput) {
		cost := (float64(*usage.PromptTokens)*inputRate + float64(*usage.CompletionTokens)*outputRate) / 1_000_000
		return &cost
	}

	if usage.TotalTokens != nil {
		total := float64(*usage.TotalTokens)
		switch {
		case hasInput && hasOutput:
			cost := total * (inputRate + outputRate) / 2 / 1_000_000
			return &cost
		case hasInput:
			cost := total * inputRate / 1_000_000
			return &cost
		case hasOutput:
			cost := total * outputRate / 1_000_000
			return &cost
		}
	}

	return nil
}

func formatTokens(value *int) string {
	if value == nil {
		return "unknown"
	}
	return strconv.Itoa(*value)
}

func formatCost(value float64) string {
	return strconv.FormatFloat(value, 'f', 8, 64)
}
