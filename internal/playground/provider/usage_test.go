package provider

import (
	"math"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestEstimateCostUSDSplitCounts(t *testing.T) {
	cost := EstimateCostUSD(
		UsageMetrics{PromptTokens: intPtr(1000), CompletionTokens: intPtr(2000)},
		TokenPricing{InputCostPer1MTokens: 0.30, OutputCostPer1MTokens: 30.00},
	)
	if cost == nil {
		t.Fatal("expected an estimate")
	}
	want := (1000*0.30 + 2000*30.00) / 1_000_000
	if math.Abs(*cost-want) > 1e-12 {
		t.Errorf("cost = %v, want %v", *cost, want)
	}
}

func TestEstimateCostUSDTotalOnlyAveragesRates(t *testing.T) {
	cost := EstimateCostUSD(
		UsageMetrics{TotalTokens: intPtr(1_000_000)},
		TokenPricing{InputCostPer1MTokens: 2.00, OutputCostPer1MTokens: 120.00},
	)
	if cost == nil {
		t.Fatal("expected an estimate")
	}
	if math.Abs(*cost-61.00) > 1e-9 {
		t.Errorf("cost = %v, want 61.00", *cost)
	}
}

func TestEstimateCostUSDTotalWithOneRate(t *testing.T) {
	cost := EstimateCostUSD(
		UsageMetrics{TotalTokens: intPtr(500_000)},
		TokenPricing{OutputCostPer1MTokens: 30.00},
	)
	if cost == nil {
		t.Fatal("expected an estimate")
	}
	if math.Abs(*cost-15.00) > 1e-9 {
		t.Errorf("cost = %v, want 15.00", *cost)
	}
}

func TestEstimateCostUSDImpossible(t *testing.T) {
	if cost := EstimateCostUSD(UsageMetrics{}, TokenPricing{InputCostPer1MTokens: 1}); cost != nil {
		t.Errorf("no token counts should return nil, got %v", *cost)
	}
	if cost := EstimateCostUSD(UsageMetrics{TotalTokens: intPtr(100)}, TokenPricing{}); cost != nil {
		t.Errorf("no pricing should return nil, got %v", *cost)
	}
}
