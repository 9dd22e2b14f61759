package model

import (
	"fmt"
	"math"
	"strings"
)

// RefPrice selects which bar price a trade executes against. It must be set
// explicitly: defaulting it silently would change backtest results for anyone
// who assumed the other convention.
type RefPrice string

const (
	RefOpen  RefPrice = "open"
	RefClose RefPrice = "close"
)

// ParseRefPrice validates a configured reference-price value.
func ParseRefPrice(s string) (RefPrice, error) {
	switch RefPrice(strings.ToLower(strings.TrimSpace(s))) {
	case RefOpen:
		return RefOpen, nil
	case RefClose:
		return RefClose, nil
	case "":
		return "", fmt.Errorf("%w: reference_price is required (\"open\" or \"close\")", ErrConfig)
	default:
		return "", fmt.Errorf("%w: reference_price must be \"open\" or \"close\", got %q", ErrConfig, s)
	}
}

// CostParams configures the transaction-cost model and trade sizing.
// Units:
// - FeeBps: proportional fee on executed notional, basis points (1 bps = 0.01%)
// - SlippageBps: adverse price adjustment on fills, basis points
// - Epsilon: minimum tradable weight/quantity delta (suppresses float churn)
// - LeverageCap: maximum Σ|target weight| across symbols per bar
type CostParams struct {
	FeeBps      float64
	SlippageBps float64
	Epsilon     float64
	LeverageCap float64
}

// NewCostParams validates the parameter domain and returns the params.
// Anything outside the domain is a ConfigError raised here, before any
// simulation step can run.
func NewCostParams(feeBps, slippageBps, epsilon, leverageCap float64) (CostParams, error) {
	p := CostParams{
		FeeBps:      feeBps,
		SlippageBps: slippageBps,
		Epsilon:     epsilon,
		LeverageCap: leverageCap,
	}
	return p, p.Validate()
}

func (p CostParams) Validate() error {
	names := []string{"fee_bps", "slippage_bps", "epsilon", "leverage_cap"}
	for i, v := range []float64{p.FeeBps, p.SlippageBps, p.Epsilon, p.LeverageCap} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrConfig, names[i], v)
		}
	}
	if p.FeeBps < 0 {
		return fmt.Errorf("%w: fee_bps must be >= 0, got %v", ErrConfig, p.FeeBps)
	}
	if p.SlippageBps < 0 {
		return fmt.Errorf("%w: slippage_bps must be >= 0, got %v", ErrConfig, p.SlippageBps)
	}
	if p.Epsilon <= 0 {
		return fmt.Errorf("%w: epsilon must be > 0, got %v", ErrConfig, p.Epsilon)
	}
	if p.LeverageCap <= 0 {
		return fmt.Errorf("%w: leverage_cap must be > 0, got %v", ErrConfig, p.LeverageCap)
	}
	return nil
}
