package backtest

import "signal-backtest/internal/model"

// Result is the artifact one run produces: the fills that occurred and one
// portfolio snapshot per bar, both in execution order. It is append-only
// while the simulation runs and immutable afterwards; reporting consumes it
// read-only.
type Result struct {
	// Symbols is the run's symbol set in the fixed processing order.
	Symbols   []string
	Fills     []model.Fill
	Snapshots []model.PortfolioState
}

// EquityCurve extracts the per-bar equity values.
func (r *Result) EquityCurve() []float64 {
	out := make([]float64, len(r.Snapshots))
	for i, s := range r.Snapshots {
		out[i] = s.Equity
	}
	return out
}

// TotalFees sums fees across all fills.
func (r *Result) TotalFees() float64 {
	var sum float64
	for _, f := range r.Fills {
		sum += f.Fee
	}
	return sum
}

// FinalEquity is the equity at the last snapshot, or 0 for an empty result.
func (r *Result) FinalEquity() float64 {
	if len(r.Snapshots) == 0 {
		return 0
	}
	return r.Snapshots[len(r.Snapshots)-1].Equity
}
