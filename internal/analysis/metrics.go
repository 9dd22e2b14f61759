package analysis

import (
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"signal-backtest/internal/model"
)

// Metrics is the minimal set for comparing strategies against each other.
// Vol and Sharpe use calendar-based annualization (365.25 days/year), which
// is consistent for 24/7 markets and for comparing runs at one bar frequency.
type Metrics struct {
	TotalReturn float64 `json:"total_return"`
	CAGR        float64 `json:"cagr"`
	VolAnnual   float64 `json:"vol_annual"`
	Sharpe      float64 `json:"sharpe"`
	MaxDrawdown float64 `json:"max_drawdown"`
	NumTrades   int     `json:"num_trades"`
}

const secondsPerYear = 365.25 * 24 * 3600

// EquityCurve pulls the equity values out of a snapshot history.
func EquityCurve(snapshots []model.PortfolioState) []float64 {
	out := make([]float64, len(snapshots))
	for i, s := range snapshots {
		out[i] = s.Equity
	}
	return out
}

// DrawdownCurve is equity/runningPeak - 1 at each bar: 0 at new highs,
// negative in a drawdown.
func DrawdownCurve(equity []float64) []float64 {
	out := make([]float64, len(equity))
	peak := math.Inf(-1)
	for i, eq := range equity {
		if eq > peak {
			peak = eq
		}
		out[i] = eq/peak - 1
	}
	return out
}

// MaxDrawdown is the deepest point of the drawdown curve (<= 0).
func MaxDrawdown(equity []float64) float64 {
	var worst float64
	for _, dd := range DrawdownCurve(equity) {
		if dd < worst {
			worst = dd
		}
	}
	return worst
}

// periodsPerYear infers the annualization factor from the median bar spacing.
func periodsPerYear(timestamps []time.Time) float64 {
	if len(timestamps) < 3 {
		return 365.25
	}
	deltas := make([]float64, 0, len(timestamps)-1)
	for i := 1; i < len(timestamps); i++ {
		deltas = append(deltas, timestamps[i].Sub(timestamps[i-1]).Seconds())
	}
	med, err := stats.Median(deltas)
	if err != nil || med <= 0 {
		return 365.25
	}
	return secondsPerYear / med
}

// ComputeMetrics summarizes a snapshot history. numTrades is supplied by the
// caller (len of the run's fills) since the curve alone can't know it.
func ComputeMetrics(snapshots []model.PortfolioState, numTrades int) Metrics {
	m := Metrics{
		TotalReturn: math.NaN(),
		CAGR:        math.NaN(),
		VolAnnual:   math.NaN(),
		Sharpe:      math.NaN(),
		NumTrades:   numTrades,
	}
	eq := EquityCurve(snapshots)
	if len(eq) == 0 || eq[0] == 0 {
		return m
	}

	m.TotalReturn = eq[len(eq)-1]/eq[0] - 1
	m.MaxDrawdown = MaxDrawdown(eq)

	years := snapshots[len(snapshots)-1].Timestamp.Sub(snapshots[0].Timestamp).Seconds() / secondsPerYear
	if years > 0 {
		m.CAGR = math.Pow(eq[len(eq)-1]/eq[0], 1/years) - 1
	}

	rets := make([]float64, 0, len(eq)-1)
	for i := 1; i < len(eq); i++ {
		if eq[i-1] != 0 {
			rets = append(rets, eq[i]/eq[i-1]-1)
		}
	}
	if len(rets) < 2 {
		return m
	}

	timestamps := make([]time.Time, len(snapshots))
	for i, s := range snapshots {
		timestamps[i] = s.Timestamp
	}
	ppy := periodsPerYear(timestamps)

	// Population standard deviation, matching how the curve is treated as
	// the full history rather than a sample.
	sd, err := stats.StandardDeviationPopulation(rets)
	if err != nil {
		return m
	}
	m.VolAnnual = sd * math.Sqrt(ppy)
	if sd > 0 {
		mean, err := stats.Mean(rets)
		if err != nil {
			return m
		}
		m.Sharpe = (mean / sd) * math.Sqrt(ppy)
	}
	return m
}
