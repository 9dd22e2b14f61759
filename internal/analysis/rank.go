package analysis

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"signal-backtest/internal/model"
)

// Opportunity is a symbol-level summary for ranking datasets before running
// full backtests. It does not depend on any strategy; it combines raw close
// statistics with the profit a perfect-foresight single-unit long-only trader
// would have captured.
type Opportunity struct {
	Symbol string    `json:"symbol"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Count  int       `json:"count"`

	MinClose     float64 `json:"min_close"`
	MaxClose     float64 `json:"max_close"`
	MeanClose    float64 `json:"mean_close"`
	SpreadP95P05 float64 `json:"spread_p95_p05"`

	// OracleProfit is the sum of all positive close-to-close moves per unit
	// held: the upper bound for any long-only single-unit strategy on these
	// bars, ignoring costs.
	OracleProfit float64 `json:"oracle_profit"`
}

// ComputeOpportunity summarizes one validated bar series.
func ComputeOpportunity(series model.BarSeries) Opportunity {
	o := Opportunity{Symbol: series.Symbol}
	if len(series.Bars) == 0 {
		return o
	}
	o.Count = len(series.Bars)
	o.Start = series.Bars[0].Timestamp
	o.End = series.Bars[len(series.Bars)-1].Timestamp

	closes := make([]float64, len(series.Bars))
	for i, b := range series.Bars {
		closes[i] = b.Close
	}

	// stats errors only on empty input, which is excluded above.
	o.MinClose, _ = stats.Min(closes)
	o.MaxClose, _ = stats.Max(closes)
	o.MeanClose, _ = stats.Mean(closes)
	p95, _ := stats.Percentile(closes, 95)
	p05, _ := stats.Percentile(closes, 5)
	o.SpreadP95P05 = p95 - p05

	for i := 1; i < len(closes); i++ {
		if move := closes[i] - closes[i-1]; move > 0 {
			o.OracleProfit += move
		}
	}
	return o
}

// RankByOracleProfit summarizes every series and sorts descending by oracle
// profit, ties broken by symbol for stable output.
func RankByOracleProfit(series []model.BarSeries) []Opportunity {
	out := make([]Opportunity, 0, len(series))
	for _, s := range series {
		out = append(out, ComputeOpportunity(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OracleProfit != out[j].OracleProfit {
			return out[i].OracleProfit > out[j].OracleProfit
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}
