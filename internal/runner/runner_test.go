package runner

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"signal-backtest/internal/config"
	"signal-backtest/internal/data"
	"signal-backtest/internal/model"
)

func writeSeries(t *testing.T, dir, symbol string, closes ...float64) model.BarSeries {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{Timestamp: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1}
	}
	s := model.BarSeries{Symbol: symbol, Bars: bars}
	require.NoError(t, data.WriteBarsCSV(filepath.Join(dir, symbol+".csv"), s))
	return s
}

func baseConfig(dir string, symbols ...string) *config.Config {
	return &config.Config{
		Data:       config.DataConfig{Kind: "csv", Dir: dir, Symbols: symbols},
		Strategy:   config.StrategyConfig{Kind: "constant_weight", Params: map[string]any{"weight": 1.0}},
		Allocation: config.AllocationConfig{Kind: "equal_weight"},
		Execution: config.ExecutionConfig{
			Epsilon:        1e-9,
			LeverageCap:    1,
			ReferencePrice: "close",
		},
		InitialCash: 1000,
	}
}

func TestRunSingleSymbolBuyAndHold(t *testing.T) {
	dir := t.TempDir()
	writeSeries(t, dir, "SPY", 100, 110, 121)

	out, err := Run(baseConfig(dir, "SPY"))
	require.NoError(t, err)

	require.Len(t, out.Result.Snapshots, 3)
	// Full exposure from bar 0: 10 units at 100, riding to 121.
	require.Len(t, out.Result.Fills, 1)
	require.InDelta(t, 10, out.Result.Fills[0].Quantity, 1e-9)
	require.InDelta(t, 1210, out.Result.FinalEquity(), 1e-9)
	require.InDelta(t, 0.21, out.Metrics.TotalReturn, 1e-9)
}

func TestRunMultiSymbolEqualWeight(t *testing.T) {
	dir := t.TempDir()
	writeSeries(t, dir, "AAA", 100, 100)
	writeSeries(t, dir, "BBB", 50, 50)

	out, err := Run(baseConfig(dir, "AAA", "BBB"))
	require.NoError(t, err)

	// Both symbols always want full weight; equal-weight allocation splits
	// the budget, so each gets 500 notional on the first bar.
	require.Len(t, out.Result.Fills, 2)
	snap := out.Result.Snapshots[0]
	require.InDelta(t, 5, snap.Positions["AAA"], 1e-9)
	require.InDelta(t, 10, snap.Positions["BBB"], 1e-9)
	require.InDelta(t, 0, snap.Cash, 1e-9)
}

func TestRunAlignsMismatchedCalendarsViaIntersection(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(symbol string, days []int) {
		bars := make([]model.Bar, len(days))
		for i, d := range days {
			bars[i] = model.Bar{Timestamp: start.AddDate(0, 0, d), Open: 100, High: 100, Low: 100, Close: 100, Volume: 1}
		}
		require.NoError(t, data.WriteBarsCSV(filepath.Join(dir, symbol+".csv"), model.BarSeries{Symbol: symbol, Bars: bars}))
	}
	mk("AAA", []int{0, 1, 2, 3})
	mk("BBB", []int{1, 2, 3, 4})

	out, err := Run(baseConfig(dir, "AAA", "BBB"))
	require.NoError(t, err)
	require.Len(t, out.Result.Snapshots, 3)
}

func TestRunUnknownStrategyFails(t *testing.T) {
	dir := t.TempDir()
	writeSeries(t, dir, "SPY", 100, 110)

	cfg := baseConfig(dir, "SPY")
	cfg.Strategy.Kind = "nope"
	_, err := Run(cfg)
	require.ErrorIs(t, err, model.ErrConfig)
}

func TestRunMissingDatasetFails(t *testing.T) {
	cfg := baseConfig(t.TempDir(), "GHOST")
	_, err := Run(cfg)
	require.Error(t, err)
}

func TestRunSMACrossEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeSeries(t, dir, "SPY", 100, 90, 95, 105, 115, 125, 110, 100)

	cfg := baseConfig(dir, "SPY")
	cfg.Strategy.Kind = "sma_cross"
	cfg.Strategy.Params = map[string]any{"fast": 2, "slow": 3, "shift": 1}

	out, err := Run(cfg)
	require.NoError(t, err)
	require.Len(t, out.Result.Snapshots, 8)
	require.NotEmpty(t, out.Result.Fills)
	// Equity reconciliation holds on every snapshot regardless of signal.
	for _, s := range out.Result.Snapshots {
		want := s.Cash
		for sym, qty := range s.Positions {
			want += qty * s.LastPrices[sym]
		}
		require.InDelta(t, want, s.Equity, 1e-9)
	}
}
