package backtest

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"signal-backtest/internal/model"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func dailyBars(symbol string, closes ...float64) model.BarSeries {
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{
			Timestamp: t0.AddDate(0, 0, i),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1000,
		}
	}
	return model.BarSeries{Symbol: symbol, Bars: bars}
}

func targetsFor(bars model.BarSeries, weights ...float64) model.TargetSeries {
	pts := make([]model.TargetPoint, len(weights))
	for i, w := range weights {
		pts[i] = model.TargetPoint{Timestamp: bars.Bars[i].Timestamp, Weight: w}
	}
	return model.TargetSeries{Symbol: bars.Symbol, Targets: pts}
}

func baseConfig() Config {
	return Config{
		Cost:        model.CostParams{FeeBps: 0, SlippageBps: 0, Epsilon: 1e-9, LeverageCap: 1},
		InitialCash: 1000,
		RefPrice:    model.RefClose,
	}
}

func mustRun(t *testing.T, cfg Config, assets ...Asset) *Result {
	t.Helper()
	sim, err := New(cfg)
	require.NoError(t, err)
	res, err := sim.Run(assets)
	require.NoError(t, err)
	return res
}

func TestRunEndToEndScenario(t *testing.T) {
	bars := dailyBars("SPY", 100, 100, 110, 120)
	targets := targetsFor(bars, 0, 1, 1, 0)

	res := mustRun(t, baseConfig(), Asset{Bars: bars, Targets: targets})

	require.Len(t, res.Snapshots, 4)
	require.Len(t, res.Fills, 2)

	// Bar 0: flat.
	require.InDelta(t, 1000, res.Snapshots[0].Cash, 1e-9)
	require.InDelta(t, 1000, res.Snapshots[0].Equity, 1e-9)
	require.Empty(t, res.Snapshots[0].Positions)

	// Bar 1: buy 10 @ 100 sized on bar-0 equity.
	buy := res.Fills[0]
	require.Equal(t, "SPY", buy.Symbol)
	require.InDelta(t, 10, buy.Quantity, 1e-9)
	require.InDelta(t, 100, buy.Price, 1e-9)
	require.Equal(t, 0.0, buy.Fee)
	require.InDelta(t, 0, res.Snapshots[1].Cash, 1e-9)
	require.InDelta(t, 10, res.Snapshots[1].Positions["SPY"], 1e-9)
	require.InDelta(t, 1000, res.Snapshots[1].Equity, 1e-9)

	// Bar 2: target unchanged, no trade, equity marks to 110.
	require.InDelta(t, 1100, res.Snapshots[2].Equity, 1e-9)

	// Bar 3: full exit at 120.
	sell := res.Fills[1]
	require.InDelta(t, -10, sell.Quantity, 1e-9)
	require.InDelta(t, 120, sell.Price, 1e-9)
	require.InDelta(t, 1200, res.Snapshots[3].Cash, 1e-9)
	require.Empty(t, res.Snapshots[3].Positions)
	require.InDelta(t, 1200, res.Snapshots[3].Equity, 1e-9)
}

func TestSnapshotCountMatchesBarCount(t *testing.T) {
	bars := dailyBars("SPY", 100, 101, 99, 105, 104, 108, 111)
	targets := targetsFor(bars, 0, 1, 0, 1, 1, 0, 1)

	res := mustRun(t, baseConfig(), Asset{Bars: bars, Targets: targets})
	require.Len(t, res.Snapshots, len(bars.Bars))
}

func TestEquityReconciliationEverySnapshot(t *testing.T) {
	cfg := baseConfig()
	cfg.Cost.FeeBps = 10
	cfg.Cost.SlippageBps = 25

	a := dailyBars("AAA", 100, 102, 98, 103, 107)
	b := dailyBars("BBB", 50, 51, 53, 49, 48)

	res := mustRun(t, cfg,
		Asset{Bars: a, Targets: targetsFor(a, 0, 0.6, 0.6, 0.2, 0)},
		Asset{Bars: b, Targets: targetsFor(b, 0.4, 0.4, 0, 0.5, 0.5)},
	)

	for i, s := range res.Snapshots {
		want := s.Cash
		for sym, qty := range s.Positions {
			want += qty * s.LastPrices[sym]
		}
		require.InDelta(t, want, s.Equity, 1e-9, "snapshot %d", i)
	}
}

func TestDeterministicReplay(t *testing.T) {
	cfg := baseConfig()
	cfg.Cost.FeeBps = 5
	cfg.Cost.SlippageBps = 5

	a := dailyBars("AAA", 100, 102, 98, 103)
	b := dailyBars("BBB", 50, 51, 53, 49)
	assets := []Asset{
		{Bars: a, Targets: targetsFor(a, 0, 0.5, 0.5, 0)},
		{Bars: b, Targets: targetsFor(b, 0.5, 0, 0.5, 0.5)},
	}

	sim, err := New(cfg)
	require.NoError(t, err)
	r1, err := sim.Run(assets)
	require.NoError(t, err)
	r2, err := sim.Run(assets)
	require.NoError(t, err)

	require.Equal(t, r1.Fills, r2.Fills)
	require.Equal(t, r1.Snapshots, r2.Snapshots)
}

func TestNoLookahead(t *testing.T) {
	closes := []float64{100, 101, 102, 103, 104}
	weights := []float64{0, 1, 1, 0, 1}

	bars := dailyBars("SPY", closes...)
	base := mustRun(t, baseConfig(), Asset{Bars: bars, Targets: targetsFor(bars, weights...)})

	// Perturbing the final bar must not change anything recorded before it.
	perturbed := dailyBars("SPY", 100, 101, 102, 103, 999)
	got := mustRun(t, baseConfig(), Asset{Bars: perturbed, Targets: targetsFor(perturbed, weights...)})

	require.Equal(t, base.Snapshots[:4], got.Snapshots[:4])
	cut := bars.Bars[4].Timestamp
	for i := range base.Fills {
		if base.Fills[i].Timestamp.Before(cut) {
			require.Equal(t, base.Fills[i], got.Fills[i])
		}
	}
}

func TestEpsilonCleaningSuppressesNoiseTrades(t *testing.T) {
	cfg := baseConfig()
	cfg.Cost.Epsilon = 1e-6

	bars := dailyBars("SPY", 100, 100, 100)
	targets := targetsFor(bars, 0.5, 0.5+1e-9, 0.5-1e-9)

	res := mustRun(t, cfg, Asset{Bars: bars, Targets: targets})
	// Only the initial entry trades; sub-epsilon wiggles are ignored.
	require.Len(t, res.Fills, 1)
}

func TestNoFillWhenAlwaysFlat(t *testing.T) {
	bars := dailyBars("SPY", 100, 110, 90)
	res := mustRun(t, baseConfig(), Asset{Bars: bars, Targets: targetsFor(bars, 0, 0, 0)})

	require.Empty(t, res.Fills)
	require.Len(t, res.Snapshots, 3)
}

func TestLeverageClippingScalesWeights(t *testing.T) {
	a := dailyBars("AAA", 100, 100)
	b := dailyBars("BBB", 100, 100)

	res := mustRun(t, baseConfig(),
		Asset{Bars: a, Targets: targetsFor(a, 0.8, 0.8)},
		Asset{Bars: b, Targets: targetsFor(b, 0.8, 0.8)},
	)

	// 0.8+0.8 gross vs cap 1.0 clips each to 0.5: 5 units at 100 on 1000 equity.
	require.Len(t, res.Fills, 2)
	require.InDelta(t, 5, res.Snapshots[0].Positions["AAA"], 1e-9)
	require.InDelta(t, 5, res.Snapshots[0].Positions["BBB"], 1e-9)
	require.InDelta(t, 0, res.Snapshots[0].Cash, 1e-9)
}

func TestFillsOrderedBySymbolWithinBar(t *testing.T) {
	a := dailyBars("ZZZ", 100)
	b := dailyBars("AAA", 100)

	// Assets handed over out of order still fill lexicographically.
	res := mustRun(t, baseConfig(),
		Asset{Bars: a, Targets: targetsFor(a, 0.3)},
		Asset{Bars: b, Targets: targetsFor(b, 0.3)},
	)
	require.Equal(t, []string{"AAA", "ZZZ"}, res.Symbols)
	require.Len(t, res.Fills, 2)
	require.Equal(t, "AAA", res.Fills[0].Symbol)
	require.Equal(t, "ZZZ", res.Fills[1].Symbol)
}

func TestOpenReferencePrice(t *testing.T) {
	cfg := baseConfig()
	cfg.RefPrice = model.RefOpen

	bars := model.BarSeries{Symbol: "SPY", Bars: []model.Bar{
		{Timestamp: t0, Open: 100, High: 100, Low: 100, Close: 100, Volume: 1},
		{Timestamp: t0.AddDate(0, 0, 1), Open: 50, High: 100, Low: 50, Close: 100, Volume: 1},
	}}
	targets := targetsFor(bars, 0, 1)

	res := mustRun(t, cfg, Asset{Bars: bars, Targets: targets})

	// Sized on bar-0 equity (1000) at bar-1 open (50): 20 units.
	require.Len(t, res.Fills, 1)
	require.InDelta(t, 20, res.Fills[0].Quantity, 1e-9)
	require.InDelta(t, 50, res.Fills[0].Price, 1e-9)
	// Marked at bar-1 close (100).
	require.InDelta(t, 2000, res.Snapshots[1].Equity, 1e-9)
}

func TestReferencePriceNormalizedAtConstruction(t *testing.T) {
	// Case or whitespace variants must either be rejected or execute exactly
	// like the canonical form; falling through to the close would silently
	// change every fill.
	for _, raw := range []string{"Open", "OPEN", " open "} {
		cfg := baseConfig()
		cfg.RefPrice = model.RefPrice(raw)

		bars := model.BarSeries{Symbol: "SPY", Bars: []model.Bar{
			{Timestamp: t0, Open: 100, High: 100, Low: 100, Close: 100, Volume: 1},
			{Timestamp: t0.AddDate(0, 0, 1), Open: 50, High: 100, Low: 50, Close: 100, Volume: 1},
		}}
		targets := targetsFor(bars, 0, 1)

		res := mustRun(t, cfg, Asset{Bars: bars, Targets: targets})

		require.Len(t, res.Fills, 1, "raw %q", raw)
		require.InDelta(t, 50, res.Fills[0].Price, 1e-9, "raw %q", raw)
		require.InDelta(t, 20, res.Fills[0].Quantity, 1e-9, "raw %q", raw)
	}
}

func TestAlignmentMismatchAborts(t *testing.T) {
	sim, err := New(baseConfig())
	require.NoError(t, err)

	bars := dailyBars("SPY", 100, 101, 102)

	// Length mismatch.
	short := targetsFor(bars, 0, 1)
	short.Targets = short.Targets[:2]
	_, err = sim.Run([]Asset{{Bars: bars, Targets: short}})
	require.ErrorIs(t, err, model.ErrAlignment)

	// Timestamp mismatch.
	shifted := targetsFor(bars, 0, 1, 0)
	shifted.Targets[1].Timestamp = shifted.Targets[1].Timestamp.Add(time.Hour)
	_, err = sim.Run([]Asset{{Bars: bars, Targets: shifted}})
	require.ErrorIs(t, err, model.ErrAlignment)

	// Symbol mismatch.
	other := targetsFor(bars, 0, 1, 0)
	other.Symbol = "QQQ"
	_, err = sim.Run([]Asset{{Bars: bars, Targets: other}})
	require.ErrorIs(t, err, model.ErrAlignment)
}

func TestSharedTimelineMismatchAborts(t *testing.T) {
	sim, err := New(baseConfig())
	require.NoError(t, err)

	a := dailyBars("AAA", 100, 101, 102)
	b := dailyBars("BBB", 50, 51)

	_, err = sim.Run([]Asset{
		{Bars: a, Targets: targetsFor(a, 0, 0, 0)},
		{Bars: b, Targets: targetsFor(b, 0, 0)},
	})
	require.ErrorIs(t, err, model.ErrAlignment)
}

func TestDuplicateSymbolAborts(t *testing.T) {
	sim, err := New(baseConfig())
	require.NoError(t, err)

	a := dailyBars("SPY", 100)
	_, err = sim.Run([]Asset{
		{Bars: a, Targets: targetsFor(a, 0)},
		{Bars: a, Targets: targetsFor(a, 0)},
	})
	require.ErrorIs(t, err, model.ErrAlignment)
}

func TestInvalidPriceAborts(t *testing.T) {
	sim, err := New(baseConfig())
	require.NoError(t, err)

	bars := dailyBars("SPY", 100, -5, 102)
	_, err = sim.Run([]Asset{{Bars: bars, Targets: targetsFor(bars, 0, 0, 0)}})
	require.ErrorIs(t, err, model.ErrInvalidPrice)
}

func TestNonAscendingTimestampsAbort(t *testing.T) {
	sim, err := New(baseConfig())
	require.NoError(t, err)

	bars := dailyBars("SPY", 100, 101, 102)
	bars.Bars[2].Timestamp = bars.Bars[0].Timestamp

	_, err = sim.Run([]Asset{{Bars: bars, Targets: targetsFor(bars, 0, 0, 0)}})
	require.ErrorIs(t, err, model.ErrAlignment)
}

func TestEmptyInputsAbort(t *testing.T) {
	sim, err := New(baseConfig())
	require.NoError(t, err)

	_, err = sim.Run(nil)
	require.ErrorIs(t, err, model.ErrInsufficientData)

	empty := model.BarSeries{Symbol: "SPY"}
	_, err = sim.Run([]Asset{{Bars: empty, Targets: model.TargetSeries{Symbol: "SPY"}}})
	require.ErrorIs(t, err, model.ErrInsufficientData)
}

func TestConfigValidationAtConstruction(t *testing.T) {
	bad := []Config{
		func() Config { c := baseConfig(); c.Cost.FeeBps = -1; return c }(),
		func() Config { c := baseConfig(); c.Cost.SlippageBps = -0.5; return c }(),
		func() Config { c := baseConfig(); c.Cost.Epsilon = 0; return c }(),
		func() Config { c := baseConfig(); c.Cost.LeverageCap = 0; return c }(),
		func() Config { c := baseConfig(); c.RefPrice = ""; return c }(),
		func() Config { c := baseConfig(); c.RefPrice = "vwap"; return c }(),
		func() Config { c := baseConfig(); c.InitialCash = -1; return c }(),
	}
	for i, cfg := range bad {
		_, err := New(cfg)
		require.ErrorIs(t, err, model.ErrConfig, "case %d", i)
	}
}

func TestGuardErrorAbortsRun(t *testing.T) {
	vetoed := errors.New("trade rejected")
	cfg := baseConfig()
	cfg.Guard = func(l *Ledger, symbol string, qty, price, fee float64) error {
		return vetoed
	}

	sim, err := New(cfg)
	require.NoError(t, err)

	bars := dailyBars("SPY", 100, 100)
	_, err = sim.Run([]Asset{{Bars: bars, Targets: targetsFor(bars, 0, 1)}})
	require.ErrorIs(t, err, vetoed)
}

func TestFeeAndSlippageCashDelta(t *testing.T) {
	cfg := baseConfig()
	cfg.Cost.FeeBps = 10
	cfg.Cost.SlippageBps = 50
	cfg.InitialCash = 2000

	// Weight chosen so the sized quantity is exactly 10 at ref price 100
	// against bar-0 equity 2000.
	bars := dailyBars("SPY", 100, 100)
	targets := targetsFor(bars, 0, 0.5)

	res := mustRun(t, cfg, Asset{Bars: bars, Targets: targets})
	require.Len(t, res.Fills, 1)
	f := res.Fills[0]
	require.InDelta(t, 10, f.Quantity, 1e-9)
	require.InDelta(t, 100.5, f.Price, 1e-9)
	require.InDelta(t, 1.005, f.Fee, 1e-9)
	require.InDelta(t, 2000-1006.005, res.Snapshots[1].Cash, 1e-9)
}
