package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"time"

	"signal-backtest/internal/config"
	"signal-backtest/internal/model"
	"signal-backtest/internal/runner"
)

// Demo:
// - Generate a synthetic daily bar series (seeded, so runs are repeatable)
// - Run an SMA-cross backtest over it end to end
// - Print the fills and the headline metrics
func main() {
	n := flag.Int("n", 250, "Number of daily bars to simulate")
	seed := flag.Int64("seed", 42, "Random seed for the synthetic series")
	fast := flag.Int("fast", 10, "Fast SMA window")
	slow := flag.Int("slow", 40, "Slow SMA window")
	feeBps := flag.Float64("fee-bps", 10, "Fee in basis points")
	slipBps := flag.Float64("slip-bps", 5, "Slippage in basis points")
	flag.Parse()

	series := syntheticBars("DEMO", *n, *seed)

	cfg := &config.Config{
		Strategy: config.StrategyConfig{
			Kind: "sma_cross",
			Params: map[string]any{
				"fast": *fast, "slow": *slow, "shift": 1,
			},
		},
		Execution: config.ExecutionConfig{
			FeeBps:         *feeBps,
			SlippageBps:    *slipBps,
			Epsilon:        1e-9,
			LeverageCap:    1.0,
			ReferencePrice: "close",
		},
		InitialCash: 10000,
	}

	out, err := runner.RunOnBars(cfg, []model.BarSeries{series})
	if err != nil {
		panic(err)
	}

	fmt.Printf("Simulated %d bars of %s (seed %d)\n", *n, series.Symbol, *seed)
	fmt.Printf("SMA cross fast=%d slow=%d, fee=%.1fbps slip=%.1fbps\n\n", *fast, *slow, *feeBps, *slipBps)

	shown := len(out.Result.Fills)
	if shown > 12 {
		shown = 12
	}
	for _, f := range out.Result.Fills[:shown] {
		fmt.Printf(
			"%s %-5s %-4s qty=%9.4f px=%9.4f fee=%6.4f\n",
			f.Timestamp.Format("2006-01-02"),
			f.Symbol,
			f.Side(),
			f.Quantity,
			f.Price,
			f.Fee,
		)
	}
	if len(out.Result.Fills) > shown {
		fmt.Printf("... and %d more fills\n", len(out.Result.Fills)-shown)
	}

	m := out.Metrics
	fmt.Printf("\nFinal equity=%.2f  Return=%.2f%%  Sharpe=%.2f  MaxDD=%.2f%%  Fees=%.2f\n",
		out.Result.FinalEquity(),
		m.TotalReturn*100,
		m.Sharpe,
		m.MaxDrawdown*100,
		out.Result.TotalFees(),
	)
}

// syntheticBars builds a geometric random walk with mild upward drift.
func syntheticBars(symbol string, n int, seed int64) model.BarSeries {
	rng := rand.New(rand.NewSource(seed))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	bars := make([]model.Bar, n)
	price := 100.0
	for i := 0; i < n; i++ {
		ret := 0.0003 + 0.015*rng.NormFloat64()
		open := price
		close := price * math.Exp(ret)
		high := math.Max(open, close) * (1 + 0.003*rng.Float64())
		low := math.Min(open, close) * (1 - 0.003*rng.Float64())
		bars[i] = model.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    float64(1000 + rng.Intn(9000)),
		}
		price = close
	}
	return model.BarSeries{Symbol: symbol, Bars: bars}
}
