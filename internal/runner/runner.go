package runner

import (
	"fmt"
	"path/filepath"

	"signal-backtest/internal/allocation"
	"signal-backtest/internal/analysis"
	"signal-backtest/internal/backtest"
	"signal-backtest/internal/config"
	"signal-backtest/internal/data"
	"signal-backtest/internal/model"
	"signal-backtest/internal/strategy"
)

// Output bundles everything a front end (CLI, API) wants from one run.
type Output struct {
	Result  *backtest.Result
	Metrics analysis.Metrics
	Bars    []model.BarSeries
}

// BuildStrategy constructs the configured strategy. The engine never sees
// strategy kinds; it only receives finished target series.
func BuildStrategy(cfg *config.Config) (strategy.Strategy, error) {
	switch cfg.Strategy.Kind {
	case "sma_cross":
		return strategy.NewSMACross(strategy.SMACrossParams{
			Fast:  config.ParamInt(cfg.Strategy.Params, "fast", 10),
			Slow:  config.ParamInt(cfg.Strategy.Params, "slow", 40),
			Shift: config.ParamInt(cfg.Strategy.Params, "shift", 1),
		})
	case "constant_weight":
		return strategy.NewConstantWeight(config.ParamNum(cfg.Strategy.Params, "weight", 1.0))
	default:
		return nil, fmt.Errorf("%w: unsupported strategy %q", model.ErrConfig, cfg.Strategy.Kind)
	}
}

func buildAllocator(cfg *config.Config) (allocation.Allocator, error) {
	switch cfg.Allocation.Kind {
	case "", "proportional":
		return allocation.Proportional{Cap: cfg.Allocation.Cap}, nil
	case "equal_weight":
		return allocation.EqualWeight{Cap: cfg.Allocation.Cap}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported allocation %q", model.ErrConfig, cfg.Allocation.Kind)
	}
}

// LoadBars loads every configured symbol and aligns the set to its common
// timeline.
func LoadBars(cfg *config.Config) ([]model.BarSeries, error) {
	series := make([]model.BarSeries, 0, len(cfg.Data.Symbols))
	for _, sym := range cfg.Data.Symbols {
		var src data.Source
		switch cfg.Data.Kind {
		case "json":
			src = data.JSONSource{Path: filepath.Join(cfg.Data.Dir, sym+".json")}
		default:
			src = data.CSVSource{Symbol: sym, Path: filepath.Join(cfg.Data.Dir, sym+".csv")}
		}
		s, err := src.Bars()
		if err != nil {
			return nil, err
		}
		series = append(series, s)
	}
	return data.AlignCommon(series)
}

// Run executes one full backtest from config: load and align bars, generate
// per-symbol targets, allocate across symbols, simulate, summarize.
func Run(cfg *config.Config) (*Output, error) {
	series, err := LoadBars(cfg)
	if err != nil {
		return nil, err
	}
	return RunOnBars(cfg, series)
}

// RunOnBars is Run with the data already in hand (API requests with inline
// bars, tests, sweeps reusing one load).
func RunOnBars(cfg *config.Config, series []model.BarSeries) (*Output, error) {
	strat, err := BuildStrategy(cfg)
	if err != nil {
		return nil, err
	}

	raw := make(map[string]model.TargetSeries, len(series))
	for _, s := range series {
		ts, err := strat.Targets(s)
		if err != nil {
			return nil, fmt.Errorf("strategy %s on %s: %w", strat.Name(), s.Symbol, err)
		}
		raw[s.Symbol] = ts
	}

	targets := raw
	if len(series) > 1 {
		// Multi-asset: per-bar, raw strategy intent is turned into portfolio
		// weights before execution so one hot signal can't hog the book.
		alloc, err := buildAllocator(cfg)
		if err != nil {
			return nil, err
		}
		targets = allocate(alloc, series, raw)
	}

	costs, err := cfg.CostParams()
	if err != nil {
		return nil, err
	}
	sim, err := backtest.New(backtest.Config{
		Cost:        costs,
		InitialCash: cfg.InitialCash,
		RefPrice:    model.RefPrice(cfg.Execution.ReferencePrice),
	})
	if err != nil {
		return nil, err
	}

	assets := make([]backtest.Asset, 0, len(series))
	for _, s := range series {
		assets = append(assets, backtest.Asset{Bars: s, Targets: targets[s.Symbol]})
	}
	res, err := sim.Run(assets)
	if err != nil {
		return nil, err
	}

	return &Output{
		Result:  res,
		Metrics: analysis.ComputeMetrics(res.Snapshots, len(res.Fills)),
		Bars:    series,
	}, nil
}

// allocate rewrites per-symbol raw intent into allocated weights bar by bar.
// Series are already aligned, so index t means the same timestamp everywhere.
func allocate(alloc allocation.Allocator, series []model.BarSeries, raw map[string]model.TargetSeries) map[string]model.TargetSeries {
	n := len(series[0].Bars)
	pts := make(map[string][]model.TargetPoint, len(series))
	for _, s := range series {
		cp := make([]model.TargetPoint, n)
		copy(cp, raw[s.Symbol].Targets)
		pts[s.Symbol] = cp
	}

	rawBar := make(map[string]float64, len(series))
	for t := 0; t < n; t++ {
		for _, s := range series {
			rawBar[s.Symbol] = raw[s.Symbol].Targets[t].Weight
		}
		weights := alloc.Allocate(rawBar, 1.0)
		for _, s := range series {
			pts[s.Symbol][t].Weight = weights[s.Symbol]
		}
	}

	out := make(map[string]model.TargetSeries, len(series))
	for _, s := range series {
		out[s.Symbol] = model.TargetSeries{Symbol: s.Symbol, Targets: pts[s.Symbol]}
	}
	return out
}
