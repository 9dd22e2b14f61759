package backtest

import (
	"fmt"
	"math"
	"sort"

	"signal-backtest/internal/model"
)

// Config is the full configuration surface of a simulation run. Nothing else
// is recognized; there is no ambient or global state behind it.
type Config struct {
	Cost        model.CostParams
	InitialCash float64
	RefPrice    model.RefPrice
	// Guard, when set, is consulted before every trade. Nil means no
	// pre-trade check at all.
	Guard TradeGuard
}

// Asset pairs one symbol's bar history with its target-weight series.
type Asset struct {
	Bars    model.BarSeries
	Targets model.TargetSeries
}

// Simulator walks an ordered bar timeline and converts per-bar target weights
// into fills and a per-bar portfolio snapshot history. A single run is a
// strictly sequential fold: no clock, no randomness, no I/O inside the loop.
type Simulator struct {
	cfg  Config
	cost CostModel
}

// New validates the configuration eagerly and returns a simulator. Parameter
// domain violations surface here, before any simulation step runs.
func New(cfg Config) (*Simulator, error) {
	if err := cfg.Cost.Validate(); err != nil {
		return nil, err
	}
	rp, err := model.ParseRefPrice(string(cfg.RefPrice))
	if err != nil {
		return nil, err
	}
	// Keep the normalized form: Bar.Ref matches the lowercase constants, so
	// carrying the raw string would silently fall through to the close.
	cfg.RefPrice = rp
	if math.IsNaN(cfg.InitialCash) || math.IsInf(cfg.InitialCash, 0) || cfg.InitialCash < 0 {
		return nil, fmt.Errorf("%w: initial_cash must be finite and >= 0, got %v", model.ErrConfig, cfg.InitialCash)
	}
	return &Simulator{
		cfg:  cfg,
		cost: CostModel{FeeBps: cfg.Cost.FeeBps, SlippageBps: cfg.Cost.SlippageBps},
	}, nil
}

// Run executes one backtest over assets sharing a common ascending timeline.
// Preconditions (checked up front, all fatal): every bar series is valid,
// every target series matches its bar series position-for-position, and all
// symbols share one timeline. The returned result holds one snapshot per bar.
func (s *Simulator) Run(assets []Asset) (*Result, error) {
	if len(assets) == 0 {
		return nil, fmt.Errorf("%w: no assets", model.ErrInsufficientData)
	}

	// Fixed lexicographic processing order keeps fills within a bar and
	// snapshot serialization reproducible across runs.
	sorted := make([]Asset, len(assets))
	copy(sorted, assets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Bars.Symbol < sorted[j].Bars.Symbol })

	for i, a := range sorted {
		if i > 0 && sorted[i-1].Bars.Symbol == a.Bars.Symbol {
			return nil, fmt.Errorf("%w: duplicate symbol %s", model.ErrAlignment, a.Bars.Symbol)
		}
		if err := a.Bars.Validate(); err != nil {
			return nil, err
		}
		if err := a.Targets.AlignWith(a.Bars); err != nil {
			return nil, err
		}
	}
	timeline := sorted[0].Bars.Bars
	for _, a := range sorted[1:] {
		if len(a.Bars.Bars) != len(timeline) {
			return nil, fmt.Errorf("%w: %s has %d bars, %s has %d",
				model.ErrAlignment, a.Bars.Symbol, len(a.Bars.Bars), sorted[0].Bars.Symbol, len(timeline))
		}
		for t := range timeline {
			if !a.Bars.Bars[t].Timestamp.Equal(timeline[t].Timestamp) {
				return nil, fmt.Errorf("%w: %s bar %d timestamp differs from shared timeline",
					model.ErrAlignment, a.Bars.Symbol, t)
			}
		}
	}

	ledger := NewLedger(s.cfg.InitialCash, s.cfg.Cost.Epsilon)
	ledger.SetGuard(s.cfg.Guard)

	eps := s.cfg.Cost.Epsilon
	symbols := make([]string, len(sorted))
	for i, a := range sorted {
		symbols[i] = a.Bars.Symbol
	}

	res := &Result{
		Symbols:   symbols,
		Fills:     make([]model.Fill, 0),
		Snapshots: make([]model.PortfolioState, 0, len(timeline)),
	}

	// lastApplied tracks the most recent target weight acted on per symbol,
	// starting flat. Moves smaller than epsilon are ignored to avoid paying
	// fees on floating-point noise.
	lastApplied := make(map[string]float64, len(sorted))

	weights := make([]float64, len(sorted))
	for t := range timeline {
		// Pre-trade equity uses positions marked at the previous bar's close
		// (just cash at t=0). Marking at bar t's own price before sizing
		// would leak the current bar into the decision.
		preEquity := ledger.Equity()

		for i, a := range sorted {
			weights[i] = a.Targets.Targets[t].Weight
		}
		clipped := clipGrossExposure(weights, s.cfg.Cost.LeverageCap)

		for i, a := range sorted {
			sym := a.Bars.Symbol
			w := clipped[i]
			if math.Abs(w-lastApplied[sym]) <= eps {
				continue
			}
			lastApplied[sym] = w

			bar := a.Bars.Bars[t]
			refPx := bar.Ref(s.cfg.RefPrice)
			desiredQty := w * preEquity / refPx
			tradeQty := desiredQty - ledger.Position(sym)
			if math.Abs(tradeQty) < eps {
				continue
			}

			execPx, fee := s.cost.Quote(tradeQty, refPx)
			if err := ledger.ApplyTrade(sym, tradeQty, execPx, fee); err != nil {
				return nil, fmt.Errorf("bar %d %s: %w", t, sym, err)
			}
			res.Fills = append(res.Fills, model.Fill{
				Symbol:    sym,
				Timestamp: bar.Timestamp,
				Price:     execPx,
				Quantity:  tradeQty,
				Fee:       fee,
			})
		}

		// Mark every symbol at this bar's close and snapshot, even when the
		// bar produced zero trades.
		for _, a := range sorted {
			ledger.Mark(a.Bars.Symbol, a.Bars.Bars[t].Close)
		}
		res.Snapshots = append(res.Snapshots, ledger.Snapshot(timeline[t].Timestamp))
	}

	return res, nil
}
