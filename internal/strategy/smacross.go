package strategy

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"signal-backtest/internal/model"
)

// SMACrossParams configures the moving-average crossover strategy.
type SMACrossParams struct {
	Fast int // fast SMA window, bars
	Slow int // slow SMA window, bars
	// Shift delays each signal this many bars so a decision computed from
	// bar t-1 information executes on bar t.
	Shift int
}

// SMACrossStrategy targets full exposure while the fast close SMA is above
// the slow one, and cash otherwise. Bars before the slow window fills stay
// flat.
type SMACrossStrategy struct {
	Params SMACrossParams
}

func NewSMACross(params SMACrossParams) (*SMACrossStrategy, error) {
	if params.Fast <= 0 || params.Slow <= 0 {
		return nil, fmt.Errorf("sma windows must be positive, got fast=%d slow=%d", params.Fast, params.Slow)
	}
	if params.Fast >= params.Slow {
		return nil, fmt.Errorf("expected fast < slow, got fast=%d slow=%d", params.Fast, params.Slow)
	}
	if params.Shift < 0 {
		return nil, fmt.Errorf("shift must be >= 0, got %d", params.Shift)
	}
	return &SMACrossStrategy{Params: params}, nil
}

func (s *SMACrossStrategy) Name() string { return "sma_cross" }

func (s *SMACrossStrategy) Targets(bars model.BarSeries) (model.TargetSeries, error) {
	if err := bars.Validate(); err != nil {
		return model.TargetSeries{}, err
	}

	closes := make([]float64, len(bars.Bars))
	for i, b := range bars.Bars {
		closes[i] = b.Close
	}

	raw := make([]float64, len(closes))
	for i := range closes {
		if i+1 < s.Params.Slow {
			continue
		}
		fast, err := stats.Mean(closes[i+1-s.Params.Fast : i+1])
		if err != nil {
			return model.TargetSeries{}, fmt.Errorf("fast sma at bar %d: %w", i, err)
		}
		slow, err := stats.Mean(closes[i+1-s.Params.Slow : i+1])
		if err != nil {
			return model.TargetSeries{}, fmt.Errorf("slow sma at bar %d: %w", i, err)
		}
		if fast > slow {
			raw[i] = 1
		}
	}

	pts := make([]model.TargetPoint, len(bars.Bars))
	for i, b := range bars.Bars {
		w := 0.0
		if j := i - s.Params.Shift; j >= 0 {
			w = raw[j]
		}
		pts[i] = model.TargetPoint{Timestamp: b.Timestamp, Weight: w}
	}
	return model.TargetSeries{Symbol: bars.Symbol, Targets: pts}, nil
}
