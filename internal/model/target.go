package model

import (
	"fmt"
	"math"
	"time"
)

// TargetPoint is one desired-exposure observation: the fraction of total
// equity the strategy wants allocated to the symbol at that time.
type TargetPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Weight    float64   `json:"weight"`
}

// TargetSeries is the target-weight history for one symbol. It is an intent
// ("hold this fraction of equity"), not an order stream.
type TargetSeries struct {
	Symbol  string        `json:"symbol"`
	Targets []TargetPoint `json:"targets"`
}

// AlignWith verifies that the series matches the bar series position-for-position.
// A mismatch is a caller bug that aborts the run; it is never repaired by
// reindexing or interpolation, because either would silently shift which bar a
// signal trades on.
func (t TargetSeries) AlignWith(bars BarSeries) error {
	if t.Symbol != bars.Symbol {
		return fmt.Errorf("%w: target series for %q paired with bars for %q", ErrAlignment, t.Symbol, bars.Symbol)
	}
	if len(t.Targets) != len(bars.Bars) {
		return fmt.Errorf("%w: %s has %d targets for %d bars", ErrAlignment, t.Symbol, len(t.Targets), len(bars.Bars))
	}
	for i, p := range t.Targets {
		if !p.Timestamp.Equal(bars.Bars[i].Timestamp) {
			return fmt.Errorf("%w: %s index %d target timestamp %s != bar timestamp %s",
				ErrAlignment, t.Symbol, i,
				p.Timestamp.Format(time.RFC3339), bars.Bars[i].Timestamp.Format(time.RFC3339))
		}
		if math.IsNaN(p.Weight) {
			return fmt.Errorf("%w: %s index %d target weight is NaN", ErrAlignment, t.Symbol, i)
		}
	}
	return nil
}
