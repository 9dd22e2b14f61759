package model

import (
	"fmt"
	"math"
	"time"
)

// Bar is one OHLCV observation.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Ref returns the bar price used as the execution reference.
func (b Bar) Ref(rp RefPrice) float64 {
	if rp == RefOpen {
		return b.Open
	}
	return b.Close
}

// BarSeries is the ordered bar history for one symbol.
type BarSeries struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// Validate checks the series against the data contract: at least one bar,
// strictly ascending timestamps, and strictly positive non-NaN prices.
func (s BarSeries) Validate() error {
	if s.Symbol == "" {
		return fmt.Errorf("%w: bar series has empty symbol", ErrInsufficientData)
	}
	if len(s.Bars) == 0 {
		return fmt.Errorf("%w: no bars for %s", ErrInsufficientData, s.Symbol)
	}
	for i, b := range s.Bars {
		if i > 0 && !s.Bars[i-1].Timestamp.Before(b.Timestamp) {
			return fmt.Errorf("%w: %s bar %d timestamp %s not after %s",
				ErrAlignment, s.Symbol, i, b.Timestamp.Format(time.RFC3339), s.Bars[i-1].Timestamp.Format(time.RFC3339))
		}
		for _, p := range []float64{b.Open, b.High, b.Low, b.Close} {
			if math.IsNaN(p) || p <= 0 {
				return fmt.Errorf("%w: %s bar %d at %s has price %v",
					ErrInvalidPrice, s.Symbol, i, b.Timestamp.Format(time.RFC3339), p)
			}
		}
	}
	return nil
}
