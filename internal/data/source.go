package data

import "signal-backtest/internal/model"

// Source produces a validated bar series for one symbol. Implementations own
// acquisition and normalization; everything downstream can assume ascending
// timestamps and positive prices.
type Source interface {
	Bars() (model.BarSeries, error)
}
