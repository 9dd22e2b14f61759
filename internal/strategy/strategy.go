package strategy

import "signal-backtest/internal/model"

// Strategy turns one symbol's bar history into a target-weight series aligned
// to those bars. Strategies never touch fees, fills, or the ledger; they only
// state intent, and the execution engine realizes it.
type Strategy interface {
	Name() string
	Targets(bars model.BarSeries) (model.TargetSeries, error)
}
