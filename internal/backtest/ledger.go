package backtest

import (
	"time"

	"signal-backtest/internal/model"
)

// TradeGuard is a pre-trade validation hook. It sees the ledger and the trade
// about to be applied and may veto it by returning an error. The zero value
// (nil) performs no check: negative cash is allowed in this phase, and
// cash-insufficiency policies plug in here later without touching the engine.
type TradeGuard func(l *Ledger, symbol string, qty, price, fee float64) error

// Ledger owns the running cash, per-symbol positions, and per-symbol last mark
// prices for one simulation run. It is mutated only through ApplyTrade and
// Mark; equity is recomputed on demand and never cached past a mutation.
type Ledger struct {
	cash       float64
	positions  map[string]float64
	lastPrices map[string]float64
	epsilon    float64
	guard      TradeGuard
}

// NewLedger starts a ledger with the given cash and no positions. Positions
// whose magnitude falls below epsilon after a trade are evicted so that
// floating-point dust never lingers in snapshots.
func NewLedger(initialCash, epsilon float64) *Ledger {
	return &Ledger{
		cash:       initialCash,
		positions:  make(map[string]float64),
		lastPrices: make(map[string]float64),
		epsilon:    epsilon,
	}
}

// SetGuard installs a pre-trade validation hook.
func (l *Ledger) SetGuard(g TradeGuard) { l.guard = g }

// ApplyTrade applies a signed trade: cash moves by -(qty*price + fee) and the
// position by +qty. If a guard is installed and vetoes the trade, the ledger
// is left untouched.
func (l *Ledger) ApplyTrade(symbol string, qty, price, fee float64) error {
	if l.guard != nil {
		if err := l.guard(l, symbol, qty, price, fee); err != nil {
			return err
		}
	}
	l.cash -= qty*price + fee
	next := l.positions[symbol] + qty
	if next > -l.epsilon && next < l.epsilon {
		delete(l.positions, symbol)
	} else {
		l.positions[symbol] = next
	}
	return nil
}

// Mark records the latest mark-to-market price for a symbol.
func (l *Ledger) Mark(symbol string, price float64) {
	l.lastPrices[symbol] = price
}

// Equity is cash plus the marked value of every open position. A position
// with no mark yet contributes nothing; that can only happen before the
// symbol's first bar close has been marked.
func (l *Ledger) Equity() float64 {
	eq := l.cash
	for sym, qty := range l.positions {
		if px, ok := l.lastPrices[sym]; ok {
			eq += qty * px
		}
	}
	return eq
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 { return l.cash }

// Position returns the current signed quantity held for a symbol.
func (l *Ledger) Position(symbol string) float64 { return l.positions[symbol] }

// Snapshot copies the full state at a bar boundary. The maps are copied so
// that later bars cannot mutate recorded history.
func (l *Ledger) Snapshot(ts time.Time) model.PortfolioState {
	pos := make(map[string]float64, len(l.positions))
	for k, v := range l.positions {
		pos[k] = v
	}
	marks := make(map[string]float64, len(l.lastPrices))
	for k, v := range l.lastPrices {
		marks[k] = v
	}
	return model.PortfolioState{
		Timestamp:  ts,
		Cash:       l.cash,
		Positions:  pos,
		LastPrices: marks,
		Equity:     l.Equity(),
	}
}
