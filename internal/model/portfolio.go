package model

import (
	"sort"
	"time"
)

// PortfolioState is the ledger snapshot recorded at the close of one bar:
// cash, per-symbol position quantity, per-symbol last mark price, and derived
// equity. The invariant equity == cash + Σ(qty·mark) holds at every snapshot.
type PortfolioState struct {
	Timestamp  time.Time          `json:"timestamp"`
	Cash       float64            `json:"cash"`
	Positions  map[string]float64 `json:"positions"`
	LastPrices map[string]float64 `json:"last_prices"`
	Equity     float64            `json:"equity"`
}

// Symbols returns the union of position and mark symbols in lexicographic
// order, so that anything serializing a snapshot iterates deterministically.
func (p PortfolioState) Symbols() []string {
	seen := make(map[string]struct{}, len(p.LastPrices))
	for sym := range p.Positions {
		seen[sym] = struct{}{}
	}
	for sym := range p.LastPrices {
		seen[sym] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for sym := range seen {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}
