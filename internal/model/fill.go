package model

import "time"

// Side labels the direction of a fill. Keep these values stable; they are
// intended for CSV and JSON output.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// SideFromQty maps a signed trade quantity to its side. Zero-quantity trades
// are never recorded, so qty here is always non-zero.
func SideFromQty(qty float64) Side {
	if qty < 0 {
		return SideSell
	}
	return SideBuy
}

// Fill is one executed trade. Quantity is signed: positive = buy, negative =
// sell. Price is the executed price after slippage; Fee is always >= 0.
type Fill struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Quantity  float64   `json:"quantity"`
	Fee       float64   `json:"fee"`
}

// Side returns the direction implied by the signed quantity.
func (f Fill) Side() Side { return SideFromQty(f.Quantity) }

// Notional is the absolute traded value at the executed price.
func (f Fill) Notional() float64 {
	n := f.Quantity * f.Price
	if n < 0 {
		return -n
	}
	return n
}
