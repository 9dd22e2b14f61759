package backtest

// CostModel prices a requested trade: slippage moves the execution price
// against the trader, and a proportional fee is charged on executed notional.
// It is pure and stateless; identical inputs always produce identical outputs,
// which is what keeps replay deterministic.
type CostModel struct {
	FeeBps      float64
	SlippageBps float64
}

// Quote returns the executed price and fee for a signed trade quantity at the
// given reference price. Buys execute above the reference, sells below; the
// fee is non-negative on both sides.
func (m CostModel) Quote(qty, refPrice float64) (execPrice, fee float64) {
	slip := m.SlippageBps / 10000.0
	if qty > 0 {
		execPrice = refPrice * (1.0 + slip)
	} else {
		execPrice = refPrice * (1.0 - slip)
	}
	absQty := qty
	if absQty < 0 {
		absQty = -absQty
	}
	fee = absQty * execPrice * (m.FeeBps / 10000.0)
	return execPrice, fee
}
