package models

import (
	"time"

	"signal-backtest/internal/analysis"
	"signal-backtest/internal/model"
)

// BacktestResponse is the result of one run.
type BacktestResponse struct {
	Status  string                 `json:"status"`
	Summary BacktestSummary        `json:"summary"`
	Fills   []FillRow              `json:"fills,omitempty"`
	Ledger  []model.PortfolioState `json:"ledger,omitempty"`
}

// BacktestSummary aggregates the run without the per-bar detail.
type BacktestSummary struct {
	Symbols     []string         `json:"symbols"`
	Window      TimeWindow       `json:"window"`
	Bars        int              `json:"bars"`
	InitialCash float64          `json:"initial_cash"`
	FinalEquity float64          `json:"final_equity"`
	TotalFees   float64          `json:"total_fees"`
	NumFills    int              `json:"num_fills"`
	Metrics     analysis.Metrics `json:"metrics"`
}

// TimeWindow is a closed time range.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FillRow is one executed trade with its side spelled out.
type FillRow struct {
	Timestamp time.Time `json:"timestamp"`
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side"`
	Quantity  float64   `json:"quantity"`
	Price     float64   `json:"price"`
	Fee       float64   `json:"fee"`
}

// NewFillRow converts a core fill for serialization.
func NewFillRow(f model.Fill) FillRow {
	return FillRow{
		Timestamp: f.Timestamp,
		Symbol:    f.Symbol,
		Side:      string(f.Side()),
		Quantity:  f.Quantity,
		Price:     f.Price,
		Fee:       f.Fee,
	}
}

// StrategyInfo describes one available strategy.
type StrategyInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters"`
}

// ParameterInfo describes a strategy parameter.
type ParameterInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "float", "int"
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
}

// RankResponse lists symbols by opportunity.
type RankResponse struct {
	Rankings []Ranking `json:"rankings"`
}

// Ranking is one ranked symbol.
type Ranking struct {
	Rank int `json:"rank"`
	analysis.Opportunity
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code plus a human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
