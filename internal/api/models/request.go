package models

import "signal-backtest/internal/model"

// BacktestRequest is the body for POST /api/v1/backtest.
type BacktestRequest struct {
	DataSource DataSourceConfig `json:"data_source" binding:"required"`
	Config     RunConfig        `json:"config" binding:"required"`
	Options    BacktestOptions  `json:"options,omitempty"`
}

// DataSourceConfig defines where the bars come from.
// Type "registry" reads symbols from the server's data directory;
// type "inline" carries the bar series in the request itself.
type DataSourceConfig struct {
	Type    string            `json:"type" binding:"required"` // "registry" | "inline"
	Symbols []string          `json:"symbols,omitempty"`
	Series  []model.BarSeries `json:"series,omitempty"`
}

// RunConfig mirrors the YAML run config for API callers.
type RunConfig struct {
	Strategy    StrategyConfig   `json:"strategy" binding:"required"`
	Allocation  AllocationConfig `json:"allocation,omitempty"`
	Execution   ExecutionConfig  `json:"execution" binding:"required"`
	InitialCash float64          `json:"initial_cash,omitempty"`
}

// StrategyConfig selects a strategy and its parameters.
type StrategyConfig struct {
	Kind   string         `json:"kind" binding:"required"`
	Params map[string]any `json:"params,omitempty"`
}

// AllocationConfig selects the multi-asset allocator.
type AllocationConfig struct {
	Kind string  `json:"kind,omitempty"`
	Cap  float64 `json:"cap,omitempty"`
}

// ExecutionConfig carries cost-model and sizing parameters.
// ReferencePrice is required; there is no server-side default.
type ExecutionConfig struct {
	FeeBps         float64 `json:"fee_bps"`
	SlippageBps    float64 `json:"slippage_bps"`
	Epsilon        float64 `json:"epsilon,omitempty"`
	LeverageCap    float64 `json:"leverage_cap,omitempty"`
	ReferencePrice string  `json:"reference_price" binding:"required"`
}

// BacktestOptions are optional knobs that don't change the simulation.
type BacktestOptions struct {
	LimitBars     int  `json:"limit_bars,omitempty"`     // 0 = all
	IncludeFills  bool `json:"include_fills,omitempty"`  // default: false
	IncludeLedger bool `json:"include_ledger,omitempty"` // default: false
}

// RankRequest is the query form for GET /api/v1/rank.
type RankRequest struct {
	Symbols string `form:"symbols,omitempty"` // comma-separated; empty = all
	Limit   int    `form:"limit,omitempty"`   // default: 10
}
