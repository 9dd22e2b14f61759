package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"signal-backtest/internal/api/models"
	"signal-backtest/internal/config"
	"signal-backtest/internal/data"
	"signal-backtest/internal/model"
	"signal-backtest/internal/runner"
)

// BacktestHandler runs simulations for API callers.
type BacktestHandler struct {
	registry *data.Registry
}

// NewBacktestHandler creates a backtest handler backed by the server's
// dataset registry.
func NewBacktestHandler(registry *data.Registry) *BacktestHandler {
	return &BacktestHandler{registry: registry}
}

// RunBacktest handles POST /api/v1/backtest.
func (h *BacktestHandler) RunBacktest(c *gin.Context) {
	var req models.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	series, err := h.loadSeries(req.DataSource)
	if err != nil {
		writeError(c, statusForRunError(err), codeForRunError(err), err)
		return
	}
	if req.Options.LimitBars > 0 {
		series = limitBars(series, req.Options.LimitBars)
	}

	cfg := buildConfig(req.Config)
	if err := validateRunConfig(cfg); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_CONFIG", err)
		return
	}

	out, err := runner.RunOnBars(cfg, series)
	if err != nil {
		writeError(c, statusForRunError(err), codeForRunError(err), err)
		return
	}

	resp := models.BacktestResponse{
		Status:  "completed",
		Summary: summarize(cfg, out),
	}
	if req.Options.IncludeFills {
		resp.Fills = make([]models.FillRow, len(out.Result.Fills))
		for i, f := range out.Result.Fills {
			resp.Fills[i] = models.NewFillRow(f)
		}
	}
	if req.Options.IncludeLedger {
		resp.Ledger = out.Result.Snapshots
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BacktestHandler) loadSeries(src models.DataSourceConfig) ([]model.BarSeries, error) {
	switch src.Type {
	case "inline":
		if len(src.Series) == 0 {
			return nil, fmt.Errorf("%w: inline data source carries no series", model.ErrConfig)
		}
		return data.AlignCommon(src.Series)
	case "registry":
		if len(src.Symbols) == 0 {
			return nil, fmt.Errorf("%w: registry data source needs symbols", model.ErrConfig)
		}
		series := make([]model.BarSeries, 0, len(src.Symbols))
		for _, sym := range src.Symbols {
			s, err := h.registry.Bars(sym)
			if err != nil {
				return nil, err
			}
			series = append(series, s)
		}
		return data.AlignCommon(series)
	default:
		return nil, fmt.Errorf("%w: data_source.type must be \"registry\" or \"inline\"", model.ErrConfig)
	}
}

func limitBars(series []model.BarSeries, n int) []model.BarSeries {
	out := make([]model.BarSeries, len(series))
	for i, s := range series {
		bars := s.Bars
		if n < len(bars) {
			bars = bars[:n]
		}
		out[i] = model.BarSeries{Symbol: s.Symbol, Bars: bars}
	}
	return out
}

// buildConfig converts the API run config into the internal config shape.
func buildConfig(rc models.RunConfig) *config.Config {
	cfg := &config.Config{
		Strategy: config.StrategyConfig{
			Kind:   rc.Strategy.Kind,
			Params: rc.Strategy.Params,
		},
		Allocation: config.AllocationConfig{
			Kind: rc.Allocation.Kind,
			Cap:  rc.Allocation.Cap,
		},
		Execution: config.ExecutionConfig{
			FeeBps:         rc.Execution.FeeBps,
			SlippageBps:    rc.Execution.SlippageBps,
			Epsilon:        rc.Execution.Epsilon,
			LeverageCap:    rc.Execution.LeverageCap,
			ReferencePrice: rc.Execution.ReferencePrice,
		},
		InitialCash: rc.InitialCash,
	}
	if cfg.Allocation.Kind == "" {
		cfg.Allocation.Kind = "proportional"
	}
	if cfg.Execution.Epsilon == 0 {
		cfg.Execution.Epsilon = 1e-9
	}
	if cfg.Execution.LeverageCap == 0 {
		cfg.Execution.LeverageCap = 1.0
	}
	if cfg.InitialCash == 0 {
		cfg.InitialCash = 10000
	}
	return cfg
}

func validateRunConfig(cfg *config.Config) error {
	if _, err := cfg.CostParams(); err != nil {
		return err
	}
	if _, err := model.ParseRefPrice(cfg.Execution.ReferencePrice); err != nil {
		return err
	}
	return nil
}

func summarize(cfg *config.Config, out *runner.Output) models.BacktestSummary {
	snaps := out.Result.Snapshots
	window := models.TimeWindow{}
	if len(snaps) > 0 {
		window.Start = snaps[0].Timestamp
		window.End = snaps[len(snaps)-1].Timestamp
	}
	return models.BacktestSummary{
		Symbols:     out.Result.Symbols,
		Window:      window,
		Bars:        len(snaps),
		InitialCash: cfg.InitialCash,
		FinalEquity: out.Result.FinalEquity(),
		TotalFees:   out.Result.TotalFees(),
		NumFills:    len(out.Result.Fills),
		Metrics:     out.Metrics,
	}
}

// Error classification: the core's error kinds map to stable API codes so
// clients can tell a bad request from bad data from a server fault.

func codeForRunError(err error) string {
	switch {
	case errors.Is(err, model.ErrConfig):
		return "INVALID_CONFIG"
	case errors.Is(err, model.ErrAlignment):
		return "ALIGNMENT_ERROR"
	case errors.Is(err, model.ErrInvalidPrice):
		return "INVALID_PRICE"
	case errors.Is(err, model.ErrInsufficientData):
		return "INSUFFICIENT_DATA"
	default:
		return "RUN_FAILED"
	}
}

func statusForRunError(err error) int {
	if codeForRunError(err) == "RUN_FAILED" {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

func writeError(c *gin.Context, status int, code string, err error) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{Code: code, Message: err.Error()},
	})
}
