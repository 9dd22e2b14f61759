package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"signal-backtest/internal/analysis"
	"signal-backtest/internal/api/models"
	"signal-backtest/internal/data"
	"signal-backtest/internal/model"
)

// RankHandler ranks datasets by trading opportunity.
type RankHandler struct {
	registry *data.Registry
}

func NewRankHandler(registry *data.Registry) *RankHandler {
	return &RankHandler{registry: registry}
}

// RankSymbols handles GET /api/v1/rank.
func (h *RankHandler) RankSymbols(c *gin.Context) {
	var req models.RankRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	symbols, err := h.resolveSymbols(req.Symbols)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DATASETS_LOAD_ERROR", err)
		return
	}

	series := make([]model.BarSeries, 0, len(symbols))
	for _, sym := range symbols {
		s, err := h.registry.Bars(sym)
		if err != nil {
			writeError(c, statusForRunError(err), codeForRunError(err), err)
			return
		}
		series = append(series, s)
	}

	ranked := analysis.RankByOracleProfit(series)

	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > len(ranked) {
		limit = len(ranked)
	}
	ranked = ranked[:limit]

	rankings := make([]models.Ranking, len(ranked))
	for i, r := range ranked {
		rankings[i] = models.Ranking{Rank: i + 1, Opportunity: r}
	}
	c.JSON(http.StatusOK, models.RankResponse{Rankings: rankings})
}

// resolveSymbols parses the comma-separated filter; empty means every
// dataset in the registry.
func (h *RankHandler) resolveSymbols(filter string) ([]string, error) {
	if filter != "" {
		parts := strings.Split(filter, ",")
		symbols := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				symbols = append(symbols, p)
			}
		}
		return symbols, nil
	}
	datasets, err := h.registry.List()
	if err != nil {
		return nil, err
	}
	symbols := make([]string, len(datasets))
	for i, d := range datasets {
		symbols[i] = d.Symbol
	}
	return symbols, nil
}
