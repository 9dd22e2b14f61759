package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"signal-backtest/internal/api/models"
)

// StrategyHandler serves strategy metadata.
type StrategyHandler struct{}

func NewStrategyHandler() *StrategyHandler {
	return &StrategyHandler{}
}

// ListStrategies handles GET /api/v1/strategies.
func (h *StrategyHandler) ListStrategies(c *gin.Context) {
	strategies := []models.StrategyInfo{
		{
			Name:        "sma_cross",
			Description: "Moving-average crossover. Long one unit of weight while the fast SMA of closes is above the slow SMA, flat otherwise. Signals are shifted forward so a bar's signal trades on a later bar.",
			Parameters: []models.ParameterInfo{
				{
					Name:        "fast",
					Type:        "int",
					Description: "Fast SMA window in bars; must be smaller than slow",
					Default:     10,
				},
				{
					Name:        "slow",
					Type:        "int",
					Description: "Slow SMA window in bars",
					Default:     40,
				},
				{
					Name:        "shift",
					Type:        "int",
					Description: "Bars to delay each signal before it becomes a target",
					Default:     1,
				},
			},
		},
		{
			Name:        "constant_weight",
			Description: "Holds a fixed target weight on every bar. Weight 1.0 is buy-and-hold; useful as a benchmark.",
			Parameters: []models.ParameterInfo{
				{
					Name:        "weight",
					Type:        "float",
					Description: "Target portfolio weight, >= 0",
					Default:     1.0,
				},
			},
		},
	}

	c.JSON(http.StatusOK, gin.H{"strategies": strategies})
}
