package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"signal-backtest/internal/data"
)

// DatasetHandler exposes the server's bar datasets.
type DatasetHandler struct {
	registry *data.Registry
}

func NewDatasetHandler(registry *data.Registry) *DatasetHandler {
	return &DatasetHandler{registry: registry}
}

// ListDatasets handles GET /api/v1/datasets.
func (h *DatasetHandler) ListDatasets(c *gin.Context) {
	datasets, err := h.registry.List()
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DATASETS_LOAD_ERROR", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"datasets": datasets,
		"count":    len(datasets),
	})
}
