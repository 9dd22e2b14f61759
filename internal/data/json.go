package data

import (
	"encoding/json"
	"fmt"
	"os"

	"signal-backtest/internal/model"
)

// JSONSource reads one symbol's bars from a JSON file shaped like the
// model.BarSeries wire form: {"symbol": "...", "bars": [...]}.
type JSONSource struct {
	Path string
}

func (s JSONSource) Bars() (model.BarSeries, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return model.BarSeries{}, err
	}
	var series model.BarSeries
	if err := json.Unmarshal(raw, &series); err != nil {
		return model.BarSeries{}, fmt.Errorf("parse %s: %w", s.Path, err)
	}
	if err := series.Validate(); err != nil {
		return model.BarSeries{}, fmt.Errorf("%s: %w", s.Path, err)
	}
	return series, nil
}
