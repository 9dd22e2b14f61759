package strategy

import (
	"fmt"

	"signal-backtest/internal/model"
)

// ConstantWeightStrategy holds a fixed target weight on every bar. Weight 1.0
// is the buy-and-hold baseline most strategies get compared against.
type ConstantWeightStrategy struct {
	Weight float64
}

func NewConstantWeight(weight float64) (*ConstantWeightStrategy, error) {
	if weight < 0 {
		return nil, fmt.Errorf("weight must be >= 0, got %v", weight)
	}
	return &ConstantWeightStrategy{Weight: weight}, nil
}

func (s *ConstantWeightStrategy) Name() string { return "constant_weight" }

func (s *ConstantWeightStrategy) Targets(bars model.BarSeries) (model.TargetSeries, error) {
	if err := bars.Validate(); err != nil {
		return model.TargetSeries{}, err
	}
	pts := make([]model.TargetPoint, len(bars.Bars))
	for i, b := range bars.Bars {
		pts[i] = model.TargetPoint{Timestamp: b.Timestamp, Weight: s.Weight}
	}
	return model.TargetSeries{Symbol: bars.Symbol, Targets: pts}, nil
}
