package data

import (
	"fmt"
	"time"

	"signal-backtest/internal/model"
)

// AlignCommon restricts every series to the timestamps all of them share, so
// multi-asset runs see one common ascending timeline. Symbols that end up
// with zero common bars make the whole set unusable, which is reported rather
// than silently dropping the symbol.
func AlignCommon(series []model.BarSeries) ([]model.BarSeries, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no series to align", model.ErrInsufficientData)
	}
	for _, s := range series {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	if len(series) == 1 {
		return series, nil
	}

	common := make(map[int64]int, len(series[0].Bars))
	for _, b := range series[0].Bars {
		common[b.Timestamp.UnixNano()] = 1
	}
	for _, s := range series[1:] {
		for _, b := range s.Bars {
			if n, ok := common[b.Timestamp.UnixNano()]; ok && n > 0 {
				common[b.Timestamp.UnixNano()] = n + 1
			}
		}
	}
	want := len(series)

	keep := func(ts time.Time) bool { return common[ts.UnixNano()] == want }

	out := make([]model.BarSeries, len(series))
	for i, s := range series {
		bars := make([]model.Bar, 0, len(s.Bars))
		for _, b := range s.Bars {
			if keep(b.Timestamp) {
				bars = append(bars, b)
			}
		}
		if len(bars) == 0 {
			return nil, fmt.Errorf("%w: no common timestamps across symbols", model.ErrInsufficientData)
		}
		out[i] = model.BarSeries{Symbol: s.Symbol, Bars: bars}
	}
	return out, nil
}
