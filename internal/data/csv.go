package data

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"signal-backtest/internal/model"
)

// csvTime parses the timestamp column, accepting RFC3339 or bare dates.
type csvTime struct {
	time.Time
}

func (t *csvTime) UnmarshalCSV(s string) error {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unparseable timestamp %q", s)
}

func (t csvTime) MarshalCSV() (string, error) {
	return t.Format(time.RFC3339), nil
}

type csvBar struct {
	Timestamp csvTime `csv:"timestamp"`
	Open      float64 `csv:"open"`
	High      float64 `csv:"high"`
	Low       float64 `csv:"low"`
	Close     float64 `csv:"close"`
	Volume    float64 `csv:"volume"`
}

// CSVSource reads one symbol's bars from a CSV file with columns
// timestamp,open,high,low,close,volume.
type CSVSource struct {
	Symbol string
	Path   string
}

func (s CSVSource) Bars() (model.BarSeries, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return model.BarSeries{}, err
	}
	defer f.Close()

	var rows []csvBar
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return model.BarSeries{}, fmt.Errorf("parse %s: %w", s.Path, err)
	}

	bars := make([]model.Bar, len(rows))
	for i, r := range rows {
		bars[i] = model.Bar{
			Timestamp: r.Timestamp.Time,
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
		}
	}
	series := model.BarSeries{Symbol: s.Symbol, Bars: bars}
	if err := series.Validate(); err != nil {
		return model.BarSeries{}, fmt.Errorf("%s: %w", s.Path, err)
	}
	return series, nil
}

// WriteBarsCSV writes a bar series in the format CSVSource reads.
func WriteBarsCSV(path string, series model.BarSeries) error {
	rows := make([]csvBar, len(series.Bars))
	for i, b := range series.Bars {
		rows[i] = csvBar{
			Timestamp: csvTime{b.Timestamp},
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.MarshalFile(&rows, f)
}
