package backtest

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"signal-backtest/internal/model"
)

// WriteFillsCSV writes one row per executed trade, in execution order.
func WriteFillsCSV(path string, fills []model.Fill) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"timestamp", "symbol", "side", "quantity", "price", "fee"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, fl := range fills {
		row := []string{
			fmtTime(fl.Timestamp),
			fl.Symbol,
			string(fl.Side()),
			fmtFloat(fl.Quantity),
			fmtFloat(fl.Price),
			fmtFloat(fl.Fee),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteLedgerCSV writes one row per bar snapshot. Per-symbol quantity and
// mark columns use the run's fixed symbol order, so the layout is stable
// across identical runs.
func WriteLedgerCSV(path string, res *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"index", "timestamp", "cash", "equity"}
	for _, sym := range res.Symbols {
		header = append(header, "qty_"+sym, "mark_"+sym)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, s := range res.Snapshots {
		row := []string{
			strconv.Itoa(i),
			fmtTime(s.Timestamp),
			fmtFloat(s.Cash),
			fmtFloat(s.Equity),
		}
		for _, sym := range res.Symbols {
			row = append(row, fmtFloat(s.Positions[sym]), fmtFloat(s.LastPrices[sym]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
