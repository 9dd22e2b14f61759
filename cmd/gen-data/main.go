package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"signal-backtest/internal/data"
	"signal-backtest/internal/model"
)

// gen-data writes seeded synthetic OHLCV CSV datasets, one file per symbol,
// in the layout the registry and the CSV source expect. Handy for smoke
// tests and for trying the API without real market data.
func main() {
	var (
		outDir  = flag.String("out", "./data", "Output directory")
		symbols = flag.String("symbols", "AAA,BBB,CCC", "Comma-separated symbols to generate")
		n       = flag.Int("n", 500, "Bars per symbol")
		seed    = flag.Int64("seed", 1, "Base random seed; each symbol offsets it")
		start   = flag.String("start", "2024-01-01", "First bar date (YYYY-MM-DD)")
	)
	flag.Parse()

	startTime, err := time.Parse("2006-01-02", *start)
	if err != nil {
		log.Fatalf("bad --start date: %v", err)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}

	names := strings.Split(*symbols, ",")
	for i, sym := range names {
		sym = strings.TrimSpace(sym)
		if sym == "" {
			continue
		}
		series := generate(sym, *n, *seed+int64(i), startTime)
		path := filepath.Join(*outDir, sym+".csv")
		if err := data.WriteBarsCSV(path, series); err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
		fmt.Printf("Wrote %d bars to %s\n", len(series.Bars), path)
	}
}

// generate builds a geometric random walk. Drift and volatility vary a
// little per symbol so multi-asset runs don't degenerate into clones.
func generate(symbol string, n int, seed int64, start time.Time) model.BarSeries {
	rng := rand.New(rand.NewSource(seed))
	drift := 0.0001 + 0.0004*rng.Float64()
	vol := 0.01 + 0.01*rng.Float64()

	bars := make([]model.Bar, n)
	price := 50.0 + 100.0*rng.Float64()
	for i := 0; i < n; i++ {
		ret := drift + vol*rng.NormFloat64()
		open := price
		close := price * math.Exp(ret)
		high := math.Max(open, close) * (1 + 0.004*rng.Float64())
		low := math.Min(open, close) * (1 - 0.004*rng.Float64())
		bars[i] = model.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    float64(1000 + rng.Intn(9000)),
		}
		price = close
	}
	return model.BarSeries{Symbol: symbol, Bars: bars}
}
