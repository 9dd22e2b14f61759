package data

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"signal-backtest/internal/model"
)

// DatasetInfo describes one bar file available under a data directory.
type DatasetInfo struct {
	Symbol string `json:"symbol"`
	Path   string `json:"path"`
	Bars   int    `json:"bars"`
}

// Registry maps symbols to bar CSV files under one directory and caches the
// parsed series, so repeated API/CLI runs against the same dataset don't
// reparse the file every time. Safe for concurrent readers.
type Registry struct {
	dir string

	mu    sync.RWMutex
	cache map[string]model.BarSeries
}

func NewRegistry(dir string) *Registry {
	return &Registry{dir: dir, cache: make(map[string]model.BarSeries)}
}

// List scans the directory for *.csv datasets. The symbol is the file stem.
func (r *Registry) List() ([]DatasetInfo, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, err
	}
	out := make([]DatasetInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		sym := strings.TrimSuffix(e.Name(), ".csv")
		series, err := r.Bars(sym)
		if err != nil {
			return nil, err
		}
		out = append(out, DatasetInfo{
			Symbol: sym,
			Path:   filepath.Join(r.dir, e.Name()),
			Bars:   len(series.Bars),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// Bars returns the parsed, validated series for a symbol, from cache when
// available.
func (r *Registry) Bars(symbol string) (model.BarSeries, error) {
	r.mu.RLock()
	cached, ok := r.cache[symbol]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	path := filepath.Join(r.dir, symbol+".csv")
	if _, err := os.Stat(path); err != nil {
		return model.BarSeries{}, fmt.Errorf("%w: no dataset for symbol %s in %s", model.ErrInsufficientData, symbol, r.dir)
	}
	series, err := CSVSource{Symbol: symbol, Path: path}.Bars()
	if err != nil {
		return model.BarSeries{}, err
	}

	r.mu.Lock()
	r.cache[symbol] = series
	r.mu.Unlock()
	return series, nil
}

// Clear drops every cached series.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.cache = make(map[string]model.BarSeries)
	r.mu.Unlock()
}
