package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"signal-backtest/internal/analysis"
	"signal-backtest/internal/backtest"
	"signal-backtest/internal/config"
	"signal-backtest/internal/data"
	"signal-backtest/internal/model"
	"signal-backtest/internal/runner"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "backtest":
		cmdBacktest(os.Args[2:])
	case "rank":
		cmdRank(os.Args[2:])
	case "sweep":
		cmdSweep(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli backtest --config examples/config.yaml --out results")
	fmt.Println("  cli rank --data ./data [--symbols AAA,BBB] [--limit 10]")
	fmt.Println("  cli sweep --config examples/config.yaml --fees 0,10,25 --slips 0,5")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - backtest writes fills.csv and ledger.csv under --out and prints a metrics table")
	fmt.Println("  - rank scores datasets by perfect-foresight profit per unit, no strategy involved")
	fmt.Println("  - sweep reruns one config across a fee/slippage grid to show cost sensitivity")
}

func cmdBacktest(args []string) {
	fs := flag.NewFlagSet("backtest", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config")
	outDir := fs.String("out", "results", "Output directory for fills.csv and ledger.csv")
	n := fs.Int("n", 0, "Optional: limit to first N bars (0=all)")
	_ = fs.Parse(args)

	if *cfgPath == "" {
		fmt.Println("--config is required")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}

	series, err := runner.LoadBars(cfg)
	if err != nil {
		panic(err)
	}
	if *n > 0 {
		for i := range series {
			if *n < len(series[i].Bars) {
				series[i].Bars = series[i].Bars[:*n]
			}
		}
	}

	out, err := runner.RunOnBars(cfg, series)
	if err != nil {
		panic(err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		panic(err)
	}
	fillsPath := filepath.Join(*outDir, "fills.csv")
	ledgerPath := filepath.Join(*outDir, "ledger.csv")
	if err := backtest.WriteFillsCSV(fillsPath, out.Result.Fills); err != nil {
		panic(err)
	}
	if err := backtest.WriteLedgerCSV(ledgerPath, out.Result); err != nil {
		panic(err)
	}

	fmt.Printf("Symbols: %s\n", strings.Join(out.Result.Symbols, ", "))
	fmt.Printf("Bars: %d  Fills: %d\n", len(out.Result.Snapshots), len(out.Result.Fills))
	fmt.Printf("Wrote %s and %s\n", fillsPath, ledgerPath)
	printMetrics(cfg.InitialCash, out)
}

func printMetrics(initialCash float64, out *runner.Output) {
	m := out.Metrics
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Initial cash", fmtNum(initialCash)})
	table.Append([]string{"Final equity", fmtNum(out.Result.FinalEquity())})
	table.Append([]string{"Total fees", fmtNum(out.Result.TotalFees())})
	table.Append([]string{"Total return", fmtPct(m.TotalReturn)})
	table.Append([]string{"CAGR", fmtPct(m.CAGR)})
	table.Append([]string{"Volatility (ann.)", fmtPct(m.VolAnnual)})
	table.Append([]string{"Sharpe", fmtNum(m.Sharpe)})
	table.Append([]string{"Max drawdown", fmtPct(m.MaxDrawdown)})
	table.Append([]string{"Trades", strconv.Itoa(m.NumTrades)})
	table.Render()
}

func cmdRank(args []string) {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "Directory of bar CSV datasets")
	symbols := fs.String("symbols", "", "Comma-separated symbols (empty = all datasets)")
	limit := fs.Int("limit", 10, "Show top N")
	_ = fs.Parse(args)

	registry := data.NewRegistry(*dataDir)
	var names []string
	if *symbols != "" {
		names = splitList(*symbols)
	} else {
		datasets, err := registry.List()
		if err != nil {
			panic(err)
		}
		for _, d := range datasets {
			names = append(names, d.Symbol)
		}
	}

	series := make([]model.BarSeries, 0, len(names))
	for _, sym := range names {
		s, err := registry.Bars(sym)
		if err != nil {
			panic(err)
		}
		series = append(series, s)
	}

	ranked := analysis.RankByOracleProfit(series)
	if *limit > 0 && *limit < len(ranked) {
		ranked = ranked[:*limit]
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Rank", "Symbol", "Bars", "P95-P05", "Min", "Max", "Oracle"})
	for i, r := range ranked {
		table.Append([]string{
			strconv.Itoa(i + 1),
			r.Symbol,
			strconv.Itoa(r.Count),
			fmtNum(r.SpreadP95P05),
			fmtNum(r.MinClose),
			fmtNum(r.MaxClose),
			fmtNum(r.OracleProfit),
		})
	}
	table.Render()
}

func cmdSweep(args []string) {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config")
	fees := fs.String("fees", "0,10,25", "Comma-separated fee values in bps")
	slips := fs.String("slips", "0,5", "Comma-separated slippage values in bps")
	_ = fs.Parse(args)

	if *cfgPath == "" {
		fmt.Println("--config is required")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}
	series, err := runner.LoadBars(cfg)
	if err != nil {
		panic(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Fee bps", "Slip bps", "Final equity", "Return", "Sharpe", "Fees paid", "Fills"})
	for _, fee := range splitFloats(*fees) {
		for _, slip := range splitFloats(*slips) {
			run := *cfg
			run.Execution.FeeBps = fee
			run.Execution.SlippageBps = slip
			out, err := runner.RunOnBars(&run, series)
			if err != nil {
				panic(err)
			}
			table.Append([]string{
				fmtNum(fee),
				fmtNum(slip),
				fmtNum(out.Result.FinalEquity()),
				fmtPct(out.Metrics.TotalReturn),
				fmtNum(out.Metrics.Sharpe),
				fmtNum(out.Result.TotalFees()),
				strconv.Itoa(len(out.Result.Fills)),
			})
		}
	}
	table.Render()
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitFloats(s string) []float64 {
	var out []float64
	for _, p := range splitList(s) {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			panic(fmt.Errorf("bad number %q: %w", p, err))
		}
		out = append(out, v)
	}
	return out
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func fmtPct(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 2, 64) + "%"
}
