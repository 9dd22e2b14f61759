package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"signal-backtest/internal/model"
)

// Config is the on-disk run configuration shape (YAML).
type Config struct {
	Data        DataConfig       `yaml:"data"`
	Strategy    StrategyConfig   `yaml:"strategy"`
	Allocation  AllocationConfig `yaml:"allocation"`
	Execution   ExecutionConfig  `yaml:"execution"`
	InitialCash float64          `yaml:"initial_cash"`
}

// DataConfig selects where bars come from. Kind "csv" reads
// <dir>/<symbol>.csv per symbol; kind "json" reads <dir>/<symbol>.json.
type DataConfig struct {
	Kind    string   `yaml:"kind"`
	Dir     string   `yaml:"dir"`
	Symbols []string `yaml:"symbols"`
}

type StrategyConfig struct {
	Kind   string         `yaml:"kind"`
	Params map[string]any `yaml:"params"`
}

// AllocationConfig controls how raw per-symbol signal strength becomes
// portfolio weights for multi-asset runs. Optional: the zero value means
// "proportional, uncapped".
type AllocationConfig struct {
	Kind string  `yaml:"kind"` // "proportional" (default) or "equal_weight"
	Cap  float64 `yaml:"cap"`  // max weight per asset; 0 = uncapped
}

// ExecutionConfig carries the cost/sizing parameters. ReferencePrice has no
// default on purpose: "open" vs "close" changes every backtest number, so the
// choice must be written down.
type ExecutionConfig struct {
	FeeBps         float64 `yaml:"fee_bps"`
	SlippageBps    float64 `yaml:"slippage_bps"`
	Epsilon        float64 `yaml:"epsilon"`
	LeverageCap    float64 `yaml:"leverage_cap"`
	ReferencePrice string  `yaml:"reference_price"`
}

// Load reads, defaults, and validates a run config.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads the config without defaulting or validating it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	if c.Data.Dir != "" && !filepath.IsAbs(c.Data.Dir) {
		// Relative data dirs resolve against the config file's directory
		// when that exists, falling back to the path as given.
		cand := filepath.Join(filepath.Dir(path), c.Data.Dir)
		if _, err := os.Stat(cand); err == nil {
			c.Data.Dir = cand
		}
	}
	return &c, nil
}

// applyDefaults fills the values that are safe to default. Cost parameters
// and the reference price are deliberately not among them.
func (c *Config) applyDefaults() {
	if c.Data.Kind == "" {
		c.Data.Kind = "csv"
	}
	if c.Strategy.Kind == "" {
		c.Strategy.Kind = "sma_cross"
	}
	if c.Allocation.Kind == "" {
		c.Allocation.Kind = "proportional"
	}
	if c.Execution.Epsilon == 0 {
		c.Execution.Epsilon = 1e-9
	}
	if c.Execution.LeverageCap == 0 {
		c.Execution.LeverageCap = 1.0
	}
	if c.InitialCash == 0 {
		c.InitialCash = 10000
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	switch c.Data.Kind {
	case "csv", "json":
	default:
		return fmt.Errorf("%w: unknown data.kind %q", model.ErrConfig, c.Data.Kind)
	}
	if len(c.Data.Symbols) == 0 {
		return fmt.Errorf("%w: data.symbols is required", model.ErrConfig)
	}
	switch c.Strategy.Kind {
	case "sma_cross", "constant_weight":
	default:
		return fmt.Errorf("%w: unknown strategy.kind %q", model.ErrConfig, c.Strategy.Kind)
	}
	switch c.Allocation.Kind {
	case "proportional", "equal_weight":
	default:
		return fmt.Errorf("%w: unknown allocation.kind %q", model.ErrConfig, c.Allocation.Kind)
	}
	// Validate execution params by constructing them, the same gate the
	// simulator itself applies.
	if _, err := c.CostParams(); err != nil {
		return err
	}
	if _, err := model.ParseRefPrice(c.Execution.ReferencePrice); err != nil {
		return err
	}
	if c.InitialCash < 0 {
		return fmt.Errorf("%w: initial_cash must be >= 0, got %v", model.ErrConfig, c.InitialCash)
	}
	return nil
}

// CostParams converts the execution section into validated model params.
func (c *Config) CostParams() (model.CostParams, error) {
	return model.NewCostParams(
		c.Execution.FeeBps,
		c.Execution.SlippageBps,
		c.Execution.Epsilon,
		c.Execution.LeverageCap,
	)
}

// Param helpers for strategy params maps, mirroring how YAML decodes numbers.

func ParamNum(m map[string]any, key string, def float64) float64 {
	if v, ok := m[key]; ok && v != nil {
		switch x := v.(type) {
		case float64:
			return x
		case int:
			return float64(x)
		}
	}
	return def
}

func ParamInt(m map[string]any, key string, def int) int {
	return int(ParamNum(m, key, float64(def)))
}
