package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete trading agent configuration. It is re-read
// from disk on every tick so edits take effect without a restart.
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Risk    RiskConfig    `json:"risk" yaml:"risk"`
	Feed    FeedConfig    `json:"feed" yaml:"feed"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// AccountConfig contains virtual account parameters.
type AccountConfig struct {
	StartBalance   float64 `json:"start_balance" yaml:"start_balance"`
	Currency       string  `json:"currency" yaml:"currency"`
	QuoteCurrency  string  `json:"quote_currency" yaml:"quote_currency"`
	ConversionRate float64 `json:"conversion_rate" yaml:"conversion_rate"`
}

// RiskConfig defines sizing, stop placement, the take-profit ladder, and the
// gates that may block a new position.
type RiskConfig struct {
	Sizing     SizingConfig     `json:"sizing" yaml:"sizing"`
	StopLoss   StopLossConfig   `json:"stop_loss" yaml:"stop_loss"`
	TakeProfit TakeProfitConfig `json:"take_profit" yaml:"take_profit"`
	Gates      GatesConfig      `json:"gates" yaml:"gates"`
}

// SizingConfig controls how a new position is sized.
//
// Mode "fixed" opens FixedUnits every time. Mode "fraction" risks
// balance*Fraction of account currency, converted to units at
// ReferencePrice, so size grows and shrinks with the balance.
type SizingConfig struct {
	Mode           string  `json:"mode" yaml:"mode"`
	FixedUnits     float64 `json:"fixed_units" yaml:"fixed_units"`
	Fraction       float64 `json:"fraction" yaml:"fraction"`
	ReferencePrice float64 `json:"reference_price" yaml:"reference_price"`
}

// StopLossConfig controls initial stop placement and trailing behaviour.
type StopLossConfig struct {
	ATRMultiplier    float64 `json:"atr_multiplier" yaml:"atr_multiplier"`
	UseIndicatorStop bool    `json:"use_indicator_stop" yaml:"use_indicator_stop"`
	TrailingEnabled  bool    `json:"trailing_enabled" yaml:"trailing_enabled"`
	TrailingATRMult  float64 `json:"trailing_atr_multiplier" yaml:"trailing_atr_multiplier"`
	BreakevenOffset  float64 `json:"breakeven_offset" yaml:"breakeven_offset"`
}

// TakeProfitConfig defines the exit ladder. Unit selects how each level's
// Distance is interpreted: "percent" of the entry price, or "atr" multiples.
type TakeProfitConfig struct {
	Unit   string          `json:"unit" yaml:"unit"`
	Levels []TPLevelConfig `json:"levels" yaml:"levels"`
}

// TPLevelConfig defines one rung of the take-profit ladder. ClosePct is a
// percentage of the original position size, not the remaining amount.
type TPLevelConfig struct {
	Name     string  `json:"name" yaml:"name"`
	Distance float64 `json:"distance" yaml:"distance"`
	ClosePct float64 `json:"close_pct" yaml:"close_pct"`
}

// GatesConfig holds the circuit breakers checked before opening a trade.
type GatesConfig struct {
	MinBalance           float64 `json:"min_balance" yaml:"min_balance"`
	MaxDailyLoss         float64 `json:"max_daily_loss" yaml:"max_daily_loss"`
	MaxConsecutiveLosses int     `json:"max_consecutive_losses" yaml:"max_consecutive_losses"`
}

// FeedConfig controls the market data sources.
type FeedConfig struct {
	Symbol      string   `json:"symbol" yaml:"symbol"`
	Interval    string   `json:"interval" yaml:"interval"`
	CandleLimit int      `json:"candle_limit" yaml:"candle_limit"`
	Sources     []string `json:"sources" yaml:"sources"`
	Timeout     string   `json:"timeout" yaml:"timeout"`
	Retries     int      `json:"retries" yaml:"retries"`
	RetryDelay  string   `json:"retry_delay" yaml:"retry_delay"`
}

// ParseTimeout converts the timeout string to a time.Duration.
func (f FeedConfig) ParseTimeout() (time.Duration, error) {
	if f.Timeout == "" {
		return 10 * time.Second, nil
	}
	return time.ParseDuration(f.Timeout)
}

// ParseRetryDelay converts the retry delay string to a time.Duration.
func (f FeedConfig) ParseRetryDelay() (time.Duration, error) {
	if f.RetryDelay == "" {
		return 2 * time.Second, nil
	}
	return time.ParseDuration(f.RetryDelay)
}

// StoreConfig contains account persistence parameters.
type StoreConfig struct {
	AccountFile string `json:"account_file" yaml:"account_file"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoggingConfig configures the application logger.
type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Account.StartBalance <= 0 {
		return fmt.Errorf("account.start_balance must be positive")
	}
	if c.Account.ConversionRate <= 0 {
		return fmt.Errorf("account.conversion_rate must be positive")
	}

	switch c.Risk.Sizing.Mode {
	case "fixed":
		if c.Risk.Sizing.FixedUnits <= 0 {
			return fmt.Errorf("risk.sizing.fixed_units must be positive")
		}
	case "fraction":
		if c.Risk.Sizing.Fraction <= 0 || c.Risk.Sizing.Fraction > 1 {
			return fmt.Errorf("risk.sizing.fraction must be between 0 and 1")
		}
		if c.Risk.Sizing.ReferencePrice <= 0 {
			return fmt.Errorf("risk.sizing.reference_price must be positive")
		}
	default:
		return fmt.Errorf("risk.sizing.mode must be 'fixed' or 'fraction'")
	}

	if c.Risk.StopLoss.ATRMultiplier < 0 {
		return fmt.Errorf("risk.stop_loss.atr_multiplier must not be negative")
	}
	if c.Risk.StopLoss.TrailingEnabled && c.Risk.StopLoss.TrailingATRMult <= 0 {
		return fmt.Errorf("risk.stop_loss.trailing_atr_multiplier must be positive when trailing is enabled")
	}

	if c.Risk.TakeProfit.Unit != "percent" && c.Risk.TakeProfit.Unit != "atr" {
		return fmt.Errorf("risk.take_profit.unit must be 'percent' or 'atr'")
	}
	var pctSum float64
	for i, lvl := range c.Risk.TakeProfit.Levels {
		if lvl.Distance <= 0 {
			return fmt.Errorf("risk.take_profit.levels[%d].distance must be positive", i)
		}
		if lvl.ClosePct <= 0 || lvl.ClosePct > 100 {
			return fmt.Errorf("risk.take_profit.levels[%d].close_pct must be in (0, 100]", i)
		}
		if i > 0 && lvl.Distance <= c.Risk.TakeProfit.Levels[i-1].Distance {
			return fmt.Errorf("risk.take_profit levels must be at increasing distance")
		}
		pctSum += lvl.ClosePct
	}
	if pctSum > 100 {
		return fmt.Errorf("risk.take_profit close percentages sum to %.1f, must not exceed 100", pctSum)
	}

	if c.Risk.Gates.MaxConsecutiveLosses < 0 {
		return fmt.Errorf("risk.gates.max_consecutive_losses must not be negative")
	}

	if c.Store.AccountFile == "" {
		return fmt.Errorf("store.account_file is required")
	}

	if c.Journal.Type != "csv" && c.Journal.Type != "sqlite" {
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	if c.Journal.Type == "csv" && (c.Journal.TradesFile == "" || c.Journal.EquityFile == "") {
		return fmt.Errorf("journal trades_file and equity_file required for CSV type")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal db_path required for SQLite type")
	}

	if _, err := c.Feed.ParseTimeout(); err != nil {
		return fmt.Errorf("feed.timeout: %w", err)
	}
	if _, err := c.Feed.ParseRetryDelay(); err != nil {
		return fmt.Errorf("feed.retry_delay: %w", err)
	}

	return nil
}

// Default returns a configuration with sensible defaults for the BTC demo
// account.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			StartBalance:   10000,
			Currency:       "INR",
			QuoteCurrency:  "USDT",
			ConversionRate: 85,
		},
		Risk: RiskConfig{
			Sizing: SizingConfig{
				Mode:       "fixed",
				FixedUnits: 0.001,
			},
			StopLoss: StopLossConfig{
				ATRMultiplier:    1.5,
				UseIndicatorStop: true,
				TrailingEnabled:  true,
				TrailingATRMult:  2.0,
				BreakevenOffset:  0,
			},
			TakeProfit: TakeProfitConfig{
				Unit: "percent",
				Levels: []TPLevelConfig{
					{Name: "TP1", Distance: 1.0, ClosePct: 50},
					{Name: "TP2", Distance: 2.0, ClosePct: 50},
				},
			},
			Gates: GatesConfig{
				MinBalance:           100,
				MaxDailyLoss:         500,
				MaxConsecutiveLosses: 5,
			},
		},
		Feed: FeedConfig{
			Symbol:      "BTCUSDT",
			Interval:    "5m",
			CandleLimit: 350,
			Sources:     []string{"binance", "kucoin", "bybit", "mock"},
			Timeout:     "10s",
			Retries:     3,
			RetryDelay:  "2s",
		},
		Store: StoreConfig{
			AccountFile: "./trendbot-account.json",
		},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
