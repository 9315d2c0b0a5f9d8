package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.NoError(t, cfg.Validate())

	assert.InDelta(t, 10000.0, cfg.Account.StartBalance, 1e-9)
	assert.InDelta(t, 85.0, cfg.Account.ConversionRate, 1e-9)
	assert.InDelta(t, 0.001, cfg.Risk.Sizing.FixedUnits, 1e-12)
	assert.Equal(t, []string{"binance", "kucoin", "bybit", "mock"}, cfg.Feed.Sources)
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero start balance", func(c *Config) { c.Account.StartBalance = 0 }},
		{"zero conversion rate", func(c *Config) { c.Account.ConversionRate = 0 }},
		{"unknown sizing mode", func(c *Config) { c.Risk.Sizing.Mode = "martingale" }},
		{"fixed without units", func(c *Config) { c.Risk.Sizing.FixedUnits = 0 }},
		{"fraction over one", func(c *Config) {
			c.Risk.Sizing.Mode = "fraction"
			c.Risk.Sizing.Fraction = 1.5
			c.Risk.Sizing.ReferencePrice = 50000
		}},
		{"fraction without reference price", func(c *Config) {
			c.Risk.Sizing.Mode = "fraction"
			c.Risk.Sizing.Fraction = 0.1
			c.Risk.Sizing.ReferencePrice = 0
		}},
		{"negative atr multiplier", func(c *Config) { c.Risk.StopLoss.ATRMultiplier = -1 }},
		{"trailing without multiplier", func(c *Config) {
			c.Risk.StopLoss.TrailingEnabled = true
			c.Risk.StopLoss.TrailingATRMult = 0
		}},
		{"unknown tp unit", func(c *Config) { c.Risk.TakeProfit.Unit = "pips" }},
		{"non-positive tp distance", func(c *Config) { c.Risk.TakeProfit.Levels[0].Distance = 0 }},
		{"close pct over 100", func(c *Config) { c.Risk.TakeProfit.Levels[0].ClosePct = 150 }},
		{"non-increasing tp distances", func(c *Config) {
			c.Risk.TakeProfit.Levels[1].Distance = c.Risk.TakeProfit.Levels[0].Distance
		}},
		{"close pcts sum over 100", func(c *Config) {
			c.Risk.TakeProfit.Levels[0].ClosePct = 60
			c.Risk.TakeProfit.Levels[1].ClosePct = 60
		}},
		{"negative loss streak limit", func(c *Config) { c.Risk.Gates.MaxConsecutiveLosses = -1 }},
		{"missing account file", func(c *Config) { c.Store.AccountFile = "" }},
		{"unknown journal type", func(c *Config) { c.Journal.Type = "parquet" }},
		{"csv journal without paths", func(c *Config) {
			c.Journal.Type = "csv"
			c.Journal.TradesFile = ""
		}},
		{"sqlite journal without path", func(c *Config) {
			c.Journal.Type = "sqlite"
			c.Journal.DBPath = ""
		}},
		{"bad feed timeout", func(c *Config) { c.Feed.Timeout = "ten seconds" }},
		{"bad retry delay", func(c *Config) { c.Feed.RetryDelay = "soon" }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseDurationsDefaults(t *testing.T) {
	t.Parallel()

	f := FeedConfig{}

	timeout, err := f.ParseTimeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, timeout)

	delay, err := f.ParseRetryDelay()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, delay)
}

func TestSaveAndLoadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trendbot.yaml")

	cfg := Default()
	cfg.Account.StartBalance = 25000
	cfg.Feed.Symbol = "ETHUSDT"
	require.NoError(t, cfg.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.InDelta(t, 25000.0, got.Account.StartBalance, 1e-9)
	assert.Equal(t, "ETHUSDT", got.Feed.Symbol)
	assert.Len(t, got.Risk.TakeProfit.Levels, 2)
}

func TestSaveAndLoadJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trendbot.json")

	cfg := Default()
	cfg.Journal.Type = "sqlite"
	cfg.Journal.DBPath = "./journal.db"
	require.NoError(t, cfg.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", got.Journal.Type)
	assert.Equal(t, "./journal.db", got.Journal.DBPath)
}

func TestLoadInvalidConfigRejected(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  start_balance: -5\n"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
