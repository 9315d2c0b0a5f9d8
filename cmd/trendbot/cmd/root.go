package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"trendbot/config"
	"trendbot/engine"
	"trendbot/journal"
	"trendbot/market"
	"trendbot/risk"
	"trendbot/store"
	"trendbot/util"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "trendbot",
	Short: "A simulated trend-following trading agent",
	Long: `Trendbot is a simulated single-asset trading agent.

It consumes Buy/Sell/Hold signals from a UT Bot trend strategy (or manual
input), manages one virtual position with a stop-loss and a multi-level
take-profit ladder, and persists the account state between runs.

Commands:
  tick        - Process one signal tick (from the data feed or flags)
  status      - Show the account and open position
  history     - List closed trades
  log         - Show the order log
  performance - Show the performance summary
  risk        - Show risk gate counters
  config      - Generate or validate configuration files
  demo        - Run a scripted demonstration`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "./trendbot.yaml", "config file path")
}

// loadConfig reads the configured file, falling back to defaults when the
// file does not exist.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, err
	}
	return config.LoadFromFile(cfgFile)
}

func openJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.DBPath)
	default:
		return journal.NewCSV(cfg.TradesFile, cfg.EquityFile)
	}
}

// buildEngine wires the engine from config. The caller owns closing the
// returned journal.
func buildEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, journal.Journal, error) {
	j, err := openJournal(cfg.Journal)
	if err != nil {
		return nil, nil, fmt.Errorf("open journal: %w", err)
	}

	st := store.NewFileStore(cfg.Store.AccountFile, cfg.Account.StartBalance)
	policy := risk.NewPolicy(cfg.Risk)
	conv := market.NewConverter(cfg.Account.ConversionRate)

	return engine.New(st, j, policy, conv, logger), j, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return util.NewLogger(cfg.Logging.Level)
}
