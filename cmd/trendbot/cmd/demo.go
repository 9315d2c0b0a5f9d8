package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"trendbot/config"
	"trendbot/engine"
	"trendbot/journal"
	"trendbot/market"
	"trendbot/risk"
	"trendbot/store"
	"trendbot/util"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted demonstration",
	Long: `Run a fixed sequence of ticks through the engine against a fresh demo
account, showing the full position lifecycle:

  1. A buy signal opens a long with a stop and two take-profit levels
  2. TP1 closes half and moves the stop to breakeven
  3. TP2 closes the remainder
  4. A sell signal opens a short
  5. A buy signal flips the short into a long
  6. A falling price triggers the stop-loss

The demo writes demo-account.json, demo-trades.csv, and demo-equity.csv in
the current directory.`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Trendbot Demo ===")
	fmt.Println()

	// Start from a clean slate each run.
	for _, p := range []string{"./demo-account.json", "./demo-trades.csv", "./demo-equity.csv"} {
		os.Remove(p)
	}

	cfg := config.Default()
	logger := util.NewLogger("warn")

	j, err := journal.NewCSV("./demo-trades.csv", "./demo-equity.csv")
	if err != nil {
		return err
	}
	defer j.Close()

	st := store.NewFileStore("./demo-account.json", cfg.Account.StartBalance)
	policy := risk.NewPolicy(cfg.Risk)
	conv := market.NewConverter(cfg.Account.ConversionRate)
	eng := engine.New(st, j, policy, conv, logger)

	base := time.Now().UTC()
	ticks := []struct {
		label  string
		signal market.Signal
		price  float64
		stop   float64
	}{
		{"Buy signal, open long", market.Buy, 65000, 64800},
		{"Price +1%, TP1", market.Hold, 65650, 0},
		{"Price +2%, TP2", market.Hold, 66300, 0},
		{"Sell signal, open short", market.Sell, 66000, 66250},
		{"Buy signal, flip to long", market.Buy, 65800, 65500},
		{"Price falls through the stop", market.Hold, 64500, 0},
	}

	for i, tk := range ticks {
		fmt.Printf("--- Tick %d: %s (%s @ %.0f) ---\n", i+1, tk.label, tk.signal, tk.price)

		status, closed, _, err := eng.ProcessTick(market.TickInput{
			Signal:       tk.signal,
			Price:        tk.price,
			ATR:          120,
			TrailingStop: tk.stop,
			Time:         base.Add(time.Duration(i) * 5 * time.Minute),
		})
		if err != nil {
			return err
		}

		fmt.Printf("  %s\n", status.Action)
		if closed != nil {
			fmt.Printf("  Closed: %s @ %.2f | P/L: %.2f (%s)\n",
				closed.Side, closed.ExitPrice, closed.ProfitAccount, closed.ExitReason)
		}
		fmt.Printf("  Balance: %.2f\n\n", status.Balance)
	}

	acct, err := st.Load()
	if err != nil {
		return err
	}
	s := acct.PerformanceSummary()

	fmt.Println("=== Final Results ===")
	fmt.Printf("  Trades: %d (%d wins, %d losses, %.1f%% win rate)\n",
		s.TotalTrades, s.WinningTrades, s.LosingTrades, s.WinRate)
	fmt.Printf("  Balance: %.2f (return %.2f)\n", s.CurrentBalance, s.TotalReturn)
	fmt.Println("\n✓ Check demo-trades.csv and demo-equity.csv for detailed records.")

	return nil
}
