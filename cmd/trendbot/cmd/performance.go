package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"trendbot/store"
)

var performanceCmd = &cobra.Command{
	Use:   "performance",
	Short: "Show the performance summary",
	Long: `Aggregate the closed trade history into a performance summary:
trade counts, win rate, total P/L, and the return over the starting balance.`,
	RunE: runPerformance,
}

func init() {
	rootCmd.AddCommand(performanceCmd)
}

func runPerformance(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st := store.NewFileStore(cfg.Store.AccountFile, cfg.Account.StartBalance)
	acct, err := st.Load()
	if err != nil {
		return err
	}

	s := acct.PerformanceSummary()
	cur := cfg.Account.Currency

	fmt.Println("=== Performance Summary ===")
	fmt.Printf("  Total trades:   %d\n", s.TotalTrades)
	fmt.Printf("  Winning trades: %d\n", s.WinningTrades)
	fmt.Printf("  Losing trades:  %d\n", s.LosingTrades)
	fmt.Printf("  Win rate:       %.1f%%\n", s.WinRate)
	fmt.Printf("  Total profit:   %.2f %s\n", s.TotalProfit, cur)
	fmt.Printf("  Start balance:  %.2f %s\n", s.StartingBalance, cur)
	fmt.Printf("  Balance:        %.2f %s\n", s.CurrentBalance, cur)
	fmt.Printf("  Total return:   %.2f %s\n", s.TotalReturn, cur)

	return nil
}
