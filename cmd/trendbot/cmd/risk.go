package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"trendbot/risk"
	"trendbot/store"
)

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Show risk gate counters",
	Long: `Print the circuit-breaker state: consecutive losses, today's realized
P/L, and whether any gate currently blocks new positions.`,
	RunE: runRisk,
}

func init() {
	rootCmd.AddCommand(riskCmd)
}

func runRisk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st := store.NewFileStore(cfg.Store.AccountFile, cfg.Account.StartBalance)
	acct, err := st.Load()
	if err != nil {
		return err
	}

	policy := risk.NewPolicy(cfg.Risk)
	now := time.Now().UTC()
	status := policy.Status(acct.Risk, now)
	decision := policy.CanOpenTrade(acct.Balance, acct.Risk, now)

	fmt.Println("=== Risk Gates ===")
	fmt.Printf("  Balance:            %.2f (min %.2f)\n", acct.Balance, cfg.Risk.Gates.MinBalance)
	fmt.Printf("  Consecutive losses: %d (max %d)\n", status.ConsecutiveLosses, cfg.Risk.Gates.MaxConsecutiveLosses)
	fmt.Printf("  Day:                %s\n", status.Day)
	fmt.Printf("  Day realized P/L:   %.2f (max loss %.2f)\n", status.DayRealized, cfg.Risk.Gates.MaxDailyLoss)

	if decision.Allowed {
		fmt.Println("  New trades:         allowed")
	} else {
		fmt.Printf("  New trades:         BLOCKED (%s)\n", decision.Reason())
	}

	return nil
}
