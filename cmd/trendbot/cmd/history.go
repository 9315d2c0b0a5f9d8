package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"trendbot/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List closed trades",
	Long: `Print the closed trade history from the account file, oldest first.
Partial take-profit closes appear as separate rows.`,
	RunE: runHistory,
}

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "show only the last N trades")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st := store.NewFileStore(cfg.Store.AccountFile, cfg.Account.StartBalance)
	acct, err := st.Load()
	if err != nil {
		return err
	}

	trades := acct.History
	if historyLimit > 0 && len(trades) > historyLimit {
		trades = trades[len(trades)-historyLimit:]
	}

	if len(trades) == 0 {
		fmt.Println("No closed trades.")
		return nil
	}

	fmt.Printf("%-28s %-6s %-10s %-10s %-12s %-10s %s\n",
		"ID", "SIDE", "ENTRY", "EXIT", "AMOUNT", "P/L", "REASON")
	for _, t := range trades {
		reason := t.ExitReason
		if t.Partial {
			reason = fmt.Sprintf("%s (partial)", t.TPName)
		}
		fmt.Printf("%-28s %-6s %-10.2f %-10.2f %-12.6f %-10.2f %s\n",
			t.ID, t.Side, t.EntryPrice, t.ExitPrice, t.Amount, t.ProfitAccount, reason)
	}
	fmt.Printf("\n%d trade(s), balance %.2f %s\n", len(trades), acct.Balance, cfg.Account.Currency)

	return nil
}
