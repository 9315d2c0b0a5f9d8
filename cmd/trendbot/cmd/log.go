package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"trendbot/store"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the order log",
	Long: `Print the per-tick order log from the account file, oldest first.
Every processed tick leaves at least one entry, including holds and blocked
signals.`,
	RunE: runLog,
}

var logLimit int

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "show only the last N entries (0 for all)")
}

func runLog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st := store.NewFileStore(cfg.Store.AccountFile, cfg.Account.StartBalance)
	acct, err := st.Load()
	if err != nil {
		return err
	}

	entries := acct.OrderLog
	if logLimit > 0 && len(entries) > logLimit {
		entries = entries[len(entries)-logLimit:]
	}

	if len(entries) == 0 {
		fmt.Println("Order log is empty.")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s  %-20s %-4s @ %-10.2f %s\n",
			e.Time.Format("2006-01-02 15:04:05"), e.Action, e.Signal, e.Price, e.Message)
	}

	return nil
}
