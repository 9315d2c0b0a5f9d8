package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"trendbot/feed"
	"trendbot/market"
	"trendbot/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the account and open position",
	Long: `Print the current balance, the open position if any, and the live
unrealized P/L. The live P/L is priced from the data feed unless --price is
given.`,
	RunE: runStatus,
}

var statusPrice float64

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().Float64Var(&statusPrice, "price", 0, "price the open position manually instead of fetching")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	st := store.NewFileStore(cfg.Store.AccountFile, cfg.Account.StartBalance)
	acct, err := st.Load()
	if err != nil {
		return err
	}

	fmt.Printf("Account: %s\n", st.Path())
	fmt.Printf("  Balance:     %.2f %s\n", acct.Balance, cfg.Account.Currency)
	fmt.Printf("  Start:       %.2f %s\n", acct.StartBalance, cfg.Account.Currency)
	fmt.Printf("  Last signal: %s\n", acct.LastSignal)

	pos := acct.OpenPosition
	if pos == nil {
		fmt.Println("  Position:    none")
		return nil
	}

	fmt.Printf("  Position:    %s %.6f units @ %.2f (opened %s)\n",
		pos.Side, pos.Amount, pos.EntryPrice, pos.OpenedAt.Format("2006-01-02 15:04:05"))
	if pos.StopLoss != nil {
		be := ""
		if pos.BreakevenMoved {
			be = " (breakeven)"
		}
		fmt.Printf("  Stop-loss:   %.2f%s\n", *pos.StopLoss, be)
	}
	for _, lvl := range pos.TPLevels {
		state := "pending"
		if lvl.Hit {
			state = "hit"
		}
		fmt.Printf("  %s:         %.2f (%.0f%%) - %s\n", lvl.Name, lvl.Price, lvl.ClosePct, state)
	}

	price := statusPrice
	source := "manual"
	if price <= 0 {
		timeout, err := cfg.Feed.ParseTimeout()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout*4)
		defer cancel()

		chain, err := feed.FromConfig(cfg.Feed, logger)
		if err != nil {
			return err
		}
		price, source, err = chain.Price(ctx)
		if err != nil {
			fmt.Println("  Live P/L:    unavailable (no price source)")
			return nil
		}
	}

	conv := market.NewConverter(cfg.Account.ConversionRate)
	if live := acct.LiveProfit(price, conv); live != nil {
		fmt.Printf("  Live P/L:    %.2f %s @ %.2f (source: %s)\n", *live, cfg.Account.Currency, price, source)
	}

	return nil
}
