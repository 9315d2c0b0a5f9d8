package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"trendbot/feed"
	"trendbot/market"
)

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Process one signal tick",
	Long: `Fetch market data, compute the UT Bot signal, and run it through the
position engine. The account file is updated atomically; re-running after a
failed tick is safe.

A manual tick can be injected with flags, bypassing the data feed:

  trendbot tick --signal buy --price 65000 --atr 120
  trendbot tick --signal hold --price 65650 --atr 120`,
	RunE: runTick,
}

var (
	tickSignal string
	tickPrice  float64
	tickATR    float64
	tickStop   float64
)

func init() {
	rootCmd.AddCommand(tickCmd)

	tickCmd.Flags().StringVar(&tickSignal, "signal", "", "manual signal (buy/sell/hold) instead of the data feed")
	tickCmd.Flags().Float64Var(&tickPrice, "price", 0, "manual price (required with --signal)")
	tickCmd.Flags().Float64Var(&tickATR, "atr", 0, "manual ATR value")
	tickCmd.Flags().Float64Var(&tickStop, "stop", 0, "manual indicator stop price")
}

func runTick(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	eng, j, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer j.Close()

	var input market.TickInput
	source := "manual"

	if tickSignal != "" {
		sig, err := market.ParseSignal(tickSignal)
		if err != nil {
			return err
		}
		input = market.TickInput{
			Signal:       sig,
			Price:        tickPrice,
			ATR:          tickATR,
			TrailingStop: tickStop,
			Time:         time.Now().UTC(),
		}
	} else {
		timeout, err := cfg.Feed.ParseTimeout()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout*time.Duration(len(cfg.Feed.Sources)*cfg.Feed.Retries+1))
		defer cancel()

		chain, err := feed.FromConfig(cfg.Feed, logger)
		if err != nil {
			return err
		}
		sf := feed.NewSignalFeed(chain, cfg.Feed.CandleLimit, logger)
		input, source, err = sf.Next(ctx)
		if err != nil {
			return err
		}
	}

	status, closed, entry, err := eng.ProcessTick(input)
	if err != nil {
		return err
	}

	fmt.Printf("Tick: %s @ %.2f (source: %s)\n", input.Signal, input.Price, source)
	fmt.Printf("  Action:  %s\n", entry.Action)
	fmt.Printf("  Detail:  %s\n", status.Action)
	fmt.Printf("  Balance: %.2f\n", status.Balance)

	if closed != nil {
		fmt.Printf("  Closed:  %s %s @ %.2f | P/L: %.2f (%s)\n",
			closed.Side, closed.ID, closed.ExitPrice, closed.ProfitAccount, closed.ExitReason)
	}

	if status.Holding {
		fmt.Printf("  Position: %s %.6f units", status.PositionSide, status.PositionSize)
		if status.StopLoss != nil {
			fmt.Printf(" | SL: %.2f", *status.StopLoss)
		}
		fmt.Println()
		for _, lvl := range status.TPLevels {
			state := "pending"
			if lvl.Hit {
				state = "hit"
			}
			fmt.Printf("    %s @ %.2f (%.0f%%) - %s\n", lvl.Name, lvl.Price, lvl.ClosePct, state)
		}
	} else {
		fmt.Println("  Position: none")
	}

	return nil
}
