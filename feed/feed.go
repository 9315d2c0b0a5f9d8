// Package feed acquires market data and turns it into tick inputs. Sources
// are tried in configured order with per-source retries, falling through to
// the next source on failure; a deterministic mock source can serve as the
// last resort.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"trendbot/config"
	"trendbot/indicators"
	"trendbot/market"
)

// UT Bot parameters of the live strategy: the slow bot confirms buys, the
// fast bot triggers sells.
const (
	utBotKeyValue   = 2
	fastATRPeriod   = 1
	slowATRPeriod   = 300
	stableATRPeriod = 14
)

// Source is one market data provider.
type Source interface {
	Name() string
	Candles(ctx context.Context, limit int) ([]market.Candle, error)
	Price(ctx context.Context) (float64, error)
}

// Chain tries sources in order, retrying each with backoff before falling
// through to the next.
type Chain struct {
	sources    []Source
	retries    int
	retryDelay time.Duration
	log        *slog.Logger
}

// NewChain builds a fallback chain over the given sources.
func NewChain(sources []Source, retries int, retryDelay time.Duration, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	if retries < 1 {
		retries = 1
	}
	return &Chain{
		sources:    sources,
		retries:    retries,
		retryDelay: retryDelay,
		log:        logger,
	}
}

// FromConfig builds a chain from the configured source names.
func FromConfig(cfg config.FeedConfig, logger *slog.Logger) (*Chain, error) {
	timeout, err := cfg.ParseTimeout()
	if err != nil {
		return nil, fmt.Errorf("feed timeout: %w", err)
	}
	retryDelay, err := cfg.ParseRetryDelay()
	if err != nil {
		return nil, fmt.Errorf("feed retry delay: %w", err)
	}

	var sources []Source
	for _, name := range cfg.Sources {
		switch name {
		case "binance":
			sources = append(sources, NewBinance(cfg.Symbol, cfg.Interval, timeout))
		case "kucoin":
			sources = append(sources, NewKuCoin(cfg.Symbol, cfg.Interval, timeout))
		case "bybit":
			sources = append(sources, NewBybit(cfg.Symbol, cfg.Interval, timeout))
		case "mock":
			sources = append(sources, NewMock(0))
		default:
			return nil, fmt.Errorf("%w: unknown feed source %q", market.ErrValidation, name)
		}
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no feed sources configured", market.ErrValidation)
	}

	return NewChain(sources, cfg.Retries, retryDelay, logger), nil
}

// Candles fetches a candle series from the first source that answers,
// returning the name of the source that served it.
func (c *Chain) Candles(ctx context.Context, limit int) ([]market.Candle, string, error) {
	for _, src := range c.sources {
		var candles []market.Candle
		err := Retry(ctx, c.retries, c.retryDelay, func() error {
			var err error
			candles, err = src.Candles(ctx, limit)
			return err
		})
		if err != nil {
			c.log.Warn("candle source failed", "source", src.Name(), "error", err)
			continue
		}
		if len(candles) == 0 {
			c.log.Warn("candle source returned no data", "source", src.Name())
			continue
		}
		c.log.Info("fetched candles", "source", src.Name(), "count", len(candles))
		return candles, src.Name(), nil
	}
	return nil, "", fmt.Errorf("all candle sources failed")
}

// Price fetches the current price from the first source that answers.
func (c *Chain) Price(ctx context.Context) (float64, string, error) {
	for _, src := range c.sources {
		var price float64
		err := Retry(ctx, c.retries, c.retryDelay, func() error {
			var err error
			price, err = src.Price(ctx)
			return err
		})
		if err != nil || price <= 0 {
			c.log.Warn("price source failed", "source", src.Name(), "error", err)
			continue
		}
		return price, src.Name(), nil
	}
	return 0, "", fmt.Errorf("all price sources failed")
}

// SignalFeed runs the UT Bot strategy over fetched candles and emits tick
// inputs for the engine.
type SignalFeed struct {
	chain       *Chain
	candleLimit int
	log         *slog.Logger
}

// NewSignalFeed wraps a chain with the signal computation.
func NewSignalFeed(chain *Chain, candleLimit int, logger *slog.Logger) *SignalFeed {
	if logger == nil {
		logger = slog.Default()
	}
	if candleLimit <= 0 {
		candleLimit = 350
	}
	return &SignalFeed{chain: chain, candleLimit: candleLimit, log: logger}
}

// Next fetches candles, runs both UT Bot instances, and returns the tick
// input plus the name of the data source that served it.
func (f *SignalFeed) Next(ctx context.Context) (market.TickInput, string, error) {
	candles, source, err := f.chain.Candles(ctx, f.candleLimit)
	if err != nil {
		return market.TickInput{}, "", err
	}

	fast := indicators.NewUTBot(utBotKeyValue, fastATRPeriod)
	slow := indicators.NewUTBot(utBotKeyValue, slowATRPeriod)
	fast.Calculate(candles)
	slow.Calculate(candles)

	price := candles[len(candles)-1].Close

	atr, err := indicators.StableATR(candles, stableATRPeriod)
	if err != nil {
		f.log.Warn("atr unavailable, defaulting to 0", "error", err)
		atr = 0
	}

	signal, stop := indicators.CombineSignals(fast, slow, price)

	// Label the bot that produced the directive: sells come from the fast
	// instance, buys from the slow one.
	strategy := ""
	switch signal {
	case market.Buy:
		strategy = "utbot-slow"
	case market.Sell:
		strategy = "utbot-fast"
	}

	f.log.Info("signal computed",
		"source", source, "signal", signal, "price", price, "atr", atr, "stop", stop)

	return market.TickInput{
		Signal:       signal,
		Price:        price,
		ATR:          atr,
		TrailingStop: stop,
		Strategy:     strategy,
		Time:         time.Now().UTC(),
	}, source, nil
}
