package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"trendbot/market"
)

const binanceBaseURL = "https://api.binance.com"

// BinanceSource serves candles and prices from the Binance spot REST API.
type BinanceSource struct {
	baseURL  string
	symbol   string
	interval string
	client   *http.Client
}

// NewBinance creates a Binance source for the given symbol (e.g. "BTCUSDT")
// and kline interval (e.g. "5m").
func NewBinance(symbol, interval string, timeout time.Duration) *BinanceSource {
	return &BinanceSource{
		baseURL:  binanceBaseURL,
		symbol:   symbol,
		interval: interval,
		client:   &http.Client{Timeout: timeout},
	}
}

func (s *BinanceSource) Name() string { return "binance" }

// Candles fetches up to limit klines, oldest first.
//
// Each kline is a mixed-type array:
// [openTime, open, high, low, close, volume, closeTime, ...].
func (s *BinanceSource) Candles(ctx context.Context, limit int) ([]market.Candle, error) {
	q := url.Values{}
	q.Set("symbol", s.symbol)
	q.Set("interval", s.interval)
	q.Set("limit", fmt.Sprint(limit))

	var raw [][]any
	if err := getJSON(ctx, s.client, s.baseURL+"/api/v3/klines?"+q.Encode(), &raw); err != nil {
		return nil, err
	}

	candles := make([]market.Candle, 0, len(raw))
	for i, k := range raw {
		if len(k) < 6 {
			return nil, fmt.Errorf("kline %d: expected 6+ fields, got %d", i, len(k))
		}
		openTime, err := toFloat(k[0])
		if err != nil {
			return nil, fmt.Errorf("kline %d time: %w", i, err)
		}
		c := market.Candle{Time: time.UnixMilli(int64(openTime)).UTC()}
		for j, dst := range []*float64{&c.Open, &c.High, &c.Low, &c.Close, &c.Volume} {
			v, err := toFloat(k[j+1])
			if err != nil {
				return nil, fmt.Errorf("kline %d field %d: %w", i, j+1, err)
			}
			*dst = v
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// Price fetches the latest trade price.
func (s *BinanceSource) Price(ctx context.Context) (float64, error) {
	var out struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	u := s.baseURL + "/api/v3/ticker/price?symbol=" + url.QueryEscape(s.symbol)
	if err := getJSON(ctx, s.client, u, &out); err != nil {
		return 0, err
	}
	return toFloat(out.Price)
}
