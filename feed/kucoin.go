package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trendbot/market"
)

const kucoinBaseURL = "https://api.kucoin.com"

// kucoinIntervals maps the generic interval notation to KuCoin's kline types.
var kucoinIntervals = map[string]string{
	"1m":  "1min",
	"5m":  "5min",
	"15m": "15min",
	"30m": "30min",
	"1h":  "1hour",
	"4h":  "4hour",
	"1d":  "1day",
}

// KuCoinSource serves candles and prices from the KuCoin REST API.
type KuCoinSource struct {
	baseURL  string
	symbol   string
	interval string
	client   *http.Client
}

// NewKuCoin creates a KuCoin source. The symbol is accepted in the compact
// form ("BTCUSDT") and converted to KuCoin's dashed form ("BTC-USDT").
func NewKuCoin(symbol, interval string, timeout time.Duration) *KuCoinSource {
	return &KuCoinSource{
		baseURL:  kucoinBaseURL,
		symbol:   kucoinSymbol(symbol),
		interval: interval,
		client:   &http.Client{Timeout: timeout},
	}
}

func (s *KuCoinSource) Name() string { return "kucoin" }

// Candles fetches up to limit candles, returned oldest first. KuCoin serves
// them newest first with fields [time, open, close, high, low, volume,
// turnover], so both the order and the OHLC layout are normalised here.
func (s *KuCoinSource) Candles(ctx context.Context, limit int) ([]market.Candle, error) {
	interval, ok := kucoinIntervals[s.interval]
	if !ok {
		return nil, fmt.Errorf("unsupported interval %q", s.interval)
	}

	q := url.Values{}
	q.Set("symbol", s.symbol)
	q.Set("type", interval)

	var out struct {
		Code string     `json:"code"`
		Msg  string     `json:"msg"`
		Data [][]string `json:"data"`
	}
	if err := getJSON(ctx, s.client, s.baseURL+"/api/v1/market/candles?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	if out.Code != "200000" {
		return nil, fmt.Errorf("api error %s: %s", out.Code, out.Msg)
	}

	rows := out.Data
	if len(rows) > limit {
		rows = rows[:limit]
	}

	candles := make([]market.Candle, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		if len(row) < 6 {
			return nil, fmt.Errorf("candle %d: expected 6+ fields, got %d", i, len(row))
		}
		var vals [6]float64
		for j := 0; j < 6; j++ {
			v, err := toFloat(row[j])
			if err != nil {
				return nil, fmt.Errorf("candle %d field %d: %w", i, j, err)
			}
			vals[j] = v
		}
		candles = append(candles, market.Candle{
			Time:   time.Unix(int64(vals[0]), 0).UTC(),
			Open:   vals[1],
			Close:  vals[2],
			High:   vals[3],
			Low:    vals[4],
			Volume: vals[5],
		})
	}
	return candles, nil
}

// Price fetches the last traded price from the 24h stats endpoint.
func (s *KuCoinSource) Price(ctx context.Context) (float64, error) {
	var out struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
		Data struct {
			Last string `json:"last"`
		} `json:"data"`
	}
	u := s.baseURL + "/api/v1/market/stats?symbol=" + url.QueryEscape(s.symbol)
	if err := getJSON(ctx, s.client, u, &out); err != nil {
		return 0, err
	}
	if out.Code != "200000" {
		return 0, fmt.Errorf("api error %s: %s", out.Code, out.Msg)
	}
	return toFloat(out.Data.Last)
}

// kucoinSymbol inserts the dash KuCoin expects between base and quote.
func kucoinSymbol(symbol string) string {
	if strings.Contains(symbol, "-") {
		return symbol
	}
	for _, quote := range []string{"USDT", "USDC", "BTC", "ETH"} {
		if strings.HasSuffix(symbol, quote) && len(symbol) > len(quote) {
			return symbol[:len(symbol)-len(quote)] + "-" + quote
		}
	}
	return symbol
}
