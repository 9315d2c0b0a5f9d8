package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"trendbot/market"
)

const bybitBaseURL = "https://api.bybit.com"

// bybitIntervals maps the generic interval notation to Bybit's kline
// intervals (minutes, or D/W/M).
var bybitIntervals = map[string]string{
	"1m":  "1",
	"5m":  "5",
	"15m": "15",
	"30m": "30",
	"1h":  "60",
	"4h":  "240",
	"1d":  "D",
}

// BybitSource serves candles and prices from the Bybit v5 REST API.
type BybitSource struct {
	baseURL  string
	symbol   string
	interval string
	client   *http.Client
}

// NewBybit creates a Bybit spot source for the given symbol (e.g. "BTCUSDT").
func NewBybit(symbol, interval string, timeout time.Duration) *BybitSource {
	return &BybitSource{
		baseURL:  bybitBaseURL,
		symbol:   symbol,
		interval: interval,
		client:   &http.Client{Timeout: timeout},
	}
}

func (s *BybitSource) Name() string { return "bybit" }

// Candles fetches up to limit klines, returned oldest first. Bybit serves
// them newest first as [startTime, open, high, low, close, volume, turnover].
func (s *BybitSource) Candles(ctx context.Context, limit int) ([]market.Candle, error) {
	interval, ok := bybitIntervals[s.interval]
	if !ok {
		return nil, fmt.Errorf("unsupported interval %q", s.interval)
	}

	q := url.Values{}
	q.Set("category", "spot")
	q.Set("symbol", s.symbol)
	q.Set("interval", interval)
	q.Set("limit", fmt.Sprint(limit))

	var out struct {
		RetCode int    `json:"retCode"`
		RetMsg  string `json:"retMsg"`
		Result  struct {
			List [][]string `json:"list"`
		} `json:"result"`
	}
	if err := getJSON(ctx, s.client, s.baseURL+"/v5/market/kline?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	if out.RetCode != 0 {
		return nil, fmt.Errorf("api error %d: %s", out.RetCode, out.RetMsg)
	}

	rows := out.Result.List
	candles := make([]market.Candle, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		if len(row) < 6 {
			return nil, fmt.Errorf("kline %d: expected 6+ fields, got %d", i, len(row))
		}
		startTime, err := toFloat(row[0])
		if err != nil {
			return nil, fmt.Errorf("kline %d time: %w", i, err)
		}
		c := market.Candle{Time: time.UnixMilli(int64(startTime)).UTC()}
		for j, dst := range []*float64{&c.Open, &c.High, &c.Low, &c.Close, &c.Volume} {
			v, err := toFloat(row[j+1])
			if err != nil {
				return nil, fmt.Errorf("kline %d field %d: %w", i, j+1, err)
			}
			*dst = v
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// Price fetches the last traded price from the spot ticker.
func (s *BybitSource) Price(ctx context.Context) (float64, error) {
	q := url.Values{}
	q.Set("category", "spot")
	q.Set("symbol", s.symbol)

	var out struct {
		RetCode int    `json:"retCode"`
		RetMsg  string `json:"retMsg"`
		Result  struct {
			List []struct {
				LastPrice string `json:"lastPrice"`
			} `json:"list"`
		} `json:"result"`
	}
	if err := getJSON(ctx, s.client, s.baseURL+"/v5/market/tickers?"+q.Encode(), &out); err != nil {
		return 0, err
	}
	if out.RetCode != 0 {
		return 0, fmt.Errorf("api error %d: %s", out.RetCode, out.RetMsg)
	}
	if len(out.Result.List) == 0 {
		return 0, fmt.Errorf("empty ticker list")
	}
	return toFloat(out.Result.List[0].LastPrice)
}
