// Package indicators provides the streaming indicators behind the signal
// feed: a rolling candle-range ATR and the UT Bot trailing stop.
package indicators

import (
	"fmt"

	"trendbot/market"
)

// ATR is a streaming average range indicator: the rolling mean of each
// candle's high-low range over the period. This is the range measure the UT
// Bot stop and the risk sizing both consume.
type ATR struct {
	period int
	ranges []float64
}

// NewATR creates a new average range indicator with the given period.
func NewATR(period int) *ATR {
	return &ATR{
		period: period,
		ranges: make([]float64, 0, period),
	}
}

func (a *ATR) Name() string {
	return fmt.Sprintf("ATR(%d)", a.period)
}

func (a *ATR) Warmup() int {
	return a.period
}

func (a *ATR) Reset() {
	a.ranges = a.ranges[:0]
}

func (a *ATR) Update(c market.Candle) {
	a.ranges = append(a.ranges, c.High-c.Low)
	// Keep only the last 'period' ranges
	if len(a.ranges) > a.period {
		a.ranges = a.ranges[1:]
	}
}

func (a *ATR) Ready() bool {
	return len(a.ranges) >= a.period
}

func (a *ATR) Value() float64 {
	if !a.Ready() {
		return 0
	}

	sum := 0.0
	for _, r := range a.ranges {
		sum += r
	}
	return sum / float64(len(a.ranges))
}

// Calculate feeds a full candle series and returns the final value.
func (a *ATR) Calculate(candles []market.Candle) float64 {
	for _, c := range candles {
		a.Update(c)
	}
	return a.Value()
}

// StableATR is the risk-management ATR: the rolling range average over the
// last `period` candles of the series. Returns an error when there are not
// enough candles.
func StableATR(candles []market.Candle, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(candles) < period {
		return 0, fmt.Errorf("not enough candles: need %d, got %d", period, len(candles))
	}

	atr := NewATR(period)
	return atr.Calculate(candles), nil
}
