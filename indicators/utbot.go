package indicators

import (
	"fmt"
	"math"

	"trendbot/market"
)

// UTBot is a streaming trailing-stop trend indicator. It keeps a stop at
// keyValue*ATR behind price, ratcheting while price stays on one side, and
// flips trend when the close crosses the stop.
type UTBot struct {
	keyValue float64
	atr      *ATR

	stop      float64
	trend     int // +1 up, -1 down, 0 unknown
	prevClose float64
	count     int
}

// NewUTBot creates a UT Bot with the given sensitivity (keyValue) and ATR
// period.
func NewUTBot(keyValue float64, atrPeriod int) *UTBot {
	return &UTBot{
		keyValue: keyValue,
		atr:      NewATR(atrPeriod),
	}
}

func (u *UTBot) Name() string {
	return fmt.Sprintf("UTBot(%.0f, %d)", u.keyValue, u.atr.period)
}

func (u *UTBot) Reset() {
	u.atr.Reset()
	u.stop = 0
	u.trend = 0
	u.prevClose = 0
	u.count = 0
}

// Update advances the indicator by one candle.
func (u *UTBot) Update(c market.Candle) {
	u.atr.Update(c)
	u.count++

	src := c.Close
	if u.count == 1 {
		// Seed the stop at the first close.
		u.stop = c.Close
		u.prevClose = src
		return
	}

	nLoss := u.keyValue * u.atr.Value()
	prevStop := u.stop
	src1 := u.prevClose

	switch {
	case src > prevStop && src1 > prevStop:
		u.stop = math.Max(prevStop, src-nLoss)
	case src < prevStop && src1 < prevStop:
		u.stop = math.Min(prevStop, src+nLoss)
	case src > prevStop:
		u.stop = src - nLoss
	default:
		u.stop = src + nLoss
	}

	if src1 < prevStop && src > prevStop {
		u.trend = 1
	} else if src1 > prevStop && src < prevStop {
		u.trend = -1
	}

	u.prevClose = src
}

// Stop returns the current trailing-stop price.
func (u *UTBot) Stop() float64 {
	return u.stop
}

// Trend returns +1 for an up trend, -1 for a down trend, 0 before the first
// crossing.
func (u *UTBot) Trend() int {
	return u.trend
}

// Calculate feeds a full candle series and returns the final trend and stop.
func (u *UTBot) Calculate(candles []market.Candle) (trend int, stop float64) {
	for _, c := range candles {
		u.Update(c)
	}
	return u.trend, u.stop
}

// CombineSignals merges the two UT Bot instances the way the live strategy
// runs them: the slow bot (wide ATR) confirms buys, the fast bot (tight ATR)
// triggers sells, and a sell wins when both fire. The returned stop is the
// trailing stop of whichever bot produced the signal, or the price itself on
// Hold.
func CombineSignals(fast, slow *UTBot, price float64) (market.Signal, float64) {
	signal := market.Hold
	stop := price

	if slow.Trend() == 1 {
		signal = market.Buy
		stop = slow.Stop()
	}
	if fast.Trend() == -1 {
		signal = market.Sell
		stop = fast.Stop()
	}
	return signal, stop
}
