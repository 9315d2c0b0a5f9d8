package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trendbot/market"
)

// unitRangeCandles builds candles with a constant high-low range of 1, so a
// period-1 ATR is exactly 1 and the trailing distance is exactly keyValue.
func unitRangeCandles(closes ...float64) []market.Candle {
	out := make([]market.Candle, 0, len(closes))
	for _, c := range closes {
		out = append(out, market.Candle{High: c + 0.5, Low: c - 0.5, Close: c})
	}
	return out
}

func TestUTBotFlipsUpThenDown(t *testing.T) {
	t.Parallel()

	u := NewUTBot(2, 1)
	assert.Equal(t, 0, u.Trend(), "unknown before any crossing")

	cs := unitRangeCandles(100, 99, 103, 104, 99)

	u.Update(cs[0]) // seed: stop at first close
	assert.InDelta(t, 100.0, u.Stop(), 1e-9)

	u.Update(cs[1]) // below the stop, no crossing yet
	assert.Equal(t, 0, u.Trend())
	assert.InDelta(t, 101.0, u.Stop(), 1e-9)

	u.Update(cs[2]) // close crosses above the stop
	assert.Equal(t, 1, u.Trend())
	assert.InDelta(t, 101.0, u.Stop(), 1e-9)

	u.Update(cs[3]) // trending up, stop ratchets
	assert.Equal(t, 1, u.Trend())
	assert.InDelta(t, 102.0, u.Stop(), 1e-9)

	u.Update(cs[4]) // close crosses back below
	assert.Equal(t, -1, u.Trend())
	assert.InDelta(t, 101.0, u.Stop(), 1e-9)
}

func TestUTBotStopRatchetsUpward(t *testing.T) {
	t.Parallel()

	u := NewUTBot(2, 1)
	u.Calculate(unitRangeCandles(100, 99, 103, 104))

	stopBefore := u.Stop()

	// A pullback that stays above the stop must not loosen it.
	u.Update(unitRangeCandles(103)[0])
	assert.GreaterOrEqual(t, u.Stop(), stopBefore)
	assert.Equal(t, 1, u.Trend())
}

func TestUTBotCalculateReturnsFinalState(t *testing.T) {
	t.Parallel()

	u := NewUTBot(2, 1)
	trend, stop := u.Calculate(unitRangeCandles(100, 99, 103, 104, 99))

	assert.Equal(t, -1, trend)
	assert.InDelta(t, 101.0, stop, 1e-9)
}

func TestUTBotReset(t *testing.T) {
	t.Parallel()

	u := NewUTBot(2, 1)
	u.Calculate(unitRangeCandles(100, 99, 103))
	assert.Equal(t, 1, u.Trend())

	u.Reset()
	assert.Equal(t, 0, u.Trend())
	assert.InDelta(t, 0.0, u.Stop(), 1e-9)
}

func TestCombineSignalsSellOverridesBuy(t *testing.T) {
	t.Parallel()

	slow := NewUTBot(2, 1)
	slow.Calculate(unitRangeCandles(100, 99, 103)) // up trend

	fast := NewUTBot(2, 1)
	fast.Calculate(unitRangeCandles(100, 99, 103, 104, 99)) // down trend

	sig, stop := CombineSignals(fast, slow, 99)
	assert.Equal(t, market.Sell, sig)
	assert.InDelta(t, fast.Stop(), stop, 1e-9)
}

func TestCombineSignalsBuyFromSlow(t *testing.T) {
	t.Parallel()

	slow := NewUTBot(2, 1)
	slow.Calculate(unitRangeCandles(100, 99, 103)) // up trend

	fast := NewUTBot(2, 1)
	fast.Calculate(unitRangeCandles(100, 99, 103)) // up trend, no sell

	sig, stop := CombineSignals(fast, slow, 103)
	assert.Equal(t, market.Buy, sig)
	assert.InDelta(t, slow.Stop(), stop, 1e-9)
}

func TestCombineSignalsHoldByDefault(t *testing.T) {
	t.Parallel()

	sig, stop := CombineSignals(NewUTBot(2, 1), NewUTBot(2, 300), 65000)
	assert.Equal(t, market.Hold, sig)
	assert.InDelta(t, 65000.0, stop, 1e-9)
}
