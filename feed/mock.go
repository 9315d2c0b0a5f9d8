package feed

import (
	"context"
	"math/rand"
	"time"

	"trendbot/market"
)

const mockBasePrice = 30000.0

// MockSource generates a random-walk candle series locally. It sits last in
// the source chain so the agent keeps running when every exchange is
// unreachable.
type MockSource struct {
	rng *rand.Rand
}

// NewMock creates a mock source. A non-zero seed makes the walk
// deterministic; seed 0 seeds from the clock.
func NewMock(seed int64) *MockSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &MockSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *MockSource) Name() string { return "mock" }

// Candles generates limit candles of a random walk around the base price,
// spaced 5 minutes apart and ending at the current time.
func (s *MockSource) Candles(_ context.Context, limit int) ([]market.Candle, error) {
	if limit <= 0 {
		limit = 1
	}

	end := time.Now().UTC().Truncate(5 * time.Minute)
	price := mockBasePrice

	candles := make([]market.Candle, 0, limit)
	for i := 0; i < limit; i++ {
		open := price
		price += (s.rng.Float64() - 0.5) * 200
		high := open + s.rng.Float64()*100
		low := open - s.rng.Float64()*100
		if price > high {
			high = price
		}
		if price < low {
			low = price
		}
		candles = append(candles, market.Candle{
			Time:   end.Add(-time.Duration(limit-1-i) * 5 * time.Minute),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: 1 + s.rng.Float64()*10,
		})
	}
	return candles, nil
}

// Price returns a price near the base price.
func (s *MockSource) Price(_ context.Context) (float64, error) {
	return mockBasePrice + (s.rng.Float64()-0.5)*2000, nil
}
