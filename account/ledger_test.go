package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendbot/market"
)

var testConv = market.NewConverter(85)

func openLong(a *Account, entry, amount float64) *Position {
	stop := entry - 200
	a.OpenPosition = &Position{
		Side:           market.Long,
		EntryPrice:     entry,
		Amount:         amount,
		OriginalAmount: amount,
		StopLoss:       &stop,
		TPLevels: []TPLevel{
			{Name: "TP1", Price: entry * 1.01, ClosePct: 50},
			{Name: "TP2", Price: entry * 1.02, ClosePct: 50},
		},
		OpenedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	return a.OpenPosition
}

func TestCloseFullLongProfit(t *testing.T) {
	t.Parallel()

	a := New(10000)
	openLong(a, 65000, 0.001)

	when := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := a.CloseFull(66000, when, ReasonOpposite, testConv)

	require.NotNil(t, rec)
	assert.InDelta(t, 1.0, rec.ProfitQuote, 1e-9)   // (66000-65000)*0.001
	assert.InDelta(t, 85.0, rec.ProfitAccount, 1e-9) // *85
	assert.InDelta(t, 10000.0, rec.BalanceBefore, 1e-9)
	assert.InDelta(t, 10085.0, rec.BalanceAfter, 1e-9)
	assert.InDelta(t, 10085.0, a.Balance, 1e-9)
	assert.Equal(t, ReasonOpposite, rec.ExitReason)
	assert.False(t, rec.Partial)
	assert.NotEmpty(t, rec.ID)

	assert.Nil(t, a.OpenPosition)
	assert.Len(t, a.History, 1)
}

func TestCloseFullShortProfit(t *testing.T) {
	t.Parallel()

	a := New(10000)
	a.OpenPosition = &Position{
		Side:           market.Short,
		EntryPrice:     66000,
		Amount:         0.001,
		OriginalAmount: 0.001,
		OpenedAt:       time.Now().UTC(),
	}

	rec := a.CloseFull(65000, time.Now().UTC(), ReasonManual, testConv)
	require.NotNil(t, rec)
	assert.InDelta(t, 1.0, rec.ProfitQuote, 1e-9) // short gains as price falls
	assert.InDelta(t, 10085.0, a.Balance, 1e-9)
}

func TestCloseFullWhenFlat(t *testing.T) {
	t.Parallel()

	a := New(10000)
	rec := a.CloseFull(65000, time.Now().UTC(), ReasonManual, testConv)
	assert.Nil(t, rec)
	assert.InDelta(t, 10000.0, a.Balance, 1e-9)
	assert.Empty(t, a.History)
}

func TestCloseFullRecordsHitTPs(t *testing.T) {
	t.Parallel()

	a := New(10000)
	pos := openLong(a, 65000, 0.001)
	pos.TPLevels[0].Hit = true

	rec := a.CloseFull(64000, time.Now().UTC(), ReasonStopLoss, testConv)
	require.NotNil(t, rec)
	assert.Equal(t, []string{"TP1"}, rec.TPLevelsHit)
}

func TestClosePartialTakesOriginalAmount(t *testing.T) {
	t.Parallel()

	a := New(10000)
	pos := openLong(a, 65000, 0.001)

	when := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)
	rec, err := a.ClosePartial(65650, when, 0, testConv)
	require.NoError(t, err)
	require.NotNil(t, rec)

	// 50% of the original 0.001 regardless of remaining amount.
	assert.InDelta(t, 0.0005, rec.Amount, 1e-12)
	assert.InDelta(t, 0.0005, pos.Amount, 1e-12)
	assert.InDelta(t, 0.001, pos.OriginalAmount, 1e-12)
	assert.True(t, pos.TPLevels[0].Hit)
	assert.False(t, pos.TPLevels[1].Hit)

	assert.InDelta(t, 0.325, rec.ProfitQuote, 1e-9) // 650 * 0.0005
	assert.InDelta(t, 10000+0.325*85, a.Balance, 1e-9)
	assert.Equal(t, "TP1", rec.TPName)
	assert.True(t, rec.Partial)
	assert.NotNil(t, a.OpenPosition)
}

func TestClosePartialSecondLevelAgainstOriginal(t *testing.T) {
	t.Parallel()

	a := New(10000)
	pos := openLong(a, 65000, 0.001)

	_, err := a.ClosePartial(65650, time.Now().UTC(), 0, testConv)
	require.NoError(t, err)

	rec, err := a.ClosePartial(66300, time.Now().UTC(), 1, testConv)
	require.NoError(t, err)

	assert.InDelta(t, 0.0005, rec.Amount, 1e-12)
	assert.InDelta(t, 0.0, pos.Amount, 1e-12)
	assert.True(t, pos.AllTPsHit())
}

func TestClosePartialAlreadyHit(t *testing.T) {
	t.Parallel()

	a := New(10000)
	openLong(a, 65000, 0.001)

	_, err := a.ClosePartial(65650, time.Now().UTC(), 0, testConv)
	require.NoError(t, err)

	_, err = a.ClosePartial(65650, time.Now().UTC(), 0, testConv)
	assert.ErrorIs(t, err, market.ErrInvariant)
}

func TestClosePartialBadIndex(t *testing.T) {
	t.Parallel()

	a := New(10000)
	openLong(a, 65000, 0.001)

	_, err := a.ClosePartial(65650, time.Now().UTC(), 5, testConv)
	assert.ErrorIs(t, err, market.ErrInvariant)
}

func TestClosePartialWhenFlat(t *testing.T) {
	t.Parallel()

	a := New(10000)
	rec, err := a.ClosePartial(65650, time.Now().UTC(), 0, testConv)
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestLiveProfit(t *testing.T) {
	t.Parallel()

	a := New(10000)
	assert.Nil(t, a.LiveProfit(65000, testConv))

	openLong(a, 65000, 0.001)
	live := a.LiveProfit(65500, testConv)
	require.NotNil(t, live)
	assert.InDelta(t, 0.5*85, *live, 1e-9)

	// Pricing the position must not mutate anything.
	assert.InDelta(t, 10000.0, a.Balance, 1e-9)
	assert.InDelta(t, 0.001, a.OpenPosition.Amount, 1e-12)
}
