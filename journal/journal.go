// Package journal mirrors closed trades and equity snapshots to an
// append-only audit store, separate from the account document so history
// can be queried without parsing the whole account file.
package journal

import (
	"time"

	"trendbot/account"
	"trendbot/market"
)

type TradeRecord struct {
	TradeID       string
	Side          market.Side
	EntryPrice    float64
	ExitPrice     float64
	Amount        float64
	ProfitQuote   float64
	ProfitAccount float64
	OpenTime      time.Time
	CloseTime     time.Time
	Reason        string
	Partial       bool
}

type EquitySnapshot struct {
	Time    time.Time
	Balance float64
	Equity  float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// FromClosedTrade converts a ledger history record into a journal record.
// Partial closes carry the TP name as the reason.
func FromClosedTrade(t account.ClosedTrade) TradeRecord {
	reason := t.ExitReason
	if t.Partial {
		reason = t.TPName
	}
	return TradeRecord{
		TradeID:       t.ID,
		Side:          t.Side,
		EntryPrice:    t.EntryPrice,
		ExitPrice:     t.ExitPrice,
		Amount:        t.Amount,
		ProfitQuote:   t.ProfitQuote,
		ProfitAccount: t.ProfitAccount,
		OpenTime:      t.OpenedAt,
		CloseTime:     t.ClosedAt,
		Reason:        reason,
		Partial:       t.Partial,
	}
}
