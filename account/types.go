// Package account holds the virtual account ledger: the single open
// position, the append-only trade history and order log, and the balance
// accounting for full and partial closes.
package account

import (
	"time"

	"trendbot/market"
)

// Exit reasons recorded on full closes.
const (
	ReasonStopLoss = "Stop-Loss Hit"
	ReasonAllTPs   = "All TPs Hit"
	ReasonOpposite = "Opposite Signal"
	ReasonManual   = "Manual Close"
)

// TPLevel is one rung of a position's take-profit ladder. ClosePct is a
// percentage of the position's original amount. Hit only ever flips
// false -> true.
type TPLevel struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ClosePct float64 `json:"close_pct"`
	Hit      bool    `json:"hit"`
}

// Position is the single open position. Amount only decreases, via partial
// closes; OriginalAmount is fixed at open.
type Position struct {
	Side           market.Side `json:"side"`
	EntryPrice     float64     `json:"entry_price"`
	Amount         float64     `json:"amount"`
	OriginalAmount float64     `json:"original_amount"`
	StopLoss       *float64    `json:"stop_loss"`
	TPLevels       []TPLevel   `json:"tp_levels"`
	OpenedAt       time.Time   `json:"opened_at"`
	ATRAtEntry     float64     `json:"atr_at_entry"`
	BreakevenMoved bool        `json:"breakeven_moved"`
	Strategy       string      `json:"strategy,omitempty"`
}

// AllTPsHit reports whether every ladder level has been hit.
func (p *Position) AllTPsHit() bool {
	for _, lvl := range p.TPLevels {
		if !lvl.Hit {
			return false
		}
	}
	return len(p.TPLevels) > 0
}

// HitTPNames returns the names of the levels hit so far, in ladder order.
func (p *Position) HitTPNames() []string {
	names := []string{}
	for _, lvl := range p.TPLevels {
		if lvl.Hit {
			names = append(names, lvl.Name)
		}
	}
	return names
}

// ClosedTrade is an immutable history record. Full closes carry the exit
// reason, balance snapshots, and the TP levels hit over the position's life;
// partial closes carry the TP name that triggered them.
type ClosedTrade struct {
	ID            string      `json:"id"`
	Side          market.Side `json:"side"`
	EntryPrice    float64     `json:"entry_price"`
	ExitPrice     float64     `json:"exit_price"`
	Amount        float64     `json:"amount"`
	ProfitQuote   float64     `json:"profit_quote"`
	ProfitAccount float64     `json:"profit_account"`
	BalanceBefore float64     `json:"balance_before,omitempty"`
	BalanceAfter  float64     `json:"balance_after,omitempty"`
	OpenedAt      time.Time   `json:"opened_at"`
	ClosedAt      time.Time   `json:"closed_at"`
	ExitReason    string      `json:"exit_reason,omitempty"`
	TPName        string      `json:"tp_name,omitempty"`
	Partial       bool        `json:"partial"`
	TPLevelsHit   []string    `json:"tp_levels_hit,omitempty"`
}

// Action tags for the order log.
type Action string

const (
	ActionOpenLong     Action = "OPEN_LONG"
	ActionOpenShort    Action = "OPEN_SHORT"
	ActionCloseLong    Action = "CLOSE_LONG"
	ActionCloseShort   Action = "CLOSE_SHORT"
	ActionStopLoss     Action = "STOP_LOSS"
	ActionTPHit        Action = "TP_HIT"
	ActionTrailingStop Action = "TRAILING_STOP_UPDATE"
	ActionHold         Action = "HOLD"
	ActionBlocked      Action = "BLOCKED"
	ActionIgnored      Action = "IGNORED"
)

// LogEntry is one line of the append-only audit trail, one per processed
// tick (plus one extra for the close phase of an opposite-signal flip).
type LogEntry struct {
	Time        time.Time     `json:"time"`
	Signal      market.Signal `json:"signal"`
	Price       float64       `json:"price"`
	Quantity    float64       `json:"quantity"`
	Action      Action        `json:"action"`
	PL          *float64      `json:"pl,omitempty"`
	StopLoss    *float64      `json:"stop_loss,omitempty"`
	TakeProfits []float64     `json:"take_profits,omitempty"`
	Message     string        `json:"message,omitempty"`
}

// RiskState holds the policy counters that persist with the account.
type RiskState struct {
	ConsecutiveLosses int     `json:"consecutive_losses"`
	Day               string  `json:"day"`          // UTC day bucket, YYYY-MM-DD
	DayRealized       float64 `json:"day_realized"` // realized P/L for Day, account currency
}

// Account is the single persisted document: balance, the open position (nil
// when flat), history and order log, plus the risk counters.
type Account struct {
	Balance      float64       `json:"balance"`
	StartBalance float64       `json:"start_balance"`
	OpenPosition *Position     `json:"open_position"`
	History      []ClosedTrade `json:"history"`
	OrderLog     []LogEntry    `json:"order_log"`
	LastSignal   market.Signal `json:"last_signal,omitempty"`
	Risk         RiskState     `json:"risk"`
}

// New creates a fresh flat account with the given starting balance.
func New(startBalance float64) *Account {
	return &Account{
		Balance:      startBalance,
		StartBalance: startBalance,
		History:      []ClosedTrade{},
		OrderLog:     []LogEntry{},
	}
}
