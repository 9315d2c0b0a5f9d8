package account

import (
	"fmt"
	"time"

	"trendbot/id"
	"trendbot/market"
)

// profitQuote computes P/L in quote currency for the given side and amount.
func profitQuote(side market.Side, entry, exit, amount float64) float64 {
	if side == market.Long {
		return (exit - entry) * amount
	}
	return (entry - exit) * amount
}

// CloseFull closes the entire remaining position at the given price, updates
// the balance, appends an immutable history record, and clears the open
// position. Closing when flat is a no-op and returns nil.
func (a *Account) CloseFull(price float64, when time.Time, reason string, conv market.Converter) *ClosedTrade {
	pos := a.OpenPosition
	if pos == nil {
		return nil
	}

	pq := profitQuote(pos.Side, pos.EntryPrice, price, pos.Amount)
	pa := conv.ToAccount(pq)

	balanceBefore := a.Balance
	a.Balance += pa

	rec := ClosedTrade{
		ID:            id.New(),
		Side:          pos.Side,
		EntryPrice:    pos.EntryPrice,
		ExitPrice:     price,
		Amount:        pos.Amount,
		ProfitQuote:   pq,
		ProfitAccount: pa,
		BalanceBefore: balanceBefore,
		BalanceAfter:  a.Balance,
		OpenedAt:      pos.OpenedAt,
		ClosedAt:      when,
		ExitReason:    reason,
		Partial:       false,
		TPLevelsHit:   pos.HitTPNames(),
	}

	a.History = append(a.History, rec)
	a.OpenPosition = nil

	return &rec
}

// ClosePartial closes the configured percentage of the original amount for
// the ladder level at lvlIndex, marks the level hit, and appends a partial
// history record. The close percentage is always taken against the original
// amount, never the remaining amount.
func (a *Account) ClosePartial(price float64, when time.Time, lvlIndex int, conv market.Converter) (*ClosedTrade, error) {
	pos := a.OpenPosition
	if pos == nil {
		return nil, nil
	}
	if lvlIndex < 0 || lvlIndex >= len(pos.TPLevels) {
		return nil, fmt.Errorf("%w: tp level index %d out of range (have %d levels)",
			market.ErrInvariant, lvlIndex, len(pos.TPLevels))
	}
	lvl := &pos.TPLevels[lvlIndex]
	if lvl.Hit {
		return nil, fmt.Errorf("%w: tp level %s already hit", market.ErrInvariant, lvl.Name)
	}

	amountToClose := pos.OriginalAmount * lvl.ClosePct / 100

	// The config validator caps ladder percentages at 100, so an overshoot
	// here means the position was mutated outside the ledger.
	if amountToClose > pos.Amount+1e-12 {
		return nil, fmt.Errorf("%w: partial close of %v exceeds remaining amount %v",
			market.ErrInvariant, amountToClose, pos.Amount)
	}

	pq := profitQuote(pos.Side, pos.EntryPrice, price, amountToClose)
	pa := conv.ToAccount(pq)

	a.Balance += pa
	lvl.Hit = true
	pos.Amount -= amountToClose
	if pos.Amount < 0 {
		pos.Amount = 0
	}

	rec := ClosedTrade{
		ID:            id.New(),
		Side:          pos.Side,
		EntryPrice:    pos.EntryPrice,
		ExitPrice:     price,
		Amount:        amountToClose,
		ProfitQuote:   pq,
		ProfitAccount: pa,
		OpenedAt:      pos.OpenedAt,
		ClosedAt:      when,
		TPName:        lvl.Name,
		Partial:       true,
	}

	a.History = append(a.History, rec)
	return &rec, nil
}

// LiveProfit returns the unrealized P/L on the current open amount in
// account currency, or nil when flat. It never mutates the account.
func (a *Account) LiveProfit(price float64, conv market.Converter) *float64 {
	pos := a.OpenPosition
	if pos == nil {
		return nil
	}
	pa := conv.ToAccount(profitQuote(pos.Side, pos.EntryPrice, price, pos.Amount))
	return &pa
}
