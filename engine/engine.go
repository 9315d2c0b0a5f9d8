// Package engine implements the per-tick position lifecycle: exit checks
// against the open position, then signal handling, then a wholesale persist
// of the account document.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"trendbot/account"
	"trendbot/journal"
	"trendbot/market"
	"trendbot/risk"
)

// Store abstracts account persistence. The account is read at the start of
// a tick and fully rewritten at the end.
type Store interface {
	Load() (*account.Account, error)
	Save(*account.Account) error
}

// Engine processes ticks against one persisted account. Single-threaded by
// design: callers must serialize ticks externally.
type Engine struct {
	store   Store
	journal journal.Journal
	policy  *risk.Policy
	conv    market.Converter
	log     *slog.Logger
}

// New wires an Engine. The journal may be nil when no audit mirror is
// wanted (tests, dry runs).
func New(store Store, j journal.Journal, policy *risk.Policy, conv market.Converter, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:   store,
		journal: j,
		policy:  policy,
		conv:    conv,
		log:     logger,
	}
}

// StatusSummary is the caller-facing snapshot returned by ProcessTick.
type StatusSummary struct {
	Balance      float64           `json:"balance"`
	Holding      bool              `json:"holding"`
	PositionSide market.Side       `json:"position_side,omitempty"`
	Action       string            `json:"action"`
	StopLoss     *float64          `json:"stop_loss,omitempty"`
	TPLevels     []account.TPLevel `json:"tp_levels"`
	PositionSize float64           `json:"position_size"`
}

// ProcessTick runs one full update: exit conditions first (stop, then
// take-profit ladder, then trailing update), then the incoming signal, then
// an atomic persist. If the persist fails the tick must be treated as not
// applied. The returned LogEntry is the dominant action of the tick.
func (e *Engine) ProcessTick(tick market.TickInput) (StatusSummary, *account.ClosedTrade, account.LogEntry, error) {
	if err := tick.Validate(); err != nil {
		return StatusSummary{}, nil, account.LogEntry{}, err
	}

	when := tick.Time
	if when.IsZero() {
		when = time.Now().UTC()
	}

	acct, err := e.store.Load()
	if err != nil {
		return StatusSummary{}, nil, account.LogEntry{}, err
	}

	var (
		actionMsg   string
		lastClosed  *account.ClosedTrade
		closedCount = len(acct.History)
		exitEntry   *account.LogEntry
		signalEntry *account.LogEntry
	)

	// Phase 1: exit conditions on the open position. At most one of
	// stop-hit, TP-hit, or trailing-update fires, stop checked first.
	if pos := acct.OpenPosition; pos != nil {
		tpIdx := nextTPIndex(pos, tick.Price)
		switch {
		case stopHit(pos, tick.Price):
			rec := acct.CloseFull(tick.Price, when, account.ReasonStopLoss, e.conv)
			risk.RecordTradeResult(&acct.Risk, rec.ProfitAccount, when)
			lastClosed = rec

			actionMsg = fmt.Sprintf("STOP-LOSS HIT @ %.2f | P/L: %.2f", tick.Price, rec.ProfitAccount)
			exitEntry = &account.LogEntry{
				Time:     when,
				Signal:   tick.Signal,
				Price:    tick.Price,
				Quantity: rec.Amount,
				Action:   account.ActionStopLoss,
				PL:       &rec.ProfitAccount,
				Message:  actionMsg,
			}

		case tpIdx >= 0:
			idx := tpIdx
			rec, err := acct.ClosePartial(tick.Price, when, idx, e.conv)
			if err != nil {
				return StatusSummary{}, nil, account.LogEntry{}, err
			}
			risk.RecordTradeResult(&acct.Risk, rec.ProfitAccount, when)
			lastClosed = rec

			// First ladder level locks in the remainder risk-free.
			if idx == 0 && pos.StopLoss != nil {
				be := e.policy.BreakevenStop(pos.EntryPrice, pos.Side)
				pos.StopLoss = &be
				pos.BreakevenMoved = true
			}

			actionMsg = fmt.Sprintf("%s HIT @ %.2f | Closed %.0f%% | P/L: %.2f",
				rec.TPName, tick.Price, pos.TPLevels[idx].ClosePct, rec.ProfitAccount)
			exitEntry = &account.LogEntry{
				Time:     when,
				Signal:   tick.Signal,
				Price:    tick.Price,
				Quantity: rec.Amount,
				Action:   account.ActionTPHit,
				PL:       &rec.ProfitAccount,
				Message:  actionMsg,
			}

			if pos.AllTPsHit() {
				final := acct.CloseFull(tick.Price, when, account.ReasonAllTPs, e.conv)
				risk.RecordTradeResult(&acct.Risk, final.ProfitAccount, when)
				lastClosed = final
				actionMsg += " | Closed remaining"
				exitEntry.Message = actionMsg
			}

		default:
			if pos.BreakevenMoved && pos.StopLoss != nil {
				if ns, ok := e.policy.TrailStop(tick.Price, pos.Side, *pos.StopLoss, tick.ATR); ok {
					pos.StopLoss = &ns
					actionMsg = fmt.Sprintf("Trailing stop updated to %.2f", ns)
					exitEntry = &account.LogEntry{
						Time:     when,
						Signal:   tick.Signal,
						Price:    tick.Price,
						Quantity: pos.Amount,
						Action:   account.ActionTrailingStop,
						StopLoss: &ns,
						Message:  actionMsg,
					}
				}
			}
		}
	}

	// Phase 2: apply the signal to the resulting state.
	switch tick.Signal {
	case market.Hold:
		if exitEntry == nil {
			actionMsg = "Holding position. Waiting for next signal."
			signalEntry = &account.LogEntry{
				Time:     when,
				Signal:   tick.Signal,
				Price:    tick.Price,
				Quantity: openAmount(acct),
				Action:   account.ActionHold,
				Message:  actionMsg,
			}
		}

	case market.Buy, market.Sell:
		side := market.Long
		if tick.Signal == market.Sell {
			side = market.Short
		}

		entry, closed, msg, err := e.applySignal(acct, side, tick, when)
		if err != nil {
			return StatusSummary{}, nil, account.LogEntry{}, err
		}
		if closed != nil {
			lastClosed = closed
		}
		if msg != "" {
			if actionMsg != "" {
				actionMsg += " | "
			}
			actionMsg += msg
		}
		signalEntry = entry
	}

	// One entry per phase; the signal entry is the dominant action when
	// both phases acted.
	var dominant account.LogEntry
	if exitEntry != nil {
		acct.OrderLog = append(acct.OrderLog, *exitEntry)
		dominant = *exitEntry
	}
	if signalEntry != nil {
		signalEntry.Message = actionMsg
		acct.OrderLog = append(acct.OrderLog, *signalEntry)
		dominant = *signalEntry
	}
	dominant.Message = actionMsg

	if err := e.store.Save(acct); err != nil {
		// The in-memory result is not committed; the caller must treat
		// this tick as not applied.
		return StatusSummary{}, nil, account.LogEntry{}, err
	}

	e.mirrorToJournal(acct, closedCount, tick.Price, when)

	status := StatusSummary{
		Balance:  acct.Balance,
		Action:   actionMsg,
		TPLevels: []account.TPLevel{},
	}
	if pos := acct.OpenPosition; pos != nil {
		status.Holding = true
		status.PositionSide = pos.Side
		status.StopLoss = pos.StopLoss
		status.TPLevels = pos.TPLevels
		status.PositionSize = pos.Amount
	}

	return status, lastClosed, dominant, nil
}

// applySignal handles the Buy/Sell half of a tick: risk gate, repeated
// signal, opposite-side flip, and the open itself. The flip reuses the same
// tick price for both the close and the new entry.
func (e *Engine) applySignal(acct *account.Account, side market.Side, tick market.TickInput, when time.Time) (*account.LogEntry, *account.ClosedTrade, string, error) {
	pos := acct.OpenPosition

	decision := e.policy.CanOpenTrade(acct.Balance, acct.Risk, when)
	if !decision.Allowed {
		msg := fmt.Sprintf("Cannot open %s: %s", side, decision.Reason())
		return &account.LogEntry{
			Time:     when,
			Signal:   tick.Signal,
			Price:    tick.Price,
			Quantity: openAmount(acct),
			Action:   account.ActionBlocked,
			Message:  msg,
		}, nil, msg, nil
	}

	if pos != nil && pos.Side == side {
		msg := fmt.Sprintf("Ignoring repeated %q signal. Already in %s position.", tick.Signal, side)
		return &account.LogEntry{
			Time:     when,
			Signal:   tick.Signal,
			Price:    tick.Price,
			Quantity: pos.Amount,
			Action:   account.ActionIgnored,
			Message:  msg,
		}, nil, msg, nil
	}

	var (
		closed *account.ClosedTrade
		msg    string
	)

	if pos != nil {
		closed = acct.CloseFull(tick.Price, when, account.ReasonOpposite, e.conv)
		risk.RecordTradeResult(&acct.Risk, closed.ProfitAccount, when)

		closeAction := account.ActionCloseShort
		if closed.Side == market.Long {
			closeAction = account.ActionCloseLong
		}
		msg = fmt.Sprintf("CLOSED %s @ %.2f, P/L: %.2f. | ", closed.Side, tick.Price, closed.ProfitAccount)
		acct.OrderLog = append(acct.OrderLog, account.LogEntry{
			Time:     when,
			Signal:   tick.Signal,
			Price:    tick.Price,
			Quantity: closed.Amount,
			Action:   closeAction,
			PL:       &closed.ProfitAccount,
			Message:  msg,
		})
	}

	size, err := e.policy.PositionSize(acct.Balance)
	if err != nil {
		return nil, closed, msg, err
	}
	stop, err := e.policy.StopLoss(tick.Price, side, tick.ATR, tick.TrailingStop)
	if err != nil {
		return nil, closed, msg, err
	}
	levels, err := e.policy.TakeProfitLevels(tick.Price, side, tick.ATR)
	if err != nil {
		return nil, closed, msg, err
	}

	acct.OpenPosition = &account.Position{
		Side:           side,
		EntryPrice:     tick.Price,
		Amount:         size,
		OriginalAmount: size,
		StopLoss:       &stop,
		TPLevels:       levels,
		OpenedAt:       when,
		ATRAtEntry:     tick.ATR,
		Strategy:       tick.Strategy,
	}
	acct.LastSignal = tick.Signal

	openAction := account.ActionOpenLong
	if side == market.Short {
		openAction = account.ActionOpenShort
	}
	msg += fmt.Sprintf("OPENED %s @ %.2f | Size: %v | SL: %.2f", side, tick.Price, size, stop)

	tps := make([]float64, 0, len(levels))
	for _, lvl := range levels {
		tps = append(tps, lvl.Price)
	}

	return &account.LogEntry{
		Time:        when,
		Signal:      tick.Signal,
		Price:       tick.Price,
		Quantity:    size,
		Action:      openAction,
		StopLoss:    &stop,
		TakeProfits: tps,
		Message:     msg,
	}, closed, msg, nil
}

// mirrorToJournal records any trades closed this tick plus one equity
// snapshot. The account store is authoritative; journal failures are logged
// and do not fail the tick.
func (e *Engine) mirrorToJournal(acct *account.Account, prevHistoryLen int, price float64, when time.Time) {
	if e.journal == nil || len(acct.History) == prevHistoryLen {
		return
	}

	for _, t := range acct.History[prevHistoryLen:] {
		if err := e.journal.RecordTrade(journal.FromClosedTrade(t)); err != nil {
			e.log.Warn("journal trade record failed", "trade_id", t.ID, "error", err)
		}
	}

	equity := acct.Balance
	if live := acct.LiveProfit(price, e.conv); live != nil {
		equity += *live
	}
	if err := e.journal.RecordEquity(journal.EquitySnapshot{
		Time:    when,
		Balance: acct.Balance,
		Equity:  equity,
	}); err != nil {
		e.log.Warn("journal equity record failed", "error", err)
	}
}

// stopHit reports whether price has crossed the stop for the position side.
func stopHit(pos *account.Position, price float64) bool {
	if pos.StopLoss == nil {
		return false
	}
	if pos.Side == market.Long {
		return price <= *pos.StopLoss
	}
	return price >= *pos.StopLoss
}

// nextTPIndex returns the first unhit ladder level whose price has been
// crossed, in index order, or -1.
func nextTPIndex(pos *account.Position, price float64) int {
	for i, lvl := range pos.TPLevels {
		if lvl.Hit {
			continue
		}
		if pos.Side == market.Long && price >= lvl.Price {
			return i
		}
		if pos.Side == market.Short && price <= lvl.Price {
			return i
		}
	}
	return -1
}

func openAmount(acct *account.Account) float64 {
	if acct.OpenPosition != nil {
		return acct.OpenPosition.Amount
	}
	return 0
}
