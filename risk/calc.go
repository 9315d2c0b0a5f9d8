package risk

import (
	"fmt"

	"trendbot/account"
	"trendbot/market"
)

// PositionSize returns the units to open for the given balance. Fixed mode
// always opens the configured size; fraction mode converts a balance
// fraction to units at the configured reference price, so size scales with
// the balance.
func (p *Policy) PositionSize(balance float64) (float64, error) {
	if balance <= 0 {
		return 0, fmt.Errorf("%w: cannot size a position with balance %.2f", market.ErrValidation, balance)
	}

	s := p.cfg.Sizing
	switch s.Mode {
	case "fraction":
		return balance * s.Fraction / s.ReferencePrice, nil
	default: // "fixed", enforced by config validation
		return s.FixedUnits, nil
	}
}

// StopLoss places the initial stop for a new position. The indicator's
// trailing-stop price is preferred when configured and usable; otherwise an
// ATR offset from entry. A stop that lands on the profit side of entry is
// corrected to the ATR offset, and rejected if that is still invalid.
func (p *Policy) StopLoss(entry float64, side market.Side, atr, indicatorStop float64) (float64, error) {
	c := p.cfg.StopLoss

	atrStop := entry - atr*c.ATRMultiplier
	if side == market.Short {
		atrStop = entry + atr*c.ATRMultiplier
	}

	stop := atrStop
	if c.UseIndicatorStop && indicatorStop > 0 {
		stop = indicatorStop
	}

	// The stop must sit on the loss side of entry.
	if (side == market.Long && stop >= entry) || (side == market.Short && stop <= entry) {
		stop = atrStop
	}
	if (side == market.Long && stop >= entry) || (side == market.Short && stop <= entry) {
		return 0, fmt.Errorf("%w: cannot place stop on loss side of entry %.2f (atr=%.4f, indicator=%.2f)",
			market.ErrValidation, entry, atr, indicatorStop)
	}

	return stop, nil
}

// TakeProfitLevels builds the exit ladder for a new position: levels at
// increasing distance from entry in the profit direction, each tagged with
// the percentage of the original amount it closes.
func (p *Policy) TakeProfitLevels(entry float64, side market.Side, atr float64) ([]account.TPLevel, error) {
	tp := p.cfg.TakeProfit
	if tp.Unit == "atr" && atr <= 0 {
		return nil, fmt.Errorf("%w: atr-based take-profit ladder needs a positive atr, got %v",
			market.ErrValidation, atr)
	}

	levels := make([]account.TPLevel, 0, len(tp.Levels))
	for i, lvl := range tp.Levels {
		dist := atr * lvl.Distance
		if tp.Unit == "percent" {
			dist = entry * lvl.Distance / 100
		}

		price := entry + dist
		if side == market.Short {
			price = entry - dist
		}

		name := lvl.Name
		if name == "" {
			name = fmt.Sprintf("TP%d", i+1)
		}

		levels = append(levels, account.TPLevel{
			Name:     name,
			Price:    price,
			ClosePct: lvl.ClosePct,
		})
	}
	return levels, nil
}

// TrailStop proposes a new trailing stop at the configured ATR distance
// behind price. It only ever ratchets in the trade's favor; the second
// return is false when no update is warranted. Callers invoke this only
// after the breakeven move.
func (p *Policy) TrailStop(price float64, side market.Side, current, atr float64) (float64, bool) {
	c := p.cfg.StopLoss
	if !c.TrailingEnabled {
		return 0, false
	}

	dist := atr * c.TrailingATRMult
	if dist <= 0 {
		return 0, false
	}

	if side == market.Long {
		if candidate := price - dist; candidate > current {
			return candidate, true
		}
		return 0, false
	}
	if candidate := price + dist; candidate < current {
		return candidate, true
	}
	return 0, false
}

// BreakevenStop returns the stop price that makes the remainder of the
// position risk-free: entry, nudged by the configured offset in the profit
// direction so fees do not turn breakeven into a small loss.
func (p *Policy) BreakevenStop(entry float64, side market.Side) float64 {
	off := p.cfg.StopLoss.BreakevenOffset
	if side == market.Short {
		return entry - off
	}
	return entry + off
}

// TrailingEnabled reports whether trailing-stop updates are configured.
func (p *Policy) TrailingEnabled() bool {
	return p.cfg.StopLoss.TrailingEnabled
}
