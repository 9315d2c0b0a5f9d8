// Package risk implements the risk policy: the gates checked before a new
// position opens, position sizing, stop and take-profit construction, and
// the rolling counters those gates read.
package risk

import (
	"fmt"
	"time"

	"trendbot/account"
	"trendbot/config"
)

// Violation is one failed gate.
type Violation struct {
	Code string
	Msg  string
}

// Decision is the outcome of the pre-trade gates. When not allowed,
// Violations lists every failing gate, first failure first.
type Decision struct {
	Allowed    bool
	Violations []Violation
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Reason returns the first violation message, or "" when allowed.
func (d Decision) Reason() string {
	if len(d.Violations) == 0 {
		return ""
	}
	return d.Violations[0].Msg
}

// Policy evaluates risk rules against account state. It carries no mutable
// state of its own; the rolling counters live in account.RiskState so they
// persist with the account document.
type Policy struct {
	cfg config.RiskConfig
}

// NewPolicy creates a Policy from the per-tick risk configuration.
func NewPolicy(cfg config.RiskConfig) *Policy {
	return &Policy{cfg: cfg}
}

// CanOpenTrade evaluates the capital gates against the current balance and
// counters. A blocked trade is a normal outcome, not an error.
func (p *Policy) CanOpenTrade(balance float64, state account.RiskState, now time.Time) Decision {
	d := Decision{Allowed: true}
	g := p.cfg.Gates

	if balance < g.MinBalance {
		d.add("MIN_BALANCE",
			fmt.Sprintf("balance %.2f below minimum %.2f", balance, g.MinBalance))
	}

	if g.MaxDailyLoss > 0 && state.Day == dayBucket(now) && state.DayRealized <= -g.MaxDailyLoss {
		d.add("DAILY_LOSS_LIMIT",
			fmt.Sprintf("day realized %.2f breaches daily loss limit %.2f", state.DayRealized, g.MaxDailyLoss))
	}

	if g.MaxConsecutiveLosses > 0 && state.ConsecutiveLosses >= g.MaxConsecutiveLosses {
		d.add("CONSECUTIVE_LOSSES",
			fmt.Sprintf("%d consecutive losses reached limit %d", state.ConsecutiveLosses, g.MaxConsecutiveLosses))
	}

	return d
}

// RecordTradeResult folds one realized P/L figure into the rolling counters:
// the UTC-day realized total and the consecutive-loss streak. Break-even
// results leave the streak untouched.
func RecordTradeResult(state *account.RiskState, profit float64, when time.Time) {
	day := dayBucket(when)
	if state.Day != day {
		state.Day = day
		state.DayRealized = 0
	}
	state.DayRealized += profit

	switch {
	case profit < 0:
		state.ConsecutiveLosses++
	case profit > 0:
		state.ConsecutiveLosses = 0
	}
}

// Status is a read-only snapshot of the policy counters for reporting.
type Status struct {
	ConsecutiveLosses  int     `json:"consecutive_losses"`
	Day                string  `json:"day"`
	DayRealized        float64 `json:"day_realized"`
	DailyLossLimitHit  bool    `json:"daily_loss_limit_hit"`
	LossStreakLimitHit bool    `json:"loss_streak_limit_hit"`
}

// Status reports the current counters and which limits they have tripped.
func (p *Policy) Status(state account.RiskState, now time.Time) Status {
	g := p.cfg.Gates
	return Status{
		ConsecutiveLosses: state.ConsecutiveLosses,
		Day:               state.Day,
		DayRealized:       state.DayRealized,
		DailyLossLimitHit: g.MaxDailyLoss > 0 &&
			state.Day == dayBucket(now) && state.DayRealized <= -g.MaxDailyLoss,
		LossStreakLimitHit: g.MaxConsecutiveLosses > 0 &&
			state.ConsecutiveLosses >= g.MaxConsecutiveLosses,
	}
}

func dayBucket(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
