package market

import (
	"fmt"
	"time"
)

// TickInput is one invocation of the core update loop: a signal plus the
// price context it was derived from. ATR and TrailingStop come from the
// indicator side of the feed.
type TickInput struct {
	Signal       Signal
	Price        float64
	ATR          float64
	TrailingStop float64
	Strategy     string
	Time         time.Time
}

// Validate rejects inputs that must never reach the state machine and
// canonicalizes the signal, so case variants like "buy" match the Signal
// constants exactly downstream.
func (t *TickInput) Validate() error {
	sig, err := ParseSignal(string(t.Signal))
	if err != nil {
		return err
	}
	t.Signal = sig
	if t.Price <= 0 {
		return fmt.Errorf("%w: price must be positive, got %v", ErrValidation, t.Price)
	}
	if t.ATR < 0 {
		return fmt.Errorf("%w: atr must be non-negative, got %v", ErrValidation, t.ATR)
	}
	return nil
}
