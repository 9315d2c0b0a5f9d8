package market

import (
	"fmt"
	"strings"
)

// Signal is the trend-following directive supplied by the feed each tick.
type Signal string

const (
	Buy  Signal = "Buy"
	Sell Signal = "Sell"
	Hold Signal = "Hold"
)

// ParseSignal normalizes and validates a signal string. Anything outside
// Buy/Sell/Hold is a validation error.
func ParseSignal(s string) (Signal, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	case "hold":
		return Hold, nil
	}
	return "", fmt.Errorf("%w: unknown signal %q", ErrValidation, s)
}

// Side is the direction of an open position.
type Side string

const (
	Long  Side = "LONG"
	Short Side = "SHORT"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Long {
		return Short
	}
	return Long
}
