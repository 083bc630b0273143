package steuerkern

import "github.com/shopspring/decimal"

// Tolerances and thresholds used across the queue and oracle comparisons.
var (
	// epsilonZero is the absolute tolerance below which a requested pop
	// quantity is treated as zero.
	epsilonZero = decimal.New(1, -10)
	// dustThreshold is the residual below which a queue's remaining lots
	// are discarded to prevent perpetual dust.
	dustThreshold = decimal.New(1, -2)
	// cashOverdrawTolerance is the broker-rounding tolerance within which a
	// cash-queue overdraw silently clamps instead of failing.
	cashOverdrawTolerance = decimal.NewFromInt(1)
)

// ParseQuantity parses a locale-agnostic numeric string (adapters are
// responsible for stripping thousand separators and currency glyphs)
// into a Quantity, failing with ParseError on malformed input.
func ParseQuantity(s string) (Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}, &ParseError{Input: s, Want: "decimal quantity"}
	}
	return Quantity{value: d}, nil
}

// ParseMoney is like ParseQuantity but tags the result with a currency.
func ParseMoney(s, currency string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, &ParseError{Input: s, Want: "decimal amount"}
	}
	return Money{value: d, cur: currency}, nil
}
