package steuerkern

import (
	"github.com/shopspring/decimal"
	"github.com/tholzer/steuerkern/date"
)

// Split is a single split/reverse-split event for a symbol: ratio is
// shares-after per share-before (2 for a 2:1 split, 0.5 for a 1:2 reverse
// split).
type Split struct {
	Date  date.Date
	Ratio Quantity
}

// PriceOracle is the historical-price-and-split collaborator injected into
// the kernel's constructor, never a global singleton. It is read-only from
// the kernel's perspective; any caching is the implementation's concern and
// is not part of the accounting invariants.
type PriceOracle interface {
	// ClosePrice returns the split-adjusted close on date, or the latest
	// prior trading day within a 30-day lookback window; nil if the ticker
	// is unknown.
	ClosePrice(symbol string, on date.Date) *Money

	// Splits returns the sorted list of splits recorded for symbol.
	Splits(symbol string) []Split

	// LatestClose returns the most recent known close for symbol, or nil.
	LatestClose(symbol string) *Money

	// IsHistoric reports whether price agrees with the oracle's
	// split-adjusted close within 5% relative tolerance. If the oracle has
	// no data for symbol, it returns (true, nil): such a price is treated
	// as already historic. The second return value, when non-nil, is the
	// oracle close price that was compared against.
	IsHistoric(price Money, symbol string, on date.Date) (bool, *Money)
}

const (
	oracleLookbackDays    = 30
	historicToleranceRate = "0.05" // 5% relative tolerance
)

// DefaultIsHistoric implements the tolerance check in terms of
// ClosePrice, so a PriceOracle implementation only needs to provide
// ClosePrice, Splits and LatestClose; it is used by both the Fixed test
// double and the HTTP-backed oracle.
func DefaultIsHistoric(o PriceOracle, price Money, symbol string, on date.Date) (bool, *Money) {
	close := o.ClosePrice(symbol, on)
	if close == nil {
		return true, nil
	}
	tolerance := decimal.RequireFromString(historicToleranceRate)
	diff := price.value.Sub(close.value).Abs()
	limit := close.value.Abs().Mul(tolerance)
	return diff.LessThanOrEqual(limit), close
}
