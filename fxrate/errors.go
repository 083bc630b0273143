package fxrate

import (
	"fmt"
	"time"
)

// RateMissingError mirrors steuerkern.RateMissingError's shape; it is kept
// distinct here so the fxrate package does not import steuerkern (its
// types satisfy steuerkern.FXRateProvider without an import).
type RateMissingError struct {
	Currency string
	Date     string
}

func (e *RateMissingError) Error() string {
	return fmt.Sprintf("no FX rate for %s on or after %s within lookahead window", e.Currency, e.Date)
}

func newRateMissing(currency string, d fmt.Stringer) error {
	return &RateMissingError{Currency: currency, Date: d.String()}
}

func timeMonth(m int) time.Month { return time.Month(m) }
