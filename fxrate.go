package steuerkern

import (
	"github.com/shopspring/decimal"
	"github.com/tholzer/steuerkern/date"
)

// FXRateProvider is the reference-rate collaborator injected into the
// kernel's constructor. It expresses foreign units per one domestic
// unit, so a foreign amount divided by the rate is its domestic value. The
// domestic currency always resolves to rate 1 without consulting
// storage.
type FXRateProvider interface {
	// DomesticCurrency is the single currency all FX application converts
	// into.
	DomesticCurrency() string

	// DailyRate returns the foreign-units-per-domestic-unit rate for
	// currency on date. If the exact date is absent (non-trading day,
	// holiday), implementations advance day-by-day up to 7 days before
	// failing with RateMissingError.
	DailyRate(currency string, on date.Date) (decimal.Decimal, error)

	// MonthlyRate returns the unweighted mean of that month's daily rates.
	MonthlyRate(currency string, year int, month int) (decimal.Decimal, error)

	// Supported returns the set of currencies recognised by the provider,
	// not including the domestic currency (which is always accepted).
	Supported() []string
}

// RateMode selects which of the two FX valuation bases a report
// presents.
type RateMode int

const (
	RateModeDaily RateMode = iota
	RateModeMonthly
)

func (m RateMode) String() string {
	if m == RateModeMonthly {
		return "monthly"
	}
	return "daily"
}
