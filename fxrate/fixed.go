// Package fxrate provides implementations of steuerkern.FXRateProvider:
// Fixed, an in-memory test double, and Bundesbank, a live adapter with an
// in-memory cache, grounded on the ECB/Bundesbank daily reference-rate series.
package fxrate

import (
	"github.com/shopspring/decimal"
	"github.com/tholzer/steuerkern/date"
)

// Fixed is an in-memory FXRateProvider test double.
type Fixed struct {
	domestic string
	rates    map[string]*date.History[float64]
}

// NewFixed creates a Fixed provider for the given domestic currency.
func NewFixed(domesticCurrency string) *Fixed {
	return &Fixed{domestic: domesticCurrency, rates: make(map[string]*date.History[float64])}
}

// SetRate records the foreign-units-per-domestic-unit rate for currency on
// d.
func (f *Fixed) SetRate(currency string, d date.Date, rate float64) *Fixed {
	h, ok := f.rates[currency]
	if !ok {
		h = &date.History[float64]{}
		f.rates[currency] = h
	}
	h.Append(d, rate)
	return f
}

func (f *Fixed) DomesticCurrency() string { return f.domestic }

func (f *Fixed) DailyRate(currency string, on date.Date) (decimal.Decimal, error) {
	if currency == f.domestic {
		return decimal.NewFromInt(1), nil
	}
	h, ok := f.rates[currency]
	if !ok {
		return decimal.Decimal{}, newRateMissing(currency, on)
	}
	for lag := 0; lag <= 7; lag++ {
		if v, found := h.Get(on.Add(lag)); found {
			return decimal.NewFromFloat(v), nil
		}
	}
	return decimal.Decimal{}, newRateMissing(currency, on)
}

func (f *Fixed) MonthlyRate(currency string, year, month int) (decimal.Decimal, error) {
	if currency == f.domestic {
		return decimal.NewFromInt(1), nil
	}
	h, ok := f.rates[currency]
	if !ok {
		return decimal.Decimal{}, newRateMissing(currency, date.New(year, timeMonth(month), 1))
	}
	sum := decimal.Zero
	count := 0
	for d, v := range h.Values() {
		if d.Year() == year && int(d.Month()) == month {
			sum = sum.Add(decimal.NewFromFloat(v))
			count++
		}
	}
	if count == 0 {
		return decimal.Decimal{}, newRateMissing(currency, date.New(year, timeMonth(month), 1))
	}
	return sum.Div(decimal.NewFromInt(int64(count))), nil
}

func (f *Fixed) Supported() []string {
	out := make([]string, 0, len(f.rates))
	for k := range f.rates {
		out = append(out, k)
	}
	return out
}
