// Package oracle provides implementations of steuerkern.PriceOracle: Fixed,
// an in-memory test double, and HTTP, a disk-cached live adapter.
package oracle

import (
	"sort"

	"github.com/tholzer/steuerkern"
	"github.com/tholzer/steuerkern/date"
)

// Fixed is an in-memory PriceOracle test double, injected directly with
// the closes and splits a test wants to see, rather than fetched live.
type Fixed struct {
	closes map[string]*date.History[float64]
	splits map[string][]steuerkern.Split
	curr   map[string]string // symbol -> currency, for ClosePrice's Money result
}

// NewFixed creates an empty Fixed oracle.
func NewFixed() *Fixed {
	return &Fixed{
		closes: make(map[string]*date.History[float64]),
		splits: make(map[string][]steuerkern.Split),
		curr:   make(map[string]string),
	}
}

// SetClose records a close price for symbol on d, in currency.
func (f *Fixed) SetClose(symbol string, d date.Date, close float64, currency string) *Fixed {
	h, ok := f.closes[symbol]
	if !ok {
		h = &date.History[float64]{}
		f.closes[symbol] = h
	}
	h.Append(d, close)
	f.curr[symbol] = currency
	return f
}

// AddSplit records a split for symbol.
func (f *Fixed) AddSplit(symbol string, d date.Date, ratio steuerkern.Quantity) *Fixed {
	f.splits[symbol] = append(f.splits[symbol], steuerkern.Split{Date: d, Ratio: ratio})
	sort.Slice(f.splits[symbol], func(i, j int) bool { return f.splits[symbol][i].Date.Before(f.splits[symbol][j].Date) })
	return f
}

const oracleLookbackDays = 30

func (f *Fixed) ClosePrice(symbol string, on date.Date) *steuerkern.Money {
	h, ok := f.closes[symbol]
	if !ok {
		return nil
	}
	at, v, found := h.ValueAsOfWithDate(on)
	if !found || at.Days(on) > oracleLookbackDays {
		return nil
	}
	m := steuerkern.M(v, f.curr[symbol])
	return &m
}

func (f *Fixed) Splits(symbol string) []steuerkern.Split { return f.splits[symbol] }

func (f *Fixed) LatestClose(symbol string) *steuerkern.Money {
	h, ok := f.closes[symbol]
	if !ok {
		return nil
	}
	_, v := h.Latest()
	m := steuerkern.M(v, f.curr[symbol])
	return &m
}

func (f *Fixed) IsHistoric(price steuerkern.Money, symbol string, on date.Date) (bool, *steuerkern.Money) {
	return steuerkern.DefaultIsHistoric(f, price, symbol, on)
}
