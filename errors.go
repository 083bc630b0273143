package steuerkern

import "fmt"

// ParseError reports that a decimal or date value could not be constructed
// from its textual form. Adapters are expected to catch this at the ingest
// boundary; the kernel itself never constructs values from raw text.
type ParseError struct {
	Input string
	Want  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q as %s", e.Input, e.Want)
}

// ArithmeticError reports an invalid arithmetic operation, such as division
// by zero.
type ArithmeticError struct {
	Op string
}

func (e *ArithmeticError) Error() string { return fmt.Sprintf("arithmetic error: %s", e.Op) }

// NegativeQuantityError is returned when a queue pop is requested with a
// negative quantity.
type NegativeQuantityError struct {
	Key      string
	Quantity string
}

func (e *NegativeQuantityError) Error() string {
	return fmt.Sprintf("negative quantity %s requested from queue %q", e.Quantity, e.Key)
}

// EmptyQueueError is returned when a pop is attempted on an empty queue.
type EmptyQueueError struct {
	Key      string
	Required string
}

func (e *EmptyQueueError) Error() string {
	return fmt.Sprintf("queue %q is empty, %s required", e.Key, e.Required)
}

// OverdrawError is returned when a pop exceeds the queue's total by more
// than the allowed rounding tolerance.
type OverdrawError struct {
	Key       string
	Required  string
	Available string
}

func (e *OverdrawError) Error() string {
	return fmt.Sprintf("queue %q overdrawn: requested %s, available %s", e.Key, e.Required, e.Available)
}

// NotYetAcquiredError is returned when the head lot of a queue was acquired
// after the requested sell date.
type NotYetAcquiredError struct {
	Key      string
	BuyDate  string
	SellDate string
}

func (e *NotYetAcquiredError) Error() string {
	return fmt.Sprintf("queue %q: head lot acquired %s, after sell date %s", e.Key, e.BuyDate, e.SellDate)
}

// RateMissingError is returned when an FX rate lookup cannot find a rate
// within its lookahead window.
type RateMissingError struct {
	Currency string
	Date     string
}

func (e *RateMissingError) Error() string {
	return fmt.Sprintf("no FX rate for %s on or after %s within lookahead window", e.Currency, e.Date)
}

// PriceOracleMissError reports that the price oracle has no data for a
// symbol. It is non-fatal during normalisation: the quoted price is treated
// as already historic.
type PriceOracleMissError struct {
	Symbol string
	Date   string
}

func (e *PriceOracleMissError) Error() string {
	return fmt.Sprintf("price oracle has no data for %s on %s", e.Symbol, e.Date)
}

// UnsupportedCurrencyError is returned when a currency is not recognised by
// the configured FX-rate provider.
type UnsupportedCurrencyError struct {
	Currency string
}

func (e *UnsupportedCurrencyError) Error() string {
	return fmt.Sprintf("unsupported currency %q", e.Currency)
}

// EventError wraps any kernel error with the index and description of the
// event being processed when it occurred. Index is the event's position in
// processing order (sorted by date and priority), not in the input slice.
type EventError struct {
	Index int
	Event Event
	Err   error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("event #%d (%s on %s): %v", e.Index, e.Event.What(), e.Event.When(), e.Err)
}

func (e *EventError) Unwrap() error { return e.Err }
