package steuerkern

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents an exact monetary value tagged with its currency. All
// accounting arithmetic happens on the underlying decimal.Decimal; rounding
// is applied only at presentation boundaries (String, MarshalJSON), never
// internally.
type Money struct {
	value      decimal.Decimal
	cur        string
	fractional bool // true to persist with full, unrounded digits
}

// M constructs a Money value in the given currency from any numeric Go
// type or an existing decimal.Decimal.
func M[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// currency resolves the go-money Currency record for this Money's code,
// used for fraction-digit aware formatting and rounding.
func (m Money) currency() money.Currency {
	return *money.New(0, m.cur).Currency()
}

// String returns the value formatted using its currency's conventional
// fraction digits and symbol.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString is like String but prefixes a "+" for positive amounts and
// renders a bare "-" for zero, used in report line-items.
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) Currency() string                { return m.cur }
func (m Money) Decimal() decimal.Decimal        { return m.value }
func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) LessThanOrEqual(n Money) bool    { return m.value.LessThanOrEqual(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Abs() Money                      { return Money{value: m.value.Abs(), cur: m.cur} }
func (m Money) Mul(q Quantity) Money            { return Money{value: m.value.Mul(q.value), cur: m.cur} }

// Div divides a Money by a Quantity, e.g. total fees / lot quantity to
// derive a per-unit buy_cost. Div follows decimal.Decimal's convention and
// panics when q is zero; it returns no error.
func (m Money) Div(q Quantity) Money { return Money{value: m.value.Div(q.value), cur: m.cur} }

// DivRate divides a Money by a plain decimal FX rate, yielding a Money in
// the domestic currency (the rate is foreign-units-per-domestic-unit).
func (m Money) DivRate(rate decimal.Decimal, domesticCurrency string) (Money, error) {
	if rate.IsZero() {
		return Money{}, &ArithmeticError{Op: "division by zero FX rate"}
	}
	return Money{value: m.value.Div(rate), cur: domesticCurrency}, nil
}

// DivPrice divides a Money amount by a Money price of the same currency,
// yielding the Quantity that price buys.
func (m Money) DivPrice(price Money) Quantity { return Quantity{value: m.value.Div(price.value)} }

// Add adds two Moneys. Currency mismatches panic: the kernel never adds
// across currencies except through an explicit FX conversion.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }

// Sub subtracts two Moneys, see Add.
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// cur resolves the shared currency of two Moneys, tolerating an
// unset ("") currency on either side, and panics on a genuine mismatch.
func cur(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch: " + a.cur + " != " + b.cur)
	}
	return a.cur
}

// Exact returns a copy of m that marshals with full, unrounded precision
// instead of the currency's conventional fraction digits.
func (m Money) Exact() Money {
	m.fractional = true
	return m
}

func (m Money) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("currency", m.cur)
	rounded := m.value
	if !m.fractional {
		rounded = m.value.Round(int32(m.currency().Fraction))
	}
	w.Append("amount", rounded)
	return w.MarshalJSON()
}
