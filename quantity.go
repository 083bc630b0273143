package steuerkern

import "github.com/shopspring/decimal"

// newDecimal is a convenient factory for decimal.Decimal from any of the
// numeric kinds the domain's constructors accept.
func newDecimal[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt32(int32(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// Quantity is an exact decimal count of shares or currency units.
type Quantity struct {
	value decimal.Decimal
}

// Q constructs a Quantity from any numeric Go type or an existing
// decimal.Decimal.
func Q[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Quantity {
	return Quantity{value: newDecimal(value)}
}

// Zero and Unit are the zero and unit Quantity constants.
var (
	Zero = Quantity{value: decimal.Zero}
	Unit = Quantity{value: decimal.NewFromInt(1)}
)

func (t Quantity) Equal(p Quantity) bool           { return t.value.Equal(p.value) }
func (t Quantity) LessThan(p Quantity) bool        { return t.value.LessThan(p.value) }
func (t Quantity) LessThanOrEqual(p Quantity) bool { return t.value.LessThanOrEqual(p.value) }
func (t Quantity) Div(p Quantity) Quantity         { return Quantity{value: t.value.Div(p.value)} }
func (t Quantity) Mul(p Quantity) Quantity         { return Quantity{value: t.value.Mul(p.value)} }
func (t Quantity) Add(p Quantity) Quantity         { return Quantity{value: t.value.Add(p.value)} }
func (t Quantity) Sub(p Quantity) Quantity         { return Quantity{value: t.value.Sub(p.value)} }
func (t Quantity) Abs() Quantity                   { return Quantity{value: t.value.Abs()} }
func (t Quantity) Neg() Quantity                   { return Quantity{value: t.value.Neg()} }
func (t Quantity) GreaterThan(p Quantity) bool     { return t.value.GreaterThan(p.value) }
func (t Quantity) IsNegative() bool                { return t.value.IsNegative() }
func (t Quantity) IsPositive() bool                { return t.value.IsPositive() }
func (t Quantity) IsZero() bool                    { return t.value.IsZero() }
func (q Quantity) String() string                  { return q.value.String() }

// DivDecimal divides by a plain decimal.Decimal, failing with
// ArithmeticError on division by zero.
func (t Quantity) DivDecimal(d decimal.Decimal) (Quantity, error) {
	if d.IsZero() {
		return Quantity{}, &ArithmeticError{Op: "division by zero quantity"}
	}
	return Quantity{value: t.value.Div(d)}, nil
}

// Round quantises the quantity to the given number of decimal places using
// half-up rounding.
func (t Quantity) Round(places int32) Quantity {
	return Quantity{value: t.value.Round(places)}
}

func (t Quantity) MarshalJSON() ([]byte, error) {
	return t.value.MarshalJSON()
}
func (t *Quantity) UnmarshalJSON(b []byte) error {
	return t.value.UnmarshalJSON(b)
}
