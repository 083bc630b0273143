package steuerkern

import (
	"errors"
	"testing"
)

func TestQuantity_Arithmetic(t *testing.T) {
	a, b := Q(10), Q(3)
	if got := a.Add(b); !got.Equal(Q(13)) {
		t.Errorf("Add() = %v, want 13", got)
	}
	if got := a.Sub(b); !got.Equal(Q(7)) {
		t.Errorf("Sub() = %v, want 7", got)
	}
	if got := a.Mul(b); !got.Equal(Q(30)) {
		t.Errorf("Mul() = %v, want 30", got)
	}
}

func TestQuantity_DivDecimalByZero(t *testing.T) {
	_, err := Q(10).DivDecimal(Zero.value)
	var arith *ArithmeticError
	if !errors.As(err, &arith) {
		t.Fatalf("DivDecimal(0) error = %v, want *ArithmeticError", err)
	}
}

func TestQuantity_ZeroAndUnit(t *testing.T) {
	if !Zero.IsZero() {
		t.Errorf("Zero.IsZero() = false")
	}
	if !Unit.Equal(Q(1)) {
		t.Errorf("Unit = %v, want 1", Unit)
	}
}
