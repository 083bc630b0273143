package steuerkern

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoney_AddMismatchedCurrencyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Add() across currencies did not panic")
		}
	}()
	M(1, "USD").Add(M(1, "EUR"))
}

func TestMoney_AddToleratesUnsetCurrency(t *testing.T) {
	got := M(1, "").Add(M(2, "USD"))
	if got.Currency() != "USD" {
		t.Errorf("Currency() = %q, want USD", got.Currency())
	}
	if !got.Equal(M(3, "USD")) {
		t.Errorf("Add() = %v, want 3 USD", got)
	}
}

type moneyJSON struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

func TestMoney_MarshalJSONRoundsToFractionDigits(t *testing.T) {
	m, err := ParseMoney("1.004", "USD")
	if err != nil {
		t.Fatalf("ParseMoney() error = %v", err)
	}
	b, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	var got moneyJSON
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal(%s) error = %v", b, err)
	}
	if got.Currency != "USD" || !got.Amount.Equal(decimal.RequireFromString("1.00")) {
		t.Errorf("got %+v, want currency USD, amount 1.00 (rounded to two fraction digits)", got)
	}
}

func TestMoney_ExactSkipsRounding(t *testing.T) {
	m, err := ParseMoney("1.0055", "USD")
	if err != nil {
		t.Fatalf("ParseMoney() error = %v", err)
	}
	b, err := m.Exact().MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	var got moneyJSON
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal(%s) error = %v", b, err)
	}
	if !got.Amount.Equal(decimal.RequireFromString("1.0055")) {
		t.Errorf("Exact() amount = %v, want 1.0055 (unrounded)", got.Amount)
	}
}

func TestMoney_SignedString(t *testing.T) {
	if got := M(5, "USD").SignedString(); got[0] != '+' {
		t.Errorf("SignedString(5) = %q, want leading +", got)
	}
	if got := M(0, "USD").SignedString(); got != "-" {
		t.Errorf("SignedString(0) = %q, want -", got)
	}
	neg := M(-5, "USD").SignedString()
	if len(neg) == 0 || neg[0] != '-' {
		t.Errorf("SignedString(-5) = %q, want leading -", neg)
	}
}

func TestMoney_DivByZeroRate(t *testing.T) {
	_, err := M(100, "USD").DivRate(Zero.value, "EUR")
	if err == nil {
		t.Fatalf("DivRate(0) error = nil, want ArithmeticError")
	}
}
