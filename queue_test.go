package steuerkern

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tholzer/steuerkern/date"
)

func qstr(s string) Quantity { return Q(decimal.RequireFromString(s)) }

func TestShareQueue_PushKeepsDateOrder(t *testing.T) {
	q := NewShareQueue("ACME")
	q.Push(ShareLot{Symbol: "ACME", Quantity: Q(10), BuyDate: date.New(2024, time.March, 1)})
	q.Push(ShareLot{Symbol: "ACME", Quantity: Q(5), BuyDate: date.New(2024, time.January, 1)})
	q.Push(ShareLot{Symbol: "ACME", Quantity: Q(7), BuyDate: date.New(2024, time.February, 1)})

	head, ok := q.Peek()
	if !ok {
		t.Fatalf("Peek() ok = false, want true")
	}
	if head.BuyDate != date.New(2024, time.January, 1) {
		t.Errorf("head.BuyDate = %v, want 2024-01-01", head.BuyDate)
	}
	if !q.TotalQuantity().Equal(Q(22)) {
		t.Errorf("TotalQuantity() = %v, want 22", q.TotalQuantity())
	}
}

func TestShareQueue_PopSpansMultipleLots(t *testing.T) {
	q := NewShareQueue("ACME")
	q.Push(ShareLot{Symbol: "ACME", Quantity: Q(10), BuyDate: date.New(2024, time.January, 1), BuyPrice: M(100, "USD")})
	q.Push(ShareLot{Symbol: "ACME", Quantity: Q(10), BuyDate: date.New(2024, time.February, 1), BuyPrice: M(110, "USD")})

	sold, err := q.Pop(Q(15), M(150, "USD"), date.New(2024, time.June, 1), nil)
	if err != nil {
		t.Fatalf("Pop() error = %v", err)
	}
	if len(sold) != 2 {
		t.Fatalf("Pop() returned %d lots, want 2", len(sold))
	}
	if !sold[0].Quantity.Equal(Q(10)) || !sold[1].Quantity.Equal(Q(5)) {
		t.Errorf("Pop() quantities = %v, %v; want 10, 5", sold[0].Quantity, sold[1].Quantity)
	}
	if !q.TotalQuantity().Equal(Q(5)) {
		t.Errorf("TotalQuantity() after Pop = %v, want 5", q.TotalQuantity())
	}
}

func TestShareQueue_PopOverdrawFails(t *testing.T) {
	q := NewShareQueue("ACME")
	q.Push(ShareLot{Symbol: "ACME", Quantity: Q(5), BuyDate: date.New(2024, time.January, 1)})

	_, err := q.Pop(Q(10), M(1, "USD"), date.New(2024, time.June, 1), nil)
	var overdraw *OverdrawError
	if !errors.As(err, &overdraw) {
		t.Fatalf("Pop() error = %v, want *OverdrawError", err)
	}
}

func TestShareQueue_PopBeforeAcquisitionFails(t *testing.T) {
	q := NewShareQueue("ACME")
	q.Push(ShareLot{Symbol: "ACME", Quantity: Q(5), BuyDate: date.New(2024, time.June, 1)})

	_, err := q.Pop(Q(1), M(1, "USD"), date.New(2024, time.January, 1), nil)
	var notYet *NotYetAcquiredError
	if !errors.As(err, &notYet) {
		t.Fatalf("Pop() error = %v, want *NotYetAcquiredError", err)
	}
}

func TestShareQueue_ApplySplitScalesQuantityAndPrice(t *testing.T) {
	q := NewShareQueue("ACME")
	q.Push(ShareLot{Symbol: "ACME", Quantity: Q(10), BuyDate: date.New(2024, time.January, 1), BuyPrice: M(100, "USD")})

	q.ApplySplit(Q(2))

	lot, _ := q.Peek()
	if !lot.Quantity.Equal(Q(20)) {
		t.Errorf("Quantity after 2:1 split = %v, want 20", lot.Quantity)
	}
	if !lot.BuyPrice.Equal(M(50, "USD")) {
		t.Errorf("BuyPrice after 2:1 split = %v, want 50 USD", lot.BuyPrice)
	}
	if !lot.CumulativeSplitFactor.Equal(Q(2)) {
		t.Errorf("CumulativeSplitFactor = %v, want 2", lot.CumulativeSplitFactor)
	}
}

func TestShareQueue_ClearDustDropsResidual(t *testing.T) {
	q := NewShareQueue("ACME")
	q.Push(ShareLot{Symbol: "ACME", Quantity: Q(10), BuyDate: date.New(2024, time.January, 1)})

	if _, err := q.Pop(qstr("9.999"), M(1, "USD"), date.New(2024, time.June, 1), nil); err != nil {
		t.Fatalf("Pop() error = %v", err)
	}
	if !q.IsEmpty() {
		t.Errorf("IsEmpty() = false after dust-level Pop, want true")
	}
}

func TestCashQueue_PopClampsWithinTolerance(t *testing.T) {
	q := NewCashQueue("USD")
	q.Push(CashLot{Currency: "USD", Quantity: Q(100), BuyDate: date.New(2024, time.January, 1)})

	sold, clamped, err := q.Pop(qstr("100.5"), date.New(2024, time.June, 1))
	if err != nil {
		t.Fatalf("Pop() error = %v", err)
	}
	if !clamped {
		t.Errorf("clamped = false, want true for shortfall within tolerance")
	}
	if len(sold) != 1 || !sold[0].Quantity.Equal(Q(100)) {
		t.Errorf("Pop() sold = %v, want one lot of 100", sold)
	}
	if !q.IsEmpty() {
		t.Errorf("IsEmpty() = false after full clamp-drain, want true")
	}
}

func TestCashQueue_PopOverdrawBeyondToleranceFails(t *testing.T) {
	q := NewCashQueue("USD")
	q.Push(CashLot{Currency: "USD", Quantity: Q(100), BuyDate: date.New(2024, time.January, 1)})

	_, _, err := q.Pop(Q(110), date.New(2024, time.June, 1))
	var overdraw *OverdrawError
	if !errors.As(err, &overdraw) {
		t.Fatalf("Pop() error = %v, want *OverdrawError", err)
	}
}

func TestDomesticCashBucket_PopClampsWithinTolerance(t *testing.T) {
	b := NewDomesticCashBucket("EUR")
	b.Push(Q(50))

	clamped, err := b.Pop(qstr("50.5"))
	if err != nil {
		t.Fatalf("Pop() error = %v", err)
	}
	if !clamped {
		t.Errorf("clamped = false, want true")
	}
	if !b.Amount.IsZero() {
		t.Errorf("Amount after clamp = %v, want 0", b.Amount)
	}
}

func TestDomesticCashBucket_PopOverdrawBeyondToleranceFails(t *testing.T) {
	b := NewDomesticCashBucket("EUR")
	b.Push(Q(50))

	_, err := b.Pop(Q(60))
	var overdraw *OverdrawError
	if !errors.As(err, &overdraw) {
		t.Fatalf("Pop() error = %v, want *OverdrawError", err)
	}
}
