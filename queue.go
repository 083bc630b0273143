package steuerkern

import (
	"github.com/tholzer/steuerkern/date"
)

// ShareLot is a holding of Quantity shares of Symbol acquired on BuyDate at
// BuyPrice per share in Currency.
type ShareLot struct {
	Symbol                string
	Quantity              Quantity
	BuyDate               date.Date
	BuyPrice              Money
	Source                string
	BuyCost               *Money // per-unit fee amortised over the lot, optional
	OriginalBuyPrice      Money  // pre-split price, audit only, never read by reports
	CumulativeSplitFactor Quantity
}

// CashLot is a holding of Quantity units of Currency acquired on BuyDate.
// TaxFree marks cash originating from dividends or RSU/ESPP bonus
// components, exempt from the speculative-period rule regardless of
// holding period.
type CashLot struct {
	Currency string
	Quantity Quantity
	BuyDate  date.Date
	Source   string
	TaxFree  bool
}

// DualMoney carries a value computed under both FX valuation bases;
// the report mode selects one at presentation.
type DualMoney struct {
	Daily   Money
	Monthly Money
}

// SoldShareLot augments a ShareLot with its disposal and, later, its
// domestic-currency valuation.
type SoldShareLot struct {
	ShareLot
	SellDate  date.Date
	SellPrice Money
	SellCost  *Money // per-unit fee amortised over the lot, optional

	BuyPriceDom  DualMoney
	SellPriceDom DualMoney
	CostDom      DualMoney
	GainDom      DualMoney
}

// TaxStatus classifies a sold cash lot for the speculative-period rule.
type TaxStatus int

const (
	Taxable TaxStatus = iota
	TaxFreeHolding
	TaxFreeOrigin
)

func (s TaxStatus) String() string {
	switch s {
	case TaxFreeHolding:
		return "TaxFreeHolding"
	case TaxFreeOrigin:
		return "TaxFreeOrigin"
	default:
		return "Taxable"
	}
}

// SoldCashLot augments a CashLot with its disposal and domestic-currency
// valuation. TaxStatus is populated by the report consolidator, not
// by the kernel.
type SoldCashLot struct {
	CashLot
	SellDate date.Date

	BuyPriceDom  DualMoney
	SellPriceDom DualMoney
	GainDom      DualMoney
	TaxStatus    TaxStatus
}

// ShareQueue is the FIFO store of ShareLots for a single symbol.
// Lots are kept ordered non-decreasingly by BuyDate (invariant I1).
type ShareQueue struct {
	Symbol string
	lots   []ShareLot
	total  Quantity
}

// NewShareQueue creates an empty share queue for symbol.
func NewShareQueue(symbol string) *ShareQueue { return &ShareQueue{Symbol: symbol} }

// Push inserts lot keeping the queue's date ordering; on ties it is
// appended after existing same-date lots (stable).
func (q *ShareQueue) Push(lot ShareLot) {
	i := len(q.lots)
	for i > 0 && q.lots[i-1].BuyDate.After(lot.BuyDate) {
		i--
	}
	q.lots = append(q.lots, ShareLot{})
	copy(q.lots[i+1:], q.lots[i:])
	q.lots[i] = lot
	q.total = q.total.Add(lot.Quantity)
}

// IsEmpty reports whether the queue holds no lots.
func (q *ShareQueue) IsEmpty() bool { return len(q.lots) == 0 }

// TotalQuantity returns the queue's cached total (invariant I4).
func (q *ShareQueue) TotalQuantity() Quantity { return q.total }

// Peek returns the head lot without consuming it.
func (q *ShareQueue) Peek() (ShareLot, bool) {
	if len(q.lots) == 0 {
		return ShareLot{}, false
	}
	return q.lots[0], true
}

// Pop removes exactly qty units from the head of the queue, spanning as
// many lots as needed, and returns one SoldShareLot per lot touched,
// stamped with the given sell metadata.
func (q *ShareQueue) Pop(qty Quantity, sellPrice Money, sellDate date.Date, sellCost *Money) ([]SoldShareLot, error) {
	if qty.value.Abs().LessThanOrEqual(epsilonZero) {
		return nil, nil
	}
	if qty.IsNegative() {
		return nil, &NegativeQuantityError{Key: q.Symbol, Quantity: qty.String()}
	}
	if q.IsEmpty() {
		return nil, &EmptyQueueError{Key: q.Symbol, Required: qty.String()}
	}
	if qty.GreaterThan(q.total) {
		return nil, &OverdrawError{Key: q.Symbol, Required: qty.String(), Available: q.total.String()}
	}
	if head := q.lots[0]; head.BuyDate.After(sellDate) {
		return nil, &NotYetAcquiredError{Key: q.Symbol, BuyDate: head.BuyDate.String(), SellDate: sellDate.String()}
	}

	var sold []SoldShareLot
	remaining := qty
	consumed := 0
	for consumed < len(q.lots) && remaining.IsPositive() {
		head := q.lots[consumed]
		if head.BuyDate.After(sellDate) {
			return nil, &NotYetAcquiredError{Key: q.Symbol, BuyDate: head.BuyDate.String(), SellDate: sellDate.String()}
		}
		if head.Quantity.GreaterThan(remaining) {
			sold = append(sold, SoldShareLot{
				ShareLot:  withQuantity(head, remaining),
				SellDate:  sellDate,
				SellPrice: sellPrice,
				SellCost:  sellCost,
			})
			q.lots[consumed].Quantity = head.Quantity.Sub(remaining)
			remaining = Zero
			break
		}
		sold = append(sold, SoldShareLot{
			ShareLot:  head,
			SellDate:  sellDate,
			SellPrice: sellPrice,
			SellCost:  sellCost,
		})
		remaining = remaining.Sub(head.Quantity)
		consumed++
	}
	q.lots = q.lots[consumed:]
	q.total = q.total.Sub(qty)
	q.clearDust()
	return sold, nil
}

// withQuantity returns a shallow copy of lot with its quantity replaced,
// used to stamp a partially-consumed lot with sell metadata without
// mutating the original.
func withQuantity(lot ShareLot, qty Quantity) ShareLot {
	lot.Quantity = qty
	return lot
}

// clearDust discards all remaining lots if the residual total falls below
// one whole unit of the smallest display denomination, preventing
// perpetual dust entries that never fully clear.
func (q *ShareQueue) clearDust() {
	if !q.IsEmpty() && q.total.value.LessThan(dustThreshold) {
		q.lots = nil
		q.total = Zero
	}
}

// ApplySplit multiplies every lot's quantity by ratio and divides its
// buy price by ratio, recording the cumulative factor on each lot.
// Order is preserved; the total is recomputed.
func (q *ShareQueue) ApplySplit(ratio Quantity) {
	var total Quantity
	for i, lot := range q.lots {
		q.lots[i].Quantity = lot.Quantity.Mul(ratio)
		q.lots[i].BuyPrice = Money{value: lot.BuyPrice.value.Div(ratio.value), cur: lot.BuyPrice.cur}
		factor := lot.CumulativeSplitFactor
		if factor.IsZero() {
			factor = Unit
		}
		q.lots[i].CumulativeSplitFactor = factor.Mul(ratio)
		if lot.OriginalBuyPrice.IsZero() {
			q.lots[i].OriginalBuyPrice = lot.BuyPrice
		}
		total = total.Add(q.lots[i].Quantity)
	}
	q.total = total
}

// CashQueue is the FIFO store of CashLots for a single non-domestic
// currency.
type CashQueue struct {
	Currency string
	lots     []CashLot
	total    Quantity
}

// NewCashQueue creates an empty cash queue for currency.
func NewCashQueue(currency string) *CashQueue { return &CashQueue{Currency: currency} }

func (q *CashQueue) Push(lot CashLot) {
	i := len(q.lots)
	for i > 0 && q.lots[i-1].BuyDate.After(lot.BuyDate) {
		i--
	}
	q.lots = append(q.lots, CashLot{})
	copy(q.lots[i+1:], q.lots[i:])
	q.lots[i] = lot
	q.total = q.total.Add(lot.Quantity)
}

func (q *CashQueue) IsEmpty() bool            { return len(q.lots) == 0 }
func (q *CashQueue) TotalQuantity() Quantity  { return q.total }
func (q *CashQueue) Peek() (CashLot, bool) {
	if len(q.lots) == 0 {
		return CashLot{}, false
	}
	return q.lots[0], true
}

// Pop removes qty units from the head of the queue. Unlike ShareQueue, an
// overdraw within cashOverdrawTolerance (one unit) silently clamps to the
// available total instead of failing, to absorb ordinary broker-rounding
// drift; the caller is expected to surface a ClampedOverdraw warning
// when clamped is true.
func (q *CashQueue) Pop(qty Quantity, sellDate date.Date) (sold []SoldCashLot, clamped bool, err error) {
	if qty.value.Abs().LessThanOrEqual(epsilonZero) {
		return nil, false, nil
	}
	if qty.IsNegative() {
		return nil, false, &NegativeQuantityError{Key: q.Currency, Quantity: qty.String()}
	}
	if q.IsEmpty() {
		return nil, false, &EmptyQueueError{Key: q.Currency, Required: qty.String()}
	}
	if qty.GreaterThan(q.total) {
		shortfall := qty.Sub(q.total)
		if shortfall.value.GreaterThan(cashOverdrawTolerance) {
			return nil, false, &OverdrawError{Key: q.Currency, Required: qty.String(), Available: q.total.String()}
		}
		qty = q.total
		clamped = true
	}
	if head := q.lots[0]; head.BuyDate.After(sellDate) {
		return nil, false, &NotYetAcquiredError{Key: q.Currency, BuyDate: head.BuyDate.String(), SellDate: sellDate.String()}
	}

	remaining := qty
	consumed := 0
	for consumed < len(q.lots) && remaining.IsPositive() {
		head := q.lots[consumed]
		if head.BuyDate.After(sellDate) {
			return nil, false, &NotYetAcquiredError{Key: q.Currency, BuyDate: head.BuyDate.String(), SellDate: sellDate.String()}
		}
		if head.Quantity.GreaterThan(remaining) {
			sold = append(sold, SoldCashLot{
				CashLot:  withCashQuantity(head, remaining),
				SellDate: sellDate,
			})
			q.lots[consumed].Quantity = head.Quantity.Sub(remaining)
			remaining = Zero
			break
		}
		sold = append(sold, SoldCashLot{CashLot: head, SellDate: sellDate})
		remaining = remaining.Sub(head.Quantity)
		consumed++
	}
	q.lots = q.lots[consumed:]
	q.total = q.total.Sub(qty)
	q.clearDust()
	return sold, clamped, nil
}

func withCashQuantity(lot CashLot, qty Quantity) CashLot {
	lot.Quantity = qty
	return lot
}

func (q *CashQueue) clearDust() {
	if !q.IsEmpty() && q.total.value.LessThan(dustThreshold) {
		q.lots = nil
		q.total = Zero
	}
}

// DomesticCashBucket is the single aggregating bucket used for the
// domestic currency's cash, per invariant I3: it has no date ordering and
// is never subject to a stock split.
type DomesticCashBucket struct {
	Currency string
	Amount   Quantity
}

// NewDomesticCashBucket creates a zero-quantity sentinel bucket, the state
// a fresh kernel (or one after reset) starts from.
func NewDomesticCashBucket(currency string) *DomesticCashBucket {
	return &DomesticCashBucket{Currency: currency}
}

func (b *DomesticCashBucket) Push(qty Quantity) { b.Amount = b.Amount.Add(qty) }

// Pop removes qty units, clamping within the same one-unit broker-rounding
// tolerance as CashQueue.
func (b *DomesticCashBucket) Pop(qty Quantity) (clamped bool, err error) {
	if qty.value.Abs().LessThanOrEqual(epsilonZero) {
		return false, nil
	}
	if qty.IsNegative() {
		return false, &NegativeQuantityError{Key: b.Currency, Quantity: qty.String()}
	}
	if qty.GreaterThan(b.Amount) {
		shortfall := qty.Sub(b.Amount)
		if shortfall.value.GreaterThan(cashOverdrawTolerance) {
			return false, &OverdrawError{Key: b.Currency, Required: qty.String(), Available: b.Amount.String()}
		}
		b.Amount = Zero
		return true, nil
	}
	b.Amount = b.Amount.Sub(qty)
	return false, nil
}
