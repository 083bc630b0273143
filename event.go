package steuerkern

import (
	"github.com/shopspring/decimal"
	"github.com/tholzer/steuerkern/date"
)

// Priority values fix the within-day processing order. Lower
// values run first. The ordering is the load-bearing correctness property
// of the whole kernel: it guarantees a same-day deposit lands before a
// same-day buy, a sell's proceeds are available before a same-day buy of
// the same currency, and a split never disturbs trades that closed earlier
// the same day.
const (
	PriorityVest = iota
	PriorityDividend
	PriorityTax
	PriorityMoneyDeposit
	PriorityConvertDomesticToForeign
	PrioritySell
	PriorityConvertForeignToForeign
	PriorityBuy
	PriorityConvertForeignToDomestic
	PriorityMoneyWithdrawal
	PriorityStockSplit
)

// Event is the tagged-variant interface implemented by every one of the ten
// event kinds. Dispatch in the kernel is an exhaustive type switch rather
// than virtual calls: an event kind unhandled by the switch panics at run
// time rather than being silently skipped.
type Event interface {
	What() string
	When() date.Date
	Priority() int
	MarshalJSON() ([]byte, error)
}

// dated is embedded by every event variant to provide When().
type dated struct{ On date.Date }

func (d dated) When() date.Date { return d.On }

// Symbol helper accessors are implemented per-variant rather than through
// a shared embed, because not every event carries a symbol (cash events
// don't).

// normaliseResult carries the outcome of split-normalisation for a single
// quoted (quantity, price) pair.
type normaliseResult struct {
	HistoricQty   Quantity
	HistoricPrice Money
	ImportedQty   Quantity
	ImportedPrice Money
	Warning       *Warning
}

// normalise applies the normalisation-at-construction algorithm: it
// consults the price oracle for symbol on date d, and either accepts the
// quoted (qty, price) as already historic, or rewrites both onto a
// post-split-adjusted basis using the implied integer split factor k.
func normalise(oracle PriceOracle, symbol string, d date.Date, qty Quantity, price Money) normaliseResult {
	historic, oracleClose := oracle.IsHistoric(price, symbol, d)
	if historic {
		var w *Warning
		if oracleClose == nil {
			w = &Warning{Code: PriceOracleMiss, Message: "no oracle data for " + symbol + ", price accepted as historic"}
		}
		return normaliseResult{HistoricQty: qty, HistoricPrice: price, ImportedQty: qty, ImportedPrice: price, Warning: w}
	}

	k := oracleClose.Decimal().Div(price.Decimal()).Round(0)
	historicPrice := Money{value: price.value.Mul(k), cur: price.cur}
	historicQty := Quantity{value: qty.value.Div(k)}
	return normaliseResult{
		HistoricQty:   historicQty,
		HistoricPrice: historicPrice,
		ImportedQty:   qty,
		ImportedPrice: price,
		Warning: &Warning{
			Code:    SplitNormalised,
			Message: "rewrote quoted price/quantity for " + symbol + " onto split-adjusted basis (k=" + k.String() + ")",
		},
	}
}

// --- RsuVest ---------------------------------------------------------------

// RsuVest is the vesting of restricted stock units: it creates shares at
// their fair-market value and, if any units were withheld for tax, reports
// both the gross bonus and the withheld slice to the AWV filings.
type RsuVest struct {
	dated
	Symbol        string
	Currency      string
	ReceivedQty   Quantity // historic, split-adjusted
	ReceivedPrice Money    // historic, split-adjusted fair-market-value per share
	WithheldQty   Quantity // zero if nothing was withheld
	ImportedQty   Quantity
	ImportedPrice Money
}

// NewRsuVest constructs an RsuVest event, normalising the quoted
// received_qty/received_price against the price oracle.
func NewRsuVest(oracle PriceOracle, on date.Date, symbol, currency string, receivedQty Quantity, receivedPrice Money, withheldQty Quantity) (RsuVest, *Warning) {
	n := normalise(oracle, symbol, on, receivedQty, receivedPrice)
	return RsuVest{
		dated:         dated{on},
		Symbol:        symbol,
		Currency:      currency,
		ReceivedQty:   n.HistoricQty,
		ReceivedPrice: n.HistoricPrice,
		WithheldQty:   withheldQty,
		ImportedQty:   n.ImportedQty,
		ImportedPrice: n.ImportedPrice,
	}, n.Warning
}

func (e RsuVest) What() string   { return "RsuVest" }
func (e RsuVest) Priority() int  { return PriorityVest }
func (e RsuVest) NetQty() Quantity { return e.ReceivedQty.Sub(e.WithheldQty) }

func (e RsuVest) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", e.What())
	w.Append("date", e.On)
	w.Append("symbol", e.Symbol)
	w.Append("currency", e.Currency)
	w.Append("received_qty", e.ReceivedQty)
	w.Append("received_price", e.ReceivedPrice)
	w.Optional("withheld_qty", e.WithheldQty)
	return w.MarshalJSON()
}

// --- EsppPurchase ------------------------------------------------------------

// EsppPurchase is an Employee Stock Purchase Plan purchase: shares are
// booked at fair-market value; the discount between purchase price and fmv
// is the taxable "bonus" component.
type EsppPurchase struct {
	dated
	Symbol          string
	Currency        string
	Qty             Quantity // historic, split-adjusted
	PurchasePrice   Money    // historic, split-adjusted contribution price
	FairMarketValue Money    // historic, split-adjusted fmv per share
	ImportedQty     Quantity
	ImportedPrice   Money // imported fair market value
}

// NewEsppPurchase constructs an EsppPurchase event. Normalisation keys off
// the fair market value, the figure comparable to a public close price; the
// purchase price is rescaled by the same implied split factor to stay
// consistent with the rewritten quantity.
func NewEsppPurchase(oracle PriceOracle, on date.Date, symbol, currency string, qty Quantity, purchasePrice, fairMarketValue Money) (EsppPurchase, *Warning) {
	n := normalise(oracle, symbol, on, qty, fairMarketValue)
	historicPurchasePrice := purchasePrice
	if !n.ImportedQty.Equal(n.HistoricQty) {
		k := n.ImportedQty.value.Div(n.HistoricQty.value)
		historicPurchasePrice = Money{value: purchasePrice.value.Mul(k), cur: purchasePrice.cur}
	}
	return EsppPurchase{
		dated:           dated{on},
		Symbol:          symbol,
		Currency:        currency,
		Qty:             n.HistoricQty,
		PurchasePrice:   historicPurchasePrice,
		FairMarketValue: n.HistoricPrice,
		ImportedQty:     n.ImportedQty,
		ImportedPrice:   n.ImportedPrice,
	}, n.Warning
}

func (e EsppPurchase) What() string  { return "EsppPurchase" }
func (e EsppPurchase) Priority() int { return PriorityVest }

// Bonus is the taxable discount component: qty × (fmv − purchase_price).
func (e EsppPurchase) Bonus() Money {
	return e.FairMarketValue.Sub(e.PurchasePrice).Mul(e.Qty)
}

// Contribution is the employee-funded component: qty × purchase_price.
func (e EsppPurchase) Contribution() Money { return e.PurchasePrice.Mul(e.Qty) }

func (e EsppPurchase) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", e.What())
	w.Append("date", e.On)
	w.Append("symbol", e.Symbol)
	w.Append("currency", e.Currency)
	w.Append("qty", e.Qty)
	w.Append("purchase_price", e.PurchasePrice)
	w.Append("fair_market_value", e.FairMarketValue)
	return w.MarshalJSON()
}

// --- Dividend ----------------------------------------------------------------

// Dividend is a cash dividend paid on a held symbol; it creates a tax-free
// cash lot (the speculative period does not apply to dividend-origin cash).
type Dividend struct {
	dated
	Symbol   string
	Currency string
	Amount   Money
}

func NewDividend(on date.Date, symbol, currency string, amount Money) Dividend {
	return Dividend{dated{on}, symbol, currency, amount}
}

func (e Dividend) What() string  { return "Dividend" }
func (e Dividend) Priority() int { return PriorityDividend }

func (e Dividend) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", e.What())
	w.Append("date", e.On)
	w.Append("symbol", e.Symbol)
	w.Append("currency", e.Currency)
	w.Append("amount", e.Amount)
	return w.MarshalJSON()
}

// --- Tax -----------------------------------------------------------------

// Tax is a withholding-tax event, or its later reversal. Exactly one of
// Withheld, Reverted is expected to be set by the caller; both being zero is
// a no-op event.
type Tax struct {
	dated
	Symbol   string
	Currency string
	Withheld Money
	Reverted Money
}

func NewTaxWithheld(on date.Date, symbol, currency string, withheld Money) Tax {
	return Tax{dated{on}, symbol, currency, withheld, Money{cur: currency}}
}

func NewTaxReverted(on date.Date, symbol, currency string, reverted Money) Tax {
	return Tax{dated{on}, symbol, currency, Money{cur: currency}, reverted}
}

func (e Tax) What() string  { return "Tax" }
func (e Tax) Priority() int { return PriorityTax }

func (e Tax) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", e.What())
	w.Append("date", e.On)
	w.Append("symbol", e.Symbol)
	w.Append("currency", e.Currency)
	w.Optional("withheld", e.Withheld)
	w.Optional("reverted", e.Reverted)
	return w.MarshalJSON()
}

// --- Buy -------------------------------------------------------------------

// Buy is a market purchase of shares funded from the currency's cash queue.
type Buy struct {
	dated
	Symbol        string
	Currency      string
	Qty           Quantity // historic, split-adjusted
	Price         Money    // historic, split-adjusted
	CostOfShares  Money    // qty × price, supplied for audit
	Fees          Money
	ImportedQty   Quantity
	ImportedPrice Money
}

func NewBuy(oracle PriceOracle, on date.Date, symbol, currency string, qty Quantity, price, costOfShares, fees Money) (Buy, *Warning) {
	n := normalise(oracle, symbol, on, qty, price)
	return Buy{
		dated:         dated{on},
		Symbol:        symbol,
		Currency:      currency,
		Qty:           n.HistoricQty,
		Price:         n.HistoricPrice,
		CostOfShares:  costOfShares,
		Fees:          fees,
		ImportedQty:   n.ImportedQty,
		ImportedPrice: n.ImportedPrice,
	}, n.Warning
}

func (e Buy) What() string  { return "Buy" }
func (e Buy) Priority() int { return PriorityBuy }

func (e Buy) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", e.What())
	w.Append("date", e.On)
	w.Append("symbol", e.Symbol)
	w.Append("currency", e.Currency)
	w.Append("qty", e.Qty)
	w.Append("price", e.Price)
	w.Append("cost_of_shares", e.CostOfShares)
	w.Optional("fees", e.Fees)
	return w.MarshalJSON()
}

// --- Sell ------------------------------------------------------------------

// Sell is a market disposal of shares; it consumes the symbol's share queue
// FIFO and deposits proceeds into the currency's cash queue.
type Sell struct {
	dated
	Symbol        string
	Currency      string
	Qty           Quantity // historic, split-adjusted
	Price         Money    // historic, split-adjusted
	Proceeds      Money
	Fees          Money
	TxnID         string
	ImportedQty   Quantity
	ImportedPrice Money
}

func NewSell(oracle PriceOracle, on date.Date, symbol, currency string, qty Quantity, price, proceeds, fees Money, txnID string) (Sell, *Warning) {
	n := normalise(oracle, symbol, on, qty, price)
	return Sell{
		dated:         dated{on},
		Symbol:        symbol,
		Currency:      currency,
		Qty:           n.HistoricQty,
		Price:         n.HistoricPrice,
		Proceeds:      proceeds,
		Fees:          fees,
		TxnID:         txnID,
		ImportedQty:   n.ImportedQty,
		ImportedPrice: n.ImportedPrice,
	}, n.Warning
}

func (e Sell) What() string  { return "Sell" }
func (e Sell) Priority() int { return PrioritySell }

func (e Sell) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", e.What())
	w.Append("date", e.On)
	w.Append("symbol", e.Symbol)
	w.Append("currency", e.Currency)
	w.Append("qty", e.Qty)
	w.Append("price", e.Price)
	w.Append("proceeds", e.Proceeds)
	w.Optional("fees", e.Fees)
	w.Optional("txn_id", e.TxnID)
	return w.MarshalJSON()
}

// --- MoneyDeposit / MoneyWithdrawal -----------------------------------------

// MoneyDeposit is a cash deposit into the currency's cash queue. BuyDate
// preserves the origin-of-funds date, which may precede Date when the
// deposit record is filed late.
type MoneyDeposit struct {
	dated
	BuyDate  date.Date
	Currency string
	Amount   Money
	Fees     Money
}

func NewMoneyDeposit(on, buyDate date.Date, currency string, amount, fees Money) MoneyDeposit {
	return MoneyDeposit{dated{on}, buyDate, currency, amount, fees}
}

func (e MoneyDeposit) What() string  { return "MoneyDeposit" }
func (e MoneyDeposit) Priority() int { return PriorityMoneyDeposit }

func (e MoneyDeposit) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", e.What())
	w.Append("date", e.On)
	w.Append("buy_date", e.BuyDate)
	w.Append("currency", e.Currency)
	w.Append("amount", e.Amount)
	w.Optional("fees", e.Fees)
	return w.MarshalJSON()
}

// MoneyWithdrawal is a cash withdrawal from the currency's cash queue; the
// returned lots are not taxable disposals.
type MoneyWithdrawal struct {
	dated
	BuyDate  date.Date
	Currency string
	Amount   Money
	Fees     Money
}

func NewMoneyWithdrawal(on, buyDate date.Date, currency string, amount, fees Money) MoneyWithdrawal {
	return MoneyWithdrawal{dated{on}, buyDate, currency, amount, fees}
}

func (e MoneyWithdrawal) What() string  { return "MoneyWithdrawal" }
func (e MoneyWithdrawal) Priority() int { return PriorityMoneyWithdrawal }

func (e MoneyWithdrawal) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", e.What())
	w.Append("date", e.On)
	w.Append("buy_date", e.BuyDate)
	w.Append("currency", e.Currency)
	w.Append("amount", e.Amount)
	w.Optional("fees", e.Fees)
	return w.MarshalJSON()
}

// --- CurrencyConversion ------------------------------------------------------

// domesticReferenceSentinel is the sentinel TargetAmount value meaning "to
// domestic via reference rate, no foreign-queue effect".
var domesticReferenceSentinel = decimal.NewFromInt(-1)

// CurrencyConversion moves cash from one currency's queue to another. A
// conversion into the domestic currency via the reference rate (rather than
// a brokered foreign-to-foreign trade) is marked by the sentinel
// TargetAmount of -1, constructed with NewCurrencyConversionToDomestic.
type CurrencyConversion struct {
	dated
	SourceCurrency string
	SourceAmount   Money
	TargetCurrency string
	TargetAmount   Money // sentinel -1 (any currency) means "to domestic via reference rate"
	Fees           Money
	priority       int
}

// NewCurrencyConversion constructs a currency-to-currency conversion.
// domesticCurrency is needed only to place the event at the correct
// priority (distinguishes domestic→foreign, foreign→foreign, and
// foreign→domestic conversions); it has no other effect.
func NewCurrencyConversion(on date.Date, sourceCcy string, sourceAmount Money, targetCcy string, targetAmount, fees Money, domesticCurrency string) CurrencyConversion {
	return CurrencyConversion{dated{on}, sourceCcy, sourceAmount, targetCcy, targetAmount, fees, conversionPriority(sourceCcy, targetCcy, domesticCurrency, false)}
}

// NewCurrencyConversionToDomestic constructs a conversion whose proceeds
// leave the foreign-queue model entirely, valued at the domestic reference
// rate: this is the sentinel form.
func NewCurrencyConversionToDomestic(on date.Date, sourceCcy string, sourceAmount Money, domesticCurrency string, fees Money) CurrencyConversion {
	return CurrencyConversion{dated{on}, sourceCcy, sourceAmount, domesticCurrency,
		Money{value: domesticReferenceSentinel, cur: domesticCurrency}, fees,
		conversionPriority(sourceCcy, domesticCurrency, domesticCurrency, true)}
}

func conversionPriority(sourceCcy, targetCcy, domesticCurrency string, toDomesticReference bool) int {
	switch {
	case toDomesticReference:
		return PriorityConvertForeignToDomestic
	case sourceCcy == domesticCurrency:
		return PriorityConvertDomesticToForeign
	case targetCcy == domesticCurrency:
		return PriorityConvertForeignToDomestic
	default:
		return PriorityConvertForeignToForeign
	}
}

// ToDomesticViaReferenceRate reports whether this conversion is the sentinel form.
func (e CurrencyConversion) ToDomesticViaReferenceRate() bool {
	return e.TargetAmount.value.Equal(domesticReferenceSentinel)
}

func (e CurrencyConversion) What() string  { return "CurrencyConversion" }
func (e CurrencyConversion) Priority() int { return e.priority }

func (e CurrencyConversion) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", e.What())
	w.Append("date", e.On)
	w.Append("source_ccy", e.SourceCurrency)
	w.Append("source_amount", e.SourceAmount)
	w.Append("target_ccy", e.TargetCurrency)
	w.Append("target_amount", e.TargetAmount)
	w.Optional("fees", e.Fees)
	return w.MarshalJSON()
}

// --- StockSplit --------------------------------------------------------------

// StockSplit mutates a symbol's share queue in place at end-of-day: ratio
// is shares-after per share-before (2 for a 2:1 split, 0.5 for a 1:2
// reverse split).
type StockSplit struct {
	dated
	Symbol string
	Ratio  Quantity
}

func NewStockSplit(on date.Date, symbol string, ratio Quantity) StockSplit {
	return StockSplit{dated{on}, symbol, ratio}
}

func (e StockSplit) What() string  { return "StockSplit" }
func (e StockSplit) Priority() int { return PriorityStockSplit }

func (e StockSplit) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", e.What())
	w.Append("date", e.On)
	w.Append("symbol", e.Symbol)
	w.Append("ratio", e.Ratio)
	return w.MarshalJSON()
}
