package steuerkern

import (
	"sort"

	"github.com/tholzer/steuerkern/date"
)

// Config holds the recognised configuration options. Collaborators
// (PriceOracle, FXRateProvider) are passed separately to NewProcessor rather
// than stored as package-level singletons.
type Config struct {
	ReportYear            int
	RateMode              RateMode
	ApplyStockSplits      bool
	AwvThresholdDom       Money // zero means "use the year-dependent default"
	SpeculativePeriodDays int   // defaults to 365 when zero
	ConsiderTaxFreeForex  bool
}

// MiscCategory classifies a MiscCashFlow.
type MiscCategory int

const (
	MiscFee MiscCategory = iota
	MiscDividend
	MiscTax
)

func (c MiscCategory) String() string {
	switch c {
	case MiscDividend:
		return "Dividend"
	case MiscTax:
		return "Tax"
	default:
		return "Fee"
	}
}

// MiscCashFlow is a single-instant foreign-currency amount tagged by
// category.
type MiscCashFlow struct {
	Category  MiscCategory
	Currency  string
	Date      date.Date
	Amount    Money
	Comment   string
	AmountDom DualMoney
}

// AwvCategory distinguishes the two central-bank statistical categories:
// money flows (Z4) and securities movements (Z10).
type AwvCategory int

const (
	AwvZ4 AwvCategory = iota // bonus-like money flows
	AwvZ10                   // securities movements
)

// awvKennzahl returns the fixed Bundesbank statistical code ("Kennzahl")
// for a category: 521 for Z4 money flows, 104 for Z10 securities
// movements. It never varies with the individual entry.
func awvKennzahl(cat AwvCategory) int {
	if cat == AwvZ10 {
		return 104
	}
	return 521
}

// AwvEntry is a reportable cross-border money or security movement.
// Threshold filtering happens in awv.go, not here: the kernel records
// every movement unconditionally so downstream consumers can choose a
// different threshold without re-running the kernel.
type AwvEntry struct {
	Category    AwvCategory
	Date        date.Date
	Currency    string
	Value       Money
	ValueDom    Money
	IsIncoming  bool
	Kennzahl    int
	Purpose     string
	Description string
	ISIN        string // left blank; the kernel has no security-master lookup, filed in by hand
	CountryCode string // left blank; same reason as ISIN
}

// Processor is the central state machine of the tax-lot accounting engine.
// It owns the per-symbol share queues, the per-currency cash queues, the
// domestic-cash bucket, and the append-only output lists.
type Processor struct {
	oracle  PriceOracle
	fx      FXRateProvider
	config  Config

	shares        map[string]*ShareQueue
	cash          map[string]*CashQueue
	domesticCash  *DomesticCashBucket

	soldShares    map[string][]SoldShareLot
	soldCash      map[string][]SoldCashLot
	withdrawnCash map[string][]SoldCashLot
	misc          map[MiscCategory][]MiscCashFlow
	awvZ4         []AwvEntry
	awvZ10        []AwvEntry

	warnings []Warning

	lastIndex int
	failedAt  *EventError
}

// NewProcessor constructs a Processor with its collaborators injected.
// domesticCurrency (taken from fx.DomesticCurrency()) seeds the
// domestic-cash bucket's sentinel lot.
func NewProcessor(oracle PriceOracle, fx FXRateProvider, config Config) *Processor {
	if config.SpeculativePeriodDays == 0 {
		config.SpeculativePeriodDays = 365
	}
	p := &Processor{
		oracle: oracle,
		fx:     fx,
		config: config,
	}
	p.reset()
	return p
}

// reset clears all queues and output lists, re-seeding the domestic-cash
// bucket with a zero-quantity sentinel lot.
func (p *Processor) reset() {
	p.shares = make(map[string]*ShareQueue)
	p.cash = make(map[string]*CashQueue)
	p.domesticCash = NewDomesticCashBucket(p.fx.DomesticCurrency())
	p.soldShares = make(map[string][]SoldShareLot)
	p.soldCash = make(map[string][]SoldCashLot)
	p.withdrawnCash = make(map[string][]SoldCashLot)
	p.misc = make(map[MiscCategory][]MiscCashFlow)
	p.awvZ4 = nil
	p.awvZ10 = nil
	p.warnings = nil
	p.lastIndex = -1
	p.failedAt = nil
}

func (p *Processor) shareQueue(symbol string) *ShareQueue {
	q, ok := p.shares[symbol]
	if !ok {
		q = NewShareQueue(symbol)
		p.shares[symbol] = q
	}
	return q
}

func (p *Processor) isDomestic(currency string) bool { return currency == p.fx.DomesticCurrency() }

func (p *Processor) cashQueue(currency string) *CashQueue {
	q, ok := p.cash[currency]
	if !ok {
		q = NewCashQueue(currency)
		p.cash[currency] = q
	}
	return q
}

func (p *Processor) warn(code WarningCode, ev Event, msg string) {
	p.warnings = append(p.warnings, Warning{Code: code, Event: ev, Message: msg})
}

// pushCash deposits a cash lot, routing to the domestic-cash bucket when
// the currency is domestic (invariant I3).
func (p *Processor) pushCash(currency string, qty Quantity, buyDate date.Date, source string, taxFree bool) {
	if p.isDomestic(currency) {
		p.domesticCash.Push(qty)
		return
	}
	p.cashQueue(currency).Push(CashLot{Currency: currency, Quantity: qty, BuyDate: buyDate, Source: source, TaxFree: taxFree})
}

// popCash withdraws qty units from currency's cash, routing to the
// domestic-cash bucket when the currency is domestic. For domestic
// withdrawals no SoldCashLot is produced (domestic cash is never a taxable
// disposal of foreign currency).
func (p *Processor) popCash(ev Event, currency string, qty Quantity, on date.Date) ([]SoldCashLot, error) {
	if p.isDomestic(currency) {
		clamped, err := p.domesticCash.Pop(qty)
		if err != nil {
			return nil, err
		}
		if clamped {
			p.warn(ClampedOverdraw, ev, "domestic cash pop clamped to available balance")
		}
		return nil, nil
	}
	sold, clamped, err := p.cashQueue(currency).Pop(qty, on)
	if err != nil {
		return nil, err
	}
	if clamped {
		p.warn(ClampedOverdraw, ev, "cash pop for "+currency+" clamped to available balance")
	}
	return sold, nil
}

// Process sorts events by (date, priority) stably and dispatches each one
// in turn. It is fail-fast at the first queue error; all state up
// to the failed event remains available via FailedEvent/Warnings for
// inspection. No further events are processed after a failure.
func (p *Processor) Process(events []Event) error {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := sorted[i].When(), sorted[j].When()
		if di == dj {
			return sorted[i].Priority() < sorted[j].Priority()
		}
		return di.Before(dj)
	})

	for i, ev := range sorted {
		if err := p.dispatch(ev); err != nil {
			wrapped := &EventError{Index: i, Event: ev, Err: err}
			p.failedAt = wrapped
			return wrapped
		}
		p.lastIndex = i
	}
	return nil
}

// FailedEvent returns the error produced by the first failing event, if
// Process halted early, and nil otherwise.
func (p *Processor) FailedEvent() *EventError { return p.failedAt }

// Warnings returns every non-fatal warning collected so far.
func (p *Processor) Warnings() []Warning { return p.warnings }

func (p *Processor) dispatch(ev Event) error {
	switch v := ev.(type) {
	case RsuVest:
		return p.processRsuVest(v)
	case EsppPurchase:
		return p.processEsppPurchase(v)
	case Dividend:
		return p.processDividend(v)
	case Tax:
		return p.processTax(v)
	case Buy:
		return p.processBuy(v)
	case Sell:
		return p.processSell(v)
	case MoneyDeposit:
		return p.processMoneyDeposit(v)
	case MoneyWithdrawal:
		return p.processMoneyWithdrawal(v)
	case CurrencyConversion:
		return p.processCurrencyConversion(v)
	case StockSplit:
		return p.processStockSplit(v)
	default:
		panic("unhandled event variant")
	}
}

func (p *Processor) processRsuVest(e RsuVest) error {
	netQty := e.NetQty()
	p.shareQueue(e.Symbol).Push(ShareLot{
		Symbol:   e.Symbol,
		Quantity: netQty,
		BuyDate:  e.On,
		BuyPrice: e.ReceivedPrice,
		Source:   "RsuVest",
	})

	totalValue := e.ReceivedPrice.Mul(e.ReceivedQty)
	p.awvZ4 = append(p.awvZ4, AwvEntry{Category: AwvZ4, Date: e.On, Currency: e.Currency, Value: totalValue, IsIncoming: true, Kennzahl: awvKennzahl(AwvZ4), Purpose: "Bonuserhalt in Form von Aktien aus RSUs"})
	p.awvZ10 = append(p.awvZ10, AwvEntry{Category: AwvZ10, Date: e.On, Currency: e.Currency, Value: totalValue, IsIncoming: true, Kennzahl: awvKennzahl(AwvZ10), Purpose: "RSU deposit", Description: e.Symbol + " (Erhalt Aktien aus RSUs)"})
	if e.WithheldQty.IsPositive() {
		withheldValue := e.ReceivedPrice.Mul(e.WithheldQty)
		p.awvZ10 = append(p.awvZ10, AwvEntry{Category: AwvZ10, Date: e.On, Currency: e.Currency, Value: withheldValue, IsIncoming: false, Kennzahl: awvKennzahl(AwvZ10), Purpose: "RSU tax withholding", Description: e.Symbol + " (Verkauf zur Erzielung dt. EkSt.)"})
	}
	return nil
}

func (p *Processor) processEsppPurchase(e EsppPurchase) error {
	p.shareQueue(e.Symbol).Push(ShareLot{
		Symbol:   e.Symbol,
		Quantity: e.Qty,
		BuyDate:  e.On,
		BuyPrice: e.FairMarketValue,
		Source:   "EsppPurchase",
	})
	p.awvZ4 = append(p.awvZ4, AwvEntry{Category: AwvZ4, Date: e.On, Currency: e.Currency, Value: e.Bonus(), IsIncoming: true, Kennzahl: awvKennzahl(AwvZ4), Purpose: "Bonuserhalt in Form von Aktien aus ESPPs"})
	p.awvZ10 = append(p.awvZ10, AwvEntry{Category: AwvZ10, Date: e.On, Currency: e.Currency, Value: e.FairMarketValue.Mul(e.Qty), IsIncoming: true, Kennzahl: awvKennzahl(AwvZ10), Purpose: "ESPP deposit", Description: e.Symbol + " (Erhalt Aktien aus ESPP)"})
	return nil
}

func (p *Processor) processDividend(e Dividend) error {
	p.pushCash(e.Currency, Quantity{value: e.Amount.value}, e.On, "Dividend("+e.Symbol+")", true)
	p.misc[MiscDividend] = append(p.misc[MiscDividend], MiscCashFlow{
		Category: MiscDividend, Currency: e.Currency, Date: e.On, Amount: e.Amount, Comment: e.Symbol,
	})
	return nil
}

func (p *Processor) processTax(e Tax) error {
	if e.Withheld.IsPositive() {
		if _, err := p.popCash(e, e.Currency, Quantity{value: e.Withheld.value}, e.On); err != nil {
			return err
		}
		p.misc[MiscTax] = append(p.misc[MiscTax], MiscCashFlow{Category: MiscTax, Currency: e.Currency, Date: e.On, Amount: e.Withheld, Comment: e.Symbol})
	}
	if e.Reverted.IsPositive() {
		p.pushCash(e.Currency, Quantity{value: e.Reverted.value}, e.On, "TaxReversal", true)
		p.misc[MiscTax] = append(p.misc[MiscTax], MiscCashFlow{Category: MiscTax, Currency: e.Currency, Date: e.On, Amount: e.Reverted.Neg(), Comment: e.Symbol})
	}
	return nil
}

func (p *Processor) processBuy(e Buy) error {
	if _, err := p.popCash(e, e.Currency, Quantity{value: e.CostOfShares.value}, e.On); err != nil {
		return err
	}
	var buyCost *Money
	if e.Fees.IsPositive() {
		if _, err := p.popCash(e, e.Currency, Quantity{value: e.Fees.value}, e.On); err != nil {
			return err
		}
		p.misc[MiscFee] = append(p.misc[MiscFee], MiscCashFlow{Category: MiscFee, Currency: e.Currency, Date: e.On, Amount: e.Fees, Comment: e.Symbol})
		perUnit := e.Fees.Div(e.Qty)
		buyCost = &perUnit
	}
	p.shareQueue(e.Symbol).Push(ShareLot{
		Symbol:   e.Symbol,
		Quantity: e.Qty,
		BuyDate:  e.On,
		BuyPrice: e.Price,
		Source:   "Buy",
		BuyCost:  buyCost,
	})
	p.awvZ10 = append(p.awvZ10, AwvEntry{Category: AwvZ10, Date: e.On, Currency: e.Currency, Value: e.Price.Mul(e.Qty), IsIncoming: false, Kennzahl: awvKennzahl(AwvZ10), Purpose: "Buy", Description: e.Symbol + " (Kauf von Aktien)"})
	return nil
}

func (p *Processor) processSell(e Sell) error {
	var sellCost *Money
	if e.Fees.IsPositive() {
		perUnit := e.Fees.Div(e.Qty)
		sellCost = &perUnit
	}
	sold, err := p.shareQueue(e.Symbol).Pop(e.Qty, e.Price, e.On, sellCost)
	if err != nil {
		return err
	}
	p.soldShares[e.Symbol] = append(p.soldShares[e.Symbol], sold...)

	p.pushCash(e.Currency, Quantity{value: e.Proceeds.value}, e.On, "Sale("+e.Symbol+")", false)

	if e.Fees.IsPositive() {
		if _, err := p.popCash(e, e.Currency, Quantity{value: e.Fees.value}, e.On); err != nil {
			return err
		}
		p.misc[MiscFee] = append(p.misc[MiscFee], MiscCashFlow{Category: MiscFee, Currency: e.Currency, Date: e.On, Amount: e.Fees, Comment: e.Symbol})
	}
	p.awvZ10 = append(p.awvZ10, AwvEntry{Category: AwvZ10, Date: e.On, Currency: e.Currency, Value: e.Price.Mul(e.Qty), IsIncoming: true, Kennzahl: awvKennzahl(AwvZ10), Purpose: "Sale", Description: e.Symbol + " (Verkauf von Aktien)"})
	return nil
}

func (p *Processor) processMoneyDeposit(e MoneyDeposit) error {
	p.pushCash(e.Currency, Quantity{value: e.Amount.value}, e.BuyDate, "Deposit", false)
	if e.Fees.IsPositive() {
		if _, err := p.popCash(e, e.Currency, Quantity{value: e.Fees.value}, e.On); err != nil {
			return err
		}
		p.misc[MiscFee] = append(p.misc[MiscFee], MiscCashFlow{Category: MiscFee, Currency: e.Currency, Date: e.On, Amount: e.Fees})
	}
	return nil
}

func (p *Processor) processMoneyWithdrawal(e MoneyWithdrawal) error {
	sold, err := p.popCash(e, e.Currency, Quantity{value: e.Amount.value}, e.On)
	if err != nil {
		return err
	}
	p.withdrawnCash[e.Currency] = append(p.withdrawnCash[e.Currency], sold...)
	if e.Fees.IsPositive() {
		if _, err := p.popCash(e, e.Currency, Quantity{value: e.Fees.value}, e.On); err != nil {
			return err
		}
		p.misc[MiscFee] = append(p.misc[MiscFee], MiscCashFlow{Category: MiscFee, Currency: e.Currency, Date: e.On, Amount: e.Fees})
	}
	return nil
}

func (p *Processor) processCurrencyConversion(e CurrencyConversion) error {
	sold, err := p.popCash(e, e.SourceCurrency, Quantity{value: e.SourceAmount.value}, e.On)
	if err != nil {
		return err
	}
	p.soldCash[e.SourceCurrency] = append(p.soldCash[e.SourceCurrency], sold...)

	if !e.ToDomesticViaReferenceRate() {
		p.pushCash(e.TargetCurrency, Quantity{value: e.TargetAmount.value}, e.On, "CurrencyConversion", false)
	}

	if e.Fees.IsPositive() {
		if _, err := p.popCash(e, e.SourceCurrency, Quantity{value: e.Fees.value}, e.On); err != nil {
			return err
		}
		p.misc[MiscFee] = append(p.misc[MiscFee], MiscCashFlow{Category: MiscFee, Currency: e.SourceCurrency, Date: e.On, Amount: e.Fees})
	}
	return nil
}

func (p *Processor) processStockSplit(e StockSplit) error {
	if !p.config.ApplyStockSplits {
		return nil
	}
	p.shareQueue(e.Symbol).ApplySplit(e.Ratio)
	return nil
}

// SoldShares returns the sold-share-lot output list for symbol, in the
// order the events that produced them were processed.
func (p *Processor) SoldShares(symbol string) []SoldShareLot { return p.soldShares[symbol] }

// AllSoldShares returns every sold share lot across all symbols.
func (p *Processor) AllSoldShares() []SoldShareLot {
	var out []SoldShareLot
	for _, symbol := range sortedKeys(p.soldShares) {
		out = append(out, p.soldShares[symbol]...)
	}
	return out
}

// SoldCash returns the sold-cash-lot output list for currency.
func (p *Processor) SoldCash(currency string) []SoldCashLot { return p.soldCash[currency] }

// AllSoldCash returns every sold cash lot across all currencies.
func (p *Processor) AllSoldCash() []SoldCashLot {
	var out []SoldCashLot
	for _, currency := range sortedCashKeys(p.soldCash) {
		out = append(out, p.soldCash[currency]...)
	}
	return out
}

// WithdrawnCash returns the lots consumed by MoneyWithdrawal events for
// currency; these are not taxable disposals.
func (p *Processor) WithdrawnCash(currency string) []SoldCashLot { return p.withdrawnCash[currency] }

// Misc returns the MiscCashFlow output list for category.
func (p *Processor) Misc(category MiscCategory) []MiscCashFlow { return p.misc[category] }

// AllMisc returns every recorded MiscCashFlow across all categories, in a
// stable category order (Fee, Dividend, Tax).
func (p *Processor) AllMisc() []MiscCashFlow {
	var out []MiscCashFlow
	for _, category := range []MiscCategory{MiscFee, MiscDividend, MiscTax} {
		out = append(out, p.misc[category]...)
	}
	return out
}

// AwvZ4Entries returns every recorded Z4 (bonus-like) movement.
func (p *Processor) AwvZ4Entries() []AwvEntry { return p.awvZ4 }

// AwvZ10Entries returns every recorded Z10 (securities) movement.
func (p *Processor) AwvZ10Entries() []AwvEntry { return p.awvZ10 }

// ShareQueueOf exposes the live share queue for symbol, for inspection
// of the current queue state after a failed Process call.
func (p *Processor) ShareQueueOf(symbol string) *ShareQueue { return p.shares[symbol] }

// CashQueueOf exposes the live cash queue for currency.
func (p *Processor) CashQueueOf(currency string) *CashQueue { return p.cash[currency] }

// DomesticCash exposes the domestic-cash bucket.
func (p *Processor) DomesticCash() *DomesticCashBucket { return p.domesticCash }

func sortedKeys(m map[string][]SoldShareLot) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedCashKeys(m map[string][]SoldCashLot) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
