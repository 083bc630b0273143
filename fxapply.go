package steuerkern

import "github.com/tholzer/steuerkern/date"

// ApplyFX walks every sold share lot, sold cash lot, and misc cash flow
// produced by a completed Processor run and attaches both daily and
// monthly domestic-currency valuations. It must be called after
// Process succeeds; it performs no kernel mutation of its own.
func ApplyFX(fx FXRateProvider, shares []SoldShareLot, cash []SoldCashLot, misc []MiscCashFlow) ([]SoldShareLot, []SoldCashLot, []MiscCashFlow, []Warning, error) {
	var warnings []Warning

	outShares := make([]SoldShareLot, len(shares))
	for i, lot := range shares {
		valued, warn, err := applyFXToShareLot(fx, lot)
		if err != nil {
			return nil, nil, nil, warnings, err
		}
		if warn != nil {
			warnings = append(warnings, *warn)
		}
		outShares[i] = valued
	}

	outCash := make([]SoldCashLot, len(cash))
	for i, lot := range cash {
		valued, warn, err := applyFXToCashLot(fx, lot)
		if err != nil {
			return nil, nil, nil, warnings, err
		}
		if warn != nil {
			warnings = append(warnings, *warn)
		}
		outCash[i] = valued
	}

	outMisc := make([]MiscCashFlow, len(misc))
	for i, flow := range misc {
		valued, warn, err := applyFXToMisc(fx, flow)
		if err != nil {
			return nil, nil, nil, warnings, err
		}
		if warn != nil {
			warnings = append(warnings, *warn)
		}
		outMisc[i] = valued
	}

	return outShares, outCash, outMisc, warnings, nil
}

// rateFor resolves both the daily and monthly domestic rate for currency
// on d, returning a RateMissing-shaped error if either is unavailable.
// Domestic currency always resolves to rate 1 without consulting the
// provider.
func rateFor(fx FXRateProvider, currency string, d date.Date) (daily, monthly Quantity, err error) {
	if currency == fx.DomesticCurrency() {
		return Q(1), Q(1), nil
	}
	dr, err := fx.DailyRate(currency, d)
	if err != nil {
		return Quantity{}, Quantity{}, err
	}
	mr, err := fx.MonthlyRate(currency, d.Year(), int(d.Month()))
	if err != nil {
		return Quantity{}, Quantity{}, err
	}
	return Quantity{value: dr}, Quantity{value: mr}, nil
}

func applyFXToShareLot(fx FXRateProvider, lot SoldShareLot) (SoldShareLot, *Warning, error) {
	domestic := fx.DomesticCurrency()

	buyDaily, buyMonthly, err := rateFor(fx, lot.BuyPrice.cur, lot.BuyDate)
	if err != nil {
		return lot, nil, err
	}
	sellDaily, sellMonthly, err := rateFor(fx, lot.SellPrice.cur, lot.SellDate)
	if err != nil {
		return lot, nil, err
	}

	buyPriceDomDaily, _ := lot.BuyPrice.DivRate(buyDaily.value, domestic)
	buyPriceDomMonthly, _ := lot.BuyPrice.DivRate(buyMonthly.value, domestic)
	sellPriceDomDaily, _ := lot.SellPrice.DivRate(sellDaily.value, domestic)
	sellPriceDomMonthly, _ := lot.SellPrice.DivRate(sellMonthly.value, domestic)

	lot.BuyPriceDom = DualMoney{Daily: buyPriceDomDaily, Monthly: buyPriceDomMonthly}
	lot.SellPriceDom = DualMoney{Daily: sellPriceDomDaily, Monthly: sellPriceDomMonthly}

	costDaily := M(0, domestic)
	costMonthly := M(0, domestic)
	if lot.BuyCost != nil {
		d, err := lot.BuyCost.DivRate(buyDaily.value, domestic)
		if err != nil {
			return lot, nil, err
		}
		m, err := lot.BuyCost.DivRate(buyMonthly.value, domestic)
		if err != nil {
			return lot, nil, err
		}
		costDaily = costDaily.Add(d)
		costMonthly = costMonthly.Add(m)
	}
	if lot.SellCost != nil {
		d, err := lot.SellCost.DivRate(sellDaily.value, domestic)
		if err != nil {
			return lot, nil, err
		}
		m, err := lot.SellCost.DivRate(sellMonthly.value, domestic)
		if err != nil {
			return lot, nil, err
		}
		costDaily = costDaily.Add(d)
		costMonthly = costMonthly.Add(m)
	}
	lot.CostDom = DualMoney{Daily: costDaily.Mul(lot.Quantity), Monthly: costMonthly.Mul(lot.Quantity)}

	gainDaily := sellPriceDomDaily.Sub(buyPriceDomDaily).Mul(lot.Quantity).Sub(lot.CostDom.Daily)
	gainMonthly := sellPriceDomMonthly.Sub(buyPriceDomMonthly).Mul(lot.Quantity).Sub(lot.CostDom.Monthly)
	lot.GainDom = DualMoney{Daily: gainDaily, Monthly: gainMonthly}

	return lot, nil, nil
}

func applyFXToCashLot(fx FXRateProvider, lot SoldCashLot) (SoldCashLot, *Warning, error) {
	domestic := fx.DomesticCurrency()

	buyDaily, buyMonthly, err := rateFor(fx, lot.Currency, lot.BuyDate)
	if err != nil {
		return lot, nil, err
	}
	sellDaily, sellMonthly, err := rateFor(fx, lot.Currency, lot.SellDate)
	if err != nil {
		return lot, nil, err
	}

	one := M(1, lot.Currency)
	buyPriceDomDaily, _ := one.DivRate(buyDaily.value, domestic)
	buyPriceDomMonthly, _ := one.DivRate(buyMonthly.value, domestic)
	sellPriceDomDaily, _ := one.DivRate(sellDaily.value, domestic)
	sellPriceDomMonthly, _ := one.DivRate(sellMonthly.value, domestic)

	lot.BuyPriceDom = DualMoney{Daily: buyPriceDomDaily, Monthly: buyPriceDomMonthly}
	lot.SellPriceDom = DualMoney{Daily: sellPriceDomDaily, Monthly: sellPriceDomMonthly}
	lot.GainDom = DualMoney{
		Daily:   sellPriceDomDaily.Sub(buyPriceDomDaily).Mul(lot.Quantity),
		Monthly: sellPriceDomMonthly.Sub(buyPriceDomMonthly).Mul(lot.Quantity),
	}
	return lot, nil, nil
}

// ApplyFXToAWV attaches a single domestic-currency valuation to every AWV
// entry, selecting daily or monthly per mode. Unlike sold
// lots, AWV entries are presented in one rate mode only (the report's),
// so no DualMoney is carried on AwvEntry itself.
func ApplyFXToAWV(fx FXRateProvider, mode RateMode, entries []AwvEntry) ([]AwvEntry, error) {
	out := make([]AwvEntry, len(entries))
	for i, e := range entries {
		daily, monthly, err := rateFor(fx, e.Currency, e.Date)
		if err != nil {
			return nil, err
		}
		rate := daily
		if mode == RateModeMonthly {
			rate = monthly
		}
		valueDom, err := e.Value.DivRate(rate.value, fx.DomesticCurrency())
		if err != nil {
			return nil, err
		}
		e.ValueDom = valueDom
		out[i] = e
	}
	return out, nil
}

func applyFXToMisc(fx FXRateProvider, flow MiscCashFlow) (MiscCashFlow, *Warning, error) {
	domestic := fx.DomesticCurrency()
	daily, monthly, err := rateFor(fx, flow.Currency, flow.Date)
	if err != nil {
		return flow, nil, err
	}
	amountDaily, _ := flow.Amount.DivRate(daily.value, domestic)
	amountMonthly, _ := flow.Amount.DivRate(monthly.value, domestic)
	flow.AmountDom = DualMoney{Daily: amountDaily, Monthly: amountMonthly}
	return flow, nil, nil
}
