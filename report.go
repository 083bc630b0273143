package steuerkern

import "sort"

// Report is the consolidated tax-year output: the filtered, tax-status
// tagged lots for a single calendar year, plus the fixed tax-form
// line-item summary.
type Report struct {
	Year     int
	RateMode RateMode

	ShareLots []SoldShareLot
	CashLots  []SoldCashLot
	Misc      []MiscCashFlow

	Summary Summary
}

// Summary holds the fixed aggregated line-items in the order a tax return
// expects them.
type Summary struct {
	ShareGains                Money
	ShareLosses               Money
	ForexGainTotal            Money
	ForexBuyValueTotal        Money
	ForexSellValueTotal       Money
	TotalDividends            Money
	TotalFees                 Money
	TotalTaxes                Money
	TotalForeignCapitalIncome Money
}

// Value selects the rate-mode-appropriate Money out of a DualMoney.
func (m RateMode) Value(d DualMoney) Money {
	if m == RateModeMonthly {
		return d.Monthly
	}
	return d.Daily
}

// Consolidate builds a Report for config.ReportYear from the FX-valued
// output lists of a completed Processor run. domesticCurrency
// seeds the zero Money values used when a category has no entries.
func Consolidate(config Config, domesticCurrency string, shares []SoldShareLot, cash []SoldCashLot, misc []MiscCashFlow) Report {
	mode := config.RateMode
	speculativeDays := config.SpeculativePeriodDays
	if speculativeDays == 0 {
		speculativeDays = 365
	}

	var filteredShares []SoldShareLot
	for _, lot := range shares {
		if lot.SellDate.Year() == config.ReportYear {
			filteredShares = append(filteredShares, lot)
		}
	}
	sort.SliceStable(filteredShares, func(i, j int) bool {
		if filteredShares[i].SellDate == filteredShares[j].SellDate {
			return filteredShares[i].BuyDate.Before(filteredShares[j].BuyDate)
		}
		return filteredShares[i].SellDate.Before(filteredShares[j].SellDate)
	})

	var filteredCash []SoldCashLot
	for _, lot := range cash {
		if lot.SellDate.Year() != config.ReportYear || lot.Currency == domesticCurrency {
			continue
		}
		lot.TaxStatus = classify(lot, speculativeDays, config.ConsiderTaxFreeForex)
		filteredCash = append(filteredCash, lot)
	}
	sort.SliceStable(filteredCash, func(i, j int) bool {
		if filteredCash[i].SellDate == filteredCash[j].SellDate {
			return filteredCash[i].BuyDate.Before(filteredCash[j].BuyDate)
		}
		return filteredCash[i].SellDate.Before(filteredCash[j].SellDate)
	})

	var filteredMisc []MiscCashFlow
	for _, flow := range misc {
		if flow.Date.Year() == config.ReportYear {
			filteredMisc = append(filteredMisc, flow)
		}
	}
	sort.SliceStable(filteredMisc, func(i, j int) bool { return filteredMisc[i].Date.Before(filteredMisc[j].Date) })

	summary := Summary{
		ShareGains:                M(0, domesticCurrency),
		ShareLosses:               M(0, domesticCurrency),
		ForexGainTotal:            M(0, domesticCurrency),
		ForexBuyValueTotal:        M(0, domesticCurrency),
		ForexSellValueTotal:       M(0, domesticCurrency),
		TotalDividends:            M(0, domesticCurrency),
		TotalFees:                 M(0, domesticCurrency),
		TotalTaxes:                M(0, domesticCurrency),
		TotalForeignCapitalIncome: M(0, domesticCurrency),
	}

	for _, lot := range filteredShares {
		gain := mode.Value(lot.GainDom)
		if gain.IsPositive() {
			summary.ShareGains = summary.ShareGains.Add(gain)
		} else {
			summary.ShareLosses = summary.ShareLosses.Add(gain)
		}
	}

	for i, lot := range filteredCash {
		if lot.TaxStatus != Taxable {
			// Tax-free lots are zeroed out in the tax tables; they remain
			// visible via TaxStatus for an informational "Comment" column.
			filteredCash[i].GainDom = DualMoney{Daily: M(0, domesticCurrency), Monthly: M(0, domesticCurrency)}
			filteredCash[i].BuyPriceDom = DualMoney{Daily: M(0, domesticCurrency), Monthly: M(0, domesticCurrency)}
			filteredCash[i].SellPriceDom = DualMoney{Daily: M(0, domesticCurrency), Monthly: M(0, domesticCurrency)}
			continue
		}
		gain := mode.Value(lot.GainDom)
		summary.ForexGainTotal = summary.ForexGainTotal.Add(gain)
		summary.ForexBuyValueTotal = summary.ForexBuyValueTotal.Add(mode.Value(lot.BuyPriceDom).Mul(lot.Quantity))
		summary.ForexSellValueTotal = summary.ForexSellValueTotal.Add(mode.Value(lot.SellPriceDom).Mul(lot.Quantity))
	}

	for _, flow := range filteredMisc {
		amount := mode.Value(flow.AmountDom)
		switch flow.Category {
		case MiscDividend:
			summary.TotalDividends = summary.TotalDividends.Add(amount)
		case MiscFee:
			summary.TotalFees = summary.TotalFees.Add(amount)
		case MiscTax:
			summary.TotalTaxes = summary.TotalTaxes.Add(amount)
		}
	}

	summary.TotalForeignCapitalIncome = summary.ShareGains.Add(summary.ShareLosses).Add(summary.TotalDividends)

	return Report{
		Year:      config.ReportYear,
		RateMode:  mode,
		ShareLots: filteredShares,
		CashLots:  filteredCash,
		Misc:      filteredMisc,
		Summary:   summary,
	}
}

// classify applies the one-year speculative-period rule and the
// tax-free-origin rule to a single sold cash lot.
func classify(lot SoldCashLot, speculativePeriodDays int, considerTaxFreeForex bool) TaxStatus {
	if lot.BuyDate.Days(lot.SellDate) >= speculativePeriodDays {
		return TaxFreeHolding
	}
	if considerTaxFreeForex && lot.TaxFree {
		return TaxFreeOrigin
	}
	return Taxable
}

