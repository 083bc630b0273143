package steuerkern

import (
	"testing"
	"time"

	"github.com/tholzer/steuerkern/date"
)

func TestClassify_HoldingPastSpeculativePeriodIsTaxFree(t *testing.T) {
	lot := SoldCashLot{
		CashLot:  CashLot{BuyDate: date.New(2022, time.January, 1)},
		SellDate: date.New(2023, time.January, 2),
	}
	if got := classify(lot, 365, false); got != TaxFreeHolding {
		t.Errorf("classify() = %v, want TaxFreeHolding", got)
	}
}

func TestClassify_TaxFreeOriginOnlyWhenConfigEnabled(t *testing.T) {
	lot := SoldCashLot{
		CashLot:  CashLot{BuyDate: date.New(2024, time.January, 1), TaxFree: true},
		SellDate: date.New(2024, time.June, 1),
	}
	if got := classify(lot, 365, false); got != Taxable {
		t.Errorf("classify() with flag off = %v, want Taxable", got)
	}
	if got := classify(lot, 365, true); got != TaxFreeOrigin {
		t.Errorf("classify() with flag on = %v, want TaxFreeOrigin", got)
	}
}

func TestClassify_WithinPeriodAndTaxableOriginIsTaxable(t *testing.T) {
	lot := SoldCashLot{
		CashLot:  CashLot{BuyDate: date.New(2024, time.January, 1)},
		SellDate: date.New(2024, time.June, 1),
	}
	if got := classify(lot, 365, true); got != Taxable {
		t.Errorf("classify() = %v, want Taxable", got)
	}
}

func TestConsolidate_FiltersByYearAndSumsShareGainsAndLosses(t *testing.T) {
	config := Config{ReportYear: 2024, RateMode: RateModeDaily}
	gain := SoldShareLot{
		ShareLot:  ShareLot{Symbol: "ACME", Quantity: Q(1), BuyDate: date.New(2023, time.January, 1)},
		SellDate:  date.New(2024, time.March, 1),
		GainDom:   DualMoney{Daily: M(100, "EUR"), Monthly: M(100, "EUR")},
	}
	loss := SoldShareLot{
		ShareLot:  ShareLot{Symbol: "ACME", Quantity: Q(1), BuyDate: date.New(2023, time.January, 1)},
		SellDate:  date.New(2024, time.April, 1),
		GainDom:   DualMoney{Daily: M(-40, "EUR"), Monthly: M(-40, "EUR")},
	}
	outOfYear := SoldShareLot{
		ShareLot: ShareLot{Symbol: "ACME", Quantity: Q(1), BuyDate: date.New(2022, time.January, 1)},
		SellDate: date.New(2023, time.March, 1),
		GainDom:  DualMoney{Daily: M(999, "EUR"), Monthly: M(999, "EUR")},
	}
	report := Consolidate(config, "EUR", []SoldShareLot{outOfYear, gain, loss}, nil, nil)

	if len(report.ShareLots) != 2 {
		t.Fatalf("ShareLots = %d, want 2 (the 2023 lot filtered out)", len(report.ShareLots))
	}
	if !report.Summary.ShareGains.Equal(M(100, "EUR")) {
		t.Errorf("ShareGains = %v, want 100 EUR", report.Summary.ShareGains)
	}
	if !report.Summary.ShareLosses.Equal(M(-40, "EUR")) {
		t.Errorf("ShareLosses = %v, want -40 EUR", report.Summary.ShareLosses)
	}
	if !report.Summary.TotalForeignCapitalIncome.Equal(M(60, "EUR")) {
		t.Errorf("TotalForeignCapitalIncome = %v, want 60 EUR", report.Summary.TotalForeignCapitalIncome)
	}
}

func TestConsolidate_TaxFreeCashLotsZeroedButStillListed(t *testing.T) {
	config := Config{ReportYear: 2024, RateMode: RateModeDaily, SpeculativePeriodDays: 365}
	lot := SoldCashLot{
		CashLot:  CashLot{Currency: "USD", Quantity: Q(10), BuyDate: date.New(2020, time.January, 1)},
		SellDate: date.New(2024, time.March, 1),
		GainDom:  DualMoney{Daily: M(500, "EUR"), Monthly: M(500, "EUR")},
	}
	report := Consolidate(config, "EUR", nil, []SoldCashLot{lot}, nil)
	if len(report.CashLots) != 1 {
		t.Fatalf("CashLots = %d, want 1", len(report.CashLots))
	}
	if report.CashLots[0].TaxStatus != TaxFreeHolding {
		t.Errorf("TaxStatus = %v, want TaxFreeHolding", report.CashLots[0].TaxStatus)
	}
	if !report.CashLots[0].GainDom.Daily.IsZero() {
		t.Errorf("GainDom.Daily = %v, want zeroed out for a tax-free lot", report.CashLots[0].GainDom.Daily)
	}
	if !report.Summary.ForexGainTotal.IsZero() {
		t.Errorf("ForexGainTotal = %v, want 0 (tax-free lot excluded from the sum)", report.Summary.ForexGainTotal)
	}
}

func TestConsolidate_DomesticCurrencyCashLotsExcluded(t *testing.T) {
	config := Config{ReportYear: 2024, RateMode: RateModeDaily}
	lot := SoldCashLot{
		CashLot:  CashLot{Currency: "EUR", Quantity: Q(10), BuyDate: date.New(2024, time.January, 1)},
		SellDate: date.New(2024, time.March, 1),
	}
	report := Consolidate(config, "EUR", nil, []SoldCashLot{lot}, nil)
	if len(report.CashLots) != 0 {
		t.Errorf("CashLots = %d, want 0 (domestic-currency lots are never foreign-exchange disposals)", len(report.CashLots))
	}
}

func TestConsolidate_MiscFlowsSumByCategory(t *testing.T) {
	config := Config{ReportYear: 2024, RateMode: RateModeDaily}
	misc := []MiscCashFlow{
		{Category: MiscDividend, Date: date.New(2024, time.January, 1), AmountDom: DualMoney{Daily: M(50, "EUR")}},
		{Category: MiscFee, Date: date.New(2024, time.February, 1), AmountDom: DualMoney{Daily: M(5, "EUR")}},
		{Category: MiscTax, Date: date.New(2024, time.March, 1), AmountDom: DualMoney{Daily: M(10, "EUR")}},
	}
	report := Consolidate(config, "EUR", nil, nil, misc)
	if !report.Summary.TotalDividends.Equal(M(50, "EUR")) {
		t.Errorf("TotalDividends = %v, want 50 EUR", report.Summary.TotalDividends)
	}
	if !report.Summary.TotalFees.Equal(M(5, "EUR")) {
		t.Errorf("TotalFees = %v, want 5 EUR", report.Summary.TotalFees)
	}
	if !report.Summary.TotalTaxes.Equal(M(10, "EUR")) {
		t.Errorf("TotalTaxes = %v, want 10 EUR", report.Summary.TotalTaxes)
	}
}
