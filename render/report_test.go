package render

import (
	"strings"
	"testing"
	"time"

	"github.com/tholzer/steuerkern"
	"github.com/tholzer/steuerkern/date"
)

func dualEUR(v int64) steuerkern.DualMoney {
	m := steuerkern.M(v, "EUR")
	return steuerkern.DualMoney{Daily: m, Monthly: m}
}

func TestReport_ListsShareCashAndMiscRows(t *testing.T) {
	r := steuerkern.Report{
		Year:     2024,
		RateMode: steuerkern.RateModeDaily,
		ShareLots: []steuerkern.SoldShareLot{{
			ShareLot: steuerkern.ShareLot{
				Symbol:   "ACME",
				Quantity: steuerkern.Q(10),
				BuyDate:  date.New(2024, time.January, 1),
				BuyPrice: steuerkern.M(100, "USD"),
			},
			SellDate:     date.New(2024, time.June, 1),
			SellPrice:    steuerkern.M(150, "USD"),
			BuyPriceDom:  dualEUR(90),
			SellPriceDom: dualEUR(140),
			CostDom:      dualEUR(0),
			GainDom:      dualEUR(50),
		}},
		CashLots: []steuerkern.SoldCashLot{{
			CashLot: steuerkern.CashLot{
				Currency: "USD",
				Quantity: steuerkern.Q(100),
				BuyDate:  date.New(2024, time.January, 1),
			},
			SellDate:  date.New(2024, time.March, 1),
			GainDom:   dualEUR(5),
			TaxStatus: steuerkern.Taxable,
		}},
		Misc: []steuerkern.MiscCashFlow{{
			Category:  steuerkern.MiscDividend,
			Currency:  "USD",
			Date:      date.New(2024, time.February, 1),
			Comment:   "ACME dividend",
			AmountDom: dualEUR(20),
		}},
		Summary: steuerkern.Summary{
			ShareGains:                steuerkern.M(50, "EUR"),
			TotalDividends:            steuerkern.M(20, "EUR"),
			TotalForeignCapitalIncome: steuerkern.M(70, "EUR"),
		},
	}

	got := Report(r)

	for _, want := range []string{
		"Kapitalertragsteuer-Bericht 2024 (daily rates)",
		"ACME",
		"ACME dividend",
		"Summe ausländischer Kapitalerträge",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Report() missing %q in:\n%s", want, got)
		}
	}
}

func TestReport_NonTaxableCashLotShowsStatusInsteadOfGain(t *testing.T) {
	r := steuerkern.Report{
		Year:     2024,
		RateMode: steuerkern.RateModeDaily,
		CashLots: []steuerkern.SoldCashLot{{
			CashLot: steuerkern.CashLot{
				Currency: "USD",
				Quantity: steuerkern.Q(100),
				BuyDate:  date.New(2023, time.January, 1),
			},
			SellDate:  date.New(2024, time.June, 1),
			GainDom:   dualEUR(5),
			TaxStatus: steuerkern.TaxFreeHolding,
		}},
	}

	got := Report(r)
	if !strings.Contains(got, steuerkern.TaxFreeHolding.String()) {
		t.Errorf("Report() = %s, want the TaxFreeHolding status string in place of the gain", got)
	}
}

func TestAWV_RendersZ4AndZ10WithDirection(t *testing.T) {
	tables := steuerkern.AwvTables{
		Z4: []steuerkern.AwvFiling{{
			AwvEntry: steuerkern.AwvEntry{
				Date:       date.New(2024, time.January, 1),
				Currency:   "USD",
				ValueDom:   steuerkern.M(15000, "EUR"),
				IsIncoming: true,
				Kennzahl:   521,
				Purpose:    "dividend",
			},
			ReportingPeriod: "2024-01",
		}},
		Z10: []steuerkern.AwvFiling{{
			AwvEntry: steuerkern.AwvEntry{
				Date:        date.New(2024, time.June, 1),
				Currency:    "USD",
				ValueDom:    steuerkern.M(20000, "EUR"),
				IsIncoming:  false,
				Kennzahl:    104,
				Purpose:     "security purchase",
				Description: "ACME (Kauf von Aktien)",
				ISIN:        "US0000000000",
				CountryCode: "US",
			},
			ReportingPeriod: "2024-06",
		}},
	}

	got := AWV(tables)

	for _, want := range []string{
		"Z4 — Zahlungen",
		"Z10 — Wertpapierbestände und -bewegungen",
		"2024-01",
		"incoming",
		"2024-06",
		"outgoing",
		"521",
		"104",
		"ACME (Kauf von Aktien)",
		"US0000000000",
		"US",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("AWV() missing %q in:\n%s", want, got)
		}
	}
}

func TestAWV_BlankISINAndCountryGetFillOutPlaceholders(t *testing.T) {
	tables := steuerkern.AwvTables{
		Z10: []steuerkern.AwvFiling{{
			AwvEntry:        steuerkern.AwvEntry{Date: date.New(2024, time.June, 1), Kennzahl: 104, Purpose: "Buy"},
			ReportingPeriod: "2024-06",
		}},
	}

	got := AWV(tables)
	if !strings.Contains(got, "[FILL OUT ISIN]") || !strings.Contains(got, "[FILL OUT COUNTRY]") {
		t.Errorf("AWV() = %s, want FILL OUT placeholders when ISIN/CountryCode are blank", got)
	}
}
