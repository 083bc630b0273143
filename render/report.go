// Package render turns a steuerkern.Report/AwvTables into markdown: one
// function per document, built with github.com/nao1215/markdown's
// table/heading builder rather than hand-assembled strings.
package render

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"
	"github.com/tholzer/steuerkern"
)

// Report renders a tax-year Report to a markdown string.
func Report(r steuerkern.Report) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Kapitalertragsteuer-Bericht %d (%s rates)", r.Year, r.RateMode))

	doc.H2("Veräußerte Wertpapiere")
	shareTable := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft, md.AlignRight, md.AlignLeft, md.AlignRight, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight,
		},
		Header: []string{"Symbol", "Qty", "Kauf", "Kaufpreis", "Verkauf", "Verkaufpreis", "Kosten", "Gewinn/Verlust"},
	}
	for _, lot := range r.ShareLots {
		gain := r.RateMode.Value(lot.GainDom)
		shareTable.Rows = append(shareTable.Rows, []string{
			lot.Symbol,
			lot.Quantity.String(),
			lot.BuyDate.String(),
			r.RateMode.Value(lot.BuyPriceDom).SignedString(),
			lot.SellDate.String(),
			r.RateMode.Value(lot.SellPriceDom).SignedString(),
			r.RateMode.Value(lot.CostDom).SignedString(),
			gain.SignedString(),
		})
	}
	doc.Table(shareTable)

	doc.H2("Fremdwährungsgeschäfte")
	cashTable := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft, md.AlignRight, md.AlignLeft, md.AlignLeft, md.AlignRight,
		},
		Header: []string{"Currency", "Qty", "Kauf", "Verkauf", "Gewinn/Verlust"},
	}
	for _, lot := range r.CashLots {
		gain := r.RateMode.Value(lot.GainDom)
		row := []string{
			lot.Currency,
			lot.Quantity.String(),
			lot.BuyDate.String(),
			lot.SellDate.String(),
			gain.SignedString(),
		}
		if lot.TaxStatus != steuerkern.Taxable {
			row[4] = lot.TaxStatus.String()
		}
		cashTable.Rows = append(cashTable.Rows, row)
	}
	doc.Table(cashTable)

	doc.H2("Sonstige Kapitalerträge")
	miscTable := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"Date", "Category", "Comment", "Amount"},
	}
	for _, flow := range r.Misc {
		miscTable.Rows = append(miscTable.Rows, []string{
			flow.Date.String(),
			flow.Category.String(),
			flow.Comment,
			r.RateMode.Value(flow.AmountDom).SignedString(),
		})
	}
	doc.Table(miscTable)

	doc.H2("Zusammenfassung")
	s := r.Summary
	summaryTable := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Zeile", "Betrag"},
		Rows: [][]string{
			{"Aktiengewinne", s.ShareGains.SignedString()},
			{"Aktienverluste", s.ShareLosses.SignedString()},
			{"Fremdwährungsgewinn gesamt", s.ForexGainTotal.SignedString()},
			{"Fremdwährung Kaufwert gesamt", s.ForexBuyValueTotal.SignedString()},
			{"Fremdwährung Verkaufswert gesamt", s.ForexSellValueTotal.SignedString()},
			{"Dividenden gesamt", s.TotalDividends.SignedString()},
			{"Gebühren gesamt", s.TotalFees.SignedString()},
			{"Steuern gesamt", s.TotalTaxes.SignedString()},
			{md.Bold("Summe ausländischer Kapitalerträge"), md.Bold(s.TotalForeignCapitalIncome.SignedString())},
		},
	}
	doc.Table(summaryTable)

	return doc.String()
}

// AWV renders the Z4/Z10 reporting tables of AwvTables to a markdown string.
func AWV(t steuerkern.AwvTables) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("AWV-Meldungen (Außenwirtschaftsverordnung)")

	doc.H2("Z4 — Zahlungen")
	doc.Table(awvTable(t.Z4))

	doc.H2("Z10 — Wertpapierbestände und -bewegungen")
	doc.Table(awvTable(t.Z10))

	return doc.String()
}

func awvTable(filings []steuerkern.AwvFiling) md.TableSet {
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignLeft, md.AlignLeft, md.AlignLeft,
		},
		Header: []string{"Period", "Date", "Direction", "Value", "Kennzahl", "ISIN", "Land", "Purpose"},
	}
	for _, f := range filings {
		direction := "outgoing"
		if f.IsIncoming {
			direction = "incoming"
		}
		purpose := f.Purpose
		if f.Description != "" {
			purpose = f.Description
		}
		isin := f.ISIN
		if isin == "" {
			isin = "[FILL OUT ISIN]"
		}
		country := f.CountryCode
		if country == "" {
			country = "[FILL OUT COUNTRY]"
		}
		table.Rows = append(table.Rows, []string{
			f.ReportingPeriod,
			f.Date.String(),
			direction,
			f.ValueDom.SignedString(),
			fmt.Sprintf("%d", f.Kennzahl),
			isin,
			country,
			purpose,
		})
	}
	return table
}
