package fxrate

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tholzer/steuerkern/date"
)

func TestParseBundesbankCSV_SkipsHeaderAndNoQuotationRows(t *testing.T) {
	body := []byte(strings.Join([]string{
		"Time series,BBEX3.D.USD.EUR.BB.AC.000",
		"2024-01-02,1.0950",
		"2024-01-03,.",
		"2024-01-04,1.0980",
		"",
	}, "\n"))
	hist, err := parseBundesbankCSV(body)
	if err != nil {
		t.Fatalf("parseBundesbankCSV() error = %v", err)
	}
	if hist.Len() != 2 {
		t.Fatalf("parseBundesbankCSV() = %d rows, want 2 (header and no-quotation rows skipped)", hist.Len())
	}
	v, ok := hist.Get(date.New(2024, time.January, 2))
	if !ok || v != 1.0950 {
		t.Errorf("Get(2024-01-02) = (%v, %v), want (1.0950, true)", v, ok)
	}
}

func TestParseBundesbankCSV_NoUsableRowsErrors(t *testing.T) {
	body := []byte("Time series,BBEX3.D.USD.EUR.BB.AC.000\n.,.\n")
	_, err := parseBundesbankCSV(body)
	if err == nil {
		t.Fatalf("parseBundesbankCSV() error = nil, want failure when no row parses")
	}
}

func TestBundesbank_DomesticCurrencyAlwaysRatesOne(t *testing.T) {
	b := NewBundesbank("EUR")
	rate, err := b.DailyRate("EUR", date.New(2024, time.January, 1))
	if err != nil {
		t.Fatalf("DailyRate() error = %v", err)
	}
	if !rate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("DailyRate(domestic) = %v, want 1", rate)
	}
}

func TestBundesbank_SupportedListsKnownSeries(t *testing.T) {
	b := NewBundesbank("EUR")
	supported := b.Supported()
	if len(supported) != 4 {
		t.Fatalf("Supported() = %v, want 4 known currencies", supported)
	}
}
