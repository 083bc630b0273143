package steuerkern

import (
	"testing"
	"time"

	"github.com/tholzer/steuerkern/date"
)

func TestGenerateAWV_FiltersBelowDefaultThresholdPre2025(t *testing.T) {
	entries := []AwvEntry{
		{Date: date.New(2024, time.March, 1), Currency: "EUR", ValueDom: M(12000, "EUR")},
		{Date: date.New(2024, time.April, 1), Currency: "EUR", ValueDom: M(13000, "EUR")},
	}
	tables := GenerateAWV(Config{ReportYear: 2024}, "EUR", nil, entries)
	if len(tables.Z10) != 1 {
		t.Fatalf("Z10 = %d entries, want 1 (only the 13000 EUR entry clears the 12500 pre-2025 threshold)", len(tables.Z10))
	}
	if !tables.Z10[0].ValueDom.Equal(M(13000, "EUR")) {
		t.Errorf("Z10[0].ValueDom = %v, want 13000 EUR", tables.Z10[0].ValueDom)
	}
}

func TestGenerateAWV_DefaultThresholdRisesFrom2025(t *testing.T) {
	entries := []AwvEntry{
		{Date: date.New(2025, time.March, 1), Currency: "EUR", ValueDom: M(13000, "EUR")},
		{Date: date.New(2025, time.April, 1), Currency: "EUR", ValueDom: M(60000, "EUR")},
	}
	tables := GenerateAWV(Config{ReportYear: 2025}, "EUR", nil, entries)
	if len(tables.Z10) != 1 {
		t.Fatalf("Z10 = %d entries, want 1 (13000 EUR no longer clears the 50000 2025+ threshold)", len(tables.Z10))
	}
	if !tables.Z10[0].ValueDom.Equal(M(60000, "EUR")) {
		t.Errorf("Z10[0].ValueDom = %v, want 60000 EUR", tables.Z10[0].ValueDom)
	}
}

func TestGenerateAWV_ConfiguredThresholdOverridesDefault(t *testing.T) {
	entries := []AwvEntry{{Date: date.New(2024, time.March, 1), Currency: "EUR", ValueDom: M(100, "EUR")}}
	tables := GenerateAWV(Config{ReportYear: 2024, AwvThresholdDom: M(50, "EUR")}, "EUR", nil, entries)
	if len(tables.Z10) != 1 {
		t.Fatalf("Z10 = %d entries, want 1 (100 EUR clears a configured 50 EUR threshold)", len(tables.Z10))
	}
}

func TestGenerateAWV_FiltersByYearAndSortsByReportingPeriod(t *testing.T) {
	entries := []AwvEntry{
		{Date: date.New(2024, time.November, 1), Currency: "EUR", ValueDom: M(60000, "EUR")},
		{Date: date.New(2023, time.December, 1), Currency: "EUR", ValueDom: M(60000, "EUR")},
		{Date: date.New(2024, time.February, 1), Currency: "EUR", ValueDom: M(60000, "EUR")},
	}
	tables := GenerateAWV(Config{ReportYear: 2024}, "EUR", entries, nil)
	if len(tables.Z4) != 2 {
		t.Fatalf("Z4 = %d entries, want 2 (the 2023 entry filtered out)", len(tables.Z4))
	}
	if tables.Z4[0].ReportingPeriod >= tables.Z4[1].ReportingPeriod {
		t.Errorf("Z4 reporting periods not sorted ascending: %q then %q", tables.Z4[0].ReportingPeriod, tables.Z4[1].ReportingPeriod)
	}
}

func TestGenerateAWV_NegativeValueComparedByAbsolute(t *testing.T) {
	entries := []AwvEntry{{Date: date.New(2024, time.March, 1), Currency: "EUR", ValueDom: M(-60000, "EUR")}}
	tables := GenerateAWV(Config{ReportYear: 2024}, "EUR", nil, entries)
	if len(tables.Z10) != 1 {
		t.Errorf("Z10 = %d entries, want 1 (an outgoing -60000 EUR movement clears the threshold by absolute value)", len(tables.Z10))
	}
}
