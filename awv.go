package steuerkern

import "sort"

// defaultAwvThreshold returns the year-dependent default AWV reporting
// threshold: 12 500 for years before 2025, 50 000 from 2025.
func defaultAwvThreshold(year int, currency string) Money {
	if year >= 2025 {
		return M(50000, currency)
	}
	return M(12500, currency)
}

// AwvFiling is one row of a Z4 or Z10 table: the entry plus its
// YYYY-MM reporting-period key.
type AwvFiling struct {
	AwvEntry
	ReportingPeriod string
}

// AwvTables holds the two filtered, threshold-applied, period-sorted AWV
// tables ready for rendering.
type AwvTables struct {
	Z4  []AwvFiling
	Z10 []AwvFiling
}

// GenerateAWV filters entries to year, drops anything below threshold (or
// the config/year default when threshold is the zero Money), and sorts
// each category by reporting period.
func GenerateAWV(config Config, domesticCurrency string, z4, z10 []AwvEntry) AwvTables {
	threshold := config.AwvThresholdDom
	return AwvTables{
		Z4:  filterAndSort(z4, config.ReportYear, thresholdFor(threshold, config.ReportYear, domesticCurrency)),
		Z10: filterAndSort(z10, config.ReportYear, thresholdFor(threshold, config.ReportYear, domesticCurrency)),
	}
}

func thresholdFor(configured Money, year int, domesticCurrency string) Money {
	if configured.IsZero() {
		return defaultAwvThreshold(year, domesticCurrency)
	}
	return configured
}

func filterAndSort(entries []AwvEntry, year int, threshold Money) []AwvFiling {
	var out []AwvFiling
	for _, e := range entries {
		if e.Date.Year() != year {
			continue
		}
		if e.ValueDom.value.Abs().LessThan(threshold.value) {
			continue
		}
		out = append(out, AwvFiling{AwvEntry: e, ReportingPeriod: e.Date.YearMonth()})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReportingPeriod < out[j].ReportingPeriod })
	return out
}
