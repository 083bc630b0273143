package fxrate

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tholzer/steuerkern/date"
)

// bundesbankSeries maps an ISO currency code to the Bundesbank SDMX time
// series ID for its EUR reference rate (BBEX3.D.<CCY>.EUR.BB.AC.000).
var bundesbankSeries = map[string]string{
	"USD": "BBEX3.D.USD.EUR.BB.AC.000",
	"GBP": "BBEX3.D.GBP.EUR.BB.AC.000",
	"CHF": "BBEX3.D.CHF.EUR.BB.AC.000",
	"JPY": "BBEX3.D.JPY.EUR.BB.AC.000",
}

// Bundesbank is an FXRateProvider backed by the Bundesbank's daily EUR
// reference-rate CSV export: one HTTP GET per currency, a flat tabular
// payload, and an in-memory cache of each parsed series for the lifetime
// of the provider. Rows that do not parse are skipped; a series with no
// usable row is an error.
type Bundesbank struct {
	client   *http.Client
	domestic string
	history  map[string]*date.History[float64]
}

// NewBundesbank constructs a Bundesbank provider for domesticCurrency
// (normally "EUR").
func NewBundesbank(domesticCurrency string) *Bundesbank {
	return &Bundesbank{
		client:   http.DefaultClient,
		domestic: domesticCurrency,
		history:  make(map[string]*date.History[float64]),
	}
}

func (b *Bundesbank) DomesticCurrency() string { return b.domestic }

func (b *Bundesbank) Supported() []string {
	out := make([]string, 0, len(bundesbankSeries))
	for ccy := range bundesbankSeries {
		out = append(out, ccy)
	}
	return out
}

func (b *Bundesbank) seriesFor(currency string) (*date.History[float64], error) {
	if h, ok := b.history[currency]; ok {
		return h, nil
	}
	seriesID, ok := bundesbankSeries[currency]
	if !ok {
		return nil, &RateMissingError{Currency: currency, Date: "unsupported currency"}
	}
	h, err := b.fetch(seriesID)
	if err != nil {
		return nil, fmt.Errorf("fetching Bundesbank series for %s: %w", currency, err)
	}
	b.history[currency] = h
	return h, nil
}

// fetch downloads and parses one Bundesbank time-series CSV export. The
// export is a single flat file (no zip wrapper, unlike INSEE's), so the
// parse step only needs encoding/csv.
func (b *Bundesbank) fetch(seriesID string) (*date.History[float64], error) {
	addr := fmt.Sprintf("https://api.statistiken.bundesbank.de/rest/download/BBEX3/%s?format=csv&lang=en", seriesID)
	log.Println("fxrate: downloading from Bundesbank:", addr)

	resp, err := b.client.Get(addr)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bundesbank returned status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return parseBundesbankCSV(body)
}

// parseBundesbankCSV reads the Bundesbank SDMX CSV export: a header block
// followed by one "date,value" row per trading day. Rows whose value is
// the Bundesbank "no quotation" marker are skipped rather than failing
// the whole series, since holidays/no-trading days are expected gaps, not
// malformed data.
func parseBundesbankCSV(body []byte) (*date.History[float64], error) {
	reader := csv.NewReader(strings.NewReader(string(body)))
	reader.FieldsPerRecord = -1
	reader.Comma = ','

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read bundesbank csv: %w", err)
	}

	hist := &date.History[float64]{}
	for _, row := range records {
		if len(row) < 2 {
			continue
		}
		d, err := date.Parse(row[0])
		if err != nil {
			continue // header/footer rows, not a data row
		}
		val, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			continue // "." / "no quotation" marker rows
		}
		hist.Append(d, val)
	}
	if hist.Len() == 0 {
		return nil, fmt.Errorf("no usable rows parsed from bundesbank csv")
	}
	return hist, nil
}

// DailyRate returns the foreign-units-per-domestic-unit rate. The
// Bundesbank series quote foreign units per EUR, which matches
// FXRateProvider's convention directly when EUR is domestic; when the
// date has no quotation it advances day by day up to 7 days, same
// tolerance as Fixed.
func (b *Bundesbank) DailyRate(currency string, on date.Date) (decimal.Decimal, error) {
	if currency == b.domestic {
		return decimal.NewFromInt(1), nil
	}
	h, err := b.seriesFor(currency)
	if err != nil {
		return decimal.Decimal{}, err
	}
	for lag := 0; lag <= 7; lag++ {
		if v, found := h.Get(on.Add(lag)); found {
			return decimal.NewFromFloat(v), nil
		}
	}
	return decimal.Decimal{}, newRateMissing(currency, on)
}

func (b *Bundesbank) MonthlyRate(currency string, year, month int) (decimal.Decimal, error) {
	if currency == b.domestic {
		return decimal.NewFromInt(1), nil
	}
	h, err := b.seriesFor(currency)
	if err != nil {
		return decimal.Decimal{}, err
	}
	sum := decimal.Zero
	count := 0
	for d, v := range h.Values() {
		if d.Year() == year && int(d.Month()) == month {
			sum = sum.Add(decimal.NewFromFloat(v))
			count++
		}
	}
	if count == 0 {
		return decimal.Decimal{}, newRateMissing(currency, date.New(year, timeMonth(month), 1))
	}
	return sum.Div(decimal.NewFromInt(int64(count))), nil
}
