package oracle

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/PaesslerAG/jsonpath"
	"github.com/tholzer/steuerkern"
	"github.com/tholzer/steuerkern/date"
)

// HTTP is a disk-cached PriceOracle backed by a remote end-of-day price
// API. It caches one JSON response per (ticker, day) on disk, keyed by a
// hash of the request, and re-fetches once the cached entry is a day old.
type HTTP struct {
	client   *http.Client
	baseURL  string // e.g. "https://eodhd.example/api/eod/%s?api_token=%s&fmt=json"
	apiToken string
	currency map[string]string
}

// NewHTTP constructs an HTTP oracle against baseURL (a printf template
// taking the ticker and api token) using a disk-cached client.
func NewHTTP(baseURL, apiToken string) *HTTP {
	return &HTTP{
		client:   &http.Client{Transport: &diskCache{http.DefaultTransport}},
		baseURL:  baseURL,
		apiToken: apiToken,
		currency: make(map[string]string),
	}
}

// SetCurrency records the quote currency for symbol, used to tag the
// Money values ClosePrice/LatestClose return.
func (h *HTTP) SetCurrency(symbol, currency string) { h.currency[symbol] = currency }

type eodRecord struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

func (h *HTTP) fetch(symbol string) ([]eodRecord, error) {
	addr := fmt.Sprintf(h.baseURL, symbol, h.apiToken)
	var jobj any
	if err := jget(h.client, addr, &jobj); err != nil {
		return nil, fmt.Errorf("fetching end-of-day series for %s: %w", symbol, err)
	}
	val, err := jsonpath.Get("$[*]", jobj)
	if err != nil {
		return nil, fmt.Errorf("parsing end-of-day series for %s: %w", symbol, err)
	}
	rows, ok := val.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected end-of-day series shape for %s", symbol)
	}
	out := make([]eodRecord, 0, len(rows))
	for _, row := range rows {
		raw, err := json.Marshal(row)
		if err != nil {
			continue
		}
		var rec eodRecord
		if err := json.Unmarshal(raw, &rec); err == nil {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (h *HTTP) history(symbol string) *date.History[float64] {
	records, err := h.fetch(symbol)
	hist := &date.History[float64]{}
	if err != nil {
		log.Printf("oracle: %v", err)
		return hist
	}
	for _, r := range records {
		d, err := date.Parse(r.Date)
		if err != nil {
			continue
		}
		hist.Append(d, r.Close)
	}
	return hist
}

func (h *HTTP) ClosePrice(symbol string, on date.Date) *steuerkern.Money {
	hist := h.history(symbol)
	at, v, found := hist.ValueAsOfWithDate(on)
	if !found || at.Days(on) > oracleLookbackDays {
		return nil
	}
	m := steuerkern.M(v, h.currency[symbol])
	return &m
}

func (h *HTTP) LatestClose(symbol string) *steuerkern.Money {
	hist := h.history(symbol)
	if hist.Len() == 0 {
		return nil
	}
	_, v := hist.Latest()
	m := steuerkern.M(v, h.currency[symbol])
	return &m
}

// Splits is not backed by this provider's end-of-day endpoint; a real
// deployment would point it at a dedicated splits endpoint. It returns an
// empty list, which is a conservative, always-valid answer (normalisation
// falls back to the oracle close comparison regardless).
func (h *HTTP) Splits(symbol string) []steuerkern.Split { return nil }

func (h *HTTP) IsHistoric(price steuerkern.Money, symbol string, on date.Date) (bool, *steuerkern.Money) {
	return steuerkern.DefaultIsHistoric(h, price, symbol, on)
}

// diskCache and jget give the oracle's HTTP fetch a daily-expiring disk
// cache, so repeated lookups for the same symbol and day don't re-hit the
// network.

type diskCache struct{ base http.RoundTripper }

func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	key := fmt.Sprintf("%s %s %s", date.Today().String(), req.Method, req.URL.String())
	key = fmt.Sprintf("%x", sha1.Sum([]byte(key)))

	if cached, err := c.get(key, req); err == nil {
		return cached, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v/%v %v", resp.Request.Method, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		log.Printf("oracle cache write err (ignored): %v", err)
	}
	return resp, nil
}

func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(os.TempDir(), key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(os.TempDir(), key))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(content)
	return err
}

func jget(client *http.Client, addr string, data any) error {
	resp, err := client.Get(addr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}
