package steuerkern

import (
	"testing"
	"time"

	"github.com/tholzer/steuerkern/date"
)

// stubOracle is a minimal PriceOracle double local to this package, used
// where a test needs to control IsHistoric/ClosePrice without depending on
// the oracle subpackage (which itself imports this package).
type stubOracle struct {
	historic bool
	close    *Money
}

func (s *stubOracle) ClosePrice(symbol string, on date.Date) *Money { return s.close }
func (s *stubOracle) Splits(symbol string) []Split                 { return nil }
func (s *stubOracle) LatestClose(symbol string) *Money { return s.close }
func (s *stubOracle) IsHistoric(price Money, symbol string, on date.Date) (bool, *Money) {
	return s.historic, s.close
}

func TestNewRsuVest_AcceptsHistoricPriceUnchanged(t *testing.T) {
	close := M(50, "USD")
	o := &stubOracle{historic: true, close: &close}
	ev, warn := NewRsuVest(o, date.New(2024, time.January, 1), "ACME", "USD", Q(10), M(50, "USD"), Q(2))
	if warn != nil {
		t.Errorf("warn = %v, want nil", warn)
	}
	if !ev.ReceivedQty.Equal(Q(10)) || !ev.ReceivedPrice.Equal(M(50, "USD")) {
		t.Errorf("normalised qty/price = %v/%v, want unchanged 10/50", ev.ReceivedQty, ev.ReceivedPrice)
	}
	if !ev.NetQty().Equal(Q(8)) {
		t.Errorf("NetQty() = %v, want 8", ev.NetQty())
	}
}

func TestNewBuy_RewritesOnSplitMismatch(t *testing.T) {
	close := M(100, "USD")
	o := &stubOracle{historic: false, close: &close}
	ev, warn := NewBuy(o, date.New(2024, time.January, 1), "ACME", "USD", Q(20), M(50, "USD"), M(1000, "USD"), M(5, "USD"))
	if warn == nil || warn.Code != SplitNormalised {
		t.Fatalf("warn = %v, want SplitNormalised", warn)
	}
	// implied split factor k = close/price = 100/50 = 2
	if !ev.Price.Equal(M(100, "USD")) {
		t.Errorf("historic Price = %v, want 100 USD", ev.Price)
	}
	if !ev.Qty.Equal(Q(10)) {
		t.Errorf("historic Qty = %v, want 10", ev.Qty)
	}
	if !ev.ImportedQty.Equal(Q(20)) || !ev.ImportedPrice.Equal(M(50, "USD")) {
		t.Errorf("imported fields changed: qty=%v price=%v", ev.ImportedQty, ev.ImportedPrice)
	}
}

func TestNewRsuVest_NoOracleDataWarns(t *testing.T) {
	o := &stubOracle{historic: true, close: nil}
	_, warn := NewRsuVest(o, date.New(2024, time.January, 1), "ACME", "USD", Q(10), M(50, "USD"), Zero)
	if warn == nil || warn.Code != PriceOracleMiss {
		t.Fatalf("warn = %v, want PriceOracleMiss", warn)
	}
}

func TestCurrencyConversion_ToDomesticSentinel(t *testing.T) {
	ev := NewCurrencyConversionToDomestic(date.New(2024, time.January, 1), "USD", M(100, "USD"), "EUR", M(1, "USD"))
	if !ev.ToDomesticViaReferenceRate() {
		t.Errorf("ToDomesticViaReferenceRate() = false, want true")
	}
	if ev.Priority() != PriorityConvertForeignToDomestic {
		t.Errorf("Priority() = %d, want PriorityConvertForeignToDomestic", ev.Priority())
	}
}

func TestCurrencyConversion_PriorityByDirection(t *testing.T) {
	domestic := "EUR"
	cases := []struct {
		name           string
		sourceCcy      string
		targetCcy      string
		wantPriority   int
	}{
		{"domestic to foreign", "EUR", "USD", PriorityConvertDomesticToForeign},
		{"foreign to domestic", "USD", "EUR", PriorityConvertForeignToDomestic},
		{"foreign to foreign", "USD", "GBP", PriorityConvertForeignToForeign},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev := NewCurrencyConversion(date.New(2024, time.January, 1), tc.sourceCcy, M(100, tc.sourceCcy), tc.targetCcy, M(100, tc.targetCcy), Money{cur: tc.sourceCcy}, domestic)
			if ev.Priority() != tc.wantPriority {
				t.Errorf("Priority() = %d, want %d", ev.Priority(), tc.wantPriority)
			}
		})
	}
}

func TestEspp_BonusAndContribution(t *testing.T) {
	close := M(100, "USD")
	o := &stubOracle{historic: true, close: &close}
	ev, warn := NewEsppPurchase(o, date.New(2024, time.January, 1), "ACME", "USD", Q(10), M(80, "USD"), M(100, "USD"))
	if warn != nil {
		t.Fatalf("warn = %v, want nil", warn)
	}
	if !ev.Bonus().Equal(M(200, "USD")) {
		t.Errorf("Bonus() = %v, want 200 USD", ev.Bonus())
	}
	if !ev.Contribution().Equal(M(800, "USD")) {
		t.Errorf("Contribution() = %v, want 800 USD", ev.Contribution())
	}
}
