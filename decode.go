package steuerkern

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tholzer/steuerkern/date"
)

// DecodeEvents reads a newline-delimited JSON event stream (one event per
// line, each carrying a "type" discriminator) and constructs the typed
// Event variants, normalising historic prices against oracle as it goes.
// It is the CLI's ingest path; broker-specific dialects are out of scope
// and must already have been translated into this shape upstream.
func DecodeEvents(r io.Reader, oracle PriceOracle, domesticCurrency string) ([]Event, []Warning, error) {
	var events []Event
	var warnings []Warning

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(line, &head); err != nil {
			return nil, warnings, fmt.Errorf("line %d: identifying event type: %w", lineNo, err)
		}

		ev, warn, err := decodeEvent(line, head.Type, oracle, domesticCurrency)
		if err != nil {
			return nil, warnings, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if warn != nil {
			warnings = append(warnings, *warn)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, warnings, fmt.Errorf("reading event stream: %w", err)
	}
	return events, warnings, nil
}

func decodeEvent(line []byte, kind string, oracle PriceOracle, domesticCurrency string) (Event, *Warning, error) {
	switch kind {
	case "RsuVest":
		var in struct {
			Date          date.Date `json:"date"`
			Symbol        string    `json:"symbol"`
			Currency      string    `json:"currency"`
			ReceivedQty   Quantity  `json:"received_qty"`
			ReceivedPrice Quantity  `json:"received_price"`
			WithheldQty   Quantity  `json:"withheld_qty"`
		}
		if err := json.Unmarshal(line, &in); err != nil {
			return nil, nil, err
		}
		ev, warn := NewRsuVest(oracle, in.Date, in.Symbol, in.Currency, in.ReceivedQty, M(in.ReceivedPrice.value, in.Currency), in.WithheldQty)
		return ev, warn, nil

	case "EsppPurchase":
		var in struct {
			Date            date.Date `json:"date"`
			Symbol          string    `json:"symbol"`
			Currency        string    `json:"currency"`
			Qty             Quantity  `json:"qty"`
			PurchasePrice   Quantity  `json:"purchase_price"`
			FairMarketValue Quantity  `json:"fair_market_value"`
		}
		if err := json.Unmarshal(line, &in); err != nil {
			return nil, nil, err
		}
		ev, warn := NewEsppPurchase(oracle, in.Date, in.Symbol, in.Currency, in.Qty,
			M(in.PurchasePrice.value, in.Currency), M(in.FairMarketValue.value, in.Currency))
		return ev, warn, nil

	case "Dividend":
		var in struct {
			Date     date.Date `json:"date"`
			Symbol   string    `json:"symbol"`
			Currency string    `json:"currency"`
			Amount   Quantity  `json:"amount"`
		}
		if err := json.Unmarshal(line, &in); err != nil {
			return nil, nil, err
		}
		return NewDividend(in.Date, in.Symbol, in.Currency, M(in.Amount.value, in.Currency)), nil, nil

	case "Tax":
		var in struct {
			Date     date.Date `json:"date"`
			Symbol   string    `json:"symbol"`
			Currency string    `json:"currency"`
			Withheld Quantity  `json:"withheld"`
			Reverted Quantity  `json:"reverted"`
		}
		if err := json.Unmarshal(line, &in); err != nil {
			return nil, nil, err
		}
		if !in.Withheld.IsZero() {
			return NewTaxWithheld(in.Date, in.Symbol, in.Currency, M(in.Withheld.value, in.Currency)), nil, nil
		}
		return NewTaxReverted(in.Date, in.Symbol, in.Currency, M(in.Reverted.value, in.Currency)), nil, nil

	case "Buy":
		var in struct {
			Date         date.Date `json:"date"`
			Symbol       string    `json:"symbol"`
			Currency     string    `json:"currency"`
			Qty          Quantity  `json:"qty"`
			Price        Quantity  `json:"price"`
			CostOfShares Quantity  `json:"cost_of_shares"`
			Fees         Quantity  `json:"fees"`
		}
		if err := json.Unmarshal(line, &in); err != nil {
			return nil, nil, err
		}
		ev, warn := NewBuy(oracle, in.Date, in.Symbol, in.Currency, in.Qty,
			M(in.Price.value, in.Currency), M(in.CostOfShares.value, in.Currency), M(in.Fees.value, in.Currency))
		return ev, warn, nil

	case "Sell":
		var in struct {
			Date     date.Date `json:"date"`
			Symbol   string    `json:"symbol"`
			Currency string    `json:"currency"`
			Qty      Quantity  `json:"qty"`
			Price    Quantity  `json:"price"`
			Proceeds Quantity  `json:"proceeds"`
			Fees     Quantity  `json:"fees"`
			TxnID    string    `json:"txn_id"`
		}
		if err := json.Unmarshal(line, &in); err != nil {
			return nil, nil, err
		}
		ev, warn := NewSell(oracle, in.Date, in.Symbol, in.Currency, in.Qty,
			M(in.Price.value, in.Currency), M(in.Proceeds.value, in.Currency), M(in.Fees.value, in.Currency), in.TxnID)
		return ev, warn, nil

	case "MoneyDeposit":
		var in struct {
			Date     date.Date `json:"date"`
			BuyDate  date.Date `json:"buy_date"`
			Currency string    `json:"currency"`
			Amount   Quantity  `json:"amount"`
			Fees     Quantity  `json:"fees"`
		}
		if err := json.Unmarshal(line, &in); err != nil {
			return nil, nil, err
		}
		buyDate := in.BuyDate
		if buyDate == (date.Date{}) {
			buyDate = in.Date
		}
		return NewMoneyDeposit(in.Date, buyDate, in.Currency, M(in.Amount.value, in.Currency), M(in.Fees.value, in.Currency)), nil, nil

	case "MoneyWithdrawal":
		var in struct {
			Date     date.Date `json:"date"`
			BuyDate  date.Date `json:"buy_date"`
			Currency string    `json:"currency"`
			Amount   Quantity  `json:"amount"`
			Fees     Quantity  `json:"fees"`
		}
		if err := json.Unmarshal(line, &in); err != nil {
			return nil, nil, err
		}
		buyDate := in.BuyDate
		if buyDate == (date.Date{}) {
			buyDate = in.Date
		}
		return NewMoneyWithdrawal(in.Date, buyDate, in.Currency, M(in.Amount.value, in.Currency), M(in.Fees.value, in.Currency)), nil, nil

	case "CurrencyConversion":
		var in struct {
			Date         date.Date `json:"date"`
			SourceCcy    string    `json:"source_ccy"`
			SourceAmount Quantity  `json:"source_amount"`
			TargetCcy    string    `json:"target_ccy"`
			TargetAmount Quantity  `json:"target_amount"`
			Fees         Quantity  `json:"fees"`
		}
		if err := json.Unmarshal(line, &in); err != nil {
			return nil, nil, err
		}
		source := M(in.SourceAmount.value, in.SourceCcy)
		fees := M(in.Fees.value, in.SourceCcy)
		if in.TargetAmount.value.Equal(domesticReferenceSentinel) {
			return NewCurrencyConversionToDomestic(in.Date, in.SourceCcy, source, domesticCurrency, fees), nil, nil
		}
		target := M(in.TargetAmount.value, in.TargetCcy)
		return NewCurrencyConversion(in.Date, in.SourceCcy, source, in.TargetCcy, target, fees, domesticCurrency), nil, nil

	case "StockSplit":
		var in struct {
			Date   date.Date `json:"date"`
			Symbol string    `json:"symbol"`
			Ratio  Quantity  `json:"ratio"`
		}
		if err := json.Unmarshal(line, &in); err != nil {
			return nil, nil, err
		}
		return NewStockSplit(in.Date, in.Symbol, in.Ratio), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown event type %q", kind)
	}
}
