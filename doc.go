// Package steuerkern implements the tax-lot accounting kernel for German
// personal capital-gains reporting on foreign equity.
//
// It ingests a chronological stream of brokerage events (RSU vestings,
// ESPP purchases, dividends, tax withholdings, buys, sells, money
// movements, currency conversions, and stock splits), matches sells
// against the oldest open buys on a per-symbol and per-currency basis, and
// produces, for a requested calendar year, the tax-form line-items and the
// central-bank Z4/Z10 foreign-transaction filings.
//
// The kernel is a pure function of (events, price oracle, FX-rate
// provider, configuration): it holds no persisted state across runs and
// performs no I/O of its own. The PriceOracle and FXRateProvider
// collaborators are injected at construction; callers needing a live
// implementation can use the oracle and fxrate subpackages, or supply
// their own.
package steuerkern
