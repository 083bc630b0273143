// Package cmd implements the steuerkern CLI application.
package cmd

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/tholzer/steuerkern"
	"github.com/tholzer/steuerkern/fxrate"
	"github.com/tholzer/steuerkern/oracle"
)

// As a CLI application, it has a very short-lived lifecycle, so it is ok to use global variables for flags.
var (
	defaultCurrency = flag.String("domestic-currency", "EUR", "domestic (reporting) currency")
	eodhdURL        = flag.String("eodhd-url", "", "printf template for the end-of-day price API (ticker, token); empty disables live price lookups")
	eodhdToken      = flag.String("eodhd-token", "", "API token for the end-of-day price provider")
	noRender        = flag.Bool("no-render", false, "disable markdown rendering in terminal output")
	Verbose         = flag.Bool("v", false, "enable verbose logging")
)

// Register registers all the application's subcommands with the provided Commander.
// A main package will call Register() to set up the CLI.
func Register(c *subcommands.Commander) {
	c.Register(&processCmd{}, "reports")
	c.Register(&awvCmd{}, "reports")
}

// priceOracle constructs the live, disk-cached PriceOracle the CLI runs
// against. When no end-of-day API endpoint is configured it falls back to
// an always-empty Fixed oracle: with no close price on file, every quoted
// price is accepted as already historic, so the CLI still runs end to end
// without any external service configured.
func priceOracle() steuerkern.PriceOracle {
	if *eodhdURL == "" {
		return oracle.NewFixed()
	}
	return oracle.NewHTTP(*eodhdURL, *eodhdToken)
}

// fxProvider constructs the live Bundesbank FXRateProvider for the
// configured domestic currency.
func fxProvider() steuerkern.FXRateProvider {
	return fxrate.NewBundesbank(*defaultCurrency)
}

// printMarkdown renders a markdown string to stdout with appropriate styling.
// If styling fails for any reason (e.g., glamour error), it logs the error
// and falls back to printing the raw, un-styled markdown string.
func printMarkdown(doc string) {
	if *noRender {
		fmt.Print(doc)
		return
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(0),
	)
	if err != nil {
		log.Printf("Error creating markdown renderer: %v. Falling back to raw output.", err)
		fmt.Print(doc)
		return
	}

	out, err := renderer.Render(doc)
	if err != nil {
		log.Printf("Error rendering markdown: %v. Falling back to raw output.", err)
		fmt.Print(doc)
		return
	}
	fmt.Print(out)
}

func openEventsFile(path string) (*os.File, error) {
	return os.Open(path)
}
