package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/tholzer/steuerkern"
	"github.com/tholzer/steuerkern/render"
)

type processCmd struct {
	eventsFile string
	year       int
	monthly    bool
	splits     bool
	taxFreeFx  bool
}

func (*processCmd) Name() string     { return "process" }
func (*processCmd) Synopsis() string { return "run the kernel over an event stream and print a tax report" }
func (*processCmd) Usage() string {
	return `steuerkern process -events <file> -year <year>

  Reads a newline-delimited JSON event stream, runs it through the
  tax-lot kernel, and prints the consolidated report as markdown.
`
}

func (c *processCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.eventsFile, "events", "", "path to the newline-delimited JSON event stream")
	f.IntVar(&c.year, "year", 0, "tax year to report (required)")
	f.BoolVar(&c.monthly, "monthly", false, "value foreign-currency amounts at the monthly mean rate instead of the daily rate")
	f.BoolVar(&c.splits, "apply-splits", true, "apply StockSplit events to open share queues")
	f.BoolVar(&c.taxFreeFx, "tax-free-origin", false, "treat cash originating from dividends/bonuses as tax-free on disposal")
}

func (c *processCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.eventsFile == "" || c.year == 0 {
		fmt.Fprintln(os.Stderr, "-events and -year are required")
		return subcommands.ExitUsageError
	}

	f, err := openEventsFile(c.eventsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening events file %q: %v\n", c.eventsFile, err)
		return subcommands.ExitFailure
	}
	defer f.Close()

	oracle := priceOracle()
	fx := fxProvider()

	events, warnings, err := steuerkern.DecodeEvents(f, oracle, *defaultCurrency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error decoding events: %v\n", err)
		return subcommands.ExitFailure
	}

	mode := steuerkern.RateModeDaily
	if c.monthly {
		mode = steuerkern.RateModeMonthly
	}

	config := steuerkern.Config{
		ReportYear:           c.year,
		RateMode:             mode,
		ApplyStockSplits:     c.splits,
		ConsiderTaxFreeForex: c.taxFreeFx,
	}

	p := steuerkern.NewProcessor(oracle, fx, config)
	if err := p.Process(events); err != nil {
		fmt.Fprintf(os.Stderr, "error processing events: %v\n", err)
		return subcommands.ExitFailure
	}
	warnings = append(warnings, p.Warnings()...)

	shares, cash, misc, fxWarnings, err := steuerkern.ApplyFX(fx, p.AllSoldShares(), p.AllSoldCash(), p.AllMisc())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error applying FX rates: %v\n", err)
		return subcommands.ExitFailure
	}
	warnings = append(warnings, fxWarnings...)

	report := steuerkern.Consolidate(config, *defaultCurrency, shares, cash, misc)

	if *Verbose {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w.String())
		}
	}

	printMarkdown(render.Report(report))
	return subcommands.ExitSuccess
}
