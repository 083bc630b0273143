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

type awvCmd struct {
	eventsFile string
	year       int
	monthly    bool
	splits     bool
}

func (*awvCmd) Name() string     { return "awv" }
func (*awvCmd) Synopsis() string { return "emit the Z4/Z10 AWV filing tables for a year" }
func (*awvCmd) Usage() string {
	return `steuerkern awv -events <file> -year <year>

  Reads a newline-delimited JSON event stream and prints the AWV Z4/Z10
  filing tables (Außenwirtschaftsverordnung reporting obligations).
`
}

func (c *awvCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.eventsFile, "events", "", "path to the newline-delimited JSON event stream")
	f.IntVar(&c.year, "year", 0, "reporting year (required)")
	f.BoolVar(&c.monthly, "monthly", false, "value entries at the monthly mean rate instead of the daily rate")
	f.BoolVar(&c.splits, "apply-splits", true, "apply StockSplit events to open share queues")
}

func (c *awvCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	events, _, err := steuerkern.DecodeEvents(f, oracle, *defaultCurrency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error decoding events: %v\n", err)
		return subcommands.ExitFailure
	}

	mode := steuerkern.RateModeDaily
	if c.monthly {
		mode = steuerkern.RateModeMonthly
	}

	config := steuerkern.Config{
		ReportYear:       c.year,
		RateMode:         mode,
		ApplyStockSplits: c.splits,
	}

	p := steuerkern.NewProcessor(oracle, fx, config)
	if err := p.Process(events); err != nil {
		fmt.Fprintf(os.Stderr, "error processing events: %v\n", err)
		return subcommands.ExitFailure
	}

	z4, err := steuerkern.ApplyFXToAWV(fx, mode, p.AwvZ4Entries())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error applying FX rates to Z4 entries: %v\n", err)
		return subcommands.ExitFailure
	}
	z10, err := steuerkern.ApplyFXToAWV(fx, mode, p.AwvZ10Entries())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error applying FX rates to Z10 entries: %v\n", err)
		return subcommands.ExitFailure
	}

	tables := steuerkern.GenerateAWV(config, *defaultCurrency, z4, z10)
	printMarkdown(render.AWV(tables))
	return subcommands.ExitSuccess
}
