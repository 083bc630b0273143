// Package main provides the entry point for the `steuerkern` command-line
// tool: it registers the kernel's reporting subcommands and wires up shell
// completion.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"maps"
	"os"
	"path"
	"slices"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"github.com/tholzer/steuerkern/cmd"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	cmd.Register(commander)

	complete.Complete("steuerkern", newCommanderCompleter(commander))

	flag.Parse()

	if !*cmd.Verbose {
		log.SetOutput(io.Discard)
	}

	os.Exit(int(commander.Execute(context.Background())))
}

func newCommanderCompleter(c *subcommands.Commander) complete.Completer {
	sub := &completer{
		subcommands: make(map[string]complete.Completer),
		flags:       make(map[string]complete.Predictor),
		args:        predict.Nothing,
	}
	c.VisitCommands(func(g *subcommands.CommandGroup, command subcommands.Command) {
		sub.subcommands[command.Name()] = newCommandCompleter(command)
	})
	c.VisitAll(func(f *flag.Flag) {
		sub.flags[f.Name] = newFlagPredictor(f)
	})
	return sub
}

func newCommandCompleter(command subcommands.Command) complete.Completer {
	sub := &completer{
		subcommands: make(map[string]complete.Completer),
		flags:       make(map[string]complete.Predictor),
		args:        predict.Nothing,
	}

	fs := flag.NewFlagSet(command.Name(), flag.ContinueOnError)
	command.SetFlags(fs)
	fs.VisitAll(func(f *flag.Flag) {
		sub.flags[f.Name] = newFlagPredictor(f)
	})
	return sub
}

func newFlagPredictor(f *flag.Flag) complete.Predictor {
	if p, ok := f.Value.(complete.Predictor); ok {
		return p
	}
	return predict.Nothing
}

type completer struct {
	subcommands map[string]complete.Completer
	flags       map[string]complete.Predictor
	args        complete.Predictor
}

func (s *completer) SubCmdList() []string { return nil }

func (s *completer) SubCmdGet(name string) complete.Completer { return s.subcommands[name] }

func (s *completer) FlagList() []string { return slices.Collect(maps.Keys(s.flags)) }

func (s *completer) FlagGet(name string) complete.Predictor { return s.flags[name] }

func (s *completer) ArgsGet() complete.Predictor {
	if len(s.subcommands) > 0 {
		return predict.Set(slices.Collect(maps.Keys(s.subcommands)))
	}
	if s.args != nil {
		return s.args
	}
	return predict.Nothing
}
