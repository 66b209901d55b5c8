// Command pos accounts for the positions of traders: FIFO lots, realized and
// unrealized winnings, and the realized return of every sell.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/positions/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	// shell completion, active only when invoked by the shell.
	completion().Complete("pos")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion describes the commands and flags of pos.
func completion() *complete.Command {
	user := predict.Something
	json := predict.Nothing
	trade := &complete.Command{
		Flags: map[string]complete.Predictor{
			"u":     user,
			"i":     predict.Something,
			"q":     predict.Something,
			"p":     predict.Something,
			"total": predict.Something,
			"c":     predict.Set{"USD", "EUR", "GBP", "CHF", "JPY"},
			"d":     predict.Something,
			"m":     predict.Something,
		},
	}
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config":      predict.Files("*.yaml"),
			"ledger-file": predict.Files("*.jsonl"),
			"dsn":         predict.Files("*.db"),
		},
		Sub: map[string]*complete.Command{
			"winnings": {Flags: map[string]complete.Predictor{"u": user, "price": predict.Something, "unrealized": predict.Something, "json": json}},
			"detail":   {Flags: map[string]complete.Predictor{"id": predict.Something, "json": json}},
			"holdings": {Flags: map[string]complete.Predictor{"u": user, "plain": json, "json": json}},
			"log":      {Flags: map[string]complete.Predictor{"u": user, "head": predict.Something, "tail": predict.Something}},
			"buy":      trade,
			"sell":     trade,
			"fmt":      {},
			"import":   {Flags: map[string]complete.Predictor{"f": predict.Files("*.jsonl")}},
			"help":     {},
			"flags":    {},
		},
	}
}
