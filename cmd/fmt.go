package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/positions"
	"github.com/google/subcommands"
)

type fmtCmd struct{}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the ledger file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `pos fmt

  Validates and formats the ledger file. This command reads all transactions,
  validates them, sorts them in processing order, and writes them back in a
  canonical JSONL format.
`
}

func (*fmtCmd) SetFlags(f *flag.FlagSet) {}

func (*fmtCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if cfg.Ledger.DSN != "" {
		fmt.Fprintln(os.Stderr, "Error: fmt works on a ledger file, not on a database")
		return subcommands.ExitUsageError
	}

	ledger, err := DecodeLedger(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	out, err := os.Create(cfg.Ledger.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger file %q for writing: %v\n", cfg.Ledger.File, err)
		return subcommands.ExitFailure
	}
	defer out.Close()
	if err := positions.EncodeLedger(out, ledger); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(os.Stderr, "Ledger file '%s' has been formatted.\n", cfg.Ledger.File)
	return subcommands.ExitSuccess
}
