package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/positions"
	"github.com/etnz/positions/store"
	"github.com/google/subcommands"
)

type importCmd struct {
	from string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a JSONL ledger into the database" }
func (*importCmd) Usage() string {
	return `pos -dsn <database> import -f <ledger.jsonl>

  Saves every transaction of a JSONL ledger into the SQLite database. Nothing
  is imported if any transaction is invalid or already stored.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "f", "", "JSONL ledger to import")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" {
		fmt.Fprintln(os.Stderr, "Error: -f is required")
		return subcommands.ExitUsageError
	}
	cfg, err := settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if cfg.Ledger.DSN == "" {
		fmt.Fprintln(os.Stderr, "Error: no database configured, use -dsn")
		return subcommands.ExitUsageError
	}

	in, err := os.Open(c.from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer in.Close()
	ledger, err := positions.DecodeLedger(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding %q: %v\n", c.from, err)
		return subcommands.ExitFailure
	}

	db, err := store.Open(cfg.Ledger.DSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	// the stored transactions and the imported ones must make a valid ledger.
	stored, err := db.Ledger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := stored.Append(ledger.Transactions()...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := db.Save(ctx, ledger.Transactions()...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(stdout, "Imported %d transactions into %s\n", ledger.Len(), cfg.Ledger.DSN)
	return subcommands.ExitSuccess
}
