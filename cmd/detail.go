package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/positions"
	"github.com/etnz/positions/renderer"
	"github.com/google/subcommands"
)

type detailCmd struct {
	id   int64
	json bool
}

func (*detailCmd) Name() string     { return "detail" }
func (*detailCmd) Synopsis() string { return "display the realized return of a sell" }
func (*detailCmd) Usage() string {
	return `pos detail -id <transaction id> [-json]

  Displays the lots consumed by a sell, their average entry price, the total
  cost and revenue, and the profit in value and percent.
`
}

func (c *detailCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "ID of the sell transaction")
	f.BoolVar(&c.json, "json", false, "Print the attribution as JSON")
}

func (c *detailCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == 0 {
		fmt.Fprintln(os.Stderr, "Error: -id is required")
		return subcommands.ExitUsageError
	}

	_, as, err := accountant(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	a, err := as.Attribution(positions.ID(c.id))
	if errors.Is(err, positions.ErrNoAttribution) {
		fmt.Fprintf(os.Stderr, "No realized return: %v\n", err)
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	ra := renderer.NewAttribution(a)
	if c.json {
		if err := printJSON(ra); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding attribution: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderAttribution(ra))
	return subcommands.ExitSuccess
}
