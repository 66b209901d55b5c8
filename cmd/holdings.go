package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/positions/renderer"
	"github.com/google/subcommands"
	"github.com/olekukonko/tablewriter"
)

// holdingsCmd holds the flags for the 'holdings' subcommand.
type holdingsCmd struct {
	user  string
	plain bool
	json  bool
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "display the open positions of a user" }
func (*holdingsCmd) Usage() string {
	return `pos holdings -u <user> [-plain | -json]

  Displays the open positions of a user with their FIFO cost basis.
  With -plain, every open lot is listed in a plain text table.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "u", "", "User to report on")
	f.BoolVar(&c.plain, "plain", false, "Print open lots as a plain text table")
	f.BoolVar(&c.json, "json", false, "Print holdings as JSON")
}

func (c *holdingsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "Error: -u is required")
		return subcommands.ExitUsageError
	}

	_, as, err := accountant(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	r := as.Replay(c.user)
	h := renderer.NewHoldings(c.user, as.Ledger().Currency(), as.Holdings(c.user), r.Oversells())

	switch {
	case c.json:
		if err := printJSON(h); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding holdings: %v\n", err)
			return subcommands.ExitFailure
		}
	case c.plain:
		printLots(h)
	default:
		printMarkdown(renderer.RenderHoldings(h))
	}
	return subcommands.ExitSuccess
}

// printLots prints every open lot in a plain text table.
func printLots(h *renderer.Holdings) {
	table := tablewriter.NewWriter(stdout)
	table.Header("Instrument", "Lot", "Acquired", "Remaining", "Unit Price", "Cost")
	for _, hp := range h.Holdings {
		for _, l := range hp.Lots {
			table.Append(
				hp.Instrument,
				fmt.Sprintf("#%d", l.Origin),
				l.Acquired.Format(time.DateTime),
				l.Remaining.String(),
				l.UnitPrice.String(),
				l.UnitPrice.Mul(l.Remaining).String(),
			)
		}
	}
	table.Render()
}
