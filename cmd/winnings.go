package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/positions"
	"github.com/etnz/positions/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type winningsCmd struct {
	user       string
	unrealized string
	prices     pricesFlag
	json       bool
}

func (*winningsCmd) Name() string     { return "winnings" }
func (*winningsCmd) Synopsis() string { return "display the all-time winnings of a user" }
func (*winningsCmd) Usage() string {
	return `pos winnings -u <user> [-price <instrument>=<value>]... [-unrealized <amount>] [-json]

  Displays the realized gain of a user, the unrealized gain of their open
  lots and the sum of both.

  Open lots are valued with the -price flags first, then with the quotes
  configured in the configuration file. Use -unrealized to supply the
  unrealized gain computed elsewhere instead.
`
}

func (c *winningsCmd) SetFlags(f *flag.FlagSet) {
	c.prices = make(pricesFlag)
	f.StringVar(&c.user, "u", "", "User to report on")
	f.StringVar(&c.unrealized, "unrealized", "", "Unrealized gain computed elsewhere, in the ledger currency")
	f.Var(c.prices, "price", "Current price of an instrument as INSTRUMENT=VALUE, may be repeated")
	f.BoolVar(&c.json, "json", false, "Print the report as JSON")
}

func (c *winningsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "Error: -u is required")
		return subcommands.ExitUsageError
	}

	cfg, as, err := accountant(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	currency := as.Ledger().Currency()

	var report *positions.WinningsReport
	if c.unrealized != "" {
		d, err := decimal.NewFromString(c.unrealized)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -unrealized: %v\n", err)
			return subcommands.ExitUsageError
		}
		if report, err = as.NewWinningsReportWith(c.user, positions.M(d, currency)); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating winnings report: %v\n", err)
			return subcommands.ExitFailure
		}
	} else {
		prices, err := priceLookup(cfg, currency, c.prices)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading quotes: %v\n", err)
			return subcommands.ExitFailure
		}
		report, err = as.NewWinningsReport(c.user, prices)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating winnings report: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	w := renderer.NewWinnings(report)
	if c.json {
		if err := printJSON(w); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding report: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderWinnings(w))
	return subcommands.ExitSuccess
}
