package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/positions"
	"github.com/etnz/positions/renderer"
	"github.com/google/subcommands"
)

type logCmd struct {
	user string
	head int
	tail int
}

func (*logCmd) Name() string     { return "log" }
func (*logCmd) Synopsis() string { return "list transactions in processing order" }
func (*logCmd) Usage() string {
	return `pos log [-u <user>] [-head <n>] [-tail <n>]

  Lists transactions in processing order, with the profit of every sell, and
  reports sells that exceeded the quantity held.
`
}

func (c *logCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "u", "", "Only list the transactions of this user")
	f.IntVar(&c.head, "head", 0, "Show only the first N transactions.")
	f.IntVar(&c.tail, "tail", 0, "Show only the last N transactions.")
}

func (c *logCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.head > 0 && c.tail > 0 {
		fmt.Fprintln(os.Stderr, "Error: -head and -tail flags cannot be used together.")
		return subcommands.ExitUsageError
	}

	_, as, err := accountant(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	var (
		txs       []positions.Transaction
		oversells []positions.Oversell
	)
	if c.user != "" {
		txs = as.Ledger().User(c.user)
		oversells = as.Replay(c.user).Oversells()
	} else {
		txs = as.Ledger().Transactions()
		for user := range as.Ledger().Users() {
			oversells = append(oversells, as.Replay(user).Oversells()...)
		}
	}

	if c.head > 0 && len(txs) > c.head {
		txs = txs[:c.head]
	}
	if c.tail > 0 && len(txs) > c.tail {
		txs = txs[len(txs)-c.tail:]
	}

	printMarkdown(renderer.LogMarkdown(txs, as.Attribution, oversells))
	return subcommands.ExitSuccess
}
