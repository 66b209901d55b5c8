package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/positions"
	"github.com/etnz/positions/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// tradeCmd records a buy or a sell.
type tradeCmd struct {
	action     positions.Action
	user       string
	instrument string
	quantity   string
	price      string
	total      string
	currency   string
	date       string
	memo       string
}

func (c *tradeCmd) Name() string { return string(c.action) }
func (c *tradeCmd) Synopsis() string {
	return fmt.Sprintf("record a %s of an instrument", c.action)
}
func (c *tradeCmd) Usage() string {
	return fmt.Sprintf(`pos %s -u <user> -i <instrument> -q <quantity> -p <unit price> [-total <amount>] [-c <currency>] [-d <time>] [-m <memo>]

  Appends a %s transaction to the ledger. The total price defaults to
  quantity times unit price; set -total when fees or rounding changed the
  amount actually exchanged.
`, c.action, c.action)
}

func (c *tradeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "u", "", "User trading")
	f.StringVar(&c.instrument, "i", "", "Instrument traded")
	f.StringVar(&c.quantity, "q", "", "Quantity traded")
	f.StringVar(&c.price, "p", "", "Unit price")
	f.StringVar(&c.total, "total", "", "Total price actually exchanged")
	f.StringVar(&c.currency, "c", "", "Currency, defaults to the ledger currency")
	f.StringVar(&c.date, "d", "", "Time of the trade (RFC 3339), defaults to now")
	f.StringVar(&c.memo, "m", "", "Memo")
}

// transaction builds the transaction from the flags.
func (c *tradeCmd) transaction(id positions.ID, currency string) (positions.Transaction, error) {
	quantity, err := positions.ParseQuantity(c.quantity)
	if err != nil {
		return positions.Transaction{}, fmt.Errorf("invalid quantity: %w", err)
	}
	price, err := decimal.NewFromString(c.price)
	if err != nil {
		return positions.Transaction{}, fmt.Errorf("invalid price: %w", err)
	}
	createdAt := time.Now().UTC()
	if c.date != "" {
		if createdAt, err = time.Parse(time.RFC3339, c.date); err != nil {
			return positions.Transaction{}, fmt.Errorf("invalid time: %w", err)
		}
	}
	if c.currency != "" {
		currency = c.currency
	}

	var tx positions.Transaction
	switch c.action {
	case positions.Buy:
		tx = positions.NewBuy(id, createdAt, c.user, c.instrument, quantity, positions.M(price, currency))
	case positions.Sell:
		tx = positions.NewSell(id, createdAt, c.user, c.instrument, quantity, positions.M(price, currency))
	}
	if c.total != "" {
		total, err := decimal.NewFromString(c.total)
		if err != nil {
			return positions.Transaction{}, fmt.Errorf("invalid total: %w", err)
		}
		tx.TotalPrice = positions.M(total, currency)
	}
	tx.Memo = c.memo
	return tx, nil
}

func (c *tradeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	ledger, err := DecodeLedger(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	tx, err := c.transaction(ledger.NextID(), ledger.Currency())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	// appending checks the transaction against the whole ledger.
	if err := ledger.Append(tx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := EncodeTransaction(ctx, cfg, tx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if tx.Action == positions.Sell {
		r := positions.ReplayAll(ledger.Instrument(tx.User, tx.Instrument))
		if m, _ := r.Match(tx.ID); m.Oversold() {
			fmt.Fprintf(os.Stderr, "Warning: %s holds only %s of %s\n", tx.User, m.Matched, tx.Instrument)
		}
	}
	fmt.Fprintln(stdout, renderer.Transaction(tx))
	return subcommands.ExitSuccess
}
