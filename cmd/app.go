// Package cmd implements the CLI application to account for positions.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/positions"
	"github.com/etnz/positions/config"
	"github.com/etnz/positions/store"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

// Commands lists the subcommands of the application.
var Commands = []subcommands.Command{
	&winningsCmd{},
	&detailCmd{},
	&holdingsCmd{},
	&logCmd{},
	&tradeCmd{action: positions.Buy},
	&tradeCmd{action: positions.Sell},
	&fmtCmd{},
	&importCmd{},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd, "")
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "pos.yaml", "Path to the YAML configuration file")
var ledgerFile = flag.String("ledger-file", "", "Path to the ledger file containing transactions (JSONL format). Overrides the configuration.")
var dsn = flag.String("dsn", "", "SQLite database of transactions. Overrides the configuration and the ledger file.")

// stdout is where reports are printed.
var stdout io.Writer = os.Stdout

// settings loads the configuration and applies the global flags.
func settings() (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *ledgerFile != "" {
		cfg.Ledger.File = *ledgerFile
	}
	if *dsn != "" {
		cfg.Ledger.DSN = *dsn
	}
	return cfg, nil
}

// newLogger creates the application logger, on stderr.
func newLogger(cfg *config.Config) logrus.FieldLogger {
	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using default logger\n", err)
		return logrus.StandardLogger()
	}
	return logger
}

// DecodeLedger loads the ledger from the configured database, or from the
// ledger file. A missing ledger file is an empty ledger.
func DecodeLedger(ctx context.Context, cfg *config.Config) (*positions.Ledger, error) {
	if cfg.Ledger.DSN != "" {
		db, err := store.Open(cfg.Ledger.DSN)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.Ledger(ctx)
	}

	f, err := os.Open(cfg.Ledger.File)
	if errors.Is(err, fs.ErrNotExist) {
		return positions.NewLedger(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("error opening ledger file %q: %w", cfg.Ledger.File, err)
	}
	defer f.Close()

	ledger, err := positions.DecodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("error decoding ledger file %q: %w", cfg.Ledger.File, err)
	}
	return ledger, nil
}

// accountant loads the ledger and creates an accountant logging with the
// configured logger.
func accountant(ctx context.Context) (*config.Config, *positions.Accountant, error) {
	cfg, err := settings()
	if err != nil {
		return nil, nil, err
	}
	ledger, err := DecodeLedger(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, positions.NewAccountant(ledger, newLogger(cfg)), nil
}

// EncodeTransaction appends a single transaction to the configured database
// or ledger file.
func EncodeTransaction(ctx context.Context, cfg *config.Config, tx positions.Transaction) error {
	if cfg.Ledger.DSN != "" {
		db, err := store.Open(cfg.Ledger.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Save(ctx, tx)
	}

	// Open the file in append mode, creating it if it doesn't exist.
	f, err := os.OpenFile(cfg.Ledger.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error opening ledger file %q: %w", cfg.Ledger.File, err)
	}
	defer f.Close()

	if err := positions.EncodeTransaction(f, tx); err != nil {
		return fmt.Errorf("error writing to ledger file %q: %w", cfg.Ledger.File, err)
	}
	return nil
}

// printMarkdown renders markdown for the terminal.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}
