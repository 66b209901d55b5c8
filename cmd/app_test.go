package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/positions"
	"github.com/google/subcommands"
)

const scenarioLedger = `{"id":1,"createdAt":"2025-01-10T09:01:00Z","user":"alice","instrument":"ARS","action":"buy","quantity":5,"price":10,"currency":"USD"}
{"id":2,"createdAt":"2025-01-10T09:02:00Z","user":"alice","instrument":"ARS","action":"buy","quantity":5,"price":14,"currency":"USD"}
{"id":3,"createdAt":"2025-01-10T09:03:00Z","user":"alice","instrument":"ARS","action":"sell","quantity":7,"price":20,"currency":"USD"}
`

// Helper function to create a temporary ledger file
func createTempLedger(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test_ledger.jsonl")
	if content == "" {
		return path
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write temp ledger: %v", err)
	}
	return path
}

// setup points the global flags to a temporary ledger and captures stdout.
func setup(t *testing.T, content string) (string, *bytes.Buffer) {
	t.Helper()
	for _, k := range []string{"POSITIONS_LEDGER", "POSITIONS_DSN", "POSITIONS_QUOTES_URL", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}

	path := createTempLedger(t, content)
	oldLedgerFile, oldConfigFile, oldDSN, oldStdout := *ledgerFile, *configFile, *dsn, stdout
	*ledgerFile = path
	*configFile = filepath.Join(t.TempDir(), "missing.yaml")
	*dsn = ""
	var buf bytes.Buffer
	stdout = &buf
	t.Cleanup(func() {
		*ledgerFile, *configFile, *dsn, stdout = oldLedgerFile, oldConfigFile, oldDSN, oldStdout
	})
	return path, &buf
}

// run parses args for cmd and executes it.
func run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("cannot parse %v: %v", args, err)
	}
	return cmd.Execute(context.Background(), f)
}

func readLedger(t *testing.T, path string) *positions.Ledger {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("cannot open ledger: %v", err)
	}
	defer f.Close()
	ledger, err := positions.DecodeLedger(f)
	if err != nil {
		t.Fatalf("cannot decode ledger: %v", err)
	}
	return ledger
}

type jsonMoney struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

func TestTradeThenWinnings(t *testing.T) {
	path, out := setup(t, "")

	trades := []struct {
		action positions.Action
		args   []string
	}{
		{positions.Buy, []string{"-u", "alice", "-i", "ARS", "-q", "5", "-p", "10", "-c", "USD", "-d", "2025-01-10T09:01:00Z"}},
		{positions.Buy, []string{"-u", "alice", "-i", "ARS", "-q", "5", "-p", "14", "-d", "2025-01-10T09:02:00Z"}},
		{positions.Sell, []string{"-u", "alice", "-i", "ARS", "-q", "7", "-p", "20", "-d", "2025-01-10T09:03:00Z", "-m", "take profit"}},
	}
	for _, tr := range trades {
		if status := run(t, &tradeCmd{action: tr.action}, tr.args...); status != subcommands.ExitSuccess {
			t.Fatalf("%s %v: got %v, want ExitSuccess", tr.action, tr.args, status)
		}
	}
	if !strings.Contains(out.String(), "#3 alice sold 7 of ARS for $140.00") {
		t.Errorf("unexpected trade output:\n%s", out)
	}

	ledger := readLedger(t, path)
	if ledger.Len() != 3 || ledger.Currency() != "USD" {
		t.Fatalf("ledger has %d transactions in %q, want 3 in USD", ledger.Len(), ledger.Currency())
	}
	if tx, _ := ledger.Transaction(3); tx.Action != positions.Sell || tx.Memo != "take profit" {
		t.Errorf("transaction 3 = %+v", tx)
	}

	out.Reset()
	if status := run(t, &winningsCmd{}, "-u", "alice", "-price", "ARS=20", "-json"); status != subcommands.ExitSuccess {
		t.Fatalf("winnings: got %v, want ExitSuccess", status)
	}
	var got struct {
		Realized   jsonMoney `json:"realized"`
		Unrealized jsonMoney `json:"unrealized"`
		Total      jsonMoney `json:"total"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("cannot decode winnings %q: %v", out, err)
	}
	if got.Realized.Amount != 62 || got.Unrealized.Amount != 18 || got.Total.Amount != 80 || got.Total.Currency != "USD" {
		t.Errorf("winnings = %+v, want 62 + 18 = 80 USD", got)
	}
}

func TestTradeRejectsInvalid(t *testing.T) {
	path, _ := setup(t, scenarioLedger)

	if status := run(t, &tradeCmd{action: positions.Buy}, "-u", "alice", "-i", "ARS", "-q", "-1", "-p", "10"); status == subcommands.ExitSuccess {
		t.Error("negative quantity was accepted")
	}
	if status := run(t, &tradeCmd{action: positions.Buy}, "-u", "alice", "-i", "ARS", "-q", "1", "-p", "10", "-c", "EUR"); status == subcommands.ExitSuccess {
		t.Error("a second currency was accepted")
	}
	if got := readLedger(t, path).Len(); got != 3 {
		t.Errorf("ledger has %d transactions, want 3", got)
	}
}

func TestWinnings(t *testing.T) {
	t.Run("supplied unrealized", func(t *testing.T) {
		_, out := setup(t, scenarioLedger)
		if status := run(t, &winningsCmd{}, "-u", "alice", "-unrealized", "-2", "-json"); status != subcommands.ExitSuccess {
			t.Fatalf("got %v, want ExitSuccess", status)
		}
		var got struct {
			Total jsonMoney `json:"total"`
		}
		if err := json.Unmarshal(out.Bytes(), &got); err != nil {
			t.Fatalf("cannot decode winnings %q: %v", out, err)
		}
		if got.Total.Amount != 60 {
			t.Errorf("total = %v, want 60", got.Total.Amount)
		}
	})

	t.Run("quotes file", func(t *testing.T) {
		_, out := setup(t, scenarioLedger)
		dir := t.TempDir()
		quotes := filepath.Join(dir, "quotes.json")
		if err := os.WriteFile(quotes, []byte(`{"ARS": {"last": 12}}`), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg := "quotes:\n  file: " + quotes + "\n  path: $.{instrument}.last\n"
		*configFile = filepath.Join(dir, "pos.yaml")
		if err := os.WriteFile(*configFile, []byte(cfg), 0o644); err != nil {
			t.Fatal(err)
		}

		if status := run(t, &winningsCmd{}, "-u", "alice", "-json"); status != subcommands.ExitSuccess {
			t.Fatalf("got %v, want ExitSuccess", status)
		}
		var got struct {
			Unrealized jsonMoney `json:"unrealized"`
		}
		if err := json.Unmarshal(out.Bytes(), &got); err != nil {
			t.Fatalf("cannot decode winnings %q: %v", out, err)
		}
		if got.Unrealized.Amount != -6 {
			t.Errorf("unrealized = %v, want -6", got.Unrealized.Amount)
		}
	})

	t.Run("missing price", func(t *testing.T) {
		setup(t, scenarioLedger)
		if status := run(t, &winningsCmd{}, "-u", "alice"); status != subcommands.ExitFailure {
			t.Errorf("got %v, want ExitFailure", status)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		setup(t, scenarioLedger)
		if status := run(t, &winningsCmd{}); status != subcommands.ExitUsageError {
			t.Errorf("got %v, want ExitUsageError", status)
		}
	})
}

func TestDetail(t *testing.T) {
	_, out := setup(t, scenarioLedger)

	if status := run(t, &detailCmd{}, "-id", "3", "-json"); status != subcommands.ExitSuccess {
		t.Fatalf("got %v, want ExitSuccess", status)
	}
	var got struct {
		Profit           jsonMoney `json:"profit"`
		ProfitPercentage float64   `json:"profitPercentage"`
		Legs             []struct {
			Origin int64 `json:"origin"`
		} `json:"legs"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("cannot decode attribution %q: %v", out, err)
	}
	if got.Profit.Amount != 62 || len(got.Legs) != 2 || got.Legs[0].Origin != 1 {
		t.Errorf("attribution = %+v", got)
	}

	if status := run(t, &detailCmd{}, "-id", "1"); status != subcommands.ExitFailure {
		t.Errorf("detail of a buy: got %v, want ExitFailure", status)
	}
	if status := run(t, &detailCmd{}, "-id", "42"); status != subcommands.ExitFailure {
		t.Errorf("detail of an unknown id: got %v, want ExitFailure", status)
	}
}

func TestHoldings(t *testing.T) {
	_, out := setup(t, scenarioLedger)

	if status := run(t, &holdingsCmd{}, "-u", "alice", "-plain"); status != subcommands.ExitSuccess {
		t.Fatalf("got %v, want ExitSuccess", status)
	}
	for _, want := range []string{"ARS", "#2", "$14.00", "$42.00"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("plain holdings do not contain %q:\n%s", want, out)
		}
	}

	out.Reset()
	if status := run(t, &holdingsCmd{}, "-u", "alice"); status != subcommands.ExitSuccess {
		t.Fatalf("got %v, want ExitSuccess", status)
	}
	if !strings.Contains(out.String(), "ARS") {
		t.Errorf("holdings do not contain ARS:\n%s", out)
	}
}

func TestLog(t *testing.T) {
	_, out := setup(t, scenarioLedger)

	if status := run(t, &logCmd{}, "-tail", "1"); status != subcommands.ExitSuccess {
		t.Fatalf("got %v, want ExitSuccess", status)
	}
	if !strings.Contains(out.String(), "ARS") {
		t.Errorf("log does not show the last sell:\n%s", out)
	}
	if status := run(t, &logCmd{}, "-head", "1", "-tail", "1"); status != subcommands.ExitUsageError {
		t.Errorf("-head with -tail: got %v, want ExitUsageError", status)
	}
}

func TestFormatLedger(t *testing.T) {
	path, _ := setup(t, `{"id":2,"createdAt":"2025-01-10T10:02:00+01:00","user":"alice","instrument":"ARS","action":"sell","quantity":1,"price":"12.50","currency":"USD","memo":"m"}

{"memo":"first","currency":"USD","id":1,"createdAt":"2025-01-10T09:01:00Z","user":"alice","instrument":"ARS","action":"buy","quantity":2,"price":10}
`)
	want := `{"id":1,"createdAt":"2025-01-10T09:01:00Z","user":"alice","instrument":"ARS","action":"buy","quantity":2,"price":10,"totalPrice":20,"currency":"USD","memo":"first"}
{"id":2,"createdAt":"2025-01-10T09:02:00Z","user":"alice","instrument":"ARS","action":"sell","quantity":1,"price":12.5,"totalPrice":12.5,"currency":"USD","memo":"m"}
`

	if status := run(t, &fmtCmd{}); status != subcommands.ExitSuccess {
		t.Fatalf("got %v, want ExitSuccess", status)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read formatted ledger file: %v", err)
	}
	if string(got) != want {
		t.Errorf("formatted ledger mismatch.\nGot:\n%s\nWant:\n%s", got, want)
	}
}

func TestImport(t *testing.T) {
	path, out := setup(t, scenarioLedger)
	*dsn = filepath.Join(t.TempDir(), "positions.db")

	if status := run(t, &importCmd{}, "-f", path); status != subcommands.ExitSuccess {
		t.Fatalf("got %v, want ExitSuccess", status)
	}
	if !strings.Contains(out.String(), "Imported 3 transactions") {
		t.Errorf("unexpected output: %s", out)
	}
	// importing twice would duplicate ids.
	if status := run(t, &importCmd{}, "-f", path); status != subcommands.ExitFailure {
		t.Errorf("second import: got %v, want ExitFailure", status)
	}

	// the database is now the ledger.
	*ledgerFile = filepath.Join(t.TempDir(), "missing.jsonl")
	out.Reset()
	if status := run(t, &tradeCmd{action: positions.Sell}, "-u", "alice", "-i", "ARS", "-q", "3", "-p", "15"); status != subcommands.ExitSuccess {
		t.Fatalf("sell: got %v, want ExitSuccess", status)
	}
	out.Reset()
	if status := run(t, &winningsCmd{}, "-u", "alice", "-json"); status != subcommands.ExitSuccess {
		t.Fatalf("winnings: got %v, want ExitSuccess", status)
	}
	var got struct {
		Realized jsonMoney `json:"realized"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("cannot decode winnings %q: %v", out, err)
	}
	if got.Realized.Amount != 65 { // 62 + 3*(15-14)
		t.Errorf("realized = %v, want 65", got.Realized.Amount)
	}
}
