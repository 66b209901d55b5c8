package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/etnz/positions"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// outline is what matters in a rendered markdown document: its headings and
// the number of tables.
type outline struct {
	headings []string
	tables   int
}

// parseOutline parses markdown the way a GFM renderer would.
func parseOutline(t *testing.T, md string) outline {
	t.Helper()
	src := []byte(md)
	root := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser().Parse(text.NewReader(src))

	var o outline
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindHeading:
			o.headings = append(o.headings, string(n.Lines().Value(src)))
		case east.KindTable:
			o.tables++
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("cannot walk markdown: %v", err)
	}
	return o
}

func (o outline) hasHeading(h string) bool {
	for _, got := range o.headings {
		if got == h {
			return true
		}
	}
	return false
}

func usd(v float64) positions.Money { return positions.M(v, "USD") }

// accountant returns an accountant over Buy 5@10, Buy 5@14, Sell 7@20 and,
// when oversell is set, a sell of an instrument never bought.
func accountant(t *testing.T, oversell bool) *positions.Accountant {
	t.Helper()
	t0 := time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC)
	txs := []positions.Transaction{
		positions.NewBuy(1, t0, "alice", "ARS", positions.Q(5), usd(10)),
		positions.NewBuy(2, t0.Add(time.Minute), "alice", "ARS", positions.Q(5), usd(14)),
		positions.NewSell(3, t0.Add(2*time.Minute), "alice", "ARS", positions.Q(7), usd(20)),
	}
	if oversell {
		txs = append(txs, positions.NewSell(4, t0.Add(3*time.Minute), "alice", "BOC", positions.Q(1), usd(3)))
	}
	ledger := positions.NewLedger()
	if err := ledger.Append(txs...); err != nil {
		t.Fatalf("cannot build ledger: %v", err)
	}
	return positions.NewAccountant(ledger, nil)
}

func TestRenderWinnings(t *testing.T) {
	report, err := accountant(t, false).NewWinningsReport("alice", positions.Prices{"ARS": usd(20)})
	if err != nil {
		t.Fatalf("NewWinningsReport() returned an unexpected error: %v", err)
	}

	md := RenderWinnings(NewWinnings(report))

	o := parseOutline(t, md)
	if o.tables != 2 {
		t.Errorf("got %d tables, want 2:\n%s", o.tables, md)
	}
	if !o.hasHeading("Winnings of alice") || !o.hasHeading("Instruments") {
		t.Errorf("headings = %q", o.headings)
	}
	if o.hasHeading("Data integrity") {
		t.Errorf("unexpected data integrity section:\n%s", md)
	}
	for _, want := range []string{"+$62.00", "+$18.00", "**+$80.00**"} {
		if !strings.Contains(md, want) {
			t.Errorf("winnings do not contain %q:\n%s", want, md)
		}
	}
}

func TestRenderWinnings_Supplied(t *testing.T) {
	report, err := accountant(t, true).NewWinningsReportWith("alice", usd(-2))
	if err != nil {
		t.Fatalf("NewWinningsReportWith() returned unexpected error: %v", err)
	}

	md := RenderWinnings(NewWinnings(report))

	o := parseOutline(t, md)
	if o.tables != 1 {
		t.Errorf("got %d tables, want 1:\n%s", o.tables, md)
	}
	if o.hasHeading("Instruments") {
		t.Errorf("unexpected instruments section:\n%s", md)
	}
	if !o.hasHeading("Data integrity") {
		t.Errorf("missing data integrity section:\n%s", md)
	}
	if !strings.Contains(md, "**+$60.00**") {
		t.Errorf("winnings do not contain the total:\n%s", md)
	}
}

func TestRenderAttribution(t *testing.T) {
	a, err := accountant(t, false).Attribution(3)
	if err != nil {
		t.Fatalf("Attribution() returned an unexpected error: %v", err)
	}

	md := RenderAttribution(NewAttribution(a))

	o := parseOutline(t, md)
	if o.tables != 2 {
		t.Errorf("got %d tables, want 2:\n%s", o.tables, md)
	}
	if !o.hasHeading("Sell #3 of ARS") || !o.hasHeading("Lots consumed") {
		t.Errorf("headings = %q", o.headings)
	}
	for _, want := range []string{"$11.14", "$78.00", "$140.00", "+79.49%", "| #1 |", "| #2 |"} {
		if !strings.Contains(md, want) {
			t.Errorf("attribution does not contain %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "could be matched") {
		t.Errorf("unexpected oversell note:\n%s", md)
	}
}

func TestRenderHoldings(t *testing.T) {
	as := accountant(t, true)
	r := as.Replay("alice")

	md := RenderHoldings(NewHoldings("alice", "USD", as.Holdings("alice"), r.Oversells()))

	o := parseOutline(t, md)
	if o.tables != 1 {
		t.Errorf("got %d tables, want 1:\n%s", o.tables, md)
	}
	if !o.hasHeading("Holdings of alice") || !o.hasHeading("Data integrity") {
		t.Errorf("headings = %q", o.headings)
	}
	if !strings.Contains(md, "| ARS | 3 | $14.00 | $42.00 |") {
		t.Errorf("holdings do not contain the ARS row:\n%s", md)
	}

	md = RenderHoldings(NewHoldings("bob", "USD", nil, nil))
	if !strings.Contains(md, "No open position.") {
		t.Errorf("empty holdings =\n%s", md)
	}
}

func TestLogMarkdown(t *testing.T) {
	as := accountant(t, true)
	txs := as.Ledger().Transactions()

	md := LogMarkdown(txs, as.Attribution, as.Replay("alice").Oversells())

	o := parseOutline(t, md)
	if o.tables != 1 {
		t.Errorf("got %d tables, want 1:\n%s", o.tables, md)
	}
	if !o.hasHeading("Data integrity") {
		t.Errorf("missing data integrity section:\n%s", md)
	}
	if !strings.Contains(md, "+$62.00") {
		t.Errorf("log does not show the profit of the sell:\n%s", md)
	}
	if got := strings.Count(md, "| alice |"); got != 4 {
		t.Errorf("log has %d rows, want 4", got)
	}
}

func TestTransaction(t *testing.T) {
	tx := positions.NewSell(3, time.Now(), "alice", "ARS", positions.Q(7), usd(20))
	if got, want := Transaction(tx), "#3 alice sold 7 of ARS for $140.00"; got != want {
		t.Errorf("Transaction() = %q, want %q", got, want)
	}
}
