package renderer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/etnz/positions"
)

// LogMarkdown generates a markdown report of transactions in processing
// order. Sells show the profit attributed to them when attribution is not nil.
func LogMarkdown(txs []positions.Transaction, attribution func(positions.ID) (positions.Attribution, error), oversells []positions.Oversell) string {
	r := &logRenderer{Builder: &strings.Builder{}}

	r.Printf("# Transactions\n\n")
	if len(txs) == 0 {
		r.Printf("No transactions.\n")
		return r.String()
	}

	r.Printf("| # | Date | User | Action | Instrument | Quantity | Price | Total | Profit | Memo |\n")
	r.Printf("|---:|:---|:---|:---|:---|---:|---:|---:|---:|:---|\n")
	for _, tx := range txs {
		profit := ""
		if tx.Action == positions.Sell && attribution != nil {
			if a, err := attribution(tx.ID); err == nil {
				profit = a.Profit.SignedString()
			}
		}
		r.Printf("| %d | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			tx.ID, tx.CreatedAt.Format(time.DateTime), tx.User, tx.Action, tx.Instrument,
			tx.Quantity, tx.Price, tx.TotalPrice, profit, escape(tx.Memo))
	}
	r.Printf("\n")

	ConditionalBlock(r, func(w io.Writer) bool {
		fmt.Fprintf(w, "## Data integrity\n\n")
		for _, o := range oversells {
			fmt.Fprintf(w, "- %s\n", o)
		}
		return len(oversells) > 0
	})
	return r.String()
}

// logRenderer formats the output of the log generator into a markdown string.
type logRenderer struct {
	*strings.Builder
}

// Printf formats according to a format specifier and writes to the renderer's buffer.
func (r *logRenderer) Printf(format string, args ...any) {
	fmt.Fprintf(r, format, args...)
}

// escape keeps free text from breaking a table row.
func escape(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
