package renderer

import (
	"fmt"

	"github.com/etnz/positions"
)

// Transaction renders a transaction to a string.
func Transaction(tx positions.Transaction) string {
	switch tx.Action {
	case positions.Buy:
		return fmt.Sprintf("#%d %s bought %s of %s for %s", tx.ID, tx.User, tx.Quantity, tx.Instrument, tx.TotalPrice)
	case positions.Sell:
		return fmt.Sprintf("#%d %s sold %s of %s for %s", tx.ID, tx.User, tx.Quantity, tx.Instrument, tx.TotalPrice)
	default:
		return fmt.Sprintf("#%d %s", tx.ID, tx.Action)
	}
}
