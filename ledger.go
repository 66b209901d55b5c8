package positions

import (
	"fmt"
	"iter"
	"maps"
	"slices"
)

// Ledger is the transaction log of any number of users.
//
// In a Ledger transactions are always in processing order: ascending
// CreatedAt, then ascending ID. All transactions share one currency; a
// transaction without currency is in the ledger currency.
type Ledger struct {
	transactions []Transaction
	index        map[ID]int // position of each transaction in transactions
	currency     string
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		transactions: make([]Transaction, 0),
		index:        make(map[ID]int),
	}
}

// Currency returns the currency of the ledger, or "" while no transaction
// carries one.
func (l *Ledger) Currency() string { return l.currency }

// Len returns the number of transactions.
func (l *Ledger) Len() int { return len(l.transactions) }

// Append validates and appends transactions to this ledger, maintaining the
// processing order. Nothing is appended if any transaction is invalid.
func (l *Ledger) Append(txs ...Transaction) error {
	currency := l.currency
	seen := make(map[ID]struct{}, len(txs))
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return err
		}
		if _, exists := l.index[tx.ID]; exists {
			return fmt.Errorf("%w %d: duplicate id", ErrInvalidTransaction, tx.ID)
		}
		if _, exists := seen[tx.ID]; exists {
			return fmt.Errorf("%w %d: duplicate id", ErrInvalidTransaction, tx.ID)
		}
		seen[tx.ID] = struct{}{}
		switch c := tx.Currency(); {
		case c == "":
		case currency == "":
			currency = c
		case c != currency:
			return fmt.Errorf("%w %d: currency %q does not match ledger currency %q", ErrInvalidTransaction, tx.ID, c, currency)
		}
	}

	l.currency = currency
	l.transactions = append(l.transactions, txs...)
	l.stableSort()
	return nil
}

// stableSort restores the processing order and rebuilds the index.
func (l *Ledger) stableSort() {
	SortTransactions(l.transactions)
	for i, tx := range l.transactions {
		l.index[tx.ID] = i
	}
}

// Transactions returns all transactions in processing order.
func (l *Ledger) Transactions() []Transaction {
	return slices.Clone(l.transactions)
}

// Transaction returns the transaction with the given id.
func (l *Ledger) Transaction(id ID) (Transaction, bool) {
	i, ok := l.index[id]
	if !ok {
		return Transaction{}, false
	}
	return l.transactions[i], true
}

// User returns the transactions of a user in processing order.
func (l *Ledger) User(user string) []Transaction {
	return l.filter(func(tx Transaction) bool { return tx.User == user })
}

// Instrument returns the transactions of a user on a single instrument in
// processing order.
func (l *Ledger) Instrument(user, instrument string) []Transaction {
	return l.filter(func(tx Transaction) bool { return tx.User == user && tx.Instrument == instrument })
}

func (l *Ledger) filter(keep func(Transaction) bool) []Transaction {
	var txs []Transaction
	for _, tx := range l.transactions {
		if keep(tx) {
			txs = append(txs, tx)
		}
	}
	return txs
}

// Users returns an iterator over the users of the ledger, sorted.
func (l *Ledger) Users() iter.Seq[string] {
	users := make(map[string]struct{})
	for _, tx := range l.transactions {
		users[tx.User] = struct{}{}
	}
	return slices.Values(slices.Sorted(maps.Keys(users)))
}

// NextID returns an ID greater than any ID in the ledger.
func (l *Ledger) NextID() ID {
	var last ID
	for id := range l.index {
		last = max(last, id)
	}
	return last + 1
}
