package positions

import "time"

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// at returns a timestamp i minutes after a fixed origin.
func at(i int) time.Time {
	return time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute)
}

// buy and sell are shortcuts for a single user "alice" trading in USD.
func buy(id ID, t int, instrument string, qty, price float64) Transaction {
	return NewBuy(id, at(t), "alice", instrument, Q(qty), USD(price))
}

func sell(id ID, t int, instrument string, qty, price float64) Transaction {
	return NewSell(id, at(t), "alice", instrument, Q(qty), USD(price))
}

// mustLedger builds a ledger or panics.
func mustLedger(txs ...Transaction) *Ledger {
	l := NewLedger()
	if err := l.Append(txs...); err != nil {
		panic(err)
	}
	return l
}
