package positions

import (
	"fmt"
	"iter"
	"maps"
	"slices"
)

// Oversell records a sell that asked for more than the open lots could
// provide. It signals an inconsistent ledger, typically a sell recorded
// before its buys.
type Oversell struct {
	Transaction ID
	User        string
	Instrument  string
	Requested   Quantity
	Matched     Quantity
}

func (o Oversell) String() string {
	return fmt.Sprintf("transaction %d sells %s of %s but only %s was held", o.Transaction, o.Requested, o.Instrument, o.Matched)
}

// Replay is the state obtained by walking transactions in processing order:
// the open lots of each instrument, the match of each sell, and the
// cumulative realized gain.
//
// A Replay is a pure function of the transactions it was built from.
type Replay struct {
	queues    map[string]*lotQueue
	matches   map[ID]MatchResult
	realized  map[string]Money // per instrument
	total     Money
	oversells []Oversell
	stopped   bool
}

// ReplayAll walks txs, which must be in processing order (see SortTransactions).
func ReplayAll(txs []Transaction) *Replay {
	return replay(txs, func(Transaction) bool { return false })
}

// ReplayUntil walks txs like ReplayAll but stops right after the transaction
// with the given id has been processed.
func ReplayUntil(txs []Transaction, stop ID) *Replay {
	return replay(txs, func(tx Transaction) bool { return tx.ID == stop })
}

func replay(txs []Transaction, stop func(Transaction) bool) *Replay {
	r := &Replay{
		queues:   make(map[string]*lotQueue),
		matches:  make(map[ID]MatchResult),
		realized: make(map[string]Money),
	}
	for _, tx := range txs {
		r.apply(tx)
		if stop(tx) {
			r.stopped = true
			break
		}
	}
	return r
}

// apply processes a single transaction.
func (r *Replay) apply(tx Transaction) {
	q := r.queue(tx.Instrument)
	switch tx.Action {
	case Buy:
		q.push(Lot{Origin: tx.ID, Acquired: tx.CreatedAt, Remaining: tx.Quantity, UnitPrice: tx.Price})
	case Sell:
		m := q.consume(tx.Quantity)
		r.matches[tx.ID] = m
		gain := m.RealizedGain(tx.Price)
		r.realized[tx.Instrument] = r.realized[tx.Instrument].Add(gain)
		r.total = r.total.Add(gain)
		if m.Oversold() {
			r.oversells = append(r.oversells, Oversell{
				Transaction: tx.ID,
				User:        tx.User,
				Instrument:  tx.Instrument,
				Requested:   m.Requested,
				Matched:     m.Matched,
			})
		}
	}
}

// queue returns the lot queue of an instrument, creating it on first use.
func (r *Replay) queue(instrument string) *lotQueue {
	q, ok := r.queues[instrument]
	if !ok {
		q = &lotQueue{}
		r.queues[instrument] = q
	}
	return q
}

// Match returns the match of a sell transaction.
func (r *Replay) Match(id ID) (MatchResult, bool) {
	m, ok := r.matches[id]
	return m, ok
}

// Realized returns the cumulative realized gain over all processed sells.
func (r *Replay) Realized() Money { return r.total }

// RealizedOf returns the realized gain on a single instrument.
func (r *Replay) RealizedOf(instrument string) Money { return r.realized[instrument] }

// Lots returns the open lots of an instrument, oldest first.
func (r *Replay) Lots(instrument string) []Lot {
	if q, ok := r.queues[instrument]; ok {
		return q.Lots()
	}
	return nil
}

// Position returns the quantity held of an instrument.
func (r *Replay) Position(instrument string) Quantity {
	if q, ok := r.queues[instrument]; ok {
		return q.Position()
	}
	return Quantity{}
}

// CostBasis returns the FIFO cost of the quantity held of an instrument.
func (r *Replay) CostBasis(instrument string) Money {
	if q, ok := r.queues[instrument]; ok {
		return q.CostBasis()
	}
	return Money{}
}

// Instruments returns an iterator over every instrument seen, sorted.
func (r *Replay) Instruments() iter.Seq[string] {
	return slices.Values(slices.Sorted(maps.Keys(r.queues)))
}

// Oversells returns the sells that could not be fully matched, in order.
func (r *Replay) Oversells() []Oversell { return slices.Clone(r.oversells) }

// Stopped reports whether a ReplayUntil reached its target.
func (r *Replay) Stopped() bool { return r.stopped }
