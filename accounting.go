package positions

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrNoAttribution is returned when a transaction has no realized return: it
// is a buy, or a sell that matched no lot at all.
var ErrNoAttribution = errors.New("no attribution")

// Accountant answers realized gain queries over a ledger. Every answer comes
// from a fresh replay of the ledger; the accountant only remembers which
// oversells it already reported, so each one is logged once.
type Accountant struct {
	ledger *Ledger
	log    logrus.FieldLogger

	mu     sync.Mutex
	warned map[ID]struct{}
}

// NewAccountant creates an accountant for the ledger. Data integrity warnings
// (oversells) are written to logger; a nil logger discards them.
func NewAccountant(ledger *Ledger, logger logrus.FieldLogger) *Accountant {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Accountant{ledger: ledger, log: logger, warned: make(map[ID]struct{})}
}

// Ledger returns the ledger the accountant reports on.
func (a *Accountant) Ledger() *Ledger { return a.ledger }

// Replay replays the whole history of a user.
func (a *Accountant) Replay(user string) *Replay {
	r := ReplayAll(a.ledger.User(user))
	a.warn(r.Oversells()...)
	return r
}

// RealizedGain returns the realized gain of a user across their full history.
func (a *Accountant) RealizedGain(user string) Money {
	return a.Replay(user).Realized().In(a.ledger.Currency())
}

// Attribution is the realized return of a single sell.
type Attribution struct {
	Transaction   Transaction
	Requested     Quantity // quantity the sell asked for.
	Matched       Quantity // quantity matched against open lots.
	AvgEntryPrice Money    // TotalCost / Matched.
	TotalCost     Money
	TotalRevenue  Money // the sell's persisted total price.
	Profit        Money // TotalRevenue - TotalCost.
	Legs          []Leg
}

// ProfitPercentage returns Profit/TotalCost in percent, and false when the
// cost is zero.
func (a Attribution) ProfitPercentage() (Percent, bool) {
	return percentOf(a.Profit, a.TotalCost)
}

// Oversold reports whether the sell could only be partially matched.
func (a Attribution) Oversold() bool { return a.Matched.LessThan(a.Requested) }

// Attribution computes the realized return of the sell with the given id. Only
// that user's transactions on that instrument, up to and including the sell,
// are replayed.
//
// It returns ErrUnknownTransaction if id is not in the ledger and
// ErrNoAttribution for a buy or a sell that matched nothing.
func (a *Accountant) Attribution(id ID) (Attribution, error) {
	tx, ok := a.ledger.Transaction(id)
	if !ok {
		return Attribution{}, fmt.Errorf("%w %d", ErrUnknownTransaction, id)
	}
	if tx.Action != Sell {
		return Attribution{}, fmt.Errorf("%w: transaction %d is a %s", ErrNoAttribution, id, tx.Action)
	}

	r := ReplayUntil(a.ledger.Instrument(tx.User, tx.Instrument), id)
	m, ok := r.Match(id)
	if ok && m.Oversold() {
		// the replay stops at the target, so its oversell is the last one.
		oversells := r.Oversells()
		a.warn(oversells[len(oversells)-1])
	}
	if !ok || m.Matched.IsZero() {
		return Attribution{}, fmt.Errorf("%w: transaction %d matched no open lot of %s", ErrNoAttribution, id, tx.Instrument)
	}

	return Attribution{
		Transaction:   tx,
		Requested:     m.Requested,
		Matched:       m.Matched,
		AvgEntryPrice: m.TotalCost.Div(m.Matched),
		TotalCost:     m.TotalCost,
		TotalRevenue:  tx.TotalPrice,
		Profit:        tx.TotalPrice.Sub(m.TotalCost),
		Legs:          m.Legs,
	}, nil
}

// warn logs the oversells not reported yet.
func (a *Accountant) warn(oversells ...Oversell) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, o := range oversells {
		if _, done := a.warned[o.Transaction]; done {
			continue
		}
		a.warned[o.Transaction] = struct{}{}
		a.log.WithFields(logrus.Fields{
			"user":        o.User,
			"instrument":  o.Instrument,
			"transaction": o.Transaction,
			"requested":   o.Requested.String(),
			"matched":     o.Matched.String(),
		}).Warn("sell exceeds open lots, unmatched quantity ignored")
	}
}
