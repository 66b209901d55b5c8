package positions

import (
	"fmt"
)

// AllTimeWinnings combines realized and unrealized gains.
func AllTimeWinnings(realized, unrealized Money) Money {
	return realized.Add(unrealized)
}

// Holding is the open position of a user on one instrument, valued with the
// FIFO cost of its remaining lots.
type Holding struct {
	Instrument string
	Position   Quantity
	CostBasis  Money
	Lots       []Lot
}

// AvgEntryPrice returns CostBasis/Position, and false for an empty position.
func (h Holding) AvgEntryPrice() (Money, bool) {
	if !h.Position.IsPositive() {
		return Money{}, false
	}
	return h.CostBasis.Div(h.Position), true
}

// Holdings returns the open positions of a user, sorted by instrument.
// Instruments fully sold are omitted.
func (a *Accountant) Holdings(user string) []Holding {
	return holdings(a.Replay(user))
}

func holdings(r *Replay) []Holding {
	var hs []Holding
	for instrument := range r.Instruments() {
		pos := r.Position(instrument)
		if !pos.IsPositive() {
			continue
		}
		hs = append(hs, Holding{
			Instrument: instrument,
			Position:   pos,
			CostBasis:  r.CostBasis(instrument),
			Lots:       r.Lots(instrument),
		})
	}
	return hs
}

// UnrealizedGain marks the open lots of a user to market: the sum over open
// lots of (price - unit price) * remaining. It uses the same FIFO lots as the
// realized gain so both figures share one cost basis.
func (a *Accountant) UnrealizedGain(user string, prices PriceLookup) (Money, error) {
	total := M(0, a.ledger.Currency())
	for _, h := range a.Holdings(user) {
		price, err := a.price(prices, h.Instrument)
		if err != nil {
			return Money{}, fmt.Errorf("cannot value %s for %q: %w", h.Instrument, user, err)
		}
		total = total.Add(price.Mul(h.Position).Sub(h.CostBasis))
	}
	return total, nil
}

// price looks up the current price of an instrument in the ledger currency.
func (a *Accountant) price(prices PriceLookup, instrument string) (Money, error) {
	price, err := prices.Price(instrument)
	if err != nil {
		return Money{}, err
	}
	if c := price.Currency(); c != "" && c != a.ledger.Currency() {
		return Money{}, fmt.Errorf("price in %s, ledger in %s", c, a.ledger.Currency())
	}
	return price.In(a.ledger.Currency()), nil
}

// InstrumentWinnings details the winnings on one instrument.
type InstrumentWinnings struct {
	Instrument  string
	Position    Quantity
	CostBasis   Money
	MarketValue Money
	Realized    Money
	Unrealized  Money
}

// WinningsReport is the all-time winnings of a user.
type WinningsReport struct {
	User        string
	Currency    string
	Realized    Money
	Unrealized  Money
	Total       Money
	Instruments []InstrumentWinnings // empty when the unrealized gain was supplied.
	Oversells   []Oversell
}

// NewWinningsReport computes the all-time winnings of a user, valuing open
// lots with prices.
func (a *Accountant) NewWinningsReport(user string, prices PriceLookup) (*WinningsReport, error) {
	r := a.Replay(user)
	cur := a.ledger.Currency()
	report := &WinningsReport{
		User:       user,
		Currency:   cur,
		Realized:   r.Realized().In(cur),
		Unrealized: M(0, cur),
		Oversells:  r.Oversells(),
	}

	for instrument := range r.Instruments() {
		iw := InstrumentWinnings{
			Instrument:  instrument,
			Position:    r.Position(instrument),
			CostBasis:   r.CostBasis(instrument).In(cur),
			MarketValue: M(0, cur),
			Realized:    r.RealizedOf(instrument).In(cur),
			Unrealized:  M(0, cur),
		}
		if iw.Position.IsPositive() {
			price, err := a.price(prices, instrument)
			if err != nil {
				return nil, fmt.Errorf("cannot value %s for %q: %w", instrument, user, err)
			}
			iw.MarketValue = price.Mul(iw.Position)
			iw.Unrealized = iw.MarketValue.Sub(iw.CostBasis)
		}
		report.Unrealized = report.Unrealized.Add(iw.Unrealized)
		report.Instruments = append(report.Instruments, iw)
	}

	report.Total = AllTimeWinnings(report.Realized, report.Unrealized)
	return report, nil
}

// NewWinningsReportWith computes the all-time winnings of a user from an
// unrealized gain computed elsewhere. An unrealized gain without currency is
// in the ledger currency.
func (a *Accountant) NewWinningsReportWith(user string, unrealized Money) (*WinningsReport, error) {
	cur := a.ledger.Currency()
	if c := unrealized.Currency(); c != "" && cur != "" && c != cur {
		return nil, fmt.Errorf("unrealized gain in %s, ledger in %s", c, cur)
	}
	r := a.Replay(user)
	realized := r.Realized().In(cur)
	unrealized = unrealized.In(cur)
	return &WinningsReport{
		User:       user,
		Currency:   cur,
		Realized:   realized,
		Unrealized: unrealized,
		Total:      AllTimeWinnings(realized, unrealized),
		Oversells:  r.Oversells(),
	}, nil
}
