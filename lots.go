package positions

import (
	"slices"
	"time"
)

// Lot is what remains open of a single buy.
type Lot struct {
	Origin    ID        // the buy that created the lot.
	Acquired  time.Time // creation time of the buy.
	Remaining Quantity  // never increases; the lot is evicted at zero.
	UnitPrice Money     // the buy's unit price.
}

// Cost returns the cost basis of what remains of the lot.
func (l Lot) Cost() Money { return l.UnitPrice.Mul(l.Remaining) }

// Leg is the portion of a single lot consumed by a sell.
type Leg struct {
	Origin    ID
	Quantity  Quantity
	UnitPrice Money
}

// MatchResult is the outcome of matching one sell against a lot queue.
type MatchResult struct {
	Requested Quantity // quantity the sell asked for.
	Matched   Quantity // quantity actually matched, at most Requested.
	TotalCost Money    // sum of UnitPrice*Quantity over Legs.
	Legs      []Leg    // consumed lot portions, oldest first.
}

// Oversold reports whether the queue ran out before the request was matched.
func (m MatchResult) Oversold() bool { return m.Matched.LessThan(m.Requested) }

// RealizedGain returns price*Matched - TotalCost.
func (m MatchResult) RealizedGain(price Money) Money {
	return price.Mul(m.Matched).Sub(m.TotalCost)
}

// lotQueue holds the open lots of one instrument, oldest first.
//
// Lots before head are consumed; they are dropped when they make up more than
// half of the backing slice, so consuming is amortized O(1) per lot.
type lotQueue struct {
	lots []Lot
	head int
}

// push appends a lot at the tail.
func (q *lotQueue) push(l Lot) {
	if !l.Remaining.IsPositive() || !l.UnitPrice.IsPositive() {
		panic("lot quantity and unit price must be positive")
	}
	q.lots = append(q.lots, l)
}

// consume takes up to requested from the oldest lots.
func (q *lotQueue) consume(requested Quantity) MatchResult {
	res := MatchResult{Requested: requested}
	left := requested
	for left.IsPositive() && q.head < len(q.lots) {
		head := &q.lots[q.head]
		portion := left.Min(head.Remaining)

		res.Matched = res.Matched.Add(portion)
		res.TotalCost = res.TotalCost.Add(head.UnitPrice.Mul(portion))
		res.Legs = append(res.Legs, Leg{Origin: head.Origin, Quantity: portion, UnitPrice: head.UnitPrice})

		head.Remaining = head.Remaining.Sub(portion)
		left = left.Sub(portion)
		if !head.Remaining.IsPositive() {
			q.evict()
		}
	}
	return res
}

// evict drops the head lot.
func (q *lotQueue) evict() {
	q.lots[q.head] = Lot{}
	q.head++
	if q.head == len(q.lots) {
		q.lots, q.head = q.lots[:0], 0
		return
	}
	if q.head > len(q.lots)/2 {
		q.lots = slices.Delete(q.lots, 0, q.head)
		q.head = 0
	}
}

// Lots returns a copy of the open lots, oldest first.
func (q *lotQueue) Lots() []Lot {
	return slices.Clone(q.lots[q.head:])
}

// Position returns the total remaining quantity.
func (q *lotQueue) Position() Quantity {
	var pos Quantity
	for _, l := range q.lots[q.head:] {
		pos = pos.Add(l.Remaining)
	}
	return pos
}

// CostBasis returns the cost of all remaining quantity.
func (q *lotQueue) CostBasis() Money {
	var cost Money
	for _, l := range q.lots[q.head:] {
		cost = cost.Add(l.Cost())
	}
	return cost
}
