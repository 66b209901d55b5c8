package renderer

import (
	"time"

	"github.com/etnz/positions"
)

// Holdings is the open positions of a user, ready for rendering.
type Holdings struct {
	User      string            `json:"user"`
	Currency  string            `json:"currency"`
	CostBasis positions.Money   `json:"costBasis"`
	Holdings  []HoldingPosition `json:"holdings"`
	Oversells []string          `json:"oversells,omitempty"`
}

// HoldingPosition is the open position on one instrument.
type HoldingPosition struct {
	Instrument    string             `json:"instrument"`
	Position      positions.Quantity `json:"position"`
	AvgEntryPrice positions.Money    `json:"avgEntryPrice"`
	CostBasis     positions.Money    `json:"costBasis"`
	Lots          []HoldingLot       `json:"lots"`
}

// HoldingLot is an open lot.
type HoldingLot struct {
	Origin    positions.ID       `json:"origin"`
	Acquired  time.Time          `json:"acquired"`
	Remaining positions.Quantity `json:"remaining"`
	UnitPrice positions.Money    `json:"unitPrice"`
}

// NewHoldings creates a Holdings struct for user.
func NewHoldings(user, currency string, hs []positions.Holding, os []positions.Oversell) *Holdings {
	res := &Holdings{
		User:      user,
		Currency:  currency,
		CostBasis: positions.M(0, currency),
		Oversells: oversells(os),
	}
	for _, h := range hs {
		avg, _ := h.AvgEntryPrice()
		hp := HoldingPosition{
			Instrument:    h.Instrument,
			Position:      h.Position,
			AvgEntryPrice: avg,
			CostBasis:     h.CostBasis,
		}
		for _, l := range h.Lots {
			hp.Lots = append(hp.Lots, HoldingLot(l))
		}
		res.CostBasis = res.CostBasis.Add(h.CostBasis)
		res.Holdings = append(res.Holdings, hp)
	}
	return res
}
