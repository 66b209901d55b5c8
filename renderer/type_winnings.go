package renderer

import (
	"github.com/etnz/positions"
)

// Winnings is a struct to represent the all-time winnings of a user in json.
// Numbers are handled using the exact decimal types (Money, Quantity, etc.)
// So that they already contain basics renderers (SignedString etc.)
type Winnings struct {
	User        string               `json:"user"`
	Currency    string               `json:"currency"`
	Realized    positions.Money      `json:"realized"`
	Unrealized  positions.Money      `json:"unrealized"`
	Total       positions.Money      `json:"total"`
	Instruments []InstrumentWinnings `json:"instruments,omitempty"`
	// Oversells are the sells that exceeded the quantity held.
	Oversells []string `json:"oversells,omitempty"`
}

// InstrumentWinnings is the detail of the winnings on one instrument.
type InstrumentWinnings struct {
	Instrument  string             `json:"instrument"`
	Position    positions.Quantity `json:"position"`
	CostBasis   positions.Money    `json:"costBasis"`
	MarketValue positions.Money    `json:"marketValue"`
	Realized    positions.Money    `json:"realized"`
	Unrealized  positions.Money    `json:"unrealized"`
}

// NewWinnings creates a Winnings struct from a winnings report.
func NewWinnings(r *positions.WinningsReport) *Winnings {
	w := &Winnings{
		User:       r.User,
		Currency:   r.Currency,
		Realized:   r.Realized,
		Unrealized: r.Unrealized,
		Total:      r.Total,
		Oversells:  oversells(r.Oversells),
	}
	for _, iw := range r.Instruments {
		w.Instruments = append(w.Instruments, InstrumentWinnings(iw))
	}
	return w
}

func oversells(os []positions.Oversell) []string {
	var lines []string
	for _, o := range os {
		lines = append(lines, o.String())
	}
	return lines
}
