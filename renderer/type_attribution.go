package renderer

import (
	"time"

	"github.com/etnz/positions"
)

// Attribution is the realized return of a single sell, ready for rendering.
type Attribution struct {
	ID            positions.ID       `json:"id"`
	User          string             `json:"user"`
	Instrument    string             `json:"instrument"`
	CreatedAt     time.Time          `json:"createdAt"`
	Requested     positions.Quantity `json:"requested"`
	Matched       positions.Quantity `json:"matched"`
	AvgEntryPrice positions.Money    `json:"avgEntryPrice"`
	TotalCost     positions.Money    `json:"totalCost"`
	TotalRevenue  positions.Money    `json:"totalRevenue"`
	Profit        positions.Money    `json:"profit"`
	// ProfitPercentage is nil when the total cost is zero.
	ProfitPercentage *positions.Percent `json:"profitPercentage,omitempty"`
	Oversold         bool               `json:"oversold,omitempty"`
	Legs             []AttributionLeg   `json:"legs"`
}

// AttributionLeg is the part of one lot consumed by the sell.
type AttributionLeg struct {
	Origin    positions.ID       `json:"origin"`
	Quantity  positions.Quantity `json:"quantity"`
	UnitPrice positions.Money    `json:"unitPrice"`
	Cost      positions.Money    `json:"cost"`
}

// NewAttribution creates an Attribution struct from the accounting result.
func NewAttribution(a positions.Attribution) *Attribution {
	res := &Attribution{
		ID:            a.Transaction.ID,
		User:          a.Transaction.User,
		Instrument:    a.Transaction.Instrument,
		CreatedAt:     a.Transaction.CreatedAt,
		Requested:     a.Requested,
		Matched:       a.Matched,
		AvgEntryPrice: a.AvgEntryPrice,
		TotalCost:     a.TotalCost,
		TotalRevenue:  a.TotalRevenue,
		Profit:        a.Profit,
		Oversold:      a.Oversold(),
	}
	if pct, ok := a.ProfitPercentage(); ok {
		res.ProfitPercentage = &pct
	}
	for _, leg := range a.Legs {
		res.Legs = append(res.Legs, AttributionLeg{
			Origin:    leg.Origin,
			Quantity:  leg.Quantity,
			UnitPrice: leg.UnitPrice,
			Cost:      leg.UnitPrice.Mul(leg.Quantity),
		})
	}
	return res
}
