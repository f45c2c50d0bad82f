package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnknownAddOn is returned when a quote references an add-on missing from the catalog
var ErrUnknownAddOn = errors.New("pricing: unknown add-on")

// AddOnRequest is a client-side add-on pick
type AddOnRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// AddOnSelection is a resolved add-on as stored on a quote
type AddOnSelection struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	UnitPrice    int64     `json:"unit_price"`
	Quantity     int       `json:"quantity"`
	Kind         AddOnKind `json:"kind"`
	Contribution int64     `json:"contribution"`
	rate         decimal.Decimal
}

// Quote is the price breakdown for one service selection
type Quote struct {
	ServiceType ServiceType      `json:"service_type"`
	ServiceName string           `json:"service_name"`
	Area        int              `json:"area"`
	AddOns      []AddOnSelection `json:"selected_add_ons"`
	BasePrice   Price            `json:"base_price"`
	Total       Price            `json:"total_price"`
	ComputedAt  time.Time        `json:"computed_at"`
}

// Calculator prices service selections against a Table
type Calculator struct {
	table *Table
	now   func() time.Time
}

// NewCalculator creates a calculator bound to table
func NewCalculator(table *Table) *Calculator {
	return &Calculator{
		table: table,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the clock used for Quote.ComputedAt
func (c *Calculator) WithClock(now func() time.Time) *Calculator {
	cp := *c
	cp.now = now
	return &cp
}

// Table returns the table the calculator prices against
func (c *Calculator) Table() *Table {
	return c.table
}

// BasePrice scans brackets in ascending order; the first one covering area wins
func (c *Calculator) BasePrice(st ServiceType, area int) Price {
	def, ok := c.table.Service(st)
	if !ok {
		def, _ = c.table.Service(c.table.Fallback())
	}

	if def.IndividualOnly {
		return IndividualQuote
	}
	if def.FlatPrice != nil {
		return Amount(*def.FlatPrice)
	}

	for _, b := range def.Brackets {
		if area <= b.MaxArea {
			return Amount(b.Price)
		}
	}
	return IndividualQuote
}

// AddOnContribution is what one selection adds on top of base
func (c *Calculator) AddOnContribution(sel AddOnSelection, base int64) int64 {
	switch sel.Kind {
	case AddOnFree:
		return 0
	case AddOnSurcharge:
		rate := sel.rate
		if def, ok := c.table.AddOn(sel.ID); ok && def.Kind == AddOnSurcharge {
			rate = def.Rate
		}
		return rate.Mul(decimal.NewFromInt(base)).Round(0).IntPart()
	default:
		q := sel.Quantity
		if q < 1 {
			q = 1
		}
		return sel.UnitPrice * int64(q)
	}
}

// Total is base plus every contribution, or the sentinel when base is
func (c *Calculator) Total(st ServiceType, area int, selections []AddOnSelection) Price {
	base := c.BasePrice(st, area)
	amount, ok := base.Value()
	if !ok {
		return IndividualQuote
	}

	total := amount
	for _, sel := range selections {
		total += c.AddOnContribution(sel, amount)
	}
	return Amount(total)
}

// Select resolves add-on requests against the catalog
func (c *Calculator) Select(requests []AddOnRequest) ([]AddOnSelection, error) {
	out := make([]AddOnSelection, 0, len(requests))
	for _, r := range requests {
		def, ok := c.table.AddOn(r.ID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAddOn, r.ID)
		}
		q := r.Quantity
		if q < 1 {
			q = 1
		}
		out = append(out, AddOnSelection{
			ID:        def.ID,
			Name:      def.Name,
			UnitPrice: def.UnitPrice,
			Quantity:  q,
			Kind:      def.Kind,
			rate:      def.Rate,
		})
	}
	return out, nil
}

// Quote builds the full breakdown for a service selection.
// Contributions are left at zero when the base price is an individual quote.
func (c *Calculator) Quote(st ServiceType, area int, requests []AddOnRequest) (*Quote, error) {
	selections, err := c.Select(requests)
	if err != nil {
		return nil, err
	}

	name := string(st)
	if def, ok := c.table.Service(st); ok {
		name = def.Name
	}

	base := c.BasePrice(st, area)
	if amount, ok := base.Value(); ok {
		for i := range selections {
			selections[i].Contribution = c.AddOnContribution(selections[i], amount)
		}
	}

	return &Quote{
		ServiceType: st,
		ServiceName: name,
		Area:        area,
		AddOns:      selections,
		BasePrice:   base,
		Total:       c.Total(st, area, selections),
		ComputedAt:  c.now(),
	}, nil
}
