package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ServiceType is the calculator-facing service variant
type ServiceType string

const (
	ServiceResidentialWeekly   ServiceType = "residential_weekly"
	ServiceResidentialBiweekly ServiceType = "residential_biweekly"
	ServiceResidentialOnetime  ServiceType = "residential_onetime"
	ServiceOffice              ServiceType = "office"
	ServicePostRenovation      ServiceType = "post_renovation"
	ServiceUpholstery          ServiceType = "upholstery"
)

// AddOnKind selects how an add-on contributes to the total
type AddOnKind string

const (
	// AddOnStandard contributes unit price times quantity
	AddOnStandard AddOnKind = "standard"
	// AddOnFree always contributes zero
	AddOnFree AddOnKind = "free"
	// AddOnSurcharge contributes a rate of the base price, ignoring quantity
	AddOnSurcharge AddOnKind = "surcharge"
)

// Bracket is an area threshold and the base price for areas up to it
type Bracket struct {
	MaxArea int   `json:"max_area"`
	Price   int64 `json:"price"`
}

// ServiceDefinition describes how one service type is priced
type ServiceDefinition struct {
	Type           ServiceType `json:"type"`
	Name           string      `json:"name"`
	Brackets       []Bracket   `json:"brackets,omitempty"`
	FlatPrice      *int64      `json:"flat_price,omitempty"`
	IndividualOnly bool        `json:"individual_only"`
}

// AddOnDefinition is a catalog entry for an optional extra
type AddOnDefinition struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice int64           `json:"unit_price"`
	Kind      AddOnKind       `json:"kind"`
	Rate      decimal.Decimal `json:"rate,omitempty"`
}

var (
	ErrEmptyTable          = errors.New("pricing: table has no services")
	ErrBracketsNotIncrease = errors.New("pricing: brackets must be strictly increasing")
	ErrUnknownFallback     = errors.New("pricing: fallback service is not defined")
	ErrDuplicateAddOn      = errors.New("pricing: duplicate add-on id")
	ErrInvalidAddOnKind    = errors.New("pricing: invalid add-on kind")
)

// Table is the immutable price list. Build it once and share it.
type Table struct {
	services     map[ServiceType]ServiceDefinition
	serviceOrder []ServiceType
	addOns       map[string]AddOnDefinition
	addOnOrder   []string
	fallback     ServiceType
}

// NewTable validates and copies the given definitions
func NewTable(services []ServiceDefinition, addOns []AddOnDefinition, fallback ServiceType) (*Table, error) {
	if len(services) == 0 {
		return nil, ErrEmptyTable
	}

	t := &Table{
		services: make(map[ServiceType]ServiceDefinition, len(services)),
		addOns:   make(map[string]AddOnDefinition, len(addOns)),
		fallback: fallback,
	}

	for _, s := range services {
		for i := 1; i < len(s.Brackets); i++ {
			if s.Brackets[i].MaxArea <= s.Brackets[i-1].MaxArea {
				return nil, fmt.Errorf("%w: %s", ErrBracketsNotIncrease, s.Type)
			}
		}
		cp := s
		cp.Brackets = append([]Bracket(nil), s.Brackets...)
		if s.FlatPrice != nil {
			v := *s.FlatPrice
			cp.FlatPrice = &v
		}
		if _, dup := t.services[s.Type]; !dup {
			t.serviceOrder = append(t.serviceOrder, s.Type)
		}
		t.services[s.Type] = cp
	}

	fb, ok := t.services[fallback]
	if !ok || len(fb.Brackets) == 0 {
		return nil, ErrUnknownFallback
	}

	for _, a := range addOns {
		if _, dup := t.addOns[a.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAddOn, a.ID)
		}
		switch a.Kind {
		case AddOnStandard, AddOnFree, AddOnSurcharge:
		default:
			return nil, fmt.Errorf("%w: %s", ErrInvalidAddOnKind, a.Kind)
		}
		t.addOns[a.ID] = a
		t.addOnOrder = append(t.addOnOrder, a.ID)
	}

	return t, nil
}

// Service returns the definition for st
func (t *Table) Service(st ServiceType) (ServiceDefinition, bool) {
	s, ok := t.services[st]
	if !ok {
		return ServiceDefinition{}, false
	}
	s.Brackets = append([]Bracket(nil), s.Brackets...)
	return s, true
}

// Services returns all definitions in declaration order
func (t *Table) Services() []ServiceDefinition {
	out := make([]ServiceDefinition, 0, len(t.serviceOrder))
	for _, st := range t.serviceOrder {
		s, _ := t.Service(st)
		out = append(out, s)
	}
	return out
}

// AddOn returns the catalog entry for id
func (t *Table) AddOn(id string) (AddOnDefinition, bool) {
	a, ok := t.addOns[id]
	return a, ok
}

// AddOns returns the catalog in declaration order
func (t *Table) AddOns() []AddOnDefinition {
	out := make([]AddOnDefinition, 0, len(t.addOnOrder))
	for _, id := range t.addOnOrder {
		out = append(out, t.addOns[id])
	}
	return out
}

// Fallback is the service whose brackets price unknown service types
func (t *Table) Fallback() ServiceType {
	return t.fallback
}

// IsKnown reports whether st is defined in the table
func (t *Table) IsKnown(st ServiceType) bool {
	_, ok := t.services[st]
	return ok
}
