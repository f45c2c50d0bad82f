// Package pricing holds the immutable price table and the quote calculator
package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

const individualQuoteToken = "individual_quote"

// Price is either a whole-unit amount or the individual quote sentinel.
// The zero value is an amount of 0, which is distinct from IndividualQuote.
type Price struct {
	amount     int64
	individual bool
}

// IndividualQuote means "no fixed price, contact us"
var IndividualQuote = Price{individual: true}

// Amount builds a numeric price
func Amount(v int64) Price {
	return Price{amount: v}
}

// IsIndividual reports whether p is the sentinel
func (p Price) IsIndividual() bool {
	return p.individual
}

// Value returns the amount and false for the sentinel
func (p Price) Value() (int64, bool) {
	if p.individual {
		return 0, false
	}
	return p.amount, true
}

// Ptr returns the amount as a pointer, nil for the sentinel
func (p Price) Ptr() *int64 {
	if p.individual {
		return nil
	}
	v := p.amount
	return &v
}

// FromPtr is the inverse of Ptr
func FromPtr(v *int64) Price {
	if v == nil {
		return IndividualQuote
	}
	return Amount(*v)
}

// Add sums two prices; the sentinel absorbs
func (p Price) Add(v int64) Price {
	if p.individual {
		return p
	}
	return Amount(p.amount + v)
}

func (p Price) String() string {
	if p.individual {
		return "Wycena indywidualna"
	}
	return strconv.FormatInt(p.amount, 10)
}

func (p Price) MarshalJSON() ([]byte, error) {
	if p.individual {
		return json.Marshal(individualQuoteToken)
	}
	return []byte(strconv.FormatInt(p.amount, 10)), nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != individualQuoteToken {
			return fmt.Errorf("pricing: unknown price token %q", s)
		}
		*p = IndividualQuote
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("pricing: invalid price: %w", err)
	}
	*p = Amount(v)
	return nil
}
