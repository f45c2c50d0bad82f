package pricing

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCalculator() *Calculator {
	fixed := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	return NewCalculator(DefaultTable()).WithClock(func() time.Time { return fixed })
}

func TestBasePrice(t *testing.T) {
	calc := newTestCalculator()

	tests := []struct {
		name     string
		st       ServiceType
		area     int
		expected Price
	}{
		{"weekly smallest bracket", ServiceResidentialWeekly, 1, Amount(219)},
		{"weekly exact threshold", ServiceResidentialWeekly, 30, Amount(219)},
		{"weekly next bracket", ServiceResidentialWeekly, 31, Amount(229)},
		{"weekly 45 sqm", ServiceResidentialWeekly, 45, Amount(239)},
		{"weekly largest bracket", ServiceResidentialWeekly, 120, Amount(459)},
		{"weekly beyond brackets", ServiceResidentialWeekly, 121, IndividualQuote},
		{"biweekly 60 sqm", ServiceResidentialBiweekly, 60, Amount(259)},
		{"onetime 100 sqm", ServiceResidentialOnetime, 100, Amount(429)},
		{"office small", ServiceOffice, 50, Amount(199)},
		{"office large", ServiceOffice, 100, Amount(249)},
		{"office beyond brackets", ServiceOffice, 120, IndividualQuote},
		{"post renovation small", ServicePostRenovation, 10, IndividualQuote},
		{"post renovation large", ServicePostRenovation, 500, IndividualQuote},
		{"upholstery flat", ServiceUpholstery, 999, Amount(200)},
		{"unknown type uses onetime brackets", ServiceType("standard"), 45, Amount(269)},
		{"unknown type beyond brackets", ServiceType(""), 200, IndividualQuote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, calc.BasePrice(tt.st, tt.area))
		})
	}
}

func TestBasePriceMonotonic(t *testing.T) {
	calc := newTestCalculator()

	for _, def := range calc.Table().Services() {
		if len(def.Brackets) == 0 {
			continue
		}
		t.Run(string(def.Type), func(t *testing.T) {
			var prev int64
			maxArea := def.Brackets[len(def.Brackets)-1].MaxArea
			for area := 1; area <= maxArea; area++ {
				v, ok := calc.BasePrice(def.Type, area).Value()
				require.True(t, ok, "area %d should have a price", area)
				assert.GreaterOrEqual(t, v, prev, "area %d", area)
				prev = v
			}
		})
	}
}

func TestAddOnContribution(t *testing.T) {
	calc := newTestCalculator()

	sel, err := calc.Select([]AddOnRequest{
		{ID: "windows_1", Quantity: 3},
		{ID: AddOnEco, Quantity: 7},
		{ID: AddOnPostRenovationCleaning, Quantity: 5},
		{ID: "fridge", Quantity: 0},
	})
	require.NoError(t, err)
	require.Len(t, sel, 4)

	assert.Equal(t, int64(117), calc.AddOnContribution(sel[0], 239))
	assert.Equal(t, int64(0), calc.AddOnContribution(sel[1], 239))
	assert.Equal(t, int64(0), calc.AddOnContribution(sel[1], 10000))
	// 0.30 * 239 = 71.7
	assert.Equal(t, int64(72), calc.AddOnContribution(sel[2], 239))
	// 0.30 * 215 = 64.5 rounds half up
	assert.Equal(t, int64(65), calc.AddOnContribution(sel[2], 215))
	assert.Equal(t, 1, sel[3].Quantity)
	assert.Equal(t, int64(75), calc.AddOnContribution(sel[3], 239))
}

func TestSurchargeIgnoresQuantity(t *testing.T) {
	calc := newTestCalculator()

	for _, q := range []int{1, 2, 10} {
		sel, err := calc.Select([]AddOnRequest{{ID: AddOnPostRenovationCleaning, Quantity: q}})
		require.NoError(t, err)
		assert.Equal(t, int64(75), calc.AddOnContribution(sel[0], 249))
	}
}

func TestQuoteScenarios(t *testing.T) {
	calc := newTestCalculator()

	t.Run("weekly 45 sqm", func(t *testing.T) {
		q, err := calc.Quote(ServiceResidentialWeekly, 45, nil)
		require.NoError(t, err)
		assert.Equal(t, Amount(239), q.BasePrice)
		assert.Equal(t, Amount(239), q.Total)
		assert.Equal(t, "Sprzątanie mieszkań - co tydzień", q.ServiceName)
	})

	t.Run("weekly 45 sqm with two single windows", func(t *testing.T) {
		q, err := calc.Quote(ServiceResidentialWeekly, 45, []AddOnRequest{{ID: "windows_1", Quantity: 2}})
		require.NoError(t, err)
		assert.Equal(t, Amount(317), q.Total)
		require.Len(t, q.AddOns, 1)
		assert.Equal(t, int64(78), q.AddOns[0].Contribution)
	})

	t.Run("office 120 sqm is individual", func(t *testing.T) {
		q, err := calc.Quote(ServiceOffice, 120, []AddOnRequest{{ID: "oven", Quantity: 1}})
		require.NoError(t, err)
		assert.True(t, q.Total.IsIndividual())
		assert.Len(t, q.AddOns, 1)
		assert.Equal(t, int64(0), q.AddOns[0].Contribution)
	})

	t.Run("post renovation is always individual", func(t *testing.T) {
		for _, area := range []int{1, 50, 1000} {
			q, err := calc.Quote(ServicePostRenovation, area, []AddOnRequest{{ID: "windows_2", Quantity: 4}})
			require.NoError(t, err)
			assert.True(t, q.Total.IsIndividual())
		}
	})

	t.Run("eco with surcharge", func(t *testing.T) {
		q, err := calc.Quote(ServiceResidentialOnetime, 30, []AddOnRequest{
			{ID: AddOnEco, Quantity: 3},
			{ID: AddOnPostRenovationCleaning, Quantity: 2},
		})
		require.NoError(t, err)
		// 249 + 0 + round(74.7)
		assert.Equal(t, Amount(324), q.Total)
	})

	t.Run("unknown add-on", func(t *testing.T) {
		_, err := calc.Quote(ServiceResidentialWeekly, 45, []AddOnRequest{{ID: "jacuzzi", Quantity: 1}})
		assert.ErrorIs(t, err, ErrUnknownAddOn)
	})

	t.Run("computed at uses clock", func(t *testing.T) {
		q, err := calc.Quote(ServiceUpholstery, 10, nil)
		require.NoError(t, err)
		assert.Equal(t, 2026, q.ComputedAt.Year())
	})
}

func TestNewTableRejectsBadInput(t *testing.T) {
	good := []ServiceDefinition{{Type: ServiceResidentialOnetime, Brackets: []Bracket{{30, 100}, {40, 120}}}}

	tests := []struct {
		name     string
		services []ServiceDefinition
		addOns   []AddOnDefinition
		fallback ServiceType
		err      error
	}{
		{"empty", nil, nil, ServiceResidentialOnetime, ErrEmptyTable},
		{
			"non increasing brackets",
			[]ServiceDefinition{{Type: ServiceResidentialOnetime, Brackets: []Bracket{{40, 100}, {40, 120}}}},
			nil, ServiceResidentialOnetime, ErrBracketsNotIncrease,
		},
		{"missing fallback", good, nil, ServiceOffice, ErrUnknownFallback},
		{
			"duplicate add-on", good,
			[]AddOnDefinition{{ID: "a", Kind: AddOnStandard}, {ID: "a", Kind: AddOnStandard}},
			ServiceResidentialOnetime, ErrDuplicateAddOn,
		},
		{
			"bad kind", good,
			[]AddOnDefinition{{ID: "a", Kind: "percent"}},
			ServiceResidentialOnetime, ErrInvalidAddOnKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.services, tt.addOns, tt.fallback)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestTableIsImmutable(t *testing.T) {
	services := DefaultServices()
	table, err := NewTable(services, DefaultAddOns(), ServiceResidentialOnetime)
	require.NoError(t, err)

	services[0].Brackets[0].Price = 1
	def, ok := table.Service(ServiceResidentialWeekly)
	require.True(t, ok)
	assert.Equal(t, int64(219), def.Brackets[0].Price)

	def.Brackets[0].Price = 2
	again, _ := table.Service(ServiceResidentialWeekly)
	assert.Equal(t, int64(219), again.Brackets[0].Price)

	assert.Len(t, table.AddOns(), 26)
	assert.Len(t, table.Services(), 6)
}

func TestPriceJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Price `json:"a"`
		B Price `json:"b"`
	}{Amount(317), IndividualQuote})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":317,"b":"individual_quote"}`, string(b))

	var p Price
	require.Error(t, json.Unmarshal([]byte(`"free"`), &p))
	assert.Nil(t, IndividualQuote.Ptr())
	assert.Equal(t, IndividualQuote, FromPtr(nil))
}
