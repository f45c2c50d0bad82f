package models

import (
	"testing"

	"github.com/amirphl/cleaning-orders/pricing"
	"github.com/stretchr/testify/assert"
)

func TestParseOrderStatus(t *testing.T) {
	tests := []struct {
		in       string
		expected OrderStatus
		ok       bool
	}{
		{"received", OrderStatusReceived, true},
		{"przyjęte", OrderStatusReceived, true},
		{" W_TRAKCIE ", OrderStatusInProgress, true},
		{"zakończone", OrderStatusCompleted, true},
		{"completed", OrderStatusCompleted, true},
		{"cancelled", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			st, ok := ParseOrderStatus(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, st)
		})
	}
}

func TestValidateStatusTransition(t *testing.T) {
	tests := []struct {
		name   string
		from   OrderStatus
		to     OrderStatus
		strict bool
		err    error
	}{
		{"permissive forward", OrderStatusReceived, OrderStatusCompleted, false, nil},
		{"permissive backward", OrderStatusCompleted, OrderStatusReceived, false, nil},
		{"unknown target", OrderStatusReceived, OrderStatus("lost"), false, ErrUnknownOrderStatus},
		{"strict forward", OrderStatusReceived, OrderStatusInProgress, true, nil},
		{"strict skip ahead", OrderStatusReceived, OrderStatusCompleted, true, nil},
		{"strict same", OrderStatusInProgress, OrderStatusInProgress, true, nil},
		{"strict backward", OrderStatusCompleted, OrderStatusInProgress, true, ErrStatusTransitionNotAllowed},
		{"strict unknown target", OrderStatusReceived, OrderStatus(""), true, ErrUnknownOrderStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStatusTransition(tt.from, tt.to, tt.strict)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestCleaningTypeMapping(t *testing.T) {
	for _, def := range pricing.DefaultServices() {
		ct, ok := CleaningTypeForService(def.Type)
		assert.True(t, ok, "service %s has no stored type", def.Type)
		_, known := ParseCleaningType(string(ct))
		assert.True(t, known)
	}

	ct, ok := ParseCleaningType("głębokie")
	assert.True(t, ok)
	assert.Equal(t, CleaningTypeDeep, ct)
	assert.Equal(t, pricing.ServiceResidentialOnetime, ct.PricingService())
	assert.Equal(t, pricing.ServiceOffice, CleaningTypeOffice.PricingService())

	_, ok = ParseCleaningType("residential_weekly")
	assert.False(t, ok)
}

func TestComposeAddress(t *testing.T) {
	assert.Equal(t, "Kościuszki 12, 34-300 Żywiec", ComposeAddress("Kościuszki", "12", "34-300", "Żywiec"))
	assert.Equal(t, "34-300 Żywiec", ComposeAddress("", "", "34-300", "Żywiec"))
	assert.Equal(t, "Kościuszki 12", ComposeAddress("Kościuszki", "12", "", ""))
}
