package businessflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/amirphl/cleaning-orders/app/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactFlow_Send(t *testing.T) {
	ctx := context.Background()

	valid := func() *dto.ContactRequest {
		return &dto.ContactRequest{
			Name:    "Anna <b>Nowak</b>",
			Email:   " Anna@Example.com ",
			Subject: "Wycena",
			Message: "Proszę o wycenę sprzątania biura 80 m².",
		}
	}

	t.Run("delivered sanitized", func(t *testing.T) {
		notifier := &fakeNotifier{}
		require.NoError(t, NewContactFlow(notifier).Send(ctx, valid(), nil))
		require.Len(t, notifier.contacts, 1)
		assert.Equal(t, "Anna bNowak/b", notifier.contacts[0].Name)
		assert.Equal(t, "anna@example.com", notifier.contacts[0].Email)
	})

	tests := []struct {
		name  string
		tweak func(*dto.ContactRequest)
		field string
		rule  string
	}{
		{"missing name", func(r *dto.ContactRequest) { r.Name = "  " }, "name", "required"},
		{"bad email", func(r *dto.ContactRequest) { r.Email = "anna" }, "email", "email_shape"},
		{"short message", func(r *dto.ContactRequest) { r.Message = "Cześć!" }, "message", "min"},
		{"long message", func(r *dto.ContactRequest) { r.Message = strings.Repeat("ż", 2001) }, "message", "max"},
		{"empty message", func(r *dto.ContactRequest) { r.Message = "" }, "message", "required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &fakeNotifier{}
			req := valid()
			tt.tweak(req)
			err := NewContactFlow(notifier).Send(ctx, req, nil)
			ve, ok := AsValidationError(err)
			require.True(t, ok)
			assert.True(t, ve.Has(tt.field, tt.rule))
			assert.Empty(t, notifier.contacts)
		})
	}

	t.Run("exactly 2000 characters", func(t *testing.T) {
		req := valid()
		req.Message = strings.Repeat("ż", 2000)
		assert.NoError(t, NewContactFlow(&fakeNotifier{}).Send(ctx, req, nil))
	})

	t.Run("delivery failure", func(t *testing.T) {
		err := NewContactFlow(&fakeNotifier{err: errors.New("down")}).Send(ctx, valid(), nil)
		assert.True(t, IsNotifierFailed(err))
	})
}
