package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotationRecalculate(t *testing.T) {
	q := NewQuotation("Acme", []QuotationItem{
		{Description: "Lawn mowing", Quantity: 2, UnitPrice: 45.5},
		{Description: "Hedge trimming", Quantity: 1.5, UnitPrice: 30},
	}, 10)

	require.Len(t, q.Items, 2)
	assert.Equal(t, 91.0, q.Items[0].Total)
	assert.Equal(t, 45.0, q.Items[1].Total)
	assert.Equal(t, 136.0, q.Subtotal)
	assert.Equal(t, 122.4, q.Total)
	assert.NotEmpty(t, q.Items[0].ID)
	assert.Equal(t, QuotationDraft, q.Status)
	assert.Regexp(t, `^Q-\d{8}-[0-9A-F-]{6}$`, q.Number)
}

func TestQuotationValidate(t *testing.T) {
	tests := []struct {
		name string
		q    *Quotation
	}{
		{"missing client", NewQuotation("", []QuotationItem{{Description: "x", Quantity: 1}}, 0)},
		{"no items", NewQuotation("Acme", nil, 0)},
		{"discount too high", NewQuotation("Acme", []QuotationItem{{Description: "x", Quantity: 1}}, 120)},
		{"zero quantity", NewQuotation("Acme", []QuotationItem{{Description: "x", Quantity: 0}}, 0)},
		{"blank description", NewQuotation("Acme", []QuotationItem{{Quantity: 1}}, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}

	ok := NewQuotation("Acme", []QuotationItem{{Description: "x", Quantity: 1, UnitPrice: 5}}, 0)
	ok.ClientEmail = "billing@acme.test"
	assert.NoError(t, ok.Validate())

	ok.ClientEmail = "not an address"
	assert.Error(t, ok.Validate())
}

func TestQuotationLifecycle(t *testing.T) {
	q := NewQuotation("Acme", []QuotationItem{{Description: "x", Quantity: 1, UnitPrice: 5}}, 0)

	err := q.TransitionTo(QuotationAccepted)
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	require.NoError(t, q.TransitionTo(QuotationSent))
	assert.NotNil(t, q.SentAt)
	assert.False(t, q.Editable())

	require.NoError(t, q.TransitionTo(QuotationAccepted))
	require.NoError(t, q.TransitionTo(QuotationCompleted))

	err = q.TransitionTo(QuotationDraft)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestQuotationRejectedIsTerminal(t *testing.T) {
	q := NewQuotation("Acme", []QuotationItem{{Description: "x", Quantity: 1}}, 0)
	require.NoError(t, q.TransitionTo(QuotationSent))
	require.NoError(t, q.TransitionTo(QuotationRejected))
	assert.Error(t, q.TransitionTo(QuotationCompleted))
}
