package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryNormalize(t *testing.T) {
	c := NewCategory("  Invoices ", "")
	c.Keywords = []string{"Invoice", " invoice", "", "Payment"}
	c.Domains = []string{"@Billing.Example.com", "billing.example.com"}
	c.Color = ""

	c.Normalize()

	assert.Equal(t, "Invoices", c.Name)
	assert.Equal(t, []string{"invoice", "payment"}, c.Keywords)
	assert.Equal(t, []string{"billing.example.com"}, c.Domains)
	assert.Equal(t, DefaultCategoryColor, c.Color)
}

func TestCategoryValidate(t *testing.T) {
	c := NewCategory("Support", "")
	c.Patterns = []string{`ticket\s+#\d+`}
	assert.NoError(t, c.Validate())

	c.Patterns = []string{`([unclosed`}
	assert.True(t, errors.Is(c.Validate(), ErrValidation))

	c.Patterns = nil
	c.Color = "red"
	assert.Error(t, c.Validate())
}

func TestAddressDomain(t *testing.T) {
	assert.Equal(t, "example.com", AddressDomain("Jane <jane@Example.com>"))
	assert.Equal(t, "shop.example.org", AddressDomain("orders@shop.example.org"))
	assert.Equal(t, "", AddressDomain("no-at-sign"))
}
