package categorizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"business-admin/internal/model"
)

func category(name string, keywords, patterns, domains []string) *model.Category {
	c := model.NewCategory(name, "")
	c.Keywords = keywords
	c.Patterns = patterns
	c.Domains = domains
	return c
}

func fixtures() []*model.Category {
	return []*model.Category{
		category("Invoices", []string{"invoice", "payment"}, []string{`inv-\d+`}, []string{"billing.example.com"}),
		category("Support", []string{"help", "broken"}, []string{`ticket\s+#\d+`}, nil),
		category("General", nil, nil, nil),
	}
}

func TestCategorize(t *testing.T) {
	c := New("General")

	tests := []struct {
		name       string
		in         Input
		want       string
		confidence float64
		fallback   bool
	}{
		{
			name:       "subject keyword",
			in:         Input{Subject: "Your Invoice is ready", From: "a@shop.test"},
			want:       "Invoices",
			confidence: 0.3,
		},
		{
			name:       "subject and body keyword plus pattern",
			in:         Input{Subject: "Invoice INV-2041", Body: "payment due", From: "a@shop.test"},
			want:       "Invoices",
			confidence: 0.6,
		},
		{
			name:       "sender subdomain",
			in:         Input{Subject: "hello", Body: "see attached", From: "Billing <no-reply@eu.billing.example.com>"},
			want:       "Invoices",
			confidence: 0.5,
		},
		{
			name:       "pattern in body",
			in:         Input{Subject: "re: issue", Body: "Regarding Ticket #77", From: "x@y.test"},
			want:       "Support",
			confidence: 0.2,
		},
		{
			name:       "confidence caps at one",
			in:         Input{Subject: "invoice payment INV-1", Body: "invoice payment", From: "a@billing.example.com"},
			want:       "Invoices",
			confidence: 1,
		},
		{
			name:     "no match falls back",
			in:       Input{Subject: "lunch?", Body: "are you free", From: "friend@mail.test"},
			want:     "General",
			fallback: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Categorize(tt.in, fixtures())
			assert.Equal(t, tt.want, res.Category)
			assert.Equal(t, tt.confidence, res.Confidence)
			assert.Equal(t, tt.fallback, res.Fallback)
			assert.NotEmpty(t, res.CategoryID)
			assert.Len(t, res.Scores, 3)
		})
	}
}

func TestCategorizeIgnoresInactive(t *testing.T) {
	cats := fixtures()
	cats[0].Active = false

	res := New("General").Categorize(Input{Subject: "invoice"}, cats)
	assert.Equal(t, "General", res.Category)
	assert.True(t, res.Fallback)
	assert.Len(t, res.Scores, 2)
}

func TestCategorizeTieKeepsNameOrder(t *testing.T) {
	cats := []*model.Category{
		category("Zeta", []string{"quote"}, nil, nil),
		category("Alpha", []string{"quote"}, nil, nil),
	}
	res := New("General").Categorize(Input{Subject: "quote request"}, cats)
	assert.Equal(t, "Alpha", res.Category)
}

func TestCategorizeMissingFallback(t *testing.T) {
	res := New("Other").Categorize(Input{Subject: "nothing"}, fixtures())
	assert.True(t, res.Fallback)
	assert.Equal(t, "Other", res.Category)
	assert.Empty(t, res.CategoryID)
	assert.Zero(t, res.Confidence)
}

func TestCategorizeInactiveFallbackIsNotLinked(t *testing.T) {
	cats := fixtures()
	cats[2].Active = false

	res := New("General").Categorize(Input{Subject: "nothing"}, cats)
	assert.True(t, res.Fallback)
	assert.Equal(t, "General", res.Category)
	assert.Empty(t, res.CategoryID)
}

func TestCategorizeSkipsBadPattern(t *testing.T) {
	cats := []*model.Category{category("Broken", nil, []string{`([`}, nil)}
	res := New("General").Categorize(Input{Subject: "(["}, cats)
	assert.True(t, res.Fallback)
}

func TestApply(t *testing.T) {
	email := model.NewEmail("", "", "ops@billing.example.com", "Payment received", "", time.Time{})
	res := New("General").Apply(email, fixtures())

	require.False(t, res.Fallback)
	assert.Equal(t, "Invoices", email.Category)
	assert.Equal(t, res.CategoryID, email.CategoryID)
	assert.Equal(t, 0.8, email.Confidence)

	require.Len(t, res.Scores, 3)
	assert.Equal(t, "Invoices", res.Scores[1].Category)
	assert.Equal(t, []string{"subject:payment", "domain:billing.example.com"}, res.Scores[1].Matches)
}
