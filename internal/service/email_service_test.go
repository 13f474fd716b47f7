package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"business-admin/internal/categorizer"
	"business-admin/internal/model"
	"business-admin/internal/repository"
	"business-admin/internal/service"
)

func TestCreateEmailCategorizes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	general := f.category(t, "General", nil, nil)
	invoices := f.category(t, "Invoices", []string{"invoice"}, []string{"billing.com"})

	email, err := f.emails.CreateEmail(ctx, "", service.EmailInput{
		From:    "Accounts <ar@billing.com>",
		Subject: "Your invoice",
		Body:    "see attached",
	})
	require.NoError(t, err)
	assert.Equal(t, invoices.ID, email.CategoryID)
	assert.Equal(t, "Invoices", email.Category)
	// subject keyword (3) + sender domain (5)
	assert.Equal(t, 0.8, email.Confidence)

	other, err := f.emails.CreateEmail(ctx, "", service.EmailInput{From: "x@y.com", Subject: "hello"})
	require.NoError(t, err)
	assert.Equal(t, general.ID, other.CategoryID)
	assert.Zero(t, other.Confidence)

	_, err = f.emails.CreateEmail(ctx, "", service.EmailInput{From: "x@y.com"})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestUpdateEmailFlagsAndOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.category(t, "General", nil, nil)
	support := f.category(t, "Support", []string{"help"}, nil)

	email, err := f.emails.CreateEmail(ctx, "", service.EmailInput{From: "x@y.com", Subject: "quick question"})
	require.NoError(t, err)

	updated, err := f.emails.UpdateEmail(ctx, email.ID, service.EmailUpdate{
		Processed:  ptr(true),
		CategoryID: ptr(support.ID),
	})
	require.NoError(t, err)
	assert.True(t, updated.Processed)
	assert.False(t, updated.Responded)
	assert.Equal(t, "Support", updated.Category)
	assert.Equal(t, 1.0, updated.Confidence)

	_, err = f.emails.UpdateEmail(ctx, email.ID, service.EmailUpdate{CategoryID: ptr("nope")})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.emails.UpdateEmail(ctx, "missing", service.EmailUpdate{Responded: ptr(true)})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, f.emails.DeleteEmail(ctx, email.ID))
	_, err = f.emails.GetEmail(ctx, email.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRecategorizeOnlyUnprocessed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.emails.CreateEmail(ctx, "", service.EmailInput{From: "a@b.com", Subject: "invoice 1"})
	require.NoError(t, err)
	second, err := f.emails.CreateEmail(ctx, "", service.EmailInput{From: "a@b.com", Subject: "invoice 2"})
	require.NoError(t, err)
	_, err = f.emails.UpdateEmail(ctx, second.ID, service.EmailUpdate{Processed: ptr(true)})
	require.NoError(t, err)

	invoices := f.category(t, "Invoices", []string{"invoice"}, nil)

	res, err := f.emails.Recategorize(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Changed)

	stored, err := f.emails.GetEmail(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, invoices.ID, stored.CategoryID)

	untouched, err := f.emails.GetEmail(ctx, second.ID)
	require.NoError(t, err)
	assert.Empty(t, untouched.CategoryID)

	res, err = f.emails.Recategorize(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 1, res.Changed)
}

func TestPreviewCategorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.category(t, "Invoices", []string{"invoice"}, nil)
	f.category(t, "Support", []string{"help"}, nil)

	res, err := f.emails.PreviewCategorization(ctx, categorizer.Input{Subject: "invoice help", Body: "invoice"})
	require.NoError(t, err)
	assert.Equal(t, "Invoices", res.Category)
	require.Len(t, res.Scores, 2)
	assert.Equal(t, 4, res.Scores[0].Score)
	assert.Equal(t, 3, res.Scores[1].Score)

	_, err = f.emails.PreviewCategorization(ctx, categorizer.Input{})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestSyncEmailsImportsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.category(t, "Invoices", []string{"invoice"}, nil)

	user, err := f.auth.GetOrCreateUser(ctx, "g-1", "owner@example.com", "Owner", "token", "refresh", time.Now().Add(time.Hour))
	require.NoError(t, err)

	f.gmail.ListInboxFunc = func(ctx context.Context, u *model.User, maxResults int64) ([]*model.Email, error) {
		assert.Equal(t, user.ID, u.ID)
		assert.Equal(t, int64(10), maxResults)
		return []*model.Email{
			model.NewEmail("", "gm-1", "ar@acme.com", "Invoice 7", "pay", time.Now()),
			model.NewEmail("", "gm-2", "friend@acme.com", "Lunch", "tomorrow?", time.Now()),
		}, nil
	}

	imported, err := f.emails.SyncEmails(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, imported, 2)
	assert.Equal(t, user.ID, imported[0].UserID)
	assert.Equal(t, "Invoices", imported[0].Category)
	assert.ElementsMatch(t, []string{"gm-1", "gm-2"}, f.gmail.MarkedAsRead())

	again, err := f.emails.SyncEmails(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, again)

	total, err := f.repos.Emails.Count(ctx, repository.EmailFilter{UserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestSyncEmailsErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	noTokens, err := f.auth.GetOrCreateUser(ctx, "g-2", "other@example.com", "Other", "", "", time.Time{})
	require.NoError(t, err)
	_, err = f.emails.SyncEmails(ctx, noTokens.ID)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.emails.SyncEmails(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	user, err := f.auth.GetOrCreateUser(ctx, "g-3", "third@example.com", "Third", "token", "", time.Now())
	require.NoError(t, err)
	f.gmail.ListInboxFunc = func(ctx context.Context, u *model.User, maxResults int64) ([]*model.Email, error) {
		return nil, errors.New("quota exceeded")
	}
	_, err = f.emails.SyncEmails(ctx, user.ID)
	assert.ErrorContains(t, err, "quota exceeded")
}
