package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"business-admin/internal/model"
	"business-admin/internal/repository"
)

func TestRecordsAreCopied(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryCategoryRepository()

	c := model.NewCategory("Support", "")
	c.Keywords = []string{"help"}
	require.NoError(t, repo.Create(ctx, c))

	c.Keywords[0] = "mutated"
	c.Name = "Changed"

	got, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Support", got.Name)
	assert.Equal(t, []string{"help"}, got.Keywords)

	got.Active = false
	again, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, again.Active)
}

func TestCategoryConflictsAndNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryCategoryRepository()

	a := model.NewCategory("Invoices", "")
	require.NoError(t, repo.Create(ctx, a))
	assert.True(t, errors.Is(repo.Create(ctx, model.NewCategory("Invoices", "")), repository.ErrConflict))

	b := model.NewCategory("Support", "")
	require.NoError(t, repo.Create(ctx, b))
	b.Name = "Invoices"
	assert.True(t, errors.Is(repo.Update(ctx, b), repository.ErrConflict))

	_, err := repo.FindByID(ctx, "missing")
	assert.True(t, errors.Is(err, repository.ErrNotFound))
	assert.True(t, errors.Is(repo.Delete(ctx, "missing"), repository.ErrNotFound))

	found, err := repo.FindByName(ctx, "invoices")
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.ID)
}

func TestUserCreateUpsertsByGoogleID(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryUserRepository()

	first := model.NewUser("g-1", "me@example.com", "Me", "a", "r", time.Time{})
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, model.NewUser("g-1", "me@example.com", "Me Again", "a2", "r2", time.Time{})))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, "a2", all[0].AccessToken)
}

func TestEmailPagingMatchesSQLOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryEmailRepository()

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		e := model.NewEmail("u", fmt.Sprintf("x-%d", i), "a@example.com", fmt.Sprintf("Subject %02d", i), "", base.Add(time.Duration(i)*time.Minute))
		e.Responded = i < 4
		require.NoError(t, repo.Create(ctx, e))
	}

	page, err := repo.List(ctx, repository.EmailFilter{}, repository.ListOptions{Page: 3, Limit: 10, SortBy: "received_at"})
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages())
	require.Len(t, page.Items, 5)
	assert.Equal(t, "Subject 04", page.Items[0].Subject)
	assert.Equal(t, "Subject 00", page.Items[4].Subject)

	page, err = repo.List(ctx, repository.EmailFilter{}, repository.ListOptions{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	responded := true
	n, err := repo.Count(ctx, repository.EmailFilter{Responded: &responded})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	dup := model.NewEmail("u", "x-1", "a@example.com", "again", "", time.Time{})
	assert.True(t, errors.Is(repo.Create(ctx, dup), repository.ErrConflict))
}

func TestAppointmentOverlapAndReminders(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryAppointmentRepository()

	nine := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	a := model.NewAppointment("c1", "A", nine, nine.Add(time.Hour))
	b := model.NewAppointment("c1", "B", nine.Add(time.Hour), nine.Add(2*time.Hour))
	b.Status = model.AppointmentCancelled
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	got, err := repo.FindOverlapping(ctx, nine.Add(30*time.Minute), nine.Add(90*time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)

	due, err := repo.FindDueForReminder(ctx, nine.Add(-time.Minute), nine.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, due, 1)

	page, err := repo.List(ctx, repository.AppointmentFilter{Status: model.AppointmentCancelled}, repository.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestQuotationSumAndItemsCopied(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryQuotationRepository()

	q := model.NewQuotation("Acme", []model.QuotationItem{{Description: "x", Quantity: 1, UnitPrice: 10.005}}, 0)
	require.NoError(t, repo.Create(ctx, q))
	q.Items[0].Description = "mutated"

	got, err := repo.FindByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "x", got.Items[0].Description)

	sum, err := repo.SumTotal(ctx, model.QuotationDraft)
	require.NoError(t, err)
	assert.Equal(t, got.Total, sum)

	sum, err = repo.SumTotal(ctx, model.QuotationAccepted)
	require.NoError(t, err)
	assert.Zero(t, sum)
}

func TestAvailabilityForDay(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryAvailabilityRepository()

	require.NoError(t, repo.Create(ctx, model.NewWeeklyAvailability(time.Monday, "13:00", "17:00")))
	require.NoError(t, repo.Create(ctx, model.NewWeeklyAvailability(time.Monday, "09:00", "12:00")))
	require.NoError(t, repo.Create(ctx, model.NewWeeklyAvailability(time.Friday, "09:00", "12:00")))

	rules, err := repo.FindForDay(ctx, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "09:00", rules[0].StartTime)
}

func TestEmailListHugePageIsEmpty(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryEmailRepository()

	for i := 0; i < 3; i++ {
		e := model.NewEmail("u", fmt.Sprintf("far-%d", i), "a@example.com", "Subject", "", time.Date(2026, 3, 1, 8, i, 0, 0, time.UTC))
		require.NoError(t, repo.Create(ctx, e))
	}

	page, err := repo.List(ctx, repository.EmailFilter{}, repository.ListOptions{Page: math.MaxInt64, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.Total)
	assert.Positive(t, page.Opts.Offset())
}
