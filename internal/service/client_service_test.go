package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"business-admin/internal/model"
	"business-admin/internal/repository"
	"business-admin/internal/service"
)

func TestClientCRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.clients.CreateClient(ctx, service.ClientInput{Name: ptr("Kim"), Email: ptr("not-an-email")})
	assert.ErrorIs(t, err, model.ErrValidation)

	c, err := f.clients.CreateClient(ctx, service.ClientInput{Name: ptr(" Kim "), Company: ptr("Acme")})
	require.NoError(t, err)
	assert.Equal(t, "Kim", c.Name)

	updated, err := f.clients.UpdateClient(ctx, c.ID, service.ClientInput{Phone: ptr("555-0100")})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", updated.Phone)
	assert.Equal(t, "Acme", updated.Company)

	page, err := f.clients.ListClients(ctx, repository.ClientFilter{Search: "acme"}, repository.ListOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, c.ID, page.Items[0].ID)

	require.NoError(t, f.clients.DeleteClient(ctx, c.ID))
	_, err = f.clients.GetClient(ctx, c.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteClientWithAppointmentsIsRefused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.client(t, "Lea", "lea@example.com")

	a, err := f.appointments.CreateAppointment(ctx, booking(c.ID, "Visit", at(9, 0), at(10, 0)))
	require.NoError(t, err)
	_, err = f.quotations.CreateQuotation(ctx, service.QuotationInput{
		ClientID: ptr(c.ID),
		Items:    []service.QuotationItemInput{{Description: "Visit", Quantity: 1, UnitPrice: ptr(80.0)}},
	})
	require.NoError(t, err)

	err = f.clients.DeleteClient(ctx, c.ID)
	assert.ErrorIs(t, err, repository.ErrConflict)

	appointments, err := f.clients.GetClientAppointments(ctx, c.ID, repository.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, appointments.Total)
	assert.Equal(t, a.ID, appointments.Items[0].ID)

	quotations, err := f.clients.GetClientQuotations(ctx, c.ID, repository.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, quotations.Total)

	_, err = f.clients.GetClientQuotations(ctx, "missing", repository.ListOptions{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCatalogService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.CreateService(ctx, service.ServiceInput{Name: ptr("Bad"), Price: ptr(-1.0)})
	assert.ErrorIs(t, err, model.ErrValidation)

	s, err := f.catalog.CreateService(ctx, service.ServiceInput{Name: ptr("Window wash"), Price: ptr(19.999)})
	require.NoError(t, err)
	assert.Equal(t, 20.0, s.Price)
	assert.Equal(t, model.DefaultServiceUnit, s.Unit)
	assert.True(t, s.Active)

	_, err = f.catalog.UpdateService(ctx, s.ID, service.ServiceInput{Active: ptr(false), Unit: ptr("hour")})
	require.NoError(t, err)

	active := true
	page, err := f.catalog.ListServices(ctx, repository.ServiceFilter{Active: &active}, repository.ListOptions{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	stored, err := f.catalog.GetService(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "hour", stored.Unit)

	require.NoError(t, f.catalog.DeleteService(ctx, s.ID))
	assert.ErrorIs(t, f.catalog.DeleteService(ctx, s.ID), repository.ErrNotFound)
}
