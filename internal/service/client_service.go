package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"business-admin/internal/logger"
	"business-admin/internal/model"
	"business-admin/internal/repository"
)

type clientService struct {
	clientRepo      repository.ClientRepository
	appointmentRepo repository.AppointmentRepository
	quotationRepo   repository.QuotationRepository
	logger          *logger.Logger
}

func NewClientService(
	clientRepo repository.ClientRepository,
	appointmentRepo repository.AppointmentRepository,
	quotationRepo repository.QuotationRepository,
	logger *logger.Logger,
) ClientService {
	return &clientService{
		clientRepo:      clientRepo,
		appointmentRepo: appointmentRepo,
		quotationRepo:   quotationRepo,
		logger:          logger,
	}
}

func (s *clientService) CreateClient(ctx context.Context, in ClientInput) (*model.Client, error) {
	client := model.NewClient("", "", "")
	in.apply(client)
	trimClient(client)
	if err := client.Validate(); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		s.logger.Error("Failed to create client:", err)
		return nil, err
	}
	s.logger.Info("Created client:", client.ID, client.Name)
	return client, nil
}

func trimClient(c *model.Client) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Company = strings.TrimSpace(c.Company)
}

func (s *clientService) GetClient(ctx context.Context, clientID string) (*model.Client, error) {
	return s.clientRepo.FindByID(ctx, clientID)
}

func (s *clientService) ListClients(ctx context.Context, filter repository.ClientFilter, opts repository.ListOptions) (*repository.Page[*model.Client], error) {
	return s.clientRepo.List(ctx, filter, opts.Normalized(repository.ClientSortFields))
}

func (s *clientService) UpdateClient(ctx context.Context, clientID string, in ClientInput) (*model.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	in.apply(client)
	trimClient(client)
	if err := client.Validate(); err != nil {
		return nil, err
	}
	client.UpdatedAt = time.Now()

	if err := s.clientRepo.Update(ctx, client); err != nil {
		s.logger.Error("Failed to update client:", err)
		return nil, err
	}
	s.logger.Info("Updated client:", client.ID)
	return client, nil
}

// DeleteClient refuses to remove a client that appointments still point to.
func (s *clientService) DeleteClient(ctx context.Context, clientID string) error {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return err
	}

	refs, err := s.appointmentRepo.Count(ctx, repository.AppointmentFilter{ClientID: client.ID})
	if err != nil {
		return err
	}
	if refs > 0 {
		return fmt.Errorf("client %s has %d appointment(s): %w", client.ID, refs, repository.ErrConflict)
	}

	if err := s.clientRepo.Delete(ctx, client.ID); err != nil {
		s.logger.Error("Failed to delete client:", err)
		return err
	}
	s.logger.Info("Deleted client:", client.ID)
	return nil
}

func (s *clientService) GetClientAppointments(ctx context.Context, clientID string, opts repository.ListOptions) (*repository.Page[*model.Appointment], error) {
	if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
		return nil, err
	}
	filter := repository.AppointmentFilter{ClientID: clientID}
	return s.appointmentRepo.List(ctx, filter, opts.Normalized(repository.AppointmentSortFields))
}

func (s *clientService) GetClientQuotations(ctx context.Context, clientID string, opts repository.ListOptions) (*repository.Page[*model.Quotation], error) {
	if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
		return nil, err
	}
	filter := repository.QuotationFilter{ClientID: clientID}
	return s.quotationRepo.List(ctx, filter, opts.Normalized(repository.QuotationSortFields))
}
