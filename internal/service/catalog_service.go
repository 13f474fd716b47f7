package service

import (
	"context"
	"strings"
	"time"

	"business-admin/internal/logger"
	"business-admin/internal/model"
	"business-admin/internal/repository"
)

type catalogService struct {
	serviceRepo repository.ServiceRepository
	logger      *logger.Logger
}

func NewCatalogService(serviceRepo repository.ServiceRepository, logger *logger.Logger) CatalogService {
	return &catalogService{
		serviceRepo: serviceRepo,
		logger:      logger,
	}
}

func (s *catalogService) CreateService(ctx context.Context, in ServiceInput) (*model.Service, error) {
	svc := model.NewService("", "", 0, "", 0)
	in.apply(svc)
	normalizeService(svc)
	if err := svc.Validate(); err != nil {
		return nil, err
	}

	if err := s.serviceRepo.Create(ctx, svc); err != nil {
		s.logger.Error("Failed to create service:", err)
		return nil, err
	}
	s.logger.Info("Created service:", svc.ID, svc.Name)
	return svc, nil
}

func normalizeService(svc *model.Service) {
	svc.Name = strings.TrimSpace(svc.Name)
	svc.Unit = strings.TrimSpace(svc.Unit)
	if svc.Unit == "" {
		svc.Unit = model.DefaultServiceUnit
	}
	svc.Price = model.RoundCents(svc.Price)
}

func (s *catalogService) GetService(ctx context.Context, serviceID string) (*model.Service, error) {
	return s.serviceRepo.FindByID(ctx, serviceID)
}

func (s *catalogService) ListServices(ctx context.Context, filter repository.ServiceFilter, opts repository.ListOptions) (*repository.Page[*model.Service], error) {
	return s.serviceRepo.List(ctx, filter, opts.Normalized(repository.ServiceSortFields))
}

func (s *catalogService) UpdateService(ctx context.Context, serviceID string, in ServiceInput) (*model.Service, error) {
	svc, err := s.serviceRepo.FindByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	in.apply(svc)
	normalizeService(svc)
	if err := svc.Validate(); err != nil {
		return nil, err
	}
	svc.UpdatedAt = time.Now()

	if err := s.serviceRepo.Update(ctx, svc); err != nil {
		s.logger.Error("Failed to update service:", err)
		return nil, err
	}
	s.logger.Info("Updated service:", svc.ID)
	return svc, nil
}

func (s *catalogService) DeleteService(ctx context.Context, serviceID string) error {
	if err := s.serviceRepo.Delete(ctx, serviceID); err != nil {
		s.logger.Error("Failed to delete service:", err)
		return err
	}
	s.logger.Info("Deleted service:", serviceID)
	return nil
}
