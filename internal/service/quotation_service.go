package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"business-admin/internal/logger"
	"business-admin/internal/model"
	"business-admin/internal/repository"
)

type quotationService struct {
	quotationRepo   repository.QuotationRepository
	clientRepo      repository.ClientRepository
	serviceRepo     repository.ServiceRepository
	appointmentRepo repository.AppointmentRepository
	mailer          Mailer
	logger          *logger.Logger
}

func NewQuotationService(
	quotationRepo repository.QuotationRepository,
	clientRepo repository.ClientRepository,
	serviceRepo repository.ServiceRepository,
	appointmentRepo repository.AppointmentRepository,
	mailer Mailer,
	logger *logger.Logger,
) QuotationService {
	return &quotationService{
		quotationRepo:   quotationRepo,
		clientRepo:      clientRepo,
		serviceRepo:     serviceRepo,
		appointmentRepo: appointmentRepo,
		mailer:          mailer,
		logger:          logger,
	}
}

func (s *quotationService) CreateQuotation(ctx context.Context, in QuotationInput) (*model.Quotation, error) {
	q := model.NewQuotation("", nil, 0)
	if err := s.applyInput(ctx, q, in); err != nil {
		return nil, err
	}
	q.Recalculate()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if err := s.quotationRepo.Create(ctx, q); err != nil {
		s.logger.Error("Failed to create quotation:", err)
		return nil, err
	}
	s.logger.Info("Created quotation:", q.Number, "total:", q.Total)
	return q, nil
}

// applyInput copies the input onto q, resolving the linked client and the
// catalog services referenced by items.
func (s *quotationService) applyInput(ctx context.Context, q *model.Quotation, in QuotationInput) error {
	if in.ClientName != nil {
		q.ClientName = strings.TrimSpace(*in.ClientName)
	}
	if in.ClientEmail != nil {
		q.ClientEmail = strings.TrimSpace(*in.ClientEmail)
	}
	if in.ClientPhone != nil {
		q.ClientPhone = strings.TrimSpace(*in.ClientPhone)
	}
	if in.ClientID != nil {
		q.ClientID = strings.TrimSpace(*in.ClientID)
	}
	if in.ClientID != nil && q.ClientID != "" {
		client, err := s.clientRepo.FindByID(ctx, q.ClientID)
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: client %s does not exist", model.ErrValidation, q.ClientID)
		}
		if err != nil {
			return err
		}
		if q.ClientName == "" {
			q.ClientName = client.Name
		}
		if q.ClientEmail == "" {
			q.ClientEmail = client.Email
		}
		if q.ClientPhone == "" {
			q.ClientPhone = client.Phone
		}
	}

	if in.Items != nil {
		items := make([]model.QuotationItem, 0, len(in.Items))
		for i, itemIn := range in.Items {
			item, err := s.buildItem(ctx, i, itemIn)
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		q.Items = items
	}
	if in.Discount != nil {
		q.Discount = *in.Discount
	}
	if in.Notes != nil {
		q.Notes = *in.Notes
	}
	if in.ValidUntil != nil {
		validUntil := *in.ValidUntil
		q.ValidUntil = &validUntil
	}
	return nil
}

func (s *quotationService) buildItem(ctx context.Context, index int, in QuotationItemInput) (model.QuotationItem, error) {
	item := model.QuotationItem{
		ServiceID:   strings.TrimSpace(in.ServiceID),
		Description: strings.TrimSpace(in.Description),
		Quantity:    in.Quantity,
	}
	if in.UnitPrice != nil {
		item.UnitPrice = *in.UnitPrice
	}
	if item.ServiceID == "" {
		return item, nil
	}

	svc, err := s.serviceRepo.FindByID(ctx, item.ServiceID)
	if errors.Is(err, repository.ErrNotFound) {
		return item, fmt.Errorf("%w: item %d: service %s does not exist", model.ErrValidation, index+1, item.ServiceID)
	}
	if err != nil {
		return item, err
	}
	if item.Description == "" {
		item.Description = svc.Name
	}
	if in.UnitPrice == nil {
		item.UnitPrice = svc.Price
	}
	return item, nil
}

func (s *quotationService) GetQuotation(ctx context.Context, quotationID string) (*model.Quotation, error) {
	return s.quotationRepo.FindByID(ctx, quotationID)
}

func (s *quotationService) ListQuotations(ctx context.Context, filter repository.QuotationFilter, opts repository.ListOptions) (*repository.Page[*model.Quotation], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrValidation, filter.Status)
	}
	return s.quotationRepo.List(ctx, filter, opts.Normalized(repository.QuotationSortFields))
}

func (s *quotationService) UpdateQuotation(ctx context.Context, quotationID string, in QuotationInput) (*model.Quotation, error) {
	q, err := s.quotationRepo.FindByID(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	if in.touchesDraftFields() && !q.Editable() {
		return nil, fmt.Errorf("%w: quotation %s is %s and can no longer be edited", model.ErrInvalidTransition, q.Number, q.Status)
	}

	if err := s.applyInput(ctx, q, in); err != nil {
		return nil, err
	}
	q.Recalculate()
	if err := q.Validate(); err != nil {
		return nil, err
	}
	q.UpdatedAt = time.Now()

	if err := s.quotationRepo.Update(ctx, q); err != nil {
		s.logger.Error("Failed to update quotation:", err)
		return nil, err
	}
	s.logger.Info("Updated quotation:", q.Number)
	return q, nil
}

func (s *quotationService) DeleteQuotation(ctx context.Context, quotationID string) error {
	q, err := s.quotationRepo.FindByID(ctx, quotationID)
	if err != nil {
		return err
	}
	refs, err := s.appointmentRepo.Count(ctx, repository.AppointmentFilter{QuotationID: q.ID})
	if err != nil {
		return err
	}
	if refs > 0 {
		return fmt.Errorf("quotation %s has %d appointment(s): %w", q.Number, refs, repository.ErrConflict)
	}

	if err := s.quotationRepo.Delete(ctx, q.ID); err != nil {
		s.logger.Error("Failed to delete quotation:", err)
		return err
	}
	s.logger.Info("Deleted quotation:", q.Number)
	return nil
}

func (s *quotationService) UpdateStatus(ctx context.Context, quotationID string, status model.QuotationStatus) (*model.Quotation, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrValidation, status)
	}
	if status == model.QuotationSent {
		return s.SendQuotation(ctx, quotationID)
	}

	q, err := s.quotationRepo.FindByID(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	previous := q.Status
	if err := q.TransitionTo(status); err != nil {
		return nil, err
	}
	if err := s.quotationRepo.Update(ctx, q); err != nil {
		s.logger.Error("Failed to update quotation status:", err)
		return nil, err
	}
	s.logger.Info("Quotation", q.Number, "moved from", previous, "to", q.Status)
	return q, nil
}

func (s *quotationService) SendQuotation(ctx context.Context, quotationID string) (*model.Quotation, error) {
	q, err := s.quotationRepo.FindByID(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	if err := q.TransitionTo(model.QuotationSent); err != nil {
		return nil, err
	}

	if q.ClientEmail != "" {
		msg := MailMessage{
			To:      q.ClientEmail,
			Subject: fmt.Sprintf("Quotation %s", q.Number),
			Body:    renderQuotation(q),
		}
		if err := s.mailer.Send(ctx, msg); err != nil {
			s.logger.Error("Failed to mail quotation:", q.Number, err)
			return nil, fmt.Errorf("failed to send quotation %s: %w", q.Number, err)
		}
	} else {
		s.logger.Warn("Quotation has no client email, marking as sent without mailing:", q.Number)
	}

	if err := s.quotationRepo.Update(ctx, q); err != nil {
		s.logger.Error("Failed to update quotation status:", err)
		return nil, err
	}
	s.logger.Info("Sent quotation:", q.Number, "to", q.ClientEmail)
	return q, nil
}

func renderQuotation(q *model.Quotation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", q.ClientName)
	fmt.Fprintf(&b, "Please find below quotation %s.\n\n", q.Number)
	for _, item := range q.Items {
		fmt.Fprintf(&b, "- %s: %g x %.2f = %.2f\n", item.Description, item.Quantity, item.UnitPrice, item.Total)
	}
	fmt.Fprintf(&b, "\nSubtotal: %.2f\n", q.Subtotal)
	if q.Discount > 0 {
		fmt.Fprintf(&b, "Discount: %g%%\n", q.Discount)
	}
	fmt.Fprintf(&b, "Total: %.2f\n", q.Total)
	if q.ValidUntil != nil {
		fmt.Fprintf(&b, "\nValid until %s.\n", q.ValidUntil.Format(model.DateLayout))
	}
	if q.Notes != "" {
		fmt.Fprintf(&b, "\n%s\n", q.Notes)
	}
	return b.String()
}
