package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"business-admin/internal/categorizer"
	"business-admin/internal/logger"
	"business-admin/internal/model"
	"business-admin/internal/repository"
)

type emailService struct {
	emailRepo    repository.EmailRepository
	categoryRepo repository.CategoryRepository
	userRepo     repository.UserRepository
	gmailClient  GmailClient
	categorizer  *categorizer.Categorizer
	maxFetch     int64
	logger       *logger.Logger
}

func NewEmailService(
	emailRepo repository.EmailRepository,
	categoryRepo repository.CategoryRepository,
	userRepo repository.UserRepository,
	gmailClient GmailClient,
	categorizer *categorizer.Categorizer,
	maxFetch int64,
	logger *logger.Logger,
) EmailService {
	return &emailService{
		emailRepo:    emailRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		gmailClient:  gmailClient,
		categorizer:  categorizer,
		maxFetch:     maxFetch,
		logger:       logger,
	}
}

func (s *emailService) CreateEmail(ctx context.Context, userID string, in EmailInput) (*model.Email, error) {
	var receivedAt time.Time
	if in.ReceivedAt != nil {
		receivedAt = *in.ReceivedAt
	}
	email := model.NewEmail(userID, strings.TrimSpace(in.ExternalID), strings.TrimSpace(in.From), strings.TrimSpace(in.Subject), in.Body, receivedAt)
	email.To = strings.TrimSpace(in.To)
	if err := email.Validate(); err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	s.categorizer.Apply(email, categories)

	if err := s.emailRepo.Create(ctx, email); err != nil {
		s.logger.Error("Failed to save email:", err)
		return nil, err
	}
	s.logger.Info("Created email:", email.ID, "category:", email.Category, "confidence:", email.Confidence)
	return email, nil
}

func (s *emailService) GetEmail(ctx context.Context, emailID string) (*model.Email, error) {
	return s.emailRepo.FindByID(ctx, emailID)
}

func (s *emailService) ListEmails(ctx context.Context, filter repository.EmailFilter, opts repository.ListOptions) (*repository.Page[*model.Email], error) {
	return s.emailRepo.List(ctx, filter, opts.Normalized(repository.EmailSortFields))
}

func (s *emailService) UpdateEmail(ctx context.Context, emailID string, in EmailUpdate) (*model.Email, error) {
	email, err := s.emailRepo.FindByID(ctx, emailID)
	if err != nil {
		return nil, err
	}

	if in.Processed != nil {
		email.Processed = *in.Processed
	}
	if in.Responded != nil {
		email.Responded = *in.Responded
	}
	if in.Archived != nil {
		email.Archived = *in.Archived
	}
	if in.CategoryID != nil {
		if err := s.overrideCategory(ctx, email, *in.CategoryID); err != nil {
			return nil, err
		}
	}
	email.UpdatedAt = time.Now()

	if err := s.emailRepo.Update(ctx, email); err != nil {
		s.logger.Error("Failed to update email:", err)
		return nil, err
	}
	return email, nil
}

// overrideCategory pins a manually chosen category with full confidence.
func (s *emailService) overrideCategory(ctx context.Context, email *model.Email, categoryID string) error {
	if categoryID == "" {
		email.CategoryID = ""
		email.Category = ""
		email.Confidence = 0
		return nil
	}
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: category %s does not exist", model.ErrValidation, categoryID)
	}
	if err != nil {
		return err
	}
	email.CategoryID = category.ID
	email.Category = category.Name
	email.Confidence = 1
	s.logger.Info("Category override for email:", email.ID, "->", category.Name)
	return nil
}

func (s *emailService) DeleteEmail(ctx context.Context, emailID string) error {
	if err := s.emailRepo.Delete(ctx, emailID); err != nil {
		return err
	}
	s.logger.Info("Deleted email:", emailID)
	return nil
}

func (s *emailService) PreviewCategorization(ctx context.Context, in categorizer.Input) (*categorizer.Result, error) {
	if strings.TrimSpace(in.Subject) == "" && strings.TrimSpace(in.Body) == "" && strings.TrimSpace(in.From) == "" {
		return nil, fmt.Errorf("%w: subject, body or from is required", model.ErrValidation)
	}
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	res := s.categorizer.Categorize(in, categories)
	return &res, nil
}

func (s *emailService) Recategorize(ctx context.Context, onlyUnprocessed bool) (*RecategorizeResult, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	filter := repository.EmailFilter{}
	if onlyUnprocessed {
		unprocessed := false
		filter.Processed = &unprocessed
	}
	emails, err := s.emailRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get emails: %w", err)
	}

	result := &RecategorizeResult{}
	for _, email := range emails {
		result.Processed++
		previousID, previousName, previousConfidence := email.CategoryID, email.Category, email.Confidence
		s.categorizer.Apply(email, categories)
		if email.CategoryID == previousID && email.Category == previousName && email.Confidence == previousConfidence {
			continue
		}
		email.UpdatedAt = time.Now()
		if err := s.emailRepo.Update(ctx, email); err != nil {
			s.logger.Error("Failed to store recategorized email:", email.ID, err)
			return result, err
		}
		result.Changed++
	}
	s.logger.Info("Recategorized emails:", result.Processed, "changed:", result.Changed)
	return result, nil
}

func (s *emailService) SyncEmails(ctx context.Context, userID string) ([]*model.Email, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.HasMailboxAccess() {
		return nil, fmt.Errorf("%w: user %s has not granted mailbox access", model.ErrValidation, user.Email)
	}

	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	inbox, err := s.gmailClient.ListInbox(ctx, user, s.maxFetch)
	if err != nil {
		return nil, fmt.Errorf("failed to get emails from Gmail: %w", err)
	}

	imported := make([]*model.Email, 0, len(inbox))
	for _, email := range inbox {
		email.UserID = user.ID

		if _, err := s.emailRepo.FindByExternalID(ctx, user.ID, email.ExternalID); err == nil {
			s.logger.Debug("Email already imported, skipping:", email.ExternalID)
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return imported, err
		}

		s.categorizer.Apply(email, categories)
		if err := s.emailRepo.Create(ctx, email); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				continue
			}
			s.logger.Error("Failed to save email:", err)
			return imported, err
		}
		imported = append(imported, email)

		if err := s.gmailClient.MarkAsRead(ctx, user, email.ExternalID); err != nil {
			s.logger.Warn("Failed to mark email as read in Gmail:", email.ExternalID, err)
		}
	}

	s.logger.Info("Synced emails for user:", user.ID, "new:", len(imported), "fetched:", len(inbox))
	return imported, nil
}
