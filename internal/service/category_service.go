package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"business-admin/internal/logger"
	"business-admin/internal/model"
	"business-admin/internal/repository"
)

type categoryService struct {
	categoryRepo repository.CategoryRepository
	emailRepo    repository.EmailRepository
	logger       *logger.Logger
}

func NewCategoryService(categoryRepo repository.CategoryRepository, emailRepo repository.EmailRepository, logger *logger.Logger) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		emailRepo:    emailRepo,
		logger:       logger,
	}
}

func (s *categoryService) CreateCategory(ctx context.Context, in CategoryInput) (*model.Category, error) {
	category := model.NewCategory("", "")
	in.apply(category)
	category.Normalize()
	if err := category.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, category); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		s.logger.Error("Failed to create category:", err)
		return nil, err
	}
	s.logger.Info("Created category:", category.ID, category.Name)
	return category, nil
}

// checkName rejects names that differ from an existing category only by case.
func (s *categoryService) checkName(ctx context.Context, category *model.Category) error {
	existing, err := s.categoryRepo.FindByName(ctx, category.Name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != category.ID {
		return fmt.Errorf("category %q: %w", category.Name, repository.ErrConflict)
	}
	return nil
}

func (s *categoryService) GetCategory(ctx context.Context, categoryID string) (*model.Category, error) {
	return s.categoryRepo.FindByID(ctx, categoryID)
}

func (s *categoryService) GetAllCategories(ctx context.Context) ([]*model.Category, error) {
	return s.categoryRepo.FindAll(ctx)
}

func (s *categoryService) ListCategories(ctx context.Context, opts repository.ListOptions) (*repository.Page[*model.Category], error) {
	return s.categoryRepo.List(ctx, opts.Normalized(repository.CategorySortFields))
}

func (s *categoryService) UpdateCategory(ctx context.Context, categoryID string, in CategoryInput) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	in.apply(category)
	category.Normalize()
	if err := category.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, category); err != nil {
		return nil, err
	}
	category.UpdatedAt = time.Now()

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		s.logger.Error("Failed to update category:", err)
		return nil, err
	}
	s.logger.Info("Updated category:", category.ID)
	return category, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, categoryID string) error {
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return err
	}

	cleared, err := s.emailRepo.ClearCategory(ctx, category.ID)
	if err != nil {
		s.logger.Error("Failed to detach emails from category:", err)
		return err
	}
	if err := s.categoryRepo.Delete(ctx, category.ID); err != nil {
		s.logger.Error("Failed to delete category:", err)
		return err
	}
	s.logger.Info("Deleted category:", category.ID, "emails detached:", cleared)
	return nil
}

func (s *categoryService) SeedDefaults(ctx context.Context, defaults []CategoryInput) (int, error) {
	count, err := s.categoryRepo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	created := 0
	for _, in := range defaults {
		if _, err := s.CreateCategory(ctx, in); err != nil {
			return created, fmt.Errorf("seed category: %w", err)
		}
		created++
	}
	s.logger.Info("Seeded default categories:", created)
	return created, nil
}
