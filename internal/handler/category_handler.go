package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"business-admin/internal/logger"
	"business-admin/internal/service"
)

type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *logger.Logger
}

func NewCategoryHandler(categoryService service.CategoryService, logger *logger.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// CreateCategory creates a new category
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req service.CategoryInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	category, err := h.categoryService.CreateCategory(c.Request().Context(), req)
	if err != nil {
		return fromError(c, h.logger, "create category", err)
	}

	return success(c, http.StatusCreated, category, "Category created")
}

// GetCategory retrieves a category by ID
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	category, err := h.categoryService.GetCategory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fromError(c, h.logger, "get category", err)
	}
	return success(c, http.StatusOK, category, "")
}

func (h *CategoryHandler) GetCategories(c echo.Context) error {
	page, err := h.categoryService.ListCategories(c.Request().Context(), listOptions(c))
	if err != nil {
		return fromError(c, h.logger, "get categories", err)
	}
	return list(c, page)
}

func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	var req service.CategoryInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	category, err := h.categoryService.UpdateCategory(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return fromError(c, h.logger, "update category", err)
	}
	return success(c, http.StatusOK, category, "Category updated")
}

// DeleteCategory removes the category; its emails become uncategorized.
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	if err := h.categoryService.DeleteCategory(c.Request().Context(), c.Param("id")); err != nil {
		return fromError(c, h.logger, "delete category", err)
	}
	return success(c, http.StatusOK, nil, "Category deleted")
}
