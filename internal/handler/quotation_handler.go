package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"business-admin/internal/logger"
	"business-admin/internal/model"
	"business-admin/internal/repository"
	"business-admin/internal/service"
)

type QuotationHandler struct {
	quotationService service.QuotationService
	logger           *logger.Logger
}

func NewQuotationHandler(quotationService service.QuotationService, logger *logger.Logger) *QuotationHandler {
	return &QuotationHandler{quotationService: quotationService, logger: logger}
}

// GetQuotations lists quotations. Filters: status, client_id, search.
func (h *QuotationHandler) GetQuotations(c echo.Context) error {
	filter := repository.QuotationFilter{
		Status:   model.QuotationStatus(strings.ToLower(c.QueryParam("status"))),
		ClientID: c.QueryParam("client_id"),
		Search:   strings.TrimSpace(c.QueryParam("search")),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return badRequest(c, "Unknown quotation status")
	}

	page, err := h.quotationService.ListQuotations(c.Request().Context(), filter, listOptions(c))
	if err != nil {
		return fromError(c, h.logger, "get quotations", err)
	}
	return list(c, page)
}

func (h *QuotationHandler) CreateQuotation(c echo.Context) error {
	var req service.QuotationInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	q, err := h.quotationService.CreateQuotation(c.Request().Context(), req)
	if err != nil {
		return fromError(c, h.logger, "create quotation", err)
	}
	return success(c, http.StatusCreated, q, "Quotation "+q.Number+" created")
}

func (h *QuotationHandler) GetQuotation(c echo.Context) error {
	q, err := h.quotationService.GetQuotation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fromError(c, h.logger, "get quotation", err)
	}
	return success(c, http.StatusOK, q, "")
}

func (h *QuotationHandler) UpdateQuotation(c echo.Context) error {
	var req service.QuotationInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	q, err := h.quotationService.UpdateQuotation(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return fromError(c, h.logger, "update quotation", err)
	}
	return success(c, http.StatusOK, q, "Quotation updated")
}

func (h *QuotationHandler) DeleteQuotation(c echo.Context) error {
	if err := h.quotationService.DeleteQuotation(c.Request().Context(), c.Param("id")); err != nil {
		return fromError(c, h.logger, "delete quotation", err)
	}
	return success(c, http.StatusOK, nil, "Quotation deleted")
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *QuotationHandler) UpdateStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	status := model.QuotationStatus(strings.ToLower(strings.TrimSpace(req.Status)))

	q, err := h.quotationService.UpdateStatus(c.Request().Context(), c.Param("id"), status)
	if err != nil {
		return fromError(c, h.logger, "update quotation status", err)
	}
	return success(c, http.StatusOK, q, "Quotation is now "+string(q.Status))
}

func (h *QuotationHandler) SendQuotation(c echo.Context) error {
	q, err := h.quotationService.SendQuotation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fromError(c, h.logger, "send quotation", err)
	}
	return success(c, http.StatusOK, q, "Quotation sent")
}
