package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"business-admin/internal/logger"
	"business-admin/internal/repository"
	"business-admin/internal/service"
)

// ServiceHandler serves the catalog of billable services.
type ServiceHandler struct {
	catalog service.CatalogService
	logger  *logger.Logger
}

func NewServiceHandler(catalog service.CatalogService, logger *logger.Logger) *ServiceHandler {
	return &ServiceHandler{catalog: catalog, logger: logger}
}

func (h *ServiceHandler) GetServices(c echo.Context) error {
	active, err := boolParam(c, "active")
	if err != nil {
		return badRequest(c, err.Error())
	}
	filter := repository.ServiceFilter{Active: active, Search: strings.TrimSpace(c.QueryParam("search"))}

	page, err := h.catalog.ListServices(c.Request().Context(), filter, listOptions(c))
	if err != nil {
		return fromError(c, h.logger, "get services", err)
	}
	return list(c, page)
}

func (h *ServiceHandler) CreateService(c echo.Context) error {
	var req service.ServiceInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	svc, err := h.catalog.CreateService(c.Request().Context(), req)
	if err != nil {
		return fromError(c, h.logger, "create service", err)
	}
	return success(c, http.StatusCreated, svc, "Service created")
}

func (h *ServiceHandler) GetService(c echo.Context) error {
	svc, err := h.catalog.GetService(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fromError(c, h.logger, "get service", err)
	}
	return success(c, http.StatusOK, svc, "")
}

func (h *ServiceHandler) UpdateService(c echo.Context) error {
	var req service.ServiceInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	svc, err := h.catalog.UpdateService(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return fromError(c, h.logger, "update service", err)
	}
	return success(c, http.StatusOK, svc, "Service updated")
}

func (h *ServiceHandler) DeleteService(c echo.Context) error {
	if err := h.catalog.DeleteService(c.Request().Context(), c.Param("id")); err != nil {
		return fromError(c, h.logger, "delete service", err)
	}
	return success(c, http.StatusOK, nil, "Service deleted")
}
