package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"business-admin/internal/logger"
	"business-admin/internal/repository"
	"business-admin/internal/service"
)

type ClientHandler struct {
	clientService service.ClientService
	logger        *logger.Logger
}

func NewClientHandler(clientService service.ClientService, logger *logger.Logger) *ClientHandler {
	return &ClientHandler{clientService: clientService, logger: logger}
}

func (h *ClientHandler) GetClients(c echo.Context) error {
	filter := repository.ClientFilter{Search: strings.TrimSpace(c.QueryParam("search"))}
	page, err := h.clientService.ListClients(c.Request().Context(), filter, listOptions(c))
	if err != nil {
		return fromError(c, h.logger, "get clients", err)
	}
	return list(c, page)
}

func (h *ClientHandler) CreateClient(c echo.Context) error {
	var req service.ClientInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	client, err := h.clientService.CreateClient(c.Request().Context(), req)
	if err != nil {
		return fromError(c, h.logger, "create client", err)
	}
	return success(c, http.StatusCreated, client, "Client created")
}

func (h *ClientHandler) GetClient(c echo.Context) error {
	client, err := h.clientService.GetClient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fromError(c, h.logger, "get client", err)
	}
	return success(c, http.StatusOK, client, "")
}

func (h *ClientHandler) UpdateClient(c echo.Context) error {
	var req service.ClientInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	client, err := h.clientService.UpdateClient(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return fromError(c, h.logger, "update client", err)
	}
	return success(c, http.StatusOK, client, "Client updated")
}

// DeleteClient refuses with 409 while appointments still reference the client.
func (h *ClientHandler) DeleteClient(c echo.Context) error {
	if err := h.clientService.DeleteClient(c.Request().Context(), c.Param("id")); err != nil {
		return fromError(c, h.logger, "delete client", err)
	}
	return success(c, http.StatusOK, nil, "Client deleted")
}

func (h *ClientHandler) GetClientAppointments(c echo.Context) error {
	page, err := h.clientService.GetClientAppointments(c.Request().Context(), c.Param("id"), listOptions(c))
	if err != nil {
		return fromError(c, h.logger, "get client appointments", err)
	}
	return list(c, page)
}

func (h *ClientHandler) GetClientQuotations(c echo.Context) error {
	page, err := h.clientService.GetClientQuotations(c.Request().Context(), c.Param("id"), listOptions(c))
	if err != nil {
		return fromError(c, h.logger, "get client quotations", err)
	}
	return list(c, page)
}
