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

type AppointmentHandler struct {
	appointmentService service.AppointmentService
	logger             *logger.Logger
}

func NewAppointmentHandler(appointmentService service.AppointmentService, logger *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService, logger: logger}
}

// GetAppointments lists appointments. Filters: from, to, status, client_id,
// quotation_id.
func (h *AppointmentHandler) GetAppointments(c echo.Context) error {
	filter := repository.AppointmentFilter{
		ClientID:    c.QueryParam("client_id"),
		QuotationID: c.QueryParam("quotation_id"),
		Status:      model.AppointmentStatus(strings.ToLower(c.QueryParam("status"))),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return badRequest(c, "Unknown appointment status")
	}
	var err error
	if filter.From, err = timeParam(c, "from"); err != nil {
		return badRequest(c, err.Error())
	}
	if filter.To, err = untilParam(c, "to"); err != nil {
		return badRequest(c, err.Error())
	}

	page, err := h.appointmentService.ListAppointments(c.Request().Context(), filter, listOptions(c))
	if err != nil {
		return fromError(c, h.logger, "get appointments", err)
	}
	return list(c, page)
}

func (h *AppointmentHandler) CreateAppointment(c echo.Context) error {
	var req service.AppointmentInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	a, err := h.appointmentService.CreateAppointment(c.Request().Context(), req)
	if err != nil {
		return fromError(c, h.logger, "create appointment", err)
	}
	return success(c, http.StatusCreated, a, "Appointment scheduled")
}

func (h *AppointmentHandler) GetAppointment(c echo.Context) error {
	a, err := h.appointmentService.GetAppointment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fromError(c, h.logger, "get appointment", err)
	}
	return success(c, http.StatusOK, a, "")
}

func (h *AppointmentHandler) UpdateAppointment(c echo.Context) error {
	var req service.AppointmentInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	a, err := h.appointmentService.UpdateAppointment(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return fromError(c, h.logger, "update appointment", err)
	}
	return success(c, http.StatusOK, a, "Appointment updated")
}

func (h *AppointmentHandler) DeleteAppointment(c echo.Context) error {
	if err := h.appointmentService.DeleteAppointment(c.Request().Context(), c.Param("id")); err != nil {
		return fromError(c, h.logger, "delete appointment", err)
	}
	return success(c, http.StatusOK, nil, "Appointment deleted")
}

func (h *AppointmentHandler) UpdateStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	status := model.AppointmentStatus(strings.ToLower(strings.TrimSpace(req.Status)))

	a, err := h.appointmentService.UpdateStatus(c.Request().Context(), c.Param("id"), status)
	if err != nil {
		return fromError(c, h.logger, "update appointment status", err)
	}
	return success(c, http.StatusOK, a, "Appointment is now "+string(a.Status))
}
