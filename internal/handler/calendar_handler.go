package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"business-admin/internal/logger"
	"business-admin/internal/model"
	"business-admin/internal/service"
)

// maxSlotMinutes is one day; no free slot can be longer.
const maxSlotMinutes = 24 * 60

type CalendarHandler struct {
	calendarService service.CalendarService
	logger          *logger.Logger
}

func NewCalendarHandler(calendarService service.CalendarService, logger *logger.Logger) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService, logger: logger}
}

func (h *CalendarHandler) GetAvailability(c echo.Context) error {
	rules, err := h.calendarService.ListAvailability(c.Request().Context())
	if err != nil {
		return fromError(c, h.logger, "get availability", err)
	}
	return success(c, http.StatusOK, rules, "")
}

func (h *CalendarHandler) CreateAvailability(c echo.Context) error {
	var req service.AvailabilityInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	rule, err := h.calendarService.CreateAvailability(c.Request().Context(), req)
	if err != nil {
		return fromError(c, h.logger, "create availability", err)
	}
	return success(c, http.StatusCreated, rule, "Availability created")
}

func (h *CalendarHandler) UpdateAvailability(c echo.Context) error {
	var req service.AvailabilityInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	rule, err := h.calendarService.UpdateAvailability(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return fromError(c, h.logger, "update availability", err)
	}
	return success(c, http.StatusOK, rule, "Availability updated")
}

func (h *CalendarHandler) DeleteAvailability(c echo.Context) error {
	if err := h.calendarService.DeleteAvailability(c.Request().Context(), c.Param("id")); err != nil {
		return fromError(c, h.logger, "delete availability", err)
	}
	return success(c, http.StatusOK, nil, "Availability deleted")
}

// GetSlots returns the free windows of a day.
//
//	date      YYYY-MM-DD, required
//	duration  minimum window length in minutes, default 0
//	tz        IANA zone the day is read in, default UTC
func (h *CalendarHandler) GetSlots(c echo.Context) error {
	loc := time.UTC
	if tz := c.QueryParam("tz"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return badRequest(c, "Unknown time zone")
		}
		loc = l
	}

	day, err := time.ParseInLocation(model.DateLayout, c.QueryParam("date"), loc)
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}

	minutes := 0
	if raw := c.QueryParam("duration"); raw != "" {
		if minutes, err = strconv.Atoi(raw); err != nil {
			return badRequest(c, "duration must be a number of minutes")
		}
		if minutes < 0 || minutes > maxSlotMinutes {
			return badRequest(c, "duration must be between 0 and 1440 minutes")
		}
	}

	slots, err := h.calendarService.FreeSlots(c.Request().Context(), day, time.Duration(minutes)*time.Minute)
	if err != nil {
		return fromError(c, h.logger, "get free slots", err)
	}
	return success(c, http.StatusOK, map[string]interface{}{
		"date":     day.Format(model.DateLayout),
		"duration": minutes,
		"slots":    slots,
	}, "")
}
