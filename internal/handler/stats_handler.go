package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"business-admin/internal/logger"
	"business-admin/internal/service"
)

type StatsHandler struct {
	statsService service.StatsService
	logger       *logger.Logger
}

func NewStatsHandler(statsService service.StatsService, logger *logger.Logger) *StatsHandler {
	return &StatsHandler{statsService: statsService, logger: logger}
}

// GetStats serves the dashboard figures; ?refresh=true bypasses the cache.
func (h *StatsHandler) GetStats(c echo.Context) error {
	refresh, err := boolParam(c, "refresh")
	if err != nil {
		return badRequest(c, err.Error())
	}

	stats, err := h.statsService.GetStats(c.Request().Context(), refresh != nil && *refresh)
	if err != nil {
		return fromError(c, h.logger, "get stats", err)
	}
	return success(c, http.StatusOK, stats, "")
}

// Health is the liveness probe.
func Health(c echo.Context) error {
	return success(c, http.StatusOK, map[string]string{"status": "ok"}, "")
}
