package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"business-admin/internal/model"
	"business-admin/internal/repository"
)

// ApiResponse is the envelope of every JSON response.
type ApiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type ListData[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

func success(c echo.Context, status int, data interface{}, message string) error {
	return c.JSON(status, ApiResponse{Success: true, Data: data, Message: message})
}

// Fail writes an error envelope.
func Fail(c echo.Context, status int, message string) error {
	return c.JSON(status, ApiResponse{Success: false, Error: http.StatusText(status), Message: message})
}

func list[T any](c echo.Context, page *repository.Page[T]) error {
	return success(c, http.StatusOK, ListData[T]{
		Items: page.Items,
		Pagination: Pagination{
			Page:       page.Opts.Page,
			Limit:      page.Opts.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages(),
		},
	}, "")
}

// StatusFor maps service errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrConflict), errors.Is(err, model.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type errorLogger interface {
	Error(v ...interface{})
}

// fromError writes err as an envelope. Internal errors are logged and their
// detail is kept out of the response.
func fromError(c echo.Context, log errorLogger, action string, err error) error {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("Failed to", action+":", err)
		return Fail(c, status, "Failed to "+action)
	}
	return Fail(c, status, err.Error())
}

func badRequest(c echo.Context, message string) error {
	return Fail(c, http.StatusBadRequest, message)
}

// listOptions reads page, limit, sortBy and sortOrder. Bounds and sort keys
// are normalized by the repositories.
func listOptions(c echo.Context) repository.ListOptions {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return repository.ListOptions{
		Page:      page,
		Limit:     limit,
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
	}
}

func boolParam(c echo.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errors.New(name + " must be true or false")
	}
	return &v, nil
}

// timeParam accepts RFC 3339 timestamps or plain YYYY-MM-DD dates.
func timeParam(c echo.Context, name string) (time.Time, error) {
	t, _, err := parseTimeParam(c, name)
	return t, err
}

// untilParam reads an exclusive upper bound. A plain date covers that whole
// day, so it becomes midnight of the following day.
func untilParam(c echo.Context, name string) (time.Time, error) {
	t, dateOnly, err := parseTimeParam(c, name)
	if err != nil || !dateOnly {
		return t, err
	}
	return t.AddDate(0, 0, 1), nil
}

func parseTimeParam(c echo.Context, name string) (time.Time, bool, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return time.Time{}, false, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(model.DateLayout, raw)
	if err != nil {
		return time.Time{}, false, errors.New(name + " must be an RFC 3339 time or a YYYY-MM-DD date")
	}
	return t, true, nil
}
