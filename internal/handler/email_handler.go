package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"business-admin/internal/categorizer"
	"business-admin/internal/logger"
	"business-admin/internal/repository"
	"business-admin/internal/service"
	"business-admin/internal/sse"
)

// keepAliveInterval spaces the comment lines that keep idle streams open
// through proxies.
const keepAliveInterval = 30 * time.Second

type EmailHandler struct {
	emailService service.EmailService
	sseManager   *sse.SSEManager
	logger       *logger.Logger
}

func NewEmailHandler(emailService service.EmailService, sseManager *sse.SSEManager, logger *logger.Logger) *EmailHandler {
	return &EmailHandler{
		emailService: emailService,
		sseManager:   sseManager,
		logger:       logger,
	}
}

// GetEmails lists emails. Filters: category, processed, responded, archived, search.
func (h *EmailHandler) GetEmails(c echo.Context) error {
	filter := repository.EmailFilter{
		CategoryID: c.QueryParam("category"),
		Search:     strings.TrimSpace(c.QueryParam("search")),
	}
	var err error
	if filter.Processed, err = boolParam(c, "processed"); err != nil {
		return badRequest(c, err.Error())
	}
	if filter.Responded, err = boolParam(c, "responded"); err != nil {
		return badRequest(c, err.Error())
	}
	if filter.Archived, err = boolParam(c, "archived"); err != nil {
		return badRequest(c, err.Error())
	}

	page, err := h.emailService.ListEmails(c.Request().Context(), filter, listOptions(c))
	if err != nil {
		return fromError(c, h.logger, "get emails", err)
	}
	return list(c, page)
}

// CreateEmail stores a manually entered email and categorizes it.
func (h *EmailHandler) CreateEmail(c echo.Context) error {
	var req service.EmailInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	email, err := h.emailService.CreateEmail(c.Request().Context(), "", req)
	if err != nil {
		return fromError(c, h.logger, "create email", err)
	}
	return success(c, http.StatusCreated, email, "Email categorized as "+email.Category)
}

func (h *EmailHandler) GetEmail(c echo.Context) error {
	email, err := h.emailService.GetEmail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fromError(c, h.logger, "get email", err)
	}
	return success(c, http.StatusOK, email, "")
}

// UpdateEmail toggles workflow flags or overrides the category.
func (h *EmailHandler) UpdateEmail(c echo.Context) error {
	var req service.EmailUpdate
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	email, err := h.emailService.UpdateEmail(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return fromError(c, h.logger, "update email", err)
	}
	return success(c, http.StatusOK, email, "Email updated")
}

func (h *EmailHandler) DeleteEmail(c echo.Context) error {
	if err := h.emailService.DeleteEmail(c.Request().Context(), c.Param("id")); err != nil {
		return fromError(c, h.logger, "delete email", err)
	}
	return success(c, http.StatusOK, nil, "Email deleted")
}

// Categorize scores a message against the categories without storing it.
func (h *EmailHandler) Categorize(c echo.Context) error {
	var req categorizer.Input
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.emailService.PreviewCategorization(c.Request().Context(), req)
	if err != nil {
		return fromError(c, h.logger, "categorize email", err)
	}
	return success(c, http.StatusOK, result, "")
}

func (h *EmailHandler) Recategorize(c echo.Context) error {
	var req struct {
		OnlyUnprocessed bool `json:"only_unprocessed"`
	}
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}
	if only, err := boolParam(c, "only_unprocessed"); err != nil {
		return badRequest(c, err.Error())
	} else if only != nil {
		req.OnlyUnprocessed = *only
	}

	result, err := h.emailService.Recategorize(c.Request().Context(), req.OnlyUnprocessed)
	if err != nil {
		return fromError(c, h.logger, "recategorize emails", err)
	}
	return success(c, http.StatusOK, result, fmt.Sprintf("%d emails recategorized", result.Changed))
}

// SyncEmails imports new mail from the user's Gmail inbox and pushes each
// message to the user's open event streams.
func (h *EmailHandler) SyncEmails(c echo.Context) error {
	user := UserFrom(c)
	if user == nil {
		return Fail(c, http.StatusUnauthorized, "Unauthorized")
	}

	imported, err := h.emailService.SyncEmails(c.Request().Context(), user.ID)
	if err != nil {
		return fromError(c, h.logger, "sync emails", err)
	}

	for _, email := range imported {
		h.sseManager.BroadcastEmailToUser(user.ID, email)
	}

	return success(c, http.StatusOK, map[string]interface{}{
		"imported": len(imported),
		"emails":   imported,
	}, fmt.Sprintf("%d new emails imported", len(imported)))
}

// Events streams server-sent events for the current user until the client
// disconnects or the server shuts down.
func (h *EmailHandler) Events(c echo.Context) error {
	user := UserFrom(c)
	if user == nil {
		return Fail(c, http.StatusUnauthorized, "Unauthorized")
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	clientChannel := h.sseManager.AddClient(user.ID)
	defer h.sseManager.RemoveClient(user.ID, clientChannel)

	hello, _ := json.Marshal(sse.Event{
		Type: "connection",
		Data: map[string]string{"message": "Connected to updates", "user_id": user.ID},
		Time: time.Now().Unix(),
	})
	fmt.Fprintf(res, "data: %s\n\n", hello)
	res.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case eventData, ok := <-clientChannel:
			if !ok {
				return nil
			}
			fmt.Fprintf(res, "data: %s\n\n", eventData)
			res.Flush()
		case <-ticker.C:
			fmt.Fprint(res, ": keep-alive\n\n")
			res.Flush()
		case <-c.Request().Context().Done():
			return nil
		}
	}
}
