package handler

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"

	"business-admin/internal/config"
	"business-admin/internal/gmail"
	"business-admin/internal/logger"
	"business-admin/internal/model"
	"business-admin/internal/service"
)

const (
	sessionName   = "business_admin_session"
	sessionUserID = "user_id"

	// LocalGoogleID identifies the operator used when sign-in is not configured.
	LocalGoogleID = "local"
)

type AuthHandler struct {
	authService service.AuthService
	store       sessions.Store
	config      *config.Config
	logger      *logger.Logger

	localMu   sync.Mutex
	localUser *model.User
}

func NewAuthHandler(authService service.AuthService, store sessions.Store, config *config.Config, logger *logger.Logger) *AuthHandler {
	if config.AuthEnabled() {
		gothic.Store = store

		provider := google.New(
			config.GoogleClientID,
			config.GoogleClientSecret,
			config.BaseURL+"/auth/google/callback",
			append([]string{"email", "profile"}, gmail.Scopes...)...,
		)
		// offline access is what yields a refresh token for background sync
		provider.SetAccessType("offline")
		goth.UseProviders(provider)
	}

	return &AuthHandler{
		authService: authService,
		store:       store,
		config:      config,
		logger:      logger,
	}
}

func withProvider(c echo.Context) *http.Request {
	req := c.Request()
	q := req.URL.Query()
	q.Set("provider", "google")
	req.URL.RawQuery = q.Encode()
	return req
}

// BeginAuthHandler initiates the OAuth flow
func (h *AuthHandler) BeginAuthHandler(c echo.Context) error {
	if !h.config.AuthEnabled() {
		return Fail(c, http.StatusNotFound, "Sign-in is not configured")
	}
	if c.Param("provider") != "google" {
		return badRequest(c, "Invalid provider")
	}

	gothic.BeginAuthHandler(c.Response(), withProvider(c))
	return nil
}

// CallbackHandler handles the OAuth callback
func (h *AuthHandler) CallbackHandler(c echo.Context) error {
	if !h.config.AuthEnabled() {
		return Fail(c, http.StatusNotFound, "Sign-in is not configured")
	}
	req := withProvider(c)

	googleUser, err := gothic.CompleteUserAuth(c.Response(), req)
	if err != nil {
		h.logger.Error("Failed to complete user auth:", err)
		return Fail(c, http.StatusUnauthorized, "Authentication failed")
	}

	user, err := h.authService.GetOrCreateUser(
		req.Context(),
		googleUser.Provider+"_"+googleUser.UserID,
		googleUser.Email,
		googleUser.Name,
		googleUser.AccessToken,
		googleUser.RefreshToken,
		googleUser.ExpiresAt,
	)
	if err != nil {
		return fromError(c, h.logger, "process user", err)
	}

	session, _ := h.store.Get(req, sessionName)
	session.Values[sessionUserID] = user.ID
	if err := session.Save(req, c.Response()); err != nil {
		h.logger.Error("Failed to save session:", err)
		return Fail(c, http.StatusInternalServerError, "Failed to save session")
	}

	return c.Redirect(http.StatusTemporaryRedirect, h.config.FrontendURL)
}

// LogoutHandler clears both the goth and the application session.
func (h *AuthHandler) LogoutHandler(c echo.Context) error {
	req := withProvider(c)
	if h.config.AuthEnabled() {
		if err := gothic.Logout(c.Response(), req); err != nil {
			h.logger.Warn("Failed to clear provider session:", err)
		}
	}

	session, _ := h.store.Get(req, sessionName)
	delete(session.Values, sessionUserID)
	if session.Options != nil {
		session.Options.MaxAge = -1
	}
	if err := session.Save(req, c.Response()); err != nil {
		h.logger.Warn("Failed to clear session:", err)
	}

	return c.Redirect(http.StatusTemporaryRedirect, h.config.FrontendURL)
}

// GetCurrentUser returns the signed-in user. Without sign-in configured every
// request acts as the local operator.
func (h *AuthHandler) GetCurrentUser(c echo.Context) (*model.User, error) {
	if !h.config.AuthEnabled() {
		return h.local(c)
	}

	session, err := h.store.Get(c.Request(), sessionName)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	userID, ok := session.Values[sessionUserID].(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("user not authenticated")
	}

	user, err := h.authService.GetUser(c.Request().Context(), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user from database: %w", err)
	}

	return user, nil
}

func (h *AuthHandler) local(c echo.Context) (*model.User, error) {
	h.localMu.Lock()
	defer h.localMu.Unlock()

	if h.localUser != nil {
		return h.localUser, nil
	}
	user, err := h.authService.GetOrCreateUser(c.Request().Context(), LocalGoogleID, "operator@localhost", "Local operator", "", "", time.Time{})
	if err != nil {
		return nil, err
	}
	h.localUser = user
	return user, nil
}

// Me returns the user attached to the request by the auth middleware.
func (h *AuthHandler) Me(c echo.Context) error {
	user := UserFrom(c)
	if user == nil {
		return Fail(c, http.StatusUnauthorized, "Unauthorized")
	}
	return success(c, http.StatusOK, user, "")
}
