package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"business-admin/internal/cache"
	"business-admin/internal/categorizer"
	"business-admin/internal/config"
	"business-admin/internal/gmail"
	"business-admin/internal/handler"
	"business-admin/internal/logger"
	"business-admin/internal/mailer"
	"business-admin/internal/middleware"
	"business-admin/internal/model"
	"business-admin/internal/repository/memory"
	"business-admin/internal/service"
	"business-admin/internal/sse"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type testServer struct {
	e      *echo.Echo
	mailer *mailer.MockMailer
}

func newServer(t *testing.T, cfg *config.Config, limiter *middleware.RateLimiter) *testServer {
	t.Helper()
	log := logger.NewWithWriter(io.Discard)
	repos := memory.NewSet()
	mail := mailer.NewMockMailer()
	events := sse.NewSSEManager(log)
	t.Cleanup(events.Close)

	auth := service.NewAuthService(repos.Users, log)
	emails := service.NewEmailService(repos.Emails, repos.Categories, repos.Users, gmail.NewMockGmailClient(), categorizer.New("General"), 10, log)
	h := Handlers{
		Auth:         handler.NewAuthHandler(auth, handler.NewSessionStore([]byte("test-secret"), false), cfg, log),
		Categories:   handler.NewCategoryHandler(service.NewCategoryService(repos.Categories, repos.Emails, log), log),
		Emails:       handler.NewEmailHandler(emails, events, log),
		Services:     handler.NewServiceHandler(service.NewCatalogService(repos.Services, log), log),
		Clients:      handler.NewClientHandler(service.NewClientService(repos.Clients, repos.Appointments, repos.Quotations, log), log),
		Quotations:   handler.NewQuotationHandler(service.NewQuotationService(repos.Quotations, repos.Clients, repos.Services, repos.Appointments, mail, log), log),
		Appointments: handler.NewAppointmentHandler(service.NewAppointmentService(repos, mail, log), log),
		Calendar:     handler.NewCalendarHandler(service.NewCalendarService(repos.Availability, repos.Appointments, log), log),
		Stats:        handler.NewStatsHandler(service.NewStatsService(repos, cache.NewNoopCache(), time.Minute, log), log),
	}

	e := echo.New()
	SetupRoutes(e, h, limiter, "")
	return &testServer{e: e, mailer: mail}
}

func openConfig() *config.Config {
	return &config.Config{FrontendURL: "http://localhost:3000", SessionSecret: "test-secret"}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestHealthAndMe(t *testing.T) {
	s := newServer(t, openConfig(), nil)

	code, env := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, env = s.do(t, http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusOK, code)
	me := decode[model.User](t, env)
	assert.Equal(t, handler.LocalGoogleID, me.GoogleID)

	// the local operator is created once
	_, again := s.do(t, http.MethodGet, "/api/me", nil)
	assert.Equal(t, me.ID, decode[model.User](t, again).ID)
}

func TestSignInRequiredWhenConfigured(t *testing.T) {
	cfg := openConfig()
	cfg.GoogleClientID = "id"
	cfg.GoogleClientSecret = "secret"
	cfg.BaseURL = "http://localhost:8080"
	s := newServer(t, cfg, nil)

	code, env := s.do(t, http.MethodGet, "/api/stats", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	code, _ = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestEmailsAreCategorizedOnCreate(t *testing.T) {
	s := newServer(t, openConfig(), nil)

	code, _ := s.do(t, http.MethodPost, "/api/categories", map[string]interface{}{
		"name":     "Invoices",
		"keywords": []string{"invoice"},
	})
	require.Equal(t, http.StatusCreated, code)

	code, env := s.do(t, http.MethodPost, "/api/categories", map[string]interface{}{"name": "invoices"})
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)

	code, env = s.do(t, http.MethodPost, "/api/categories", map[string]interface{}{
		"name":     "Broken",
		"patterns": []string{"("},
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodPost, "/api/emails", map[string]interface{}{
		"from":    "billing@vendor.com",
		"subject": "Your invoice is ready",
		"body":    "Please find it attached.",
	})
	require.Equal(t, http.StatusCreated, code)
	email := decode[model.Email](t, env)
	assert.Equal(t, "Invoices", email.Category)
	assert.Greater(t, email.Confidence, 0.0)

	code, env = s.do(t, http.MethodPost, "/api/emails/categorize", map[string]interface{}{"subject": "hello there"})
	require.Equal(t, http.StatusOK, code)
	preview := decode[categorizer.Result](t, env)
	assert.True(t, preview.Fallback)
	assert.Equal(t, "General", preview.Category)

	code, env = s.do(t, http.MethodPatch, "/api/emails/"+email.ID, map[string]interface{}{"processed": true})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, decode[model.Email](t, env).Processed)

	code, env = s.do(t, http.MethodGet, "/api/emails?processed=false", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[handler.ListData[model.Email]](t, env).Items)

	code, _ = s.do(t, http.MethodGet, "/api/emails?processed=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPaginationEnvelope(t *testing.T) {
	s := newServer(t, openConfig(), nil)
	for _, name := range []string{"Cut", "Color", "Wash"} {
		code, _ := s.do(t, http.MethodPost, "/api/services", map[string]interface{}{"name": name, "price": 10})
		require.Equal(t, http.StatusCreated, code)
	}

	code, env := s.do(t, http.MethodGet, "/api/services?page=2&limit=2&sortBy=name&sortOrder=asc", nil)
	require.Equal(t, http.StatusOK, code)
	page := decode[handler.ListData[model.Service]](t, env)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Wash", page.Items[0].Name)
	assert.Equal(t, handler.Pagination{Page: 2, Limit: 2, Total: 3, TotalPages: 2}, page.Pagination)
}

func TestClientAppointmentFlow(t *testing.T) {
	s := newServer(t, openConfig(), nil)

	code, env := s.do(t, http.MethodPost, "/api/clients", map[string]interface{}{"email": "no-name@example.com"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, env.Message)

	code, env = s.do(t, http.MethodPost, "/api/clients", map[string]interface{}{"name": "Ada", "email": "ada@example.com"})
	require.Equal(t, http.StatusCreated, code)
	client := decode[model.Client](t, env)

	code, _ = s.do(t, http.MethodPost, "/api/appointments", map[string]interface{}{
		"client_id": "missing", "title": "Visit",
		"start_time": "2030-01-07T09:00:00Z", "end_time": "2030-01-07T10:00:00Z",
	})
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.do(t, http.MethodPost, "/api/appointments", map[string]interface{}{
		"client_id": client.ID, "title": "Visit",
		"start_time": "2030-01-07T09:00:00Z", "end_time": "2030-01-07T10:00:00Z",
	})
	require.Equal(t, http.StatusCreated, code)
	appt := decode[model.Appointment](t, env)

	code, _ = s.do(t, http.MethodPost, "/api/appointments", map[string]interface{}{
		"client_id": client.ID, "title": "Overlap",
		"start_time": "2030-01-07T09:30:00Z", "end_time": "2030-01-07T10:30:00Z",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, env = s.do(t, http.MethodGet, "/api/calendar/slots?date=2030-01-07&duration=60", nil)
	require.Equal(t, http.StatusOK, code)
	slots := decode[struct {
		Slots []model.Window `json:"slots"`
	}](t, env)
	require.Len(t, slots.Slots, 2)
	assert.Equal(t, 9, slots.Slots[0].End.Hour())

	code, _ = s.do(t, http.MethodGet, "/api/calendar/slots?date=tomorrow", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodGet, "/api/clients/"+client.ID+"/appointments", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[handler.ListData[model.Appointment]](t, env).Items, 1)

	code, _ = s.do(t, http.MethodDelete, "/api/clients/"+client.ID, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(t, http.MethodPatch, "/api/appointments/"+appt.ID+"/status", map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusConflict, code)
	code, _ = s.do(t, http.MethodPatch, "/api/appointments/"+appt.ID+"/status", map[string]string{"status": "postponed"})
	assert.Equal(t, http.StatusBadRequest, code)
	code, env = s.do(t, http.MethodPatch, "/api/appointments/"+appt.ID+"/status", map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, model.AppointmentConfirmed, decode[model.Appointment](t, env).Status)

	code, _ = s.do(t, http.MethodDelete, "/api/appointments/"+appt.ID, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodDelete, "/api/clients/"+client.ID, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodGet, "/api/clients/"+client.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSlotDurationIsBounded(t *testing.T) {
	s := newServer(t, openConfig(), nil)

	for _, duration := range []string{"99999999999", "1441", "-5"} {
		code, _ := s.do(t, http.MethodGet, "/api/calendar/slots?date=2030-01-07&duration="+duration, nil)
		assert.Equal(t, http.StatusBadRequest, code, duration)
	}

	code, _ := s.do(t, http.MethodGet, "/api/calendar/slots?date=2030-01-07&duration=1440", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestQuotationLifecycle(t *testing.T) {
	s := newServer(t, openConfig(), nil)

	code, env := s.do(t, http.MethodPost, "/api/quotations", map[string]interface{}{
		"client_name":  "Bob",
		"client_email": "bob@example.com",
		"discount":     10,
		"items": []map[string]interface{}{
			{"description": "Paint", "quantity": 2, "unit_price": 50},
		},
	})
	require.Equal(t, http.StatusCreated, code)
	q := decode[model.Quotation](t, env)
	assert.Equal(t, 100.0, q.Subtotal)
	assert.Equal(t, 90.0, q.Total)

	code, _ = s.do(t, http.MethodPatch, "/api/quotations/"+q.ID+"/status", map[string]string{"status": "accepted"})
	assert.Equal(t, http.StatusConflict, code)

	code, env = s.do(t, http.MethodPost, "/api/quotations/"+q.ID+"/send", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, model.QuotationSent, decode[model.Quotation](t, env).Status)
	require.Len(t, s.mailer.Sent(), 1)
	assert.Equal(t, "bob@example.com", s.mailer.Sent()[0].To)

	code, _ = s.do(t, http.MethodPut, "/api/quotations/"+q.ID, map[string]interface{}{"discount": 0})
	assert.Equal(t, http.StatusConflict, code)

	code, env = s.do(t, http.MethodGet, "/api/quotations?status=sent", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[handler.ListData[model.Quotation]](t, env).Items, 1)

	code, _ = s.do(t, http.MethodGet, "/api/quotations?status=lost", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRateLimitedAPI(t *testing.T) {
	s := newServer(t, openConfig(), middleware.NewRateLimiter(0.001, 1))

	code, _ := s.do(t, http.MethodGet, "/api/stats", nil)
	assert.Equal(t, http.StatusOK, code)
	code, env := s.do(t, http.MethodGet, "/api/stats", nil)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.False(t, env.Success)

	// health checks are not limited
	code, _ = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
}
