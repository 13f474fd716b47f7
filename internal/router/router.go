package router

import (
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"business-admin/internal/handler"
	"business-admin/internal/middleware"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Categories   *handler.CategoryHandler
	Emails       *handler.EmailHandler
	Services     *handler.ServiceHandler
	Clients      *handler.ClientHandler
	Quotations   *handler.QuotationHandler
	Appointments *handler.AppointmentHandler
	Calendar     *handler.CalendarHandler
	Stats        *handler.StatsHandler
}

// SetupRoutes registers the API. When staticDir is set the prebuilt frontend
// is served from it, with unknown paths falling back to index.html.
func SetupRoutes(e *echo.Echo, h Handlers, limiter *middleware.RateLimiter, staticDir string) {
	e.GET("/health", handler.Health)

	e.GET("/auth/:provider", h.Auth.BeginAuthHandler)
	e.GET("/auth/:provider/callback", h.Auth.CallbackHandler)
	e.GET("/auth/logout", h.Auth.LogoutHandler)

	api := e.Group("/api")
	if limiter != nil {
		api.Use(middleware.RateLimit(limiter))
	}
	api.Use(middleware.AuthMiddleware(h.Auth))

	api.GET("/me", h.Auth.Me)
	api.GET("/stats", h.Stats.GetStats)
	api.GET("/events", h.Emails.Events)

	api.GET("/categories", h.Categories.GetCategories)
	api.POST("/categories", h.Categories.CreateCategory)
	api.GET("/categories/:id", h.Categories.GetCategory)
	api.PUT("/categories/:id", h.Categories.UpdateCategory)
	api.DELETE("/categories/:id", h.Categories.DeleteCategory)

	api.GET("/emails", h.Emails.GetEmails)
	api.POST("/emails", h.Emails.CreateEmail)
	api.POST("/emails/categorize", h.Emails.Categorize)
	api.POST("/emails/recategorize", h.Emails.Recategorize)
	api.POST("/emails/sync", h.Emails.SyncEmails)
	api.GET("/emails/:id", h.Emails.GetEmail)
	api.PATCH("/emails/:id", h.Emails.UpdateEmail)
	api.DELETE("/emails/:id", h.Emails.DeleteEmail)

	api.GET("/services", h.Services.GetServices)
	api.POST("/services", h.Services.CreateService)
	api.GET("/services/:id", h.Services.GetService)
	api.PUT("/services/:id", h.Services.UpdateService)
	api.DELETE("/services/:id", h.Services.DeleteService)

	api.GET("/quotations", h.Quotations.GetQuotations)
	api.POST("/quotations", h.Quotations.CreateQuotation)
	api.GET("/quotations/:id", h.Quotations.GetQuotation)
	api.PUT("/quotations/:id", h.Quotations.UpdateQuotation)
	api.DELETE("/quotations/:id", h.Quotations.DeleteQuotation)
	api.PATCH("/quotations/:id/status", h.Quotations.UpdateStatus)
	api.POST("/quotations/:id/send", h.Quotations.SendQuotation)

	api.GET("/clients", h.Clients.GetClients)
	api.POST("/clients", h.Clients.CreateClient)
	api.GET("/clients/:id", h.Clients.GetClient)
	api.PUT("/clients/:id", h.Clients.UpdateClient)
	api.DELETE("/clients/:id", h.Clients.DeleteClient)
	api.GET("/clients/:id/appointments", h.Clients.GetClientAppointments)
	api.GET("/clients/:id/quotations", h.Clients.GetClientQuotations)

	api.GET("/appointments", h.Appointments.GetAppointments)
	api.POST("/appointments", h.Appointments.CreateAppointment)
	api.GET("/appointments/:id", h.Appointments.GetAppointment)
	api.PUT("/appointments/:id", h.Appointments.UpdateAppointment)
	api.DELETE("/appointments/:id", h.Appointments.DeleteAppointment)
	api.PATCH("/appointments/:id/status", h.Appointments.UpdateStatus)

	api.GET("/calendar/availability", h.Calendar.GetAvailability)
	api.POST("/calendar/availability", h.Calendar.CreateAvailability)
	api.PUT("/calendar/availability/:id", h.Calendar.UpdateAvailability)
	api.DELETE("/calendar/availability/:id", h.Calendar.DeleteAvailability)
	api.GET("/calendar/slots", h.Calendar.GetSlots)

	if staticDir != "" {
		e.Use(echomw.StaticWithConfig(echomw.StaticConfig{
			Root:  staticDir,
			HTML5: true,
			Skipper: func(c echo.Context) bool {
				p := c.Request().URL.Path
				return strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/auth/") || p == "/health"
			},
		}))
	}
}
