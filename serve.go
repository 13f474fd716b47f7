package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"business-admin/internal/cache"
	"business-admin/internal/config"
	"business-admin/internal/gmail"
	"business-admin/internal/handler"
	"business-admin/internal/logger"
	"business-admin/internal/mailer"
	"business-admin/internal/middleware"
	"business-admin/internal/router"
	"business-admin/internal/scheduler"
	"business-admin/internal/service"
	"business-admin/internal/sse"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the background jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg, appLogger)
	},
}

func runServe(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	statsCache := newStatsCache(ctx, cfg, log)
	defer statsCache.Close()

	var mail service.Mailer
	if cfg.MailEnabled() {
		mail = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, log)
	} else {
		log.Warn("SMTP_HOST not set, outgoing mail is only logged")
		mail = mailer.NewLogMailer(log)
	}

	oauth := gmail.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.BaseURL+"/auth/google/callback")
	gmailClient := gmail.NewGmailClient(oauth, st.repos.Users, log)

	svc := newServices(cfg, st.repos, gmailClient, mail, statsCache, log)
	seedCategories(ctx, cfg.CategoriesFile, svc.categories, log)

	events := sse.NewSSEManager(log)

	jobs := scheduler.New(svc.auth, svc.emails, svc.appointments, events, log)
	if err := jobs.Register(cfg.SyncSchedule, cfg.ReminderSchedule); err != nil {
		return err
	}

	if !cfg.AuthEnabled() {
		log.Warn("Google sign-in is not configured, the API is open to every caller")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.LoggerWithConfig(echomw.LoggerConfig{Output: log.Writer()}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowCredentials: true,
	}))

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx)

	sessionStore := handler.NewSessionStore([]byte(cfg.SessionSecret), cfg.Env == "production")
	router.SetupRoutes(e, router.Handlers{
		Auth:         handler.NewAuthHandler(svc.auth, sessionStore, cfg, log),
		Categories:   handler.NewCategoryHandler(svc.categories, log),
		Emails:       handler.NewEmailHandler(svc.emails, events, log),
		Services:     handler.NewServiceHandler(svc.catalog, log),
		Clients:      handler.NewClientHandler(svc.clients, log),
		Quotations:   handler.NewQuotationHandler(svc.quotations, log),
		Appointments: handler.NewAppointmentHandler(svc.appointments, log),
		Calendar:     handler.NewCalendarHandler(svc.calendar, log),
		Stats:        handler.NewStatsHandler(svc.stats, log),
	}, limiter, cfg.StaticDir)

	jobs.Start()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server on port", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down")
	case err := <-errCh:
		log.Error("Failed to start server:", err)
		jobs.Stop(context.Background())
		events.Close()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// open event streams only end once the manager closes their channels
	events.Close()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed:", err)
	}
	jobs.Stop(shutdownCtx)
	return nil
}

type closableCache interface {
	service.Cache
	Close() error
}

// newStatsCache uses Redis when configured and reachable.
func newStatsCache(ctx context.Context, cfg *config.Config, log *logger.Logger) closableCache {
	if cfg.RedisAddr == "" {
		return cache.NewNoopCache()
	}
	rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Warn("Redis unavailable, stats are not cached:", err)
		return cache.NewNoopCache()
	}
	log.Info("Caching stats in Redis at", cfg.RedisAddr)
	return rc
}
