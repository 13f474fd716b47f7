package main

import (
	"context"
	"fmt"

	"business-admin/internal/categorizer"
	"business-admin/internal/config"
	"business-admin/internal/logger"
	"business-admin/internal/repository"
	"business-admin/internal/repository/memory"
	"business-admin/internal/repository/sqldb"
	"business-admin/internal/service"
)

// store is the repository set plus the connection behind it, if any.
type store struct {
	db    *sqldb.DB
	repos *repository.Set
}

func (s *store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// openStore connects to the configured database and applies the schema.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*store, error) {
	var dsn string
	switch cfg.DBDriver {
	case config.DriverMemory:
		log.Info("Using in-memory repositories")
		return &store{repos: memory.NewSet()}, nil
	case config.DriverPostgres:
		dsn = cfg.DatabaseURL
	default:
		dsn = cfg.DBName
	}

	db, err := sqldb.Open(cfg.DBDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("Using", cfg.DBDriver, "repositories")
	return &store{db: db, repos: sqldb.NewSet(db)}, nil
}

type services struct {
	auth         service.AuthService
	categories   service.CategoryService
	emails       service.EmailService
	catalog      service.CatalogService
	clients      service.ClientService
	quotations   service.QuotationService
	appointments service.AppointmentService
	calendar     service.CalendarService
	stats        service.StatsService
}

func newServices(
	cfg *config.Config,
	repos *repository.Set,
	gmailClient service.GmailClient,
	mailer service.Mailer,
	cache service.Cache,
	log *logger.Logger,
) *services {
	return &services{
		auth:       service.NewAuthService(repos.Users, log),
		categories: service.NewCategoryService(repos.Categories, repos.Emails, log),
		emails: service.NewEmailService(
			repos.Emails,
			repos.Categories,
			repos.Users,
			gmailClient,
			categorizer.New(cfg.FallbackCategory),
			cfg.MaxFetchEmails,
			log,
		),
		catalog:      service.NewCatalogService(repos.Services, log),
		clients:      service.NewClientService(repos.Clients, repos.Appointments, repos.Quotations, log),
		quotations:   service.NewQuotationService(repos.Quotations, repos.Clients, repos.Services, repos.Appointments, mailer, log),
		appointments: service.NewAppointmentService(repos, mailer, log),
		calendar:     service.NewCalendarService(repos.Availability, repos.Appointments, log),
		stats:        service.NewStatsService(repos, cache, cfg.StatsCacheTTL, log),
	}
}
