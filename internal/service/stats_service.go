package service

import (
	"context"
	"time"

	"business-admin/internal/logger"
	"business-admin/internal/model"
	"business-admin/internal/repository"
)

const statsCacheKey = "stats:dashboard"

// UpcomingWindow bounds the "upcoming appointments" figure.
const UpcomingWindow = 7 * 24 * time.Hour

type Stats struct {
	Emails       EmailStats       `json:"emails"`
	Categories   int              `json:"categories"`
	Services     ServiceStats     `json:"services"`
	Clients      int              `json:"clients"`
	Quotations   QuotationStats   `json:"quotations"`
	Appointments AppointmentStats `json:"appointments"`
	GeneratedAt  time.Time        `json:"generated_at"`
}

type EmailStats struct {
	Total       int            `json:"total"`
	Unprocessed int            `json:"unprocessed"`
	Unresponded int            `json:"unresponded"`
	ByCategory  map[string]int `json:"by_category"`
}

type ServiceStats struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

type QuotationStats struct {
	Total    int                           `json:"total"`
	ByStatus map[model.QuotationStatus]int `json:"by_status"`
	// Pipeline sums open quotations (draft and sent); Won sums accepted
	// and completed ones.
	Pipeline float64 `json:"pipeline_value"`
	Won      float64 `json:"won_value"`
}

type AppointmentStats struct {
	Total    int                             `json:"total"`
	ByStatus map[model.AppointmentStatus]int `json:"by_status"`
	Upcoming int                             `json:"upcoming"`
}

type statsService struct {
	repos  *repository.Set
	cache  Cache
	ttl    time.Duration
	now    func() time.Time
	logger *logger.Logger
}

func NewStatsService(repos *repository.Set, cache Cache, ttl time.Duration, logger *logger.Logger) StatsService {
	return &statsService{
		repos:  repos,
		cache:  cache,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

func (s *statsService) GetStats(ctx context.Context, refresh bool) (*Stats, error) {
	if refresh {
		if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
			s.logger.Warn("Failed to drop cached stats:", err)
		}
	} else {
		var cached Stats
		found, err := s.cache.Get(ctx, statsCacheKey, &cached)
		if err != nil {
			s.logger.Warn("Stats cache read failed:", err)
		} else if found {
			return &cached, nil
		}
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}
	if s.ttl > 0 {
		if err := s.cache.Set(ctx, statsCacheKey, stats, s.ttl); err != nil {
			s.logger.Warn("Stats cache write failed:", err)
		}
	}
	return stats, nil
}

func (s *statsService) compute(ctx context.Context) (*Stats, error) {
	no := false
	stats := &Stats{GeneratedAt: s.now().UTC()}
	var err error

	if stats.Emails.Total, err = s.repos.Emails.Count(ctx, repository.EmailFilter{}); err != nil {
		return nil, err
	}
	if stats.Emails.Unprocessed, err = s.repos.Emails.Count(ctx, repository.EmailFilter{Processed: &no}); err != nil {
		return nil, err
	}
	if stats.Emails.Unresponded, err = s.repos.Emails.Count(ctx, repository.EmailFilter{Responded: &no}); err != nil {
		return nil, err
	}
	if stats.Emails.ByCategory, err = s.repos.Emails.CountByCategory(ctx); err != nil {
		return nil, err
	}

	if stats.Categories, err = s.repos.Categories.Count(ctx); err != nil {
		return nil, err
	}

	yes := true
	if stats.Services.Total, err = s.repos.Services.Count(ctx, repository.ServiceFilter{}); err != nil {
		return nil, err
	}
	if stats.Services.Active, err = s.repos.Services.Count(ctx, repository.ServiceFilter{Active: &yes}); err != nil {
		return nil, err
	}

	if stats.Clients, err = s.repos.Clients.Count(ctx, repository.ClientFilter{}); err != nil {
		return nil, err
	}

	if stats.Quotations.ByStatus, err = s.repos.Quotations.CountByStatus(ctx); err != nil {
		return nil, err
	}
	for _, n := range stats.Quotations.ByStatus {
		stats.Quotations.Total += n
	}
	if stats.Quotations.Pipeline, err = s.repos.Quotations.SumTotal(ctx, model.QuotationDraft, model.QuotationSent); err != nil {
		return nil, err
	}
	if stats.Quotations.Won, err = s.repos.Quotations.SumTotal(ctx, model.QuotationAccepted, model.QuotationCompleted); err != nil {
		return nil, err
	}

	if stats.Appointments.ByStatus, err = s.repos.Appointments.CountByStatus(ctx); err != nil {
		return nil, err
	}
	for _, n := range stats.Appointments.ByStatus {
		stats.Appointments.Total += n
	}
	now := s.now()
	upcoming, err := s.repos.Appointments.FindOverlapping(ctx, now, now.Add(UpcomingWindow))
	if err != nil {
		return nil, err
	}
	for _, a := range upcoming {
		if !a.StartTime.Before(now) {
			stats.Appointments.Upcoming++
		}
	}

	return stats, nil
}
