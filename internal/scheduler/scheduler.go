package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"business-admin/internal/logger"
	"business-admin/internal/service"
	"business-admin/internal/sse"
)

// jobTimeout caps a single sync or reminder run.
const jobTimeout = 2 * time.Minute

// Scheduler runs the background jobs: inbox import for every user with
// mailbox access and appointment reminders.
type Scheduler struct {
	cron         *cron.Cron
	auth         service.AuthService
	emails       service.EmailService
	appointments service.AppointmentService
	events       *sse.SSEManager
	logger       *logger.Logger
	now          func() time.Time
}

func New(
	auth service.AuthService,
	emails service.EmailService,
	appointments service.AppointmentService,
	events *sse.SSEManager,
	logger *logger.Logger,
) *Scheduler {
	cl := cronLogger{logger}
	return &Scheduler{
		cron:         cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		auth:         auth,
		emails:       emails,
		appointments: appointments,
		events:       events,
		logger:       logger,
		now:          time.Now,
	}
}

// Register adds both jobs. An empty schedule disables that job.
func (s *Scheduler) Register(syncSpec, reminderSpec string) error {
	if syncSpec != "" {
		if _, err := s.cron.AddFunc(syncSpec, s.runWithTimeout(s.RunSync)); err != nil {
			return fmt.Errorf("invalid sync schedule %q: %w", syncSpec, err)
		}
		s.logger.Info("Scheduled inbox sync:", syncSpec)
	}
	if reminderSpec != "" {
		if _, err := s.cron.AddFunc(reminderSpec, s.runWithTimeout(s.RunReminders)); err != nil {
			return fmt.Errorf("invalid reminder schedule %q: %w", reminderSpec, err)
		}
		s.logger.Info("Scheduled appointment reminders:", reminderSpec)
	}
	return nil
}

func (s *Scheduler) runWithTimeout(job func(ctx context.Context)) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		job(ctx)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out with jobs still running")
	}
}

// RunSync imports new mail for every user and pushes it to their streams.
func (s *Scheduler) RunSync(ctx context.Context) {
	users, err := s.auth.GetAllUsers(ctx)
	if err != nil {
		s.logger.Error("Failed to get users for email sync:", err)
		return
	}

	for _, user := range users {
		if !user.HasMailboxAccess() {
			continue
		}
		imported, err := s.emails.SyncEmails(ctx, user.ID)
		if err != nil {
			s.logger.Error("Failed to sync emails for user", user.ID, ":", err)
			continue
		}
		if len(imported) == 0 {
			continue
		}

		for _, email := range imported {
			s.events.BroadcastEmailToUser(user.ID, email)
		}
		s.events.BroadcastToUser(user.ID, sse.EventEmailSummary, map[string]interface{}{
			"count":   len(imported),
			"message": fmt.Sprintf("%d new emails received and categorized", len(imported)),
		})
	}
}

func (s *Scheduler) RunReminders(ctx context.Context) {
	sent, err := s.appointments.SendReminders(ctx, s.now())
	if err != nil {
		s.logger.Error("Failed to send appointment reminders:", err)
		return
	}
	if sent > 0 {
		s.events.Broadcast(sse.EventReminders, map[string]int{"count": sent})
	}
}

// cronLogger routes cron's own messages to the application logger.
type cronLogger struct {
	l *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(append([]interface{}{"cron:", msg}, keysAndValues...)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(append([]interface{}{"cron:", msg, err}, keysAndValues...)...)
}
