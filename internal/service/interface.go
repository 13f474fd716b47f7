package service

import (
	"context"
	"time"

	"business-admin/internal/categorizer"
	"business-admin/internal/model"
	"business-admin/internal/repository"
)

type AuthService interface {
	GetOrCreateUser(ctx context.Context, googleID, email, name, accessToken, refreshToken string, tokenExpiry time.Time) (*model.User, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
	GetAllUsers(ctx context.Context) ([]*model.User, error)
}

type CategoryService interface {
	CreateCategory(ctx context.Context, in CategoryInput) (*model.Category, error)
	GetCategory(ctx context.Context, categoryID string) (*model.Category, error)
	GetAllCategories(ctx context.Context) ([]*model.Category, error)
	ListCategories(ctx context.Context, opts repository.ListOptions) (*repository.Page[*model.Category], error)
	UpdateCategory(ctx context.Context, categoryID string, in CategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error
	// SeedDefaults inserts defaults only when no category exists yet and
	// returns how many were created.
	SeedDefaults(ctx context.Context, defaults []CategoryInput) (int, error)
}

type EmailService interface {
	CreateEmail(ctx context.Context, userID string, in EmailInput) (*model.Email, error)
	GetEmail(ctx context.Context, emailID string) (*model.Email, error)
	ListEmails(ctx context.Context, filter repository.EmailFilter, opts repository.ListOptions) (*repository.Page[*model.Email], error)
	UpdateEmail(ctx context.Context, emailID string, in EmailUpdate) (*model.Email, error)
	DeleteEmail(ctx context.Context, emailID string) error
	PreviewCategorization(ctx context.Context, in categorizer.Input) (*categorizer.Result, error)
	Recategorize(ctx context.Context, onlyUnprocessed bool) (*RecategorizeResult, error)
	// SyncEmails imports the user's inbox and returns the newly stored emails.
	SyncEmails(ctx context.Context, userID string) ([]*model.Email, error)
}

type CatalogService interface {
	CreateService(ctx context.Context, in ServiceInput) (*model.Service, error)
	GetService(ctx context.Context, serviceID string) (*model.Service, error)
	ListServices(ctx context.Context, filter repository.ServiceFilter, opts repository.ListOptions) (*repository.Page[*model.Service], error)
	UpdateService(ctx context.Context, serviceID string, in ServiceInput) (*model.Service, error)
	DeleteService(ctx context.Context, serviceID string) error
}

type ClientService interface {
	CreateClient(ctx context.Context, in ClientInput) (*model.Client, error)
	GetClient(ctx context.Context, clientID string) (*model.Client, error)
	ListClients(ctx context.Context, filter repository.ClientFilter, opts repository.ListOptions) (*repository.Page[*model.Client], error)
	UpdateClient(ctx context.Context, clientID string, in ClientInput) (*model.Client, error)
	DeleteClient(ctx context.Context, clientID string) error
	GetClientAppointments(ctx context.Context, clientID string, opts repository.ListOptions) (*repository.Page[*model.Appointment], error)
	GetClientQuotations(ctx context.Context, clientID string, opts repository.ListOptions) (*repository.Page[*model.Quotation], error)
}

type QuotationService interface {
	CreateQuotation(ctx context.Context, in QuotationInput) (*model.Quotation, error)
	GetQuotation(ctx context.Context, quotationID string) (*model.Quotation, error)
	ListQuotations(ctx context.Context, filter repository.QuotationFilter, opts repository.ListOptions) (*repository.Page[*model.Quotation], error)
	UpdateQuotation(ctx context.Context, quotationID string, in QuotationInput) (*model.Quotation, error)
	DeleteQuotation(ctx context.Context, quotationID string) error
	UpdateStatus(ctx context.Context, quotationID string, status model.QuotationStatus) (*model.Quotation, error)
	// SendQuotation moves a draft to sent and mails it to the client when an
	// address is known.
	SendQuotation(ctx context.Context, quotationID string) (*model.Quotation, error)
}

type AppointmentService interface {
	CreateAppointment(ctx context.Context, in AppointmentInput) (*model.Appointment, error)
	GetAppointment(ctx context.Context, appointmentID string) (*model.Appointment, error)
	ListAppointments(ctx context.Context, filter repository.AppointmentFilter, opts repository.ListOptions) (*repository.Page[*model.Appointment], error)
	UpdateAppointment(ctx context.Context, appointmentID string, in AppointmentInput) (*model.Appointment, error)
	DeleteAppointment(ctx context.Context, appointmentID string) error
	UpdateStatus(ctx context.Context, appointmentID string, status model.AppointmentStatus) (*model.Appointment, error)
	// SendReminders mails clients whose appointment starts within the lead
	// time after now. It returns how many reminders were sent.
	SendReminders(ctx context.Context, now time.Time) (int, error)
}

type CalendarService interface {
	CreateAvailability(ctx context.Context, in AvailabilityInput) (*model.CalendarAvailability, error)
	GetAvailability(ctx context.Context, availabilityID string) (*model.CalendarAvailability, error)
	ListAvailability(ctx context.Context) ([]*model.CalendarAvailability, error)
	UpdateAvailability(ctx context.Context, availabilityID string, in AvailabilityInput) (*model.CalendarAvailability, error)
	DeleteAvailability(ctx context.Context, availabilityID string) error
	FreeSlots(ctx context.Context, day time.Time, duration time.Duration) ([]model.Window, error)
}

type StatsService interface {
	// GetStats serves cached figures unless refresh is set.
	GetStats(ctx context.Context, refresh bool) (*Stats, error)
}

// GmailClient imports messages from a user's mailbox.
type GmailClient interface {
	ListInbox(ctx context.Context, user *model.User, maxResults int64) ([]*model.Email, error)
	MarkAsRead(ctx context.Context, user *model.User, messageID string) error
}

type MailMessage struct {
	To       string
	Subject  string
	Body     string
	HTMLBody string
}

// Mailer delivers outbound mail to clients.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// Cache stores JSON-serializable values with a time to live.
type Cache interface {
	// Get decodes the value under key into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
