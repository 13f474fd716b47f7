package repository

import (
	"context"
	"time"

	"business-admin/internal/model"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create inserts the user, or refreshes profile and tokens when the
	// Google account is already known.
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindAll(ctx context.Context) ([]*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id string) (*model.Category, error)
	FindByName(ctx context.Context, name string) (*model.Category, error)
	// FindAll returns every category ordered by name.
	FindAll(ctx context.Context) ([]*model.Category, error)
	List(ctx context.Context, opts ListOptions) (*Page[*model.Category], error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type EmailFilter struct {
	UserID     string
	CategoryID string
	Processed  *bool
	Responded  *bool
	Archived   *bool
	Search     string
}

// EmailRepository defines the interface for email data operations
type EmailRepository interface {
	Create(ctx context.Context, email *model.Email) error
	FindByID(ctx context.Context, id string) (*model.Email, error)
	FindByExternalID(ctx context.Context, userID, externalID string) (*model.Email, error)
	List(ctx context.Context, filter EmailFilter, opts ListOptions) (*Page[*model.Email], error)
	FindAll(ctx context.Context, filter EmailFilter) ([]*model.Email, error)
	Update(ctx context.Context, email *model.Email) error
	Delete(ctx context.Context, id string) error
	// ClearCategory detaches every email from the category and returns how
	// many were changed.
	ClearCategory(ctx context.Context, categoryID string) (int64, error)
	Count(ctx context.Context, filter EmailFilter) (int, error)
	// CountByCategory keys counts by category name; uncategorized emails
	// are counted under "".
	CountByCategory(ctx context.Context) (map[string]int, error)
}

type ServiceFilter struct {
	Active *bool
	Search string
}

type ServiceRepository interface {
	Create(ctx context.Context, service *model.Service) error
	FindByID(ctx context.Context, id string) (*model.Service, error)
	List(ctx context.Context, filter ServiceFilter, opts ListOptions) (*Page[*model.Service], error)
	Update(ctx context.Context, service *model.Service) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, filter ServiceFilter) (int, error)
}

type ClientFilter struct {
	Search string
}

type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	FindByID(ctx context.Context, id string) (*model.Client, error)
	List(ctx context.Context, filter ClientFilter, opts ListOptions) (*Page[*model.Client], error)
	Update(ctx context.Context, client *model.Client) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, filter ClientFilter) (int, error)
}

type QuotationFilter struct {
	Status   model.QuotationStatus
	ClientID string
	Search   string
}

// QuotationRepository stores quotations together with their items.
type QuotationRepository interface {
	Create(ctx context.Context, quotation *model.Quotation) error
	FindByID(ctx context.Context, id string) (*model.Quotation, error)
	List(ctx context.Context, filter QuotationFilter, opts ListOptions) (*Page[*model.Quotation], error)
	Update(ctx context.Context, quotation *model.Quotation) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[model.QuotationStatus]int, error)
	SumTotal(ctx context.Context, statuses ...model.QuotationStatus) (float64, error)
}

type AppointmentFilter struct {
	ClientID    string
	QuotationID string
	Status      model.AppointmentStatus
	// From and To bound start_time to [From, To) when set.
	From time.Time
	To   time.Time
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	List(ctx context.Context, filter AppointmentFilter, opts ListOptions) (*Page[*model.Appointment], error)
	// FindOverlapping returns non-cancelled appointments intersecting
	// [start, end), ordered by start time.
	FindOverlapping(ctx context.Context, start, end time.Time) ([]*model.Appointment, error)
	// FindDueForReminder returns scheduled or confirmed appointments starting
	// in [from, to) whose reminder has not been sent.
	FindDueForReminder(ctx context.Context, from, to time.Time) ([]*model.Appointment, error)
	Update(ctx context.Context, appointment *model.Appointment) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, filter AppointmentFilter) (int, error)
	CountByStatus(ctx context.Context) (map[model.AppointmentStatus]int, error)
}

type AvailabilityRepository interface {
	Create(ctx context.Context, availability *model.CalendarAvailability) error
	FindByID(ctx context.Context, id string) (*model.CalendarAvailability, error)
	FindAll(ctx context.Context) ([]*model.CalendarAvailability, error)
	// FindForDay returns the specific rules for day's date and the weekly
	// rules for its weekday.
	FindForDay(ctx context.Context, day time.Time) ([]*model.CalendarAvailability, error)
	Update(ctx context.Context, availability *model.CalendarAvailability) error
	Delete(ctx context.Context, id string) error
}

// Set bundles one implementation of every repository.
type Set struct {
	Users        UserRepository
	Categories   CategoryRepository
	Emails       EmailRepository
	Services     ServiceRepository
	Clients      ClientRepository
	Quotations   QuotationRepository
	Appointments AppointmentRepository
	Availability AvailabilityRepository
}
