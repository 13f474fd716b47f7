package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"business-admin/internal/model"
	"business-admin/internal/repository"
)

type InMemoryUserRepository struct {
	users *table[*model.User]
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users: newTable("user",
			func(u *model.User) string { return u.ID },
			func(u *model.User) *model.User { c := *u; return &c }),
	}
}

// Create inserts the user or refreshes the record with the same Google ID.
func (r *InMemoryUserRepository) Create(ctx context.Context, user *model.User) error {
	r.users.mutex.Lock()
	defer r.users.mutex.Unlock()

	for _, existing := range r.users.rows {
		if existing.GoogleID == user.GoogleID {
			existing.Email = user.Email
			existing.Name = user.Name
			existing.AccessToken = user.AccessToken
			existing.RefreshToken = user.RefreshToken
			existing.TokenExpiry = user.TokenExpiry
			existing.UpdatedAt = time.Now()
			return nil
		}
	}
	return r.users.insertLocked(user)
}

func (r *InMemoryUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.users.get(id)
}

func (r *InMemoryUserRepository) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	if u, ok := r.users.find(func(u *model.User) bool { return u.GoogleID == googleID }); ok {
		return u, nil
	}
	return nil, r.users.notFound(googleID)
}

func (r *InMemoryUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if u, ok := r.users.find(func(u *model.User) bool { return u.Email == email }); ok {
		return u, nil
	}
	return nil, r.users.notFound(email)
}

func (r *InMemoryUserRepository) FindAll(ctx context.Context) ([]*model.User, error) {
	users := r.users.filter(nil)
	sortByTime(users, func(u *model.User) time.Time { return u.CreatedAt })
	return users, nil
}

func (r *InMemoryUserRepository) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()
	return r.users.replace(user)
}

func (r *InMemoryUserRepository) Delete(ctx context.Context, id string) error {
	return r.users.remove(id)
}

// Category repository implementation
type InMemoryCategoryRepository struct {
	categories *table[*model.Category]
}

func NewInMemoryCategoryRepository() *InMemoryCategoryRepository {
	return &InMemoryCategoryRepository{
		categories: newTable("category",
			func(c *model.Category) string { return c.ID },
			cloneCategory),
	}
}

func cloneCategory(c *model.Category) *model.Category {
	out := *c
	out.Keywords = append([]string{}, c.Keywords...)
	out.Patterns = append([]string{}, c.Patterns...)
	out.Domains = append([]string{}, c.Domains...)
	return &out
}

var categorySortKeys = map[string]sortKey[*model.Category]{
	"created_at": byTime(func(c *model.Category) time.Time { return c.CreatedAt }),
	"updated_at": byTime(func(c *model.Category) time.Time { return c.UpdatedAt }),
	"name":       byString(func(c *model.Category) string { return c.Name }),
}

func (r *InMemoryCategoryRepository) Create(ctx context.Context, category *model.Category) error {
	r.categories.mutex.Lock()
	defer r.categories.mutex.Unlock()

	if err := r.checkNameLocked(category); err != nil {
		return err
	}
	return r.categories.insertLocked(category)
}

func (r *InMemoryCategoryRepository) checkNameLocked(category *model.Category) error {
	for _, existing := range r.categories.rows {
		if existing.ID != category.ID && existing.Name == category.Name {
			return r.categories.conflict("name %q is taken", category.Name)
		}
	}
	return nil
}

func (r *InMemoryCategoryRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	return r.categories.get(id)
}

func (r *InMemoryCategoryRepository) FindByName(ctx context.Context, name string) (*model.Category, error) {
	if c, ok := r.categories.find(func(c *model.Category) bool { return strings.EqualFold(c.Name, name) }); ok {
		return c, nil
	}
	return nil, r.categories.notFound(name)
}

func (r *InMemoryCategoryRepository) FindAll(ctx context.Context) ([]*model.Category, error) {
	all := r.categories.filter(nil)
	sort.SliceStable(all, func(i, j int) bool {
		a, b := strings.ToLower(all[i].Name), strings.ToLower(all[j].Name)
		if a != b {
			return a < b
		}
		return all[i].ID < all[j].ID
	})
	return all, nil
}

func categoryID(c *model.Category) string { return c.ID }

func (r *InMemoryCategoryRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.Page[*model.Category], error) {
	return paginate(r.categories.filter(nil), opts, repository.CategorySortFields, categorySortKeys, categoryID), nil
}

func (r *InMemoryCategoryRepository) Update(ctx context.Context, category *model.Category) error {
	r.categories.mutex.Lock()
	defer r.categories.mutex.Unlock()

	if err := r.checkNameLocked(category); err != nil {
		return err
	}
	category.UpdatedAt = time.Now()
	return r.categories.replaceLocked(category)
}

func (r *InMemoryCategoryRepository) Delete(ctx context.Context, id string) error {
	return r.categories.remove(id)
}

func (r *InMemoryCategoryRepository) Count(ctx context.Context) (int, error) {
	return r.categories.count(nil), nil
}

// Email repository implementation
type InMemoryEmailRepository struct {
	emails *table[*model.Email]
}

func NewInMemoryEmailRepository() *InMemoryEmailRepository {
	return &InMemoryEmailRepository{
		emails: newTable("email",
			emailID,
			func(e *model.Email) *model.Email { c := *e; return &c }),
	}
}

func emailID(e *model.Email) string { return e.ID }

var emailSortKeys = map[string]sortKey[*model.Email]{
	"created_at":  byTime(func(e *model.Email) time.Time { return e.CreatedAt }),
	"received_at": byTime(func(e *model.Email) time.Time { return e.ReceivedAt }),
	"subject":     byString(func(e *model.Email) string { return e.Subject }),
	"confidence":  byFloat(func(e *model.Email) float64 { return e.Confidence }),
}

func (r *InMemoryEmailRepository) Create(ctx context.Context, email *model.Email) error {
	r.emails.mutex.Lock()
	defer r.emails.mutex.Unlock()

	if email.ExternalID != "" {
		for _, existing := range r.emails.rows {
			if existing.UserID == email.UserID && existing.ExternalID == email.ExternalID {
				return r.emails.conflict("external id %s already imported", email.ExternalID)
			}
		}
	}
	return r.emails.insertLocked(email)
}

func (r *InMemoryEmailRepository) FindByID(ctx context.Context, id string) (*model.Email, error) {
	return r.emails.get(id)
}

func (r *InMemoryEmailRepository) FindByExternalID(ctx context.Context, userID, externalID string) (*model.Email, error) {
	e, ok := r.emails.find(func(e *model.Email) bool {
		return e.UserID == userID && e.ExternalID == externalID
	})
	if !ok {
		return nil, r.emails.notFound(externalID)
	}
	return e, nil
}

func matchEmail(f repository.EmailFilter) func(*model.Email) bool {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	return func(e *model.Email) bool {
		if f.UserID != "" && e.UserID != f.UserID {
			return false
		}
		if f.CategoryID != "" && e.CategoryID != f.CategoryID {
			return false
		}
		if f.Processed != nil && e.Processed != *f.Processed {
			return false
		}
		if f.Responded != nil && e.Responded != *f.Responded {
			return false
		}
		if f.Archived != nil && e.Archived != *f.Archived {
			return false
		}
		return search == "" || containsAny(search, e.Subject, e.From, e.Body)
	}
}

func (r *InMemoryEmailRepository) List(ctx context.Context, f repository.EmailFilter, opts repository.ListOptions) (*repository.Page[*model.Email], error) {
	return paginate(r.emails.filter(matchEmail(f)), opts, repository.EmailSortFields, emailSortKeys, emailID), nil
}

func (r *InMemoryEmailRepository) FindAll(ctx context.Context, f repository.EmailFilter) ([]*model.Email, error) {
	emails := r.emails.filter(matchEmail(f))
	sortByTime(emails, func(e *model.Email) time.Time { return e.ReceivedAt })
	return emails, nil
}

func (r *InMemoryEmailRepository) Update(ctx context.Context, email *model.Email) error {
	email.UpdatedAt = time.Now()
	return r.emails.replace(email)
}

func (r *InMemoryEmailRepository) Delete(ctx context.Context, id string) error {
	return r.emails.remove(id)
}

func (r *InMemoryEmailRepository) ClearCategory(ctx context.Context, categoryID string) (int64, error) {
	r.emails.mutex.Lock()
	defer r.emails.mutex.Unlock()

	var n int64
	now := time.Now()
	for _, e := range r.emails.rows {
		if e.CategoryID == categoryID {
			e.CategoryID, e.Category, e.Confidence = "", "", 0
			e.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (r *InMemoryEmailRepository) Count(ctx context.Context, f repository.EmailFilter) (int, error) {
	return r.emails.count(matchEmail(f)), nil
}

func (r *InMemoryEmailRepository) CountByCategory(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, e := range r.emails.filter(nil) {
		counts[e.Category]++
	}
	return counts, nil
}

type InMemoryServiceRepository struct {
	services *table[*model.Service]
}

func NewInMemoryServiceRepository() *InMemoryServiceRepository {
	return &InMemoryServiceRepository{
		services: newTable("service",
			serviceID,
			func(s *model.Service) *model.Service { c := *s; return &c }),
	}
}

func serviceID(s *model.Service) string { return s.ID }

var serviceSortKeys = map[string]sortKey[*model.Service]{
	"created_at": byTime(func(s *model.Service) time.Time { return s.CreatedAt }),
	"updated_at": byTime(func(s *model.Service) time.Time { return s.UpdatedAt }),
	"name":       byString(func(s *model.Service) string { return s.Name }),
	"price":      byFloat(func(s *model.Service) float64 { return s.Price }),
}

func matchService(f repository.ServiceFilter) func(*model.Service) bool {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	return func(s *model.Service) bool {
		if f.Active != nil && s.Active != *f.Active {
			return false
		}
		return search == "" || containsAny(search, s.Name, s.Description)
	}
}

func (r *InMemoryServiceRepository) Create(ctx context.Context, s *model.Service) error {
	return r.services.insert(s)
}

func (r *InMemoryServiceRepository) FindByID(ctx context.Context, id string) (*model.Service, error) {
	return r.services.get(id)
}

func (r *InMemoryServiceRepository) List(ctx context.Context, f repository.ServiceFilter, opts repository.ListOptions) (*repository.Page[*model.Service], error) {
	return paginate(r.services.filter(matchService(f)), opts, repository.ServiceSortFields, serviceSortKeys, serviceID), nil
}

func (r *InMemoryServiceRepository) Update(ctx context.Context, s *model.Service) error {
	s.UpdatedAt = time.Now()
	return r.services.replace(s)
}

func (r *InMemoryServiceRepository) Delete(ctx context.Context, id string) error {
	return r.services.remove(id)
}

func (r *InMemoryServiceRepository) Count(ctx context.Context, f repository.ServiceFilter) (int, error) {
	return r.services.count(matchService(f)), nil
}

type InMemoryClientRepository struct {
	clients *table[*model.Client]
}

func NewInMemoryClientRepository() *InMemoryClientRepository {
	return &InMemoryClientRepository{
		clients: newTable("client",
			clientID,
			func(c *model.Client) *model.Client { out := *c; return &out }),
	}
}

func clientID(c *model.Client) string { return c.ID }

var clientSortKeys = map[string]sortKey[*model.Client]{
	"created_at": byTime(func(c *model.Client) time.Time { return c.CreatedAt }),
	"updated_at": byTime(func(c *model.Client) time.Time { return c.UpdatedAt }),
	"name":       byString(func(c *model.Client) string { return c.Name }),
	"company":    byString(func(c *model.Client) string { return c.Company }),
}

func matchClient(f repository.ClientFilter) func(*model.Client) bool {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	return func(c *model.Client) bool {
		return search == "" || containsAny(search, c.Name, c.Email, c.Company, c.Phone)
	}
}

func (r *InMemoryClientRepository) Create(ctx context.Context, c *model.Client) error {
	return r.clients.insert(c)
}

func (r *InMemoryClientRepository) FindByID(ctx context.Context, id string) (*model.Client, error) {
	return r.clients.get(id)
}

func (r *InMemoryClientRepository) List(ctx context.Context, f repository.ClientFilter, opts repository.ListOptions) (*repository.Page[*model.Client], error) {
	return paginate(r.clients.filter(matchClient(f)), opts, repository.ClientSortFields, clientSortKeys, clientID), nil
}

func (r *InMemoryClientRepository) Update(ctx context.Context, c *model.Client) error {
	c.UpdatedAt = time.Now()
	return r.clients.replace(c)
}

func (r *InMemoryClientRepository) Delete(ctx context.Context, id string) error {
	return r.clients.remove(id)
}

func (r *InMemoryClientRepository) Count(ctx context.Context, f repository.ClientFilter) (int, error) {
	return r.clients.count(matchClient(f)), nil
}

type InMemoryQuotationRepository struct {
	quotations *table[*model.Quotation]
}

func NewInMemoryQuotationRepository() *InMemoryQuotationRepository {
	return &InMemoryQuotationRepository{
		quotations: newTable("quotation",
			quotationID,
			func(q *model.Quotation) *model.Quotation {
				out := *q
				out.Items = append([]model.QuotationItem{}, q.Items...)
				return &out
			}),
	}
}

func quotationID(q *model.Quotation) string { return q.ID }

var quotationSortKeys = map[string]sortKey[*model.Quotation]{
	"created_at": byTime(func(q *model.Quotation) time.Time { return q.CreatedAt }),
	"updated_at": byTime(func(q *model.Quotation) time.Time { return q.UpdatedAt }),
	"number":     byString(func(q *model.Quotation) string { return q.Number }),
	"total":      byFloat(func(q *model.Quotation) float64 { return q.Total }),
	"status":     byString(func(q *model.Quotation) string { return string(q.Status) }),
}

func matchQuotation(f repository.QuotationFilter) func(*model.Quotation) bool {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	return func(q *model.Quotation) bool {
		if f.Status != "" && q.Status != f.Status {
			return false
		}
		if f.ClientID != "" && q.ClientID != f.ClientID {
			return false
		}
		return search == "" || containsAny(search, q.Number, q.ClientName, q.ClientEmail)
	}
}

func (r *InMemoryQuotationRepository) Create(ctx context.Context, q *model.Quotation) error {
	r.quotations.mutex.Lock()
	defer r.quotations.mutex.Unlock()

	for _, existing := range r.quotations.rows {
		if existing.Number == q.Number {
			return r.quotations.conflict("number %s is taken", q.Number)
		}
	}
	return r.quotations.insertLocked(q)
}

func (r *InMemoryQuotationRepository) FindByID(ctx context.Context, id string) (*model.Quotation, error) {
	return r.quotations.get(id)
}

func (r *InMemoryQuotationRepository) List(ctx context.Context, f repository.QuotationFilter, opts repository.ListOptions) (*repository.Page[*model.Quotation], error) {
	return paginate(r.quotations.filter(matchQuotation(f)), opts, repository.QuotationSortFields, quotationSortKeys, quotationID), nil
}

func (r *InMemoryQuotationRepository) Update(ctx context.Context, q *model.Quotation) error {
	q.UpdatedAt = time.Now()
	return r.quotations.replace(q)
}

func (r *InMemoryQuotationRepository) Delete(ctx context.Context, id string) error {
	return r.quotations.remove(id)
}

func (r *InMemoryQuotationRepository) CountByStatus(ctx context.Context) (map[model.QuotationStatus]int, error) {
	counts := make(map[model.QuotationStatus]int)
	for _, q := range r.quotations.filter(nil) {
		counts[q.Status]++
	}
	return counts, nil
}

func (r *InMemoryQuotationRepository) SumTotal(ctx context.Context, statuses ...model.QuotationStatus) (float64, error) {
	sum := 0.0
	for _, q := range r.quotations.filter(nil) {
		if len(statuses) == 0 || hasStatus(statuses, q.Status) {
			sum += q.Total
		}
	}
	return model.RoundCents(sum), nil
}

func hasStatus(list []model.QuotationStatus, s model.QuotationStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type InMemoryAppointmentRepository struct {
	appointments *table[*model.Appointment]
}

func NewInMemoryAppointmentRepository() *InMemoryAppointmentRepository {
	return &InMemoryAppointmentRepository{
		appointments: newTable("appointment",
			appointmentID,
			func(a *model.Appointment) *model.Appointment { out := *a; return &out }),
	}
}

func appointmentID(a *model.Appointment) string { return a.ID }

var appointmentSortKeys = map[string]sortKey[*model.Appointment]{
	"created_at": byTime(func(a *model.Appointment) time.Time { return a.CreatedAt }),
	"start_time": byTime(func(a *model.Appointment) time.Time { return a.StartTime }),
	"status":     byString(func(a *model.Appointment) string { return string(a.Status) }),
}

func matchAppointment(f repository.AppointmentFilter) func(*model.Appointment) bool {
	return func(a *model.Appointment) bool {
		if f.ClientID != "" && a.ClientID != f.ClientID {
			return false
		}
		if f.QuotationID != "" && a.QuotationID != f.QuotationID {
			return false
		}
		if f.Status != "" && a.Status != f.Status {
			return false
		}
		if !f.From.IsZero() && a.StartTime.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && !a.StartTime.Before(f.To) {
			return false
		}
		return true
	}
}

func (r *InMemoryAppointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	return r.appointments.insert(a)
}

func (r *InMemoryAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	return r.appointments.get(id)
}

func (r *InMemoryAppointmentRepository) List(ctx context.Context, f repository.AppointmentFilter, opts repository.ListOptions) (*repository.Page[*model.Appointment], error) {
	return paginate(r.appointments.filter(matchAppointment(f)), opts, repository.AppointmentSortFields, appointmentSortKeys, appointmentID), nil
}

func (r *InMemoryAppointmentRepository) FindOverlapping(ctx context.Context, start, end time.Time) ([]*model.Appointment, error) {
	out := r.appointments.filter(func(a *model.Appointment) bool {
		return a.Active() && a.Overlaps(start, end)
	})
	sortByTime(out, func(a *model.Appointment) time.Time { return a.StartTime })
	return out, nil
}

func (r *InMemoryAppointmentRepository) FindDueForReminder(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
	out := r.appointments.filter(func(a *model.Appointment) bool {
		if a.ReminderSent {
			return false
		}
		if a.Status != model.AppointmentScheduled && a.Status != model.AppointmentConfirmed {
			return false
		}
		return !a.StartTime.Before(from) && a.StartTime.Before(to)
	})
	sortByTime(out, func(a *model.Appointment) time.Time { return a.StartTime })
	return out, nil
}

func (r *InMemoryAppointmentRepository) Update(ctx context.Context, a *model.Appointment) error {
	a.UpdatedAt = time.Now()
	return r.appointments.replace(a)
}

func (r *InMemoryAppointmentRepository) Delete(ctx context.Context, id string) error {
	return r.appointments.remove(id)
}

func (r *InMemoryAppointmentRepository) Count(ctx context.Context, f repository.AppointmentFilter) (int, error) {
	return r.appointments.count(matchAppointment(f)), nil
}

func (r *InMemoryAppointmentRepository) CountByStatus(ctx context.Context) (map[model.AppointmentStatus]int, error) {
	counts := make(map[model.AppointmentStatus]int)
	for _, a := range r.appointments.filter(nil) {
		counts[a.Status]++
	}
	return counts, nil
}

type InMemoryAvailabilityRepository struct {
	rules *table[*model.CalendarAvailability]
}

func NewInMemoryAvailabilityRepository() *InMemoryAvailabilityRepository {
	return &InMemoryAvailabilityRepository{
		rules: newTable("availability",
			func(a *model.CalendarAvailability) string { return a.ID },
			func(a *model.CalendarAvailability) *model.CalendarAvailability { out := *a; return &out }),
	}
}

func (r *InMemoryAvailabilityRepository) Create(ctx context.Context, a *model.CalendarAvailability) error {
	return r.rules.insert(a)
}

func (r *InMemoryAvailabilityRepository) FindByID(ctx context.Context, id string) (*model.CalendarAvailability, error) {
	return r.rules.get(id)
}

func (r *InMemoryAvailabilityRepository) FindAll(ctx context.Context) ([]*model.CalendarAvailability, error) {
	out := r.rules.filter(nil)
	sortRules(out)
	return out, nil
}

func (r *InMemoryAvailabilityRepository) FindForDay(ctx context.Context, day time.Time) ([]*model.CalendarAvailability, error) {
	out := r.rules.filter(func(a *model.CalendarAvailability) bool { return a.AppliesTo(day) })
	sortRules(out)
	return out, nil
}

func (r *InMemoryAvailabilityRepository) Update(ctx context.Context, a *model.CalendarAvailability) error {
	a.UpdatedAt = time.Now()
	return r.rules.replace(a)
}

func (r *InMemoryAvailabilityRepository) Delete(ctx context.Context, id string) error {
	return r.rules.remove(id)
}

func sortByTime[T any](items []T, at func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool { return at(items[i]).Before(at(items[j])) })
}

func sortRules(rules []*model.CalendarAvailability) {
	sort.SliceStable(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		return a.StartTime < b.StartTime
	})
}

// containsAny reports whether the lowercased needle occurs in any field.
func containsAny(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// NewSet returns empty in-memory repositories.
func NewSet() *repository.Set {
	return &repository.Set{
		Users:        NewInMemoryUserRepository(),
		Categories:   NewInMemoryCategoryRepository(),
		Emails:       NewInMemoryEmailRepository(),
		Services:     NewInMemoryServiceRepository(),
		Clients:      NewInMemoryClientRepository(),
		Quotations:   NewInMemoryQuotationRepository(),
		Appointments: NewInMemoryAppointmentRepository(),
		Availability: NewInMemoryAvailabilityRepository(),
	}
}

var (
	_ repository.UserRepository         = (*InMemoryUserRepository)(nil)
	_ repository.CategoryRepository     = (*InMemoryCategoryRepository)(nil)
	_ repository.EmailRepository        = (*InMemoryEmailRepository)(nil)
	_ repository.ServiceRepository      = (*InMemoryServiceRepository)(nil)
	_ repository.ClientRepository       = (*InMemoryClientRepository)(nil)
	_ repository.QuotationRepository    = (*InMemoryQuotationRepository)(nil)
	_ repository.AppointmentRepository  = (*InMemoryAppointmentRepository)(nil)
	_ repository.AvailabilityRepository = (*InMemoryAvailabilityRepository)(nil)
)
