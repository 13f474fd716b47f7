package sqldb

import "business-admin/internal/repository"

var (
	_ repository.UserRepository         = (*UserRepository)(nil)
	_ repository.CategoryRepository     = (*CategoryRepository)(nil)
	_ repository.EmailRepository        = (*EmailRepository)(nil)
	_ repository.ServiceRepository      = (*ServiceRepository)(nil)
	_ repository.ClientRepository       = (*ClientRepository)(nil)
	_ repository.QuotationRepository    = (*QuotationRepository)(nil)
	_ repository.AppointmentRepository  = (*AppointmentRepository)(nil)
	_ repository.AvailabilityRepository = (*AvailabilityRepository)(nil)
)

func NewSet(db *DB) *repository.Set {
	return &repository.Set{
		Users:        NewUserRepository(db),
		Categories:   NewCategoryRepository(db),
		Emails:       NewEmailRepository(db),
		Services:     NewServiceRepository(db),
		Clients:      NewClientRepository(db),
		Quotations:   NewQuotationRepository(db),
		Appointments: NewAppointmentRepository(db),
		Availability: NewAvailabilityRepository(db),
	}
}
