package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"business-admin/internal/model"
	"business-admin/internal/repository"
)

type AppointmentRepository struct {
	db *DB
}

func NewAppointmentRepository(db *DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

const appointmentColumns = `id, client_id, quotation_id, service_id, title, description, location,
	start_time, end_time, status, notes, reminder_sent, created_at, updated_at`

func (r *AppointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	query := `INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.db.exec(ctx, r.db.DB, query,
		a.ID, a.ClientID, a.QuotationID, a.ServiceID, a.Title, a.Description, a.Location,
		r.db.ts(a.StartTime), r.db.ts(a.EndTime), string(a.Status), a.Notes, a.ReminderSent,
		r.db.ts(a.CreatedAt), r.db.ts(a.UpdatedAt))
	return wrapErr("inserting appointment", err)
}

func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	row := r.db.queryRow(ctx, r.db.DB, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	a, err := scanAppointment(row)
	if err != nil {
		return nil, notFound("appointment", id, err)
	}
	return a, nil
}

func (r *AppointmentRepository) appointmentFilter(af repository.AppointmentFilter) *filter {
	f := &filter{}
	if af.ClientID != "" {
		f.add("client_id = ?", af.ClientID)
	}
	if af.QuotationID != "" {
		f.add("quotation_id = ?", af.QuotationID)
	}
	if af.Status != "" {
		f.add("status = ?", string(af.Status))
	}
	if !af.From.IsZero() {
		f.add("start_time >= ?", r.db.ts(af.From))
	}
	if !af.To.IsZero() {
		f.add("start_time < ?", r.db.ts(af.To))
	}
	return f
}

func (r *AppointmentRepository) List(ctx context.Context, af repository.AppointmentFilter, opts repository.ListOptions) (*repository.Page[*model.Appointment], error) {
	opts = opts.Normalized(repository.AppointmentSortFields)
	f := r.appointmentFilter(af)
	total, err := r.db.count(ctx, "appointments", f)
	if err != nil {
		return nil, err
	}
	items, err := r.queryAppointments(ctx, `SELECT `+appointmentColumns+` FROM appointments`+f.where()+f.page(opts), f.args...)
	if err != nil {
		return nil, err
	}
	return repository.NewPage(items, total, opts), nil
}

func (r *AppointmentRepository) FindOverlapping(ctx context.Context, start, end time.Time) ([]*model.Appointment, error) {
	f := &filter{}
	f.add("status <> ?", string(model.AppointmentCancelled))
	f.add("start_time < ?", r.db.ts(end))
	f.add("end_time > ?", r.db.ts(start))
	return r.queryAppointments(ctx, `SELECT `+appointmentColumns+` FROM appointments`+f.where()+` ORDER BY start_time`, f.args...)
}

func (r *AppointmentRepository) FindDueForReminder(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
	f := &filter{}
	f.add("status IN (?, ?)", string(model.AppointmentScheduled), string(model.AppointmentConfirmed))
	f.add("reminder_sent = ?", false)
	f.add("start_time >= ?", r.db.ts(from))
	f.add("start_time < ?", r.db.ts(to))
	return r.queryAppointments(ctx, `SELECT `+appointmentColumns+` FROM appointments`+f.where()+` ORDER BY start_time`, f.args...)
}

func (r *AppointmentRepository) queryAppointments(ctx context.Context, query string, args ...any) ([]*model.Appointment, error) {
	rows, err := r.db.query(ctx, r.db.DB, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *AppointmentRepository) Update(ctx context.Context, a *model.Appointment) error {
	a.UpdatedAt = time.Now()
	query := `UPDATE appointments SET client_id=$1, quotation_id=$2, service_id=$3, title=$4,
		description=$5, location=$6, start_time=$7, end_time=$8, status=$9, notes=$10,
		reminder_sent=$11, updated_at=$12 WHERE id=$13`
	res, err := r.db.exec(ctx, r.db.DB, query,
		a.ClientID, a.QuotationID, a.ServiceID, a.Title, a.Description, a.Location,
		r.db.ts(a.StartTime), r.db.ts(a.EndTime), string(a.Status), a.Notes, a.ReminderSent,
		r.db.ts(a.UpdatedAt), a.ID)
	if err != nil {
		return wrapErr("updating appointment", err)
	}
	return mustAffect(res, "appointment", a.ID)
}

func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.exec(ctx, r.db.DB, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting appointment: %w", err)
	}
	return mustAffect(res, "appointment", id)
}

func (r *AppointmentRepository) Count(ctx context.Context, af repository.AppointmentFilter) (int, error) {
	return r.db.count(ctx, "appointments", r.appointmentFilter(af))
}

func (r *AppointmentRepository) CountByStatus(ctx context.Context) (map[model.AppointmentStatus]int, error) {
	rows, err := r.db.query(ctx, r.db.DB, `SELECT status, COUNT(*) FROM appointments GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting appointments: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.AppointmentStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[model.AppointmentStatus(status)] = n
	}
	return counts, rows.Err()
}

func collectAppointments(rows *sql.Rows) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning appointment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAppointment(s scanner) (*model.Appointment, error) {
	a := &model.Appointment{}
	var status string
	var start, end, created, updated timestamp
	err := s.Scan(&a.ID, &a.ClientID, &a.QuotationID, &a.ServiceID, &a.Title, &a.Description, &a.Location,
		&start, &end, &status, &a.Notes, &a.ReminderSent, &created, &updated)
	if err != nil {
		return nil, err
	}
	a.StartTime = start.Time
	a.EndTime = end.Time
	a.Status = model.AppointmentStatus(status)
	a.CreatedAt = created.Time
	a.UpdatedAt = updated.Time
	return a, nil
}
