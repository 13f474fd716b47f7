package sqldb

import (
	"context"
	"fmt"
	"time"

	"business-admin/internal/model"
)

type AvailabilityRepository struct {
	db *DB
}

func NewAvailabilityRepository(db *DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

const availabilityColumns = `id, type, date, day_of_week, start_time, end_time, available, notes, created_at, updated_at`

func (r *AvailabilityRepository) Create(ctx context.Context, a *model.CalendarAvailability) error {
	query := `INSERT INTO calendar_availability (` + availabilityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.exec(ctx, r.db.DB, query,
		a.ID, string(a.Type), a.Date, a.DayOfWeek, a.StartTime, a.EndTime, a.Available, a.Notes,
		r.db.ts(a.CreatedAt), r.db.ts(a.UpdatedAt))
	return wrapErr("inserting availability", err)
}

func (r *AvailabilityRepository) FindByID(ctx context.Context, id string) (*model.CalendarAvailability, error) {
	row := r.db.queryRow(ctx, r.db.DB, `SELECT `+availabilityColumns+` FROM calendar_availability WHERE id = $1`, id)
	a, err := scanAvailability(row)
	if err != nil {
		return nil, notFound("availability", id, err)
	}
	return a, nil
}

func (r *AvailabilityRepository) FindAll(ctx context.Context) ([]*model.CalendarAvailability, error) {
	return r.queryAvailability(ctx, `SELECT `+availabilityColumns+` FROM calendar_availability
		ORDER BY type, date, day_of_week, start_time`)
}

func (r *AvailabilityRepository) FindForDay(ctx context.Context, day time.Time) ([]*model.CalendarAvailability, error) {
	query := `SELECT ` + availabilityColumns + ` FROM calendar_availability
		WHERE (type = $1 AND date = $2) OR (type = $3 AND day_of_week = $4)
		ORDER BY start_time`
	return r.queryAvailability(ctx, query,
		string(model.AvailabilitySpecific), day.Format(model.DateLayout),
		string(model.AvailabilityWeekly), int(day.Weekday()))
}

func (r *AvailabilityRepository) queryAvailability(ctx context.Context, query string, args ...any) ([]*model.CalendarAvailability, error) {
	rows, err := r.db.query(ctx, r.db.DB, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing availability: %w", err)
	}
	defer rows.Close()

	var out []*model.CalendarAvailability
	for rows.Next() {
		a, err := scanAvailability(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning availability: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AvailabilityRepository) Update(ctx context.Context, a *model.CalendarAvailability) error {
	a.UpdatedAt = time.Now()
	query := `UPDATE calendar_availability SET type=$1, date=$2, day_of_week=$3, start_time=$4,
		end_time=$5, available=$6, notes=$7, updated_at=$8 WHERE id=$9`
	res, err := r.db.exec(ctx, r.db.DB, query,
		string(a.Type), a.Date, a.DayOfWeek, a.StartTime, a.EndTime, a.Available, a.Notes,
		r.db.ts(a.UpdatedAt), a.ID)
	if err != nil {
		return wrapErr("updating availability", err)
	}
	return mustAffect(res, "availability", a.ID)
}

func (r *AvailabilityRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.exec(ctx, r.db.DB, `DELETE FROM calendar_availability WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting availability: %w", err)
	}
	return mustAffect(res, "availability", id)
}

func scanAvailability(s scanner) (*model.CalendarAvailability, error) {
	a := &model.CalendarAvailability{}
	var typ string
	var created, updated timestamp
	if err := s.Scan(&a.ID, &typ, &a.Date, &a.DayOfWeek, &a.StartTime, &a.EndTime, &a.Available, &a.Notes,
		&created, &updated); err != nil {
		return nil, err
	}
	a.Type = model.AvailabilityType(typ)
	a.CreatedAt = created.Time
	a.UpdatedAt = updated.Time
	return a, nil
}
