package sqldb

import (
	"context"
	"fmt"
	"time"

	"business-admin/internal/model"
	"business-admin/internal/repository"
)

// ServiceRepository stores the service catalog.
type ServiceRepository struct {
	db *DB
}

func NewServiceRepository(db *DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

const serviceColumns = `id, name, description, price, unit, estimated_time, active, created_at, updated_at`

func (r *ServiceRepository) Create(ctx context.Context, s *model.Service) error {
	query := `INSERT INTO services (` + serviceColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.exec(ctx, r.db.DB, query,
		s.ID, s.Name, s.Description, s.Price, s.Unit, s.EstimatedTime, s.Active,
		r.db.ts(s.CreatedAt), r.db.ts(s.UpdatedAt))
	return wrapErr("inserting service", err)
}

func (r *ServiceRepository) FindByID(ctx context.Context, id string) (*model.Service, error) {
	row := r.db.queryRow(ctx, r.db.DB, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id)
	s, err := scanService(row)
	if err != nil {
		return nil, notFound("service", id, err)
	}
	return s, nil
}

func serviceFilter(sf repository.ServiceFilter) *filter {
	f := &filter{}
	if sf.Active != nil {
		f.add("active = ?", *sf.Active)
	}
	f.search(sf.Search, "name", "description")
	return f
}

func (r *ServiceRepository) List(ctx context.Context, sf repository.ServiceFilter, opts repository.ListOptions) (*repository.Page[*model.Service], error) {
	opts = opts.Normalized(repository.ServiceSortFields)
	f := serviceFilter(sf)
	total, err := r.db.count(ctx, "services", f)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.query(ctx, r.db.DB, `SELECT `+serviceColumns+` FROM services`+f.where()+f.page(opts), f.args...)
	if err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}
	defer rows.Close()

	var items []*model.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning service: %w", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return repository.NewPage(items, total, opts), nil
}

func (r *ServiceRepository) Update(ctx context.Context, s *model.Service) error {
	s.UpdatedAt = time.Now()
	query := `UPDATE services SET name=$1, description=$2, price=$3, unit=$4, estimated_time=$5,
		active=$6, updated_at=$7 WHERE id=$8`
	res, err := r.db.exec(ctx, r.db.DB, query,
		s.Name, s.Description, s.Price, s.Unit, s.EstimatedTime, s.Active, r.db.ts(s.UpdatedAt), s.ID)
	if err != nil {
		return wrapErr("updating service", err)
	}
	return mustAffect(res, "service", s.ID)
}

func (r *ServiceRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.exec(ctx, r.db.DB, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting service: %w", err)
	}
	return mustAffect(res, "service", id)
}

func (r *ServiceRepository) Count(ctx context.Context, sf repository.ServiceFilter) (int, error) {
	return r.db.count(ctx, "services", serviceFilter(sf))
}

func scanService(s scanner) (*model.Service, error) {
	svc := &model.Service{}
	var created, updated timestamp
	if err := s.Scan(&svc.ID, &svc.Name, &svc.Description, &svc.Price, &svc.Unit,
		&svc.EstimatedTime, &svc.Active, &created, &updated); err != nil {
		return nil, err
	}
	svc.CreatedAt = created.Time
	svc.UpdatedAt = updated.Time
	return svc, nil
}
