package sqldb

import (
	"context"
	"fmt"
	"time"

	"business-admin/internal/model"
	"business-admin/internal/repository"
)

type ClientRepository struct {
	db *DB
}

func NewClientRepository(db *DB) *ClientRepository {
	return &ClientRepository{db: db}
}

const clientColumns = `id, name, email, phone, company, address, notes, created_at, updated_at`

func (r *ClientRepository) Create(ctx context.Context, c *model.Client) error {
	query := `INSERT INTO clients (` + clientColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.exec(ctx, r.db.DB, query,
		c.ID, c.Name, c.Email, c.Phone, c.Company, c.Address, c.Notes,
		r.db.ts(c.CreatedAt), r.db.ts(c.UpdatedAt))
	return wrapErr("inserting client", err)
}

func (r *ClientRepository) FindByID(ctx context.Context, id string) (*model.Client, error) {
	row := r.db.queryRow(ctx, r.db.DB, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	c, err := scanClient(row)
	if err != nil {
		return nil, notFound("client", id, err)
	}
	return c, nil
}

func clientFilter(cf repository.ClientFilter) *filter {
	f := &filter{}
	f.search(cf.Search, "name", "email", "company", "phone")
	return f
}

func (r *ClientRepository) List(ctx context.Context, cf repository.ClientFilter, opts repository.ListOptions) (*repository.Page[*model.Client], error) {
	opts = opts.Normalized(repository.ClientSortFields)
	f := clientFilter(cf)
	total, err := r.db.count(ctx, "clients", f)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.query(ctx, r.db.DB, `SELECT `+clientColumns+` FROM clients`+f.where()+f.page(opts), f.args...)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer rows.Close()

	var items []*model.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return repository.NewPage(items, total, opts), nil
}

func (r *ClientRepository) Update(ctx context.Context, c *model.Client) error {
	c.UpdatedAt = time.Now()
	query := `UPDATE clients SET name=$1, email=$2, phone=$3, company=$4, address=$5, notes=$6,
		updated_at=$7 WHERE id=$8`
	res, err := r.db.exec(ctx, r.db.DB, query,
		c.Name, c.Email, c.Phone, c.Company, c.Address, c.Notes, r.db.ts(c.UpdatedAt), c.ID)
	if err != nil {
		return wrapErr("updating client", err)
	}
	return mustAffect(res, "client", c.ID)
}

func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.exec(ctx, r.db.DB, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}
	return mustAffect(res, "client", id)
}

func (r *ClientRepository) Count(ctx context.Context, cf repository.ClientFilter) (int, error) {
	return r.db.count(ctx, "clients", clientFilter(cf))
}

func scanClient(s scanner) (*model.Client, error) {
	c := &model.Client{}
	var created, updated timestamp
	if err := s.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Address, &c.Notes,
		&created, &updated); err != nil {
		return nil, err
	}
	c.CreatedAt = created.Time
	c.UpdatedAt = updated.Time
	return c, nil
}
