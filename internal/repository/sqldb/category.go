package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"business-admin/internal/model"
	"business-admin/internal/repository"
)

type CategoryRepository struct {
	db *DB
}

func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

const categoryColumns = `id, name, description, color, active, keywords, patterns, domains, created_at, updated_at`

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	keywords, patterns, domains, err := encodeRules(category)
	if err != nil {
		return err
	}
	query := `INSERT INTO categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.db.exec(ctx, r.db.DB, query,
		category.ID, category.Name, category.Description, category.Color, category.Active,
		keywords, patterns, domains,
		r.db.ts(category.CreatedAt), r.db.ts(category.UpdatedAt))
	return wrapErr("inserting category", err)
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	row := r.db.queryRow(ctx, r.db.DB, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	category, err := scanCategory(row)
	if err != nil {
		return nil, notFound("category", id, err)
	}
	return category, nil
}

// FindByName matches case-insensitively.
func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*model.Category, error) {
	row := r.db.queryRow(ctx, r.db.DB, `SELECT `+categoryColumns+` FROM categories WHERE LOWER(name) = LOWER($1)`, name)
	category, err := scanCategory(row)
	if err != nil {
		return nil, notFound("category", name, err)
	}
	return category, nil
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]*model.Category, error) {
	rows, err := r.db.query(ctx, r.db.DB, `SELECT `+categoryColumns+` FROM categories ORDER BY LOWER(name), id`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()
	return collectCategories(rows)
}

func (r *CategoryRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.Page[*model.Category], error) {
	opts = opts.Normalized(repository.CategorySortFields)
	f := &filter{}
	total, err := r.db.count(ctx, "categories", f)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + categoryColumns + ` FROM categories` + f.where() + f.page(opts)
	rows, err := r.db.query(ctx, r.db.DB, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	items, err := collectCategories(rows)
	if err != nil {
		return nil, err
	}
	return repository.NewPage(items, total, opts), nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *model.Category) error {
	keywords, patterns, domains, err := encodeRules(category)
	if err != nil {
		return err
	}
	category.UpdatedAt = time.Now()
	query := `UPDATE categories SET name=$1, description=$2, color=$3, active=$4,
		keywords=$5, patterns=$6, domains=$7, updated_at=$8 WHERE id=$9`
	res, err := r.db.exec(ctx, r.db.DB, query,
		category.Name, category.Description, category.Color, category.Active,
		keywords, patterns, domains, r.db.ts(category.UpdatedAt), category.ID)
	if err != nil {
		return wrapErr("updating category", err)
	}
	return mustAffect(res, "category", category.ID)
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.exec(ctx, r.db.DB, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	return mustAffect(res, "category", id)
}

func (r *CategoryRepository) Count(ctx context.Context) (int, error) {
	return r.db.count(ctx, "categories", &filter{})
}

func encodeRules(c *model.Category) (keywords, patterns, domains string, err error) {
	enc := func(list []string) (string, error) {
		if list == nil {
			list = []string{}
		}
		b, err := json.Marshal(list)
		return string(b), err
	}
	if keywords, err = enc(c.Keywords); err != nil {
		return
	}
	if patterns, err = enc(c.Patterns); err != nil {
		return
	}
	domains, err = enc(c.Domains)
	return
}

func collectCategories(rows *sql.Rows) ([]*model.Category, error) {
	var categories []*model.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func scanCategory(s scanner) (*model.Category, error) {
	c := &model.Category{}
	var keywords, patterns, domains string
	var created, updated timestamp
	err := s.Scan(&c.ID, &c.Name, &c.Description, &c.Color, &c.Active,
		&keywords, &patterns, &domains, &created, &updated)
	if err != nil {
		return nil, err
	}
	for _, pair := range []struct {
		raw string
		dst *[]string
	}{{keywords, &c.Keywords}, {patterns, &c.Patterns}, {domains, &c.Domains}} {
		*pair.dst = []string{}
		if pair.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(pair.raw), pair.dst); err != nil {
			return nil, fmt.Errorf("decoding category rules: %w", err)
		}
	}
	c.CreatedAt = created.Time
	c.UpdatedAt = updated.Time
	return c, nil
}
