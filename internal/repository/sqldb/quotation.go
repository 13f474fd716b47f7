package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"business-admin/internal/model"
	"business-admin/internal/repository"
)

// QuotationRepository keeps quotation headers in quotations and their lines
// in quotation_items, written together in one transaction.
type QuotationRepository struct {
	db *DB
}

func NewQuotationRepository(db *DB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

const quotationColumns = `id, number, client_id, client_name, client_email, client_phone, subtotal, discount,
	total, status, notes, valid_until, sent_at, created_at, updated_at`

func (r *QuotationRepository) Create(ctx context.Context, q *model.Quotation) error {
	return r.db.WithinTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO quotations (` + quotationColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
		_, err := r.db.exec(ctx, tx, query,
			q.ID, q.Number, q.ClientID, q.ClientName, q.ClientEmail, q.ClientPhone,
			q.Subtotal, q.Discount, q.Total, string(q.Status), q.Notes,
			r.db.nullTS(q.ValidUntil), r.db.nullTS(q.SentAt),
			r.db.ts(q.CreatedAt), r.db.ts(q.UpdatedAt))
		if err != nil {
			return wrapErr("inserting quotation", err)
		}
		return r.insertItems(ctx, tx, q)
	})
}

func (r *QuotationRepository) insertItems(ctx context.Context, tx *sql.Tx, q *model.Quotation) error {
	query := `INSERT INTO quotation_items (id, quotation_id, position, service_id, description, quantity, unit_price, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for i, item := range q.Items {
		_, err := r.db.exec(ctx, tx, query,
			item.ID, q.ID, i, item.ServiceID, item.Description, item.Quantity, item.UnitPrice, item.Total)
		if err != nil {
			return wrapErr("inserting quotation item", err)
		}
	}
	return nil
}

func (r *QuotationRepository) FindByID(ctx context.Context, id string) (*model.Quotation, error) {
	row := r.db.queryRow(ctx, r.db.DB, `SELECT `+quotationColumns+` FROM quotations WHERE id = $1`, id)
	q, err := scanQuotation(row)
	if err != nil {
		return nil, notFound("quotation", id, err)
	}
	if err := r.loadItems(ctx, []*model.Quotation{q}); err != nil {
		return nil, err
	}
	return q, nil
}

func quotationFilter(qf repository.QuotationFilter) *filter {
	f := &filter{}
	if qf.Status != "" {
		f.add("status = ?", string(qf.Status))
	}
	if qf.ClientID != "" {
		f.add("client_id = ?", qf.ClientID)
	}
	f.search(qf.Search, "number", "client_name", "client_email")
	return f
}

func (r *QuotationRepository) List(ctx context.Context, qf repository.QuotationFilter, opts repository.ListOptions) (*repository.Page[*model.Quotation], error) {
	opts = opts.Normalized(repository.QuotationSortFields)
	f := quotationFilter(qf)
	total, err := r.db.count(ctx, "quotations", f)
	if err != nil {
		return nil, err
	}

	items, err := r.queryQuotations(ctx, `SELECT `+quotationColumns+` FROM quotations`+f.where()+f.page(opts), f.args...)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, items); err != nil {
		return nil, err
	}
	return repository.NewPage(items, total, opts), nil
}

// queryQuotations drains the result set before returning so that items can be
// loaded on the same connection.
func (r *QuotationRepository) queryQuotations(ctx context.Context, query string, args ...any) ([]*model.Quotation, error) {
	rows, err := r.db.query(ctx, r.db.DB, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing quotations: %w", err)
	}
	defer rows.Close()

	var out []*model.Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning quotation: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *QuotationRepository) loadItems(ctx context.Context, quotations []*model.Quotation) error {
	if len(quotations) == 0 {
		return nil
	}
	byID := make(map[string]*model.Quotation, len(quotations))
	placeholders := make([]string, len(quotations))
	args := make([]any, len(quotations))
	for i, q := range quotations {
		q.Items = []model.QuotationItem{}
		byID[q.ID] = q
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = q.ID
	}

	query := `SELECT id, quotation_id, service_id, description, quantity, unit_price, total
		FROM quotation_items WHERE quotation_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY quotation_id, position`
	rows, err := r.db.query(ctx, r.db.DB, query, args...)
	if err != nil {
		return fmt.Errorf("loading quotation items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.QuotationItem
		var quotationID string
		if err := rows.Scan(&item.ID, &quotationID, &item.ServiceID, &item.Description,
			&item.Quantity, &item.UnitPrice, &item.Total); err != nil {
			return fmt.Errorf("scanning quotation item: %w", err)
		}
		if q, ok := byID[quotationID]; ok {
			q.Items = append(q.Items, item)
		}
	}
	return rows.Err()
}

// Update rewrites the header and replaces all items.
func (r *QuotationRepository) Update(ctx context.Context, q *model.Quotation) error {
	q.UpdatedAt = time.Now()
	return r.db.WithinTx(ctx, func(tx *sql.Tx) error {
		query := `UPDATE quotations SET client_id=$1, client_name=$2, client_email=$3, client_phone=$4,
			subtotal=$5, discount=$6, total=$7, status=$8, notes=$9, valid_until=$10, sent_at=$11,
			updated_at=$12 WHERE id=$13`
		res, err := r.db.exec(ctx, tx, query,
			q.ClientID, q.ClientName, q.ClientEmail, q.ClientPhone,
			q.Subtotal, q.Discount, q.Total, string(q.Status), q.Notes,
			r.db.nullTS(q.ValidUntil), r.db.nullTS(q.SentAt),
			r.db.ts(q.UpdatedAt), q.ID)
		if err != nil {
			return wrapErr("updating quotation", err)
		}
		if err := mustAffect(res, "quotation", q.ID); err != nil {
			return err
		}
		if _, err := r.db.exec(ctx, tx, `DELETE FROM quotation_items WHERE quotation_id = $1`, q.ID); err != nil {
			return fmt.Errorf("clearing quotation items: %w", err)
		}
		return r.insertItems(ctx, tx, q)
	})
}

func (r *QuotationRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithinTx(ctx, func(tx *sql.Tx) error {
		if _, err := r.db.exec(ctx, tx, `DELETE FROM quotation_items WHERE quotation_id = $1`, id); err != nil {
			return fmt.Errorf("deleting quotation items: %w", err)
		}
		res, err := r.db.exec(ctx, tx, `DELETE FROM quotations WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("deleting quotation: %w", err)
		}
		return mustAffect(res, "quotation", id)
	})
}

func (r *QuotationRepository) CountByStatus(ctx context.Context) (map[model.QuotationStatus]int, error) {
	rows, err := r.db.query(ctx, r.db.DB, `SELECT status, COUNT(*) FROM quotations GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting quotations: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.QuotationStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[model.QuotationStatus(status)] = n
	}
	return counts, rows.Err()
}

func (r *QuotationRepository) SumTotal(ctx context.Context, statuses ...model.QuotationStatus) (float64, error) {
	f := &filter{}
	if len(statuses) > 0 {
		marks := make([]string, len(statuses))
		args := make([]any, len(statuses))
		for i, s := range statuses {
			marks[i] = "?"
			args[i] = string(s)
		}
		f.add("status IN ("+strings.Join(marks, ", ")+")", args...)
	}
	var sum sql.NullFloat64
	if err := r.db.queryRow(ctx, r.db.DB, `SELECT SUM(total) FROM quotations`+f.where(), f.args...).Scan(&sum); err != nil {
		return 0, fmt.Errorf("summing quotations: %w", err)
	}
	return model.RoundCents(sum.Float64), nil
}

func scanQuotation(s scanner) (*model.Quotation, error) {
	q := &model.Quotation{}
	var status string
	var validUntil, sentAt, created, updated timestamp
	err := s.Scan(&q.ID, &q.Number, &q.ClientID, &q.ClientName, &q.ClientEmail, &q.ClientPhone,
		&q.Subtotal, &q.Discount, &q.Total, &status, &q.Notes,
		&validUntil, &sentAt, &created, &updated)
	if err != nil {
		return nil, err
	}
	q.Status = model.QuotationStatus(status)
	q.ValidUntil = validUntil.ptr()
	q.SentAt = sentAt.ptr()
	q.CreatedAt = created.Time
	q.UpdatedAt = updated.Time
	return q, nil
}
