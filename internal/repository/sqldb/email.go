package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"business-admin/internal/model"
	"business-admin/internal/repository"
)

type EmailRepository struct {
	db *DB
}

func NewEmailRepository(db *DB) *EmailRepository {
	return &EmailRepository{db: db}
}

const emailColumns = `id, user_id, external_id, from_address, to_address, subject, body, received_at,
	category_id, category, confidence, processed, responded, archived, created_at, updated_at`

func (r *EmailRepository) Create(ctx context.Context, email *model.Email) error {
	query := `INSERT INTO emails (` + emailColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.db.exec(ctx, r.db.DB, query,
		email.ID, email.UserID, email.ExternalID, email.From, email.To, email.Subject, email.Body,
		r.db.ts(email.ReceivedAt), email.CategoryID, email.Category, email.Confidence,
		email.Processed, email.Responded, email.Archived,
		r.db.ts(email.CreatedAt), r.db.ts(email.UpdatedAt))
	return wrapErr("inserting email", err)
}

func (r *EmailRepository) FindByID(ctx context.Context, id string) (*model.Email, error) {
	row := r.db.queryRow(ctx, r.db.DB, `SELECT `+emailColumns+` FROM emails WHERE id = $1`, id)
	email, err := scanEmail(row)
	if err != nil {
		return nil, notFound("email", id, err)
	}
	return email, nil
}

func (r *EmailRepository) FindByExternalID(ctx context.Context, userID, externalID string) (*model.Email, error) {
	row := r.db.queryRow(ctx, r.db.DB,
		`SELECT `+emailColumns+` FROM emails WHERE user_id = $1 AND external_id = $2`, userID, externalID)
	email, err := scanEmail(row)
	if err != nil {
		return nil, notFound("email", externalID, err)
	}
	return email, nil
}

func emailFilter(ef repository.EmailFilter) *filter {
	f := &filter{}
	if ef.UserID != "" {
		f.add("user_id = ?", ef.UserID)
	}
	if ef.CategoryID != "" {
		f.add("category_id = ?", ef.CategoryID)
	}
	if ef.Processed != nil {
		f.add("processed = ?", *ef.Processed)
	}
	if ef.Responded != nil {
		f.add("responded = ?", *ef.Responded)
	}
	if ef.Archived != nil {
		f.add("archived = ?", *ef.Archived)
	}
	f.search(ef.Search, "subject", "from_address", "body")
	return f
}

func (r *EmailRepository) List(ctx context.Context, ef repository.EmailFilter, opts repository.ListOptions) (*repository.Page[*model.Email], error) {
	opts = opts.Normalized(repository.EmailSortFields)
	f := emailFilter(ef)
	total, err := r.db.count(ctx, "emails", f)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.query(ctx, r.db.DB, `SELECT `+emailColumns+` FROM emails`+f.where()+f.page(opts), f.args...)
	if err != nil {
		return nil, fmt.Errorf("listing emails: %w", err)
	}
	defer rows.Close()

	items, err := collectEmails(rows)
	if err != nil {
		return nil, err
	}
	return repository.NewPage(items, total, opts), nil
}

func (r *EmailRepository) FindAll(ctx context.Context, ef repository.EmailFilter) ([]*model.Email, error) {
	f := emailFilter(ef)
	rows, err := r.db.query(ctx, r.db.DB, `SELECT `+emailColumns+` FROM emails`+f.where()+` ORDER BY received_at`, f.args...)
	if err != nil {
		return nil, fmt.Errorf("listing emails: %w", err)
	}
	defer rows.Close()
	return collectEmails(rows)
}

func (r *EmailRepository) Update(ctx context.Context, email *model.Email) error {
	email.UpdatedAt = time.Now()
	query := `UPDATE emails SET from_address=$1, to_address=$2, subject=$3, body=$4,
		category_id=$5, category=$6, confidence=$7, processed=$8, responded=$9, archived=$10,
		updated_at=$11 WHERE id=$12`
	res, err := r.db.exec(ctx, r.db.DB, query,
		email.From, email.To, email.Subject, email.Body,
		email.CategoryID, email.Category, email.Confidence,
		email.Processed, email.Responded, email.Archived,
		r.db.ts(email.UpdatedAt), email.ID)
	if err != nil {
		return wrapErr("updating email", err)
	}
	return mustAffect(res, "email", email.ID)
}

func (r *EmailRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.exec(ctx, r.db.DB, `DELETE FROM emails WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting email: %w", err)
	}
	return mustAffect(res, "email", id)
}

func (r *EmailRepository) ClearCategory(ctx context.Context, categoryID string) (int64, error) {
	res, err := r.db.exec(ctx, r.db.DB,
		`UPDATE emails SET category_id = '', category = '', confidence = 0, updated_at = $1 WHERE category_id = $2`,
		r.db.ts(time.Now()), categoryID)
	if err != nil {
		return 0, fmt.Errorf("clearing email category: %w", err)
	}
	return res.RowsAffected()
}

func (r *EmailRepository) Count(ctx context.Context, ef repository.EmailFilter) (int, error) {
	return r.db.count(ctx, "emails", emailFilter(ef))
}

func (r *EmailRepository) CountByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.query(ctx, r.db.DB, `SELECT category, COUNT(*) FROM emails GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("counting emails by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		counts[name] = n
	}
	return counts, rows.Err()
}

func collectEmails(rows *sql.Rows) ([]*model.Email, error) {
	var emails []*model.Email
	for rows.Next() {
		email, err := scanEmail(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning email: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

func scanEmail(s scanner) (*model.Email, error) {
	e := &model.Email{}
	var received, created, updated timestamp
	err := s.Scan(&e.ID, &e.UserID, &e.ExternalID, &e.From, &e.To, &e.Subject, &e.Body, &received,
		&e.CategoryID, &e.Category, &e.Confidence, &e.Processed, &e.Responded, &e.Archived,
		&created, &updated)
	if err != nil {
		return nil, err
	}
	e.ReceivedAt = received.Time
	e.CreatedAt = created.Time
	e.UpdatedAt = updated.Time
	return e, nil
}
