package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"business-admin/internal/model"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, google_id, email, name, access_token, refresh_token, token_expiry, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (google_id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expiry = EXCLUDED.token_expiry,
			updated_at = EXCLUDED.updated_at`
	_, err := r.db.exec(ctx, r.db.DB, query,
		user.ID, user.GoogleID, user.Email, user.Name,
		user.AccessToken, user.RefreshToken, r.db.ts(user.TokenExpiry),
		r.db.ts(user.CreatedAt), r.db.ts(user.UpdatedAt))
	return wrapErr("inserting user", err)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, "id", id)
}

func (r *UserRepository) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return r.findOne(ctx, "google_id", googleID)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email", email)
}

func (r *UserRepository) findOne(ctx context.Context, column, value string) (*model.User, error) {
	row := r.db.queryRow(ctx, r.db.DB, `SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value)
	user, err := scanUser(row)
	if err != nil {
		return nil, notFound("user", value, err)
	}
	return user, nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]*model.User, error) {
	rows, err := r.db.query(ctx, r.db.DB, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()
	query := `
		UPDATE users SET google_id=$1, email=$2, name=$3, access_token=$4,
		refresh_token=$5, token_expiry=$6, updated_at=$7 WHERE id=$8`
	res, err := r.db.exec(ctx, r.db.DB, query,
		user.GoogleID, user.Email, user.Name,
		user.AccessToken, user.RefreshToken, r.db.ts(user.TokenExpiry),
		r.db.ts(user.UpdatedAt), user.ID)
	if err != nil {
		return wrapErr("updating user", err)
	}
	return mustAffect(res, "user", user.ID)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.exec(ctx, r.db.DB, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return mustAffect(res, "user", id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*model.User, error) {
	user := &model.User{}
	var expiry, created, updated timestamp
	err := s.Scan(
		&user.ID, &user.GoogleID, &user.Email, &user.Name,
		&user.AccessToken, &user.RefreshToken, &expiry,
		&created, &updated)
	if err != nil {
		return nil, err
	}
	user.TokenExpiry = expiry.Time
	user.CreatedAt = created.Time
	user.UpdatedAt = updated.Time
	return user, nil
}

var (
	_ scanner = (*sql.Row)(nil)
	_ scanner = (*sql.Rows)(nil)
)
