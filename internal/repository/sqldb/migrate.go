package sqldb

import (
	"context"
	"fmt"
	"strings"
)

// schema is written for PostgreSQL. SQLite takes it with TIMESTAMPTZ columns
// stored as fixed-width text.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(64) PRIMARY KEY,
		google_id VARCHAR(255) UNIQUE NOT NULL,
		email VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL DEFAULT '',
		access_token TEXT NOT NULL DEFAULT '',
		refresh_token TEXT NOT NULL DEFAULT '',
		token_expiry TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) UNIQUE NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		color VARCHAR(7) NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		keywords TEXT NOT NULL DEFAULT '[]',
		patterns TEXT NOT NULL DEFAULT '[]',
		domains TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS emails (
		id VARCHAR(64) PRIMARY KEY,
		user_id VARCHAR(64) NOT NULL DEFAULT '',
		external_id VARCHAR(255) NOT NULL DEFAULT '',
		from_address TEXT NOT NULL,
		to_address TEXT NOT NULL DEFAULT '',
		subject TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL DEFAULT '',
		received_at TIMESTAMPTZ NOT NULL,
		category_id VARCHAR(64) NOT NULL DEFAULT '',
		category VARCHAR(255) NOT NULL DEFAULT '',
		confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
		processed BOOLEAN NOT NULL DEFAULT FALSE,
		responded BOOLEAN NOT NULL DEFAULT FALSE,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_emails_external ON emails (user_id, external_id) WHERE external_id <> ''`,
	`CREATE INDEX IF NOT EXISTS idx_emails_category ON emails (category_id)`,
	`CREATE TABLE IF NOT EXISTS services (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price DOUBLE PRECISION NOT NULL DEFAULT 0,
		unit VARCHAR(32) NOT NULL DEFAULT 'unit',
		estimated_time INTEGER NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS clients (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL DEFAULT '',
		phone VARCHAR(64) NOT NULL DEFAULT '',
		company VARCHAR(255) NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS quotations (
		id VARCHAR(64) PRIMARY KEY,
		number VARCHAR(32) UNIQUE NOT NULL,
		client_id VARCHAR(64) NOT NULL DEFAULT '',
		client_name VARCHAR(255) NOT NULL,
		client_email VARCHAR(255) NOT NULL DEFAULT '',
		client_phone VARCHAR(64) NOT NULL DEFAULT '',
		subtotal DOUBLE PRECISION NOT NULL DEFAULT 0,
		discount DOUBLE PRECISION NOT NULL DEFAULT 0,
		total DOUBLE PRECISION NOT NULL DEFAULT 0,
		status VARCHAR(16) NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		valid_until TIMESTAMPTZ,
		sent_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quotations_client ON quotations (client_id)`,
	`CREATE TABLE IF NOT EXISTS quotation_items (
		id VARCHAR(64) PRIMARY KEY,
		quotation_id VARCHAR(64) NOT NULL REFERENCES quotations (id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		service_id VARCHAR(64) NOT NULL DEFAULT '',
		description TEXT NOT NULL,
		quantity DOUBLE PRECISION NOT NULL,
		unit_price DOUBLE PRECISION NOT NULL,
		total DOUBLE PRECISION NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quotation_items_quotation ON quotation_items (quotation_id)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id VARCHAR(64) PRIMARY KEY,
		client_id VARCHAR(64) NOT NULL,
		quotation_id VARCHAR(64) NOT NULL DEFAULT '',
		service_id VARCHAR(64) NOT NULL DEFAULT '',
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ NOT NULL,
		status VARCHAR(16) NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		reminder_sent BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_start ON appointments (start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_client ON appointments (client_id)`,
	`CREATE TABLE IF NOT EXISTS calendar_availability (
		id VARCHAR(64) PRIMARY KEY,
		type VARCHAR(16) NOT NULL,
		date VARCHAR(10) NOT NULL DEFAULT '',
		day_of_week INTEGER NOT NULL DEFAULT 0,
		start_time VARCHAR(5) NOT NULL,
		end_time VARCHAR(5) NOT NULL,
		available BOOLEAN NOT NULL DEFAULT TRUE,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate creates the tables and indexes that do not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if db.driver == DriverSQLite {
			stmt = strings.ReplaceAll(stmt, "TIMESTAMPTZ", "TEXT")
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
