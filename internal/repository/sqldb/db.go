// Package sqldb implements the repositories on database/sql, against either
// PostgreSQL (lib/pq) or SQLite (modernc.org/sqlite).
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"business-admin/internal/repository"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// sqliteTimeLayout is fixed width so that text comparison orders instants.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

// DB is a connection pool plus the SQL dialect it speaks. Queries are written
// with $N placeholders and rewritten for SQLite.
type DB struct {
	*sql.DB
	driver string
}

// Open connects to a PostgreSQL DSN or a SQLite file path (":memory:" for a
// private in-memory database).
func Open(driver, dsn string) (*DB, error) {
	switch driver {
	case DriverPostgres:
		conn, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("opening postgres: %w", err)
		}
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return &DB{DB: conn, driver: driver}, nil

	case DriverSQLite:
		if dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("creating db directory: %w", err)
			}
		}
		conn, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite: %w", err)
		}
		// One connection: SQLite serializes writers anyway, and an in-memory
		// database only exists on the connection that created it.
		conn.SetMaxOpenConns(1)
		for _, pragma := range []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA foreign_keys = ON",
			"PRAGMA busy_timeout = 5000",
		} {
			if _, err := conn.Exec(pragma); err != nil {
				conn.Close()
				return nil, fmt.Errorf("%s: %w", pragma, err)
			}
		}
		return &DB{DB: conn, driver: driver}, nil
	}
	return nil, fmt.Errorf("unsupported driver %q", driver)
}

func (db *DB) Driver() string {
	return db.driver
}

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

// rebind rewrites $N placeholders to ?N for SQLite.
func (db *DB) rebind(query string) string {
	if db.driver != DriverSQLite {
		return query
	}
	return placeholderRe.ReplaceAllString(query, "?$1")
}

func (db *DB) exec(ctx context.Context, x DBTX, query string, args ...any) (sql.Result, error) {
	return x.ExecContext(ctx, db.rebind(query), args...)
}

func (db *DB) query(ctx context.Context, x DBTX, query string, args ...any) (*sql.Rows, error) {
	return x.QueryContext(ctx, db.rebind(query), args...)
}

func (db *DB) queryRow(ctx context.Context, x DBTX, query string, args ...any) *sql.Row {
	return x.QueryRowContext(ctx, db.rebind(query), args...)
}

// WithinTx runs fn in a transaction, rolling back when fn fails.
func (db *DB) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ts converts t to the column representation of the dialect.
func (db *DB) ts(t time.Time) any {
	if db.driver == DriverSQLite {
		return t.UTC().Format(sqliteTimeLayout)
	}
	return t.UTC()
}

func (db *DB) nullTS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return db.ts(*t)
}

// wrapErr maps unique violations to repository.ErrConflict.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w: %v", op, repository.ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func notFound(kind, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, repository.ErrNotFound)
	}
	return fmt.Errorf("loading %s %s: %w", kind, id, err)
}

// mustAffect turns a zero-row update or delete into ErrNotFound.
func mustAffect(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, repository.ErrNotFound)
	}
	return nil
}

// timestamp scans both native time values (postgres) and the text encoding
// used for SQLite.
type timestamp struct {
	Time  time.Time
	Valid bool
}

func (t *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
		return nil
	case time.Time:
		t.Time, t.Valid = v, true
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	}
	return fmt.Errorf("cannot scan %T into timestamp", src)
}

func (t *timestamp) parse(s string) error {
	if s == "" {
		t.Time, t.Valid = time.Time{}, false
		return nil
	}
	for _, layout := range []string{sqliteTimeLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time, t.Valid = parsed, true
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (t timestamp) ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// filter accumulates WHERE clauses. Each "?" in a clause becomes the next $N.
type filter struct {
	clauses []string
	args    []any
}

func (f *filter) add(clause string, args ...any) {
	for _, a := range args {
		f.args = append(f.args, a)
		clause = strings.Replace(clause, "?", fmt.Sprintf("$%d", len(f.args)), 1)
	}
	f.clauses = append(f.clauses, clause)
}

func (f *filter) search(term string, columns ...string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}
	like := "%" + strings.ToLower(term) + "%"
	parts := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		parts[i] = "LOWER(" + c + ") LIKE ?"
		args[i] = like
	}
	f.add("("+strings.Join(parts, " OR ")+")", args...)
}

func (f *filter) where() string {
	if len(f.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.clauses, " AND ")
}

// page appends ORDER BY, LIMIT and OFFSET. opts must already be normalized so
// SortBy is a whitelisted column.
func (f *filter) page(opts repository.ListOptions) string {
	dir := "DESC"
	if !opts.Desc() {
		dir = "ASC"
	}
	n := len(f.args)
	f.args = append(f.args, opts.Limit, opts.Offset())
	return fmt.Sprintf(" ORDER BY %s %s, id %s LIMIT $%d OFFSET $%d", opts.SortBy, dir, dir, n+1, n+2)
}

func (db *DB) count(ctx context.Context, table string, f *filter) (int, error) {
	var n int
	if err := db.queryRow(ctx, db.DB, "SELECT COUNT(*) FROM "+table+f.where(), f.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}
