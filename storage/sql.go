package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/votaseguro/election-ledger/logging"
)

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQLStore holds a connection shared by the SQL backed storages. Queries are
// written with '?' placeholders and rebound for postgres.
type SQLStore struct {
	DB     *sql.DB
	Driver string
}

// OpenSQL connects, verifies the connection and creates the schema.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if driver != DriverSqlite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == DriverSqlite {
		// a single connection keeps ":memory:" databases alive and serialises writers
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	store := &SQLStore{DB: db, Driver: driver}
	if err := store.CreateSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logging.Log.Infof("STORAGE: %s schema ready", driver)
	return store, nil
}

// CreateSchema is safe to call multiple times.
func (s *SQLStore) CreateSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.DB.Close()
}

func (s *SQLStore) rebind(query string) string {
	if s.Driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.DB.ExecContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.DB.QueryContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.DB.QueryRowContext(ctx, s.rebind(query), args...)
}

const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique or primary key
// violation raised by either driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func toUnix(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

const schema = `
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    party TEXT NOT NULL,
    category TEXT NOT NULL,
    votes BIGINT NOT NULL DEFAULT 0,
    image TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_candidate_category ON candidate(category);

CREATE TABLE IF NOT EXISTS voter (
    wallet_address TEXT PRIMARY KEY,
    id TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    tokens_assigned INTEGER NOT NULL DEFAULT 0 CHECK (tokens_assigned >= 0),
    tokens_used INTEGER NOT NULL DEFAULT 0 CHECK (tokens_used >= 0),
    registered_at BIGINT NOT NULL,
    active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS vote (
    wallet_address TEXT NOT NULL,
    category TEXT NOT NULL,
    candidate_id TEXT NOT NULL,
    candidate_name TEXT NOT NULL,
    candidate_party TEXT NOT NULL,
    cast_at BIGINT NOT NULL,
    transaction_hash TEXT NOT NULL DEFAULT '',
    on_chain INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (wallet_address, category)
);

CREATE INDEX IF NOT EXISTS idx_vote_candidate ON vote(candidate_id);

CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    active INTEGER NOT NULL,
    closes_at BIGINT
)
`
