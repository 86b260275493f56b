// Package sqlstore implements the repository interfaces over database/sql.
//
// Two engines are supported behind the same queries:
//   - SQLite through modernc.org/sqlite (pure Go, no cgo), the default. Use a
//     file path such as "data/sleep.db", or ":memory:" in tests.
//   - PostgreSQL through pgx's database/sql driver, selected with
//     DB_DRIVER=postgres and a postgres:// DATABASE_URL.
//
// The only differences between the two are the DDL column types and the
// placeholder syntax (see rebind). Upserts use INSERT ... ON CONFLICT ...
// RETURNING, which both engines implement, so every write is one statement.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Drivers register themselves with database/sql from init().
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/sakif/alive-sleep/internal/config"
)

// Open connects, applies engine settings and brings the schema up to date.
// It is the Connector's default opener; ctx bounds the whole attempt.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if driver == config.DriverSQLite {
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(sqlDriverName(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: opening %s database: %w", driver, err)
	}

	if driver == config.DriverSQLite {
		// An in-memory database lives and dies with its connection, and a file
		// database only has one writer anyway. One connection covers both.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: pinging %s database: %w", driver, err)
	}

	if driver == config.DriverSQLite {
		// WAL lets readers proceed during a write. Foreign keys are off by
		// default in SQLite and the owner columns rely on them.
		for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("sqlstore: %s: %w", pragma, err)
			}
		}
	}

	if err := migrate(ctx, db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: running migrations: %w", err)
	}
	return db, nil
}

// ensureDir creates the parent directory of a SQLite file. The driver
// creates the file itself but not its directory. In-memory and URI-style
// DSNs are left alone.
func ensureDir(dsn string) error {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	path, _, _ := strings.Cut(dsn, "?")
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("sqlstore: creating database directory %s: %w", dir, err)
	}
	return nil
}

// migrate creates the schema. Every statement is idempotent, so it runs on
// each successful open.
func migrate(ctx context.Context, db *sql.DB, driver string) error {
	bigint, float := "INTEGER", "REAL"
	if driver == config.DriverPostgres {
		bigint, float = "BIGINT", "DOUBLE PRECISION"
	}

	stmts := []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			auth_id_hash  TEXT NOT NULL UNIQUE,
			last_login_at %[1]s NOT NULL,
			created_at    %[1]s NOT NULL,
			updated_at    %[1]s NOT NULL
		)`, bigint),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS sleep_entries (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id),
			entry_date TEXT NOT NULL,
			duration   INTEGER NOT NULL CHECK (duration BETWEEN 0 AND 1440),
			start_time %[1]s,
			end_time   %[1]s,
			rating     INTEGER CHECK (rating BETWEEN 0 AND 10),
			created_at %[1]s NOT NULL,
			updated_at %[1]s NOT NULL,
			UNIQUE (user_id, entry_date)
		)`, bigint),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS weekly_summaries (
			id              TEXT PRIMARY KEY,
			user_id         TEXT NOT NULL REFERENCES users(id),
			week_start_date TEXT NOT NULL,
			week_end_date   TEXT NOT NULL,
			avg_hours       %[2]s NOT NULL CHECK (avg_hours BETWEEN 0 AND 24),
			entry_count     INTEGER NOT NULL,
			created_at      %[1]s NOT NULL,
			updated_at      %[1]s NOT NULL,
			UNIQUE (user_id, week_end_date)
		)`, bigint, float),
	}

	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}

// Store hands out the per-table repositories. They share the Connector, so
// constructing a Store never touches the database.
type Store struct {
	conn *Connector
}

func New(conn *Connector) *Store {
	return &Store{conn: conn}
}

func (s *Store) Users() *UserStore { return &UserStore{conn: s.conn} }

func (s *Store) Entries() *EntryStore { return &EntryStore{conn: s.conn} }

func (s *Store) Summaries() *SummaryStore { return &SummaryStore{conn: s.conn} }

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*t), Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
