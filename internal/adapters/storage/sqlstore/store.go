// Package sqlstore implementa los repositorios sobre database/sql, con
// PostgreSQL (pgx) o SQLite (go-sqlite3) según DATABASE_URL.
package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/jackc/pgx/v5/stdlib"

	"vet-registry/internal/domain/appointments"
	"vet-registry/internal/domain/audit"
	"vet-registry/internal/domain/tutors"
	"vet-registry/internal/domain/visits"
	"vet-registry/internal/platform/apperr"
)

// DefaultSQLitePath es la base local cuando no se configura DATABASE_URL.
const DefaultSQLitePath = "mari.db"

// querier lo cumplen *sql.DB y *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open elige el motor por el esquema del DSN:
//   - postgres:// o postgresql:// -> pgx
//   - sqlite://ruta, file:ruta o vacío (mari.db) -> go-sqlite3
func Open(ctx context.Context, dsn string) (*sql.DB, Dialect, error) {
	dsn = strings.TrimSpace(dsn)

	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, "", errors.Wrap(err, "open postgres")
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxIdleTime(5 * time.Minute)
		db.SetConnMaxLifetime(30 * time.Minute)
		return ping(ctx, db, Postgres)

	case dsn == "", strings.HasPrefix(dsn, "sqlite://"), strings.HasPrefix(dsn, "file:"):
		db, err := sql.Open(sqliteDriver, sqliteDSN(dsn))
		if err != nil {
			return nil, "", errors.Wrap(err, "open sqlite")
		}
		// un solo escritor; evita SQLITE_BUSY entre conexiones del pool
		db.SetMaxOpenConns(1)
		return ping(ctx, db, SQLite)
	}

	return nil, "", errors.Newf("unsupported database url scheme in %q", redactDSN(dsn))
}

func ping(ctx context.Context, db *sql.DB, d Dialect) (*sql.DB, Dialect, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, "", errors.Wrapf(err, "ping %s", d)
	}
	return db, d, nil
}

func sqliteDSN(dsn string) string {
	path := strings.TrimPrefix(dsn, "sqlite://")
	if path == "" {
		path = DefaultSQLitePath
	}
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

func redactDSN(dsn string) string {
	if i := strings.Index(dsn, "@"); i >= 0 {
		if j := strings.Index(dsn, "://"); j >= 0 && j < i {
			return dsn[:j+3] + "***" + dsn[i:]
		}
	}
	return dsn
}

// Store implementa visits.Store y expone los repositorios fuera de transacción.
type Store struct {
	db *sql.DB
	d  Dialect
}

func New(db *sql.DB, d Dialect) *Store {
	return &Store{db: db, d: d}
}

func (s *Store) Dialect() Dialect { return s.d }

func (s *Store) Visits() visits.Repository { return visitsRepo{q: s.db, d: s.d} }

func (s *Store) Tutors() tutors.Repository { return tutorsRepo{q: s.db, d: s.d} }

func (s *Store) Audit() audit.Repository { return auditRepo{q: s.db, d: s.d} }

func (s *Store) Appointments() appointments.Repository { return appointmentsRepo{q: s.db, d: s.d} }

type txRepos struct {
	tx *sql.Tx
	d  Dialect
}

func (t txRepos) Visits() visits.Repository { return visitsRepo{q: t.tx, d: t.d} }
func (t txRepos) Tutors() tutors.Repository { return tutorsRepo{q: t.tx, d: t.d} }
func (t txRepos) Audit() audit.Repository   { return auditRepo{q: t.tx, d: t.d} }

// WithinTx hace commit si fn devuelve nil y rollback en cualquier otra salida,
// incluido un panic.
func (s *Store) WithinTx(ctx context.Context, fn func(visits.Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Storage(err, "begin tx")
	}
	defer tx.Rollback() //nolint:errcheck // no-op después del commit

	if err := fn(txRepos{tx: tx, d: s.d}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperr.Storage(err, "commit tx")
	}
	return nil
}
