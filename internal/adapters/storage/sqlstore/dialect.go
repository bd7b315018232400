package sqlstore

import (
	"database/sql"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// Dialect es el motor detrás de la conexión. Las consultas son las mismas;
// cambian placeholders, timestamps y códigos de error.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// timestampLayout tiene ancho fijo para que en SQLite ordenar como texto sea
// ordenar cronológicamente.
const timestampLayout = "2006-01-02 15:04:05.000000"

// sqliteDriver es go-sqlite3 con lower_unicode registrada en cada conexión:
// el LOWER nativo de SQLite sólo pliega ASCII ("Ñuñoa" != "ñuñoa").
const sqliteDriver = "sqlite3_unicode"

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower_unicode", strings.ToLower, true)
		},
	})
}

func (d Dialect) builder() squirrel.StatementBuilderType {
	if d == Postgres {
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	}
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

func (d Dialect) goose() goose.Dialect {
	if d == Postgres {
		return goose.DialectPostgres
	}
	return goose.DialectSQLite3
}

func (d Dialect) migrationsDir() string {
	return "migrations/" + string(d)
}

// lower es la función de minúsculas con soporte Unicode del motor.
// lower_unicode no acepta NULL, de ahí el COALESCE.
func (d Dialect) lower(expr string) string {
	if d == Postgres {
		return "LOWER(" + expr + ")"
	}
	return "lower_unicode(COALESCE(" + expr + ", ''))"
}

func (d Dialect) timestamp(t time.Time) any {
	if d == Postgres {
		return t.UTC()
	}
	return t.UTC().Format(timestampLayout)
}

// isUniqueViolation reconoce la violación de UNIQUE en ambos motores.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
