package sqlstore

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/guregu/null/v5"
)

const dateLayout = "2006-01-02"

// scanner lo cumplen *sql.Row y *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// dateArg es la forma en que se guardan las fechas de negocio en ambos motores.
func dateArg(t time.Time) string {
	return t.Format(dateLayout)
}

// asDate acepta lo que devuelva el driver para una columna de fecha:
// time.Time (DATE en Postgres) o texto (SQLite).
func asDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		y, m, d := x.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	case string:
		return parseDate(x)
	case []byte:
		return parseDate(string(x))
	case nil:
		return time.Time{}, errors.New("null date")
	}
	return time.Time{}, errors.Newf("unexpected date type %T", v)
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) >= len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse date %q", s)
	}
	return t, nil
}

var timestampLayouts = []string{
	timestampLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

func asTimestamp(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	case string:
		return parseTimestamp(x)
	case []byte:
		return parseTimestamp(string(x))
	}
	return time.Time{}, errors.Newf("unexpected timestamp type %T", v)
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.Newf("parse timestamp %q", s)
}

// optional guarda NULL para texto vacío.
func optional(s string) null.String {
	return null.NewString(s, s != "")
}
