package sqlstore

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/guregu/null/v5"

	"vet-registry/internal/domain/audit"
)

type auditRepo struct {
	q querier
	d Dialect
}

var auditColumns = []string{
	"id", "fecha_hora", "tipo_operacion", "tabla", "registro_id",
	"usuario", "datos_anteriores", "datos_nuevos", "descripcion",
}

func (r auditRepo) Append(ctx context.Context, e audit.Entry) (int64, error) {
	query, args, err := r.d.builder().
		Insert("auditoria").
		Columns(auditColumns[1:]...).
		Values(
			r.d.timestamp(e.Timestamp), string(e.Operation), e.Table,
			null.NewInt(e.RecordID, e.RecordID != 0), e.Actor,
			optional(e.Before), optional(e.After), optional(e.Description),
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "build insert audit")
	}

	var id int64
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, errors.Wrap(err, "insert audit")
	}
	return id, nil
}

func (r auditRepo) ListRecent(ctx context.Context, limit int) ([]audit.Entry, error) {
	b := r.d.builder().
		Select(auditColumns...).
		From("auditoria").
		OrderBy("fecha_hora DESC", "id DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	return r.list(ctx, b)
}

func (r auditRepo) ListByRecord(ctx context.Context, table string, recordID int64) ([]audit.Entry, error) {
	return r.list(ctx, r.d.builder().
		Select(auditColumns...).
		From("auditoria").
		Where(squirrel.Eq{"tabla": table, "registro_id": recordID}).
		OrderBy("fecha_hora ASC", "id ASC"))
}

func (r auditRepo) list(ctx context.Context, b squirrel.SelectBuilder) ([]audit.Entry, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build list audit")
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list audit")
	}
	defer rows.Close()

	out := make([]audit.Entry, 0)
	for rows.Next() {
		var (
			e                          audit.Entry
			ts                         any
			op                         string
			recordID                   null.Int
			before, after, description null.String
		)
		if err := rows.Scan(&e.ID, &ts, &op, &e.Table, &recordID, &e.Actor, &before, &after, &description); err != nil {
			return nil, errors.Wrap(err, "scan audit")
		}
		if e.Timestamp, err = asTimestamp(ts); err != nil {
			return nil, err
		}
		e.Operation = audit.Operation(op)
		e.RecordID = recordID.ValueOrZero()
		e.Before = before.ValueOrZero()
		e.After = after.ValueOrZero()
		e.Description = description.ValueOrZero()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list audit")
	}
	return out, nil
}
