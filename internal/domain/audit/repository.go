package audit

import "context"

// Repository sólo permite agregar y leer: no hay update ni delete.
type Repository interface {
	Append(ctx context.Context, e Entry) (int64, error)
	// ListRecent ordena por timestamp desc, id desc.
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
	// ListByRecord ordena cronológicamente (timestamp asc, id asc).
	ListByRecord(ctx context.Context, table string, recordID int64) ([]Entry, error)
}
