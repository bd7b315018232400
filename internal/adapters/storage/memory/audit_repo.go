package memory

import (
	"context"
	"sort"

	"vet-registry/internal/domain/audit"
)

type auditRepo struct {
	scope
}

func (r auditRepo) Append(ctx context.Context, e audit.Entry) (int64, error) {
	var id int64
	err := r.run(func(st *state) error {
		st.auditSeq++
		e.ID = st.auditSeq
		st.audit = append(st.audit, e)
		id = e.ID
		return nil
	})
	return id, err
}

func (r auditRepo) ListRecent(ctx context.Context, limit int) ([]audit.Entry, error) {
	var out []audit.Entry
	err := r.run(func(st *state) error {
		out = append([]audit.Entry(nil), st.audit...)
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].Timestamp.Equal(out[j].Timestamp) {
				return out[i].Timestamp.After(out[j].Timestamp)
			}
			return out[i].ID > out[j].ID
		})
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
		return nil
	})
	return out, err
}

func (r auditRepo) ListByRecord(ctx context.Context, table string, recordID int64) ([]audit.Entry, error) {
	var out []audit.Entry
	err := r.run(func(st *state) error {
		for _, e := range st.audit {
			if e.Table == table && e.RecordID == recordID {
				out = append(out, e)
			}
		}
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].Timestamp.Equal(out[j].Timestamp) {
				return out[i].Timestamp.Before(out[j].Timestamp)
			}
			return out[i].ID < out[j].ID
		})
		return nil
	})
	return out, err
}
