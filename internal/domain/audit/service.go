package audit

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"vet-registry/internal/platform/apperr"
	"vet-registry/internal/platform/logger"
	"vet-registry/internal/platform/metrics"
)

type Service struct {
	repo Repository
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, log logger.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// Prepare valida e y completa timestamp/actor por defecto.
func (s *Service) Prepare(e Entry) (Entry, error) {
	e.Table = strings.TrimSpace(e.Table)
	e.Actor = strings.TrimSpace(e.Actor)

	ve := &apperr.ValidationError{}
	if !e.Operation.Valid() {
		ve.Add("tipo_operacion", "must be one of CREATE, UPDATE, DELETE")
	}
	if e.Table == "" {
		ve.Add("tabla", "is required")
	}
	if err := ve.OrNil(); err != nil {
		return Entry{}, err
	}

	if e.Actor == "" {
		e.Actor = SystemActor
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now().UTC()
	}
	return e, nil
}

// AppendTx agrega e usando el repo de la transacción del llamador.
// Si falla, el error vuelve al llamador y la mutación principal hace rollback.
func (s *Service) AppendTx(ctx context.Context, repo Repository, e Entry) (Entry, error) {
	e, err := s.Prepare(e)
	if err != nil {
		return Entry{}, err
	}
	id, err := repo.Append(ctx, e)
	if err != nil {
		return Entry{}, errors.Wrap(err, "append audit entry")
	}
	e.ID = id
	return e, nil
}

// Append es append_audit fuera de una transacción: best effort.
// La falla se loguea y se cuenta; el llamador decide si la ignora.
func (s *Service) Append(ctx context.Context, e Entry) (Entry, error) {
	out, err := s.AppendTx(ctx, s.repo, e)
	if err != nil {
		if _, ok := apperr.AsValidation(err); ok {
			return Entry{}, err
		}
		metrics.AuditAppendFailures.Inc()
		s.log.Error("audit append failed", map[string]any{
			"operation": string(e.Operation),
			"table":     e.Table,
			"record_id": e.RecordID,
			"err":       err,
		})
		return Entry{}, apperr.Storage(err, "audit append")
	}
	return out, nil
}

// ReadRecent es read_audit. limit <= 0 usa DefaultLimit; se acota a MaxLimit.
func (s *Service) ReadRecent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return s.repo.ListRecent(ctx, limit)
}

// History devuelve las entradas de un registro en orden cronológico.
func (s *Service) History(ctx context.Context, table string, recordID int64) ([]Entry, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, apperr.Invalid("tabla", "is required")
	}
	if recordID <= 0 {
		return nil, apperr.Invalid("registro_id", "must be greater than 0")
	}
	return s.repo.ListByRecord(ctx, table, recordID)
}

// Snapshot serializa v para Before/After. Un valor nil produce "".
func Snapshot(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
