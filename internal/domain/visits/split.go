package visits

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"vet-registry/internal/domain/audit"
)

// SplitSharedTutors deja a cada atención con su propia fila de tutor.
// La atención más antigua de cada tutor conserva la fila original; el resto
// recibe una copia nueva. Cada copia queda auditada como CREATE en tutores.
// Es idempotente: una segunda corrida no encuentra tutores compartidos.
func (s *Service) SplitSharedTutors(ctx context.Context, actor string) (SplitReport, error) {
	var rep SplitReport

	err := s.store.WithinTx(ctx, func(r Repos) error {
		links, err := r.Visits().TutorLinks(ctx)
		if err != nil {
			return errors.Wrap(err, "list tutor links")
		}
		rep.Visits = len(links)

		byTutor := map[int64][]TutorLink{}
		order := make([]int64, 0)
		for _, l := range links {
			if _, ok := byTutor[l.TutorID]; !ok {
				order = append(order, l.TutorID)
			}
			byTutor[l.TutorID] = append(byTutor[l.TutorID], l)
		}

		for _, tutorID := range order {
			group := byTutor[tutorID]
			if len(group) < 2 {
				continue
			}
			rep.SharedTutors++

			original, err := r.Tutors().GetByID(ctx, tutorID)
			if err != nil {
				return errors.Wrapf(err, "load tutor %d", tutorID)
			}

			for _, l := range group[1:] {
				clone := original
				clone.ID = 0
				newID, err := r.Tutors().Create(ctx, clone)
				if err != nil {
					return errors.Wrap(err, "clone tutor")
				}
				if err := r.Visits().Relink(ctx, l.VisitID, newID); err != nil {
					return errors.Wrap(err, "relink visit")
				}

				clone.ID = newID
				_, err = s.audit.AppendTx(ctx, r.Audit(), audit.Entry{
					Operation:   audit.OpCreate,
					Table:       audit.TableTutors,
					RecordID:    newID,
					Actor:       actor,
					After:       audit.Snapshot(tutorRecord(clone)),
					Description: fmt.Sprintf("Tutor separado de #%d para atención #%d", tutorID, l.Number),
				})
				if err != nil {
					return err
				}
				rep.CreatedTutors++
			}
		}
		return nil
	})
	if err != nil {
		return SplitReport{}, classify(err, "split shared tutors")
	}

	s.log.Info("shared tutors split", map[string]any{
		"visits":         rep.Visits,
		"shared_tutors":  rep.SharedTutors,
		"created_tutors": rep.CreatedTutors,
		"actor":          actor,
	})
	return rep, nil
}
