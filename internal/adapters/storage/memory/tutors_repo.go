package memory

import (
	"context"

	"github.com/cockroachdb/errors"

	"vet-registry/internal/domain/tutors"
	"vet-registry/internal/platform/apperr"
)

type tutorRepo struct {
	scope
}

func (r tutorRepo) Create(ctx context.Context, t tutors.Tutor) (int64, error) {
	var id int64
	err := r.run(func(st *state) error {
		st.tutorSeq++
		t.ID = st.tutorSeq
		st.tutors[t.ID] = t
		id = t.ID
		return nil
	})
	return id, err
}

func (r tutorRepo) Update(ctx context.Context, t tutors.Tutor) error {
	return r.run(func(st *state) error {
		if _, ok := st.tutors[t.ID]; !ok {
			return errors.Wrapf(apperr.ErrNotFound, "tutor %d", t.ID)
		}
		st.tutors[t.ID] = t
		return nil
	})
}

func (r tutorRepo) GetByID(ctx context.Context, id int64) (tutors.Tutor, error) {
	var out tutors.Tutor
	err := r.run(func(st *state) error {
		t, ok := st.tutors[id]
		if !ok {
			return errors.Wrapf(apperr.ErrNotFound, "tutor %d", id)
		}
		out = t
		return nil
	})
	return out, err
}

func (r tutorRepo) FindByNationalID(ctx context.Context, nationalID string) (tutors.Tutor, error) {
	var out tutors.Tutor
	err := r.run(func(st *state) error {
		for _, t := range st.tutors {
			if t.NationalID == nationalID && t.ID > out.ID {
				out = t
			}
		}
		if out.ID == 0 {
			return apperr.ErrNotFound
		}
		return nil
	})
	return out, err
}
