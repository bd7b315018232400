package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"vet-registry/internal/domain/visits"
	"vet-registry/internal/platform/apperr"
)

type visitRepo struct {
	scope
}

func (r visitRepo) Insert(ctx context.Context, v visits.Visit) (int64, error) {
	var id int64
	err := r.run(func(st *state) error {
		for _, existing := range st.visits {
			if existing.Number == v.Number {
				return apperr.ErrDuplicateNumber
			}
		}
		if _, ok := st.tutors[v.TutorID]; !ok {
			return errors.Newf("tutor %d does not exist", v.TutorID)
		}
		st.visitSeq++
		v.ID = st.visitSeq
		st.visits[v.ID] = v
		id = v.ID
		return nil
	})
	return id, err
}

func (r visitRepo) GetByNumber(ctx context.Context, number int) (visits.View, error) {
	var out visits.View
	err := r.run(func(st *state) error {
		for _, v := range st.visits {
			if v.Number == number {
				out = join(st, v)
				return nil
			}
		}
		return errors.Wrapf(apperr.ErrNotFound, "visit #%d", number)
	})
	return out, err
}

func (r visitRepo) Search(ctx context.Context, f visits.Filter) ([]visits.View, error) {
	var out []visits.View
	err := r.run(func(st *state) error {
		out = filter(st, f)
		sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
		if f.Limit > 0 && len(out) > f.Limit {
			out = out[:f.Limit]
		}
		return nil
	})
	return out, err
}

func (r visitRepo) Count(ctx context.Context, f visits.Filter) (int, error) {
	var n int
	err := r.run(func(st *state) error {
		n = len(filter(st, f))
		return nil
	})
	return n, err
}

func (r visitRepo) Recent(ctx context.Context, limit int) ([]visits.View, error) {
	var out []visits.View
	err := r.run(func(st *state) error {
		out = filter(st, visits.Filter{})
		sort.Slice(out, func(i, j int) bool {
			if !out[i].Date.Equal(out[j].Date) {
				return out[i].Date.After(out[j].Date)
			}
			return out[i].Number > out[j].Number
		})
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
		return nil
	})
	return out, err
}

func (r visitRepo) Update(ctx context.Context, v visits.Visit) error {
	return r.run(func(st *state) error {
		if _, ok := st.visits[v.ID]; !ok {
			return errors.Wrapf(apperr.ErrNotFound, "visit id %d", v.ID)
		}
		for id, existing := range st.visits {
			if id != v.ID && existing.Number == v.Number {
				return apperr.ErrDuplicateNumber
			}
		}
		st.visits[v.ID] = v
		return nil
	})
}

func (r visitRepo) Delete(ctx context.Context, id int64) error {
	return r.run(func(st *state) error {
		if _, ok := st.visits[id]; !ok {
			return errors.Wrapf(apperr.ErrNotFound, "visit id %d", id)
		}
		delete(st.visits, id)
		return nil
	})
}

func (r visitRepo) MaxNumber(ctx context.Context) (int, error) {
	var n int
	err := r.run(func(st *state) error {
		for _, v := range st.visits {
			if v.Number > n {
				n = v.Number
			}
		}
		return nil
	})
	return n, err
}

func (r visitRepo) TutorLinks(ctx context.Context) ([]visits.TutorLink, error) {
	var out []visits.TutorLink
	err := r.run(func(st *state) error {
		all := make([]visits.Visit, 0, len(st.visits))
		for _, v := range st.visits {
			all = append(all, v)
		}
		sort.Slice(all, func(i, j int) bool {
			a, b := all[i], all[j]
			if a.TutorID != b.TutorID {
				return a.TutorID < b.TutorID
			}
			if !a.Date.Equal(b.Date) {
				return a.Date.Before(b.Date)
			}
			return a.Number < b.Number
		})
		for _, v := range all {
			out = append(out, visits.TutorLink{VisitID: v.ID, Number: v.Number, TutorID: v.TutorID})
		}
		return nil
	})
	return out, err
}

func (r visitRepo) Relink(ctx context.Context, visitID, tutorID int64) error {
	return r.run(func(st *state) error {
		v, ok := st.visits[visitID]
		if !ok {
			return errors.Wrapf(apperr.ErrNotFound, "visit id %d", visitID)
		}
		if _, ok := st.tutors[tutorID]; !ok {
			return errors.Newf("tutor %d does not exist", tutorID)
		}
		v.TutorID = tutorID
		st.visits[visitID] = v
		return nil
	})
}

func join(st *state, v visits.Visit) visits.View {
	return visits.View{Visit: v, Tutor: st.tutors[v.TutorID]}
}

func filter(st *state, f visits.Filter) []visits.View {
	out := make([]visits.View, 0)
	for _, v := range st.visits {
		view := join(st, v)
		if matches(view, f) {
			out = append(out, view)
		}
	}
	return out
}

func matches(v visits.View, f visits.Filter) bool {
	if f.Number != nil && v.Number != *f.Number {
		return false
	}
	if f.Type != "" && v.Type != f.Type {
		return false
	}
	if !containsFold(v.Species, f.Species) ||
		!containsFold(v.Tutor.NationalID, f.NationalID) ||
		!containsFold(v.Tutor.Neighborhood, f.Neighborhood) ||
		!containsFold(v.AnimalName, f.AnimalName) {
		return false
	}
	if f.From != nil && v.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && v.Date.After(*f.To) {
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	if sub == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
