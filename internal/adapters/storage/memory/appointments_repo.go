package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cockroachdb/errors"

	"vet-registry/internal/domain/appointments"
	"vet-registry/internal/platform/apperr"
)

type appointmentRepo struct {
	scope
}

func (r appointmentRepo) Create(ctx context.Context, a appointments.Appointment) (int64, error) {
	var id int64
	err := r.run(func(st *state) error {
		st.appointmentSeq++
		a.ID = st.appointmentSeq
		st.appointments[a.ID] = a
		id = a.ID
		return nil
	})
	return id, err
}

func (r appointmentRepo) GetByID(ctx context.Context, id int64) (appointments.Appointment, error) {
	var out appointments.Appointment
	err := r.run(func(st *state) error {
		a, ok := st.appointments[id]
		if !ok {
			return errors.Wrapf(apperr.ErrNotFound, "appointment %d", id)
		}
		out = a
		return nil
	})
	return out, err
}

func (r appointmentRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.run(func(st *state) error {
		a, ok := st.appointments[id]
		if !ok {
			return errors.Wrapf(apperr.ErrNotFound, "appointment %d", id)
		}
		a.Status = status
		st.appointments[id] = a
		return nil
	})
}

func (r appointmentRepo) Delete(ctx context.Context, id int64) error {
	return r.run(func(st *state) error {
		if _, ok := st.appointments[id]; !ok {
			return errors.Wrapf(apperr.ErrNotFound, "appointment %d", id)
		}
		delete(st.appointments, id)
		return nil
	})
}

func (r appointmentRepo) ListBetween(ctx context.Context, from, to time.Time) ([]appointments.Appointment, error) {
	var out []appointments.Appointment
	err := r.run(func(st *state) error {
		for _, a := range st.appointments {
			if !a.Date.Before(from) && !a.Date.After(to) {
				out = append(out, a)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].Date.Equal(out[j].Date) {
				return out[i].Date.Before(out[j].Date)
			}
			if out[i].Time != out[j].Time {
				return out[i].Time < out[j].Time
			}
			return out[i].ID < out[j].ID
		})
		return nil
	})
	return out, err
}
